package kafka

import (
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// Catalog change topics, one per entity kind.
const (
	TopicTourEvents      = "catalog.tour.events"
	TopicSpaceEvents     = "catalog.space.events"
	TopicSpaceTypeEvents = "catalog.space_type.events"
)

// RequiredTopics lists every topic the service publishes to.
func RequiredTopics() []string {
	return []string{TopicTourEvents, TopicSpaceEvents, TopicSpaceTypeEvents}
}

// TopicFor maps a catalog entity name to its event topic.
func TopicFor(entity string) string {
	switch entity {
	case "space":
		return TopicSpaceEvents
	case "space_type":
		return TopicSpaceTypeEvents
	default:
		return TopicTourEvents
	}
}

// EnsureTopicsExist creates Kafka topics if they don't already exist
func EnsureTopicsExist(brokers []string, topics []string) error {
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return err
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return err
	}
	controllerConn, err := kafka.Dial("tcp", controller.Host)
	if err != nil {
		return err
	}
	defer controllerConn.Close()

	for _, topic := range topics {
		topicConfigs := []kafka.TopicConfig{
			{
				Topic:             topic,
				NumPartitions:     1,
				ReplicationFactor: 1,
			},
		}

		err = controllerConn.CreateTopics(topicConfigs...)
		if err != nil {
			// If error contains "already exists", it's not a problem
			if err.Error() == "kafka server: topic already exists" {
				log.Printf("Topic %s already exists", topic)
				continue
			}
			log.Printf("Error creating topic %s: %v", topic, err)
			// Continue trying to create other topics even if one fails
		} else {
			log.Printf("Created topic: %s", topic)
		}
	}

	// Wait a moment for topics to be fully created
	time.Sleep(1 * time.Second)
	return nil
}
