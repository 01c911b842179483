package kafka

import (
	"context"
	"encoding/json"
	"log"

	"github.com/segmentio/kafka-go"

	"ms-catalog/internal/models"
)

type Producer struct {
	Writer *kafka.Writer
	// MockMode turns Publish into a logged no-op for local runs without a broker.
	MockMode bool
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{Writer: writer}
}

func NewMockProducer() *Producer {
	return &Producer{MockMode: true}
}

// Publish writes a raw message to a topic.
func (p *Producer) Publish(topic string, key string, value []byte) error {
	if p.MockMode {
		log.Printf("[KAFKA MOCK] topic=%s key=%s value=%s", topic, key, string(value))
		return nil
	}
	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: topic,
			Key:   []byte(key),
			Value: value,
		},
	)
}

// PublishCatalogEvent streams a catalog change event to its entity topic.
func (p *Producer) PublishCatalogEvent(event models.CatalogEvent) error {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.Publish(TopicFor(event.Entity), event.EntityID, msgBytes)
}

func (p *Producer) Close() error {
	if p.Writer != nil {
		return p.Writer.Close()
	}
	return nil
}
