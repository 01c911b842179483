package models

import "time"

// Catalog change event actions.
const (
	ActionCreated   = "created"
	ActionUpdated   = "updated"
	ActionDeleted   = "deleted"
	ActionReordered = "reordered"
)

// CatalogEvent is published to Kafka after every successful catalog write so
// downstream consumers (site rebuilds, feeds) can react to admin edits.
type CatalogEvent struct {
	Entity     string    `json:"entity"` // "tour", "space", "space_type"
	EntityID   string    `json:"entity_id"`
	Action     string    `json:"action"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewCatalogEvent(entity, entityID, action string) CatalogEvent {
	return CatalogEvent{
		Entity:     entity,
		EntityID:   entityID,
		Action:     action,
		OccurredAt: time.Now().UTC(),
	}
}
