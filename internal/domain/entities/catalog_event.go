package entities

import (
	"time"

	"github.com/google/uuid"
)

// CatalogEventType represents the type of catalog event
type CatalogEventType string

const (
	CatalogEventTypeReplaced CatalogEventType = "catalog_replaced"
)

// CatalogEvent announces that a new catalog snapshot has been published
type CatalogEvent struct {
	ID        string           `json:"id"`
	EventType CatalogEventType `json:"event_type"`
	Source    string           `json:"source"`
	Count     int              `json:"count"`
	Timestamp time.Time        `json:"timestamp"`
}

// NewCatalogEvent creates a new catalog replaced event
func NewCatalogEvent(source string, count int) *CatalogEvent {
	return &CatalogEvent{
		ID:        uuid.NewString(),
		EventType: CatalogEventTypeReplaced,
		Source:    source,
		Count:     count,
		Timestamp: time.Now().UTC(),
	}
}
