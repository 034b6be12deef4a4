package providers

import (
	"context"

	"github.com/zatekoja/pharmacy-locator/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to catalog events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.CatalogEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.CatalogEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannelCatalogUpdates carries catalog replacement notices.
const EventChannelCatalogUpdates = "catalog:updates"
