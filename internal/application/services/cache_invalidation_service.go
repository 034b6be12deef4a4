package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/pharmacy-locator/internal/domain/entities"
	"github.com/zatekoja/pharmacy-locator/internal/domain/providers"
)

// CacheInvalidationService drops cached catalog snapshots when a new catalog is published
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	onEvent  func(*entities.CatalogEvent)
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// OnEvent registers a callback run after each handled event
func (s *CacheInvalidationService) OnEvent(fn func(*entities.CatalogEvent)) {
	s.onEvent = fn
}

// Start begins listening for catalog events
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelCatalogUpdates)
	if err != nil {
		return fmt.Errorf("failed to subscribe to catalog updates: %w", err)
	}

	s.wg.Add(1)
	go s.processEvents(eventChan)
	log.Info().Str("channel", providers.EventChannelCatalogUpdates).Msg("Cache invalidation service started")
	return nil
}

// Stop stops the cache invalidation service and waits for the listener to exit
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	s.wg.Wait()
	log.Info().Msg("Cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.CatalogEvent) {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			s.handleEvent(event)
		}
	}
}

func (s *CacheInvalidationService) handleEvent(event *entities.CatalogEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger := log.With().
		Str("event_id", event.ID).
		Str("event_type", string(event.EventType)).
		Str("source", event.Source).
		Int("count", event.Count).
		Logger()

	if err := s.InvalidateCatalog(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate catalog cache")
	} else {
		logger.Info().Msg("Invalidated catalog cache")
	}

	if s.onEvent != nil {
		s.onEvent(event)
	}
}

// InvalidateCatalog removes every cached catalog snapshot
func (s *CacheInvalidationService) InvalidateCatalog(ctx context.Context) error {
	if err := s.cache.DeletePattern(ctx, providers.CacheKeyCatalogPattern); err != nil {
		return fmt.Errorf("failed to invalidate pattern %s: %w", providers.CacheKeyCatalogPattern, err)
	}
	return nil
}
