package services

import (
	"context"
	"fmt"

	"github.com/zatekoja/pharmacy-locator/internal/domain/entities"
	"github.com/zatekoja/pharmacy-locator/internal/domain/providers"
	"github.com/zatekoja/pharmacy-locator/internal/domain/repositories"
	"github.com/zatekoja/pharmacy-locator/internal/infrastructure/observability"
)

// CatalogImportService publishes a new catalog snapshot: store, index, notify.
type CatalogImportService struct {
	source      repositories.CatalogSource
	store       repositories.PharmacyRepository
	index       repositories.PharmacySearchRepository
	eventBus    providers.EventBus
	invalidator *CacheInvalidationService
}

// NewCatalogImportService creates a new import service. index, eventBus and
// invalidator are optional.
func NewCatalogImportService(
	source repositories.CatalogSource,
	store repositories.PharmacyRepository,
	index repositories.PharmacySearchRepository,
	eventBus providers.EventBus,
	invalidator *CacheInvalidationService,
) *CatalogImportService {
	return &CatalogImportService{
		source:      source,
		store:       store,
		index:       index,
		eventBus:    eventBus,
		invalidator: invalidator,
	}
}

// Import loads the source snapshot and replaces the stored catalog with it.
// It returns the number of pharmacies published.
func (s *CatalogImportService) Import(ctx context.Context, sourceName string) (int, error) {
	ctx, span := observability.StartSpan(ctx, "CatalogImportService.Import")
	defer span.End()

	logger := observability.LoggerFromContext(ctx).With().Str("source", sourceName).Logger()

	pharmacies, err := s.source.Load(ctx)
	if err != nil {
		observability.RecordError(span, err)
		return 0, fmt.Errorf("load catalog: %w", err)
	}

	kept := make([]entities.Pharmacy, 0, len(pharmacies))
	for _, p := range pharmacies {
		if !p.Location.Valid() {
			logger.Warn().Str("pharmacy_id", p.ID).Str("name", p.Name).Msg("dropping pharmacy with invalid coordinates")
			continue
		}
		p.Phone = entities.NormalizePhone(p.Phone)
		kept = append(kept, p)
	}

	if err := s.store.ReplaceAll(ctx, kept); err != nil {
		observability.RecordError(span, err)
		return 0, fmt.Errorf("store catalog: %w", err)
	}
	logger.Info().Int("count", len(kept)).Int("dropped", len(pharmacies)-len(kept)).Msg("stored catalog")

	// Once stored, invalidation and the update event run even if indexing fails.
	var indexErr error
	if s.index != nil {
		if err := s.index.ReplaceAll(ctx, kept); err != nil {
			observability.RecordError(span, err)
			indexErr = fmt.Errorf("index catalog: %w", err)
			logger.Error().Err(err).Msg("failed to index catalog, dropping the index so readers fall back to the store")
			if err := s.index.Clear(ctx); err != nil {
				logger.Warn().Err(err).Msg("failed to drop search index")
			}
		} else {
			logger.Info().Int("count", len(kept)).Msg("indexed catalog")
		}
	}

	if s.invalidator != nil {
		if err := s.invalidator.InvalidateCatalog(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to invalidate catalog cache")
		}
	}

	if s.eventBus != nil {
		event := entities.NewCatalogEvent(sourceName, len(kept))
		if err := s.eventBus.Publish(ctx, providers.EventChannelCatalogUpdates, event); err != nil {
			logger.Warn().Err(err).Msg("failed to publish catalog event")
		}
	}

	return len(kept), indexErr
}
