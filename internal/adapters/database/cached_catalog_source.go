package database

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/zatekoja/pharmacy-locator/internal/domain/entities"
	"github.com/zatekoja/pharmacy-locator/internal/domain/providers"
	"github.com/zatekoja/pharmacy-locator/internal/domain/repositories"
	"github.com/zatekoja/pharmacy-locator/internal/infrastructure/observability"
)

// CachedCatalogSource wraps a CatalogSource with a snapshot cache
type CachedCatalogSource struct {
	source     repositories.CatalogSource
	cache      providers.CacheProvider
	ttlSeconds int
	metrics    *observability.Metrics
}

// NewCachedCatalogSource creates a new cached catalog source
func NewCachedCatalogSource(source repositories.CatalogSource, cache providers.CacheProvider, ttlSeconds int, metrics *observability.Metrics) repositories.CatalogSource {
	return &CachedCatalogSource{
		source:     source,
		cache:      cache,
		ttlSeconds: ttlSeconds,
		metrics:    metrics,
	}
}

// Load returns the cached snapshot, falling back to the wrapped source.
// The cache write is synchronous: the locator is a short-lived process.
func (s *CachedCatalogSource) Load(ctx context.Context) ([]entities.Pharmacy, error) {
	logger := observability.LoggerFromContext(ctx)
	key := providers.CacheKeyCatalogSnapshot

	cached, err := s.cache.Get(ctx, key)
	if err == nil {
		var pharmacies []entities.Pharmacy
		if err := json.Unmarshal(cached, &pharmacies); err == nil {
			observability.RecordCacheHit(ctx, s.metrics, key)
			return pharmacies, nil
		}
		logger.Warn().Err(err).Msg("Failed to unmarshal cached catalog")
	} else if !errors.Is(err, providers.ErrCacheMiss) {
		logger.Warn().Err(err).Msg("Catalog cache unavailable")
	}
	observability.RecordCacheMiss(ctx, s.metrics, key)

	pharmacies, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(pharmacies); err == nil {
		if err := s.cache.Set(ctx, key, data, s.ttlSeconds); err != nil {
			logger.Warn().Err(err).Msg("Failed to cache catalog")
		}
	}

	return pharmacies, nil
}
