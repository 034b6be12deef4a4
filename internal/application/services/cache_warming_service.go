package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/pharmacy-locator/internal/domain/providers"
	"github.com/zatekoja/pharmacy-locator/internal/domain/repositories"
)

// CacheWarmingService refills the catalog snapshot cache so the next locate
// cycle does not pay for a full catalog load.
type CacheWarmingService struct {
	cachedSource repositories.CatalogSource
	cache        providers.CacheProvider
}

// NewCacheWarmingService creates a new cache warming service. cachedSource
// must write through to cache on a miss.
func NewCacheWarmingService(cachedSource repositories.CatalogSource, cache providers.CacheProvider) *CacheWarmingService {
	return &CacheWarmingService{
		cachedSource: cachedSource,
		cache:        cache,
	}
}

// WarmCache drops the cached snapshot and loads a fresh one through the cached source.
func (s *CacheWarmingService) WarmCache(ctx context.Context) (int, error) {
	if err := s.cache.Delete(ctx, providers.CacheKeyCatalogSnapshot); err != nil {
		log.Warn().Err(err).Msg("Failed to drop cached catalog before warming")
	}

	pharmacies, err := s.cachedSource.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to warm catalog cache: %w", err)
	}

	log.Info().Int("count", len(pharmacies)).Msg("Warmed catalog cache")
	return len(pharmacies), nil
}

// StartPeriodicWarming warms once, then again every interval until ctx is done.
func (s *CacheWarmingService) StartPeriodicWarming(ctx context.Context, interval time.Duration) {
	if _, err := s.WarmCache(ctx); err != nil {
		log.Error().Err(err).Msg("Initial cache warming failed")
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("Stopping cache warming service")
				return
			case <-ticker.C:
				if _, err := s.WarmCache(ctx); err != nil {
					log.Error().Err(err).Msg("Periodic cache warming failed")
				}
			}
		}
	}()
	log.Info().Dur("interval", interval).Msg("Started periodic cache warming")
}
