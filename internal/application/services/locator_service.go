package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/zatekoja/pharmacy-locator/internal/domain/entities"
	"github.com/zatekoja/pharmacy-locator/internal/domain/providers"
	"github.com/zatekoja/pharmacy-locator/internal/domain/repositories"
	"github.com/zatekoja/pharmacy-locator/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/pharmacy-locator/pkg/errors"
)

// DefaultGeolocationTimeout bounds a single position request.
const DefaultGeolocationTimeout = 10 * time.Second

// LocatorOptions tunes a LocatorService. Zero values fall back to defaults.
type LocatorOptions struct {
	RadiusKm           float64
	GeolocationTimeout time.Duration
	Metrics            *observability.Metrics

	// SearchIndex, when set, supplies the candidate set instead of a full catalog load.
	// PageSize is the number of hits fetched per index request.
	SearchIndex repositories.PharmacySearchRepository
	PageSize    int
}

// LocatorService runs one locate cycle: acquire the user's position, load the
// catalog, rank nearby pharmacies.
type LocatorService struct {
	geolocation providers.GeolocationProvider
	catalog     repositories.CatalogSource
	opts        LocatorOptions
}

// NewLocatorService creates a new locator service
func NewLocatorService(geolocation providers.GeolocationProvider, catalog repositories.CatalogSource, opts LocatorOptions) *LocatorService {
	if opts.RadiusKm <= 0 {
		opts.RadiusKm = DefaultRadiusKm
	}
	if opts.GeolocationTimeout <= 0 {
		opts.GeolocationTimeout = DefaultGeolocationTimeout
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 250
	}
	return &LocatorService{
		geolocation: geolocation,
		catalog:     catalog,
		opts:        opts,
	}
}

// RadiusKm returns the radius applied to every resolution
func (s *LocatorService) RadiusKm() float64 {
	return s.opts.RadiusKm
}

// Locate acquires the user's position and the catalog concurrently and
// resolves nearby pharmacies into a fresh session.
//
// On a geolocation failure the returned session has no user location and the
// error wraps providers.ErrGeolocationUnavailable or providers.ErrGeolocationDenied.
// An empty result is not an error.
func (s *LocatorService) Locate(ctx context.Context) (*entities.Session, error) {
	ctx, span := observability.StartSpan(ctx, "LocatorService.Locate")
	defer span.End()

	session := entities.NewSession(s.opts.RadiusKm)
	logger := observability.LoggerFromContext(ctx).With().Str("session_id", session.ID).Logger()

	if s.opts.SearchIndex != nil {
		position, err := s.acquirePosition(ctx)
		if err != nil {
			observability.RecordError(span, err)
			return session, err
		}
		session.UserLocation = &position

		candidates, err := s.opts.SearchIndex.Nearby(ctx, position, s.opts.RadiusKm, s.opts.PageSize)
		if err != nil {
			logger.Warn().Err(err).Msg("search index unavailable, loading full catalog")
			candidates, err = s.loadCatalog(ctx)
			if err != nil {
				observability.RecordError(span, err)
				return session, err
			}
		}
		session.Catalog = candidates
	} else {
		var position entities.Coordinate
		var catalog []entities.Pharmacy

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			position, err = s.acquirePosition(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			catalog, err = s.loadCatalog(gctx)
			return err
		})

		if err := g.Wait(); err != nil {
			observability.RecordError(span, err)
			if errors.Is(err, providers.ErrGeolocationDenied) || errors.Is(err, providers.ErrGeolocationUnavailable) {
				logger.Info().Err(err).Msg("user position not available")
			} else {
				logger.Error().Err(err).Msg("failed to load pharmacy catalog")
			}
			return session, err
		}
		session.UserLocation = &position
		session.Catalog = catalog
	}

	s.Resolve(ctx, session)

	observability.SetSpanAttributes(span,
		attribute.Int("catalog.size", len(session.Catalog)),
		attribute.Int("results.count", len(session.LastResolution)),
	)
	logger.Info().
		Float64("lat", session.UserLocation.Latitude).
		Float64("lon", session.UserLocation.Longitude).
		Int("catalog_size", len(session.Catalog)).
		Int("results", len(session.LastResolution)).
		Msg("resolved nearby pharmacies")

	return session, nil
}

// Resolve recomputes session.LastResolution from the session's own location
// and catalog. It is a no-op for sessions without a user location.
func (s *LocatorService) Resolve(ctx context.Context, session *entities.Session) {
	if !session.Located() {
		return
	}

	logger := observability.LoggerFromContext(ctx)
	resolver := NewProximityResolver(func(p entities.Pharmacy) {
		observability.RecordSkippedEntry(ctx, s.opts.Metrics)
		logger.Warn().
			Str("pharmacy_id", p.ID).
			Str("name", p.Name).
			Float64("lat", p.Location.Latitude).
			Float64("lon", p.Location.Longitude).
			Msg("skipping catalog entry with invalid coordinates")
	})

	session.LastResolution = resolver.FindNearby(session.Catalog, *session.UserLocation, session.RadiusKm)
	session.ResolvedAt = time.Now().UTC()
	observability.RecordResolution(ctx, s.opts.Metrics, session.RadiusKm, len(session.LastResolution))
}

func (s *LocatorService) acquirePosition(ctx context.Context) (entities.Coordinate, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.GeolocationTimeout)
	defer cancel()

	position, err := s.geolocation.CurrentPosition(ctx)
	if err != nil {
		if errors.Is(err, providers.ErrGeolocationDenied) || errors.Is(err, providers.ErrGeolocationUnavailable) {
			return entities.Coordinate{}, err
		}
		return entities.Coordinate{}, fmt.Errorf("%w: %v", providers.ErrGeolocationDenied, err)
	}
	if !position.Valid() {
		return entities.Coordinate{}, fmt.Errorf("%w: provider returned invalid coordinate %v,%v",
			providers.ErrGeolocationDenied, position.Latitude, position.Longitude)
	}
	return position, nil
}

func (s *LocatorService) loadCatalog(ctx context.Context) ([]entities.Pharmacy, error) {
	ctx, span := observability.StartSpan(ctx, "CatalogSource.Load")
	defer span.End()

	catalog, err := s.catalog.Load(ctx)
	if err != nil {
		observability.RecordError(span, err)
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperrors.NewExternalError("failed to load pharmacy catalog", err)
	}
	return catalog, nil
}
