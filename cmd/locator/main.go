package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/pharmacy-locator/internal/adapters/cache"
	"github.com/zatekoja/pharmacy-locator/internal/adapters/catalog"
	"github.com/zatekoja/pharmacy-locator/internal/adapters/database"
	"github.com/zatekoja/pharmacy-locator/internal/adapters/events"
	"github.com/zatekoja/pharmacy-locator/internal/adapters/providers/geolocation"
	"github.com/zatekoja/pharmacy-locator/internal/adapters/search"
	"github.com/zatekoja/pharmacy-locator/internal/application/services"
	"github.com/zatekoja/pharmacy-locator/internal/domain/entities"
	"github.com/zatekoja/pharmacy-locator/internal/domain/providers"
	"github.com/zatekoja/pharmacy-locator/internal/domain/repositories"
	"github.com/zatekoja/pharmacy-locator/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/pharmacy-locator/internal/infrastructure/clients/redis"
	"github.com/zatekoja/pharmacy-locator/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/pharmacy-locator/internal/infrastructure/observability"
	"github.com/zatekoja/pharmacy-locator/pkg/config"
)

// Exit codes
const (
	exitOK          = 0
	exitFailure     = 1
	exitUnavailable = 2
	exitDenied      = 3
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return exitFailure
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Environment, cfg.LogLevel)

	var lat, lon, radius float64
	var asJSON, watch bool
	flag.Float64Var(&lat, "lat", 0, "user latitude in decimal degrees (overrides the geolocation provider)")
	flag.Float64Var(&lon, "lon", 0, "user longitude in decimal degrees (overrides the geolocation provider)")
	flag.Float64Var(&radius, "radius", cfg.Search.RadiusKm, "search radius in km")
	flag.BoolVar(&asJSON, "json", false, "print results as JSON")
	flag.BoolVar(&watch, "watch", false, "stay running and re-resolve when a new catalog is published")
	flag.Parse()

	override, err := positionOverride(lat, lon)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}
	if err := validateRadius(radius); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize metrics")
		return exitFailure
	}

	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, running without cache")
		} else {
			defer redisClient.Close()
			cacheProvider = cache.NewRedisAdapter(redisClient)
			eventBus = events.NewRedisEventBus(redisClient)
			defer eventBus.Close()
		}
	}

	source, closeSource, err := buildCatalogSource(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize catalog source")
		return exitFailure
	}
	defer closeSource()
	if cacheProvider != nil {
		source = database.NewCachedCatalogSource(source, cacheProvider, cfg.Catalog.CacheTTLSeconds, metrics)
	}

	opts := services.LocatorOptions{
		RadiusKm:           radius,
		GeolocationTimeout: cfg.Geolocation.Timeout,
		Metrics:            metrics,
		PageSize:           cfg.Search.PageSize,
	}
	if cfg.Search.UseIndex {
		tsClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			log.Warn().Err(err).Msg("Typesense unavailable, ranking the full catalog")
		} else {
			opts.SearchIndex = search.NewTypesenseAdapter(tsClient)
		}
	}

	geo, err := geolocation.NewProvider(cfg.Geolocation, override, cacheProvider)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize geolocation provider")
		return exitFailure
	}

	locator := services.NewLocatorService(geo, source, opts)

	session, err := locator.Locate(ctx)
	if code := report(os.Stdout, session, err, asJSON); code != exitOK {
		return code
	}

	if !watch {
		return exitOK
	}
	if eventBus == nil {
		log.Error().Msg("-watch needs REDIS_ENABLED=true to receive catalog updates")
		return exitFailure
	}
	return watchCatalog(ctx, locator, source, session, cacheProvider, eventBus, asJSON)
}

// report prints the outcome of a locate cycle and returns the exit code for it.
func report(w io.Writer, session *entities.Session, err error, asJSON bool) int {
	if err != nil {
		notice, ok := geolocationNotice(err)
		if !ok {
			log.Error().Err(err).Msg("Failed to locate pharmacies")
			return exitFailure
		}
		if rerr := renderNotice(w, session, notice, asJSON); rerr != nil {
			log.Error().Err(rerr).Msg("Failed to write output")
		}
		if errors.Is(err, providers.ErrGeolocationUnavailable) {
			return exitUnavailable
		}
		return exitDenied
	}

	if err := renderSession(w, session, asJSON); err != nil {
		log.Error().Err(err).Msg("Failed to write output")
		return exitFailure
	}
	return exitOK
}

// watchCatalog keeps the session's position and re-ranks it against every
// newly published catalog until ctx is cancelled.
func watchCatalog(
	ctx context.Context,
	locator *services.LocatorService,
	source repositories.CatalogSource,
	session *entities.Session,
	cacheProvider providers.CacheProvider,
	eventBus providers.EventBus,
	asJSON bool,
) int {
	invalidation := services.NewCacheInvalidationService(cacheProvider, eventBus)
	invalidation.OnEvent(func(event *entities.CatalogEvent) {
		log.Info().Str("event_id", event.ID).Str("source", event.Source).Int("count", event.Count).Msg("Catalog updated")

		pharmacies, err := source.Load(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Failed to reload catalog, keeping previous results")
			return
		}
		session.Catalog = pharmacies
		locator.Resolve(ctx, session)
		if err := renderSession(os.Stdout, session, asJSON); err != nil {
			log.Error().Err(err).Msg("Failed to write output")
		}
	})

	if err := invalidation.Start(); err != nil {
		log.Error().Err(err).Msg("Failed to watch catalog updates")
		return exitFailure
	}
	defer invalidation.Stop()

	<-ctx.Done()
	return exitOK
}

func validateRadius(radius float64) error {
	if !(radius > 0) || math.IsInf(radius, 1) {
		return fmt.Errorf("-radius must be a positive number of km, got %v", radius)
	}
	return nil
}

func positionOverride(lat, lon float64) (*entities.Coordinate, error) {
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if !set["lat"] && !set["lon"] {
		return nil, nil
	}
	if set["lat"] != set["lon"] {
		return nil, errors.New("-lat and -lon must be given together")
	}
	position := entities.Coordinate{Latitude: lat, Longitude: lon}
	if !position.Valid() {
		return nil, fmt.Errorf("invalid position %v,%v", lat, lon)
	}
	return &position, nil
}

func buildCatalogSource(ctx context.Context, cfg *config.Config) (repositories.CatalogSource, func(), error) {
	if cfg.Catalog.Source != config.CatalogSourcePostgres {
		source, err := catalog.NewSource(ctx, cfg)
		return source, func() {}, err
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return database.NewPharmacyAdapter(pgClient), func() { pgClient.Close() }, nil
}
