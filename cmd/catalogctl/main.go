package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/pharmacy-locator/internal/adapters/cache"
	"github.com/zatekoja/pharmacy-locator/internal/adapters/catalog"
	"github.com/zatekoja/pharmacy-locator/internal/adapters/database"
	"github.com/zatekoja/pharmacy-locator/internal/adapters/events"
	"github.com/zatekoja/pharmacy-locator/internal/adapters/search"
	"github.com/zatekoja/pharmacy-locator/internal/application/services"
	"github.com/zatekoja/pharmacy-locator/internal/domain/providers"
	"github.com/zatekoja/pharmacy-locator/internal/domain/repositories"
	"github.com/zatekoja/pharmacy-locator/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/pharmacy-locator/internal/infrastructure/clients/redis"
	"github.com/zatekoja/pharmacy-locator/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/pharmacy-locator/internal/infrastructure/observability"
	"github.com/zatekoja/pharmacy-locator/pkg/config"
)

const usage = `usage: catalogctl <command> [flags]

commands:
  import   load a catalog snapshot and publish it to Postgres (and Typesense)
  export   write the stored catalog as JSON
  status   check backing services and report the stored catalog size
`

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found (using environment variables)")
	}

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	observability.InitLogger("catalogctl", cfg.Environment, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "import":
		err = runImport(ctx, cfg, os.Args[2:])
	case "export":
		err = runExport(ctx, cfg, os.Args[2:])
	case "status":
		err = runStatus(ctx, cfg)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Error().Err(err).Str("command", os.Args[1]).Msg("catalogctl failed")
		os.Exit(1)
	}
}

func runImport(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	var intervalFlag, sourceFlag, pathFlag, urlFlag string
	var reset, index bool
	fs.StringVar(&intervalFlag, "interval", "", "repeat interval for imports (e.g. 24h, 30m)")
	fs.StringVar(&sourceFlag, "source", "", "catalog source: file, http or s3 (default CATALOG_SOURCE)")
	fs.StringVar(&pathFlag, "path", "", "catalog file path for the file source")
	fs.StringVar(&urlFlag, "url", "", "catalog URL for the http source")
	fs.BoolVar(&index, "index", cfg.Search.UseIndex, "also publish the catalog to Typesense")
	fs.BoolVar(&reset, "reset", false, "drop the Typesense collection before the first import")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if sourceFlag != "" {
		cfg.Catalog.Source = sourceFlag
	}
	if pathFlag != "" {
		cfg.Catalog.Path = pathFlag
	}
	if urlFlag != "" {
		cfg.Catalog.URL = urlFlag
	}
	if cfg.Catalog.Source == config.CatalogSourcePostgres {
		return fmt.Errorf("import needs a file, http or s3 source, got %q", cfg.Catalog.Source)
	}

	interval, err := parseInterval(intervalFlag, os.Getenv("CATALOG_REFRESH_INTERVAL"))
	if err != nil {
		return err
	}

	for {
		if err := importOnce(ctx, cfg, index, reset); err != nil {
			log.Error().Err(err).Msg("Catalog import failed")
			if interval <= 0 {
				return err
			}
		}

		if interval <= 0 {
			return nil
		}

		reset = false
		log.Info().Dur("interval", interval).Msg("Catalog import complete, waiting for next run")

		select {
		case <-ctx.Done():
			log.Info().Msg("Catalog importer shutting down")
			return nil
		case <-time.After(interval):
		}
	}
}

// parseInterval reads the repeat interval from the flag, falling back to env.
// An empty value means a single run.
func parseInterval(flagValue, envValue string) (time.Duration, error) {
	value := strings.TrimSpace(flagValue)
	if value == "" {
		value = strings.TrimSpace(envValue)
	}
	if value == "" {
		return 0, nil
	}
	interval, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q: %w", value, err)
	}
	if interval <= 0 {
		return 0, fmt.Errorf("interval must be greater than zero")
	}
	return interval, nil
}

func importOnce(ctx context.Context, cfg *config.Config, index, reset bool) error {
	source, err := catalog.NewSource(ctx, cfg)
	if err != nil {
		return err
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	if err := pgClient.EnsureSchema(ctx); err != nil {
		return err
	}
	store := database.NewPharmacyAdapter(pgClient)

	var searchIndex repositories.PharmacySearchRepository
	if index {
		tsClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			return err
		}
		adapter := search.NewTypesenseAdapter(tsClient)
		if reset {
			log.Info().Str("collection", tsClient.Collection()).Msg("Dropping Typesense collection")
			if err := adapter.Clear(ctx); err != nil {
				log.Warn().Err(err).Msg("Failed to drop collection")
			}
		}
		searchIndex = adapter
	}

	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	var invalidator *services.CacheInvalidationService
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, skipping cache invalidation and update events")
		} else {
			defer redisClient.Close()
			cacheProvider = cache.NewRedisAdapter(redisClient)
			eventBus = events.NewRedisEventBus(redisClient)
			invalidator = services.NewCacheInvalidationService(cacheProvider, eventBus)
		}
	}

	importer := services.NewCatalogImportService(source, store, searchIndex, eventBus, invalidator)
	count, err := importer.Import(ctx, cfg.Catalog.Source)
	if err != nil {
		return err
	}
	log.Info().Int("count", count).Str("source", cfg.Catalog.Source).Msg("Catalog published")

	if cacheProvider != nil {
		cachedStore := database.NewCachedCatalogSource(store, cacheProvider, cfg.Catalog.CacheTTLSeconds, nil)
		if _, err := services.NewCacheWarmingService(cachedStore, cacheProvider).WarmCache(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to warm catalog cache")
		}
	}
	return nil
}

func runExport(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	var out string
	fs.StringVar(&out, "out", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	var w io.Writer = os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	count, err := exportCatalog(ctx, database.NewPharmacyAdapter(pgClient), w)
	if err != nil {
		return err
	}
	log.Info().Int("count", count).Msg("Catalog exported")
	return nil
}

// exportCatalog writes the stored catalog to w in the wire format.
func exportCatalog(ctx context.Context, store repositories.CatalogSource, w io.Writer) (int, error) {
	pharmacies, err := store.Load(ctx)
	if err != nil {
		return 0, err
	}
	if err := catalog.Encode(w, pharmacies); err != nil {
		return 0, err
	}
	return len(pharmacies), nil
}

func runStatus(ctx context.Context, cfg *config.Config) error {
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	if err := pgClient.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	count, err := database.NewPharmacyAdapter(pgClient).Count(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("postgres   ok   %d pharmacies stored\n", count)

	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			fmt.Printf("redis      down %v\n", err)
		} else {
			defer redisClient.Close()
			cached, _ := cache.NewRedisAdapter(redisClient).Exists(ctx, providers.CacheKeyCatalogSnapshot)
			fmt.Printf("redis      ok   %s snapshot cached: %t\n", cfg.Redis.RedisAddr(), cached)
		}
	}

	if cfg.Search.UseIndex {
		tsClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			fmt.Printf("typesense  down %v\n", err)
		} else if err := tsClient.InitSchema(ctx); err != nil {
			fmt.Printf("typesense  down %v\n", err)
		} else {
			fmt.Printf("typesense  ok   collection %s\n", tsClient.Collection())
		}
	}
	return nil
}
