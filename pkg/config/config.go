package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"
)

// Catalog source kinds
const (
	CatalogSourceFile     = "file"
	CatalogSourceHTTP     = "http"
	CatalogSourceS3       = "s3"
	CatalogSourcePostgres = "postgres"
)

// Geolocation provider kinds
const (
	GeolocationStatic = "static"
	GeolocationIP     = "ip"
	GeolocationNone   = "none"
)

// Config holds all application configuration
type Config struct {
	Environment string
	LogLevel    string
	Catalog     CatalogConfig
	Search      SearchConfig
	Geolocation GeolocationConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Typesense   TypesenseConfig
	AWS         AWSConfig
	OTEL        OTELConfig
}

// CatalogConfig selects where the pharmacy catalog snapshot comes from
type CatalogConfig struct {
	Source          string
	Path            string
	URL             string
	S3Bucket        string
	S3Key           string
	CacheTTLSeconds int
	RefreshInterval time.Duration
}

// SearchConfig holds proximity search configuration
type SearchConfig struct {
	RadiusKm float64
	UseIndex bool
	PageSize int
}

// GeolocationConfig holds geolocation provider configuration
type GeolocationConfig struct {
	Provider   string
	UserLat    *float64
	UserLon    *float64
	Timeout    time.Duration
	IPEndpoint string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// TypesenseConfig holds Typesense configuration
type TypesenseConfig struct {
	URL        string
	APIKey     string
	Collection string
}

// AWSConfig holds settings for the S3 catalog source
type AWSConfig struct {
	Region   string
	Endpoint string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Catalog: CatalogConfig{
			Source:          getEnv("CATALOG_SOURCE", CatalogSourceFile),
			Path:            getEnv("CATALOG_PATH", "data/pharmacies.json"),
			URL:             getEnv("CATALOG_URL", ""),
			S3Bucket:        getEnv("CATALOG_S3_BUCKET", ""),
			S3Key:           getEnv("CATALOG_S3_KEY", "pharmacies.json"),
			CacheTTLSeconds: getEnvAsInt("CATALOG_CACHE_TTL_SECONDS", 3600),
			RefreshInterval: getEnvAsDuration("CATALOG_REFRESH_INTERVAL", 24*time.Hour),
		},
		Search: SearchConfig{
			RadiusKm: getEnvAsFloat("SEARCH_RADIUS_KM", 40),
			UseIndex: getEnvAsBool("SEARCH_USE_INDEX", false),
			PageSize: getEnvAsInt("SEARCH_PAGE_SIZE", 250),
		},
		Geolocation: GeolocationConfig{
			Provider:   getEnv("GEOLOCATION_PROVIDER", GeolocationStatic),
			UserLat:    getEnvAsOptionalFloat("USER_LAT"),
			UserLon:    getEnvAsOptionalFloat("USER_LON"),
			Timeout:    getEnvAsDuration("GEOLOCATION_TIMEOUT", 10*time.Second),
			IPEndpoint: getEnv("GEOLOCATION_IP_ENDPOINT", "http://ip-api.com/json"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "pharmacy_locator"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Typesense: TypesenseConfig{
			URL:        getEnv("TYPESENSE_URL", "http://localhost:8108"),
			APIKey:     getEnv("TYPESENSE_API_KEY", "xyz"),
			Collection: getEnv("TYPESENSE_COLLECTION", "pharmacies"),
		},
		AWS: AWSConfig{
			Region:   getEnv("AWS_REGION", "us-east-1"),
			Endpoint: getEnv("AWS_S3_ENDPOINT", ""),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "pharmacy-locator"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks combinations a single env var cannot express
func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case CatalogSourceFile:
		if c.Catalog.Path == "" {
			return fmt.Errorf("CATALOG_PATH is required for the file catalog source")
		}
	case CatalogSourceHTTP:
		if c.Catalog.URL == "" {
			return fmt.Errorf("CATALOG_URL is required for the http catalog source")
		}
	case CatalogSourceS3:
		if c.Catalog.S3Bucket == "" || c.Catalog.S3Key == "" {
			return fmt.Errorf("CATALOG_S3_BUCKET and CATALOG_S3_KEY are required for the s3 catalog source")
		}
	case CatalogSourcePostgres:
	default:
		return fmt.Errorf("unknown CATALOG_SOURCE %q", c.Catalog.Source)
	}

	if math.IsNaN(c.Search.RadiusKm) || c.Search.RadiusKm <= 0 {
		return fmt.Errorf("SEARCH_RADIUS_KM must be positive, got %v", c.Search.RadiusKm)
	}

	switch c.Geolocation.Provider {
	case GeolocationStatic, GeolocationIP, GeolocationNone:
	default:
		return fmt.Errorf("unknown GEOLOCATION_PROVIDER %q", c.Geolocation.Provider)
	}
	if (c.Geolocation.UserLat == nil) != (c.Geolocation.UserLon == nil) {
		return fmt.Errorf("USER_LAT and USER_LON must be set together")
	}
	return nil
}

// IsDevelopment reports whether the process runs in a development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsOptionalFloat(key string) *float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return &floatVal
		}
	}
	return nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
