package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, CatalogSourceFile, cfg.Catalog.Source)
	assert.Equal(t, 40.0, cfg.Search.RadiusKm)
	assert.Equal(t, GeolocationStatic, cfg.Geolocation.Provider)
	assert.Equal(t, 10*time.Second, cfg.Geolocation.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.Catalog.RefreshInterval)
	assert.Nil(t, cfg.Geolocation.UserLat)
	assert.Equal(t, "http://localhost:8108", cfg.Typesense.URL)
	assert.Equal(t, "xyz", cfg.Typesense.APIKey)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_TypesenseConfig(t *testing.T) {
	t.Setenv("TYPESENSE_URL", "http://test-typesense:8108")
	t.Setenv("TYPESENSE_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://test-typesense:8108", cfg.Typesense.URL)
	assert.Equal(t, "test-key", cfg.Typesense.APIKey)
}

func TestLoad_UserPosition(t *testing.T) {
	t.Setenv("USER_LAT", "6.1304")
	t.Setenv("USER_LON", "1.2158")
	t.Setenv("GEOLOCATION_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	require.NotNil(t, cfg.Geolocation.UserLat)
	require.NotNil(t, cfg.Geolocation.UserLon)
	assert.InDelta(t, 6.1304, *cfg.Geolocation.UserLat, 1e-9)
	assert.InDelta(t, 1.2158, *cfg.Geolocation.UserLon, 1e-9)
	assert.Equal(t, 3*time.Second, cfg.Geolocation.Timeout)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SEARCH_RADIUS_KM", "forty")
	t.Setenv("GEOLOCATION_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 40.0, cfg.Search.RadiusKm)
	assert.Equal(t, 10*time.Second, cfg.Geolocation.Timeout)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unknown source", map[string]string{"CATALOG_SOURCE": "ftp"}, "unknown CATALOG_SOURCE"},
		{"http without url", map[string]string{"CATALOG_SOURCE": "http"}, "CATALOG_URL"},
		{"s3 without bucket", map[string]string{"CATALOG_SOURCE": "s3"}, "CATALOG_S3_BUCKET"},
		{"zero radius", map[string]string{"SEARCH_RADIUS_KM": "0"}, "SEARCH_RADIUS_KM"},
		{"unknown provider", map[string]string{"GEOLOCATION_PROVIDER": "gps"}, "GEOLOCATION_PROVIDER"},
		{"lat without lon", map[string]string{"USER_LAT": "6.13"}, "USER_LAT and USER_LON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "pharmacies", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=pharmacies sslmode=disable", db.DatabaseDSN())
}
