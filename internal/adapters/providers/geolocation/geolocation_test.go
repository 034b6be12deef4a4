package geolocation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/pharmacy-locator/internal/domain/entities"
	"github.com/zatekoja/pharmacy-locator/internal/domain/providers"
	"github.com/zatekoja/pharmacy-locator/pkg/config"
)

var lome = entities.Coordinate{Latitude: 6.1304, Longitude: 1.2158}

func TestStaticProvider(t *testing.T) {
	position := lome
	got, err := NewStaticProvider(&position).CurrentPosition(context.Background())
	require.NoError(t, err)
	assert.Equal(t, lome, got)
}

func TestStaticProvider_NoPosition(t *testing.T) {
	_, err := NewStaticProvider(nil).CurrentPosition(context.Background())
	assert.ErrorIs(t, err, providers.ErrGeolocationUnavailable)
}

func TestStaticProvider_OutOfRange(t *testing.T) {
	_, err := NewStaticProvider(&entities.Coordinate{Latitude: 91}).CurrentPosition(context.Background())
	assert.ErrorIs(t, err, providers.ErrGeolocationDenied)
}

func TestStaticProvider_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	position := lome
	_, err := NewStaticProvider(&position).CurrentPosition(ctx)
	assert.ErrorIs(t, err, providers.ErrGeolocationDenied)
}

func TestUnavailableProvider(t *testing.T) {
	_, err := UnavailableProvider{}.CurrentPosition(context.Background())
	assert.ErrorIs(t, err, providers.ErrGeolocationUnavailable)
}

func TestIPProvider_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","country":"Togo","city":"Lomé","lat":6.1304,"lon":1.2158}`))
	}))
	defer server.Close()

	got, err := NewIPProvider(server.URL, server.Client(), nil).CurrentPosition(context.Background())
	require.NoError(t, err)
	assert.Equal(t, lome, got)
}

func TestIPProvider_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"forbidden", http.StatusForbidden, `{}`},
		{"unauthorized", http.StatusUnauthorized, `{}`},
		{"server error", http.StatusInternalServerError, `{}`},
		{"status fail", http.StatusOK, `{"status":"fail","message":"private range"}`},
		{"no coordinates", http.StatusOK, `{"status":"success"}`},
		{"out of range", http.StatusOK, `{"status":"success","lat":95,"lon":1}`},
		{"malformed", http.StatusOK, `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewIPProvider(server.URL, server.Client(), nil).CurrentPosition(context.Background())
			assert.ErrorIs(t, err, providers.ErrGeolocationDenied)
		})
	}
}

func TestIPProvider_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewIPProvider(server.URL, server.Client(), nil).CurrentPosition(ctx)
	assert.ErrorIs(t, err, providers.ErrGeolocationDenied)
}

type memoryCache struct {
	data map[string][]byte
}

func (m *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, providers.ErrCacheMiss
}

func (m *memoryCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	m.data[key] = value
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *memoryCache) DeletePattern(ctx context.Context, pattern string) error { return nil }

func (m *memoryCache) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

func TestIPProvider_CachesLookup(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"status":"success","lat":6.1304,"lon":1.2158}`))
	}))
	defer server.Close()

	provider := NewIPProvider(server.URL, server.Client(), &memoryCache{data: map[string][]byte{}})

	for i := 0; i < 3; i++ {
		got, err := provider.CurrentPosition(context.Background())
		require.NoError(t, err)
		assert.Equal(t, lome, got)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestNewProvider(t *testing.T) {
	lat, lon := 6.1304, 1.2158

	p, err := NewProvider(config.GeolocationConfig{Provider: config.GeolocationStatic, UserLat: &lat, UserLon: &lon}, nil, nil)
	require.NoError(t, err)
	got, err := p.CurrentPosition(context.Background())
	require.NoError(t, err)
	assert.Equal(t, lome, got)

	p, err = NewProvider(config.GeolocationConfig{Provider: config.GeolocationStatic}, nil, nil)
	require.NoError(t, err)
	_, err = p.CurrentPosition(context.Background())
	assert.ErrorIs(t, err, providers.ErrGeolocationUnavailable)

	p, err = NewProvider(config.GeolocationConfig{Provider: config.GeolocationIP}, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &IPProvider{}, p)

	p, err = NewProvider(config.GeolocationConfig{Provider: config.GeolocationNone}, nil, nil)
	require.NoError(t, err)
	_, err = p.CurrentPosition(context.Background())
	assert.ErrorIs(t, err, providers.ErrGeolocationUnavailable)

	override := entities.Coordinate{Latitude: 1, Longitude: 2}
	p, err = NewProvider(config.GeolocationConfig{Provider: config.GeolocationNone}, &override, nil)
	require.NoError(t, err)
	got, err = p.CurrentPosition(context.Background())
	require.NoError(t, err)
	assert.Equal(t, override, got)

	_, err = NewProvider(config.GeolocationConfig{Provider: "gps"}, nil, nil)
	assert.Error(t, err)
}
