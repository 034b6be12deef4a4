package database

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/pharmacy-locator/internal/adapters/cache"
	"github.com/zatekoja/pharmacy-locator/internal/domain/entities"
	"github.com/zatekoja/pharmacy-locator/internal/domain/providers"
	redisclient "github.com/zatekoja/pharmacy-locator/internal/infrastructure/clients/redis"
)

type MockCatalogSource struct {
	mock.Mock
}

func (m *MockCatalogSource) Load(ctx context.Context) ([]entities.Pharmacy, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Pharmacy), args.Error(1)
}

func newRedisCache(t *testing.T) (providers.CacheProvider, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewRedisAdapter(redisclient.NewClientFromRedis(client)), mr
}

var cachedCatalog = []entities.Pharmacy{
	{ID: "1", Name: "Pharmacie Saint Joseph", Hours: "24/7", IsOpen: true, Location: entities.Coordinate{Latitude: 6.1304, Longitude: 1.2158}},
	{ID: "2", Name: "Pharmacie Tokoin", Hours: entities.HoursUnavailable, IsOpen: false, Location: entities.Coordinate{Latitude: 6.135, Longitude: 1.21}},
}

func TestCachedCatalogSource_MissThenHit(t *testing.T) {
	redisCache, mr := newRedisCache(t)
	source := new(MockCatalogSource)
	source.On("Load", mock.Anything).Return(cachedCatalog, nil).Once()

	cached := NewCachedCatalogSource(source, redisCache, 600, nil)

	first, err := cached.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cachedCatalog, first)
	assert.True(t, mr.Exists(providers.CacheKeyCatalogSnapshot))

	second, err := cached.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cachedCatalog, second)

	source.AssertNumberOfCalls(t, "Load", 1)
}

func TestCachedCatalogSource_InvalidatedSnapshotReloads(t *testing.T) {
	redisCache, _ := newRedisCache(t)
	source := new(MockCatalogSource)
	source.On("Load", mock.Anything).Return(cachedCatalog, nil).Twice()

	cached := NewCachedCatalogSource(source, redisCache, 600, nil)

	_, err := cached.Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, redisCache.DeletePattern(context.Background(), providers.CacheKeyCatalogPattern))
	_, err = cached.Load(context.Background())
	require.NoError(t, err)

	source.AssertNumberOfCalls(t, "Load", 2)
}

func TestCachedCatalogSource_CorruptEntry(t *testing.T) {
	redisCache, mr := newRedisCache(t)
	require.NoError(t, mr.Set(providers.CacheKeyCatalogSnapshot, "not json"))

	source := new(MockCatalogSource)
	source.On("Load", mock.Anything).Return(cachedCatalog, nil)

	got, err := NewCachedCatalogSource(source, redisCache, 600, nil).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cachedCatalog, got)
}

func TestCachedCatalogSource_SourceError(t *testing.T) {
	redisCache, mr := newRedisCache(t)
	source := new(MockCatalogSource)
	source.On("Load", mock.Anything).Return(nil, errors.New("db down"))

	_, err := NewCachedCatalogSource(source, redisCache, 600, nil).Load(context.Background())
	require.Error(t, err)
	assert.False(t, mr.Exists(providers.CacheKeyCatalogSnapshot))
}

func TestCachedCatalogSource_CacheDown(t *testing.T) {
	redisCache, mr := newRedisCache(t)
	mr.Close()

	source := new(MockCatalogSource)
	source.On("Load", mock.Anything).Return(cachedCatalog, nil)

	got, err := NewCachedCatalogSource(source, redisCache, 600, nil).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cachedCatalog, got)
}
