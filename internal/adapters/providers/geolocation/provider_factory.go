package geolocation

import (
	"fmt"

	"github.com/zatekoja/pharmacy-locator/internal/domain/entities"
	"github.com/zatekoja/pharmacy-locator/internal/domain/providers"
	"github.com/zatekoja/pharmacy-locator/pkg/config"
)

// NewProvider picks the geolocation provider named by cfg.Provider.
// override, when non-nil, wins over the configured static position.
func NewProvider(cfg config.GeolocationConfig, override *entities.Coordinate, cache providers.CacheProvider) (providers.GeolocationProvider, error) {
	if override != nil {
		return NewStaticProvider(override), nil
	}

	switch cfg.Provider {
	case config.GeolocationStatic:
		var position *entities.Coordinate
		if cfg.UserLat != nil && cfg.UserLon != nil {
			position = &entities.Coordinate{Latitude: *cfg.UserLat, Longitude: *cfg.UserLon}
		}
		return NewStaticProvider(position), nil
	case config.GeolocationIP:
		return NewIPProvider(cfg.IPEndpoint, nil, cache), nil
	case config.GeolocationNone:
		return UnavailableProvider{}, nil
	default:
		return nil, fmt.Errorf("unknown geolocation provider %q", cfg.Provider)
	}
}
