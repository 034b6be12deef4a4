package geolocation

import (
	"context"
	"fmt"

	"github.com/zatekoja/pharmacy-locator/internal/domain/entities"
	"github.com/zatekoja/pharmacy-locator/internal/domain/providers"
)

// StaticProvider reports a position fixed at start-up (flags or USER_LAT/USER_LON)
type StaticProvider struct {
	position *entities.Coordinate
}

// NewStaticProvider creates a provider for the given position. A nil
// position makes every call report ErrGeolocationUnavailable.
func NewStaticProvider(position *entities.Coordinate) providers.GeolocationProvider {
	return &StaticProvider{position: position}
}

// CurrentPosition returns the configured position
func (p *StaticProvider) CurrentPosition(ctx context.Context) (entities.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return entities.Coordinate{}, fmt.Errorf("%w: %v", providers.ErrGeolocationDenied, err)
	}
	if p.position == nil {
		return entities.Coordinate{}, fmt.Errorf("%w: no position configured", providers.ErrGeolocationUnavailable)
	}
	if !p.position.Valid() {
		return entities.Coordinate{}, fmt.Errorf("%w: configured position %v,%v is out of range",
			providers.ErrGeolocationDenied, p.position.Latitude, p.position.Longitude)
	}
	return *p.position, nil
}

// UnavailableProvider is used when geolocation is switched off
type UnavailableProvider struct{}

// CurrentPosition always reports ErrGeolocationUnavailable
func (UnavailableProvider) CurrentPosition(ctx context.Context) (entities.Coordinate, error) {
	return entities.Coordinate{}, providers.ErrGeolocationUnavailable
}
