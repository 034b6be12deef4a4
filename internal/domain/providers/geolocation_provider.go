package providers

import (
	"context"
	"errors"

	"github.com/zatekoja/pharmacy-locator/internal/domain/entities"
)

var (
	// ErrGeolocationUnavailable means the environment has no way to acquire a position.
	ErrGeolocationUnavailable = errors.New("geolocation unavailable")

	// ErrGeolocationDenied means acquisition was refused or failed.
	ErrGeolocationDenied = errors.New("geolocation denied")
)

// GeolocationProvider acquires the user's current position.
//
// A call is single-shot: it returns either a coordinate or one of the
// sentinel errors above (possibly wrapped). Providers do not retry.
type GeolocationProvider interface {
	CurrentPosition(ctx context.Context) (entities.Coordinate, error)
}
