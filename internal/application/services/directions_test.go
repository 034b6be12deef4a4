package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zatekoja/pharmacy-locator/internal/application/services"
	"github.com/zatekoja/pharmacy-locator/internal/domain/entities"
)

func TestDirectionsURL(t *testing.T) {
	dest := entities.Coordinate{Latitude: 6.1256, Longitude: 1.225}

	assert.Equal(t,
		"https://www.google.com/maps/dir/6.1304,1.2158/6.1256,1.225",
		services.DirectionsURL(lomeUser, dest),
	)
}

func TestDirectionsURL_NegativeCoordinates(t *testing.T) {
	user := entities.Coordinate{Latitude: -33.8688, Longitude: 151.2093}
	dest := entities.Coordinate{Latitude: 40.7128, Longitude: -74.006}

	assert.Equal(t,
		"https://www.google.com/maps/dir/-33.8688,151.2093/40.7128,-74.006",
		services.DirectionsURL(user, dest),
	)
}
