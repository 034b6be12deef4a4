package entities

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoordinateValid(t *testing.T) {
	cases := []struct {
		name  string
		coord Coordinate
		want  bool
	}{
		{"lome", Coordinate{Latitude: 6.1304, Longitude: 1.2158}, true},
		{"poles and antimeridian", Coordinate{Latitude: -90, Longitude: 180}, true},
		{"latitude too large", Coordinate{Latitude: 90.0001, Longitude: 0}, false},
		{"longitude too small", Coordinate{Latitude: 0, Longitude: -180.5}, false},
		{"nan", Coordinate{Latitude: math.NaN(), Longitude: 1}, false},
		{"inf", Coordinate{Latitude: 1, Longitude: math.Inf(1)}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.coord.Valid())
		})
	}
}

func TestPharmacyHasHours(t *testing.T) {
	assert.True(t, Pharmacy{Hours: "24/7"}.HasHours())
	assert.False(t, Pharmacy{Hours: HoursUnavailable}.HasHours())
	assert.False(t, Pharmacy{}.HasHours())
}

func TestNewSession(t *testing.T) {
	s := NewSession(40)

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 40.0, s.RadiusKm)
	assert.False(t, s.Located())
	assert.NotNil(t, s.LastResolution)
	assert.Empty(t, s.LastResolution)
}

func TestNewCatalogEvent(t *testing.T) {
	event := NewCatalogEvent("file:pharmacies_geo.json", 12)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, CatalogEventTypeReplaced, event.EventType)
	assert.Equal(t, 12, event.Count)
	assert.False(t, event.Timestamp.IsZero())
}
