package entities

import (
	"time"

	"github.com/google/uuid"
)

// Session holds the state of one locate cycle. It is owned by the caller;
// the resolver never reads it implicitly.
type Session struct {
	ID             string           `json:"id"`
	UserLocation   *Coordinate      `json:"user_location,omitempty"`
	Catalog        []Pharmacy       `json:"-"`
	RadiusKm       float64          `json:"radius_km"`
	LastResolution []RankedPharmacy `json:"results"`
	ResolvedAt     time.Time        `json:"resolved_at"`
}

// NewSession creates an empty session for the given radius
func NewSession(radiusKm float64) *Session {
	return &Session{
		ID:             uuid.NewString(),
		RadiusKm:       radiusKm,
		LastResolution: []RankedPharmacy{},
	}
}

// Located reports whether a user coordinate has been acquired.
func (s *Session) Located() bool {
	return s.UserLocation != nil
}
