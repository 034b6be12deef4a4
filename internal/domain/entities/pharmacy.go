package entities

import "math"

// HoursUnavailable is shown when the catalog carries no operating hours for a pharmacy.
const HoursUnavailable = "Hours not available"

// Coordinate represents a geographical position in decimal degrees
type Coordinate struct {
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
}

// Valid reports whether both components are finite and inside the WGS84 ranges.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) ||
		math.IsInf(c.Latitude, 0) || math.IsInf(c.Longitude, 0) {
		return false
	}
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// Pharmacy represents an on-duty pharmacy as published in the catalog
type Pharmacy struct {
	ID       string     `json:"id" db:"id"`
	Name     string     `json:"name" db:"name"`
	Address  string     `json:"address" db:"address"`
	Phone    string     `json:"phone" db:"phone"`
	Hours    string     `json:"hours" db:"hours"`
	IsOpen   bool       `json:"is_open" db:"is_open"`
	Location Coordinate `json:"location" db:"-"`
}

// HasHours reports whether the record carries real operating hours.
// IsOpen is only a default when it does not.
func (p Pharmacy) HasHours() bool {
	return p.Hours != "" && p.Hours != HoursUnavailable
}

// RankedPharmacy is a catalog entry annotated with its distance from the user.
type RankedPharmacy struct {
	Pharmacy
	DistanceKm float64 `json:"distance_km"`
}
