package services

import (
	"cmp"
	"math"
	"slices"

	"github.com/zatekoja/pharmacy-locator/internal/domain/entities"
	"github.com/zatekoja/pharmacy-locator/internal/domain/geo"
)

// DefaultRadiusKm is the search radius applied to every lookup.
const DefaultRadiusKm = 40.0

// SkipObserver is told about catalog entries dropped for unusable coordinates.
type SkipObserver func(p entities.Pharmacy)

// ProximityResolver ranks catalog entries by distance from the user.
type ProximityResolver struct {
	onSkip SkipObserver
}

// NewProximityResolver creates a resolver. onSkip may be nil.
func NewProximityResolver(onSkip SkipObserver) *ProximityResolver {
	return &ProximityResolver{onSkip: onSkip}
}

// FindNearby returns the pharmacies within radiusKm of user, nearest first.
//
// The bound is inclusive. Entries at equal distance keep their catalog
// order. The catalog is not modified. A negative or NaN radius matches
// nothing. Entries whose coordinate is not valid are skipped.
func (r *ProximityResolver) FindNearby(catalog []entities.Pharmacy, user entities.Coordinate, radiusKm float64) []entities.RankedPharmacy {
	results := make([]entities.RankedPharmacy, 0, len(catalog))
	if math.IsNaN(radiusKm) || radiusKm < 0 {
		return results
	}

	for _, p := range catalog {
		if !p.Location.Valid() {
			if r.onSkip != nil {
				r.onSkip(p)
			}
			continue
		}

		d := geo.DistanceKm(user, p.Location)
		if d <= radiusKm {
			results = append(results, entities.RankedPharmacy{Pharmacy: p, DistanceKm: d})
		}
	}

	slices.SortStableFunc(results, func(a, b entities.RankedPharmacy) int {
		return cmp.Compare(a.DistanceKm, b.DistanceKm)
	})
	return results
}

// FindNearby ranks catalog against user without a skip observer.
func FindNearby(catalog []entities.Pharmacy, user entities.Coordinate, radiusKm float64) []entities.RankedPharmacy {
	return NewProximityResolver(nil).FindNearby(catalog, user, radiusKm)
}
