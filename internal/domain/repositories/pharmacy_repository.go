package repositories

import (
	"context"

	"github.com/zatekoja/pharmacy-locator/internal/domain/entities"
)

// CatalogSource yields a fully loaded pharmacy catalog snapshot
type CatalogSource interface {
	// Load returns the current catalog in source order
	Load(ctx context.Context) ([]entities.Pharmacy, error)
}

// PharmacyRepository defines persistence for the pharmacy catalog
type PharmacyRepository interface {
	CatalogSource

	// ReplaceAll swaps the stored catalog for a new snapshot
	ReplaceAll(ctx context.Context, pharmacies []entities.Pharmacy) error

	// Count returns the number of stored pharmacies
	Count(ctx context.Context) (int, error)
}

// PharmacySearchRepository defines the geo pre-filter index (e.g. Typesense)
type PharmacySearchRepository interface {
	// ReplaceAll rebuilds the index from a catalog snapshot
	ReplaceAll(ctx context.Context, pharmacies []entities.Pharmacy) error

	// Nearby returns every candidate within radiusKm of center in catalog order;
	// callers still rank them
	Nearby(ctx context.Context, center entities.Coordinate, radiusKm float64, pageSize int) ([]entities.Pharmacy, error)

	// Clear removes every indexed pharmacy
	Clear(ctx context.Context) error
}
