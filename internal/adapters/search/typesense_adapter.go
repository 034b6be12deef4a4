package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"github.com/zatekoja/pharmacy-locator/internal/domain/entities"
	"github.com/zatekoja/pharmacy-locator/internal/domain/repositories"
	tsclient "github.com/zatekoja/pharmacy-locator/internal/infrastructure/clients/typesense"
	apperrors "github.com/zatekoja/pharmacy-locator/pkg/errors"
)

const (
	importBatchSize = 200
	maxPerPage      = 250
)

// TypesenseAdapter is the geo pre-filter index for pharmacies.
// Results are candidates only; exact ranking stays with the resolver.
type TypesenseAdapter struct {
	client     *typesense.Client
	collection string
}

// NewTypesenseAdapter creates a new Typesense search adapter
func NewTypesenseAdapter(client *tsclient.Client) repositories.PharmacySearchRepository {
	return newTypesenseAdapter(client.Client(), client.Collection())
}

func newTypesenseAdapter(client *typesense.Client, collection string) *TypesenseAdapter {
	return &TypesenseAdapter{client: client, collection: collection}
}

// ReplaceAll drops the collection, recreates it and imports the snapshot
func (a *TypesenseAdapter) ReplaceAll(ctx context.Context, pharmacies []entities.Pharmacy) error {
	if err := a.Clear(ctx); err != nil {
		return err
	}
	if _, err := a.client.Collections().Create(ctx, tsclient.PharmacySchema(a.collection)); err != nil {
		return apperrors.NewExternalError("failed to create pharmacy collection", err)
	}
	if len(pharmacies) == 0 {
		return nil
	}

	documents := make([]interface{}, 0, len(pharmacies))
	for i, p := range pharmacies {
		if !p.Location.Valid() {
			continue
		}
		documents = append(documents, pharmacyDocument(i, p))
	}
	if len(documents) == 0 {
		return nil
	}

	responses, err := a.client.Collection(a.collection).Documents().Import(ctx, documents, &api.ImportDocumentsParams{
		BatchSize: pointer.Int(importBatchSize),
	})
	if err != nil {
		return apperrors.NewExternalError("failed to import pharmacies", err)
	}

	var failures []error
	for i, resp := range responses {
		if resp != nil && !resp.Success {
			failures = append(failures, fmt.Errorf("document %d: %s", i, resp.Error))
		}
	}
	if len(failures) > 0 {
		return apperrors.NewExternalError(fmt.Sprintf("%d pharmacies failed to index", len(failures)), errors.Join(failures...))
	}
	return nil
}

// Nearby returns every indexed pharmacy within radiusKm of center, in catalog
// order. Results are fetched pageSize hits at a time until Typesense's found
// count is exhausted.
func (a *TypesenseAdapter) Nearby(ctx context.Context, center entities.Coordinate, radiusKm float64, pageSize int) ([]entities.Pharmacy, error) {
	if pageSize <= 0 || pageSize > maxPerPage {
		pageSize = maxPerPage
	}

	pharmacies := make([]entities.Pharmacy, 0)
	for page := 1; ; page++ {
		params := &api.SearchCollectionParams{
			Q:        pointer.String("*"),
			QueryBy:  pointer.String("name"),
			FilterBy: pointer.String(geoFilter(center, radiusKm)),
			SortBy:   pointer.String("position:asc"),
			PerPage:  pointer.Int(pageSize),
			Page:     pointer.Int(page),
		}

		result, err := a.client.Collection(a.collection).Documents().Search(ctx, params)
		if err != nil {
			return nil, apperrors.NewExternalError("failed to search pharmacies", err)
		}

		found := 0
		if result.Found != nil {
			found = *result.Found
		}
		hits := 0
		if result.Hits != nil {
			hits = len(*result.Hits)
			for _, hit := range *result.Hits {
				if hit.Document == nil {
					continue
				}
				p, err := documentToPharmacy(*hit.Document)
				if err != nil {
					return nil, apperrors.NewExternalError("malformed pharmacy document", err)
				}
				pharmacies = append(pharmacies, p)
			}
		}

		if page*pageSize >= found {
			return pharmacies, nil
		}
		if hits == 0 {
			return nil, apperrors.NewExternalError(
				fmt.Sprintf("search index returned %d of %d pharmacies", len(pharmacies), found), nil)
		}
	}
}

// Clear drops the pharmacy collection. A missing collection is not an error.
func (a *TypesenseAdapter) Clear(ctx context.Context) error {
	_, err := a.client.Collection(a.collection).Delete(ctx)
	if err != nil {
		var httpErr *typesense.HTTPError
		if errors.As(err, &httpErr) && httpErr.Status == http.StatusNotFound {
			return nil
		}
		return apperrors.NewExternalError("failed to drop pharmacy collection", err)
	}
	return nil
}

func geoFilter(center entities.Coordinate, radiusKm float64) string {
	return fmt.Sprintf("location:(%f, %f, %f km)", center.Latitude, center.Longitude, radiusKm)
}

func pharmacyDocument(position int, p entities.Pharmacy) map[string]interface{} {
	doc := map[string]interface{}{
		"id":       fmt.Sprintf("%d", position),
		"name":     p.Name,
		"address":  p.Address,
		"phone":    p.Phone,
		"is_open":  p.IsOpen,
		"location": []float64{p.Location.Latitude, p.Location.Longitude},
		"position": position,
		"ref":      p.ID,
	}
	if p.HasHours() {
		doc["hours"] = p.Hours
	}
	return doc
}

func documentToPharmacy(doc map[string]interface{}) (entities.Pharmacy, error) {
	loc, ok := doc["location"].([]interface{})
	if !ok || len(loc) != 2 {
		return entities.Pharmacy{}, fmt.Errorf("document %v has no location", doc["id"])
	}
	lat, okLat := loc[0].(float64)
	lon, okLon := loc[1].(float64)
	if !okLat || !okLon {
		return entities.Pharmacy{}, fmt.Errorf("document %v has a non-numeric location", doc["id"])
	}

	p := entities.Pharmacy{
		Hours:    entities.HoursUnavailable,
		IsOpen:   true,
		Location: entities.Coordinate{Latitude: lat, Longitude: lon},
	}
	p.ID, _ = doc["ref"].(string)
	p.Name, _ = doc["name"].(string)
	p.Address, _ = doc["address"].(string)
	p.Phone, _ = doc["phone"].(string)
	if hours, ok := doc["hours"].(string); ok && hours != "" {
		p.Hours = hours
	}
	if isOpen, ok := doc["is_open"].(bool); ok {
		p.IsOpen = isOpen
	}
	return p, nil
}
