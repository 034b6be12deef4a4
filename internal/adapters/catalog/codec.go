package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/zatekoja/pharmacy-locator/internal/domain/entities"
	"github.com/zatekoja/pharmacy-locator/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/pharmacy-locator/pkg/errors"
)

// record is one pharmacy as published in the catalog JSON array.
type record struct {
	ID        recordID `json:"id"`
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	Phone     string   `json:"phone"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Hours     *string  `json:"hours,omitempty"`
	IsOpen    *bool    `json:"isOpen,omitempty"`
}

// recordID accepts both "7" and 7.
type recordID string

func (id *recordID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = recordID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = recordID(n.String())
	return nil
}

// Decode reads a catalog snapshot, applying defaults for missing hours and
// open status. Records without coordinates are dropped and logged. Duplicate
// ids are kept and logged.
func Decode(ctx context.Context, r io.Reader, source string) ([]entities.Pharmacy, error) {
	var records []record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("malformed catalog from %s: %v", source, err))
	}

	logger := observability.LoggerFromContext(ctx).With().Str("source", source).Logger()
	pharmacies := make([]entities.Pharmacy, 0, len(records))
	seen := make(map[string]int, len(records))

	for i, rec := range records {
		if rec.Latitude == nil || rec.Longitude == nil {
			logger.Warn().Int("index", i).Str("pharmacy_id", string(rec.ID)).Str("name", rec.Name).
				Msg("skipping catalog record without coordinates")
			continue
		}

		id := string(rec.ID)
		if prev, dup := seen[id]; dup {
			logger.Warn().Str("pharmacy_id", id).Int("first_index", prev).Int("index", i).
				Msg("duplicate pharmacy id in catalog")
		} else {
			seen[id] = i
		}

		p := entities.Pharmacy{
			ID:       id,
			Name:     rec.Name,
			Address:  rec.Address,
			Phone:    rec.Phone,
			Hours:    entities.HoursUnavailable,
			IsOpen:   true,
			Location: entities.Coordinate{Latitude: *rec.Latitude, Longitude: *rec.Longitude},
		}
		if rec.Hours != nil && strings.TrimSpace(*rec.Hours) != "" {
			p.Hours = *rec.Hours
		}
		if rec.IsOpen != nil {
			p.IsOpen = *rec.IsOpen
		}
		pharmacies = append(pharmacies, p)
	}

	logger.Debug().Int("records", len(records)).Int("loaded", len(pharmacies)).Msg("decoded catalog")
	return pharmacies, nil
}

// Encode writes pharmacies in the catalog wire format. The hours placeholder
// is written as an absent field.
func Encode(w io.Writer, pharmacies []entities.Pharmacy) error {
	records := make([]record, len(pharmacies))
	for i, p := range pharmacies {
		lat, lon, isOpen := p.Location.Latitude, p.Location.Longitude, p.IsOpen
		records[i] = record{
			ID:        recordID(p.ID),
			Name:      p.Name,
			Address:   p.Address,
			Phone:     p.Phone,
			Latitude:  &lat,
			Longitude: &lon,
			IsOpen:    &isOpen,
		}
		if p.HasHours() {
			hours := p.Hours
			records[i].Hours = &hours
		}
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return apperrors.NewInternalError("failed to encode catalog", err)
	}
	return nil
}
