package database

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/zatekoja/pharmacy-locator/internal/domain/entities"
	"github.com/zatekoja/pharmacy-locator/internal/domain/repositories"
	"github.com/zatekoja/pharmacy-locator/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/pharmacy-locator/pkg/errors"
)

const (
	pharmaciesTable = "pharmacies"
	insertBatchSize = 500
)

// PharmacyAdapter implements PharmacyRepository on PostgreSQL
type PharmacyAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPharmacyAdapter creates a new pharmacy adapter
func NewPharmacyAdapter(client *postgres.Client) repositories.PharmacyRepository {
	return &PharmacyAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Load returns the stored catalog in its original order
func (a *PharmacyAdapter) Load(ctx context.Context) ([]entities.Pharmacy, error) {
	query, args, err := a.db.From(pharmaciesTable).
		Select("id", "name", "address", "phone", "hours", "is_open", "latitude", "longitude").
		Order(goqu.C("position").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to list pharmacies", err)
	}
	defer rows.Close()

	pharmacies := make([]entities.Pharmacy, 0)
	for rows.Next() {
		var p entities.Pharmacy
		var hours sql.NullString
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Address,
			&p.Phone,
			&hours,
			&p.IsOpen,
			&p.Location.Latitude,
			&p.Location.Longitude,
		); err != nil {
			return nil, apperrors.NewInternalError("failed to scan pharmacy", err)
		}
		p.Hours = entities.HoursUnavailable
		if hours.Valid && hours.String != "" {
			p.Hours = hours.String
		}
		pharmacies = append(pharmacies, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewExternalError("failed to iterate pharmacies", err)
	}

	return pharmacies, nil
}

// ReplaceAll swaps the stored catalog for pharmacies in a single transaction
func (a *PharmacyAdapter) ReplaceAll(ctx context.Context, pharmacies []entities.Pharmacy) error {
	deleteQuery, _, err := a.db.Delete(pharmaciesTable).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	inserts := make([]string, 0, len(pharmacies)/insertBatchSize+1)
	for start := 0; start < len(pharmacies); start += insertBatchSize {
		end := min(start+insertBatchSize, len(pharmacies))
		rows := make([]interface{}, 0, end-start)
		for i, p := range pharmacies[start:end] {
			rows = append(rows, pharmacyRecord(start+i, p))
		}
		query, _, err := a.db.Insert(pharmaciesTable).Rows(rows...).ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build insert query", err)
		}
		inserts = append(inserts, query)
	}

	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewExternalError("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, deleteQuery); err != nil {
		return apperrors.NewExternalError("failed to clear pharmacies", err)
	}
	for _, query := range inserts {
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return apperrors.NewExternalError("failed to insert pharmacies", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewExternalError("failed to commit catalog replacement", err)
	}
	return nil
}

// Count returns the number of stored pharmacies
func (a *PharmacyAdapter) Count(ctx context.Context) (int, error) {
	query, args, err := a.db.From(pharmaciesTable).Select(goqu.COUNT("*")).ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build query", err)
	}

	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.NewExternalError("failed to count pharmacies", err)
	}
	return count, nil
}

func pharmacyRecord(position int, p entities.Pharmacy) goqu.Record {
	hours := ""
	if p.HasHours() {
		hours = p.Hours
	}
	return goqu.Record{
		"position":  position,
		"id":        p.ID,
		"name":      p.Name,
		"address":   p.Address,
		"phone":     p.Phone,
		"hours":     hours,
		"is_open":   p.IsOpen,
		"latitude":  p.Location.Latitude,
		"longitude": p.Location.Longitude,
	}
}
