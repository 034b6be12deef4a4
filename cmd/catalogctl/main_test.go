package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/pharmacy-locator/internal/adapters/catalog"
	"github.com/zatekoja/pharmacy-locator/internal/adapters/database"
	"github.com/zatekoja/pharmacy-locator/internal/domain/entities"
	"github.com/zatekoja/pharmacy-locator/internal/infrastructure/clients/postgres"
)

func TestParseInterval(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		env     string
		want    time.Duration
		wantErr bool
	}{
		{"single run", "", "", 0, false},
		{"flag", "6h", "", 6 * time.Hour, false},
		{"env fallback", "", "24h", 24 * time.Hour, false},
		{"flag wins", "30m", "24h", 30 * time.Minute, false},
		{"trimmed", " 1h ", "", time.Hour, false},
		{"invalid", "daily", "", 0, true},
		{"negative", "-1h", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseInterval(tt.flag, tt.env)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newMockStore(t *testing.T) (*postgres.Client, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return postgres.NewClientFromDB(db), mock
}

func TestExportCatalog(t *testing.T) {
	client, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT .* FROM "pharmacies" ORDER BY "position" ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "address", "phone", "hours", "is_open", "latitude", "longitude"}).
			AddRow("1", "Pharmacie Saint Joseph", "Rue de la Paix, Lomé", "+228 22 21 20 19", "8:00 AM - 8:00 PM", true, 6.1304, 1.2158).
			AddRow("5", "Pharmacie de la Caisse", "Rue des Banques, Lomé", "+228 22 21 28 29", "", false, 6.1320, 1.2180))

	var buf bytes.Buffer
	count, err := exportCatalog(context.Background(), database.NewPharmacyAdapter(client), &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())

	out := buf.String()
	assert.Contains(t, out, `"id": "1"`)
	assert.Contains(t, out, `"isOpen": false`)
	assert.NotContains(t, out, entities.HoursUnavailable)

	decoded, err := catalog.Decode(context.Background(), &buf, "export")
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, "Pharmacie Saint Joseph", decoded[0].Name)
	assert.Equal(t, "8:00 AM - 8:00 PM", decoded[0].Hours)
	assert.Equal(t, entities.Coordinate{Latitude: 6.1320, Longitude: 1.2180}, decoded[1].Location)
	assert.Equal(t, entities.HoursUnavailable, decoded[1].Hours)
	assert.False(t, decoded[1].IsOpen)
}

func TestExportCatalog_StoreError(t *testing.T) {
	client, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT .* FROM "pharmacies"`).WillReturnError(errors.New("connection reset"))

	var buf bytes.Buffer
	_, err := exportCatalog(context.Background(), database.NewPharmacyAdapter(client), &buf)
	require.Error(t, err)
	assert.Empty(t, buf.String())
}
