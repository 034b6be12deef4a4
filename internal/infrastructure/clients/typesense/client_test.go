package typesense

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/pharmacy-locator/pkg/config"
)

func TestPharmacySchema(t *testing.T) {
	schema := PharmacySchema("pharmacies")

	assert.Equal(t, "pharmacies", schema.Name)
	require.NotNil(t, schema.DefaultSortingField)
	assert.Equal(t, "position", *schema.DefaultSortingField)

	types := map[string]string{}
	for _, f := range schema.Fields {
		types[f.Name] = f.Type
	}
	assert.Equal(t, "geopoint", types["location"])
	assert.Equal(t, "bool", types["is_open"])
	assert.Equal(t, "int32", types["position"])
}

func TestClient_Integration(t *testing.T) {
	if os.Getenv("TEST_INTEGRATION") != "true" {
		t.Skip("Skipping integration test")
	}

	client, err := NewClient(&config.TypesenseConfig{
		URL:        "http://localhost:8108",
		APIKey:     "xyz",
		Collection: "pharmacies_it",
	})
	require.NoError(t, err)
	assert.NoError(t, client.InitSchema(context.Background()))
}
