package typesense

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"github.com/zatekoja/pharmacy-locator/pkg/config"
	"github.com/zatekoja/pharmacy-locator/pkg/retry"
)

// Client represents a Typesense client
type Client struct {
	client     *typesense.Client
	collection string
}

// NewClient creates a new Typesense client with exponential backoff retry
func NewClient(cfg *config.TypesenseConfig) (*Client, error) {
	client := typesense.NewClient(
		typesense.WithServer(cfg.URL),
		typesense.WithAPIKey(cfg.APIKey),
		typesense.WithConnectionTimeout(5*time.Second),
	)

	err := retry.DoWithLog(
		context.Background(),
		retry.DefaultConfig(),
		"Typesense",
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_, err := client.Health(ctx, 2*time.Second)
			return err
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("next_delay", nextDelay).Msg("Typesense connection attempt failed")
		},
	)

	if err != nil {
		return nil, fmt.Errorf("failed to connect to Typesense after retries: %w", err)
	}

	collection := cfg.Collection
	if collection == "" {
		collection = "pharmacies"
	}

	log.Info().Str("collection", collection).Msg("Successfully connected to Typesense")
	return &Client{client: client, collection: collection}, nil
}

// Client returns the underlying Typesense client
func (c *Client) Client() *typesense.Client {
	return c.client
}

// Collection returns the pharmacy collection name
func (c *Client) Collection() string {
	return c.collection
}

// PharmacySchema describes the pharmacy collection
func PharmacySchema(name string) *api.CollectionSchema {
	return &api.CollectionSchema{
		Name: name,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "name", Type: "string"},
			{Name: "address", Type: "string", Optional: pointer.True()},
			{Name: "phone", Type: "string", Optional: pointer.True(), Index: pointer.False()},
			{Name: "hours", Type: "string", Optional: pointer.True(), Index: pointer.False()},
			{Name: "is_open", Type: "bool", Facet: pointer.True()},
			{Name: "location", Type: "geopoint"},
			{Name: "position", Type: "int32"},
			{Name: "ref", Type: "string", Optional: pointer.True(), Index: pointer.False()},
		},
		DefaultSortingField: pointer.String("position"),
	}
}

// InitSchema ensures the pharmacy collection exists
func (c *Client) InitSchema(ctx context.Context) error {
	collections, err := c.client.Collections().Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve collections: %w", err)
	}

	for _, col := range collections {
		if col.Name == c.collection {
			log.Debug().Str("collection", c.collection).Msg("Typesense collection already exists")
			return nil
		}
	}

	if _, err := c.client.Collections().Create(ctx, PharmacySchema(c.collection)); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Info().Str("collection", c.collection).Msg("Created Typesense collection")
	return nil
}
