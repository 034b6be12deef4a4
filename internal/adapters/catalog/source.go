package catalog

import (
	"context"
	"fmt"

	"github.com/zatekoja/pharmacy-locator/internal/domain/repositories"
	s3client "github.com/zatekoja/pharmacy-locator/internal/infrastructure/clients/s3"
	"github.com/zatekoja/pharmacy-locator/pkg/config"
)

// NewSource builds the file, http or s3 catalog source selected by cfg.
// The postgres source needs a database client and is built by the caller.
func NewSource(ctx context.Context, cfg *config.Config) (repositories.CatalogSource, error) {
	switch cfg.Catalog.Source {
	case config.CatalogSourceFile:
		return NewFileSource(cfg.Catalog.Path), nil
	case config.CatalogSourceHTTP:
		return NewHTTPSource(cfg.Catalog.URL, nil), nil
	case config.CatalogSourceS3:
		client, err := s3client.NewClient(ctx, &cfg.AWS)
		if err != nil {
			return nil, err
		}
		return NewS3Source(client, cfg.Catalog.S3Bucket, cfg.Catalog.S3Key), nil
	default:
		return nil, fmt.Errorf("catalog source %q is not a file, http or s3 source", cfg.Catalog.Source)
	}
}
