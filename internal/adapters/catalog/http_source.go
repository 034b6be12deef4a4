package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/zatekoja/pharmacy-locator/internal/domain/entities"
	"github.com/zatekoja/pharmacy-locator/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/pharmacy-locator/pkg/errors"
	"github.com/zatekoja/pharmacy-locator/pkg/retry"
)

const maxCatalogBytes = 16 << 20

// HTTPSource downloads the catalog snapshot from a URL
type HTTPSource struct {
	url         string
	client      *http.Client
	retryConfig retry.Config
	maxBytes    int64
}

// NewHTTPSource creates a new HTTP catalog source
func NewHTTPSource(url string, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPSource{
		url:         url,
		client:      client,
		retryConfig: retry.FetchConfig(),
		maxBytes:    maxCatalogBytes,
	}
}

// WithRetryConfig overrides the download retry schedule
func (s *HTTPSource) WithRetryConfig(cfg retry.Config) *HTTPSource {
	s.retryConfig = cfg
	return s
}

// Load fetches the catalog. 5xx responses and transport errors are retried; 4xx are not.
func (s *HTTPSource) Load(ctx context.Context) ([]entities.Pharmacy, error) {
	logger := observability.LoggerFromContext(ctx)
	var body []byte

	err := retry.DoWithLog(ctx, s.retryConfig, "catalog download", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
		if err != nil {
			return retry.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return retry.Permanent(fmt.Errorf("catalog server returned %s", resp.Status))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("catalog server returned %s", resp.Status)
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
		if err != nil {
			return err
		}
		if int64(len(body)) > s.maxBytes {
			return retry.Permanent(fmt.Errorf("catalog exceeds %d bytes", s.maxBytes))
		}
		return nil
	}, func(attempt int, err error, nextDelay time.Duration) {
		logger.Warn().Err(err).Int("attempt", attempt).Dur("next_delay", nextDelay).Str("url", s.url).
			Msg("catalog download failed, retrying")
	})
	if err != nil {
		return nil, apperrors.NewExternalError("failed to download catalog", err)
	}

	return Decode(ctx, bytes.NewReader(body), s.url)
}
