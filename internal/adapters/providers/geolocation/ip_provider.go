package geolocation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/zatekoja/pharmacy-locator/internal/domain/entities"
	"github.com/zatekoja/pharmacy-locator/internal/domain/providers"
	"github.com/zatekoja/pharmacy-locator/internal/infrastructure/observability"
)

const (
	defaultIPEndpoint  = "http://ip-api.com/json"
	defaultHTTPTimeout = 8 * time.Second
	ipLookupCacheKey   = "geo:ip:self"
	ipLookupCacheTTL   = 10 * 60
)

// IPProvider approximates the user's position from their public IP address
// using an ip-api.com compatible endpoint.
type IPProvider struct {
	endpoint   string
	httpClient *http.Client
	cache      providers.CacheProvider
}

type ipLookupResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
	City    string   `json:"city"`
	Country string   `json:"country"`
}

// NewIPProvider creates a new IP geolocation provider. cache and httpClient may be nil.
func NewIPProvider(endpoint string, httpClient *http.Client, cache providers.CacheProvider) providers.GeolocationProvider {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = defaultIPEndpoint
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &IPProvider{
		endpoint:   endpoint,
		httpClient: httpClient,
		cache:      cache,
	}
}

// CurrentPosition performs a single lookup. Every failure is reported as
// ErrGeolocationDenied since the capability exists but acquisition failed.
func (p *IPProvider) CurrentPosition(ctx context.Context) (entities.Coordinate, error) {
	logger := observability.LoggerFromContext(ctx)

	if p.cache != nil {
		if cached, err := p.cache.Get(ctx, ipLookupCacheKey); err == nil {
			var position entities.Coordinate
			if err := json.Unmarshal(cached, &position); err == nil && position.Valid() {
				return position, nil
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, nil)
	if err != nil {
		return entities.Coordinate{}, fmt.Errorf("%w: %v", providers.ErrGeolocationDenied, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return entities.Coordinate{}, fmt.Errorf("%w: lookup failed: %v", providers.ErrGeolocationDenied, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return entities.Coordinate{}, fmt.Errorf("%w: lookup refused with %s", providers.ErrGeolocationDenied, resp.Status)
	case resp.StatusCode != http.StatusOK:
		return entities.Coordinate{}, fmt.Errorf("%w: lookup returned %s", providers.ErrGeolocationDenied, resp.Status)
	}

	var body ipLookupResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err != nil {
		return entities.Coordinate{}, fmt.Errorf("%w: malformed lookup response: %v", providers.ErrGeolocationDenied, err)
	}
	if body.Status == "fail" {
		return entities.Coordinate{}, fmt.Errorf("%w: %s", providers.ErrGeolocationDenied, body.Message)
	}
	if body.Lat == nil || body.Lon == nil {
		return entities.Coordinate{}, fmt.Errorf("%w: lookup response has no coordinates", providers.ErrGeolocationDenied)
	}

	position := entities.Coordinate{Latitude: *body.Lat, Longitude: *body.Lon}
	if !position.Valid() {
		return entities.Coordinate{}, fmt.Errorf("%w: lookup returned out-of-range coordinates", providers.ErrGeolocationDenied)
	}

	logger.Debug().Str("city", body.City).Str("country", body.Country).Msg("resolved position from IP")

	if p.cache != nil {
		if data, err := json.Marshal(position); err == nil {
			if err := p.cache.Set(ctx, ipLookupCacheKey, data, ipLookupCacheTTL); err != nil {
				logger.Warn().Err(err).Msg("failed to cache IP position")
			}
		}
	}
	return position, nil
}
