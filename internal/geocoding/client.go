// Package geocoding resolves place names to coordinates through a
// Nominatim-compatible search endpoint.
package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/alexivanou/city-api/internal/config"
	"github.com/alexivanou/city-api/internal/metrics"
	"github.com/alexivanou/city-api/internal/model"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 10 * time.Second

	// httpMaxIdleConns is the number of keep-alive connections kept to the provider.
	httpMaxIdleConns    = 10
	httpIdleConnTimeout = 90 * time.Second
)

var (
	// ErrNotFound is returned when the provider has no match for the name.
	ErrNotFound = errors.New("geocoding: no match found")
	// ErrUnavailable is returned on timeout, transport or decoding failure.
	ErrUnavailable = errors.New("geocoding: provider unavailable")
)

// Resolver translates a place name into coordinates
type Resolver interface {
	Resolve(ctx context.Context, name string) (model.Coordinates, error)
}

// Client talks to the geocoding provider over one long-lived HTTP client.
// It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	transport  *http.Transport
	baseURL    string
	userAgent  string
	language   string
	timeout    time.Duration
	limiter    *rate.Limiter
	logger     *zap.Logger
	closed     atomic.Bool
}

type coordinate float64

func (c *coordinate) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return fmt.Errorf("parse coordinate %q: %w", text, err)
		}
		*c = coordinate(value)
		return nil
	}

	var value float64
	if err := json.Unmarshal(data, &value); err == nil {
		*c = coordinate(value)
		return nil
	}

	return fmt.Errorf("coordinate must be a string or number")
}

// Pointers tell a missing or null field apart from a zero coordinate.
type searchResult struct {
	Lat *coordinate `json:"lat"`
	Lon *coordinate `json:"lon"`
}

// NewClient creates a geocoding client. The caller owns it and must call
// Close at shutdown.
func NewClient(cfg config.GeocodingConfig, logger *zap.Logger) *Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        httpMaxIdleConns,
		MaxIdleConnsPerHost: httpMaxIdleConns,
		IdleConnTimeout:     httpIdleConnTimeout,
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return &Client{
		httpClient: &http.Client{Transport: transport},
		transport:  transport,
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		language:   cfg.Language,
		timeout:    timeout,
		limiter:    limiter,
		logger:     logger,
	}
}

// Resolve returns the provider's best match for name. Any failure other than
// an empty result is reported as ErrUnavailable.
func (c *Client) Resolve(ctx context.Context, name string) (model.Coordinates, error) {
	start := time.Now()
	coords, err := c.resolve(ctx, name)
	metrics.GeocodingDurationMs.Observe(float64(time.Since(start)) / float64(time.Millisecond))

	switch {
	case err == nil:
		metrics.GeocodingRequestsTotal.WithLabelValues(metrics.OutcomeFound).Inc()
		c.logger.Info("Found coordinates",
			zap.String("name", name),
			zap.Float64("latitude", coords.Latitude),
			zap.Float64("longitude", coords.Longitude),
		)
	case errors.Is(err, ErrNotFound):
		metrics.GeocodingRequestsTotal.WithLabelValues(metrics.OutcomeNotFound).Inc()
		c.logger.Info("No coordinates found", zap.String("name", name))
	default:
		metrics.GeocodingRequestsTotal.WithLabelValues(metrics.OutcomeUnavailable).Inc()
		c.logger.Error("Geocoding request failed", zap.String("name", name), zap.Error(err))
	}
	return coords, err
}

func (c *Client) resolve(ctx context.Context, name string) (model.Coordinates, error) {
	if c.closed.Load() {
		return model.Coordinates{}, fmt.Errorf("%w: client closed", ErrUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return model.Coordinates{}, fmt.Errorf("%w: rate limiter: %v", ErrUnavailable, err)
		}
	}

	query := url.Values{}
	query.Set("q", name)
	query.Set("format", "json")
	query.Set("limit", "1")
	if c.language != "" {
		query.Set("accept-language", c.language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return model.Coordinates{}, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return model.Coordinates{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return model.Coordinates{}, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, res.StatusCode)
	}

	var payload []searchResult
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return model.Coordinates{}, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if len(payload) == 0 {
		return model.Coordinates{}, ErrNotFound
	}

	first := payload[0]
	if first.Lat == nil || first.Lon == nil {
		return model.Coordinates{}, fmt.Errorf("%w: result missing lat/lon", ErrUnavailable)
	}

	return model.Coordinates{
		Latitude:  float64(*first.Lat),
		Longitude: float64(*first.Lon),
	}, nil
}

// Close releases pooled connections. Subsequent Resolve calls fail with
// ErrUnavailable.
func (c *Client) Close() {
	if c.closed.Swap(true) {
		return
	}
	c.transport.CloseIdleConnections()
}
