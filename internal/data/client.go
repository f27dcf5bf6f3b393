package data

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
	"github.com/tidwall/gjson"

	"github.com/dshills/chartflow/internal/chart"
	"github.com/dshills/chartflow/internal/logging"
	"github.com/dshills/chartflow/internal/metrics"
)

// Fetcher retrieves the data of one data type for a set of chart options.
type Fetcher interface {
	Fetch(ctx context.Context, dataType string, options map[string]any) (any, error)
}

// RequestIDHeader carries the id of a data request.
const RequestIDHeader = "X-Request-ID"

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithCacheTTL sets how long responses are reused. Zero disables caching.
func WithCacheTTL(ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.ttl = ttl
	}
}

// WithClientLogger sets the client logger.
func WithClientLogger(l *logging.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClientMetrics records every remote load.
func WithClientMetrics(m *metrics.Collectors) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// Client fetches data from the data API at base + "/" + dataType, passing
// the chart options as a JSON encoded "options" query parameter.
type Client struct {
	base    string
	http    *http.Client
	ttl     time.Duration
	cache   *ttlcache.Cache[string, any]
	logger  *logging.Logger
	metrics *metrics.Collectors
}

// NewClient creates a client for the API rooted at base.
func NewClient(base string, opts ...ClientOption) *Client {
	c := &Client{
		base:   strings.TrimRight(base, "/"),
		http:   &http.Client{Timeout: 30 * time.Second},
		ttl:    time.Minute,
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.ttl > 0 {
		c.cache = ttlcache.New[string, any](ttlcache.WithTTL[string, any](c.ttl))
	}
	return c
}

// Fetch returns the decoded JSON response for dataType and options. Nil
// options are sent as an empty object.
func (c *Client) Fetch(ctx context.Context, dataType string, options map[string]any) (result any, err error) {
	if options == nil {
		options = map[string]any{}
	}
	encoded, err := json.Marshal(options)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	key := dataType + "?" + string(encoded)

	if c.cache != nil {
		if item := c.cache.Get(key); item != nil {
			return item.Value(), nil
		}
	}

	if c.metrics != nil {
		done := c.metrics.LoadStarted(dataType)
		defer func() { done(err) }()
	}

	reqID := uuid.NewString()
	log := c.logger.WithFields(map[string]any{"request": reqID, "dataType": dataType})

	u := c.base + "/" + url.PathEscape(dataType) + "?" + url.Values{"options": {string(encoded)}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(RequestIDHeader, reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Error("data request failed: %v", err)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := http.StatusText(resp.StatusCode)
		if m := gjson.GetBytes(body, "errorMessage"); m.Exists() && m.String() != "" {
			msg = m.String()
		}
		apiErr := &APIError{Status: resp.StatusCode, Message: msg}
		log.Error("%v", apiErr)
		return nil, apiErr
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("data api: response for %s is not JSON", dataType)
	}

	result = gjson.ParseBytes(body).Value()
	log.Debug("loaded %d bytes in %s", len(body), time.Since(start))

	if c.cache != nil {
		c.cache.Set(key, result, ttlcache.DefaultTTL)
	}
	return result, nil
}

// Invalidate drops every cached response.
func (c *Client) Invalidate() {
	if c.cache != nil {
		c.cache.DeleteAll()
	}
}

// CachedLen returns the number of cached responses.
func (c *Client) CachedLen() int {
	if c.cache == nil {
		return 0
	}
	return c.cache.Len()
}

// SourceFetcher serves the GRAPH data type from a Source in process.
type SourceFetcher struct {
	Source Source
}

// Fetch implements Fetcher.
func (f SourceFetcher) Fetch(ctx context.Context, dataType string, _ map[string]any) (any, error) {
	if !strings.EqualFold(dataType, chart.DataGraph) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDataType, dataType)
	}
	return f.Source.Load(ctx)
}
