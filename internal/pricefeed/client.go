// Package pricefeed provides the current Bitcoin price in BRL.
//
// The live quote comes from a public HTTP API and is bounded by a short
// timeout. Any failure yields the configured fallback price, so callers never
// block on or fail because of the upstream source.
package pricefeed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultURL is the CoinGecko simple-price endpoint for BTC in BRL.
	DefaultURL = "https://api.coingecko.com/api/v3/simple/price?ids=bitcoin&vs_currencies=brl"

	// DefaultTimeout bounds a single upstream request.
	DefaultTimeout = 3 * time.Second

	// DefaultCacheTTL is how long a live quote is reused.
	DefaultCacheTTL = time.Minute

	// DefaultFailureTTL is how long the fallback is served after an upstream
	// failure before the upstream is tried again.
	DefaultFailureTTL = 15 * time.Second

	// FallbackPriceBRL is used when the upstream source is unavailable.
	// Reference value; update alongside the mining network constants.
	FallbackPriceBRL = 535345.02

	// maxBodyBytes caps the upstream response size.
	maxBodyBytes = 64 << 10
)

// Source records how a quote was obtained.
type Source string

const (
	SourceLive     Source = "live"
	SourceCached   Source = "cached"
	SourceFallback Source = "fallback"
	SourceStatic   Source = "static"
)

// Quote is a BTC price in BRL with its provenance.
type Quote struct {
	PriceBRL  float64   `json:"price_brl"`
	Source    Source    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Quoter returns the current BTC price. Implementations must not fail:
// unavailable sources degrade to a fallback quote.
type Quoter interface {
	Quote(ctx context.Context) Quote
}

// Observer is notified of the source of every quote served.
type Observer interface {
	ObservePriceQuote(source string)
}

// Config configures the live client.
type Config struct {
	URL              string
	Timeout          time.Duration
	FallbackPriceBRL float64

	// CacheTTL of zero disables caching.
	CacheTTL time.Duration

	// FailureTTL of zero retries the upstream on every call after a failure.
	FailureTTL time.Duration
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		URL:              DefaultURL,
		Timeout:          DefaultTimeout,
		FallbackPriceBRL: FallbackPriceBRL,
		CacheTTL:         DefaultCacheTTL,
		FailureTTL:       DefaultFailureTTL,
	}
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for upstream requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithObserver registers an observer for served quotes.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// Client fetches live quotes with a timeout, a short cache and a fallback.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     zerolog.Logger
	observer   Observer
	now        func() time.Time

	group singleflight.Group

	mu          sync.Mutex
	cached      Quote
	failedUntil time.Time
}

// NewClient creates a live price client. Zero-valued config fields take
// their defaults.
func NewClient(cfg Config, logger zerolog.Logger, opts ...Option) *Client {
	defaults := DefaultConfig()
	if cfg.URL == "" {
		cfg.URL = defaults.URL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.FallbackPriceBRL <= 0 {
		cfg.FallbackPriceBRL = defaults.FallbackPriceBRL
	}

	c := &Client{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Quote returns a cached quote when fresh, otherwise fetches a live one.
// On any upstream failure it returns the fallback price, and keeps doing so
// for FailureTTL without contacting the upstream. Concurrent misses share a
// single upstream request.
func (c *Client) Quote(ctx context.Context) Quote {
	if q, ok := c.fromCache(); ok {
		c.observe(q.Source)
		return q
	}

	v, _, _ := c.group.Do(fetchKey, func() (any, error) {
		return c.refresh(ctx), nil
	})
	q := v.(Quote)
	c.observe(q.Source)
	return q
}

// fetchKey is the singleflight key of the upstream request.
const fetchKey = "quote"

// refresh performs one upstream request and records its outcome.
func (c *Client) refresh(ctx context.Context) Quote {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := c.now()
	price, err := c.fetch(ctx)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("url", c.cfg.URL).
			Float64("fallback_brl", c.cfg.FallbackPriceBRL).
			Dur("retry_after", c.cfg.FailureTTL).
			Msg("price feed unavailable, using fallback")
		q := c.fallback()
		c.markFailed(q.FetchedAt)
		return q
	}

	q := Quote{PriceBRL: price, Source: SourceLive, FetchedAt: c.now()}
	c.store(q)
	c.logger.Debug().
		Float64("price_brl", price).
		Int64("duration_ms", c.now().Sub(start).Milliseconds()).
		Msg("price quote fetched")
	return q
}

func (c *Client) fallback() Quote {
	return Quote{PriceBRL: c.cfg.FallbackPriceBRL, Source: SourceFallback, FetchedAt: c.now()}
}

func (c *Client) fromCache() (Quote, bool) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if now.Before(c.failedUntil) {
		return c.fallback(), true
	}
	if c.cfg.CacheTTL <= 0 || c.cached.Source == "" || now.Sub(c.cached.FetchedAt) >= c.cfg.CacheTTL {
		return Quote{}, false
	}
	q := c.cached
	q.Source = SourceCached
	return q, true
}

func (c *Client) store(q Quote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failedUntil = time.Time{}
	if c.cfg.CacheTTL > 0 {
		c.cached = q
	}
}

func (c *Client) markFailed(at time.Time) {
	if c.cfg.FailureTTL <= 0 {
		return
	}
	c.mu.Lock()
	c.failedUntil = at.Add(c.cfg.FailureTTL)
	c.mu.Unlock()
}

func (c *Client) observe(source Source) {
	if c.observer != nil {
		c.observer.ObservePriceQuote(string(source))
	}
}

// simplePriceResponse matches {"bitcoin": {"brl": 535345.02}}.
type simplePriceResponse map[string]map[string]float64

func (c *Client) fetch(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Error().Err(err).Msg("failed to close price feed response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("bad status: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, fmt.Errorf("read body: %w", err)
	}

	var payload simplePriceResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, fmt.Errorf("decode body: %w", err)
	}
	price, ok := payload["bitcoin"]["brl"]
	if !ok {
		return 0, fmt.Errorf("response has no bitcoin/brl price")
	}
	if price <= 0 {
		return 0, fmt.Errorf("invalid price %v", price)
	}
	return price, nil
}

// Static always returns the same price. Used for offline runs and tests.
type Static struct {
	PriceBRL float64
}

// Quote implements Quoter.
func (s Static) Quote(context.Context) Quote {
	return Quote{PriceBRL: s.PriceBRL, Source: SourceStatic, FetchedAt: time.Now()}
}
