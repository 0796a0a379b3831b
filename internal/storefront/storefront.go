package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/MichalMitros/steam-deals-digest/internal/throttle"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

// Throttle classes for the storefront's endpoints. The storefront rate-limits
// them independently.
const (
	ClassDetails = throttle.Class("store-appdetails")
	ClassReviews = throttle.Class("store-appreviews")
)

// Doer executes throttled http requests.
type Doer interface {
	Do(ctx context.Context, class throttle.Class, req *http.Request) (*http.Response, error)
}

// Option is custom configuration of Client.
type Option func(c *Client)

// Client calls the storefront's public metadata and review endpoints.
// Per-item results are cached for the Client's lifetime, so repeated ids
// never hit the network twice.
type Client struct {
	http     Doer
	baseURL  string
	region   string
	language string
	workers  int

	detailsCache *cache.Cache
	reviewsCache *cache.Cache
	logger       zerolog.Logger
}

// NewClient returns new Client for the storefront at baseURL, localized to
// region (price country code) and language.
func NewClient(httpDoer Doer, baseURL, region, language string, ops ...Option) *Client {
	cli := &Client{
		http:         httpDoer,
		baseURL:      baseURL,
		region:       region,
		language:     language,
		workers:      2,
		detailsCache: cache.New(cache.NoExpiration, 0),
		reviewsCache: cache.New(cache.NoExpiration, 0),
		logger:       zerolog.Nop(),
	}

	for _, op := range ops {
		op(cli)
	}

	return cli
}

// getJSON issues a throttled GET and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, class throttle.Class, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("can't build http request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(ctx, class, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("can't decode response: %w", err)
	}

	return nil
}

// WithLogger sets Client's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithWorkers sets the review-count concurrency limit.
func WithWorkers(workers int) Option {
	return func(c *Client) {
		c.workers = workers
	}
}
