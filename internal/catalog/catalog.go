package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/MichalMitros/steam-deals-digest/internal/throttle"
	"github.com/rs/zerolog"
)

// Throttle classes for the catalog service's endpoints.
const (
	ClassDeals  = throttle.Class("catalog-deals")
	ClassLookup = throttle.Class("catalog-lookup")
)

// fallbackShopID is Steam's well-known shop id, used when the shops listing
// doesn't contain it.
const fallbackShopID = 61

// Doer executes throttled http requests.
type Doer interface {
	Do(ctx context.Context, class throttle.Class, req *http.Request) (*http.Response, error)
}

// Option is custom configuration of Client.
type Option func(c *Client)

// Client calls the deal-aggregation catalog service.
type Client struct {
	http    Doer
	baseURL string
	apiKey  string
	country string

	pageLimit      int
	chunkSize      int
	sortCandidates []string
	logger         zerolog.Logger

	mu     sync.Mutex
	shopID int
}

// NewClient returns new Client for the catalog service at baseURL.
func NewClient(httpDoer Doer, baseURL, apiKey, country string, ops ...Option) *Client {
	cli := &Client{
		http:           httpDoer,
		baseURL:        strings.TrimRight(baseURL, "/"),
		apiKey:         apiKey,
		country:        country,
		pageLimit:      200,
		chunkSize:      200,
		sortCandidates: []string{"expiry", "-expiry", "-cut"},
		logger:         zerolog.Nop(),
	}

	for _, op := range ops {
		op(cli)
	}

	return cli
}

// ShopID resolves the storefront's internal shop id, caching the result for
// the Client's lifetime.
func (c *Client) ShopID(ctx context.Context) (int, error) {
	c.mu.Lock()
	cached := c.shopID
	c.mu.Unlock()
	if cached != 0 {
		return cached, nil
	}

	var shops []struct {
		ID    int    `json:"id"`
		Title string `json:"title"`
	}
	query := url.Values{"country": {c.country}}
	if err := c.getJSON(ctx, ClassDeals, "/service/shops/v1", query, &shops); err != nil {
		return 0, fmt.Errorf("can't list shops: %w", err)
	}

	shopID := fallbackShopID
	for _, shop := range shops {
		if strings.EqualFold(shop.Title, "steam") {
			shopID = shop.ID
			break
		}
	}

	c.mu.Lock()
	c.shopID = shopID
	c.mu.Unlock()

	return shopID, nil
}

// getJSON issues a throttled GET with the api key and decodes the JSON body
// into out.
func (c *Client) getJSON(ctx context.Context, class throttle.Class, path string, query url.Values, out any) error {
	query.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("can't build http request: %w", err)
	}

	return c.doJSON(ctx, class, req, out)
}

// postJSON issues a throttled POST with the api key, a JSON body and decodes
// the JSON response into out.
func (c *Client) postJSON(ctx context.Context, class throttle.Class, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("can't marshal request body: %w", err)
	}

	query := url.Values{"key": {c.apiKey}}
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+path+"?"+query.Encode(), bytes.NewReader(payload),
	)
	if err != nil {
		return fmt.Errorf("can't build http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doJSON(ctx, class, req, out)
}

func (c *Client) doJSON(ctx context.Context, class throttle.Class, req *http.Request, out any) error {
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

// WithPageLimit sets the deals page size.
func WithPageLimit(limit int) Option {
	return func(c *Client) {
		c.pageLimit = limit
	}
}

// WithChunkSize sets the lookup batch size.
func WithChunkSize(size int) Option {
	return func(c *Client) {
		c.chunkSize = size
	}
}

// WithSortCandidates sets the sort keys tried in priority order during a scan.
func WithSortCandidates(sorts ...string) Option {
	return func(c *Client) {
		c.sortCandidates = sorts
	}
}
