package storefront

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/MichalMitros/steam-deals-digest/internal/platform/models"
	"github.com/samber/lo"
)

// Details is an app's storefront metadata. Prices are minor units; free apps
// carry all-zero prices.
type Details struct {
	Name            string
	Kind            models.DealKind
	IsFree          bool
	PriceInitial    int
	PriceFinal      int
	DiscountPercent int
}

type detailsEnvelope struct {
	Success bool `json:"success"`
	Data    *struct {
		Name          string `json:"name"`
		Type          string `json:"type"`
		IsFree        bool   `json:"is_free"`
		PriceOverview *struct {
			Initial         int `json:"initial"`
			Final           int `json:"final"`
			DiscountPercent int `json:"discount_percent"`
		} `json:"price_overview"`
	} `json:"data"`
}

// Details fetches localized metadata for the apps, one call per id, skipping
// cached ids. Apps the storefront can't serve are skipped and logged, never
// failing the batch: missing from the response, success=false (usually a
// region lock), payload without data, or priced apps without a price object.
func (c *Client) Details(ctx context.Context, appIDs []int) (map[int]Details, error) {
	appIDs = lo.Uniq(appIDs)
	result := make(map[int]Details, len(appIDs))
	var skipped []string

	for _, appID := range appIDs {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		key := strconv.Itoa(appID)
		if cached, ok := c.detailsCache.Get(key); ok {
			result[appID] = cached.(Details)
			continue
		}

		details, reason := c.fetchDetails(ctx, appID)
		if reason != "" {
			skipped = append(skipped, fmt.Sprintf("%d:%s", appID, reason))
			continue
		}

		c.detailsCache.Set(key, details, 0)
		result[appID] = details
	}

	if len(skipped) > 0 {
		c.logger.Info().
			Int("count", len(skipped)).
			Str("head", strings.Join(skipped[:min(len(skipped), 5)], ", ")).
			Msg("app details skipped")
	}
	c.logger.Debug().
		Int("collected", len(result)).
		Int("targets", len(appIDs)).
		Msg("app details collected")

	return result, nil
}

// fetchDetails returns the app's details or a non-empty skip reason.
func (c *Client) fetchDetails(ctx context.Context, appID int) (Details, string) {
	query := url.Values{
		"appids": {strconv.Itoa(appID)},
		"cc":     {c.region},
		"l":      {c.language},
	}

	var payload map[string]detailsEnvelope
	err := c.getJSON(ctx, ClassDetails, c.baseURL+"/api/appdetails?"+query.Encode(), &payload)
	if err != nil {
		return Details{}, fmt.Sprintf("fetch-failed: %v", err)
	}

	envelope, ok := payload[strconv.Itoa(appID)]
	switch {
	case !ok:
		return Details{}, "no-key-in-payload"
	case !envelope.Success:
		return Details{}, "success-false"
	case envelope.Data == nil:
		return Details{}, "no-data-field"
	}

	data := envelope.Data
	details := Details{
		Name:   data.Name,
		Kind:   models.KindOther,
		IsFree: data.IsFree,
	}
	if strings.EqualFold(data.Type, string(models.KindGame)) {
		details.Kind = models.KindGame
	}

	if data.IsFree {
		return details, ""
	}
	if data.PriceOverview == nil {
		// priced app without an offer object has no usable price, drop it.
		return Details{}, "no-price-overview"
	}

	details.PriceInitial = data.PriceOverview.Initial
	details.PriceFinal = data.PriceOverview.Final
	details.DiscountPercent = data.PriceOverview.DiscountPercent

	return details, ""
}
