package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/MichalMitros/steam-deals-digest/internal/platform/models"
)

// tooFarPagesLimit stops a scan after this many consecutive pages containing
// only entries past the window's end.
const tooFarPagesLimit = 3

type dealsPage struct {
	List []struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Deal struct {
			Expiry string `json:"expiry"`
		} `json:"deal"`
	} `json:"list"`
	HasMore    bool `json:"hasMore"`
	NextOffset int  `json:"nextOffset"`
}

// Scan pages through the catalog's deals for the storefront and returns game
// deals whose expiry falls inside window, deduplicated by catalog id with the
// first occurrence winning.
//
// Sort candidates are tried in priority order; a candidate that errors or
// finds nothing yields to the next one. The scan stops early after
// tooFarPagesLimit consecutive pages holding only past-window entries. The
// catalog's sort keys are not guaranteed monotonic in expiry, so the early
// stop is an approximation, not proof the window was covered.
func (c *Client) Scan(ctx context.Context, window models.Window) ([]models.CatalogDeal, error) {
	shopID, err := c.ShopID(ctx)
	if err != nil {
		return nil, err
	}

	var lastErr error
	completed := false

	for _, sortKey := range c.sortCandidates {
		deals, err := c.scanSorted(ctx, shopID, window, sortKey)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			c.logger.Warn().Err(err).Str("sort", sortKey).Msg("scan failed, trying next sort key")
			lastErr = err
			continue
		}

		completed = true
		if len(deals) == 0 {
			c.logger.Debug().Str("sort", sortKey).Msg("scan found nothing, trying next sort key")
			continue
		}

		c.logger.Info().Str("sort", sortKey).Int("deals", len(deals)).Msg("scan completed")

		return dedupeDeals(deals), nil
	}

	if !completed {
		return nil, fmt.Errorf("can't scan catalog with any sort key: %w", lastErr)
	}

	return nil, nil
}

func (c *Client) scanSorted(
	ctx context.Context,
	shopID int,
	window models.Window,
	sortKey string,
) ([]models.CatalogDeal, error) {
	var deals []models.CatalogDeal
	offset := 0
	tooFarPages := 0

	for {
		query := url.Values{
			"country": {c.country},
			"shops":   {strconv.Itoa(shopID)},
			"limit":   {strconv.Itoa(c.pageLimit)},
			"offset":  {strconv.Itoa(offset)},
			"sort":    {sortKey},
		}

		var page dealsPage
		if err := c.getJSON(ctx, ClassDeals, "/deals/v2", query, &page); err != nil {
			return nil, fmt.Errorf("can't fetch deals page at offset %d: %w", offset, err)
		}

		pageIn, pageOut := 0, 0
		for _, entry := range page.List {
			if !strings.EqualFold(entry.Type, string(models.KindGame)) {
				continue
			}
			expiry, err := time.Parse(time.RFC3339, entry.Deal.Expiry)
			if err != nil {
				continue
			}
			switch {
			case window.Contains(expiry):
				deals = append(deals, models.CatalogDeal{
					CatalogID: entry.ID,
					Kind:      models.KindGame,
					Expiry:    &expiry,
				})
				pageIn++
			case expiry.After(window.End):
				pageOut++
			}
		}

		if pageIn == 0 && pageOut > 0 {
			tooFarPages++
		} else {
			tooFarPages = 0
		}
		if tooFarPages >= tooFarPagesLimit {
			return deals, nil
		}

		if !page.HasMore {
			return deals, nil
		}
		offset = page.NextOffset
	}
}

// dedupeDeals drops repeated catalog ids, keeping the first occurrence and
// the insertion order.
func dedupeDeals(deals []models.CatalogDeal) []models.CatalogDeal {
	seen := make(map[string]struct{}, len(deals))
	result := make([]models.CatalogDeal, 0, len(deals))

	for _, deal := range deals {
		if _, ok := seen[deal.CatalogID]; ok {
			continue
		}
		seen[deal.CatalogID] = struct{}{}
		result = append(result, deal)
	}

	return result
}
