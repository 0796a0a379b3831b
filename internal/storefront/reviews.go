package storefront

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

type reviewsSummary struct {
	QuerySummary struct {
		TotalReviews int `json:"total_reviews"`
	} `json:"query_summary"`
}

// ReviewCounts fetches the language-filtered review totals for the apps with
// bounded concurrency. A failed fetch degrades that app's count to zero; the
// batch always returns a count for every requested id, merged by id
// regardless of completion order.
func (c *Client) ReviewCounts(ctx context.Context, appIDs []int) map[int]int {
	appIDs = lo.Uniq(appIDs)
	result := make(map[int]int, len(appIDs))
	var mu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(c.workers)

	for _, appID := range appIDs {
		appID := appID
		group.Go(func() error {
			count := c.reviewCount(groupCtx, appID)

			mu.Lock()
			result[appID] = count
			mu.Unlock()

			return nil
		})
	}

	// workers only degrade, they never fail the group.
	_ = group.Wait()

	return result
}

func (c *Client) reviewCount(ctx context.Context, appID int) int {
	key := strconv.Itoa(appID)
	if cached, ok := c.reviewsCache.Get(key); ok {
		return cached.(int)
	}

	query := url.Values{
		"json":          {"1"},
		"language":      {c.language},
		"purchase_type": {"all"},
	}

	var summary reviewsSummary
	endpoint := fmt.Sprintf("%s/appreviews/%d?%s", c.baseURL, appID, query.Encode())
	if err := c.getJSON(ctx, ClassReviews, endpoint, &summary); err != nil {
		c.logger.Warn().Err(err).Int("appId", appID).Msg("review count degraded to zero")
		c.reviewsCache.Set(key, 0, 0)
		return 0
	}

	count := summary.QuerySummary.TotalReviews
	c.reviewsCache.Set(key, count, 0)

	return count
}
