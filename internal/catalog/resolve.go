package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// appRefPrefix marks storefront references pointing at a standalone app.
const appRefPrefix = "app/"

// Resolve batch-translates catalog ids into storefront app ids. Catalog ids
// missing from the lookup response, or whose references don't parse as app
// references, are omitted from the result; that is a soft failure by
// contract, not an error.
func (c *Client) Resolve(ctx context.Context, catalogIDs []string) (map[string]int, error) {
	shopID, err := c.ShopID(ctx)
	if err != nil {
		return nil, err
	}

	catalogIDs = lo.Uniq(catalogIDs)
	result := make(map[string]int, len(catalogIDs))

	for _, chunk := range lo.Chunk(catalogIDs, c.chunkSize) {
		var mapping map[string][]string
		path := fmt.Sprintf("/lookup/shop/%d/id/v1", shopID)
		if err := c.postJSON(ctx, ClassLookup, path, chunk, &mapping); err != nil {
			return nil, fmt.Errorf("can't look up catalog ids: %w", err)
		}

		for catalogID, refs := range mapping {
			if appID, ok := parseAppRef(refs); ok {
				result[catalogID] = appID
			}
		}
	}

	return result, nil
}

// parseAppRef returns the app id of the first app-shaped reference.
func parseAppRef(refs []string) (int, bool) {
	for _, ref := range refs {
		rest, ok := strings.CutPrefix(ref, appRefPrefix)
		if !ok {
			continue
		}
		appID, err := strconv.Atoi(rest)
		if err != nil || appID <= 0 {
			continue
		}
		return appID, true
	}

	return 0, false
}
