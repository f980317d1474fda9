package catalog

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/url"
	"strconv"
)

// Search performs a free-text search against the catalog and returns the
// hits in the server's relevance order. Compatibility filtering is the
// caller's job: hits deliberately include entries that do not support the
// requested version or loader, so rejections can be attributed precisely.
func (c *Client) Search(ctx context.Context, params SearchParams) ([]Entry, error) {
	if params.Query == "" {
		return nil, wrapError("search", "", ErrBadRequest)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	query := url.Values{}
	query.Set("query", params.Query)
	query.Set("limit", strconv.Itoa(limit))
	query.Set("index", "relevance")

	body, err := c.doRequest(ctx, "/search", query)
	if err != nil {
		return nil, wrapError("search", params.Query, err)
	}

	var resp rawSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, wrapError("search", params.Query, fmt.Errorf("parse response: %w", err))
	}

	results := make([]Entry, 0, len(resp.Hits))
	for i := range resp.Hits {
		results = append(results, resp.Hits[i].toEntry())
	}

	return results, nil
}
