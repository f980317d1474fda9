package catalog

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/url"
	"regexp"
)

// Valid project identifiers: slugs and base62 project IDs.
var projectIDRe = regexp.MustCompile(`^[\w-]{1,64}$`)

// LookupProject fetches a single project by ID or slug.
// Returns ErrNotFound when no project exists under that identifier.
func (c *Client) LookupProject(ctx context.Context, idOrSlug string) (*Entry, error) {
	if !projectIDRe.MatchString(idOrSlug) {
		return nil, wrapError("lookupProject", idOrSlug, ErrBadRequest)
	}

	body, err := c.doRequest(ctx, "/project/"+url.PathEscape(idOrSlug), nil)
	if err != nil {
		return nil, wrapError("lookupProject", idOrSlug, err)
	}

	var raw rawProject
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, wrapError("lookupProject", idOrSlug, fmt.Errorf("parse response: %w", err))
	}

	entry := raw.toEntry()
	return &entry, nil
}
