package catalog

import (
	"context"

	"github.com/basedosdados/mcp-basedosdados/pkg/textnorm"
)

// Search runs the dataset search with the full fallback ladder. Attempts are
// tried in order and the first non-empty result set wins:
//
//  1. normalized query against dataset descriptions
//  2. normalized query against dataset names
//  3. per acronym expansion: exact slug match, then the expanded full name
//  4. per fallback keyword: dataset descriptions
//
// Exhausting every rung returns an empty slice and a nil error; no results is
// a valid outcome, not a failure. Upstream faults abort the ladder
// immediately.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]DatasetSummary, error) {
	normalized := textnorm.Normalize(query)

	results, err := c.searchByDescription(ctx, normalized, limit)
	if err != nil || len(results) > 0 {
		return results, err
	}

	results, err = c.searchByName(ctx, normalized, limit)
	if err != nil || len(results) > 0 {
		return results, err
	}

	// An empty query matched nothing above and expands to nothing below.
	if normalized == "" {
		return []DatasetSummary{}, nil
	}

	for _, exp := range textnorm.ExpandAcronyms(query) {
		if exp.Exact {
			results, err = c.searchBySlug(ctx, exp.Acronym, limit)
			if err != nil || len(results) > 0 {
				return results, err
			}
		}
		results, err = c.searchByDescription(ctx, exp.FullName, limit)
		if err != nil || len(results) > 0 {
			return results, err
		}
	}

	for _, keyword := range textnorm.Keywords(query) {
		if keyword == normalized {
			continue // single-word query: already tried as the primary
		}
		results, err = c.searchByDescription(ctx, keyword, limit)
		if err != nil || len(results) > 0 {
			return results, err
		}
	}

	return []DatasetSummary{}, nil
}

func (c *Client) searchByDescription(ctx context.Context, query string, limit int) ([]DatasetSummary, error) {
	var data searchData
	vars := map[string]any{"query": query, "first": limit}
	if err := c.execute(ctx, searchByDescriptionQuery, vars, &data); err != nil {
		return nil, err
	}
	return data.summaries()
}

func (c *Client) searchByName(ctx context.Context, query string, limit int) ([]DatasetSummary, error) {
	var data searchData
	vars := map[string]any{"query": query, "first": limit}
	if err := c.execute(ctx, searchByNameQuery, vars, &data); err != nil {
		return nil, err
	}
	return data.summaries()
}

func (c *Client) searchBySlug(ctx context.Context, slug string, limit int) ([]DatasetSummary, error) {
	var data searchData
	vars := map[string]any{"slug": slug, "first": limit}
	if err := c.execute(ctx, searchBySlugQuery, vars, &data); err != nil {
		return nil, err
	}
	return data.summaries()
}
