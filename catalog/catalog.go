// Package catalog exposes the read-only movie and TV queries of the catalog
// service as typed operations.
//
// Every operation is a single request routed through a tmdb.Requester.
// Items flagged adult are dropped from every list result before it is
// returned.
package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"

	"github.com/rs/zerolog"

	"github.com/s0up4200/marquee/tmdb"
)

// imageLanguages is sent as include_image_language so that backdrops
// without text are returned alongside English ones.
const imageLanguages = "en, null"

func searchQuery(query string) url.Values {
	return url.Values{
		"query":         {query},
		"include_adult": {"false"},
		"language":      {"en-US"},
		"region":        {"US"},
	}
}

func imagesQuery() url.Values {
	return url.Values{"include_image_language": {imageLanguages}}
}

// get issues one GET and decodes into out
func get(ctx context.Context, api tmdb.Requester, path string, query url.Values, out any) error {
	if err := api.Do(ctx, http.MethodGet, path, query, nil, out); err != nil {
		return fmt.Errorf("failed to get %s: %w", path, err)
	}
	return nil
}

// withoutAdult returns items with every adult-flagged entry removed.
func withoutAdult[T tmdb.Summarizer](items []T) []T {
	return slices.DeleteFunc(items, func(item T) bool {
		return item.Summary().Adult
	})
}

func logDropped(logger zerolog.Logger, path string, before, after int) {
	if before != after {
		logger.Debug().
			Str("path", path).
			Int("dropped", before-after).
			Msg("Removed adult items from results")
	}
}
