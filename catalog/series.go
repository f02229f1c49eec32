package catalog

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/s0up4200/marquee/tmdb"
)

// Series queries the TV side of the catalog
type Series struct {
	api    tmdb.Requester
	logger zerolog.Logger
}

// NewSeries creates a TV query façade
func NewSeries(api tmdb.Requester, logger zerolog.Logger) *Series {
	return &Series{api: api, logger: logger}
}

// AiringToday returns series with an episode airing today
func (s *Series) AiringToday(ctx context.Context) ([]tmdb.Series, error) {
	return s.list(ctx, "/tv/airing_today")
}

// OnTheAir returns series with an episode airing in the next seven days
func (s *Series) OnTheAir(ctx context.Context) ([]tmdb.Series, error) {
	return s.list(ctx, "/tv/on_the_air")
}

// Popular returns the most popular series
func (s *Series) Popular(ctx context.Context) ([]tmdb.Series, error) {
	return s.list(ctx, "/tv/popular")
}

// TopRated returns the highest rated series
func (s *Series) TopRated(ctx context.Context) ([]tmdb.Series, error) {
	return s.list(ctx, "/tv/top_rated")
}

// Search finds series by name. Adult titles are never returned.
func (s *Series) Search(ctx context.Context, query string) ([]tmdb.Series, error) {
	return s.listQuery(ctx, "/search/tv", searchQuery(query))
}

// Detail returns the full record of one series
func (s *Series) Detail(ctx context.Context, id int64) (*tmdb.SeriesDetail, error) {
	var detail tmdb.SeriesDetail
	if err := get(ctx, s.api, fmt.Sprintf("/tv/%d", id), nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Credits returns cast and crew of a series
func (s *Series) Credits(ctx context.Context, id int64) (*tmdb.Credits, error) {
	var credits tmdb.Credits
	if err := get(ctx, s.api, fmt.Sprintf("/tv/%d/credits", id), nil, &credits); err != nil {
		return nil, err
	}
	return &credits, nil
}

// Videos returns every video attached to a series, in server order
func (s *Series) Videos(ctx context.Context, id int64) ([]tmdb.Video, error) {
	var resp tmdb.VideoList
	if err := get(ctx, s.api, fmt.Sprintf("/tv/%d/videos", id), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Trailers returns a series' trailers in display order
func (s *Series) Trailers(ctx context.Context, id int64) ([]tmdb.Video, error) {
	videos, err := s.Videos(ctx, id)
	if err != nil {
		return nil, err
	}
	return SortTrailers(videos), nil
}

// Images returns a series' backdrops
func (s *Series) Images(ctx context.Context, id int64) ([]tmdb.Backdrop, error) {
	var resp tmdb.ImageList
	if err := get(ctx, s.api, fmt.Sprintf("/tv/%d/images", id), imagesQuery(), &resp); err != nil {
		return nil, err
	}
	return resp.Backdrops, nil
}

func (s *Series) list(ctx context.Context, path string) ([]tmdb.Series, error) {
	return s.listQuery(ctx, path, nil)
}

func (s *Series) listQuery(ctx context.Context, path string, query url.Values) ([]tmdb.Series, error) {
	var resp tmdb.SeriesList
	if err := get(ctx, s.api, path, query, &resp); err != nil {
		return nil, err
	}
	series := withoutAdult(resp.Results)
	logDropped(s.logger, path, len(resp.Results), len(series))
	return series, nil
}
