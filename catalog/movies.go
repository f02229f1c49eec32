package catalog

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/s0up4200/marquee/tmdb"
)

// Movies queries the movie side of the catalog
type Movies struct {
	api    tmdb.Requester
	logger zerolog.Logger
}

// NewMovies creates a movie query façade
func NewMovies(api tmdb.Requester, logger zerolog.Logger) *Movies {
	return &Movies{api: api, logger: logger}
}

// NowPlaying returns movies currently in theatres
func (m *Movies) NowPlaying(ctx context.Context) ([]tmdb.Movie, error) {
	return m.list(ctx, "/movie/now_playing")
}

// Popular returns the most popular movies
func (m *Movies) Popular(ctx context.Context) ([]tmdb.Movie, error) {
	return m.list(ctx, "/movie/popular")
}

// Upcoming returns movies about to be released
func (m *Movies) Upcoming(ctx context.Context) ([]tmdb.Movie, error) {
	return m.list(ctx, "/movie/upcoming")
}

// TopRated returns the highest rated movies
func (m *Movies) TopRated(ctx context.Context) ([]tmdb.Movie, error) {
	return m.list(ctx, "/movie/top_rated")
}

// Search finds movies by title. Adult titles are never returned, even if
// the service includes them.
func (m *Movies) Search(ctx context.Context, query string) ([]tmdb.Movie, error) {
	return m.listQuery(ctx, "/search/movie", searchQuery(query))
}

// Detail returns the full record of one movie
func (m *Movies) Detail(ctx context.Context, id int64) (*tmdb.MovieDetail, error) {
	var detail tmdb.MovieDetail
	if err := get(ctx, m.api, fmt.Sprintf("/movie/%d", id), nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Credits returns cast and crew of a movie
func (m *Movies) Credits(ctx context.Context, id int64) (*tmdb.Credits, error) {
	var credits tmdb.Credits
	if err := get(ctx, m.api, fmt.Sprintf("/movie/%d/credits", id), nil, &credits); err != nil {
		return nil, err
	}
	return &credits, nil
}

// Videos returns every video attached to a movie, in server order
func (m *Movies) Videos(ctx context.Context, id int64) ([]tmdb.Video, error) {
	var resp tmdb.VideoList
	if err := get(ctx, m.api, fmt.Sprintf("/movie/%d/videos", id), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Trailers returns a movie's trailers in display order
func (m *Movies) Trailers(ctx context.Context, id int64) ([]tmdb.Video, error) {
	videos, err := m.Videos(ctx, id)
	if err != nil {
		return nil, err
	}
	return SortTrailers(videos), nil
}

// Images returns a movie's backdrops
func (m *Movies) Images(ctx context.Context, id int64) ([]tmdb.Backdrop, error) {
	var resp tmdb.ImageList
	if err := get(ctx, m.api, fmt.Sprintf("/movie/%d/images", id), imagesQuery(), &resp); err != nil {
		return nil, err
	}
	return resp.Backdrops, nil
}

func (m *Movies) list(ctx context.Context, path string) ([]tmdb.Movie, error) {
	return m.listQuery(ctx, path, nil)
}

func (m *Movies) listQuery(ctx context.Context, path string, query url.Values) ([]tmdb.Movie, error) {
	var resp tmdb.MovieList
	if err := get(ctx, m.api, path, query, &resp); err != nil {
		return nil, err
	}
	movies := withoutAdult(resp.Results)
	logDropped(m.logger, path, len(resp.Results), len(movies))
	return movies, nil
}
