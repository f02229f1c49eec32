package catalog

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/marquee/membership"
	"github.com/s0up4200/marquee/tmdb"
)

// bundleConcurrency caps the requests one detail load has in flight
const bundleConcurrency = 6

// Part is one independently loaded piece of a detail view
type Part[T any] struct {
	Value T
	Err   error
}

// OK reports whether the part loaded
func (p Part[T]) OK() bool {
	return p.Err == nil
}

// MembershipChecker answers favorite/watchlist membership
type MembershipChecker interface {
	IsMember(ctx context.Context, list tmdb.ListKind, ref membership.Ref) (bool, error)
}

// Memberships is the list state of one item
type Memberships struct {
	Favorite  Part[bool]
	Watchlist Part[bool]
}

// MovieBundle is everything a movie detail view shows
type MovieBundle struct {
	ID       int64
	Detail   Part[*tmdb.MovieDetail]
	Credits  Part[*tmdb.Credits]
	Trailers Part[[]tmdb.Video]
	Images   Part[[]tmdb.Backdrop]
	Memberships
}

// SeriesBundle is everything a series detail view shows
type SeriesBundle struct {
	ID       int64
	Detail   Part[*tmdb.SeriesDetail]
	Credits  Part[*tmdb.Credits]
	Trailers Part[[]tmdb.Video]
	Images   Part[[]tmdb.Backdrop]
	Memberships
}

// LoadMovie fetches the parts of a movie detail view concurrently. A failing
// part records its error and leaves the others intact. checker may be nil,
// in which case membership is reported as not authenticated. If ctx is
// cancelled before the loads finish, no results are kept and ctx.Err() is
// returned.
func (m *Movies) LoadMovie(ctx context.Context, id int64, checker MembershipChecker) (*MovieBundle, error) {
	bundle := &MovieBundle{ID: id}
	ref := membership.Ref{Kind: tmdb.MediaKindMovie, ID: id}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bundleConcurrency)
	var mu sync.Mutex

	loadPart(gctx, g, &mu, &bundle.Detail, func(ctx context.Context) (*tmdb.MovieDetail, error) {
		return m.Detail(ctx, id)
	})
	loadPart(gctx, g, &mu, &bundle.Credits, func(ctx context.Context) (*tmdb.Credits, error) {
		return m.Credits(ctx, id)
	})
	loadPart(gctx, g, &mu, &bundle.Trailers, func(ctx context.Context) ([]tmdb.Video, error) {
		return m.Trailers(ctx, id)
	})
	loadPart(gctx, g, &mu, &bundle.Images, func(ctx context.Context) ([]tmdb.Backdrop, error) {
		return m.Images(ctx, id)
	})
	loadMemberships(gctx, g, &mu, &bundle.Memberships, checker, ref)

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.logger.Debug().Int64("id", id).Bool("detail", bundle.Detail.OK()).Msg("Loaded movie bundle")
	return bundle, nil
}

// LoadSeries is LoadMovie for a series.
func (s *Series) LoadSeries(ctx context.Context, id int64, checker MembershipChecker) (*SeriesBundle, error) {
	bundle := &SeriesBundle{ID: id}
	ref := membership.Ref{Kind: tmdb.MediaKindTV, ID: id}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bundleConcurrency)
	var mu sync.Mutex

	loadPart(gctx, g, &mu, &bundle.Detail, func(ctx context.Context) (*tmdb.SeriesDetail, error) {
		return s.Detail(ctx, id)
	})
	loadPart(gctx, g, &mu, &bundle.Credits, func(ctx context.Context) (*tmdb.Credits, error) {
		return s.Credits(ctx, id)
	})
	loadPart(gctx, g, &mu, &bundle.Trailers, func(ctx context.Context) ([]tmdb.Video, error) {
		return s.Trailers(ctx, id)
	})
	loadPart(gctx, g, &mu, &bundle.Images, func(ctx context.Context) ([]tmdb.Backdrop, error) {
		return s.Images(ctx, id)
	})
	loadMemberships(gctx, g, &mu, &bundle.Memberships, checker, ref)

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.Debug().Int64("id", id).Bool("detail", bundle.Detail.OK()).Msg("Loaded series bundle")
	return bundle, nil
}

func loadMemberships(ctx context.Context, g *errgroup.Group, mu *sync.Mutex, dst *Memberships, checker MembershipChecker, ref membership.Ref) {
	if checker == nil {
		dst.Favorite.Err = membership.ErrNotAuthenticated
		dst.Watchlist.Err = membership.ErrNotAuthenticated
		return
	}

	loadPart(ctx, g, mu, &dst.Favorite, func(ctx context.Context) (bool, error) {
		return checker.IsMember(ctx, tmdb.ListFavorite, ref)
	})
	loadPart(ctx, g, mu, &dst.Watchlist, func(ctx context.Context) (bool, error) {
		return checker.IsMember(ctx, tmdb.ListWatchlist, ref)
	})
}

// loadPart runs fetch in g and stores its outcome in dst. Parts never fail
// the group; results that arrive after ctx is done are discarded.
func loadPart[T any](ctx context.Context, g *errgroup.Group, mu *sync.Mutex, dst *Part[T], fetch func(context.Context) (T, error)) {
	g.Go(func() error {
		value, err := fetch(ctx)
		if ctx.Err() != nil {
			return nil
		}

		mu.Lock()
		dst.Value = value
		dst.Err = err
		mu.Unlock()
		return nil
	})
}
