// Package membership reads and writes favorite and watchlist membership
// for catalog items.
//
// Every call resolves the account from the current session first; nothing
// about accounts or lists is cached between calls. Without a session no
// request is made at all and ErrNotAuthenticated is returned.
package membership

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/s0up4200/marquee/tmdb"
)

// ErrNotAuthenticated is returned when no session is held
var ErrNotAuthenticated = tmdb.ErrNotAuthenticated

// Ref identifies a catalog item across media kinds
type Ref struct {
	Kind tmdb.MediaKind
	ID   int64
}

// String returns "movie/123" style identifiers for logs
func (r Ref) String() string {
	return fmt.Sprintf("%s/%d", r.Kind, r.ID)
}

// SessionReader exposes the current session id
type SessionReader interface {
	Current() string
}

// Coordinator answers and changes list membership for the signed-in account
type Coordinator struct {
	api      tmdb.AccountAPI
	sessions SessionReader
	logger   zerolog.Logger

	verifyWrites bool
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithVerifyWrites makes toggles re-read the list after a successful write
// instead of trusting the written value.
func WithVerifyWrites(verify bool) Option {
	return func(c *Coordinator) {
		c.verifyWrites = verify
	}
}

// NewCoordinator creates a Coordinator
func NewCoordinator(api tmdb.AccountAPI, sessions SessionReader, logger zerolog.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		api:          api,
		sessions:     sessions,
		logger:       logger,
		verifyWrites: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// account resolves the account behind the current session.
func (c *Coordinator) account(ctx context.Context) (string, *tmdb.Account, error) {
	sessionID := c.sessions.Current()
	if sessionID == "" {
		return "", nil, ErrNotAuthenticated
	}

	account, err := c.api.Account(ctx, sessionID)
	if err != nil {
		return "", nil, err
	}
	return sessionID, account, nil
}

// Account returns the account behind the current session.
func (c *Coordinator) Account(ctx context.Context) (*tmdb.Account, error) {
	_, account, err := c.account(ctx)
	return account, err
}

// IsMember reports whether ref is on the given list. Any failure yields
// false together with the error, so callers that only render a control can
// ignore the error.
func (c *Coordinator) IsMember(ctx context.Context, list tmdb.ListKind, ref Ref) (bool, error) {
	if err := validate(list, ref); err != nil {
		return false, err
	}
	sessionID, account, err := c.account(ctx)
	if err != nil {
		return false, err
	}

	ids, err := c.listIDs(ctx, account.ID, sessionID, list, ref.Kind)
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, ref.ID), nil
}

// SetMember adds ref to the list (value=true) or removes it.
func (c *Coordinator) SetMember(ctx context.Context, list tmdb.ListKind, ref Ref, value bool) error {
	if err := validate(list, ref); err != nil {
		return err
	}
	sessionID, account, err := c.account(ctx)
	if err != nil {
		return err
	}

	if err := c.api.SetMembership(ctx, account.ID, sessionID, list, ref.Kind, ref.ID, value); err != nil {
		c.logger.Warn().Err(err).
			Str("list", string(list)).
			Stringer("item", ref).
			Bool("value", value).
			Msg("Failed to update membership")
		return err
	}

	c.logger.Info().
		Str("list", string(list)).
		Stringer("item", ref).
		Bool("value", value).
		Msg("Updated membership")
	return nil
}

// Movies returns the movies on a list, most recently added first.
func (c *Coordinator) Movies(ctx context.Context, list tmdb.ListKind) ([]tmdb.Movie, error) {
	if err := validate(list, Ref{Kind: tmdb.MediaKindMovie}); err != nil {
		return nil, err
	}
	sessionID, account, err := c.account(ctx)
	if err != nil {
		return nil, err
	}

	movies, err := c.api.AccountMovies(ctx, account.ID, sessionID, list)
	if err != nil {
		return nil, err
	}
	slices.Reverse(movies)
	return movies, nil
}

// Series returns the series on a list, most recently added first.
func (c *Coordinator) Series(ctx context.Context, list tmdb.ListKind) ([]tmdb.Series, error) {
	if err := validate(list, Ref{Kind: tmdb.MediaKindTV}); err != nil {
		return nil, err
	}
	sessionID, account, err := c.account(ctx)
	if err != nil {
		return nil, err
	}

	series, err := c.api.AccountSeries(ctx, account.ID, sessionID, list)
	if err != nil {
		return nil, err
	}
	slices.Reverse(series)
	return series, nil
}

// Summaries returns a list of either media kind as summaries, most
// recently added first.
func (c *Coordinator) Summaries(ctx context.Context, list tmdb.ListKind, kind tmdb.MediaKind) ([]tmdb.Summary, error) {
	if err := validate(list, Ref{Kind: kind}); err != nil {
		return nil, err
	}
	if kind.IsMovie() {
		movies, err := c.Movies(ctx, list)
		if err != nil {
			return nil, err
		}
		return summarize(movies), nil
	}

	series, err := c.Series(ctx, list)
	if err != nil {
		return nil, err
	}
	return summarize(series), nil
}

func (c *Coordinator) listIDs(ctx context.Context, accountID int64, sessionID string, list tmdb.ListKind, kind tmdb.MediaKind) ([]int64, error) {
	if kind.IsMovie() {
		movies, err := c.api.AccountMovies(ctx, accountID, sessionID, list)
		if err != nil {
			return nil, err
		}
		ids := make([]int64, 0, len(movies))
		for _, m := range movies {
			ids = append(ids, m.ID)
		}
		return ids, nil
	}

	series, err := c.api.AccountSeries(ctx, accountID, sessionID, list)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(series))
	for _, s := range series {
		ids = append(ids, s.ID)
	}
	return ids, nil
}

func validate(list tmdb.ListKind, ref Ref) error {
	if !list.Valid() {
		return fmt.Errorf("unknown list %q", list)
	}
	if !ref.Kind.Valid() {
		return fmt.Errorf("unknown media kind %q", ref.Kind)
	}
	return nil
}

func summarize[T tmdb.Summarizer](items []T) []tmdb.Summary {
	out := make([]tmdb.Summary, 0, len(items))
	for _, item := range items {
		out = append(out, item.Summary())
	}
	return out
}
