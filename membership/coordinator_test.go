package membership

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/marquee/catalogtest"
	"github.com/s0up4200/marquee/tmdb"
)

type staticSession string

func (s staticSession) Current() string { return string(s) }

type mockAccountAPI struct {
	mu       sync.Mutex
	calls    int
	movies   []tmdb.Movie
	series   []tmdb.Series
	setErr   error
	listErr  error
	lastSet  *tmdb.MembershipRequest
	accounts int

	// listStarted is signalled and listGate awaited before a list read
	listStarted chan struct{}
	listGate    chan struct{}
}

func (m *mockAccountAPI) waitForGate() {
	m.mu.Lock()
	started, gate := m.listStarted, m.listGate
	m.mu.Unlock()
	if gate == nil {
		return
	}
	select {
	case started <- struct{}{}:
	default:
	}
	<-gate
}

func (m *mockAccountAPI) Account(_ context.Context, sessionID string) (*tmdb.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.accounts++
	return &tmdb.Account{ID: 7, Username: "user"}, nil
}

func (m *mockAccountAPI) AccountMovies(_ context.Context, _ int64, _ string, _ tmdb.ListKind) ([]tmdb.Movie, error) {
	m.waitForGate()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]tmdb.Movie(nil), m.movies...), nil
}

func (m *mockAccountAPI) AccountSeries(_ context.Context, _ int64, _ string, _ tmdb.ListKind) ([]tmdb.Series, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]tmdb.Series(nil), m.series...), nil
}

func (m *mockAccountAPI) SetMembership(_ context.Context, _ int64, _ string, list tmdb.ListKind, kind tmdb.MediaKind, mediaID int64, value bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	req := &tmdb.MembershipRequest{MediaType: kind, MediaID: mediaID}
	if list == tmdb.ListFavorite {
		req.Favorite = &value
	} else {
		req.Watchlist = &value
	}
	m.lastSet = req
	return m.setErr
}

func (m *mockAccountAPI) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestCoordinator_NoSession(t *testing.T) {
	api := &mockAccountAPI{}
	c := NewCoordinator(api, staticSession(""), zerolog.Nop())
	ctx := context.Background()
	ref := Ref{Kind: tmdb.MediaKindMovie, ID: 1}

	member, err := c.IsMember(ctx, tmdb.ListFavorite, ref)
	assert.False(t, member)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	assert.ErrorIs(t, c.SetMember(ctx, tmdb.ListWatchlist, ref, true), ErrNotAuthenticated)

	_, err = c.Movies(ctx, tmdb.ListFavorite)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = c.Account(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	assert.Zero(t, api.callCount())
}

func TestCoordinator_IsMember(t *testing.T) {
	api := &mockAccountAPI{
		movies: []tmdb.Movie{{ID: 1}, {ID: 2}},
		series: []tmdb.Series{{ID: 10}},
	}
	c := NewCoordinator(api, staticSession("s"), zerolog.Nop())
	ctx := context.Background()

	tests := []struct {
		name string
		ref  Ref
		want bool
	}{
		{"movie on list", Ref{tmdb.MediaKindMovie, 2}, true},
		{"movie not on list", Ref{tmdb.MediaKindMovie, 10}, false},
		{"series on list", Ref{tmdb.MediaKindTV, 10}, true},
		{"series not on list", Ref{tmdb.MediaKindTV, 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.IsMember(ctx, tmdb.ListFavorite, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoordinator_ResolvesAccountEveryCall(t *testing.T) {
	api := &mockAccountAPI{}
	c := NewCoordinator(api, staticSession("s"), zerolog.Nop())
	ctx := context.Background()

	_, err := c.IsMember(ctx, tmdb.ListFavorite, Ref{tmdb.MediaKindMovie, 1})
	require.NoError(t, err)
	_, err = c.IsMember(ctx, tmdb.ListFavorite, Ref{tmdb.MediaKindMovie, 1})
	require.NoError(t, err)

	assert.Equal(t, 2, api.accounts)
}

func TestCoordinator_ListErrorIsFalse(t *testing.T) {
	api := &mockAccountAPI{listErr: tmdb.ErrNetwork, movies: []tmdb.Movie{{ID: 1}}}
	c := NewCoordinator(api, staticSession("s"), zerolog.Nop())

	member, err := c.IsMember(context.Background(), tmdb.ListWatchlist, Ref{tmdb.MediaKindMovie, 1})
	assert.False(t, member)
	assert.ErrorIs(t, err, tmdb.ErrNetwork)
}

func TestCoordinator_InvalidRef(t *testing.T) {
	api := &mockAccountAPI{}
	c := NewCoordinator(api, staticSession("s"), zerolog.Nop())

	_, err := c.IsMember(context.Background(), tmdb.ListKind("seen"), Ref{tmdb.MediaKindMovie, 1})
	assert.Error(t, err)
	err = c.SetMember(context.Background(), tmdb.ListFavorite, Ref{tmdb.MediaKind("person"), 1}, true)
	assert.Error(t, err)

	items, err := c.Summaries(context.Background(), tmdb.ListFavorite, tmdb.MediaKind("person"))
	assert.Error(t, err)
	assert.Nil(t, items)
	_, err = c.Movies(context.Background(), tmdb.ListKind("seen"))
	assert.Error(t, err)
	_, err = c.Series(context.Background(), tmdb.ListKind("seen"))
	assert.Error(t, err)

	assert.Zero(t, api.callCount())
}

func TestCoordinator_SetMember(t *testing.T) {
	api := &mockAccountAPI{}
	c := NewCoordinator(api, staticSession("s"), zerolog.Nop())

	require.NoError(t, c.SetMember(context.Background(), tmdb.ListWatchlist, Ref{tmdb.MediaKindTV, 5}, false))
	require.NotNil(t, api.lastSet)
	assert.Equal(t, tmdb.MediaKindTV, api.lastSet.MediaType)
	assert.Equal(t, int64(5), api.lastSet.MediaID)
	require.NotNil(t, api.lastSet.Watchlist)
	assert.False(t, *api.lastSet.Watchlist)
	assert.Nil(t, api.lastSet.Favorite)
}

func TestCoordinator_ListsAreReversed(t *testing.T) {
	api := &mockAccountAPI{
		movies: []tmdb.Movie{{ID: 1, Title: "first"}, {ID: 2, Title: "second"}, {ID: 3, Title: "third"}},
		series: []tmdb.Series{{ID: 10, Name: "a"}, {ID: 11, Name: "b"}},
	}
	c := NewCoordinator(api, staticSession("s"), zerolog.Nop())
	ctx := context.Background()

	movies, err := c.Movies(ctx, tmdb.ListFavorite)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2, 1}, []int64{movies[0].ID, movies[1].ID, movies[2].ID})

	summaries, err := c.Summaries(ctx, tmdb.ListWatchlist, tmdb.MediaKindTV)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "b", summaries[0].Title)
	assert.Equal(t, tmdb.MediaKindTV, summaries[0].Kind)
}

func TestToggle_FailedWriteKeepsValue(t *testing.T) {
	api := &mockAccountAPI{movies: []tmdb.Movie{{ID: 1}}}
	c := NewCoordinator(api, staticSession("s"), zerolog.Nop())
	ctx := context.Background()
	ref := Ref{tmdb.MediaKindMovie, 1}

	toggle := c.NewToggle(tmdb.ListFavorite, ref)
	assert.Equal(t, ToggleUnknown, toggle.Snapshot().State)

	require.NoError(t, toggle.Refresh(ctx))
	assert.Equal(t, Snapshot{State: ToggleKnown, Value: true}, toggle.Snapshot())

	api.setErr = &tmdb.APIError{StatusCode: 200, Code: 11, StatusMessage: "Internal error"}
	err := toggle.Set(ctx, false)
	require.Error(t, err)

	snap := toggle.Snapshot()
	assert.Equal(t, ToggleKnown, snap.State)
	assert.True(t, snap.Value)
	assert.Error(t, snap.Err)

	member, err := c.IsMember(ctx, tmdb.ListFavorite, ref)
	require.NoError(t, err)
	assert.True(t, member)
}

func TestToggle_SetRequiresKnown(t *testing.T) {
	api := &mockAccountAPI{}
	c := NewCoordinator(api, staticSession("s"), zerolog.Nop())

	toggle := c.NewToggle(tmdb.ListWatchlist, Ref{tmdb.MediaKindMovie, 1})
	assert.Error(t, toggle.Set(context.Background(), true))
	assert.Zero(t, api.callCount())
}

func TestToggle_VerifyFailureKeepsWrittenValue(t *testing.T) {
	api := &mockAccountAPI{}
	c := NewCoordinator(api, staticSession("s"), zerolog.Nop())
	ctx := context.Background()

	toggle := c.NewToggle(tmdb.ListWatchlist, Ref{tmdb.MediaKindMovie, 1})
	require.NoError(t, toggle.Refresh(ctx))
	assert.False(t, toggle.Value())

	// The write succeeds but the list cannot be re-read.
	api.mu.Lock()
	api.listErr = errors.New("boom")
	api.mu.Unlock()

	require.NoError(t, toggle.Set(ctx, true))
	snap := toggle.Snapshot()
	assert.Equal(t, ToggleKnown, snap.State)
	assert.True(t, snap.Value)
	assert.NoError(t, snap.Err)
}

func TestToggle_StaysSubmittingWhileVerifying(t *testing.T) {
	api := &mockAccountAPI{}
	c := NewCoordinator(api, staticSession("s"), zerolog.Nop())
	ctx := context.Background()

	toggle := c.NewToggle(tmdb.ListFavorite, Ref{tmdb.MediaKindMovie, 1})
	require.NoError(t, toggle.Refresh(ctx))

	started := make(chan struct{}, 1)
	gate := make(chan struct{})
	api.mu.Lock()
	api.movies = []tmdb.Movie{{ID: 1}}
	api.listStarted = started
	api.listGate = gate
	api.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- toggle.Set(ctx, true) }()
	<-started

	// The write has landed and the re-read is in flight
	assert.Equal(t, ToggleSubmitting, toggle.Snapshot().State)
	assert.False(t, toggle.Value())
	assert.ErrorIs(t, toggle.Refresh(ctx), ErrBusy)
	assert.ErrorIs(t, toggle.Set(ctx, false), ErrBusy)

	close(gate)
	require.NoError(t, <-done)
	assert.Equal(t, Snapshot{State: ToggleKnown, Value: true}, toggle.Snapshot())
	require.NotNil(t, api.lastSet)
	assert.True(t, *api.lastSet.Favorite)
}

func TestToggle_WithoutVerify(t *testing.T) {
	api := &mockAccountAPI{}
	c := NewCoordinator(api, staticSession("s"), zerolog.Nop(), WithVerifyWrites(false))
	ctx := context.Background()

	toggle := c.NewToggle(tmdb.ListFavorite, Ref{tmdb.MediaKindTV, 3})
	require.NoError(t, toggle.Refresh(ctx))
	before := api.callCount()

	require.NoError(t, toggle.Flip(ctx))
	assert.True(t, toggle.Value())
	// account + write, no re-read
	assert.Equal(t, before+2, api.callCount())
}

func TestToggleState_String(t *testing.T) {
	assert.Equal(t, "unknown", ToggleUnknown.String())
	assert.Equal(t, "checking", ToggleChecking.String())
	assert.Equal(t, "known", ToggleKnown.String())
	assert.Equal(t, "submitting", ToggleSubmitting.String())
	assert.Equal(t, "invalid", ToggleState(99).String())
}

func TestCoordinator_AgainstCatalog(t *testing.T) {
	srv := catalogtest.NewServer(t)
	srv.AddSession(catalogtest.SessionID)
	c := NewCoordinator(srv.NewClient(t), staticSession(catalogtest.SessionID), zerolog.Nop())
	ctx := context.Background()
	ref := Ref{tmdb.MediaKindMovie, catalogtest.MovieArrival}

	member, err := c.IsMember(ctx, tmdb.ListFavorite, ref)
	require.NoError(t, err)
	assert.False(t, member)

	require.NoError(t, c.SetMember(ctx, tmdb.ListFavorite, ref, true))

	member, err = c.IsMember(ctx, tmdb.ListFavorite, ref)
	require.NoError(t, err)
	assert.True(t, member)

	// The watchlist is a separate list.
	member, err = c.IsMember(ctx, tmdb.ListWatchlist, ref)
	require.NoError(t, err)
	assert.False(t, member)

	require.NoError(t, c.SetMember(ctx, tmdb.ListFavorite, ref, false))
	member, err = c.IsMember(ctx, tmdb.ListFavorite, ref)
	require.NoError(t, err)
	assert.False(t, member)
}

func TestToggle_AgainstCatalogRefusedWrite(t *testing.T) {
	srv := catalogtest.NewServer(t)
	srv.AddSession(catalogtest.SessionID)
	srv.SetMembers(tmdb.ListWatchlist, tmdb.MediaKindTV, catalogtest.SeriesDark)
	srv.FailMembershipWrites(true)

	c := NewCoordinator(srv.NewClient(t), staticSession(catalogtest.SessionID), zerolog.Nop())
	ctx := context.Background()

	toggle := c.NewToggle(tmdb.ListWatchlist, Ref{tmdb.MediaKindTV, catalogtest.SeriesDark})
	require.NoError(t, toggle.Refresh(ctx))
	require.True(t, toggle.Value())

	err := toggle.Flip(ctx)
	var apiErr *tmdb.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 11, apiErr.Code)

	assert.True(t, toggle.Value())
	assert.Equal(t, []int64{catalogtest.SeriesDark}, srv.Members(tmdb.ListWatchlist, tmdb.MediaKindTV))
}

func TestCoordinator_ExpiredSession(t *testing.T) {
	srv := catalogtest.NewServer(t)
	c := NewCoordinator(srv.NewClient(t), staticSession("expired"), zerolog.Nop())

	_, err := c.IsMember(context.Background(), tmdb.ListFavorite, Ref{tmdb.MediaKindMovie, 1})
	var apiErr *tmdb.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsUnauthorized())
}
