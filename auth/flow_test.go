package auth

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/marquee/session"
	"github.com/s0up4200/marquee/tmdb"
)

// mockAuthenticator implements tmdb.Authenticator for testing
type mockAuthenticator struct {
	tokenErr   error
	sessionErr error

	tokenCalls   atomic.Int32
	sessionCalls atomic.Int32
	gotToken     string
	mu           sync.Mutex
}

func (m *mockAuthenticator) NewRequestToken(ctx context.Context) (string, error) {
	m.tokenCalls.Add(1)
	if m.tokenErr != nil {
		return "", m.tokenErr
	}
	return "req-token", nil
}

func (m *mockAuthenticator) NewSession(ctx context.Context, requestToken string) (string, error) {
	m.sessionCalls.Add(1)
	m.mu.Lock()
	m.gotToken = requestToken
	m.mu.Unlock()
	if m.sessionErr != nil {
		return "", m.sessionErr
	}
	return "session-1", nil
}

func (m *mockAuthenticator) ApprovalURL(requestToken string) string {
	return "https://site.example/authenticate/" + requestToken
}

func (m *mockAuthenticator) calls() int32 {
	return m.tokenCalls.Load() + m.sessionCalls.Load()
}

type recordingApprover struct {
	urls []string
	err  error
}

func (r *recordingApprover) Approve(ctx context.Context, approvalURL string) error {
	r.urls = append(r.urls, approvalURL)
	return r.err
}

func newStore(t *testing.T) *session.Store {
	t.Helper()
	store, err := session.Open(session.NewMemoryPersister(""), zerolog.Nop())
	require.NoError(t, err)
	return store
}

func TestFlow_HappyPath(t *testing.T) {
	api := &mockAuthenticator{}
	approver := &recordingApprover{}
	store := newStore(t)
	flow := NewFlow(api, approver, store, zerolog.Nop())
	ctx := context.Background()

	assert.Equal(t, StateIdle, flow.State())

	require.NoError(t, flow.Start(ctx))
	assert.Equal(t, StateAwaitingApproval, flow.State())
	assert.Equal(t, []string{"https://site.example/authenticate/req-token"}, approver.urls)
	assert.Equal(t, "", store.Current())

	require.NoError(t, flow.Resume(ctx))
	assert.Equal(t, StateSessionCreated, flow.State())
	assert.Equal(t, "req-token", api.gotToken)
	assert.Equal(t, "session-1", store.Current())
	assert.NoError(t, flow.Err())
}

func TestFlow_ResumeIsNoOpOutsideAwaiting(t *testing.T) {
	api := &mockAuthenticator{}
	store := newStore(t)
	flow := NewFlow(api, &recordingApprover{}, store, zerolog.Nop())
	ctx := context.Background()

	// Idle: nothing happens.
	require.NoError(t, flow.Resume(ctx))
	assert.Equal(t, StateIdle, flow.State())
	assert.Equal(t, int32(0), api.calls())

	require.NoError(t, flow.Start(ctx))
	require.NoError(t, flow.Resume(ctx))
	before := api.calls()

	// SessionCreated: duplicate resume signals issue no API calls.
	require.NoError(t, flow.Resume(ctx))
	require.NoError(t, flow.Resume(ctx))
	assert.Equal(t, before, api.calls())
	assert.Equal(t, int32(1), api.sessionCalls.Load())
	assert.Equal(t, StateSessionCreated, flow.State())
}

func TestFlow_ConcurrentResumeCreatesOneSession(t *testing.T) {
	api := &mockAuthenticator{}
	flow := NewFlow(api, &recordingApprover{}, newStore(t), zerolog.Nop())
	ctx := context.Background()
	require.NoError(t, flow.Start(ctx))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = flow.Resume(ctx)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), api.sessionCalls.Load())
	assert.Equal(t, StateSessionCreated, flow.State())
}

func TestFlow_Failures(t *testing.T) {
	boom := errors.New("boom")

	t.Run("token request", func(t *testing.T) {
		api := &mockAuthenticator{tokenErr: boom}
		approver := &recordingApprover{}
		flow := NewFlow(api, approver, newStore(t), zerolog.Nop())

		err := flow.Start(context.Background())
		require.Error(t, err)

		var flowErr *FlowError
		require.ErrorAs(t, err, &flowErr)
		assert.Equal(t, StepTokenRequest, flowErr.Step)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, StateFailed, flow.State())
		assert.Empty(t, approver.urls)

		// A resume signal after failure does nothing.
		require.NoError(t, flow.Resume(context.Background()))
		assert.Equal(t, int32(0), api.sessionCalls.Load())
	})

	t.Run("approval hand-off", func(t *testing.T) {
		flow := NewFlow(&mockAuthenticator{}, &recordingApprover{err: boom}, newStore(t), zerolog.Nop())

		err := flow.Start(context.Background())
		var flowErr *FlowError
		require.ErrorAs(t, err, &flowErr)
		assert.Equal(t, StepApproval, flowErr.Step)
		assert.Equal(t, StateFailed, flow.State())
	})

	t.Run("session create", func(t *testing.T) {
		api := &mockAuthenticator{sessionErr: tmdb.ErrAuth}
		store := newStore(t)
		flow := NewFlow(api, &recordingApprover{}, store, zerolog.Nop())
		ctx := context.Background()

		require.NoError(t, flow.Start(ctx))
		err := flow.Resume(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, tmdb.ErrAuth)
		assert.Equal(t, StateFailed, flow.State())
		assert.Equal(t, err, flow.Err())
		assert.Equal(t, "", store.Current())

		// Retrying from Failed starts over with a fresh token.
		api.sessionErr = nil
		require.NoError(t, flow.Start(ctx))
		require.NoError(t, flow.Resume(ctx))
		assert.Equal(t, "session-1", store.Current())
	})
}

func TestFlow_StartWhileInProgress(t *testing.T) {
	flow := NewFlow(&mockAuthenticator{}, &recordingApprover{}, newStore(t), zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, flow.Start(ctx))
	err := flow.Start(ctx)
	assert.ErrorIs(t, err, ErrInProgress)
	assert.Equal(t, StateAwaitingApproval, flow.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "awaiting-approval", StateAwaitingApproval.String())
	assert.Equal(t, "unknown", State(99).String())
}

type mockDeleter struct {
	err     error
	deleted []string
}

func (m *mockDeleter) DeleteSession(ctx context.Context, sessionID string) error {
	m.deleted = append(m.deleted, sessionID)
	return m.err
}

func TestLogout(t *testing.T) {
	t.Run("clears even when server call fails", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Update("s1"))
		deleter := &mockDeleter{err: errors.New("offline")}

		require.NoError(t, Logout(context.Background(), deleter, store, zerolog.Nop()))
		assert.Equal(t, []string{"s1"}, deleter.deleted)
		assert.False(t, store.IsLoggedIn())
	})

	t.Run("logged out already", func(t *testing.T) {
		deleter := &mockDeleter{}
		require.NoError(t, Logout(context.Background(), deleter, newStore(t), zerolog.Nop()))
		assert.Empty(t, deleter.deleted)
	})
}
