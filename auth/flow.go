// Package auth drives the catalog's browser-delegated sign-in.
//
// The handshake has three steps: obtain a request token, let the user
// approve it on the catalog's website, then exchange it for a session id.
// Step two happens outside the process, so the Flow waits for a resume
// signal (the host regaining focus, or the user pressing Enter) before it
// attempts the exchange.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/s0up4200/marquee/tmdb"
)

// State is a step of the sign-in handshake
type State int

const (
	// StateIdle means no sign-in has been attempted
	StateIdle State = iota
	// StateTokenRequested means a request token is being fetched
	StateTokenRequested
	// StateAwaitingApproval means the user has been sent to approve the token
	StateAwaitingApproval
	// StateCreatingSession means the approved token is being exchanged
	StateCreatingSession
	// StateSessionCreated means a session was stored; terminal
	StateSessionCreated
	// StateFailed means a step failed; Err holds the cause
	StateFailed
)

// String returns the string representation of a State
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTokenRequested:
		return "token-requested"
	case StateAwaitingApproval:
		return "awaiting-approval"
	case StateCreatingSession:
		return "creating-session"
	case StateSessionCreated:
		return "session-created"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Step identifies which transition failed
type Step string

const (
	StepTokenRequest  Step = "token-request"
	StepApproval      Step = "approval"
	StepSessionCreate Step = "session-create"
)

// ErrInProgress is returned by Start when a sign-in is already under way
// or has completed.
var ErrInProgress = errors.New("sign-in already in progress")

// FlowError records the step at which a sign-in failed
type FlowError struct {
	Step Step
	Err  error
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("sign-in failed at %s: %v", e.Step, e.Err)
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

// Approver sends the user to approve a request token, typically by
// opening a browser. It must not block until approval.
type Approver interface {
	Approve(ctx context.Context, approvalURL string) error
}

// ApproverFunc adapts a function to Approver
type ApproverFunc func(ctx context.Context, approvalURL string) error

// Approve implements Approver
func (f ApproverFunc) Approve(ctx context.Context, approvalURL string) error {
	return f(ctx, approvalURL)
}

// SessionWriter receives the session id on success
type SessionWriter interface {
	Update(sessionID string) error
}

// Flow is one sign-in attempt. It is safe for concurrent use; resume
// signals that arrive outside StateAwaitingApproval are ignored.
type Flow struct {
	api      tmdb.Authenticator
	approver Approver
	sessions SessionWriter
	logger   zerolog.Logger

	mu    sync.Mutex
	state State
	token string
	err   error
}

// NewFlow creates an idle sign-in flow
func NewFlow(api tmdb.Authenticator, approver Approver, sessions SessionWriter, logger zerolog.Logger) *Flow {
	return &Flow{
		api:      api,
		approver: approver,
		sessions: sessions,
		logger:   logger,
		state:    StateIdle,
	}
}

// State returns the current step
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Err returns the failure cause once the flow is in StateFailed
func (f *Flow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Start requests a token and hands it to the Approver. It may be called
// from StateIdle, or from StateFailed to try again.
func (f *Flow) Start(ctx context.Context) error {
	f.mu.Lock()
	if f.state != StateIdle && f.state != StateFailed {
		state := f.state
		f.mu.Unlock()
		return fmt.Errorf("%w (state %s)", ErrInProgress, state)
	}
	f.state = StateTokenRequested
	f.token = ""
	f.err = nil
	f.mu.Unlock()

	token, err := f.api.NewRequestToken(ctx)
	if err != nil {
		return f.fail(StepTokenRequest, err)
	}

	approvalURL := f.api.ApprovalURL(token)
	f.logger.Debug().Str("url", approvalURL).Msg("Handing request token to approver")

	if err := f.approver.Approve(ctx, approvalURL); err != nil {
		return f.fail(StepApproval, err)
	}

	f.mu.Lock()
	f.token = token
	f.state = StateAwaitingApproval
	f.mu.Unlock()

	f.logger.Info().Msg("Waiting for the request token to be approved")
	return nil
}

// Resume is the re-entry signal. In StateAwaitingApproval it exchanges the
// held token for a session and stores it; in every other state it returns
// nil without doing anything.
func (f *Flow) Resume(ctx context.Context) error {
	f.mu.Lock()
	if f.state != StateAwaitingApproval {
		state := f.state
		f.mu.Unlock()
		f.logger.Debug().Stringer("state", state).Msg("Ignoring resume signal")
		return nil
	}
	f.state = StateCreatingSession
	token := f.token
	f.mu.Unlock()

	sessionID, err := f.api.NewSession(ctx, token)
	if err != nil {
		return f.fail(StepSessionCreate, err)
	}
	if err := f.sessions.Update(sessionID); err != nil {
		return f.fail(StepSessionCreate, err)
	}

	f.mu.Lock()
	f.token = ""
	f.state = StateSessionCreated
	f.mu.Unlock()

	f.logger.Info().Msg("Signed in")
	return nil
}

func (f *Flow) fail(step Step, err error) error {
	flowErr := &FlowError{Step: step, Err: err}

	f.mu.Lock()
	f.state = StateFailed
	f.token = ""
	f.err = flowErr
	f.mu.Unlock()

	f.logger.Warn().Err(err).Str("step", string(step)).Msg("Sign-in failed")
	return flowErr
}
