package membership

import (
	"context"
	"errors"
	"sync"

	"github.com/s0up4200/marquee/tmdb"
)

// ToggleState is the lifecycle of one membership control
type ToggleState int

const (
	// ToggleUnknown means membership has not been checked yet
	ToggleUnknown ToggleState = iota
	// ToggleChecking means a membership read is in flight
	ToggleChecking
	// ToggleKnown means Value reflects the last successful read or write
	ToggleKnown
	// ToggleSubmitting means a write is in flight; Value is still the old value
	ToggleSubmitting
)

// String returns the string representation of a ToggleState
func (s ToggleState) String() string {
	switch s {
	case ToggleUnknown:
		return "unknown"
	case ToggleChecking:
		return "checking"
	case ToggleKnown:
		return "known"
	case ToggleSubmitting:
		return "submitting"
	default:
		return "invalid"
	}
}

// ErrBusy is returned when a toggle already has a request in flight
var ErrBusy = errors.New("membership request already in progress")

// Snapshot is what a control should render
type Snapshot struct {
	State ToggleState
	Value bool
	Err   error
}

// Toggle tracks one (list, item) membership the way a favorite or
// watchlist button shows it. The displayed value only changes after the
// server confirms a write; a failed write leaves it as it was.
type Toggle struct {
	coordinator *Coordinator
	list        tmdb.ListKind
	ref         Ref

	mu    sync.Mutex
	state ToggleState
	value bool
	err   error
}

// NewToggle creates a toggle in ToggleUnknown
func (c *Coordinator) NewToggle(list tmdb.ListKind, ref Ref) *Toggle {
	return &Toggle{
		coordinator: c,
		list:        list,
		ref:         ref,
		state:       ToggleUnknown,
	}
}

// Snapshot returns the current state and value
func (t *Toggle) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{State: t.state, Value: t.value, Err: t.err}
}

// Value returns the displayed membership
func (t *Toggle) Value() bool {
	return t.Snapshot().Value
}

// Refresh reads membership from the server. On failure the toggle returns
// to the state it was in before.
func (t *Toggle) Refresh(ctx context.Context) error {
	t.mu.Lock()
	if t.state == ToggleChecking || t.state == ToggleSubmitting {
		t.mu.Unlock()
		return ErrBusy
	}
	prev := t.state
	t.state = ToggleChecking
	t.mu.Unlock()

	value, err := t.coordinator.IsMember(ctx, t.list, t.ref)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.err = err
	if err != nil {
		t.state = prev
		return err
	}
	t.value = value
	t.state = ToggleKnown
	return nil
}

// Set writes a new membership value. The toggle must be known first and
// stays ToggleSubmitting until the write, and its verification when the
// coordinator verifies writes, has finished. On success the displayed value
// becomes value, or the re-read value if verification succeeds; on failure
// it is unchanged.
func (t *Toggle) Set(ctx context.Context, value bool) error {
	t.mu.Lock()
	switch t.state {
	case ToggleChecking, ToggleSubmitting:
		t.mu.Unlock()
		return ErrBusy
	case ToggleUnknown:
		t.mu.Unlock()
		return errors.New("membership must be checked before it can be changed")
	}
	t.state = ToggleSubmitting
	t.mu.Unlock()

	if err := t.coordinator.SetMember(ctx, t.list, t.ref, value); err != nil {
		t.mu.Lock()
		t.err = err
		t.state = ToggleKnown
		t.mu.Unlock()
		return err
	}

	if t.coordinator.verifyWrites {
		verified, err := t.coordinator.IsMember(ctx, t.list, t.ref)
		if err != nil {
			t.coordinator.logger.Debug().Err(err).
				Stringer("item", t.ref).
				Msg("Could not verify membership write, keeping written value")
		} else {
			value = verified
		}
	}

	t.mu.Lock()
	t.err = nil
	t.value = value
	t.state = ToggleKnown
	t.mu.Unlock()
	return nil
}

// Flip inverts the displayed value.
func (t *Toggle) Flip(ctx context.Context) error {
	return t.Set(ctx, !t.Value())
}
