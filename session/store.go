// Package session holds the current catalog session id for the process.
//
// A Store is loaded once from a Persister, and every mutation is written
// through to it before it becomes visible, so the durable copy and the
// in-memory copy agree whenever no mutation is in progress. Observers
// subscribe to be told about logins and logouts without polling.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// ErrEmptySession is returned by Update when asked to store "".
var ErrEmptySession = errors.New("session id must not be empty; use Clear to log out")

// Store is the process-wide session state.
type Store struct {
	mu        sync.RWMutex
	current   string
	persister Persister
	logger    zerolog.Logger

	subMu  sync.Mutex
	subs   map[int]chan string
	nextID int
}

// Open loads the persisted session id and returns a ready Store.
func Open(persister Persister, logger zerolog.Logger) (*Store, error) {
	if persister == nil {
		return nil, errors.New("session persister is required")
	}

	current, err := persister.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	logger.Debug().Bool("logged_in", current != "").Msg("Loaded session state")

	return &Store{
		current:   current,
		persister: persister,
		logger:    logger,
		subs:      make(map[int]chan string),
	}, nil
}

// Current returns the session id, or "" when logged out.
func (s *Store) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// IsLoggedIn reports whether a session id is held. It says nothing about
// whether the server still accepts it.
func (s *Store) IsLoggedIn() bool {
	return s.Current() != ""
}

// Update stores a new session id durably and publishes it.
func (s *Store) Update(sessionID string) error {
	if sessionID == "" {
		return ErrEmptySession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persister.Save(sessionID); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	changed := s.current != sessionID
	s.current = sessionID

	s.logger.Info().Msg("Session updated")
	if changed {
		s.publish(sessionID)
	}
	return nil
}

// Clear logs out: the durable copy is removed and "" is published.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persister.Remove(); err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	changed := s.current != ""
	s.current = ""

	s.logger.Info().Msg("Session cleared")
	if changed {
		s.publish("")
	}
	return nil
}

// Reload re-reads the durable copy, picking up a login or logout made by
// another process. It returns true if the session changed.
func (s *Store) Reload() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.persister.Load()
	if err != nil {
		return false, fmt.Errorf("failed to reload session: %w", err)
	}
	if stored == s.current {
		return false, nil
	}

	s.current = stored
	s.logger.Debug().Bool("logged_in", stored != "").Msg("Session changed on disk")
	s.publish(stored)
	return true, nil
}

// Subscribe returns a channel that receives the session id after every
// change, and a function that ends the subscription. Only the latest value
// is buffered: a slow reader sees the newest state, never a backlog.
func (s *Store) Subscribe() (<-chan string, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan string, 1)
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// publish must be called with s.mu held so notifications follow mutation order.
func (s *Store) publish(sessionID string) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, ch := range s.subs {
		// Drop a stale unread value so the send below cannot block.
		select {
		case <-ch:
		default:
		}
		ch <- sessionID
	}
}
