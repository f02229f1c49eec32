package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Persister is the durable home of the session id.
type Persister interface {
	// Load returns the stored session id, or "" if none is stored.
	Load() (string, error)
	// Save replaces the stored session id.
	Save(sessionID string) error
	// Remove deletes the stored session id. Removing nothing is not an error.
	Remove() error
}

// stateFile is the on-disk document. session_id is the fixed key.
type stateFile struct {
	SessionID string `yaml:"session_id"`
}

// FilePersister stores the session id in a small YAML file.
type FilePersister struct {
	path string
}

// NewFilePersister returns a persister writing to path. The parent
// directory is created on first save.
func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path}
}

// Path returns the file the persister writes to.
func (p *FilePersister) Path() string {
	return p.path
}

// Load implements Persister
func (p *FilePersister) Load() (string, error) {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session file: %w", err)
	}

	var state stateFile
	if err := yaml.Unmarshal(data, &state); err != nil {
		return "", fmt.Errorf("failed to parse session file %s: %w", p.path, err)
	}
	return state.SessionID, nil
}

// Save implements Persister. The file is replaced atomically so a crash
// never leaves a half-written session behind.
func (p *FilePersister) Save(sessionID string) error {
	data, err := yaml.Marshal(stateFile{SessionID: sessionID})
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp session file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set session file mode: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close session file: %w", err)
	}

	if err := os.Rename(tmpName, p.path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

// Remove implements Persister
func (p *FilePersister) Remove() error {
	if err := os.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// MemoryPersister keeps the session id in memory. It is useful for tests
// and for running without a state directory.
type MemoryPersister struct {
	mu        sync.Mutex
	sessionID string
	err       error
}

// NewMemoryPersister returns a persister preloaded with sessionID.
func NewMemoryPersister(sessionID string) *MemoryPersister {
	return &MemoryPersister{sessionID: sessionID}
}

// SetError makes every following Save and Remove fail with err.
// Passing nil restores normal behaviour.
func (m *MemoryPersister) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Load implements Persister
func (m *MemoryPersister) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID, nil
}

// Save implements Persister
func (m *MemoryPersister) Save(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sessionID = sessionID
	return nil
}

// Remove implements Persister
func (m *MemoryPersister) Remove() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sessionID = ""
	return nil
}
