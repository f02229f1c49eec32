package filter

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/s0up4200/marquee/tmdb"
)

// namedPrefix marks a reference to a registered filter, e.g. "@recent"
const namedPrefix = "@"

// Manager holds named filters and applies filters to lists
type Manager struct {
	compiler Compiler
	filters  map[string]CompiledFilter
	logger   zerolog.Logger
	mu       sync.RWMutex
}

// ManagerOption configures a filter manager
type ManagerOption func(*Manager)

// WithCompiler sets a custom compiler
func WithCompiler(compiler Compiler) ManagerOption {
	return func(m *Manager) {
		m.compiler = compiler
	}
}

// WithLogger sets the logger used to report skipped items
func WithLogger(logger zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new filter manager
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		compiler: NewExprCompiler(WithCache(100)),
		filters:  make(map[string]CompiledFilter),
		logger:   zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// RegisterFilters compiles and registers filters by name. Nothing is
// registered if any expression fails to compile.
func (m *Manager) RegisterFilters(filters map[string]string) error {
	compiled := make(map[string]CompiledFilter, len(filters))

	for name, expression := range filters {
		filter, err := m.compiler.Compile(expression)
		if err != nil {
			return fmt.Errorf("failed to compile filter '%s': %w", name, err)
		}
		compiled[name] = filter
	}

	m.mu.Lock()
	maps.Copy(m.filters, compiled)
	m.mu.Unlock()

	return nil
}

// GetFilter returns a compiled filter by name
func (m *Manager) GetFilter(name string) (CompiledFilter, bool) {
	m.mu.RLock()
	filter, exists := m.filters[name]
	m.mu.RUnlock()
	return filter, exists
}

// ListFilters returns all registered filter names, sorted
func (m *Manager) ListFilters() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.filters))
}

// Resolve turns a --filter argument into a filter: "@name" selects a
// registered filter, anything else is compiled as an expression. An empty
// argument yields nil, which matches everything.
func (m *Manager) Resolve(arg string) (CompiledFilter, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return nil, nil
	}

	if name, ok := strings.CutPrefix(arg, namedPrefix); ok {
		filter, exists := m.GetFilter(name)
		if !exists {
			return nil, fmt.Errorf("filter '%s' not found", name)
		}
		return filter, nil
	}

	return m.compiler.Compile(arg)
}

// Result is the outcome of applying a filter to a list
type Result[T tmdb.Summarizer] struct {
	Matches []T
	// Errors counts items skipped because evaluation failed
	Errors int
}

// Apply returns the items that match filter, in their original order. A nil
// filter matches everything. Items the filter cannot evaluate are skipped
// and counted.
func Apply[T tmdb.Summarizer](m *Manager, filter CompiledFilter, items []T) Result[T] {
	if filter == nil {
		return Result[T]{Matches: items}
	}

	result := Result[T]{Matches: make([]T, 0, len(items))}
	for _, item := range items {
		summary := item.Summary()
		ok, err := filter.Evaluate(summary)
		if err != nil {
			result.Errors++
			m.logger.Debug().Err(err).Str("title", summary.Title).Msg("Skipping item the filter could not evaluate")
			continue
		}
		if ok {
			result.Matches = append(result.Matches, item)
		}
	}

	if result.Errors > 0 {
		m.logger.Warn().
			Str("filter", filter.Expression()).
			Int("errors", result.Errors).
			Msg("Some items could not be evaluated")
	}
	return result
}
