package filter

import (
	"github.com/s0up4200/marquee/tmdb"
)

// CompiledFilter is a pre-compiled expression ready for evaluation
type CompiledFilter interface {
	// Evaluate reports whether item matches. An error means the
	// expression could not be evaluated for this item.
	Evaluate(item tmdb.Summary) (bool, error)

	// Expression returns the original filter expression
	Expression() string
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	// Compile parses and compiles a filter expression
	Compile(expression string) (CompiledFilter, error)
}

// CachingCompiler provides caching for compiled filters
type CachingCompiler interface {
	Compiler

	// Clear removes all cached filters
	Clear()

	// Size returns the number of cached filters
	Size() int
}
