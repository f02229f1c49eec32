// Package filter narrows catalog lists with user-written boolean
// expressions such as `rating >= 7 && year >= 2020` or
// `contains(title, "star")`.
//
// Variables available to an expression:
//
//	title, overview, date  string
//	kind                   "movie" or "tv"
//	id, year               int
//	rating                 float64
//	released               time.Time (zero when the date is unknown)
//	isMovie, isTV, adult   bool
//
// Helper functions: contains, startsWith, endsWith, lower, upper, now,
// daysSince, daysAgo, yearsAgo, parseDate.
package filter

import (
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/marquee/tmdb"
)

const dateLayout = "2006-01-02"

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	compiler   *exprCompiler
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newLRUCache[CompiledFilter](size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.helperFuncs, funcs)
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) CachingCompiler {
	c := &exprCompiler{
		helperFuncs: createHelperFunctions(),
		envPool:     &sync.Pool{},
	}

	for _, opt := range opts {
		opt(c)
	}

	c.envPool.New = func() any {
		return make(map[string]any, len(c.helperFuncs)+16)
	}

	return c
}

type exprCompiler struct {
	helperFuncs map[string]any
	cache       *lruCache[CompiledFilter]
	envPool     *sync.Pool
}

// Compile compiles an expression into an executable filter
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	// Type-check against a sample environment so unknown variables and
	// mismatched operands fail here rather than per item.
	program, err := expr.Compile(expression,
		expr.Env(c.environment(tmdb.Summary{})),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	filter := &exprFilter{
		expression: expression,
		program:    program,
		compiler:   c,
	}

	if c.cache != nil {
		c.cache.Put(expression, filter)
	}

	return filter, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Size()
	}
	return 0
}

// environment builds a fresh evaluation environment for item
func (c *exprCompiler) environment(item tmdb.Summary) map[string]any {
	env := make(map[string]any, len(c.helperFuncs)+16)
	c.fill(env, item)
	return env
}

func (c *exprCompiler) fill(env map[string]any, item tmdb.Summary) {
	maps.Copy(env, c.helperFuncs)

	released, _ := time.Parse(dateLayout, item.Date)

	env["title"] = item.Title
	env["overview"] = item.Overview
	env["date"] = item.Date
	env["kind"] = string(item.Kind)
	env["id"] = int(item.ID)
	env["year"] = item.Year()
	env["rating"] = item.Rating
	env["released"] = released
	env["isMovie"] = item.Kind == tmdb.MediaKindMovie
	env["isTV"] = item.Kind == tmdb.MediaKindTV
	env["adult"] = item.Adult
}

// Evaluate evaluates the filter against one item
func (f *exprFilter) Evaluate(item tmdb.Summary) (bool, error) {
	env := f.compiler.envPool.Get().(map[string]any)
	defer func() {
		clear(env)
		f.compiler.envPool.Put(env)
	}()
	f.compiler.fill(env, item)

	result, err := expr.Run(f.program, env)
	if err != nil {
		return false, &EvaluationError{
			Expression: f.expression,
			ItemTitle:  item.Title,
			Err:        err,
		}
	}

	// AsBool at compile time guarantees the type
	return result.(bool), nil
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

func createHelperFunctions() map[string]any {
	funcs := make(map[string]any, 16)
	addHelperFunctions(funcs)
	return funcs
}

func addHelperFunctions(env map[string]any) {
	// Date helpers
	env["daysSince"] = func(t time.Time) int {
		return int(time.Since(t).Hours() / 24)
	}
	env["daysAgo"] = func(days int) time.Time {
		return time.Now().AddDate(0, 0, -days)
	}
	env["yearsAgo"] = func(years int) time.Time {
		return time.Now().AddDate(-years, 0, 0)
	}
	env["parseDate"] = func(dateStr string) time.Time {
		t, _ := time.Parse(dateLayout, dateStr)
		return t
	}
	// String helpers
	env["contains"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["startsWith"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	env["endsWith"] = func(str, suffix string) bool {
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
	}
	env["lower"] = strings.ToLower
	env["upper"] = strings.ToUpper
	env["now"] = time.Now
}
