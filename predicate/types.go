// Package predicate evaluates rules that decide whether an action is forwarded
// to the debugger. Rules see the action, the aggregated state, the name of the
// originating store and the evaluation time.
//
// Three engines are available: expr (default), CEL, and JavaScript through
// goja when built with the js_eval tag.
package predicate

import (
	"sync"
	"time"
)

// Context carries the inputs bound into a rule evaluation.
type Context struct {
	Action   map[string]any
	State    map[string]any
	Store    string
	Now      *time.Time
	Metadata map[string]any
}

func (ctx Context) withDefaultNow() Context {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx Context) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx Context) withDefaultMaps() Context {
	if ctx.Action == nil {
		ctx.Action = map[string]any{}
	}
	if ctx.State == nil {
		ctx.State = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx Context) withDefaults() Context {
	return ctx.withDefaultNow().withDefaultMaps()
}

func (ctx Context) storeLabel() string {
	if ctx.Store != "" {
		return ctx.Store
	}
	return "unknown"
}

func (ctx Context) bindings() map[string]any {
	return map[string]any{
		"action":   ctx.Action,
		"state":    ctx.State,
		"store":    ctx.Store,
		"now":      ctx.timestamp(),
		"metadata": ctx.Metadata,
	}
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx Context, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx Context) (any, error)
}

// ProgramCache stores compiled expression programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// MemoryCache is a ProgramCache backed by a map.
type MemoryCache struct {
	mu       sync.RWMutex
	programs map[string]any
}

// NewMemoryCache constructs an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{programs: map[string]any{}}
}

func (c *MemoryCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.programs[key]
	return value, ok
}

func (c *MemoryCache) Set(key string, value any) {
	c.mu.Lock()
	if c.programs == nil {
		c.programs = map[string]any{}
	}
	c.programs[key] = value
	c.mu.Unlock()
}
