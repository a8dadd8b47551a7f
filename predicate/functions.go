package predicate

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

var (
	ErrInvalidFunction   = errors.New("predicate: invalid rule helper")
	ErrDuplicateFunction = errors.New("predicate: rule helper already registered")
	ErrUnknownFunction   = errors.New("predicate: rule helper not registered")
)

// Function is a rule helper. Rules call it as name(args) under expr and as
// call("name", [args]) under CEL and JavaScript. A returned error fails the
// evaluation, which the bridge treats as an allow.
type Function func(args ...any) (any, error)

// FunctionRegistry holds the helpers a rule may call. Lookup ignores case so
// "hasPrefix" and "hasprefix" name the same helper.
type FunctionRegistry struct {
	mu      sync.RWMutex
	helpers map[string]Function
}

func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{helpers: make(map[string]Function)}
}

func helperKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds a helper. Names are unique ignoring case.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	key := helperKey(name)
	switch {
	case key == "":
		return fmt.Errorf("%w: empty name", ErrInvalidFunction)
	case fn == nil:
		return fmt.Errorf("%w: %q is nil", ErrInvalidFunction, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.helpers == nil {
		r.helpers = make(map[string]Function)
	}
	if _, taken := r.helpers[key]; taken {
		return fmt.Errorf("%w: %q", ErrDuplicateFunction, name)
	}
	r.helpers[key] = fn
	return nil
}

// Clone copies the helper table so a compiled rule is unaffected by later
// registrations.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &FunctionRegistry{helpers: maps.Clone(r.helpers)}
}

func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
	}
	r.mu.RLock()
	fn := r.helpers[helperKey(name)]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
	}
	return fn(args...)
}

// Names lists the lower-cased helper names in sorted order. The expr engine
// declares one function per entry.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.helpers))
}
