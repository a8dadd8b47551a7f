// Package signalstore is a small generic state container that satisfies the
// devtools Store and StateSource contracts.
package signalstore

import (
	"sync"

	devtools "github.com/goliatone/go-devtools"
)

// Store holds a value of type S and the methods that read or change it.
type Store[S any] struct {
	mu      sync.RWMutex
	state   S
	methods devtools.Methods
	hooks   devtools.Hooks
}

// Option configures a Store.
type Option[S any] func(*Store[S])

// WithHooks attaches lifecycle callbacks.
func WithHooks[S any](hooks devtools.Hooks) Option[S] {
	return func(s *Store[S]) {
		s.hooks = hooks
	}
}

// New constructs a Store holding initial.
func New[S any](initial S, opts ...Option[S]) *Store[S] {
	s := &Store[S]{
		state:   initial,
		methods: devtools.Methods{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Get returns the current state.
func (s *Store[S]) Get() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// State implements devtools.StateSource.
func (s *Store[S]) State() any {
	return s.Get()
}

// Patch replaces the state with fn(current).
func (s *Store[S]) Patch(fn func(S) S) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.state = fn(s.state)
	s.mu.Unlock()
}

// Define registers method under name, replacing any previous definition.
func (s *Store[S]) Define(name string, method devtools.Method) *Store[S] {
	s.mu.Lock()
	s.methods[name] = method
	s.mu.Unlock()
	return s
}

// Methods implements devtools.Store.
func (s *Store[S]) Methods() devtools.Methods {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(devtools.Methods, len(s.methods))
	for name, method := range s.methods {
		out[name] = method
	}
	return out
}

// Hooks implements devtools.Store.
func (s *Store[S]) Hooks() devtools.Hooks {
	return s.hooks
}

// Updater computes the next state from the current one and the call
// arguments.
type Updater[S any] func(state S, args ...any) S

// Update builds a Command that applies fn and reports an action named
// actionType. An empty actionType falls back to devtools.DefaultActionType.
func Update[S any](s *Store[S], actionType string, fn Updater[S]) devtools.Command {
	if actionType == "" {
		actionType = devtools.DefaultActionType
	}
	return func(args ...any) devtools.Action {
		if fn != nil {
			s.Patch(func(state S) S {
				return fn(state, args...)
			})
		}
		return devtools.Action{Type: actionType}
	}
}

// Commit builds a Command that changes nothing and reports
// devtools.DefaultActionType, useful to push the current state.
func Commit[S any](s *Store[S]) devtools.Command {
	return Update[S](s, devtools.DefaultActionType, nil)
}

// Select builds a Query reading a projection of the state.
func Select[S any, R any](s *Store[S], fn func(S) R) devtools.Query {
	return func(...any) any {
		return fn(s.Get())
	}
}
