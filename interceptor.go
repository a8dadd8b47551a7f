package devtools

import "sync"

type attachState int

const (
	stateUninitialized attachState = iota
	stateAttached
	stateDetached
)

// bridgedStore wraps a store so its commands are reported. Method wrapping is
// fixed when the store is bridged.
type bridgedStore struct {
	bridge  *Bridge
	name    string
	inner   Store
	source  StateSource
	ext     Extension
	methods Methods

	mu    sync.Mutex
	state attachState
}

func newBridgedStore(b *Bridge, name string, inner Store, source StateSource, ext Extension) *bridgedStore {
	s := &bridgedStore{
		bridge: b,
		name:   name,
		inner:  inner,
		source: source,
		ext:    ext,
	}
	s.methods = s.wrapMethods(inner.Methods())
	return s
}

func (s *bridgedStore) wrapMethods(methods Methods) Methods {
	wrapped := make(Methods, len(methods))
	for name, method := range methods {
		if cmd, ok := method.(Command); ok && cmd != nil {
			wrapped[name] = s.intercept(cmd)
			continue
		}
		wrapped[name] = method
	}
	return wrapped
}

func (s *bridgedStore) intercept(cmd Command) Command {
	return func(args ...any) Action {
		action := cmd(args...)
		if s.attached() {
			s.bridge.report(s.name, action)
		} else {
			s.bridge.drop(s.name, action, dropDetached, nil)
		}
		return action
	}
}

func (s *bridgedStore) Methods() Methods {
	return s.methods
}

// State delegates to the wrapped store so features can be stacked.
func (s *bridgedStore) State() any {
	return s.source.State()
}

// Unwrap returns the store this one decorates.
func (s *bridgedStore) Unwrap() Store {
	return s.inner
}

func (s *bridgedStore) Hooks() Hooks {
	inner := s.inner.Hooks()
	return Hooks{
		OnInit: func() {
			inner.init()
			s.onInit()
		},
		OnDestroy: func() {
			inner.destroy()
			s.onDestroy()
		},
	}
}

func (s *bridgedStore) attached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateAttached
}

func (s *bridgedStore) onInit() {
	s.mu.Lock()
	if s.state != stateUninitialized {
		s.mu.Unlock()
		return
	}
	s.state = stateAttached
	s.mu.Unlock()
	s.bridge.attach(s, s.name, s.source, s.ext)
}

func (s *bridgedStore) onDestroy() {
	s.mu.Lock()
	if s.state != stateAttached {
		s.state = stateDetached
		s.mu.Unlock()
		return
	}
	s.state = stateDetached
	s.mu.Unlock()
	s.bridge.detach(s, s.name)
}
