package devtools

import (
	"sync"

	"github.com/goliatone/go-devtools/predicate"
)

// Drop reasons recorded in metrics and logs.
const (
	dropNoConnection = "no-connection"
	dropDetached     = "detached"
	dropDenylist     = "denylist"
	dropPredicate    = "predicate"
	dropSendError    = "send-error"
	dropPanic        = "panic"
)

// Bridge connects stores to an external debugger. Every store bridged
// through the same Bridge shares one registry and one connection.
type Bridge struct {
	registry *Registry
	conn     *ConnectionManager
	label    string
	logger   Logger
	metrics  *Metrics
	rule     *predicate.Rule
	denylist map[string]struct{}

	mu     sync.RWMutex
	env    Environment
	source ConfigSource
}

// New constructs a Bridge. It fails when the predicate does not compile or
// the metrics cannot be registered.
func New(opts ...Option) (*Bridge, error) {
	cfg := applyOptions(opts)
	b := &Bridge{
		registry: NewRegistry(),
		conn:     NewConnectionManager(),
		label:    cfg.sessionLabel,
		logger:   cfg.logger,
		env:      cfg.environment,
		source:   cfg.configSource,
		denylist: cfg.denylist,
	}
	if b.label == "" {
		b.label = DefaultSessionLabel
	}
	if b.logger == nil {
		b.logger = noopLogger{}
	}
	if b.env == nil {
		b.env = GlobalEnvironment()
	}
	if cfg.predicate != "" {
		rule, err := predicate.Compile(cfg.predicate, cfg.ruleOptions...)
		if err != nil {
			return nil, err
		}
		b.rule = rule
	}
	if cfg.registerer != nil {
		metrics, err := NewMetrics(cfg.registerer)
		if err != nil {
			return nil, err
		}
		b.metrics = metrics
	}
	return b, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *Bridge {
	b, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return b
}

// Registry exposes the bridge's store registry.
func (b *Bridge) Registry() *Registry {
	return b.registry
}

// Connections exposes the bridge's connection manager.
func (b *Bridge) Connections() *ConnectionManager {
	return b.conn
}

// SetConfigSource replaces the configuration source for later attaches.
func (b *Bridge) SetConfigSource(source ConfigSource) {
	b.mu.Lock()
	b.source = source
	b.mu.Unlock()
}

// SetEnvironment replaces the environment for later attaches.
func (b *Bridge) SetEnvironment(env Environment) {
	if env == nil {
		env = GlobalEnvironment()
	}
	b.mu.Lock()
	b.env = env
	b.mu.Unlock()
}

func (b *Bridge) decide() Decision {
	b.mu.RLock()
	env, source := b.env, b.source
	b.mu.RUnlock()
	return Decide(ResolveConfig(source), env)
}

// WithDevtools returns a Feature that bridges a store under name. When the
// activation policy disables bridging the store is returned unchanged.
func (b *Bridge) WithDevtools(name string) Feature {
	return func(store Store) (Store, error) {
		if store == nil {
			return nil, &AttachError{Store: name, Err: ErrNilStore}
		}
		decision := b.decide()
		if !decision.Enabled {
			b.logger.LogBridge(LogEvent{Kind: LogSkip, Store: name, Reason: decision.Reason})
			return store, nil
		}
		source, ok := store.(StateSource)
		if !ok {
			return nil, &AttachError{Store: name, Err: ErrMissingStateSource}
		}
		return newBridgedStore(b, name, store, source, decision.Extension), nil
	}
}

// Reset clears the connection handle and the registry without disconnecting.
// Intended for test harnesses only.
func (b *Bridge) Reset() {
	b.conn.Reset()
	b.registry.Reset()
	b.metrics.stores(0)
}

func (b *Bridge) attach(owner any, name string, source StateSource, ext Extension) {
	replaced := b.registry.RegisterOwned(name, owner, source.State)
	b.metrics.stores(b.registry.Len())
	event := LogEvent{Kind: LogAttach, Store: name}
	if replaced {
		event.Reason = "replaced"
	}
	b.logger.LogBridge(event)

	opened, err := b.conn.EnsureConnected(ext, b.label)
	if err != nil {
		b.logger.LogBridge(LogEvent{Kind: LogError, Store: name, Err: err})
		return
	}
	if opened {
		b.metrics.opened()
		b.logger.LogBridge(LogEvent{Kind: LogConnect, Store: name, Reason: b.label})
	}
}

// detach leaves the entry and the connection alone when a later store with
// the same name has taken over.
func (b *Bridge) detach(owner any, name string) {
	removed, empty := b.registry.UnregisterIf(name, owner)
	b.metrics.stores(b.registry.Len())
	if !removed || !empty {
		return
	}
	if err := b.conn.CloseIfUnused(); err != nil {
		b.logger.LogBridge(LogEvent{Kind: LogError, Store: name, Err: err})
	}
	b.logger.LogBridge(LogEvent{Kind: LogDisconnect, Store: name})
}

// report forwards action with the aggregated snapshot. Failures are logged
// and never reach the caller of the command.
func (b *Bridge) report(store string, action Action) {
	defer func() {
		if recovered := recover(); recovered != nil {
			b.drop(store, action, dropPanic, panicError(recovered))
		}
	}()

	if !b.conn.Connected() {
		b.drop(store, action, dropNoConnection, nil)
		return
	}
	if _, denied := b.denylist[action.Type]; denied {
		b.drop(store, action, dropDenylist, nil)
		return
	}
	snapshot := b.registry.Snapshot()
	if b.rule != nil {
		allowed, err := b.rule.Allow(predicate.Context{
			Action: action.Fields(),
			State:  snapshot,
			Store:  store,
		})
		if err != nil {
			b.logger.LogBridge(LogEvent{Kind: LogError, Store: store, Action: action.Type, Err: err})
		} else if !allowed {
			b.drop(store, action, dropPredicate, nil)
			return
		}
	}
	if err := b.conn.Send(action, snapshot); err != nil {
		b.drop(store, action, dropSendError, err)
		return
	}
	b.metrics.sent()
	b.logger.LogBridge(LogEvent{Kind: LogSend, Store: store, Action: action.Type})
}

func (b *Bridge) drop(store string, action Action, reason string, err error) {
	b.metrics.dropped(reason)
	kind := LogDrop
	if err != nil {
		kind = LogError
	}
	b.logger.LogBridge(LogEvent{Kind: kind, Store: store, Action: action.Type, Reason: reason, Err: err})
}

var defaultBridge = MustNew()

// Default returns the process-wide bridge used by WithDevtools.
func Default() *Bridge {
	return defaultBridge
}

// WithDevtools bridges a store through the process-wide bridge.
func WithDevtools(name string) Feature {
	return defaultBridge.WithDevtools(name)
}

// SetConfigSource configures the process-wide bridge.
func SetConfigSource(source ConfigSource) {
	defaultBridge.SetConfigSource(source)
}

// Reset clears the process-wide bridge state. Tests only.
func Reset() {
	defaultBridge.Reset()
}
