package devtools

import "sync"

// ConnectOptions are passed to Extension.Connect.
type ConnectOptions struct {
	// Name labels the debugging session.
	Name string
}

// Extension is the external debugger entry point.
type Extension interface {
	Connect(opts ConnectOptions) (Connection, error)
}

// Connection is a live session with the external debugger.
type Connection interface {
	Send(action Action, state Snapshot) error
	Disconnect() error
}

// ExtensionFunc adapts a function to Extension.
type ExtensionFunc func(opts ConnectOptions) (Connection, error)

// Connect implements Extension.
func (f ExtensionFunc) Connect(opts ConnectOptions) (Connection, error) {
	return f(opts)
}

// Environment answers the two questions the activation policy asks.
type Environment interface {
	// Headless reports whether the process runs without a debugger host.
	Headless() bool
	// Extension returns the debugger extension, or nil when absent.
	Extension() Extension
}

// StaticEnvironment is a fixed Environment.
type StaticEnvironment struct {
	IsHeadless bool
	Ext        Extension
}

func (e StaticEnvironment) Headless() bool       { return e.IsHeadless }
func (e StaticEnvironment) Extension() Extension { return e.Ext }

var (
	globalMu        sync.RWMutex
	globalExtension Extension
	globalHeadless  bool
)

// SetGlobalExtension installs the process-wide debugger extension. Passing nil
// removes it.
func SetGlobalExtension(ext Extension) {
	globalMu.Lock()
	globalExtension = ext
	globalMu.Unlock()
}

// SetHeadless marks the process as headless for the global environment.
func SetHeadless(headless bool) {
	globalMu.Lock()
	globalHeadless = headless
	globalMu.Unlock()
}

// GlobalEnvironment reads the process-wide extension slot and headless flag at
// call time.
func GlobalEnvironment() Environment {
	return globalEnvironment{}
}

type globalEnvironment struct{}

func (globalEnvironment) Headless() bool {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalHeadless
}

func (globalEnvironment) Extension() Extension {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalExtension
}
