// Package devtoolstest provides a recording debugger extension for tests.
package devtoolstest

import (
	"sync"

	devtools "github.com/goliatone/go-devtools"
)

// Sent is one recorded Send call.
type Sent struct {
	Session string
	Action  devtools.Action
	State   devtools.Snapshot
}

// Extension records connects, sends and disconnects.
type Extension struct {
	// ConnectErr is returned by Connect when set.
	ConnectErr error
	// SendErr is returned by every Send when set.
	SendErr error

	mu          sync.Mutex
	connects    []devtools.ConnectOptions
	sent        []Sent
	disconnects int
}

// Connect implements devtools.Extension.
func (e *Extension) Connect(opts devtools.ConnectOptions) (devtools.Connection, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.connects = append(e.connects, opts)
	if e.ConnectErr != nil {
		return nil, e.ConnectErr
	}
	return &connection{ext: e, session: opts.Name}, nil
}

// ConnectCalls returns how many times Connect was called.
func (e *Extension) ConnectCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.connects)
}

// Sessions returns the names passed to Connect.
func (e *Extension) Sessions() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	names := make([]string, 0, len(e.connects))
	for _, opts := range e.connects {
		names = append(names, opts.Name)
	}
	return names
}

// Sent returns a copy of the recorded sends.
func (e *Extension) Sent() []Sent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Sent(nil), e.sent...)
}

// Disconnects returns how many connections were disconnected.
func (e *Extension) Disconnects() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.disconnects
}

type connection struct {
	ext     *Extension
	session string
}

func (c *connection) Send(action devtools.Action, state devtools.Snapshot) error {
	c.ext.mu.Lock()
	defer c.ext.mu.Unlock()
	if c.ext.SendErr != nil {
		return c.ext.SendErr
	}
	c.ext.sent = append(c.ext.sent, Sent{Session: c.session, Action: action, State: state})
	return nil
}

func (c *connection) Disconnect() error {
	c.ext.mu.Lock()
	c.ext.disconnects++
	c.ext.mu.Unlock()
	return nil
}

// Environment returns a non-headless environment exposing ext.
func Environment(ext devtools.Extension) devtools.Environment {
	return devtools.StaticEnvironment{Ext: ext}
}
