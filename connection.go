package devtools

import (
	"errors"
	"fmt"
	"sync"
)

// DefaultSessionLabel names the shared debugger session.
const DefaultSessionLabel = "Go Devtools Store"

var ErrNilConnection = errors.New("devtools: extension returned nil connection")

// ConnectionManager owns the single debugger connection shared by every
// bridged store.
type ConnectionManager struct {
	mu   sync.Mutex
	conn Connection
}

// NewConnectionManager constructs a manager without a connection.
func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{}
}

// EnsureConnected opens a connection through ext unless one already exists.
// opened reports whether this call created it.
func (m *ConnectionManager) EnsureConnected(ext Extension, label string) (opened bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn != nil {
		return false, nil
	}
	if ext == nil {
		return false, nil
	}
	if label == "" {
		label = DefaultSessionLabel
	}
	conn, err := ext.Connect(ConnectOptions{Name: label})
	if err != nil {
		return false, fmt.Errorf("devtools: connect %q: %w", label, err)
	}
	if conn == nil {
		return false, ErrNilConnection
	}
	m.conn = conn
	return true, nil
}

// Connected reports whether a connection is held.
func (m *ConnectionManager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn != nil
}

// Send forwards to the current connection. Without one the action is dropped
// and nil is returned.
func (m *ConnectionManager) Send(action Action, snapshot Snapshot) error {
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Send(action, snapshot)
}

// CloseIfUnused disconnects and clears the handle so the next attach opens a
// fresh connection. It is called once the registry is empty.
func (m *ConnectionManager) CloseIfUnused() error {
	m.mu.Lock()
	conn := m.conn
	m.conn = nil
	m.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Disconnect()
}

// Reset clears the handle without disconnecting. Test harnesses only.
func (m *ConnectionManager) Reset() {
	m.mu.Lock()
	m.conn = nil
	m.mu.Unlock()
}
