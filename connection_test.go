package devtools

import (
	"errors"
	"testing"
)

type countingExtension struct {
	connects    int
	names       []string
	sent        []Action
	disconnects int
	err         error
	nilConn     bool
}

func (e *countingExtension) Connect(opts ConnectOptions) (Connection, error) {
	e.connects++
	e.names = append(e.names, opts.Name)
	if e.err != nil {
		return nil, e.err
	}
	if e.nilConn {
		return nil, nil
	}
	return countingConnection{e}, nil
}

type countingConnection struct {
	ext *countingExtension
}

func (c countingConnection) Send(action Action, _ Snapshot) error {
	c.ext.sent = append(c.ext.sent, action)
	return nil
}

func (c countingConnection) Disconnect() error {
	c.ext.disconnects++
	return nil
}

func TestEnsureConnectedIsIdempotent(t *testing.T) {
	ext := &countingExtension{}
	m := NewConnectionManager()

	opened, err := m.EnsureConnected(ext, "")
	if err != nil || !opened {
		t.Fatalf("expected first call to open, got opened=%v err=%v", opened, err)
	}
	opened, err = m.EnsureConnected(ext, "other")
	if err != nil || opened {
		t.Fatalf("expected second call to be a no-op, got opened=%v err=%v", opened, err)
	}
	if ext.connects != 1 {
		t.Fatalf("expected one connect, got %d", ext.connects)
	}
	if ext.names[0] != DefaultSessionLabel {
		t.Fatalf("expected default label, got %q", ext.names[0])
	}
}

func TestSendWithoutConnectionDrops(t *testing.T) {
	m := NewConnectionManager()
	if err := m.Send(Action{Type: "noop"}, Snapshot{}); err != nil {
		t.Fatalf("expected silent drop, got %v", err)
	}
}

func TestCloseIfUnusedAllowsReconnect(t *testing.T) {
	ext := &countingExtension{}
	m := NewConnectionManager()
	if _, err := m.EnsureConnected(ext, "session"); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := m.Send(Action{Type: "one"}, nil); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := m.CloseIfUnused(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if m.Connected() {
		t.Fatalf("expected handle cleared")
	}
	if err := m.CloseIfUnused(); err != nil {
		t.Fatalf("second close should be a no-op, got %v", err)
	}
	if ext.disconnects != 1 {
		t.Fatalf("expected one disconnect, got %d", ext.disconnects)
	}
	if _, err := m.EnsureConnected(ext, "session"); err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	if ext.connects != 2 {
		t.Fatalf("expected reconnect, got %d connects", ext.connects)
	}
	if len(ext.sent) != 1 {
		t.Fatalf("expected one action sent, got %d", len(ext.sent))
	}
}

func TestResetClearsWithoutDisconnect(t *testing.T) {
	ext := &countingExtension{}
	m := NewConnectionManager()
	if _, err := m.EnsureConnected(ext, "session"); err != nil {
		t.Fatalf("connect: %v", err)
	}
	m.Reset()
	if m.Connected() {
		t.Fatalf("expected handle cleared")
	}
	if ext.disconnects != 0 {
		t.Fatalf("reset must not disconnect")
	}
}

func TestEnsureConnectedErrors(t *testing.T) {
	boom := errors.New("boom")
	m := NewConnectionManager()
	if _, err := m.EnsureConnected(&countingExtension{err: boom}, "s"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped connect error, got %v", err)
	}
	if _, err := m.EnsureConnected(&countingExtension{nilConn: true}, "s"); !errors.Is(err, ErrNilConnection) {
		t.Fatalf("expected ErrNilConnection, got %v", err)
	}
	if opened, err := m.EnsureConnected(nil, "s"); opened || err != nil {
		t.Fatalf("expected nil extension to be ignored, got %v %v", opened, err)
	}
	if m.Connected() {
		t.Fatalf("expected no connection after failures")
	}
}
