// Package remote forwards bridge traffic to a devtools relay over a
// websocket. Neither Send nor Disconnect waits on the network. Frames are
// encoded in the caller, queued in order and written by a per-session
// goroutine that reconnects with exponential backoff.
package remote

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	queuepkg "github.com/Workiva/go-datastructures/queue"
	"github.com/cenkalti/backoff/v4"
	"github.com/go-logr/logr"
	devtools "github.com/goliatone/go-devtools"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var (
	ErrClosed    = errors.New("remote: session closed")
	ErrQueueFull = errors.New("remote: outbound queue full")
)

// Extension dials a relay for every debugger session.
type Extension struct {
	url string
	cfg config
}

// New constructs an Extension targeting url (ws:// or wss://).
func New(url string, opts ...Option) *Extension {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Extension{url: url, cfg: cfg}
}

// Connect implements devtools.Extension. It queues the START frame and returns
// without waiting for the websocket handshake.
func (e *Extension) Connect(opts devtools.ConnectOptions) (devtools.Connection, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		ext:        e,
		instanceID: uuid.NewString(),
		name:       opts.Name,
		queue:      queuepkg.New(e.cfg.queueHint),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	s.log = e.cfg.log.WithValues("instanceId", s.instanceID, "session", opts.Name)

	start, err := Encode(Message{Type: MessageStart, InstanceID: s.instanceID, Name: s.name})
	if err != nil {
		cancel()
		return nil, err
	}
	if err := s.queue.Put(frame{data: start}); err != nil {
		cancel()
		return nil, err
	}
	go s.run()
	return s, nil
}

type frame struct {
	data  []byte
	final bool
}

type session struct {
	ext        *Extension
	instanceID string
	name       string
	queue      *queuepkg.Queue
	log        logr.Logger
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
	closed     atomic.Bool
	connected  atomic.Bool
	dialFailed atomic.Bool
}

// InstanceID identifies the session on the relay.
func (s *session) InstanceID() string {
	return s.instanceID
}

// Done is closed once the writer goroutine has exited.
func (s *session) Done() <-chan struct{} {
	return s.done
}

// Send queues an ACTION frame. Once the queue holds the configured limit the
// frame is dropped with ErrQueueFull.
func (s *session) Send(action devtools.Action, snapshot devtools.Snapshot) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if limit := s.ext.cfg.queueLimit; limit > 0 && s.queue.Len() >= limit {
		return ErrQueueFull
	}
	data, err := Encode(Message{
		Type:       MessageAction,
		InstanceID: s.instanceID,
		Name:       s.name,
		Action:     &action,
		Payload:    snapshot,
	})
	if err != nil {
		return err
	}
	if err := s.queue.Put(frame{data: data}); err != nil {
		return fmt.Errorf("%w: %v", ErrClosed, err)
	}
	return nil
}

// Disconnect queues STOP and returns. The writer flushes in the background
// for at most the close timeout. A session that never reached the relay and
// has already failed a dial is cancelled at once.
func (s *session) Disconnect() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	stop, err := Encode(Message{Type: MessageStop, InstanceID: s.instanceID, Name: s.name})
	if err != nil {
		s.cancel()
		return err
	}
	if err := s.queue.Put(frame{data: stop, final: true}); err != nil {
		s.cancel()
		return nil
	}
	if !s.connected.Load() && s.dialFailed.Load() {
		s.cancel()
		return nil
	}
	time.AfterFunc(s.ext.cfg.closeTimeout, s.cancel)
	return nil
}

func (s *session) run() {
	defer close(s.done)
	defer s.queue.Dispose()
	defer s.cancel()

	var conn *websocket.Conn
	defer func() {
		s.connected.Store(false)
		if conn != nil {
			_ = conn.Close()
		}
	}()

	for {
		items, err := s.queue.Get(1)
		if err != nil {
			return
		}
		f, ok := items[0].(frame)
		if !ok {
			continue
		}
		for {
			if conn == nil {
				if conn, err = s.dial(); err != nil {
					if !errors.Is(err, context.Canceled) {
						s.log.Error(err, "relay unreachable, dropping session")
					}
					return
				}
				s.connected.Store(true)
			}
			if err = s.write(conn, f.data); err == nil {
				break
			}
			s.log.V(1).Info("write failed, reconnecting", "error", err.Error())
			s.connected.Store(false)
			_ = conn.Close()
			conn = nil
		}
		if f.final {
			deadline := time.Now().Add(s.ext.cfg.writeTimeout)
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			return
		}
	}
}

func (s *session) dial() (*websocket.Conn, error) {
	cfg := s.ext.cfg
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = cfg.initialInterval
	policy.MaxInterval = cfg.maxInterval
	policy.MaxElapsedTime = cfg.maxElapsed

	var lastErr error
	conn, err := backoff.RetryNotifyWithData(
		func() (*websocket.Conn, error) {
			conn, _, err := cfg.dialer.DialContext(s.ctx, s.ext.url, cfg.header)
			return conn, err
		},
		backoff.WithContext(policy, s.ctx),
		func(err error, delay time.Duration) {
			lastErr = err
			s.dialFailed.Store(true)
			s.log.V(1).Info("dial failed, retrying", "url", s.ext.url, "error", err.Error(), "delay", delay)
		},
	)
	if err != nil {
		s.dialFailed.Store(true)
		return nil, errors.Join(lastErr, err)
	}
	s.log.V(1).Info("connected to relay", "url", s.ext.url)
	return conn, nil
}

func (s *session) write(conn *websocket.Conn, data []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(s.ext.cfg.writeTimeout)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}
