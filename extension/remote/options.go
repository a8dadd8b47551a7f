package remote

import (
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/gorilla/websocket"
)

// Option configures an Extension.
type Option func(*config)

type config struct {
	dialer          *websocket.Dialer
	header          http.Header
	log             logr.Logger
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsed      time.Duration
	writeTimeout    time.Duration
	closeTimeout    time.Duration
	queueHint       int64
	queueLimit      int64
}

func defaultConfig() config {
	return config{
		dialer:          websocket.DefaultDialer,
		log:             logr.Discard(),
		initialInterval: 500 * time.Millisecond,
		maxInterval:     20 * time.Second,
		writeTimeout:    10 * time.Second,
		closeTimeout:    5 * time.Second,
		queueHint:       64,
		queueLimit:      1024,
	}
}

// WithDialer overrides websocket.DefaultDialer.
func WithDialer(dialer *websocket.Dialer) Option {
	return func(cfg *config) {
		if dialer != nil {
			cfg.dialer = dialer
		}
	}
}

// WithHeader adds headers to the websocket handshake.
func WithHeader(header http.Header) Option {
	return func(cfg *config) {
		cfg.header = header.Clone()
	}
}

// WithLogger sets the logr logger used for connection diagnostics.
func WithLogger(log logr.Logger) Option {
	return func(cfg *config) {
		cfg.log = log
	}
}

// WithBackoff tunes reconnect delays. maxElapsed of zero retries until the
// session is closed.
func WithBackoff(initial, max, maxElapsed time.Duration) Option {
	return func(cfg *config) {
		if initial > 0 {
			cfg.initialInterval = initial
		}
		if max > 0 {
			cfg.maxInterval = max
		}
		cfg.maxElapsed = maxElapsed
	}
}

// WithWriteTimeout bounds each frame write.
func WithWriteTimeout(timeout time.Duration) Option {
	return func(cfg *config) {
		if timeout > 0 {
			cfg.writeTimeout = timeout
		}
	}
}

// WithCloseTimeout bounds how long the writer keeps flushing after Disconnect.
func WithCloseTimeout(timeout time.Duration) Option {
	return func(cfg *config) {
		if timeout > 0 {
			cfg.closeTimeout = timeout
		}
	}
}

// WithQueueHint presizes the outbound queue.
func WithQueueHint(hint int64) Option {
	return func(cfg *config) {
		if hint > 0 {
			cfg.queueHint = hint
		}
	}
}

// WithQueueLimit caps pending frames. Send fails with ErrQueueFull once the
// cap is reached. Zero or less removes the cap.
func WithQueueLimit(limit int64) Option {
	return func(cfg *config) {
		cfg.queueLimit = limit
	}
}
