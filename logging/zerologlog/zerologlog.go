// Package zerologlog writes bridge and predicate events to a zerolog logger.
package zerologlog

import (
	devtools "github.com/goliatone/go-devtools"
	"github.com/goliatone/go-devtools/predicate"
	"github.com/rs/zerolog"
)

// Logger implements devtools.Logger and predicate.Logger.
type Logger struct {
	log zerolog.Logger
}

// New wraps log.
func New(log zerolog.Logger) Logger {
	return Logger{log: log.With().Str("component", "devtools").Logger()}
}

// LogBridge implements devtools.Logger. Errors log at error level, skips and
// drops at debug and the rest at info.
func (l Logger) LogBridge(event devtools.LogEvent) {
	var e *zerolog.Event
	switch {
	case event.Err != nil || event.Kind == devtools.LogError:
		e = l.log.Error().Err(event.Err)
	case event.Kind == devtools.LogSkip, event.Kind == devtools.LogDrop:
		e = l.log.Debug()
	default:
		e = l.log.Info()
	}
	e = e.Str("kind", string(event.Kind))
	if event.Store != "" {
		e = e.Str("store", event.Store)
	}
	if event.Action != "" {
		e = e.Str("action", event.Action)
	}
	if event.Reason != "" {
		e = e.Str("reason", event.Reason)
	}
	e.Msg("devtools " + string(event.Kind))
}

// LogEvaluation implements predicate.Logger.
func (l Logger) LogEvaluation(event predicate.LogEvent) {
	e := l.log.Debug()
	if event.Err != nil {
		e = l.log.Warn().Err(event.Err)
	}
	e.Str("engine", event.Engine).
		Str("expr", event.Expr).
		Str("store", event.Store).
		Dur("duration", event.Duration).
		Msg("predicate evaluated")
}
