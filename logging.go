package devtools

// LogKind classifies bridge log events.
type LogKind string

const (
	LogAttach     LogKind = "attach"
	LogSkip       LogKind = "skip"
	LogConnect    LogKind = "connect"
	LogSend       LogKind = "send"
	LogDrop       LogKind = "drop"
	LogDisconnect LogKind = "disconnect"
	LogError      LogKind = "error"
)

// LogEvent describes one bridge lifecycle or reporting step.
type LogEvent struct {
	Kind   LogKind
	Store  string
	Action string
	Reason string
	Err    error
}

// Logger records bridge events.
type Logger interface {
	LogBridge(LogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(LogEvent)

// LogBridge implements Logger.
func (f LoggerFunc) LogBridge(event LogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogBridge(LogEvent) {}
