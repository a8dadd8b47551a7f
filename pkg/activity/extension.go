package activity

import (
	"context"
	"time"

	devtools "github.com/goliatone/go-devtools"
	"github.com/google/uuid"
)

// Extension is a devtools.Extension that records sessions as activity events
// instead of driving an interactive debugger.
type Extension struct {
	Emitter *Emitter
	// IncludeState attaches the aggregated snapshot to action events.
	IncludeState bool
	// Context is used for hook calls; defaults to context.Background.
	Context context.Context
	// Now overrides the event clock.
	Now func() time.Time
}

// Connect implements devtools.Extension. Each connection gets a fresh session
// id and emits a started event.
func (e *Extension) Connect(opts devtools.ConnectOptions) (devtools.Connection, error) {
	conn := &connection{
		ext:       e,
		sessionID: uuid.NewString(),
		label:     opts.Name,
	}
	if err := e.emit(BuildSessionStartedEvent(conn.input())); err != nil {
		return nil, err
	}
	return conn, nil
}

func (e *Extension) emit(event Event) error {
	ctx := e.Context
	if ctx == nil {
		ctx = context.Background()
	}
	return e.Emitter.Emit(ctx, event)
}

func (e *Extension) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

type connection struct {
	ext       *Extension
	sessionID string
	label     string
}

func (c *connection) input() SessionInput {
	return SessionInput{
		SessionID:  c.sessionID,
		Label:      c.label,
		OccurredAt: c.ext.now(),
	}
}

func (c *connection) Send(action devtools.Action, snapshot devtools.Snapshot) error {
	return c.ext.emit(BuildActionEvent(c.input(), action, snapshot, c.ext.IncludeState))
}

func (c *connection) Disconnect() error {
	return c.ext.emit(BuildSessionStoppedEvent(c.input()))
}
