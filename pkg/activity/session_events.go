package activity

import (
	"time"

	devtools "github.com/goliatone/go-devtools"
)

// Verbs and object type used for session events.
const (
	VerbSessionStarted = "devtools.session.started"
	VerbSessionStopped = "devtools.session.stopped"
	ObjectTypeSession  = "devtools.session"
)

// SessionInput carries the fields shared by every session event.
type SessionInput struct {
	SessionID  string
	Label      string
	OccurredAt time.Time
}

// BuildSessionStartedEvent describes a debugger connection being opened.
func BuildSessionStartedEvent(input SessionInput) Event {
	return buildSessionEvent(VerbSessionStarted, input, nil)
}

// BuildSessionStoppedEvent describes a debugger connection being closed.
func BuildSessionStoppedEvent(input SessionInput) Event {
	return buildSessionEvent(VerbSessionStopped, input, nil)
}

// BuildActionEvent describes one forwarded action. The action type becomes
// the verb; state is only attached when includeState is set.
func BuildActionEvent(input SessionInput, action devtools.Action, snapshot devtools.Snapshot, includeState bool) Event {
	metadata := map[string]any{
		"action": action.Fields(),
		"stores": snapshot.Names(),
	}
	if includeState {
		state := make(map[string]any, len(snapshot))
		for name, value := range snapshot {
			state[name] = value
		}
		metadata["state"] = state
	}
	return buildSessionEvent(action.Type, input, metadata)
}

func buildSessionEvent(verb string, input SessionInput, metadata map[string]any) Event {
	if input.Label != "" {
		metadata = ensureMetadata(metadata)
		metadata["session"] = input.Label
	}
	objectID := input.SessionID
	if objectID == "" {
		objectID = input.Label
	}
	return Event{
		Verb:       verb,
		ObjectType: ObjectTypeSession,
		ObjectID:   objectID,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
