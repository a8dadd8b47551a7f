package devtools

import (
	"encoding/json"
	"fmt"
	"sort"
)

// DefaultActionType labels state updates that carry no explicit name.
const DefaultActionType = "Store Update"

// Action describes one state-changing operation reported to the debugger.
// Payload fields are flattened next to "type" when encoded.
type Action struct {
	Type    string
	Payload map[string]any
}

// NewAction builds an Action with a cloned payload.
func NewAction(actionType string, payload map[string]any) Action {
	return Action{Type: actionType, Payload: cloneMap(payload)}
}

// MarshalJSON encodes the action as a flat object with a "type" field.
func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Fields())
}

// UnmarshalJSON decodes a flat action object.
func (a *Action) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	actionType, ok := fields["type"].(string)
	if !ok {
		return fmt.Errorf("devtools: action type must be a string")
	}
	delete(fields, "type")
	a.Type = actionType
	a.Payload = nil
	if len(fields) > 0 {
		a.Payload = fields
	}
	return nil
}

// Fields returns the flat representation used on the wire and by predicates.
func (a Action) Fields() map[string]any {
	fields := make(map[string]any, len(a.Payload)+1)
	for key, value := range a.Payload {
		fields[key] = value
	}
	fields["type"] = a.Type
	return fields
}

// Snapshot maps store names to their current state values.
type Snapshot map[string]any

// Names returns the snapshot keys sorted alphabetically.
func (s Snapshot) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Method is a named store operation: either a Query or a Command.
type Method interface {
	method()
}

// Query is a plain read operation. Queries are never reported.
type Query func(args ...any) any

// Command is a state-changing operation that returns the action describing it.
type Command func(args ...any) Action

func (Query) method()   {}
func (Command) method() {}

// Methods indexes store operations by name.
type Methods map[string]Method

// Hooks are the lifecycle callbacks a store runs exactly once each.
type Hooks struct {
	OnInit    func()
	OnDestroy func()
}

func (h Hooks) init() {
	if h.OnInit != nil {
		h.OnInit()
	}
}

func (h Hooks) destroy() {
	if h.OnDestroy != nil {
		h.OnDestroy()
	}
}

// Store is the capability surface the bridge needs from a state container.
type Store interface {
	Methods() Methods
	Hooks() Hooks
}

// StateSource exposes a container's full current state. Stores that are
// bridged must implement it.
type StateSource interface {
	State() any
}

// Feature transforms a store. Features compose left to right in Build.
type Feature func(Store) (Store, error)

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
