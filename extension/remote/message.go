package remote

import (
	"encoding/json"
	"fmt"

	devtools "github.com/goliatone/go-devtools"
	"github.com/valyala/bytebufferpool"
)

// Message types on the wire.
const (
	MessageStart  = "START"
	MessageAction = "ACTION"
	MessageStop   = "STOP"
)

// Message is one JSON text frame exchanged with a relay.
type Message struct {
	Type       string            `json:"type"`
	InstanceID string            `json:"instanceId"`
	Name       string            `json:"name,omitempty"`
	Action     *devtools.Action  `json:"action,omitempty"`
	Payload    devtools.Snapshot `json:"payload,omitempty"`
}

// Encode serializes m using a pooled buffer. The returned slice is owned by
// the caller.
func Encode(m Message) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := json.NewEncoder(buf).Encode(m); err != nil {
		return nil, fmt.Errorf("remote: encode %s: %w", m.Type, err)
	}
	out := make([]byte, buf.Len())
	copy(out, buf.B)
	return out, nil
}

// Decode parses a frame produced by Encode.
func Decode(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("remote: decode: %w", err)
	}
	switch m.Type {
	case MessageStart, MessageAction, MessageStop:
	default:
		return Message{}, fmt.Errorf("remote: unknown message type %q", m.Type)
	}
	if m.Type == MessageAction && m.Action == nil {
		return Message{}, fmt.Errorf("remote: %s without action", m.Type)
	}
	return m, nil
}
