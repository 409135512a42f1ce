// Package broadcast delivers timer lifecycle events to sibling widget
// instances of the same scope. Delivery is best-effort with no ordering
// guarantee across senders, though one sender's messages arrive in the
// order they were sent.
package broadcast

import "encoding/json"

// MessageType identifies a lifecycle event.
type MessageType string

const (
	TypeStart MessageType = "start"
	TypePause MessageType = "pause"
	TypeStop  MessageType = "stop"
)

// Message is a transient lifecycle event. It is consumed immediately by
// listeners and never read back by its sender.
type Message struct {
	Type      MessageType `json:"type"`
	End       int64       `json:"end,omitempty"`
	Remaining int64       `json:"remaining,omitempty"`
	T         int64       `json:"t,omitempty"`
	Sender    string      `json:"sender,omitempty"`
}

// Transport sends lifecycle events to every other open instance of the same
// scope. The implementation is chosen once at construction; the state
// machine depends only on this interface.
type Transport interface {
	// Send delivers msg to every other subscriber, best-effort.
	// It is never delivered back to the sender.
	Send(msg Message) error

	// OnMessage registers the handler invoked for each received message.
	// Only one handler is active at a time.
	OnMessage(fn func(Message))

	// Close releases the transport. Further sends are no-ops.
	Close() error
}

func encode(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

func decode(b []byte) (Message, error) {
	var msg Message

	err := json.Unmarshal(b, &msg)

	return msg, err
}
