// Package hub fans messages out to websocket clients.
//
// A Hub owns its client set from a single goroutine; clients talk to it over
// channels. Slow clients are dropped rather than allowed to stall a
// broadcast.
package hub

// MessageType indicates the websocket frame type.
type MessageType int

const (
	JSONMessage MessageType = iota
	BinaryMessage           // raw bytes, e.g. JPEG preview frames
)

// Message is one frame to broadcast.
type Message struct {
	Type MessageType
	Data []byte
}

// NewJSONMessage wraps pre-encoded JSON.
func NewJSONMessage(data []byte) Message {
	return Message{Type: JSONMessage, Data: data}
}

// NewBinaryMessage wraps binary data.
func NewBinaryMessage(data []byte) Message {
	return Message{Type: BinaryMessage, Data: data}
}
