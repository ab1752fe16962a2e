package ports

import (
	"context"
	"time"
)

// Conn is one established connection to the remote folding client.
// It is exclusively owned by the connection manager; no other component
// touches it directly.
type Conn interface {
	// ReadMessage blocks until the next inbound frame arrives, the deadline
	// set by SetReadDeadline expires, or the connection closes. Closing the
	// connection from another goroutine unblocks a pending read.
	ReadMessage() ([]byte, error)

	// WriteMessage writes one outbound text frame. Callers must serialize
	// writes; concurrent WriteMessage calls are not safe.
	WriteMessage(data []byte) error

	// SetReadDeadline bounds the next ReadMessage call. A zero time removes
	// the deadline.
	SetReadDeadline(t time.Time) error

	// Close tears down the connection. Safe to call more than once.
	Close() error
}

// Dialer opens connections to a remote folding client endpoint.
type Dialer interface {
	// Dial connects to the given WebSocket URL. The context bounds the
	// handshake only, not the connection's lifetime.
	Dial(ctx context.Context, url string) (Conn, error)
}
