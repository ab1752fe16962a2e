// Package ws adapts gorilla/websocket to the ports.Dialer and ports.Conn
// interfaces used by the connection manager.
package ws

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fold-labs/fahlink/internal/ports"
)

// Dialer implements ports.Dialer with gorilla/websocket.
type Dialer struct {
	handshakeTimeout time.Duration
}

// NewDialer creates a dialer with the given handshake timeout.
func NewDialer(handshakeTimeout time.Duration) *Dialer {
	return &Dialer{handshakeTimeout: handshakeTimeout}
}

// Dial connects to the given ws:// URL.
func (d *Dialer) Dial(ctx context.Context, url string) (ports.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: d.handshakeTimeout,
	}
	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return &wsConn{conn: conn}, nil
}

// wsConn wraps a *websocket.Conn. Gorilla connections support one concurrent
// reader and one concurrent writer; the caller provides that discipline.
type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

func (c *wsConn) WriteMessage(data []byte) error {
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}
