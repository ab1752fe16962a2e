package app

import (
	"fmt"
	"time"
)

// WebsocketPath is the fixed path the folding client serves its feed on.
const WebsocketPath = "/api/websocket"

// DefaultConnectTimeout bounds connect plus first read.
const DefaultConnectTimeout = 10 * time.Second

// Config holds the coordinator's connection settings.
type Config struct {
	// Host and Port locate the folding client.
	Host string
	Port int

	// Path is the WebSocket path, WebsocketPath unless overridden.
	Path string

	// ConnectTimeout bounds the dial handshake and the first read together.
	// Steady-state reads have no timeout; idle connections are expected.
	ConnectTimeout time.Duration

	// BackoffBase and BackoffMax bound the reconnect delay.
	BackoffBase time.Duration
	BackoffMax  time.Duration
}

// SetDefaults fills zero fields with defaults.
func (c *Config) SetDefaults() {
	if c.Path == "" {
		c.Path = WebsocketPath
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = DefaultBackoffBase
	}
	if c.BackoffMax <= 0 {
		c.BackoffMax = DefaultBackoffMax
	}
}

// URL returns the WebSocket endpoint URL.
func (c Config) URL() string {
	return fmt.Sprintf("ws://%s:%d%s", c.Host, c.Port, c.Path)
}
