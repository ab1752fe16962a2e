package fahlink

import (
	"context"

	"github.com/fold-labs/fahlink/internal/ports"
)

// Plugin extends a Client with optional background behavior.
// Plugins are initialized on Start() in registration order and shut down on
// Stop() in reverse order.
type Plugin interface {
	// Name identifies the plugin in logs.
	Name() string

	// Initialize starts the plugin. The context is canceled when the
	// Client stops.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown stops the plugin and releases its resources.
	Shutdown(ctx context.Context) error
}

// PluginConfig carries the client settings plugins may need.
type PluginConfig struct {
	Host   string
	Port   int
	Logger ports.Logger
}

// BasePlugin provides no-op implementations of the Plugin methods.
// Embed it to implement only what the plugin needs.
type BasePlugin struct{}

// Name returns an empty name; embedders should override it.
func (BasePlugin) Name() string { return "" }

// Initialize does nothing.
func (BasePlugin) Initialize(ctx context.Context, cfg PluginConfig) error { return nil }

// Shutdown does nothing.
func (BasePlugin) Shutdown(ctx context.Context) error { return nil }
