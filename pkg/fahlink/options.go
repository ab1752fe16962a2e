package fahlink

import "github.com/fold-labs/fahlink/internal/ports"

// Option configures optional behavior of a Client.
type Option func(*options)

// options holds the optional configuration for a Client instance.
type options struct {
	logger  ports.Logger
	metrics ports.Metrics
	dialer  ports.Dialer
	plugins []Plugin
}

// defaultOptions returns options with sensible defaults.
func defaultOptions() options {
	return options{}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics sets a metrics sink for the sync loop's observability hook.
// If not provided, metrics are discarded.
func WithMetrics(metrics Metrics) Option {
	return func(o *options) {
		o.metrics = metrics
	}
}

// WithDialer sets a custom connection dialer. Mainly useful for tests and
// for tunneled setups; the default dials ws:// directly.
func WithDialer(dialer Dialer) Option {
	return func(o *options) {
		o.dialer = dialer
	}
}

// WithPlugin registers a plugin to be initialized when the Client starts.
// Plugins are initialized in registration order and shut down in reverse order.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}
