package fahlink

import (
	"context"
	"fmt"
	"sync"
	"time"

	logAdapter "github.com/fold-labs/fahlink/internal/adapters/log"
	metricsAdapter "github.com/fold-labs/fahlink/internal/adapters/metrics"
	"github.com/fold-labs/fahlink/internal/adapters/ws"
	"github.com/fold-labs/fahlink/internal/app"
	"github.com/fold-labs/fahlink/internal/domain"
	"github.com/fold-labs/fahlink/internal/ports"
)

// Re-exported types so callers never import internal packages.
type (
	// Value is an immutable node of the mirrored client document.
	Value = domain.Value

	// Machine is the remote client's identity.
	Machine = domain.Machine

	// Unit is a snapshot of one active work unit.
	Unit = domain.Unit

	// Command is a one-shot outbound request.
	Command = domain.Command

	// RunState is a requested run state for a resource group.
	RunState = domain.RunState

	// Status describes the derived run state of a resource group.
	Status = domain.Status

	// State is the lifecycle state of a Client.
	State = app.State

	// Logger is the structured logging interface.
	Logger = ports.Logger

	// Metrics is the observability hook interface.
	Metrics = ports.Metrics

	// Dialer opens connections to the remote client.
	Dialer = ports.Dialer
)

// Run states accepted by the remote client.
const (
	RunStateFold   = domain.RunStateFold
	RunStatePause  = domain.RunStatePause
	RunStateFinish = domain.RunStateFinish
)

// Lifecycle states of a Client.
const (
	StateStopped  = app.StateStopped
	StateStarting = app.StateStarting
	StateRunning  = app.StateRunning
	StateStopping = app.StateStopping
	StateCrashed  = app.StateCrashed
)

// DefaultGroup is the folding client's default resource group name.
const DefaultGroup = domain.DefaultGroup

// Config holds the configuration for a Client.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config struct {
	// Host and Port locate the folding client. Host is required.
	Host string
	Port int

	// ConnectTimeout bounds dial plus first read. Default 10s.
	ConnectTimeout time.Duration

	// BackoffBase and BackoffMax bound the reconnect delay.
	// Defaults 10s and 300s.
	BackoffBase time.Duration
	BackoffMax  time.Duration
}

// DefaultPort is the port a stock folding client listens on.
const DefaultPort = 7396

// DefaultConfig returns a Config with sensible default values.
// At minimum, you must set Host before calling New.
func DefaultConfig() Config {
	return Config{
		Port:           DefaultPort,
		ConnectTimeout: app.DefaultConnectTimeout,
		BackoffBase:    app.DefaultBackoffBase,
		BackoffMax:     app.DefaultBackoffMax,
	}
}

// SetDefaults fills zero fields with defaults.
func (c *Config) SetDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = app.DefaultConnectTimeout
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = app.DefaultBackoffBase
	}
	if c.BackoffMax <= 0 {
		c.BackoffMax = app.DefaultBackoffMax
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("%w: host is required", domain.ErrInvalidConfig)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", domain.ErrInvalidConfig, c.Port)
	}
	if c.BackoffMax < c.BackoffBase {
		return fmt.Errorf("%w: backoff cap below base", domain.ErrInvalidConfig)
	}
	return nil
}

func (c Config) appConfig() app.Config {
	return app.Config{
		Host:           c.Host,
		Port:           c.Port,
		ConnectTimeout: c.ConnectTimeout,
		BackoffBase:    c.BackoffBase,
		BackoffMax:     c.BackoffMax,
	}
}

// Client mirrors one remote folding client's state and relays commands to
// it. Use New() to create an instance, then Start() to begin mirroring.
type Client struct {
	config    Config
	opts      options
	lifecycle *app.Lifecycle
	coord     *app.Coordinator
	store     *app.Store
	logger    ports.Logger

	plugins []Plugin

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New creates a new Client with the given configuration.
// The instance is created in StateStopped; call Start() to begin mirroring.
// Returns an error if configuration is invalid.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var logger ports.Logger
	if o.logger != nil {
		logger = o.logger
	} else {
		logger = logAdapter.NewNoopLogger()
	}

	var metrics ports.Metrics
	if o.metrics != nil {
		metrics = o.metrics
	} else {
		metrics = metricsAdapter.NewNoop()
	}

	var dialer ports.Dialer
	if o.dialer != nil {
		dialer = o.dialer
	} else {
		dialer = ws.NewDialer(cfg.ConnectTimeout)
	}

	store := app.NewStore()
	coord := app.NewCoordinator(cfg.appConfig(), dialer, store, logger, metrics)

	return &Client{
		config:    cfg,
		opts:      o,
		lifecycle: app.NewLifecycle(logger),
		coord:     coord,
		store:     store,
		logger:    logger,
		plugins:   o.plugins,
	}, nil
}

// Start begins mirroring in the background. An unreachable peer is not an
// error: the client keeps reconnecting with backoff until Stop is called.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := c.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.lifecycle.SetCancel(cancel)

	pluginCfg := PluginConfig{
		Host:   c.config.Host,
		Port:   c.config.Port,
		Logger: c.logger,
	}
	for _, p := range c.plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			c.logger.Error("plugin initialization failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
			cancel()
			_ = c.lifecycle.TransitionTo(app.StateCrashed, "plugin init failed: "+p.Name())
			return err
		}
		c.logger.Info("plugin initialized", ports.String("plugin", p.Name()))
	}

	if err := c.coord.Initialize(runCtx); err != nil {
		// Initialize only fails on invariant violations, never on an
		// unreachable peer.
		cancel()
		_ = c.lifecycle.TransitionTo(app.StateCrashed, err.Error())
		return err
	}

	return c.lifecycle.TransitionTo(app.StateRunning, "coordinator initialized")
}

// Stop shuts the client down: cancels reconnection, closes the socket, and
// joins background goroutines. Waits up to 30 seconds before giving up.
func (c *Client) Stop() error {
	c.mu.Lock()

	if !c.lifecycle.CanStop() {
		c.mu.Unlock()
		return domain.ErrNotRunning
	}
	if err := c.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()

	err := c.coord.Shutdown()

	shutdownCtx := context.Background()
	for i := len(c.plugins) - 1; i >= 0; i-- {
		p := c.plugins[i]
		if shutdownErr := p.Shutdown(shutdownCtx); shutdownErr != nil {
			c.logger.Error("plugin shutdown failed",
				ports.String("plugin", p.Name()),
				ports.Err(shutdownErr))
		}
	}

	if err != nil {
		_ = c.lifecycle.TransitionTo(app.StateCrashed, err.Error())
		return err
	}
	return c.lifecycle.TransitionTo(app.StateStopped, "shutdown complete")
}

// Status returns the lifecycle state.
func (c *Client) Status() State {
	return c.lifecycle.State()
}

// Connected reports whether the socket to the remote client is currently up.
func (c *Client) Connected() bool {
	return c.coord.Connected()
}

// Snapshot returns the current mirrored document. Undefined before the
// first snapshot arrives. The returned value must be treated as immutable.
func (c *Client) Snapshot() Value {
	return c.store.Current()
}

// Machine returns the last-known identity of the remote client.
func (c *Client) Machine() Machine {
	return c.store.Machine()
}

// Subscribe registers an observer called synchronously after every document
// publish. The observer must not block. The returned function cancels the
// subscription.
func (c *Client) Subscribe(fn func(Value)) (cancel func()) {
	return c.store.Subscribe(app.Observer(fn))
}

// SendCommand delivers one command, best effort. See Coordinator semantics:
// user commands preempt backoff, connect opportunistically, and retry a
// transient write failure exactly once. Nothing is queued.
func (c *Client) SendCommand(ctx context.Context, cmd Command) error {
	return c.coord.SendCommand(ctx, cmd)
}

// SetRunState sends a state-change command for the given resource group.
func (c *Client) SetRunState(ctx context.Context, state RunState, group string) error {
	return c.SendCommand(ctx, domain.NewStateCommand(state, group))
}

// Pause pauses folding in the given group.
func (c *Client) Pause(ctx context.Context, group string) error {
	return c.SetRunState(ctx, RunStatePause, group)
}

// Fold resumes folding in the given group.
func (c *Client) Fold(ctx context.Context, group string) error {
	return c.SetRunState(ctx, RunStateFold, group)
}

// Finish lets the given group finish its current work units, then pause.
func (c *Client) Finish(ctx context.Context, group string) error {
	return c.SetRunState(ctx, RunStateFinish, group)
}

// Probe validates that a folding client is reachable and returns its
// machine identity without creating a long-lived Client.
func Probe(ctx context.Context, cfg Config, opts ...Option) (Machine, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return Machine{}, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	dialer := o.dialer
	if dialer == nil {
		dialer = ws.NewDialer(cfg.ConnectTimeout)
	}

	return app.Probe(ctx, dialer, cfg.appConfig())
}
