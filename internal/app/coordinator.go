package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fold-labs/fahlink/internal/domain"
	"github.com/fold-labs/fahlink/internal/ports"
)

// pingFrame is the keep-alive marker the folding client emits. It carries no
// state change and is ignored.
const pingFrame = "ping"

// ShutdownTimeout is the maximum time to wait for background goroutines
// during Shutdown.
const ShutdownTimeout = 30 * time.Second

// Coordinator owns the socket to one folding client and mirrors its state
// into a Store. It recovers from disconnects with bounded exponential
// backoff and relays one-shot commands with opportunistic
// reconnect-then-send semantics.
//
// One coordinator instance serves one remote host, with at most one live
// socket at any time.
type Coordinator struct {
	cfg     Config
	dialer  ports.Dialer
	store   *Store
	logger  ports.Logger
	metrics ports.Metrics

	back *backoff

	// connectMu serializes connection attempts; writeMu serializes
	// outbound command writes.
	connectMu sync.Mutex
	writeMu   sync.Mutex

	mu           sync.Mutex
	conn         ports.Conn
	connected    bool
	connGen      int
	shuttingDown bool

	schedMu      sync.Mutex
	reconnecting bool
	schedCancel  chan struct{}

	wg sync.WaitGroup
}

// NewCoordinator wires a coordinator. The store must not be nil; logger and
// metrics fall back to no-ops handled by the caller.
func NewCoordinator(cfg Config, dialer ports.Dialer, store *Store, logger ports.Logger, metrics ports.Metrics) *Coordinator {
	cfg.SetDefaults()
	return &Coordinator{
		cfg:     cfg,
		dialer:  dialer,
		store:   store,
		logger:  logger,
		metrics: metrics,
		back:    newBackoff(cfg.BackoffBase, cfg.BackoffMax),
	}
}

// Store returns the document store the coordinator publishes into.
func (c *Coordinator) Store() *Store {
	return c.store
}

// Connected reports whether a live connection exists right now.
func (c *Coordinator) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Initialize attempts the first connection. An unreachable peer is not a
// hard failure: the coordinator falls back to background reconnection and
// Initialize returns nil.
func (c *Coordinator) Initialize(ctx context.Context) error {
	c.logger.Info("initializing coordinator", ports.String("url", c.cfg.URL()))
	if err := c.connect(ctx); err != nil {
		c.logger.Warn("client not reachable at startup, will keep trying",
			ports.String("host", c.cfg.Host), ports.Err(err))
		c.scheduleReconnect()
	}
	return nil
}

// connect establishes a new connection: close any previous one, dial, read
// the initial payload, then start the receive loop in the background.
// All failures collapse to domain.ErrConnectFailed with the cause wrapped
// for logging.
func (c *Coordinator) connect(ctx context.Context) error {
	c.connectMu.Lock()
	defer c.connectMu.Unlock()

	if c.isShuttingDown() {
		return domain.ErrConnectFailed
	}

	// At most one live socket per coordinator.
	c.closeConn()

	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
	defer cancel()

	conn, err := c.dialer.Dial(dialCtx, c.cfg.URL())
	if err != nil {
		return fmt.Errorf("%w: dial %s: %v", domain.ErrConnectFailed, c.cfg.URL(), err)
	}

	// The first frame must arrive within the connect timeout.
	_ = conn.SetReadDeadline(time.Now().Add(c.cfg.ConnectTimeout))
	payload, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return fmt.Errorf("%w: initial payload: %v", domain.ErrConnectFailed, err)
	}
	_ = conn.SetReadDeadline(time.Time{})

	if string(payload) != pingFrame {
		v, perr := domain.ParseJSON(payload)
		if perr != nil {
			conn.Close()
			return fmt.Errorf("%w: invalid initial payload: %v", domain.ErrConnectFailed, perr)
		}
		if v.Kind() == domain.Object {
			c.store.Publish(v)
		}
	}

	c.mu.Lock()
	// Shutdown may have run while we were dialing or waiting for the
	// initial payload; installing the conn now would leave a live socket
	// and receive loop behind it.
	if c.shuttingDown {
		c.mu.Unlock()
		conn.Close()
		return domain.ErrConnectFailed
	}
	c.conn = conn
	c.connected = true
	c.connGen++
	gen := c.connGen
	c.mu.Unlock()

	c.back.Reset()
	c.metrics.ConnState(true)
	c.logger.Info("connected", ports.String("host", c.cfg.Host))

	c.wg.Add(1)
	go c.receiveLoop(conn, gen)

	return nil
}

// currentConn returns the live connection, or nil.
func (c *Coordinator) currentConn() ports.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return nil
	}
	return c.conn
}

// closeConn closes the live connection if any. Idempotent; close errors are
// ignored.
func (c *Coordinator) closeConn() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.connected = false
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}

func (c *Coordinator) isShuttingDown() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shuttingDown
}

// Shutdown stops the coordinator: no new reconnects are scheduled, the
// pending backoff wait is canceled, the socket is closed to unblock the
// receive loop, and all background goroutines are joined.
func (c *Coordinator) Shutdown() error {
	c.mu.Lock()
	c.shuttingDown = true
	c.mu.Unlock()

	c.logger.Info("shutting down coordinator", ports.String("host", c.cfg.Host))

	c.cancelPendingReconnect()
	c.closeConn()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(ShutdownTimeout):
		c.logger.Warn("shutdown timeout, abandoning goroutines",
			ports.Duration("timeout", ShutdownTimeout))
		return domain.ErrShutdownTimeout
	}
}
