package app

import (
	"github.com/fold-labs/fahlink/internal/domain"
	"github.com/fold-labs/fahlink/internal/ports"
)

// receiveLoop consumes frames from one established connection until the
// socket errors, the peer closes, or Shutdown closes the connection out
// from under it. Publish and apply happen sequentially here, so document
// updates land in wire order and a patch never applies against a stale
// document.
func (c *Coordinator) receiveLoop(conn ports.Conn, gen int) {
	defer c.wg.Done()

	c.logger.Debug("receive loop started", ports.String("host", c.cfg.Host))

	for {
		payload, err := conn.ReadMessage()
		if err != nil {
			c.logger.Debug("receive loop read ended", ports.Err(err))
			break
		}
		c.handleFrame(payload)
	}

	_ = conn.Close()

	// Only the loop for the current connection may flip the connected
	// state; a loop orphaned by a newer connect must not.
	c.mu.Lock()
	current := c.connGen == gen
	if current {
		c.conn = nil
		c.connected = false
	}
	shutdown := c.shuttingDown
	c.mu.Unlock()

	if !current {
		return
	}

	c.metrics.ConnState(false)

	if shutdown {
		c.logger.Debug("receive loop exited for shutdown")
		return
	}

	c.logger.Info("disconnected, scheduling reconnect", ports.String("host", c.cfg.Host))
	c.scheduleReconnect()
}

// handleFrame classifies one inbound frame and feeds the store.
// Malformed frames are dropped; the loop continues.
func (c *Coordinator) handleFrame(payload []byte) {
	if string(payload) == pingFrame {
		c.metrics.FrameReceived("ping")
		return
	}

	v, err := domain.ParseJSON(payload)
	if err != nil {
		c.logger.Warn("dropping invalid frame", ports.Err(err))
		c.metrics.FrameReceived("invalid")
		return
	}

	switch v.Kind() {
	case domain.Object:
		c.metrics.FrameReceived("snapshot")
		c.store.Publish(v)
	case domain.Array:
		if v.Len() < 2 {
			c.metrics.FrameReceived("invalid")
			return
		}
		c.metrics.FrameReceived("patch")
		next, ok := domain.ApplyPatch(c.store.Current(), v)
		if !ok {
			c.logger.Debug("dropping inapplicable patch")
			c.metrics.PatchDropped()
			return
		}
		c.store.Publish(next)
	default:
		// null and scalar frames carry no state.
		c.metrics.FrameReceived("invalid")
	}
}
