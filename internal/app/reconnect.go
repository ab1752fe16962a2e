package app

import (
	"context"
	"time"

	"github.com/fold-labs/fahlink/internal/ports"
)

// scheduleReconnect arms one background reconnect attempt after the current
// backoff delay. Scheduling while an attempt is already pending or in
// flight is a no-op, as is scheduling during shutdown.
func (c *Coordinator) scheduleReconnect() {
	c.schedMu.Lock()
	if c.reconnecting || c.isShuttingDown() {
		c.schedMu.Unlock()
		return
	}
	c.reconnecting = true
	cancel := make(chan struct{})
	c.schedCancel = cancel
	c.schedMu.Unlock()

	delay := c.back.Next()
	c.metrics.ReconnectScheduled()
	c.logger.Info("reconnect scheduled",
		ports.String("host", c.cfg.Host),
		ports.Duration("delay", delay))

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-cancel:
			// Preempted by a user command or shutdown. The canceler
			// already cleared the pending state.
			return
		case <-timer.C:
		}

		// A user command may have reconnected while we slept.
		if c.isShuttingDown() || c.Connected() {
			c.endReconnect(cancel)
			return
		}

		err := c.connect(context.Background())
		c.endReconnect(cancel)
		if err != nil {
			c.logger.Warn("reconnect failed", ports.Err(err))
			c.scheduleReconnect()
		}
	}()
}

// cancelPendingReconnect preempts a pending backoff wait, if any, and
// clears the pending state so a new schedule can be armed immediately.
// An attempt already connecting is left to finish.
func (c *Coordinator) cancelPendingReconnect() {
	c.schedMu.Lock()
	if c.schedCancel != nil {
		close(c.schedCancel)
		c.schedCancel = nil
		c.reconnecting = false
	}
	c.schedMu.Unlock()
}

// endReconnect clears the pending state for the attempt identified by its
// cancel channel. A stale attempt, one already superseded by a cancel and
// a newer schedule, must not clear the newer schedule's state.
func (c *Coordinator) endReconnect(cancel chan struct{}) {
	c.schedMu.Lock()
	if c.schedCancel == cancel {
		c.reconnecting = false
		c.schedCancel = nil
	}
	c.schedMu.Unlock()
}
