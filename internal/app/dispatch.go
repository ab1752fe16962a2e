package app

import (
	"context"
	"fmt"

	"github.com/fold-labs/fahlink/internal/domain"
	"github.com/fold-labs/fahlink/internal/ports"
)

// SendCommand delivers one command to the remote client, best effort.
//
// A user command overrides passive backoff: the attempt counter resets and
// any pending scheduled reconnect is canceled before anything else. With no
// live connection, exactly one connect is attempted; if it fails the call
// is abandoned and a background reconnect is scheduled instead. A transient
// write failure closes the bad connection and retries the whole sequence
// exactly once. Nothing is queued across calls.
func (c *Coordinator) SendCommand(ctx context.Context, cmd domain.Command) error {
	if cmd.Cmd == "" {
		return domain.ErrInvalidCommand
	}
	if cmd.State != "" && !domain.RunState(cmd.State).Valid() {
		return fmt.Errorf("%w: state %q", domain.ErrInvalidCommand, cmd.State)
	}

	payload, err := cmd.Encode()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidCommand, err)
	}

	c.logger.Info("sending command",
		ports.String("cmd", cmd.Cmd),
		ports.String("state", cmd.State),
		ports.String("group", cmd.Group),
		ports.Bool("connected", c.Connected()))

	// User intent overrides backoff.
	c.back.Reset()
	c.cancelPendingReconnect()

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	for attempt := 0; attempt < 2; attempt++ {
		conn := c.currentConn()
		if conn == nil {
			if err := c.connect(ctx); err != nil {
				c.logger.Error("cannot send command, connect failed", ports.Err(err))
				c.metrics.CommandSent("failed")
				c.scheduleReconnect()
				return fmt.Errorf("%w: %v", domain.ErrSendFailed, err)
			}
			conn = c.currentConn()
			if conn == nil {
				continue
			}
		}

		if err := conn.WriteMessage(payload); err != nil {
			c.logger.Warn("command write failed, forcing reconnect", ports.Err(err))
			c.closeConn()
			continue
		}

		c.metrics.CommandSent("ok")
		c.logger.Info("command sent", ports.String("cmd", cmd.Cmd), ports.String("state", cmd.State))
		return nil
	}

	c.metrics.CommandSent("failed")
	c.scheduleReconnect()
	return domain.ErrSendFailed
}
