package app

import (
	"context"
	"fmt"
	"time"

	"github.com/fold-labs/fahlink/internal/domain"
	"github.com/fold-labs/fahlink/internal/ports"
)

// Probe validates that a folding client is reachable at the configured
// endpoint and returns its machine identity. It dials, reads until the
// first snapshot arrives (skipping keep-alives), and closes the
// connection. Used by setup tooling before an endpoint is committed to
// configuration.
func Probe(ctx context.Context, dialer ports.Dialer, cfg Config) (domain.Machine, error) {
	cfg.SetDefaults()

	dialCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	conn, err := dialer.Dial(dialCtx, cfg.URL())
	if err != nil {
		return domain.Machine{}, fmt.Errorf("%w: dial %s: %v", domain.ErrConnectFailed, cfg.URL(), err)
	}
	defer conn.Close()

	deadline := time.Now().Add(cfg.ConnectTimeout)
	_ = conn.SetReadDeadline(deadline)

	for time.Now().Before(deadline) {
		payload, err := conn.ReadMessage()
		if err != nil {
			return domain.Machine{}, fmt.Errorf("%w: initial payload: %v", domain.ErrConnectFailed, err)
		}
		if string(payload) == pingFrame {
			continue
		}
		v, err := domain.ParseJSON(payload)
		if err != nil {
			return domain.Machine{}, fmt.Errorf("%w: invalid initial payload: %v", domain.ErrConnectFailed, err)
		}
		if v.Kind() != domain.Object {
			continue
		}
		return domain.MachineInfo(v), nil
	}

	return domain.Machine{}, fmt.Errorf("%w: no snapshot before deadline", domain.ErrConnectFailed)
}
