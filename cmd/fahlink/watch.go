package main

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/fold-labs/fahlink/pkg/fahlink"
)

// changeLogger logs meaningful document changes: run-state transitions,
// PPD movement, and work-unit count changes. Raw frames arrive far more
// often than anything the operator cares about, so it diffs against the
// previous observation instead of logging every publish.
type changeLogger struct {
	log   zerolog.Logger
	group string

	mu     sync.Mutex
	seen   bool
	status fahlink.Status
	ppd    int
	units  int
}

func newChangeLogger(log zerolog.Logger, group string) *changeLogger {
	return &changeLogger{log: log, group: group}
}

// observe is registered as a store observer; it must not block.
func (c *changeLogger) observe(doc fahlink.Value) {
	status := fahlink.GroupStatus(doc, c.group)
	ppd := fahlink.TotalPPD(doc)
	units := fahlink.UnitCount(doc)

	c.mu.Lock()
	first := !c.seen
	statusChanged := status != c.status
	ppdChanged := ppd != c.ppd
	unitsChanged := units != c.units
	c.seen = true
	c.status = status
	c.ppd = ppd
	c.units = units
	c.mu.Unlock()

	if first {
		c.log.Info().
			Str("machine", fahlink.MachineName(doc)).
			Str("status", string(status)).
			Int("ppd", ppd).
			Int("units", units).
			Msg("state mirrored")
		return
	}

	if statusChanged {
		c.log.Info().Str("status", string(status)).Msg("run state changed")
	}
	if ppdChanged {
		c.log.Debug().Int("ppd", ppd).Msg("ppd updated")
	}
	if unitsChanged {
		c.log.Info().Int("units", units).Msg("work unit count changed")
	}
}
