package metrics

import "github.com/fold-labs/fahlink/internal/ports"

// Noop implements ports.Metrics by discarding everything.
type Noop struct{}

// NewNoop creates a new no-op metrics sink.
func NewNoop() Noop { return Noop{} }

func (Noop) ConnState(bool)       {}
func (Noop) FrameReceived(string) {}
func (Noop) PatchDropped()        {}
func (Noop) ReconnectScheduled()  {}
func (Noop) CommandSent(string)   {}

var _ ports.Metrics = Noop{}
