package ports

// Metrics is the observability hook for the sync loop. Implementations must
// be safe for concurrent use and must not block.
type Metrics interface {
	// ConnState records connection state changes: true on connect,
	// false on disconnect.
	ConnState(connected bool)

	// FrameReceived counts one inbound frame by kind
	// ("snapshot", "patch", "ping", "invalid").
	FrameReceived(kind string)

	// PatchDropped counts a patch that could not be applied.
	PatchDropped()

	// ReconnectScheduled counts one scheduled reconnect attempt.
	ReconnectScheduled()

	// CommandSent counts an outbound command by outcome ("ok", "failed").
	CommandSent(outcome string)
}
