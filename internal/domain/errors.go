package domain

import "errors"

// Domain errors represent error conditions in the fahlink domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running instance.
	ErrAlreadyRunning = errors.New("fahlink: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped instance.
	ErrNotRunning = errors.New("fahlink: not running")

	// ErrConnectFailed is returned when a connection attempt to the remote
	// client fails. The underlying cause is wrapped for logging.
	ErrConnectFailed = errors.New("fahlink: connect failed")

	// ErrNotConnected is returned when an operation needs a live connection
	// and none exists.
	ErrNotConnected = errors.New("fahlink: not connected")

	// ErrSendFailed is returned when a command could not be delivered after
	// the single forced-reconnect retry.
	ErrSendFailed = errors.New("fahlink: send failed")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("fahlink: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("fahlink: invalid configuration")

	// ErrInvalidCommand is returned for commands the remote client would
	// not understand.
	ErrInvalidCommand = errors.New("fahlink: invalid command")
)
