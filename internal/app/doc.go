// Package app contains the state-synchronization coordinator: the document
// store, connection manager, receive loop, reconnect scheduler, and command
// dispatcher, composed by [Coordinator].
//
// Concurrency model: one receive loop goroutine and at most one reconnect
// wait/connect goroutine run per coordinator, plus ad-hoc SendCommand calls
// from external callers. The receive loop is the sole writer of the
// mirrored document; command writes are serialized by a single-writer
// mutex. Shutdown cancels the pending backoff wait, closes the socket to
// unblock the loop, and joins every goroutine it started.
package app
