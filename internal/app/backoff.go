package app

import (
	"sync"
	"time"
)

// Default backoff configuration values.
const (
	DefaultBackoffBase = 10 * time.Second
	DefaultBackoffMax  = 300 * time.Second
)

// backoff computes the reconnect delay: min(base * 2^attempts, max).
// Delays are deterministic; the attempt counter resets on a successful
// connect or an explicit user command.
type backoff struct {
	mu       sync.Mutex
	base     time.Duration
	max      time.Duration
	attempts int
}

// newBackoff creates a backoff with the given base and cap.
func newBackoff(base, max time.Duration) *backoff {
	return &backoff{base: base, max: max}
}

// Next returns the delay for the current attempt and advances the counter.
func (b *backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	d := b.base
	for i := 0; i < b.attempts; i++ {
		d *= 2
		if d >= b.max {
			d = b.max
			break
		}
	}
	b.attempts++
	return d
}

// Reset sets the attempt counter back to zero.
func (b *backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attempts = 0
}

// Attempts returns the current attempt count.
func (b *backoff) Attempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts
}
