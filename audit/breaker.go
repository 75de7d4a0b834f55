package audit

import (
	"sync"
	"time"
)

// breaker guards sink writes. After maxFailures consecutive failures it
// opens: writes are skipped until the cooldown elapses, after which a single
// probe write is admitted. A successful probe closes it again. This keeps a
// dead sink (disk full, permissions revoked) from stalling every caller on
// a doomed write.
type breaker struct {
	maxFailures int
	cooldown    time.Duration

	mu          sync.Mutex
	open        bool
	failures    int
	lastFailure time.Time
}

func newBreaker(maxFailures int, cooldown time.Duration) *breaker {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &breaker{maxFailures: maxFailures, cooldown: cooldown}
}

// allow reports whether a write may proceed. While open, one probe is
// admitted per cooldown interval.
func (b *breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return true
	}
	if time.Since(b.lastFailure) >= b.cooldown {
		// Admit a probe; push the window forward so only one caller
		// probes per interval.
		b.lastFailure = time.Now()
		return true
	}
	return false
}

// record folds a write outcome into the breaker state. Returns true when
// this outcome transitioned the breaker from closed to open.
func (b *breaker) record(err error) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		b.open = false
		b.failures = 0
		return false
	}

	b.failures++
	b.lastFailure = time.Now()
	if !b.open && b.failures >= b.maxFailures {
		b.open = true
		return true
	}
	return false
}

func (b *breaker) isOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}
