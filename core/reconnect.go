package engine

import (
	"math/rand"
	"time"
)

const (
	defaultBackoffBase  = 500 * time.Millisecond
	defaultMaxAttempts  = 3
	defaultBackoffLimit = 10 * time.Second
)

// backoffPolicy bounds reconnection after abnormal session closes.
// Delays grow exponentially from the base with random jitter on top,
// and the attempt count is capped so a dead network surfaces as an
// error instead of an endless retry loop.
type backoffPolicy struct {
	base        time.Duration
	limit       time.Duration
	maxAttempts int

	// jitter returns a random delay in [0, spread). Swappable so
	// tests can pin it.
	jitter func(spread time.Duration) time.Duration
}

func newBackoffPolicy() backoffPolicy {
	return backoffPolicy{
		base:        defaultBackoffBase,
		limit:       defaultBackoffLimit,
		maxAttempts: defaultMaxAttempts,
		jitter: func(spread time.Duration) time.Duration {
			if spread <= 0 {
				return 0
			}
			return time.Duration(rand.Int63n(int64(spread)))
		},
	}
}

// Delay returns how long to wait before the given attempt, counting
// from zero.
func (b backoffPolicy) Delay(attempt int) time.Duration {
	delay := b.base << uint(attempt)
	if delay > b.limit || delay <= 0 {
		delay = b.limit
	}
	return delay + b.jitter(b.base)
}

// Exhausted reports whether the given number of completed attempts has
// used up the retry budget.
func (b backoffPolicy) Exhausted(attempts int) bool {
	return attempts >= b.maxAttempts
}
