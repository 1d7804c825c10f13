package retry

import (
	"time"
)

// Backoff bounds for user syncs
const (
	GenericBaseDelay   = time.Second
	GenericMaxDelay    = 30 * time.Second
	RateLimitBaseDelay = 10 * time.Second
	RateLimitMaxDelay  = 5 * time.Minute
)

// RateLimitClassifier reports whether err signals upstream quota exhaustion
type RateLimitClassifier func(err error) bool

// GenericDelay is min(1s * 2^(attempt-1), 30s)
func GenericDelay(attempt int) time.Duration {
	return exponential(GenericBaseDelay, attempt-1, GenericMaxDelay)
}

// RateLimitDelay is min(10s * 2^attempt, 300s)
func RateLimitDelay(attempt int) time.Duration {
	return exponential(RateLimitBaseDelay, attempt, RateLimitMaxDelay)
}

// SyncDelay returns a DelayFunc that backs off harder for rate-limit failures
func SyncDelay(isRateLimited RateLimitClassifier) DelayFunc {
	return func(attempt int, err error) time.Duration {
		if isRateLimited != nil && isRateLimited(err) {
			return RateLimitDelay(attempt)
		}
		return GenericDelay(attempt)
	}
}

func exponential(base time.Duration, exp int, ceiling time.Duration) time.Duration {
	if exp < 0 {
		exp = 0
	}
	d := base
	for i := 0; i < exp; i++ {
		d *= 2
		if d >= ceiling {
			return ceiling
		}
	}
	return min(d, ceiling)
}
