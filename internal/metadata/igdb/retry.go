package igdb

import "time"

// RetryPolicy governs the per-request retry loop. MaxAttempts of zero
// means retry until the request resolves; tests inject a cap so the
// loop cannot spin forever against a misbehaving server.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// defaultRetryPolicy backs off briefly after a rate-limit rejection and
// never gives up.
func defaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Backoff: 2 * time.Second}
}

// exhausted reports whether the attempt count has hit the cap.
func (p RetryPolicy) exhausted(attempts int) bool {
	return p.MaxAttempts > 0 && attempts >= p.MaxAttempts
}
