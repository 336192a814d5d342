package retry

import (
	"math"
	"math/rand"
	"time"
)

// Policy computes exponential-backoff delays for scheduled retries. The
// webhook dispatcher uses it to compute next_retry_at on delivery records;
// attempts are persisted, not held in memory, so the policy is stateless.
type Policy struct {
	BaseDelay  time.Duration // Delay before the first retry
	MaxDelay   time.Duration // Cap applied to the computed delay
	Multiplier float64       // Exponential growth factor
	Jitter     bool          // Add randomization to prevent thundering herd
}

// DefaultPolicy returns the default backoff policy.
func DefaultPolicy() Policy {
	return Policy{
		BaseDelay:  30 * time.Second,
		MaxDelay:   1 * time.Hour,
		Multiplier: 2.0,
		Jitter:     true,
	}
}

// Delay returns the backoff delay for the given attempt number. Attempt 1 is
// the first retry and receives the base delay.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt-1))

	if delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}

	if p.Jitter {
		// Up to 10% of the delay
		delay += delay * 0.1 * rand.Float64()
	}

	return time.Duration(delay)
}

// NextRetryAt returns the wall-clock time of the next attempt.
func (p Policy) NextRetryAt(now time.Time, attempt int) time.Time {
	return now.Add(p.Delay(attempt))
}
