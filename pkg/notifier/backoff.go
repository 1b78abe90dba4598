package notifier

import (
	"math"
	"math/rand/v2"
	"time"
)

const maxShift = 62

// exponential returns base * 2^attempt, saturating instead of overflowing.
func exponential(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	if attempt < 0 {
		attempt = 0
	} else if attempt > maxShift {
		attempt = maxShift
	}

	multiplier := int64(1 << attempt)
	if int64(base) > math.MaxInt64/multiplier {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(int64(base) * multiplier)
}

// fullJitter returns a random duration in [0, delay).
func fullJitter(delay time.Duration) time.Duration {
	if delay <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(delay)))
}

// retryDelay is the pause before retry number attempt (0-based), capped at ceiling.
func retryDelay(base, ceiling time.Duration, attempt int) time.Duration {
	d := exponential(base, attempt)
	if ceiling > 0 && d > ceiling {
		d = ceiling
	}
	return fullJitter(d)
}
