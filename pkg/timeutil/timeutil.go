package timeutil

import (
	"math"
	"math/rand"
	"time"
)

// DurationPtr is a helper function to create a pointer to a time.Duration
func DurationPtr(d time.Duration) *time.Duration {
	return &d
}

// MaxDuration returns the largest duration in the given slice.
// Returns 0 for an empty slice.
func MaxDuration(durations []time.Duration) time.Duration {
	var max time.Duration
	for i, d := range durations {
		if i == 0 || d > max {
			max = d
		}
	}
	return max
}

// ComputeJitter returns a pseudo-random duration in [0, max) drawn from rng,
// or 0 when max is not positive.
func ComputeJitter(max time.Duration, rng rand.Rand) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rng.Int63n(int64(max)))
}

// ExponentialBackoffDelay computes the delay for the given attempt number
// using the supplied backoff policy, adding up to jitter worth of random
// extra delay via rng.
//
// attempt is 1-indexed: attempt=1 yields backoff.InitialDuration().
func ExponentialBackoffDelay(attempt int, jitter time.Duration, rng rand.Rand, backoff BackoffParam) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	exponent := float64(attempt - 1)
	delay := float64(backoff.InitialDuration()) * math.Pow(backoff.Multiplier(), exponent)
	if max := float64(backoff.MaxDuration()); backoff.MaxDuration() > 0 && delay > max {
		delay = max
	}

	if jitter > 0 {
		delay += float64(rng.Int63n(int64(jitter)))
	}

	return time.Duration(delay)
}

// Sleeper abstracts time.Sleep so callers can be tested without real delays.
type Sleeper interface {
	Sleep(d time.Duration)
}

// RealSleeper is a Sleeper backed by time.Sleep.
type RealSleeper struct{}

// NewRealSleeper returns a Sleeper that performs a real wall-clock sleep.
func NewRealSleeper() RealSleeper {
	return RealSleeper{}
}

func (RealSleeper) Sleep(d time.Duration) {
	time.Sleep(d)
}
