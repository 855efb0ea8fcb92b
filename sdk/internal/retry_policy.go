package internal

import (
	"math"
	"time"
)

// RetryPolicy controls the backoff between failed polls.
type RetryPolicy struct {
	// Backoff interval for the first retry. If BackoffCoefficient is 1.0 then it is used for all retries.
	// If not set or set to 0, a default interval of 100ms will be used.
	InitialInterval time.Duration

	// Coefficient used to calculate the next retry backoff interval.
	// The next retry interval is previous interval multiplied by this coefficient.
	// Must be 1 or larger. Default is 2.0.
	BackoffCoefficient float64

	// Maximum backoff interval between retries. Exponential backoff leads to interval increase.
	// This value is the cap of the interval. Default is 100x of initial interval.
	MaximumInterval time.Duration
}

// DefaultPollRetryPolicy backs off from 100ms up to 10s.
func DefaultPollRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		InitialInterval:    100 * time.Millisecond,
		BackoffCoefficient: 2.0,
		MaximumInterval:    10 * time.Second,
	}
}

// CalculateNextDelay returns initialInterval * coefficient^(attempt-1), capped
// at MaximumInterval. attempt starts at 1.
func (r *RetryPolicy) CalculateNextDelay(attempt int) time.Duration {
	initialInterval := r.InitialInterval
	if initialInterval <= 0 {
		initialInterval = 100 * time.Millisecond
	}

	backoffCoefficient := r.BackoffCoefficient
	if backoffCoefficient < 1 {
		backoffCoefficient = 2.0
	}

	maxInterval := r.MaximumInterval
	if maxInterval <= 0 {
		maxInterval = 100 * initialInterval
	}

	if attempt < 1 {
		attempt = 1
	}
	next := float64(initialInterval) * math.Pow(backoffCoefficient, float64(attempt-1))
	if next > float64(maxInterval) || math.IsInf(next, 0) {
		return maxInterval
	}
	return time.Duration(next)
}
