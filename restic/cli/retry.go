package cli

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/go-logr/logr"
)

// RetryPolicy re-invokes an operation on transient failures with exponential
// backoff and jitter. Only failures whose ErrorKind is in RetryOn are
// retried; everything else, including errors that are no *Error at all,
// propagates on first occurrence.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
	Jitter         float64
	RetryOn        []ErrorKind
}

// DefaultRetryPolicy retries network and repository failures. Authentication
// and permission failures fail fast: retrying them wastes time and risks
// account lockouts.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: time.Second,
		MaxBackoff:     30 * time.Second,
		BackoffFactor:  2.0,
		Jitter:         0.1,
		RetryOn:        []ErrorKind{KindNetwork, KindRepository},
	}
}

func (p RetryPolicy) retriable(err error) bool {
	var resticErr *Error
	if !errors.As(err, &resticErr) {
		return false
	}
	for _, kind := range p.RetryOn {
		if resticErr.Kind == kind {
			return true
		}
	}
	return false
}

func (p RetryPolicy) backoff(attempt int) time.Duration {
	delay := math.Min(
		float64(p.MaxBackoff),
		float64(p.InitialBackoff)*math.Pow(p.BackoffFactor, float64(attempt-1)),
	)
	delay *= 1 + (rand.Float64()*2-1)*p.Jitter
	return time.Duration(delay)
}

// Run executes op at most MaxAttempts times, sleeping between retriable
// failures. The sleep suspends only the calling goroutine and is cut short
// when ctx is done.
func (p RetryPolicy) Run(ctx context.Context, log logr.Logger, op func() error) error {
	_, err := retry(ctx, p, log, func() (struct{}, error) {
		return struct{}{}, op()
	})
	return err
}

func retry[T any](ctx context.Context, p RetryPolicy, log logr.Logger, op func() (T, error)) (T, error) {
	var zero T
	for attempt := 1; ; attempt++ {
		result, err := op()
		if err == nil {
			return result, nil
		}
		if attempt == p.MaxAttempts || !p.retriable(err) {
			return zero, err
		}

		delay := p.backoff(attempt)
		log.Info("operation failed, retrying", "attempt", attempt, "maxAttempts", p.MaxAttempts, "backoff", delay.String(), "error", err.Error())

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}
