package cli

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		BackoffFactor:  2.0,
		Jitter:         0.1,
		RetryOn:        []ErrorKind{KindNetwork, KindRepository},
	}
}

func TestRetryPolicy_Run_RetriesTransientFailures(t *testing.T) {
	calls := 0
	err := testPolicy().Run(context.Background(), logr.Discard(), func() error {
		calls++
		if calls < 3 {
			return &Error{Kind: KindNetwork, Message: "connection refused"}
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryPolicy_Run_GivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	err := testPolicy().Run(context.Background(), logr.Discard(), func() error {
		calls++
		return &Error{Kind: KindNetwork, Message: "connection refused"}
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)

	var resticErr *Error
	require.True(t, errors.As(err, &resticErr))
	assert.Equal(t, KindNetwork, resticErr.Kind)
}

func TestRetryPolicy_Run_FailsFastOnAuthentication(t *testing.T) {
	calls := 0
	err := testPolicy().Run(context.Background(), logr.Discard(), func() error {
		calls++
		return &Error{Kind: KindAuthentication, Message: "wrong password"}
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls, "authentication failures must not be retried")
}

func TestRetryPolicy_Run_FailsFastOnUntypedErrors(t *testing.T) {
	calls := 0
	err := testPolicy().Run(context.Background(), logr.Discard(), func() error {
		calls++
		return errors.New("some unrelated failure")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryPolicy_Run_StopsWhenContextIsCancelled(t *testing.T) {
	policy := testPolicy()
	policy.InitialBackoff = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- policy.Run(ctx, logr.Discard(), func() error {
			calls++
			return &Error{Kind: KindNetwork, Message: "connection refused"}
		})
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	case <-time.After(5 * time.Second):
		t.Fatal("retry did not honor the cancelled context")
	}
}

func TestRetryPolicy_Backoff_IsBoundedByMaxBackoff(t *testing.T) {
	policy := RetryPolicy{
		InitialBackoff: time.Second,
		MaxBackoff:     30 * time.Second,
		BackoffFactor:  2.0,
		Jitter:         0.1,
	}

	for attempt := 1; attempt <= 20; attempt++ {
		delay := policy.backoff(attempt)
		maxWithJitter := time.Duration(float64(policy.MaxBackoff) * 1.1)
		assert.LessOrEqual(t, delay, maxWithJitter, "attempt %d", attempt)
		assert.Greater(t, delay, time.Duration(0), "attempt %d", attempt)
	}
}

func TestDefaultRetryPolicy(t *testing.T) {
	policy := DefaultRetryPolicy()

	assert.Equal(t, 3, policy.MaxAttempts)
	assert.Equal(t, time.Second, policy.InitialBackoff)
	assert.Equal(t, 30*time.Second, policy.MaxBackoff)
	assert.ElementsMatch(t, []ErrorKind{KindNetwork, KindRepository}, policy.RetryOn)
}
