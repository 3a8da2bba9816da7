package ai

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestRetryWithBackoff_Success(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), testPolicy(3), func(ctx context.Context) error {
		attempts++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, attempts, "should succeed on first try")
}

func TestRetryWithBackoff_EventualSuccess(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), testPolicy(5), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return NewTransientError("rate limited", nil)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts, "should succeed on third attempt")
}

func TestRetryWithBackoff_TransientExhausted(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), testPolicy(3), func(ctx context.Context) error {
		attempts++
		return NewTransientError("service unavailable", nil)
	})
	require.Error(t, err)
	assert.True(t, IsTransient(err))
	assert.Equal(t, 3, attempts, "should attempt exactly maxAttempts times")
}

func TestRetryWithBackoff_PermanentNotRetried(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), testPolicy(5), func(ctx context.Context) error {
		attempts++
		return NewPermanentError("unsupported image", nil)
	})
	require.Error(t, err)
	assert.True(t, IsPermanent(err))
	assert.Equal(t, 1, attempts)
}

func TestRetryWithBackoff_RawErrorsAreClassified(t *testing.T) {
	t.Run("network error is transient", func(t *testing.T) {
		attempts := 0
		err := RetryWithBackoff(context.Background(), testPolicy(2), func(ctx context.Context) error {
			attempts++
			return &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
		})
		var ae *AnalysisError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, Transient, ae.Kind)
		assert.Equal(t, 2, attempts)
	})

	t.Run("unknown error is permanent", func(t *testing.T) {
		err := RetryWithBackoff(context.Background(), testPolicy(2), func(ctx context.Context) error {
			return errors.New("cannot decode image")
		})
		var ae *AnalysisError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, Permanent, ae.Kind)
	})
}

func TestRetryWithBackoff_PerAttemptTimeout(t *testing.T) {
	policy := testPolicy(2)
	policy.Timeout = 10 * time.Millisecond

	attempts := 0
	err := RetryWithBackoff(context.Background(), policy, func(ctx context.Context) error {
		attempts++
		<-ctx.Done()
		return errors.New("request aborted")
	})
	require.Error(t, err)
	assert.True(t, IsTransient(err), "timeouts are transient")
	assert.Equal(t, 2, attempts)
}

func TestRetryWithBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := RetryWithBackoff(ctx, RetryPolicy{MaxAttempts: 5, BaseDelay: 50 * time.Millisecond}, func(ctx context.Context) error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return NewTransientError("busy", nil)
	})
	require.Error(t, err)
	assert.Equal(t, 2, attempts, "no attempts after cancellation")
}

func TestRetryWithBackoff_InvalidMaxAttempts(t *testing.T) {
	err := RetryWithBackoff(context.Background(), RetryPolicy{}, func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
}

func TestClassify(t *testing.T) {
	assert.Nil(t, Classify(nil))

	ae := NewPermanentError("bad", nil)
	assert.Same(t, ae, Classify(ae))

	assert.True(t, IsTransient(Classify(context.DeadlineExceeded)))
	assert.True(t, IsTransient(Classify(context.Canceled)))
	assert.True(t, IsPermanent(Classify(errors.New("boom"))))

	wrapped := Classify(errors.New("boom"))
	assert.Contains(t, wrapped.Error(), "permanent analysis error")
}
