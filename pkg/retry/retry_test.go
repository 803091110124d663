package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vkbackup/pkg/config"
	errs "vkbackup/pkg/errors"
)

func fastConfig(attempts int) *Config {
	return &Config{
		MaxAttempts: attempts,
		Backoff:     &ConstantBackoff{Delay: 5 * time.Millisecond},
		RetryIf:     DefaultRetryIf,
	}
}

func networkErr() error {
	return errs.Network("download", errors.New("connection reset"))
}

func TestExponentialBackoff(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   time.Second,
		Multiplier: 2.0,
	}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 0},
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, time.Second},
		{9, time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, backoff.NextDelay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestExponentialBackoffJitterStaysInRange(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.3,
	}
	for i := 0; i < 20; i++ {
		d := backoff.NextDelay(2)
		assert.GreaterOrEqual(t, d, 140*time.Millisecond)
		assert.LessOrEqual(t, d, 260*time.Millisecond)
	}
}

func TestDefaultIsSingleAttempt(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func() error {
		attempts++
		return networkErr()
	}, nil)

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.True(t, errs.IsType(err, errs.ErrorTypeNetwork), "error is returned unwrapped")
}

func TestRetryUntilSuccess(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return networkErr()
		}
		return nil
	}, fastConfig(5))

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryMaxAttemptsExceeded(t *testing.T) {
	attempts := 0
	var retried []int
	cfg := fastConfig(3)
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		retried = append(retried, attempt)
	}

	err := Do(context.Background(), func() error {
		attempts++
		return errs.New(errs.ErrorTypeServerError, "upload", "bad gateway")
	}, cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retry attempts (3) exceeded")
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestNonRetryableErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"remote api", errs.RemoteAPI("photos.get", 5, "User authorization failed")},
		{"auth", errs.New(errs.ErrorTypeAuth, "upload", "unauthorized")},
		{"untyped", errors.New("plain")},
		{"cancelled", context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			err := Do(context.Background(), func() error {
				attempts++
				return tt.err
			}, fastConfig(5))
			assert.Equal(t, tt.err, err)
			assert.Equal(t, 1, attempts)
		})
	}
}

func TestRetryContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := &Config{MaxAttempts: 10, Backoff: &ConstantBackoff{Delay: time.Hour}}

	attempts := 0
	err := Do(ctx, func() error {
		attempts++
		cancel()
		return networkErr()
	}, cfg)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	result, err := DoWithResult(context.Background(), func() ([]byte, error) {
		attempts++
		if attempts < 2 {
			return nil, networkErr()
		}
		return []byte("jpeg"), nil
	}, fastConfig(3))

	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), result)
	assert.Equal(t, 2, attempts)
}

func TestErrorTypeBackoff(t *testing.T) {
	etb := NewErrorTypeBackoff()

	rate, ok := etb.GetBackoffForError(errs.ErrorTypeRateLimit).(*ExponentialBackoff)
	require.True(t, ok)
	assert.Equal(t, 10*time.Second, rate.BaseDelay)

	net, ok := etb.GetBackoffForError(errs.ErrorTypeNetwork).(*ExponentialBackoff)
	require.True(t, ok)
	assert.Equal(t, time.Second, net.BaseDelay)

	assert.Same(t, etb.DefaultBackoff, etb.GetBackoffForError(errs.ErrorTypeUnknown))
}

func TestFromSettings(t *testing.T) {
	cfg := FromSettings(config.RetryConfig{
		MaxAttempts:    0,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     time.Second,
		Multiplier:     3,
	}, nil)

	assert.Equal(t, 1, cfg.MaxAttempts, "attempts are clamped to one")
	base, ok := cfg.Backoff.(*ExponentialBackoff)
	require.True(t, ok)
	assert.Equal(t, 50*time.Millisecond, base.BaseDelay)
	assert.Same(t, cfg.Backoff, cfg.ByType.GetBackoffForError(errs.ErrorTypeNetwork))
}
