package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vkbackup/pkg/config"
	errs "vkbackup/pkg/errors"
	"vkbackup/pkg/logger"
)

// Operation is a function that performs an operation that might need retrying
type Operation func() error

// OperationWithResult is a function that returns a result and might need retrying
type OperationWithResult[T any] func() (T, error)

// Config holds retry configuration
type Config struct {
	// MaxAttempts is the total number of tries; 1 disables retrying
	MaxAttempts int
	// Backoff is used for errors without a more specific strategy
	Backoff BackoffStrategy
	// ByType overrides Backoff per error type when set
	ByType *ErrorTypeBackoff
	// RetryIf determines if an error should be retried
	RetryIf func(error) bool
	// OnRetry is called before each retry attempt
	OnRetry func(attempt int, err error, delay time.Duration)
	Logger  logger.Logger
}

// DefaultConfig makes a single attempt, matching the behaviour of a plain call
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts: 1,
		Backoff:     DefaultExponentialBackoff(),
		RetryIf:     DefaultRetryIf,
		Logger:      logger.NewNopLogger(),
	}
}

// FromSettings builds a Config from the retry section of the app config
func FromSettings(s config.RetryConfig, log logger.Logger) *Config {
	if log == nil {
		log = logger.GetLogger()
	}
	attempts := s.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	base := &ExponentialBackoff{
		BaseDelay:    s.InitialBackoff,
		MaxDelay:     s.MaxBackoff,
		Multiplier:   s.Multiplier,
		JitterFactor: 0.1,
	}
	byType := NewErrorTypeBackoff()
	byType.DefaultBackoff = base
	byType.NetworkErrorBackoff = base

	return &Config{
		MaxAttempts: attempts,
		Backoff:     base,
		ByType:      byType,
		RetryIf:     DefaultRetryIf,
		Logger:      log,
	}
}

// DefaultRetryIf retries typed transient errors only: network failures,
// rate limiting and 5xx responses.
func DefaultRetryIf(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *errs.Error
	if errors.As(err, &apiErr) {
		return errs.IsRetryable(apiErr.Type)
	}
	return false
}

// Do runs op until it succeeds, fails with a non-retryable error, runs out of
// attempts or ctx is cancelled.
func Do(ctx context.Context, op Operation, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}
	retryIf := cfg.RetryIf
	if retryIf == nil {
		retryIf = DefaultRetryIf
	}

	var lastErr error
	for attempt := 1; ; attempt++ {
		err := op()
		if err == nil {
			if attempt > 1 {
				log.DebugWithFields("operation succeeded after retry", map[string]interface{}{
					"attempt": attempt,
				})
			}
			return nil
		}
		lastErr = err

		if !retryIf(err) {
			return err
		}
		if cfg.MaxAttempts > 0 && attempt >= cfg.MaxAttempts {
			if cfg.MaxAttempts == 1 {
				return err
			}
			log.ErrorWithFields("max retry attempts exceeded", map[string]interface{}{
				"attempts":   attempt,
				"last_error": lastErr.Error(),
			})
			return fmt.Errorf("max retry attempts (%d) exceeded: %w", cfg.MaxAttempts, lastErr)
		}

		delay := cfg.delayFor(err, attempt)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, delay)
		}
		log.WarnWithFields("retrying operation", map[string]interface{}{
			"attempt":      attempt,
			"error":        err.Error(),
			"delay_ms":     delay.Milliseconds(),
			"max_attempts": cfg.MaxAttempts,
		})

		if err := Wait(ctx, delay); err != nil {
			return fmt.Errorf("retry cancelled: %w", err)
		}
	}
}

// DoWithResult executes an operation that returns a result with retry logic
func DoWithResult[T any](ctx context.Context, op OperationWithResult[T], cfg *Config) (T, error) {
	var result T
	err := Do(ctx, func() error {
		var opErr error
		result, opErr = op()
		return opErr
	}, cfg)
	return result, err
}

func (c *Config) delayFor(err error, attempt int) time.Duration {
	if c.ByType != nil {
		return c.ByType.GetBackoffForError(errs.TypeOf(err)).NextDelay(attempt)
	}
	if c.Backoff != nil {
		return c.Backoff.NextDelay(attempt)
	}
	return 0
}
