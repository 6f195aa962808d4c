package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryConfig controls the retrying generator decorator.
type RetryConfig struct {
	// Timeout bounds one underlying Generate call, retries included.
	// A timeout counts as an unavailable provider.
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt.
	MaxRetries uint64

	// InitialInterval seeds the exponential backoff between attempts.
	InitialInterval time.Duration
}

// DefaultRetryConfig returns the retry policy used by the server.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Timeout:         15 * time.Second,
		MaxRetries:      2,
		InitialInterval: 200 * time.Millisecond,
	}
}

// retryingGenerator retries transient failures before giving up.
type retryingGenerator struct {
	inner Generator
	cfg   RetryConfig
}

// WithRetry wraps a Generator with a per-call timeout and bounded
// exponential-backoff retries. Whatever happens, the caller sees either a
// completion or ErrUnavailable.
func WithRetry(inner Generator, cfg RetryConfig) Generator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultRetryConfig().Timeout
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = DefaultRetryConfig().InitialInterval
	}
	return &retryingGenerator{inner: inner, cfg: cfg}
}

func (g *retryingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = g.cfg.InitialInterval

	var result string
	operation := func() error {
		text, err := g.inner.Generate(ctx, prompt)
		if err != nil {
			return err
		}
		result = text
		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, g.cfg.MaxRetries), ctx))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if errors.Is(err, ErrUnavailable) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return result, nil
}
