package retry

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	defaultAttempts = 3
	defaultDelay    = 500 * time.Millisecond
	defaultMaxDelay = 5 * time.Second
)

type RetryConfig struct {
	Attempts uint          `env:"ATTEMPTS" envDefault:"3"`
	Delay    time.Duration `env:"DELAY" envDefault:"500ms"`
	MaxDelay time.Duration `env:"MAX_DELAY" envDefault:"5s"`
}

// ToRetryOptions builds retry-go options bound to ctx. Errors for which
// retryable returns false stop the loop immediately.
func (rc *RetryConfig) ToRetryOptions(ctx context.Context, retryable func(error) bool) []retry.Option {
	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(rc.Attempts),
		retry.Delay(rc.Delay),
		retry.MaxDelay(rc.MaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	}
	if retryable != nil {
		opts = append(opts, retry.RetryIf(retryable))
	}
	return opts
}

func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		Attempts: defaultAttempts,
		Delay:    defaultDelay,
		MaxDelay: defaultMaxDelay,
	}
}

// Do runs fn under the given config.
func Do(ctx context.Context, rc RetryConfig, retryable func(error) bool, fn func() error) error {
	if rc.Attempts == 0 {
		rc.Attempts = 1
	}
	return retry.Do(fn, rc.ToRetryOptions(ctx, retryable)...)
}
