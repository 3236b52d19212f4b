package resilience

import (
	"context"
	"errors"
	"time"
)

// permanent marks an error that must not be retried.
type permanent struct {
	err error
}

func (p *permanent) Error() string { return p.err.Error() }
func (p *permanent) Unwrap() error { return p.err }

// Permanent wraps err so Retry surfaces it immediately instead of retrying.
// Validation-class failures (bad model id, malformed prompt) are permanent;
// only transient classes (timeouts, 5xx-equivalents) are retried.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanent{err: err}
}

// Retry runs fn up to attempts+1 times with exponential backoff starting at
// baseDelay, doubling between tries. It stops early when ctx is done or fn
// returns a Permanent error. The last error is returned unwrapped.
func Retry(ctx context.Context, attempts int, baseDelay time.Duration, fn func() error) error {
	var err error
	delay := baseDelay

	for try := 0; ; try++ {
		err = fn()
		if err == nil {
			return nil
		}

		var perm *permanent
		if errors.As(err, &perm) {
			return perm.err
		}

		if try >= attempts {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}
