package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Houeta/scrum-agent/internal/lib/logger/sl"
)

// Permanent marks err so that Do stops retrying and returns it unwrapped.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do calls fn up to attempts times, waiting delay between calls, until it succeeds,
// returns a Permanent error or ctx is done.
func Do(
	ctx context.Context,
	log *slog.Logger,
	opn string,
	attempts int,
	delay time.Duration,
	fn func(ctx context.Context) error,
) error {
	if attempts < 1 {
		attempts = 1
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(delay), uint64(attempts-1)), //nolint:gosec // attempts >= 1
		ctx,
	)

	attempt := 0
	operation := func() error {
		attempt++
		return fn(ctx)
	}
	notify := func(err error, wait time.Duration) {
		log.WarnContext(ctx, "Attempt failed, retrying",
			"op", opn, "attempt", attempt, "of", attempts, "retry_in", wait.String(), sl.Err(err))
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return fmt.Errorf("%s failed after %d attempt(s): %w", opn, attempt, err)
	}

	return nil
}
