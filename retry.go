package goYK

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
)

// VerifyWithRetry wraps Verify with a caller-side retry policy: Fibonacci
// backoff starting at 200ms, capped at 2s, up to maxRetries additional
// attempts. Only infrastructure failures (ErrTransportFailure) are retried;
// parse failures, replays, and server-reported statuses are surfaced
// immediately — retrying those cannot change the answer. Each attempt is a
// full, independent race.
func (v *Verifier) VerifyWithRetry(ctx context.Context, rawToken string, maxRetries uint64, opts ...VerifyOption) error {
	if v == nil {
		return ErrVerifierNotReady
	}
	if ctx == nil {
		ctx = context.Background()
	}

	b := retry.NewFibonacci(200 * time.Millisecond)
	b = retry.WithCappedDuration(2*time.Second, b)
	b = retry.WithMaxRetries(maxRetries, b)

	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := v.Verify(ctx, rawToken, opts...)
		if errors.Is(err, ErrTransportFailure) {
			return retry.RetryableError(err)
		}
		return err
	})
}
