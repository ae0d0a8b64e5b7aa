package lbpair

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

const defaultRetryBackoff = 100 * time.Millisecond

// decodeError marks a failure to encode calldata or decode a return value.
// The node answered; asking again yields the same bytes.
type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

func permanent(err error) error {
	if err == nil {
		return nil
	}
	return &decodeError{err: err}
}

// retryable reports whether another attempt could succeed.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var de *decodeError
	return !errors.As(err, &de)
}

// retrier repeats RPC reads with exponential backoff.
type retrier struct {
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

func newRetrier(maxRetries int, backoff time.Duration, logger *zap.Logger) retrier {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return retrier{maxRetries: maxRetries, backoff: backoff, logger: logger}
}

// do calls fn up to maxRetries+1 times. Decode failures and context errors
// end the loop at once.
func (r retrier) do(ctx context.Context, op string, fn func(context.Context) error) error {
	wait := r.backoff
	for retries := 0; ; retries++ {
		err := fn(ctx)
		switch {
		case err == nil:
			return nil
		case !retryable(err), retries == r.maxRetries, ctx.Err() != nil:
			return err
		}

		r.logger.Debug("rpc read failed, retrying",
			zap.String("op", op),
			zap.Int("retry", retries+1),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		t := time.NewTimer(wait)
		select {
		case <-t.C:
			wait *= 2
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		}
	}
}
