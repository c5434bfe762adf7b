package shared

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"log/slog"
	"time"

	"roomchat/internal/pkg/errs"
)

var ErrMaxRetriesExceeded = errs.New("operation failed after max retries")

type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// Retry runs fn until it succeeds, fails with an error not marked errs.ErrTransient,
// or MaxAttempts is reached. The last transient error is returned marked with
// ErrMaxRetriesExceeded and still matches errs.ErrTransient.
func Retry[T any](ctx context.Context, logger *slog.Logger, p RetryPolicy, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	attempts := max(p.MaxAttempts, 1)

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if !errs.Is(err, errs.ErrTransient) {
			return zero, err
		}
		lastErr = err

		if attempt == attempts-1 {
			break
		}

		waitTime := calculateBackoff(attempt, p.Backoff)
		logger.Warn("retrying after transient failure",
			"op", op,
			"attempt", attempt+1,
			"wait_ms", waitTime.Milliseconds(),
			"error", err.Error())

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(waitTime):
		}
	}

	logger.Error("operation failed after max retries",
		"op", op,
		"attempts", attempts,
		"error", lastErr.Error())
	return zero, errs.Mark(lastErr, ErrMaxRetriesExceeded)
}

func calculateBackoff(attempt int, base time.Duration) time.Duration {
	waitTime := time.Duration(1<<attempt) * base
	jitter := cryptoRandInt63n(int64(waitTime / 5))
	return waitTime + time.Duration(jitter)
}

func cryptoRandInt63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	uval := binary.BigEndian.Uint64(buf[:]) & 0x7FFFFFFFFFFFFFFF
	// #nosec G115 -- masked to a non-negative value
	return int64(uval) % n
}
