package order

import (
	"context"
	"time"

	"github.com/jpillora/backoff"
)

// entryBackoff reproduces the entry pipeline's prescribed 3s/6s/9s retry
// spacing exactly: Min=3s, Factor=2, Max=9s against jpillora/backoff's
// Min*Factor^attempt formula yields 3, 6, 9(capped) for attempts 0-2.
func entryBackoff() *backoff.Backoff {
	return &backoff.Backoff{Min: 3 * time.Second, Factor: 2, Max: 9 * time.Second}
}

// exitDelays is the exit retry policy's prescribed 3s/6s/9s/12s/15s spacing.
// jpillora/backoff's pure geometric formula (Min*Factor^attempt) cannot
// reproduce this arithmetic progression for five attempts, so the exit path
// is driven by this explicit table instead (see DESIGN.md).
var exitDelays = []time.Duration{
	3 * time.Second, 6 * time.Second, 9 * time.Second, 12 * time.Second, 15 * time.Second,
}

// sleepCtx sleeps for d or returns ctx.Err() early if ctx is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
