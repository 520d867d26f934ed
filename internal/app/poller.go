package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	defaultPollInterval = 5 * time.Second
	maxBackoff          = 30 * time.Second
)

// Refresher re-reads the inventory from its store.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// StartPoller launches a background goroutine that refreshes r at a fixed
// cadence, backing off after consecutive failures. Each refresh is bounded by
// timeout when it is positive. It returns immediately; the goroutine exits
// when ctx is cancelled. The returned channel is closed on exit.
func StartPoller(ctx context.Context, r Refresher, interval, timeout time.Duration, log *zap.Logger) <-chan struct{} {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	done := make(chan struct{})
	go func() {
		defer close(done)

		timer := time.NewTimer(interval)
		defer timer.Stop()

		failures := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			if err := refreshOnce(ctx, r, timeout); err != nil {
				if ctx.Err() != nil {
					return
				}
				failures++
				wait := calculateBackoff(failures, interval)
				log.Warn("background refresh failed",
					zap.Error(err),
					zap.Int("failures", failures),
					zap.Duration("retry_in", wait))
				timer.Reset(wait)
				continue
			}
			if failures > 0 {
				log.Info("background refresh recovered", zap.Int("failures", failures))
			}
			failures = 0
			timer.Reset(interval)
		}
	}()
	return done
}

func refreshOnce(ctx context.Context, r Refresher, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return r.Refresh(ctx)
}

// calculateBackoff doubles base for each failure, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	wait := base
	for i := 0; i < failures; i++ {
		wait *= 2
		if wait >= maxBackoff {
			return maxBackoff
		}
	}
	return wait
}
