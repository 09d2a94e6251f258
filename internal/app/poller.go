package app

import (
	"context"
	"time"

	"pkt.systems/pslog"

	"github.com/parkerfly38/shulpick/internal/state"
)

const (
	defaultPollInterval = 5 * time.Second
	maxBackoff          = 30 * time.Second
	probeTimeout        = 3 * time.Second
)

// Pinger is the health probe the poller drives.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StartPoller launches a background goroutine that probes the backend and
// records the outcome in store. Consecutive failures stretch the interval
// exponentially up to maxBackoff. It returns immediately.
func StartPoller(ctx context.Context, store *state.Store, pinger Pinger, interval time.Duration, logger pslog.Logger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = pslog.NoopLogger()
	}
	go func() {
		failures := 0
		for {
			if err := probe(ctx, store, pinger); err != nil {
				if ctx.Err() != nil {
					return
				}
				failures++
				logger.Warn("poller.probe.failed", "failures", failures, "error", err)
			} else {
				if failures > 0 {
					logger.Info("poller.recovered", "after_failures", failures)
				}
				failures = 0
			}

			timer := time.NewTimer(calculateBackoff(failures, interval))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
}

func probe(ctx context.Context, store *state.Store, pinger Pinger) error {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	start := time.Now()
	err := pinger.Ping(ctx)
	store.Record(time.Since(start), err)
	return err
}

// calculateBackoff doubles base once per failure, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for range failures {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
