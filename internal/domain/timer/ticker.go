package timer

import (
	"context"
	"log/slog"
	"time"
)

// Tick is an elapsed-time event for the running entry.
type Tick struct {
	EntryID        string
	ElapsedSeconds int64
}

// Ticker periodically reports the running entry's elapsed time to a listener
// and flushes the total to storage on a coarser interval. It is a read-side
// concern: it never mutates segments, and persistence failures are logged,
// not surfaced.
type Ticker struct {
	svc        *Service
	interval   time.Duration
	flushEvery time.Duration
	logger     *slog.Logger
}

// NewTicker creates a ticker. interval controls how often listeners hear
// about elapsed time; flushEvery bounds how often the running duration is
// written to storage.
func NewTicker(svc *Service, interval, flushEvery time.Duration, logger *slog.Logger) *Ticker {
	if interval <= 0 {
		interval = time.Second
	}
	if flushEvery < interval {
		flushEvery = interval
	}
	return &Ticker{
		svc:        svc,
		interval:   interval,
		flushEvery: flushEvery,
		logger:     logger,
	}
}

// Run blocks until ctx is cancelled, invoking onTick while the timer runs.
func (t *Ticker) Run(ctx context.Context, onTick func(Tick)) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	lastFlush := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			snap := t.svc.Current()
			if snap.State != StateRunning {
				continue
			}
			if onTick != nil {
				onTick(Tick{EntryID: snap.Entry.ID, ElapsedSeconds: snap.ElapsedSeconds})
			}
			if now.Sub(lastFlush) >= t.flushEvery {
				if err := t.svc.FlushRunning(ctx); err != nil && t.logger != nil {
					t.logger.Warn("duration flush failed", "error", err)
				}
				lastFlush = now
			}
		}
	}
}
