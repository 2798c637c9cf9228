package store

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Sweeper periodically purges expired sessions.
type Sweeper struct {
	store    Store
	interval time.Duration
	log      *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSweeper(s Store, interval time.Duration, log *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Sweeper{store: s, interval: interval, log: log}
}

// Start launches the sweep loop.
func (w *Sweeper) Start(ctx context.Context) {
	sweepCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				w.Sweep(sweepCtx)
			}
		}
	}()
}

// Sweep runs one purge pass.
func (w *Sweeper) Sweep(ctx context.Context) {
	n, err := w.store.PurgeExpiredSessions(ctx)
	if err != nil {
		w.log.Warn("session purge failed", "error", err)
		return
	}
	if n > 0 {
		w.log.Info("purged expired sessions", "count", n)
	}
}

// Stop halts the loop and waits for it to exit.
func (w *Sweeper) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
