package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	repository "github.com/ds-lab/eventmanager/internal/database/postgres"
	"github.com/ds-lab/eventmanager/pkg/clock"
)

// StatusSweeper periodically marks past-end events completed, so the stored
// status catches up even for events nobody reads. The lazy derivation on the
// read paths stays authoritative; the sweeper only narrows the window of
// stale rows.
type StatusSweeper struct {
	eventRepo repository.EventRepository
	clock     clock.Clock
	interval  time.Duration
}

func NewStatusSweeper(eventRepo repository.EventRepository, clk clock.Clock, interval time.Duration) *StatusSweeper {
	return &StatusSweeper{
		eventRepo: eventRepo,
		clock:     clk,
		interval:  interval,
	}
}

func (w *StatusSweeper) Start(ctx context.Context) {
	if w.interval <= 0 {
		w.interval = time.Minute
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logrus.Info("Status sweeper started")

	// Run once up front so a restart catches up immediately.
	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Status sweeper stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *StatusSweeper) sweep(ctx context.Context) {
	updated, err := w.eventRepo.CompletePastEvents(ctx, w.clock.Now())
	if err != nil {
		logrus.Errorf("Failed to sweep past events: %v", err)
		return
	}

	if updated > 0 {
		logrus.Infof("Status sweep marked %d events completed", updated)
	}
}
