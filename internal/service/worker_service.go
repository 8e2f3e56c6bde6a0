package service

import (
	"context"
	"time"

	"hospital-roster/internal/metrics"
	"hospital-roster/internal/roster"

	"github.com/rs/zerolog/log"
)

// SnapshotRefresher rebuilds the cached roster snapshot
type SnapshotRefresher interface {
	RefreshSnapshot(ctx context.Context) ([]roster.Hospital, error)
}

type WorkerService struct {
	refresher SnapshotRefresher
	interval  time.Duration
}

func NewWorkerService(refresher SnapshotRefresher, interval time.Duration) *WorkerService {
	return &WorkerService{
		refresher: refresher,
		interval:  interval,
	}
}

// Start begins the background worker that keeps the roster snapshot warm.
// It refreshes once immediately and then on every tick until ctx is cancelled.
func (w *WorkerService) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", w.interval).Msg("Snapshot worker started")
	w.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Snapshot worker stopped")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *WorkerService) refresh(ctx context.Context) {
	start := time.Now()
	hospitals, err := w.refresher.RefreshSnapshot(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		metrics.SnapshotRefreshes.WithLabelValues("failure").Inc()
		log.Error().Err(err).Msg("Error refreshing roster snapshot")
		return
	}

	metrics.SnapshotRefreshes.WithLabelValues("success").Inc()
	log.Debug().
		Int("hospitals", len(hospitals)).
		Dur("took", time.Since(start)).
		Msg("Roster snapshot refreshed")
}
