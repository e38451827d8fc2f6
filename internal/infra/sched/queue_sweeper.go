package sched

import (
	"context"
	"time"

	"fieldops-assignment/internal/domain/ports/queue"
	"fieldops-assignment/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// QueueSweeper periodically releases claimed-but-stuck jobs back to pending
// (at-least-once delivery when a worker dies mid-job) and refreshes the
// queue depth gauge.
type QueueSweeper struct {
	q          queue.JobQueue
	interval   time.Duration
	visibility time.Duration
	log        *zerolog.Logger
}

func NewQueueSweeper(q queue.JobQueue, interval, visibility time.Duration, logger *zerolog.Logger) *QueueSweeper {
	compLog := logger.With().Str("component", "QueueSweeper").Logger()
	return &QueueSweeper{
		q:          q,
		interval:   interval,
		visibility: visibility,
		log:        &compLog,
	}
}

func (w *QueueSweeper) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting queue sweeper")
	// Run once on startup, then on every tick
	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping queue sweeper")
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *QueueSweeper) sweep(ctx context.Context) {
	released, err := w.q.ReleaseStuck(ctx, w.visibility)
	if err != nil {
		w.log.Error().Err(err).Msg("stuck job sweep failed")
	}
	if released > 0 {
		metrics.AddStuckReleased(released)
		w.log.Warn().Int("count", released).Msg("stuck jobs released back to pending")
	}

	depth, err := w.q.PendingCount(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("queue depth check failed")
		return
	}
	metrics.SetQueueDepth(depth)
}
