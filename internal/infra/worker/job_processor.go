package worker

import (
	"context"
	"errors"
	"time"

	"fieldops-assignment/internal/domain"
	"fieldops-assignment/internal/domain/model"
	"fieldops-assignment/internal/domain/ports/queue"
	"fieldops-assignment/internal/infra/metrics"
	"fieldops-assignment/internal/usecase"

	"github.com/rs/zerolog"
)

// JobProcessor pulls jobs from the durable queue and dispatches each to the
// handler matching its variant. Each worker handles one job at a time; jobs
// coordinate only through the per-case row lock.
type JobProcessor struct {
	q        queue.JobQueue
	assignUC usecase.AssignUseCase
	batchUC  usecase.BatchUseCase
	interval time.Duration
	log      *zerolog.Logger
}

func NewJobProcessor(q queue.JobQueue, assignUC usecase.AssignUseCase, batchUC usecase.BatchUseCase, pollInterval time.Duration, logger *zerolog.Logger) *JobProcessor {
	compLog := logger.With().Str("component", "JobProcessor").Logger()
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	return &JobProcessor{q: q, assignUC: assignUC, batchUC: batchUC, interval: pollInterval, log: &compLog}
}

// Start runs the claim loop, feeding the pool. Should be run in a goroutine.
func (p *JobProcessor) Start(ctx context.Context, pool *Pool) {
	p.log.Info().Int("workers", pool.Size()).Msg("job processor started")
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("job processor stopping")
			return
		case <-ticker.C:
			_ = pool.Submit(func(ctx context.Context) error {
				p.processOne(ctx)
				return nil
			})
		}
	}
}

func (p *JobProcessor) processOne(ctx context.Context) {
	job, err := p.q.Claim(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			p.log.Error().Err(err).Msg("failed to claim job")
		}
		return
	}

	p.log.Info().Str("job_id", job.ID).Str("kind", string(job.Job.Kind)).Int("attempt", job.Attempts).Msg("processing job")
	start := time.Now()

	err = p.dispatch(ctx, job)
	latency := time.Since(start)
	metrics.ObserveJobDuration(string(job.Job.Kind), float64(latency/time.Millisecond))

	if err != nil {
		metrics.IncJob(string(job.Job.Kind), "failed")
		p.log.Error().Err(err).Str("job_id", job.ID).Msg("job failed")
		if ferr := p.q.Fail(context.Background(), job.ID, err.Error()); ferr != nil {
			p.log.Error().Err(ferr).Str("job_id", job.ID).Msg("could not record job failure")
		}
		return
	}

	metrics.IncJob(string(job.Job.Kind), "completed")
	if cerr := p.q.Complete(context.Background(), job.ID); cerr != nil {
		p.log.Error().Err(cerr).Str("job_id", job.ID).Msg("could not mark job complete")
	}
	p.log.Info().Str("job_id", job.ID).Str("kind", string(job.Job.Kind)).Dur("duration", latency).Msg("job finished")
}

// dispatch switches exhaustively over the closed job union. A returned error
// feeds the queue's retry/backoff policy; a per-case domain failure does not.
func (p *JobProcessor) dispatch(ctx context.Context, job *queue.QueuedJob) error {
	// Enqueue validates, so this only trips on a tampered row. Failing it
	// sends the job down the retry path to dead instead of panicking on a
	// nil variant below.
	if err := job.Job.Validate(); err != nil {
		return err
	}
	switch job.Job.Kind {
	case model.JobKindSingle:
		s := job.Job.Single
		res, err := p.assignUC.AssignCase(ctx, usecase.AssignParams{
			CaseID:      s.CaseID,
			AgentID:     s.AgentID,
			RequestedBy: s.RequestedBy,
			Reason:      s.Reason,
		})
		if err != nil {
			return err
		}
		if !res.OK {
			p.log.Warn().Str("job_id", job.ID).Str("case_id", s.CaseID).Str("reason", res.Err).Msg("single assignment rejected")
		}
		return nil

	case model.JobKindBulk:
		return p.batchUC.ProcessBulk(ctx, job.ID, *job.Job.Bulk)

	case model.JobKindReassign:
		r := job.Job.Reassign
		res, err := p.assignUC.AssignCase(ctx, usecase.AssignParams{
			CaseID:          r.CaseID,
			AgentID:         r.ToAgentID,
			RequestedBy:     r.RequestedBy,
			Reason:          r.Reason,
			ExpectedAgentID: &r.FromAgentID,
		})
		if err != nil {
			return err
		}
		if !res.OK {
			p.log.Warn().Str("job_id", job.ID).Str("case_id", r.CaseID).Str("reason", res.Err).Msg("reassignment rejected")
		}
		return nil

	default:
		// Unreachable for payloads built through the model constructors;
		// a corrupted row exhausts its attempts and lands dead.
		return domain.ErrInvalidArgument
	}
}
