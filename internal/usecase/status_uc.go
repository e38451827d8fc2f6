package usecase

import (
	"context"
	"errors"

	"fieldops-assignment/internal/domain"
	"fieldops-assignment/internal/domain/model"
	"fieldops-assignment/internal/domain/ports/collab"
	"fieldops-assignment/internal/domain/ports/queue"
	"fieldops-assignment/internal/domain/ports/repository"
	"fieldops-assignment/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ StatusUseCase = (*statusUC)(nil)

// StatusUseCase is the polling surface over batch records.
type StatusUseCase interface {
	// GetBatchStatus returns the record for a batch id, or domain.ErrNotFound.
	// For a live batch it also consults the queue row: progress annotations
	// written by the running job are folded into the counters, and a job that
	// exhausted its retries moves the batch to the failed state.
	GetBatchStatus(ctx context.Context, batchID string) (*model.BatchStatusRecord, error)
	// CancelBatch cancels a pending/processing batch. Best-effort: the queued
	// job is removed only if no worker has claimed it yet, and cases already
	// assigned by committed sub-batches stay assigned. Returns false when the
	// batch is already terminal.
	CancelBatch(ctx context.Context, batchID, cancelledBy string) (bool, error)
}

type statusUC struct {
	batches repository.BatchStatusRepository
	q       queue.JobQueue
	audit   collab.AuditWriter
	log     *zerolog.Logger
}

func NewStatusUseCase(batches repository.BatchStatusRepository, q queue.JobQueue, audit collab.AuditWriter, logger *zerolog.Logger) *statusUC {
	compLog := logger.With().Str("component", "StatusUC").Logger()
	return &statusUC{batches: batches, q: q, audit: audit, log: &compLog}
}

func (uc *statusUC) GetBatchStatus(ctx context.Context, batchID string) (*model.BatchStatusRecord, error) {
	rec, err := uc.batches.FindByID(ctx, repository.NoTX, batchID)
	if err != nil {
		return nil, err
	}
	if rec.Status.Terminal() || rec.JobID == "" {
		return rec, nil
	}

	job, err := uc.q.Get(ctx, rec.JobID)
	if err != nil {
		// The record alone is still a valid answer; enrichment is best-effort.
		if !errors.Is(err, domain.ErrNotFound) {
			uc.log.Error().Err(err).Str("batch_id", batchID).Str("job_id", rec.JobID).Msg("queue job lookup failed")
		}
		return rec, nil
	}

	if p := job.Progress; p != nil && p.Processed > rec.Processed {
		rec.Processed = p.Processed
		rec.Succeeded = p.Succeeded
		rec.Failed = p.Failed
	}

	if job.Status == queue.JobStatusDead {
		return uc.markFailed(ctx, rec, job.LastError)
	}
	return rec, nil
}

// markFailed records retry exhaustion on the batch itself so pollers see a
// terminal failure instead of a batch stuck in processing.
func (uc *statusUC) markFailed(ctx context.Context, rec *model.BatchStatusRecord, lastError string) (*model.BatchStatusRecord, error) {
	errs := rec.Errors
	if lastError != "" {
		errs = append(errs, "job failed: "+lastError)
	}
	err := uc.batches.Finish(ctx, repository.NoTX, rec.BatchID, model.BatchStatusFailed,
		rec.Processed, rec.Succeeded, rec.Failed, errs)
	switch {
	case errors.Is(err, domain.ErrBatchTerminal):
		// Lost the race to another poller or a late cancel; re-read.
		return uc.batches.FindByID(ctx, repository.NoTX, rec.BatchID)
	case err != nil:
		return nil, err
	}
	metrics.IncBatch(string(model.BatchStatusFailed))
	uc.log.Warn().Str("batch_id", rec.BatchID).Str("job_id", rec.JobID).Msg("batch marked failed after retry exhaustion")
	rec.Status = model.BatchStatusFailed
	rec.Errors = errs
	return rec, nil
}

func (uc *statusUC) CancelBatch(ctx context.Context, batchID, cancelledBy string) (bool, error) {
	rec, err := uc.batches.FindByID(ctx, repository.NoTX, batchID)
	if err != nil {
		return false, err
	}
	if rec.Status.Terminal() {
		return false, nil
	}

	dequeued := false
	if rec.JobID != "" {
		dequeued, err = uc.q.Cancel(ctx, rec.JobID)
		if err != nil {
			return false, err
		}
	}

	if err := uc.batches.Finish(ctx, repository.NoTX, batchID, model.BatchStatusCancelled,
		rec.Processed, rec.Succeeded, rec.Failed, rec.Errors); err != nil {
		// A concurrent poller may have promoted the batch to failed between
		// our read and this write.
		if errors.Is(err, domain.ErrBatchTerminal) {
			return false, nil
		}
		return false, err
	}
	metrics.IncBatch(string(model.BatchStatusCancelled))

	if err := uc.audit.Record(ctx, "bulk_assignment_cancelled", "batch", batchID, cancelledBy, map[string]any{
		"job_dequeued": dequeued,
		"processed":    rec.Processed,
	}); err != nil {
		uc.log.Error().Err(err).Str("batch_id", batchID).Msg("audit write failed")
	}

	uc.log.Info().Str("batch_id", batchID).Bool("job_dequeued", dequeued).Str("cancelled_by", cancelledBy).Msg("batch cancelled")
	return true, nil
}
