package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fieldops-assignment/internal/domain"
	"fieldops-assignment/internal/domain/model"
	"fieldops-assignment/internal/domain/ports/collab"
	"fieldops-assignment/internal/domain/ports/queue"
	"fieldops-assignment/internal/domain/ports/repository"
	"fieldops-assignment/internal/infra/logging"
	"fieldops-assignment/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ BatchUseCase = (*batchUC)(nil)

// SubBatchSize chunks a bulk job: one tenth of the total, kept within
// [20,50] to bound lock contention and memory per sub-batch.
func SubBatchSize(totalCases int) int {
	size := totalCases / 10
	if size < 20 {
		size = 20
	}
	if size > 50 {
		size = 50
	}
	return size
}

// BatchUseCase executes one bulk assignment job to completion. Individual
// case failures are counted, never fatal; only an invalid target agent or
// infrastructure trouble fails the whole job.
type BatchUseCase interface {
	ProcessBulk(ctx context.Context, jobID string, b model.BulkAssignment) error
}

type batchUC struct {
	agents   repository.AgentRepository
	assigner AssignUseCase
	batches  repository.BatchStatusRepository
	q        queue.JobQueue
	audit    collab.AuditWriter
	notify   collab.NotificationQueue
	delay    time.Duration // pause between sub-batches
	log      *zerolog.Logger
}

func NewBatchUseCase(
	agents repository.AgentRepository,
	assigner AssignUseCase,
	batches repository.BatchStatusRepository,
	q queue.JobQueue,
	audit collab.AuditWriter,
	notify collab.NotificationQueue,
	delay time.Duration,
	logger *zerolog.Logger,
) *batchUC {
	compLog := logger.With().Str("component", "BatchUC").Logger()
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	return &batchUC{
		agents:   agents,
		assigner: assigner,
		batches:  batches,
		q:        q,
		audit:    audit,
		notify:   notify,
		delay:    delay,
		log:      &compLog,
	}
}

func (uc *batchUC) ProcessBulk(ctx context.Context, jobID string, b model.BulkAssignment) error {
	defer logging.TraceDuration(uc.log, "BatchUC.ProcessBulk")()

	// The target agent is a hard precondition for the whole batch; a bulk
	// job aimed at a missing or inactive agent fails outright rather than
	// producing N identical per-case failures.
	agent, err := uc.agents.FindByID(ctx, repository.NoTX, b.AgentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrAgentNotFound
		}
		return err
	}
	if !agent.Assignable() {
		return domain.ErrAgentInactive
	}

	total := len(b.CaseIDs)
	size := SubBatchSize(total)
	subBatches := (total + size - 1) / size

	var (
		processed int
		succeeded int
		failed    int
		errList   []string
	)

	for i := 0; i < subBatches; i++ {
		lo := i * size
		hi := lo + size
		if hi > total {
			hi = total
		}
		results := uc.runSubBatch(ctx, b, b.CaseIDs[lo:hi])

		for _, res := range results {
			processed++
			if res.OK {
				succeeded++
			} else {
				failed++
				errList = append(errList, fmt.Sprintf("case %s: %s", res.CaseID, res.Err))
			}
		}

		if err := uc.batches.UpdateProgress(ctx, repository.NoTX, b.BatchID, processed, succeeded, failed); err != nil {
			uc.log.Error().Err(err).Str("batch_id", b.BatchID).Msg("batch progress update failed")
		}
		if err := uc.q.UpdateProgress(ctx, jobID, queue.Progress{
			Processed:  processed,
			Total:      total,
			SubBatch:   i + 1,
			SubBatches: subBatches,
			Succeeded:  succeeded,
			Failed:     failed,
		}); err != nil {
			uc.log.Error().Err(err).Str("job_id", jobID).Msg("job progress annotation failed")
		}
		uc.log.Debug().Str("batch_id", b.BatchID).Int("sub_batch", i+1).Int("of", subBatches).
			Int("processed", processed).Int("succeeded", succeeded).Int("failed", failed).Msg("sub-batch done")

		// Deliberate backpressure so one bulk job cannot monopolize database
		// connections against concurrent single-assignment jobs.
		if i < subBatches-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(uc.delay):
			}
		}
	}

	if err := uc.q.UpdateProgress(ctx, jobID, queue.Progress{
		Processed:  processed,
		Total:      total,
		SubBatch:   subBatches,
		SubBatches: subBatches,
		Succeeded:  succeeded,
		Failed:     failed,
		Completed:  true,
	}); err != nil {
		uc.log.Error().Err(err).Str("job_id", jobID).Msg("final progress annotation failed")
	}

	err = uc.batches.Finish(ctx, repository.NoTX, b.BatchID, model.BatchStatusCompleted, processed, succeeded, failed, errList)
	switch {
	case errors.Is(err, domain.ErrBatchTerminal):
		// Cancelled while we were running; committed assignments stand.
		uc.log.Warn().Str("batch_id", b.BatchID).Msg("batch already terminal, completion not recorded")
	case err != nil:
		return err
	default:
		metrics.IncBatch(string(model.BatchStatusCompleted))
	}
	metrics.AddBulkCases("success", succeeded)
	metrics.AddBulkCases("failure", failed)

	if err := uc.audit.Record(ctx, "bulk_assignment_completed", "batch", b.BatchID, b.RequestedBy, map[string]any{
		"agent_id":  b.AgentID,
		"total":     total,
		"succeeded": succeeded,
		"failed":    failed,
	}); err != nil {
		uc.log.Error().Err(err).Str("batch_id", b.BatchID).Msg("audit write failed")
	}
	if err := uc.notify.Enqueue(ctx, collab.NotificationEvent{
		Kind:        "batch_completed",
		AgentID:     b.AgentID,
		BatchID:     b.BatchID,
		RequestedBy: b.RequestedBy,
		Message:     fmt.Sprintf("%d of %d cases assigned", succeeded, total),
	}); err != nil {
		uc.log.Error().Err(err).Str("batch_id", b.BatchID).Msg("notification enqueue failed")
	}

	uc.log.Info().Str("batch_id", b.BatchID).Int("total", total).Int("succeeded", succeeded).Int("failed", failed).Msg("bulk assignment finished")
	return nil
}

// runSubBatch assigns every case in the chunk concurrently and returns one
// result per case. Cases within a chunk have no relative ordering guarantee.
func (uc *batchUC) runSubBatch(ctx context.Context, b model.BulkAssignment, caseIDs []string) []model.AssignmentResult {
	results := make([]model.AssignmentResult, len(caseIDs))
	var wg sync.WaitGroup
	for i, caseID := range caseIDs {
		wg.Add(1)
		go func(i int, caseID string) {
			defer wg.Done()
			res, err := uc.assigner.AssignCase(ctx, AssignParams{
				CaseID:      caseID,
				AgentID:     b.AgentID,
				RequestedBy: b.RequestedBy,
				Reason:      b.Reason,
				BatchID:     &b.BatchID,
			})
			if err != nil {
				// Transient per-case trouble is recorded, not fatal: the
				// batch carries on and the error lands in the batch's list.
				uc.log.Error().Err(err).Str("case_id", caseID).Str("batch_id", b.BatchID).Msg("case assignment errored")
			}
			results[i] = res
		}(i, caseID)
	}
	wg.Wait()
	return results
}
