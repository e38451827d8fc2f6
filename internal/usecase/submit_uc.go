package usecase

import (
	"context"
	"strings"

	"fieldops-assignment/internal/domain"
	"fieldops-assignment/internal/domain/model"
	"fieldops-assignment/internal/domain/ports/queue"
	"fieldops-assignment/internal/domain/ports/repository"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ SubmitUseCase = (*submitUC)(nil)

type SingleRequest struct {
	CaseID      string
	AgentID     string
	RequestedBy string
	Reason      string
	Priority    string // urgent|high|medium|low, defaults to medium
}

type BulkRequest struct {
	CaseIDs     []string
	AgentID     string
	RequestedBy string
	Reason      string
	Priority    string
}

type ReassignRequest struct {
	CaseID      string
	FromAgentID string
	ToAgentID   string
	RequestedBy string
	Reason      string
}

// SubmitUseCase is the job submitter: it validates input, persists the batch
// record for bulk operations, and enqueues exactly one job per request.
// It returns as soon as the job is durably accepted; it never waits for
// job completion.
type SubmitUseCase interface {
	SubmitSingle(ctx context.Context, req SingleRequest) (jobID string, err error)
	SubmitBulk(ctx context.Context, req BulkRequest) (batchID, jobID string, err error)
	SubmitReassign(ctx context.Context, req ReassignRequest) (jobID string, err error)
}

type submitUC struct {
	validator   ValidatorUseCase
	q           queue.JobQueue
	batches     repository.BatchStatusRepository
	maxBulkSize int
	log         *zerolog.Logger
}

func NewSubmitUseCase(validator ValidatorUseCase, q queue.JobQueue, batches repository.BatchStatusRepository, maxBulkSize int, logger *zerolog.Logger) *submitUC {
	compLog := logger.With().Str("component", "SubmitUC").Logger()
	if maxBulkSize <= 0 {
		maxBulkSize = 500
	}
	return &submitUC{validator: validator, q: q, batches: batches, maxBulkSize: maxBulkSize, log: &compLog}
}

func (uc *submitUC) SubmitSingle(ctx context.Context, req SingleRequest) (string, error) {
	if req.CaseID == "" || req.AgentID == "" || req.RequestedBy == "" {
		return "", domain.ErrInvalidArgument
	}
	if err := uc.validator.ValidateAssignment(ctx, req.CaseID, req.AgentID); err != nil {
		return "", err
	}
	job := model.NewSingleJob(model.SingleAssignment{
		CaseID:      req.CaseID,
		AgentID:     req.AgentID,
		RequestedBy: req.RequestedBy,
		Reason:      req.Reason,
	})
	jobID, err := uc.q.Enqueue(ctx, job, model.PriorityFromLabel(req.Priority))
	if err != nil {
		return "", err
	}
	uc.log.Info().Str("job_id", jobID).Str("case_id", req.CaseID).Str("agent_id", req.AgentID).Msg("single assignment queued")
	return jobID, nil
}

func (uc *submitUC) SubmitBulk(ctx context.Context, req BulkRequest) (string, string, error) {
	if req.AgentID == "" || req.RequestedBy == "" {
		return "", "", domain.ErrInvalidArgument
	}
	if len(req.CaseIDs) == 0 {
		return "", "", domain.ErrEmptyBatch
	}
	if len(req.CaseIDs) > uc.maxBulkSize {
		return "", "", domain.ErrBatchTooLarge
	}
	// Full per-case validation happens inside each assignment transaction;
	// validating thousands of cases here would block the caller.
	if err := uc.validator.ValidateAssignment(ctx, req.CaseIDs[0], req.AgentID); err != nil {
		return "", "", err
	}

	batchID := ulid.Make().String()
	rec := &model.BatchStatusRecord{
		BatchID:     batchID,
		RequestedBy: req.RequestedBy,
		AgentID:     req.AgentID,
		TotalCases:  len(req.CaseIDs),
		Status:      model.BatchStatusPending,
	}
	if err := uc.batches.Create(ctx, repository.NoTX, rec); err != nil {
		return "", "", err
	}

	job := model.NewBulkJob(model.BulkAssignment{
		CaseIDs:     req.CaseIDs,
		AgentID:     req.AgentID,
		RequestedBy: req.RequestedBy,
		BatchID:     batchID,
		Reason:      req.Reason,
	})
	jobID, err := uc.q.Enqueue(ctx, job, model.PriorityFromLabel(req.Priority))
	if err != nil {
		return "", "", err
	}
	if err := uc.batches.AttachJob(ctx, repository.NoTX, batchID, jobID); err != nil {
		uc.log.Error().Err(err).Str("batch_id", batchID).Str("job_id", jobID).Msg("failed to attach job to batch record")
	}
	uc.log.Info().Str("job_id", jobID).Str("batch_id", batchID).Int("cases", len(req.CaseIDs)).Msg("bulk assignment queued")
	return batchID, jobID, nil
}

func (uc *submitUC) SubmitReassign(ctx context.Context, req ReassignRequest) (string, error) {
	if req.CaseID == "" || req.FromAgentID == "" || req.ToAgentID == "" || req.RequestedBy == "" {
		return "", domain.ErrInvalidArgument
	}
	if strings.TrimSpace(req.Reason) == "" {
		return "", domain.ErrReasonRequired
	}
	if err := uc.validator.ValidateReassignment(ctx, req.CaseID, req.FromAgentID, req.ToAgentID); err != nil {
		return "", err
	}
	job := model.NewReassignJob(model.Reassignment{
		CaseID:      req.CaseID,
		FromAgentID: req.FromAgentID,
		ToAgentID:   req.ToAgentID,
		RequestedBy: req.RequestedBy,
		Reason:      req.Reason,
	})
	// Reassignment is corrective and time-sensitive: always enqueued at high
	// priority, caller input notwithstanding.
	jobID, err := uc.q.Enqueue(ctx, job, model.PriorityHigh)
	if err != nil {
		return "", err
	}
	uc.log.Info().Str("job_id", jobID).Str("case_id", req.CaseID).Str("from", req.FromAgentID).Str("to", req.ToAgentID).Msg("reassignment queued")
	return jobID, nil
}
