package repository

import (
	"context"

	"fieldops-assignment/internal/domain/model"
)

// BatchStatusRepository persists per-batch progress. Terminal records
// (completed/cancelled) are never overwritten; updates against them return
// domain.ErrBatchTerminal.
type BatchStatusRepository interface {
	Create(ctx context.Context, tx Tx, rec *model.BatchStatusRecord) error
	FindByID(ctx context.Context, tx Tx, batchID string) (*model.BatchStatusRecord, error)
	// AttachJob moves a pending record to processing and stores the
	// queue-assigned job id.
	AttachJob(ctx context.Context, tx Tx, batchID, jobID string) error
	// UpdateProgress overwrites the running counters.
	UpdateProgress(ctx context.Context, tx Tx, batchID string, processed, succeeded, failed int) error
	// Finish moves the record to a terminal status with final counters and
	// the accumulated error list.
	Finish(ctx context.Context, tx Tx, batchID string, status model.BatchStatus, processed, succeeded, failed int, errs []string) error
}
