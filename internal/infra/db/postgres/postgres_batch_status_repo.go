package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"fieldops-assignment/internal/domain"
	"fieldops-assignment/internal/domain/model"
	"fieldops-assignment/internal/domain/ports/repository"
)

var _ repository.BatchStatusRepository = (*PostgresBatchStatusRepo)(nil)

type PostgresBatchStatusRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresBatchStatusRepo(pool *pgxpool.Pool) *PostgresBatchStatusRepo {
	return &PostgresBatchStatusRepo{pool: pool}
}

func (r *PostgresBatchStatusRepo) Create(ctx context.Context, tx repository.Tx, rec *model.BatchStatusRecord) error {
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now()
	}
	const q = `
INSERT INTO batch_status (batch_id, job_id, requested_by, agent_id, total_cases,
                          processed, succeeded, failed, errors, status, started_at, completed_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12);`
	_, err := execSQL(ctx, r.pool, tx, q,
		rec.BatchID, rec.JobID, rec.RequestedBy, rec.AgentID, rec.TotalCases,
		rec.Processed, rec.Succeeded, rec.Failed, rec.Errors, string(rec.Status), rec.StartedAt, rec.CompletedAt)
	return err
}

func (r *PostgresBatchStatusRepo) FindByID(ctx context.Context, tx repository.Tx, batchID string) (*model.BatchStatusRecord, error) {
	const q = `
SELECT batch_id, job_id, requested_by, agent_id, total_cases,
       processed, succeeded, failed, errors, status, started_at, completed_at
  FROM batch_status WHERE batch_id=$1;`
	row := pickRow(ctx, r.pool, tx, q, batchID)
	var rec model.BatchStatusRecord
	var status string
	if err := row.Scan(&rec.BatchID, &rec.JobID, &rec.RequestedBy, &rec.AgentID, &rec.TotalCases,
		&rec.Processed, &rec.Succeeded, &rec.Failed, &rec.Errors, &status, &rec.StartedAt, &rec.CompletedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	rec.Status = model.BatchStatus(status)
	return &rec, nil
}

func (r *PostgresBatchStatusRepo) AttachJob(ctx context.Context, tx repository.Tx, batchID, jobID string) error {
	const q = `UPDATE batch_status SET job_id=$2, status=$3 WHERE batch_id=$1 AND status=$4;`
	tag, err := execSQL(ctx, r.pool, tx, q, batchID, jobID, string(model.BatchStatusProcessing), string(model.BatchStatusPending))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresBatchStatusRepo) UpdateProgress(ctx context.Context, tx repository.Tx, batchID string, processed, succeeded, failed int) error {
	// Terminal guard: a finished batch keeps its final counters.
	const q = `
UPDATE batch_status SET processed=$2, succeeded=$3, failed=$4
 WHERE batch_id=$1 AND status NOT IN ('completed','cancelled','failed');`
	_, err := execSQL(ctx, r.pool, tx, q, batchID, processed, succeeded, failed)
	return err
}

func (r *PostgresBatchStatusRepo) Finish(ctx context.Context, tx repository.Tx, batchID string, status model.BatchStatus, processed, succeeded, failed int, errs []string) error {
	if !status.Terminal() {
		return domain.ErrInvalidArgument
	}
	const q = `
UPDATE batch_status SET status=$2, processed=$3, succeeded=$4, failed=$5, errors=$6, completed_at=$7
 WHERE batch_id=$1 AND status NOT IN ('completed','cancelled','failed');`
	tag, err := execSQL(ctx, r.pool, tx, q, batchID, string(status), processed, succeeded, failed, errs, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBatchTerminal
	}
	return nil
}
