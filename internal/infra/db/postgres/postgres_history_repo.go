package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"fieldops-assignment/internal/domain/model"
	"fieldops-assignment/internal/domain/ports/repository"
)

var _ repository.AssignmentHistoryRepository = (*PostgresHistoryRepo)(nil)

// PostgresHistoryRepo writes the append-only assignment trail. There is
// deliberately no UPDATE or DELETE statement in this file.
type PostgresHistoryRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresHistoryRepo(pool *pgxpool.Pool) *PostgresHistoryRepo {
	return &PostgresHistoryRepo{pool: pool}
}

func (r *PostgresHistoryRepo) Insert(ctx context.Context, tx repository.Tx, rec *model.AssignmentHistoryRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	const q = `
INSERT INTO assignment_history (id, case_id, previous_agent_id, new_agent_id, assigned_by, reason, batch_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8);`
	_, err := execSQL(ctx, r.pool, tx, q,
		rec.ID, rec.CaseID, rec.PreviousAgentID, rec.NewAgentID, rec.AssignedBy, rec.Reason, rec.BatchID, rec.CreatedAt)
	return err
}

func (r *PostgresHistoryRepo) ListByCase(ctx context.Context, tx repository.Tx, caseID string, limit int) ([]*model.AssignmentHistoryRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT id, case_id, previous_agent_id, new_agent_id, assigned_by, reason, batch_id, created_at
  FROM assignment_history WHERE case_id=$1 ORDER BY created_at DESC LIMIT $2;`
	rows, err := pick(r.pool, tx).Query(ctx, q, caseID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.AssignmentHistoryRecord
	for rows.Next() {
		var rec model.AssignmentHistoryRecord
		if err := rows.Scan(&rec.ID, &rec.CaseID, &rec.PreviousAgentID, &rec.NewAgentID, &rec.AssignedBy, &rec.Reason, &rec.BatchID, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (r *PostgresHistoryRepo) CountByCase(ctx context.Context, tx repository.Tx, caseID string) (int, error) {
	row := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM assignment_history WHERE case_id=$1;`, caseID)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return n, nil
}
