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

var _ repository.CaseRepository = (*PostgresCaseRepo)(nil)

type PostgresCaseRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresCaseRepo(pool *pgxpool.Pool) *PostgresCaseRepo {
	return &PostgresCaseRepo{pool: pool}
}

const caseColumns = `id, case_number, assigned_agent_id, status, created_at, updated_at`

func scanCase(row pgx.Row) (*model.Case, error) {
	var c model.Case
	var status string
	if err := row.Scan(&c.ID, &c.CaseNumber, &c.AssignedAgentID, &status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	c.Status = model.CaseStatus(status)
	return &c, nil
}

func (r *PostgresCaseRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Case, error) {
	row := pickRow(ctx, r.pool, tx, `SELECT `+caseColumns+` FROM cases WHERE id=$1;`, id)
	return scanCase(row)
}

// LockByID takes an exclusive row lock scoped to the enclosing transaction.
// A concurrent locker on the same case blocks here until the holder commits
// or rolls back; lockers on other cases are unaffected.
func (r *PostgresCaseRepo) LockByID(ctx context.Context, tx repository.Tx, id string) (*model.Case, error) {
	row := pickRow(ctx, r.pool, tx, `SELECT `+caseColumns+` FROM cases WHERE id=$1 FOR UPDATE;`, id)
	return scanCase(row)
}

func (r *PostgresCaseRepo) UpdateAssignment(ctx context.Context, tx repository.Tx, caseID, agentID string, status model.CaseStatus) error {
	const q = `UPDATE cases SET assigned_agent_id=$2, status=$3, updated_at=$4 WHERE id=$1;`
	tag, err := execSQL(ctx, r.pool, tx, q, caseID, agentID, string(status), time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
