package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"fieldops-assignment/internal/domain"
	"fieldops-assignment/internal/domain/model"
	"fieldops-assignment/internal/domain/ports/repository"
)

var _ repository.AgentRepository = (*PostgresAgentRepo)(nil)

type PostgresAgentRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresAgentRepo(pool *pgxpool.Pool) *PostgresAgentRepo {
	return &PostgresAgentRepo{pool: pool}
}

func (r *PostgresAgentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Agent, error) {
	const q = `SELECT id, name, active, role FROM agents WHERE id=$1;`
	row := pickRow(ctx, r.pool, tx, q, id)
	var a model.Agent
	if err := row.Scan(&a.ID, &a.Name, &a.Active, &a.Role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
