package repository

import (
	"context"

	"fieldops-assignment/internal/domain/model"
)

// AgentRepository is read-only: the pipeline never creates or mutates agents.
type AgentRepository interface {
	FindByID(ctx context.Context, tx Tx, id string) (*model.Agent, error)
}
