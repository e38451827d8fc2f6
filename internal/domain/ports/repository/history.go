package repository

import (
	"context"

	"fieldops-assignment/internal/domain/model"
)

// AssignmentHistoryRepository is append-only: no update or delete exists.
type AssignmentHistoryRepository interface {
	Insert(ctx context.Context, tx Tx, rec *model.AssignmentHistoryRecord) error
	ListByCase(ctx context.Context, tx Tx, caseID string, limit int) ([]*model.AssignmentHistoryRecord, error)
	CountByCase(ctx context.Context, tx Tx, caseID string) (int, error)
}
