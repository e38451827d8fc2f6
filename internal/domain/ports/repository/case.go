package repository

import (
	"context"

	"fieldops-assignment/internal/domain/model"
)

// CaseRepository reads and mutates case rows. UpdateAssignment is the sole
// writer path for assignment fields in the whole system.
type CaseRepository interface {
	FindByID(ctx context.Context, tx Tx, id string) (*model.Case, error)
	// LockByID acquires an exclusive row lock on the case for the duration of
	// the enclosing transaction and returns the current row. Concurrent
	// lockers on the same id block until the holder commits or rolls back.
	// Returns domain.ErrNotFound if no such case exists.
	LockByID(ctx context.Context, tx Tx, id string) (*model.Case, error)
	// UpdateAssignment sets the assignee and status of a case.
	UpdateAssignment(ctx context.Context, tx Tx, caseID, agentID string, status model.CaseStatus) error
}
