package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrCaseNotFound       = errors.New("case not found")
	ErrAgentNotFound      = errors.New("agent not found")
	ErrAgentInactive      = errors.New("agent is not active or not assignable")
	ErrAssignmentMismatch = errors.New("case is not assigned to the stated agent")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrReasonRequired     = errors.New("a reason is required for reassignment")
	ErrEmptyBatch         = errors.New("bulk assignment requires at least one case id")
	ErrBatchTooLarge      = errors.New("bulk assignment exceeds the maximum batch size")
	ErrBatchTerminal      = errors.New("batch is already completed or cancelled")
	ErrInvalidExecContext = errors.New("invalid executor context")
)
