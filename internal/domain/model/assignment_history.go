package model

import "time"

// AssignmentHistoryRecord is one immutable audit-trail row, written once per
// successfully committed assignment change. The repository exposes no update
// or delete for it.
type AssignmentHistoryRecord struct {
	ID              string // UUID
	CaseID          string
	PreviousAgentID *string // nil for first assignment
	NewAgentID      string
	AssignedBy      string
	Reason          string
	BatchID         *string // nil unless part of a bulk job
	CreatedAt       time.Time
}
