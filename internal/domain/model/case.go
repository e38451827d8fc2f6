package model

import "time"

type CaseStatus string

const (
	CaseStatusPending    CaseStatus = "pending"
	CaseStatusAssigned   CaseStatus = "assigned"
	CaseStatusInProgress CaseStatus = "in_progress"
	CaseStatusCompleted  CaseStatus = "completed"
)

// Case is one unit of field work. The pipeline only ever mutates its
// assignee (and the pending->assigned status step); cases are created and
// completed elsewhere.
type Case struct {
	ID              string // UUID
	CaseNumber      string // human-readable sequence number
	AssignedAgentID *string
	Status          CaseStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
