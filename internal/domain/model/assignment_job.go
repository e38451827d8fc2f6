package model

import "fieldops-assignment/internal/domain"

// JobKind tags the closed set of assignment job variants. The dispatcher
// switches exhaustively on it; adding a kind here must add a handler there.
type JobKind string

const (
	JobKindSingle   JobKind = "single"
	JobKindBulk     JobKind = "bulk"
	JobKindReassign JobKind = "reassign"
)

// Priority orders jobs in the durable queue. Lower runs first.
type Priority int

const (
	PriorityUrgent Priority = 1
	PriorityHigh   Priority = 2
	PriorityMedium Priority = 3
	PriorityLow    Priority = 4
)

// PriorityFromLabel maps the caller-facing urgency labels to queue
// priorities. Unknown or empty labels default to medium.
func PriorityFromLabel(label string) Priority {
	switch label {
	case "urgent":
		return PriorityUrgent
	case "high":
		return PriorityHigh
	case "low":
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// SingleAssignment assigns one case to one agent.
type SingleAssignment struct {
	CaseID      string `json:"case_id"`
	AgentID     string `json:"agent_id"`
	RequestedBy string `json:"requested_by"`
	Reason      string `json:"reason,omitempty"`
}

// BulkAssignment assigns a list of cases to one agent, tracked by a batch record.
type BulkAssignment struct {
	CaseIDs     []string `json:"case_ids"`
	AgentID     string   `json:"agent_id"`
	RequestedBy string   `json:"requested_by"`
	BatchID     string   `json:"batch_id"`
	Reason      string   `json:"reason,omitempty"`
}

// Reassignment moves one case from a stated current agent to a new one.
type Reassignment struct {
	CaseID      string `json:"case_id"`
	FromAgentID string `json:"from_agent_id"`
	ToAgentID   string `json:"to_agent_id"`
	RequestedBy string `json:"requested_by"`
	Reason      string `json:"reason"`
}

// AssignmentJob is the queue payload. Exactly one variant pointer is non-nil
// and it must match Kind; Validate enforces this before enqueue.
type AssignmentJob struct {
	Kind     JobKind           `json:"kind"`
	Single   *SingleAssignment `json:"single,omitempty"`
	Bulk     *BulkAssignment   `json:"bulk,omitempty"`
	Reassign *Reassignment     `json:"reassign,omitempty"`
}

func NewSingleJob(p SingleAssignment) AssignmentJob {
	return AssignmentJob{Kind: JobKindSingle, Single: &p}
}

func NewBulkJob(p BulkAssignment) AssignmentJob {
	return AssignmentJob{Kind: JobKindBulk, Bulk: &p}
}

func NewReassignJob(p Reassignment) AssignmentJob {
	return AssignmentJob{Kind: JobKindReassign, Reassign: &p}
}

// Validate checks the exactly-one-variant invariant.
func (j AssignmentJob) Validate() error {
	var n int
	if j.Single != nil {
		n++
	}
	if j.Bulk != nil {
		n++
	}
	if j.Reassign != nil {
		n++
	}
	if n != 1 {
		return domain.ErrInvalidArgument
	}
	switch j.Kind {
	case JobKindSingle:
		if j.Single == nil {
			return domain.ErrInvalidArgument
		}
	case JobKindBulk:
		if j.Bulk == nil {
			return domain.ErrInvalidArgument
		}
	case JobKindReassign:
		if j.Reassign == nil {
			return domain.ErrInvalidArgument
		}
	default:
		return domain.ErrInvalidArgument
	}
	return nil
}
