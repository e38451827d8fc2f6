package model

// AssignmentResult is the ephemeral per-case outcome of the assignment
// transaction. Not persisted on its own; aggregated into the batch record
// and returned to callers.
type AssignmentResult struct {
	CaseID        string
	OK            bool
	PreviousAgent string // agent name, empty if previously unassigned
	NewAgent      string
	Err           string // human-readable failure, empty on success
}

func SuccessResult(caseID, previousAgent, newAgent string) AssignmentResult {
	return AssignmentResult{CaseID: caseID, OK: true, PreviousAgent: previousAgent, NewAgent: newAgent}
}

func FailureResult(caseID, reason string) AssignmentResult {
	return AssignmentResult{CaseID: caseID, Err: reason}
}
