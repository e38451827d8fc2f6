package model

// RoleFieldAgent marks a user record as eligible to receive case assignments.
const RoleFieldAgent = "field_agent"

// Agent is a field-work performer. Read-only from the pipeline's perspective.
type Agent struct {
	ID     string // UUID
	Name   string
	Active bool
	Role   string
}

// Assignable reports whether the agent can currently receive cases.
func (a *Agent) Assignable() bool {
	return a != nil && a.Active && a.Role == RoleFieldAgent
}
