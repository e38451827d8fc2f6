package collab

import "context"

// NotificationEvent is pushed to the delivery subsystem after an assignment
// commits. Rendering and delivery happen outside this pipeline.
type NotificationEvent struct {
	Kind        string `json:"kind"` // case_assigned | case_reassigned | batch_completed
	AgentID     string `json:"agent_id"`
	CaseID      string `json:"case_id,omitempty"`
	CaseNumber  string `json:"case_number,omitempty"`
	BatchID     string `json:"batch_id,omitempty"`
	RequestedBy string `json:"requested_by"`
	Message     string `json:"message,omitempty"`
}

// NotificationQueue hands events to the external delivery subsystem.
// Fire-and-forget: enqueue failures are logged, never propagated.
type NotificationQueue interface {
	Enqueue(ctx context.Context, ev NotificationEvent) error
}
