package collab

import "context"

// AuditWriter records structured audit events. Implementations are
// fire-and-forget from the pipeline's perspective: callers log write
// failures and never propagate them into assignment outcomes.
type AuditWriter interface {
	Record(ctx context.Context, action, entityType, entityID, actorID string, details map[string]any) error
}
