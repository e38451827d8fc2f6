package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"fieldops-assignment/internal/domain/ports/collab"
)

var _ collab.AuditWriter = (*PostgresAuditWriter)(nil)

// PostgresAuditWriter appends structured events to the audit_log table.
// Callers treat it as fire-and-forget; a failed write is their log line,
// never their error.
type PostgresAuditWriter struct {
	pool *pgxpool.Pool
}

func NewPostgresAuditWriter(pool *pgxpool.Pool) *PostgresAuditWriter {
	return &PostgresAuditWriter{pool: pool}
}

func (w *PostgresAuditWriter) Record(ctx context.Context, action, entityType, entityID, actorID string, details map[string]any) error {
	var payload []byte
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("encode audit details: %w", err)
		}
		payload = b
	}
	const q = `
INSERT INTO audit_log (id, action, entity_type, entity_id, actor_id, details, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7);`
	_, err := execSQL(ctx, w.pool, nil, q, uuid.NewString(), action, entityType, entityID, actorID, payload, time.Now())
	return err
}
