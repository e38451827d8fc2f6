package model

import "time"

type BatchStatus string

const (
	BatchStatusPending    BatchStatus = "pending"
	BatchStatusProcessing BatchStatus = "processing"
	BatchStatusCompleted  BatchStatus = "completed"
	BatchStatusCancelled  BatchStatus = "cancelled"
	// BatchStatusFailed marks a batch whose queue job exhausted its retry
	// attempts before completing.
	BatchStatusFailed BatchStatus = "failed"
)

// Terminal reports whether the status can never change again.
func (s BatchStatus) Terminal() bool {
	return s == BatchStatusCompleted || s == BatchStatusCancelled || s == BatchStatusFailed
}

// BatchStatusRecord is the persisted progress row for one bulk job,
// polled by external callers while the batch runs.
type BatchStatusRecord struct {
	BatchID     string // ULID, sortable by creation time
	JobID       string // queue-assigned id, set once the job is enqueued
	RequestedBy string
	AgentID     string
	TotalCases  int
	Processed   int
	Succeeded   int
	Failed      int
	Errors      []string
	Status      BatchStatus
	StartedAt   time.Time
	CompletedAt *time.Time
}

// Percentage returns rounded progress in [0,100].
func (b *BatchStatusRecord) Percentage() int {
	if b.TotalCases <= 0 {
		return 0
	}
	return int(float64(b.Processed)/float64(b.TotalCases)*100 + 0.5)
}
