package queue

import (
	"context"
	"time"

	"fieldops-assignment/internal/domain/model"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusDead       JobStatus = "dead"
	JobStatusCancelled  JobStatus = "cancelled"
)

// Progress is the annotation a running job attaches to itself so callers can
// poll incremental state through the status surface.
type Progress struct {
	Processed  int  `json:"processed"`
	Total      int  `json:"total"`
	SubBatch   int  `json:"sub_batch"`
	SubBatches int  `json:"sub_batches"`
	Succeeded  int  `json:"succeeded"`
	Failed     int  `json:"failed"`
	Completed  bool `json:"completed"`
}

// QueuedJob is one durable queue row.
type QueuedJob struct {
	ID         string
	Job        model.AssignmentJob
	Priority   model.Priority
	Status     JobStatus
	Attempts   int
	LastError  string
	Progress   *Progress
	EnqueuedAt time.Time
	RunAt      time.Time // earliest claim time; pushed forward on retry
	ClaimedAt  *time.Time
}

// JobQueue is the durable queue contract the pipeline consumes.
//
// Delivery is at-least-once: a claimed job whose worker dies is released
// back to pending once its claim exceeds the visibility timeout. Claim order
// is priority ascending, enqueue time ascending within a priority.
type JobQueue interface {
	// Enqueue accepts a job and returns its queue-assigned id.
	Enqueue(ctx context.Context, job model.AssignmentJob, priority model.Priority) (string, error)
	// Claim atomically takes the next runnable pending job and marks it
	// processing. Returns domain.ErrNotFound when the queue is empty.
	Claim(ctx context.Context) (*QueuedJob, error)
	// Complete marks a claimed job done.
	Complete(ctx context.Context, jobID string) error
	// Fail records the error and either reschedules the job with exponential
	// backoff or, once attempts are exhausted, marks it dead.
	Fail(ctx context.Context, jobID, reason string) error
	// UpdateProgress replaces the job's progress annotation.
	UpdateProgress(ctx context.Context, jobID string, p Progress) error
	Get(ctx context.Context, jobID string) (*QueuedJob, error)
	// Cancel removes a job that is still pending. Returns false if the job
	// was already claimed, finished, or unknown.
	Cancel(ctx context.Context, jobID string) (bool, error)
	// ReleaseStuck returns claimed-but-expired jobs to pending and reports
	// how many were released.
	ReleaseStuck(ctx context.Context, visibility time.Duration) (int, error)
	// PendingCount reports how many jobs are waiting to be claimed.
	PendingCount(ctx context.Context) (int, error)
}
