package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"fieldops-assignment/internal/domain"
	"fieldops-assignment/internal/domain/model"
	"fieldops-assignment/internal/domain/ports/queue"
	"fieldops-assignment/internal/domain/ports/repository"
)

var _ queue.JobQueue = (*PostgresJobQueue)(nil)

// PostgresJobQueue is the durable queue, one row per job in assignment_jobs.
// Claim order is priority ascending then enqueue time; claiming uses
// FOR UPDATE SKIP LOCKED so concurrent workers never block each other.
type PostgresJobQueue struct {
	pool        *pgxpool.Pool
	tm          repository.TransactionManager
	maxAttempts int
	backoffBase time.Duration
}

func NewPostgresJobQueue(pool *pgxpool.Pool, tm repository.TransactionManager, maxAttempts int, backoffBase time.Duration) *PostgresJobQueue {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if backoffBase <= 0 {
		backoffBase = 30 * time.Second
	}
	return &PostgresJobQueue{pool: pool, tm: tm, maxAttempts: maxAttempts, backoffBase: backoffBase}
}

const jobColumns = `id, kind, payload, priority, status, attempts, last_error, progress, enqueued_at, run_at, claimed_at`

func scanJob(row pgx.Row) (*queue.QueuedJob, error) {
	var (
		j        queue.QueuedJob
		kind     string
		payload  []byte
		status   string
		progress []byte
	)
	if err := row.Scan(&j.ID, &kind, &payload, &j.Priority, &status, &j.Attempts, &j.LastError, &progress, &j.EnqueuedAt, &j.RunAt, &j.ClaimedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	j.Status = queue.JobStatus(status)
	if err := json.Unmarshal(payload, &j.Job); err != nil {
		return nil, fmt.Errorf("decode job payload: %w", err)
	}
	j.Job.Kind = model.JobKind(kind)
	if len(progress) > 0 {
		var p queue.Progress
		if err := json.Unmarshal(progress, &p); err != nil {
			return nil, fmt.Errorf("decode job progress: %w", err)
		}
		j.Progress = &p
	}
	return &j, nil
}

func (q *PostgresJobQueue) Enqueue(ctx context.Context, job model.AssignmentJob, priority model.Priority) (string, error) {
	if err := job.Validate(); err != nil {
		return "", err
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("encode job payload: %w", err)
	}
	id := uuid.NewString()
	now := time.Now()
	const sql = `
INSERT INTO assignment_jobs (id, kind, payload, priority, status, attempts, last_error, enqueued_at, run_at)
VALUES ($1,$2,$3,$4,$5,0,'',$6,$6);`
	if _, err := execSQL(ctx, q.pool, nil, sql, id, string(job.Kind), payload, int(priority), string(queue.JobStatusPending), now); err != nil {
		return "", err
	}
	return id, nil
}

// Claim atomically picks the next runnable job and marks it processing.
func (q *PostgresJobQueue) Claim(ctx context.Context) (*queue.QueuedJob, error) {
	var job *queue.QueuedJob
	err := q.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		const fetch = `
SELECT ` + jobColumns + `
  FROM assignment_jobs
 WHERE status=$1 AND run_at <= $2
 ORDER BY priority ASC, enqueued_at ASC
 LIMIT 1
 FOR UPDATE SKIP LOCKED;`
		row := pickRow(ctx, q.pool, tx, fetch, string(queue.JobStatusPending), time.Now())
		fetched, err := scanJob(row)
		if err != nil {
			return err
		}

		now := time.Now()
		const mark = `UPDATE assignment_jobs SET status=$2, attempts=attempts+1, claimed_at=$3 WHERE id=$1;`
		if _, err := execSQL(ctx, q.pool, tx, mark, fetched.ID, string(queue.JobStatusProcessing), now); err != nil {
			return err
		}
		fetched.Status = queue.JobStatusProcessing
		fetched.Attempts++
		fetched.ClaimedAt = &now
		job = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (q *PostgresJobQueue) Complete(ctx context.Context, jobID string) error {
	const sql = `UPDATE assignment_jobs SET status=$2, claimed_at=NULL WHERE id=$1;`
	tag, err := execSQL(ctx, q.pool, nil, sql, jobID, string(queue.JobStatusCompleted))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Fail reschedules with exponential backoff until attempts are exhausted,
// then marks the job dead.
func (q *PostgresJobQueue) Fail(ctx context.Context, jobID, reason string) error {
	job, err := q.Get(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Attempts >= q.maxAttempts {
		const sql = `UPDATE assignment_jobs SET status=$2, last_error=$3, claimed_at=NULL WHERE id=$1;`
		_, err := execSQL(ctx, q.pool, nil, sql, jobID, string(queue.JobStatusDead), reason)
		return err
	}
	// Attempts can be zero when a caller fails a job that was never claimed;
	// a negative shift would panic.
	attempts := job.Attempts
	if attempts < 1 {
		attempts = 1
	}
	delay := q.backoffBase << (attempts - 1)
	const sql = `UPDATE assignment_jobs SET status=$2, last_error=$3, run_at=$4, claimed_at=NULL WHERE id=$1;`
	_, err = execSQL(ctx, q.pool, nil, sql, jobID, string(queue.JobStatusPending), reason, time.Now().Add(delay))
	return err
}

func (q *PostgresJobQueue) UpdateProgress(ctx context.Context, jobID string, p queue.Progress) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	const sql = `UPDATE assignment_jobs SET progress=$2 WHERE id=$1;`
	_, err = execSQL(ctx, q.pool, nil, sql, jobID, b)
	return err
}

func (q *PostgresJobQueue) Get(ctx context.Context, jobID string) (*queue.QueuedJob, error) {
	row := pickRow(ctx, q.pool, nil, `SELECT `+jobColumns+` FROM assignment_jobs WHERE id=$1;`, jobID)
	return scanJob(row)
}

// Cancel removes a still-pending job. A claimed job runs to completion.
func (q *PostgresJobQueue) Cancel(ctx context.Context, jobID string) (bool, error) {
	const sql = `UPDATE assignment_jobs SET status=$2 WHERE id=$1 AND status=$3;`
	tag, err := execSQL(ctx, q.pool, nil, sql, jobID, string(queue.JobStatusCancelled), string(queue.JobStatusPending))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ReleaseStuck returns jobs whose claim outlived the visibility timeout to
// pending so another worker can pick them up (at-least-once delivery).
func (q *PostgresJobQueue) ReleaseStuck(ctx context.Context, visibility time.Duration) (int, error) {
	const sql = `
UPDATE assignment_jobs SET status=$1, claimed_at=NULL, run_at=$2
 WHERE status=$3 AND claimed_at IS NOT NULL AND claimed_at < $4;`
	now := time.Now()
	tag, err := execSQL(ctx, q.pool, nil, sql,
		string(queue.JobStatusPending), now, string(queue.JobStatusProcessing), now.Add(-visibility))
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (q *PostgresJobQueue) PendingCount(ctx context.Context) (int, error) {
	row := pickRow(ctx, q.pool, nil, `SELECT COUNT(*) FROM assignment_jobs WHERE status=$1;`, string(queue.JobStatusPending))
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count pending jobs: %w", err)
	}
	return n, nil
}
