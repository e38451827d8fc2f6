// In-memory doubles used by the unit tests in this package.
package usecase

import (
	"context"
	"sync"
	"time"

	"fieldops-assignment/internal/domain"
	"fieldops-assignment/internal/domain/model"
	"fieldops-assignment/internal/domain/ports/collab"
	"fieldops-assignment/internal/domain/ports/queue"
	"fieldops-assignment/internal/domain/ports/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

func NewTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// --- Transaction manager ---

// MockTxManager runs the callback without any real transaction; the mocks
// below ignore the tx handle.
type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func NewMockTxManager() *MockTxManager { return &MockTxManager{} }

func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, nil)
}

// --- Case repository ---

type MockCaseRepo struct {
	mu    sync.Mutex
	store map[string]*model.Case

	LockByIDFunc         func(ctx context.Context, tx repository.Tx, id string) (*model.Case, error)
	UpdateAssignmentFunc func(ctx context.Context, tx repository.Tx, caseID, agentID string, status model.CaseStatus) error
}

func NewMockCaseRepo() *MockCaseRepo {
	return &MockCaseRepo{store: make(map[string]*model.Case)}
}

func (m *MockCaseRepo) Put(c *model.Case) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.store[c.ID] = &cp
}

func (m *MockCaseRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MockCaseRepo) LockByID(ctx context.Context, tx repository.Tx, id string) (*model.Case, error) {
	if m.LockByIDFunc != nil {
		return m.LockByIDFunc(ctx, tx, id)
	}
	return m.FindByID(ctx, tx, id)
}

func (m *MockCaseRepo) UpdateAssignment(ctx context.Context, tx repository.Tx, caseID, agentID string, status model.CaseStatus) error {
	if m.UpdateAssignmentFunc != nil {
		return m.UpdateAssignmentFunc(ctx, tx, caseID, agentID, status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[caseID]
	if !ok {
		return domain.ErrNotFound
	}
	id := agentID
	c.AssignedAgentID = &id
	c.Status = status
	c.UpdatedAt = time.Now()
	return nil
}

// --- Agent repository ---

type MockAgentRepo struct {
	mu    sync.Mutex
	store map[string]*model.Agent

	FindByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.Agent, error)
}

func NewMockAgentRepo() *MockAgentRepo {
	return &MockAgentRepo{store: make(map[string]*model.Agent)}
}

func (m *MockAgentRepo) Put(a *model.Agent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.store[a.ID] = &cp
}

func (m *MockAgentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Agent, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

// --- History repository (append-only, like the real one) ---

type MockHistoryRepo struct {
	mu      sync.Mutex
	records []*model.AssignmentHistoryRecord

	InsertFunc func(ctx context.Context, tx repository.Tx, rec *model.AssignmentHistoryRecord) error
}

func NewMockHistoryRepo() *MockHistoryRepo { return &MockHistoryRepo{} }

func (m *MockHistoryRepo) Insert(ctx context.Context, tx repository.Tx, rec *model.AssignmentHistoryRecord) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, tx, rec)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	m.records = append(m.records, &cp)
	return nil
}

func (m *MockHistoryRepo) ListByCase(ctx context.Context, tx repository.Tx, caseID string, limit int) ([]*model.AssignmentHistoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.AssignmentHistoryRecord
	for _, r := range m.records {
		if r.CaseID == caseID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockHistoryRepo) CountByCase(ctx context.Context, tx repository.Tx, caseID string) (int, error) {
	recs, _ := m.ListByCase(ctx, tx, caseID, 0)
	return len(recs), nil
}

func (m *MockHistoryRepo) All() []*model.AssignmentHistoryRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.AssignmentHistoryRecord, len(m.records))
	copy(out, m.records)
	return out
}

// --- Batch status repository ---

// ProgressSnapshot captures one UpdateProgress call for invariant checks.
type ProgressSnapshot struct {
	Processed int
	Succeeded int
	Failed    int
}

type MockBatchRepo struct {
	mu        sync.Mutex
	store     map[string]*model.BatchStatusRecord
	Snapshots []ProgressSnapshot

	CreateFunc func(ctx context.Context, tx repository.Tx, rec *model.BatchStatusRecord) error
}

func NewMockBatchRepo() *MockBatchRepo {
	return &MockBatchRepo{store: make(map[string]*model.BatchStatusRecord)}
}

func (m *MockBatchRepo) Create(ctx context.Context, tx repository.Tx, rec *model.BatchStatusRecord) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, rec)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now()
	}
	cp := *rec
	m.store[rec.BatchID] = &cp
	return nil
}

func (m *MockBatchRepo) FindByID(ctx context.Context, tx repository.Tx, batchID string) (*model.BatchStatusRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.store[batchID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *MockBatchRepo) AttachJob(ctx context.Context, tx repository.Tx, batchID, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.store[batchID]
	if !ok || rec.Status != model.BatchStatusPending {
		return domain.ErrNotFound
	}
	rec.JobID = jobID
	rec.Status = model.BatchStatusProcessing
	return nil
}

func (m *MockBatchRepo) UpdateProgress(ctx context.Context, tx repository.Tx, batchID string, processed, succeeded, failed int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.store[batchID]
	if !ok {
		return domain.ErrNotFound
	}
	if rec.Status.Terminal() {
		return nil
	}
	rec.Processed = processed
	rec.Succeeded = succeeded
	rec.Failed = failed
	m.Snapshots = append(m.Snapshots, ProgressSnapshot{Processed: processed, Succeeded: succeeded, Failed: failed})
	return nil
}

func (m *MockBatchRepo) Finish(ctx context.Context, tx repository.Tx, batchID string, status model.BatchStatus, processed, succeeded, failed int, errs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.store[batchID]
	if !ok {
		return domain.ErrNotFound
	}
	if rec.Status.Terminal() {
		return domain.ErrBatchTerminal
	}
	now := time.Now()
	rec.Status = status
	rec.Processed = processed
	rec.Succeeded = succeeded
	rec.Failed = failed
	rec.Errors = errs
	rec.CompletedAt = &now
	return nil
}

// --- Durable queue ---

type queuedEntry struct {
	job       model.AssignmentJob
	priority  model.Priority
	status    queue.JobStatus
	lastError string
	progress  []queue.Progress
}

type MockQueue struct {
	mu      sync.Mutex
	entries map[string]*queuedEntry
	order   []string

	EnqueueFunc func(ctx context.Context, job model.AssignmentJob, priority model.Priority) (string, error)
	CancelFunc  func(ctx context.Context, jobID string) (bool, error)
}

func NewMockQueue() *MockQueue {
	return &MockQueue{entries: make(map[string]*queuedEntry)}
}

func (m *MockQueue) Enqueue(ctx context.Context, job model.AssignmentJob, priority model.Priority) (string, error) {
	if m.EnqueueFunc != nil {
		return m.EnqueueFunc(ctx, job, priority)
	}
	if err := job.Validate(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := "job-" + uuid.NewString()[:8]
	m.entries[id] = &queuedEntry{job: job, priority: priority, status: queue.JobStatusPending}
	m.order = append(m.order, id)
	return id, nil
}

func (m *MockQueue) Claim(ctx context.Context) (*queue.QueuedJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		e := m.entries[id]
		if e.status == queue.JobStatusPending {
			e.status = queue.JobStatusProcessing
			return &queue.QueuedJob{ID: id, Job: e.job, Priority: e.priority, Status: e.status, Attempts: 1}, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockQueue) Complete(ctx context.Context, jobID string) error {
	return m.setStatus(jobID, queue.JobStatusCompleted)
}

func (m *MockQueue) Fail(ctx context.Context, jobID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	e.status = queue.JobStatusDead
	e.lastError = reason
	return nil
}

func (m *MockQueue) setStatus(jobID string, st queue.JobStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	e.status = st
	return nil
}

func (m *MockQueue) UpdateProgress(ctx context.Context, jobID string, p queue.Progress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[jobID]
	if !ok {
		// Batch tests drive ProcessBulk with synthetic job ids.
		e = &queuedEntry{status: queue.JobStatusProcessing}
		m.entries[jobID] = e
	}
	e.progress = append(e.progress, p)
	return nil
}

func (m *MockQueue) Get(ctx context.Context, jobID string) (*queue.QueuedJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	j := &queue.QueuedJob{ID: jobID, Job: e.job, Priority: e.priority, Status: e.status, LastError: e.lastError}
	if n := len(e.progress); n > 0 {
		p := e.progress[n-1]
		j.Progress = &p
	}
	return j, nil
}

func (m *MockQueue) Cancel(ctx context.Context, jobID string) (bool, error) {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, jobID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[jobID]
	if !ok || e.status != queue.JobStatusPending {
		return false, nil
	}
	e.status = queue.JobStatusCancelled
	return true, nil
}

func (m *MockQueue) ReleaseStuck(ctx context.Context, visibility time.Duration) (int, error) {
	return 0, nil
}

func (m *MockQueue) PendingCount(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.status == queue.JobStatusPending {
			n++
		}
	}
	return n, nil
}

// LastEnqueued returns the most recently enqueued job and its priority.
func (m *MockQueue) LastEnqueued() (model.AssignmentJob, model.Priority, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.order) == 0 {
		return model.AssignmentJob{}, 0, false
	}
	e := m.entries[m.order[len(m.order)-1]]
	return e.job, e.priority, true
}

// ProgressLog returns all progress annotations written for a job.
func (m *MockQueue) ProgressLog(jobID string) []queue.Progress {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[jobID]
	if !ok {
		return nil
	}
	out := make([]queue.Progress, len(e.progress))
	copy(out, e.progress)
	return out
}

// --- Collaborators ---

type AuditEntry struct {
	Action     string
	EntityType string
	EntityID   string
	ActorID    string
	Details    map[string]any
}

type MockAuditWriter struct {
	mu      sync.Mutex
	Entries []AuditEntry

	RecordFunc func(ctx context.Context, action, entityType, entityID, actorID string, details map[string]any) error
}

func NewMockAuditWriter() *MockAuditWriter { return &MockAuditWriter{} }

func (m *MockAuditWriter) Record(ctx context.Context, action, entityType, entityID, actorID string, details map[string]any) error {
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, action, entityType, entityID, actorID, details)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, AuditEntry{Action: action, EntityType: entityType, EntityID: entityID, ActorID: actorID, Details: details})
	return nil
}

func (m *MockAuditWriter) ByAction(action string) []AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []AuditEntry
	for _, e := range m.Entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

type MockNotificationQueue struct {
	mu     sync.Mutex
	Events []collab.NotificationEvent

	EnqueueFunc func(ctx context.Context, ev collab.NotificationEvent) error
}

func NewMockNotificationQueue() *MockNotificationQueue { return &MockNotificationQueue{} }

func (m *MockNotificationQueue) Enqueue(ctx context.Context, ev collab.NotificationEvent) error {
	if m.EnqueueFunc != nil {
		return m.EnqueueFunc(ctx, ev)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, ev)
	return nil
}

func (m *MockNotificationQueue) All() []collab.NotificationEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]collab.NotificationEvent, len(m.Events))
	copy(out, m.Events)
	return out
}
