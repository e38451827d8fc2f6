//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"fieldops-assignment/internal/domain"
	"fieldops-assignment/internal/domain/model"
	"fieldops-assignment/internal/usecase"
)

func TestSubBatchSize(t *testing.T) {
	tests := []struct {
		total int
		want  int
	}{
		{total: 1, want: 20},
		{total: 50, want: 20},
		{total: 200, want: 20},
		{total: 300, want: 30},
		{total: 500, want: 50},
		{total: 1000, want: 50},
	}
	for _, tc := range tests {
		if got := usecase.SubBatchSize(tc.total); got != tc.want {
			t.Errorf("SubBatchSize(%d) = %d, want %d", tc.total, got, tc.want)
		}
	}
}

type batchFixture struct {
	cases   *usecase.MockCaseRepo
	agents  *usecase.MockAgentRepo
	history *usecase.MockHistoryRepo
	batches *usecase.MockBatchRepo
	q       *usecase.MockQueue
	audit   *usecase.MockAuditWriter
	notify  *usecase.MockNotificationQueue
	uc      usecase.BatchUseCase
}

func newBatchFixture(t *testing.T) *batchFixture {
	t.Helper()
	f := &batchFixture{
		cases:   usecase.NewMockCaseRepo(),
		agents:  usecase.NewMockAgentRepo(),
		history: usecase.NewMockHistoryRepo(),
		batches: usecase.NewMockBatchRepo(),
		q:       usecase.NewMockQueue(),
		audit:   usecase.NewMockAuditWriter(),
		notify:  usecase.NewMockNotificationQueue(),
	}
	logger := usecase.NewTestLogger()
	assigner := usecase.NewAssignUseCase(f.cases, f.agents, f.history, usecase.NewMockTxManager(), f.audit, f.notify, logger)
	f.uc = usecase.NewBatchUseCase(f.agents, assigner, f.batches, f.q, f.audit, f.notify, time.Millisecond, logger)
	return f
}

func (f *batchFixture) seedBatch(ctx context.Context, t *testing.T, batchID string, total int) {
	t.Helper()
	err := f.batches.Create(ctx, nil, &model.BatchStatusRecord{
		BatchID:     batchID,
		RequestedBy: "sup-1",
		AgentID:     "agent-1",
		TotalCases:  total,
		Status:      model.BatchStatusProcessing,
	})
	if err != nil {
		t.Fatalf("seeding batch record: %v", err)
	}
}

func (f *batchFixture) seedCases(n int) []string {
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("case-%03d", i)
		f.cases.Put(&model.Case{ID: id, CaseNumber: fmt.Sprintf("CASE-%05d", i), Status: model.CaseStatusPending})
		ids = append(ids, id)
	}
	return ids
}

func TestBatchUseCase_ProcessBulk(t *testing.T) {
	ctx := context.Background()

	t.Run("should isolate per-case failures and complete the batch", func(t *testing.T) {
		f := newBatchFixture(t)
		f.agents.Put(&model.Agent{ID: "agent-1", Name: "Dana", Active: true, Role: model.RoleFieldAgent})
		ids := f.seedCases(40)
		ids = append(ids, "no-such-case")
		f.seedBatch(ctx, t, "batch-1", len(ids))

		err := f.uc.ProcessBulk(ctx, "job-1", model.BulkAssignment{
			CaseIDs: ids, AgentID: "agent-1", RequestedBy: "sup-1", BatchID: "batch-1",
		})
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		rec, _ := f.batches.FindByID(ctx, nil, "batch-1")
		if rec.Status != model.BatchStatusCompleted {
			t.Errorf("expected completed, got %s", rec.Status)
		}
		if rec.Succeeded != 40 || rec.Failed != 1 || rec.Processed != 41 {
			t.Errorf("expected 40/1/41, got %d/%d/%d", rec.Succeeded, rec.Failed, rec.Processed)
		}
		if len(rec.Errors) != 1 {
			t.Fatalf("expected 1 recorded error, got %d", len(rec.Errors))
		}
		if len(f.history.All()) != 40 {
			t.Errorf("expected 40 history records, got %d", len(f.history.All()))
		}
	})

	t.Run("should keep counters consistent at every progress update", func(t *testing.T) {
		f := newBatchFixture(t)
		f.agents.Put(&model.Agent{ID: "agent-1", Name: "Dana", Active: true, Role: model.RoleFieldAgent})
		ids := f.seedCases(55)
		ids = append(ids, "ghost-1", "ghost-2")
		f.seedBatch(ctx, t, "batch-2", len(ids))

		if err := f.uc.ProcessBulk(ctx, "job-2", model.BulkAssignment{
			CaseIDs: ids, AgentID: "agent-1", RequestedBy: "sup-1", BatchID: "batch-2",
		}); err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}

		prev := 0
		for i, snap := range f.batches.Snapshots {
			if snap.Succeeded+snap.Failed != snap.Processed {
				t.Errorf("snapshot %d: succeeded %d + failed %d != processed %d", i, snap.Succeeded, snap.Failed, snap.Processed)
			}
			if snap.Processed < prev || snap.Processed > len(ids) {
				t.Errorf("snapshot %d: processed %d out of range (prev %d, total %d)", i, snap.Processed, prev, len(ids))
			}
			prev = snap.Processed
		}
		if prev != len(ids) {
			t.Errorf("final snapshot processed %d, want %d", prev, len(ids))
		}
	})

	t.Run("should chunk 120 cases into 6 ordered sub-batches", func(t *testing.T) {
		f := newBatchFixture(t)
		f.agents.Put(&model.Agent{ID: "agent-1", Name: "Dana", Active: true, Role: model.RoleFieldAgent})
		ids := f.seedCases(120)
		f.seedBatch(ctx, t, "batch-3", len(ids))

		if err := f.uc.ProcessBulk(ctx, "job-3", model.BulkAssignment{
			CaseIDs: ids, AgentID: "agent-1", RequestedBy: "sup-1", BatchID: "batch-3",
		}); err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}

		log := f.q.ProgressLog("job-3")
		// 6 sub-batch annotations plus the final completion marker.
		if len(log) != 7 {
			t.Fatalf("expected 7 progress annotations, got %d", len(log))
		}
		for i := 0; i < 6; i++ {
			p := log[i]
			if p.SubBatch != i+1 || p.SubBatches != 6 {
				t.Errorf("annotation %d: sub-batch %d of %d, want %d of 6", i, p.SubBatch, p.SubBatches, i+1)
			}
			if p.Processed != (i+1)*20 {
				t.Errorf("annotation %d: processed %d, want %d", i, p.Processed, (i+1)*20)
			}
		}
		final := log[6]
		if !final.Completed || final.Succeeded != 120 || final.Failed != 0 {
			t.Errorf("unexpected final annotation: %+v", final)
		}
	})

	t.Run("should fail the whole job when the target agent is invalid", func(t *testing.T) {
		f := newBatchFixture(t)
		f.agents.Put(&model.Agent{ID: "agent-off", Name: "Kim", Active: false, Role: model.RoleFieldAgent})
		ids := f.seedCases(5)
		f.seedBatch(ctx, t, "batch-4", len(ids))

		err := f.uc.ProcessBulk(ctx, "job-4", model.BulkAssignment{
			CaseIDs: ids, AgentID: "agent-off", RequestedBy: "sup-1", BatchID: "batch-4",
		})
		if !errors.Is(err, domain.ErrAgentInactive) {
			t.Fatalf("expected ErrAgentInactive, got %v", err)
		}
		if len(f.history.All()) != 0 {
			t.Error("expected no assignments to have run")
		}
	})

	t.Run("should tolerate a batch cancelled mid-flight", func(t *testing.T) {
		f := newBatchFixture(t)
		f.agents.Put(&model.Agent{ID: "agent-1", Name: "Dana", Active: true, Role: model.RoleFieldAgent})
		ids := f.seedCases(3)
		f.seedBatch(ctx, t, "batch-5", len(ids))
		if err := f.batches.Finish(ctx, nil, "batch-5", model.BatchStatusCancelled, 0, 0, 0, nil); err != nil {
			t.Fatalf("cancelling batch: %v", err)
		}

		// Completion of an already-cancelled batch is not an error; committed
		// assignments stand and the cancelled status is preserved.
		if err := f.uc.ProcessBulk(ctx, "job-5", model.BulkAssignment{
			CaseIDs: ids, AgentID: "agent-1", RequestedBy: "sup-1", BatchID: "batch-5",
		}); err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		rec, _ := f.batches.FindByID(ctx, nil, "batch-5")
		if rec.Status != model.BatchStatusCancelled {
			t.Errorf("expected status to stay cancelled, got %s", rec.Status)
		}
	})
}
