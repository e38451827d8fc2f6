package usecase

import (
	"context"
	"errors"

	"fieldops-assignment/internal/domain"
	"fieldops-assignment/internal/domain/model"
	"fieldops-assignment/internal/domain/ports/collab"
	"fieldops-assignment/internal/domain/ports/repository"
	"fieldops-assignment/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ AssignUseCase = (*assignUC)(nil)

// AssignParams drives one per-case assignment transaction.
type AssignParams struct {
	CaseID      string
	AgentID     string
	RequestedBy string
	Reason      string
	// BatchID links the history record to a bulk operation; nil otherwise.
	BatchID *string
	// ExpectedAgentID, when set, requires the case's current assignee to
	// match (reassignment precondition re-checked under the row lock).
	ExpectedAgentID *string
}

// AssignUseCase is the sole writer path for case assignment fields.
//
// AssignCase returns a failure AssignmentResult (and a nil error) for
// per-case domain failures: case missing, agent missing or inactive,
// assignee mismatch. A non-nil error means infrastructure trouble and the
// enclosing job should be retried by the queue.
type AssignUseCase interface {
	AssignCase(ctx context.Context, p AssignParams) (model.AssignmentResult, error)
}

type assignUC struct {
	cases   repository.CaseRepository
	agents  repository.AgentRepository
	history repository.AssignmentHistoryRepository
	tm      repository.TransactionManager
	audit   collab.AuditWriter
	notify  collab.NotificationQueue
	log     *zerolog.Logger
}

func NewAssignUseCase(
	cases repository.CaseRepository,
	agents repository.AgentRepository,
	history repository.AssignmentHistoryRepository,
	tm repository.TransactionManager,
	audit collab.AuditWriter,
	notify collab.NotificationQueue,
	logger *zerolog.Logger,
) *assignUC {
	compLog := logger.With().Str("component", "AssignUC").Logger()
	return &assignUC{
		cases:   cases,
		agents:  agents,
		history: history,
		tm:      tm,
		audit:   audit,
		notify:  notify,
		log:     &compLog,
	}
}

// errAssignRejected signals a domain failure out of the transaction closure
// so the transaction rolls back; it never escapes AssignCase.
var errAssignRejected = errors.New("assignment rejected")

func (uc *assignUC) AssignCase(ctx context.Context, p AssignParams) (model.AssignmentResult, error) {
	var (
		result     model.AssignmentResult
		caseNumber string
		agentName  string
	)

	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		// Exclusive row lock: concurrent assignments on this case serialize
		// here; other cases are untouched.
		c, err := uc.cases.LockByID(ctx, tx, p.CaseID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				metrics.IncAssignment("case_not_found")
				result = model.FailureResult(p.CaseID, "case not found")
				return errAssignRejected
			}
			return err
		}
		caseNumber = c.CaseNumber

		if p.ExpectedAgentID != nil {
			if c.AssignedAgentID == nil || *c.AssignedAgentID != *p.ExpectedAgentID {
				metrics.IncAssignment("mismatch")
				result = model.FailureResult(p.CaseID, "case is not assigned to the stated agent")
				return errAssignRejected
			}
		}

		agent, err := uc.agents.FindByID(ctx, tx, p.AgentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				metrics.IncAssignment("agent_invalid")
				result = model.FailureResult(p.CaseID, "agent not found")
				return errAssignRejected
			}
			return err
		}
		if !agent.Assignable() {
			metrics.IncAssignment("agent_invalid")
			result = model.FailureResult(p.CaseID, "agent is not active or not assignable")
			return errAssignRejected
		}
		agentName = agent.Name

		prevName := ""
		if c.AssignedAgentID != nil {
			if prev, err := uc.agents.FindByID(ctx, tx, *c.AssignedAgentID); err == nil {
				prevName = prev.Name
			} else {
				prevName = *c.AssignedAgentID
			}
		}

		// A case already in progress keeps its status; only the initial
		// pending state advances.
		status := c.Status
		if status == model.CaseStatusPending {
			status = model.CaseStatusAssigned
		}
		if err := uc.cases.UpdateAssignment(ctx, tx, c.ID, agent.ID, status); err != nil {
			return err
		}

		if err := uc.history.Insert(ctx, tx, &model.AssignmentHistoryRecord{
			CaseID:          c.ID,
			PreviousAgentID: c.AssignedAgentID,
			NewAgentID:      agent.ID,
			AssignedBy:      p.RequestedBy,
			Reason:          p.Reason,
			BatchID:         p.BatchID,
		}); err != nil {
			return err
		}

		result = model.SuccessResult(c.ID, prevName, agent.Name)
		return nil
	})
	if err != nil {
		if errors.Is(err, errAssignRejected) {
			return result, nil
		}
		metrics.IncAssignment("error")
		return model.FailureResult(p.CaseID, err.Error()), err
	}

	metrics.IncAssignment("success")

	// Post-commit side effects. A hiccup here never rolls back the
	// committed assignment: log and move on.
	uc.emitSideEffects(ctx, p, caseNumber, agentName, result)
	return result, nil
}

func (uc *assignUC) emitSideEffects(ctx context.Context, p AssignParams, caseNumber, agentName string, res model.AssignmentResult) {
	details := map[string]any{
		"case_number":    caseNumber,
		"new_agent":      agentName,
		"previous_agent": res.PreviousAgent,
		"reason":         p.Reason,
	}
	kind := "case_assigned"
	if p.ExpectedAgentID != nil {
		kind = "case_reassigned"
		details["from_agent_id"] = *p.ExpectedAgentID
	}
	if p.BatchID != nil {
		details["batch_id"] = *p.BatchID
	}

	if err := uc.audit.Record(ctx, kind, "case", p.CaseID, p.RequestedBy, details); err != nil {
		uc.log.Error().Err(err).Str("case_id", p.CaseID).Msg("audit write failed")
	}

	ev := collab.NotificationEvent{
		Kind:        kind,
		AgentID:     p.AgentID,
		CaseID:      p.CaseID,
		CaseNumber:  caseNumber,
		RequestedBy: p.RequestedBy,
	}
	if p.BatchID != nil {
		ev.BatchID = *p.BatchID
	}
	if err := uc.notify.Enqueue(ctx, ev); err != nil {
		uc.log.Error().Err(err).Str("case_id", p.CaseID).Str("agent_id", p.AgentID).Msg("notification enqueue failed")
	}
}
