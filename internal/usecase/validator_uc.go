package usecase

import (
	"context"
	"errors"

	"fieldops-assignment/internal/domain"
	"fieldops-assignment/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ ValidatorUseCase = (*validatorUC)(nil)

// ValidatorUseCase runs the synchronous pre-enqueue checks. Failures are
// returned as domain errors and never reach the queue.
type ValidatorUseCase interface {
	// ValidateAssignment confirms the case exists and the agent exists,
	// is active, and carries the assignable role.
	ValidateAssignment(ctx context.Context, caseID, agentID string) error
	// ValidateReassignment additionally confirms the case's current assignee
	// equals the stated source agent.
	ValidateReassignment(ctx context.Context, caseID, fromAgentID, toAgentID string) error
}

type validatorUC struct {
	cases  repository.CaseRepository
	agents repository.AgentRepository
	log    *zerolog.Logger
}

func NewValidatorUseCase(cases repository.CaseRepository, agents repository.AgentRepository, logger *zerolog.Logger) *validatorUC {
	return &validatorUC{cases: cases, agents: agents, log: logger}
}

func (v *validatorUC) ValidateAssignment(ctx context.Context, caseID, agentID string) error {
	if _, err := v.cases.FindByID(ctx, repository.NoTX, caseID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrCaseNotFound
		}
		return err
	}
	agent, err := v.agents.FindByID(ctx, repository.NoTX, agentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrAgentNotFound
		}
		return err
	}
	if !agent.Assignable() {
		return domain.ErrAgentInactive
	}
	return nil
}

func (v *validatorUC) ValidateReassignment(ctx context.Context, caseID, fromAgentID, toAgentID string) error {
	c, err := v.cases.FindByID(ctx, repository.NoTX, caseID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrCaseNotFound
		}
		return err
	}
	if c.AssignedAgentID == nil || *c.AssignedAgentID != fromAgentID {
		return domain.ErrAssignmentMismatch
	}
	agent, err := v.agents.FindByID(ctx, repository.NoTX, toAgentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrAgentNotFound
		}
		return err
	}
	if !agent.Assignable() {
		return domain.ErrAgentInactive
	}
	return nil
}
