package usecases

import (
	"context"

	"flowdesk/internal/domain/sla"
	"flowdesk/internal/shared/errors"
	"flowdesk/internal/shared/id"
	"flowdesk/internal/shared/logger"
)

type CreatePolicyCommand struct {
	OrganizationID       uint
	Name                 string
	FirstResponseMinutes int
	ResolutionMinutes    int
	CalendarID           uint
	Thresholds           []sla.EscalationThreshold
}

type CreatePolicyResult struct {
	PolicyID uint   `json:"policy_id"`
	SID      string `json:"sid"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// CreatePolicyUseCase persists a new inactive SLA policy. Activation is a
// separate step that validates the referenced calendar.
type CreatePolicyUseCase struct {
	policies sla.PolicyRepository
	logger   logger.Interface
}

func NewCreatePolicyUseCase(policies sla.PolicyRepository, log logger.Interface) *CreatePolicyUseCase {
	return &CreatePolicyUseCase{policies: policies, logger: log}
}

func (uc *CreatePolicyUseCase) Execute(ctx context.Context, cmd CreatePolicyCommand) (*CreatePolicyResult, error) {
	uc.logger.Infow("executing create policy use case",
		"organization_id", cmd.OrganizationID,
		"name", cmd.Name,
		"first_response_minutes", cmd.FirstResponseMinutes,
		"resolution_minutes", cmd.ResolutionMinutes)

	policy, err := sla.NewPolicy(
		cmd.OrganizationID,
		cmd.Name,
		cmd.FirstResponseMinutes,
		cmd.ResolutionMinutes,
		cmd.CalendarID,
		cmd.Thresholds,
	)
	if err != nil {
		uc.logger.Warnw("invalid create policy command", "error", err)
		return nil, errors.NewValidationError(err.Error())
	}

	sid, err := id.GenerateWithPrefix(id.PrefixPolicy, id.DefaultLength)
	if err != nil {
		uc.logger.Errorw("failed to generate policy SID", "error", err)
		return nil, errors.NewInternalError("failed to generate policy identifier")
	}
	if err := policy.SetSID(sid); err != nil {
		return nil, errors.NewInternalError(err.Error())
	}

	if err := uc.policies.Save(ctx, policy); err != nil {
		uc.logger.Errorw("failed to save policy", "error", err)
		if errors.IsDuplicateError(err) {
			return nil, errors.NewConflictError("policy already exists")
		}
		return nil, errors.NewInternalError("failed to save policy")
	}

	uc.logger.Infow("policy created", "policy_id", policy.ID(), "sid", policy.SID())

	return &CreatePolicyResult{
		PolicyID: policy.ID(),
		SID:      policy.SID(),
		Name:     policy.Name(),
		IsActive: policy.IsActive(),
	}, nil
}
