package usecases

import (
	"context"

	"flowdesk/internal/domain/sla"
	"flowdesk/internal/shared/errors"
	"flowdesk/internal/shared/logger"
)

type ActivatePolicyCommand struct {
	PolicyID uint
}

type ActivatePolicyResult struct {
	PolicyID uint `json:"policy_id"`
	IsActive bool `json:"is_active"`
}

// ActivatePolicyUseCase flips a policy live after checking its calendar is
// usable. A windowless calendar is rejected here, never discovered during
// a due-date calculation.
type ActivatePolicyUseCase struct {
	policies  sla.PolicyRepository
	calendars sla.CalendarRepository
	logger    logger.Interface
}

func NewActivatePolicyUseCase(policies sla.PolicyRepository, calendars sla.CalendarRepository, log logger.Interface) *ActivatePolicyUseCase {
	return &ActivatePolicyUseCase{policies: policies, calendars: calendars, logger: log}
}

func (uc *ActivatePolicyUseCase) Execute(ctx context.Context, cmd ActivatePolicyCommand) (*ActivatePolicyResult, error) {
	if cmd.PolicyID == 0 {
		return nil, errors.NewValidationError("policy ID is required")
	}

	policy, err := uc.policies.GetByID(ctx, cmd.PolicyID)
	if err != nil {
		uc.logger.Errorw("failed to find policy", "policy_id", cmd.PolicyID, "error", err)
		return nil, errors.NewNotFoundError("SLA policy not found")
	}

	cal := sla.NewContinuousCalendar(policy.OrganizationID())
	if policy.CalendarID() != 0 {
		cal, err = uc.calendars.GetByID(ctx, policy.CalendarID())
		if err != nil {
			uc.logger.Errorw("failed to find calendar",
				"policy_id", cmd.PolicyID, "calendar_id", policy.CalendarID(), "error", err)
			return nil, errors.NewNotFoundError("business calendar not found")
		}
	}

	if err := policy.Activate(cal); err != nil {
		uc.logger.Warnw("policy activation rejected",
			"policy_id", cmd.PolicyID, "error", err)
		return nil, errors.NewValidationError(err.Error())
	}

	if err := uc.policies.Update(ctx, policy); err != nil {
		uc.logger.Errorw("failed to update policy", "policy_id", cmd.PolicyID, "error", err)
		return nil, errors.NewInternalError("failed to update policy")
	}

	uc.logger.Infow("policy activated", "policy_id", policy.ID(), "name", policy.Name())
	return &ActivatePolicyResult{PolicyID: policy.ID(), IsActive: policy.IsActive()}, nil
}
