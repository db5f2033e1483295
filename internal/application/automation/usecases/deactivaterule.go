package usecases

import (
	"context"

	"flowdesk/internal/domain/automation"
	"flowdesk/internal/shared/errors"
	"flowdesk/internal/shared/logger"
)

type DeactivateRuleCommand struct {
	RuleID uint
}

type DeactivateRuleResult struct {
	RuleID   uint `json:"rule_id"`
	IsActive bool `json:"is_active"`
}

type DeactivateRuleUseCase struct {
	rules  automation.RuleRepository
	logger logger.Interface
}

func NewDeactivateRuleUseCase(rules automation.RuleRepository, log logger.Interface) *DeactivateRuleUseCase {
	return &DeactivateRuleUseCase{rules: rules, logger: log}
}

func (uc *DeactivateRuleUseCase) Execute(ctx context.Context, cmd DeactivateRuleCommand) (*DeactivateRuleResult, error) {
	if cmd.RuleID == 0 {
		return nil, errors.NewValidationError("rule ID is required")
	}

	rule, err := uc.rules.GetByID(ctx, cmd.RuleID)
	if err != nil {
		uc.logger.Errorw("failed to find rule", "rule_id", cmd.RuleID, "error", err)
		return nil, errors.NewNotFoundError("rule not found")
	}

	rule.Deactivate()

	if err := uc.rules.Update(ctx, rule); err != nil {
		uc.logger.Errorw("failed to update rule", "rule_id", cmd.RuleID, "error", err)
		return nil, errors.NewInternalError("failed to update rule")
	}

	uc.logger.Infow("rule deactivated", "rule_id", rule.ID(), "name", rule.Name())
	return &DeactivateRuleResult{RuleID: rule.ID(), IsActive: rule.IsActive()}, nil
}
