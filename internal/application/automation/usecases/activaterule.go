package usecases

import (
	"context"

	"flowdesk/internal/domain/automation"
	"flowdesk/internal/shared/errors"
	"flowdesk/internal/shared/logger"
)

type ActivateRuleCommand struct {
	RuleID uint
}

type ActivateRuleResult struct {
	RuleID   uint `json:"rule_id"`
	IsActive bool `json:"is_active"`
}

// ActivateRuleUseCase flips a rule live after re-validating its condition
// tree, so a rule that was edited into a malformed state fails here rather
// than silently never matching.
type ActivateRuleUseCase struct {
	rules  automation.RuleRepository
	logger logger.Interface
}

func NewActivateRuleUseCase(rules automation.RuleRepository, log logger.Interface) *ActivateRuleUseCase {
	return &ActivateRuleUseCase{rules: rules, logger: log}
}

func (uc *ActivateRuleUseCase) Execute(ctx context.Context, cmd ActivateRuleCommand) (*ActivateRuleResult, error) {
	if cmd.RuleID == 0 {
		return nil, errors.NewValidationError("rule ID is required")
	}

	rule, err := uc.rules.GetByID(ctx, cmd.RuleID)
	if err != nil {
		uc.logger.Errorw("failed to find rule", "rule_id", cmd.RuleID, "error", err)
		return nil, errors.NewNotFoundError("rule not found")
	}

	if err := rule.Activate(); err != nil {
		uc.logger.Warnw("rule activation rejected", "rule_id", cmd.RuleID, "error", err)
		return nil, errors.NewValidationError(err.Error())
	}

	if err := uc.rules.Update(ctx, rule); err != nil {
		uc.logger.Errorw("failed to update rule", "rule_id", cmd.RuleID, "error", err)
		return nil, errors.NewInternalError("failed to update rule")
	}

	uc.logger.Infow("rule activated", "rule_id", rule.ID(), "name", rule.Name())
	return &ActivateRuleResult{RuleID: rule.ID(), IsActive: rule.IsActive()}, nil
}
