package usecases

import (
	"context"

	"flowdesk/internal/domain/automation"
	"flowdesk/internal/shared/errors"
	"flowdesk/internal/shared/logger"
)

type GetRuleStatsQuery struct {
	RuleID uint
}

type GetRuleStatsResult struct {
	RuleID   uint                     `json:"rule_id"`
	RuleName string                   `json:"rule_name"`
	Stats    automation.StatsSnapshot `json:"stats"`
}

type GetRuleStatsUseCase struct {
	rules  automation.RuleRepository
	logger logger.Interface
}

func NewGetRuleStatsUseCase(rules automation.RuleRepository, log logger.Interface) *GetRuleStatsUseCase {
	return &GetRuleStatsUseCase{rules: rules, logger: log}
}

func (uc *GetRuleStatsUseCase) Execute(ctx context.Context, query GetRuleStatsQuery) (*GetRuleStatsResult, error) {
	if query.RuleID == 0 {
		return nil, errors.NewValidationError("rule ID is required")
	}

	rule, err := uc.rules.GetByID(ctx, query.RuleID)
	if err != nil {
		uc.logger.Errorw("failed to find rule", "rule_id", query.RuleID, "error", err)
		return nil, errors.NewNotFoundError("rule not found")
	}

	return &GetRuleStatsResult{
		RuleID:   rule.ID(),
		RuleName: rule.Name(),
		Stats:    rule.Stats().Snapshot(),
	}, nil
}
