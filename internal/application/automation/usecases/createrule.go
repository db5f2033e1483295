package usecases

import (
	"context"

	"flowdesk/internal/domain/automation"
	"flowdesk/internal/shared/errors"
	"flowdesk/internal/shared/id"
	"flowdesk/internal/shared/logger"
)

type CreateRuleCommand struct {
	OrganizationID uint
	Name           string
	TriggerType    string
	ConditionTree  *automation.ConditionNode
	Actions        []automation.Action
	ExecutionOrder int
	StopOnMatch    bool
}

type CreateRuleResult struct {
	RuleID      uint   `json:"rule_id"`
	SID         string `json:"sid"`
	Name        string `json:"name"`
	TriggerType string `json:"trigger_type"`
	IsActive    bool   `json:"is_active"`
}

// CreateRuleUseCase persists a new inactive rule. Activation is a separate
// step so a half-configured rule never evaluates against live traffic.
type CreateRuleUseCase struct {
	rules  automation.RuleRepository
	logger logger.Interface
}

func NewCreateRuleUseCase(rules automation.RuleRepository, log logger.Interface) *CreateRuleUseCase {
	return &CreateRuleUseCase{rules: rules, logger: log}
}

func (uc *CreateRuleUseCase) Execute(ctx context.Context, cmd CreateRuleCommand) (*CreateRuleResult, error) {
	uc.logger.Infow("executing create rule use case",
		"organization_id", cmd.OrganizationID,
		"name", cmd.Name,
		"trigger", cmd.TriggerType)

	trigger, err := automation.NewTriggerType(cmd.TriggerType)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	rule, err := automation.NewRule(
		cmd.OrganizationID,
		cmd.Name,
		trigger,
		cmd.ConditionTree,
		cmd.Actions,
		cmd.ExecutionOrder,
	)
	if err != nil {
		uc.logger.Errorw("invalid create rule command", "error", err)
		return nil, errors.NewValidationError(err.Error())
	}
	rule.SetStopOnMatch(cmd.StopOnMatch)

	sid, err := id.GenerateWithPrefix(id.PrefixRule, id.DefaultLength)
	if err != nil {
		uc.logger.Errorw("failed to generate rule SID", "error", err)
		return nil, errors.NewInternalError("failed to generate rule identifier")
	}
	if err := rule.SetSID(sid); err != nil {
		return nil, errors.NewInternalError(err.Error())
	}

	if err := uc.rules.Save(ctx, rule); err != nil {
		uc.logger.Errorw("failed to save rule", "error", err)
		if errors.IsDuplicateError(err) {
			return nil, errors.NewConflictError("rule already exists")
		}
		return nil, errors.NewInternalError("failed to save rule")
	}

	uc.logger.Infow("rule created", "rule_id", rule.ID(), "sid", rule.SID())

	return &CreateRuleResult{
		RuleID:      rule.ID(),
		SID:         rule.SID(),
		Name:        rule.Name(),
		TriggerType: rule.TriggerType().String(),
		IsActive:    rule.IsActive(),
	}, nil
}
