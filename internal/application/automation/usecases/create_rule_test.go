package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowdesk/internal/domain/automation"
	apperrors "flowdesk/internal/shared/errors"
	"flowdesk/internal/shared/logger"
)

func TestCreateRuleUseCase_Execute_Success(t *testing.T) {
	var saved *automation.Rule
	repo := &mockRuleRepository{
		SaveFunc: func(ctx context.Context, rule *automation.Rule) error {
			saved = rule
			return rule.SetID(7)
		},
	}
	uc := NewCreateRuleUseCase(repo, logger.NewLogger())

	result, err := uc.Execute(context.Background(), CreateRuleCommand{
		OrganizationID: 1,
		Name:           "urgent escalation",
		TriggerType:    "on_create",
		ConditionTree: &automation.ConditionNode{
			Field: "priority", Operator: automation.OperatorEquals, Value: "urgent",
		},
		Actions:        []automation.Action{automation.NotifyAction{Template: "escalation", Audience: "team_lead"}},
		ExecutionOrder: 10,
		StopOnMatch:    true,
	})

	require.NoError(t, err)
	assert.Equal(t, uint(7), result.RuleID)
	assert.True(t, len(result.SID) > len("rule_"))
	assert.False(t, result.IsActive) // rules are created inactive
	require.NotNil(t, saved)
	assert.True(t, saved.StopOnMatch())
}

func TestCreateRuleUseCase_Execute_InvalidCommand(t *testing.T) {
	uc := NewCreateRuleUseCase(&mockRuleRepository{}, logger.NewLogger())

	tests := []struct {
		name string
		cmd  CreateRuleCommand
	}{
		{
			name: "unknown trigger",
			cmd: CreateRuleCommand{
				OrganizationID: 1, Name: "r", TriggerType: "on_sneeze",
				Actions: []automation.Action{automation.EscalateAction{TargetLevel: 1}},
			},
		},
		{
			name: "no actions",
			cmd:  CreateRuleCommand{OrganizationID: 1, Name: "r", TriggerType: "on_create"},
		},
		{
			name: "missing organization",
			cmd: CreateRuleCommand{
				Name: "r", TriggerType: "on_create",
				Actions: []automation.Action{automation.EscalateAction{TargetLevel: 1}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tt.cmd)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidationError(err))
		})
	}
}

func TestCreateRuleUseCase_Execute_SaveFails(t *testing.T) {
	repo := &mockRuleRepository{
		SaveFunc: func(ctx context.Context, rule *automation.Rule) error {
			return errors.New("disk full")
		},
	}
	uc := NewCreateRuleUseCase(repo, logger.NewLogger())

	_, err := uc.Execute(context.Background(), CreateRuleCommand{
		OrganizationID: 1, Name: "r", TriggerType: "on_create",
		Actions: []automation.Action{automation.EscalateAction{TargetLevel: 1}},
	})
	assert.Error(t, err)
}

func TestActivateRuleUseCase_Execute(t *testing.T) {
	rule := activeRule(t, 1, 10, false, nil)
	rule.Deactivate()
	repo := &mockRuleRepository{
		GetByIDFunc: func(ctx context.Context, ruleID uint) (*automation.Rule, error) {
			return rule, nil
		},
	}
	uc := NewActivateRuleUseCase(repo, logger.NewLogger())

	result, err := uc.Execute(context.Background(), ActivateRuleCommand{RuleID: 1})
	require.NoError(t, err)
	assert.True(t, result.IsActive)
}

func TestDeactivateRuleUseCase_Execute(t *testing.T) {
	rule := activeRule(t, 1, 10, false, nil)
	repo := &mockRuleRepository{
		GetByIDFunc: func(ctx context.Context, ruleID uint) (*automation.Rule, error) {
			return rule, nil
		},
	}
	uc := NewDeactivateRuleUseCase(repo, logger.NewLogger())

	result, err := uc.Execute(context.Background(), DeactivateRuleCommand{RuleID: 1})
	require.NoError(t, err)
	assert.False(t, result.IsActive)
}

func TestGetRuleStatsUseCase_Execute(t *testing.T) {
	rule := activeRule(t, 1, 10, false, nil)
	rule.Stats().Seed(10, 8, 2, 5000)
	repo := &mockRuleRepository{
		GetByIDFunc: func(ctx context.Context, ruleID uint) (*automation.Rule, error) {
			return rule, nil
		},
	}
	uc := NewGetRuleStatsUseCase(repo, logger.NewLogger())

	result, err := uc.Execute(context.Background(), GetRuleStatsQuery{RuleID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(10), result.Stats.ExecutionCount)
	assert.Equal(t, int64(8), result.Stats.SuccessCount)
	assert.Equal(t, int64(2), result.Stats.FailureCount)
}
