package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowdesk/internal/domain/automation"
)

func createTestRule(t *testing.T, name string, order int) *automation.Rule {
	t.Helper()

	tree := &automation.ConditionNode{
		Field:    "priority",
		Operator: automation.OperatorEquals,
		Value:    "urgent",
	}
	actions := []automation.Action{
		automation.AssignAction{Strategy: automation.StrategySkillMatch},
		automation.NotifyAction{Template: "urgent_ticket", Audience: "assignee"},
	}

	rule, err := automation.NewRule(1, name, automation.TriggerOnCreate, tree, actions, order)
	require.NoError(t, err)
	require.NoError(t, rule.SetSID("rule_"+name))
	return rule
}

func TestRuleRepository_SaveAndGet(t *testing.T) {
	repo := NewRuleRepository(setupTestDB(t))
	ctx := context.Background()

	rule := createTestRule(t, "urgent-intake", 1)
	require.NoError(t, rule.Activate())

	err := repo.Save(ctx, rule)
	require.NoError(t, err)
	assert.NotZero(t, rule.ID())

	found, err := repo.GetByID(ctx, rule.ID())
	require.NoError(t, err)
	assert.Equal(t, rule.Name(), found.Name())
	assert.Equal(t, rule.TriggerType(), found.TriggerType())
	assert.True(t, found.IsActive())

	actions := found.Actions()
	require.Len(t, actions, 2)
	assign, ok := actions[0].(automation.AssignAction)
	require.True(t, ok)
	assert.Equal(t, automation.StrategySkillMatch, assign.Strategy)

	tree := found.ConditionTree()
	require.NotNil(t, tree)
	assert.Equal(t, "priority", tree.Field)
	assert.Equal(t, automation.OperatorEquals, tree.Operator)
}

func TestRuleRepository_SaveDuplicateSID(t *testing.T) {
	repo := NewRuleRepository(setupTestDB(t))
	ctx := context.Background()

	first := createTestRule(t, "dup", 1)
	require.NoError(t, repo.Save(ctx, first))

	second := createTestRule(t, "dup", 2)
	err := repo.Save(ctx, second)
	require.Error(t, err)
}

func TestRuleRepository_GetByID_NotFound(t *testing.T) {
	repo := NewRuleRepository(setupTestDB(t))

	_, err := repo.GetByID(context.Background(), 999)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRuleRepository_ListActive_OrdersByExecutionOrder(t *testing.T) {
	repo := NewRuleRepository(setupTestDB(t))
	ctx := context.Background()

	third := createTestRule(t, "third", 30)
	first := createTestRule(t, "first", 10)
	second := createTestRule(t, "second", 20)
	inactive := createTestRule(t, "inactive", 5)

	for _, rule := range []*automation.Rule{third, first, second} {
		require.NoError(t, rule.Activate())
		require.NoError(t, repo.Save(ctx, rule))
	}
	require.NoError(t, repo.Save(ctx, inactive))

	rules, err := repo.ListActive(ctx, 1, automation.TriggerOnCreate)
	require.NoError(t, err)
	require.Len(t, rules, 3)
	assert.Equal(t, "first", rules[0].Name())
	assert.Equal(t, "second", rules[1].Name())
	assert.Equal(t, "third", rules[2].Name())
}

func TestRuleRepository_IncrementStats(t *testing.T) {
	repo := NewRuleRepository(setupTestDB(t))
	ctx := context.Background()

	rule := createTestRule(t, "counted", 1)
	require.NoError(t, repo.Save(ctx, rule))

	require.NoError(t, repo.IncrementStats(ctx, rule.ID(), true, 120*time.Millisecond))
	require.NoError(t, repo.IncrementStats(ctx, rule.ID(), true, 80*time.Millisecond))
	require.NoError(t, repo.IncrementStats(ctx, rule.ID(), false, 40*time.Millisecond))

	found, err := repo.GetByID(ctx, rule.ID())
	require.NoError(t, err)

	stats := found.Stats().Snapshot()
	assert.Equal(t, int64(3), stats.ExecutionCount)
	assert.Equal(t, int64(2), stats.SuccessCount)
	assert.Equal(t, int64(1), stats.FailureCount)
	assert.Equal(t, 80*time.Millisecond, stats.AverageExecutionTime)
}

func TestRuleRepository_IncrementStats_UnknownRule(t *testing.T) {
	repo := NewRuleRepository(setupTestDB(t))

	err := repo.IncrementStats(context.Background(), 999, true, time.Millisecond)
	require.Error(t, err)
}

func TestRuleRepository_Update(t *testing.T) {
	repo := NewRuleRepository(setupTestDB(t))
	ctx := context.Background()

	rule := createTestRule(t, "toggled", 1)
	require.NoError(t, repo.Save(ctx, rule))

	require.NoError(t, rule.Activate())
	rule.SetStopOnMatch(true)
	require.NoError(t, repo.Update(ctx, rule))

	found, err := repo.GetByID(ctx, rule.ID())
	require.NoError(t, err)
	assert.True(t, found.IsActive())
	assert.True(t, found.StopOnMatch())
}

func TestRuleRepository_Delete(t *testing.T) {
	repo := NewRuleRepository(setupTestDB(t))
	ctx := context.Background()

	rule := createTestRule(t, "doomed", 1)
	require.NoError(t, repo.Save(ctx, rule))

	require.NoError(t, repo.Delete(ctx, rule.ID()))

	_, err := repo.GetByID(ctx, rule.ID())
	require.Error(t, err)

	err = repo.Delete(ctx, rule.ID())
	require.Error(t, err)
}
