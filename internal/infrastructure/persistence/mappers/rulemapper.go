package mappers

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"flowdesk/internal/domain/automation"
	"flowdesk/internal/infrastructure/persistence/models"
)

// RuleMapper handles the conversion between Rule domain entities and persistence models.
type RuleMapper interface {
	// ToModel converts a rule domain entity to a persistence model.
	ToModel(rule *automation.Rule) (*models.RuleModel, error)

	// ToDomain converts a rule persistence model to a domain entity.
	ToDomain(model *models.RuleModel) (*automation.Rule, error)
}

// RuleMapperImpl is the concrete implementation of RuleMapper.
type RuleMapperImpl struct{}

// NewRuleMapper creates a new RuleMapper.
func NewRuleMapper() RuleMapper {
	return &RuleMapperImpl{}
}

// ToModel converts a rule domain entity to a persistence model.
func (m *RuleMapperImpl) ToModel(rule *automation.Rule) (*models.RuleModel, error) {
	actionsJSON, err := automation.MarshalActions(rule.Actions())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rule actions: %w", err)
	}

	stats := rule.Stats().Snapshot()

	model := &models.RuleModel{
		ID:              rule.ID(),
		SID:             rule.SID(),
		OrganizationID:  rule.OrganizationID(),
		Name:            rule.Name(),
		TriggerType:     rule.TriggerType().String(),
		Actions:         datatypes.JSON(actionsJSON),
		ExecutionOrder:  rule.ExecutionOrder(),
		IsActive:        rule.IsActive(),
		StopOnMatch:     rule.StopOnMatch(),
		ExecutionCount:  stats.ExecutionCount,
		SuccessCount:    stats.SuccessCount,
		FailureCount:    stats.FailureCount,
		TotalDurationMS: rule.Stats().TotalDuration().Milliseconds(),
		Version:         rule.Version(),
		CreatedAt:       rule.CreatedAt().UnixMilli(),
		UpdatedAt:       rule.UpdatedAt().UnixMilli(),
	}

	if tree := rule.ConditionTree(); tree != nil {
		treeJSON, err := json.Marshal(tree)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal condition tree: %w", err)
		}
		model.ConditionTree = treeJSON
	}

	return model, nil
}

// ToDomain converts a rule persistence model to a domain entity.
func (m *RuleMapperImpl) ToDomain(model *models.RuleModel) (*automation.Rule, error) {
	actions, err := automation.UnmarshalActions(model.Actions)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal actions for rule %d: %w", model.ID, err)
	}

	var tree *automation.ConditionNode
	if len(model.ConditionTree) > 0 {
		tree = &automation.ConditionNode{}
		if err := json.Unmarshal(model.ConditionTree, tree); err != nil {
			return nil, fmt.Errorf("failed to unmarshal condition tree for rule %d: %w", model.ID, err)
		}
	}

	stats := &automation.Stats{}
	stats.Seed(
		model.ExecutionCount,
		model.SuccessCount,
		model.FailureCount,
		time.Duration(model.TotalDurationMS)*time.Millisecond,
	)

	return automation.ReconstructRule(
		model.ID,
		model.SID,
		model.OrganizationID,
		model.Name,
		automation.TriggerType(model.TriggerType),
		tree,
		actions,
		model.ExecutionOrder,
		model.IsActive,
		model.StopOnMatch,
		stats,
		model.Version,
		time.UnixMilli(model.CreatedAt).UTC(),
		time.UnixMilli(model.UpdatedAt).UTC(),
	)
}
