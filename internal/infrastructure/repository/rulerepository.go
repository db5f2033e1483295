package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"flowdesk/internal/domain/automation"
	"flowdesk/internal/infrastructure/persistence/mappers"
	"flowdesk/internal/infrastructure/persistence/models"
	db "flowdesk/internal/shared/db"
	"flowdesk/internal/shared/errors"
)

// RuleRepository implements the automation.RuleRepository interface.
type RuleRepository struct {
	db     *gorm.DB
	mapper mappers.RuleMapper
}

// NewRuleRepository creates a new automation rule repository instance.
func NewRuleRepository(gormDB *gorm.DB) automation.RuleRepository {
	return &RuleRepository{
		db:     gormDB,
		mapper: mappers.NewRuleMapper(),
	}
}

func (r *RuleRepository) Save(ctx context.Context, rule *automation.Rule) error {
	model, err := r.mapper.ToModel(rule)
	if err != nil {
		return fmt.Errorf("failed to map rule entity: %w", err)
	}
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(model).Error; err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") || strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return errors.NewConflictError("rule already exists")
		}
		return fmt.Errorf("failed to save rule: %w", err)
	}

	return rule.SetID(model.ID)
}

func (r *RuleRepository) Update(ctx context.Context, rule *automation.Rule) error {
	model, err := r.mapper.ToModel(rule)
	if err != nil {
		return fmt.Errorf("failed to map rule entity: %w", err)
	}
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.
		Model(&models.RuleModel{}).
		Where("id = ?", model.ID).
		Select("name", "trigger_type", "condition_tree", "actions",
			"execution_order", "is_active", "stop_on_match", "version").
		Updates(model)

	if result.Error != nil {
		return fmt.Errorf("failed to update rule: %w", result.Error)
	}

	// Note: RowsAffected may be 0 when updated values are identical to existing values.

	return nil
}

func (r *RuleRepository) Delete(ctx context.Context, ruleID uint) error {
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.Delete(&models.RuleModel{}, ruleID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete rule: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("rule not found")
	}

	return nil
}

func (r *RuleRepository) GetByID(ctx context.Context, ruleID uint) (*automation.Rule, error) {
	var model models.RuleModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.First(&model, ruleID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("rule not found")
		}
		return nil, fmt.Errorf("failed to find rule: %w", err)
	}

	return r.mapper.ToDomain(&model)
}

func (r *RuleRepository) ListActive(ctx context.Context, organizationID uint, trigger automation.TriggerType) ([]*automation.Rule, error) {
	var list []models.RuleModel
	tx := db.GetTxFromContext(ctx, r.db)

	err := tx.
		Where("organization_id = ? AND trigger_type = ? AND is_active = ?", organizationID, trigger.String(), true).
		Order("execution_order ASC, id ASC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active rules: %w", err)
	}

	rules := make([]*automation.Rule, 0, len(list))
	for i := range list {
		rule, err := r.mapper.ToDomain(&list[i])
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	return rules, nil
}

// IncrementStats applies one execution outcome atomically in the database
// so concurrent workers never lose counts to read-modify-write races.
func (r *RuleRepository) IncrementStats(ctx context.Context, ruleID uint, succeeded bool, duration time.Duration) error {
	tx := db.GetTxFromContext(ctx, r.db)

	updates := map[string]any{
		"execution_count":   gorm.Expr("execution_count + 1"),
		"total_duration_ms": gorm.Expr("total_duration_ms + ?", duration.Milliseconds()),
	}
	if succeeded {
		updates["success_count"] = gorm.Expr("success_count + 1")
	} else {
		updates["failure_count"] = gorm.Expr("failure_count + 1")
	}

	result := tx.
		Model(&models.RuleModel{}).
		Where("id = ?", ruleID).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to increment rule stats: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("rule not found")
	}

	return nil
}
