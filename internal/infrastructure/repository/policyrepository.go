package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"flowdesk/internal/domain/sla"
	"flowdesk/internal/infrastructure/persistence/mappers"
	"flowdesk/internal/infrastructure/persistence/models"
	db "flowdesk/internal/shared/db"
	"flowdesk/internal/shared/errors"
)

// PolicyRepository implements the sla.PolicyRepository interface.
type PolicyRepository struct {
	db     *gorm.DB
	mapper mappers.PolicyMapper
}

// NewPolicyRepository creates a new SLA policy repository instance.
func NewPolicyRepository(gormDB *gorm.DB) sla.PolicyRepository {
	return &PolicyRepository{
		db:     gormDB,
		mapper: mappers.NewPolicyMapper(),
	}
}

func (r *PolicyRepository) Save(ctx context.Context, policy *sla.Policy) error {
	model, err := r.mapper.ToModel(policy)
	if err != nil {
		return fmt.Errorf("failed to map policy entity: %w", err)
	}
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(model).Error; err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") || strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return errors.NewConflictError("policy already exists")
		}
		return fmt.Errorf("failed to save policy: %w", err)
	}

	return policy.SetID(model.ID)
}

func (r *PolicyRepository) Update(ctx context.Context, policy *sla.Policy) error {
	model, err := r.mapper.ToModel(policy)
	if err != nil {
		return fmt.Errorf("failed to map policy entity: %w", err)
	}
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.
		Model(&models.PolicyModel{}).
		Where("id = ?", model.ID).
		Select("name", "first_response_minutes", "resolution_minutes",
			"calendar_id", "thresholds", "is_active", "version").
		Updates(model)

	if result.Error != nil {
		return fmt.Errorf("failed to update policy: %w", result.Error)
	}

	return nil
}

func (r *PolicyRepository) GetByID(ctx context.Context, id uint) (*sla.Policy, error) {
	var model models.PolicyModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("policy not found")
		}
		return nil, fmt.Errorf("failed to find policy: %w", err)
	}

	return r.mapper.ToDomain(&model)
}

func (r *PolicyRepository) ListActiveByOrganization(ctx context.Context, organizationID uint) ([]*sla.Policy, error) {
	var list []models.PolicyModel
	tx := db.GetTxFromContext(ctx, r.db)

	err := tx.
		Where("organization_id = ? AND is_active = ?", organizationID, true).
		Order("id ASC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active policies: %w", err)
	}

	policies := make([]*sla.Policy, 0, len(list))
	for i := range list {
		policy, err := r.mapper.ToDomain(&list[i])
		if err != nil {
			return nil, err
		}
		policies = append(policies, policy)
	}

	return policies, nil
}
