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

// SLAStateRepository implements the sla.StateRepository interface.
type SLAStateRepository struct {
	db     *gorm.DB
	mapper mappers.SLAStateMapper
}

// NewSLAStateRepository creates a new ticket SLA state repository instance.
func NewSLAStateRepository(gormDB *gorm.DB) sla.StateRepository {
	return &SLAStateRepository{
		db:     gormDB,
		mapper: mappers.NewSLAStateMapper(),
	}
}

func (r *SLAStateRepository) Save(ctx context.Context, state *sla.TicketSLAState) error {
	model := r.mapper.ToModel(state)
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(model).Error; err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") || strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return errors.NewConflictError("SLA state already exists for ticket")
		}
		return fmt.Errorf("failed to save SLA state: %w", err)
	}

	return state.SetID(model.ID)
}

func (r *SLAStateRepository) Update(ctx context.Context, state *sla.TicketSLAState) error {
	model := r.mapper.ToModel(state)
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.
		Model(&models.SLAStateModel{}).
		Where("id = ?", model.ID).
		Select("first_response_due", "resolution_due", "first_response_at",
			"paused_at", "remaining_minutes", "paused_target", "breached",
			"escalation_level", "version").
		Updates(model)

	if result.Error != nil {
		return fmt.Errorf("failed to update SLA state: %w", result.Error)
	}

	return nil
}

func (r *SLAStateRepository) DeleteByTicketID(ctx context.Context, ticketID uint) error {
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.
		Where("ticket_id = ?", ticketID).
		Delete(&models.SLAStateModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete SLA state: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("SLA state not found")
	}

	return nil
}

func (r *SLAStateRepository) GetByTicketID(ctx context.Context, ticketID uint) (*sla.TicketSLAState, error) {
	var model models.SLAStateModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Where("ticket_id = ?", ticketID).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("SLA state not found")
		}
		return nil, fmt.Errorf("failed to find SLA state: %w", err)
	}

	return r.mapper.ToDomain(&model)
}

func (r *SLAStateRepository) ListActive(ctx context.Context) ([]*sla.TicketSLAState, error) {
	var list []models.SLAStateModel
	tx := db.GetTxFromContext(ctx, r.db)

	err := tx.
		Where("paused_at IS NULL AND breached = ?", false).
		Order("resolution_due ASC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active SLA states: %w", err)
	}

	states := make([]*sla.TicketSLAState, 0, len(list))
	for i := range list {
		state, err := r.mapper.ToDomain(&list[i])
		if err != nil {
			return nil, err
		}
		states = append(states, state)
	}

	return states, nil
}
