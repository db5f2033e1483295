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

// CalendarRepository implements the sla.CalendarRepository interface.
type CalendarRepository struct {
	db     *gorm.DB
	mapper mappers.CalendarMapper
}

// NewCalendarRepository creates a new business calendar repository instance.
func NewCalendarRepository(gormDB *gorm.DB) sla.CalendarRepository {
	return &CalendarRepository{
		db:     gormDB,
		mapper: mappers.NewCalendarMapper(),
	}
}

func (r *CalendarRepository) Save(ctx context.Context, cal *sla.Calendar) error {
	model, err := r.mapper.ToModel(cal)
	if err != nil {
		return fmt.Errorf("failed to map calendar entity: %w", err)
	}
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(model).Error; err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") || strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return errors.NewConflictError("calendar already exists")
		}
		return fmt.Errorf("failed to save calendar: %w", err)
	}

	return cal.SetID(model.ID)
}

func (r *CalendarRepository) Update(ctx context.Context, cal *sla.Calendar) error {
	model, err := r.mapper.ToModel(cal)
	if err != nil {
		return fmt.Errorf("failed to map calendar entity: %w", err)
	}
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.
		Model(&models.CalendarModel{}).
		Where("id = ?", model.ID).
		Select("name", "timezone", "weekly_windows", "holidays", "continuous", "version").
		Updates(model)

	if result.Error != nil {
		return fmt.Errorf("failed to update calendar: %w", result.Error)
	}

	return nil
}

func (r *CalendarRepository) GetByID(ctx context.Context, id uint) (*sla.Calendar, error) {
	var model models.CalendarModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("calendar not found")
		}
		return nil, fmt.Errorf("failed to find calendar: %w", err)
	}

	return r.mapper.ToDomain(&model)
}

func (r *CalendarRepository) ListByOrganization(ctx context.Context, organizationID uint) ([]*sla.Calendar, error) {
	var list []models.CalendarModel
	tx := db.GetTxFromContext(ctx, r.db)

	err := tx.
		Where("organization_id = ?", organizationID).
		Order("id ASC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	calendars := make([]*sla.Calendar, 0, len(list))
	for i := range list {
		cal, err := r.mapper.ToDomain(&list[i])
		if err != nil {
			return nil, err
		}
		calendars = append(calendars, cal)
	}

	return calendars, nil
}
