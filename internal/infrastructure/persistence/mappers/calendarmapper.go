package mappers

import (
	"encoding/json"
	"fmt"
	"time"

	"flowdesk/internal/domain/sla"
	"flowdesk/internal/infrastructure/persistence/models"
)

// CalendarMapper handles the conversion between Calendar domain entities and persistence models.
type CalendarMapper interface {
	// ToModel converts a calendar domain entity to a persistence model.
	ToModel(cal *sla.Calendar) (*models.CalendarModel, error)

	// ToDomain converts a calendar persistence model to a domain entity.
	ToDomain(model *models.CalendarModel) (*sla.Calendar, error)
}

// CalendarMapperImpl is the concrete implementation of CalendarMapper.
type CalendarMapperImpl struct{}

// NewCalendarMapper creates a new CalendarMapper.
func NewCalendarMapper() CalendarMapper {
	return &CalendarMapperImpl{}
}

// ToModel converts a calendar domain entity to a persistence model.
func (m *CalendarMapperImpl) ToModel(cal *sla.Calendar) (*models.CalendarModel, error) {
	model := &models.CalendarModel{
		ID:             cal.ID(),
		SID:            cal.SID(),
		OrganizationID: cal.OrganizationID(),
		Name:           cal.Name(),
		Timezone:       cal.Timezone(),
		Continuous:     cal.IsContinuous(),
		Version:        cal.Version(),
		CreatedAt:      cal.CreatedAt().UnixMilli(),
		UpdatedAt:      cal.UpdatedAt().UnixMilli(),
	}

	if weekly := cal.WeeklyWindows(); len(weekly) > 0 {
		weeklyJSON, err := json.Marshal(weekly)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal weekly windows: %w", err)
		}
		model.WeeklyWindows = weeklyJSON
	}

	if holidays := cal.Holidays(); len(holidays) > 0 {
		holidaysJSON, err := json.Marshal(holidays)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal holidays: %w", err)
		}
		model.Holidays = holidaysJSON
	}

	return model, nil
}

// ToDomain converts a calendar persistence model to a domain entity.
func (m *CalendarMapperImpl) ToDomain(model *models.CalendarModel) (*sla.Calendar, error) {
	var weekly map[time.Weekday][]sla.Window
	if len(model.WeeklyWindows) > 0 {
		if err := json.Unmarshal(model.WeeklyWindows, &weekly); err != nil {
			return nil, fmt.Errorf("failed to unmarshal weekly windows for calendar %d: %w", model.ID, err)
		}
	}

	var holidays []sla.Holiday
	if len(model.Holidays) > 0 {
		if err := json.Unmarshal(model.Holidays, &holidays); err != nil {
			return nil, fmt.Errorf("failed to unmarshal holidays for calendar %d: %w", model.ID, err)
		}
	}

	return sla.ReconstructCalendar(
		model.ID,
		model.SID,
		model.OrganizationID,
		model.Name,
		model.Timezone,
		weekly,
		holidays,
		model.Continuous,
		model.Version,
		time.UnixMilli(model.CreatedAt).UTC(),
		time.UnixMilli(model.UpdatedAt).UTC(),
	)
}
