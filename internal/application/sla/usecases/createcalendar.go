package usecases

import (
	"context"
	"time"

	"flowdesk/internal/domain/sla"
	"flowdesk/internal/shared/errors"
	"flowdesk/internal/shared/id"
	"flowdesk/internal/shared/logger"
)

type CreateCalendarCommand struct {
	OrganizationID uint
	Name           string
	Timezone       string
	Weekly         map[time.Weekday][]sla.Window
	Holidays       []sla.Holiday
}

type CreateCalendarResult struct {
	CalendarID uint   `json:"calendar_id"`
	SID        string `json:"sid"`
	Name       string `json:"name"`
	Timezone   string `json:"timezone"`
}

// CreateCalendarUseCase persists a new business calendar. Window overlap
// and timezone validation happen in the domain constructor, so a calendar
// that reaches the store is always computable.
type CreateCalendarUseCase struct {
	calendars sla.CalendarRepository
	logger    logger.Interface
}

func NewCreateCalendarUseCase(calendars sla.CalendarRepository, log logger.Interface) *CreateCalendarUseCase {
	return &CreateCalendarUseCase{calendars: calendars, logger: log}
}

func (uc *CreateCalendarUseCase) Execute(ctx context.Context, cmd CreateCalendarCommand) (*CreateCalendarResult, error) {
	uc.logger.Infow("executing create calendar use case",
		"organization_id", cmd.OrganizationID,
		"name", cmd.Name,
		"timezone", cmd.Timezone)

	cal, err := sla.NewCalendar(cmd.OrganizationID, cmd.Name, cmd.Timezone, cmd.Weekly, cmd.Holidays)
	if err != nil {
		uc.logger.Warnw("invalid create calendar command", "error", err)
		return nil, errors.NewValidationError(err.Error())
	}

	sid, err := id.GenerateWithPrefix(id.PrefixCalendar, id.DefaultLength)
	if err != nil {
		uc.logger.Errorw("failed to generate calendar SID", "error", err)
		return nil, errors.NewInternalError("failed to generate calendar identifier")
	}
	if err := cal.SetSID(sid); err != nil {
		return nil, errors.NewInternalError(err.Error())
	}

	if err := uc.calendars.Save(ctx, cal); err != nil {
		uc.logger.Errorw("failed to save calendar", "error", err)
		if errors.IsDuplicateError(err) {
			return nil, errors.NewConflictError("calendar already exists")
		}
		return nil, errors.NewInternalError("failed to save calendar")
	}

	uc.logger.Infow("calendar created", "calendar_id", cal.ID(), "sid", cal.SID())

	return &CreateCalendarResult{
		CalendarID: cal.ID(),
		SID:        cal.SID(),
		Name:       cal.Name(),
		Timezone:   cal.Timezone(),
	}, nil
}
