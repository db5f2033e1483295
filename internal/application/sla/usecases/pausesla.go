package usecases

import (
	"context"
	"time"

	"flowdesk/internal/domain/sla"
	"flowdesk/internal/shared/errors"
	"flowdesk/internal/shared/logger"
)

type PauseSLACommand struct {
	TicketID uint
	PausedAt time.Time
}

type PauseSLAResult struct {
	TicketID         uint   `json:"ticket_id"`
	RemainingMinutes int    `json:"remaining_minutes"`
	PausedTarget     string `json:"paused_target"`
}

// PauseSLAUseCase freezes a ticket's SLA clock, typically when its status
// enters pending. The scheduler entries are cancelled so a paused ticket
// can never fire a threshold or breach.
type PauseSLAUseCase struct {
	states    sla.StateRepository
	policies  sla.PolicyRepository
	calendars sla.CalendarRepository
	scheduler DeadlineScheduler
	logger    logger.Interface
}

func NewPauseSLAUseCase(
	states sla.StateRepository,
	policies sla.PolicyRepository,
	calendars sla.CalendarRepository,
	scheduler DeadlineScheduler,
	log logger.Interface,
) *PauseSLAUseCase {
	return &PauseSLAUseCase{
		states:    states,
		policies:  policies,
		calendars: calendars,
		scheduler: scheduler,
		logger:    log,
	}
}

func (uc *PauseSLAUseCase) Execute(ctx context.Context, cmd PauseSLACommand) (*PauseSLAResult, error) {
	if cmd.TicketID == 0 {
		return nil, errors.NewValidationError("ticket ID is required")
	}
	if cmd.PausedAt.IsZero() {
		cmd.PausedAt = time.Now().UTC()
	}

	state, err := uc.states.GetByTicketID(ctx, cmd.TicketID)
	if err != nil {
		uc.logger.Errorw("failed to find SLA state", "ticket_id", cmd.TicketID, "error", err)
		return nil, errors.NewNotFoundError("SLA state not found")
	}

	policy, err := uc.policies.GetByID(ctx, state.PolicyID())
	if err != nil {
		uc.logger.Errorw("failed to find policy", "policy_id", state.PolicyID(), "error", err)
		return nil, errors.NewNotFoundError("SLA policy not found")
	}
	cal, err := resolveCalendar(ctx, uc.calendars, policy)
	if err != nil {
		return nil, err
	}

	if err := state.Pause(cmd.PausedAt, cal); err != nil {
		uc.logger.Warnw("pause rejected", "ticket_id", cmd.TicketID, "error", err)
		return nil, errors.NewConflictError(err.Error())
	}

	if err := uc.states.Update(ctx, state); err != nil {
		uc.logger.Errorw("failed to update SLA state", "ticket_id", cmd.TicketID, "error", err)
		return nil, errors.NewInternalError("failed to update SLA state")
	}

	uc.scheduler.Cancel(cmd.TicketID)

	uc.logger.Infow("SLA clock paused",
		"ticket_id", cmd.TicketID,
		"remaining_minutes", *state.RemainingMinutes(),
		"paused_target", state.PausedTarget())

	return &PauseSLAResult{
		TicketID:         state.TicketID(),
		RemainingMinutes: *state.RemainingMinutes(),
		PausedTarget:     string(state.PausedTarget()),
	}, nil
}
