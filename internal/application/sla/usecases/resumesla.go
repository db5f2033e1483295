package usecases

import (
	"context"
	"time"

	"flowdesk/internal/domain/sla"
	"flowdesk/internal/shared/errors"
	"flowdesk/internal/shared/logger"
)

type ResumeSLACommand struct {
	TicketID  uint
	ResumedAt time.Time
}

type ResumeSLAResult struct {
	TicketID         uint      `json:"ticket_id"`
	FirstResponseDue time.Time `json:"first_response_due"`
	ResolutionDue    time.Time `json:"resolution_due"`
}

// ResumeSLAUseCase recomputes the paused due date from the snapshotted
// remaining business minutes and re-arms the escalation deadlines.
type ResumeSLAUseCase struct {
	states    sla.StateRepository
	policies  sla.PolicyRepository
	calendars sla.CalendarRepository
	scheduler DeadlineScheduler
	logger    logger.Interface
}

func NewResumeSLAUseCase(
	states sla.StateRepository,
	policies sla.PolicyRepository,
	calendars sla.CalendarRepository,
	scheduler DeadlineScheduler,
	log logger.Interface,
) *ResumeSLAUseCase {
	return &ResumeSLAUseCase{
		states:    states,
		policies:  policies,
		calendars: calendars,
		scheduler: scheduler,
		logger:    log,
	}
}

func (uc *ResumeSLAUseCase) Execute(ctx context.Context, cmd ResumeSLACommand) (*ResumeSLAResult, error) {
	if cmd.TicketID == 0 {
		return nil, errors.NewValidationError("ticket ID is required")
	}
	if cmd.ResumedAt.IsZero() {
		cmd.ResumedAt = time.Now().UTC()
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

	if err := state.Resume(cmd.ResumedAt, cal); err != nil {
		uc.logger.Warnw("resume rejected", "ticket_id", cmd.TicketID, "error", err)
		return nil, errors.NewConflictError(err.Error())
	}

	if err := uc.states.Update(ctx, state); err != nil {
		uc.logger.Errorw("failed to update SLA state", "ticket_id", cmd.TicketID, "error", err)
		return nil, errors.NewInternalError("failed to update SLA state")
	}

	if err := uc.scheduler.Schedule(ctx, state, policy); err != nil {
		uc.logger.Errorw("failed to re-arm escalation deadlines",
			"ticket_id", cmd.TicketID, "error", err)
		return nil, errors.NewInternalError("failed to schedule escalation deadlines")
	}

	uc.logger.Infow("SLA clock resumed",
		"ticket_id", cmd.TicketID,
		"first_response_due", state.FirstResponseDue(),
		"resolution_due", state.ResolutionDue())

	return &ResumeSLAResult{
		TicketID:         state.TicketID(),
		FirstResponseDue: state.FirstResponseDue(),
		ResolutionDue:    state.ResolutionDue(),
	}, nil
}
