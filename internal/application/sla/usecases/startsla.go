package usecases

import (
	"context"
	"time"

	"flowdesk/internal/domain/sla"
	"flowdesk/internal/shared/errors"
	"flowdesk/internal/shared/logger"
)

type StartSLACommand struct {
	TicketID       uint
	OrganizationID uint
	PolicyID       uint
	CreatedAt      time.Time
}

type StartSLAResult struct {
	TicketID         uint      `json:"ticket_id"`
	PolicyID         uint      `json:"policy_id"`
	FirstResponseDue time.Time `json:"first_response_due"`
	ResolutionDue    time.Time `json:"resolution_due"`
}

// StartSLAUseCase opens the SLA clock for a newly created ticket: compute
// both due dates under the policy's calendar, persist the state and arm the
// escalation deadlines.
type StartSLAUseCase struct {
	policies  sla.PolicyRepository
	calendars sla.CalendarRepository
	states    sla.StateRepository
	scheduler DeadlineScheduler
	logger    logger.Interface
}

func NewStartSLAUseCase(
	policies sla.PolicyRepository,
	calendars sla.CalendarRepository,
	states sla.StateRepository,
	scheduler DeadlineScheduler,
	log logger.Interface,
) *StartSLAUseCase {
	return &StartSLAUseCase{
		policies:  policies,
		calendars: calendars,
		states:    states,
		scheduler: scheduler,
		logger:    log,
	}
}

func (uc *StartSLAUseCase) Execute(ctx context.Context, cmd StartSLACommand) (*StartSLAResult, error) {
	uc.logger.Infow("executing start SLA use case",
		"ticket_id", cmd.TicketID, "policy_id", cmd.PolicyID)

	if cmd.TicketID == 0 {
		return nil, errors.NewValidationError("ticket ID is required")
	}
	if cmd.PolicyID == 0 {
		return nil, errors.NewValidationError("policy ID is required")
	}
	if cmd.CreatedAt.IsZero() {
		cmd.CreatedAt = time.Now().UTC()
	}

	policy, err := uc.policies.GetByID(ctx, cmd.PolicyID)
	if err != nil {
		uc.logger.Errorw("failed to find policy", "policy_id", cmd.PolicyID, "error", err)
		return nil, errors.NewNotFoundError("SLA policy not found")
	}

	cal, err := resolveCalendar(ctx, uc.calendars, policy)
	if err != nil {
		uc.logger.Errorw("failed to resolve calendar",
			"policy_id", cmd.PolicyID, "calendar_id", policy.CalendarID(), "error", err)
		return nil, err
	}

	state, err := sla.StartState(cmd.TicketID, cmd.OrganizationID, policy, cal, cmd.CreatedAt)
	if err != nil {
		uc.logger.Errorw("failed to start SLA state", "ticket_id", cmd.TicketID, "error", err)
		return nil, errors.NewValidationError(err.Error())
	}

	if err := uc.states.Save(ctx, state); err != nil {
		uc.logger.Errorw("failed to save SLA state", "ticket_id", cmd.TicketID, "error", err)
		if errors.IsDuplicateError(err) {
			return nil, errors.NewConflictError("SLA state already exists for ticket")
		}
		return nil, errors.NewInternalError("failed to save SLA state")
	}

	if err := uc.scheduler.Schedule(ctx, state, policy); err != nil {
		uc.logger.Errorw("failed to schedule escalation deadlines",
			"ticket_id", cmd.TicketID, "error", err)
		return nil, errors.NewInternalError("failed to schedule escalation deadlines")
	}

	uc.logger.Infow("SLA clock started",
		"ticket_id", cmd.TicketID,
		"first_response_due", state.FirstResponseDue(),
		"resolution_due", state.ResolutionDue())

	return &StartSLAResult{
		TicketID:         state.TicketID(),
		PolicyID:         state.PolicyID(),
		FirstResponseDue: state.FirstResponseDue(),
		ResolutionDue:    state.ResolutionDue(),
	}, nil
}

// resolveCalendar loads the policy's calendar; a zero calendar ID selects
// the 24/7 sentinel.
func resolveCalendar(ctx context.Context, calendars sla.CalendarRepository, policy *sla.Policy) (*sla.Calendar, error) {
	if policy.CalendarID() == 0 {
		return sla.NewContinuousCalendar(policy.OrganizationID()), nil
	}
	cal, err := calendars.GetByID(ctx, policy.CalendarID())
	if err != nil {
		return nil, errors.NewNotFoundError("business calendar not found")
	}
	return cal, nil
}
