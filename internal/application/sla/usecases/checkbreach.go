package usecases

import (
	"context"
	"time"

	"flowdesk/internal/domain/automation"
	"flowdesk/internal/domain/sla"
	"flowdesk/internal/domain/ticket"
	"flowdesk/internal/shared/errors"
	"flowdesk/internal/shared/logger"
)

// TicketSnapshotProvider materializes the snapshot consumed by the rule
// engine when the scheduler raises an SLA event.
type TicketSnapshotProvider interface {
	GetSnapshot(ctx context.Context, ticketID uint) (ticket.Snapshot, error)
}

// AutomationGateway feeds trigger events into the rule engine.
type AutomationGateway interface {
	HandleEvent(ctx context.Context, trigger automation.TriggerType, snap ticket.Snapshot) error
}

type CheckBreachCommand struct {
	TicketID uint
	Now      time.Time
}

type CheckBreachResult struct {
	TicketID      uint `json:"ticket_id"`
	Breached      bool `json:"breached"`
	NewlyBreached bool `json:"newly_breached"`
}

// CheckBreachUseCase compares a ticket's outstanding due dates against the
// clock. A transition into breach is persisted and raised into the rule
// engine as an sla_breach event exactly once.
type CheckBreachUseCase struct {
	states  sla.StateRepository
	tickets TicketSnapshotProvider
	gateway AutomationGateway
	logger  logger.Interface
}

func NewCheckBreachUseCase(
	states sla.StateRepository,
	tickets TicketSnapshotProvider,
	gateway AutomationGateway,
	log logger.Interface,
) *CheckBreachUseCase {
	return &CheckBreachUseCase{states: states, tickets: tickets, gateway: gateway, logger: log}
}

func (uc *CheckBreachUseCase) Execute(ctx context.Context, cmd CheckBreachCommand) (*CheckBreachResult, error) {
	if cmd.TicketID == 0 {
		return nil, errors.NewValidationError("ticket ID is required")
	}
	if cmd.Now.IsZero() {
		cmd.Now = time.Now().UTC()
	}

	state, err := uc.states.GetByTicketID(ctx, cmd.TicketID)
	if err != nil {
		uc.logger.Errorw("failed to find SLA state", "ticket_id", cmd.TicketID, "error", err)
		return nil, errors.NewNotFoundError("SLA state not found")
	}

	wasBreached := state.IsBreached()
	breached := state.CheckBreach(cmd.Now)
	newlyBreached := breached && !wasBreached

	if !newlyBreached {
		return &CheckBreachResult{TicketID: cmd.TicketID, Breached: breached}, nil
	}

	if err := uc.states.Update(ctx, state); err != nil {
		uc.logger.Errorw("failed to persist breach", "ticket_id", cmd.TicketID, "error", err)
		return nil, errors.NewInternalError("failed to persist breach")
	}

	uc.logger.Warnw("SLA breached",
		"ticket_id", cmd.TicketID,
		"first_response_due", state.FirstResponseDue(),
		"resolution_due", state.ResolutionDue())

	snap, err := uc.tickets.GetSnapshot(ctx, cmd.TicketID)
	if err != nil {
		uc.logger.Errorw("failed to snapshot ticket for breach event",
			"ticket_id", cmd.TicketID, "error", err)
		return &CheckBreachResult{TicketID: cmd.TicketID, Breached: true, NewlyBreached: true}, nil
	}
	if err := uc.gateway.HandleEvent(ctx, automation.TriggerSLABreach, snap); err != nil {
		uc.logger.Errorw("failed to raise breach event",
			"ticket_id", cmd.TicketID, "error", err)
	}

	return &CheckBreachResult{TicketID: cmd.TicketID, Breached: true, NewlyBreached: true}, nil
}
