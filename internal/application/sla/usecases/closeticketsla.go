package usecases

import (
	"context"

	"flowdesk/internal/domain/sla"
	"flowdesk/internal/shared/errors"
	"flowdesk/internal/shared/logger"
)

type CloseTicketSLACommand struct {
	TicketID uint
}

type CloseTicketSLAResult struct {
	TicketID uint `json:"ticket_id"`
	// Existed reports whether there was a clock to stop; closing a ticket
	// that never had SLA state is not an error.
	Existed bool `json:"existed"`
}

// CloseTicketSLAUseCase stops the clock when a ticket reaches a terminal
// status. Scheduler entries are cancelled before the state row is deleted
// so no timer can fire against a ticket that is already gone.
type CloseTicketSLAUseCase struct {
	states    sla.StateRepository
	scheduler DeadlineScheduler
	logger    logger.Interface
}

func NewCloseTicketSLAUseCase(states sla.StateRepository, scheduler DeadlineScheduler, log logger.Interface) *CloseTicketSLAUseCase {
	return &CloseTicketSLAUseCase{states: states, scheduler: scheduler, logger: log}
}

func (uc *CloseTicketSLAUseCase) Execute(ctx context.Context, cmd CloseTicketSLACommand) (*CloseTicketSLAResult, error) {
	if cmd.TicketID == 0 {
		return nil, errors.NewValidationError("ticket ID is required")
	}

	uc.scheduler.Cancel(cmd.TicketID)

	if _, err := uc.states.GetByTicketID(ctx, cmd.TicketID); err != nil {
		if errors.IsNotFoundError(err) {
			return &CloseTicketSLAResult{TicketID: cmd.TicketID, Existed: false}, nil
		}
		uc.logger.Errorw("failed to look up SLA state", "ticket_id", cmd.TicketID, "error", err)
		return nil, errors.NewInternalError("failed to look up SLA state")
	}

	if err := uc.states.DeleteByTicketID(ctx, cmd.TicketID); err != nil {
		uc.logger.Errorw("failed to delete SLA state", "ticket_id", cmd.TicketID, "error", err)
		return nil, errors.NewInternalError("failed to delete SLA state")
	}

	uc.logger.Infow("SLA clock stopped", "ticket_id", cmd.TicketID)
	return &CloseTicketSLAResult{TicketID: cmd.TicketID, Existed: true}, nil
}
