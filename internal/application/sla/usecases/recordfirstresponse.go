package usecases

import (
	"context"
	"time"

	"flowdesk/internal/domain/sla"
	"flowdesk/internal/shared/errors"
	"flowdesk/internal/shared/logger"
)

type RecordFirstResponseCommand struct {
	TicketID    uint
	RespondedAt time.Time
}

type RecordFirstResponseResult struct {
	TicketID      uint      `json:"ticket_id"`
	RespondedAt   time.Time `json:"responded_at"`
	ResolutionDue time.Time `json:"resolution_due"`
}

// RecordFirstResponseUseCase fulfills the first-response target; from then
// on only the resolution due date can breach.
type RecordFirstResponseUseCase struct {
	states sla.StateRepository
	logger logger.Interface
}

func NewRecordFirstResponseUseCase(states sla.StateRepository, log logger.Interface) *RecordFirstResponseUseCase {
	return &RecordFirstResponseUseCase{states: states, logger: log}
}

func (uc *RecordFirstResponseUseCase) Execute(ctx context.Context, cmd RecordFirstResponseCommand) (*RecordFirstResponseResult, error) {
	if cmd.TicketID == 0 {
		return nil, errors.NewValidationError("ticket ID is required")
	}
	if cmd.RespondedAt.IsZero() {
		cmd.RespondedAt = time.Now().UTC()
	}

	state, err := uc.states.GetByTicketID(ctx, cmd.TicketID)
	if err != nil {
		uc.logger.Errorw("failed to find SLA state", "ticket_id", cmd.TicketID, "error", err)
		return nil, errors.NewNotFoundError("SLA state not found")
	}

	if err := state.MarkFirstResponse(cmd.RespondedAt); err != nil {
		// Already marked is fine: agents can reply more than once.
		uc.logger.Debugw("first response already recorded", "ticket_id", cmd.TicketID)
		return &RecordFirstResponseResult{
			TicketID:      state.TicketID(),
			RespondedAt:   *state.FirstResponseAt(),
			ResolutionDue: state.ResolutionDue(),
		}, nil
	}

	if err := uc.states.Update(ctx, state); err != nil {
		uc.logger.Errorw("failed to update SLA state", "ticket_id", cmd.TicketID, "error", err)
		return nil, errors.NewInternalError("failed to update SLA state")
	}

	uc.logger.Infow("first response recorded",
		"ticket_id", cmd.TicketID, "responded_at", cmd.RespondedAt)

	return &RecordFirstResponseResult{
		TicketID:      state.TicketID(),
		RespondedAt:   cmd.RespondedAt.UTC(),
		ResolutionDue: state.ResolutionDue(),
	}, nil
}
