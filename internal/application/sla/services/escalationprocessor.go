package services

import (
	"context"
	"fmt"

	autoservices "flowdesk/internal/application/automation/services"
	slausecases "flowdesk/internal/application/sla/usecases"
	"flowdesk/internal/domain/automation"
	"flowdesk/internal/domain/sla"
	"flowdesk/internal/shared/errors"
	"flowdesk/internal/shared/logger"
)

// ActionDispatcher runs an escalation threshold's action list.
type ActionDispatcher interface {
	Execute(ctx context.Context, actx autoservices.ActionContext, actions []automation.Action) autoservices.ExecutionReport
}

// EscalationProcessor reacts to fired deadlines: thresholds raise an
// sla_warning event and run their attached actions, breaches delegate to
// the breach check. A threshold fires at most once per ticket because the
// escalation level is monotonic.
type EscalationProcessor struct {
	states      sla.StateRepository
	tickets     slausecases.TicketSnapshotProvider
	gateway     slausecases.AutomationGateway
	dispatcher  ActionDispatcher
	checkBreach slausecases.CheckBreachExecutor
	logger      logger.Interface
}

func NewEscalationProcessor(
	states sla.StateRepository,
	tickets slausecases.TicketSnapshotProvider,
	gateway slausecases.AutomationGateway,
	dispatcher ActionDispatcher,
	checkBreach slausecases.CheckBreachExecutor,
	log logger.Interface,
) *EscalationProcessor {
	return &EscalationProcessor{
		states:      states,
		tickets:     tickets,
		gateway:     gateway,
		dispatcher:  dispatcher,
		checkBreach: checkBreach,
		logger:      log,
	}
}

func (p *EscalationProcessor) ProcessThreshold(ctx context.Context, ticketID uint, percent int, actions []automation.Action) error {
	state, err := p.states.GetByTicketID(ctx, ticketID)
	if err != nil {
		if errors.IsNotFoundError(err) {
			// Ticket closed between arming and firing.
			p.logger.Debugw("threshold fired for vanished state", "ticket_id", ticketID)
			return nil
		}
		return fmt.Errorf("load SLA state: %w", err)
	}
	if state.IsPaused() {
		p.logger.Debugw("threshold fired for paused state, skipping",
			"ticket_id", ticketID, "percent", percent)
		return nil
	}
	if !state.RaiseEscalationLevel(percent) {
		// Already fired at this or a higher level.
		return nil
	}
	if err := p.states.Update(ctx, state); err != nil {
		return fmt.Errorf("persist escalation level: %w", err)
	}

	p.logger.Warnw("SLA escalation threshold reached",
		"ticket_id", ticketID,
		"percent", percent,
		"resolution_due", state.ResolutionDue())

	snap, err := p.tickets.GetSnapshot(ctx, ticketID)
	if err != nil {
		return fmt.Errorf("snapshot ticket: %w", err)
	}

	if err := p.gateway.HandleEvent(ctx, automation.TriggerSLAWarning, snap); err != nil {
		p.logger.Errorw("failed to raise sla_warning event",
			"ticket_id", ticketID, "error", err)
	}

	if len(actions) > 0 {
		report := p.dispatcher.Execute(ctx, autoservices.ActionContext{
			ExecutionID: fmt.Sprintf("sla:%d:%d", ticketID, percent),
			Trigger:     automation.TriggerSLAWarning,
			Ticket:      snap,
		}, actions)
		if !report.Succeeded() {
			p.logger.Errorw("threshold actions did not all succeed",
				"ticket_id", ticketID, "percent", percent)
		}
	}

	return nil
}

func (p *EscalationProcessor) ProcessBreach(ctx context.Context, ticketID uint) error {
	result, err := p.checkBreach.Execute(ctx, slausecases.CheckBreachCommand{TicketID: ticketID})
	if err != nil {
		if errors.IsNotFoundError(err) {
			return nil
		}
		return err
	}
	if result.NewlyBreached {
		p.logger.Warnw("breach deadline confirmed", "ticket_id", ticketID)
	}
	return nil
}
