package services

import (
	"context"
	"fmt"

	automationusecases "flowdesk/internal/application/automation/usecases"
	"flowdesk/internal/domain/automation"
	"flowdesk/internal/domain/ticket"
	"flowdesk/internal/shared/biztime"
)

// AutomationEventGateway feeds SLA lifecycle events back into the rule
// engine so sla_warning and sla_breach rules fire like any other trigger.
type AutomationEventGateway struct {
	handler automationusecases.HandleTicketEventExecutor
}

// NewAutomationEventGateway creates a new AutomationEventGateway instance.
func NewAutomationEventGateway(handler automationusecases.HandleTicketEventExecutor) *AutomationEventGateway {
	return &AutomationEventGateway{handler: handler}
}

// HandleEvent runs the rule engine for the given trigger and snapshot.
func (g *AutomationEventGateway) HandleEvent(ctx context.Context, trigger automation.TriggerType, snap ticket.Snapshot) error {
	cmd := automationusecases.HandleTicketEventCommand{
		Trigger:    trigger,
		Ticket:     snap,
		OccurredAt: biztime.NowUTC(),
	}

	if _, err := g.handler.Execute(ctx, cmd); err != nil {
		return fmt.Errorf("failed to handle %s event: %w", trigger, err)
	}
	return nil
}
