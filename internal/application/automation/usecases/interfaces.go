package usecases

import (
	"context"

	"flowdesk/internal/application/automation/services"
	"flowdesk/internal/domain/automation"
)

// TicketLocker serializes rule processing per ticket. Lock blocks until the
// ticket's lock is held or ctx is done, and returns the release function.
type TicketLocker interface {
	Lock(ctx context.Context, ticketID uint) (func(), error)
}

// ActionDispatcher runs a matched rule's action list.
type ActionDispatcher interface {
	Execute(ctx context.Context, actx services.ActionContext, actions []automation.Action) services.ExecutionReport
}

type HandleTicketEventExecutor interface {
	Execute(ctx context.Context, cmd HandleTicketEventCommand) (*HandleTicketEventResult, error)
}

type CreateRuleExecutor interface {
	Execute(ctx context.Context, cmd CreateRuleCommand) (*CreateRuleResult, error)
}

type ActivateRuleExecutor interface {
	Execute(ctx context.Context, cmd ActivateRuleCommand) (*ActivateRuleResult, error)
}

type DeactivateRuleExecutor interface {
	Execute(ctx context.Context, cmd DeactivateRuleCommand) (*DeactivateRuleResult, error)
}

type GetRuleStatsExecutor interface {
	Execute(ctx context.Context, query GetRuleStatsQuery) (*GetRuleStatsResult, error)
}
