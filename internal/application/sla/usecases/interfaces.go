package usecases

import (
	"context"

	"flowdesk/internal/domain/sla"
)

// DeadlineScheduler is the port to the escalation scheduler: it tracks a
// ticket's threshold and breach deadlines and cancels them as a group.
type DeadlineScheduler interface {
	Schedule(ctx context.Context, state *sla.TicketSLAState, policy *sla.Policy) error
	Cancel(ticketID uint)
}

type CreateCalendarExecutor interface {
	Execute(ctx context.Context, cmd CreateCalendarCommand) (*CreateCalendarResult, error)
}

type CreatePolicyExecutor interface {
	Execute(ctx context.Context, cmd CreatePolicyCommand) (*CreatePolicyResult, error)
}

type ActivatePolicyExecutor interface {
	Execute(ctx context.Context, cmd ActivatePolicyCommand) (*ActivatePolicyResult, error)
}

type StartSLAExecutor interface {
	Execute(ctx context.Context, cmd StartSLACommand) (*StartSLAResult, error)
}

type RecordFirstResponseExecutor interface {
	Execute(ctx context.Context, cmd RecordFirstResponseCommand) (*RecordFirstResponseResult, error)
}

type PauseSLAExecutor interface {
	Execute(ctx context.Context, cmd PauseSLACommand) (*PauseSLAResult, error)
}

type ResumeSLAExecutor interface {
	Execute(ctx context.Context, cmd ResumeSLACommand) (*ResumeSLAResult, error)
}

type CloseTicketSLAExecutor interface {
	Execute(ctx context.Context, cmd CloseTicketSLACommand) (*CloseTicketSLAResult, error)
}

type CheckBreachExecutor interface {
	Execute(ctx context.Context, cmd CheckBreachCommand) (*CheckBreachResult, error)
}
