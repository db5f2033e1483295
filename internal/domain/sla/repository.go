package sla

import "context"

// CalendarRepository is the persistence port for business calendars.
type CalendarRepository interface {
	Save(ctx context.Context, cal *Calendar) error
	Update(ctx context.Context, cal *Calendar) error
	GetByID(ctx context.Context, id uint) (*Calendar, error)
	ListByOrganization(ctx context.Context, organizationID uint) ([]*Calendar, error)
}

// PolicyRepository is the persistence port for SLA policies.
type PolicyRepository interface {
	Save(ctx context.Context, policy *Policy) error
	Update(ctx context.Context, policy *Policy) error
	GetByID(ctx context.Context, id uint) (*Policy, error)
	ListActiveByOrganization(ctx context.Context, organizationID uint) ([]*Policy, error)
}

// StateRepository is the persistence port for per-ticket SLA state.
type StateRepository interface {
	Save(ctx context.Context, state *TicketSLAState) error
	Update(ctx context.Context, state *TicketSLAState) error
	// DeleteByTicketID discards state when the ticket reaches a terminal
	// status.
	DeleteByTicketID(ctx context.Context, ticketID uint) error
	GetByTicketID(ctx context.Context, ticketID uint) (*TicketSLAState, error)
	// ListActive returns every non-paused, non-breached state. The
	// escalation scheduler uses it to rebuild its heap on startup.
	ListActive(ctx context.Context) ([]*TicketSLAState, error)
}
