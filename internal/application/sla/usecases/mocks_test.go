package usecases

import (
	"context"

	"flowdesk/internal/domain/automation"
	"flowdesk/internal/domain/sla"
	"flowdesk/internal/domain/ticket"
)

type mockStateRepository struct {
	SaveFunc             func(ctx context.Context, state *sla.TicketSLAState) error
	UpdateFunc           func(ctx context.Context, state *sla.TicketSLAState) error
	DeleteByTicketIDFunc func(ctx context.Context, ticketID uint) error
	GetByTicketIDFunc    func(ctx context.Context, ticketID uint) (*sla.TicketSLAState, error)
	ListActiveFunc       func(ctx context.Context) ([]*sla.TicketSLAState, error)
}

func (m *mockStateRepository) Save(ctx context.Context, state *sla.TicketSLAState) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, state)
	}
	return nil
}

func (m *mockStateRepository) Update(ctx context.Context, state *sla.TicketSLAState) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, state)
	}
	return nil
}

func (m *mockStateRepository) DeleteByTicketID(ctx context.Context, ticketID uint) error {
	if m.DeleteByTicketIDFunc != nil {
		return m.DeleteByTicketIDFunc(ctx, ticketID)
	}
	return nil
}

func (m *mockStateRepository) GetByTicketID(ctx context.Context, ticketID uint) (*sla.TicketSLAState, error) {
	if m.GetByTicketIDFunc != nil {
		return m.GetByTicketIDFunc(ctx, ticketID)
	}
	return nil, nil
}

func (m *mockStateRepository) ListActive(ctx context.Context) ([]*sla.TicketSLAState, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx)
	}
	return nil, nil
}

type mockPolicyRepository struct {
	SaveFunc                     func(ctx context.Context, policy *sla.Policy) error
	UpdateFunc                   func(ctx context.Context, policy *sla.Policy) error
	GetByIDFunc                  func(ctx context.Context, id uint) (*sla.Policy, error)
	ListActiveByOrganizationFunc func(ctx context.Context, organizationID uint) ([]*sla.Policy, error)
}

func (m *mockPolicyRepository) Save(ctx context.Context, policy *sla.Policy) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, policy)
	}
	return nil
}

func (m *mockPolicyRepository) Update(ctx context.Context, policy *sla.Policy) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, policy)
	}
	return nil
}

func (m *mockPolicyRepository) GetByID(ctx context.Context, id uint) (*sla.Policy, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockPolicyRepository) ListActiveByOrganization(ctx context.Context, organizationID uint) ([]*sla.Policy, error) {
	if m.ListActiveByOrganizationFunc != nil {
		return m.ListActiveByOrganizationFunc(ctx, organizationID)
	}
	return nil, nil
}

type mockCalendarRepository struct {
	SaveFunc               func(ctx context.Context, cal *sla.Calendar) error
	UpdateFunc             func(ctx context.Context, cal *sla.Calendar) error
	GetByIDFunc            func(ctx context.Context, id uint) (*sla.Calendar, error)
	ListByOrganizationFunc func(ctx context.Context, organizationID uint) ([]*sla.Calendar, error)
}

func (m *mockCalendarRepository) Save(ctx context.Context, cal *sla.Calendar) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, cal)
	}
	return nil
}

func (m *mockCalendarRepository) Update(ctx context.Context, cal *sla.Calendar) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, cal)
	}
	return nil
}

func (m *mockCalendarRepository) GetByID(ctx context.Context, id uint) (*sla.Calendar, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockCalendarRepository) ListByOrganization(ctx context.Context, organizationID uint) ([]*sla.Calendar, error) {
	if m.ListByOrganizationFunc != nil {
		return m.ListByOrganizationFunc(ctx, organizationID)
	}
	return nil, nil
}

type mockDeadlineScheduler struct {
	ScheduleFunc func(ctx context.Context, state *sla.TicketSLAState, policy *sla.Policy) error
	CancelFunc   func(ticketID uint)
}

func (m *mockDeadlineScheduler) Schedule(ctx context.Context, state *sla.TicketSLAState, policy *sla.Policy) error {
	if m.ScheduleFunc != nil {
		return m.ScheduleFunc(ctx, state, policy)
	}
	return nil
}

func (m *mockDeadlineScheduler) Cancel(ticketID uint) {
	if m.CancelFunc != nil {
		m.CancelFunc(ticketID)
	}
}

type mockSnapshotProvider struct {
	GetSnapshotFunc func(ctx context.Context, ticketID uint) (ticket.Snapshot, error)
}

func (m *mockSnapshotProvider) GetSnapshot(ctx context.Context, ticketID uint) (ticket.Snapshot, error) {
	if m.GetSnapshotFunc != nil {
		return m.GetSnapshotFunc(ctx, ticketID)
	}
	return ticket.Snapshot{ID: ticketID, OrganizationID: 1}, nil
}

type mockAutomationGateway struct {
	HandleEventFunc func(ctx context.Context, trigger automation.TriggerType, snap ticket.Snapshot) error
}

func (m *mockAutomationGateway) HandleEvent(ctx context.Context, trigger automation.TriggerType, snap ticket.Snapshot) error {
	if m.HandleEventFunc != nil {
		return m.HandleEventFunc(ctx, trigger, snap)
	}
	return nil
}
