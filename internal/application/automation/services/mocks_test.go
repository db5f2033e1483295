package services

import (
	"context"

	"flowdesk/internal/domain/automation"
	"flowdesk/internal/domain/ticket"
)

type mockAssignmentResolver struct {
	ResolveFunc func(ctx context.Context, strategy automation.AssignStrategy, snap ticket.Snapshot) (uint, error)
}

func (m *mockAssignmentResolver) Resolve(ctx context.Context, strategy automation.AssignStrategy, snap ticket.Snapshot) (uint, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, strategy, snap)
	}
	return 1, nil
}

type mockFieldMutator struct {
	SetFieldFunc func(ctx context.Context, ticketID uint, field string, value any) error
	AssignFunc   func(ctx context.Context, ticketID uint, agentID uint) error
	EscalateFunc func(ctx context.Context, ticketID uint, level int) error
}

func (m *mockFieldMutator) SetField(ctx context.Context, ticketID uint, field string, value any) error {
	if m.SetFieldFunc != nil {
		return m.SetFieldFunc(ctx, ticketID, field, value)
	}
	return nil
}

func (m *mockFieldMutator) Assign(ctx context.Context, ticketID uint, agentID uint) error {
	if m.AssignFunc != nil {
		return m.AssignFunc(ctx, ticketID, agentID)
	}
	return nil
}

func (m *mockFieldMutator) Escalate(ctx context.Context, ticketID uint, level int) error {
	if m.EscalateFunc != nil {
		return m.EscalateFunc(ctx, ticketID, level)
	}
	return nil
}

type mockNotifier struct {
	SendFunc func(ctx context.Context, templateName string, audience string, snap ticket.Snapshot) error
}

func (m *mockNotifier) Send(ctx context.Context, templateName string, audience string, snap ticket.Snapshot) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, templateName, audience, snap)
	}
	return nil
}

type mockWebhookSender struct {
	SendFunc func(ctx context.Context, endpoint string, payload []byte) error
}

func (m *mockWebhookSender) Send(ctx context.Context, endpoint string, payload []byte) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, endpoint, payload)
	}
	return nil
}

type mockIdempotencyStore struct {
	AcquireFunc func(ctx context.Context, key string) (bool, error)
}

func (m *mockIdempotencyStore) Acquire(ctx context.Context, key string) (bool, error) {
	if m.AcquireFunc != nil {
		return m.AcquireFunc(ctx, key)
	}
	return true, nil
}

type mockAgentDirectory struct {
	ListAvailableFunc func(ctx context.Context, organizationID uint) ([]Agent, error)
}

func (m *mockAgentDirectory) ListAvailable(ctx context.Context, organizationID uint) ([]Agent, error) {
	if m.ListAvailableFunc != nil {
		return m.ListAvailableFunc(ctx, organizationID)
	}
	return nil, nil
}
