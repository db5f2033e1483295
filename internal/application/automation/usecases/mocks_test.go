package usecases

import (
	"context"
	"sync"
	"time"

	"flowdesk/internal/application/automation/services"
	"flowdesk/internal/domain/automation"
)

type mockRuleRepository struct {
	SaveFunc           func(ctx context.Context, rule *automation.Rule) error
	UpdateFunc         func(ctx context.Context, rule *automation.Rule) error
	DeleteFunc         func(ctx context.Context, ruleID uint) error
	GetByIDFunc        func(ctx context.Context, ruleID uint) (*automation.Rule, error)
	ListActiveFunc     func(ctx context.Context, organizationID uint, trigger automation.TriggerType) ([]*automation.Rule, error)
	IncrementStatsFunc func(ctx context.Context, ruleID uint, succeeded bool, duration time.Duration) error
}

func (m *mockRuleRepository) Save(ctx context.Context, rule *automation.Rule) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, rule)
	}
	return nil
}

func (m *mockRuleRepository) Update(ctx context.Context, rule *automation.Rule) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, rule)
	}
	return nil
}

func (m *mockRuleRepository) Delete(ctx context.Context, ruleID uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, ruleID)
	}
	return nil
}

func (m *mockRuleRepository) GetByID(ctx context.Context, ruleID uint) (*automation.Rule, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, ruleID)
	}
	return nil, nil
}

func (m *mockRuleRepository) ListActive(ctx context.Context, organizationID uint, trigger automation.TriggerType) ([]*automation.Rule, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx, organizationID, trigger)
	}
	return nil, nil
}

func (m *mockRuleRepository) IncrementStats(ctx context.Context, ruleID uint, succeeded bool, duration time.Duration) error {
	if m.IncrementStatsFunc != nil {
		return m.IncrementStatsFunc(ctx, ruleID, succeeded, duration)
	}
	return nil
}

// mockTicketLocker is a real keyed mutex so concurrency tests exercise
// actual serialization, not a stub.
type mockTicketLocker struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newMockTicketLocker() *mockTicketLocker {
	return &mockTicketLocker{locks: make(map[uint]*sync.Mutex)}
}

func (m *mockTicketLocker) Lock(ctx context.Context, ticketID uint) (func(), error) {
	m.mu.Lock()
	lock, ok := m.locks[ticketID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[ticketID] = lock
	}
	m.mu.Unlock()

	lock.Lock()
	return lock.Unlock, nil
}

type mockActionDispatcher struct {
	ExecuteFunc func(ctx context.Context, actx services.ActionContext, actions []automation.Action) services.ExecutionReport
}

func (m *mockActionDispatcher) Execute(ctx context.Context, actx services.ActionContext, actions []automation.Action) services.ExecutionReport {
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, actx, actions)
	}
	report := services.ExecutionReport{}
	for i, a := range actions {
		report.Results = append(report.Results, services.ActionResult{Index: i, Kind: a.Kind(), Succeeded: true})
	}
	return report
}
