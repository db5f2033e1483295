package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowdesk/internal/domain/automation"
	"flowdesk/internal/domain/sla"
	"flowdesk/internal/shared/logger"
)

type firedDeadline struct {
	ticketID uint
	percent  int
	breach   bool
}

type mockProcessor struct {
	mu    sync.Mutex
	fired []firedDeadline
}

func (m *mockProcessor) ProcessThreshold(ctx context.Context, ticketID uint, percent int, actions []automation.Action) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fired = append(m.fired, firedDeadline{ticketID: ticketID, percent: percent})
	return nil
}

func (m *mockProcessor) ProcessBreach(ctx context.Context, ticketID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fired = append(m.fired, firedDeadline{ticketID: ticketID, breach: true})
	return nil
}

func (m *mockProcessor) snapshot() []firedDeadline {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]firedDeadline, len(m.fired))
	copy(out, m.fired)
	return out
}

type mockStateRepo struct {
	states []*sla.TicketSLAState
}

func (m *mockStateRepo) Save(ctx context.Context, state *sla.TicketSLAState) error   { return nil }
func (m *mockStateRepo) Update(ctx context.Context, state *sla.TicketSLAState) error { return nil }
func (m *mockStateRepo) DeleteByTicketID(ctx context.Context, ticketID uint) error   { return nil }
func (m *mockStateRepo) GetByTicketID(ctx context.Context, ticketID uint) (*sla.TicketSLAState, error) {
	return nil, nil
}
func (m *mockStateRepo) ListActive(ctx context.Context) ([]*sla.TicketSLAState, error) {
	return m.states, nil
}

type mockPolicyRepo struct {
	policy *sla.Policy
}

func (m *mockPolicyRepo) Save(ctx context.Context, policy *sla.Policy) error   { return nil }
func (m *mockPolicyRepo) Update(ctx context.Context, policy *sla.Policy) error { return nil }
func (m *mockPolicyRepo) GetByID(ctx context.Context, id uint) (*sla.Policy, error) {
	return m.policy, nil
}
func (m *mockPolicyRepo) ListActiveByOrganization(ctx context.Context, organizationID uint) ([]*sla.Policy, error) {
	return []*sla.Policy{m.policy}, nil
}

type mockCalendarRepo struct{}

func (m *mockCalendarRepo) Save(ctx context.Context, cal *sla.Calendar) error   { return nil }
func (m *mockCalendarRepo) Update(ctx context.Context, cal *sla.Calendar) error { return nil }
func (m *mockCalendarRepo) GetByID(ctx context.Context, id uint) (*sla.Calendar, error) {
	return sla.NewContinuousCalendar(1), nil
}
func (m *mockCalendarRepo) ListByOrganization(ctx context.Context, organizationID uint) ([]*sla.Calendar, error) {
	return nil, nil
}

func escalationPolicy(t *testing.T, resolutionMinutes int, thresholds ...int) *sla.Policy {
	t.Helper()
	ths := make([]sla.EscalationThreshold, 0, len(thresholds))
	for _, p := range thresholds {
		ths = append(ths, sla.EscalationThreshold{Percent: p})
	}
	policy, err := sla.NewPolicy(1, "escalating", resolutionMinutes/2, resolutionMinutes, 0, ths)
	require.NoError(t, err)
	require.NoError(t, policy.SetID(3))
	require.NoError(t, policy.Activate(sla.NewContinuousCalendar(1)))
	return policy
}

func overdueState(t *testing.T, ticketID uint, policy *sla.Policy) *sla.TicketSLAState {
	t.Helper()
	cal := sla.NewContinuousCalendar(1)
	state, err := sla.StartState(ticketID, 1, policy, cal, time.Now().UTC().Add(-2*time.Hour))
	require.NoError(t, err)
	return state
}

func newScheduler(processor EscalationProcessor, states sla.StateRepository, policies sla.PolicyRepository) *EscalationScheduler {
	return NewEscalationScheduler(processor, &mockCalendarRepo{}, states, policies, 2, logger.NewLogger())
}

func TestEscalationScheduler_FiresDueDeadlines(t *testing.T) {
	policy := escalationPolicy(t, 60, 50, 80)
	state := overdueState(t, 42, policy)
	processor := &mockProcessor{}
	sched := newScheduler(processor, &mockStateRepo{}, &mockPolicyRepo{policy: policy})

	require.NoError(t, sched.Schedule(context.Background(), state, policy))

	processed, err := sched.Execute(context.Background())
	require.NoError(t, err)
	// Two thresholds, one first-response breach, one resolution breach.
	assert.Equal(t, 4, processed)

	fired := processor.snapshot()
	require.Len(t, fired, 4)
	percents := map[int]bool{}
	breaches := 0
	for _, f := range fired {
		assert.Equal(t, uint(42), f.ticketID)
		if f.breach {
			breaches++
		} else {
			percents[f.percent] = true
		}
	}
	assert.Equal(t, 2, breaches)
	assert.True(t, percents[50])
	assert.True(t, percents[80])
}

func TestEscalationScheduler_FutureDeadlinesStayArmed(t *testing.T) {
	policy := escalationPolicy(t, 8*60, 50)
	cal := sla.NewContinuousCalendar(1)
	state, err := sla.StartState(42, 1, policy, cal, time.Now().UTC())
	require.NoError(t, err)

	processor := &mockProcessor{}
	sched := newScheduler(processor, &mockStateRepo{}, &mockPolicyRepo{policy: policy})
	require.NoError(t, sched.Schedule(context.Background(), state, policy))

	processed, err := sched.Execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, processed)
	assert.Empty(t, processor.snapshot())
}

func TestEscalationScheduler_CancelStrandsArmedEntries(t *testing.T) {
	policy := escalationPolicy(t, 60, 50)
	state := overdueState(t, 42, policy)
	processor := &mockProcessor{}
	sched := newScheduler(processor, &mockStateRepo{}, &mockPolicyRepo{policy: policy})

	require.NoError(t, sched.Schedule(context.Background(), state, policy))
	sched.Cancel(42)

	processed, err := sched.Execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, processed)
	assert.Empty(t, processor.snapshot())
}

func TestEscalationScheduler_RescheduleInvalidatesOldGeneration(t *testing.T) {
	policy := escalationPolicy(t, 60, 50)
	state := overdueState(t, 42, policy)
	processor := &mockProcessor{}
	sched := newScheduler(processor, &mockStateRepo{}, &mockPolicyRepo{policy: policy})

	require.NoError(t, sched.Schedule(context.Background(), state, policy))
	require.NoError(t, sched.Schedule(context.Background(), state, policy))

	processed, err := sched.Execute(context.Background())
	require.NoError(t, err)
	// Only the second generation's entries fire, not both arms.
	assert.Equal(t, 3, processed)
}

func TestEscalationScheduler_RejectsPausedState(t *testing.T) {
	policy := escalationPolicy(t, 60, 50)
	cal := sla.NewContinuousCalendar(1)
	state, err := sla.StartState(42, 1, policy, cal, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, state.Pause(time.Now().UTC(), cal))

	sched := newScheduler(&mockProcessor{}, &mockStateRepo{}, &mockPolicyRepo{policy: policy})

	err = sched.Schedule(context.Background(), state, policy)
	require.Error(t, err)
	var schedErr *SchedulingError
	assert.ErrorAs(t, err, &schedErr)
}

func TestEscalationScheduler_RebuildArmsActiveStates(t *testing.T) {
	policy := escalationPolicy(t, 60, 50)
	states := &mockStateRepo{states: []*sla.TicketSLAState{
		overdueState(t, 1, policy),
		overdueState(t, 2, policy),
	}}
	processor := &mockProcessor{}
	sched := newScheduler(processor, states, &mockPolicyRepo{policy: policy})

	require.NoError(t, sched.Rebuild(context.Background()))

	processed, err := sched.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, processed) // three entries per overdue ticket
}
