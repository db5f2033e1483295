package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowdesk/internal/domain/sla"
	"flowdesk/internal/shared/logger"
)

func weekdayCalendar(t *testing.T) *sla.Calendar {
	t.Helper()
	windows := []sla.Window{{OpenMinute: 9 * 60, CloseMinute: 17 * 60}}
	cal, err := sla.NewCalendar(1, "weekday 9-5", "UTC", map[time.Weekday][]sla.Window{
		time.Monday:    windows,
		time.Tuesday:   windows,
		time.Wednesday: windows,
		time.Thursday:  windows,
		time.Friday:    windows,
	}, nil)
	require.NoError(t, err)
	require.NoError(t, cal.SetID(5))
	return cal
}

func testPolicy(t *testing.T, cal *sla.Calendar, firstResponse, resolution int) *sla.Policy {
	t.Helper()
	var calendarID uint
	if cal != nil {
		calendarID = cal.ID()
	}
	policy, err := sla.NewPolicy(1, "standard", firstResponse, resolution, calendarID, nil)
	require.NoError(t, err)
	require.NoError(t, policy.SetID(3))
	if cal == nil {
		cal = sla.NewContinuousCalendar(1)
	}
	require.NoError(t, policy.Activate(cal))
	return policy
}

func TestStartSLAUseCase_Execute_Success(t *testing.T) {
	cal := weekdayCalendar(t)
	policy := testPolicy(t, cal, 60, 480)

	var savedState *sla.TicketSLAState
	states := &mockStateRepository{
		SaveFunc: func(ctx context.Context, state *sla.TicketSLAState) error {
			savedState = state
			return nil
		},
	}
	policies := &mockPolicyRepository{
		GetByIDFunc: func(ctx context.Context, id uint) (*sla.Policy, error) { return policy, nil },
	}
	calendars := &mockCalendarRepository{
		GetByIDFunc: func(ctx context.Context, id uint) (*sla.Calendar, error) { return cal, nil },
	}
	var scheduledTicket uint
	scheduler := &mockDeadlineScheduler{
		ScheduleFunc: func(ctx context.Context, state *sla.TicketSLAState, p *sla.Policy) error {
			scheduledTicket = state.TicketID()
			return nil
		},
	}

	uc := NewStartSLAUseCase(policies, calendars, states, scheduler, logger.NewLogger())

	created := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC) // Monday
	result, err := uc.Execute(context.Background(), StartSLACommand{
		TicketID: 42, OrganizationID: 1, PolicyID: 3, CreatedAt: created,
	})

	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC), result.FirstResponseDue)
	assert.Equal(t, time.Date(2024, 3, 4, 17, 0, 0, 0, time.UTC), result.ResolutionDue)
	require.NotNil(t, savedState)
	assert.Equal(t, uint(42), scheduledTicket)
}

func TestStartSLAUseCase_Execute_ContinuousFallbackForZeroCalendar(t *testing.T) {
	policy := testPolicy(t, nil, 30, 60)

	calendarLookups := 0
	calendars := &mockCalendarRepository{
		GetByIDFunc: func(ctx context.Context, id uint) (*sla.Calendar, error) {
			calendarLookups++
			return nil, nil
		},
	}
	policies := &mockPolicyRepository{
		GetByIDFunc: func(ctx context.Context, id uint) (*sla.Policy, error) { return policy, nil },
	}

	uc := NewStartSLAUseCase(policies, calendars, &mockStateRepository{}, &mockDeadlineScheduler{}, logger.NewLogger())

	created := time.Date(2024, 3, 2, 3, 0, 0, 0, time.UTC) // Saturday, small hours
	result, err := uc.Execute(context.Background(), StartSLACommand{
		TicketID: 42, OrganizationID: 1, PolicyID: 3, CreatedAt: created,
	})

	require.NoError(t, err)
	assert.Zero(t, calendarLookups)
	assert.Equal(t, created.Add(30*time.Minute), result.FirstResponseDue)
	assert.Equal(t, created.Add(60*time.Minute), result.ResolutionDue)
}

func TestStartSLAUseCase_Execute_InactivePolicy(t *testing.T) {
	policy, err := sla.NewPolicy(1, "draft", 60, 480, 0, nil)
	require.NoError(t, err)
	require.NoError(t, policy.SetID(3))

	policies := &mockPolicyRepository{
		GetByIDFunc: func(ctx context.Context, id uint) (*sla.Policy, error) { return policy, nil },
	}
	uc := NewStartSLAUseCase(policies, &mockCalendarRepository{}, &mockStateRepository{}, &mockDeadlineScheduler{}, logger.NewLogger())

	_, err = uc.Execute(context.Background(), StartSLACommand{
		TicketID: 42, OrganizationID: 1, PolicyID: 3,
	})
	assert.Error(t, err)
}
