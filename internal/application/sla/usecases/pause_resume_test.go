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

func startedState(t *testing.T, policy *sla.Policy, cal *sla.Calendar, createdAt time.Time) *sla.TicketSLAState {
	t.Helper()
	state, err := sla.StartState(42, 1, policy, cal, createdAt)
	require.NoError(t, err)
	return state
}

func TestPauseSLAUseCase_SnapshotsRemainingMinutesAndCancelsDeadlines(t *testing.T) {
	cal := weekdayCalendar(t)
	policy := testPolicy(t, cal, 60, 480)
	created := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	state := startedState(t, policy, cal, created)

	states := &mockStateRepository{
		GetByTicketIDFunc: func(ctx context.Context, ticketID uint) (*sla.TicketSLAState, error) {
			return state, nil
		},
	}
	policies := &mockPolicyRepository{
		GetByIDFunc: func(ctx context.Context, id uint) (*sla.Policy, error) { return policy, nil },
	}
	calendars := &mockCalendarRepository{
		GetByIDFunc: func(ctx context.Context, id uint) (*sla.Calendar, error) { return cal, nil },
	}
	var cancelled []uint
	scheduler := &mockDeadlineScheduler{
		CancelFunc: func(ticketID uint) { cancelled = append(cancelled, ticketID) },
	}

	uc := NewPauseSLAUseCase(states, policies, calendars, scheduler, logger.NewLogger())

	result, err := uc.Execute(context.Background(), PauseSLACommand{
		TicketID: 42,
		PausedAt: created.Add(30 * time.Minute),
	})

	require.NoError(t, err)
	assert.Equal(t, 30, result.RemainingMinutes)
	assert.Equal(t, "first_response", result.PausedTarget)
	assert.Equal(t, []uint{42}, cancelled)
	assert.True(t, state.IsPaused())
}

func TestPauseSLAUseCase_AlreadyPaused(t *testing.T) {
	cal := sla.NewContinuousCalendar(1)
	policy := testPolicy(t, nil, 30, 60)
	state := startedState(t, policy, cal, time.Now())
	require.NoError(t, state.Pause(time.Now(), cal))

	states := &mockStateRepository{
		GetByTicketIDFunc: func(ctx context.Context, ticketID uint) (*sla.TicketSLAState, error) {
			return state, nil
		},
	}
	policies := &mockPolicyRepository{
		GetByIDFunc: func(ctx context.Context, id uint) (*sla.Policy, error) { return policy, nil },
	}

	uc := NewPauseSLAUseCase(states, policies, &mockCalendarRepository{}, &mockDeadlineScheduler{}, logger.NewLogger())

	_, err := uc.Execute(context.Background(), PauseSLACommand{TicketID: 42})
	assert.Error(t, err)
}

func TestResumeSLAUseCase_RecomputesDueAndReArmsDeadlines(t *testing.T) {
	cal := weekdayCalendar(t)
	policy := testPolicy(t, cal, 60, 480)

	// Pause Monday 09:30 with 30 business minutes left; resume after
	// close. The clock picks up Tuesday 09:00.
	created := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	state := startedState(t, policy, cal, created)
	require.NoError(t, state.Pause(created.Add(30*time.Minute), cal))

	states := &mockStateRepository{
		GetByTicketIDFunc: func(ctx context.Context, ticketID uint) (*sla.TicketSLAState, error) {
			return state, nil
		},
	}
	policies := &mockPolicyRepository{
		GetByIDFunc: func(ctx context.Context, id uint) (*sla.Policy, error) { return policy, nil },
	}
	calendars := &mockCalendarRepository{
		GetByIDFunc: func(ctx context.Context, id uint) (*sla.Calendar, error) { return cal, nil },
	}
	rearmed := false
	scheduler := &mockDeadlineScheduler{
		ScheduleFunc: func(ctx context.Context, s *sla.TicketSLAState, p *sla.Policy) error {
			rearmed = true
			return nil
		},
	}

	uc := NewResumeSLAUseCase(states, policies, calendars, scheduler, logger.NewLogger())

	result, err := uc.Execute(context.Background(), ResumeSLACommand{
		TicketID:  42,
		ResumedAt: time.Date(2024, 3, 4, 18, 30, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC), result.FirstResponseDue)
	assert.True(t, rearmed)
	assert.False(t, state.IsPaused())
}

func TestCloseTicketSLAUseCase_CancelsBeforeDelete(t *testing.T) {
	cal := sla.NewContinuousCalendar(1)
	policy := testPolicy(t, nil, 30, 60)
	state := startedState(t, policy, cal, time.Now())

	var order []string
	states := &mockStateRepository{
		GetByTicketIDFunc: func(ctx context.Context, ticketID uint) (*sla.TicketSLAState, error) {
			return state, nil
		},
		DeleteByTicketIDFunc: func(ctx context.Context, ticketID uint) error {
			order = append(order, "delete")
			return nil
		},
	}
	scheduler := &mockDeadlineScheduler{
		CancelFunc: func(ticketID uint) { order = append(order, "cancel") },
	}

	uc := NewCloseTicketSLAUseCase(states, scheduler, logger.NewLogger())

	result, err := uc.Execute(context.Background(), CloseTicketSLACommand{TicketID: 42})
	require.NoError(t, err)
	assert.True(t, result.Existed)
	assert.Equal(t, []string{"cancel", "delete"}, order)
}

func TestRecordFirstResponseUseCase_Idempotent(t *testing.T) {
	cal := sla.NewContinuousCalendar(1)
	policy := testPolicy(t, nil, 30, 60)
	state := startedState(t, policy, cal, time.Now())

	updates := 0
	states := &mockStateRepository{
		GetByTicketIDFunc: func(ctx context.Context, ticketID uint) (*sla.TicketSLAState, error) {
			return state, nil
		},
		UpdateFunc: func(ctx context.Context, s *sla.TicketSLAState) error {
			updates++
			return nil
		},
	}

	uc := NewRecordFirstResponseUseCase(states, logger.NewLogger())

	first, err := uc.Execute(context.Background(), RecordFirstResponseCommand{TicketID: 42})
	require.NoError(t, err)

	second, err := uc.Execute(context.Background(), RecordFirstResponseCommand{TicketID: 42})
	require.NoError(t, err)

	assert.Equal(t, 1, updates)
	assert.Equal(t, first.RespondedAt, second.RespondedAt)
}
