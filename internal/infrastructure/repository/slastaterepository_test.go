package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowdesk/internal/domain/automation"
	"flowdesk/internal/domain/sla"
	"flowdesk/internal/shared/errors"
)

func weekdayTestCalendar(t *testing.T) *sla.Calendar {
	t.Helper()

	windows := []sla.Window{{OpenMinute: 9 * 60, CloseMinute: 17 * 60}}
	weekly := map[time.Weekday][]sla.Window{
		time.Monday:    windows,
		time.Tuesday:   windows,
		time.Wednesday: windows,
		time.Thursday:  windows,
		time.Friday:    windows,
	}
	cal, err := sla.NewCalendar(1, "office-hours", "UTC", weekly, []sla.Holiday{
		{Date: "2026-12-25", Name: "holiday"},
	})
	require.NoError(t, err)
	return cal
}

func activeTestPolicy(t *testing.T, cal *sla.Calendar) *sla.Policy {
	t.Helper()

	thresholds := []sla.EscalationThreshold{
		{Percent: 50, Actions: []automation.Action{
			automation.NotifyAction{Template: "sla_half", Audience: "assignee"},
		}},
		{Percent: 80},
	}
	policy, err := sla.NewPolicy(1, "standard", 60, 480, cal.ID(), thresholds)
	require.NoError(t, err)
	require.NoError(t, policy.Activate(cal))
	return policy
}

func TestCalendarRepository_RoundTrip(t *testing.T) {
	repo := NewCalendarRepository(setupTestDB(t))
	ctx := context.Background()

	cal := weekdayTestCalendar(t)
	require.NoError(t, cal.SetSID("cal_test"))

	require.NoError(t, repo.Save(ctx, cal))
	assert.NotZero(t, cal.ID())

	found, err := repo.GetByID(ctx, cal.ID())
	require.NoError(t, err)
	assert.Equal(t, cal.Name(), found.Name())
	assert.Equal(t, cal.Timezone(), found.Timezone())
	assert.False(t, found.IsContinuous())
	assert.Equal(t, cal.WeeklyWindows(), found.WeeklyWindows())
	assert.Equal(t, cal.Holidays(), found.Holidays())
}

func TestCalendarRepository_ContinuousRoundTrip(t *testing.T) {
	repo := NewCalendarRepository(setupTestDB(t))
	ctx := context.Background()

	cal := sla.NewContinuousCalendar(1)
	require.NoError(t, cal.SetSID("cal_cont"))
	require.NoError(t, repo.Save(ctx, cal))

	found, err := repo.GetByID(ctx, cal.ID())
	require.NoError(t, err)
	assert.True(t, found.IsContinuous())
}

func TestPolicyRepository_RoundTripWithThresholdActions(t *testing.T) {
	gormDB := setupTestDB(t)
	calendars := NewCalendarRepository(gormDB)
	policies := NewPolicyRepository(gormDB)
	ctx := context.Background()

	cal := weekdayTestCalendar(t)
	require.NoError(t, cal.SetSID("cal_pol"))
	require.NoError(t, calendars.Save(ctx, cal))

	policy := activeTestPolicy(t, cal)
	require.NoError(t, policy.SetSID("policy_std"))
	require.NoError(t, policies.Save(ctx, policy))

	found, err := policies.GetByID(ctx, policy.ID())
	require.NoError(t, err)
	assert.Equal(t, 60, found.FirstResponseMinutes())
	assert.Equal(t, 480, found.ResolutionMinutes())
	assert.Equal(t, cal.ID(), found.CalendarID())
	assert.True(t, found.IsActive())

	thresholds := found.Thresholds()
	require.Len(t, thresholds, 2)
	assert.Equal(t, 50, thresholds[0].Percent)
	require.Len(t, thresholds[0].Actions, 1)
	notify, ok := thresholds[0].Actions[0].(automation.NotifyAction)
	require.True(t, ok)
	assert.Equal(t, "sla_half", notify.Template)
	assert.Empty(t, thresholds[1].Actions)
}

func TestPolicyRepository_ListActiveByOrganization(t *testing.T) {
	gormDB := setupTestDB(t)
	calendars := NewCalendarRepository(gormDB)
	policies := NewPolicyRepository(gormDB)
	ctx := context.Background()

	cal := weekdayTestCalendar(t)
	require.NoError(t, cal.SetSID("cal_list"))
	require.NoError(t, calendars.Save(ctx, cal))

	active := activeTestPolicy(t, cal)
	require.NoError(t, active.SetSID("policy_active"))
	require.NoError(t, policies.Save(ctx, active))

	inactive, err := sla.NewPolicy(1, "draft", 30, 240, cal.ID(), nil)
	require.NoError(t, err)
	require.NoError(t, inactive.SetSID("policy_draft"))
	require.NoError(t, policies.Save(ctx, inactive))

	list, err := policies.ListActiveByOrganization(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "standard", list[0].Name())
}

func TestSLAStateRepository_RoundTrip(t *testing.T) {
	repo := NewSLAStateRepository(setupTestDB(t))
	ctx := context.Background()

	cal := weekdayTestCalendar(t)
	require.NoError(t, cal.SetID(5))
	policy := activeTestPolicy(t, cal)
	require.NoError(t, policy.SetID(3))

	createdAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) // Monday 09:00
	state, err := sla.StartState(42, 1, policy, cal, createdAt)
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, state))
	assert.NotZero(t, state.ID())

	found, err := repo.GetByTicketID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, state.FirstResponseDue(), found.FirstResponseDue())
	assert.Equal(t, state.ResolutionDue(), found.ResolutionDue())
	assert.Nil(t, found.FirstResponseAt())
	assert.False(t, found.IsPaused())
	assert.False(t, found.IsBreached())
}

func TestSLAStateRepository_DuplicateTicket(t *testing.T) {
	repo := NewSLAStateRepository(setupTestDB(t))
	ctx := context.Background()

	cal := weekdayTestCalendar(t)
	require.NoError(t, cal.SetID(5))
	policy := activeTestPolicy(t, cal)
	require.NoError(t, policy.SetID(3))

	createdAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	first, err := sla.StartState(42, 1, policy, cal, createdAt)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, first))

	second, err := sla.StartState(42, 1, policy, cal, createdAt)
	require.NoError(t, err)
	err = repo.Save(ctx, second)
	require.Error(t, err)
	assert.True(t, errors.IsDuplicateError(err))
}

func TestSLAStateRepository_UpdatePersistsPauseSnapshot(t *testing.T) {
	repo := NewSLAStateRepository(setupTestDB(t))
	ctx := context.Background()

	cal := weekdayTestCalendar(t)
	require.NoError(t, cal.SetID(5))
	policy := activeTestPolicy(t, cal)
	require.NoError(t, policy.SetID(3))

	createdAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	state, err := sla.StartState(42, 1, policy, cal, createdAt)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, state))

	pausedAt := createdAt.Add(30 * time.Minute)
	require.NoError(t, state.Pause(pausedAt, cal))
	require.NoError(t, repo.Update(ctx, state))

	found, err := repo.GetByTicketID(ctx, 42)
	require.NoError(t, err)
	require.True(t, found.IsPaused())
	require.NotNil(t, found.RemainingMinutes())
	assert.Equal(t, *state.RemainingMinutes(), *found.RemainingMinutes())
	assert.Equal(t, state.PausedTarget(), found.PausedTarget())

	resumeAt := pausedAt.Add(2 * time.Hour)
	require.NoError(t, found.Resume(resumeAt, cal))
	require.NoError(t, repo.Update(ctx, found))

	resumed, err := repo.GetByTicketID(ctx, 42)
	require.NoError(t, err)
	assert.False(t, resumed.IsPaused())
	assert.Nil(t, resumed.RemainingMinutes())
}

func TestSLAStateRepository_ListActiveSkipsPausedAndBreached(t *testing.T) {
	repo := NewSLAStateRepository(setupTestDB(t))
	ctx := context.Background()

	cal := weekdayTestCalendar(t)
	require.NoError(t, cal.SetID(5))
	policy := activeTestPolicy(t, cal)
	require.NoError(t, policy.SetID(3))

	createdAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	running, err := sla.StartState(1, 1, policy, cal, createdAt)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, running))

	paused, err := sla.StartState(2, 1, policy, cal, createdAt)
	require.NoError(t, err)
	require.NoError(t, paused.Pause(createdAt.Add(10*time.Minute), cal))
	require.NoError(t, repo.Save(ctx, paused))

	breached, err := sla.StartState(3, 1, policy, cal, createdAt)
	require.NoError(t, err)
	require.True(t, breached.CheckBreach(createdAt.Add(30*24*time.Hour)))
	require.NoError(t, repo.Save(ctx, breached))

	list, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, uint(1), list[0].TicketID())
}

func TestSLAStateRepository_DeleteByTicketID(t *testing.T) {
	repo := NewSLAStateRepository(setupTestDB(t))
	ctx := context.Background()

	cal := weekdayTestCalendar(t)
	require.NoError(t, cal.SetID(5))
	policy := activeTestPolicy(t, cal)
	require.NoError(t, policy.SetID(3))

	state, err := sla.StartState(42, 1, policy, cal, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, state))

	require.NoError(t, repo.DeleteByTicketID(ctx, 42))

	_, err = repo.GetByTicketID(ctx, 42)
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))

	err = repo.DeleteByTicketID(ctx, 42)
	require.Error(t, err)
}
