package scheduler

import (
	"container/heap"
	"context"
	"fmt"
	"sync"
	"time"

	"flowdesk/internal/domain/automation"
	"flowdesk/internal/domain/sla"
	"flowdesk/internal/shared/biztime"
	"flowdesk/internal/shared/goroutine"
	"flowdesk/internal/shared/logger"
)

// SchedulingError reports a deadline that could not be armed.
type SchedulingError struct {
	TicketID uint
	Reason   string
}

func (e *SchedulingError) Error() string {
	return fmt.Sprintf("failed to schedule deadlines for ticket %d: %s", e.TicketID, e.Reason)
}

// EscalationProcessor handles a fired deadline. Implementations live in the
// application layer; the scheduler only owns timing.
type EscalationProcessor interface {
	// ProcessThreshold fires when a percentage of the resolution SLA has
	// been consumed.
	ProcessThreshold(ctx context.Context, ticketID uint, percent int, actions []automation.Action) error
	// ProcessBreach fires when a due date passes.
	ProcessBreach(ctx context.Context, ticketID uint) error
}

type entryKind int

const (
	entryThreshold entryKind = iota
	entryBreach
)

// deadlineEntry is one armed deadline. gen ties it to the scheduling
// generation of its ticket: cancelling a ticket bumps the generation and
// strands every entry armed under the old one.
type deadlineEntry struct {
	dueAt    time.Time
	ticketID uint
	kind     entryKind
	percent  int
	actions  []automation.Action
	gen      uint64
}

type deadlineHeap []*deadlineEntry

func (h deadlineHeap) Len() int            { return len(h) }
func (h deadlineHeap) Less(i, j int) bool  { return h[i].dueAt.Before(h[j].dueAt) }
func (h deadlineHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *deadlineHeap) Push(x any)         { *h = append(*h, x.(*deadlineEntry)) }
func (h *deadlineHeap) Pop() any {
	old := *h
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return entry
}

// EscalationScheduler keeps every armed SLA deadline in a min-heap ordered
// by due time. The periodic tick pops whatever is due and dispatches it to
// a bounded worker pool. Cancellation is lazy: entries for a cancelled
// ticket stay in the heap but fail the generation check when popped, so a
// closed ticket can never fire a stale timer.
type EscalationScheduler struct {
	mu          sync.Mutex
	deadlines   deadlineHeap
	generations map[uint]uint64

	processor EscalationProcessor
	calendars sla.CalendarRepository
	states    sla.StateRepository
	policies  sla.PolicyRepository
	workers   int
	logger    logger.Interface
}

func NewEscalationScheduler(
	processor EscalationProcessor,
	calendars sla.CalendarRepository,
	states sla.StateRepository,
	policies sla.PolicyRepository,
	workers int,
	log logger.Interface,
) *EscalationScheduler {
	if workers <= 0 {
		workers = 4
	}
	return &EscalationScheduler{
		deadlines:   deadlineHeap{},
		generations: make(map[uint]uint64),
		processor:   processor,
		calendars:   calendars,
		states:      states,
		policies:    policies,
		workers:     workers,
		logger:      log,
	}
}

// Schedule replaces a ticket's armed deadlines with a fresh set derived
// from its current state: one entry per future escalation threshold plus
// breach entries for the outstanding due dates.
func (s *EscalationScheduler) Schedule(ctx context.Context, state *sla.TicketSLAState, policy *sla.Policy) error {
	if state.IsPaused() {
		return &SchedulingError{TicketID: state.TicketID(), Reason: "state is paused"}
	}

	cal, err := s.resolveCalendar(ctx, policy)
	if err != nil {
		return &SchedulingError{TicketID: state.TicketID(), Reason: err.Error()}
	}

	now := biztime.NowUTC()
	entries := s.buildEntries(state, policy, cal, now)

	s.mu.Lock()
	defer s.mu.Unlock()

	gen := s.generations[state.TicketID()] + 1
	s.generations[state.TicketID()] = gen

	for _, entry := range entries {
		entry.gen = gen
		heap.Push(&s.deadlines, entry)
	}

	s.logger.Debugw("deadlines armed",
		"ticket_id", state.TicketID(),
		"entries", len(entries),
		"generation", gen)
	return nil
}

// Cancel invalidates every armed deadline for the ticket. Entries stay in
// the heap and are discarded when they surface.
func (s *EscalationScheduler) Cancel(ticketID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[ticketID]++
}

// Rebuild re-arms deadlines for every active state, used at worker startup
// since the heap is process-local.
func (s *EscalationScheduler) Rebuild(ctx context.Context) error {
	states, err := s.states.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active SLA states: %w", err)
	}

	rebuilt := 0
	for _, state := range states {
		policy, err := s.policies.GetByID(ctx, state.PolicyID())
		if err != nil {
			s.logger.Errorw("skipping state with missing policy",
				"ticket_id", state.TicketID(), "policy_id", state.PolicyID(), "error", err)
			continue
		}
		if err := s.Schedule(ctx, state, policy); err != nil {
			s.logger.Errorw("failed to rebuild deadlines",
				"ticket_id", state.TicketID(), "error", err)
			continue
		}
		rebuilt++
	}

	s.logger.Infow("escalation deadlines rebuilt", "states", rebuilt)
	return nil
}

// Execute pops every due deadline and dispatches it to the worker pool.
// Implements BatchJob for the scheduler manager tick.
func (s *EscalationScheduler) Execute(ctx context.Context) (int, error) {
	now := biztime.NowUTC()
	due := s.popDue(now)
	if len(due) == 0 {
		return 0, nil
	}

	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup
	for _, entry := range due {
		entry := entry
		sem <- struct{}{}
		wg.Add(1)
		goroutine.SafeGo(s.logger, "escalation-dispatch", func() {
			defer func() {
				<-sem
				wg.Done()
			}()
			s.dispatch(ctx, entry)
		})
	}
	wg.Wait()

	return len(due), nil
}

// popDue removes and returns the valid entries due at or before now,
// silently discarding entries stranded by cancellation.
func (s *EscalationScheduler) popDue(now time.Time) []*deadlineEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []*deadlineEntry
	for s.deadlines.Len() > 0 {
		next := s.deadlines[0]
		if next.dueAt.After(now) {
			break
		}
		entry := heap.Pop(&s.deadlines).(*deadlineEntry)
		if entry.gen != s.generations[entry.ticketID] {
			continue
		}
		due = append(due, entry)
	}
	return due
}

func (s *EscalationScheduler) dispatch(ctx context.Context, entry *deadlineEntry) {
	var err error
	switch entry.kind {
	case entryThreshold:
		err = s.processor.ProcessThreshold(ctx, entry.ticketID, entry.percent, entry.actions)
	case entryBreach:
		err = s.processor.ProcessBreach(ctx, entry.ticketID)
	}
	if err != nil {
		s.logger.Errorw("deadline processing failed",
			"ticket_id", entry.ticketID,
			"kind", entry.kind,
			"percent", entry.percent,
			"error", err)
	}
}

// buildEntries derives the future deadlines for one state. Thresholds are
// positioned by the business minutes still unconsumed toward resolution, so
// a resumed clock yields shifted wall-clock times automatically.
func (s *EscalationScheduler) buildEntries(state *sla.TicketSLAState, policy *sla.Policy, cal *sla.Calendar, now time.Time) []*deadlineEntry {
	var entries []*deadlineEntry

	remaining := sla.ElapsedBusinessMinutes(now, state.ResolutionDue(), cal)
	consumed := policy.ResolutionMinutes() - remaining

	for _, threshold := range policy.Thresholds() {
		if threshold.Percent <= state.EscalationLevel() {
			continue
		}
		minutes := policy.ThresholdMinutes(threshold.Percent)
		var dueAt time.Time
		if minutes <= consumed {
			// Already past this threshold; fire on the next tick.
			dueAt = now
		} else {
			dueAt = sla.AddBusinessTime(now, minutes-consumed, cal)
		}
		entries = append(entries, &deadlineEntry{
			dueAt:    dueAt,
			ticketID: state.TicketID(),
			kind:     entryThreshold,
			percent:  threshold.Percent,
			actions:  threshold.Actions,
		})
	}

	if state.FirstResponseAt() == nil {
		entries = append(entries, &deadlineEntry{
			dueAt:    state.FirstResponseDue(),
			ticketID: state.TicketID(),
			kind:     entryBreach,
		})
	}
	entries = append(entries, &deadlineEntry{
		dueAt:    state.ResolutionDue(),
		ticketID: state.TicketID(),
		kind:     entryBreach,
	})

	return entries
}

func (s *EscalationScheduler) resolveCalendar(ctx context.Context, policy *sla.Policy) (*sla.Calendar, error) {
	if policy.CalendarID() == 0 {
		return sla.NewContinuousCalendar(policy.OrganizationID()), nil
	}
	return s.calendars.GetByID(ctx, policy.CalendarID())
}

// Pending reports how many entries are currently armed, stranded ones
// included.
func (s *EscalationScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deadlines.Len()
}

// RebuildJob adapts Rebuild to the maintenance job contract. A periodic
// rebuild re-arms anything a missed Schedule call lost; entries stranded
// by the generation bump are discarded lazily when they surface.
type RebuildJob struct {
	scheduler *EscalationScheduler
}

func NewRebuildJob(s *EscalationScheduler) *RebuildJob {
	return &RebuildJob{scheduler: s}
}

func (j *RebuildJob) Execute(ctx context.Context) (int, error) {
	if err := j.scheduler.Rebuild(ctx); err != nil {
		return 0, err
	}
	return j.scheduler.Pending(), nil
}
