package automation

import (
	"sync/atomic"
	"time"
)

// Stats holds a rule's execution counters. All fields are updated through
// atomic increments so concurrent event handlers for the same organization
// never lose an update; read-modify-write is deliberately impossible from
// outside this type.
type Stats struct {
	executionCount atomic.Int64
	successCount   atomic.Int64
	failureCount   atomic.Int64
	totalDuration  atomic.Int64 // nanoseconds
}

// RecordExecution registers one completed evaluation-and-dispatch cycle.
func (s *Stats) RecordExecution(succeeded bool, duration time.Duration) {
	s.executionCount.Add(1)
	if succeeded {
		s.successCount.Add(1)
	} else {
		s.failureCount.Add(1)
	}
	s.totalDuration.Add(int64(duration))
}

func (s *Stats) ExecutionCount() int64 { return s.executionCount.Load() }
func (s *Stats) SuccessCount() int64   { return s.successCount.Load() }
func (s *Stats) FailureCount() int64   { return s.failureCount.Load() }

// AverageExecutionTime derives the running average from the cumulative
// duration; zero when the rule never executed.
func (s *Stats) AverageExecutionTime() time.Duration {
	count := s.executionCount.Load()
	if count == 0 {
		return 0
	}
	return time.Duration(s.totalDuration.Load() / count)
}

// Seed restores persisted counters when a rule is reconstructed.
func (s *Stats) Seed(executions, successes, failures int64, totalDuration time.Duration) {
	s.executionCount.Store(executions)
	s.successCount.Store(successes)
	s.failureCount.Store(failures)
	s.totalDuration.Store(int64(totalDuration))
}

// StatsSnapshot is the read model exposed to external reporting.
type StatsSnapshot struct {
	ExecutionCount       int64         `json:"execution_count"`
	SuccessCount         int64         `json:"success_count"`
	FailureCount         int64         `json:"failure_count"`
	AverageExecutionTime time.Duration `json:"average_execution_time"`
}

// Snapshot returns a consistent-enough copy for reporting. Counters are
// read individually; small skew between them is acceptable for a read model.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		ExecutionCount:       s.ExecutionCount(),
		SuccessCount:         s.SuccessCount(),
		FailureCount:         s.FailureCount(),
		AverageExecutionTime: s.AverageExecutionTime(),
	}
}

// TotalDuration exposes the cumulative execution time for persistence.
func (s *Stats) TotalDuration() time.Duration {
	return time.Duration(s.totalDuration.Load())
}
