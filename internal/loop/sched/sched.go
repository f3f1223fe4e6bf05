// Package sched provides cancellable periodic tasks for single-goroutine game loops.
package sched

import "time"

// Token identifies a scheduled periodic task. The zero Token is never issued.
type Token uint64

// Scheduler runs callbacks periodically until cancelled.
// Implementations are not safe for concurrent use; all calls and all
// callbacks happen on the goroutine that owns the scheduler.
type Scheduler interface {
	// SchedulePeriodic runs fn every period, first after one full period.
	SchedulePeriodic(fn func(), period time.Duration) Token
	// Cancel stops the task. Unknown or already cancelled tokens are ignored.
	Cancel(tok Token)
}

// MinPeriod is the shortest period a task runs at; shorter periods are raised to it.
const MinPeriod = time.Millisecond

func normalizePeriod(period time.Duration) time.Duration {
	if period < MinPeriod {
		return MinPeriod
	}
	return period
}
