package sched

import "time"

// Manual is a virtual-clock Scheduler. Time only moves when Advance is called,
// which makes tick sequences exact and reproducible.
type Manual struct {
	now   time.Duration
	tasks map[Token]*manualTask
	next  Token
}

type manualTask struct {
	fn     func()
	period time.Duration
	due    time.Duration
}

// Compile-time check that Manual implements Scheduler.
var _ Scheduler = (*Manual)(nil)

// NewManual creates a Manual clock at time zero.
func NewManual() *Manual {
	return &Manual{tasks: make(map[Token]*manualTask)}
}

// SchedulePeriodic registers fn to run every period of virtual time.
func (m *Manual) SchedulePeriodic(fn func(), period time.Duration) Token {
	period = normalizePeriod(period)
	m.next++
	m.tasks[m.next] = &manualTask{fn: fn, period: period, due: m.now + period}
	return m.next
}

// Cancel removes the task.
func (m *Manual) Cancel(tok Token) {
	delete(m.tasks, tok)
}

// Advance moves the clock forward by d, running every fire that falls due in
// time order. Simultaneous fires run in scheduling order. Tasks scheduled or
// cancelled by a callback take effect immediately.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	for {
		task := m.nextDue(target)
		if task == nil {
			break
		}
		m.now = task.due
		task.due += task.period
		task.fn()
	}
	m.now = target
}

func (m *Manual) nextDue(target time.Duration) *manualTask {
	var bestTok Token
	var best *manualTask
	for tok, task := range m.tasks {
		if task.due > target {
			continue
		}
		if best == nil || task.due < best.due || (task.due == best.due && tok < bestTok) {
			bestTok, best = tok, task
		}
	}
	return best
}

// Now returns the elapsed virtual time.
func (m *Manual) Now() time.Duration {
	return m.now
}

// Active returns the number of scheduled tasks.
func (m *Manual) Active() int {
	return len(m.tasks)
}

// Period returns the period of a scheduled task, or false if it is not scheduled.
func (m *Manual) Period(tok Token) (time.Duration, bool) {
	task, ok := m.tasks[tok]
	if !ok {
		return 0, false
	}
	return task.period, true
}

// Periods returns the periods of all scheduled tasks in scheduling order.
func (m *Manual) Periods() []time.Duration {
	periods := make([]time.Duration, 0, len(m.tasks))
	for tok := Token(1); tok <= m.next; tok++ {
		if task, ok := m.tasks[tok]; ok {
			periods = append(periods, task.period)
		}
	}
	return periods
}
