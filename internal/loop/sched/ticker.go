package sched

import "time"

// Ticker is a wall-clock Scheduler. Each task runs a time.Ticker on its own
// goroutine, but callbacks never run there: fires are queued on Fires and the
// owning loop executes them with Dispatch, so callbacks are serialized with
// everything else the loop does.
//
//	for {
//		select {
//		case tok := <-t.Fires():
//			t.Dispatch(tok)
//		case ev := <-events:
//			...
//		}
//	}
type Ticker struct {
	fires chan Token
	tasks map[Token]*tickerTask
	next  Token
}

type tickerTask struct {
	fn   func()
	stop chan struct{}
}

// Compile-time check that Ticker implements Scheduler.
var _ Scheduler = (*Ticker)(nil)

// NewTicker creates an idle Ticker.
func NewTicker() *Ticker {
	return &Ticker{
		fires: make(chan Token, 16),
		tasks: make(map[Token]*tickerTask),
	}
}

// SchedulePeriodic starts a task firing every period.
func (t *Ticker) SchedulePeriodic(fn func(), period time.Duration) Token {
	t.next++
	tok := t.next
	task := &tickerTask{fn: fn, stop: make(chan struct{})}
	t.tasks[tok] = task

	go func(period time.Duration) {
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-task.stop:
				return
			case <-ticker.C:
				select {
				case t.fires <- tok:
				case <-task.stop:
					return
				}
			}
		}
	}(normalizePeriod(period))

	return tok
}

// Cancel stops the task. Fires already queued for it are dropped by Dispatch.
func (t *Ticker) Cancel(tok Token) {
	task, ok := t.tasks[tok]
	if !ok {
		return
	}
	close(task.stop)
	delete(t.tasks, tok)
}

// Fires delivers the tokens of tasks whose period elapsed.
func (t *Ticker) Fires() <-chan Token {
	return t.fires
}

// Dispatch runs the callback for tok if the task is still scheduled.
// Returns false for cancelled tasks.
func (t *Ticker) Dispatch(tok Token) bool {
	task, ok := t.tasks[tok]
	if !ok {
		return false
	}
	task.fn()
	return true
}

// Active returns the number of scheduled tasks.
func (t *Ticker) Active() int {
	return len(t.tasks)
}

// Close cancels every task.
func (t *Ticker) Close() {
	for tok := range t.tasks {
		t.Cancel(tok)
	}
}
