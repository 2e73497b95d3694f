// Package schedule serializes every state change of one storefront session.
//
// A Loop is a mailbox with a single logical thread of control: direct calls
// enter through Do, deferred work enters through After when its timer
// expires. At most one of them runs at any moment.
package schedule

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/jonboulle/clockwork"
)

// ErrClosed is returned by Do after Close.
var ErrClosed = errors.New("loop closed")

// Loop runs callbacks one at a time.
type Loop struct {
	clock clockwork.Clock

	mu     sync.Mutex
	closed bool
	seq    uint64
	tasks  map[*Task]struct{}
	settle func()
}

// New creates a Loop that measures delays with clock.
func New(clock clockwork.Clock) *Loop {
	return &Loop{
		clock: clock,
		tasks: make(map[*Task]struct{}),
	}
}

// Clock returns the clock the loop schedules against.
func (l *Loop) Clock() clockwork.Clock { return l.clock }

// OnSettle registers fn to run, still holding the loop, after every Do and
// after every batch of expired tasks. Only one hook is kept.
func (l *Loop) OnSettle(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.settle = fn
}

// Do runs fn holding the loop, then the settle hook.
func (l *Loop) Do(fn func()) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	fn()
	l.runSettle()
	return nil
}

// View runs fn holding the loop without running the settle hook. It is
// meant for reads.
func (l *Loop) View(fn func()) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	fn()
	return nil
}

func (l *Loop) runSettle() {
	if l.settle != nil && !l.closed {
		l.settle()
	}
}

// After schedules fn to run inside the loop once d has elapsed. It must be
// called while holding the loop, that is from within Do or another task.
// Scheduling on a closed loop returns a task that never fires.
func (l *Loop) After(d time.Duration, fn func()) *Task {
	l.seq++
	t := &Task{
		loop:     l,
		fn:       fn,
		seq:      l.seq,
		deadline: l.clock.Now().Add(d),
	}
	if l.closed {
		t.done = true
		return t
	}
	l.tasks[t] = struct{}{}
	t.timer = l.clock.AfterFunc(d, l.fire)
	return t
}

// fire runs every task whose deadline has passed, earliest first. Timers
// may wake up in any order, so the firing timer does not pick its own task.
func (l *Loop) fire() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}

	now := l.clock.Now()
	ran := 0
	for {
		next := l.nextDue(now)
		if next == nil {
			break
		}
		delete(l.tasks, next)
		next.done = true
		next.fn()
		ran++
	}
	if ran > 0 {
		l.runSettle()
	}
}

func (l *Loop) nextDue(now time.Time) *Task {
	var due []*Task
	for t := range l.tasks {
		if !t.deadline.After(now) {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	return slices.MinFunc(due, func(a, b *Task) int {
		if c := a.deadline.Compare(b.deadline); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
}

// Pending returns the number of scheduled tasks that have not fired yet.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks)
}

// Close cancels every pending task. Callbacks that were already waiting for
// the loop are dropped. Close is idempotent.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	for t := range l.tasks {
		t.stop()
	}
	clear(l.tasks)
}

// Task is a deferred callback scheduled with After.
type Task struct {
	loop     *Loop
	fn       func()
	seq      uint64
	deadline time.Time
	timer    clockwork.Timer
	done     bool
}

// Cancel prevents the task from running. It reports whether the task was
// still pending. Like After, it must be called while holding the loop.
func (t *Task) Cancel() bool {
	if t == nil || t.done {
		return false
	}
	t.stop()
	delete(t.loop.tasks, t)
	return true
}

func (t *Task) stop() {
	t.done = true
	if t.timer != nil {
		t.timer.Stop()
	}
}
