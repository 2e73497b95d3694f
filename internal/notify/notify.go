// Package notify keeps the transient toast notifications of a session.
package notify

import (
	"slices"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/schedule"
)

// DefaultTTL is how long a toast stays visible.
const DefaultTTL = 3 * time.Second

// Level is the severity of a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Toast is one visible notification.
type Toast struct {
	ID        uint64
	Message   string
	Level     Level
	CreatedAt time.Time
}

// Sink receives every notification as it is raised.
type Sink interface {
	Notify(message string, level Level)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(message string, level Level)

func (f SinkFunc) Notify(message string, level Level) { f(message, level) }

// LogSink writes each notification to lg at info level.
func LogSink(lg *zap.Logger) Sink {
	return SinkFunc(func(message string, level Level) {
		lg.Info("Notification",
			zap.String("level", string(level)),
			zap.String("message", message),
		)
	})
}

// Scheduler defers callbacks into the owning session's loop.
type Scheduler interface {
	After(d time.Duration, fn func()) *schedule.Task
	Clock() clockwork.Clock
}

// Notifier tracks active toasts. It is driven from a single loop and is not
// safe for concurrent use on its own.
type Notifier struct {
	sched  Scheduler
	ttl    time.Duration
	sink   Sink
	seq    uint64
	active []Toast
	timers map[uint64]*schedule.Task
}

// New creates a Notifier whose toasts expire after ttl. A zero ttl selects
// DefaultTTL. sink may be nil.
func New(sched Scheduler, ttl time.Duration, sink Sink) *Notifier {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Notifier{
		sched:  sched,
		ttl:    ttl,
		sink:   sink,
		timers: make(map[uint64]*schedule.Task),
	}
}

// Notify shows message and schedules its own dismissal. Toasts never
// replace or suppress each other.
func (n *Notifier) Notify(message string, level Level) Toast {
	n.seq++
	t := Toast{
		ID:        n.seq,
		Message:   message,
		Level:     level,
		CreatedAt: n.sched.Clock().Now(),
	}
	n.active = append(n.active, t)
	n.timers[t.ID] = n.sched.After(n.ttl, func() { n.dismiss(t.ID) })
	if n.sink != nil {
		n.sink.Notify(message, level)
	}
	return t
}

// Success is shorthand for Notify with LevelSuccess.
func (n *Notifier) Success(message string) Toast { return n.Notify(message, LevelSuccess) }

// Error is shorthand for Notify with LevelError.
func (n *Notifier) Error(message string) Toast { return n.Notify(message, LevelError) }

// Info is shorthand for Notify with LevelInfo.
func (n *Notifier) Info(message string) Toast { return n.Notify(message, LevelInfo) }

// Dismiss hides the toast early. It reports whether the toast was visible.
func (n *Notifier) Dismiss(id uint64) bool {
	if task, ok := n.timers[id]; ok {
		task.Cancel()
	}
	return n.dismiss(id)
}

func (n *Notifier) dismiss(id uint64) bool {
	delete(n.timers, id)
	i := slices.IndexFunc(n.active, func(t Toast) bool { return t.ID == id })
	if i < 0 {
		return false
	}
	n.active = slices.Delete(n.active, i, i+1)
	return true
}

// Active returns the visible toasts in the order they were raised.
func (n *Notifier) Active() []Toast {
	return slices.Clone(n.active)
}
