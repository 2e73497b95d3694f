package contact

import (
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/notify"
	"github.com/xenking/storefront/internal/schedule"
)

// Default delays of the simulated submission.
const (
	DefaultSendDelay  = 1500 * time.Millisecond
	DefaultResetDelay = 3 * time.Second
)

// ErrBusy is returned when a submission arrives while a previous one is
// still being sent or its confirmation is showing.
var ErrBusy = errors.New("contact form is busy")

// Phase is the visible state of the contact form.
type Phase string

const (
	PhaseEditing Phase = "editing"
	PhaseSending Phase = "sending"
	PhaseSent    Phase = "sent"
)

// Scheduler defers callbacks into the owning session's loop.
type Scheduler interface {
	After(d time.Duration, fn func()) *schedule.Task
}

// Notifier raises user-facing toasts.
type Notifier interface {
	Notify(message string, level notify.Level) notify.Toast
}

// Flow drives a submission through Editing, Sending and Sent, then back to
// Editing with an empty form.
type Flow struct {
	sched      Scheduler
	notifier   Notifier
	sendDelay  time.Duration
	resetDelay time.Duration

	phase Phase
	form  Form
	task  *schedule.Task

	// OnSent, when set, is called with the submitted form once sending
	// completes.
	OnSent func(Form)
}

// NewFlow creates a Flow. Zero delays select the defaults.
func NewFlow(sched Scheduler, n Notifier, sendDelay, resetDelay time.Duration) *Flow {
	if sendDelay <= 0 {
		sendDelay = DefaultSendDelay
	}
	if resetDelay <= 0 {
		resetDelay = DefaultResetDelay
	}
	return &Flow{
		sched:      sched,
		notifier:   n,
		sendDelay:  sendDelay,
		resetDelay: resetDelay,
		phase:      PhaseEditing,
	}
}

// Submit validates form and starts sending it. Validation errors are
// returned unchanged so the caller can surface them.
func (f *Flow) Submit(form Form) error {
	if f.phase != PhaseEditing {
		return ErrBusy
	}
	if err := form.Validate(); err != nil {
		return errors.Wrap(err, "validate contact form")
	}
	f.form = form
	f.phase = PhaseSending
	f.notifier.Notify("Sending message...", notify.LevelInfo)
	f.task = f.sched.After(f.sendDelay, f.sent)
	return nil
}

func (f *Flow) sent() {
	f.phase = PhaseSent
	f.notifier.Notify("Message sent successfully!", notify.LevelSuccess)
	if f.OnSent != nil {
		f.OnSent(f.form)
	}
	f.task = f.sched.After(f.resetDelay, f.reset)
}

func (f *Flow) reset() {
	f.phase = PhaseEditing
	f.form = Form{}
	f.task = nil
}

// Cancel aborts a submission in progress and returns to an empty form.
func (f *Flow) Cancel() bool {
	if f.phase == PhaseEditing {
		return false
	}
	f.task.Cancel()
	f.reset()
	return true
}

// Phase returns the current phase.
func (f *Flow) Phase() Phase { return f.phase }

// Form returns the submission being sent, or the zero Form while editing.
func (f *Flow) Form() Form { return f.form }
