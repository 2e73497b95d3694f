// Package checkout implements the simulated checkout state machine.
//
// A checkout moves Idle to Pending when it starts and back to Idle once the
// simulated processing delay elapses. There is no persistent Completed
// state: completion clears the cart, emits a receipt and immediately
// accepts a new checkout.
package checkout

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/notify"
	"github.com/xenking/storefront/internal/schedule"
)

// DefaultDelay is the simulated processing time.
const DefaultDelay = 2 * time.Second

// ErrInProgress is returned by callers that refuse to touch the cart while
// a checkout is pending.
var ErrInProgress = errors.New("checkout in progress")

// State of the machine.
type State string

const (
	StateIdle    State = "idle"
	StatePending State = "pending"
)

// Outcome is the result of a Start call.
type Outcome string

const (
	// OutcomeEmpty means the cart had no lines. Nothing happened.
	OutcomeEmpty Outcome = "empty"
	// OutcomeLoginRequired means the session is anonymous and the login
	// surface should be shown.
	OutcomeLoginRequired Outcome = "login_required"
	// OutcomeBusy means a checkout was already pending.
	OutcomeBusy Outcome = "busy"
	// OutcomePending means processing has started.
	OutcomePending Outcome = "pending"
)

// Receipt describes a completed checkout.
type Receipt struct {
	OrderID  uuid.UUID
	Identity string
	Lines    []cart.Line
	Total    decimal.Decimal
	PlacedAt time.Time
}

// Cart is the subset of the cart the flow reads and clears.
type Cart interface {
	IsEmpty() bool
	Lines() []cart.Line
	Total() decimal.Decimal
	Clear()
}

// Session reports who is checking out.
type Session interface {
	IsAuthenticated() bool
	Identity() (string, bool)
}

// Scheduler defers callbacks into the owning session's loop.
type Scheduler interface {
	After(d time.Duration, fn func()) *schedule.Task
	Clock() clockwork.Clock
}

// Notifier raises user-facing toasts.
type Notifier interface {
	Notify(message string, level notify.Level) notify.Toast
}

// Flow is the checkout state machine of one session. Like everything owned
// by a session it must be driven from that session's loop.
type Flow struct {
	cart     Cart
	session  Session
	sched    Scheduler
	notifier Notifier
	delay    time.Duration
	newID    func() uuid.UUID

	state    State
	task     *schedule.Task
	snapshot Receipt

	// OnComplete, when set, is called with every receipt after the cart
	// has been cleared.
	OnComplete func(Receipt)
}

// New creates an idle Flow. A zero delay selects DefaultDelay.
func New(c Cart, s Session, sched Scheduler, n Notifier, delay time.Duration) *Flow {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Flow{
		cart:     c,
		session:  s,
		sched:    sched,
		notifier: n,
		delay:    delay,
		newID:    uuid.New,
		state:    StateIdle,
	}
}

// Start attempts to move from Idle to Pending.
func (f *Flow) Start() Outcome {
	if f.state == StatePending {
		f.notifier.Notify("Checkout already in progress", notify.LevelInfo)
		return OutcomeBusy
	}
	if f.cart.IsEmpty() {
		return OutcomeEmpty
	}
	if !f.session.IsAuthenticated() {
		f.notifier.Notify("Please login to checkout", notify.LevelInfo)
		return OutcomeLoginRequired
	}

	identity, _ := f.session.Identity()
	f.snapshot = Receipt{
		OrderID:  f.newID(),
		Identity: identity,
		Lines:    f.cart.Lines(),
		Total:    f.cart.Total(),
	}
	f.state = StatePending
	f.notifier.Notify("Processing checkout...", notify.LevelInfo)
	f.task = f.sched.After(f.delay, f.complete)
	return OutcomePending
}

func (f *Flow) complete() {
	receipt := f.snapshot
	receipt.PlacedAt = f.sched.Clock().Now()

	f.cart.Clear()
	f.state = StateIdle
	f.task = nil
	f.snapshot = Receipt{}

	f.notifier.Notify("Checkout completed successfully!", notify.LevelSuccess)
	if f.OnComplete != nil {
		f.OnComplete(receipt)
	}
}

// Cancel aborts a pending checkout without touching the cart. It reports
// whether anything was pending.
func (f *Flow) Cancel() bool {
	if f.state != StatePending {
		return false
	}
	f.task.Cancel()
	f.state = StateIdle
	f.task = nil
	f.snapshot = Receipt{}
	return true
}

// Locked reports whether a checkout is pending. The cart must not change
// while the flow is locked.
func (f *Flow) Locked() bool { return f.state == StatePending }

// State returns the current state.
func (f *Flow) State() State { return f.state }
