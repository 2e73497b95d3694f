package storefront

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// ErrTooManySessions is returned by Create when the session cap is reached.
var ErrTooManySessions = errors.New("too many sessions")

// ErrRegistryClosed is returned by Create once Close has run.
var ErrRegistryClosed = errors.New("registry closed")

// RegistryConfig limits the number and lifetime of sessions.
type RegistryConfig struct {
	// IdleTTL evicts sessions not used for this long. Zero disables
	// eviction.
	IdleTTL time.Duration
	// SweepInterval is how often Run looks for idle sessions.
	SweepInterval time.Duration
	// Max caps live sessions. Zero means unlimited.
	Max int
}

type entry struct {
	sf       *Storefront
	lastSeen time.Time
}

// Registry holds the live sessions of a server. It is safe for concurrent
// use.
type Registry struct {
	opts  Options
	cfg   RegistryConfig
	clock clockwork.Clock
	lg    *zap.Logger
	newID func() string

	mu       sync.Mutex
	sessions map[string]*entry
	closed   bool
}

// NewRegistry creates a Registry whose sessions are built from opts.
func NewRegistry(opts Options, cfg RegistryConfig) *Registry {
	opts.setDefaults()
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	return &Registry{
		opts:     opts,
		cfg:      cfg,
		clock:    opts.Clock,
		lg:       opts.Logger,
		newID:    uuid.NewString,
		sessions: make(map[string]*entry),
	}
}

// Create starts a new session with a random id.
func (r *Registry) Create(ctx context.Context) (*Storefront, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrRegistryClosed
	}
	if r.cfg.Max > 0 && len(r.sessions) >= r.cfg.Max {
		r.mu.Unlock()
		return nil, ErrTooManySessions
	}
	id := r.newID()
	// Reserve the slot so concurrent creates respect the cap.
	r.sessions[id] = &entry{lastSeen: r.clock.Now()}
	r.mu.Unlock()

	sf, err := New(ctx, id, r.opts)

	r.mu.Lock()
	if err != nil {
		delete(r.sessions, id)
		r.mu.Unlock()
		return nil, errors.Wrap(err, "create storefront")
	}
	// Close may have dropped the reservation while New was running.
	e, ok := r.sessions[id]
	if !ok {
		r.mu.Unlock()
		sf.Close()
		return nil, ErrRegistryClosed
	}
	e.sf = sf
	n := len(r.sessions)
	r.mu.Unlock()

	r.lg.Debug("Session created", zap.String("session_id", id), zap.Int("sessions", n))
	return sf, nil
}

// Get returns the session with id and marks it as used.
func (r *Registry) Get(id string) (*Storefront, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok || e.sf == nil {
		return nil, false
	}
	e.lastSeen = r.clock.Now()
	return e.sf, true
}

// Remove closes and forgets the session with id.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	e, ok := r.sessions[id]
	if ok && e.sf != nil {
		delete(r.sessions, id)
	}
	r.mu.Unlock()
	if !ok || e.sf == nil {
		return false
	}
	e.sf.Close()
	return true
}

// Sweep closes sessions idle since before now minus IdleTTL and returns how
// many were evicted.
func (r *Registry) Sweep(now time.Time) int {
	if r.cfg.IdleTTL <= 0 {
		return 0
	}
	cutoff := now.Add(-r.cfg.IdleTTL)

	var evicted []*Storefront
	r.mu.Lock()
	for id, e := range r.sessions {
		if e.sf != nil && e.lastSeen.Before(cutoff) {
			evicted = append(evicted, e.sf)
			delete(r.sessions, id)
		}
	}
	left := len(r.sessions)
	r.mu.Unlock()

	for _, sf := range evicted {
		sf.Close()
	}
	if len(evicted) > 0 {
		r.lg.Info("Evicted idle sessions", zap.Int("evicted", len(evicted)), zap.Int("sessions", left))
	}
	return len(evicted)
}

// Run sweeps idle sessions every SweepInterval until ctx is done, then
// closes every remaining session.
func (r *Registry) Run(ctx context.Context) error {
	ticker := r.clock.NewTicker(r.cfg.SweepInterval)
	defer ticker.Stop()
	defer r.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.Chan():
			r.Sweep(now)
		}
	}
}

// Close closes every session. Create fails with ErrRegistryClosed
// afterwards.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	sessions := r.sessions
	r.sessions = make(map[string]*entry)
	r.mu.Unlock()

	for _, e := range sessions {
		if e.sf != nil {
			e.sf.Close()
		}
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Headroom fails when the session cap is reached. It backs a readiness
// check so a full server stops receiving new shoppers.
func (r *Registry) Headroom(context.Context) error {
	if r.cfg.Max <= 0 {
		return nil
	}
	if r.Len() >= r.cfg.Max {
		return ErrTooManySessions
	}
	return nil
}
