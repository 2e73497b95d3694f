package httpmiddleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// RateLimitConfig configures the sliding window rate limiter.
type RateLimitConfig struct {
	// Max is the number of requests allowed per window. Zero disables
	// limiting.
	Max int
	// Window is the length of one window.
	Window time.Duration
	// KeyFunc identifies the client. Defaults to ClientIP.
	KeyFunc func(*http.Request) string
	// Clock defaults to the real clock.
	Clock clockwork.Clock
}

// window counts requests in the current and previous fixed windows. The
// sliding estimate weights the previous count by its remaining overlap.
type window struct {
	prev      float64
	curr      float64
	currStart time.Time
}

// RateLimiter enforces a per-key request budget.
type RateLimiter struct {
	max    int
	size   time.Duration
	key    func(*http.Request) string
	clock  clockwork.Clock
	mu     sync.Mutex
	counts map[string]*window
}

// NewRateLimiter creates a RateLimiter from cfg.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = ClientIP
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	return &RateLimiter{
		max:    cfg.Max,
		size:   cfg.Window,
		key:    cfg.KeyFunc,
		clock:  cfg.Clock,
		counts: make(map[string]*window),
	}
}

// Allow records a request for key at now. It returns the remaining budget,
// when the current window resets, and whether the request may proceed.
func (rl *RateLimiter) Allow(key string, now time.Time) (remaining int, resetAt time.Time, ok bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	start := now.Truncate(rl.size)
	w, found := rl.counts[key]
	switch {
	case !found:
		w = &window{currStart: start}
		rl.counts[key] = w
	case start.Sub(w.currStart) >= 2*rl.size:
		*w = window{currStart: start}
	case start.After(w.currStart):
		*w = window{prev: w.curr, currStart: start}
	}

	overlap := 1 - float64(now.Sub(w.currStart))/float64(rl.size)
	used := w.prev*math.Max(overlap, 0) + w.curr
	resetAt = w.currStart.Add(rl.size)
	if used >= float64(rl.max) {
		return 0, resetAt, false
	}
	w.curr++
	return max(int(float64(rl.max)-used-1), 0), resetAt, true
}

// Cleanup forgets keys whose windows have both expired.
func (rl *RateLimiter) Cleanup(now time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	n := 0
	for key, w := range rl.counts {
		if now.Sub(w.currStart) >= 2*rl.size {
			delete(rl.counts, key)
			n++
		}
	}
	return n
}

// Run calls Cleanup every two windows until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context) error {
	ticker := rl.clock.NewTicker(2 * rl.size)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.Chan():
			rl.Cleanup(now)
		}
	}
}

// Middleware rejects requests over budget with 429 and sets the
// X-RateLimit-* headers on every response.
func (rl *RateLimiter) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		if rl.max <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := rl.clock.Now()
			remaining, resetAt, ok := rl.Allow(rl.key(r), now)

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(rl.max))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
			if !ok {
				retry := max(resetAt.Sub(now), 0)
				h.Set("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
				WriteError(w, http.StatusTooManyRequests, "rate_limit", "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP keys requests by the first X-Forwarded-For hop, then X-Real-IP,
// then the connection address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// SessionOrIP keys requests by session id when the client presents one in
// the named cookie or header, and by ClientIP otherwise.
func SessionOrIP(cookie, header string) func(*http.Request) string {
	return func(r *http.Request) string {
		if c, err := r.Cookie(cookie); err == nil && c.Value != "" {
			return "session:" + c.Value
		}
		if v := r.Header.Get(header); v != "" {
			return "session:" + v
		}
		return "ip:" + ClientIP(r)
	}
}
