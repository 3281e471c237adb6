package middleware

import (
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrRateLimited is reported when a client exceeds its request rate.
var ErrRateLimited = errors.New("rate limit exceeded")

// DefaultIdleTTL is how long a client's bucket is kept after its last request.
const DefaultIdleTTL = 10 * time.Minute

// RateLimiter keeps one token bucket per client address. Buckets idle for
// longer than the idle TTL are dropped; a returning client starts full.
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*client
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows rps requests per second per client with the given
// burst. A non-positive rps disables limiting.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	return &RateLimiter{
		clients:   make(map[string]*client),
		limit:     limit,
		burst:     burst,
		idleTTL:   DefaultIdleTTL,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (rl *RateLimiter) get(addr string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= rl.idleTTL {
		rl.sweep(now)
	}

	c, ok := rl.clients[addr]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[addr] = c
	}
	c.lastSeen = now
	return c.limiter
}

// sweep drops idle clients. Callers hold rl.mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for addr, c := range rl.clients {
		if now.Sub(c.lastSeen) >= rl.idleTTL {
			delete(rl.clients, addr)
		}
	}
	rl.lastSweep = now
}

// Allow reports whether addr may make another request now.
func (rl *RateLimiter) Allow(addr string) bool {
	return rl.get(addr).Allow()
}

func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// RateLimit returns a middleware rejecting requests over the client's rate.
func RateLimit(rl *RateLimiter, writeError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.Allow(clientAddr(r)) {
				writeError(w, r, ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
