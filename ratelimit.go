package speq

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures the RateLimit middleware.
type RateLimitConfig struct {
	Rate            float64                                      // requests per second
	Burst           int                                          // max burst
	KeyFunc         func(r *http.Request) string                 // default: remote IP
	OnLimit         func(w http.ResponseWriter, r *http.Request) // default: 429 response
	CleanupInterval time.Duration                                // how often to prune idle limiters (default: 1m)
	MaxIdle         time.Duration                                // remove limiters idle longer than this (default: 5m)
}

// RateLimit returns middleware that applies per-key rate limiting.
func RateLimit(cfg RateLimitConfig) Middleware {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = remoteHost
	}
	if cfg.OnLimit == nil {
		cfg.OnLimit = func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}
	}
	set := newLimiterSet(rateLimit(cfg.Rate), cfg.Burst, cfg.CleanupInterval, cfg.MaxIdle)
	retryAfter := retryAfterSeconds(cfg.Rate)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !set.allow(cfg.KeyFunc(r), time.Now()) {
				w.Header().Set("Retry-After", retryAfter)
				cfg.OnLimit(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// rateLimit converts requests per second to a limit. Zero or less denies
// everything beyond the burst.
func rateLimit(perSecond float64) rate.Limit {
	if perSecond <= 0 {
		return 0
	}
	return rate.Limit(perSecond)
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// retryAfterSeconds returns the whole seconds until one token is refilled,
// at least one.
func retryAfterSeconds(perSecond float64) string {
	if perSecond <= 0 {
		return "1"
	}
	return strconv.Itoa(max(1, int(math.Ceil(1/perSecond))))
}

// limiterSet holds one token bucket per key and lazily drops idle ones.
type limiterSet struct {
	limit   rate.Limit
	burst   int
	every   time.Duration
	maxIdle time.Duration

	mu          sync.Mutex
	entries     map[string]*limiterEntry
	lastCleanup time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLimiterSet(limit rate.Limit, burst int, every, maxIdle time.Duration) *limiterSet {
	if every <= 0 {
		every = time.Minute
	}
	if maxIdle <= 0 {
		maxIdle = 5 * time.Minute
	}
	return &limiterSet{
		limit:   limit,
		burst:   burst,
		every:   every,
		maxIdle: maxIdle,
		entries: make(map[string]*limiterEntry),
	}
}

// allow reports whether a request for key may proceed at now.
func (s *limiterSet) allow(key string, now time.Time) bool {
	s.mu.Lock()
	if now.Sub(s.lastCleanup) >= s.every {
		s.prune(now)
	}
	e, ok := s.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.entries[key] = e
	}
	e.lastSeen = now
	s.mu.Unlock()

	return e.limiter.AllowN(now, 1)
}

// prune drops entries idle longer than maxIdle. The caller holds mu.
func (s *limiterSet) prune(now time.Time) {
	for k, e := range s.entries {
		if now.Sub(e.lastSeen) > s.maxIdle {
			delete(s.entries, k)
		}
	}
	s.lastCleanup = now
}

// size returns the number of tracked keys.
func (s *limiterSet) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
