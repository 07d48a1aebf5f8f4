package speq

import "time"

// Test-only exports for internal functions.
var (
	PathParams        = pathParams
	OpenAPIPath       = openAPIPath
	DefaultRouteName  = defaultRouteName
	RetryAfterSeconds = retryAfterSeconds
	CallerSource      = callerSource
	ETagMatch         = etagMatch
	StaticHandler     = staticHandler
	ValidRequestID    = validRequestID
)

// TestLimiterSet wraps limiterSet for external tests.
type TestLimiterSet struct {
	set *limiterSet
}

// NewLimiterSet creates a TestLimiterSet.
func NewLimiterSet(perSecond float64, burst int, every, maxIdle time.Duration) *TestLimiterSet {
	return &TestLimiterSet{set: newLimiterSet(rateLimit(perSecond), burst, every, maxIdle)}
}

// Allow delegates to limiterSet.allow.
func (t *TestLimiterSet) Allow(key string, now time.Time) bool { return t.set.allow(key, now) }

// Size delegates to limiterSet.size.
func (t *TestLimiterSet) Size() int { return t.set.size() }
