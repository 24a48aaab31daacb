package middleware

import (
	"maps"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	// DefaultRateLimit is the default rate limit per minute
	DefaultRateLimit = 100
	// DefaultBurstSize is the default burst size
	DefaultBurstSize = 10
	// CleanupInterval is how often idle clients are swept
	CleanupInterval = 5 * time.Minute
	// LimiterTTL is how long a client may stay idle before its bucket is dropped
	LimiterTTL = 10 * time.Minute
)

// RateLimiter keeps one token bucket per client identity. Identities come
// from GetClientID: the ledger token when authenticated, the remote IP otherwise.
type RateLimiter struct {
	mu                sync.Mutex
	buckets           map[string]*bucket
	requestsPerMinute int
	perSecond         rate.Limit
	burstSize         int
	now               func() time.Time
	stopCh            chan struct{}
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Quota is a client's standing after a request, as reported in the
// X-RateLimit-* headers.
type Quota struct {
	Limit     int
	Remaining int
	Reset     time.Time
}

// NewRateLimiter creates a new RateLimiter with default settings
func NewRateLimiter() *RateLimiter {
	return NewRateLimiterWithConfig(DefaultRateLimit, DefaultBurstSize)
}

// NewRateLimiterWithConfig creates a RateLimiter with custom configuration
func NewRateLimiterWithConfig(requestsPerMinute int, burstSize int) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRateLimit
	}
	if burstSize <= 0 {
		burstSize = DefaultBurstSize
	}

	rl := &RateLimiter{
		buckets:           make(map[string]*bucket),
		requestsPerMinute: requestsPerMinute,
		perSecond:         rate.Limit(float64(requestsPerMinute) / 60),
		burstSize:         burstSize,
		now:               time.Now,
		stopCh:            make(chan struct{}),
	}

	go rl.sweepLoop()

	return rl
}

// Allow spends one token from the client's bucket and returns whether the
// request may proceed together with the client's remaining quota.
func (r *RateLimiter) Allow(clientID string) (bool, Quota) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	b := r.buckets[clientID]
	if b == nil {
		b = &bucket{limiter: rate.NewLimiter(r.perSecond, r.burstSize)}
		r.buckets[clientID] = b
	}
	b.lastSeen = now

	ok := b.limiter.AllowN(now, 1)
	return ok, r.quota(b.limiter.TokensAt(now), now)
}

// Peek reports the client's quota without spending a token.
func (r *RateLimiter) Peek(clientID string) Quota {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if b := r.buckets[clientID]; b != nil {
		return r.quota(b.limiter.TokensAt(now), now)
	}
	return r.quota(float64(r.burstSize), now)
}

// quota turns a bucket level into headers. Reset is when the bucket is full again.
func (r *RateLimiter) quota(tokens float64, now time.Time) Quota {
	tokens = math.Max(tokens, 0)
	missing := float64(r.burstSize) - tokens
	refill := time.Duration(missing / float64(r.perSecond) * float64(time.Second))
	return Quota{
		Limit:     r.requestsPerMinute,
		Remaining: int(tokens),
		Reset:     now.Add(refill),
	}
}

// sweep drops buckets idle since before cutoff and returns how many went.
func (r *RateLimiter) sweep(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	before := len(r.buckets)
	maps.DeleteFunc(r.buckets, func(_ string, b *bucket) bool {
		return b.lastSeen.Before(cutoff)
	})
	return before - len(r.buckets)
}

func (r *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := r.sweep(r.now().Add(-LimiterTTL)); n > 0 {
				log.Debug().Int("clients", n).Msg("Dropped idle rate limit buckets")
			}
		case <-r.stopCh:
			return
		}
	}
}

// Stop ends the sweep goroutine
func (r *RateLimiter) Stop() {
	close(r.stopCh)
}

func (q Quota) writeHeaders(h http.Header) {
	h.Set("X-RateLimit-Limit", strconv.Itoa(q.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(q.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(q.Reset.Unix(), 10))
}

// RateLimitMiddleware returns an Echo middleware that applies rate limiting per
// client. A refused request gets a *Rejection with its Retry-After already set.
func RateLimitMiddleware(rl *RateLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			clientID := GetClientID(c)
			ok, quota := rl.Allow(clientID)
			quota.writeHeaders(c.Response().Header())
			if ok {
				return next(c)
			}

			retryAfter := max(int(math.Ceil(quota.Reset.Sub(rl.now()).Seconds())), 1)
			c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))

			log.Warn().
				Str("client_id", clientID).
				Int("retry_after", retryAfter).
				Msg("Rate limit exceeded")
			return rateLimited(retryAfter)
		}
	}
}
