package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const minIdleTTL = time.Minute

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per authenticated user. Its middleware
// must run after RequireUser.
//
// A bucket left idle long enough to refill completely is indistinguishable
// from a new one, so such buckets are dropped.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time

	mu        sync.Mutex
	buckets   map[uint]*bucket
	lastSweep time.Time
}

func NewRateLimiter(limit rate.Limit, burst int) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		burst:   burst,
		idleTTL: refillTime(limit, burst),
		now:     time.Now,
		buckets: make(map[uint]*bucket),
	}
}

// refillTime is how long an empty bucket takes to fill up again. A zero
// result disables eviction.
func refillTime(limit rate.Limit, burst int) time.Duration {
	if limit <= 0 {
		return 0
	}
	if limit == rate.Inf {
		return minIdleTTL
	}
	d := time.Duration(float64(burst) / float64(limit) * float64(time.Second))
	return max(d, minIdleTTL)
}

func (rl *RateLimiter) allow(userID uint) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	b, ok := rl.buckets[userID]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[userID] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// sweep drops idle buckets at most once per idleTTL. Callers hold mu.
func (rl *RateLimiter) sweep(now time.Time) {
	if rl.idleTTL == 0 || now.Sub(rl.lastSweep) < rl.idleTTL {
		return
	}
	for id, b := range rl.buckets {
		if now.Sub(b.lastSeen) >= rl.idleTTL {
			delete(rl.buckets, id)
		}
	}
	rl.lastSweep = now
}

// Middleware returns 429 once the caller's bucket is empty.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			r := requesterFrom(c)
			if r == nil {
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Error:     "authentication required",
					RequestID: requestID(c),
				})
			}
			if !rl.allow(r.UserID) {
				return c.JSON(http.StatusTooManyRequests, ErrorResponse{
					Error:     "too many interpretation requests, slow down",
					RequestID: requestID(c),
				})
			}
			return next(c)
		}
	}
}
