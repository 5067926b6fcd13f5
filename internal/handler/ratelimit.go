package handler

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmerrifield20/cardledger/internal/principal"
	"golang.org/x/time/rate"
)

const (
	limiterIdle   = 10 * time.Minute
	sweepInterval = 5 * time.Minute
	maxLimiters   = 10_000
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter returns a Gin middleware that enforces token-bucket rate
// limiting per caller. It must run after Principal: requests carrying a valid
// principal are keyed by it, everything else by client IP.
//
// Each IP may only introduce new principals at the request rate. Past that,
// or once maxLimiters buckets exist, unseen principals share their IP's
// bucket, so rotating X-Principal values neither escapes the limit nor grows
// the table without bound. Idle limiters are swept lazily on later requests.
func RateLimiter(rps, burst int) gin.HandlerFunc {
	var (
		mu        sync.Mutex
		limiters  = make(map[string]*clientLimiter)
		minters   = make(map[string]*clientLimiter)
		lastSweep = time.Now()
	)

	get := func(m map[string]*clientLimiter, key string, now time.Time) *clientLimiter {
		l, ok := m[key]
		if !ok {
			l = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
			m[key] = l
		}
		l.lastSeen = now
		return l
	}

	return func(c *gin.Context) {
		ipKey := "ip:" + c.ClientIP()
		key := ipKey

		now := time.Now()
		mu.Lock()
		if now.Sub(lastSweep) > sweepInterval {
			for _, m := range []map[string]*clientLimiter{limiters, minters} {
				for k, l := range m {
					if now.Sub(l.lastSeen) > limiterIdle {
						delete(m, k)
					}
				}
			}
			lastSweep = now
		}
		if p, ok := principal.FromContext(c.Request.Context()); ok {
			pKey := "principal:" + string(p)
			if _, seen := limiters[pKey]; seen {
				key = pKey
			} else if len(limiters) < maxLimiters && get(minters, ipKey, now).limiter.Allow() {
				key = pKey
			}
		}
		l := get(limiters, key, now)
		mu.Unlock()

		if !l.limiter.Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
