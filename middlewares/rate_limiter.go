package middlewares

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yeremiapane/restaurant-platform/utils"
)

const limiterIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	visitors map[string]*visitor
	mu       sync.Mutex
}

// NewRateLimiter allows requests per interval for each IP, with the same
// burst.
func NewRateLimiter(requests int, interval time.Duration) *RateLimiter {
	if requests <= 0 {
		requests = 1
	}
	return &RateLimiter{
		limit:    rate.Every(interval / time.Duration(requests)),
		burst:    requests,
		visitors: make(map[string]*visitor),
	}
}

// NewStrictRateLimiter is meant for login and registration: 5 attempts
// per minute and IP.
func NewStrictRateLimiter() gin.HandlerFunc {
	return NewRateLimiter(5, time.Minute).RateLimit()
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > limiterIdleTTL {
			delete(rl.visitors, key)
		}
	}

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.Allow()
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			utils.RespondError(c, http.StatusTooManyRequests, errors.New("Trop de requêtes, veuillez patienter"))
			c.Abort()
			return
		}
		c.Next()
	}
}
