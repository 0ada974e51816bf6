package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"seedream-studio/internal/utils"
)

const (
	// limiterIdleTTL is how long an IP's limiter may sit unused before it is
	// eligible for eviction.
	limiterIdleTTL = 10 * time.Minute
	// limiterSweepAt bounds the per-IP map: once it grows to this size, the
	// next access evicts idle entries before inserting.
	limiterSweepAt = 1024
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterPool hands out one token bucket per client IP and keeps the map
// bounded by sweeping idle entries.
type limiterPool struct {
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	sweepAt int
	clients map[string]*clientLimiter
}

func newLimiterPool(rps float64, burst int) *limiterPool {
	return &limiterPool{
		rps:     rate.Limit(rps),
		burst:   burst,
		sweepAt: limiterSweepAt,
		clients: make(map[string]*clientLimiter),
	}
}

func (p *limiterPool) get(ip string, now time.Time) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.clients) >= p.sweepAt {
		for k, v := range p.clients {
			if now.Sub(v.lastSeen) > limiterIdleTTL {
				delete(p.clients, k)
			}
		}
	}

	cl, ok := p.clients[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(p.rps, p.burst)}
		p.clients[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

func (p *limiterPool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.clients)
}

// RateLimit throttles a route group per client IP using a token bucket.
// Limiters are kept in-process; this protects the generation endpoint, not
// the whole service.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	pool := newLimiterPool(rps, burst)

	return func(c *gin.Context) {
		if !pool.get(c.ClientIP(), time.Now()).Allow() {
			c.JSON(http.StatusTooManyRequests, utils.NewErrorBody("Too many generation requests, slow down"))
			c.Abort()
			return
		}
		c.Next()
	}
}
