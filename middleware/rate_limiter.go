package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"medibook/config"
)

const limiterIdleEviction = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiterStore maps client IPs to their limiters. Entries idle past
// limiterIdleEviction are pruned on access so the map stays bounded.
type rateLimiterStore struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	swept   time.Time
}

var limiterStore = &rateLimiterStore{clients: make(map[string]*clientLimiter)}

func (s *rateLimiterStore) get(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if now.Sub(s.swept) > limiterIdleEviction {
		for addr, cl := range s.clients {
			if now.Sub(cl.lastSeen) > limiterIdleEviction {
				delete(s.clients, addr)
			}
		}
		s.swept = now
	}

	cl, ok := s.clients[ip]
	if !ok {
		perMin := config.AppConfig.MaxRequestsPerMin
		if perMin <= 0 {
			perMin = 60
		}
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMin)), perMin)}
		s.clients[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

// RateLimitMiddleware limits chat requests per client IP.
func RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := getClientIP(c)
		if !limiterStore.get(ip).Allow() {
			zap.L().Warn("Rate limit exceeded", zap.String("ip", ip))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Try again later."})
			return
		}
		c.Next()
	}
}
