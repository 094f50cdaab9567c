// api/middleware/rate_limiter.go
package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/nebula-admin/internal/admin"
	"github.com/Annany2002/nebula-admin/internal/i18n"
)

const CodeTooManyRequests = "too_many_requests"

// RateLimiter is a sliding-window counter per client IP.
type RateLimiter struct {
	requests map[string][]time.Time
	mutex    sync.Mutex
	limit    int
	window   time.Duration
	now      func() time.Time
}

// NewRateLimiter allows limit requests per window for each IP.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 5
	}
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	windowStart := now.Add(-rl.window)

	filtered := rl.requests[ip][:0]
	for _, t := range rl.requests[ip] {
		if t.After(windowStart) {
			filtered = append(filtered, t)
		}
	}
	if len(filtered) == 0 {
		delete(rl.requests, ip)
	} else {
		rl.requests[ip] = filtered
	}

	if len(filtered) >= rl.limit {
		return false
	}
	rl.requests[ip] = append(filtered, now)
	return true
}

func getIP(c *gin.Context) string {
	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.ClientIP()
	}
	return ip
}

// RateLimitMiddleware answers 429 too_many_requests once the client IP is
// over the limit.
func RateLimitMiddleware(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := getIP(c)
		if !rl.Allow(ip) {
			customLog.Warnf("RateLimiter: Too many requests from %s", ip)
			_ = c.Error(admin.NewAPIError(http.StatusTooManyRequests, CodeTooManyRequests, i18n.T(CodeTooManyRequests)))
			c.Abort()
			return
		}
		c.Next()
	}
}
