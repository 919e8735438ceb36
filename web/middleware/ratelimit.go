// Package middleware holds the gin middleware of the news site.
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"github.com/yanews/ya-news/logger"
	"golang.org/x/time/rate"
)

// RateLimitConfig configures rate limiting
type RateLimitConfig struct {
	RequestsPerMinute int
	BurstSize         int
	// Methods limited; empty means every method.
	Methods []string
	KeyFunc func(c *gin.Context) string
	// IdleTimeout drops the limiter of a client that has been quiet that long.
	IdleTimeout time.Duration
}

// DefaultRateLimitConfig limits state-changing requests per client IP.
func DefaultRateLimitConfig(requestsPerMinute, burst int) RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: requestsPerMinute,
		BurstSize:         burst,
		Methods:           []string{http.MethodPost},
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
		IdleTimeout: 5 * time.Minute,
	}
}

func (config RateLimitConfig) applies(method string) bool {
	if len(config.Methods) == 0 {
		return true
	}
	for _, m := range config.Methods {
		if m == method {
			return true
		}
	}
	return false
}

// RateLimitMiddleware answers 429 once a client exceeds its token bucket.
// Each middleware instance owns its limiters.
func RateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	limiters := gocache.New(config.IdleTimeout, time.Minute)
	every := rate.Every(time.Minute / time.Duration(max(config.RequestsPerMinute, 1)))

	return func(c *gin.Context) {
		if !config.applies(c.Request.Method) {
			c.Next()
			return
		}

		key := config.KeyFunc(c)
		var limiter *rate.Limiter
		if v, ok := limiters.Get(key); ok {
			limiter = v.(*rate.Limiter)
		} else {
			limiter = rate.NewLimiter(every, config.BurstSize)
			if err := limiters.Add(key, limiter, gocache.DefaultExpiration); err != nil {
				// another request registered the key first
				v, _ := limiters.Get(key)
				limiter = v.(*rate.Limiter)
			}
		}
		// refresh the idle expiry
		limiters.SetDefault(key, limiter)

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerMinute))
		if !limiter.Allow() {
			logger.Warningf("Rate limit exceeded for %s on %s", key, c.Request.URL.Path)
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}
