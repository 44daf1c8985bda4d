package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BruksfildServices01/booking-flow/internal/httperr"
)

// RateLimitMiddleware limits requests per client IP. Limiters of idle IPs
// expire after ten minutes.
func RateLimitMiddleware(perMinute int, log *zap.Logger) gin.HandlerFunc {
	if perMinute <= 0 {
		perMinute = 60
	}
	burst := perMinute / 4
	if burst < 1 {
		burst = 1
	}

	limiters := expirable.NewLRU[string, *rate.Limiter](10000, nil, 10*time.Minute)

	return func(c *gin.Context) {
		ip := c.ClientIP()

		limiter, ok := limiters.Get(ip)
		if !ok {
			limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst)
			limiters.Add(ip, limiter)
		}

		if !limiter.Allow() {
			log.Warn("rate limit exceeded", zap.String("ip", ip))
			httperr.TooManyRequests(c, "rate_limited", "Muitas tentativas. Aguarde um instante.")
			c.Abort()
			return
		}
		c.Next()
	}
}
