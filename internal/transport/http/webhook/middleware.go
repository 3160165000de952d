package webhookhttp

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"tvbridge/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	headerRequestID = "X-Request-ID"
	headerSecret    = "X-Webhook-Secret"
	ctxRequestID    = "request_id"
)

// requestID tags every request, reusing a caller-supplied id when present.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(headerRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		client := c.ClientIP()
		c.Next()
		dur := time.Since(start)
		status := c.Writer.Status()
		if status >= http.StatusInternalServerError {
			logger.Warnf("HTTP %s %s status=%d ip=%s dur=%s id=%s", method, path, status, client, dur, c.GetString(ctxRequestID))
			return
		}
		logger.Debugf("HTTP %s %s status=%d ip=%s dur=%s id=%s", method, path, status, client, dur, c.GetString(ctxRequestID))
	}
}

// rateLimit applies one token bucket to every caller of the wrapped routes.
// A nil limiter lets everything through.
func rateLimit(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limiter.Allow() {
			c.Next()
			return
		}
		logger.Warnf("HTTP %s %s rate limited ip=%s", c.Request.Method, c.Request.URL.Path, c.ClientIP())
		c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
			Success:   false,
			Error:     "rate limit exceeded",
			ErrorKind: "RateLimited",
		})
	}
}

func newLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// secretMatches compares in constant time. An empty expected secret accepts
// anything.
func secretMatches(expected, provided string) bool {
	if expected == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) == 1
}
