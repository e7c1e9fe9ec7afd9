package httpmiddleware

import (
	"net/http"
	"time"

	"querywise/internal/models"
	"querywise/pkg/logger"
	"querywise/pkg/ratelimiter"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader 是请求 ID 的传递头。
const RequestIDHeader = "X-Request-ID"

// MsgTooManyRequests 是限流时返回给调用方的正文。
const MsgTooManyRequests = "Demasiadas solicitudes."

// RequestID reuses the caller's X-Request-ID or generates one, echoes it in
// the response and stores a request-scoped logger in the request context.
func RequestID(base *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)

		reqLogger := base.WithTraceID(id).WithRequest(models.RequestInfo{
			Method:     c.Request.Method,
			Path:       c.Request.URL.Path,
			RemoteAddr: c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
		})
		c.Request = c.Request.WithContext(logger.IntoContext(c.Request.Context(), reqLogger))
		c.Next()
	}
}

// AccessLog writes one entry per request after the handler chain returns.
func AccessLog(base *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.FromContext(c.Request.Context(), base).WithPayload(map[string]interface{}{
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"bytes":      c.Writer.Size(),
		}).Info("Request completed")
	}
}

// RateLimit rejects requests with 429 once the limiter says no. When the
// limiter itself fails the request is let through and the failure logged.
func RateLimit(limiter ratelimiter.RateLimiter, base *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context())
		if err != nil {
			logger.FromContext(c.Request.Context(), base).WithError(models.ErrorInfo{
				Message: err.Error(),
				Type:    "RateLimiterUnavailable",
			}).Warn("Rate limiter failed, allowing request")
			c.Next()
			return
		}
		if !allowed {
			c.Data(http.StatusTooManyRequests, "text/plain; charset=utf-8", []byte(MsgTooManyRequests))
			c.Abort()
			return
		}
		c.Next()
	}
}
