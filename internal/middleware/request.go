package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hokkyo/cpadash-backend/internal/platform/logger"
)

const RequestIDKey = "request_id"

type RequestMiddleware struct {
	log *logger.Logger
}

func NewRequestMiddleware(log *logger.Logger) *RequestMiddleware {
	return &RequestMiddleware{log: log.With("middleware", "RequestMiddleware")}
}

// RequestID tags every request with a uuid, honoring an inbound X-Request-ID.
func (m *RequestMiddleware) RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// RequestLog emits one structured line per request after it completes.
func (m *RequestMiddleware) RequestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		m.log.Info("Request completed",
			"request_id", c.GetString(RequestIDKey),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
