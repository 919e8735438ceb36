package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yanews/ya-news/logger"
)

const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware propagates the caller's request id or assigns a new one.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// LoggerMiddleware logs one line per request at debug level, and server errors as warnings.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		format := "%s %s %s -> %d (%v)"
		args := []any{c.GetString("request_id"), c.Request.Method, c.Request.URL.RequestURI(), status, time.Since(start)}
		if status >= 500 {
			logger.Warningf(format, args...)
		} else {
			logger.Debugf(format, args...)
		}
	}
}

// SecureHeadersMiddleware sets the browser hardening headers on every response.
func SecureHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "same-origin")
		c.Next()
	}
}
