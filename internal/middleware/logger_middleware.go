package middleware

import (
	"time"

	"gullak/internal/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LoggerMiddleware stores the logger in the request context and logs each
// completed request.
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(shared.ContextLoggerKey, logger)

		start := time.Now()
		c.Next()

		logger.Debug("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// GetLogger returns the request-scoped logger, falling back to a no-op
// logger when middleware did not run (tests).
func GetLogger(c *gin.Context) *zap.Logger {
	if v, ok := c.Get(shared.ContextLoggerKey); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return zap.NewNop()
}
