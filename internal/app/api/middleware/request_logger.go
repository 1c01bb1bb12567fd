package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const LoggerKey = "logger"

// RequestLoggerMiddleware attaches a logger carrying trace_id and the
// matched route to gin.Context and the request context.
func RequestLoggerMiddleware(base *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetString(TraceIDKey)

		reqLogger := base.With("trace_id", traceID, "route", c.FullPath())
		c.Set(LoggerKey, reqLogger)
		ctx := context.WithValue(c.Request.Context(), LoggerKey, reqLogger)
		c.Request = c.Request.WithContext(ctx)

		if traceID != "" {
			c.Writer.Header().Set(HeaderRequestID, traceID)
		}
		c.Next()
	}
}
