package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/sagepay/pkg/tool"
)

const (
	HeaderRequestID = "X-Request-ID"
	TraceIDKey      = "traceID"
)

// TraceMiddleware stores a trace id under TraceIDKey in both gin.Context and
// the request context. X-Request-ID is honoured when the caller sends one.
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(HeaderRequestID)
		if traceID == "" {
			traceID = tool.GenerateUUIDV7()
		}

		c.Set(TraceIDKey, traceID)
		ctx := context.WithValue(c.Request.Context(), TraceIDKey, traceID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
