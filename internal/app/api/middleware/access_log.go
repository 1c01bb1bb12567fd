package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AccessLogMiddleware writes one http_access line per request with the
// logger set by RequestLoggerMiddleware. Server errors are logged at warn.
func AccessLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log, ok := c.Value(LoggerKey).(*zap.SugaredLogger)
		if !ok || log == nil {
			return
		}
		kv := []interface{}{
			"method", c.Request.Method,
			"status", c.Writer.Status(),
			"bytes", c.Writer.Size(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Warnw("http_access", kv...)
			return
		}
		log.Infow("http_access", kv...)
	}
}
