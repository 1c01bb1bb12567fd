package logctx

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VendorTxCodeKey tags a context with the payment attempt being processed.
const VendorTxCodeKey = "vendor_tx_code"

// WithVendorTxCode returns ctx carrying code so FromCtx loggers include it.
func WithVendorTxCode(ctx context.Context, code string) context.Context {
	return context.WithValue(ctx, VendorTxCodeKey, code)
}

// FromGin returns a request-scoped logger from gin.Context if present,
// otherwise returns the provided base logger.
func FromGin(c *gin.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	if c == nil {
		return base
	}
	if l, ok := c.Get("logger"); ok {
		if lg, ok := l.(*zap.SugaredLogger); ok && lg != nil {
			return lg
		}
	}
	// fall back to ctx-based enrichment
	return FromCtx(c.Request.Context(), base)
}

// FromCtx returns the request logger from context if set, otherwise base
// enriched with trace_id/user_id. vendor_tx_code is added in both cases.
func FromCtx(ctx context.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	if ctx == nil {
		return base
	}
	lg := base
	var fields []interface{}
	if reqLogger, ok := ctx.Value("logger").(*zap.SugaredLogger); ok && reqLogger != nil {
		lg = reqLogger
	} else {
		if tid, ok := ctx.Value("traceID").(string); ok && tid != "" {
			fields = append(fields, "trace_id", tid)
		}
		if uid, ok := ctx.Value("user_id").(string); ok && uid != "" {
			fields = append(fields, "user_id", uid)
		}
	}
	if code, ok := ctx.Value(VendorTxCodeKey).(string); ok && code != "" {
		fields = append(fields, "vendor_tx_code", code)
	}
	if len(fields) > 0 {
		return lg.With(fields...)
	}
	return lg
}
