package finalizer

import (
	"context"

	"go.uber.org/zap"

	"github.com/fatflowers/sagepay/pkg/logctx"
)

// LogFinalizer only records the authorisation. Used when no broker is
// configured.
type LogFinalizer struct {
	log *zap.SugaredLogger
}

func NewLogFinalizer(log *zap.SugaredLogger) *LogFinalizer {
	return &LogFinalizer{log: log}
}

func (l *LogFinalizer) Finalize(ctx context.Context, order *Order) error {
	logctx.FromCtx(ctx, l.log).Infow("order_finalize_logged",
		"order_number", order.OrderNumber,
		"basket_id", order.BasketID,
		"amount", order.Amount.StringFixed(2),
		"currency", order.Currency,
		"vps_tx_id", order.VPSTxID,
	)
	return nil
}
