package notification_log

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fatflowers/sagepay/internal/models"
	"github.com/fatflowers/sagepay/internal/platform/sagepay"
	"github.com/fatflowers/sagepay/pkg/logctx"
	"github.com/fatflowers/sagepay/pkg/tool"
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// Save asynchronously persists a payment notification log. Nil input is ignored.
func (s *Service) Save(ctx context.Context, log *models.PaymentNotificationLog) {
	if log == nil {
		return
	}
	if log.ID == "" {
		log.ID = tool.GenerateUUIDV7()
	}
	// the request context is gone by the time the write runs
	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := s.db.WithContext(ctx).Save(log).Error; err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to save notification log: %v", err)
		}
	}()
}

// Received logs an inbound notification before anything else looks at it.
func (s *Service) Received(ctx context.Context, n *sagepay.Notification) {
	entry := newEntry(ctx, n)
	entry.Status = models.PaymentNotificationLogStatusReceived
	s.Save(ctx, entry)
}

// Finished records how the notification was handled, as a second row
// sharing the trace id of the received one.
func (s *Service) Finished(ctx context.Context, n *sagepay.Notification, result any, handleErr error) {
	resMap := map[string]any{"result": result}
	status := models.PaymentNotificationLogStatusHandled
	if handleErr != nil {
		resMap["error"] = handleErr.Error()
		status = models.PaymentNotificationLogStatusHandleFailed
	}
	resBytes, _ := json.Marshal(resMap)
	res := datatypes.JSON(resBytes)

	entry := newEntry(ctx, n)
	entry.Result = &res
	entry.Status = status
	s.Save(ctx, entry)
}

func newEntry(ctx context.Context, n *sagepay.Notification) *models.PaymentNotificationLog {
	var traceID string
	if v, ok := ctx.Value("traceID").(string); ok {
		traceID = v
	}
	return &models.PaymentNotificationLog{
		ID:               tool.GenerateUUIDV7(),
		TraceID:          traceID,
		VPSTxID:          n.VPSTxID(),
		VendorTxCode:     n.VendorTxCode(),
		NotificationTime: time.Now(),
		Data:             n.RawJSON(),
	}
}

var Module = fx.Options(
	fx.Provide(New),
)
