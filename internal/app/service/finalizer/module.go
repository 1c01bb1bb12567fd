package finalizer

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/sagepay/pkg/config"
)

func newOrderFinalizer(lc fx.Lifecycle, cfg *config.Config, log *zap.SugaredLogger) OrderFinalizer {
	if !cfg.Kafka.Enabled() {
		log.Infow("kafka not configured, order finalization is log only")
		return NewLogFinalizer(log)
	}
	k := NewKafkaFinalizer(cfg.Kafka.Brokers, cfg.Kafka.Topic, RetryConfig{
		MaxAttempts: cfg.Kafka.MaxRetries,
		Jitter:      true,
	}, log)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Infow("closing kafka writer")
			return k.Close()
		},
	})
	log.Infow("order finalization via kafka", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	return k
}

var Module = fx.Options(
	fx.Provide(newOrderFinalizer),
)
