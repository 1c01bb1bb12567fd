package finalizer

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	kafka "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/fatflowers/sagepay/pkg/logctx"
)

type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      bool
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaFinalizer hands authorised payments to order placement through a
// Kafka topic, keyed by order number so events of one order stay ordered.
type KafkaFinalizer struct {
	writer messageWriter
	retry  RetryConfig
	log    *zap.SugaredLogger
	now    func() time.Time
}

func NewKafkaFinalizer(brokers []string, topic string, retry RetryConfig, log *zap.SugaredLogger) *KafkaFinalizer {
	return newKafkaFinalizer(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}, retry, log)
}

func newKafkaFinalizer(w messageWriter, retry RetryConfig, log *zap.SugaredLogger) *KafkaFinalizer {
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = 3
	}
	if retry.BaseDelay <= 0 {
		retry.BaseDelay = 100 * time.Millisecond
	}
	if retry.MaxDelay <= 0 {
		retry.MaxDelay = 2 * time.Second
	}
	return &KafkaFinalizer{writer: w, retry: retry, log: log, now: time.Now}
}

func (k *KafkaFinalizer) Finalize(ctx context.Context, order *Order) error {
	data, err := json.Marshal(newEvent(order, k.now()))
	if err != nil {
		return fmt.Errorf("error marshaling event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(order.OrderNumber),
		Value: data,
	}

	lg := logctx.FromCtx(ctx, k.log)
	var lastErr error
	for attempt := 0; attempt < k.retry.MaxAttempts; attempt++ {
		if lastErr = k.writer.WriteMessages(ctx, msg); lastErr == nil {
			lg.Infow("order_finalize_published", "order_number", order.OrderNumber, "attempts", attempt+1)
			return nil
		}
		if attempt == k.retry.MaxAttempts-1 {
			break
		}
		delay := k.backoff(attempt)
		lg.Warnw("order_finalize_retry", "order_number", order.OrderNumber, "attempt", attempt+1, "delay", delay, "err", lastErr)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		}
	}
	return fmt.Errorf("failed to publish %s after %d attempts: %w", EventPaymentAuthorised, k.retry.MaxAttempts, lastErr)
}

func (k *KafkaFinalizer) backoff(attempt int) time.Duration {
	delay := time.Duration(math.Pow(2, float64(attempt))) * k.retry.BaseDelay
	if delay > k.retry.MaxDelay {
		delay = k.retry.MaxDelay
	}
	if k.retry.Jitter {
		delay += time.Duration(rand.Float64()*float64(delay)*0.3) - time.Duration(float64(delay)*0.15)
	}
	return delay
}

func (k *KafkaFinalizer) Close() error {
	return k.writer.Close()
}
