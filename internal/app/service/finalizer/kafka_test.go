package finalizer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	kafka "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWriter struct {
	failures int
	calls    int
	written  []kafka.Message
	closed   bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("broker unavailable")
	}
	f.written = append(f.written, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func testOrder() *Order {
	return &Order{
		OrderNumber:  "100042",
		BasketID:     "b-7",
		UserID:       "u-1",
		Amount:       decimal.RequireFromString("12.5"),
		Currency:     "GBP",
		VPSTxID:      "{1A960910-5F36-3421-24DE-65EF52C13380}",
		VendorTxCode: "0190f3b2a1c07e3c9d1b2a3c4d5e6f70",
	}
}

func fastRetry() RetryConfig {
	return RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestKafkaFinalizer_PublishesEvent(t *testing.T) {
	w := &fakeWriter{}
	k := newKafkaFinalizer(w, fastRetry(), zap.NewNop().Sugar())
	fixed := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	k.now = func() time.Time { return fixed }

	require.NoError(t, k.Finalize(context.Background(), testOrder()))
	require.Len(t, w.written, 1)
	require.Equal(t, "100042", string(w.written[0].Key))

	var ev Event
	require.NoError(t, json.Unmarshal(w.written[0].Value, &ev))
	require.Equal(t, EventPaymentAuthorised, ev.Event)
	require.Equal(t, "12.50", ev.Amount)
	require.Equal(t, "{1A960910-5F36-3421-24DE-65EF52C13380}", ev.VPSTxID)
	require.True(t, fixed.Equal(ev.OccurredAt))
}

func TestKafkaFinalizer_RetriesThenSucceeds(t *testing.T) {
	w := &fakeWriter{failures: 2}
	k := newKafkaFinalizer(w, fastRetry(), zap.NewNop().Sugar())

	require.NoError(t, k.Finalize(context.Background(), testOrder()))
	require.Equal(t, 3, w.calls)
	require.Len(t, w.written, 1)
}

func TestKafkaFinalizer_GivesUp(t *testing.T) {
	w := &fakeWriter{failures: 10}
	k := newKafkaFinalizer(w, fastRetry(), zap.NewNop().Sugar())

	err := k.Finalize(context.Background(), testOrder())
	require.Error(t, err)
	require.Contains(t, err.Error(), "after 3 attempts")
	require.Equal(t, 3, w.calls)
}

func TestKafkaFinalizer_StopsOnCancelledContext(t *testing.T) {
	w := &fakeWriter{failures: 10}
	k := newKafkaFinalizer(w, RetryConfig{MaxAttempts: 5, BaseDelay: time.Second, MaxDelay: time.Second}, zap.NewNop().Sugar())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := k.Finalize(ctx, testOrder())
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, w.calls)
}

func TestKafkaFinalizer_BackoffIsCapped(t *testing.T) {
	k := newKafkaFinalizer(&fakeWriter{}, RetryConfig{MaxAttempts: 10, BaseDelay: 100 * time.Millisecond, MaxDelay: 500 * time.Millisecond}, zap.NewNop().Sugar())
	require.Equal(t, 100*time.Millisecond, k.backoff(0))
	require.Equal(t, 400*time.Millisecond, k.backoff(2))
	require.Equal(t, 500*time.Millisecond, k.backoff(6))
}

func TestKafkaFinalizer_Close(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, newKafkaFinalizer(w, fastRetry(), zap.NewNop().Sugar()).Close())
	require.True(t, w.closed)
}

func TestLogFinalizer(t *testing.T) {
	require.NoError(t, NewLogFinalizer(zap.NewNop().Sugar()).Finalize(context.Background(), testOrder()))
}
