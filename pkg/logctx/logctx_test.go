package logctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromCtx_AddsVendorTxCode(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core).Sugar()

	ctx := context.WithValue(context.Background(), "traceID", "t-1")
	ctx = WithVendorTxCode(ctx, "abc123")

	FromCtx(ctx, base).Infow("sagepay_register_started")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	require.Equal(t, "t-1", fields["trace_id"])
	require.Equal(t, "abc123", fields["vendor_tx_code"])
}

func TestFromCtx_RequestLoggerKeepsVendorTxCode(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	reqLogger := zap.New(core).Sugar().With("trace_id", "t-2")

	ctx := context.WithValue(context.Background(), "logger", reqLogger)
	ctx = WithVendorTxCode(ctx, "def456")

	FromCtx(ctx, zap.NewNop().Sugar()).Infow("sagepay_notification_received")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	require.Equal(t, "t-2", fields["trace_id"])
	require.Equal(t, "def456", fields["vendor_tx_code"])
}

func TestFromCtx_NilContextReturnsBase(t *testing.T) {
	base := zap.NewNop().Sugar()
	require.Same(t, base, FromCtx(nil, base))
}
