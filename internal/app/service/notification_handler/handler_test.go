package notification_handler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/sagepay/internal/app/service/finalizer"
	"github.com/fatflowers/sagepay/internal/app/service/ledger"
	"github.com/fatflowers/sagepay/internal/models"
	"github.com/fatflowers/sagepay/internal/platform/sagepay"
	"github.com/fatflowers/sagepay/pkg/types"
)

func orderMatcher(orderNumber string) any {
	return mock.MatchedBy(func(o *finalizer.Order) bool {
		return o.OrderNumber == orderNumber && o.VPSTxID == testVPSTxID && o.Amount.StringFixed(2) == "12.50"
	})
}

func (f *fixture) stored(t *testing.T) *models.Transaction {
	t.Helper()
	tx, err := f.ledger.FindByProcessorID(context.Background(), testVPSTxID)
	require.NoError(t, err)
	return tx
}

func TestHandle_OKRedirectsToThankYouAndFinalizesOnce(t *testing.T) {
	f := newFixture(t)
	f.finalizer.On("Finalize", mock.Anything, orderMatcher("100042")).Return(nil)
	n := signedNotification(notificationFields(types.PaymentStatusOK))

	reply, err := f.handler.Handle(context.Background(), n)
	require.NoError(t, err)
	require.Equal(t, "Status=OK\r\nRedirectURL=https://shop.example.com/sagepay/thankyou/"+testVPSTxID+"\r\n", reply)

	// SagePay re-delivers when it does not see our reply in time
	again, err := f.handler.Handle(context.Background(), n)
	require.NoError(t, err)
	require.Equal(t, reply, again)

	f.finalizer.AssertNumberOfCalls(t, "Finalize", 1)

	tx := f.stored(t)
	require.True(t, tx.IsFinalized())
	require.Equal(t, types.PaymentStatusOK, tx.Notification.Status)
	require.True(t, tx.Notification.HashMatch)
	require.True(t, tx.Notification.Replied)
	require.Equal(t, reply, tx.Notification.ReplyText)

	require.Equal(t, 2, f.recorder.received)
	require.Equal(t, []error{nil, nil}, f.recorder.finished)
}

func TestHandle_NotAuthedRedirectsToErrorPage(t *testing.T) {
	f := newFixture(t)

	reply, err := f.handler.Handle(context.Background(), signedNotification(notificationFields(types.PaymentStatusNotAuthed)))
	require.NoError(t, err)
	require.Equal(t, "Status=OK\r\nRedirectURL=https://shop.example.com/sagepay/error/1\r\n", reply)

	f.finalizer.AssertNotCalled(t, "Finalize", mock.Anything, mock.Anything)
	tx := f.stored(t)
	require.False(t, tx.IsFinalized())
	require.Equal(t, types.PaymentStatusNotAuthed, tx.Notification.Status)
	require.True(t, tx.Notification.HashMatch)
}

func TestHandle_WrongSignatureIsInvalid(t *testing.T) {
	f := newFixture(t)

	reply, err := f.handler.Handle(context.Background(), forgedNotification(notificationFields(types.PaymentStatusOK)))
	require.NoError(t, err)
	require.Equal(t, "Status=INVALID\r\nRedirectURL=https://shop.example.com/sagepay/error/0\r\n", reply)

	f.finalizer.AssertNotCalled(t, "Finalize", mock.Anything, mock.Anything)
	tx := f.stored(t)
	require.NotNil(t, tx.Notification)
	require.False(t, tx.Notification.HashMatch)
	require.False(t, tx.IsFinalized())
}

func TestHandle_UnknownTransaction(t *testing.T) {
	f := newFixture(t)
	fields := notificationFields(types.PaymentStatusOK)
	fields[sagepay.FieldVPSTxID] = "{DEADBEEF-0000-0000-0000-000000000000}"

	reply, err := f.handler.Handle(context.Background(), signedNotification(fields))
	require.NoError(t, err)
	require.Equal(t, "Status=ERROR\r\nRedirectURL=https://shop.example.com/sagepay/error/0\r\n&StatusDetail=Transaction doesn't exist\r\n", reply)
	require.Nil(t, f.stored(t).Notification)
	f.finalizer.AssertNotCalled(t, "Finalize", mock.Anything, mock.Anything)
}

func TestHandle_ForgeryAfterAuthenticOutcomeKeepsOutcome(t *testing.T) {
	f := newFixture(t)

	_, err := f.handler.Handle(context.Background(), signedNotification(notificationFields(types.PaymentStatusAbort)))
	require.NoError(t, err)

	reply, err := f.handler.Handle(context.Background(), forgedNotification(notificationFields(types.PaymentStatusOK)))
	require.NoError(t, err)
	require.Equal(t, "Status=INVALID\r\nRedirectURL=https://shop.example.com/sagepay/error/0\r\n", reply)

	tx := f.stored(t)
	require.Equal(t, types.PaymentStatusAbort, tx.Notification.Status)
	require.True(t, tx.Notification.HashMatch)
	f.finalizer.AssertNotCalled(t, "Finalize", mock.Anything, mock.Anything)
}

func TestHandle_ChangedTerminalStatusFollowsStoredOutcome(t *testing.T) {
	f := newFixture(t)

	first, err := f.handler.Handle(context.Background(), signedNotification(notificationFields(types.PaymentStatusNotAuthed)))
	require.NoError(t, err)

	fields := notificationFields(types.PaymentStatusOK)
	fields[sagepay.FieldToken] = "{TOKEN-2}"
	reply, err := f.handler.Handle(context.Background(), signedNotification(fields))
	require.NoError(t, err)
	require.Equal(t, first, reply)
	require.Equal(t, "Status=OK\r\nRedirectURL=https://shop.example.com/sagepay/error/1\r\n", reply)

	tx := f.stored(t)
	require.Equal(t, types.PaymentStatusNotAuthed, tx.Notification.Status)
	require.False(t, tx.IsFinalized())
	f.finalizer.AssertNotCalled(t, "Finalize", mock.Anything, mock.Anything)
	require.Empty(t, f.tokens.saved)
	require.Equal(t, []error{nil, nil}, f.recorder.finished)
}

func TestHandle_PendingRepliesEmptyButRecords(t *testing.T) {
	f := newFixture(t)

	reply, err := f.handler.Handle(context.Background(), signedNotification(notificationFields(types.PaymentStatusPending)))
	require.NoError(t, err)
	require.Empty(t, reply)

	tx := f.stored(t)
	require.Equal(t, types.PaymentStatusPending, tx.Notification.Status)
	require.False(t, tx.Notification.Replied)
}

func TestHandle_FinalizerFailureReleasesClaim(t *testing.T) {
	f := newFixture(t)
	f.finalizer.On("Finalize", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()
	f.finalizer.On("Finalize", mock.Anything, mock.Anything).Return(nil).Once()
	n := signedNotification(notificationFields(types.PaymentStatusOK))

	reply, err := f.handler.Handle(context.Background(), n)
	require.NoError(t, err)
	require.Contains(t, reply, "Status=OK")
	require.False(t, f.stored(t).IsFinalized())

	_, err = f.handler.Handle(context.Background(), n)
	require.NoError(t, err)
	require.True(t, f.stored(t).IsFinalized())
	f.finalizer.AssertNumberOfCalls(t, "Finalize", 2)
}

func TestHandle_SavesCardToken(t *testing.T) {
	f := newFixture(t)
	f.finalizer.On("Finalize", mock.Anything, mock.Anything).Return(nil)
	fields := notificationFields(types.PaymentStatusOK)
	fields[sagepay.FieldToken] = "{TOKEN-1}"

	_, err := f.handler.Handle(context.Background(), signedNotification(fields))
	require.NoError(t, err)
	require.Equal(t, []string{"{TOKEN-1}"}, f.tokens.saved)

	_, err = f.handler.Handle(context.Background(), forgedNotification(notificationFields(types.PaymentStatusOK)))
	require.NoError(t, err)
	require.Len(t, f.tokens.saved, 1)
}

// failingLedger fails every write.
type failingLedger struct {
	*ledger.MemoryLedger
}

func (failingLedger) AttachNotification(context.Context, string, *models.NotificationResult) error {
	return errors.New("connection reset")
}

func TestHandle_LedgerFailureIsAnError(t *testing.T) {
	f := newFixture(t)
	h := NewNotificationHandler(testConfig(), failingLedger{f.ledger}, f.finalizer, f.tokens, f.recorder, nil, zap.NewNop().Sugar())

	reply, err := h.Handle(context.Background(), signedNotification(notificationFields(types.PaymentStatusOK)))
	require.Error(t, err)
	require.Empty(t, reply)
	f.finalizer.AssertNotCalled(t, "Finalize", mock.Anything, mock.Anything)
	require.Len(t, f.recorder.finished, 1)
	require.Error(t, f.recorder.finished[0])
}
