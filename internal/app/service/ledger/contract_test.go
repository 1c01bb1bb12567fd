package ledger

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fatflowers/sagepay/internal/models"
	"github.com/fatflowers/sagepay/pkg/types"
)

// runContract exercises behaviour every TransactionLedger must share.
func runContract(t *testing.T, newLedger func(t *testing.T) TransactionLedger) {
	ctx := context.Background()

	newTx := func(t *testing.T, l TransactionLedger) *models.Transaction {
		t.Helper()
		tx := &models.Transaction{
			UserID:      "u-1",
			OrderNumber: "100001",
			BasketID:    "b-1",
			Amount:      decimal.RequireFromString("12.50"),
			Currency:    "GBP",
			Description: "Blue mug",
			Protocol:    "3.00",
			TxType:      types.TxTypePayment,
			Vendor:      "TestVendor",
			Profile:     "LOW",
		}
		require.NoError(t, l.Save(ctx, tx))
		return tx
	}
	register := func(t *testing.T, l TransactionLedger, tx *models.Transaction, vpsTxID string) {
		t.Helper()
		require.NoError(t, l.AttachRegistration(ctx, tx.ID, &models.RegistrationResult{
			VPSProtocol: "3.00", VPSTxID: vpsTxID, SecurityKey: "U5NX3V0WG9",
			Status: types.PaymentStatusOK, NextURL: "https://test.sagepay.com/next",
		}))
	}

	t.Run("save assigns stable identifiers", func(t *testing.T) {
		l := newLedger(t)
		tx := newTx(t, l)
		require.NotEmpty(t, tx.ID)
		require.Len(t, tx.VendorTxCode, 32)

		other := newTx(t, l)
		require.NotEqual(t, tx.VendorTxCode, other.VendorTxCode)
	})

	t.Run("unregistered transaction is not found by processor id", func(t *testing.T) {
		l := newLedger(t)
		newTx(t, l)
		_, err := l.FindByProcessorID(ctx, "{UNKNOWN}")
		require.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("registration makes the record findable", func(t *testing.T) {
		l := newLedger(t)
		tx := newTx(t, l)
		register(t, l, tx, "{VPS-1}")

		got, err := l.FindByProcessorID(ctx, "{VPS-1}")
		require.NoError(t, err)
		require.Equal(t, tx.ID, got.ID)
		require.Equal(t, tx.VendorTxCode, got.VendorTxCode)
		require.True(t, got.Amount.Equal(decimal.RequireFromString("12.5")))
		require.NotNil(t, got.Registration)
		require.Equal(t, "U5NX3V0WG9", got.SecurityKey())
		require.Nil(t, got.Notification)
	})

	t.Run("authentic outcome is never overwritten by a forgery", func(t *testing.T) {
		l := newLedger(t)
		tx := newTx(t, l)
		register(t, l, tx, "{VPS-2}")

		require.NoError(t, l.AttachNotification(ctx, tx.ID, &models.NotificationResult{
			VPSTxID: "{VPS-2}", Status: types.PaymentStatusOK, HashMatch: true, Replied: true,
		}))
		// same outcome again is fine
		require.NoError(t, l.AttachNotification(ctx, tx.ID, &models.NotificationResult{
			VPSTxID: "{VPS-2}", Status: types.PaymentStatusOK, HashMatch: true, Replied: true,
		}))

		err := l.AttachNotification(ctx, tx.ID, &models.NotificationResult{
			VPSTxID: "{VPS-2}", Status: types.PaymentStatusOK, HashMatch: false,
		})
		require.ErrorIs(t, err, ErrNotificationConflict)

		err = l.AttachNotification(ctx, tx.ID, &models.NotificationResult{
			VPSTxID: "{VPS-2}", Status: types.PaymentStatusAbort, HashMatch: true,
		})
		require.ErrorIs(t, err, ErrNotificationConflict)

		got, err := l.FindByProcessorID(ctx, "{VPS-2}")
		require.NoError(t, err)
		require.Equal(t, types.PaymentStatusOK, got.Notification.Status)
		require.True(t, got.Notification.HashMatch)
	})

	t.Run("forged notification is replaced by the genuine one", func(t *testing.T) {
		l := newLedger(t)
		tx := newTx(t, l)
		register(t, l, tx, "{VPS-3}")

		require.NoError(t, l.AttachNotification(ctx, tx.ID, &models.NotificationResult{
			VPSTxID: "{VPS-3}", Status: types.PaymentStatusOK, HashMatch: false,
		}))
		require.NoError(t, l.AttachNotification(ctx, tx.ID, &models.NotificationResult{
			VPSTxID: "{VPS-3}", Status: types.PaymentStatusNotAuthed, HashMatch: true, Replied: true,
		}))

		got, err := l.FindByProcessorID(ctx, "{VPS-3}")
		require.NoError(t, err)
		require.Equal(t, types.PaymentStatusNotAuthed, got.Notification.Status)
	})

	t.Run("find by token returns the creating transaction", func(t *testing.T) {
		l := newLedger(t)
		tx := newTx(t, l)
		register(t, l, tx, "{VPS-4}")
		require.NoError(t, l.AttachNotification(ctx, tx.ID, &models.NotificationResult{
			VPSTxID: "{VPS-4}", Status: types.PaymentStatusOK, HashMatch: true, Token: "{TOKEN-1}",
		}))

		got, err := l.FindByToken(ctx, "{TOKEN-1}")
		require.NoError(t, err)
		require.Equal(t, tx.ID, got.ID)

		_, err = l.FindByToken(ctx, "{TOKEN-2}")
		require.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("finalization is claimed at most once", func(t *testing.T) {
		l := newLedger(t)
		tx := newTx(t, l)

		var wins atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := l.ClaimFinalization(ctx, tx.ID)
				if err == nil && ok {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		require.EqualValues(t, 1, wins.Load())

		require.NoError(t, l.ReleaseFinalization(ctx, tx.ID))
		ok, err := l.ClaimFinalization(ctx, tx.ID)
		require.NoError(t, err)
		require.True(t, ok)
	})
}

func TestMemoryLedger(t *testing.T) {
	runContract(t, func(t *testing.T) TransactionLedger { return NewMemoryLedger() })
}

func TestMemoryLedger_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	tx := &models.Transaction{Amount: decimal.NewFromInt(1)}
	require.NoError(t, l.Save(ctx, tx))
	require.NoError(t, l.AttachRegistration(ctx, tx.ID, &models.RegistrationResult{VPSTxID: "{V}", SecurityKey: "K"}))

	got, err := l.FindByProcessorID(ctx, "{V}")
	require.NoError(t, err)
	got.Registration.SecurityKey = "tampered"

	again, err := l.FindByProcessorID(ctx, "{V}")
	require.NoError(t, err)
	require.Equal(t, "K", again.SecurityKey())
}
