package notification_handler

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/sagepay/internal/app/service/finalizer"
	"github.com/fatflowers/sagepay/internal/app/service/ledger"
	"github.com/fatflowers/sagepay/internal/models"
	"github.com/fatflowers/sagepay/internal/platform/sagepay"
	"github.com/fatflowers/sagepay/pkg/config"
	"github.com/fatflowers/sagepay/pkg/types"
)

const (
	testVendor      = "TestVendor"
	testSecurityKey = "U5NX3V0WG9"
	testVPSTxID     = "{1A960910-5F36-3421-24DE-65EF52C13380}"
)

var testRedirects = RedirectConfig{
	ThankYouURL: "https://shop.example.com/sagepay/thankyou/",
	ErrorURL:    "https://shop.example.com/sagepay/error/",
	FailureURL:  "https://shop.example.com/sagepay/error/0",
}

type mockFinalizer struct{ mock.Mock }

func (m *mockFinalizer) Finalize(ctx context.Context, o *finalizer.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

type stubTokens struct {
	mu    sync.Mutex
	saved []string
}

func (s *stubTokens) SaveFromNotification(_ context.Context, _ *models.Transaction, n *sagepay.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, n.Get(sagepay.FieldToken))
	return nil
}

type stubRecorder struct {
	mu       sync.Mutex
	received int
	finished []error
}

func (s *stubRecorder) Received(context.Context, *sagepay.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received++
}

func (s *stubRecorder) Finished(_ context.Context, _ *sagepay.Notification, _ any, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished = append(s.finished, err)
}

type fixture struct {
	ledger    *ledger.MemoryLedger
	finalizer *mockFinalizer
	tokens    *stubTokens
	recorder  *stubRecorder
	handler   *NotificationHandler
	tx        *models.Transaction
}

func testConfig() *config.Config {
	return &config.Config{SagePay: config.SagePayConfig{
		Vendor:      testVendor,
		ThankYouURL: testRedirects.ThankYouURL,
		ErrorURL:    testRedirects.ErrorURL,
		FailureURL:  testRedirects.FailureURL,
	}}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	l := ledger.NewMemoryLedger()

	tx := &models.Transaction{
		UserID:      "u-1",
		OrderNumber: "100042",
		BasketID:    "b-7",
		Amount:      decimal.RequireFromString("12.50"),
		Currency:    "GBP",
		Description: "Blue mug",
		Protocol:    "3.00",
		TxType:      types.TxTypePayment,
		Vendor:      testVendor,
		Profile:     "LOW",
	}
	require.NoError(t, l.Save(ctx, tx))
	require.NoError(t, l.AttachRegistration(ctx, tx.ID, &models.RegistrationResult{
		VPSProtocol: "3.00",
		VPSTxID:     testVPSTxID,
		SecurityKey: testSecurityKey,
		Status:      types.PaymentStatusOK,
	}))

	f := &fixture{
		ledger:    l,
		finalizer: &mockFinalizer{},
		tokens:    &stubTokens{},
		recorder:  &stubRecorder{},
		tx:        tx,
	}
	f.handler = NewNotificationHandler(testConfig(), l, f.finalizer, f.tokens, f.recorder, nil, zap.NewNop().Sugar())
	return f
}

func notificationFields(status types.PaymentStatus) sagepay.Fields {
	return sagepay.Fields{
		sagepay.FieldVPSProtocol:    "3.00",
		sagepay.FieldTxType:         "PAYMENT",
		sagepay.FieldVendorTxCode:   "0190f3b2a1c07e3c9d1b2a3c4d5e6f70",
		sagepay.FieldVPSTxID:        testVPSTxID,
		sagepay.FieldStatus:         string(status),
		sagepay.FieldStatusDetail:   "0000 : detail",
		sagepay.FieldTxAuthNo:       "8250",
		sagepay.FieldAVSCV2:         "ALL MATCH",
		sagepay.FieldAddressResult:  "MATCHED",
		sagepay.FieldPostCodeResult: "MATCHED",
		sagepay.FieldCV2Result:      "MATCHED",
		sagepay.FieldGiftAid:        "0",
		sagepay.Field3DSecureStatus: "OK",
		sagepay.FieldCardType:       "VISA",
		sagepay.FieldLast4Digits:    "0006",
		sagepay.FieldExpiryDate:     "0129",
		sagepay.FieldBankAuthCode:   "999777",
	}
}

// signedNotification returns a notification signed with the test key.
func signedNotification(f sagepay.Fields) *sagepay.Notification {
	f[sagepay.FieldVPSSignature] = sagepay.ComputeSignature(sagepay.NewNotification(f), "", testVendor, testSecurityKey)
	return sagepay.NewNotification(f)
}

func forgedNotification(f sagepay.Fields) *sagepay.Notification {
	f[sagepay.FieldVPSSignature] = sagepay.ComputeSignature(sagepay.NewNotification(f), "", testVendor, "NOTTHEKEY0")
	return sagepay.NewNotification(f)
}
