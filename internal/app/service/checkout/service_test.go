package checkout

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/sagepay/internal/app/service/card"
	"github.com/fatflowers/sagepay/internal/app/service/ledger"
	"github.com/fatflowers/sagepay/internal/models"
	"github.com/fatflowers/sagepay/internal/platform/sagepay"
	"github.com/fatflowers/sagepay/pkg/config"
	"github.com/fatflowers/sagepay/pkg/metrics"
	"github.com/fatflowers/sagepay/pkg/types"
)

const registeredReply = "VPSProtocol=3.00\r\n" +
	"Status=OK\r\n" +
	"StatusDetail=2014 : The Transaction was Registered Successfully.\r\n" +
	"VPSTxId={1A960910-5F36-3421-24DE-65EF52C13380}\r\n" +
	"SecurityKey=U5NX3V0WG9\r\n" +
	"NextURL=https://test.sagepay.com/gateway/service/cardselection?vpstxid={1A960910-5F36-3421-24DE-65EF52C13380}\r\n"

type gateway struct {
	mu    sync.Mutex
	forms []url.Values
	reply string
	code  int
}

func (g *gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	form, _ := url.ParseQuery(string(raw))
	g.mu.Lock()
	g.forms = append(g.forms, form)
	g.mu.Unlock()
	w.WriteHeader(g.code)
	_, _ = io.WriteString(w, g.reply)
}

func (g *gateway) last(t *testing.T) url.Values {
	t.Helper()
	g.mu.Lock()
	defer g.mu.Unlock()
	require.NotEmpty(t, g.forms)
	return g.forms[len(g.forms)-1]
}

type cardLookup map[string]*models.CardToken

func (c cardLookup) Get(_ context.Context, userID, token string) (*models.CardToken, error) {
	ct, ok := c[token]
	if !ok || ct.UserID != userID {
		return nil, card.ErrCardNotFound
	}
	return ct, nil
}

type fixture struct {
	svc    *Service
	ledger *ledger.MemoryLedger
	gw     *gateway
	reg    *prometheus.Registry
	cards  cardLookup
}

func (f *fixture) requireRegistrations(t *testing.T, result string) {
	t.Helper()
	expected := `
# HELP sagepay_registration_total Payment registrations sent to SagePay, partitioned by result.
# TYPE sagepay_registration_total counter
sagepay_registration_total{result="` + result + `"} 1
`
	require.NoError(t, testutil.GatherAndCompare(f.reg, strings.NewReader(expected), "sagepay_registration_total"))
}

func newFixture(t *testing.T, reply string) *fixture {
	t.Helper()
	gw := &gateway{reply: reply, code: http.StatusOK}
	srv := httptest.NewServer(gw)
	t.Cleanup(srv.Close)

	cfg := &config.Config{SagePay: config.SagePayConfig{
		Vendor:   "TestVendor",
		Profile:  "LOW",
		Protocol: "3.00",
		Currency: "GBP",
		TxType:   string(types.TxTypePayment),
	}}
	client := sagepay.NewClient(sagepay.Options{
		Vendor:          "TestVendor",
		Profile:         "LOW",
		Protocol:        "3.00",
		RegisterURL:     srv.URL,
		RemoveTokenURL:  srv.URL,
		NotificationURL: "https://shop.example.com/sagepay/notification",
		Timeout:         2 * time.Second,
	}, nil, zap.NewNop().Sugar())

	reg := prometheus.NewRegistry()
	m, err := metrics.NewGateway(reg)
	require.NoError(t, err)

	l := ledger.NewMemoryLedger()
	cards := cardLookup{}
	return &fixture{
		svc:    New(cfg, l, client, cards, m, zap.NewNop().Sugar()),
		ledger: l,
		gw:     gw,
		reg:    reg,
		cards:  cards,
	}
}

func homeAddress() *models.Address {
	return &models.Address{
		Surname: "Smith", Firstnames: "Jo", Address1: "1 High St",
		City: "London", PostCode: "W1A 1AA", Country: "GB",
	}
}

func newRequest() *AuthorizeRequest {
	return &AuthorizeRequest{
		UserID:        "user-1",
		OrderNumber:   "100001",
		BasketID:      "basket-1",
		Amount:        decimal.RequireFromString("12.50"),
		ProductTitles: []string{"Blue mug", "Red mug"},
		CustomerEmail: "jo@example.com",
		Billing:       homeAddress(),
	}
}

func TestAuthorize_RegistersAndRecords(t *testing.T) {
	f := newFixture(t, registeredReply)
	ctx := context.Background()

	res, err := f.svc.Authorize(ctx, newRequest())
	require.NoError(t, err)
	require.Equal(t, "{1A960910-5F36-3421-24DE-65EF52C13380}", res.VPSTxID)
	require.Contains(t, res.NextURL, "cardselection")
	require.Len(t, res.VendorTxCode, 32)

	form := f.gw.last(t)
	require.Equal(t, "12.50", form.Get("Amount"))
	require.Equal(t, "GBP", form.Get("Currency"))
	require.Equal(t, "Blue mug, Red mug", form.Get("Description"))
	require.Equal(t, res.VendorTxCode, form.Get("VendorTxCode"))
	// shipping falls back to billing
	require.Equal(t, "Smith", form.Get("DeliverySurname"))
	require.Empty(t, form.Get("CreateToken"))

	tx, err := f.ledger.FindByProcessorID(ctx, res.VPSTxID)
	require.NoError(t, err)
	require.Equal(t, res.TransactionID, tx.ID)
	require.Equal(t, "U5NX3V0WG9", tx.SecurityKey())

	f.requireRegistrations(t, "ok")
}

func TestAuthorize_SaveCardAsksForToken(t *testing.T) {
	f := newFixture(t, registeredReply)
	req := newRequest()
	req.SaveCard = true

	_, err := f.svc.Authorize(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "1", f.gw.last(t).Get("CreateToken"))
}

func TestAuthorize_BillingFallsBackToShipping(t *testing.T) {
	f := newFixture(t, registeredReply)
	req := newRequest()
	req.Billing = nil
	req.Shipping = &models.Address{Surname: "Jones", Firstnames: "Al", Address1: "2 Low Rd", City: "Leeds", PostCode: "LS1 1AA", Country: "GB"}

	_, err := f.svc.Authorize(context.Background(), req)
	require.NoError(t, err)
	form := f.gw.last(t)
	require.Equal(t, "Jones", form.Get("BillingSurname"))
	require.Equal(t, "Jones", form.Get("DeliverySurname"))
}

func TestAuthorize_SavedCardReusesBillingAddress(t *testing.T) {
	f := newFixture(t, registeredReply)
	ctx := context.Background()
	const token = "{AB12CD34-0000-1111-2222-333344445555}"

	// an earlier payment created the token
	first := &models.Transaction{
		UserID: "user-1", OrderNumber: "99", Amount: decimal.NewFromInt(5), Currency: "GBP",
		Billing: models.Address{Surname: "Original", Firstnames: "Jo", Address1: "9 Old St", City: "York", PostCode: "YO1 1AA", Country: "GB"},
	}
	require.NoError(t, f.ledger.Save(ctx, first))
	require.NoError(t, f.ledger.AttachRegistration(ctx, first.ID, &models.RegistrationResult{VPSTxID: "{OLD}", SecurityKey: "K"}))
	require.NoError(t, f.ledger.AttachNotification(ctx, first.ID, &models.NotificationResult{
		Status: types.PaymentStatusOK, HashMatch: true, Token: token,
	}))
	f.cards[token] = &models.CardToken{Token: token, UserID: "user-1", TransactionID: first.ID}

	req := newRequest()
	req.Billing = nil
	req.CardToken = token

	_, err := f.svc.Authorize(ctx, req)
	require.NoError(t, err)
	form := f.gw.last(t)
	require.Equal(t, token, form.Get("Token"))
	require.Equal(t, "Original", form.Get("BillingSurname"))
	require.Equal(t, "Original", form.Get("DeliverySurname"))
}

func TestAuthorize_UnknownCardIsInvalid(t *testing.T) {
	f := newFixture(t, registeredReply)
	f.cards["{MINE}"] = &models.CardToken{Token: "{MINE}", UserID: "someone-else"}
	req := newRequest()
	req.CardToken = "{MINE}"

	_, err := f.svc.Authorize(context.Background(), req)
	require.ErrorIs(t, err, ErrInvalidRequest)
	f.gw.mu.Lock()
	defer f.gw.mu.Unlock()
	require.Empty(t, f.gw.forms)
}

func TestAuthorize_Validation(t *testing.T) {
	f := newFixture(t, registeredReply)
	cases := map[string]func(*AuthorizeRequest){
		"no user":      func(r *AuthorizeRequest) { r.UserID = "" },
		"no order":     func(r *AuthorizeRequest) { r.OrderNumber = "" },
		"zero amount":  func(r *AuthorizeRequest) { r.Amount = decimal.Zero },
		"no addresses": func(r *AuthorizeRequest) { r.Billing = nil },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := newRequest()
			mutate(req)
			_, err := f.svc.Authorize(context.Background(), req)
			require.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
	_, err := f.svc.Authorize(context.Background(), nil)
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestAuthorize_RejectedRegistration(t *testing.T) {
	f := newFixture(t, "VPSProtocol=3.00\r\nStatus=INVALID\r\nStatusDetail=3045 : The Currency field is missing.\r\n")

	_, err := f.svc.Authorize(context.Background(), newRequest())
	require.ErrorIs(t, err, sagepay.ErrGatewayRejected)
	require.Contains(t, err.Error(), "3045")
	f.requireRegistrations(t, "rejected")
}

func TestAuthorize_GatewayDown(t *testing.T) {
	f := newFixture(t, "oops")
	f.gw.code = http.StatusBadGateway

	_, err := f.svc.Authorize(context.Background(), newRequest())
	require.ErrorIs(t, err, sagepay.ErrGatewayUnreachable)
}

func TestAuthorize_MalformedReplyCountsAsUnreachable(t *testing.T) {
	f := newFixture(t, "this is not a key value reply")

	_, err := f.svc.Authorize(context.Background(), newRequest())
	require.ErrorIs(t, err, sagepay.ErrGatewayUnreachable)
	require.ErrorIs(t, err, sagepay.ErrMalformedResponse)
}

func TestDescription_Truncates(t *testing.T) {
	long := strings.Repeat("mug", 50)
	require.Len(t, Description([]string{long}), 100)
	require.Equal(t, "a, b", Description([]string{"a", "b"}))
	require.Empty(t, Description(nil))
}

func TestOrderFromProcessorID(t *testing.T) {
	f := newFixture(t, registeredReply)
	ctx := context.Background()

	res, err := f.svc.Authorize(ctx, newRequest())
	require.NoError(t, err)

	order, err := f.svc.OrderFromProcessorID(ctx, res.VPSTxID)
	require.NoError(t, err)
	require.Equal(t, "100001", order.OrderNumber)
	require.Equal(t, "basket-1", order.BasketID)
	require.True(t, decimal.RequireFromString("12.5").Equal(order.Amount))
	require.Empty(t, order.Status)

	_, err = f.svc.OrderFromProcessorID(ctx, "{NOPE}")
	require.ErrorIs(t, err, ledger.ErrRecordNotFound)
}
