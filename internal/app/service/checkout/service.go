package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/sagepay/internal/app/service/card"
	"github.com/fatflowers/sagepay/internal/app/service/ledger"
	"github.com/fatflowers/sagepay/internal/models"
	"github.com/fatflowers/sagepay/internal/platform/sagepay"
	"github.com/fatflowers/sagepay/pkg/config"
	"github.com/fatflowers/sagepay/pkg/logctx"
	"github.com/fatflowers/sagepay/pkg/metrics"
	"github.com/fatflowers/sagepay/pkg/tool"
	"github.com/fatflowers/sagepay/pkg/types"
)

var ErrInvalidRequest = errors.New("checkout: invalid request")

const maxDescriptionBytes = 100

// Registrar is the part of the SagePay client checkout needs.
type Registrar interface {
	NewRegistrationRequest(tx *models.Transaction) *sagepay.RegistrationRequest
	Register(ctx context.Context, req *sagepay.RegistrationRequest, wantsSavedCard bool) (*sagepay.RegistrationResponse, bool, error)
}

type CardLookup interface {
	Get(ctx context.Context, userID, token string) (*models.CardToken, error)
}

type AuthorizeRequest struct {
	UserID        string
	OrderNumber   string
	BasketID      string
	Amount        decimal.Decimal
	Currency      string
	ProductTitles []string
	Basket        string
	CustomerEmail string
	AllowGiftAid  bool
	// Billing may be nil when paying with a saved card.
	Billing *models.Address
	// Shipping is nil for digital goods.
	Shipping *models.Address
	SaveCard bool
	// CardToken selects a saved card instead of entering a new one.
	CardToken string
}

type AuthorizeResult struct {
	TransactionID string `json:"transaction_id"`
	VendorTxCode  string `json:"vendor_tx_code"`
	VPSTxID       string `json:"vps_tx_id"`
	NextURL       string `json:"next_url"`
}

type OrderSummary struct {
	OrderNumber string              `json:"order_number"`
	BasketID    string              `json:"basket_id"`
	Amount      decimal.Decimal     `json:"amount"`
	Currency    string              `json:"currency"`
	Status      types.PaymentStatus `json:"status"`
}

type Service struct {
	cfg     *config.Config
	ledger  ledger.TransactionLedger
	gateway Registrar
	cards   CardLookup
	metrics *metrics.Gateway
	log     *zap.SugaredLogger
}

func New(cfg *config.Config, l ledger.TransactionLedger, gateway Registrar, cards CardLookup, m *metrics.Gateway, log *zap.SugaredLogger) *Service {
	return &Service{cfg: cfg, ledger: l, gateway: gateway, cards: cards, metrics: m, log: log}
}

// Authorize stores a new payment attempt and registers it with SagePay.
// The customer is then sent to AuthorizeResult.NextURL to enter card
// details. A rejected registration wraps sagepay.ErrGatewayRejected and is
// not retried; transport problems wrap sagepay.ErrGatewayUnreachable.
func (s *Service) Authorize(ctx context.Context, req *AuthorizeRequest) (*AuthorizeResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	tx, err := s.newTransaction(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.Save(ctx, tx); err != nil {
		return nil, err
	}
	ctx = logctx.WithVendorTxCode(ctx, tx.VendorTxCode)
	lg := logctx.FromCtx(ctx, s.log).With("order_number", tx.OrderNumber)

	start := time.Now()
	resp, ok, err := s.gateway.Register(ctx, s.gateway.NewRegistrationRequest(tx), req.SaveCard)
	elapsed := metrics.MillisecondsSince(start)
	if err != nil {
		s.metrics.ObserveRegistration("unreachable", elapsed)
		lg.Errorw("sagepay_register_failed", "err", err)
		if errors.Is(err, sagepay.ErrMalformedResponse) {
			return nil, fmt.Errorf("%w: %w", sagepay.ErrGatewayUnreachable, err)
		}
		return nil, err
	}
	if !ok {
		s.metrics.ObserveRegistration("rejected", elapsed)
		lg.Errorw("sagepay_register_rejected", "status", resp.Status, "status_detail", resp.StatusDetail)
		return nil, fmt.Errorf("%w: %s %s", sagepay.ErrGatewayRejected, resp.Status, resp.StatusDetail)
	}
	s.metrics.ObserveRegistration("ok", elapsed)

	if err := s.ledger.AttachRegistration(ctx, tx.ID, resp.Result()); err != nil {
		lg.Errorw("sagepay_register_persist_failed", "vps_tx_id", resp.VPSTxID, "err", err)
		return nil, fmt.Errorf("failed to record registration: %w", err)
	}
	lg.Infow("sagepay_register_ok", "vps_tx_id", resp.VPSTxID)

	return &AuthorizeResult{
		TransactionID: tx.ID,
		VendorTxCode:  tx.VendorTxCode,
		VPSTxID:       resp.VPSTxID,
		NextURL:       resp.NextURL,
	}, nil
}

func validate(req *AuthorizeRequest) error {
	switch {
	case req == nil:
		return fmt.Errorf("%w: empty request", ErrInvalidRequest)
	case req.UserID == "":
		return fmt.Errorf("%w: user_id is required", ErrInvalidRequest)
	case req.OrderNumber == "":
		return fmt.Errorf("%w: order_number is required", ErrInvalidRequest)
	case !req.Amount.IsPositive():
		return fmt.Errorf("%w: amount must be positive", ErrInvalidRequest)
	case req.Billing == nil && req.Shipping == nil && req.CardToken == "":
		return fmt.Errorf("%w: an address or a saved card is required", ErrInvalidRequest)
	}
	return nil
}

func (s *Service) newTransaction(ctx context.Context, req *AuthorizeRequest) (*models.Transaction, error) {
	billing, shipping := req.Billing, req.Shipping

	var token *string
	if req.CardToken != "" {
		c, err := s.cards.Get(ctx, req.UserID, req.CardToken)
		if errors.Is(err, card.ErrCardNotFound) {
			return nil, fmt.Errorf("%w: unknown card", ErrInvalidRequest)
		}
		if err != nil {
			return nil, err
		}
		token = &c.Token

		// saved card payments do not ask for a billing address again
		if billing == nil {
			creating, err := s.ledger.FindByToken(ctx, c.Token)
			switch {
			case err == nil:
				billing = &creating.Billing
			case !errors.Is(err, ledger.ErrRecordNotFound):
				return nil, err
			}
		}
	}
	if shipping == nil {
		shipping = billing
	}
	if billing == nil {
		billing = shipping
	}
	if billing == nil {
		return nil, fmt.Errorf("%w: no address available", ErrInvalidRequest)
	}

	currency := req.Currency
	if currency == "" {
		currency = s.cfg.SagePay.Currency
	}
	return &models.Transaction{
		ID:            tool.GenerateUUIDV7(),
		VendorTxCode:  tool.GenerateVendorTxCode(),
		UserID:        req.UserID,
		OrderNumber:   req.OrderNumber,
		BasketID:      req.BasketID,
		Amount:        req.Amount,
		Currency:      currency,
		Description:   Description(req.ProductTitles),
		Basket:        req.Basket,
		Billing:       *billing,
		Delivery:      *shipping,
		CustomerEmail: req.CustomerEmail,
		AllowGiftAid:  req.AllowGiftAid,
		Protocol:      s.cfg.SagePay.Protocol,
		TxType:        types.TxType(s.cfg.SagePay.TxType),
		Vendor:        s.cfg.SagePay.Vendor,
		Profile:       s.cfg.SagePay.Profile,
		Token:         token,
		SaveCard:      req.SaveCard,
	}, nil
}

// Description joins product titles and cuts the result to what SagePay
// accepts.
func Description(titles []string) string {
	return tool.TruncateUTF8(strings.Join(titles, ", "), maxDescriptionBytes)
}

// OrderFromProcessorID returns what the thank-you page needs to place the
// order for a SagePay transaction id.
func (s *Service) OrderFromProcessorID(ctx context.Context, vpsTxID string) (*OrderSummary, error) {
	tx, err := s.ledger.FindByProcessorID(ctx, vpsTxID)
	if err != nil {
		return nil, err
	}
	summary := &OrderSummary{
		OrderNumber: tx.OrderNumber,
		BasketID:    tx.BasketID,
		Amount:      tx.Amount,
		Currency:    tx.Currency,
	}
	if tx.Notification != nil && tx.Notification.HashMatch {
		summary.Status = tx.Notification.Status
	}
	return summary, nil
}

var Module = fx.Options(
	fx.Provide(
		func(c *sagepay.Client) Registrar { return c },
		func(c *card.Service) CardLookup { return c },
		New,
	),
)
