package finalizer

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fatflowers/sagepay/internal/models"
)

// Order identifies the checkout an authorised payment belongs to.
type Order struct {
	OrderNumber  string
	BasketID     string
	UserID       string
	Amount       decimal.Decimal
	Currency     string
	VPSTxID      string
	VendorTxCode string
}

func OrderFromTransaction(tx *models.Transaction) *Order {
	o := &Order{
		OrderNumber:  tx.OrderNumber,
		BasketID:     tx.BasketID,
		UserID:       tx.UserID,
		Amount:       tx.Amount,
		Currency:     tx.Currency,
		VendorTxCode: tx.VendorTxCode,
	}
	if tx.VPSTxID != nil {
		o.VPSTxID = *tx.VPSTxID
	}
	return o
}

// OrderFinalizer places the order once SagePay has authorised the payment.
// It is called at most once per transaction.
type OrderFinalizer interface {
	Finalize(ctx context.Context, order *Order) error
}

const EventPaymentAuthorised = "payment.authorised"

// Event is the message published for an authorised payment.
type Event struct {
	Event        string    `json:"event"`
	OrderNumber  string    `json:"order_number"`
	BasketID     string    `json:"basket_id"`
	UserID       string    `json:"user_id"`
	Amount       string    `json:"amount"`
	Currency     string    `json:"currency"`
	VPSTxID      string    `json:"vps_tx_id"`
	VendorTxCode string    `json:"vendor_tx_code"`
	OccurredAt   time.Time `json:"occurred_at"`
}

func newEvent(o *Order, now time.Time) Event {
	return Event{
		Event:        EventPaymentAuthorised,
		OrderNumber:  o.OrderNumber,
		BasketID:     o.BasketID,
		UserID:       o.UserID,
		Amount:       o.Amount.StringFixed(2),
		Currency:     o.Currency,
		VPSTxID:      o.VPSTxID,
		VendorTxCode: o.VendorTxCode,
		OccurredAt:   now.UTC(),
	}
}
