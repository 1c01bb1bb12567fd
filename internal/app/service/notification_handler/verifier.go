package notification_handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatflowers/sagepay/internal/app/service/ledger"
	"github.com/fatflowers/sagepay/internal/models"
	"github.com/fatflowers/sagepay/internal/platform/sagepay"
)

type Outcome string

const (
	OutcomeNotFound          Outcome = "not_found"
	OutcomeSignatureMismatch Outcome = "signature_mismatch"
	OutcomeAuthentic         Outcome = "authentic"
)

type Verification struct {
	Outcome Outcome
	// Transaction is nil when Outcome is OutcomeNotFound.
	Transaction *models.Transaction
}

// Verifier checks a notification against the registration it claims to
// answer.
type Verifier struct {
	ledger ledger.TransactionLedger
	// vendor is used for transactions stored without one.
	vendor string
}

func NewVerifier(l ledger.TransactionLedger, vendor string) *Verifier {
	return &Verifier{ledger: l, vendor: vendor}
}

// Verify never reports an unknown id or a bad signature as an error; only
// ledger failures are returned.
func (v *Verifier) Verify(ctx context.Context, n *sagepay.Notification) (*Verification, error) {
	tx, err := v.ledger.FindByProcessorID(ctx, n.VPSTxID())
	if errors.Is(err, ledger.ErrRecordNotFound) {
		return &Verification{Outcome: OutcomeNotFound}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction %s: %w", n.VPSTxID(), err)
	}
	if tx.Registration == nil {
		return &Verification{Outcome: OutcomeNotFound}, nil
	}

	vendor := tx.Vendor
	if vendor == "" {
		vendor = v.vendor
	}
	if !sagepay.VerifySignature(n, tx.Protocol, vendor, tx.SecurityKey()) {
		return &Verification{Outcome: OutcomeSignatureMismatch, Transaction: tx}, nil
	}
	return &Verification{Outcome: OutcomeAuthentic, Transaction: tx}, nil
}
