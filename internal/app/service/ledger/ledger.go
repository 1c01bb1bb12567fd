package ledger

import (
	"context"
	"errors"

	"github.com/fatflowers/sagepay/internal/models"
)

var (
	ErrRecordNotFound = errors.New("ledger: record not found")
	// ErrNotificationConflict is returned when a notification would change
	// an outcome that is already settled.
	ErrNotificationConflict = errors.New("ledger: notification conflicts with stored outcome")
	ErrInvalidScan          = errors.New("ledger: invalid scan request")
)

// TransactionLedger persists payment attempts and what SagePay said about
// them. Implementations must be safe for concurrent use; two deliveries of
// the same notification may race.
type TransactionLedger interface {
	// Save stores a new transaction. ID and VendorTxCode are generated when
	// empty and never change afterwards.
	Save(ctx context.Context, tx *models.Transaction) error
	// FindByProcessorID loads the transaction registered under vpsTxID with
	// its registration and notification results.
	FindByProcessorID(ctx context.Context, vpsTxID string) (*models.Transaction, error)
	// FindByToken returns the transaction whose notification created token.
	FindByToken(ctx context.Context, token string) (*models.Transaction, error)
	AttachRegistration(ctx context.Context, txID string, r *models.RegistrationResult) error
	// AttachNotification records n for txID subject to
	// models.NotificationResult.CanReplace.
	AttachNotification(ctx context.Context, txID string, n *models.NotificationResult) error
	// ClaimFinalization marks txID as finalized. It reports false when
	// another caller already holds the claim.
	ClaimFinalization(ctx context.Context, txID string) (bool, error)
	// ReleaseFinalization drops a claim after a failed finalization so a
	// later delivery can retry.
	ReleaseFinalization(ctx context.Context, txID string) error
}
