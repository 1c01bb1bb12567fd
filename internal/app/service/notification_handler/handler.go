package notification_handler

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fatflowers/sagepay/internal/app/service/finalizer"
	"github.com/fatflowers/sagepay/internal/app/service/ledger"
	"github.com/fatflowers/sagepay/internal/models"
	"github.com/fatflowers/sagepay/internal/platform/sagepay"
	"github.com/fatflowers/sagepay/pkg/config"
	"github.com/fatflowers/sagepay/pkg/logctx"
	"github.com/fatflowers/sagepay/pkg/metrics"
)

// Recorder keeps the raw audit trail of inbound notifications.
type Recorder interface {
	Received(ctx context.Context, n *sagepay.Notification)
	Finished(ctx context.Context, n *sagepay.Notification, result any, err error)
}

// TokenSaver stores the card token SagePay created for a payment.
type TokenSaver interface {
	SaveFromNotification(ctx context.Context, tx *models.Transaction, n *sagepay.Notification) error
}

type NotificationHandler struct {
	ledger    ledger.TransactionLedger
	verifier  *Verifier
	finalizer finalizer.OrderFinalizer
	tokens    TokenSaver
	recorder  Recorder
	metrics   *metrics.Gateway
	redirects RedirectConfig
	Logger    *zap.SugaredLogger
}

func NewNotificationHandler(
	cfg *config.Config,
	l ledger.TransactionLedger,
	f finalizer.OrderFinalizer,
	tokens TokenSaver,
	rec Recorder,
	m *metrics.Gateway,
	log *zap.SugaredLogger,
) *NotificationHandler {
	return &NotificationHandler{
		ledger:    l,
		verifier:  NewVerifier(l, cfg.SagePay.Vendor),
		finalizer: f,
		tokens:    tokens,
		recorder:  rec,
		metrics:   m,
		redirects: RedirectConfigFrom(cfg),
		Logger:    log,
	}
}

// Handle verifies n, records the outcome and returns the text/plain reply
// for SagePay. An error means the ledger could not be consulted or written;
// the caller should answer with a server error so SagePay retries.
func (h *NotificationHandler) Handle(ctx context.Context, n *sagepay.Notification) (reply string, resErr error) {
	ctx = logctx.WithVendorTxCode(ctx, n.VendorTxCode())
	lg := logctx.FromCtx(ctx, h.Logger).With("vps_tx_id", n.VPSTxID(), "status", n.Status())
	lg.Infow("sagepay_notification_received")

	if h.recorder != nil {
		h.recorder.Received(ctx, n)
	}
	var decision Decision
	defer func() {
		if h.recorder != nil {
			h.recorder.Finished(ctx, n, decision, resErr)
		}
	}()

	v, err := h.verifier.Verify(ctx, n)
	if err != nil {
		lg.Errorw("sagepay_notification_verify_failed", "err", err)
		return "", err
	}
	decision = Route(v, n, h.redirects)
	h.metrics.ObserveNotification(string(v.Outcome), string(n.Status()))
	lg.Infow("sagepay_notification_routed", "outcome", v.Outcome, "replied", decision.Replied, "finalize", decision.Finalize)

	if decision.Persist {
		applied, err := h.persist(ctx, v.Transaction, n, decision)
		if err != nil {
			lg.Errorw("sagepay_notification_persist_failed", "err", err)
			return "", err
		}
		if !applied {
			if v.Outcome == OutcomeAuthentic {
				decision = h.storedDecision(ctx, v, n, decision)
			}
			return decision.Reply, nil
		}
	}

	if v.Outcome == OutcomeAuthentic && n.Get(sagepay.FieldToken) != "" && h.tokens != nil {
		if err := h.tokens.SaveFromNotification(ctx, v.Transaction, n); err != nil {
			lg.Errorw("sagepay_card_token_save_failed", "err", err)
		}
	}

	if decision.Finalize {
		if err := h.finalize(ctx, v.Transaction); err != nil {
			return "", err
		}
	}
	return decision.Reply, nil
}

// persist reports false when the ledger kept an earlier outcome. Nothing
// downstream may act on a result that was not stored.
func (h *NotificationHandler) persist(ctx context.Context, tx *models.Transaction, n *sagepay.Notification, d Decision) (bool, error) {
	res := n.Result()
	res.HashMatch = d.HashMatch
	res.Replied = d.Replied
	res.ReplyText = d.Reply

	err := h.ledger.AttachNotification(ctx, tx.ID, res)
	if errors.Is(err, ledger.ErrNotificationConflict) {
		logctx.FromCtx(ctx, h.Logger).Warnw("sagepay_notification_ignored",
			"vps_tx_id", n.VPSTxID(), "status", n.Status(), "hash_match", d.HashMatch)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to record notification: %w", err)
	}
	return true, nil
}

// storedDecision answers an authentic notification the ledger refused with
// the reply for the outcome it kept.
func (h *NotificationHandler) storedDecision(ctx context.Context, v *Verification, n *sagepay.Notification, d Decision) Decision {
	tx, err := h.ledger.FindByProcessorID(ctx, n.VPSTxID())
	if err != nil || tx.Notification == nil || !tx.Notification.HashMatch {
		logctx.FromCtx(ctx, h.Logger).Warnw("sagepay_stored_outcome_unavailable", "vps_tx_id", n.VPSTxID(), "err", err)
		d.Finalize = false
		return d
	}
	stored := sagepay.NewNotification(sagepay.Fields{
		sagepay.FieldVPSTxID: n.VPSTxID(),
		sagepay.FieldStatus:  string(tx.Notification.Status),
	})
	sd := Route(v, stored, h.redirects)
	sd.Finalize = false
	return sd
}

// finalize runs the order finalizer unless another delivery already did.
// A finalizer failure is logged and the claim released; SagePay still gets
// its OK because the payment itself is settled.
func (h *NotificationHandler) finalize(ctx context.Context, tx *models.Transaction) error {
	lg := logctx.FromCtx(ctx, h.Logger)

	claimed, err := h.ledger.ClaimFinalization(ctx, tx.ID)
	if err != nil {
		lg.Errorw("order_finalize_claim_failed", "err", err)
		return fmt.Errorf("failed to claim finalization: %w", err)
	}
	if !claimed {
		h.metrics.ObserveFinalize("skipped")
		lg.Infow("order_finalize_skipped", "order_number", tx.OrderNumber)
		return nil
	}

	if err := h.finalizer.Finalize(ctx, finalizer.OrderFromTransaction(tx)); err != nil {
		h.metrics.ObserveFinalize("failed")
		lg.Errorw("order_finalize_failed", "order_number", tx.OrderNumber, "err", err)
		if rerr := h.ledger.ReleaseFinalization(ctx, tx.ID); rerr != nil {
			lg.Errorw("order_finalize_release_failed", "order_number", tx.OrderNumber, "err", rerr)
		}
		return nil
	}
	h.metrics.ObserveFinalize("ok")
	return nil
}
