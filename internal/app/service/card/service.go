package card

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/sagepay/internal/models"
	"github.com/fatflowers/sagepay/internal/platform/sagepay"
	"github.com/fatflowers/sagepay/pkg/logctx"
)

type TokenRemover interface {
	RemoveToken(ctx context.Context, token string) (*sagepay.RemoveTokenResponse, error)
}

// Service manages the cards customers chose to keep with SagePay.
type Service struct {
	store   Store
	gateway TokenRemover
	log     *zap.SugaredLogger
}

func New(store Store, gateway TokenRemover, log *zap.SugaredLogger) *Service {
	return &Service{store: store, gateway: gateway, log: log}
}

// SaveFromNotification stores the token SagePay returned with an
// authorised payment. Re-deliveries are no-ops.
func (s *Service) SaveFromNotification(ctx context.Context, tx *models.Transaction, n *sagepay.Notification) error {
	token := n.Get(sagepay.FieldToken)
	if token == "" {
		return nil
	}
	c := &models.CardToken{
		Token:         token,
		UserID:        tx.UserID,
		TransactionID: tx.ID,
		CardType:      n.Get(sagepay.FieldCardType),
		Last4Digits:   n.Get(sagepay.FieldLast4Digits),
		ExpiryDate:    n.Get(sagepay.FieldExpiryDate),
	}
	if err := s.store.Save(ctx, c); err != nil {
		return err
	}
	logctx.FromCtx(ctx, s.log).Infow("card_token_saved", "user_id", tx.UserID, "card", c.Summary())
	return nil
}

func (s *Service) List(ctx context.Context, userID string) ([]*models.CardToken, error) {
	return s.store.ListActive(ctx, userID)
}

// Get returns an active card of userID.
func (s *Service) Get(ctx context.Context, userID, token string) (*models.CardToken, error) {
	return s.store.FindActive(ctx, userID, token)
}

// Remove deletes the token at SagePay first and only then locally, so a
// failed call leaves the card usable.
func (s *Service) Remove(ctx context.Context, userID, token string) error {
	c, err := s.store.FindActive(ctx, userID, token)
	if err != nil {
		return err
	}
	resp, err := s.gateway.RemoveToken(ctx, c.Token)
	if err != nil {
		return err
	}
	if !resp.OK() {
		logctx.FromCtx(ctx, s.log).Warnw("card_token_remove_rejected", "status", resp.Status, "status_detail", resp.StatusDetail)
		return fmt.Errorf("%w: %s", sagepay.ErrGatewayRejected, resp.StatusDetail)
	}
	if err := s.store.MarkRemoved(ctx, c.ID, time.Now()); err != nil {
		return err
	}
	logctx.FromCtx(ctx, s.log).Infow("card_token_removed", "user_id", userID, "card", c.Summary())
	return nil
}

var Module = fx.Options(
	fx.Provide(
		fx.Annotate(NewGormStore, fx.As(new(Store))),
		func(c *sagepay.Client) TokenRemover { return c },
		New,
	),
)
