package sagepay

import (
	"context"
	"fmt"

	"github.com/fatflowers/sagepay/pkg/logctx"
	"github.com/fatflowers/sagepay/pkg/types"
)

type RemoveTokenResponse struct {
	Status       types.PaymentStatus
	StatusDetail string
}

func (r *RemoveTokenResponse) OK() bool {
	return r != nil && r.Status == types.PaymentStatusOK
}

// RemoveToken asks SagePay to forget a stored card.
func (c *Client) RemoveToken(ctx context.Context, token string) (*RemoveTokenResponse, error) {
	if token == "" {
		return nil, fmt.Errorf("token is empty")
	}
	reply, err := c.post(ctx, c.opts.RemoveTokenURL, Fields{
		FieldVPSProtocol: c.opts.Protocol,
		FieldTxType:      string(types.TxTypeRemoveToken),
		FieldVendor:      c.opts.Vendor,
		FieldToken:       token,
	})
	if err != nil {
		return nil, fmt.Errorf("remove token: %w", err)
	}
	resp := &RemoveTokenResponse{
		Status:       types.PaymentStatus(reply.Get(FieldStatus)),
		StatusDetail: reply.Get(FieldStatusDetail),
	}
	logctx.FromCtx(ctx, c.log).Infow("sagepay_remove_token_replied", "status", resp.Status, "status_detail", resp.StatusDetail)
	return resp, nil
}
