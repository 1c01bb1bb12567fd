package handlers

import (
	"errors"

	"github.com/fatflowers/sagepay/internal/app/service/card"
	"github.com/fatflowers/sagepay/internal/app/service/checkout"
	"github.com/fatflowers/sagepay/internal/app/service/ledger"
	"github.com/fatflowers/sagepay/internal/app/service/statistics"
	"github.com/fatflowers/sagepay/internal/platform/sagepay"
	"github.com/fatflowers/sagepay/pkg/response"
)

// codeFor maps service errors onto envelope codes.
func codeFor(err error) response.APIResponseCode {
	switch {
	case errors.Is(err, checkout.ErrInvalidRequest), errors.Is(err, ledger.ErrInvalidScan),
		errors.Is(err, statistics.ErrInvalidRequest):
		return response.APIResponseCodeBadRequest
	case errors.Is(err, ledger.ErrRecordNotFound), errors.Is(err, card.ErrCardNotFound):
		return response.APIResponseCodeNotFound
	case errors.Is(err, sagepay.ErrGatewayRejected):
		return response.APIResponseCodeGatewayRejected
	case errors.Is(err, sagepay.ErrGatewayUnreachable):
		return response.APIResponseCodeGatewayUnreachable
	}
	return response.APIResponseCodeError
}
