package handlers

import (
	"github.com/fatflowers/sagepay/internal/app/service/checkout"
	"github.com/fatflowers/sagepay/internal/app/service/statistics"
	"github.com/fatflowers/sagepay/pkg/response"
)

// Envelope types below exist for swag; handlers use response.OKT directly.

type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

type RespAuthorize struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    checkout.AuthorizeResult `json:"data"`
}

type RespOrderSummary struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    checkout.OrderSummary    `json:"data"`
}

type RespErrorPage struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    ErrorPage                `json:"data"`
}

type RespCards struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []CardItem               `json:"data"`
}

type RespListTransactions struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    ListTransactionsResponse `json:"data"`
}

type RespPaymentStatistic struct {
	Code    response.APIResponseCode            `json:"code"`
	Message string                              `json:"message"`
	Data    statistics.PaymentStatisticResponse `json:"data"`
}
