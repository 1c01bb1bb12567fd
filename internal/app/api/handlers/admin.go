package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/fatflowers/sagepay/internal/app/service/ledger"
	"github.com/fatflowers/sagepay/internal/app/service/statistics"
	"github.com/fatflowers/sagepay/internal/models"
	"github.com/fatflowers/sagepay/pkg/response"
	"github.com/fatflowers/sagepay/pkg/types"
)

type TransactionScanner interface {
	ScanTransactions(ctx context.Context, req *ledger.ScanTransactionsRequest) (*ledger.ScanTransactionsResponse, error)
}

type StatisticsProvider interface {
	GetDailyPaymentStatistic(ctx context.Context, req *statistics.PaymentStatisticRequest) (*statistics.PaymentStatisticResponse, error)
}

type ListTransactionRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

// TransactionItem is the admin view of a payment attempt. Security keys
// never leave the service.
type TransactionItem struct {
	ID           string              `json:"id"`
	VendorTxCode string              `json:"vendor_tx_code"`
	VPSTxID      string              `json:"vps_tx_id"`
	UserID       string              `json:"user_id"`
	OrderNumber  string              `json:"order_number"`
	BasketID     string              `json:"basket_id"`
	Amount       decimal.Decimal     `json:"amount" swaggertype:"string"`
	Currency     string              `json:"currency"`
	Description  string              `json:"description"`
	TxType       types.TxType        `json:"tx_type"`
	Registered   types.PaymentStatus `json:"registration_status"`
	Status       types.PaymentStatus `json:"status"`
	StatusDetail string              `json:"status_detail"`
	HashMatch    bool                `json:"hash_match"`
	CardType     string              `json:"card_type"`
	Last4Digits  string              `json:"last4_digits"`
	FinalizedAt  *time.Time          `json:"finalized_at"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	NotifiedAt   *time.Time          `json:"notified_at"`
}

func toTransactionItem(m *models.Transaction) *TransactionItem {
	item := &TransactionItem{
		ID:           m.ID,
		VendorTxCode: m.VendorTxCode,
		VPSTxID:      lo.FromPtr(m.VPSTxID),
		UserID:       m.UserID,
		OrderNumber:  m.OrderNumber,
		BasketID:     m.BasketID,
		Amount:       m.Amount,
		Currency:     m.Currency,
		Description:  m.Description,
		TxType:       m.TxType,
		FinalizedAt:  m.FinalizedAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if r := m.Registration; r != nil {
		item.Registered = r.Status
	}
	if n := m.Notification; n != nil {
		item.Status = n.Status
		item.StatusDetail = n.StatusDetail
		item.HashMatch = n.HashMatch
		item.CardType = n.CardType
		item.Last4Digits = n.Last4Digits
		item.NotifiedAt = &n.UpdatedAt
	}
	return item
}

type ListTransactionsResponse struct {
	Items []*TransactionItem `json:"items"`
	Total int64              `json:"total"`
}

// @Summary      List Transactions (Admin)
// @Description  Retrieves a paginated and filterable list of SagePay transactions.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body ListTransactionRequest true "List transaction request with filters, pagination, and sorting"
// @Success      200  {object}  handlers.RespListTransactions
// @Router       /api/v1/admin/list_transactions [post]
func ApiListTransactions(scanner TransactionScanner) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ListTransactionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		scanReq := &ledger.ScanTransactionsRequest{Filters: req.Filters, From: req.From, Size: req.Size, SortBy: req.SortBy, SortOrder: req.SortOrder}
		res, err := scanner.ScanTransactions(c.Request.Context(), scanReq)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](codeFor(err), err.Error()))
			return
		}
		items := lo.Map(res.Items, func(it *models.Transaction, _ int) *TransactionItem { return toTransactionItem(it) })
		c.JSON(http.StatusOK, response.OKT(&ListTransactionsResponse{Items: items, Total: res.Total}))
	}
}

// @Summary      Get Payment Statistics (Admin)
// @Description  Retrieves daily payment statistics.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body statistics.PaymentStatisticRequest true "Statistic request parameters"
// @Success      200  {object}  handlers.RespPaymentStatistic
// @Router       /api/v1/admin/get_payment_statistic [post]
func ApiGetPaymentStatistic(svc StatisticsProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.PaymentStatisticRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.GetDailyPaymentStatistic(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](codeFor(err), err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterAdminRoutes(r gin.IRouter, scanner TransactionScanner, stats StatisticsProvider) {
	r.POST("/list_transactions", ApiListTransactions(scanner))
	r.POST("/get_payment_statistic", ApiGetPaymentStatistic(stats))
}
