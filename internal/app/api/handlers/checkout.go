package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/fatflowers/sagepay/internal/app/service/checkout"
	"github.com/fatflowers/sagepay/internal/models"
	"github.com/fatflowers/sagepay/pkg/response"
)

type Authorizer interface {
	Authorize(ctx context.Context, req *checkout.AuthorizeRequest) (*checkout.AuthorizeResult, error)
}

type CardManager interface {
	List(ctx context.Context, userID string) ([]*models.CardToken, error)
	Remove(ctx context.Context, userID, token string) error
}

type RegisterPaymentRequest struct {
	UserID          string          `json:"user_id"`
	OrderNumber     string          `json:"order_number"`
	BasketID        string          `json:"basket_id"`
	Amount          decimal.Decimal `json:"amount" swaggertype:"string" example:"12.50"`
	Currency        string          `json:"currency"`
	ProductTitles   []string        `json:"product_titles"`
	Basket          string          `json:"basket"`
	CustomerEmail   string          `json:"customer_email"`
	AllowGiftAid    bool            `json:"allow_gift_aid"`
	BillingAddress  *models.Address `json:"billing_address"`
	ShippingAddress *models.Address `json:"shipping_address"`
	SaveCard        bool            `json:"save_card"`
	CardToken       string          `json:"card_token"`
}

func (r *RegisterPaymentRequest) toAuthorize() *checkout.AuthorizeRequest {
	return &checkout.AuthorizeRequest{
		UserID:        r.UserID,
		OrderNumber:   r.OrderNumber,
		BasketID:      r.BasketID,
		Amount:        r.Amount,
		Currency:      r.Currency,
		ProductTitles: r.ProductTitles,
		Basket:        r.Basket,
		CustomerEmail: r.CustomerEmail,
		AllowGiftAid:  r.AllowGiftAid,
		Billing:       r.BillingAddress,
		Shipping:      r.ShippingAddress,
		SaveCard:      r.SaveCard,
		CardToken:     r.CardToken,
	}
}

type CardItem struct {
	Token      string `json:"token"`
	CardType   string `json:"card_type"`
	Card       string `json:"card"`
	ExpiryDate string `json:"expiry_date"`
}

type RemoveCardRequest struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

// @Summary      Register payment
// @Description  Registers a payment with SagePay and returns the URL the customer is sent to.
// @Tags         Checkout
// @Accept       json
// @Produce      json
// @Param        request body RegisterPaymentRequest true "payment to register"
// @Success      200  {object}  handlers.RespAuthorize
// @Router       /api/v1/checkout/register [post]
func ApiRegisterPayment(svc Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.Authorize(c.Request.Context(), req.toAuthorize())
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](codeFor(err), err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      List saved cards
// @Tags         Checkout
// @Produce      json
// @Param        user_id  query  string  true  "user id"
// @Success      200  {object}  handlers.RespCards
// @Router       /api/v1/checkout/cards [get]
func ApiListCards(cards CardManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing user_id"))
			return
		}
		list, err := cards.List(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](codeFor(err), err.Error()))
			return
		}
		items := lo.Map(list, func(ct *models.CardToken, _ int) *CardItem {
			return &CardItem{
				Token:      ct.Token,
				CardType:   ct.CardType,
				Card:       ct.ObfuscatedCard(),
				ExpiryDate: ct.ExpiryDateFormatted(),
			}
		})
		c.JSON(http.StatusOK, response.OKT(items))
	}
}

// @Summary      Remove saved card
// @Description  Deletes the token at SagePay, then locally.
// @Tags         Checkout
// @Accept       json
// @Produce      json
// @Param        request body RemoveCardRequest true "card to remove"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/checkout/cards/remove [post]
func ApiRemoveCard(cards CardManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RemoveCardRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if req.UserID == "" || req.Token == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing user_id or token"))
			return
		}
		if err := cards.Remove(c.Request.Context(), req.UserID, req.Token); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](codeFor(err), err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

func RegisterCheckoutRoutes(r gin.IRouter, svc Authorizer, cards CardManager) {
	r.POST("/register", ApiRegisterPayment(svc))
	r.GET("/cards", ApiListCards(cards))
	r.POST("/cards/remove", ApiRemoveCard(cards))
}
