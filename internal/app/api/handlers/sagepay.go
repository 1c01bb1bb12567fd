package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/sagepay/internal/app/service/checkout"
	"github.com/fatflowers/sagepay/internal/platform/sagepay"
	"github.com/fatflowers/sagepay/pkg/logctx"
	"github.com/fatflowers/sagepay/pkg/response"
)

type NotificationProcessor interface {
	Handle(ctx context.Context, n *sagepay.Notification) (string, error)
}

type OrderLookup interface {
	OrderFromProcessorID(ctx context.Context, vpsTxID string) (*checkout.OrderSummary, error)
}

// Messages shown on the error page, keyed by the code SagePay redirects to.
var errorPageMessages = map[string]string{
	"0": "Payment could not be completed, please try again",
	"1": "Transaction not authorized, please check your details",
	"2": "Transaction cancelled",
	"3": "Transaction has been rejected because of the fraud screening rules",
}

type ErrorPage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// @Summary      SagePay notification
// @Description  Server-to-server callback from SagePay. Replies in SagePay's key=value text format.
// @Tags         SagePay
// @Accept       x-www-form-urlencoded
// @Produce      plain
// @Success      200  {string}  string  "Status=OK\r\nRedirectURL=..."
// @Failure      500  {string}  string  "empty body, SagePay retries"
// @Router       /sagepay/notification [post]
func ApiSagePayNotification(h NotificationProcessor, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := c.Request.ParseForm(); err != nil {
			logctx.FromGin(c, log).Warnw("sagepay_notification_bad_form", "err", err)
			c.Status(http.StatusBadRequest)
			return
		}
		n := sagepay.NotificationFromForm(c.Request.PostForm)
		reply, err := h.Handle(c.Request.Context(), n)
		if err != nil {
			logctx.FromGin(c, log).Errorw("sagepay_notification_failed", "vps_tx_id", n.VPSTxID(), "err", err)
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Data(http.StatusOK, "text/plain", []byte(reply))
	}
}

// @Summary      Thank-you page data
// @Description  Order summary for the SagePay success redirect.
// @Tags         SagePay
// @Produce      json
// @Param        tx_id  path  string  true  "SagePay VPSTxId"
// @Success      200  {object}  handlers.RespOrderSummary
// @Router       /sagepay/thankyou/{tx_id} [get]
func ApiThankYou(orders OrderLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := orders.OrderFromProcessorID(c.Request.Context(), c.Param("tx_id"))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](codeFor(err), err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(order))
	}
}

// @Summary      Error page data
// @Description  Message for the SagePay error redirect (1 not authorised, 2 cancelled, 3 rejected, 0 failed).
// @Tags         SagePay
// @Produce      json
// @Param        code  path  string  true  "error code"
// @Success      200  {object}  handlers.RespErrorPage
// @Router       /sagepay/error/{code} [get]
func ApiPaymentError(c *gin.Context) {
	code := c.Param("code")
	msg, ok := errorPageMessages[code]
	if !ok {
		c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "unknown error code"))
		return
	}
	c.JSON(http.StatusOK, response.OKT(&ErrorPage{Code: code, Message: msg}))
}

func RegisterSagePayRoutes(r gin.IRouter, h NotificationProcessor, orders OrderLookup, log *zap.SugaredLogger) {
	r.POST("/notification", ApiSagePayNotification(h, log))
	r.GET("/thankyou/:tx_id", ApiThankYou(orders))
	r.GET("/error/:code", ApiPaymentError)
}
