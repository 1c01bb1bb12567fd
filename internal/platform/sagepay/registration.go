package sagepay

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fatflowers/sagepay/internal/models"
	"github.com/fatflowers/sagepay/pkg/logctx"
	"github.com/fatflowers/sagepay/pkg/tool"
	"github.com/fatflowers/sagepay/pkg/types"
)

const (
	maxDescriptionBytes = 100
	maxBasketBytes      = 7500
)

// RegistrationRequest is one payment registration, built from a stored
// transaction record.
type RegistrationRequest struct {
	Profile         string
	Protocol        string
	TxType          types.TxType
	Vendor          string
	VendorTxCode    string
	Amount          decimal.Decimal
	Currency        string
	Description     string
	NotificationURL string
	Billing         models.Address
	Delivery        models.Address
	CustomerEmail   string
	Basket          string
	AllowGiftAid    bool
	// Token references a saved card; empty means a fresh card entry.
	Token string
}

// NewRegistrationRequest maps tx onto the wire request. Empty profile,
// protocol and notification URL fall back to the client options.
func (c *Client) NewRegistrationRequest(tx *models.Transaction) *RegistrationRequest {
	r := &RegistrationRequest{
		Profile:         tx.Profile,
		Protocol:        tx.Protocol,
		TxType:          tx.TxType,
		Vendor:          tx.Vendor,
		VendorTxCode:    tx.VendorTxCode,
		Amount:          tx.Amount,
		Currency:        tx.Currency,
		Description:     tx.Description,
		NotificationURL: c.opts.NotificationURL,
		Billing:         tx.Billing,
		Delivery:        tx.Delivery,
		CustomerEmail:   tx.CustomerEmail,
		Basket:          tx.Basket,
		AllowGiftAid:    tx.AllowGiftAid,
	}
	if r.Profile == "" {
		r.Profile = c.opts.Profile
	}
	if r.Protocol == "" {
		r.Protocol = c.opts.Protocol
	}
	if r.Vendor == "" {
		r.Vendor = c.opts.Vendor
	}
	if tx.Token != nil {
		r.Token = *tx.Token
	}
	return r
}

var registrationOrder = []string{
	FieldProfile, FieldVPSProtocol, FieldTxType, FieldVendor, FieldVendorTxCode,
	FieldAmount, FieldCurrency, FieldDescription, FieldNotificationURL,
	"BillingSurname", "BillingFirstnames", "BillingAddress1", "BillingAddress2",
	"BillingCity", "BillingPostCode", "BillingCountry", "BillingState", "BillingPhone",
	"DeliverySurname", "DeliveryFirstnames", "DeliveryAddress1", "DeliveryAddress2",
	"DeliveryCity", "DeliveryPostCode", "DeliveryCountry", "DeliveryState", "DeliveryPhone",
	FieldCustomerEmail, FieldBasket, FieldAllowGiftAid, FieldStoreToken,
	FieldCreateToken, FieldToken,
}

// Fields renders the request. CreateToken is only present when the
// customer asked to keep the card, Token only when paying with one.
func (r *RegistrationRequest) Fields(wantsSavedCard bool) Fields {
	f := Fields{
		FieldProfile:         r.Profile,
		FieldVPSProtocol:     r.Protocol,
		FieldTxType:          string(r.TxType),
		FieldVendor:          r.Vendor,
		FieldVendorTxCode:    r.VendorTxCode,
		FieldAmount:          r.Amount.StringFixedBank(2),
		FieldCurrency:        r.Currency,
		FieldDescription:     tool.TruncateUTF8(r.Description, maxDescriptionBytes),
		FieldNotificationURL: r.NotificationURL,
		FieldCustomerEmail:   r.CustomerEmail,
		FieldBasket:          tool.TruncateUTF8(r.Basket, maxBasketBytes),
		FieldAllowGiftAid:    boolFlag(r.AllowGiftAid),
		FieldStoreToken:      "1",
	}
	putAddress(f, "Billing", r.Billing)
	putAddress(f, "Delivery", r.Delivery)
	if wantsSavedCard {
		f[FieldCreateToken] = "1"
	}
	if r.Token != "" {
		f[FieldToken] = r.Token
	}
	return f
}

// String renders the request in wire order, for logs and tests.
func (r *RegistrationRequest) String() string {
	return Encode(r.Fields(false), registrationOrder)
}

func putAddress(f Fields, prefix string, a models.Address) {
	f[prefix+"Surname"] = a.Surname
	f[prefix+"Firstnames"] = a.Firstnames
	f[prefix+"Address1"] = a.Address1
	f[prefix+"Address2"] = a.Address2
	f[prefix+"City"] = a.City
	f[prefix+"PostCode"] = a.PostCode
	f[prefix+"Country"] = a.Country
	f[prefix+"State"] = a.State
	f[prefix+"Phone"] = a.Phone
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// RegistrationResponse is SagePay's answer to a registration.
type RegistrationResponse struct {
	VPSProtocol  string
	Status       types.PaymentStatus
	StatusDetail string
	VPSTxID      string
	SecurityKey  string
	NextURL      string
	Fields       Fields
}

func (r *RegistrationResponse) OK() bool {
	return r != nil && r.Status == types.PaymentStatusOK
}

// Result converts the response into its stored form.
func (r *RegistrationResponse) Result() *models.RegistrationResult {
	return &models.RegistrationResult{
		ID:           tool.GenerateUUIDV7(),
		VPSProtocol:  r.VPSProtocol,
		VPSTxID:      r.VPSTxID,
		SecurityKey:  r.SecurityKey,
		Status:       r.Status,
		StatusDetail: r.StatusDetail,
		NextURL:      r.NextURL,
	}
}

func newRegistrationResponse(f Fields) *RegistrationResponse {
	return &RegistrationResponse{
		VPSProtocol:  f.Get(FieldVPSProtocol),
		Status:       types.PaymentStatus(f.Get(FieldStatus)),
		StatusDetail: f.Get(FieldStatusDetail),
		VPSTxID:      f.Get(FieldVPSTxID),
		SecurityKey:  f.Get(FieldSecurityKey),
		NextURL:      f.Get(FieldNextURL),
		Fields:       f,
	}
}

// Register posts req to SagePay. The returned bool is true only for
// Status=OK; any other well-formed reply is returned with false and a nil
// error so callers can inspect StatusDetail. It is never retried here.
func (c *Client) Register(ctx context.Context, req *RegistrationRequest, wantsSavedCard bool) (*RegistrationResponse, bool, error) {
	if req == nil {
		return nil, false, fmt.Errorf("registration request is nil")
	}
	ctx = logctx.WithVendorTxCode(ctx, req.VendorTxCode)

	reply, err := c.post(ctx, c.opts.RegisterURL, req.Fields(wantsSavedCard))
	if err != nil {
		return nil, false, fmt.Errorf("register %s: %w", req.VendorTxCode, err)
	}

	resp := newRegistrationResponse(reply)
	logctx.FromCtx(ctx, c.log).Infow("sagepay_register_replied",
		"status", resp.Status,
		"status_detail", resp.StatusDetail,
		"vps_tx_id", resp.VPSTxID,
	)
	return resp, resp.OK(), nil
}
