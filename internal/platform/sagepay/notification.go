package sagepay

import (
	"encoding/json"
	"maps"
	"net/url"

	"gorm.io/datatypes"

	"github.com/fatflowers/sagepay/internal/models"
	"github.com/fatflowers/sagepay/pkg/types"
)

// Notification is the read-only view of a transaction notification
// SagePay posts to the NotificationURL.
type Notification struct {
	fields Fields
}

func NewNotification(fields Fields) *Notification {
	return &Notification{fields: maps.Clone(fields)}
}

func NotificationFromForm(form url.Values) *Notification {
	return &Notification{fields: FieldsFromForm(form)}
}

// Get returns the named field, "" when SagePay did not send it.
func (n *Notification) Get(key string) string {
	return n.fields.Get(key)
}

func (n *Notification) Status() types.PaymentStatus {
	return types.PaymentStatus(n.Get(FieldStatus))
}

func (n *Notification) VPSTxID() string      { return n.Get(FieldVPSTxID) }
func (n *Notification) VendorTxCode() string { return n.Get(FieldVendorTxCode) }
func (n *Notification) Protocol() string     { return n.Get(FieldVPSProtocol) }
func (n *Notification) Signature() string    { return n.Get(FieldVPSSignature) }

// Fields returns a copy of the raw fields.
func (n *Notification) Fields() Fields {
	return maps.Clone(n.fields)
}

// RawJSON is the payload as stored for audit.
func (n *Notification) RawJSON() datatypes.JSON {
	b, err := json.Marshal(n.fields)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(b)
}

// Result maps the notification onto its stored form. Bookkeeping fields
// are left to the caller.
func (n *Notification) Result() *models.NotificationResult {
	return &models.NotificationResult{
		VPSProtocol:        n.Get(FieldVPSProtocol),
		TxType:             n.Get(FieldTxType),
		VendorTxCode:       n.Get(FieldVendorTxCode),
		VPSTxID:            n.Get(FieldVPSTxID),
		Status:             n.Status(),
		StatusDetail:       n.Get(FieldStatusDetail),
		TxAuthNo:           n.Get(FieldTxAuthNo),
		AVSCV2:             n.Get(FieldAVSCV2),
		AddressResult:      n.Get(FieldAddressResult),
		PostCodeResult:     n.Get(FieldPostCodeResult),
		CV2Result:          n.Get(FieldCV2Result),
		GiftAid:            n.Get(FieldGiftAid),
		ThreeDSecureStatus: n.Get(Field3DSecureStatus),
		CAVV:               n.Get(FieldCAVV),
		AddressStatus:      n.Get(FieldAddressStatus),
		PayerStatus:        n.Get(FieldPayerStatus),
		CardType:           n.Get(FieldCardType),
		Last4Digits:        n.Get(FieldLast4Digits),
		DeclineCode:        n.Get(FieldDeclineCode),
		ExpiryDate:         n.Get(FieldExpiryDate),
		FraudResponse:      n.Get(FieldFraudResponse),
		BankAuthCode:       n.Get(FieldBankAuthCode),
		Token:              n.Get(FieldToken),
		VPSSignature:       n.Get(FieldVPSSignature),
		Raw:                n.RawJSON(),
	}
}
