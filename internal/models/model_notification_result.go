package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/fatflowers/sagepay/pkg/types"
)

// NotificationResult SagePay 异步通知的内容及处理结果
type NotificationResult struct {
	ID            string `gorm:"column:id;primary_key;type:uuid" json:"id"`
	TransactionID string `gorm:"column:transaction_id;type:uuid;not null;uniqueIndex" json:"transaction_id"`

	VPSProtocol        string              `gorm:"column:vps_protocol;type:varchar(8)" json:"vps_protocol"`
	TxType             string              `gorm:"column:tx_type;type:varchar(16)" json:"tx_type"`
	VendorTxCode       string              `gorm:"column:vendor_tx_code;type:varchar(40)" json:"vendor_tx_code"`
	VPSTxID            string              `gorm:"column:vps_tx_id;type:varchar(64);not null;uniqueIndex" json:"vps_tx_id"`
	Status             types.PaymentStatus `gorm:"column:status;type:varchar(16);not null" json:"status"`
	StatusDetail       string              `gorm:"column:status_detail;type:varchar(255)" json:"status_detail"`
	TxAuthNo           string              `gorm:"column:tx_auth_no;type:varchar(32)" json:"tx_auth_no"`
	AVSCV2             string              `gorm:"column:avscv2;type:varchar(50)" json:"avscv2"`
	AddressResult      string              `gorm:"column:address_result;type:varchar(20)" json:"address_result"`
	PostCodeResult     string              `gorm:"column:post_code_result;type:varchar(20)" json:"post_code_result"`
	CV2Result          string              `gorm:"column:cv2_result;type:varchar(20)" json:"cv2_result"`
	GiftAid            string              `gorm:"column:gift_aid;type:varchar(1)" json:"gift_aid"`
	ThreeDSecureStatus string              `gorm:"column:three_d_secure_status;type:varchar(50)" json:"3d_secure_status"`
	CAVV               string              `gorm:"column:cavv;type:varchar(32)" json:"cavv"`
	AddressStatus      string              `gorm:"column:address_status;type:varchar(20)" json:"address_status"`
	PayerStatus        string              `gorm:"column:payer_status;type:varchar(20)" json:"payer_status"`
	CardType           string              `gorm:"column:card_type;type:varchar(15)" json:"card_type"`
	Last4Digits        string              `gorm:"column:last4_digits;type:varchar(4)" json:"last4_digits"`
	DeclineCode        string              `gorm:"column:decline_code;type:varchar(2)" json:"decline_code"`
	ExpiryDate         string              `gorm:"column:expiry_date;type:varchar(4)" json:"expiry_date"`
	FraudResponse      string              `gorm:"column:fraud_response;type:varchar(10)" json:"fraud_response"`
	BankAuthCode       string              `gorm:"column:bank_auth_code;type:varchar(6)" json:"bank_auth_code"`
	Token              string              `gorm:"column:token;type:varchar(38)" json:"token"`
	VPSSignature       string              `gorm:"column:vps_signature;type:varchar(100)" json:"vps_signature"`

	// HashMatch 签名校验是否通过
	HashMatch bool `gorm:"column:hash_match;not null;default:false" json:"hash_match"`
	// Replied 是否给 SagePay 返回了非空应答
	Replied   bool   `gorm:"column:replied;not null;default:false" json:"replied"`
	ReplyText string `gorm:"column:reply_text;type:text" json:"reply_text"`

	Raw datatypes.JSON `gorm:"column:raw;type:jsonb" json:"raw"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (NotificationResult) TableName() string {
	return "sagepay_notification_result"
}

// CanReplace reports whether n may be stored in place of stored.
// An authentic settled outcome is only ever overwritten by an authentic
// re-delivery of the same status.
func (n *NotificationResult) CanReplace(stored *NotificationResult) bool {
	if stored == nil || !stored.HashMatch {
		return true
	}
	if n == nil || !n.HashMatch {
		return false
	}
	if stored.Status.IsTerminal() {
		return n.Status == stored.Status
	}
	return true
}
