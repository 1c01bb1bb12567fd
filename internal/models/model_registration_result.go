package models

import (
	"time"

	"github.com/fatflowers/sagepay/pkg/types"
)

// RegistrationResult SagePay 对注册请求的应答
type RegistrationResult struct {
	ID            string `gorm:"column:id;primary_key;type:uuid" json:"id"`
	TransactionID string `gorm:"column:transaction_id;type:uuid;not null;uniqueIndex" json:"transaction_id"`

	VPSProtocol string `gorm:"column:vps_protocol;type:varchar(8)" json:"vps_protocol"`
	VPSTxID     string `gorm:"column:vps_tx_id;type:varchar(64);not null;uniqueIndex" json:"vps_tx_id"`
	// SecurityKey 校验通知签名用, 不能对外暴露
	SecurityKey  string              `gorm:"column:security_key;type:varchar(16);not null" json:"-"`
	Status       types.PaymentStatus `gorm:"column:status;type:varchar(16);not null" json:"status"`
	StatusDetail string              `gorm:"column:status_detail;type:varchar(255)" json:"status_detail"`
	NextURL      string              `gorm:"column:next_url;type:varchar(255)" json:"next_url"`

	CreatedAt time.Time `json:"created_at"`
}

func (RegistrationResult) TableName() string {
	return "sagepay_registration_result"
}
