package models

import (
	"fmt"
	"time"
)

// CardToken SagePay 保存的卡 token
type CardToken struct {
	ID     string `gorm:"column:id;primary_key;type:uuid" json:"id"`
	Token  string `gorm:"column:token;type:varchar(38);not null;uniqueIndex" json:"token"`
	UserID string `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	// TransactionID 创建该 token 的支付
	TransactionID string `gorm:"column:transaction_id;type:uuid;not null" json:"transaction_id"`

	CardType    string `gorm:"column:card_type;type:varchar(15)" json:"card_type"`
	Last4Digits string `gorm:"column:last4_digits;type:varchar(4)" json:"last4_digits"`
	// ExpiryDate MMYY
	ExpiryDate string `gorm:"column:expiry_date;type:varchar(4)" json:"expiry_date"`

	RemovedAt *time.Time `gorm:"column:removed_at;default:null" json:"removed_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (CardToken) TableName() string {
	return "sagepay_card_token"
}

func (c *CardToken) ObfuscatedCard() string {
	return "xxxx-xxxx-xxxx-" + c.Last4Digits
}

// ExpiryDateFormatted renders MMYY as MM/20YY.
func (c *CardToken) ExpiryDateFormatted() string {
	if len(c.ExpiryDate) != 4 {
		return c.ExpiryDate
	}
	return c.ExpiryDate[:2] + "/20" + c.ExpiryDate[2:]
}

func (c *CardToken) Summary() string {
	return fmt.Sprintf("%s %s (%s)", c.CardType, c.ObfuscatedCard(), c.ExpiryDateFormatted())
}

func (c *CardToken) IsRemoved() bool {
	return c.RemovedAt != nil
}
