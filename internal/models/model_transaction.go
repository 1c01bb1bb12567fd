package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fatflowers/sagepay/pkg/types"
)

// Address 账单/收货地址, 字段与 SagePay Billing*/Delivery* 一一对应
type Address struct {
	Surname    string `gorm:"column:surname;type:varchar(20)" json:"surname"`
	Firstnames string `gorm:"column:firstnames;type:varchar(20)" json:"firstnames"`
	Address1   string `gorm:"column:address1;type:varchar(100)" json:"address1"`
	Address2   string `gorm:"column:address2;type:varchar(100)" json:"address2"`
	City       string `gorm:"column:city;type:varchar(40)" json:"city"`
	PostCode   string `gorm:"column:post_code;type:varchar(10)" json:"post_code"`
	// Country ISO 3166-1 alpha-2
	Country string `gorm:"column:country;type:varchar(2)" json:"country"`
	// State 仅美国地址需要
	State string `gorm:"column:state;type:varchar(2)" json:"state"`
	Phone string `gorm:"column:phone;type:varchar(20)" json:"phone"`
}

func (a Address) IsZero() bool {
	return a == Address{}
}

// Transaction 一次 SagePay 支付尝试
type Transaction struct {
	ID string `gorm:"column:id;primary_key;type:uuid" json:"id"`
	// VendorTxCode 创建时生成, 之后不再改变, 重试也复用
	VendorTxCode string `gorm:"column:vendor_tx_code;type:varchar(40);not null;uniqueIndex" json:"vendor_tx_code"`
	// VPSTxID 注册成功后回填, 用于按通知查找
	VPSTxID *string `gorm:"column:vps_tx_id;type:varchar(64);uniqueIndex" json:"vps_tx_id"`

	UserID      string `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	OrderNumber string `gorm:"column:order_number;type:varchar(128);not null;index" json:"order_number"`
	BasketID    string `gorm:"column:basket_id;type:varchar(64)" json:"basket_id"`

	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(10,2);not null" json:"amount"`
	Currency    string          `gorm:"column:currency;type:varchar(3);not null" json:"currency"`
	Description string          `gorm:"column:description;type:varchar(100);not null" json:"description"`
	Basket      string          `gorm:"column:basket;type:varchar(7500)" json:"basket"`

	Billing  Address `gorm:"embedded;embeddedPrefix:billing_" json:"billing"`
	Delivery Address `gorm:"embedded;embeddedPrefix:delivery_" json:"delivery"`

	CustomerEmail string `gorm:"column:customer_email;type:varchar(255)" json:"customer_email"`
	AllowGiftAid  bool   `gorm:"column:allow_gift_aid;not null;default:false" json:"allow_gift_aid"`

	Protocol string       `gorm:"column:protocol;type:varchar(8);not null" json:"protocol"`
	TxType   types.TxType `gorm:"column:tx_type;type:varchar(16);not null" json:"tx_type"`
	Vendor   string       `gorm:"column:vendor;type:varchar(15);not null" json:"vendor"`
	Profile  string       `gorm:"column:profile;type:varchar(10);not null" json:"profile"`

	// Token 使用已保存的卡支付时引用的卡 token
	Token *string `gorm:"column:token;type:varchar(38)" json:"token"`
	// SaveCard 用户要求本次支付后保存卡
	SaveCard bool `gorm:"column:save_card;not null;default:false" json:"save_card"`

	// FinalizedAt 订单完成回调已触发的时间, 最多设置一次
	FinalizedAt *time.Time `gorm:"column:finalized_at;default:null" json:"finalized_at"`

	Registration *RegistrationResult `gorm:"foreignKey:TransactionID" json:"registration,omitempty"`
	Notification *NotificationResult `gorm:"foreignKey:TransactionID" json:"notification,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Transaction) TableName() string {
	return "sagepay_transaction"
}

// SecurityKey returns the key SagePay issued at registration, or "".
func (t *Transaction) SecurityKey() string {
	if t == nil || t.Registration == nil {
		return ""
	}
	return t.Registration.SecurityKey
}

func (t *Transaction) IsFinalized() bool {
	return t != nil && t.FinalizedAt != nil
}
