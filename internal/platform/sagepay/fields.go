package sagepay

// Protocol field names shared by requests, replies and notifications.
const (
	FieldVPSProtocol     = "VPSProtocol"
	FieldTxType          = "TxType"
	FieldVendor          = "Vendor"
	FieldVendorTxCode    = "VendorTxCode"
	FieldVPSTxID         = "VPSTxId"
	FieldStatus          = "Status"
	FieldStatusDetail    = "StatusDetail"
	FieldSecurityKey     = "SecurityKey"
	FieldNextURL         = "NextURL"
	FieldRedirectURL     = "RedirectURL"
	FieldTxAuthNo        = "TxAuthNo"
	FieldAVSCV2          = "AVSCV2"
	FieldAddressResult   = "AddressResult"
	FieldPostCodeResult  = "PostCodeResult"
	FieldCV2Result       = "CV2Result"
	FieldGiftAid         = "GiftAid"
	Field3DSecureStatus  = "3DSecureStatus"
	FieldCAVV            = "CAVV"
	FieldAddressStatus   = "AddressStatus"
	FieldPayerStatus     = "PayerStatus"
	FieldCardType        = "CardType"
	FieldLast4Digits     = "Last4Digits"
	FieldDeclineCode     = "DeclineCode"
	FieldExpiryDate      = "ExpiryDate"
	FieldFraudResponse   = "FraudResponse"
	FieldBankAuthCode    = "BankAuthCode"
	FieldToken           = "Token"
	FieldVPSSignature    = "VPSSignature"
	FieldProfile         = "Profile"
	FieldAmount          = "Amount"
	FieldCurrency        = "Currency"
	FieldDescription     = "Description"
	FieldNotificationURL = "NotificationURL"
	FieldCustomerEmail   = "CustomerEmail"
	FieldBasket          = "Basket"
	FieldAllowGiftAid    = "AllowGiftAid"
	FieldStoreToken      = "StoreToken"
	FieldCreateToken     = "CreateToken"
)
