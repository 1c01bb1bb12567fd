package types

// PaymentStatus is the Status vocabulary SagePay uses in registration
// replies and transaction notifications.
type PaymentStatus string

const (
	PaymentStatusOK            PaymentStatus = "OK"
	PaymentStatusNotAuthed     PaymentStatus = "NOTAUTHED"
	PaymentStatusAbort         PaymentStatus = "ABORT"
	PaymentStatusRejected      PaymentStatus = "REJECTED"
	PaymentStatusAuthenticated PaymentStatus = "AUTHENTICATED"
	PaymentStatusRegistered    PaymentStatus = "REGISTERED"
	PaymentStatusPending       PaymentStatus = "PENDING"
	PaymentStatusError         PaymentStatus = "ERROR"
	PaymentStatusInvalid       PaymentStatus = "INVALID"
	PaymentStatusMalformed     PaymentStatus = "MALFORMED"
)

// IsTerminal reports whether the status settles the payment attempt.
// A settled outcome may only be re-delivered, never changed.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentStatusOK, PaymentStatusNotAuthed, PaymentStatusAbort, PaymentStatusRejected:
		return true
	}
	return false
}

type TxType string

const (
	TxTypePayment      TxType = "PAYMENT"
	TxTypeDeferred     TxType = "DEFERRED"
	TxTypeAuthenticate TxType = "AUTHENTICATE"
	TxTypeRemoveToken  TxType = "REMOVETOKEN"
)
