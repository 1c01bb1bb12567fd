package sagepay

import (
	"strings"

	"github.com/fatflowers/sagepay/pkg/types"
)

// Reply is the text/plain body returned to a notification.
type Reply struct {
	Status       types.PaymentStatus
	RedirectURL  string
	StatusDetail string
}

// String renders the reply. StatusDetail is written with a leading '&',
// the form SagePay has always been sent by this integration.
func (r Reply) String() string {
	var b strings.Builder
	b.WriteString(Encode(Fields{
		FieldStatus:      string(r.Status),
		FieldRedirectURL: r.RedirectURL,
	}, []string{FieldStatus, FieldRedirectURL}))
	if r.StatusDetail != "" {
		b.WriteString("&" + FieldStatusDetail + "=" + r.StatusDetail + "\r\n")
	}
	return b.String()
}
