package notification_handler

import (
	"github.com/fatflowers/sagepay/internal/platform/sagepay"
	"github.com/fatflowers/sagepay/pkg/config"
	"github.com/fatflowers/sagepay/pkg/types"
)

const statusDetailNotFound = "Transaction doesn't exist"

// Error page variants appended to RedirectConfig.ErrorURL.
const (
	ErrorCodeNotAuthed = "1"
	ErrorCodeAbort     = "2"
	ErrorCodeRejected  = "3"
)

type RedirectConfig struct {
	// ThankYouURL is suffixed with the VPSTxId.
	ThankYouURL string
	// ErrorURL is suffixed with one of the ErrorCode values.
	ErrorURL string
	// FailureURL is sent when the notification itself is unusable.
	FailureURL string
}

func RedirectConfigFrom(cfg *config.Config) RedirectConfig {
	return RedirectConfig{
		ThankYouURL: cfg.SagePay.ThankYouURL,
		ErrorURL:    cfg.SagePay.ErrorURL,
		FailureURL:  cfg.SagePay.FailureURL,
	}
}

// Decision is what to answer SagePay and what to record.
type Decision struct {
	Reply string `json:"reply"`
	// Persist is false only when there is no transaction to attach to.
	Persist   bool `json:"persist"`
	HashMatch bool `json:"hash_match"`
	// Replied is false when SagePay gets an empty body.
	Replied  bool `json:"replied"`
	Finalize bool `json:"finalize"`
}

// Route maps a verified notification onto the reply. It is a pure function:
// the same inputs always give a byte-identical reply.
func Route(v *Verification, n *sagepay.Notification, redirects RedirectConfig) Decision {
	switch v.Outcome {
	case OutcomeNotFound:
		return replied(sagepay.Reply{
			Status:       types.PaymentStatusError,
			RedirectURL:  redirects.FailureURL,
			StatusDetail: statusDetailNotFound,
		}, false, false)
	case OutcomeSignatureMismatch:
		return replied(sagepay.Reply{
			Status:      types.PaymentStatusInvalid,
			RedirectURL: redirects.FailureURL,
		}, true, false)
	}

	switch n.Status() {
	case types.PaymentStatusOK:
		d := replied(sagepay.Reply{
			Status:      types.PaymentStatusOK,
			RedirectURL: redirects.ThankYouURL + n.VPSTxID(),
		}, true, true)
		d.Finalize = true
		return d
	case types.PaymentStatusNotAuthed:
		return replied(errorPage(redirects, ErrorCodeNotAuthed), true, true)
	case types.PaymentStatusAbort:
		return replied(errorPage(redirects, ErrorCodeAbort), true, true)
	case types.PaymentStatusRejected:
		return replied(errorPage(redirects, ErrorCodeRejected), true, true)
	case types.PaymentStatusAuthenticated, types.PaymentStatusRegistered,
		types.PaymentStatusPending, types.PaymentStatusError:
		return Decision{Persist: true, HashMatch: true}
	default:
		return replied(sagepay.Reply{
			Status:      types.PaymentStatusError,
			RedirectURL: redirects.FailureURL,
		}, true, true)
	}
}

func errorPage(redirects RedirectConfig, code string) sagepay.Reply {
	return sagepay.Reply{Status: types.PaymentStatusOK, RedirectURL: redirects.ErrorURL + code}
}

func replied(r sagepay.Reply, persist, hashMatch bool) Decision {
	return Decision{Reply: r.String(), Persist: persist, HashMatch: hashMatch, Replied: true}
}
