package sagepay

import "errors"

var (
	// ErrMalformedResponse is returned when a SagePay reply is not a
	// Key=Value document or lacks a Status.
	ErrMalformedResponse = errors.New("sagepay: malformed response")
	// ErrGatewayUnreachable covers transport failures, timeouts and non-2xx
	// replies. The request may or may not have reached SagePay.
	ErrGatewayUnreachable = errors.New("sagepay: gateway unreachable")
	// ErrGatewayRejected means SagePay answered with a Status other than OK.
	ErrGatewayRejected = errors.New("sagepay: gateway rejected request")
)
