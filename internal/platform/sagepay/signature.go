package sagepay

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// Slots filled from the stored transaction rather than the notification.
const (
	slotVendor      = "<vendor>"
	slotSecurityKey = "<security_key>"
)

const DefaultSignatureProtocol = "3.00"

// signatureLayouts lists, per protocol version, the values concatenated
// before hashing.
var signatureLayouts = map[string][]string{
	"3.00": {
		FieldVPSTxID, FieldVendorTxCode, FieldStatus, FieldTxAuthNo, slotVendor,
		FieldAVSCV2, slotSecurityKey, FieldAddressResult, FieldPostCodeResult,
		FieldCV2Result, FieldGiftAid, Field3DSecureStatus, FieldCAVV,
		FieldCardType, FieldLast4Digits, FieldDeclineCode, FieldExpiryDate,
		FieldBankAuthCode,
	},
	"2.23": {
		FieldVPSTxID, FieldVendorTxCode, FieldStatus, FieldTxAuthNo, slotVendor,
		FieldAVSCV2, slotSecurityKey, FieldAddressResult, FieldPostCodeResult,
		FieldCV2Result, FieldGiftAid, Field3DSecureStatus, FieldCAVV,
		FieldAddressStatus, FieldPayerStatus, FieldCardType, FieldLast4Digits,
	},
}

// SignatureLayout returns the signed field order for protocol. Unknown
// versions use the 3.00 layout.
func SignatureLayout(protocol string) []string {
	if l, ok := signatureLayouts[protocol]; ok {
		return l
	}
	return signatureLayouts[DefaultSignatureProtocol]
}

// SignatureSource is the exact string SagePay hashes. protocol is the
// version the transaction was registered with; an empty protocol falls back
// to the notification's VPSProtocol. The vendor name is lowercased, the
// security key trimmed, missing fields contribute "".
func SignatureSource(n *Notification, protocol, vendor, securityKey string) string {
	if protocol == "" {
		protocol = n.Protocol()
	}
	var b strings.Builder
	for _, key := range SignatureLayout(protocol) {
		switch key {
		case slotVendor:
			b.WriteString(strings.ToLower(vendor))
		case slotSecurityKey:
			b.WriteString(strings.TrimSpace(securityKey))
		default:
			b.WriteString(n.Get(key))
		}
	}
	return b.String()
}

// ComputeSignature returns the uppercase hex MD5 of SignatureSource.
func ComputeSignature(n *Notification, protocol, vendor, securityKey string) string {
	sum := md5.Sum([]byte(SignatureSource(n, protocol, vendor, securityKey)))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// VerifySignature compares the computed signature with VPSSignature in
// constant time.
func VerifySignature(n *Notification, protocol, vendor, securityKey string) bool {
	got := n.Signature()
	if got == "" {
		return false
	}
	want := ComputeSignature(n, protocol, vendor, securityKey)
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}
