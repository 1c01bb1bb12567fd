package tool

import (
	"strings"

	"github.com/google/uuid"
)

func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// GenerateVendorTxCode returns a 32 char hex code, unique per payment attempt.
// SagePay accepts at most 40 characters.
func GenerateVendorTxCode() string {
	return strings.ReplaceAll(GenerateUUIDV7(), "-", "")
}
