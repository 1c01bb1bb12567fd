package tool

import "unicode/utf8"

// TruncateUTF8 cuts s so its UTF-8 encoding is at most maxBytes long.
// A code point that would be split at the boundary is dropped entirely.
func TruncateUTF8(s string, maxBytes int) string {
	if maxBytes <= 0 {
		return ""
	}
	if len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
