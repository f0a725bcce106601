package utils

import "strings"

// NormalizeIdentifier canonicalizes registration numbers, tire serial
// numbers and route numbers so uniqueness checks are case-insensitive.
func NormalizeIdentifier(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
