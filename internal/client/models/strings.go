package models

import "strings"

func normalizeToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, "_", "")
}

// NormalizeEmail trims surrounding whitespace from an email address.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
