package core

import "strings"

// CleanString normalizes user-supplied identifiers and form fields: surrounding
// whitespace is dropped, and passing true additionally lowercases (emails).
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}
