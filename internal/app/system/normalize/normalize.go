// Package normalize cleans user-supplied identifiers and labels before they
// are stored or compared.
package normalize

import (
	"strings"
)

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and collapses inner runs of spaces.
// Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Role trims and lowercases a role name.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Code trims and uppercases a promotional code.
func Code(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Subject returns the trimmed subject tag, or "Genel" when it is empty.
func Subject(s string) string {
	s = Name(s)
	if s == "" {
		return "Genel"
	}
	return s
}

// QueryParam trims a query-string or form value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
