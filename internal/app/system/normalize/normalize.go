// Package normalize canonicalizes user-supplied identity fields before they
// are stored or compared.
package normalize

import "strings"

// Email trims and lowercases an address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name and preserves its case.
func Name(s string) string {
	return strings.TrimSpace(s)
}
