// Package normalize canonicalizes user input before it is stored or
// compared.
package normalize

import "strings"

// Email trims and lowercases an email address. Registry lookups and the
// unique email index both see the normalized form.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims an organization name. Case is kept.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// QueryParam trims a query string value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
