// Package htmlsanitize detects and strips markup in user-supplied text such
// as organization names.
package htmlsanitize

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// StripTags removes every element and returns the remaining text unescaped.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	return html.UnescapeString(strict.Sanitize(s))
}

// IsPlainText reports whether s survives StripTags unchanged, that is,
// whether it contains no tags. A lone "<" or ">" is plain text.
func IsPlainText(s string) bool {
	return StripTags(s) == s
}
