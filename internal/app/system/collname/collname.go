// Package collname derives the per-tenant collection name from an
// organization name.
//
// Derivation rules:
//   - every character outside [A-Za-z0-9] and whitespace is removed
//   - the remainder is split on whitespace into words
//   - the first word is lowercased; each later word gets an upper-case first
//     letter and keeps the rest of its letters as typed
//   - the joined token gets an upper-case first letter and the "org" prefix
//
// So "Acme Corp" becomes "orgAcmeCorp" and "hello world" becomes
// "orgHelloWorld".
//
// Derive is not collision-free: "Acme Corp" and "acme corp!" both map to
// "orgAcmeCorp". Callers must rely on the registry's unique index on the
// stored collection name to detect that.
package collname

import (
	"errors"
	"strings"
	"unicode"
)

// Prefix is prepended to every derived collection name.
const Prefix = "org"

// ErrInvalidName is returned when nothing usable remains after cleaning.
var ErrInvalidName = errors.New("invalid organization name")

// Derive maps an organization name to its collection name.
func Derive(organizationName string) (string, error) {
	words := strings.Fields(clean(organizationName))
	if len(words) == 0 {
		return "", ErrInvalidName
	}

	var b strings.Builder
	b.WriteString(strings.ToLower(words[0]))
	for _, w := range words[1:] {
		b.WriteString(upperFirst(w))
	}
	return Prefix + upperFirst(b.String()), nil
}

// IsDerived reports whether name has the shape Derive produces. It is used to
// spot tenant collections when listing the database.
func IsDerived(name string) bool {
	rest, ok := strings.CutPrefix(name, Prefix)
	if !ok || rest == "" {
		return false
	}
	if rest[0] < 'A' || rest[0] > 'Z' {
		if rest[0] < '0' || rest[0] > '9' {
			return false
		}
	}
	for i := 0; i < len(rest); i++ {
		if !isASCIIAlnum(rest[i]) {
			return false
		}
	}
	return true
}

// clean keeps ASCII letters, digits and whitespace.
func clean(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x80 && isASCIIAlnum(byte(r)) {
			return r
		}
		if unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)
}

// upperFirst upper-cases the first byte; input is already ASCII-only.
func upperFirst(s string) string {
	if s == "" {
		return s
	}
	c := s[0]
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	return string(c) + s[1:]
}

func isASCIIAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
