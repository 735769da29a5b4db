package domain

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeEmail returns the registry key for an email address.
//
// Surrounding whitespace is trimmed and the result is NFC normalized so that
// visually identical addresses typed on different keyboards map to one key.
// Case is preserved; the stored key is exactly what the user typed otherwise.
func NormalizeEmail(email string) string {
	return norm.NFC.String(strings.TrimSpace(email))
}

// LocalPart returns the portion of email before '@', or email itself.
func LocalPart(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}
