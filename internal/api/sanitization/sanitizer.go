package sanitization

import (
	"strings"
	"unicode"
)

// MaxFieldLength is the rune cap applied to every contact field.
const MaxFieldLength = 5000

var angleBrackets = strings.NewReplacer("<", "", ">", "")

// SanitizeString strips angle brackets, trims whitespace and caps the length.
// Brackets are stripped before trimming and whitespace exposed by truncation is
// trimmed again, so the result is a fixed point: SanitizeString(SanitizeString(s))
// equals SanitizeString(s).
func SanitizeString(input string) string {
	safe := angleBrackets.Replace(input)
	safe = strings.TrimSpace(safe)

	runes := []rune(safe)
	if len(runes) > MaxFieldLength {
		safe = strings.TrimRightFunc(string(runes[:MaxFieldLength]), unicode.IsSpace)
	}

	return safe
}

// SanitizeValue sanitizes a decoded JSON value. Anything that is not a string
// becomes the empty string.
func SanitizeValue(v interface{}) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return SanitizeString(s)
}
