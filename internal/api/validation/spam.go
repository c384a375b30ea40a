package validation

import "strings"

// SpamKeywords flag a message for silent discard.
var SpamKeywords = []string{"bitcoin", "crypto", "investment", "loan", "casino"}

// IsSpam reports whether message contains any spam keyword, ignoring case.
func IsSpam(message string) bool {
	lower := strings.ToLower(message)
	for _, keyword := range SpamKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
