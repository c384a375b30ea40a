package utils

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// UnknownClient identifies requests without a forwarded-for header.
const UnknownClient = "unknown"

// ClientIdentifier returns the first X-Forwarded-For entry. The site runs
// behind a proxy, so the socket address is never used.
func ClientIdentifier(c *gin.Context) string {
	return ClientIdentifierFromHeader(c.GetHeader("X-Forwarded-For"))
}

// ClientIdentifierFromHeader extracts the leftmost address of a
// comma-separated X-Forwarded-For value.
func ClientIdentifierFromHeader(forwardedFor string) string {
	if forwardedFor == "" {
		return UnknownClient
	}
	first, _, _ := strings.Cut(forwardedFor, ",")
	first = strings.TrimSpace(first)
	if first == "" {
		return UnknownClient
	}
	return first
}
