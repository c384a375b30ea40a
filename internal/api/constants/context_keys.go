package constants

// Context keys set by middleware
const (
	ContextKeyRequestID = "requestID"
	ContextKeyClientID  = "clientID"
	ContextKeyContact   = "contact"
)

// HeaderRequestID carries the request correlation ID.
const HeaderRequestID = "X-Request-ID"
