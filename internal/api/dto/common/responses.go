package common

import "time"

// TimestampLayout is ISO 8601 with millisecond precision in UTC.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ErrorResponse is the body of every failure status
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the body of a successful submission
type MessageResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp,omitempty"`
}

// StatusResponse is the body of the health endpoint
type StatusResponse struct {
	Status string `json:"status"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Error: message}
}

// NewMessageResponse creates a response with a message and no timestamp
func NewMessageResponse(message string) MessageResponse {
	return MessageResponse{Message: message}
}

// NewTimestampedResponse creates a response stamped with t in UTC
func NewTimestampedResponse(message string, t time.Time) MessageResponse {
	return MessageResponse{
		Message:   message,
		Timestamp: FormatTimestamp(t),
	}
}

// FormatTimestamp renders t with TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
