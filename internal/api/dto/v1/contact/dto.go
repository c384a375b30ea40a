package contact

import "fmt"

// Client-visible messages
const (
	MsgTooManyRequests    = "Too many requests. Please try again later."
	MsgInvalidContentType = "Invalid content type. Expected application/json."
	MsgInvalidJSONPrefix  = "Invalid JSON in request body: "
	MsgRequiredFields     = "Name, email, and message are required fields."
	MsgInvalidEmail       = "Please provide a valid email address."
	MsgNameTooShort       = "Name must be at least 2 characters long."
	MsgNameTooLong        = "Name must be less than 100 characters."
	MsgMessageTooLong     = "Message is too long. Please keep it under 2000 characters."
	MsgReceived           = "Message received successfully."
	MsgConfigError        = "Email configuration error. Please check your Zoho Mail SMTP settings."
	MsgRecipientsError    = "Email configuration error. Please contact support."
	MsgAuthFailed         = "Zoho Mail authentication failed. Please check your email and app password."
	MsgUnavailable        = "Zoho Mail SMTP service temporarily unavailable. Please try again later."
	MsgSendFailed         = "Unable to send message at this time. Please try again later."
	MsgSuccess            = "Thank you for your message! We'll get back to you within 24 hours."
	MsgUnexpected         = "An unexpected error occurred. Please try again later."
	MsgMethodNotAllowed   = "Method not allowed. Use POST to submit contact form."
)

// Field limits, counted in characters after sanitization
const (
	NameMinLength    = 2
	NameMaxLength    = 100
	MessageMinLength = 10
	MessageMaxLength = 2000
)

// MsgMessageTooShort reports the current message length.
func MsgMessageTooShort(length int) string {
	return fmt.Sprintf("Message is too short. Please write at least 10 characters. (Current: %d)", length)
}

// ContactRequest is a decoded submission body. Values keep their JSON types
// until sanitization so that non-string inputs can be told apart.
type ContactRequest struct {
	Name    interface{}
	Email   interface{}
	Company interface{}
	Service interface{}
	Message interface{}
}

// FromJSON maps a decoded JSON document onto a ContactRequest. Anything other
// than an object yields an empty request.
func FromJSON(doc interface{}) ContactRequest {
	obj, ok := doc.(map[string]interface{})
	if !ok {
		return ContactRequest{}
	}
	return ContactRequest{
		Name:    obj["name"],
		Email:   obj["email"],
		Company: obj["company"],
		Service: obj["service"],
		Message: obj["message"],
	}
}

// HasRequired reports whether name, email and message are all truthy.
func (r ContactRequest) HasRequired() bool {
	return Truthy(r.Name) && Truthy(r.Email) && Truthy(r.Message)
}

// Truthy mirrors JavaScript truthiness for decoded JSON values.
func Truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	default:
		return true
	}
}

// SubmitRequest is the body the form client sends.
type SubmitRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Service string `json:"service"`
	Message string `json:"message"`
}
