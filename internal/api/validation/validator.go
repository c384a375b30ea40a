package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// TagContactEmail is the validator tag for the contact form's loose email shape.
const TagContactEmail = "contactemail"

// emailRegex accepts local@domain.tld with no whitespace and a single @ per part.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validate = New()

// New returns a validator with the contact rules registered.
func New() *validator.Validate {
	v := validator.New()
	RegisterValidators(v)
	return v
}

// RegisterValidators registers custom validators
func RegisterValidators(v *validator.Validate) {
	v.RegisterValidation(TagContactEmail, validateEmail)
}

// validateEmail checks if the email is valid
func validateEmail(fl validator.FieldLevel) bool {
	return emailRegex.MatchString(fl.Field().String())
}

// IsValidEmail reports whether email has the local@domain.tld shape.
func IsValidEmail(email string) bool {
	return validate.Var(email, TagContactEmail) == nil
}

// FilterEmails keeps only the addresses that pass IsValidEmail, preserving order.
func FilterEmails(candidates []string) []string {
	var valid []string
	for _, c := range candidates {
		if IsValidEmail(c) {
			valid = append(valid, c)
		}
	}
	return valid
}
