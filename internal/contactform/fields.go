package contactform

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/miravision/website/internal/api/validation"
)

// Field names a form input.
type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldCompany Field = "company"
	FieldService Field = "service"
	FieldMessage Field = "message"
)

// Services lists the options offered by the service picker.
var Services = []string{"website", "branding", "graphics", "media", "multiple", "consultation"}

// Fields holds the raw form values.
type Fields struct {
	Name    string
	Email   string
	Company string
	Service string
	Message string
}

func (f *Fields) set(field Field, value string) {
	switch field {
	case FieldName:
		f.Name = value
	case FieldEmail:
		f.Email = value
	case FieldCompany:
		f.Company = value
	case FieldService:
		f.Service = value
	case FieldMessage:
		f.Message = value
	}
}

func (f Fields) trimmed() Fields {
	return Fields{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Company: strings.TrimSpace(f.Company),
		Service: strings.TrimSpace(f.Service),
		Message: strings.TrimSpace(f.Message),
	}
}

// ValidateField checks a single value as the user types. It returns the
// message to show, or "" when the value is acceptable. Empty email and
// message values are not flagged until submit.
func ValidateField(field Field, value string) string {
	value = strings.TrimSpace(value)
	n := utf8.RuneCountInString(value)

	switch field {
	case FieldName:
		if n < 2 {
			return "Name must be at least 2 characters"
		}
		if n > 100 {
			return "Name must be less than 100 characters"
		}
	case FieldEmail:
		if value != "" && !validation.IsValidEmail(value) {
			return "Please enter a valid email address"
		}
	case FieldMessage:
		if n > 0 && n < 10 {
			return fmt.Sprintf("Message too short (%d/10 minimum)", n)
		}
		if n > 2000 {
			return fmt.Sprintf("Message too long (%d/2000 maximum)", n)
		}
	}
	return ""
}

// validateForSubmit runs the required-field checks used before sending.
func validateForSubmit(f Fields) map[Field]string {
	f = f.trimmed()
	errs := make(map[Field]string)

	switch {
	case f.Name == "":
		errs[FieldName] = "Name is required"
	case utf8.RuneCountInString(f.Name) < 2:
		errs[FieldName] = "Name must be at least 2 characters"
	}

	switch {
	case f.Email == "":
		errs[FieldEmail] = "Email is required"
	case !validation.IsValidEmail(f.Email):
		errs[FieldEmail] = "Please enter a valid email address"
	}

	switch n := utf8.RuneCountInString(f.Message); {
	case n == 0:
		errs[FieldMessage] = "Message is required"
	case n < 10:
		errs[FieldMessage] = fmt.Sprintf("Message must be at least 10 characters (currently %d)", n)
	}

	return errs
}
