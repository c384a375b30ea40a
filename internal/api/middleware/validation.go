package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/miravision/website/internal/api/constants"
	"github.com/miravision/website/internal/api/dto/v1/contact"
	"github.com/miravision/website/internal/api/validation"
	"github.com/miravision/website/internal/metrics"
	"github.com/miravision/website/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ValidationMiddleware handles request validation
type ValidationMiddleware struct {
	validate *validator.Validate
	metrics  *metrics.Metrics
}

// NewValidationMiddleware creates a new validation middleware
func NewValidationMiddleware(m *metrics.Metrics) *ValidationMiddleware {
	return &ValidationMiddleware{
		validate: validation.New(),
		metrics:  m,
	}
}

// ValidateContactRequest checks the content type, decodes the body and
// verifies the required fields and email format. The decoded request is
// stored under constants.ContextKeyContact.
func (m *ValidationMiddleware) ValidateContactRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.Contains(c.GetHeader("Content-Type"), "application/json") {
			m.reject(c, contact.MsgInvalidContentType)
			return
		}

		raw, err := c.GetRawData()
		if err != nil {
			m.reject(c, contact.MsgInvalidJSONPrefix+err.Error())
			return
		}

		var doc interface{}
		if err := json.Unmarshal(raw, &doc); err != nil {
			m.reject(c, contact.MsgInvalidJSONPrefix+err.Error())
			return
		}

		req := contact.FromJSON(doc)
		if !req.HasRequired() {
			m.reject(c, contact.MsgRequiredFields)
			return
		}

		email, ok := req.Email.(string)
		if !ok || m.validate.Var(email, validation.TagContactEmail) != nil {
			m.reject(c, contact.MsgInvalidEmail)
			return
		}

		c.Set(constants.ContextKeyContact, &req)
		c.Next()
	}
}

func (m *ValidationMiddleware) reject(c *gin.Context, message string) {
	m.metrics.IncSubmission(metrics.OutcomeInvalid)
	utils.HandleError(c, http.StatusBadRequest, message)
}
