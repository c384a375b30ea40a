// Package contactform drives the contact form: field state, incremental
// validation and submission to the contact endpoint.
package contactform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/miravision/website/internal/api/dto/v1/contact"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Result is the outcome of the last submission.
type Result int

const (
	ResultNone Result = iota
	ResultSuccess
	ResultError
)

func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultError:
		return "error"
	default:
		return "none"
	}
}

// ErrInvalidForm is returned by Submit when required fields fail validation.
var ErrInvalidForm = errors.New("form has validation errors")

// SubmitError reports a rejected or failed submission.
type SubmitError struct {
	Status  int // 0 when the request never got a response
	Message string
	Err     error
}

func (e *SubmitError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("submission failed: %v", e.Err)
	}
	return fmt.Sprintf("submission rejected (%d): %s", e.Status, e.Message)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// State is a snapshot of the controller.
type State struct {
	Fields      Fields
	FieldErrors map[Field]string
	Submitting  bool
	LastResult  Result
	LastMessage string
}

// Controller owns the form state. Methods are safe for concurrent use, but
// Submit does not guard against overlapping submissions.
type Controller struct {
	endpoint string
	client   *http.Client

	mu          sync.Mutex
	fields      Fields
	fieldErrors map[Field]string
	submitting  bool
	lastResult  Result
	lastMessage string
}

// Option configures a Controller.
type Option func(*Controller)

// WithHTTPClient replaces the default traced client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Controller) { c.client = client }
}

// New returns a controller posting to endpoint.
func New(endpoint string, opts ...Option) *Controller {
	c := &Controller{
		endpoint: endpoint,
		client: &http.Client{
			Timeout:   60 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		fieldErrors: make(map[Field]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnFieldChange stores raw and re-validates that field only.
func (c *Controller) OnFieldChange(field Field, raw string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fields.set(field, raw)
	if msg := ValidateField(field, raw); msg != "" {
		c.fieldErrors[field] = msg
	} else {
		delete(c.fieldErrors, field)
	}
}

// Submit validates the whole form and, when valid, posts it. Validation
// failures return ErrInvalidForm without a network call.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	errs := validateForSubmit(c.fields)
	if len(errs) > 0 {
		c.fieldErrors = errs
		c.mu.Unlock()
		return ErrInvalidForm
	}
	c.submitting = true
	c.lastResult = ResultNone
	payload := c.fields.trimmed()
	c.mu.Unlock()

	message, err := c.post(ctx, payload)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false
	c.lastMessage = message
	if err != nil {
		c.lastResult = ResultError
		return err
	}
	c.lastResult = ResultSuccess
	c.fields = Fields{}
	c.fieldErrors = make(map[Field]string)
	return nil
}

type responseBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Controller) post(ctx context.Context, f Fields) (string, error) {
	body, err := json.Marshal(contact.SubmitRequest{
		Name:    f.Name,
		Email:   f.Email,
		Company: f.Company,
		Service: f.Service,
		Message: f.Message,
	})
	if err != nil {
		return "", &SubmitError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &SubmitError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &SubmitError{Err: err}
	}
	defer resp.Body.Close()

	var out responseBody
	decodeErr := json.NewDecoder(resp.Body).Decode(&out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out.Error, &SubmitError{Status: resp.StatusCode, Message: out.Error, Err: decodeErr}
	}
	if decodeErr != nil {
		return "", &SubmitError{Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", decodeErr)}
	}
	return out.Message, nil
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	errs := make(map[Field]string, len(c.fieldErrors))
	for k, v := range c.fieldErrors {
		errs[k] = v
	}
	return State{
		Fields:      c.fields,
		FieldErrors: errs,
		Submitting:  c.submitting,
		LastResult:  c.lastResult,
		LastMessage: c.lastMessage,
	}
}

// LastMessage returns the server's message from the last submission.
func (c *Controller) LastMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastMessage
}

// Reset clears the form back to its initial state.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fields = Fields{}
	c.fieldErrors = make(map[Field]string)
	c.submitting = false
	c.lastResult = ResultNone
	c.lastMessage = ""
}
