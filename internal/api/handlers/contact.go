package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/miravision/website/internal/api/constants"
	"github.com/miravision/website/internal/api/dto/v1/contact"
	"github.com/miravision/website/internal/api/sanitization"
	"github.com/miravision/website/internal/api/validation"
	"github.com/miravision/website/internal/config"
	"github.com/miravision/website/internal/logging"
	"github.com/miravision/website/internal/mailer"
	"github.com/miravision/website/internal/metrics"
	"github.com/miravision/website/internal/telemetry"
	"github.com/miravision/website/internal/utils"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var errNoRecipients = errors.New("no valid recipients configured")

type ContactHandler struct {
	mail      config.MailConfig
	transport mailer.TransportFactory
	retry     mailer.RetryPolicy
	logger    *logging.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// ContactOption customizes a ContactHandler.
type ContactOption func(*ContactHandler)

// WithTransportFactory replaces the SMTP transport constructor.
func WithTransportFactory(f mailer.TransportFactory) ContactOption {
	return func(h *ContactHandler) { h.transport = f }
}

// WithRetryPolicy replaces the notification retry policy.
func WithRetryPolicy(p mailer.RetryPolicy) ContactOption {
	return func(h *ContactHandler) { h.retry = p }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ContactOption {
	return func(h *ContactHandler) { h.now = now }
}

func NewContactHandler(mail config.MailConfig, logger *logging.Logger, m *metrics.Metrics, opts ...ContactOption) *ContactHandler {
	h := &ContactHandler{
		mail:      mail,
		transport: mailer.NewTransport,
		retry:     mailer.DefaultRetryPolicy(),
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Submit handles a validated contact submission: sanitize, length checks,
// spam filter, then deliver the notification and optional auto-reply.
func (h *ContactHandler) Submit(c *gin.Context) {
	contactData, exists := c.Get(constants.ContextKeyContact)
	if !exists {
		utils.HandleAPIError(c, h.logger, errors.New("contact data not found in context"), http.StatusInternalServerError, contact.MsgUnexpected)
		return
	}
	req, ok := contactData.(*contact.ContactRequest)
	if !ok {
		utils.HandleAPIError(c, h.logger, errors.New("invalid contact data format"), http.StatusInternalServerError, contact.MsgUnexpected)
		return
	}

	clientID := c.GetString(constants.ContextKeyClientID)
	if clientID == "" {
		clientID = utils.ClientIdentifier(c)
	}

	ctx, span := telemetry.StartSpan(c.Request.Context(), "contact.submit")
	defer span.End()

	sub := mailer.Submission{
		Name:    sanitization.SanitizeValue(req.Name),
		Email:   sanitization.SanitizeValue(req.Email),
		Company: sanitization.SanitizeValue(req.Company),
		Service: sanitization.SanitizeValue(req.Service),
		Message: sanitization.SanitizeValue(req.Message),
	}

	if status, msg, ok := checkLengths(sub); !ok {
		h.metrics.IncSubmission(metrics.OutcomeInvalid)
		utils.HandleError(c, status, msg)
		return
	}

	if validation.IsSpam(sub.Message) {
		h.logger.Warn("Potential spam detected: email=%s ip=%s", sub.Email, clientID)
		span.SetAttributes(attribute.Bool("contact.spam", true))
		h.metrics.IncSubmission(metrics.OutcomeSpam)
		utils.HandleMessage(c, contact.MsgReceived)
		return
	}

	transport, err := h.newTransport()
	if err != nil {
		h.metrics.IncSubmission(metrics.OutcomeConfig)
		utils.HandleAPIError(c, h.logger, err, http.StatusInternalServerError, contact.MsgConfigError)
		return
	}

	if err := h.verify(ctx, transport); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "verify failed")
		h.metrics.IncSubmission(metrics.OutcomeUnavailable)
		if mailer.Classify(err) == mailer.KindAuth {
			h.logger.Error("SMTP authentication failed. Check SMTP_EMAIL and SMTP_PASSWORD: %v", err)
			utils.HandleError(c, http.StatusServiceUnavailable, contact.MsgAuthFailed)
			return
		}
		h.logger.Error("SMTP verification error (%s): %v", mailer.Classify(err), err)
		utils.HandleError(c, http.StatusServiceUnavailable, contact.MsgUnavailable)
		return
	}

	recipients := validation.FilterEmails(h.mail.RecipientCandidates())
	if len(recipients) == 0 {
		h.metrics.IncSubmission(metrics.OutcomeConfig)
		utils.HandleAPIError(c, h.logger, errNoRecipients, http.StatusInternalServerError, contact.MsgRecipientsError)
		return
	}

	env := mailer.Envelope{
		FromName:    h.mail.SenderName(),
		FromAddress: h.mail.SMTPEmail,
		Recipients:  recipients,
	}

	msg, err := mailer.NewNotification(sub, env, clientID, h.now())
	if err != nil {
		h.metrics.IncSubmission(metrics.OutcomeFailed)
		utils.HandleAPIError(c, h.logger, err, http.StatusInternalServerError, contact.MsgUnexpected)
		return
	}

	attempts, err := h.retry.Do(ctx, func(ctx context.Context, attempt int) error {
		sendErr := h.send(ctx, transport, msg)
		h.metrics.IncSendAttempt(sendErr == nil)
		if sendErr != nil {
			h.logger.Error("Email sending failed (attempt %d/%d): %v", attempt, h.retry.MaxAttempts, sendErr)
		}
		return sendErr
	})
	span.SetAttributes(attribute.Int("contact.send_attempts", attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send failed")
		h.logger.Error("All email attempts failed for %s: %v", sub.Email, err)
		h.metrics.IncSubmission(metrics.OutcomeFailed)
		utils.HandleError(c, http.StatusServiceUnavailable, contact.MsgSendFailed)
		return
	}

	h.logger.Info("Contact notification sent to %d recipient(s) after %d attempt(s)", len(recipients), attempts)

	h.sendAutoReply(ctx, transport, sub, env)

	h.metrics.IncSubmission(metrics.OutcomeSent)
	utils.HandleTimestamped(c, contact.MsgSuccess, h.now())
}

// checkLengths applies the post-sanitization limits. An over-long message is
// answered with 500, which existing clients rely on.
func checkLengths(sub mailer.Submission) (int, string, bool) {
	nameLen := utf8.RuneCountInString(sub.Name)
	if nameLen < contact.NameMinLength {
		return http.StatusBadRequest, contact.MsgNameTooShort, false
	}
	if nameLen > contact.NameMaxLength {
		return http.StatusBadRequest, contact.MsgNameTooLong, false
	}

	msgLen := utf8.RuneCountInString(sub.Message)
	if msgLen < contact.MessageMinLength {
		return http.StatusBadRequest, contact.MsgMessageTooShort(msgLen), false
	}
	if msgLen > contact.MessageMaxLength {
		return http.StatusInternalServerError, contact.MsgMessageTooLong, false
	}
	return 0, "", true
}

func (h *ContactHandler) newTransport() (mailer.Transport, error) {
	if !h.mail.HasCredentials() {
		return nil, mailer.ErrMissingCredentials
	}
	return h.transport(mailer.SMTPConfig{
		Host:               h.mail.SMTPHost,
		Port:               h.mail.SMTPPort,
		Username:           h.mail.SMTPEmail,
		Password:           h.mail.SMTPPassword,
		Timeout:            h.mail.SMTPTimeout,
		InsecureSkipVerify: true,
	})
}

func (h *ContactHandler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.mail.SMTPTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.mail.SMTPTimeout)
}

func (h *ContactHandler) verify(ctx context.Context, transport mailer.Transport) error {
	ctx, cancel := h.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	err := transport.Verify(ctx)
	h.metrics.ObserveSMTP("verify", err == nil, time.Since(start))
	return err
}

func (h *ContactHandler) send(ctx context.Context, transport mailer.Transport, msg *mailer.Message) error {
	ctx, cancel := h.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	err := transport.Send(ctx, msg)
	h.metrics.ObserveSMTP("send", err == nil, time.Since(start))
	return err
}

// sendAutoReply makes a single attempt. Failures are logged only.
func (h *ContactHandler) sendAutoReply(ctx context.Context, transport mailer.Transport, sub mailer.Submission, env mailer.Envelope) {
	if !h.mail.AutoReplyEnabled() {
		h.logger.Debug("Auto-reply is disabled")
		return
	}

	reply, err := mailer.NewAutoReply(sub, env)
	if err == nil {
		err = h.send(ctx, transport, reply)
	}
	h.metrics.IncAutoReply(err == nil)
	if err != nil {
		h.logger.Warn("Auto-reply failed, but main email was sent: %v", err)
	}
}

// MethodNotAllowed answers non-POST requests to the contact endpoint.
func (h *ContactHandler) MethodNotAllowed(c *gin.Context) {
	utils.HandleError(c, http.StatusMethodNotAllowed, contact.MsgMethodNotAllowed)
}
