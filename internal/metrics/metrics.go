// Package metrics exposes Prometheus collectors for the contact pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submission outcomes recorded by the contact handler.
const (
	OutcomeSent        = "sent"
	OutcomeSpam        = "spam"
	OutcomeInvalid     = "invalid"
	OutcomeRateLimited = "rate_limited"
	OutcomeConfig      = "config_error"
	OutcomeUnavailable = "unavailable"
	OutcomeFailed      = "failed"
)

// Metrics holds the collectors registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestDuration *prometheus.HistogramVec
	Submissions         *prometheus.CounterVec
	SendAttempts        *prometheus.CounterVec
	AutoReplies         *prometheus.CounterVec
	RateLimited         prometheus.Counter
	SMTPDuration        *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~16s
			},
			[]string{"method", "path", "status"},
		),
		Submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contact_submissions_total",
				Help: "Contact form submissions by outcome",
			},
			[]string{"outcome"},
		),
		SendAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contact_send_attempts_total",
				Help: "SMTP send attempts for notifications",
			},
			[]string{"status"},
		),
		AutoReplies: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contact_auto_replies_total",
				Help: "Auto-reply deliveries",
			},
			[]string{"status"},
		),
		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: "contact_rate_limited_total",
			Help: "Requests rejected by the per-client limiter",
		}),
		SMTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "smtp_operation_duration_seconds",
				Help:    "Duration of SMTP verify and send operations",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
			},
			[]string{"operation", "status"},
		),
	}
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the exposition format for m's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest observes one served request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
}

// IncSubmission counts a submission outcome.
func (m *Metrics) IncSubmission(outcome string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(outcome).Inc()
}

// IncSendAttempt counts one notification send attempt.
func (m *Metrics) IncSendAttempt(ok bool) {
	if m == nil {
		return
	}
	m.SendAttempts.WithLabelValues(status(ok)).Inc()
}

// IncAutoReply counts one auto-reply delivery.
func (m *Metrics) IncAutoReply(ok bool) {
	if m == nil {
		return
	}
	m.AutoReplies.WithLabelValues(status(ok)).Inc()
}

// IncRateLimited counts a 429 from the per-client limiter.
func (m *Metrics) IncRateLimited() {
	if m == nil {
		return
	}
	m.RateLimited.Inc()
}

// ObserveSMTP records how long an SMTP operation took.
func (m *Metrics) ObserveSMTP(operation string, ok bool, d time.Duration) {
	if m == nil {
		return
	}
	m.SMTPDuration.WithLabelValues(operation, status(ok)).Observe(d.Seconds())
}

func status(ok bool) string {
	if ok {
		return "success"
	}
	return "failed"
}
