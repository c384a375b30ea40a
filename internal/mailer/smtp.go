package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

// SMTPConfig describes how to reach and authenticate against the relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// Timeout bounds a whole Verify or Send when the context has no deadline.
	Timeout time.Duration
	// InsecureSkipVerify relaxes certificate validation after STARTTLS.
	InsecureSkipVerify bool
	// LocalName is sent in the EHLO that follows STARTTLS.
	LocalName string
}

func (c SMTPConfig) addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// SMTPTransport talks to a submission relay: plaintext connect, mandatory
// STARTTLS, AUTH PLAIN. Every call opens its own session.
type SMTPTransport struct {
	cfg    SMTPConfig
	dialer *net.Dialer
}

// NewSMTPTransport validates cfg and returns a transport.
func NewSMTPTransport(cfg SMTPConfig) (*SMTPTransport, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return nil, ErrMissingCredentials
	}
	if cfg.LocalName == "" {
		cfg.LocalName = "localhost"
	}
	return &SMTPTransport{cfg: cfg, dialer: &net.Dialer{}}, nil
}

// NewTransport is the production TransportFactory.
func NewTransport(cfg SMTPConfig) (Transport, error) {
	t, err := NewSMTPTransport(cfg)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (t *SMTPTransport) Verify(ctx context.Context) error {
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	c, err := t.open(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	return c.Quit()
}

func (t *SMTPTransport) Send(ctx context.Context, msg *Message) error {
	from, err := msg.EnvelopeFrom()
	if err != nil {
		return err
	}
	raw, err := msg.Bytes()
	if err != nil {
		return err
	}

	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	c, err := t.open(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.SendMail(from, msg.To, bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return c.Quit()
}

func (t *SMTPTransport) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || t.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, t.cfg.Timeout)
}

// open dials, upgrades with STARTTLS, greets and authenticates a session.
// Relays that do not offer STARTTLS are refused.
func (t *SMTPTransport) open(ctx context.Context) (*smtp.Client, error) {
	conn, err := t.dialer.DialContext(ctx, "tcp", t.cfg.addr())
	if err != nil {
		return nil, &ConnectivityError{Op: "dial", Err: err}
	}
	// go-smtp resets connection deadlines per command, so cancellation closes
	// the socket instead.
	context.AfterFunc(ctx, func() { conn.Close() })

	c, err := smtp.NewClientStartTLS(conn, &tls.Config{
		ServerName:         t.cfg.Host,
		InsecureSkipVerify: t.cfg.InsecureSkipVerify,
	})
	if err != nil {
		return nil, &ConnectivityError{Op: "starttls", Err: err}
	}
	if t.cfg.Timeout > 0 {
		c.CommandTimeout = t.cfg.Timeout
		c.SubmissionTimeout = t.cfg.Timeout
	}

	// The TLS handshake runs on the first command after STARTTLS.
	if err := c.Hello(t.cfg.LocalName); err != nil {
		c.Close()
		return nil, &ConnectivityError{Op: "hello", Err: err}
	}

	if ok, _ := c.Extension("AUTH"); !ok {
		c.Close()
		return nil, &AuthError{Err: errors.New("server does not support authentication")}
	}

	if err := c.Auth(sasl.NewPlainClient("", t.cfg.Username, t.cfg.Password)); err != nil {
		c.Close()
		if isAuthRejection(err) {
			return nil, &AuthError{Err: err}
		}
		return nil, &ConnectivityError{Op: "auth", Err: err}
	}

	return c, nil
}

// isAuthRejection reports 53x replies (530 required, 534/535 rejected, 538 encryption).
func isAuthRejection(err error) bool {
	var smtpErr *smtp.SMTPError
	if errors.As(err, &smtpErr) {
		return smtpErr.Code >= 530 && smtpErr.Code < 540
	}
	return false
}
