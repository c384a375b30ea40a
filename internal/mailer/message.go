package mailer

import (
	"fmt"
	"net/mail"

	"github.com/jordan-wright/email"
)

// Message is one outbound email.
type Message struct {
	From    string // display form, e.g. "Studio" <studio@example.com>
	To      []string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
}

// FormatAddress renders a display name and address as a From header value.
func FormatAddress(name, address string) string {
	return (&mail.Address{Name: name, Address: address}).String()
}

// EnvelopeFrom returns the bare address of the From header for MAIL FROM.
func (m *Message) EnvelopeFrom() (string, error) {
	addr, err := mail.ParseAddress(m.From)
	if err != nil {
		return "", fmt.Errorf("invalid from address %q: %w", m.From, err)
	}
	return addr.Address, nil
}

// Bytes renders the message as an RFC 5322 multipart/alternative document.
func (m *Message) Bytes() ([]byte, error) {
	if len(m.To) == 0 {
		return nil, fmt.Errorf("message has no recipients")
	}

	e := email.NewEmail()
	e.From = m.From
	e.To = m.To
	if m.ReplyTo != "" {
		e.ReplyTo = []string{m.ReplyTo}
	}
	e.Subject = m.Subject
	e.Text = []byte(m.Text)
	e.HTML = []byte(m.HTML)

	raw, err := e.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render message: %w", err)
	}
	return raw, nil
}
