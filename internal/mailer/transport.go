// Package mailer builds contact notification emails and delivers them through
// an SMTP relay.
package mailer

import (
	"context"
	"errors"
	"fmt"
)

// ErrMissingCredentials is returned when the SMTP login or password is empty.
var ErrMissingCredentials = errors.New("smtp credentials are not configured")

// Transport delivers messages to a mail relay.
type Transport interface {
	// Verify checks connectivity and authentication without sending anything.
	Verify(ctx context.Context) error
	// Send delivers msg. Retrying a failed Send is safe; the relay does no
	// deduplication.
	Send(ctx context.Context, msg *Message) error
}

// TransportFactory builds a Transport for one request.
type TransportFactory func(cfg SMTPConfig) (Transport, error)

// AuthError reports that the relay rejected the credentials.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("smtp authentication failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// ConnectivityError reports that the relay could not be reached or the
// session broke before authentication.
type ConnectivityError struct {
	Op  string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("smtp %s: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// ErrorKind classifies transport failures.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindAuth
	KindConnectivity
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindConnectivity:
		return "connectivity"
	default:
		return "other"
	}
}

// Classify returns the kind of a transport error.
func Classify(err error) ErrorKind {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return KindAuth
	}
	var connErr *ConnectivityError
	if errors.As(err, &connErr) {
		return KindConnectivity
	}
	return KindOther
}
