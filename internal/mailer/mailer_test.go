package mailer

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"io"
	"math/big"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUser     = "studio@example.com"
	testPassword = "secret"
)

type receivedMail struct {
	From string
	To   []string
	Data string
}

type testBackend struct {
	noAuth bool

	mu    sync.Mutex
	inbox []receivedMail
}

func (b *testBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &testSession{backend: b}, nil
}

func (b *testBackend) messages() []receivedMail {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]receivedMail(nil), b.inbox...)
}

type testSession struct {
	backend *testBackend
	authed  bool
	current receivedMail
}

func (s *testSession) AuthMechanisms() []string {
	if s.backend.noAuth {
		return nil
	}
	return []string{sasl.Plain}
}

func (s *testSession) Auth(mech string) (sasl.Server, error) {
	return sasl.NewPlainServer(func(identity, username, password string) error {
		if username != testUser || password != testPassword {
			return smtp.ErrAuthFailed
		}
		s.authed = true
		return nil
	}), nil
}

func (s *testSession) Mail(from string, _ *smtp.MailOptions) error {
	if !s.authed {
		return smtp.ErrAuthRequired
	}
	s.current.From = from
	return nil
}

func (s *testSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.current.To = append(s.current.To, to)
	return nil
}

func (s *testSession) Data(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.current.Data = string(raw)
	s.backend.mu.Lock()
	s.backend.inbox = append(s.backend.inbox, s.current)
	s.backend.mu.Unlock()
	return nil
}

func (s *testSession) Reset() {
	s.current = receivedMail{}
}

func (s *testSession) Logout() error {
	return nil
}

// selfSignedCert returns a throwaway certificate for 127.0.0.1 that no
// system pool trusts.
func selfSignedCert(t *testing.T) tls.Certificate {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "relay.test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
		DNSNames:     []string{"localhost"},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key}
}

type serverOption func(*smtp.Server, *testBackend)

// withoutTLS makes the relay skip STARTTLS and accept AUTH in plaintext.
func withoutTLS(srv *smtp.Server, _ *testBackend) {
	srv.TLSConfig = nil
	srv.AllowInsecureAuth = true
}

func withoutAuth(_ *smtp.Server, be *testBackend) {
	be.noAuth = true
}

// startTestServer runs a submission relay that offers STARTTLS with a
// self-signed certificate and only accepts AUTH once TLS is up.
func startTestServer(t *testing.T, opts ...serverOption) (*testBackend, SMTPConfig) {
	t.Helper()

	be := &testBackend{}
	srv := smtp.NewServer(be)
	srv.Domain = "localhost"
	srv.TLSConfig = &tls.Config{Certificates: []tls.Certificate{selfSignedCert(t)}}
	srv.AllowInsecureAuth = false
	srv.ReadTimeout = 5 * time.Second
	srv.WriteTimeout = 5 * time.Second
	for _, opt := range opts {
		opt(srv, be)
	}

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go srv.Serve(l)
	t.Cleanup(func() { srv.Close() })

	addr := l.Addr().(*net.TCPAddr)
	return be, SMTPConfig{
		Host:               "127.0.0.1",
		Port:               addr.Port,
		Username:           testUser,
		Password:           testPassword,
		Timeout:            5 * time.Second,
		InsecureSkipVerify: true,
	}
}

func TestNewSMTPTransportRequiresCredentials(t *testing.T) {
	_, err := NewSMTPTransport(SMTPConfig{Host: "localhost", Port: 587, Username: "a@b.co"})
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = NewTransport(SMTPConfig{Host: "localhost", Port: 587, Password: "x"})
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestSMTPTransportVerify(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		_, cfg := startTestServer(t)
		tr, err := NewSMTPTransport(cfg)
		require.NoError(t, err)
		assert.NoError(t, tr.Verify(ctx))
	})

	t.Run("rejected credentials", func(t *testing.T) {
		_, cfg := startTestServer(t)
		cfg.Password = "wrong"
		tr, err := NewSMTPTransport(cfg)
		require.NoError(t, err)

		err = tr.Verify(ctx)
		require.Error(t, err)
		assert.Equal(t, KindAuth, Classify(err))
	})

	t.Run("untrusted certificate", func(t *testing.T) {
		_, cfg := startTestServer(t)
		cfg.InsecureSkipVerify = false
		tr, err := NewSMTPTransport(cfg)
		require.NoError(t, err)

		err = tr.Verify(ctx)
		require.Error(t, err)
		assert.Equal(t, KindConnectivity, Classify(err))
	})

	t.Run("starttls not offered", func(t *testing.T) {
		_, cfg := startTestServer(t, withoutTLS)
		tr, err := NewSMTPTransport(cfg)
		require.NoError(t, err)

		err = tr.Verify(ctx)
		require.Error(t, err)
		assert.Equal(t, KindConnectivity, Classify(err))

		var connErr *ConnectivityError
		require.ErrorAs(t, err, &connErr)
		assert.Equal(t, "starttls", connErr.Op)
	})

	t.Run("auth not offered", func(t *testing.T) {
		_, cfg := startTestServer(t, withoutAuth)
		tr, err := NewSMTPTransport(cfg)
		require.NoError(t, err)

		err = tr.Verify(ctx)
		require.Error(t, err)
		assert.Equal(t, KindAuth, Classify(err))
	})

	t.Run("unreachable relay", func(t *testing.T) {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		port := l.Addr().(*net.TCPAddr).Port
		l.Close()

		tr, err := NewSMTPTransport(SMTPConfig{
			Host: "127.0.0.1", Port: port,
			Username: testUser, Password: testPassword,
			Timeout: time.Second,
		})
		require.NoError(t, err)

		err = tr.Verify(ctx)
		require.Error(t, err)
		assert.Equal(t, KindConnectivity, Classify(err))
	})
}

func TestSMTPTransportVerifyHonorsContext(t *testing.T) {
	// A relay that accepts the connection but never greets.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		io.Copy(io.Discard, conn)
	}()

	tr, err := NewSMTPTransport(SMTPConfig{
		Host:     "127.0.0.1",
		Port:     l.Addr().(*net.TCPAddr).Port,
		Username: testUser,
		Password: testPassword,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = tr.Verify(ctx)
	require.Error(t, err)
	assert.Equal(t, KindConnectivity, Classify(err))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestSMTPTransportSend(t *testing.T) {
	be, cfg := startTestServer(t)
	tr, err := NewSMTPTransport(cfg)
	require.NoError(t, err)

	msg, err := NewNotification(
		Submission{Name: "Jane Doe", Email: "jane@example.com", Message: "Hello there, I need a video."},
		Envelope{FromName: "MiraVision Contact System", FromAddress: testUser, Recipients: []string{"info@example.com", "ops@example.com"}},
		"203.0.113.7",
		time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	require.NoError(t, tr.Send(context.Background(), msg))

	inbox := be.messages()
	require.Len(t, inbox, 1)
	assert.Equal(t, testUser, inbox[0].From)
	assert.Equal(t, []string{"info@example.com", "ops@example.com"}, inbox[0].To)
	assert.Contains(t, inbox[0].Data, "Subject: New Contact Form Submission from Jane Doe")
	assert.Contains(t, inbox[0].Data, "Reply-To: jane@example.com")
	assert.Contains(t, inbox[0].Data, `From: "MiraVision Contact System" <studio@example.com>`)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"auth", &AuthError{Err: errors.New("535")}, KindAuth},
		{"wrapped auth", errors.Join(errors.New("verify"), &AuthError{Err: errors.New("x")}), KindAuth},
		{"connectivity", &ConnectivityError{Op: "dial", Err: errors.New("refused")}, KindConnectivity},
		{"other", errors.New("boom"), KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
			assert.Equal(t, tt.want.String(), Classify(tt.err).String())
		})
	}
}

func TestIsAuthRejection(t *testing.T) {
	assert.True(t, isAuthRejection(&smtp.SMTPError{Code: 535}))
	assert.True(t, isAuthRejection(&smtp.SMTPError{Code: 530}))
	assert.False(t, isAuthRejection(&smtp.SMTPError{Code: 421}))
	assert.False(t, isAuthRejection(errors.New("eof")))
}

func TestRetryPolicy(t *testing.T) {
	var slept []time.Duration
	policy := RetryPolicy{
		MaxAttempts: 3,
		Backoff:     ExponentialBackoff(time.Second),
		Sleep: func(_ context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		},
	}

	t.Run("succeeds after failures", func(t *testing.T) {
		slept = nil
		calls := 0
		attempts, err := policy.Do(context.Background(), func(_ context.Context, attempt int) error {
			calls++
			assert.Equal(t, calls, attempt)
			if attempt < 3 {
				return errors.New("transient")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
		assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, slept)
	})

	t.Run("exhausted", func(t *testing.T) {
		slept = nil
		calls := 0
		attempts, err := policy.Do(context.Background(), func(context.Context, int) error {
			calls++
			return errors.New("down")
		})
		assert.EqualError(t, err, "down")
		assert.Equal(t, 3, attempts)
		assert.Equal(t, 3, calls)
		assert.Len(t, slept, 2)
	})

	t.Run("first try", func(t *testing.T) {
		slept = nil
		attempts, err := policy.Do(context.Background(), func(context.Context, int) error { return nil })
		require.NoError(t, err)
		assert.Equal(t, 1, attempts)
		assert.Empty(t, slept)
	})
}

func TestRetryPolicyStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	policy := RetryPolicy{MaxAttempts: 3, Backoff: ExponentialBackoff(time.Hour), Sleep: SleepContext}
	calls := 0
	attempts, err := policy.Do(ctx, func(context.Context, int) error {
		calls++
		return errors.New("down")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, calls)
}

func TestDefaultRetryPolicy(t *testing.T) {
	p := DefaultRetryPolicy()
	assert.Equal(t, 3, p.MaxAttempts)
	assert.Equal(t, time.Second, p.Backoff(1))
	assert.Equal(t, 2*time.Second, p.Backoff(2))
	assert.Equal(t, 4*time.Second, p.Backoff(3))
}

func TestNewNotification(t *testing.T) {
	sub := Submission{
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Company: "Acme",
		Service: "Video Production",
		Message: "Line one\nLine two",
	}
	env := Envelope{FromName: "Studio", FromAddress: "studio@example.com", Recipients: []string{"info@example.com"}}

	msg, err := NewNotification(sub, env, "198.51.100.4", time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, `"Studio" <studio@example.com>`, msg.From)
	assert.Equal(t, "jane@example.com", msg.ReplyTo)
	assert.Equal(t, []string{"info@example.com"}, msg.To)
	assert.Equal(t, "New Contact Form Submission from Jane Doe", msg.Subject)

	assert.Contains(t, msg.HTML, "Line one<br>Line two")
	assert.Contains(t, msg.HTML, "Company:")
	assert.Contains(t, msg.HTML, "Video Production")
	assert.Contains(t, msg.HTML, "IP Address: 198.51.100.4")
	assert.Contains(t, msg.HTML, "Reply to Jane Doe")
	assert.Contains(t, msg.HTML, "Sunday, March 1, 2026")

	assert.Contains(t, msg.Text, "Company: Acme")
	assert.Contains(t, msg.Text, "IP: 198.51.100.4")
	assert.Contains(t, msg.Text, "TIMESTAMP: 2026-03-01T09:30:00.000Z")
}

func TestNewNotificationOmitsEmptyOptionalRows(t *testing.T) {
	sub := Submission{Name: "Jo", Email: "jo@example.com", Message: "Just checking in."}
	msg, err := NewNotification(sub, Envelope{FromAddress: "s@example.com", Recipients: []string{"i@example.com"}}, "unknown", time.Now())
	require.NoError(t, err)

	assert.NotContains(t, msg.HTML, "Company:")
	assert.NotContains(t, msg.HTML, "Service:")
	assert.NotContains(t, msg.Text, "Company:")
	assert.NotContains(t, msg.Text, "Service:")
}

func TestNewNotificationEscapesHTML(t *testing.T) {
	sub := Submission{Name: "Tom & Jerry", Email: "t@example.com", Message: `say "hi" & bye`}
	msg, err := NewNotification(sub, Envelope{FromAddress: "s@example.com", Recipients: []string{"i@example.com"}}, "unknown", time.Now())
	require.NoError(t, err)

	assert.Contains(t, msg.HTML, "Tom &amp; Jerry")
	assert.NotContains(t, msg.HTML, `say "hi" & bye`)
	assert.Contains(t, msg.Text, `say "hi" & bye`)
}

func TestNewAutoReply(t *testing.T) {
	env := Envelope{FromName: "Studio", FromAddress: "studio@example.com"}

	msg, err := NewAutoReply(Submission{Name: "Jane", Email: "jane@example.com", Service: "Branding"}, env)
	require.NoError(t, err)
	assert.Equal(t, []string{"jane@example.com"}, msg.To)
	assert.Equal(t, "Thank you for contacting MiraVision, Jane!", msg.Subject)
	assert.Contains(t, msg.Text, "contact us about our Branding services.")
	assert.Contains(t, msg.HTML, "Hi Jane,")

	msg, err = NewAutoReply(Submission{Name: "Jane", Email: "jane@example.com"}, env)
	require.NoError(t, err)
	assert.Contains(t, msg.Text, "taking the time to contact us.")
	assert.False(t, strings.Contains(msg.Text, "services."))
}

func TestMessageBytesRequiresRecipients(t *testing.T) {
	_, err := (&Message{From: "a@example.com"}).Bytes()
	assert.Error(t, err)
}
