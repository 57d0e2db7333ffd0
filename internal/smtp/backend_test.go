package smtp

import (
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/welldanyogia/webrana-contact-relay/internal/websocket"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	last   *websocket.DeliveryPayload
}

func (p *recordingPublisher) BroadcastDelivery(status string, payload *websocket.DeliveryPayload) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, status)
	p.last = payload
}

func TestNewSecureServer(t *testing.T) {
	backend := &Backend{}

	t.Run("default configuration", func(t *testing.T) {
		server := NewSecureServer(backend, &ServerConfig{Addr: "127.0.0.1:2525", Domain: "localhost"})

		if server.Addr != "127.0.0.1:2525" {
			t.Errorf("expected addr 127.0.0.1:2525, got %s", server.Addr)
		}
		if server.MaxMessageBytes != DefaultMaxMessageSize {
			t.Errorf("expected max message size %d, got %d", DefaultMaxMessageSize, server.MaxMessageBytes)
		}
		if server.MaxRecipients != DefaultMaxRecipients {
			t.Errorf("expected max recipients %d, got %d", DefaultMaxRecipients, server.MaxRecipients)
		}
		if server.ReadTimeout != DefaultReadTimeout {
			t.Errorf("expected read timeout %v, got %v", DefaultReadTimeout, server.ReadTimeout)
		}
		if server.AllowInsecureAuth {
			t.Error("expected AllowInsecureAuth to be false by default")
		}
		if server.MaxLineLength != DefaultMaxLineLength {
			t.Errorf("expected max line length %d, got %d", DefaultMaxLineLength, server.MaxLineLength)
		}
	})

	t.Run("custom configuration", func(t *testing.T) {
		server := NewSecureServer(backend, &ServerConfig{
			Addr:           "127.0.0.1:0",
			Domain:         "sink.test",
			MaxMessageSize: 2048,
			MaxRecipients:  2,
			ReadTimeout:    5 * time.Second,
			WriteTimeout:   5 * time.Second,
			AllowInsecure:  true,
		})

		if server.MaxMessageBytes != 2048 {
			t.Errorf("expected max message size 2048, got %d", server.MaxMessageBytes)
		}
		if server.MaxRecipients != 2 {
			t.Errorf("expected max recipients 2, got %d", server.MaxRecipients)
		}
		if server.WriteTimeout != 5*time.Second {
			t.Errorf("expected write timeout 5s, got %v", server.WriteTimeout)
		}
		if !server.AllowInsecureAuth {
			t.Error("expected AllowInsecureAuth to be true")
		}
	})
}

// startSink serves backend on a loopback port for the duration of the test.
func startSink(t *testing.T, backend *Backend) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := NewSecureServer(backend, &ServerConfig{Domain: "sink.test", AllowInsecure: true})
	go server.Serve(ln)
	t.Cleanup(func() { server.Close() })

	return ln.Addr().String()
}

const rawNotification = "From: Portfolio <onboarding@resend.dev>\r\n" +
	"To: owner@example.com\r\n" +
	"Reply-To: Jane <jane@example.com>\r\n" +
	"Subject: Hiring\r\n" +
	"Message-Id: <m-1@resend.dev>\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Hello from the form\r\n"

// sendPlain delivers one message without STARTTLS, the way local tools
// talk to the sink
func sendPlain(addr string, auth sasl.Client, from string, to []string, r io.Reader) error {
	c, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer c.Close()

	if auth != nil {
		if err := c.Auth(auth); err != nil {
			return err
		}
	}
	if err := c.Mail(from, nil); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt, nil); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func TestSink_CapturesAndPublishes(t *testing.T) {
	publisher := &recordingPublisher{}
	hook := make(chan *ParsedEmail, 1)
	backend := NewBackend(&BackendConfig{
		Publisher: publisher,
		OnCapture: func(p *ParsedEmail) { hook <- p },
	})
	addr := startSink(t, backend)

	err := sendPlain(addr, nil, "onboarding@resend.dev", []string{"owner@example.com"}, strings.NewReader(rawNotification))
	require.NoError(t, err)

	captured := backend.Captured()
	require.Len(t, captured, 1)
	msg := captured[0]
	assert.Equal(t, "m-1@resend.dev", msg.MessageID)
	assert.Equal(t, "onboarding@resend.dev", msg.EnvelopeFrom)
	assert.Equal(t, []string{"owner@example.com"}, msg.Recipients)
	assert.Equal(t, "jane@example.com", msg.ReplyToEmail)
	assert.Equal(t, "Hello from the form", msg.Snippet)
	assert.False(t, msg.ReceivedAt.IsZero())
	assert.Same(t, msg, <-hook)

	publisher.mu.Lock()
	defer publisher.mu.Unlock()
	assert.Equal(t, []string{websocket.StatusCaptured}, publisher.events)
	assert.Equal(t, "m-1@resend.dev", publisher.last.ProviderID)
	assert.Equal(t, "Jane", publisher.last.SenderName)
}

func TestSink_RejectsInvalidRecipient(t *testing.T) {
	backend := NewBackend(&BackendConfig{})
	addr := startSink(t, backend)

	err := sendPlain(addr, nil, "a@example.com", []string{"not an address"}, strings.NewReader(rawNotification))
	require.Error(t, err)

	var smtpErr *smtp.SMTPError
	require.ErrorAs(t, err, &smtpErr)
	assert.Equal(t, 550, smtpErr.Code)
	assert.Empty(t, backend.Captured())
}

func TestSink_AuthPlain(t *testing.T) {
	backend := NewBackend(&BackendConfig{Username: "relay", Password: "s3cret"})
	addr := startSink(t, backend)

	good := sasl.NewPlainClient("", "relay", "s3cret")
	require.NoError(t, sendPlain(addr, good, "a@example.com", []string{"owner@example.com"}, strings.NewReader(rawNotification)))

	bad := sasl.NewPlainClient("", "relay", "wrong")
	err := sendPlain(addr, bad, "a@example.com", []string{"owner@example.com"}, strings.NewReader(rawNotification))
	assert.Error(t, err)

	assert.Len(t, backend.Captured(), 1)
}

func TestBackend_KeepsMostRecent(t *testing.T) {
	backend := NewBackend(&BackendConfig{Keep: 2})

	for _, id := range []string{"a", "b", "c"} {
		backend.capture(&ParsedEmail{MessageID: id, ReceivedAt: time.Now()})
	}

	captured := backend.Captured()
	require.Len(t, captured, 2)
	assert.Equal(t, "b", captured[0].MessageID)
	assert.Equal(t, "c", captured[1].MessageID)
}

func TestSession_DataWithoutRecipients(t *testing.T) {
	session := NewSession(NewBackend(&BackendConfig{}))

	err := session.Data(strings.NewReader(rawNotification))

	var smtpErr *smtp.SMTPError
	require.ErrorAs(t, err, &smtpErr)
	assert.Equal(t, 503, smtpErr.Code)
}

func TestSession_Reset(t *testing.T) {
	session := NewSession(NewBackend(&BackendConfig{}))
	require.NoError(t, session.Mail("a@example.com", nil))
	require.NoError(t, session.Rcpt("owner@example.com", nil))

	session.Reset()

	assert.Empty(t, session.from)
	assert.Empty(t, session.recipients)
}
