// Package smtp runs a local SMTP sink for development. It accepts the
// notifications the relay sends through the smtp provider, parses them
// and publishes them to the delivery feed instead of delivering them.
package smtp

import (
	"crypto/tls"
	"log/slog"
	"sync"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/welldanyogia/webrana-contact-relay/internal/websocket"
)

// Security limits
const (
	DefaultMaxMessageSize = 1 * 1024 * 1024 // 1 MB
	DefaultMaxRecipients  = 10
	DefaultReadTimeout    = 30 * time.Second
	DefaultWriteTimeout   = 30 * time.Second
	DefaultMaxLineLength  = 2000
)

// FeedPublisher receives captured messages for the live feed
type FeedPublisher interface {
	BroadcastDelivery(status string, payload *websocket.DeliveryPayload)
}

// Backend implements the go-smtp Backend interface
type Backend struct {
	publisher FeedPublisher
	onCapture func(*ParsedEmail)
	username  string
	password  string
	logger    *slog.Logger

	mu       sync.Mutex
	captured []*ParsedEmail
	keep     int
}

// BackendConfig holds configuration for the sink backend
type BackendConfig struct {
	Publisher FeedPublisher
	// OnCapture is called for every accepted message
	OnCapture func(*ParsedEmail)
	// Username and Password, when set, are required for AUTH PLAIN.
	// Otherwise any credentials are accepted.
	Username string
	Password string
	// Keep is how many recent messages Captured returns (default 50)
	Keep   int
	Logger *slog.Logger
}

// NewBackend creates a new sink backend
func NewBackend(cfg *BackendConfig) *Backend {
	keep := cfg.Keep
	if keep <= 0 {
		keep = 50
	}
	return &Backend{
		publisher: cfg.Publisher,
		onCapture: cfg.OnCapture,
		username:  cfg.Username,
		password:  cfg.Password,
		keep:      keep,
		logger:    cfg.Logger,
	}
}

// NewSession creates a new SMTP session
func (b *Backend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	if b.logger != nil {
		b.logger.Debug("new SMTP connection", slog.String("remote_addr", c.Conn().RemoteAddr().String()))
	}
	return NewSession(b), nil
}

// Captured returns the most recent messages, oldest first
func (b *Backend) Captured() []*ParsedEmail {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*ParsedEmail, len(b.captured))
	copy(out, b.captured)
	return out
}

func (b *Backend) capture(email *ParsedEmail) {
	b.mu.Lock()
	b.captured = append(b.captured, email)
	if len(b.captured) > b.keep {
		b.captured = b.captured[len(b.captured)-b.keep:]
	}
	b.mu.Unlock()

	if b.onCapture != nil {
		b.onCapture(email)
	}

	if b.publisher != nil {
		b.publisher.BroadcastDelivery(websocket.StatusCaptured, &websocket.DeliveryPayload{
			Provider:   "sink",
			ProviderID: email.MessageID,
			SenderName: email.ReplyToName,
			Subject:    email.Subject,
			CreatedAt:  email.ReceivedAt.Format(time.RFC3339),
		})
	}
}

// ServerConfig holds security configuration for the sink server
type ServerConfig struct {
	Addr           string
	Domain         string
	MaxMessageSize int64
	MaxRecipients  int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowInsecure  bool
	TLSConfig      *tls.Config
}

// NewSecureServer creates a new SMTP server with security settings
func NewSecureServer(backend *Backend, cfg *ServerConfig) *smtp.Server {
	s := smtp.NewServer(backend)

	s.Addr = cfg.Addr
	s.Domain = cfg.Domain

	if cfg.MaxMessageSize > 0 {
		s.MaxMessageBytes = cfg.MaxMessageSize
	} else {
		s.MaxMessageBytes = DefaultMaxMessageSize
	}

	if cfg.MaxRecipients > 0 {
		s.MaxRecipients = cfg.MaxRecipients
	} else {
		s.MaxRecipients = DefaultMaxRecipients
	}

	if cfg.ReadTimeout > 0 {
		s.ReadTimeout = cfg.ReadTimeout
	} else {
		s.ReadTimeout = DefaultReadTimeout
	}

	if cfg.WriteTimeout > 0 {
		s.WriteTimeout = cfg.WriteTimeout
	} else {
		s.WriteTimeout = DefaultWriteTimeout
	}

	// Plaintext AUTH is only offered when explicitly allowed
	s.AllowInsecureAuth = cfg.AllowInsecure

	if cfg.TLSConfig != nil {
		s.TLSConfig = cfg.TLSConfig
	}

	s.MaxLineLength = DefaultMaxLineLength

	return s
}
