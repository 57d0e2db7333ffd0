package smtp

import (
	"crypto/subtle"
	"io"
	"log/slog"
	"net/mail"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

// Session implements the go-smtp Session and AuthSession interfaces
type Session struct {
	backend    *Backend
	from       string
	recipients []string
}

// NewSession creates a new SMTP session
func NewSession(backend *Backend) *Session {
	return &Session{
		backend:    backend,
		recipients: make([]string, 0),
	}
}

// AuthMechanisms lists the supported SASL mechanisms
func (s *Session) AuthMechanisms() []string {
	return []string{sasl.Plain}
}

// Auth handles AUTH PLAIN
func (s *Session) Auth(mech string) (sasl.Server, error) {
	if mech != sasl.Plain {
		return nil, &smtp.SMTPError{
			Code:         504,
			EnhancedCode: smtp.EnhancedCode{5, 5, 4},
			Message:      "Unsupported authentication mechanism",
		}
	}
	return sasl.NewPlainServer(func(identity, username, password string) error {
		if s.backend.username == "" {
			return nil
		}
		userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.backend.username)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.backend.password)) == 1
		if !userOK || !passOK {
			return &smtp.SMTPError{
				Code:         535,
				EnhancedCode: smtp.EnhancedCode{5, 7, 8},
				Message:      "Authentication failed",
			}
		}
		return nil
	}), nil
}

// Mail handles the MAIL FROM command
func (s *Session) Mail(from string, opts *smtp.MailOptions) error {
	s.from = from
	if s.backend.logger != nil {
		s.backend.logger.Debug("MAIL FROM", slog.String("from", from))
	}
	return nil
}

// Rcpt handles the RCPT TO command
func (s *Session) Rcpt(to string, opts *smtp.RcptOptions) error {
	if _, err := mail.ParseAddress(to); err != nil {
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 1, 3},
			Message:      "Invalid recipient address",
		}
	}
	s.recipients = append(s.recipients, to)
	return nil
}

// Data receives and captures the message
func (s *Session) Data(r io.Reader) error {
	if len(s.recipients) == 0 {
		return &smtp.SMTPError{
			Code:         503,
			EnhancedCode: smtp.EnhancedCode{5, 5, 1},
			Message:      "No recipients specified",
		}
	}

	parsed, err := ParseEmail(r)
	if err != nil {
		if s.backend.logger != nil {
			s.backend.logger.Error("failed to parse email", slog.Any("error", err))
		}
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 6, 0},
			Message:      "Failed to parse email",
		}
	}

	parsed.EnvelopeFrom = s.from
	parsed.Recipients = append([]string(nil), s.recipients...)
	parsed.ReceivedAt = time.Now().UTC()

	s.backend.capture(parsed)

	if s.backend.logger != nil {
		s.backend.logger.Info("notification captured",
			slog.String("message_id", parsed.MessageID),
			slog.String("subject", parsed.Subject),
			slog.Int("recipients", len(parsed.Recipients)))
	}

	return nil
}

// Reset resets the session state
func (s *Session) Reset() {
	s.from = ""
	s.recipients = make([]string, 0)
}

// Logout handles the end of the session
func (s *Session) Logout() error {
	return nil
}
