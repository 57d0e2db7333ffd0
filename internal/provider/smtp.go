package provider

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	apperrors "github.com/welldanyogia/webrana-contact-relay/internal/errors"
	"github.com/welldanyogia/webrana-contact-relay/internal/models"
)

// SMTP error names reported to the relay
const (
	SMTPConnectionError = "smtp_connection_error"
	SMTPRejected        = "smtp_rejected"
)

// SMTPConfig holds configuration for the SMTP provider
type SMTPConfig struct {
	Addr     string
	Host     string
	Username string
	Password string
	Timeout  time.Duration
	// TLSConfig overrides the STARTTLS configuration. Nil uses ServerName=Host.
	TLSConfig *tls.Config
	Logger    *slog.Logger
}

// SMTPProvider relays notifications through an SMTP submission server
type SMTPProvider struct {
	cfg    SMTPConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewSMTPProvider creates an SMTPProvider
func NewSMTPProvider(cfg *SMTPConfig) *SMTPProvider {
	c := *cfg
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPProvider{cfg: c, logger: logger, now: time.Now}
}

// Name returns the provider name
func (p *SMTPProvider) Name() string {
	return "smtp"
}

// Send delivers the message and returns its Message-Id
func (p *SMTPProvider) Send(ctx context.Context, msg *models.NotificationMessage) (string, error) {
	raw, messageID, err := encodeMIME(msg, senderDomain(msg), p.now())
	if err != nil {
		return "", err
	}

	client, err := p.dial(ctx)
	if err != nil {
		p.logger.Warn("smtp dial failed", slog.String("addr", p.cfg.Addr), slog.Any("error", err))
		var smtpErr *smtp.SMTPError
		if errors.As(err, &smtpErr) {
			return "", p.providerError(err)
		}
		return "", &apperrors.ProviderError{
			Name:    SMTPConnectionError,
			Message: "Unable to reach the mail server",
		}
	}
	client.CommandTimeout = p.cfg.Timeout
	client.SubmissionTimeout = p.cfg.Timeout

	done := make(chan error, 1)
	go func() {
		done <- p.deliver(client, msg, raw)
	}()

	select {
	case <-ctx.Done():
		client.Close()
		<-done
		return "", &apperrors.ProviderError{
			Name:    SMTPConnectionError,
			Message: "Mail server did not answer in time",
		}
	case err := <-done:
		if err != nil {
			client.Close()
			return "", p.providerError(err)
		}
	}

	if err := client.Quit(); err != nil {
		p.logger.Debug("smtp quit failed", slog.Any("error", err))
		client.Close()
	}

	p.logger.Debug("smtp accepted message", slog.String("message_id", messageID))
	return messageID, nil
}

// dial connects to the server and upgrades with STARTTLS when the server
// advertises it. The TLS handshake has to start on a fresh connection, so
// the first one only reads the EHLO extensions.
func (p *SMTPProvider) dial(ctx context.Context) (*smtp.Client, error) {
	conn, err := p.dialConn(ctx)
	if err != nil {
		return nil, err
	}

	client := smtp.NewClient(conn)
	client.CommandTimeout = p.cfg.Timeout
	if ok, _ := client.Extension("STARTTLS"); !ok {
		return client, nil
	}
	_ = client.Quit()

	conn, err = p.dialConn(ctx)
	if err != nil {
		return nil, err
	}

	tlsConfig := p.cfg.TLSConfig
	if tlsConfig == nil {
		tlsConfig = &tls.Config{ServerName: p.cfg.Host, MinVersion: tls.VersionTLS12}
	}
	client, err = smtp.NewClientStartTLS(conn, tlsConfig)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("starttls: %w", err)
	}
	return client, nil
}

func (p *SMTPProvider) dialConn(ctx context.Context) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: p.cfg.Timeout}
	return dialer.DialContext(ctx, "tcp", p.cfg.Addr)
}

func (p *SMTPProvider) deliver(client *smtp.Client, msg *models.NotificationMessage, raw []byte) error {
	if p.cfg.Username != "" {
		auth := sasl.NewPlainClient("", p.cfg.Username, p.cfg.Password)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}

	if err := client.Mail(msg.From.Address, nil); err != nil {
		return err
	}
	for _, recipient := range msg.Recipients() {
		if err := client.Rcpt(recipient, nil); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// providerError turns a protocol failure into the structured shape the
// relay reports. Server replies keep their text; anything else is a
// connection problem.
func (p *SMTPProvider) providerError(err error) *apperrors.ProviderError {
	p.logger.Warn("smtp delivery failed", slog.String("addr", p.cfg.Addr), slog.Any("error", err))

	var smtpErr *smtp.SMTPError
	if errors.As(err, &smtpErr) {
		return &apperrors.ProviderError{
			Name:       SMTPRejected,
			Message:    smtpErr.Message,
			StatusCode: smtpErr.Code,
		}
	}
	return &apperrors.ProviderError{
		Name:    SMTPConnectionError,
		Message: "Mail server connection failed",
	}
}
