// Package provider delivers rendered notifications through an email
// delivery service.
package provider

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/welldanyogia/webrana-contact-relay/internal/config"
	"github.com/welldanyogia/webrana-contact-relay/internal/models"
	"github.com/welldanyogia/webrana-contact-relay/internal/storage"
)

// Provider sends one notification and returns the identifier the
// delivery service assigned to it. Failures reported by the service are
// returned as *errors.ProviderError.
type Provider interface {
	Name() string
	Send(ctx context.Context, msg *models.NotificationMessage) (string, error)
}

// New builds the provider selected by cfg.EmailProvider. A provider whose
// credential is missing is still returned; the relay refuses to call it
// and reports the misconfiguration per submission.
func New(cfg *config.Config, logger *slog.Logger) (Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.EmailProvider {
	case config.ProviderResend:
		return NewResendProvider(&ResendConfig{
			APIKey:     cfg.ResendAPIKey,
			BaseURL:    cfg.ResendAPIURL,
			HTTPClient: &http.Client{Timeout: cfg.SendTimeout},
			Logger:     logger,
		}), nil
	case config.ProviderSMTP:
		return NewSMTPProvider(&SMTPConfig{
			Addr:     cfg.SMTPAddr(),
			Host:     cfg.SMTPHost,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			Timeout:  cfg.SendTimeout,
			Logger:   logger,
		}), nil
	case config.ProviderFile:
		if cfg.MailDropPath == "" {
			return NewFileProvider(nil, logger), nil
		}
		store, err := storage.NewLocalStorage(cfg.MailDropPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open mail drop: %w", err)
		}
		return NewFileProvider(store, logger), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.EmailProvider)
	}
}
