package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/welldanyogia/webrana-contact-relay/internal/errors"
	"github.com/welldanyogia/webrana-contact-relay/internal/models"
)

// Resend error names used when the API gives no structured answer
const (
	ResendApplicationError = "application_error"
	ResendMissingAPIKey    = "missing_api_key"
)

// maxResponseBytes bounds how much of a provider response is read
const maxResponseBytes = 64 * 1024

// ResendConfig holds configuration for the Resend provider
type ResendConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// ResendProvider sends notifications through the Resend HTTP API
type ResendProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewResendProvider creates a ResendProvider
func NewResendProvider(cfg *ResendConfig) *ResendProvider {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ResendProvider{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  client,
		logger:  logger,
	}
}

// Name returns the provider name
func (p *ResendProvider) Name() string {
	return "resend"
}

type resendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
	HTML    string   `json:"html"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

type resendEmailResponse struct {
	ID string `json:"id"`
}

// Send posts the notification to /emails
func (p *ResendProvider) Send(ctx context.Context, msg *models.NotificationMessage) (string, error) {
	if p.apiKey == "" {
		return "", &apperrors.ProviderError{
			Name:       ResendMissingAPIKey,
			Message:    "Missing API key",
			StatusCode: http.StatusUnauthorized,
		}
	}

	payload := resendEmailRequest{
		From:    msg.From.String(),
		To:      msg.Recipients(),
		Subject: msg.Subject,
		Text:    msg.Text,
		HTML:    msg.HTML,
	}
	if msg.ReplyTo.Address != "" {
		payload.ReplyTo = msg.ReplyTo.String()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to encode resend request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to create resend request")
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Warn("resend request failed",
			slog.Any("error", err),
			slog.Duration("latency", time.Since(start)))
		return "", &apperrors.ProviderError{
			Name:    ResendApplicationError,
			Message: "Unable to reach the email provider",
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &apperrors.ProviderError{
			Name:       ResendApplicationError,
			Message:    "Unable to read the email provider response",
			StatusCode: resp.StatusCode,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		providerErr := decodeResendError(resp.StatusCode, raw)
		p.logger.Warn("resend rejected message",
			slog.Int("status", resp.StatusCode),
			slog.String("name", providerErr.Name),
			slog.Duration("latency", time.Since(start)))
		return "", providerErr
	}

	var out resendEmailResponse
	if err := json.Unmarshal(raw, &out); err != nil || out.ID == "" {
		return "", &apperrors.ProviderError{
			Name:       ResendApplicationError,
			Message:    "Email provider returned an unexpected response",
			StatusCode: resp.StatusCode,
		}
	}

	p.logger.Debug("resend accepted message",
		slog.String("id", out.ID),
		slog.Duration("latency", time.Since(start)))

	return out.ID, nil
}

// decodeResendError reads the {statusCode, name, message} error body,
// falling back to the HTTP status text.
func decodeResendError(status int, raw []byte) *apperrors.ProviderError {
	var providerErr apperrors.ProviderError
	if err := json.Unmarshal(raw, &providerErr); err != nil || providerErr.Name == "" {
		providerErr = apperrors.ProviderError{Name: ResendApplicationError}
	}
	if providerErr.Message == "" {
		providerErr.Message = http.StatusText(status)
	}
	providerErr.StatusCode = status
	return &providerErr
}
