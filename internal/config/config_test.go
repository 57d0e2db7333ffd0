package config

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	t.Setenv("EMAIL_PROVIDER", "")
	t.Setenv("RESEND_API_KEY", "")
	t.Setenv("TO_EMAIL", "")
	t.Setenv("FROM_EMAIL", "")
	t.Setenv("API_PORT", "")
	t.Setenv("SMTP_PORT", "")
	t.Setenv("SEND_TIMEOUT", "")
	t.Setenv("RATE_LIMIT_REQUESTS", "")
	t.Setenv("RATE_LIMIT_BURST", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("MAIL_SINK_DOMAIN", "")
	t.Setenv("RESEND_API_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderResend, cfg.EmailProvider)
	assert.Equal(t, DefaultFromAddress, cfg.FromEmail)
	assert.Equal(t, DefaultResendAPIURL, cfg.ResendAPIURL)
	assert.Equal(t, DefaultSendTimeout, cfg.SendTimeout)
	assert.Equal(t, 8080, cfg.APIPort)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "localhost", cfg.MailSinkDomain)
	assert.Equal(t, 1.0, cfg.RateLimitRequests)
	assert.Equal(t, 5, cfg.RateLimitBurst)
	assert.Empty(t, cfg.ResendAPIKey)
	assert.Empty(t, cfg.ToEmail)
}

func TestLoad_ReadsDeliverySettings(t *testing.T) {
	t.Setenv("EMAIL_PROVIDER", "SMTP")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("TO_EMAIL", "owner@example.com")
	t.Setenv("SEND_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderSMTP, cfg.EmailProvider)
	assert.Equal(t, "smtp.example.com:2525", cfg.SMTPAddr())
	assert.Equal(t, "owner@example.com", cfg.ToEmail)
	assert.Equal(t, 3*time.Second, cfg.SendTimeout)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("API_PORT", "eighty")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "API_PORT must be a valid integer")
}

func TestLoad_InvalidTimeout(t *testing.T) {
	t.Setenv("SEND_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "SEND_TIMEOUT")
}

func validConfig() *Config {
	return &Config{
		EmailProvider: ProviderResend,
		ResendAPIKey:  "re_test",
		ToEmail:       "owner@example.com",
		FromEmail:     DefaultFromAddress,
		SendTimeout:   DefaultSendTimeout,
		APIPort:       8080,
		SMTPPort:      587,
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_UnknownProvider(t *testing.T) {
	cfg := validConfig()
	cfg.EmailProvider = "pigeon"

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "EMAIL_PROVIDER")
}

func TestValidate_InvalidFromAddress(t *testing.T) {
	cfg := validConfig()
	cfg.FromEmail = "not an address"

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "FROM_EMAIL")
}

func TestValidate_InvalidDestination(t *testing.T) {
	cfg := validConfig()
	cfg.ToEmail = "owner"

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "TO_EMAIL")
}

func TestValidate_MissingDeliveryIsNotALoadError(t *testing.T) {
	cfg := validConfig()
	cfg.ResendAPIKey = ""
	cfg.ToEmail = ""

	assert.NoError(t, cfg.Validate())
}

func TestValidateProduction_RequiresAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.AllowedOrigins = "https://portfolio.example.com"

	err := cfg.ValidateProduction()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "API_KEY is required")
}

func TestValidateProduction_RequiresAllowedOrigins(t *testing.T) {
	cfg := validConfig()
	cfg.APIKey = "admin-key"

	err := cfg.ValidateProduction()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ALLOWED_ORIGINS is required")
}

func TestValidateProduction_NoWildcardOrigins(t *testing.T) {
	cfg := validConfig()
	cfg.APIKey = "admin-key"
	cfg.AllowedOrigins = "*"

	err := cfg.ValidateProduction()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "wildcard")
}

func TestValidateProduction_NoFileProvider(t *testing.T) {
	cfg := validConfig()
	cfg.APIKey = "admin-key"
	cfg.AllowedOrigins = "https://portfolio.example.com"
	cfg.EmailProvider = ProviderFile

	err := cfg.ValidateProduction()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "EMAIL_PROVIDER=file")
}

func TestValidateProduction_NoSSLDisable(t *testing.T) {
	cfg := validConfig()
	cfg.APIKey = "admin-key"
	cfg.AllowedOrigins = "https://portfolio.example.com"
	cfg.DatabaseURL = "postgres://localhost/contact?sslmode=disable"

	err := cfg.ValidateProduction()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sslmode=disable")
}

func TestValidateProduction_ValidConfig(t *testing.T) {
	cfg := validConfig()
	cfg.APIKey = "admin-key"
	cfg.AllowedOrigins = "https://portfolio.example.com"

	assert.NoError(t, cfg.ValidateProduction())
}

func TestMissingDelivery(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		expected []string
	}{
		{"fully configured", func(c *Config) {}, nil},
		{"missing key", func(c *Config) { c.ResendAPIKey = "" }, []string{"RESEND_API_KEY"}},
		{"missing destination", func(c *Config) { c.ToEmail = "" }, []string{"TO_EMAIL"}},
		{"missing both", func(c *Config) { c.ResendAPIKey = ""; c.ToEmail = "" }, []string{"RESEND_API_KEY", "TO_EMAIL"}},
		{"smtp without host", func(c *Config) { c.EmailProvider = ProviderSMTP }, []string{"SMTP_HOST"}},
		{"file with drop path", func(c *Config) { c.EmailProvider = ProviderFile; c.MailDropPath = "/tmp/mail" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Equal(t, tt.expected, cfg.MissingDelivery())
		})
	}
}

func TestOrigins_TrimsAndDropsEmpty(t *testing.T) {
	cfg := &Config{AllowedOrigins: " https://a.example.com, ,https://b.example.com "}
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Origins())
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, (&Config{LogLevel: "DEBUG"}).SlogLevel())
	assert.Equal(t, slog.LevelWarn, (&Config{LogLevel: "warn"}).SlogLevel())
	assert.Equal(t, slog.LevelError, (&Config{LogLevel: "error"}).SlogLevel())
	assert.Equal(t, slog.LevelInfo, (&Config{LogLevel: "chatty"}).SlogLevel())
}

func TestLogConfig_DoesNotLogSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	cfg := validConfig()
	cfg.ResendAPIKey = "re_super_secret"
	cfg.APIKey = "admin-secret"
	cfg.LogConfig(logger)

	out := buf.String()
	assert.Contains(t, out, `"provider_credential_set":true`)
	assert.NotContains(t, out, "re_super_secret")
	assert.NotContains(t, out, "admin-secret")
}
