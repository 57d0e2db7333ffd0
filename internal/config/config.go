package config

import (
	"fmt"
	"log/slog"
	"net/mail"
	"os"
	"strconv"
	"strings"
	"time"
)

// Supported email providers
const (
	ProviderResend = "resend"
	ProviderSMTP   = "smtp"
	ProviderFile   = "file"
)

// Default values
const (
	DefaultFromAddress  = "Portfolio <onboarding@resend.dev>"
	DefaultResendAPIURL = "https://api.resend.com"
	DefaultSendTimeout  = 10 * time.Second
)

// Config holds all configuration for the application
type Config struct {
	// Delivery
	EmailProvider string
	ResendAPIKey  string
	ResendAPIURL  string
	ToEmail       string
	FromEmail     string
	SendTimeout   time.Duration

	// SMTP provider
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string

	// File provider
	MailDropPath string

	// Server
	APIPort int

	// Delivery ledger (optional)
	DatabaseURL string

	// Local SMTP sink for development (optional)
	MailSinkAddr   string
	MailSinkDomain string

	// Logging
	LogLevel string

	// Security
	APIKey         string
	AllowedOrigins string
	AppEnv         string

	// Rate Limiting
	RateLimitRequests float64
	RateLimitBurst    int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}

	// EMAIL_PROVIDER (default: resend)
	cfg.EmailProvider = strings.ToLower(strings.TrimSpace(os.Getenv("EMAIL_PROVIDER")))
	if cfg.EmailProvider == "" {
		cfg.EmailProvider = ProviderResend
	}

	// Credential and destination are optional at load time: their absence
	// is reported per request as a server misconfiguration.
	cfg.ResendAPIKey = strings.TrimSpace(os.Getenv("RESEND_API_KEY"))
	cfg.ToEmail = strings.TrimSpace(os.Getenv("TO_EMAIL"))

	cfg.ResendAPIURL = os.Getenv("RESEND_API_URL")
	if cfg.ResendAPIURL == "" {
		cfg.ResendAPIURL = DefaultResendAPIURL
	}

	cfg.FromEmail = os.Getenv("FROM_EMAIL")
	if cfg.FromEmail == "" {
		cfg.FromEmail = DefaultFromAddress
	}

	// SEND_TIMEOUT (default: 10s)
	if timeout := os.Getenv("SEND_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("SEND_TIMEOUT must be a valid duration: %w", err)
		}
		cfg.SendTimeout = d
	} else {
		cfg.SendTimeout = DefaultSendTimeout
	}

	cfg.SMTPHost = os.Getenv("SMTP_HOST")
	cfg.SMTPUsername = os.Getenv("SMTP_USERNAME")
	cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")

	// SMTP_PORT (default: 587)
	smtpPort := os.Getenv("SMTP_PORT")
	if smtpPort == "" {
		cfg.SMTPPort = 587
	} else {
		port, err := strconv.Atoi(smtpPort)
		if err != nil {
			return nil, fmt.Errorf("SMTP_PORT must be a valid integer: %w", err)
		}
		cfg.SMTPPort = port
	}

	cfg.MailDropPath = os.Getenv("MAIL_DROP_PATH")

	// API_PORT (default: 8080)
	apiPort := os.Getenv("API_PORT")
	if apiPort == "" {
		cfg.APIPort = 8080
	} else {
		port, err := strconv.Atoi(apiPort)
		if err != nil {
			return nil, fmt.Errorf("API_PORT must be a valid integer: %w", err)
		}
		cfg.APIPort = port
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	cfg.MailSinkAddr = os.Getenv("MAIL_SINK_ADDR")
	cfg.MailSinkDomain = os.Getenv("MAIL_SINK_DOMAIN")
	if cfg.MailSinkDomain == "" {
		cfg.MailSinkDomain = "localhost"
	}

	// LOG_LEVEL (default: info)
	cfg.LogLevel = os.Getenv("LOG_LEVEL")
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	// Security configuration
	cfg.APIKey = os.Getenv("API_KEY")
	cfg.AllowedOrigins = os.Getenv("ALLOWED_ORIGINS")
	cfg.AppEnv = os.Getenv("APP_ENV")
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}

	// Rate limiting configuration
	if rps := os.Getenv("RATE_LIMIT_REQUESTS"); rps != "" {
		if v, err := strconv.ParseFloat(rps, 64); err == nil {
			cfg.RateLimitRequests = v
		}
	} else {
		cfg.RateLimitRequests = 1.0
	}

	if burst := os.Getenv("RATE_LIMIT_BURST"); burst != "" {
		if v, err := strconv.Atoi(burst); err == nil {
			cfg.RateLimitBurst = v
		}
	} else {
		cfg.RateLimitBurst = 5
	}

	return cfg, nil
}

// LoadWithValidation loads and validates configuration, failing fast on errors
func LoadWithValidation() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Production-specific validation
	if cfg.AppEnv == "production" {
		if err := cfg.ValidateProduction(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks if the configuration is valid. Missing delivery settings
// are not an error here; the relay reports them per submission.
func (c *Config) Validate() error {
	switch c.EmailProvider {
	case ProviderResend, ProviderSMTP, ProviderFile:
	default:
		return fmt.Errorf("EMAIL_PROVIDER must be one of resend, smtp, file; got %q", c.EmailProvider)
	}
	if _, err := mail.ParseAddress(c.FromEmail); err != nil {
		return fmt.Errorf("FROM_EMAIL is not a valid address: %w", err)
	}
	if c.ToEmail != "" {
		if _, err := mail.ParseAddress(c.ToEmail); err != nil {
			return fmt.Errorf("TO_EMAIL is not a valid address: %w", err)
		}
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("APIPort must be between 1 and 65535")
	}
	if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
		return fmt.Errorf("SMTPPort must be between 1 and 65535")
	}
	if c.SendTimeout <= 0 {
		return fmt.Errorf("SendTimeout must be positive")
	}
	return nil
}

// ValidateProduction performs additional validation for production environment
func (c *Config) ValidateProduction() error {
	if c.APIKey == "" {
		return fmt.Errorf("API_KEY is required in production")
	}

	if c.AllowedOrigins == "" {
		return fmt.Errorf("ALLOWED_ORIGINS is required in production")
	}

	// Check for wildcard in production
	if strings.Contains(c.AllowedOrigins, "*") {
		return fmt.Errorf("wildcard (*) origins are not allowed in production")
	}

	if c.EmailProvider == ProviderFile {
		return fmt.Errorf("EMAIL_PROVIDER=file is not allowed in production")
	}

	if c.MailSinkAddr != "" {
		return fmt.Errorf("MAIL_SINK_ADDR must not be set in production")
	}

	// Check for sslmode=disable in database URL
	if strings.Contains(c.DatabaseURL, "sslmode=disable") {
		return fmt.Errorf("sslmode=disable is not allowed in production")
	}

	return nil
}

// HasProviderCredential reports whether the selected provider has what it
// needs to authenticate or deliver.
func (c *Config) HasProviderCredential() bool {
	switch c.EmailProvider {
	case ProviderSMTP:
		return c.SMTPHost != ""
	case ProviderFile:
		return c.MailDropPath != ""
	default:
		return c.ResendAPIKey != ""
	}
}

// CredentialEnv names the environment variable holding the provider credential.
func (c *Config) CredentialEnv() string {
	switch c.EmailProvider {
	case ProviderSMTP:
		return "SMTP_HOST"
	case ProviderFile:
		return "MAIL_DROP_PATH"
	default:
		return "RESEND_API_KEY"
	}
}

// MissingDelivery lists the environment variables that must be set before
// the relay can attempt delivery. Empty when fully configured.
func (c *Config) MissingDelivery() []string {
	var missing []string
	if !c.HasProviderCredential() {
		missing = append(missing, c.CredentialEnv())
	}
	if c.ToEmail == "" {
		missing = append(missing, "TO_EMAIL")
	}
	return missing
}

// SMTPAddr returns host:port for the SMTP provider
func (c *Config) SMTPAddr() string {
	return fmt.Sprintf("%s:%d", c.SMTPHost, c.SMTPPort)
}

// Origins splits ALLOWED_ORIGINS into trimmed, non-empty entries
func (c *Config) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// SlogLevel maps LOG_LEVEL to a slog.Level
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogConfig logs configuration values (excluding secrets)
func (c *Config) LogConfig(logger *slog.Logger) {
	logger.Info("configuration loaded",
		slog.Int("api_port", c.APIPort),
		slog.String("email_provider", c.EmailProvider),
		slog.Bool("provider_credential_set", c.HasProviderCredential()),
		slog.Bool("to_email_set", c.ToEmail != ""),
		slog.String("from_email", c.FromEmail),
		slog.Duration("send_timeout", c.SendTimeout),
		slog.Bool("ledger_enabled", c.DatabaseURL != ""),
		slog.String("mail_sink_addr", c.MailSinkAddr),
		slog.String("log_level", c.LogLevel),
		slog.String("app_env", c.AppEnv),
		slog.Bool("api_key_set", c.APIKey != ""),
		slog.Bool("allowed_origins_set", c.AllowedOrigins != ""),
		slog.Float64("rate_limit_rps", c.RateLimitRequests),
		slog.Int("rate_limit_burst", c.RateLimitBurst),
	)
}
