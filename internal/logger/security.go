// Package logger records security-relevant events of the contact relay as
// structured JSON.
package logger

import (
	"log/slog"
	"os"
	"strings"
	"time"
)

// SecurityLogger logs abuse and access-control events. Submission content
// and credentials are never written.
type SecurityLogger struct {
	logger *slog.Logger
}

// NewSecurityLogger creates a SecurityLogger writing JSON to stdout.
func NewSecurityLogger(level slog.Level) *SecurityLogger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	return &SecurityLogger{
		logger: slog.New(handler).With(slog.String("component", "security")),
	}
}

// NewSecurityLoggerWithHandler creates a SecurityLogger with a custom handler.
func NewSecurityLoggerWithHandler(handler slog.Handler) *SecurityLogger {
	return &SecurityLogger{
		logger: slog.New(handler),
	}
}

// HoneypotTriggered logs a submission that filled the hidden field.
func (s *SecurityLogger) HoneypotTriggered(ip, path string) {
	s.logger.Warn("honeypot_triggered",
		slog.String("event_type", "honeypot"),
		slog.String("ip", ip),
		slog.String("path", path),
		slog.Time("timestamp", time.Now().UTC()),
	)
}

// RateLimitExceeded logs when a client exceeds the submission rate.
func (s *SecurityLogger) RateLimitExceeded(ip, path string) {
	s.logger.Warn("rate_limit_exceeded",
		slog.String("event_type", "rate_limit"),
		slog.String("ip", ip),
		slog.String("path", path),
		slog.Time("timestamp", time.Now().UTC()),
	)
}

// AuthFailure logs a failed attempt to reach an owner endpoint.
// Never logs the presented key.
func (s *SecurityLogger) AuthFailure(ip, path, reason string) {
	s.logger.Warn("authentication_failure",
		slog.String("event_type", "auth_failure"),
		slog.String("ip", ip),
		slog.String("path", path),
		slog.String("reason", reason),
		slog.Time("timestamp", time.Now().UTC()),
	)
}

// InvalidOrigin logs a rejected WebSocket upgrade.
func (s *SecurityLogger) InvalidOrigin(ip, origin string) {
	s.logger.Warn("invalid_origin",
		slog.String("event_type", "invalid_origin"),
		slog.String("ip", ip),
		slog.String("origin", origin),
		slog.Time("timestamp", time.Now().UTC()),
	)
}

// DeliveryMisconfigured logs a submission that could not be sent because
// settings are missing. Only the variable names are logged.
func (s *SecurityLogger) DeliveryMisconfigured(ip string, missing []string) {
	s.logger.Error("delivery_misconfigured",
		slog.String("event_type", "misconfigured"),
		slog.String("ip", ip),
		slog.String("missing", strings.Join(missing, ",")),
		slog.Time("timestamp", time.Now().UTC()),
	)
}

// SecurityEvent logs a generic security event.
func (s *SecurityLogger) SecurityEvent(eventType, ip string, details map[string]string) {
	attrs := []any{
		slog.String("event_type", eventType),
		slog.String("ip", ip),
		slog.Time("timestamp", time.Now().UTC()),
	}

	for k, v := range details {
		if isSensitiveKey(k) {
			continue
		}
		attrs = append(attrs, slog.String(k, v))
	}

	s.logger.Warn("security_event", attrs...)
}

// Info logs an informational message.
func (s *SecurityLogger) Info(msg string, args ...any) {
	s.logger.Info(msg, args...)
}

// Error logs an error message.
func (s *SecurityLogger) Error(msg string, args ...any) {
	s.logger.Error(msg, args...)
}

// GetLogger returns the underlying slog.Logger for use with middleware.
func (s *SecurityLogger) GetLogger() *slog.Logger {
	return s.logger
}

var sensitiveKeys = map[string]bool{
	"password":       true,
	"api_key":        true,
	"apikey":         true,
	"resend_api_key": true,
	"token":          true,
	"secret":         true,
	"authorization":  true,
	"auth":           true,
	"credential":     true,
	"credentials":    true,
	"cookie":         true,
	"message":        true,
	"body":           true,
	"email":          true,
}

// isSensitiveKey reports keys that may carry secrets or submission content.
func isSensitiveKey(key string) bool {
	return sensitiveKeys[strings.ToLower(key)]
}
