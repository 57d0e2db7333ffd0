// Package validator provides input validation and sanitization functions
// shared by the contact relay and the contact form client.
package validator

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation errors
var (
	ErrInvalidEmail = errors.New("invalid email format")
	ErrInputTooLong = errors.New("input exceeds maximum length")
	ErrEmptyInput   = errors.New("input cannot be empty")
)

// Field length limits applied when building notifications
const (
	MaxNameLength    = 120
	MaxSubjectLength = 160
	MaxEmailLength   = 254
)

// emailRegex is the local-part@domain.tld shape the contact form accepts:
// no whitespace, exactly one @, at least one dot in the domain.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail validates the contact address shape.
// Returns nil if valid, or an appropriate error.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)

	if email == "" {
		return ErrEmptyInput
	}

	// RFC 5321 specifies max email length of 254 characters
	if utf8.RuneCountInString(email) > MaxEmailLength {
		return ErrInputTooLong
	}

	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}

	return nil
}

// IsEmailShape reports whether email looks like local@domain.tld. Unlike
// ValidateEmail it applies no length limit.
func IsEmailShape(email string) bool {
	return emailRegex.MatchString(strings.TrimSpace(email))
}

// IsBlank reports whether the input is empty after trimming whitespace.
func IsBlank(input string) bool {
	return strings.TrimSpace(input) == ""
}

// Pagination constants
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ValidatePagination validates and sanitizes pagination parameters.
// Returns sanitized limit and offset values.
func ValidatePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}

// SanitizeString removes control characters, trims whitespace and enforces
// a rune length limit. Used for values that end up in mail headers.
func SanitizeString(input string, maxLength int) string {
	// Remove control characters (ASCII 0-31 and 127)
	input = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, input)

	input = strings.TrimSpace(input)

	return Truncate(input, maxLength)
}

// SanitizeBody normalizes line endings and strips control characters other
// than newline and tab from a multi-line message body.
func SanitizeBody(input string) string {
	input = strings.ReplaceAll(input, "\r\n", "\n")
	input = strings.ReplaceAll(input, "\r", "\n")
	input = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, input)
	return strings.TrimSpace(input)
}

// Truncate cuts input to at most maxLength runes. A non-positive limit
// leaves the input unchanged.
func Truncate(input string, maxLength int) string {
	if maxLength > 0 && utf8.RuneCountInString(input) > maxLength {
		runes := []rune(input)
		input = string(runes[:maxLength])
	}
	return input
}

