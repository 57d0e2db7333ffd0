// Package contactform is the client side of the contact pipeline: form
// state, validation, submission and transient notifications.
package contactform

import (
	"github.com/welldanyogia/webrana-contact-relay/internal/models"
	"github.com/welldanyogia/webrana-contact-relay/internal/validator"
)

// DefaultSubject pre-fills the subject field
const DefaultSubject = "Let's build something"

// Form field names accepted by UpdateField
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldSubject = "subject"
	FieldMessage = "message"
	FieldWebsite = "website"
)

// User-facing messages
const (
	MsgMissingFields = "Please fill in name, email, and message."
	MsgInvalidEmail  = "Please enter a valid email address."
	MsgSent          = "Message sent. I'll reply soon!"
	MsgNetworkError  = "Network error. Try again later."
	MsgSendFailed    = "Failed to send"
)

// Form holds the editable submission fields. Website is the honeypot and
// stays empty for humans.
type Form struct {
	Name    string `yaml:"name"`
	Email   string `yaml:"email"`
	Subject string `yaml:"subject"`
	Message string `yaml:"message"`
	Website string `yaml:"-"`
}

// NewForm returns the initial form values
func NewForm() Form {
	return Form{Subject: DefaultSubject}
}

// Set assigns a field by name and reports whether the name is known
func (f *Form) Set(field, value string) bool {
	switch field {
	case FieldName:
		f.Name = value
	case FieldEmail:
		f.Email = value
	case FieldSubject:
		f.Subject = value
	case FieldMessage:
		f.Message = value
	case FieldWebsite:
		f.Website = value
	default:
		return false
	}
	return true
}

// Request snapshots the form into the wire payload
func (f Form) Request() *models.SubmissionRequest {
	return &models.SubmissionRequest{
		Name:    f.Name,
		Email:   f.Email,
		Subject: f.Subject,
		Message: f.Message,
		Website: f.Website,
	}
}

// ValidationResult is the outcome of client-side validation
type ValidationResult struct {
	Valid   bool
	Message string
}

// Validate checks presence, then email shape, and reports the first
// violated rule. The honeypot is never checked here.
func Validate(f Form) ValidationResult {
	if validator.IsBlank(f.Name) || validator.IsBlank(f.Email) || validator.IsBlank(f.Message) {
		return ValidationResult{Message: MsgMissingFields}
	}
	if !validator.IsEmailShape(f.Email) {
		return ValidationResult{Message: MsgInvalidEmail}
	}
	return ValidationResult{Valid: true}
}
