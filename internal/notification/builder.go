// Package notification renders contact submissions into the email the
// site owner receives.
package notification

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"net/mail"
	"strings"
	texttemplate "text/template"

	"github.com/welldanyogia/webrana-contact-relay/internal/models"
	"github.com/welldanyogia/webrana-contact-relay/internal/validator"
)

// DefaultSubject is used when the submitter leaves the subject empty
const DefaultSubject = "New message from portfolio"

const preamble = "You received a new message through the portfolio contact form."

const textBody = `{{.Preamble}}

Name:    {{.Name}}
Email:   {{.Email}}
Subject: {{.Subject}}

{{.Message}}

--
Replies to this email go directly to {{.Name}} <{{.Email}}>.
`

const htmlBody = `<!doctype html>
<html>
<body style="font-family:system-ui,-apple-system,Segoe UI,Roboto,sans-serif;line-height:1.5;color:#111">
<p>{{.Preamble}}</p>
<table cellpadding="4" style="border-collapse:collapse">
<tr><td><strong>Name</strong></td><td>{{.Name}}</td></tr>
<tr><td><strong>Email</strong></td><td>{{.Email}}</td></tr>
<tr><td><strong>Subject</strong></td><td>{{.Subject}}</td></tr>
</table>
<div style="margin-top:16px;white-space:normal">{{range $i, $line := .MessageLines}}{{if $i}}<br>
{{end}}{{$line}}{{end}}</div>
<hr>
<p style="color:#666;font-size:12px">Replies to this email go directly to {{.Name}} &lt;{{.Email}}&gt;.</p>
</body>
</html>
`

var (
	textTmpl = texttemplate.Must(texttemplate.New("text").Parse(textBody))
	htmlTmpl = htmltemplate.Must(htmltemplate.New("html").Parse(htmlBody))
)

// Builder turns a validated submission into a NotificationMessage
type Builder struct {
	from mail.Address
	to   mail.Address
}

// NewBuilder creates a Builder. from and to are RFC 5322 addresses,
// e.g. "Portfolio <onboarding@resend.dev>".
func NewBuilder(from, to string) (*Builder, error) {
	fromAddr, err := mail.ParseAddress(from)
	if err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	toAddr, err := mail.ParseAddress(to)
	if err != nil {
		return nil, fmt.Errorf("invalid destination address: %w", err)
	}
	return &Builder{from: *fromAddr, to: *toAddr}, nil
}

type templateData struct {
	Preamble     string
	Name         string
	Email        string
	Subject      string
	Message      string
	MessageLines []string
}

// Build renders both bodies. The caller is expected to have validated
// presence and shape already; Build only normalizes and bounds lengths.
func (b *Builder) Build(req *models.SubmissionRequest) (*models.NotificationMessage, error) {
	name := validator.SanitizeString(req.Name, validator.MaxNameLength)
	email := strings.TrimSpace(req.Email)

	subject := validator.SanitizeString(req.Subject, validator.MaxSubjectLength)
	if subject == "" {
		subject = DefaultSubject
	}

	message := validator.SanitizeBody(req.Message)

	data := templateData{
		Preamble:     preamble,
		Name:         name,
		Email:        email,
		Subject:      subject,
		Message:      message,
		MessageLines: strings.Split(message, "\n"),
	}

	var text bytes.Buffer
	if err := textTmpl.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("failed to render text body: %w", err)
	}

	var html bytes.Buffer
	if err := htmlTmpl.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("failed to render html body: %w", err)
	}

	return &models.NotificationMessage{
		From:    b.from,
		To:      []mail.Address{b.to},
		ReplyTo: mail.Address{Name: name, Address: email},
		Subject: subject,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
