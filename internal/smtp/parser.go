package smtp

import (
	"io"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/jhillyerd/enmime"
)

// ParsedEmail is a message accepted by the sink
type ParsedEmail struct {
	MessageID    string
	FromName     string
	FromEmail    string
	ReplyToName  string
	ReplyToEmail string
	To           string
	Subject      string
	Snippet      string
	BodyText     string
	BodyHTML     string

	EnvelopeFrom string
	Recipients   []string
	ReceivedAt   time.Time
}

var (
	scriptStyleRe = regexp.MustCompile(`(?i)<(script|style)[^>]*>[\s\S]*?</(script|style)>`)
	tagRe         = regexp.MustCompile(`<[^>]*>`)
)

// ParseEmail parses an RFC 5322 message
func ParseEmail(r io.Reader) (*ParsedEmail, error) {
	env, err := enmime.ReadEnvelope(r)
	if err != nil {
		return nil, err
	}

	parsed := &ParsedEmail{
		MessageID: strings.Trim(env.GetHeader("Message-Id"), "<> "),
		To:        env.GetHeader("To"),
		Subject:   env.GetHeader("Subject"),
		BodyText:  env.Text,
		BodyHTML:  env.HTML,
	}

	parsed.FromName, parsed.FromEmail = splitAddress(env.GetHeader("From"))
	parsed.ReplyToName, parsed.ReplyToEmail = splitAddress(env.GetHeader("Reply-To"))
	parsed.Snippet = generateSnippet(parsed.BodyText, parsed.BodyHTML)

	return parsed, nil
}

// splitAddress returns the display name and address of a header value,
// or the trimmed raw value as the address when it does not parse.
func splitAddress(header string) (name, email string) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ""
	}
	addr, err := mail.ParseAddress(header)
	if err != nil {
		return "", header
	}
	return addr.Name, addr.Address
}

// generateSnippet creates a single-line preview of the body
func generateSnippet(bodyText, bodyHTML string) string {
	text := bodyText
	if text == "" && bodyHTML != "" {
		text = stripHTMLTags(bodyHTML)
	}

	text = strings.Join(strings.Fields(text), " ")

	if runes := []rune(text); len(runes) > 160 {
		text = string(runes[:157]) + "..."
	}

	return text
}

func stripHTMLTags(html string) string {
	html = scriptStyleRe.ReplaceAllString(html, "")
	html = tagRe.ReplaceAllString(html, " ")

	return strings.NewReplacer(
		"&nbsp;", " ",
		"&lt;", "<",
		"&gt;", ">",
		"&#34;", `"`,
		"&quot;", `"`,
		"&#39;", "'",
		"&amp;", "&",
	).Replace(html)
}
