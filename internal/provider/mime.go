package provider

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhillyerd/enmime"
	"github.com/welldanyogia/webrana-contact-relay/internal/models"
)

// encodeMIME renders msg as a multipart/alternative RFC 5322 message.
// It returns the generated Message-Id without angle brackets.
func encodeMIME(msg *models.NotificationMessage, domain string, now time.Time) ([]byte, string, error) {
	id := uuid.NewString()
	messageID := fmt.Sprintf("%s@%s", id, domain)

	builder := enmime.Builder().
		From(msg.From.Name, msg.From.Address).
		ToAddrs(msg.To).
		Subject(msg.Subject).
		Date(now).
		Header("Message-Id", "<"+messageID+">").
		Text([]byte(msg.Text)).
		HTML([]byte(msg.HTML))

	if msg.ReplyTo.Address != "" {
		builder = builder.ReplyTo(msg.ReplyTo.Name, msg.ReplyTo.Address)
	}

	root, err := builder.Build()
	if err != nil {
		return nil, "", fmt.Errorf("failed to build message: %w", err)
	}

	var buf bytes.Buffer
	if err := root.Encode(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to encode message: %w", err)
	}

	return buf.Bytes(), messageID, nil
}

// senderDomain returns the domain of the From address, used for Message-Id.
func senderDomain(msg *models.NotificationMessage) string {
	addr := msg.From.Address
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == '@' {
			if i+1 < len(addr) {
				return addr[i+1:]
			}
			break
		}
	}
	return "localhost"
}
