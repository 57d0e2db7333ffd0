package provider

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/welldanyogia/webrana-contact-relay/internal/errors"
	"github.com/welldanyogia/webrana-contact-relay/internal/models"
	"github.com/welldanyogia/webrana-contact-relay/internal/storage"
)

// FileDropUnavailable is reported when no drop directory is configured
const FileDropUnavailable = "file_drop_unavailable"

// FileProvider writes each notification as an .eml file into a drop
// directory. Meant for local development.
type FileProvider struct {
	store  storage.FileStorage
	logger *slog.Logger
	now    func() time.Time
}

// NewFileProvider creates a FileProvider backed by store
func NewFileProvider(store storage.FileStorage, logger *slog.Logger) *FileProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileProvider{store: store, logger: logger, now: time.Now}
}

// Name returns the provider name
func (p *FileProvider) Name() string {
	return "file"
}

// Send stores the message and returns its Message-Id
func (p *FileProvider) Send(ctx context.Context, msg *models.NotificationMessage) (string, error) {
	if p.store == nil {
		return "", apperrors.NewProviderError(FileDropUnavailable, "Mail drop directory is not configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	raw, messageID, err := encodeMIME(msg, senderDomain(msg), p.now())
	if err != nil {
		return "", err
	}

	name := strings.SplitN(messageID, "@", 2)[0] + ".eml"
	path, err := p.store.Save(name, bytes.NewReader(raw))
	if err != nil {
		p.logger.Error("failed to write mail drop file", slog.Any("error", err))
		return "", apperrors.NewProviderError(FileDropUnavailable, "Unable to write the message file")
	}

	p.logger.Info("notification written to mail drop",
		slog.String("path", path),
		slog.String("message_id", messageID))

	return messageID, nil
}
