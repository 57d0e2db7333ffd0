package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/welldanyogia/webrana-contact-relay/internal/config"
	apperrors "github.com/welldanyogia/webrana-contact-relay/internal/errors"
	"github.com/welldanyogia/webrana-contact-relay/internal/logger"
	"github.com/welldanyogia/webrana-contact-relay/internal/models"
	"github.com/welldanyogia/webrana-contact-relay/internal/notification"
	"github.com/welldanyogia/webrana-contact-relay/internal/provider"
	"github.com/welldanyogia/webrana-contact-relay/internal/repository"
	"github.com/welldanyogia/webrana-contact-relay/internal/validator"
	"github.com/welldanyogia/webrana-contact-relay/internal/websocket"
)

// User-facing failure messages
const (
	MsgMissingFields = "Missing fields"
	MsgInvalidEmail  = "Invalid email address"
	MsgMisconfigured = "Server misconfigured: missing"
	MsgSendFailed    = "Failed to send"
)

// ledgerTimeout bounds a ledger write after the response is decided
const ledgerTimeout = 3 * time.Second

// DeliveryPublisher receives every processed submission for the live feed
type DeliveryPublisher interface {
	BroadcastDelivery(status string, payload *websocket.DeliveryPayload)
}

// ContactService defines the relay pipeline
type ContactService interface {
	// Submit runs honeypot, validation, configuration check, build and
	// send. Every failure is returned as *apperrors.AppError.
	Submit(ctx context.Context, req *models.SubmissionRequest, remoteIP string) (*models.SubmissionResult, error)

	// Probe reports whether delivery is configured without revealing values
	Probe() *models.ProbeResult
}

// ContactServiceConfig holds the collaborators of the contact service.
// Ledger, Publisher and Security are optional.
type ContactServiceConfig struct {
	Config    *config.Config
	Provider  provider.Provider
	Ledger    repository.DeliveryRepository
	Publisher DeliveryPublisher
	Security  *logger.SecurityLogger
	Logger    *slog.Logger
}

type contactService struct {
	cfg       *config.Config
	provider  provider.Provider
	ledger    repository.DeliveryRepository
	publisher DeliveryPublisher
	security  *logger.SecurityLogger
	logger    *slog.Logger
}

// NewContactService creates a new ContactService instance
func NewContactService(cfg *ContactServiceConfig) ContactService {
	l := cfg.Logger
	if l == nil {
		l = slog.Default()
	}
	return &contactService{
		cfg:       cfg.Config,
		provider:  cfg.Provider,
		ledger:    cfg.Ledger,
		publisher: cfg.Publisher,
		security:  cfg.Security,
		logger:    l,
	}
}

// Submit processes one contact form submission
func (s *contactService) Submit(ctx context.Context, req *models.SubmissionRequest, remoteIP string) (result *models.SubmissionResult, err error) {
	if req == nil {
		req = &models.SubmissionRequest{}
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic while processing submission", slog.Any("panic", r))
			appErr := NormalizeFailure(apperrors.FromPanic(r))
			s.record(ctx, req, remoteIP, models.DeliveryStatusFailed, "", appErr)
			result, err = nil, appErr
		}
	}()

	// Bots fill the hidden field; they get a success answer and nothing is sent.
	if req.Website != "" {
		if s.security != nil {
			s.security.HoneypotTriggered(remoteIP, "/api/contact")
		}
		s.record(ctx, nil, remoteIP, models.DeliveryStatusTrapped, "", nil)
		return &models.SubmissionResult{Trapped: true}, nil
	}

	if appErr := validateSubmission(req); appErr != nil {
		s.record(ctx, req, remoteIP, models.DeliveryStatusRejected, "", appErr)
		return nil, appErr
	}

	if missing := s.cfg.MissingDelivery(); len(missing) > 0 {
		if s.security != nil {
			s.security.DeliveryMisconfigured(remoteIP, missing)
		}
		appErr := apperrors.NewAppError(apperrors.ErrMisconfigured,
			fmt.Sprintf("%s %s", MsgMisconfigured, strings.Join(missing, "/")),
			apperrors.CodeMisconfigured)
		s.record(ctx, req, remoteIP, models.DeliveryStatusFailed, "", appErr)
		return nil, appErr
	}

	builder, err := notification.NewBuilder(s.cfg.FromEmail, s.cfg.ToEmail)
	if err != nil {
		appErr := NormalizeFailure(err)
		s.record(ctx, req, remoteIP, models.DeliveryStatusFailed, "", appErr)
		return nil, appErr
	}

	msg, err := builder.Build(req)
	if err != nil {
		appErr := NormalizeFailure(err)
		s.record(ctx, req, remoteIP, models.DeliveryStatusFailed, "", appErr)
		return nil, appErr
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
	defer cancel()

	id, err := s.provider.Send(sendCtx, msg)
	if err != nil {
		appErr := NormalizeFailure(err)
		s.logger.Warn("notification not delivered",
			slog.String("provider", s.provider.Name()),
			slog.String("code", appErr.Code))
		s.record(ctx, req, remoteIP, models.DeliveryStatusFailed, "", appErr)
		return nil, appErr
	}

	s.logger.Info("notification delivered",
		slog.String("provider", s.provider.Name()),
		slog.String("id", id))
	s.record(ctx, req, remoteIP, models.DeliveryStatusSent, id, nil)

	return &models.SubmissionResult{ID: id}, nil
}

// Probe reports configuration presence
func (s *contactService) Probe() *models.ProbeResult {
	probe := &models.ProbeResult{HasKey: s.cfg.HasProviderCredential()}
	if s.cfg.ToEmail != "" {
		probe.To = models.ProbeConfigured
	}
	return probe
}

// validateSubmission checks presence of the required fields, then the
// email shape.
func validateSubmission(req *models.SubmissionRequest) *apperrors.AppError {
	var missing []string
	if validator.IsBlank(req.Name) {
		missing = append(missing, "name")
	}
	if validator.IsBlank(req.Email) {
		missing = append(missing, "email")
	}
	if validator.IsBlank(req.Message) {
		missing = append(missing, "message")
	}
	if len(missing) > 0 {
		return apperrors.NewAppError(apperrors.ErrInvalidInput,
			fmt.Sprintf("%s: %s", MsgMissingFields, strings.Join(missing, ", ")),
			apperrors.CodeInvalidInput)
	}

	if err := validator.ValidateEmail(req.Email); err != nil {
		return apperrors.NewAppError(apperrors.ErrInvalidInput, MsgInvalidEmail, apperrors.CodeInvalidInput)
	}

	return nil
}

// NormalizeFailure maps any failure to the shape returned to the client.
// The mapping depends only on the error value, so a returned error and a
// panic carrying the same value normalize identically.
func NormalizeFailure(err error) *apperrors.AppError {
	if err == nil {
		err = apperrors.ErrInternal
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code != "" {
		return appErr
	}

	if providerErr := apperrors.GetProviderError(err); providerErr != nil {
		code := providerErr.Name
		if code == "" {
			code = apperrors.CodeProviderError
		}
		message := providerErr.Message
		if message == "" {
			message = MsgSendFailed
		}
		return apperrors.NewAppError(err, message, code)
	}

	message := err.Error()
	if message == "" {
		message = MsgSendFailed
	}
	return apperrors.NewAppError(err, message, apperrors.CodeInternalError)
}

// record writes the ledger row and publishes the event. Failures here are
// logged and never change the submitter's result.
func (s *contactService) record(ctx context.Context, req *models.SubmissionRequest, remoteIP, status, providerID string, failure *apperrors.AppError) {
	if s.ledger == nil && s.publisher == nil {
		return
	}

	delivery := &models.Delivery{
		Status:     status,
		Provider:   s.provider.Name(),
		ProviderID: providerID,
		RemoteIP:   remoteIP,
		CreatedAt:  time.Now().UTC(),
	}
	if req != nil {
		delivery.SenderName = validator.SanitizeString(req.Name, validator.MaxNameLength)
		delivery.SenderEmail = validator.SanitizeString(req.Email, validator.MaxEmailLength)
		delivery.Subject = validator.SanitizeString(req.Subject, validator.MaxSubjectLength)
	}
	if failure != nil {
		delivery.ErrorCode = failure.Code
		delivery.ErrorMessage = failure.Message
	}

	if s.ledger != nil {
		ledgerCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ledgerTimeout)
		err := s.ledger.Create(ledgerCtx, delivery)
		cancel()
		if err != nil {
			s.logger.Error("failed to record delivery",
				slog.String("status", status),
				slog.Any("error", err))
		}
	}

	if s.publisher != nil {
		s.publisher.BroadcastDelivery(status, &websocket.DeliveryPayload{
			ID:         delivery.ID,
			Provider:   delivery.Provider,
			ProviderID: delivery.ProviderID,
			SenderName: delivery.SenderName,
			Subject:    delivery.Subject,
			ErrorCode:  delivery.ErrorCode,
			CreatedAt:  delivery.CreatedAt.Format(time.RFC3339),
		})
	}
}
