package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/IANDYI/maternal-care-service/internal/core/domain"
	"github.com/IANDYI/maternal-care-service/internal/core/ports"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// maxAlertMessageLength bounds custom alert text
const maxAlertMessageLength = 500

// FamilyAlertService sends alerts to a user's emergency contacts through the broker
type FamilyAlertService struct {
	contactRepo    ports.ContactRepository
	alertPublisher ports.AlertPublisher
	logger         *logrus.Logger
}

// NewFamilyAlertService creates a new family alert service
func NewFamilyAlertService(contactRepo ports.ContactRepository, alertPublisher ports.AlertPublisher, logger *logrus.Logger) *FamilyAlertService {
	return &FamilyAlertService{
		contactRepo:    contactRepo,
		alertPublisher: alertPublisher,
		logger:         logger,
	}
}

// SendAlert publishes an alert addressed to every contact of the user.
// Unlike risk alerts this is synchronous: the caller is told whether the
// broker accepted it.
func (s *FamilyAlertService) SendAlert(ctx context.Context, userID uuid.UUID, alertType domain.AlertType, message string) (*domain.FamilyAlert, error) {
	message = strings.TrimSpace(message)

	if alertType == domain.AlertTypeCustom {
		if message == "" {
			return nil, fmt.Errorf("%w: custom alerts require a message", domain.ErrValidation)
		}
	} else {
		tmpl, ok := domain.TemplateFor(alertType)
		if !ok {
			return nil, fmt.Errorf("%w: unknown alert type: %s", domain.ErrValidation, alertType)
		}
		if message == "" {
			message = tmpl.Message
		}
	}
	if len(message) > maxAlertMessageLength {
		return nil, fmt.Errorf("%w: message exceeds %d characters", domain.ErrValidation, maxAlertMessageLength)
	}

	contacts, err := s.contactRepo.ListContacts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load contacts: %w", err)
	}
	if len(contacts) == 0 {
		return nil, fmt.Errorf("%w: add at least one emergency contact before sending alerts", domain.ErrValidation)
	}

	recipients := make([]domain.EmergencyContact, 0, len(contacts))
	for _, c := range contacts {
		recipients = append(recipients, *c)
	}

	alert := &domain.FamilyAlert{
		ID:         uuid.New(),
		UserID:     userID,
		Type:       alertType,
		Message:    message,
		Recipients: recipients,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.alertPublisher.PublishFamilyAlert(ctx, alert); err != nil {
		return nil, fmt.Errorf("failed to publish family alert: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"event":      "family_alert_published",
		"alert_id":   alert.ID.String(),
		"user_id":    userID.String(),
		"type":       string(alertType),
		"recipients": len(recipients),
	}).Info("family alert published")

	return alert, nil
}
