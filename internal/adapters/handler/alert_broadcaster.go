package handler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IANDYI/maternal-care-service/internal/core/domain"
	"github.com/IANDYI/maternal-care-service/internal/core/ports"
	"github.com/sirupsen/logrus"
)

// AlertSink delivers an encoded alert to the live sessions that may see it
type AlertSink interface {
	SendAlert(patientID string, message []byte) int
}

// AlertBroadcaster is the consumer side dispatcher. Family alerts are handed
// to each contact (logged, since phone and SMS delivery live elsewhere) and
// every alert is pushed to connected dashboards.
type AlertBroadcaster struct {
	sink   AlertSink
	logger *logrus.Logger
}

// NewAlertBroadcaster creates a new broadcaster
func NewAlertBroadcaster(sink AlertSink, logger *logrus.Logger) *AlertBroadcaster {
	return &AlertBroadcaster{
		sink:   sink,
		logger: logger,
	}
}

// Dispatch delivers one alert event. No connected client is not an error.
func (b *AlertBroadcaster) Dispatch(ctx context.Context, event *domain.AlertEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	message, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode alert event: %w", err)
	}

	if event.Kind == domain.AlertKindFamily && event.Family != nil {
		for _, contact := range event.Family.Recipients {
			b.logger.WithFields(logrus.Fields{
				"event":        "family_alert_dispatched",
				"alert_id":     event.ID.String(),
				"user_id":      event.UserID.String(),
				"contact_id":   contact.ID.String(),
				"contact_name": contact.Name,
				"priority":     string(contact.Priority),
				"phone":        maskPhone(contact.Phone),
			}).Info("family alert dispatched to contact")
		}
	}

	sent := b.sink.SendAlert(event.UserID.String(), message)
	observeBroadcast(string(event.Kind), event.Severity, sent)

	b.logger.WithFields(logrus.Fields{
		"event":    "alert_broadcast",
		"alert_id": event.ID.String(),
		"kind":     string(event.Kind),
		"severity": event.Severity,
		"user_id":  event.UserID.String(),
		"clients":  sent,
	}).Info("alert broadcast")
	return nil
}

// maskPhone keeps the last four digits of a phone number
func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	return "****" + phone[len(phone)-4:]
}

var _ ports.AlertDispatcher = (*AlertBroadcaster)(nil)
