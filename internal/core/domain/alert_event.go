package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AlertKind discriminates the payload of an AlertEvent
type AlertKind string

const (
	AlertKindRisk   AlertKind = "risk_alert"
	AlertKindFamily AlertKind = "family_alert"
)

// Severity levels carried on alert events
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityInfo     = "info"
)

// AlertEvent is the message carried on the alerts queue.
// Exactly one of Risk or Family is set, matching Kind.
type AlertEvent struct {
	ID        uuid.UUID    `json:"id"`
	Kind      AlertKind    `json:"kind"`
	UserID    uuid.UUID    `json:"user_id"`
	Severity  string       `json:"severity"`
	Timestamp time.Time    `json:"timestamp"`
	Risk      *RiskAlert   `json:"risk,omitempty"`
	Family    *FamilyAlert `json:"family,omitempty"`
}

// NewRiskAlertEvent wraps a risk alert.
// Preeclampsia and miscarriage warnings are critical, other High ratings are high.
func NewRiskAlertEvent(alert *RiskAlert) AlertEvent {
	severity := SeverityHigh
	for _, c := range alert.Conditions {
		if c.Condition == ConditionPreeclampsia || c.Condition == ConditionMiscarriageRisk {
			severity = SeverityCritical
			break
		}
	}
	return AlertEvent{
		ID:        uuid.New(),
		Kind:      AlertKindRisk,
		UserID:    alert.UserID,
		Severity:  severity,
		Timestamp: time.Now().UTC(),
		Risk:      alert,
	}
}

// NewFamilyAlertEvent wraps a family alert
func NewFamilyAlertEvent(alert *FamilyAlert) AlertEvent {
	severity := SeverityInfo
	switch alert.Type {
	case AlertTypeEmergency:
		severity = SeverityCritical
	case AlertTypeHospital:
		severity = SeverityHigh
	}
	return AlertEvent{
		ID:        alert.ID,
		Kind:      AlertKindFamily,
		UserID:    alert.UserID,
		Severity:  severity,
		Timestamp: time.Now().UTC(),
		Family:    alert,
	}
}

// DecodeAlertEvent parses and validates a queue message body
func DecodeAlertEvent(body []byte) (*AlertEvent, error) {
	var event AlertEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("invalid alert event JSON: %w", err)
	}
	if event.UserID == uuid.Nil {
		return nil, fmt.Errorf("alert event is missing user_id")
	}

	switch event.Kind {
	case AlertKindRisk:
		if event.Risk == nil || len(event.Risk.Conditions) == 0 {
			return nil, fmt.Errorf("risk alert event has no conditions")
		}
	case AlertKindFamily:
		if event.Family == nil || len(event.Family.Recipients) == 0 {
			return nil, fmt.Errorf("family alert event has no recipients")
		}
	default:
		return nil, fmt.Errorf("unknown alert kind: %q", event.Kind)
	}
	return &event, nil
}
