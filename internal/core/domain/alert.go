package domain

import (
	"time"

	"github.com/google/uuid"
)

// AlertType identifies a family alert
type AlertType string

const (
	AlertTypeEmergency AlertType = "emergency"
	AlertTypeHospital  AlertType = "hospital"
	AlertTypeCheckup   AlertType = "checkup"
	AlertTypeUpdate    AlertType = "update"
	AlertTypeCustom    AlertType = "custom"
)

// AlertTemplate is a predefined quick alert
type AlertTemplate struct {
	Type    AlertType `json:"type"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
}

// AlertTemplates returns the quick alerts offered to users
func AlertTemplates() []AlertTemplate {
	return []AlertTemplate{
		{AlertTypeEmergency, "Emergency Alert", "I need immediate assistance. Please contact me or call emergency services."},
		{AlertTypeHospital, "Going to Hospital", "I'm heading to the hospital. Will update you soon."},
		{AlertTypeCheckup, "Doctor Visit", "At the doctor for routine checkup. Everything is fine."},
		{AlertTypeUpdate, "Health Update", "Sharing a health update with you."},
	}
}

// TemplateFor returns the quick alert for a type
func TemplateFor(alertType AlertType) (AlertTemplate, bool) {
	for _, t := range AlertTemplates() {
		if t.Type == alertType {
			return t, true
		}
	}
	return AlertTemplate{}, false
}

// FamilyAlert is an alert a user sends to all of their emergency contacts
type FamilyAlert struct {
	ID         uuid.UUID          `json:"id"`
	UserID     uuid.UUID          `json:"user_id"`
	Type       AlertType          `json:"type"`
	Message    string             `json:"message"`
	Recipients []EmergencyContact `json:"recipients"`
	CreatedAt  time.Time          `json:"created_at"`
}

// RiskAlert is raised for every High rated condition of a symptom submission
type RiskAlert struct {
	UserID      uuid.UUID    `json:"user_id"`
	EntryID     uuid.UUID    `json:"entry_id"`
	Conditions  []Assessment `json:"conditions"`
	SubmittedAt time.Time    `json:"submitted_at"`
}
