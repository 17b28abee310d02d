package domain

import (
	"time"

	"github.com/google/uuid"
)

// ContactPriority ranks an emergency contact
type ContactPriority string

const (
	PriorityPrimary   ContactPriority = "Primary"
	PrioritySecondary ContactPriority = "Secondary"
	PriorityEmergency ContactPriority = "Emergency"
)

// EmergencyContact is a family member or friend who receives alerts
type EmergencyContact struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"` // Owner, from JWT sub
	Name         string          `json:"name"`
	Phone        string          `json:"phone"`
	Email        string          `json:"email,omitempty"`
	Relationship string          `json:"relationship,omitempty"`
	Priority     ContactPriority `json:"priority"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ValidContactPriorities returns all valid contact priorities
func ValidContactPriorities() []ContactPriority {
	return []ContactPriority{
		PriorityPrimary,
		PrioritySecondary,
		PriorityEmergency,
	}
}

// IsValidContactPriority checks if a priority is valid
func IsValidContactPriority(priority ContactPriority) bool {
	for _, p := range ValidContactPriorities() {
		if p == priority {
			return true
		}
	}
	return false
}
