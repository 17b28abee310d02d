package ports

import (
	"context"

	"github.com/IANDYI/maternal-care-service/internal/core/domain"
	"github.com/google/uuid"
)

// SymptomRepository defines the interface for symptom entry persistence
type SymptomRepository interface {
	// CreateEntry stores a symptom submission
	CreateEntry(ctx context.Context, entry *domain.SymptomEntry) error

	// GetLatestEntry returns the user's most recent entry.
	// Ties on submitted_at resolve by id so the result is deterministic.
	// Returns domain.ErrNoSymptomData when the user has no entries.
	GetLatestEntry(ctx context.Context, userID uuid.UUID) (*domain.SymptomEntry, error)

	// ListEntries returns up to limit entries, newest first
	ListEntries(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.SymptomEntry, error)
}

// ContactRepository defines the interface for emergency contact persistence
type ContactRepository interface {
	// CreateContact stores a new emergency contact
	CreateContact(ctx context.Context, contact *domain.EmergencyContact) error

	// ListContacts returns the user's contacts, Primary first
	ListContacts(ctx context.Context, userID uuid.UUID) ([]*domain.EmergencyContact, error)

	// DeleteContact removes a contact owned by the user.
	// Returns domain.ErrNotFound when it does not exist or belongs to someone else.
	DeleteContact(ctx context.Context, contactID uuid.UUID, userID uuid.UUID) error
}

// DoctorRepository defines the interface for the doctor directory
type DoctorRepository interface {
	// ListDoctors returns doctors ordered by name.
	// A non-empty query filters on name, specialization or city.
	ListDoctors(ctx context.Context, query string) ([]*domain.Doctor, error)

	// UpsertDoctor inserts a doctor or updates the one with the same ID
	UpsertDoctor(ctx context.Context, doctor *domain.Doctor) error
}

// AlertPublisher defines the interface for publishing alerts to RabbitMQ
type AlertPublisher interface {
	// PublishRiskAlert publishes the High rated conditions of a submission
	PublishRiskAlert(ctx context.Context, alert *domain.RiskAlert) error

	// PublishFamilyAlert publishes an alert addressed to the user's contacts
	PublishFamilyAlert(ctx context.Context, alert *domain.FamilyAlert) error
}

// AlertDispatcher delivers a consumed alert to its audience
type AlertDispatcher interface {
	// Dispatch returns an error when the alert should be redelivered
	Dispatch(ctx context.Context, event *domain.AlertEvent) error
}
