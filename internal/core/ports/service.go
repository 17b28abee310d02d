package ports

import (
	"context"
	"encoding/json"

	"github.com/IANDYI/maternal-care-service/internal/core/domain"
	"github.com/google/uuid"
)

// SymptomService defines the business logic interface for the symptom tracker
type SymptomService interface {
	// SubmitSymptoms validates and stores a raw symptom form, then rates it.
	// High rated conditions are published as a risk alert without blocking.
	SubmitSymptoms(ctx context.Context, userID uuid.UUID, form map[string]json.RawMessage) (*domain.SymptomEntry, domain.RiskAnalysis, error)

	// GetLatest returns the latest entry of the target user.
	// ADMIN may read any user, PATIENT only their own.
	GetLatest(ctx context.Context, requesterID uuid.UUID, isAdmin bool, targetUserID uuid.UUID) (*domain.SymptomEntry, error)

	// ListEntries returns the target user's history, newest first
	ListEntries(ctx context.Context, requesterID uuid.UUID, isAdmin bool, targetUserID uuid.UUID, limit int) ([]*domain.SymptomEntry, error)

	// Analyze rates a form without storing it
	Analyze(form map[string]json.RawMessage) domain.RiskAnalysis
}

// DietService defines the business logic interface for diet recommendations
type DietService interface {
	// PersonalizedPlan evaluates the user's latest symptom entry.
	// Returns domain.ErrNoSymptomData when nothing was submitted yet.
	PersonalizedPlan(ctx context.Context, userID uuid.UUID) (*domain.DietPlan, error)
}

// DoctorService defines the business logic interface for the doctor directory
type DoctorService interface {
	SearchDoctors(ctx context.Context, query string) ([]*domain.Doctor, error)
}

// ContactService defines the business logic interface for emergency contacts
type ContactService interface {
	AddContact(ctx context.Context, userID uuid.UUID, req CreateContactRequest) (*domain.EmergencyContact, error)
	ListContacts(ctx context.Context, userID uuid.UUID) ([]*domain.EmergencyContact, error)
	DeleteContact(ctx context.Context, userID uuid.UUID, contactID uuid.UUID) error
}

// FamilyAlertService defines the business logic interface for family alerts
type FamilyAlertService interface {
	// SendAlert publishes an alert to every contact of the user.
	// Template types fall back to the template message; custom alerts need one.
	SendAlert(ctx context.Context, userID uuid.UUID, alertType domain.AlertType, message string) (*domain.FamilyAlert, error)
}

// CreateContactRequest represents the input for adding an emergency contact
type CreateContactRequest struct {
	Name         string                 `json:"name"`
	Phone        string                 `json:"phone"`
	Email        string                 `json:"email,omitempty"`
	Relationship string                 `json:"relationship,omitempty"`
	Priority     domain.ContactPriority `json:"priority,omitempty"` // Defaults to Secondary
}
