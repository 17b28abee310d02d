package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/IANDYI/maternal-care-service/internal/core/domain"
	"github.com/IANDYI/maternal-care-service/internal/core/ports"
	"github.com/google/uuid"
)

// CreateContactRequest is imported from ports package
type CreateContactRequest = ports.CreateContactRequest

// Phone numbers need at least this many digits
const minPhoneDigits = 7

// ContactService manages a user's emergency contacts
type ContactService struct {
	contactRepo ports.ContactRepository
}

// NewContactService creates a new contact service
func NewContactService(contactRepo ports.ContactRepository) *ContactService {
	return &ContactService{contactRepo: contactRepo}
}

// AddContact validates and stores a contact owned by the user
func (s *ContactService) AddContact(ctx context.Context, userID uuid.UUID, req CreateContactRequest) (*domain.EmergencyContact, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: contact name cannot be empty", domain.ErrValidation)
	}
	phone := strings.TrimSpace(req.Phone)
	if err := validatePhone(phone); err != nil {
		return nil, err
	}

	priority := req.Priority
	if priority == "" {
		priority = domain.PrioritySecondary
	}
	if !domain.IsValidContactPriority(priority) {
		return nil, fmt.Errorf("%w: invalid priority: %s", domain.ErrValidation, priority)
	}

	contact := &domain.EmergencyContact{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         name,
		Phone:        phone,
		Email:        strings.TrimSpace(req.Email),
		Relationship: strings.TrimSpace(req.Relationship),
		Priority:     priority,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.contactRepo.CreateContact(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	return contact, nil
}

// ListContacts returns the user's contacts
func (s *ContactService) ListContacts(ctx context.Context, userID uuid.UUID) ([]*domain.EmergencyContact, error) {
	contacts, err := s.contactRepo.ListContacts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	if contacts == nil {
		contacts = []*domain.EmergencyContact{}
	}
	return contacts, nil
}

// DeleteContact removes a contact owned by the user
func (s *ContactService) DeleteContact(ctx context.Context, userID uuid.UUID, contactID uuid.UUID) error {
	if err := s.contactRepo.DeleteContact(ctx, contactID, userID); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	return nil
}

// validatePhone accepts digits with optional +, spaces, dashes and parentheses
func validatePhone(phone string) error {
	if phone == "" {
		return fmt.Errorf("%w: contact phone cannot be empty", domain.ErrValidation)
	}
	digits := 0
	for i, r := range phone {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return fmt.Errorf("%w: invalid phone number: %s", domain.ErrValidation, phone)
		}
	}
	if digits < minPhoneDigits {
		return fmt.Errorf("%w: phone number must have at least %d digits", domain.ErrValidation, minPhoneDigits)
	}
	return nil
}
