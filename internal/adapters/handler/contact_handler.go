package handler

import (
	"net/http"

	"github.com/IANDYI/maternal-care-service/internal/core/domain"
	"github.com/IANDYI/maternal-care-service/internal/core/ports"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ContactHandler handles emergency contact endpoints.
// Every route is scoped to the caller's own contacts.
type ContactHandler struct {
	contactService ports.ContactService
	logger         *logrus.Logger
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contactService ports.ContactService, logger *logrus.Logger) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		logger:         logger,
	}
}

// ContactsResponse lists the caller's contacts
type ContactsResponse struct {
	Contacts []*domain.EmergencyContact `json:"contacts"`
	Count    int                        `json:"count"`
}

// Create handles POST /contacts
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	scope := newScope(h.logger, w, r)
	if !scope.authenticate(w) {
		return
	}

	var req ports.CreateContactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		scope.reject(w, http.StatusBadRequest, "invalid request body")
		return
	}

	contact, err := h.contactService.AddContact(r.Context(), scope.userID, req)
	if err != nil {
		scope.fail(w, err)
		return
	}

	scope.respond(w, http.StatusCreated, contact)
}

// List handles GET /contacts
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	scope := newScope(h.logger, w, r)
	if !scope.authenticate(w) {
		return
	}

	contacts, err := h.contactService.ListContacts(r.Context(), scope.userID)
	if err != nil {
		scope.fail(w, err)
		return
	}
	if contacts == nil {
		contacts = []*domain.EmergencyContact{}
	}

	scope.respond(w, http.StatusOK, ContactsResponse{Contacts: contacts, Count: len(contacts)})
}

// Delete handles DELETE /contacts/{contact_id}
// Someone else's contact answers 404
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	scope := newScope(h.logger, w, r)
	if !scope.authenticate(w) {
		return
	}

	contactID, err := uuid.Parse(r.PathValue("contact_id"))
	if err != nil {
		scope.reject(w, http.StatusBadRequest, "invalid contact ID")
		return
	}

	if err := h.contactService.DeleteContact(r.Context(), scope.userID, contactID); err != nil {
		scope.fail(w, err)
		return
	}

	scope.noContent(w)
}
