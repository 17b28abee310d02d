package handler

import (
	"net/http"

	"github.com/IANDYI/maternal-care-service/internal/core/domain"
	"github.com/IANDYI/maternal-care-service/internal/core/ports"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AlertHandler handles family alert endpoints
type AlertHandler struct {
	familyAlertService ports.FamilyAlertService
	logger             *logrus.Logger
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(familyAlertService ports.FamilyAlertService, logger *logrus.Logger) *AlertHandler {
	return &AlertHandler{
		familyAlertService: familyAlertService,
		logger:             logger,
	}
}

// SendAlertRequest is the body of POST /alerts
type SendAlertRequest struct {
	Type    domain.AlertType `json:"type"`
	Message string           `json:"message"`
}

// SendAlertResponse acknowledges a queued alert
type SendAlertResponse struct {
	AlertID    uuid.UUID        `json:"alert_id"`
	Type       domain.AlertType `json:"type"`
	Message    string           `json:"message"`
	Recipients int              `json:"recipients"`
	Status     string           `json:"status"`
}

// TemplatesResponse lists the quick alerts
type TemplatesResponse struct {
	Templates []domain.AlertTemplate `json:"templates"`
}

// Templates handles GET /alerts/templates
func (h *AlertHandler) Templates(w http.ResponseWriter, r *http.Request) {
	scope := newScope(h.logger, w, r)
	scope.respond(w, http.StatusOK, TemplatesResponse{Templates: domain.AlertTemplates()})
}

// Send handles POST /alerts
// Answers 202 once the broker has accepted the alert
func (h *AlertHandler) Send(w http.ResponseWriter, r *http.Request) {
	scope := newScope(h.logger, w, r)
	if !scope.authenticate(w) {
		return
	}

	var req SendAlertRequest
	if err := decodeJSON(w, r, &req); err != nil {
		scope.reject(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Type == "" {
		scope.reject(w, http.StatusBadRequest, "alert type is required")
		return
	}

	alert, err := h.familyAlertService.SendAlert(r.Context(), scope.userID, req.Type, req.Message)
	if err != nil {
		scope.fail(w, err)
		return
	}

	scope.respond(w, http.StatusAccepted, SendAlertResponse{
		AlertID:    alert.ID,
		Type:       alert.Type,
		Message:    alert.Message,
		Recipients: len(alert.Recipients),
		Status:     "queued",
	})
}
