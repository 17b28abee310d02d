package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/IANDYI/maternal-care-service/internal/core/domain"
	"github.com/IANDYI/maternal-care-service/internal/core/ports"
	"github.com/IANDYI/maternal-care-service/internal/core/services"
	"github.com/sirupsen/logrus"
)

// SymptomHandler handles the symptom tracker endpoints
type SymptomHandler struct {
	symptomService ports.SymptomService
	logger         *logrus.Logger
}

// NewSymptomHandler creates a new symptom handler
func NewSymptomHandler(symptomService ports.SymptomService, logger *logrus.Logger) *SymptomHandler {
	return &SymptomHandler{
		symptomService: symptomService,
		logger:         logger,
	}
}

// AnalysisResponse is the risk analysis wire format
type AnalysisResponse struct {
	Success         bool                                `json:"success"`
	DiseaseAnalysis map[string]domain.ConditionAnalysis `json:"disease_analysis"`
	Notifications   []string                            `json:"notifications"`
	Form            map[string]json.RawMessage          `json:"form,omitempty"`
}

func newAnalysisResponse(analysis domain.RiskAnalysis) AnalysisResponse {
	return AnalysisResponse{
		Success:         true,
		DiseaseAnalysis: analysis.DiseaseAnalysis(),
		Notifications:   analysis.Notifications,
	}
}

// SubmitResponse is returned after a symptom form was stored
type SubmitResponse struct {
	Entry    *domain.SymptomEntry `json:"entry"`
	Analysis AnalysisResponse     `json:"analysis"`
}

// EntriesResponse lists stored symptom entries
type EntriesResponse struct {
	Entries []*domain.SymptomEntry `json:"entries"`
	Count   int                    `json:"count"`
}

// Submit handles POST /symptoms
// PATIENT only
func (h *SymptomHandler) Submit(w http.ResponseWriter, r *http.Request) {
	scope := newScope(h.logger, w, r)
	if !scope.authenticate(w) {
		return
	}

	var form map[string]json.RawMessage
	if err := decodeJSON(w, r, &form); err != nil || form == nil {
		scope.reject(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, analysis, err := h.symptomService.SubmitSymptoms(r.Context(), scope.userID, form)
	if err != nil {
		scope.fail(w, err)
		return
	}
	observeAnalysis(analysis)

	scope.respond(w, http.StatusCreated, SubmitResponse{
		Entry:    entry,
		Analysis: newAnalysisResponse(analysis),
	})
}

// List handles GET /symptoms?limit=N&user_id=...
// PATIENT: own history; ADMIN: any user's history
func (h *SymptomHandler) List(w http.ResponseWriter, r *http.Request) {
	scope := newScope(h.logger, w, r)
	if !scope.authenticate(w) {
		return
	}

	target, err := scope.targetUser()
	if err != nil {
		scope.reject(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	limit := services.DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			scope.reject(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
	}

	entries, err := h.symptomService.ListEntries(r.Context(), scope.userID, scope.isAdmin(), target, limit)
	if err != nil {
		scope.fail(w, err)
		return
	}
	if entries == nil {
		entries = []*domain.SymptomEntry{}
	}

	scope.respond(w, http.StatusOK, EntriesResponse{Entries: entries, Count: len(entries)})
}

// Latest handles GET /symptoms/latest?user_id=...
func (h *SymptomHandler) Latest(w http.ResponseWriter, r *http.Request) {
	scope := newScope(h.logger, w, r)
	if !scope.authenticate(w) {
		return
	}

	target, err := scope.targetUser()
	if err != nil {
		scope.reject(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	entry, err := h.symptomService.GetLatest(r.Context(), scope.userID, scope.isAdmin(), target)
	if err != nil {
		scope.fail(w, err)
		return
	}

	scope.respond(w, http.StatusOK, entry)
}

// Analyze handles POST /analyze-symptoms.
// Open to anonymous callers and rate limited by the router.
func (h *SymptomHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	scope := newScope(h.logger, w, r)

	var form map[string]json.RawMessage
	if err := decodeJSON(w, r, &form); err != nil || form == nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "request body must be a JSON object",
		})
		scope.entry(http.StatusBadRequest).Info("request rejected")
		return
	}

	analysis := h.symptomService.Analyze(form)
	observeAnalysis(analysis)

	resp := newAnalysisResponse(analysis)
	resp.Form = form
	scope.respond(w, http.StatusOK, resp)
}
