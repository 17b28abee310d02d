package handler

import (
	"net/http"

	"github.com/IANDYI/maternal-care-service/internal/core/ports"
	"github.com/sirupsen/logrus"
)

// DietHandler serves the personalized diet plan
type DietHandler struct {
	dietService ports.DietService
	logger      *logrus.Logger
}

// NewDietHandler creates a new diet handler
func NewDietHandler(dietService ports.DietService, logger *logrus.Logger) *DietHandler {
	return &DietHandler{
		dietService: dietService,
		logger:      logger,
	}
}

// Personalized handles GET /diet-plan/personalized
// 404 until the user has submitted symptoms
func (h *DietHandler) Personalized(w http.ResponseWriter, r *http.Request) {
	scope := newScope(h.logger, w, r)
	if !scope.authenticate(w) {
		return
	}

	plan, err := h.dietService.PersonalizedPlan(r.Context(), scope.userID)
	if err != nil {
		scope.fail(w, err)
		return
	}
	observeRecommendations(plan.Recommendations)

	scope.respond(w, http.StatusOK, plan)
}
