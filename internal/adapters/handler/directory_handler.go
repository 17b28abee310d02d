package handler

import (
	"net/http"
	"strconv"

	"github.com/IANDYI/maternal-care-service/internal/core/domain"
	"github.com/IANDYI/maternal-care-service/internal/core/ports"
	"github.com/sirupsen/logrus"
)

// DefaultPregnancyWeek is used when the milestones request names no week
const DefaultPregnancyWeek = 24

// DirectoryHandler serves read-only reference data: the doctor directory
// and the ultrasound schedule
type DirectoryHandler struct {
	doctorService ports.DoctorService
	logger        *logrus.Logger
}

// NewDirectoryHandler creates a new directory handler
func NewDirectoryHandler(doctorService ports.DoctorService, logger *logrus.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		doctorService: doctorService,
		logger:        logger,
	}
}

// DoctorsResponse lists matching doctors
type DoctorsResponse struct {
	Doctors []*domain.Doctor `json:"doctors"`
	Count   int              `json:"count"`
}

// MilestonesResponse is the ultrasound schedule for one week
type MilestonesResponse struct {
	Week       int                          `json:"week"`
	Milestones []domain.UltrasoundMilestone `json:"milestones"`
}

// SearchDoctors handles GET /doctors?q=
func (h *DirectoryHandler) SearchDoctors(w http.ResponseWriter, r *http.Request) {
	scope := newScope(h.logger, w, r)

	doctors, err := h.doctorService.SearchDoctors(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		scope.fail(w, err)
		return
	}

	scope.respond(w, http.StatusOK, DoctorsResponse{Doctors: doctors, Count: len(doctors)})
}

// Milestones handles GET /ultrasound/milestones?week=N
func (h *DirectoryHandler) Milestones(w http.ResponseWriter, r *http.Request) {
	scope := newScope(h.logger, w, r)

	week := DefaultPregnancyWeek
	if raw := r.URL.Query().Get("week"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			scope.reject(w, http.StatusBadRequest, "week must be an integer")
			return
		}
		week = parsed
	}

	milestones, err := domain.MilestonesForWeek(week)
	if err != nil {
		scope.fail(w, err)
		return
	}

	scope.respond(w, http.StatusOK, MilestonesResponse{Week: week, Milestones: milestones})
}
