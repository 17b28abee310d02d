package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/IANDYI/maternal-care-service/internal/core/domain"
	"github.com/IANDYI/maternal-care-service/internal/core/ports"
)

// maxDoctorQueryLength bounds the search term sent to the database
const maxDoctorQueryLength = 100

// DoctorService implements the doctor directory search
type DoctorService struct {
	doctorRepo ports.DoctorRepository
}

// NewDoctorService creates a new doctor service
func NewDoctorService(doctorRepo ports.DoctorRepository) *DoctorService {
	return &DoctorService{doctorRepo: doctorRepo}
}

// SearchDoctors lists doctors whose name, specialization or city contains the query
func (s *DoctorService) SearchDoctors(ctx context.Context, query string) ([]*domain.Doctor, error) {
	query = strings.TrimSpace(query)
	if len(query) > maxDoctorQueryLength {
		return nil, fmt.Errorf("%w: search query exceeds %d characters", domain.ErrValidation, maxDoctorQueryLength)
	}

	doctors, err := s.doctorRepo.ListDoctors(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	if doctors == nil {
		doctors = []*domain.Doctor{}
	}
	return doctors, nil
}
