package services

import (
	"context"
	"fmt"

	"github.com/IANDYI/maternal-care-service/internal/core/domain"
	"github.com/IANDYI/maternal-care-service/internal/core/ports"
	"github.com/IANDYI/maternal-care-service/internal/core/rules"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DietService builds personalized diet plans from the latest symptom entry
type DietService struct {
	symptomRepo ports.SymptomRepository
	engine      *rules.Engine
	logger      *logrus.Logger
}

// NewDietService creates a new diet service
func NewDietService(symptomRepo ports.SymptomRepository, engine *rules.Engine, logger *logrus.Logger) *DietService {
	return &DietService{
		symptomRepo: symptomRepo,
		engine:      engine,
		logger:      logger,
	}
}

// PersonalizedPlan evaluates the user's latest entry.
// No matched condition is a valid plan with no recommendations.
func (s *DietService) PersonalizedPlan(ctx context.Context, userID uuid.UUID) (*domain.DietPlan, error) {
	entry, err := s.symptomRepo.GetLatestEntry(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest symptom entry: %w", err)
	}

	plan := &domain.DietPlan{
		EntryID:         entry.ID,
		SubmittedAt:     entry.SubmittedAt,
		Recommendations: s.engine.Evaluate(entry.Snapshot),
	}

	s.logger.WithFields(logrus.Fields{
		"event":           "diet_plan_generated",
		"user_id":         userID.String(),
		"entry_id":        entry.ID.String(),
		"recommendations": len(plan.Recommendations),
	}).Debug("diet plan generated")

	return plan, nil
}
