package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/IANDYI/maternal-care-service/internal/core/domain"
	"github.com/IANDYI/maternal-care-service/internal/core/ports"
	"github.com/IANDYI/maternal-care-service/internal/core/rules"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// History page bounds for ListEntries
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// SymptomService implements the symptom tracker.
// Stores submissions, rates them and publishes alerts for High risk conditions.
type SymptomService struct {
	symptomRepo    ports.SymptomRepository
	alertPublisher ports.AlertPublisher
	engine         *rules.Engine
	logger         *logrus.Logger
}

// NewSymptomService creates a new symptom service
func NewSymptomService(
	symptomRepo ports.SymptomRepository,
	alertPublisher ports.AlertPublisher,
	engine *rules.Engine,
	logger *logrus.Logger,
) *SymptomService {
	return &SymptomService{
		symptomRepo:    symptomRepo,
		alertPublisher: alertPublisher,
		engine:         engine,
		logger:         logger,
	}
}

// SubmitSymptoms validates and stores a raw symptom form, then rates it.
// The risk alert for High conditions is published asynchronously.
func (s *SymptomService) SubmitSymptoms(ctx context.Context, userID uuid.UUID, form map[string]json.RawMessage) (*domain.SymptomEntry, domain.RiskAnalysis, error) {
	if missing := domain.MissingFormFields(form); len(missing) > 0 {
		return nil, domain.RiskAnalysis{}, fmt.Errorf("%w: missing required fields: %s", domain.ErrValidation, strings.Join(missing, ", "))
	}

	normalized, err := domain.NormalizeForm(form)
	if err != nil {
		return nil, domain.RiskAnalysis{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	entry := &domain.SymptomEntry{
		ID:          uuid.New(),
		UserID:      userID,
		Snapshot:    domain.SnapshotFromFields(form),
		Form:        normalized,
		SubmittedAt: time.Now().UTC(),
	}

	if err := s.symptomRepo.CreateEntry(ctx, entry); err != nil {
		return nil, domain.RiskAnalysis{}, fmt.Errorf("failed to store symptom entry: %w", err)
	}

	analysis := s.engine.Assess(entry.Snapshot)
	high := analysis.HighRisk()

	s.logger.WithFields(logrus.Fields{
		"event":         "symptom_submitted",
		"entry_id":      entry.ID.String(),
		"user_id":       userID.String(),
		"high_risk":     conditionNames(high),
		"notifications": len(analysis.Notifications),
		"submitted_at":  entry.SubmittedAt.Format(time.RFC3339),
	}).Info("symptom entry stored")

	// Publish in the background so the broker never delays the response
	if len(high) > 0 && s.alertPublisher != nil {
		alert := &domain.RiskAlert{
			UserID:      userID,
			EntryID:     entry.ID,
			Conditions:  high,
			SubmittedAt: entry.SubmittedAt,
		}
		go func() {
			bgCtx := context.Background()
			if err := s.alertPublisher.PublishRiskAlert(bgCtx, alert); err != nil {
				s.logger.WithError(err).WithField("entry_id", alert.EntryID.String()).
					Error("failed to publish risk alert")
				return
			}
			s.logger.WithFields(logrus.Fields{
				"event":      "risk_alert_published",
				"entry_id":   alert.EntryID.String(),
				"conditions": conditionNames(alert.Conditions),
			}).Info("risk alert published")
		}()
	}

	return entry, analysis, nil
}

// GetLatest returns the latest entry of the target user.
// A PATIENT asking for someone else gets ErrNotFound so existence doesn't leak.
func (s *SymptomService) GetLatest(ctx context.Context, requesterID uuid.UUID, isAdmin bool, targetUserID uuid.UUID) (*domain.SymptomEntry, error) {
	if !isAdmin && targetUserID != requesterID {
		return nil, fmt.Errorf("symptom entry %w", domain.ErrNotFound)
	}

	entry, err := s.symptomRepo.GetLatestEntry(ctx, targetUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest symptom entry: %w", err)
	}
	return entry, nil
}

// ListEntries returns the target user's history, newest first.
// A limit above MaxHistoryLimit is clamped.
func (s *SymptomService) ListEntries(ctx context.Context, requesterID uuid.UUID, isAdmin bool, targetUserID uuid.UUID, limit int) ([]*domain.SymptomEntry, error) {
	if !isAdmin && targetUserID != requesterID {
		return nil, fmt.Errorf("symptom history %w", domain.ErrNotFound)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be greater than 0", domain.ErrValidation)
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	entries, err := s.symptomRepo.ListEntries(ctx, targetUserID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list symptom entries: %w", err)
	}
	return entries, nil
}

// Analyze rates a form without storing it
func (s *SymptomService) Analyze(form map[string]json.RawMessage) domain.RiskAnalysis {
	return s.engine.Assess(domain.SnapshotFromFields(form))
}

func conditionNames(assessments []domain.Assessment) []string {
	names := make([]string, 0, len(assessments))
	for _, a := range assessments {
		names = append(names, string(a.Condition))
	}
	return names
}
