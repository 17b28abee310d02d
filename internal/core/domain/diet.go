package domain

import (
	"time"

	"github.com/google/uuid"
)

// DietPlan is the personalized diet advice derived from the latest symptom entry
type DietPlan struct {
	EntryID         uuid.UUID        `json:"entry_id"`
	SubmittedAt     time.Time        `json:"submitted_at"`
	Recommendations []Recommendation `json:"recommendations"`
}
