package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Doctor is an entry of the doctor directory
type Doctor struct {
	ID              uuid.UUID `json:"id" yaml:"id"`
	Name            string    `json:"name" yaml:"name"`
	Specialization  string    `json:"specialization" yaml:"specialization"`
	City            string    `json:"city" yaml:"city"`
	Phone           string    `json:"phone" yaml:"phone"`
	Experience      string    `json:"experience" yaml:"experience"`
	ConsultationFee int       `json:"consultation_fee" yaml:"consultation_fee"`
	PhotoURL        string    `json:"photo_url,omitempty" yaml:"photo_url"`
}

// Matches reports whether the query is a case-insensitive substring of the
// doctor's name, specialization or city. An empty query matches everything.
func (d Doctor) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(d.Name), q) ||
		strings.Contains(strings.ToLower(d.Specialization), q) ||
		strings.Contains(strings.ToLower(d.City), q)
}
