package domain

import "strings"

// Condition is a suspected condition label produced by the rule engine
type Condition string

const (
	ConditionAnaemia         Condition = "Anaemia"
	ConditionUTI             Condition = "UTI"
	ConditionGDM             Condition = "GDM" // Gestational diabetes mellitus
	ConditionThyroid         Condition = "Thyroid"
	ConditionPreeclampsia    Condition = "Preeclampsia"
	ConditionMentalHealth    Condition = "Mental Health"
	ConditionMiscarriageRisk Condition = "Miscarriage Risk"
)

// Conditions returns the closed set of conditions in evaluation order
func Conditions() []Condition {
	return []Condition{
		ConditionAnaemia,
		ConditionUTI,
		ConditionGDM,
		ConditionThyroid,
		ConditionPreeclampsia,
		ConditionMentalHealth,
		ConditionMiscarriageRisk,
	}
}

// Key returns the snake_case key used in risk analysis payloads,
// e.g. "mental_health" for Mental Health.
func (c Condition) Key() string {
	return strings.ReplaceAll(strings.ToLower(string(c)), " ", "_")
}

// Recommendation is the advice emitted for one matched condition.
// Tips are ordered, most actionable first.
type Recommendation struct {
	Condition Condition `json:"condition"`
	Tips      []string  `json:"tips"`
}
