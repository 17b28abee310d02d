package rules

import (
	"fmt"

	"github.com/IANDYI/maternal-care-service/internal/core/domain"
)

// Engine evaluates symptom snapshots against an ordered rule table.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	rules []Rule
}

// NewEngine creates an engine over the default decision table
func NewEngine() *Engine {
	return &Engine{rules: DefaultRules()}
}

// NewEngineWithRules creates an engine over a custom table
func NewEngineWithRules(rules []Rule) *Engine {
	return &Engine{rules: rules}
}

// Evaluate returns one Recommendation per matched rule, in table order.
// A healthy snapshot yields an empty, non-nil slice.
func (e *Engine) Evaluate(s domain.SymptomSnapshot) []domain.Recommendation {
	recommendations := []domain.Recommendation{}
	for _, rule := range e.rules {
		if !rule.Matches(s) {
			continue
		}
		recommendations = append(recommendations, domain.Recommendation{
			Condition: rule.Condition,
			Tips:      copyTips(rule.Tips),
		})
	}
	return recommendations
}

// Assess rates every condition of the table.
//
// A condition whose predicate fails is Low. A matched condition is High when
// two or more of its factors hold and Moderate when only one does, so a
// condition is above Low exactly when Evaluate recommends it.
func (e *Engine) Assess(s domain.SymptomSnapshot) domain.RiskAnalysis {
	analysis := domain.RiskAnalysis{
		Assessments:   make([]domain.Assessment, 0, len(e.rules)),
		Notifications: []string{},
	}

	for _, rule := range e.rules {
		satisfied := rule.satisfied(s)
		why := make([]string, 0, len(satisfied))
		for _, f := range satisfied {
			why = append(why, f.Why(s))
		}

		assessment := domain.Assessment{
			Condition:       rule.Condition,
			RiskLevel:       domain.RiskLow,
			Why:             why,
			Recommendations: []string{},
		}
		if rule.Matches(s) {
			assessment.RiskLevel = domain.RiskModerate
			if len(satisfied) >= 2 {
				assessment.RiskLevel = domain.RiskHigh
			}
			assessment.Recommendations = copyTips(rule.Tips)
		}
		analysis.Assessments = append(analysis.Assessments, assessment)

		if assessment.RiskLevel == domain.RiskHigh {
			if isUrgent(rule.Condition) {
				analysis.Notifications = append(analysis.Notifications,
					fmt.Sprintf("Urgent: %s warning signs detected. Seek medical care immediately.", rule.Condition))
			}
			analysis.Notifications = append(analysis.Notifications,
				fmt.Sprintf("High risk of %s detected. Please consult your doctor.", rule.Condition))
		}
	}
	return analysis
}

// isUrgent marks conditions whose High rating warrants immediate care
func isUrgent(c domain.Condition) bool {
	return c == domain.ConditionPreeclampsia || c == domain.ConditionMiscarriageRisk
}

func copyTips(tips []string) []string {
	out := make([]string, len(tips))
	copy(out, tips)
	return out
}

var defaultEngine = NewEngine()

// Evaluate runs the default decision table
func Evaluate(s domain.SymptomSnapshot) []domain.Recommendation {
	return defaultEngine.Evaluate(s)
}

// Assess runs the default decision table in risk analysis mode
func Assess(s domain.SymptomSnapshot) domain.RiskAnalysis {
	return defaultEngine.Assess(s)
}
