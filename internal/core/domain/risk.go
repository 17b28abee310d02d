package domain

// RiskLevel is the coarse categorical output of a risk analysis
type RiskLevel string

const (
	RiskHigh     RiskLevel = "High"
	RiskModerate RiskLevel = "Moderate"
	RiskLow      RiskLevel = "Low"
)

// Assessment is the risk analysis of a single condition
type Assessment struct {
	Condition       Condition `json:"condition"`
	RiskLevel       RiskLevel `json:"risk_level"`
	Why             []string  `json:"why"`
	Recommendations []string  `json:"recommendations"`
}

// ConditionAnalysis is the per-condition entry of the analysis wire format
type ConditionAnalysis struct {
	RiskLevel       RiskLevel `json:"risk_level"`
	Why             []string  `json:"why"`
	Recommendations []string  `json:"recommendations"`
}

// RiskAnalysis holds one Assessment per condition, in evaluation order,
// plus free-text notifications for the user.
type RiskAnalysis struct {
	Assessments   []Assessment `json:"assessments"`
	Notifications []string     `json:"notifications"`
}

// DiseaseAnalysis keys each assessment by its condition key
func (a RiskAnalysis) DiseaseAnalysis() map[string]ConditionAnalysis {
	out := make(map[string]ConditionAnalysis, len(a.Assessments))
	for _, as := range a.Assessments {
		out[as.Condition.Key()] = ConditionAnalysis{
			RiskLevel:       as.RiskLevel,
			Why:             as.Why,
			Recommendations: as.Recommendations,
		}
	}
	return out
}

// HighRisk returns the assessments rated High
func (a RiskAnalysis) HighRisk() []Assessment {
	var high []Assessment
	for _, as := range a.Assessments {
		if as.RiskLevel == RiskHigh {
			high = append(high, as)
		}
	}
	return high
}
