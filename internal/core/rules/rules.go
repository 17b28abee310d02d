// Package rules holds the symptom decision table shared by the personalized
// diet plan and the risk analysis endpoint. Both read the same thresholds so
// the two surfaces cannot disagree.
package rules

import (
	"fmt"
	"strconv"

	"github.com/IANDYI/maternal-care-service/internal/core/domain"
)

// Factor is a single comparison of one snapshot field against a literal
type Factor struct {
	Name  string
	holds func(domain.SymptomSnapshot) bool
	why   func(domain.SymptomSnapshot) string
}

// Holds reports whether the factor is satisfied by the snapshot
func (f Factor) Holds(s domain.SymptomSnapshot) bool {
	return f.holds(s)
}

// Why describes a satisfied factor for the analysis rationale
func (f Factor) Why(s domain.SymptomSnapshot) string {
	return f.why(s)
}

// Rule maps a predicate to a condition and its fixed tips.
// Groups are ANDed together; the factors inside one group are ORed.
type Rule struct {
	Condition domain.Condition
	Groups    [][]Factor
	Tips      []string
}

// Matches reports whether every group has at least one satisfied factor
func (r Rule) Matches(s domain.SymptomSnapshot) bool {
	if len(r.Groups) == 0 {
		return false
	}
	for _, group := range r.Groups {
		if !anyHolds(group, s) {
			return false
		}
	}
	return true
}

func anyHolds(group []Factor, s domain.SymptomSnapshot) bool {
	for _, f := range group {
		if f.Holds(s) {
			return true
		}
	}
	return false
}

// satisfied returns the factors that hold, in table order
func (r Rule) satisfied(s domain.SymptomSnapshot) []Factor {
	var out []Factor
	for _, group := range r.Groups {
		for _, f := range group {
			if f.Holds(s) {
				out = append(out, f)
			}
		}
	}
	return out
}

type readingOf func(domain.SymptomSnapshot) domain.Reading

func above(name string, field readingOf, threshold float64) Factor {
	return Factor{
		Name:  name,
		holds: func(s domain.SymptomSnapshot) bool { return field(s).GreaterThan(threshold) },
		why: func(s domain.SymptomSnapshot) string {
			return fmt.Sprintf("%s %s is above %s", name, formatReading(field(s)), formatNumber(threshold))
		},
	}
}

func below(name string, field readingOf, threshold float64) Factor {
	return Factor{
		Name:  name,
		holds: func(s domain.SymptomSnapshot) bool { return field(s).LessThan(threshold) },
		why: func(s domain.SymptomSnapshot) string {
			return fmt.Sprintf("%s %s is below %s", name, formatReading(field(s)), formatNumber(threshold))
		},
	}
}

func atLeast(name string, field readingOf, threshold float64) Factor {
	return Factor{
		Name:  name,
		holds: func(s domain.SymptomSnapshot) bool { return field(s).AtLeast(threshold) },
		why: func(s domain.SymptomSnapshot) string {
			return fmt.Sprintf("%s %s is at least %s", name, formatReading(field(s)), formatNumber(threshold))
		},
	}
}

func flagged(name string, field func(domain.SymptomSnapshot) domain.Flag) Factor {
	return Factor{
		Name:  name,
		holds: func(s domain.SymptomSnapshot) bool { return bool(field(s)) },
		why:   func(domain.SymptomSnapshot) string { return name + " reported" },
	}
}

func formatReading(r domain.Reading) string {
	v, ok := r.Float()
	if !ok {
		return "n/a"
	}
	return formatNumber(v)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// DefaultRules returns the decision table in evaluation order.
// Thresholds are strict unless the operator says otherwise; every call
// returns a fresh table.
func DefaultRules() []Rule {
	return []Rule{
		{
			Condition: domain.ConditionAnaemia,
			Groups: [][]Factor{
				{atLeast("Fatigue", func(s domain.SymptomSnapshot) domain.Reading { return s.Fatigue }, 3)},
				{below("Heart rate", func(s domain.SymptomSnapshot) domain.Reading { return s.HeartRate }, 60)},
			},
			Tips: []string{
				"Eat iron-rich foods: spinach, beetroot, dates",
				"Pair with Vitamin C (e.g., lemon, orange) for better absorption",
				"Avoid tea/coffee right after meals",
			},
		},
		{
			Condition: domain.ConditionUTI,
			Groups: [][]Factor{
				{above("Urination count", func(s domain.SymptomSnapshot) domain.Reading { return s.UrinationCount }, 7)},
				{
					above("Burning urine", func(s domain.SymptomSnapshot) domain.Reading { return s.BurningUrine }, 2),
					above("Foul urine smell", func(s domain.SymptomSnapshot) domain.Reading { return s.FoulSmell }, 2),
				},
			},
			Tips: []string{
				"Drink 3L of water daily",
				"Consume cranberry juice and probiotic curd",
				"Avoid spicy and oily foods",
			},
		},
		{
			Condition: domain.ConditionGDM,
			Groups: [][]Factor{
				{
					above("Fasting sugar", func(s domain.SymptomSnapshot) domain.Reading { return s.FastingSugar }, 95),
					above("Post-meal sugar", func(s domain.SymptomSnapshot) domain.Reading { return s.PostMealSugar }, 140),
					flagged("PCOS", func(s domain.SymptomSnapshot) domain.Flag { return s.PCOS }),
					flagged("Previous GDM", func(s domain.SymptomSnapshot) domain.Flag { return s.PreviousGDM }),
				},
			},
			Tips: []string{
				"Choose low GI foods: oats, dalia, multigrain chapati",
				"Eat small, frequent meals",
				"Avoid sugar, white rice, and fruit juices",
			},
		},
		{
			Condition: domain.ConditionThyroid,
			Groups: [][]Factor{
				{above("Hair loss", func(s domain.SymptomSnapshot) domain.Reading { return s.HairLoss }, 2)},
				{above("Cold sensitivity", func(s domain.SymptomSnapshot) domain.Reading { return s.ColdSensitivity }, 2)},
			},
			Tips: []string{
				"Consume iodine-rich foods and nuts",
				"Avoid raw cabbage, cauliflower in large quantities",
				"Add selenium from sunflower seeds, eggs",
			},
		},
		{
			Condition: domain.ConditionPreeclampsia,
			Groups: [][]Factor{
				{above("Blood pressure", func(s domain.SymptomSnapshot) domain.Reading { return s.BloodPressure }, 140)},
				{above("Swelling", func(s domain.SymptomSnapshot) domain.Reading { return s.Swelling }, 2)},
			},
			Tips: []string{
				"Reduce salt intake",
				"Include potassium-rich foods like banana, sweet potato",
				"Use healthy fats like olive oil and flaxseeds",
			},
		},
		{
			Condition: domain.ConditionMentalHealth,
			Groups: [][]Factor{
				{
					above("Anxiety", func(s domain.SymptomSnapshot) domain.Reading { return s.Anxiety }, 2),
					below("Mood", func(s domain.SymptomSnapshot) domain.Reading { return s.Mood }, 2),
					above("Irritability", func(s domain.SymptomSnapshot) domain.Reading { return s.Irritability }, 2),
				},
			},
			Tips: []string{
				"Add omega-3 sources: walnuts, chia seeds",
				"Consume tryptophan-rich foods like milk, almonds",
				"Include magnesium sources like spinach, banana",
			},
		},
		{
			Condition: domain.ConditionMiscarriageRisk,
			Groups: [][]Factor{
				{
					above("Abdominal pain", func(s domain.SymptomSnapshot) domain.Reading { return s.AbdominalPain }, 2),
					above("Spotting", func(s domain.SymptomSnapshot) domain.Reading { return s.Spotting }, 1),
				},
			},
			Tips: []string{
				"Eat folate-rich foods: lentils, spinach, beets",
				"Avoid raw/papaya/pineapple",
				"Drink warm fluids and maintain rest",
			},
		},
	}
}
