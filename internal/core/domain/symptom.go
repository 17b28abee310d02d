package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SymptomSnapshot is one complete questionnaire answer set evaluated by the
// rule engine. It is passed by value and never mutated after decoding.
type SymptomSnapshot struct {
	Fatigue         Reading `json:"fatigue"`
	HeartRate       Reading `json:"heartRate"`
	UrinationCount  Reading `json:"urinationCount"`
	BurningUrine    Reading `json:"burningUrine"`
	FoulSmell       Reading `json:"foulSmell"`
	BloodPressure   Reading `json:"bloodPressure"`
	Swelling        Reading `json:"swelling"`
	ColdSensitivity Reading `json:"coldSensitivity"`
	HairLoss        Reading `json:"hairLoss"`
	FastingSugar    Reading `json:"fastingSugar"`
	PostMealSugar   Reading `json:"postMealSugar"`
	Mood            Reading `json:"mood"`
	Anxiety         Reading `json:"anxiety"`
	Irritability    Reading `json:"irritability"`
	AbdominalPain   Reading `json:"abdominalPain"`
	Spotting        Reading `json:"spotting"`

	PCOS        Flag `json:"pcos"`
	PreviousGDM Flag `json:"previousGDM"`
}

type readingField struct {
	keys []string
	dst  *Reading
}

type flagField struct {
	keys []string
	dst  *Flag
}

// readingFields lists the accepted keys per field. The camelCase name comes
// first, followed by the symptom form's snake_case names.
func (s *SymptomSnapshot) readingFields() []readingField {
	return []readingField{
		{[]string{"fatigue"}, &s.Fatigue},
		{[]string{"heartRate", "heart_rate"}, &s.HeartRate},
		{[]string{"urinationCount", "frequent_urination", "urination_count"}, &s.UrinationCount},
		{[]string{"burningUrine", "burning_urine"}, &s.BurningUrine},
		{[]string{"foulSmell", "foul_smell"}, &s.FoulSmell},
		{[]string{"bloodPressure", "bp", "blood_pressure"}, &s.BloodPressure},
		{[]string{"swelling"}, &s.Swelling},
		{[]string{"coldSensitivity", "cold_sensitivity"}, &s.ColdSensitivity},
		{[]string{"hairLoss", "hair_loss"}, &s.HairLoss},
		{[]string{"fastingSugar", "fasting", "fasting_sugar"}, &s.FastingSugar},
		{[]string{"postMealSugar", "post_meal", "post_meal_sugar"}, &s.PostMealSugar},
		{[]string{"mood"}, &s.Mood},
		{[]string{"anxiety"}, &s.Anxiety},
		{[]string{"irritability"}, &s.Irritability},
		{[]string{"abdominalPain", "pain", "abdominal_pain"}, &s.AbdominalPain},
		{[]string{"spotting"}, &s.Spotting},
	}
}

func (s *SymptomSnapshot) flagFields() []flagField {
	return []flagField{
		{[]string{"pcos"}, &s.PCOS},
		{[]string{"previousGDM", "previous_gdm"}, &s.PreviousGDM},
	}
}

// UnmarshalJSON decodes a snapshot from either the camelCase shape or the raw
// symptom form. Field content never causes an error; only a body that is not
// a JSON object does.
func (s *SymptomSnapshot) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("symptom snapshot must be a JSON object: %w", err)
	}
	*s = SnapshotFromFields(raw)
	return nil
}

// SnapshotFromFields builds a snapshot from decoded top-level fields.
// Fields that are missing stay absent.
func SnapshotFromFields(raw map[string]json.RawMessage) SymptomSnapshot {
	var s SymptomSnapshot
	for _, f := range s.readingFields() {
		if v, ok := lookup(raw, f.keys); ok {
			*f.dst = ParseReading(v)
		}
	}
	for _, f := range s.flagFields() {
		if v, ok := lookup(raw, f.keys); ok {
			*f.dst = ParseFlag(v)
		}
	}
	return s
}

// lookup returns the first non-blank value among keys. A null or empty
// camelCase key does not hide a filled in form alias.
func lookup(raw map[string]json.RawMessage, keys []string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok && !isBlank(v) {
			return v, true
		}
	}
	return nil, false
}

// SymptomEntry is a stored symptom tracker submission
type SymptomEntry struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	Snapshot    SymptomSnapshot `json:"snapshot"`
	Form        json.RawMessage `json:"form"` // normalized form payload as submitted
	SubmittedAt time.Time       `json:"submitted_at"`
}

// RequiredFormFields are the symptom form keys a submission must fill in
var RequiredFormFields = []string{
	"bp",
	"heart_rate",
	"thirst_level",
	"frequent_urination",
	"fatigue",
	"hunger",
	"blurred_vision",
	"sleep",
	"irritability",
	"isolation",
	"overwhelm",
	"mood",
	"anxiety",
	"cold_sensitivity",
	"hair_loss",
	"swelling",
	"pain",
	"spotting",
	"burning_urine",
	"foul_smell",
	"support_level",
	"cramping",
	"headache",
	"dizziness",
	"breathlessness",
	"pale_skin",
	"pica_craving",
	"cold_feet_hands",
	"bmi",
}

// MissingFormFields returns the required keys that are absent, null or blank
func MissingFormFields(raw map[string]json.RawMessage) []string {
	var missing []string
	for _, key := range RequiredFormFields {
		if isBlank(raw[key]) {
			missing = append(missing, key)
		}
	}
	return missing
}

func isBlank(v json.RawMessage) bool {
	trimmed := bytes.TrimSpace(v)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return true
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return true
		}
		return strings.TrimSpace(s) == ""
	}
	return false
}

// NormalizeForm converts string encoded booleans and numbers into JSON
// booleans and numbers the way the symptom form submits them. Other values
// are kept as they are.
func NormalizeForm(raw map[string]json.RawMessage) (json.RawMessage, error) {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		out[k] = normalizeValue(v)
	}
	return json.Marshal(out)
}

func normalizeValue(v json.RawMessage) any {
	trimmed := bytes.TrimSpace(v)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return json.RawMessage(trimmed)
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return json.RawMessage(trimmed)
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if t := strings.TrimSpace(s); t != "" {
		if n, err := strconv.ParseFloat(t, 64); err == nil && Value(n).Present() {
			return n
		}
	}
	return s
}
