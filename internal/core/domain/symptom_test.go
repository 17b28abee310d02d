package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/IANDYI/maternal-care-service/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymptomSnapshot_UnmarshalCamelCase(t *testing.T) {
	var s domain.SymptomSnapshot
	err := json.Unmarshal([]byte(`{"fatigue":3,"heartRate":55,"pcos":true,"extra":"ignored"}`), &s)
	require.NoError(t, err)

	fatigue, ok := s.Fatigue.Float()
	assert.True(t, ok)
	assert.Equal(t, 3.0, fatigue)
	hr, ok := s.HeartRate.Float()
	assert.True(t, ok)
	assert.Equal(t, 55.0, hr)
	assert.True(t, bool(s.PCOS))
	assert.False(t, s.Mood.Present())
}

func TestSymptomSnapshot_UnmarshalFormKeys(t *testing.T) {
	var s domain.SymptomSnapshot
	err := json.Unmarshal([]byte(`{
		"bp": "150", "heart_rate": "72", "frequent_urination": "9",
		"fasting": "101", "post_meal": "150", "pain": "3",
		"previous_gdm": "true", "pcos": "false"
	}`), &s)
	require.NoError(t, err)

	bp, _ := s.BloodPressure.Float()
	assert.Equal(t, 150.0, bp)
	urination, _ := s.UrinationCount.Float()
	assert.Equal(t, 9.0, urination)
	fasting, _ := s.FastingSugar.Float()
	assert.Equal(t, 101.0, fasting)
	postMeal, _ := s.PostMealSugar.Float()
	assert.Equal(t, 150.0, postMeal)
	pain, _ := s.AbdominalPain.Float()
	assert.Equal(t, 3.0, pain)
	assert.True(t, bool(s.PreviousGDM))
	assert.False(t, bool(s.PCOS))
}

func TestSymptomSnapshot_CamelCaseWins(t *testing.T) {
	var s domain.SymptomSnapshot
	require.NoError(t, json.Unmarshal([]byte(`{"bloodPressure":120,"bp":"150"}`), &s))

	bp, _ := s.BloodPressure.Float()
	assert.Equal(t, 120.0, bp)
}

func TestSymptomSnapshot_BlankCamelCaseFallsBackToFormKey(t *testing.T) {
	var s domain.SymptomSnapshot
	require.NoError(t, json.Unmarshal([]byte(`{"heartRate":null,"heart_rate":50,"fastingSugar":"","fasting":"101"}`), &s))

	hr, ok := s.HeartRate.Float()
	require.True(t, ok)
	assert.Equal(t, 50.0, hr)

	fasting, ok := s.FastingSugar.Float()
	require.True(t, ok)
	assert.Equal(t, 101.0, fasting)
}

func TestSymptomSnapshot_BadFieldValuesAreAbsent(t *testing.T) {
	var s domain.SymptomSnapshot
	require.NoError(t, json.Unmarshal([]byte(`{"heartRate":"fast","mood":null,"spotting":[2]}`), &s))

	assert.False(t, s.HeartRate.Present())
	assert.False(t, s.Mood.Present())
	assert.False(t, s.Spotting.Present())
}

func TestSymptomSnapshot_NotAnObject(t *testing.T) {
	var s domain.SymptomSnapshot
	assert.Error(t, json.Unmarshal([]byte(`[1,2,3]`), &s))
}

func TestSymptomSnapshot_MarshalRoundTripsCamelCase(t *testing.T) {
	s := domain.SymptomSnapshot{Fatigue: domain.Value(4), PCOS: true}
	out, err := json.Marshal(s)
	require.NoError(t, err)

	var back domain.SymptomSnapshot
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, s, back)
}

func completeForm() map[string]json.RawMessage {
	form := make(map[string]json.RawMessage, len(domain.RequiredFormFields))
	for _, key := range domain.RequiredFormFields {
		form[key] = json.RawMessage(`"1"`)
	}
	return form
}

func TestMissingFormFields(t *testing.T) {
	form := completeForm()
	assert.Empty(t, domain.MissingFormFields(form))

	delete(form, "bp")
	form["mood"] = json.RawMessage(`null`)
	form["sleep"] = json.RawMessage(`"  "`)
	form["bmi"] = json.RawMessage(`0`)

	assert.Equal(t, []string{"bp", "sleep", "mood"}, domain.MissingFormFields(form))
}

func TestNormalizeForm(t *testing.T) {
	raw := map[string]json.RawMessage{
		"pcos":    json.RawMessage(`"true"`),
		"smoking": json.RawMessage(`"false"`),
		"bp":      json.RawMessage(`"145"`),
		"notes":   json.RawMessage(`"feeling tired"`),
		"weight":  json.RawMessage(`62.5`),
		"empty":   json.RawMessage(`""`),
	}

	out, err := domain.NormalizeForm(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"pcos": true, "smoking": false, "bp": 145,
		"notes": "feeling tired", "weight": 62.5, "empty": ""
	}`, string(out))
}
