package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Reading is a numeric symptom or vital value that may be absent.
// An absent reading fails every comparison, so a missing heart rate never
// satisfies "heart rate below 60".
type Reading struct {
	value float64
	valid bool
}

// Value returns a present reading. NaN and infinities are treated as absent.
func Value(v float64) Reading {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Reading{}
	}
	return Reading{value: v, valid: true}
}

// Present reports whether the reading carries a value
func (r Reading) Present() bool {
	return r.valid
}

// Float returns the value and whether it is present
func (r Reading) Float() (float64, bool) {
	return r.value, r.valid
}

// GreaterThan reports r > threshold; false when absent
func (r Reading) GreaterThan(threshold float64) bool {
	return r.valid && r.value > threshold
}

// LessThan reports r < threshold; false when absent
func (r Reading) LessThan(threshold float64) bool {
	return r.valid && r.value < threshold
}

// AtLeast reports r >= threshold; false when absent
func (r Reading) AtLeast(threshold float64) bool {
	return r.valid && r.value >= threshold
}

// MarshalJSON writes null for an absent reading
func (r Reading) MarshalJSON() ([]byte, error) {
	if !r.valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(r.value, 'f', -1, 64)), nil
}

// UnmarshalJSON never fails: anything that is not a number or a numeric
// string decodes to an absent reading.
func (r *Reading) UnmarshalJSON(data []byte) error {
	*r = ParseReading(data)
	return nil
}

// ParseReading converts a raw JSON value into a Reading.
// Numbers and numeric strings are present; null, empty or non-numeric
// strings, booleans, objects and arrays are absent.
func ParseReading(raw json.RawMessage) Reading {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Reading{}
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return Reading{}
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return Reading{}
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Reading{}
		}
		return Value(v)
	}

	var v float64
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return Reading{}
	}
	return Value(v)
}

// Flag is a boolean risk factor. Absent or unrecognised input is false.
type Flag bool

// UnmarshalJSON accepts true/false, "true"/"false", "yes"/"no" and 1/0
func (f *Flag) UnmarshalJSON(data []byte) error {
	*f = ParseFlag(data)
	return nil
}

// ParseFlag converts a raw JSON value into a Flag
func ParseFlag(raw json.RawMessage) Flag {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}

	switch trimmed[0] {
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return false
		}
		return Flag(b)
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "yes", "1":
			return true
		}
		return false
	}

	var n float64
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return false
	}
	return n == 1
}
