package api

import "math"

// Normalization is a presentation contract: raw values are not kept once
// a shot has been through here.
//
//   - ballSpeed arrives in m/s and is displayed in km/h
//   - a missing effective-spin reading becomes the literal string "None"
//   - reducedAccuracy collapses to "Yes"/"No"
//   - every other numeric field is rounded to one decimal

const speedFactor = 3.6 // m/s -> km/h

func normalizeMeasurement(m map[string]any) map[string]any {
	if m == nil {
		m = map[string]any{}
	}

	if v, ok := m["ballSpeed"].(float64); ok {
		m["ballSpeed"] = round1(v * speedFactor)
	}

	if v, present := m["ballSpinEffective"]; present && v == nil {
		m["ballSpinEffective"] = "None"
	}

	m["reducedAccuracy"] = yesNo(m["reducedAccuracy"])

	for k, v := range m {
		if f, ok := v.(float64); ok {
			m[k] = round1(f)
		}
	}
	return m
}

func yesNo(v any) string {
	switch t := v.(type) {
	case nil:
		return "No"
	case bool:
		if t {
			return "Yes"
		}
		return "No"
	case string:
		if t == "" || t == "No" {
			return "No"
		}
		return "Yes"
	default:
		return "Yes"
	}
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
