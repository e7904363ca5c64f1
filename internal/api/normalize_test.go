package api

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeConvertsBallSpeed(t *testing.T) {
	m := normalizeMeasurement(map[string]any{"ballSpeed": 40.0})
	require.Equal(t, 144.0, m["ballSpeed"], "m/s must come out as km/h")

	m = normalizeMeasurement(map[string]any{"ballSpeed": 38.123})
	require.Equal(t, 137.2, m["ballSpeed"])
}

func TestNormalizeNilEffectiveSpin(t *testing.T) {
	m := normalizeMeasurement(map[string]any{"ballSpinEffective": nil})
	require.Equal(t, "None", m["ballSpinEffective"])

	// A real reading stays numeric.
	m = normalizeMeasurement(map[string]any{"ballSpinEffective": 2531.44})
	require.Equal(t, 2531.4, m["ballSpinEffective"])

	// An absent key stays absent.
	m = normalizeMeasurement(map[string]any{})
	_, present := m["ballSpinEffective"]
	require.False(t, present)
}

func TestNormalizeReducedAccuracy(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, "No"},
		{false, "No"},
		{true, "Yes"},
		{"", "No"},
		{"No", "No"},
		{"tracking degraded", "Yes"},
		{1.0, "Yes"},
	}
	for _, tc := range cases {
		m := normalizeMeasurement(map[string]any{"reducedAccuracy": tc.in})
		require.Equal(t, tc.want, m["reducedAccuracy"], "input %v", tc.in)
	}

	// Even a measurement without the field reports it.
	m := normalizeMeasurement(map[string]any{})
	require.Equal(t, "No", m["reducedAccuracy"])
}

func TestNormalizeRoundsAllNumerics(t *testing.T) {
	m := normalizeMeasurement(map[string]any{
		"carry":       182.4567,
		"launchAngle": 14.05,
		"total":       200.0,
	})
	require.Equal(t, 182.5, m["carry"])
	require.Equal(t, 14.1, m["launchAngle"])
	require.Equal(t, 200.0, m["total"])
}

func TestNormalizeNilMeasurement(t *testing.T) {
	m := normalizeMeasurement(nil)
	require.NotNil(t, m)
	require.Equal(t, "No", m["reducedAccuracy"])
}
