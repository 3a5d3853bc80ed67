package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCelsiusToFahrenheit(t *testing.T) {
	cases := []struct {
		c    float64
		want int
	}{
		{0, 32},
		{100, 212},
		{-40, -40},
		{21, 70},
		{37, 99},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, CelsiusToFahrenheit(tc.c), "CelsiusToFahrenheit(%v)", tc.c)
	}
}

func TestRound(t *testing.T) {
	require.Equal(t, 21, Round(21.4))
	require.Equal(t, 22, Round(21.5))
	require.Equal(t, -4, Round(-3.6))
}

func TestUnitTemperatureKeepsCelsiusForMetric(t *testing.T) {
	require.Equal(t, 21, Metric.Temperature(21))
	require.Equal(t, 32, Imperial.Temperature(0))
	require.Equal(t, Imperial, Metric.Toggle())
	require.Equal(t, Metric, Imperial.Toggle())
}

func TestParseUnit(t *testing.T) {
	for in, want := range map[string]Unit{"metric": Metric, "F": Imperial, " imperial ": Imperial, "c": Metric} {
		got, err := ParseUnit(in)
		require.NoError(t, err, "ParseUnit(%q)", in)
		require.Equal(t, want, got, "ParseUnit(%q)", in)
	}

	_, err := ParseUnit("kelvin")
	require.Error(t, err)
}

func TestFormatClock(t *testing.T) {
	// 2024-06-01 04:30:00 UTC
	ts := time.Date(2024, 6, 1, 4, 30, 0, 0, time.UTC).Unix()

	require.Equal(t, "04:30", FormatClock(ts, time.UTC))
	require.Equal(t, "07:30", FormatClock(ts, time.FixedZone("", 3*3600)))
	require.Empty(t, FormatClock(0, time.UTC))
}

func TestLocationDisplayName(t *testing.T) {
	loc := Location{Name: "Berlin", Region: "Berlin", Country: "Germany"}
	require.Equal(t, "Berlin, Germany", loc.DisplayName())

	loc = Location{Name: "Springfield", Region: "Illinois", Country: "United States"}
	require.Equal(t, "Springfield, Illinois, United States", loc.DisplayName())
}
