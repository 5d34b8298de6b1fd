package units_test

import (
	"math"
	"testing"

	"codeberg.org/mutker/iroverlay/internal/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertOneMeterPerSecond(t *testing.T) {
	tests := []struct {
		unit  units.SpeedUnit
		value float64
		label string
	}{
		{units.MetersPerSecond, 1.0, "m/s"},
		{units.MilesPerHour, 2.237, "mph"},
		{units.KilometersPerHour, 3.6, "kph"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			value, label := units.Convert(1.0, tt.unit)
			assert.InDelta(t, tt.value, value, 0.001)
			assert.Equal(t, tt.label, label)
		})
	}
}

func TestConvertPassesNaNThrough(t *testing.T) {
	value, label := units.Convert(math.NaN(), units.KilometersPerHour)
	assert.True(t, math.IsNaN(value))
	assert.Equal(t, "kph", label)

	value, _ = units.Convert(-10, units.MilesPerHour)
	assert.Less(t, value, 0.0)
}

func TestNextCycles(t *testing.T) {
	assert.Equal(t, units.MilesPerHour, units.MetersPerSecond.Next())
	assert.Equal(t, units.KilometersPerHour, units.MilesPerHour.Next())
	assert.Equal(t, units.MetersPerSecond, units.KilometersPerHour.Next())
}

func TestTextEncoding(t *testing.T) {
	text, err := units.KilometersPerHour.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "kph", string(text))

	var u units.SpeedUnit
	require.NoError(t, u.UnmarshalText([]byte("mph")))
	assert.Equal(t, units.MilesPerHour, u)

	assert.Error(t, u.UnmarshalText([]byte("knots")))
	_, err = units.SpeedUnit(9).MarshalText()
	assert.Error(t, err)
}
