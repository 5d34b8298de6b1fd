// Package units converts raw telemetry speeds into display units.
package units

import "fmt"

// SpeedUnit selects how a speed in meters per second is displayed.
type SpeedUnit int

const (
	MetersPerSecond SpeedUnit = iota
	MilesPerHour
	KilometersPerHour
)

const (
	secondsPerHour = 3600.0
	metersPerMile  = 1609.0
	kphPerMps      = 3.6
)

// All lists every unit in cycling order.
var All = []SpeedUnit{MetersPerSecond, MilesPerHour, KilometersPerHour}

// Convert maps a raw speed in meters per second to the selected unit and
// its label. Out-of-range and NaN inputs pass through arithmetically.
func Convert(raw float64, unit SpeedUnit) (float64, string) {
	switch unit {
	case MilesPerHour:
		return raw * secondsPerHour / metersPerMile, "mph"
	case KilometersPerHour:
		return raw * kphPerMps, "kph"
	default:
		return raw, "m/s"
	}
}

// Label returns the short display label of the unit.
func (u SpeedUnit) Label() string {
	_, label := Convert(0, u)
	return label
}

// String returns a descriptive name, used by the control panel.
func (u SpeedUnit) String() string {
	switch u {
	case MetersPerSecond:
		return "meters per second"
	case MilesPerHour:
		return "miles per hour"
	case KilometersPerHour:
		return "kilometers per hour"
	default:
		return fmt.Sprintf("SpeedUnit(%d)", int(u))
	}
}

// Next returns the unit following u in cycling order.
func (u SpeedUnit) Next() SpeedUnit {
	for i, unit := range All {
		if unit == u {
			return All[(i+1)%len(All)]
		}
	}

	return MetersPerSecond
}

// Valid reports whether u is a known unit.
func (u SpeedUnit) Valid() bool {
	return u >= MetersPerSecond && u <= KilometersPerHour
}

// MarshalText encodes the unit as its label.
func (u SpeedUnit) MarshalText() ([]byte, error) {
	if !u.Valid() {
		return nil, fmt.Errorf("unknown speed unit %d", int(u))
	}

	return []byte(u.Label()), nil
}

// UnmarshalText accepts a unit label.
func (u *SpeedUnit) UnmarshalText(text []byte) error {
	for _, unit := range All {
		if unit.Label() == string(text) {
			*u = unit
			return nil
		}
	}

	return fmt.Errorf("unknown speed unit %q", string(text))
}
