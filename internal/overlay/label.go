package overlay

import (
	"fmt"

	"codeberg.org/mutker/iroverlay/internal/store"
	"codeberg.org/mutker/iroverlay/internal/telemetry"
	"codeberg.org/mutker/iroverlay/internal/units"
)

// Label formats the value kind displays.
func Label(kind store.Kind, snap telemetry.Snapshot, rec store.Record) string {
	switch kind {
	case store.KindSpeed:
		value, unit := units.Convert(snap.Speed, rec.Speed.Units)
		return fmt.Sprintf("%.0f %s", value, unit)
	case store.KindLastLapTime:
		return fmt.Sprintf("Last lap: %.3f seconds", snap.LastLapTime)
	default:
		return ""
	}
}
