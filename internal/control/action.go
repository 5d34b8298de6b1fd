package control

import (
	"codeberg.org/mutker/iroverlay/internal/store"
)

// Op is an edit the control panel can make to one record section.
type Op int

const (
	OpToggle Op = iota
	OpFontLarger
	OpFontSmaller
	OpCycleUnits
	OpCycleBackground
	OpCycleFontColor
)

type Action struct {
	Op   Op
	Kind store.Kind
}

// Apply edits rec and reports whether anything changed.
func (a Action) Apply(rec *store.Record) bool {
	section := rec.Section(a.Kind)
	if section == nil {
		return false
	}
	before := *section
	beforeUnits := rec.Speed.Units

	switch a.Op {
	case OpToggle:
		// The home section has no process behind it.
		if a.Kind != store.KindHome {
			section.Enabled = !section.Enabled
		}
	case OpFontLarger:
		section.FontSize = store.ClampFontSize(section.FontSize + store.FontSizeStep)
	case OpFontSmaller:
		section.FontSize = store.ClampFontSize(section.FontSize - store.FontSizeStep)
	case OpCycleUnits:
		if a.Kind == store.KindSpeed {
			rec.Speed.Units = rec.Speed.Units.Next()
		}
	case OpCycleBackground:
		section.BackgroundColor = store.NextInPalette(section.BackgroundColor)
	case OpCycleFontColor:
		section.FontColor = store.NextInPalette(section.FontColor)
	}

	return *section != before || rec.Speed.Units != beforeUnits
}
