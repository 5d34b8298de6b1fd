// Package panel is the terminal control panel: key handling, rendering and
// the raw-mode terminal it runs in.
package panel

import (
	"codeberg.org/mutker/iroverlay/internal/control"
	"codeberg.org/mutker/iroverlay/internal/store"
)

const ctrlC = 0x03

var pages = []store.Kind{store.KindHome, store.KindSpeed, store.KindLastLapTime}

// Model is the panel state that is not part of the record.
type Model struct {
	page   store.Kind
	status string
}

func NewModel() *Model {
	return &Model{page: store.KindHome}
}

func (m *Model) Page() store.Kind {
	return m.page
}

// SetStatus sets the line shown under the page; an empty status clears it.
func (m *Model) SetStatus(status string) {
	m.status = status
}

// HandleKey maps one key press to record edits. quit is true for q and
// Ctrl-C.
func (m *Model) HandleKey(key byte) (actions []control.Action, quit bool) {
	op := control.Op(-1)

	switch key {
	case 'q', 'Q', ctrlC:
		return nil, true
	case '1', '2', '3':
		m.page = pages[key-'1']
	case ' ':
		op = control.OpToggle
	case '+', '=':
		op = control.OpFontLarger
	case '-', '_':
		op = control.OpFontSmaller
	case 'u', 'U':
		op = control.OpCycleUnits
	case 'b', 'B':
		op = control.OpCycleBackground
	case 'f', 'F':
		op = control.OpCycleFontColor
	}

	if op < 0 {
		return nil, false
	}

	return []control.Action{{Op: op, Kind: m.page}}, false
}
