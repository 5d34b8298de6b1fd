package store

// Kind names a section of the record. Every kind except KindHome is backed
// by its own overlay executable.
type Kind string

const (
	KindHome        Kind = "home"
	KindSpeed       Kind = "speed"
	KindLastLapTime Kind = "lastLapTime"
)

// OverlayKinds lists the kinds that run as separate processes, in display order.
var OverlayKinds = []Kind{KindSpeed, KindLastLapTime}

// Title is the human-readable name of the kind.
func (k Kind) Title() string {
	switch k {
	case KindHome:
		return "Home"
	case KindSpeed:
		return "Speed"
	case KindLastLapTime:
		return "Last Lap Time"
	default:
		return string(k)
	}
}
