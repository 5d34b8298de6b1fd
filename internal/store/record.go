package store

import "codeberg.org/mutker/iroverlay/internal/units"

// Version is the schema version written by Save. Files carrying any other
// version are treated as incompatible and replaced by defaults on load.
const Version = 1

const (
	MinFontSize  = 6.0
	MaxFontSize  = 40.0
	FontSizeStep = 0.5
)

// Overlay holds the appearance and desired state shared by every section.
type Overlay struct {
	Enabled         bool    `mapstructure:"enabled"`
	FontSize        float64 `mapstructure:"font_size"`
	BackgroundColor RGBA    `mapstructure:"background_color"`
	FontColor       RGBA    `mapstructure:"font_color"`
}

// SpeedOverlay adds the display unit to the speed section.
type SpeedOverlay struct {
	Overlay `mapstructure:",squash"`
	Units   units.SpeedUnit `mapstructure:"units"`
}

// Record is the persisted overlay configuration.
type Record struct {
	Version     int          `mapstructure:"version"`
	Home        Overlay      `mapstructure:"home"`
	Speed       SpeedOverlay `mapstructure:"speed"`
	LastLapTime Overlay      `mapstructure:"last_lap_time"`
}

// Default returns the record used when nothing valid is on disk: every
// overlay disabled, readable colors and sizes, speed in meters per second.
func Default() Record {
	overlayBackground := RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xb4}
	white := RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

	return Record{
		Version: Version,
		Home: Overlay{
			FontSize:        16,
			BackgroundColor: RGBA{R: 0x1b, G: 0x1b, B: 0x1b, A: 0xff},
			FontColor:       RGBA{R: 0xe6, G: 0xe6, B: 0xe6, A: 0xff},
		},
		Speed: SpeedOverlay{
			Overlay: Overlay{
				FontSize:        24,
				BackgroundColor: overlayBackground,
				FontColor:       white,
			},
			Units: units.MetersPerSecond,
		},
		LastLapTime: Overlay{
			FontSize:        24,
			BackgroundColor: overlayBackground,
			FontColor:       white,
		},
	}
}

// Section returns the shared fields of kind, or nil for an unknown kind.
func (r *Record) Section(kind Kind) *Overlay {
	switch kind {
	case KindHome:
		return &r.Home
	case KindSpeed:
		return &r.Speed.Overlay
	case KindLastLapTime:
		return &r.LastLapTime
	default:
		return nil
	}
}

// Desired returns the enabled flag of every overlay kind.
func (r Record) Desired() map[Kind]bool {
	desired := make(map[Kind]bool, len(OverlayKinds))
	for _, kind := range OverlayKinds {
		desired[kind] = r.Section(kind).Enabled
	}

	return desired
}

// ClampFontSize keeps size within the editable range.
func ClampFontSize(size float64) float64 {
	if size < MinFontSize {
		return MinFontSize
	}
	if size > MaxFontSize {
		return MaxFontSize
	}

	return size
}

func (r *Record) normalize() {
	for _, kind := range []Kind{KindHome, KindSpeed, KindLastLapTime} {
		s := r.Section(kind)
		s.FontSize = ClampFontSize(s.FontSize)
	}
	if !r.Speed.Units.Valid() {
		r.Speed.Units = units.MetersPerSecond
	}
}

func (o Overlay) toMap() map[string]any {
	return map[string]any{
		"enabled":          o.Enabled,
		"font_size":        o.FontSize,
		"background_color": o.BackgroundColor.String(),
		"font_color":       o.FontColor.String(),
	}
}

func (r Record) toMap() map[string]any {
	speed := r.Speed.Overlay.toMap()
	speed["units"] = r.Speed.Units.Label()

	return map[string]any{
		"version":       r.Version,
		"home":          r.Home.toMap(),
		"speed":         speed,
		"last_lap_time": r.LastLapTime.toMap(),
	}
}
