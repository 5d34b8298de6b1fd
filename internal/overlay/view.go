// Package overlay holds what an overlay process shows, independent of the
// window it is drawn in.
package overlay

import (
	"image/color"
	"math"
	"time"

	"codeberg.org/mutker/iroverlay/internal/logger"
	"codeberg.org/mutker/iroverlay/internal/store"
	"codeberg.org/mutker/iroverlay/internal/telemetry"
)

// Sampler is the part of telemetry.Sampler a View drives.
type Sampler interface {
	Tick(now time.Time)
	Snapshot() telemetry.Snapshot
}

// View is the state of one overlay window. It is driven from the window's
// update loop and is not safe for concurrent use.
type View struct {
	kind    store.Kind
	rec     store.Record
	sampler Sampler
	reload  <-chan store.Record
	log     logger.Logger
}

// Frame is everything needed to draw one frame.
type Frame struct {
	Text       string
	FontSize   float64
	Foreground color.NRGBA
	Background color.NRGBA
}

// NewView shows kind from rec. Records received on reload replace rec;
// reload may be nil.
func NewView(kind store.Kind, rec store.Record, sampler Sampler, reload <-chan store.Record, log logger.Logger) *View {
	return &View{
		kind:    kind,
		rec:     rec,
		sampler: sampler,
		reload:  reload,
		log:     log,
	}
}

func (v *View) Kind() store.Kind {
	return v.kind
}

// Update applies a pending reload and runs one sampler tick. It reports
// whether the appearance changed.
func (v *View) Update(now time.Time) bool {
	changed := false

	select {
	case rec, ok := <-v.reload:
		if !ok {
			v.reload = nil
			break
		}
		before := *v.section()
		beforeUnits := v.rec.Speed.Units
		v.rec = rec
		changed = *v.section() != before || v.rec.Speed.Units != beforeUnits
		if changed {
			v.log.Debug().Str("kind", string(v.kind)).Msg("Applied reloaded overlay configuration")
		}
	default:
	}

	v.sampler.Tick(now)

	return changed
}

func (v *View) Frame() Frame {
	s := v.section()

	return Frame{
		Text:       Label(v.kind, v.sampler.Snapshot(), v.rec),
		FontSize:   s.FontSize,
		Foreground: s.FontColor.Color(),
		Background: s.BackgroundColor.Color(),
	}
}

// WindowSize fits the longest label the overlay shows at the configured
// font size.
func (v *View) WindowSize() (int, int) {
	size := v.section().FontSize
	chars := 8.0
	if v.kind == store.KindLastLapTime {
		chars = 24
	}

	return int(math.Ceil(size * chars * 0.6)), int(math.Ceil(size * 2))
}

func (v *View) section() *store.Overlay {
	if s := v.rec.Section(v.kind); s != nil {
		return s
	}

	return &v.rec.Home
}
