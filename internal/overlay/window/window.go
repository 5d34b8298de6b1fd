// Package window hosts an overlay View in an always-on-top, undecorated,
// transparent ebiten window.
package window

import (
	"context"
	"image"
	"time"

	"codeberg.org/mutker/iroverlay/internal/logger"
	"codeberg.org/mutker/iroverlay/internal/overlay"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
)

const padding = 0.5

type game struct {
	ctx   context.Context
	view  *overlay.View
	faces *faceCache
	log   logger.Logger
}

// Run shows view until ctx is done or the window is closed.
func Run(ctx context.Context, view *overlay.View, log logger.Logger) error {
	faces, err := newFaceCache()
	if err != nil {
		return err
	}

	w, h := view.WindowSize()
	ebiten.SetWindowTitle(view.Kind().Title())
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowDecorated(false)
	ebiten.SetWindowFloating(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetVsyncEnabled(true)

	g := &game{ctx: ctx, view: view, faces: faces, log: log}
	log.Debug().Int("width", w).Int("height", h).Msg("Opening overlay window")

	return ebiten.RunGameWithOptions(g, &ebiten.RunGameOptions{
		ScreenTransparent: true,
	})
}

func (g *game) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	select {
	case <-g.ctx.Done():
		return ebiten.Termination
	default:
	}

	if g.view.Update(time.Now()) {
		ebiten.SetWindowSize(g.view.WindowSize())
	}

	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	frame := g.view.Frame()
	screen.Fill(frame.Background)

	face, err := g.faces.face(frame.FontSize)
	if err != nil {
		g.log.Debug().Err(err).Msg("Failed to build font face")
		return
	}

	bounds := text.BoundString(face, frame.Text)
	x := int(frame.FontSize * padding)
	y := centerBaseline(screen.Bounds(), bounds)
	text.Draw(screen, frame.Text, face, x, y, frame.Foreground)
}

func (*game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// centerBaseline returns the baseline that centers text bounds vertically
// in screen. Bounds are relative to the baseline, so Min.Y is negative.
func centerBaseline(screen, bounds image.Rectangle) int {
	return (screen.Dy()-bounds.Dy())/2 - bounds.Min.Y
}
