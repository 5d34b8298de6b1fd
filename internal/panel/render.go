package panel

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"codeberg.org/mutker/iroverlay/internal/store"
)

const (
	clearScreen = "\x1b[H\x1b[2J"
	reset       = "\x1b[0m"
	bold        = "\x1b[1m"
	normal      = "\x1b[22m"
	// Raw mode does not translate newlines.
	newline = "\r\n"
)

// Render draws the current page. The panel itself uses the home section's
// colors.
func (m *Model) Render(w io.Writer, rec store.Record, running []store.Kind) error {
	var b strings.Builder
	home := rec.Home

	b.WriteString(clearScreen)
	b.WriteString(colors(home.FontColor, home.BackgroundColor))
	b.WriteString(tabs(m.page))
	b.WriteString(newline + newline)

	section := rec.Section(m.page)
	switch m.page {
	case store.KindHome:
		b.WriteString("iRacing overlays" + newline + newline)
		for _, kind := range store.OverlayKinds {
			fmt.Fprintf(&b, "  %-16s %s%s", kind.Title(), onOff(rec.Section(kind).Enabled, slices.Contains(running, kind)), newline)
		}
	default:
		fmt.Fprintf(&b, "  Enabled:     %s%s", onOff(section.Enabled, slices.Contains(running, m.page)), newline)
		if m.page == store.KindSpeed {
			fmt.Fprintf(&b, "  Units:       %s%s", rec.Speed.Units.Label(), newline)
		}
	}

	fmt.Fprintf(&b, "  Font size:   %.1f%s", section.FontSize, newline)
	fmt.Fprintf(&b, "  Background:  %s %s%s", swatch(section.BackgroundColor), section.BackgroundColor, newline)
	fmt.Fprintf(&b, "  Font color:  %s %s%s", swatch(section.FontColor), section.FontColor, newline)
	b.WriteString(colors(home.FontColor, home.BackgroundColor))

	b.WriteString(newline)
	if m.status != "" {
		b.WriteString("  " + m.status + newline)
	}
	b.WriteString(newline + help(m.page) + reset + newline)

	_, err := io.WriteString(w, b.String())
	return err
}

func tabs(current store.Kind) string {
	var parts []string
	for i, kind := range pages {
		label := fmt.Sprintf("[%d] %s", i+1, kind.Title())
		if kind == current {
			label = bold + label + normal
		}
		parts = append(parts, label)
	}

	return strings.Join(parts, "  ")
}

func onOff(enabled, running bool) string {
	switch {
	case enabled && running:
		return "on (running)"
	case enabled:
		return "on (starting)"
	default:
		return "off"
	}
}

func help(page store.Kind) string {
	keys := "space toggle  +/- font size  b background  f font color"
	if page == store.KindHome {
		keys = "+/- font size  b background  f font color"
	}
	if page == store.KindSpeed {
		keys += "  u units"
	}

	return "  " + keys + "  q quit"
}

func colors(fg, bg store.RGBA) string {
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm", fg.R, fg.G, fg.B, bg.R, bg.G, bg.B)
}

// swatch paints a small block in c. Terminals have no alpha, so c is
// blended over black.
func swatch(c store.RGBA) string {
	blend := func(v uint8) uint8 {
		return uint8(uint16(v) * uint16(c.A) / 0xff)
	}

	return fmt.Sprintf("\x1b[48;2;%d;%d;%dm    \x1b[49m", blend(c.R), blend(c.G), blend(c.B))
}
