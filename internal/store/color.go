package store

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// RGBA is a non-premultiplied color, persisted as "#rrggbbaa".
type RGBA struct {
	R, G, B, A uint8
}

// Color converts c for drawing.
func (c RGBA) Color() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func (c RGBA) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func (c RGBA) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts "#rrggbbaa" or "#rrggbb" (opaque).
func (c *RGBA) UnmarshalText(text []byte) error {
	s := strings.TrimPrefix(strings.TrimSpace(string(text)), "#")
	switch len(s) {
	case 6:
		s += "ff"
	case 8:
	default:
		return fmt.Errorf("invalid color %q", string(text))
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return fmt.Errorf("invalid color %q: %w", string(text), err)
	}

	*c = RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}

	return nil
}

// Palette is the set of colors the control panel cycles through.
var Palette = []RGBA{
	{R: 0x00, G: 0x00, B: 0x00, A: 0xb4},
	{R: 0x1b, G: 0x1b, B: 0x1b, A: 0xff},
	{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	{R: 0xe6, G: 0xe6, B: 0xe6, A: 0xff},
	{R: 0xff, G: 0xd7, B: 0x00, A: 0xff},
	{R: 0x32, G: 0xcd, B: 0x32, A: 0xff},
	{R: 0xdc, G: 0x14, B: 0x3c, A: 0xff},
	{R: 0x1e, G: 0x90, B: 0xff, A: 0xff},
	{R: 0x00, G: 0x00, B: 0x00, A: 0x00},
}

// NextInPalette returns the palette entry after c, or the first entry when
// c is not part of the palette.
func NextInPalette(c RGBA) RGBA {
	for i, p := range Palette {
		if p == c {
			return Palette[(i+1)%len(Palette)]
		}
	}

	return Palette[0]
}
