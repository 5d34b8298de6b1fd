package window

import (
	"codeberg.org/mutker/iroverlay/internal/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

const ErrFontLoad = errors.ErrorCode("overlay_font_load_failed")

// faceCache keeps one face per font size; sizes move in half points so the
// cache stays small.
type faceCache struct {
	font  *opentype.Font
	faces map[float64]font.Face
}

func newFaceCache() (*faceCache, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, errors.New().Wrap(ErrFontLoad, err)
	}

	return &faceCache{font: f, faces: make(map[float64]font.Face)}, nil
}

func (c *faceCache) face(size float64) (font.Face, error) {
	if face, ok := c.faces[size]; ok {
		return face, nil
	}

	face, err := opentype.NewFace(c.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, errors.New().Wrap(ErrFontLoad, err)
	}
	c.faces[size] = face

	return face, nil
}
