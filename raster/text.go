package raster

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	fontOnce   sync.Once
	chartFont  *opentype.Font
	fontErr    error
	faceCache  = map[float64]font.Face{}
	faceCacheM sync.Mutex
)

func faceFor(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		chartFont, fontErr = opentype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, fmt.Errorf("parse bundled font: %w", fontErr)
	}
	faceCacheM.Lock()
	defer faceCacheM.Unlock()
	if face, ok := faceCache[size]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(chartFont, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("font face at %g: %w", size, err)
	}
	faceCache[size] = face
	return face, nil
}

// drawText renders one text run with its baseline at (x, y). When
// centered, x is the anchor midpoint (text-anchor="middle").
func drawText(dst *image.RGBA, s string, x, y, size float64, col color.Color, centered bool) error {
	face, err := faceFor(size)
	if err != nil {
		return err
	}
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)},
	}
	if centered {
		d.Dot.X -= d.MeasureString(s) / 2
	}
	d.DrawString(s)
	return nil
}
