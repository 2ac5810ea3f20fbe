package viewer

import "math"

// ZoomHandler keeps the gesture transform of the chart surface. The
// translate component is the chart-space point shown at the viewport
// centre, clamped to the chart extent; the scale is clamped to the
// bounds computed per render.
type ZoomHandler struct {
	minScale, maxScale float64
	chartW, chartH     float64

	scale  float64
	tx, ty float64
}

func newZoomHandler(minScale, maxScale, chartW, chartH, scale float64) *ZoomHandler {
	z := &ZoomHandler{
		minScale: minScale,
		maxScale: maxScale,
		chartW:   chartW,
		chartH:   chartH,
	}
	z.scale = z.clampScale(scale)
	return z
}

// Scale returns the current zoom scale.
func (z *ZoomHandler) Scale() float64 { return z.scale }

// Translate returns the chart-space point at the viewport centre.
func (z *ZoomHandler) Translate() (x, y float64) { return z.tx, z.ty }

// MinScale returns the lower zoom bound.
func (z *ZoomHandler) MinScale() float64 { return z.minScale }

// MaxScale returns the upper zoom bound.
func (z *ZoomHandler) MaxScale() float64 { return z.maxScale }

// ScaleBy zooms by factor about the viewport centre: the chart point
// under the centre stays put, only the scale changes.
func (z *ZoomHandler) ScaleBy(factor float64) {
	z.scale = z.clampScale(z.scale * factor)
}

// SetTranslate re-targets the viewport centre, clamped to the chart.
func (z *ZoomHandler) SetTranslate(x, y float64) {
	z.tx = clamp(x, 0, z.chartW)
	z.ty = clamp(y, 0, z.chartH)
}

func (z *ZoomHandler) clampScale(s float64) float64 {
	return clamp(s, z.minScale, z.maxScale)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
