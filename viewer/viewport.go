package viewer

import (
	"math"
	"sync"
)

// Viewport models the scrollable container hosting the chart surface.
// Scroll offsets are in screen pixels and never go negative.
type Viewport struct {
	Width, Height float64

	mu               sync.Mutex
	scrollX, scrollY float64
}

// NewViewport returns a viewport of the given pixel size.
func NewViewport(width, height float64) *Viewport {
	return &Viewport{Width: width, Height: height}
}

// Scroll returns the current scroll offsets.
func (v *Viewport) Scroll() (x, y float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scrollX, v.scrollY
}

// SetScroll moves the viewport, clamping offsets at zero.
func (v *Viewport) SetScroll(x, y float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scrollX = math.Max(x, 0)
	v.scrollY = math.Max(y, 0)
}

func lerp(from, to, t float64) float64 {
	return from + (to-from)*t
}
