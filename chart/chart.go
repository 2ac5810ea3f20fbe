// Implements the chart widget layer: layout engines that place
// individual boxes or fan wedges on an SVG surface mounted by the
// viewer. Widgets are selected statically by chart type; tree charts
// can swap their dataset in place, the fan chart must be rebuilt.
package chart

import (
	"fmt"
	"time"

	"github.com/ipalcic/topola-viewer-2025/gedcom"
	"github.com/ipalcic/topola-viewer-2025/svgdom"
)

// Type selects the chart layout.
type Type string

const (
	Hourglass   Type = "hourglass"
	Ancestors   Type = "ancestors"
	Descendants Type = "descendants"
	Fan         Type = "fan"
)

// RendererType selects how much detail each individual box carries.
type RendererType string

const (
	RendererSimple   RendererType = "simple"
	RendererDetailed RendererType = "detailed"
)

// ColorScheme selects the box fill policy.
type ColorScheme string

const (
	ColorsNone         ColorScheme = "none"
	ColorsByGeneration ColorScheme = "generation"
	ColorsBySex        ColorScheme = "sex"
)

// Point is a position in chart coordinates.
type Point struct {
	X, Y float64
}

// RenderParams selects the starting individual for one layout pass.
type RenderParams struct {
	StartIndividual string
	BaseGeneration  int
}

// LayoutResult reports the computed chart extent, the origin point to
// frame the viewport on, and the animation-completion signal.
type LayoutResult struct {
	Width, Height float64
	Origin        Point
	Done          <-chan struct{}
}

// Widget is one constructed chart instance. It owns the SVG subtree it
// renders under its mount element.
type Widget interface {
	Render(RenderParams) (LayoutResult, error)
}

// DataUpdater is implemented by widgets that can swap their dataset in
// place instead of being reconstructed.
type DataUpdater interface {
	UpdateData(*gedcom.Dataset) error
}

// Selector is implemented by widgets that support hit-testing a chart
// coordinate to an individual.
type Selector interface {
	// IndividualAt returns the id of the individual whose box covers
	// the chart coordinate.
	IndividualAt(x, y float64) (string, bool)
	// Select hit-tests the coordinate and fires the selection callback.
	// Reports whether an individual was hit.
	Select(x, y float64) bool
}

// Config constructs a widget. Explicit sizing is intentionally absent:
// the layout computes its own extent.
type Config struct {
	Data        *gedcom.Dataset
	Type        Type
	Renderer    RendererType
	Mount       *svgdom.Element
	OnSelection func(id string, generation int)
	Colors      ColorScheme
	Locale      string
	Animate     bool
	ShowIDs     bool
	ShowSex     bool

	// AnimationDuration times the Done signal when Animate is set.
	AnimationDuration time.Duration
}

// New constructs a widget for the configured chart type.
func New(cfg Config) (Widget, error) {
	if cfg.Data == nil {
		return nil, fmt.Errorf("chart: nil dataset")
	}
	if cfg.Mount == nil {
		return nil, fmt.Errorf("chart: nil mount element")
	}
	if cfg.Renderer == "" {
		cfg.Renderer = RendererSimple
	}
	switch cfg.Type {
	case Hourglass, Ancestors, Descendants:
		return newTreeChart(cfg), nil
	case Fan:
		return newFanChart(cfg), nil
	}
	return nil, fmt.Errorf("chart: unsupported chart type %q", cfg.Type)
}

// SupportsUpdate reports whether the chart-type/renderer pairing yields
// a widget with in-place data updates.
func SupportsUpdate(t Type, _ RendererType) bool {
	return t != Fan
}

// done returns the animation-completion channel for one render pass.
// Without animation the signal resolves immediately.
func (cfg *Config) done() <-chan struct{} {
	ch := make(chan struct{})
	if !cfg.Animate || cfg.AnimationDuration <= 0 {
		close(ch)
		return ch
	}
	time.AfterFunc(cfg.AnimationDuration, func() { close(ch) })
	return ch
}

// replaceMounted swaps the widget's previous svg subtree under the
// mount for the freshly built one.
func replaceMounted(mount, old, next *svgdom.Element) {
	for i, c := range mount.Children {
		if c == old {
			mount.Children[i] = next
			return
		}
	}
	mount.Append(next)
}
