// Coordinates chart renders against in-flight animations.
// The coordinator is the sole mutator of the chart mount: re-renders
// requested while an animation runs are parked in a depth-1 pending
// slot (last write wins) and applied once the animation completes.
package viewer

import (
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ipalcic/topola-viewer-2025/chart"
	"github.com/ipalcic/topola-viewer-2025/config"
	"github.com/ipalcic/topola-viewer-2025/gedcom"
	"github.com/ipalcic/topola-viewer-2025/svgdom"
)

const scrollTweenSteps = 10

// RenderRequest is one immutable snapshot of the view parameters.
type RenderRequest struct {
	Data            *gedcom.Dataset
	StartIndividual string
	Generation      int
	ChartType       chart.Type
	Renderer        chart.RendererType
	Colors          chart.ColorScheme
	ShowIDs         bool
	ShowSex         bool
	// Freeze locks the current view: any non-initial request carrying
	// it is dropped.
	Freeze bool
}

// RenderOptions control one renderChart call.
type RenderOptions struct {
	Initial       bool
	ResetViewport bool
}

type pendingRender struct {
	req           RenderRequest
	resetViewport bool
}

// Coordinator owns the chart widget lifecycle and the zoom/scroll state
// of one chart surface.
type Coordinator struct {
	cfg         config.Config
	log         *logrus.Entry
	mount       *svgdom.Element
	viewport    *Viewport
	onSelection func(id string, generation int)

	mu             sync.Mutex
	widget         chart.Widget
	widgetType     chart.Type
	widgetRenderer chart.RendererType
	zoom           *ZoomHandler
	chartW, chartH float64
	animating      bool
	pending        *pendingRender
}

// NewCoordinator binds a coordinator to its mount element and viewport.
func NewCoordinator(cfg config.Config, mount *svgdom.Element, viewport *Viewport, onSelection func(id string, generation int), log *logrus.Entry) *Coordinator {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Coordinator{
		cfg:         cfg,
		log:         log.WithField("component", "viewer"),
		mount:       mount,
		viewport:    viewport,
		onSelection: onSelection,
	}
}

// Mount returns the element the chart renders under.
func (c *Coordinator) Mount() *svgdom.Element { return c.mount }

// Viewport returns the viewport the coordinator frames.
func (c *Coordinator) Viewport() *Viewport { return c.viewport }

// Scale returns the current zoom scale, 1 before the first render.
func (c *Coordinator) Scale() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.zoom == nil {
		return 1
	}
	return c.zoom.Scale()
}

// RenderChart applies one render request. While an animation is in
// flight, non-initial requests are parked in the pending slot and the
// call returns immediately; the most recent parked request runs when
// the animation completes.
func (c *Coordinator) RenderChart(req RenderRequest, opts RenderOptions) error {
	c.mu.Lock()

	if !opts.Initial && c.animating {
		c.pending = &pendingRender{req: req, resetViewport: opts.ResetViewport}
		c.mu.Unlock()
		return nil
	}
	if !opts.Initial && req.Freeze {
		c.mu.Unlock()
		return nil
	}

	if req.Data == nil {
		c.mu.Unlock()
		return fmt.Errorf("viewer: nil dataset in render request")
	}
	data := req.Data.Dedup()

	// a chart-type or renderer change invalidates the widget even
	// mid-session
	rebuild := opts.Initial || c.widget == nil ||
		req.ChartType != c.widgetType || req.Renderer != c.widgetRenderer

	if !rebuild {
		if up, ok := c.widget.(chart.DataUpdater); ok {
			if err := up.UpdateData(data); err != nil {
				c.mu.Unlock()
				return err
			}
		} else {
			// widgets without an update capability are reconstructed
			// the same way as on the initial render
			rebuild = true
		}
	}
	if rebuild {
		c.mount.RemoveChildren()
		widget, err := chart.New(chart.Config{
			Data:              data,
			Type:              req.ChartType,
			Renderer:          req.Renderer,
			Mount:             c.mount,
			OnSelection:       c.onSelection,
			Colors:            req.Colors,
			Locale:            c.cfg.Locale,
			Animate:           true,
			ShowIDs:           req.ShowIDs,
			ShowSex:           req.ShowSex,
			AnimationDuration: c.cfg.AnimationDuration.Std(),
		})
		if err != nil {
			c.mu.Unlock()
			return err
		}
		c.widget = widget
		c.widgetType = req.ChartType
		c.widgetRenderer = req.Renderer
	}

	layout, err := c.widget.Render(chart.RenderParams{
		StartIndividual: req.StartIndividual,
		BaseGeneration:  req.Generation,
	})
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.chartW, c.chartH = layout.Width, layout.Height

	// the chart must never zoom smaller than fitting the viewport on
	// at least one axis
	minScale := math.Min(c.viewport.Width/layout.Width, c.viewport.Height/layout.Height)
	prevScale := 1.0
	if c.zoom != nil {
		prevScale = c.zoom.Scale()
	}
	c.zoom = newZoomHandler(minScale, c.cfg.MaxZoom, layout.Width, layout.Height, prevScale)
	scale := c.zoom.Scale()

	if opts.Initial {
		if opts.ResetViewport {
			c.centerOn(layout.Origin, scale)
		}
		c.applyFrame(scale)
	} else {
		go c.animateFrame(scale, layout.Origin, opts.ResetViewport)
	}

	c.animating = true
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{
		"start": req.StartIndividual,
		"type":  req.ChartType,
		"size":  fmt.Sprintf("%.0fx%.0f", layout.Width, layout.Height),
	}).Debug("chart rendered")

	go func() {
		<-layout.Done
		c.animationDone()
	}()
	return nil
}

// centerOn scrolls so that the origin point sits at the viewport
// centre at the given scale. Callers hold c.mu.
func (c *Coordinator) centerOn(origin chart.Point, scale float64) {
	c.viewport.SetScroll(
		origin.X*scale-c.viewport.Width/2,
		origin.Y*scale-c.viewport.Height/2,
	)
	c.zoom.SetTranslate(origin.X, origin.Y)
}

// applyFrame writes the svg width/height/translate attributes for the
// current zoom scale. Callers hold c.mu.
func (c *Coordinator) applyFrame(scale float64) {
	svg := c.mount.Find("svg")
	if svg == nil {
		return
	}
	sx, sy := c.viewport.Scroll()
	svg.SetAttr("width", ftoa(c.chartW*scale)).
		SetAttr("height", ftoa(c.chartH*scale)).
		SetAttr("transform", fmt.Sprintf("translate(%s %s)", ftoa(-sx), ftoa(-sy)))
	if g := svg.Find("g"); g != nil {
		g.SetAttr("transform", fmt.Sprintf("scale(%s)", ftoa(scale)))
	}
}

// animateFrame re-frames the surface after the configured delay,
// tweening the scroll offsets linearly over the transition duration
// when a viewport reset was requested.
func (c *Coordinator) animateFrame(scale float64, origin chart.Point, resetViewport bool) {
	time.Sleep(c.cfg.AnimationDelay.Std())

	if resetViewport {
		fromX, fromY := c.viewport.Scroll()
		toX := origin.X*scale - c.viewport.Width/2
		toY := origin.Y*scale - c.viewport.Height/2
		stepTime := c.cfg.AnimationDuration.Std() / scrollTweenSteps
		for i := 1; i <= scrollTweenSteps; i++ {
			t := float64(i) / scrollTweenSteps
			c.viewport.SetScroll(lerp(fromX, toX, t), lerp(fromY, toY, t))
			time.Sleep(stepTime)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyFrame(scale)
	if resetViewport && c.zoom != nil {
		c.zoom.SetTranslate(origin.X, origin.Y)
	}
}

// animationDone clears the animating flag and drains the pending slot.
func (c *Coordinator) animationDone() {
	c.mu.Lock()
	c.animating = false
	p := c.pending
	c.pending = nil
	c.mu.Unlock()

	if p == nil {
		return
	}
	if err := c.RenderChart(p.req, RenderOptions{Initial: false, ResetViewport: p.resetViewport}); err != nil {
		c.log.WithError(err).Warn("deferred render failed")
	}
}

// Zoom scales the current view by factor about the viewport's visual
// centre. At least one render must have installed a zoom handler.
func (c *Coordinator) Zoom(factor float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.zoom == nil {
		return fmt.Errorf("viewer: zoom requires a completed render")
	}
	c.zoom.ScaleBy(factor)
	scale := c.zoom.Scale()
	tx, ty := c.zoom.Translate()
	c.viewport.SetScroll(tx*scale-c.viewport.Width/2, ty*scale-c.viewport.Height/2)
	c.applyFrame(scale)
	return nil
}

// SyncScroll recomputes the zoom transform after a direct viewport
// scroll so gesture-driven zoom stays consistent with it.
func (c *Coordinator) SyncScroll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.zoom == nil {
		return
	}
	sx, sy := c.viewport.Scroll()
	scale := c.zoom.Scale()
	c.zoom.SetTranslate((sx+c.viewport.Width/2)/scale, (sy+c.viewport.Height/2)/scale)
}

// SelectAt maps a viewport coordinate through the zoom transform and
// fires the selection callback for the individual underneath, if the
// widget supports hit-testing. Reports whether anything was selected.
func (c *Coordinator) SelectAt(x, y float64) bool {
	c.mu.Lock()
	widget := c.widget
	scale := 0.0
	if c.zoom != nil {
		scale = c.zoom.Scale()
	}
	sx, sy := c.viewport.Scroll()
	c.mu.Unlock()

	if widget == nil || scale == 0 {
		return false
	}
	sel, ok := widget.(chart.Selector)
	if !ok {
		return false
	}
	return sel.Select((sx+x)/scale, (sy+y)/scale)
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
