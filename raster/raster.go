// Implements a raster backend for serialized chart SVGs, by wrapping
// rasterx. Only the subset the chart layouts emit is supported: rect,
// line, path (M/L/C/Z), text and data-URI images; unknown elements are
// skipped.
package raster

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/srwiley/rasterx"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/fixed"

	"github.com/ipalcic/topola-viewer-2025/svgdom"

	_ "image/jpeg"
	_ "image/png"
)

// Render parses a serialized SVG document and draws it at the given
// oversampling scale onto an opaque white background.
func Render(r io.Reader, scale float64) (*image.RGBA, error) {
	root, err := svgdom.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	return RenderElement(root, scale)
}

// RenderElement rasterizes an already parsed SVG root element.
func RenderElement(root *svgdom.Element, scale float64) (*image.RGBA, error) {
	if root.Name != "svg" {
		return nil, fmt.Errorf("raster: root element is <%s>, not <svg>", root.Name)
	}
	if scale <= 0 {
		return nil, fmt.Errorf("raster: invalid scale %g", scale)
	}
	w := attrF(root, "width", 0)
	h := attrF(root, "height", 0)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("raster: svg has no usable size (%gx%g)", w, h)
	}

	pw := int(math.Ceil(w * scale))
	ph := int(math.Ceil(h * scale))
	img := image.NewRGBA(image.Rect(0, 0, pw, ph))
	// opaque white backdrop, transparent exports show artifacts
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	rd := newRenderer(img, pw, ph)
	xf := xform{s: scale}
	for _, c := range root.Children {
		if err := rd.walk(c, xf); err != nil {
			return nil, err
		}
	}
	return img, nil
}

// xform is the uniform scale-and-translate transform the chart uses.
type xform struct {
	s      float64
	tx, ty float64
}

func (x xform) apply(px, py float64) (float64, float64) {
	return px*x.s + x.tx, py*x.s + x.ty
}

// compose returns x applied after child.
func (x xform) compose(child xform) xform {
	return xform{
		s:  x.s * child.s,
		tx: child.tx*x.s + x.tx,
		ty: child.ty*x.s + x.ty,
	}
}

// parseTransform reads "translate(x y)" and "scale(k)" lists.
func parseTransform(attr string) (xform, error) {
	out := xform{s: 1}
	for _, tok := range strings.Split(attr, ")") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		name, args, ok := strings.Cut(tok, "(")
		if !ok {
			return out, fmt.Errorf("bad transform %q", attr)
		}
		fields := strings.FieldsFunc(args, func(r rune) bool { return r == ' ' || r == ',' })
		vals := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return out, fmt.Errorf("bad transform %q: %w", attr, err)
			}
			vals[i] = v
		}
		switch strings.TrimSpace(name) {
		case "translate":
			t := xform{s: 1}
			switch len(vals) {
			case 1:
				t.tx = vals[0]
			case 2:
				t.tx, t.ty = vals[0], vals[1]
			default:
				return out, fmt.Errorf("bad translate in %q", attr)
			}
			out = out.compose(t)
		case "scale":
			if len(vals) != 1 {
				return out, fmt.Errorf("only uniform scale supported in %q", attr)
			}
			out = out.compose(xform{s: vals[0]})
		default:
			return out, fmt.Errorf("unsupported transform %q", attr)
		}
	}
	return out, nil
}

type renderer struct {
	img     *image.RGBA
	scanner *rasterx.ScannerGV
	filler  *rasterx.Filler
	dasher  *rasterx.Dasher
}

func newRenderer(img *image.RGBA, w, h int) *renderer {
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	return &renderer{
		img:     img,
		scanner: scanner,
		filler:  rasterx.NewFiller(w, h, scanner),
		dasher:  rasterx.NewDasher(w, h, scanner),
	}
}

func (rd *renderer) walk(el *svgdom.Element, xf xform) error {
	switch el.Name {
	case "g":
		if t, ok := el.Attr("transform"); ok {
			child, err := parseTransform(t)
			if err != nil {
				return err
			}
			xf = xf.compose(child)
		}
		for _, c := range el.Children {
			if err := rd.walk(c, xf); err != nil {
				return err
			}
		}
		return nil
	case "rect":
		return rd.drawRect(el, xf)
	case "line":
		return rd.drawLine(el, xf)
	case "path":
		return rd.drawPath(el, xf)
	case "text":
		return rd.drawTextElement(el, xf)
	case "image":
		return rd.drawImage(el, xf)
	}
	// unknown elements are ignored, same policy as parsing icons
	return nil
}

func (rd *renderer) drawRect(el *svgdom.Element, xf xform) error {
	x := attrF(el, "x", 0)
	y := attrF(el, "y", 0)
	w := attrF(el, "width", 0)
	h := attrF(el, "height", 0)
	ops := []pathOp{
		{cmd: 'M', args: []float64{x, y}},
		{cmd: 'L', args: []float64{x + w, y}},
		{cmd: 'L', args: []float64{x + w, y + h}},
		{cmd: 'L', args: []float64{x, y + h}},
		{cmd: 'Z'},
	}
	return rd.paint(el, ops, xf)
}

func (rd *renderer) drawLine(el *svgdom.Element, xf xform) error {
	ops := []pathOp{
		{cmd: 'M', args: []float64{attrF(el, "x1", 0), attrF(el, "y1", 0)}},
		{cmd: 'L', args: []float64{attrF(el, "x2", 0), attrF(el, "y2", 0)}},
	}
	return rd.strokeOps(el, ops, xf)
}

func (rd *renderer) drawPath(el *svgdom.Element, xf xform) error {
	ops, err := parsePath(el.AttrOr("d", ""))
	if err != nil {
		return err
	}
	return rd.paint(el, ops, xf)
}

// paint fills then strokes one shape according to its attributes.
func (rd *renderer) paint(el *svgdom.Element, ops []pathOp, xf xform) error {
	fill, ok, err := parseColor(el.AttrOr("fill", "black"))
	if err != nil {
		return err
	}
	if ok {
		rd.scanner.SetColor(fill)
		feedOps(rd.filler, ops, xf)
		rd.filler.Draw()
		rd.filler.Clear()
	}
	return rd.strokeOps(el, ops, xf)
}

func (rd *renderer) strokeOps(el *svgdom.Element, ops []pathOp, xf xform) error {
	stroke, ok, err := parseColor(el.AttrOr("stroke", "none"))
	if err != nil || !ok {
		return err
	}
	width := attrF(el, "stroke-width", 1) * xf.s
	rd.dasher.SetStroke(
		fixed.Int26_6(width*64), fixed.Int26_6(4*64),
		rasterx.ButtCap, rasterx.ButtCap, rasterx.FlatGap, rasterx.Bevel,
		nil, 0,
	)
	rd.scanner.SetColor(stroke)
	feedOps(rd.dasher, ops, xf)
	rd.dasher.Draw()
	rd.dasher.Clear()
	return nil
}

// feedOps replays parsed path commands into a rasterx adder.
func feedOps(adder rasterx.Adder, ops []pathOp, xf xform) {
	open := false
	for _, op := range ops {
		switch op.cmd {
		case 'M':
			if open {
				adder.Stop(false)
			}
			adder.Start(fixedPt(xf.apply(op.args[0], op.args[1])))
			open = true
		case 'L':
			adder.Line(fixedPt(xf.apply(op.args[0], op.args[1])))
		case 'C':
			// cubic control points transform like any other point
			adder.CubeBezier(
				fixedPt(xf.apply(op.args[0], op.args[1])),
				fixedPt(xf.apply(op.args[2], op.args[3])),
				fixedPt(xf.apply(op.args[4], op.args[5])),
			)
		case 'Z':
			adder.Stop(true)
			open = false
		}
	}
	if open {
		adder.Stop(false)
	}
}

func fixedPt(x, y float64) fixed.Point26_6 {
	return fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)}
}

func (rd *renderer) drawTextElement(el *svgdom.Element, xf xform) error {
	if el.Text == "" {
		return nil
	}
	col, ok, err := parseColor(el.AttrOr("fill", "black"))
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	x, y := xf.apply(attrF(el, "x", 0), attrF(el, "y", 0))
	size := attrF(el, "font-size", 12) * xf.s
	centered := el.AttrOr("text-anchor", "") == "middle"
	return drawText(rd.img, el.Text, x, y, size, col, centered)
}

func (rd *renderer) drawImage(el *svgdom.Element, xf xform) error {
	href := el.AttrOr("href", el.AttrOr("xlink:href", ""))
	if !strings.HasPrefix(href, "data:") {
		// remote references are inlined before rasterizing; anything
		// else cannot be resolved here
		return nil
	}
	_, data, ok := strings.Cut(href, ";base64,")
	if !ok {
		return fmt.Errorf("unsupported image data uri")
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return fmt.Errorf("decode image data uri: %w", err)
	}
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("decode embedded image: %w", err)
	}

	x, y := xf.apply(attrF(el, "x", 0), attrF(el, "y", 0))
	w := attrF(el, "width", float64(src.Bounds().Dx())) * xf.s
	h := attrF(el, "height", float64(src.Bounds().Dy())) * xf.s
	dst := image.Rect(int(x), int(y), int(math.Ceil(x+w)), int(math.Ceil(y+h)))
	xdraw.BiLinear.Scale(rd.img, dst, src, src.Bounds(), xdraw.Over, nil)
	return nil
}

func attrF(el *svgdom.Element, name string, def float64) float64 {
	v, ok := el.Attr(name)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(v, "px"), 64)
	if err != nil {
		return def
	}
	return f
}
