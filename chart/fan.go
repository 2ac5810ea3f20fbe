package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/ipalcic/topola-viewer-2025/gedcom"
	"github.com/ipalcic/topola-viewer-2025/svgdom"
)

const (
	fanMargin    = 24.0
	fanInnerR    = 70.0
	fanRingWidth = 80.0
	fanMaxGen    = 8 // guards against cyclic family links
)

// fanChart lays ancestors out as radial wedges around the start
// individual. It has no in-place update path; selection changes force
// a full reconstruction.
type fanChart struct {
	cfg  Config
	data *gedcom.Dataset
	svg  *svgdom.Element
}

var _ Widget = (*fanChart)(nil)

func newFanChart(cfg Config) *fanChart {
	return &fanChart{cfg: cfg, data: cfg.Data}
}

type fanWedge struct {
	indi *gedcom.Individual
	gen  int // 1 = parents
	slot int // position within the ring, 0 <= slot < 2^gen
}

func (f *fanChart) Render(params RenderParams) (LayoutResult, error) {
	start := f.data.Individual(params.StartIndividual)
	if start == nil {
		return LayoutResult{}, fmt.Errorf("chart: unknown start individual %q", params.StartIndividual)
	}

	var wedges []fanWedge
	maxGen := 0
	var walk func(indi *gedcom.Individual, gen, slot int)
	walk = func(indi *gedcom.Individual, gen, slot int) {
		if gen > fanMaxGen {
			return
		}
		if gen > 0 {
			wedges = append(wedges, fanWedge{indi: indi, gen: gen, slot: slot})
			if gen > maxGen {
				maxGen = gen
			}
		}
		fam := f.data.Family(indi.FamilyAsChild)
		if fam == nil {
			return
		}
		if father := f.data.Individual(fam.Husband); father != nil {
			walk(father, gen+1, slot*2)
		}
		if mother := f.data.Individual(fam.Wife); mother != nil {
			walk(mother, gen+1, slot*2+1)
		}
	}
	walk(start, 0, 0)

	size := 2 * (fanInnerR + fanRingWidth*float64(maxGen) + fanMargin)
	cx, cy := size/2, size/2

	group := svgdom.New("g").SetAttr("transform", "scale(1)")
	group.Append(svgdom.New("path").
		SetAttr("d", circlePath(cx, cy, fanInnerR)).
		SetAttr("fill", boxFill(f.cfg.Colors, start, params.BaseGeneration)).
		SetAttr("stroke", boxStroke).
		SetAttr("stroke-width", "1"))
	group.Append(textAt(cx, cy+4, 12, start.Name()))

	for _, w := range wedges {
		r0 := fanInnerR + fanRingWidth*float64(w.gen-1)
		r1 := r0 + fanRingWidth
		span := 2 * math.Pi / math.Pow(2, float64(w.gen))
		a0 := -math.Pi/2 + span*float64(w.slot)
		group.Append(svgdom.New("path").
			SetAttr("d", wedgePath(cx, cy, r0, r1, a0, a0+span)).
			SetAttr("fill", boxFill(f.cfg.Colors, w.indi, params.BaseGeneration+w.gen)).
			SetAttr("stroke", boxStroke).
			SetAttr("stroke-width", "1"))

		mid := a0 + span/2
		rm := (r0 + r1) / 2
		label := w.indi.Name()
		if f.cfg.ShowIDs {
			label += " " + w.indi.ID
		}
		group.Append(textAt(cx+rm*math.Cos(mid), cy+rm*math.Sin(mid)+3, 10, label))
	}

	next := svgdom.New("svg").
		SetAttr("width", ftoa(size)).
		SetAttr("height", ftoa(size)).
		Append(group)
	replaceMounted(f.cfg.Mount, f.svg, next)
	f.svg = next

	return LayoutResult{
		Width:  size,
		Height: size,
		Origin: Point{X: cx, Y: cy},
		Done:   f.cfg.done(),
	}, nil
}

// wedgePath builds a ring segment between radii r0 < r1 and angles
// a0 < a1, arcs approximated with cubic segments.
func wedgePath(cx, cy, r0, r1, a0, a1 float64) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "M%s %s", ftoa(cx+r0*math.Cos(a0)), ftoa(cy+r0*math.Sin(a0)))
	fmt.Fprintf(&sb, " L%s %s", ftoa(cx+r1*math.Cos(a0)), ftoa(cy+r1*math.Sin(a0)))
	appendArc(&sb, cx, cy, r1, a0, a1)
	fmt.Fprintf(&sb, " L%s %s", ftoa(cx+r0*math.Cos(a1)), ftoa(cy+r0*math.Sin(a1)))
	appendArc(&sb, cx, cy, r0, a1, a0)
	sb.WriteString(" Z")
	return sb.String()
}

func circlePath(cx, cy, r float64) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "M%s %s", ftoa(cx+r), ftoa(cy))
	appendArc(&sb, cx, cy, r, 0, 2*math.Pi)
	sb.WriteString(" Z")
	return sb.String()
}

// appendArc emits cubic segments tracing the circle of radius r from
// angle a0 to a1 (either direction), max a quarter turn per segment.
// The current point must already lie at angle a0.
func appendArc(sb *strings.Builder, cx, cy, r, a0, a1 float64) {
	total := a1 - a0
	steps := int(math.Ceil(math.Abs(total) / (math.Pi / 2)))
	if steps == 0 {
		return
	}
	delta := total / float64(steps)
	k := 4.0 / 3.0 * math.Tan(delta/4)
	for i := 0; i < steps; i++ {
		s0 := a0 + delta*float64(i)
		s1 := s0 + delta
		x0, y0 := math.Cos(s0), math.Sin(s0)
		x1, y1 := math.Cos(s1), math.Sin(s1)
		fmt.Fprintf(sb, " C%s %s %s %s %s %s",
			ftoa(cx+r*(x0-k*y0)), ftoa(cy+r*(y0+k*x0)),
			ftoa(cx+r*(x1+k*y1)), ftoa(cy+r*(y1-k*x1)),
			ftoa(cx+r*x1), ftoa(cy+r*y1))
	}
}
