package chart

import (
	"fmt"

	"github.com/ipalcic/topola-viewer-2025/gedcom"
	"github.com/ipalcic/topola-viewer-2025/svgdom"
)

const (
	treeMargin = 24.0
	rowGap     = 48.0
	columnGap  = 24.0
	lineHeight = 16.0
)

// treeChart lays out ancestors/descendants/hourglass charts as
// generation rows of individual boxes. It supports in-place data
// updates, the layout is recomputed on the next render.
type treeChart struct {
	cfg  Config
	data *gedcom.Dataset
	svg  *svgdom.Element

	nodes map[string]nodeBox
}

var (
	_ Widget      = (*treeChart)(nil)
	_ DataUpdater = (*treeChart)(nil)
	_ Selector    = (*treeChart)(nil)
)

type nodeBox struct {
	x, y, w, h float64
	generation int
}

// one parent-to-child connector
type treeEdge struct {
	parent, child string
}

func newTreeChart(cfg Config) *treeChart {
	return &treeChart{cfg: cfg, data: cfg.Data}
}

// UpdateData swaps the dataset in place. The new data is picked up by
// the next Render call.
func (t *treeChart) UpdateData(data *gedcom.Dataset) error {
	if data == nil {
		return fmt.Errorf("chart: nil dataset")
	}
	t.data = data
	return nil
}

func (t *treeChart) boxSize() (w, h float64) {
	w = 140
	if t.cfg.Renderer == RendererDetailed {
		w = 170
	}
	return w, 18 + lineHeight*float64(t.textLines())
}

func (t *treeChart) textLines() int {
	lines := 1
	if t.cfg.Renderer == RendererDetailed {
		lines += 2
	}
	if t.cfg.ShowIDs {
		lines++
	}
	return lines
}

// Render computes the layout for the given start individual and swaps
// the chart subtree under the mount.
func (t *treeChart) Render(params RenderParams) (LayoutResult, error) {
	start := t.data.Individual(params.StartIndividual)
	if start == nil {
		return LayoutResult{}, fmt.Errorf("chart: unknown start individual %q", params.StartIndividual)
	}

	var ancestors, descendants [][]*gedcom.Individual
	var edges []treeEdge
	if t.cfg.Type == Ancestors || t.cfg.Type == Hourglass {
		ancestors = t.ancestorRows(start, &edges)
	}
	if t.cfg.Type == Descendants || t.cfg.Type == Hourglass {
		descendants = t.descendantRows(start, &edges)
	}

	// rows top to bottom: oldest ancestors, start, descendants
	type row struct {
		rel   int // generations above (+) or below (-) the start
		indis []*gedcom.Individual
	}
	var rows []row
	for i := len(ancestors) - 1; i >= 0; i-- {
		rows = append(rows, row{rel: i + 1, indis: ancestors[i]})
	}
	rows = append(rows, row{rel: 0, indis: []*gedcom.Individual{start}})
	for i, indis := range descendants {
		rows = append(rows, row{rel: -(i + 1), indis: indis})
	}

	bw, bh := t.boxSize()
	maxRow := 0.0
	for _, r := range rows {
		if w := rowWidth(len(r.indis), bw); maxRow < w {
			maxRow = w
		}
	}
	chartW := maxRow + 2*treeMargin
	chartH := float64(len(rows))*(bh+rowGap) - rowGap + 2*treeMargin

	t.nodes = make(map[string]nodeBox)
	y := treeMargin
	for _, r := range rows {
		x := (chartW - rowWidth(len(r.indis), bw)) / 2
		for _, indi := range r.indis {
			t.nodes[indi.ID] = nodeBox{
				x: x, y: y, w: bw, h: bh,
				generation: params.BaseGeneration + r.rel,
			}
			x += bw + columnGap
		}
		y += bh + rowGap
	}

	group := svgdom.New("g").SetAttr("transform", "scale(1)")
	for _, e := range edges {
		p, okP := t.nodes[e.parent]
		c, okC := t.nodes[e.child]
		if !okP || !okC {
			continue
		}
		group.Append(lineBetween(p.x+p.w/2, p.y+p.h, c.x+c.w/2, c.y))
	}
	for _, r := range rows {
		for _, indi := range r.indis {
			t.drawBox(group, indi, t.nodes[indi.ID])
		}
	}

	next := svgdom.New("svg").
		SetAttr("width", ftoa(chartW)).
		SetAttr("height", ftoa(chartH)).
		Append(group)
	replaceMounted(t.cfg.Mount, t.svg, next)
	t.svg = next

	startBox := t.nodes[start.ID]
	return LayoutResult{
		Width:  chartW,
		Height: chartH,
		Origin: Point{X: startBox.x + startBox.w/2, Y: startBox.y + startBox.h/2},
		Done:   t.cfg.done(),
	}, nil
}

func rowWidth(n int, bw float64) float64 {
	if n == 0 {
		return 0
	}
	return float64(n)*bw + float64(n-1)*columnGap
}

// ancestorRows walks parents generation by generation. rows[0] holds
// the start individual's parents.
func (t *treeChart) ancestorRows(start *gedcom.Individual, edges *[]treeEdge) [][]*gedcom.Individual {
	var rows [][]*gedcom.Individual
	seen := map[string]bool{start.ID: true}
	current := []*gedcom.Individual{start}
	for len(current) > 0 {
		var next []*gedcom.Individual
		for _, indi := range current {
			fam := t.data.Family(indi.FamilyAsChild)
			if fam == nil {
				continue
			}
			for _, pid := range []string{fam.Husband, fam.Wife} {
				parent := t.data.Individual(pid)
				if parent == nil {
					continue
				}
				*edges = append(*edges, treeEdge{parent: parent.ID, child: indi.ID})
				if seen[parent.ID] {
					continue
				}
				seen[parent.ID] = true
				next = append(next, parent)
			}
		}
		if len(next) > 0 {
			rows = append(rows, next)
		}
		current = next
	}
	return rows
}

// descendantRows walks children generation by generation. rows[0]
// holds the start individual's children.
func (t *treeChart) descendantRows(start *gedcom.Individual, edges *[]treeEdge) [][]*gedcom.Individual {
	var rows [][]*gedcom.Individual
	seen := map[string]bool{start.ID: true}
	current := []*gedcom.Individual{start}
	for len(current) > 0 {
		var next []*gedcom.Individual
		for _, indi := range current {
			for _, fid := range indi.FamiliesAsSpouse {
				fam := t.data.Family(fid)
				if fam == nil {
					continue
				}
				for _, cid := range fam.Children {
					child := t.data.Individual(cid)
					if child == nil {
						continue
					}
					*edges = append(*edges, treeEdge{parent: indi.ID, child: child.ID})
					if seen[child.ID] {
						continue
					}
					seen[child.ID] = true
					next = append(next, child)
				}
			}
		}
		if len(next) > 0 {
			rows = append(rows, next)
		}
		current = next
	}
	return rows
}

func (t *treeChart) drawBox(group *svgdom.Element, indi *gedcom.Individual, box nodeBox) {
	group.Append(rectAt(box.x, box.y, box.w, box.h, boxFill(t.cfg.Colors, indi, box.generation)))

	name := indi.Name()
	if t.cfg.ShowSex && indi.Sex != "" && indi.Sex != gedcom.Unknown {
		name += " (" + string(indi.Sex) + ")"
	}
	cx := box.x + box.w/2
	y := box.y + lineHeight + 2
	group.Append(textAt(cx, y, 12, name))

	if t.cfg.Renderer == RendererDetailed {
		lbl := labelsFor(t.cfg.Locale)
		y += lineHeight
		if indi.BirthDate != "" {
			group.Append(textAt(cx, y, 10, lbl.birth+" "+indi.BirthDate))
		}
		y += lineHeight
		if indi.DeathDate != "" {
			group.Append(textAt(cx, y, 10, lbl.death+" "+indi.DeathDate))
		}
	}
	if t.cfg.ShowIDs {
		y += lineHeight
		group.Append(textAt(cx, y, 9, indi.ID))
	}
}

// IndividualAt hit-tests a chart coordinate against the last layout.
func (t *treeChart) IndividualAt(x, y float64) (string, bool) {
	for id, box := range t.nodes {
		if x >= box.x && x <= box.x+box.w && y >= box.y && y <= box.y+box.h {
			return id, true
		}
	}
	return "", false
}

// Select fires the configured selection callback for the individual at
// the given chart coordinate. Reports whether anything was hit.
func (t *treeChart) Select(x, y float64) bool {
	id, ok := t.IndividualAt(x, y)
	if !ok {
		return false
	}
	if t.cfg.OnSelection != nil {
		t.cfg.OnSelection(id, t.nodes[id].generation)
	}
	return true
}
