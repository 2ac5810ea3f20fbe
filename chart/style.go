package chart

import (
	"strconv"

	"github.com/ipalcic/topola-viewer-2025/gedcom"
	"github.com/ipalcic/topola-viewer-2025/svgdom"
)

const (
	boxStroke   = "#375673"
	textColor   = "#1c2b39"
	edgeColor   = "#9bb2c7"
	neutralFill = "#ffffff"
)

// one fill per generation, cycled
var generationPalette = [...]string{
	"#eaf2fa", "#d7e7f5", "#c3dbf0", "#b0d0ea", "#9cc4e4", "#cfe0d8",
}

var sexFills = map[gedcom.Sex]string{
	gedcom.Male:   "#cfe3f7",
	gedcom.Female: "#f7dce6",
}

// boxFill resolves the fill color for one individual box.
func boxFill(scheme ColorScheme, indi *gedcom.Individual, generation int) string {
	switch scheme {
	case ColorsByGeneration:
		g := generation % len(generationPalette)
		if g < 0 {
			g += len(generationPalette)
		}
		return generationPalette[g]
	case ColorsBySex:
		if fill, ok := sexFills[indi.Sex]; ok {
			return fill
		}
		return "#ededed"
	}
	return neutralFill
}

// eventLabels are the locale-dependent prefixes of the detailed renderer.
type eventLabels struct {
	birth, death string
}

var localeLabels = map[string]eventLabels{
	"en": {"b.", "d."},
	"hr": {"r.", "u."},
	"de": {"geb.", "gest."},
	"fr": {"né(e)", "déc."},
}

func labelsFor(locale string) eventLabels {
	if l, ok := localeLabels[locale]; ok {
		return l
	}
	return localeLabels["en"]
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func textAt(x, y float64, size int, content string) *svgdom.Element {
	el := svgdom.New("text").
		SetAttr("x", ftoa(x)).
		SetAttr("y", ftoa(y)).
		SetAttr("font-size", strconv.Itoa(size)).
		SetAttr("text-anchor", "middle").
		SetAttr("fill", textColor)
	el.Text = content
	return el
}

func rectAt(x, y, w, h float64, fill string) *svgdom.Element {
	return svgdom.New("rect").
		SetAttr("x", ftoa(x)).
		SetAttr("y", ftoa(y)).
		SetAttr("width", ftoa(w)).
		SetAttr("height", ftoa(h)).
		SetAttr("fill", fill).
		SetAttr("stroke", boxStroke).
		SetAttr("stroke-width", "1")
}

func lineBetween(x1, y1, x2, y2 float64) *svgdom.Element {
	return svgdom.New("line").
		SetAttr("x1", ftoa(x1)).
		SetAttr("y1", ftoa(y1)).
		SetAttr("x2", ftoa(x2)).
		SetAttr("y2", ftoa(y2)).
		SetAttr("stroke", edgeColor).
		SetAttr("stroke-width", "1")
}
