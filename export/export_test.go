package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ipalcic/topola-viewer-2025/chart"
	"github.com/ipalcic/topola-viewer-2025/config"
	"github.com/ipalcic/topola-viewer-2025/gedcom"
	"github.com/ipalcic/topola-viewer-2025/svgdom"
	"github.com/ipalcic/topola-viewer-2025/viewer"
)

type fakeSource struct {
	mount *svgdom.Element
	scale float64
}

func (f *fakeSource) Mount() *svgdom.Element { return f.mount }
func (f *fakeSource) Scale() float64         { return f.scale }

// scaledSource mimics a chart of natural size 100x50 shown at 2x with
// a pan offset applied.
func scaledSource() *fakeSource {
	svg := svgdom.New("svg").
		SetAttr("width", "200").
		SetAttr("height", "100").
		SetAttr("transform", "translate(-10 -20)")
	g := svgdom.New("g").SetAttr("transform", "scale(2)")
	g.Append(svgdom.New("rect").
		SetAttr("x", "10").SetAttr("y", "10").
		SetAttr("width", "30").SetAttr("height", "20").
		SetAttr("fill", "#ff0000"))
	svg.Append(g)
	return &fakeSource{mount: svgdom.New("div").Append(svg), scale: 2}
}

func TestSnapshotNormalizesViewportState(t *testing.T) {
	e := New(scaledSource(), nil)
	snap, err := e.SnapshotNormalizedSVG()
	require.NoError(t, err)

	assert.Equal(t, "100", snap.AttrOr("width", ""))
	assert.Equal(t, "50", snap.AttrOr("height", ""))
	_, ok := snap.Attr("transform")
	assert.False(t, ok, "pan transform must be stripped")
	_, ok = snap.Find("g").Attr("transform")
	assert.False(t, ok, "inner scale transform must be stripped")
	assert.Equal(t, svgNamespace, snap.AttrOr("xmlns", ""))
}

func TestSnapshotLeavesLiveTreeUntouched(t *testing.T) {
	src := scaledSource()
	e := New(src, nil)
	_, err := e.SnapshotNormalizedSVG()
	require.NoError(t, err)

	live := src.mount.Find("svg")
	assert.Equal(t, "200", live.AttrOr("width", ""))
	_, ok := live.Attr("transform")
	assert.True(t, ok)
}

func TestSnapshotWithoutRender(t *testing.T) {
	e := New(&fakeSource{mount: svgdom.New("div"), scale: 1}, nil)
	_, err := e.SnapshotNormalizedSVG()
	assert.Error(t, err)
}

func TestSerializeRoundTripKeepsNaturalSize(t *testing.T) {
	e := New(scaledSource(), nil)
	snap, err := e.SnapshotNormalizedSVG()
	require.NoError(t, err)

	reparsed, err := svgdom.Parse(strings.NewReader(e.Serialize(snap)))
	require.NoError(t, err)
	assert.Equal(t, "100", reparsed.AttrOr("width", ""))
	assert.Equal(t, "50", reparsed.AttrOr("height", ""))
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{0, 0, 255, 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestInlineAllImagesBestEffort(t *testing.T) {
	pngData := tinyPNG(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/ok") {
			w.Header().Set("Content-Type", "image/png")
			w.Write(pngData)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	svg := svgdom.New("svg").SetAttr("width", "10").SetAttr("height", "10")
	svg.Append(
		svgdom.New("image").SetAttr("href", srv.URL+"/ok1.png"),
		svgdom.New("image").SetAttr("xlink:href", srv.URL+"/ok2.png"),
		svgdom.New("image").SetAttr("href", srv.URL+"/missing.png"),
	)

	e := New(&fakeSource{mount: svgdom.New("div").Append(svg), scale: 1}, nil)
	e.InlineAllImages(context.Background(), svg)

	imgs := svg.FindAll("image")
	wantURI := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngData)
	assert.Equal(t, wantURI, imgs[0].AttrOr("href", ""))
	assert.Equal(t, wantURI, imgs[1].AttrOr("xlink:href", ""))
	assert.Equal(t, srv.URL+"/missing.png", imgs[2].AttrOr("href", ""),
		"a failed fetch leaves the reference unmodified")

	// the degraded snapshot still serializes
	reparsed, err := svgdom.Parse(strings.NewReader(e.Serialize(svg)))
	require.NoError(t, err)
	assert.Len(t, reparsed.FindAll("image"), 3)
}

func TestInlineSkipsDataURIs(t *testing.T) {
	svg := svgdom.New("svg")
	svg.Append(svgdom.New("image").SetAttr("href", "data:image/png;base64,AAAA"))
	e := New(&fakeSource{mount: svgdom.New("div").Append(svg), scale: 1}, nil)
	e.InlineAllImages(context.Background(), svg)
	assert.Equal(t, "data:image/png;base64,AAAA", svg.Find("image").AttrOr("href", ""))
}

func TestDownloadSVG(t *testing.T) {
	e := New(scaledSource(), nil)
	var buf bytes.Buffer
	require.NoError(t, e.DownloadSVG(context.Background(), &buf))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, `width="100"`)
}

func TestDownloadPNG(t *testing.T) {
	e := New(scaledSource(), nil, WithRasterScale(2))
	var buf bytes.Buffer
	require.NoError(t, e.DownloadPNG(context.Background(), &buf))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	// natural 100x50 at 2x oversampling
	assert.Equal(t, image.Rect(0, 0, 200, 100), img.Bounds())

	r, g, b, a := img.At(1, 1).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), g)
	assert.Equal(t, uint32(0xffff), b)
	assert.Equal(t, uint32(0xffff), a, "png background must be opaque white")

	r, _, _, _ = img.At(50, 40).RGBA()
	assert.Equal(t, uint32(0xffff), r, "rect pixel is red")
	_, g, b, _ = img.At(50, 40).RGBA()
	assert.Equal(t, uint32(0), g)
	assert.Equal(t, uint32(0), b)
}

func TestDownloadPDF(t *testing.T) {
	e := New(scaledSource(), nil)
	var buf bytes.Buffer
	require.NoError(t, e.DownloadPDF(context.Background(), &buf))
	assert.True(t, strings.HasPrefix(buf.String(), "%PDF-"))
}

func TestPrintChart(t *testing.T) {
	e := New(scaledSource(), nil)
	e.printSettle = 20 * time.Millisecond

	var opened string
	e.openBrowser = func(path string) error {
		opened = path
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		html := string(data)
		assert.Contains(t, html, "window.print()")
		assert.Contains(t, html, "<svg")
		return nil
	}

	require.NoError(t, e.PrintChart(context.Background()))
	require.NotEmpty(t, opened)

	time.Sleep(100 * time.Millisecond)
	_, err := os.Stat(opened)
	assert.True(t, os.IsNotExist(err), "print shell must be cleaned up")
}

func TestPrintChartOpenFailure(t *testing.T) {
	e := New(scaledSource(), nil)
	var opened string
	e.openBrowser = func(path string) error {
		opened = path
		return assert.AnError
	}
	require.Error(t, e.PrintChart(context.Background()))
	_, err := os.Stat(opened)
	assert.True(t, os.IsNotExist(err))
}

// end-to-end: a real coordinator keeps the snapshot at natural size
// regardless of the on-screen zoom
func TestExportFromLiveCoordinator(t *testing.T) {
	data := &gedcom.Dataset{
		Indis: []*gedcom.Individual{
			{ID: "I1", FirstName: "Ivan", FamiliesAsSpouse: []string{"F1"}},
			{ID: "I2", FirstName: "Luka"},
		},
		Fams: []*gedcom.Family{{ID: "F1", Husband: "I1", Children: []string{"I2"}}},
	}
	cfg := config.Default()
	cfg.AnimationDelay = config.Duration(time.Millisecond)
	cfg.AnimationDuration = config.Duration(5 * time.Millisecond)

	c := viewer.NewCoordinator(cfg, svgdom.New("div"), viewer.NewViewport(100, 100), nil, nil)
	require.NoError(t, c.RenderChart(viewer.RenderRequest{
		Data: data, StartIndividual: "I1", ChartType: chart.Descendants,
	}, viewer.RenderOptions{Initial: true}))
	require.NoError(t, c.Zoom(1.5))

	natural := c.Mount().Find("svg")
	require.NotNil(t, natural)

	e := New(c, nil)
	snap, err := e.SnapshotNormalizedSVG()
	require.NoError(t, err)

	scale := c.Scale()
	assert.NotEqual(t, 1.0, scale)
	assert.InDelta(t, attrFloat(natural, "width")/scale, attrFloat(snap, "width"), 1e-9)
	assert.InDelta(t, attrFloat(natural, "height")/scale, attrFloat(snap, "height"), 1e-9)
}
