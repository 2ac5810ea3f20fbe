package chart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ipalcic/topola-viewer-2025/gedcom"
	"github.com/ipalcic/topola-viewer-2025/svgdom"
)

func testData() *gedcom.Dataset {
	return &gedcom.Dataset{
		Indis: []*gedcom.Individual{
			{ID: "I1", FirstName: "Ivan", Sex: gedcom.Male, FamilyAsChild: "F1", FamiliesAsSpouse: []string{"F2"}, BirthDate: "1960"},
			{ID: "I2", FirstName: "Petar", Sex: gedcom.Male, DeathDate: "1999"},
			{ID: "I3", FirstName: "Marija", Sex: gedcom.Female},
			{ID: "I4", FirstName: "Luka", Sex: gedcom.Male},
			{ID: "I5", FirstName: "Eva", Sex: gedcom.Female},
		},
		Fams: []*gedcom.Family{
			{ID: "F1", Husband: "I2", Wife: "I3", Children: []string{"I1"}},
			{ID: "F2", Husband: "I1", Children: []string{"I4", "I5"}},
		},
	}
}

func TestNewDispatch(t *testing.T) {
	mount := svgdom.New("div")
	data := testData()

	for _, typ := range []Type{Hourglass, Ancestors, Descendants} {
		w, err := New(Config{Data: data, Type: typ, Mount: mount})
		require.NoError(t, err)
		_, ok := w.(DataUpdater)
		assert.True(t, ok, "%s charts must support in-place updates", typ)
	}

	w, err := New(Config{Data: data, Type: Fan, Mount: mount})
	require.NoError(t, err)
	_, ok := w.(DataUpdater)
	assert.False(t, ok, "fan charts require full rebuilds")

	_, err = New(Config{Data: data, Type: "pedigree", Mount: mount})
	assert.Error(t, err)
	_, err = New(Config{Type: Hourglass, Mount: mount})
	assert.Error(t, err)
	_, err = New(Config{Data: data, Type: Hourglass})
	assert.Error(t, err)
}

func TestSupportsUpdate(t *testing.T) {
	assert.True(t, SupportsUpdate(Hourglass, RendererSimple))
	assert.True(t, SupportsUpdate(Descendants, RendererDetailed))
	assert.False(t, SupportsUpdate(Fan, RendererSimple))
}

func TestTreeRenderHourglass(t *testing.T) {
	mount := svgdom.New("div")
	w, err := New(Config{Data: testData(), Type: Hourglass, Mount: mount})
	require.NoError(t, err)

	res, err := w.Render(RenderParams{StartIndividual: "I1"})
	require.NoError(t, err)
	assert.Greater(t, res.Width, 0.0)
	assert.Greater(t, res.Height, 0.0)

	svg := mount.Find("svg")
	require.NotNil(t, svg)
	assert.Equal(t, ftoa(res.Width), svg.AttrOr("width", ""))

	// parents row, start row, children row
	rects := svg.FindAll("rect")
	assert.Len(t, rects, 5)
	// two parent edges, two child edges
	assert.Len(t, svg.FindAll("line"), 4)

	// origin is the centre of the start box
	tree := w.(*treeChart)
	box := tree.nodes["I1"]
	assert.InDelta(t, box.x+box.w/2, res.Origin.X, 1e-9)
	assert.InDelta(t, box.y+box.h/2, res.Origin.Y, 1e-9)

	select {
	case <-res.Done:
	default:
		t.Fatal("Done must resolve immediately when animation is disabled")
	}
}

func TestTreeRenderReplacesSubtree(t *testing.T) {
	mount := svgdom.New("div")
	w, err := New(Config{Data: testData(), Type: Ancestors, Mount: mount})
	require.NoError(t, err)

	_, err = w.Render(RenderParams{StartIndividual: "I1"})
	require.NoError(t, err)
	_, err = w.Render(RenderParams{StartIndividual: "I4"})
	require.NoError(t, err)

	assert.Len(t, mount.Children, 1, "re-render must replace, not stack, the svg subtree")
}

func TestTreeUpdateData(t *testing.T) {
	mount := svgdom.New("div")
	w, err := New(Config{Data: testData(), Type: Descendants, Mount: mount})
	require.NoError(t, err)

	up := w.(DataUpdater)
	require.Error(t, up.UpdateData(nil))
	require.NoError(t, up.UpdateData(&gedcom.Dataset{Indis: []*gedcom.Individual{{ID: "X1", FirstName: "Nova"}}}))

	res, err := w.Render(RenderParams{StartIndividual: "X1"})
	require.NoError(t, err)
	assert.Greater(t, res.Width, 0.0)
	_, err = w.Render(RenderParams{StartIndividual: "I1"})
	assert.Error(t, err, "old dataset must be gone after an update")
}

func TestTreeSelection(t *testing.T) {
	mount := svgdom.New("div")
	var gotID string
	var gotGen int
	w, err := New(Config{
		Data: testData(), Type: Hourglass, Mount: mount,
		OnSelection: func(id string, gen int) { gotID, gotGen = id, gen },
	})
	require.NoError(t, err)

	res, err := w.Render(RenderParams{StartIndividual: "I1", BaseGeneration: 3})
	require.NoError(t, err)

	sel := w.(Selector)
	id, ok := sel.IndividualAt(res.Origin.X, res.Origin.Y)
	require.True(t, ok)
	assert.Equal(t, "I1", id)

	require.True(t, sel.Select(res.Origin.X, res.Origin.Y))
	assert.Equal(t, "I1", gotID)
	assert.Equal(t, 3, gotGen)

	assert.False(t, sel.Select(-10, -10))
}

func TestDetailedRendererText(t *testing.T) {
	mount := svgdom.New("div")
	w, err := New(Config{
		Data: testData(), Type: Ancestors, Renderer: RendererDetailed,
		Mount: mount, Locale: "hr", ShowIDs: true, ShowSex: true,
	})
	require.NoError(t, err)
	_, err = w.Render(RenderParams{StartIndividual: "I1"})
	require.NoError(t, err)

	var texts []string
	for _, el := range mount.FindAll("text") {
		texts = append(texts, el.Text)
	}
	assert.Contains(t, texts, "Ivan (M)")
	assert.Contains(t, texts, "r. 1960")
	assert.Contains(t, texts, "u. 1999")
	assert.Contains(t, texts, "I1")
}

func TestFanRender(t *testing.T) {
	mount := svgdom.New("div")
	w, err := New(Config{Data: testData(), Type: Fan, Mount: mount})
	require.NoError(t, err)

	res, err := w.Render(RenderParams{StartIndividual: "I1"})
	require.NoError(t, err)
	assert.Equal(t, res.Width, res.Height)
	assert.InDelta(t, res.Width/2, res.Origin.X, 1e-9)

	// centre circle plus one wedge per ancestor
	assert.Len(t, mount.FindAll("path"), 3)

	_, err = w.Render(RenderParams{StartIndividual: "missing"})
	assert.Error(t, err)
}

func TestAnimatedDone(t *testing.T) {
	mount := svgdom.New("div")
	w, err := New(Config{
		Data: testData(), Type: Ancestors, Mount: mount,
		Animate: true, AnimationDuration: 10 * time.Millisecond,
	})
	require.NoError(t, err)

	res, err := w.Render(RenderParams{StartIndividual: "I1"})
	require.NoError(t, err)

	select {
	case <-res.Done:
		t.Fatal("Done must not resolve before the animation ran")
	default:
	}
	select {
	case <-res.Done:
	case <-time.After(time.Second):
		t.Fatal("Done never resolved")
	}
}
