// internal/resources/resources_test.go
package resources_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/text/language"

	"github.com/xkilldash9x/boxflow/internal/css"
	"github.com/xkilldash9x/boxflow/internal/dom"
	"github.com/xkilldash9x/boxflow/internal/resources"
	"github.com/xkilldash9x/boxflow/internal/style"
)

func kinds(updates []resources.ResourceUpdate) []resources.UpdateKind {
	out := make([]resources.UpdateKind, len(updates))
	for i, u := range updates {
		out[i] = u.Kind
	}
	return out
}

func TestGarbageCollect_InsertsAndDeletes(t *testing.T) {
	r := resources.NewRendererResources(resources.MockLoader{}, zaptest.NewLogger(t), 2)
	sd := style.New(dom.Div().WithChildren(
		dom.Text("a"),
		dom.Div().WithStyle(css.FontSize(css.Px(20))).WithChild(dom.Text("b")),
		dom.Image(dom.ImageRef{Key: "logo", Width: 10, Height: 5}),
	), nil)

	updates := r.GarbageCollect(context.Background(), []*style.StyledDom{sd}, 96)
	assert.Equal(t, []resources.UpdateKind{
		resources.AddFont, resources.AddFontInstance, resources.AddFontInstance, resources.AddImage,
	}, kinds(updates))

	fonts, instances, _, images := r.Stats()
	assert.Equal(t, 1, fonts)
	assert.Equal(t, 2, instances)
	assert.Equal(t, 1, images)
	assert.NotNil(t, r.Instance(resources.NewFontInstanceKey(css.DefaultFontFamily, 20, 96)))

	again := r.GarbageCollect(context.Background(), []*style.StyledDom{sd}, 96)
	assert.Empty(t, again, "an unchanged document needs no updates")

	empty := style.New(dom.Div(), nil)
	gone := r.GarbageCollect(context.Background(), []*style.StyledDom{empty}, 96)
	assert.ElementsMatch(t, []resources.UpdateKind{
		resources.DeleteFont, resources.DeleteFontInstance, resources.DeleteFontInstance, resources.DeleteImage,
	}, kinds(gone))
	fonts, instances, shaped, images := r.Stats()
	assert.Zero(t, fonts+instances+shaped+images)
}

type failingLoader struct{}

func (failingLoader) Load(family string) (resources.FontImpl, error) {
	return nil, resources.ErrFontNotFound
}

func TestGarbageCollect_MissingFontFallsBack(t *testing.T) {
	r := resources.NewRendererResources(failingLoader{}, zaptest.NewLogger(t), 0)
	sd := style.New(dom.Div().WithChild(dom.Text("x")), nil)

	updates := r.GarbageCollect(context.Background(), []*style.StyledDom{sd}, 96)
	assert.Equal(t, []resources.UpdateKind{resources.AddFontInstance}, kinds(updates))

	f, ok := r.Font(css.DefaultFontFamily)
	assert.False(t, ok)
	assert.Equal(t, 0.0, f.SpaceWidth())
	assert.Equal(t, float64(uint16('a')), f.HorizontalAdvance('a'))
}

func TestShapeCached(t *testing.T) {
	r := resources.NewRendererResources(resources.MockLoader{}, nil, 0)
	calls := 0
	shape := func() resources.ShapedBuffer {
		calls++
		return resources.NewMockFont().Shape([]rune("hi"), language.MustParseScript("Latn"), language.English)
	}
	a := r.ShapeCached("Serif", []rune("hi"), shape)
	b := r.ShapeCached("serif", []rune("hi"), shape)
	assert.Equal(t, 1, calls)
	assert.Equal(t, a, b)
	assert.Equal(t, 1000.0, a.Advance())
}

func TestShapeCached_DroppedWhenFamilyLoads(t *testing.T) {
	r := resources.NewRendererResources(resources.MockLoader{}, nil, 0)
	stale := func() resources.ShapedBuffer { return resources.ShapedBuffer{} }
	r.ShapeCached("custom", []rune("hi"), stale)
	_, _, shaped, _ := r.Stats()
	require.Equal(t, 1, shaped)

	sd := style.New(dom.Div().WithStyle(css.FontFamily("custom")).WithChild(dom.Text("hi")), nil)
	r.GarbageCollect(context.Background(), []*style.StyledDom{sd}, 96)

	_, _, shaped, _ = r.Stats()
	assert.Zero(t, shaped, "loading a family invalidates its shaped strings")
}

func TestMockFont_Metrics(t *testing.T) {
	m := resources.NewMockFont().Metrics()
	assert.Equal(t, 16.0, m.LineHeight(16))
	assert.InDelta(t, 12.8, m.AscentPx(16), 1e-9)
}

func TestGoRegular(t *testing.T) {
	f, err := resources.GoRegular()
	require.NoError(t, err)

	m := f.Metrics()
	assert.Positive(t, m.UnitsPerEm)
	assert.Positive(t, m.Ascender)
	assert.Negative(t, m.Descender)
	assert.Positive(t, f.SpaceWidth())

	g, ok := f.LookupGlyphIndex('A')
	require.True(t, ok)
	assert.Positive(t, f.HorizontalAdvance(g))

	buf := f.Shape([]rune("AV"), language.MustParseScript("Latn"), language.English)
	require.Len(t, buf.Glyphs, 2)
	assert.Equal(t, 1, buf.Glyphs[1].Cluster)
}

func TestRegistry(t *testing.T) {
	r := resources.NewRegistry()
	_, err := r.Load("nope")
	assert.True(t, errors.Is(err, resources.ErrFontNotFound))

	r.RegisterPaths("broken", "/does/not/exist.ttf")
	_, err = r.Load("broken")
	assert.Error(t, err)

	r.RegisterFace("Mock", resources.NewMockFont())
	f, err := r.Load("mock")
	require.NoError(t, err)
	assert.Equal(t, 250.0, f.SpaceWidth())

	def := resources.NewDefaultRegistry()
	f, err = def.Load("Sans-Serif")
	require.NoError(t, err)
	assert.Positive(t, f.Metrics().UnitsPerEm)
}
