// File: internal/layout/relayout_test.go
package layout_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/boxflow/api/schemas"
	"github.com/xkilldash9x/boxflow/internal/css"
	"github.com/xkilldash9x/boxflow/internal/dom"
	"github.com/xkilldash9x/boxflow/internal/layout"
	"github.com/xkilldash9x/boxflow/internal/style"
)

// paragraph builds div(0) > p(1) > text(2).
func paragraph(s string) *dom.Dom {
	return dom.Div().WithChild(dom.Element("p").WithChild(dom.Text(s)))
}

func TestRelayout_NoChangesReturnsPrevious(t *testing.T) {
	prev := compute(t, paragraph("Hi"), 400, 300)

	next, res := layout.Relayout(prev, nil, nil, nil, mockOpts())
	assert.Same(t, prev, next)
	assert.Empty(t, res.ResizedNodes)
	assert.True(t, res.Invalidation.IsEmpty())

	same := prev.Bounds
	next, res = layout.Relayout(prev, style.Changes{}, nil, &same, mockOpts())
	assert.Same(t, prev, next, "identical bounds are not a resize")
	assert.Empty(t, res.ResizedNodes)
}

func TestRelayout_TextChangeResizesTextNode(t *testing.T) {
	prev := compute(t, paragraph("Hi"), 400, 300)
	require.InDelta(t, 16, prev.Rect(n(2)).Width, delta)

	next, res := layout.Relayout(prev, nil, map[schemas.NodeID]string{n(2): "Hello"}, nil, mockOpts())
	assert.NotSame(t, prev, next)
	assert.Equal(t, []schemas.NodeID{n(2)}, res.ResizedNodes)
	assert.InDelta(t, 40, next.Rect(n(2)).Width, delta)
	assert.Contains(t, res.Invalidation.IntrinsicNodes, n(0), "intrinsic invalidation reaches the root")

	_, res = layout.Relayout(next, nil, map[schemas.NodeID]string{n(2): "Hello"}, nil, mockOpts())
	assert.True(t, res.Invalidation.IsEmpty(), "setting the same text is a no-op")
}

func TestRelayout_RootResize(t *testing.T) {
	prev := compute(t, paragraph("Hi"), 400, 300)
	bounds := schemas.NewRect(0, 0, 200, 300)

	next, res := layout.Relayout(prev, nil, nil, &bounds, mockOpts())
	assert.Equal(t, []schemas.NodeID{n(0), n(1)}, res.ResizedNodes)
	assert.Equal(t, []schemas.NodeID{n(0)}, res.Invalidation.LayoutRoots)
	assert.InDelta(t, 200, next.Rect(n(1)).Width, delta)
	assert.Equal(t, bounds, next.Bounds)
}

func TestRelayout_MatchesFreshLayout(t *testing.T) {
	build := func() *dom.Dom {
		return dom.Div().WithChildren(
			dom.Div().WithStyle(css.FloatProp(css.FloatLeft), css.Width(px(50)), css.Height(px(50))),
			dom.Element("p").WithChild(dom.Text("one two three four five")),
		)
	}
	prev := compute(t, build(), 120, 300)
	changes := prev.Styled.SetProperty(n(1), css.Width(px(80)))
	next, _ := layout.Relayout(prev, changes, nil, nil, mockOpts())

	sd := style.New(build(), nil)
	sd.SetProperty(n(1), css.Width(px(80)))
	fresh := layout.Compute(sd, schemas.NewRect(0, 0, 120, 300), mockOpts())

	if diff := cmp.Diff(fresh.Rects, next.Rects); diff != "" {
		t.Errorf("relayout differs from a fresh layout (-fresh +relayout):\n%s", diff)
	}
}

func TestRelayout_SameChangesTwiceGiveSameRects(t *testing.T) {
	prev := compute(t, paragraph("one two three"), 120, 300)
	changes := prev.Styled.SetProperty(n(1), css.Width(px(60)))
	require.NotEmpty(t, changes)

	first, _ := layout.Relayout(prev, changes, nil, nil, mockOpts())
	second, _ := layout.Relayout(prev, changes, nil, nil, mockOpts())
	if diff := cmp.Diff(first.Rects, second.Rects); diff != "" {
		t.Errorf("repeated relayout differs (-first +second):\n%s", diff)
	}

	again, _ := layout.Relayout(first, changes, nil, nil, mockOpts())
	if diff := cmp.Diff(first.Rects, again.Rects); diff != "" {
		t.Errorf("relayout of its own output differs (-first +again):\n%s", diff)
	}
}

func TestRelayout_TextChangesShareStyledDom(t *testing.T) {
	prev := compute(t, paragraph("Hi"), 400, 300)

	next, _ := layout.Relayout(prev, nil, map[schemas.NodeID]string{n(2): "Hello"}, nil, mockOpts())
	assert.Same(t, prev.Styled, next.Styled)
	assert.Equal(t, "Hello", prev.Styled.NodeData.Get(n(2)).Text)
	assert.InDelta(t, 16, prev.Rect(n(2)).Width, delta, "previous rects are kept")
	assert.InDelta(t, 40, next.Rect(n(2)).Width, delta)
}

func TestInvalidate_DecisionTable(t *testing.T) {
	sd := style.New(dom.Div().WithChild(dom.Div().WithChild(dom.Text("x"))), nil)
	change := func(p css.PropertyType) style.Changes {
		return style.Changes{n(1): {{Type: p, Previous: css.Initial(p), Current: css.Initial(p)}}}
	}

	inv := layout.Invalidate(sd, change(css.PropOpacity), nil, false)
	assert.True(t, inv.GPUOnly)
	assert.Empty(t, inv.LayoutRoots)

	inv = layout.Invalidate(sd, change(css.PropMarginTop), nil, false)
	assert.False(t, inv.GPUOnly)
	assert.Empty(t, inv.IntrinsicNodes)
	assert.Equal(t, []schemas.NodeID{n(0)}, inv.LayoutRoots)

	inv = layout.Invalidate(sd, change(css.PropWidth), nil, false)
	assert.Equal(t, []schemas.NodeID{n(0), n(1)}, inv.IntrinsicNodes)

	inv = layout.Invalidate(sd, change(css.PropDisplay), nil, false)
	assert.True(t, inv.Contexts)
	assert.Equal(t, []schemas.NodeID{n(0), n(1), n(2)}, inv.IntrinsicNodes)

	inv = layout.Invalidate(sd, style.Changes{}, nil, true)
	assert.Equal(t, []schemas.NodeID{n(0)}, inv.LayoutRoots)
}

func TestRelayout_GpuOnlyChange(t *testing.T) {
	d := dom.Div().WithChild(
		dom.Div().WithStyle(css.Height(px(10))).WithStateStyle(css.StateHover, css.Opacity(0.5)),
	)
	prev := compute(t, d, 400, 300)
	require.Empty(t, prev.Gpu.OpacityKeys)

	changes := prev.Styled.RestyleNodesHover([]schemas.NodeID{n(1)}, true)
	next, res := layout.Relayout(prev, changes, nil, nil, mockOpts())
	assert.True(t, res.Invalidation.GPUOnly)
	assert.Empty(t, res.ResizedNodes)
	assert.Equal(t, prev.Rects, next.Rects)

	require.Len(t, res.GpuKeyChanges.OpacityKeyChanges, 1)
	ev := res.GpuKeyChanges.OpacityKeyChanges[0]
	assert.Equal(t, layout.GpuAdded, ev.Kind)
	assert.Equal(t, n(1), ev.Node)
	assert.Equal(t, 0.5, ev.New)
	assert.Empty(t, prev.Gpu.OpacityKeys, "the previous cache is not mutated")

	changes = next.Styled.RestyleNodesHover([]schemas.NodeID{n(1)}, false)
	_, res = layout.Relayout(next, changes, nil, nil, mockOpts())
	require.Len(t, res.GpuKeyChanges.OpacityKeyChanges, 1)
	removed := res.GpuKeyChanges.OpacityKeyChanges[0]
	assert.Equal(t, layout.GpuRemoved, removed.Kind)
	assert.Equal(t, ev.Key, removed.Key, "keys are stable across frames")
}

func TestGpuValueCache_TransformAroundOrigin(t *testing.T) {
	d := dom.Div().WithChild(
		dom.Div().WithStyle(css.Width(px(100)), css.Height(px(50)), css.TransformProp(css.Scale(2, 2))),
	)
	r := compute(t, d, 400, 300)

	require.Contains(t, r.Gpu.TransformKeys, n(1))
	m := r.Gpu.CurrentTransforms[n(1)]
	assert.Equal(t, css.Matrix{A: 2, D: 2, E: -50, F: -25}, m)
	x, y := m.Apply(50, 25)
	assert.Equal(t, [2]float64{50, 25}, [2]float64{x, y}, "the origin is a fixed point")

	cache := r.Gpu.Clone()
	ev := cache.Synchronize(r.Styled, r.Rects)
	assert.True(t, ev.IsEmpty(), "synchronising an unchanged frame emits nothing")
}
