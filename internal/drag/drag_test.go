// internal/drag/drag_test.go
package drag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/boxflow/api/schemas"
	"github.com/xkilldash9x/boxflow/internal/drag"
	"github.com/xkilldash9x/boxflow/internal/layout"
)

func n(i int) schemas.NodeID { return schemas.NodeIDFromIndex(i) }

func node(i int) schemas.DomNodeID { return schemas.DomNodeID{Node: n(i)} }

func TestScrollbarThumb_OffsetFormula(t *testing.T) {
	sn := layout.OverflowingScrollNode{
		ParentRect:       schemas.NewRect(0, 0, 400, 50),
		ChildRect:        schemas.NewRect(0, 0, 400, 80),
		VirtualChildRect: schemas.NewRect(0, 0, 400, 80),
	}
	thumb := drag.NewScrollbarThumb(node(1), sn, drag.AxisVertical, schemas.Point{Y: 10}, 0)
	assert.InDelta(t, 31.25, thumb.ThumbLength, 1e-9)

	m := drag.NewManager(zaptest.NewLogger(t))
	m.Start(thumb)

	tests := []struct {
		name  string
		mouse float64
		want  float64
	}{
		{"no movement", 10, 0},
		// 9.375 px over an 18.75 px scrollable track is half of the 30 px range
		{"half way", 19.375, 15},
		{"clamped at the end", 200, 30},
		{"clamped at the start", -50, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m.UpdatePosition(schemas.Point{X: 999, Y: tt.mouse})
			assert.InDelta(t, tt.want, thumb.Offset(), 1e-9)
		})
	}
	assert.Equal(t, schemas.Point{X: 7, Y: 0}, thumb.OffsetPoint(7))
}

func TestManager_NodeDragTargets(t *testing.T) {
	m := drag.NewManager(nil)
	nd := &drag.NodeDrag{Node: node(1)}
	m.Start(nd)

	a, b := node(2), node(3)
	assert.Equal(t, []drag.Event{{Kind: drag.DragEnter, Node: a}}, m.SetDropTarget(&a))
	assert.Empty(t, m.SetDropTarget(&a), "staying over the same target emits nothing")
	assert.Equal(t, []drag.Event{{Kind: drag.DragLeave, Node: a}, {Kind: drag.DragEnter, Node: b}}, m.SetDropTarget(&b))
	assert.Equal(t, []drag.Event{{Kind: drag.DragLeave, Node: b}}, m.SetDropTarget(nil))
	assert.Nil(t, nd.DropTarget)

	m.UpdatePosition(schemas.Point{X: 4, Y: 5})
	assert.Equal(t, schemas.Point{X: 4, Y: 5}, nd.Current)
}

func TestManager_RemapNodeIDs(t *testing.T) {
	t.Run("rewrites ids", func(t *testing.T) {
		m := drag.NewManager(nil)
		target := node(2)
		nd := &drag.NodeDrag{Node: node(1), DropTarget: &target}
		m.Start(nd)

		m.RemapNodeIDs(schemas.RootDomID, map[schemas.NodeID]schemas.NodeID{n(1): n(4), n(2): n(5)})
		assert.Equal(t, n(4), nd.Node.Node)
		require.NotNil(t, nd.DropTarget)
		assert.Equal(t, n(5), nd.DropTarget.Node)
		_, cancelled := m.DrainCancelled()
		assert.False(t, cancelled)
	})

	t.Run("missing mapping cancels", func(t *testing.T) {
		m := drag.NewManager(nil)
		m.Start(&drag.TextSelection{Anchor: drag.TextCursor{Node: n(3)}})
		m.RemapNodeIDs(schemas.RootDomID, map[schemas.NodeID]schemas.NodeID{n(1): n(1)})

		ctx, ok := m.DrainCancelled()
		require.True(t, ok)
		assert.True(t, ctx.Cancelled)
		assert.Equal(t, drag.KindTextSelection, ctx.Kind())
		_, ok = m.Active()
		assert.False(t, ok, "draining removes the drag")
	})

	t.Run("other doms are untouched", func(t *testing.T) {
		m := drag.NewManager(nil)
		nd := &drag.NodeDrag{Node: schemas.DomNodeID{Dom: 1, Node: n(1)}}
		m.Start(nd)
		m.RemapNodeIDs(schemas.RootDomID, map[schemas.NodeID]schemas.NodeID{})
		assert.True(t, m.IsDragging(drag.KindNodeDrag))
	})
}

func TestManager_EscapeCancels(t *testing.T) {
	m := drag.NewManager(nil)
	m.Start(&drag.WindowMove{StartCursor: schemas.Point{X: 10, Y: 10}, StartWindowPos: schemas.Point{X: 100, Y: 100}})

	other := schemas.KeyA
	m.HandleKeyboard(schemas.KeyboardState{VirtualKeycode: &other})
	assert.True(t, m.IsDragging(drag.KindWindowMove))

	m.UpdatePosition(schemas.Point{X: 15, Y: 30})
	ctx, _ := m.Active()
	assert.Equal(t, schemas.Point{X: 105, Y: 120}, ctx.Variant.(*drag.WindowMove).WindowPosition())

	esc := schemas.KeyEscape
	m.HandleKeyboard(schemas.KeyboardState{VirtualKeycode: &esc})
	assert.False(t, m.IsDragging(drag.KindWindowMove))
	assert.Empty(t, m.SetDropTarget(nil))

	// positions after cancellation are ignored
	m.UpdatePosition(schemas.Point{X: 50, Y: 50})
	assert.Equal(t, schemas.Point{X: 105, Y: 120}, ctx.Variant.(*drag.WindowMove).WindowPosition())
}

func TestManager_StartReplacesAndEnd(t *testing.T) {
	m := drag.NewManager(nil)
	first := m.Start(&drag.FileDrop{Path: "a.txt"})
	second := m.Start(&drag.WindowResize{Edge: drag.EdgeLeft | drag.EdgeBottom, StartSize: schemas.Size{Width: 100, Height: 100}})
	assert.NotEqual(t, first.Session, second.Session)

	m.UpdatePosition(schemas.Point{X: 30, Y: -120})
	assert.Equal(t, schemas.Size{Width: 70, Height: 0}, second.Variant.(*drag.WindowResize).Size())

	ended, ok := m.End()
	require.True(t, ok)
	assert.Same(t, second, ended)
	_, ok = m.End()
	assert.False(t, ok)
}

func TestSelectionManager(t *testing.T) {
	s := drag.NewSelectionManager()
	sel := drag.Selection{Anchor: drag.TextCursor{Node: n(2), Offset: 1}, Focus: drag.TextCursor{Node: n(4), Offset: 3}}
	s.Set(schemas.RootDomID, sel)
	s.Add(1, drag.Selection{Anchor: drag.TextCursor{Node: n(1)}, Focus: drag.TextCursor{Node: n(1)}})

	st, ok := s.Get(schemas.RootDomID)
	require.True(t, ok)
	assert.Equal(t, n(2), st.AnchorNode)
	assert.False(t, sel.IsCollapsed())

	s.RemapNodeIDs(schemas.RootDomID, map[schemas.NodeID]schemas.NodeID{n(2): n(3), n(4): n(6)})
	st, _ = s.Get(schemas.RootDomID)
	assert.Equal(t, n(3), st.Selections[0].Anchor.Node)
	assert.Equal(t, n(6), st.Selections[0].Focus.Node)

	s.RemapNodeIDs(1, map[schemas.NodeID]schemas.NodeID{})
	_, ok = s.Get(1)
	assert.False(t, ok, "a selection on a removed node is dropped")

	assert.True(t, s.ClearAll())
	assert.False(t, s.ClearAll(), "clearing twice is a no-op")
	assert.Zero(t, s.Len())
}
