// api/schemas/schemas_test.go
package schemas_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/boxflow/api/schemas"
)

// TestStructJSONTags verifies the json tags of the window state schemas,
// which form the contract with the windowing layer.
func TestStructJSONTags(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name         string
		structRef    any
		expectedTags map[string]string
	}{
		{
			name:      "FullWindowState",
			structRef: schemas.FullWindowState{},
			expectedTags: map[string]string{
				"Size":          "size",
				"DPI":           "dpi",
				"Theme":         "theme",
				"MouseState":    "mouse_state",
				"KeyboardState": "keyboard_state",
				"HoveredFile":   "hovered_file,omitempty",
				"DroppedFile":   "dropped_file,omitempty",
				"FocusedNode":   "focused_node,omitempty",
				"HoveredNodes":  "hovered_nodes,omitempty",
			},
		},
		{
			name:      "MouseState",
			structRef: schemas.MouseState{},
			expectedTags: map[string]string{
				"CursorPosition": "cursor_position",
				"LeftDown":       "left_down",
				"RightDown":      "right_down",
				"MiddleDown":     "middle_down",
				"ScrollX":        "scroll_x,omitempty",
				"ScrollY":        "scroll_y,omitempty",
			},
		},
		{
			name:      "HitTestItem",
			structRef: schemas.HitTestItem{},
			expectedTags: map[string]string{
				"Pipeline":            "pipeline",
				"Tag":                 "tag",
				"PointInViewport":     "point_in_viewport",
				"PointRelativeToItem": "point_relative_to_item",
				"IsFocusable":         "is_focusable",
				"IsIframeHit":         "is_iframe_hit,omitempty",
			},
		},
		{
			name:         "DomNodeID",
			structRef:    schemas.DomNodeID{},
			expectedTags: map[string]string{"Dom": "dom", "Node": "node"},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			structType := reflect.TypeOf(tt.structRef)
			actualTags := make(map[string]string)
			for i := range structType.NumField() {
				field := structType.Field(i)
				if jsonTag := field.Tag.Get("json"); jsonTag != "" {
					actualTags[field.Name] = jsonTag
				}
			}
			assert.Equal(t, tt.expectedTags, actualTags, "JSON tags for struct %s do not match expectations", tt.name)
		})
	}
}

func TestNodeID(t *testing.T) {
	t.Parallel()
	id := schemas.NodeIDFromIndex(0)
	assert.True(t, id.IsSome())
	assert.Equal(t, 0, id.Index())
	assert.Equal(t, "NodeID(0)", id.String())
	assert.False(t, schemas.NoNode.IsSome())
	assert.Equal(t, "NodeID(none)", schemas.NoNode.String())
	assert.Panics(t, func() { schemas.NoNode.Index() })
	assert.Equal(t, "0:NodeID(2)", schemas.DomNodeID{Dom: schemas.RootDomID, Node: schemas.NodeIDFromIndex(2)}.String())
}

func TestRect(t *testing.T) {
	t.Parallel()
	r := schemas.NewRect(10, 20, 100, 50)

	t.Run("contains excludes far edges", func(t *testing.T) {
		assert.True(t, r.Contains(schemas.Point{X: 10, Y: 20}))
		assert.True(t, r.Contains(schemas.Point{X: 109.9, Y: 69.9}))
		assert.False(t, r.Contains(schemas.Point{X: 110, Y: 30}))
		assert.False(t, r.Contains(schemas.Point{X: 20, Y: 70}))
	})

	t.Run("union and intersect", func(t *testing.T) {
		o := schemas.NewRect(50, 0, 100, 30)
		assert.Equal(t, schemas.NewRect(10, 0, 140, 70), r.Union(o))
		assert.Equal(t, schemas.NewRect(50, 20, 60, 10), r.Intersect(o))
		assert.True(t, r.Intersects(o))

		far := schemas.NewRect(500, 500, 10, 10)
		assert.False(t, r.Intersects(far))
		assert.True(t, r.Intersect(far).IsEmpty())
	})

	t.Run("edges", func(t *testing.T) {
		e := schemas.Edges{Top: 1, Right: 2, Bottom: 3, Left: 4}
		assert.Equal(t, 6.0, e.Horizontal())
		assert.Equal(t, 4.0, e.Vertical())
		assert.Equal(t, schemas.NewRect(6, 19, 106, 54), r.ExpandedBy(e))
		assert.Equal(t, r, r.ExpandedBy(e).ShrunkBy(e))
		assert.Equal(t, schemas.NewRect(14, 21, 0, 0), schemas.NewRect(10, 20, 1, 1).ShrunkBy(e))
	})

	t.Run("vertical band", func(t *testing.T) {
		assert.True(t, r.OverlapsVertically(0, 21))
		assert.False(t, r.OverlapsVertically(70, 100))
		assert.False(t, r.OverlapsVertically(0, 20))
	})
}

func TestFullWindowStateClone(t *testing.T) {
	t.Parallel()
	focus := schemas.DomNodeID{Node: schemas.NodeIDFromIndex(1)}
	s := schemas.FullWindowState{
		DPI:           192,
		FocusedNode:   &focus,
		KeyboardState: schemas.KeyboardState{PressedKeys: []schemas.VirtualKeyCode{schemas.KeyEscape}},
		HoveredNodes: map[schemas.DomID]map[schemas.NodeID]schemas.HitTestItem{
			schemas.RootDomID: {schemas.NodeIDFromIndex(0): {Tag: 1}},
		},
	}

	c := s.Clone()
	require.Equal(t, s, c)
	assert.Equal(t, 2.0, c.HiDPIFactor())

	c.FocusedNode.Node = schemas.NodeIDFromIndex(5)
	c.KeyboardState.PressedKeys[0] = 0
	delete(c.HoveredNodes[schemas.RootDomID], schemas.NodeIDFromIndex(0))

	assert.Equal(t, schemas.NodeIDFromIndex(1), s.FocusedNode.Node)
	assert.Equal(t, schemas.KeyEscape, s.KeyboardState.PressedKeys[0])
	assert.Len(t, s.HoveredNodes[schemas.RootDomID], 1)
	assert.True(t, s.KeyboardState.IsDown(schemas.KeyEscape))
}

func TestMouseState(t *testing.T) {
	t.Parallel()
	dy := 3.0
	m := schemas.MouseState{CursorPosition: schemas.InWindowAt(1, 2), ScrollY: &dy}
	assert.True(t, m.IsScrolling())
	assert.Equal(t, schemas.Point{Y: 3}, m.ScrollDelta())
	assert.False(t, m.AnyDown())
	assert.True(t, m.CursorPosition.InWindow)
}
