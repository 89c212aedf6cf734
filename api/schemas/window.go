// api/schemas/window.go
package schemas

// -- Window State Schemas --

// Theme is the platform color scheme.
type Theme int

const (
	ThemeLight Theme = iota
	ThemeDark
)

// CursorPosition records where the mouse cursor was in relation to the window.
type CursorPosition struct {
	// InWindow is false both before the first mouse event and after the cursor left.
	InWindow bool  `json:"in_window"`
	Position Point `json:"position"`
}

// InWindowAt is a convenience constructor.
func InWindowAt(x, y float64) CursorPosition {
	return CursorPosition{InWindow: true, Position: Point{X: x, Y: y}}
}

// MouseState is the mouse snapshot for one frame.
type MouseState struct {
	CursorPosition CursorPosition `json:"cursor_position"`
	LeftDown       bool           `json:"left_down"`
	RightDown      bool           `json:"right_down"`
	MiddleDown     bool           `json:"middle_down"`
	// ScrollX/ScrollY are the wheel deltas of this frame, nil when not scrolling.
	ScrollX *float64 `json:"scroll_x,omitempty"`
	ScrollY *float64 `json:"scroll_y,omitempty"`
}

// AnyDown reports whether any button is held.
func (m MouseState) AnyDown() bool { return m.LeftDown || m.RightDown || m.MiddleDown }

// IsScrolling reports whether a wheel delta is present.
func (m MouseState) IsScrolling() bool { return m.ScrollX != nil || m.ScrollY != nil }

// ScrollDelta returns the wheel delta with absent axes as zero.
func (m MouseState) ScrollDelta() Point {
	var p Point
	if m.ScrollX != nil {
		p.X = *m.ScrollX
	}
	if m.ScrollY != nil {
		p.Y = *m.ScrollY
	}
	return p
}

// KeyboardState is the keyboard snapshot for one frame.
type KeyboardState struct {
	// VirtualKeycode is the key that went down this frame, nil when none.
	VirtualKeycode *VirtualKeyCode `json:"virtual_keycode,omitempty"`
	// CurrentChar is the character produced this frame, nil when none.
	CurrentChar *rune       `json:"current_char,omitempty"`
	Modifiers   KeyModifier `json:"modifiers"`
	// PressedKeys lists every key currently held.
	PressedKeys []VirtualKeyCode `json:"pressed_keys,omitempty"`
}

// IsDown reports whether key is currently held.
func (k KeyboardState) IsDown(key VirtualKeyCode) bool {
	if k.VirtualKeycode != nil && *k.VirtualKeycode == key {
		return true
	}
	for _, p := range k.PressedKeys {
		if p == key {
			return true
		}
	}
	return false
}

// FullWindowState is everything the windowing layer reports for one frame.
type FullWindowState struct {
	Size          Size          `json:"size"`
	DPI           float64       `json:"dpi"`
	Theme         Theme         `json:"theme"`
	MouseState    MouseState    `json:"mouse_state"`
	KeyboardState KeyboardState `json:"keyboard_state"`
	HoveredFile   *string       `json:"hovered_file,omitempty"`
	DroppedFile   *string       `json:"dropped_file,omitempty"`
	FocusedNode   *DomNodeID    `json:"focused_node,omitempty"`
	// HoveredNodes is the per-DOM hit set of the frame.
	HoveredNodes map[DomID]map[NodeID]HitTestItem `json:"hovered_nodes,omitempty"`
}

// HiDPIFactor converts the DPI into a scale factor relative to 96 DPI.
func (s *FullWindowState) HiDPIFactor() float64 {
	if s.DPI <= 0 {
		return 1
	}
	return s.DPI / 96
}

// Clone returns a deep copy suitable for storing as the previous frame.
func (s *FullWindowState) Clone() FullWindowState {
	c := *s
	c.KeyboardState.PressedKeys = append([]VirtualKeyCode(nil), s.KeyboardState.PressedKeys...)
	if s.FocusedNode != nil {
		f := *s.FocusedNode
		c.FocusedNode = &f
	}
	if s.HoveredNodes != nil {
		c.HoveredNodes = make(map[DomID]map[NodeID]HitTestItem, len(s.HoveredNodes))
		for dom, nodes := range s.HoveredNodes {
			m := make(map[NodeID]HitTestItem, len(nodes))
			for id, item := range nodes {
				m[id] = item
			}
			c.HoveredNodes[dom] = m
		}
	}
	return c
}

// -- Hit Test Schemas --

// HitTestItem is one entry of the renderer's spatial-index answer for a point.
type HitTestItem struct {
	Pipeline            PipelineID `json:"pipeline"`
	Tag                 TagID      `json:"tag"`
	PointInViewport     Point      `json:"point_in_viewport"`
	PointRelativeToItem Point      `json:"point_relative_to_item"`
	IsFocusable         bool       `json:"is_focusable"`
	IsIframeHit         *DomID     `json:"is_iframe_hit,omitempty"`
}
