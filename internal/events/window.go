// internal/events/window.go
package events

import (
	"slices"

	"github.com/xkilldash9x/boxflow/api/schemas"
)

// DetermineWindowEvents derives the window-level events of a frame purely from
// the difference between the previous and the current window state.
func DetermineWindowEvents(prev, curr *schemas.FullWindowState) []WindowEventFilter {
	var out []WindowEventFilter

	pm, cm := prev.MouseState, curr.MouseState
	switch {
	case !pm.CursorPosition.InWindow && cm.CursorPosition.InWindow:
		out = append(out, WindowMouseEnter)
	case pm.CursorPosition.InWindow && !cm.CursorPosition.InWindow:
		out = append(out, WindowMouseLeave)
	case pm.CursorPosition.InWindow && cm.CursorPosition.InWindow &&
		pm.CursorPosition.Position != cm.CursorPosition.Position:
		out = append(out, WindowMouseOver)
	}

	if !pm.AnyDown() && cm.AnyDown() {
		out = append(out, WindowMouseDown)
	}
	if !pm.LeftDown && cm.LeftDown {
		out = append(out, WindowLeftMouseDown)
	}
	if !pm.RightDown && cm.RightDown {
		out = append(out, WindowRightMouseDown)
	}
	if !pm.MiddleDown && cm.MiddleDown {
		out = append(out, WindowMiddleMouseDown)
	}
	if pm.AnyDown() && !cm.AnyDown() {
		out = append(out, WindowMouseUp)
	}
	if pm.LeftDown && !cm.LeftDown {
		out = append(out, WindowLeftMouseUp)
	}
	if pm.RightDown && !cm.RightDown {
		out = append(out, WindowRightMouseUp)
	}
	if pm.MiddleDown && !cm.MiddleDown {
		out = append(out, WindowMiddleMouseUp)
	}

	switch {
	case !pm.IsScrolling() && cm.IsScrolling():
		out = append(out, WindowScrollStart, WindowScroll)
	case pm.IsScrolling() && cm.IsScrolling():
		out = append(out, WindowScroll)
	case pm.IsScrolling() && !cm.IsScrolling():
		out = append(out, WindowScrollEnd)
	}

	pk, ck := prev.KeyboardState, curr.KeyboardState
	switch {
	case pk.VirtualKeycode == nil && ck.VirtualKeycode != nil:
		out = append(out, WindowVirtualKeyDown)
	case pk.VirtualKeycode != nil && ck.VirtualKeycode == nil:
		out = append(out, WindowVirtualKeyUp)
	case pk.VirtualKeycode != nil && ck.VirtualKeycode != nil && *pk.VirtualKeycode != *ck.VirtualKeycode:
		out = append(out, WindowVirtualKeyDown)
	}
	if ck.CurrentChar != nil && (pk.CurrentChar == nil || *pk.CurrentChar != *ck.CurrentChar) {
		out = append(out, WindowTextInput)
	}

	if prev.HoveredFile == nil && curr.HoveredFile != nil {
		out = append(out, WindowHoveredFile)
	}
	if prev.HoveredFile != nil && curr.HoveredFile == nil && curr.DroppedFile == nil {
		out = append(out, WindowHoveredFileCancelled)
	}
	if prev.DroppedFile == nil && curr.DroppedFile != nil {
		out = append(out, WindowDroppedFile)
	}
	return out
}

// HoverEvents maps window events to the hover events that apply to hit nodes.
// MouseEnter/MouseLeave are excluded; per-node enter/leave comes from HoverDiff.
func HoverEvents(window []WindowEventFilter) []HoverEventFilter {
	out := make([]HoverEventFilter, 0, len(window))
	for _, w := range window {
		if w == WindowMouseEnter || w == WindowMouseLeave {
			continue
		}
		if h, ok := w.ToHover(); ok {
			out = append(out, h)
		}
	}
	return out
}

// FocusEvents maps window events to the events delivered to the focused node.
func FocusEvents(window []WindowEventFilter) []FocusEventFilter {
	out := make([]FocusEventFilter, 0, len(window))
	for _, w := range window {
		if w == WindowMouseEnter || w == WindowMouseLeave {
			continue
		}
		if f, ok := w.ToFocus(); ok {
			out = append(out, f)
		}
	}
	return out
}

// HoverDiff compares the hovered set of the previous frame with the current
// hit set. entered lists nodes newly hit, left lists nodes no longer hit;
// both are sorted by NodeID.
func HoverDiff(prev, curr map[schemas.NodeID]schemas.HitTestItem) (entered, left []schemas.NodeID) {
	for id := range curr {
		if _, ok := prev[id]; !ok {
			entered = append(entered, id)
		}
	}
	for id := range prev {
		if _, ok := curr[id]; !ok {
			left = append(left, id)
		}
	}
	slices.Sort(entered)
	slices.Sort(left)
	return entered, left
}

// Contains reports whether the window event list includes e.
func Contains(list []WindowEventFilter, e WindowEventFilter) bool {
	return slices.Contains(list, e)
}
