// File: internal/events/filter.go

// Package events defines the closed event-filter taxonomy and derives window
// events from two successive window states.
package events

import "fmt"

// EventFilter selects which event a node callback listens to. The set of
// implementations is closed: HoverEventFilter, FocusEventFilter,
// WindowEventFilter and NotEventFilter.
type EventFilter interface {
	isEventFilter()
	fmt.Stringer
}

// WindowEventFilter is an event on the window as a whole.
type WindowEventFilter uint8

const (
	WindowMouseOver WindowEventFilter = iota
	WindowMouseDown
	WindowLeftMouseDown
	WindowRightMouseDown
	WindowMiddleMouseDown
	WindowMouseUp
	WindowLeftMouseUp
	WindowRightMouseUp
	WindowMiddleMouseUp
	WindowMouseEnter
	WindowMouseLeave
	WindowScroll
	WindowScrollStart
	WindowScrollEnd
	WindowTextInput
	WindowVirtualKeyDown
	WindowVirtualKeyUp
	WindowHoveredFile
	WindowDroppedFile
	WindowHoveredFileCancelled
)

var windowNames = [...]string{
	"MouseOver", "MouseDown", "LeftMouseDown", "RightMouseDown", "MiddleMouseDown",
	"MouseUp", "LeftMouseUp", "RightMouseUp", "MiddleMouseUp", "MouseEnter", "MouseLeave",
	"Scroll", "ScrollStart", "ScrollEnd", "TextInput", "VirtualKeyDown", "VirtualKeyUp",
	"HoveredFile", "DroppedFile", "HoveredFileCancelled",
}

func (WindowEventFilter) isEventFilter()   {}
func (w WindowEventFilter) String() string { return "Window(" + windowNames[w] + ")" }

// HoverEventFilter is an event delivered to nodes under the cursor.
type HoverEventFilter uint8

const (
	HoverMouseOver HoverEventFilter = iota
	HoverMouseDown
	HoverLeftMouseDown
	HoverRightMouseDown
	HoverMiddleMouseDown
	HoverMouseUp
	HoverLeftMouseUp
	HoverRightMouseUp
	HoverMiddleMouseUp
	HoverMouseEnter
	HoverMouseLeave
	HoverScroll
	HoverScrollStart
	HoverScrollEnd
	HoverTextInput
	HoverVirtualKeyDown
	HoverVirtualKeyUp
	HoverHoveredFile
	HoverDroppedFile
	HoverHoveredFileCancelled
)

func (HoverEventFilter) isEventFilter()   {}
func (h HoverEventFilter) String() string { return "Hover(" + windowNames[h] + ")" }

// FocusEventFilter is an event delivered to the focused node.
type FocusEventFilter uint8

const (
	FocusMouseOver FocusEventFilter = iota
	FocusMouseDown
	FocusLeftMouseDown
	FocusRightMouseDown
	FocusMiddleMouseDown
	FocusMouseUp
	FocusLeftMouseUp
	FocusRightMouseUp
	FocusMiddleMouseUp
	FocusMouseEnter
	FocusMouseLeave
	FocusScroll
	FocusScrollStart
	FocusScrollEnd
	FocusTextInput
	FocusVirtualKeyDown
	FocusVirtualKeyUp
	FocusReceived
	FocusLost
)

var focusNames = [...]string{
	"MouseOver", "MouseDown", "LeftMouseDown", "RightMouseDown", "MiddleMouseDown",
	"MouseUp", "LeftMouseUp", "RightMouseUp", "MiddleMouseUp", "MouseEnter", "MouseLeave",
	"Scroll", "ScrollStart", "ScrollEnd", "TextInput", "VirtualKeyDown", "VirtualKeyUp",
	"FocusReceived", "FocusLost",
}

func (FocusEventFilter) isEventFilter()   {}
func (f FocusEventFilter) String() string { return "Focus(" + focusNames[f] + ")" }

// NotEventFilter fires on a node when the wrapped event happened this frame
// on some other node. OnFocus selects which of Hover or Focus is wrapped.
type NotEventFilter struct {
	OnFocus bool
	Hover   HoverEventFilter
	Focus   FocusEventFilter
}

// NotHover builds Not(Hover(h)).
func NotHover(h HoverEventFilter) NotEventFilter { return NotEventFilter{Hover: h} }

// NotFocus builds Not(Focus(f)).
func NotFocus(f FocusEventFilter) NotEventFilter { return NotEventFilter{OnFocus: true, Focus: f} }

func (NotEventFilter) isEventFilter() {}
func (n NotEventFilter) String() string {
	if n.OnFocus {
		return "Not(" + n.Focus.String() + ")"
	}
	return "Not(" + n.Hover.String() + ")"
}

// Inner returns the wrapped filter.
func (n NotEventFilter) Inner() EventFilter {
	if n.OnFocus {
		return n.Focus
	}
	return n.Hover
}

// Matches reports whether the Not filter wraps exactly the given event.
func (n NotEventFilter) Matches(e EventFilter) bool {
	switch ev := e.(type) {
	case HoverEventFilter:
		return !n.OnFocus && n.Hover == ev
	case FocusEventFilter:
		return n.OnFocus && n.Focus == ev
	}
	return false
}

// -- Mappings --

// ToHover maps a window event onto its per-node hover counterpart.
func (w WindowEventFilter) ToHover() (HoverEventFilter, bool) {
	// The two enums share ordinal positions.
	return HoverEventFilter(w), true
}

// ToFocus maps a window event onto its focus counterpart. File events have none.
func (w WindowEventFilter) ToFocus() (FocusEventFilter, bool) {
	if w > WindowVirtualKeyUp {
		return 0, false
	}
	return FocusEventFilter(w), true
}

// IsMouseButton reports whether the event is a button press or release.
func (w WindowEventFilter) IsMouseButton() bool {
	return w >= WindowMouseDown && w <= WindowMiddleMouseUp
}

// IsMouseDown reports whether the event is a button press.
func (w WindowEventFilter) IsMouseDown() bool {
	return w >= WindowMouseDown && w <= WindowMiddleMouseDown
}

// IsScroll reports whether the event belongs to a scroll gesture.
func (w WindowEventFilter) IsScroll() bool {
	return w == WindowScroll || w == WindowScrollStart || w == WindowScrollEnd
}
