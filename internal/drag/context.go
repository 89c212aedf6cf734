// internal/drag/context.go
// Package drag holds the per-window drag gesture and text selection state.
package drag

import (
	"github.com/google/uuid"

	"github.com/xkilldash9x/boxflow/api/schemas"
	"github.com/xkilldash9x/boxflow/internal/layout"
)

type (
	NodeID    = schemas.NodeID
	DomID     = schemas.DomID
	DomNodeID = schemas.DomNodeID
	Point     = schemas.Point
)

// SessionID links a drag to the gesture that started it.
type SessionID uuid.UUID

// NewSessionID returns a random session id.
func NewSessionID() SessionID { return SessionID(uuid.New()) }

func (s SessionID) String() string { return uuid.UUID(s).String() }

// Kind names a drag variant.
type Kind uint8

const (
	KindTextSelection Kind = iota
	KindScrollbarThumb
	KindNodeDrag
	KindWindowMove
	KindWindowResize
	KindFileDrop
)

func (k Kind) String() string {
	return [...]string{"TextSelection", "ScrollbarThumb", "NodeDrag", "WindowMove", "WindowResize", "FileDrop"}[k]
}

// Variant is the gesture-specific state of a drag. The set of variants is
// closed to this package.
type Variant interface {
	Kind() Kind
	// moveTo records a new cursor position.
	moveTo(p Point)
	// remap rewrites node ids of dom through table; false when a held id has
	// no counterpart.
	remap(dom DomID, table map[NodeID]NodeID) bool
}

// Context is the single active drag of a window.
type Context struct {
	Session   SessionID
	Cancelled bool
	Variant   Variant
}

// Kind returns the variant's kind.
func (c *Context) Kind() Kind { return c.Variant.Kind() }

func remapID(id *DomNodeID, dom DomID, table map[NodeID]NodeID) bool {
	if id.Dom != dom {
		return true
	}
	next, ok := table[id.Node]
	if !ok {
		return false
	}
	id.Node = next
	return true
}

// TextSelection extends a selection from an anchor inside a text node.
type TextSelection struct {
	Dom    DomID
	Anchor TextCursor
	Start  Point
	// Current is the latest cursor position in viewport coordinates.
	Current Point
}

func (*TextSelection) Kind() Kind       { return KindTextSelection }
func (t *TextSelection) moveTo(p Point) { t.Current = p }
func (t *TextSelection) remap(dom DomID, table map[NodeID]NodeID) bool {
	if t.Dom != dom {
		return true
	}
	next, ok := table[t.Anchor.Node]
	t.Anchor.Node = next
	return ok
}

// Axis selects the scrolled direction of a scrollbar drag.
type Axis uint8

const (
	AxisVertical Axis = iota
	AxisHorizontal
)

// ScrollbarThumb drags the thumb of a scroll container.
type ScrollbarThumb struct {
	Node DomNodeID
	Axis Axis
	// StartMouse and Current are cursor positions along the axis.
	StartMouse  float64
	Current     float64
	StartOffset float64
	// TrackLength and ThumbLength are in pixels of the scrollbar itself.
	TrackLength    float64
	ThumbLength    float64
	ContentLength  float64
	ViewportLength float64
}

// NewScrollbarThumb starts a thumb drag over a scroll container. The thumb
// length is proportional to the visible share of the content.
func NewScrollbarThumb(id DomNodeID, n layout.OverflowingScrollNode, axis Axis, cursor Point, startOffset float64) *ScrollbarThumb {
	s := &ScrollbarThumb{Node: id, Axis: axis, StartOffset: startOffset}
	if axis == AxisVertical {
		s.StartMouse = cursor.Y
		s.TrackLength = n.ParentRect.Height
		s.ViewportLength = n.ParentRect.Height
		s.ContentLength = n.VirtualChildRect.MaxY() - n.ParentRect.Y
	} else {
		s.StartMouse = cursor.X
		s.TrackLength = n.ParentRect.Width
		s.ViewportLength = n.ParentRect.Width
		s.ContentLength = n.VirtualChildRect.MaxX() - n.ParentRect.X
	}
	s.Current = s.StartMouse
	if s.ContentLength > 0 {
		s.ThumbLength = s.TrackLength * min(s.ViewportLength/s.ContentLength, 1)
	}
	return s
}

func (*ScrollbarThumb) Kind() Kind { return KindScrollbarThumb }

func (s *ScrollbarThumb) moveTo(p Point) {
	if s.Axis == AxisVertical {
		s.Current = p.Y
	} else {
		s.Current = p.X
	}
}

func (s *ScrollbarThumb) remap(dom DomID, table map[NodeID]NodeID) bool {
	return remapID(&s.Node, dom, table)
}

// Offset is the scroll offset for the current cursor position:
// start + (mouse delta / scrollable track) * scrollable range, clamped to
// [0, content - viewport].
func (s *ScrollbarThumb) Offset() float64 {
	rangeLen := max(s.ContentLength-s.ViewportLength, 0)
	track := s.TrackLength - s.ThumbLength
	if track <= 0 || rangeLen == 0 {
		return min(max(s.StartOffset, 0), rangeLen)
	}
	off := s.StartOffset + (s.Current-s.StartMouse)/track*rangeLen
	return min(max(off, 0), rangeLen)
}

// OffsetPoint is Offset placed on the drag's axis.
func (s *ScrollbarThumb) OffsetPoint(other float64) Point {
	if s.Axis == AxisVertical {
		return Point{X: other, Y: s.Offset()}
	}
	return Point{X: s.Offset(), Y: other}
}

// NodeDrag drags a DOM node over potential drop targets.
type NodeDrag struct {
	Node    DomNodeID
	Start   Point
	Current Point
	// DropTarget is the node currently under the cursor, if any accepts drops.
	DropTarget *DomNodeID
}

func (*NodeDrag) Kind() Kind       { return KindNodeDrag }
func (n *NodeDrag) moveTo(p Point) { n.Current = p }
func (n *NodeDrag) remap(dom DomID, table map[NodeID]NodeID) bool {
	if !remapID(&n.Node, dom, table) {
		return false
	}
	if n.DropTarget != nil && !remapID(n.DropTarget, dom, table) {
		n.DropTarget = nil
	}
	return true
}

// WindowMove moves the window by dragging a client area.
type WindowMove struct {
	StartCursor    Point
	Current        Point
	StartWindowPos Point
}

func (*WindowMove) Kind() Kind                          { return KindWindowMove }
func (w *WindowMove) moveTo(p Point)                    { w.Current = p }
func (*WindowMove) remap(DomID, map[NodeID]NodeID) bool { return true }

// WindowPosition is where the window should be now.
func (w *WindowMove) WindowPosition() Point {
	return w.StartWindowPos.Add(w.Current.Sub(w.StartCursor))
}

// ResizeEdge is a bitmask of the window edges being dragged.
type ResizeEdge uint8

const (
	EdgeRight ResizeEdge = 1 << iota
	EdgeBottom
	EdgeLeft
	EdgeTop
)

// WindowResize resizes the window from an edge or corner.
type WindowResize struct {
	Edge        ResizeEdge
	StartCursor Point
	Current     Point
	StartSize   schemas.Size
}

func (*WindowResize) Kind() Kind                          { return KindWindowResize }
func (w *WindowResize) moveTo(p Point)                    { w.Current = p }
func (*WindowResize) remap(DomID, map[NodeID]NodeID) bool { return true }

// Size is the new window size, never negative.
func (w *WindowResize) Size() schemas.Size {
	d := w.Current.Sub(w.StartCursor)
	s := w.StartSize
	if w.Edge&EdgeRight != 0 {
		s.Width += d.X
	}
	if w.Edge&EdgeLeft != 0 {
		s.Width -= d.X
	}
	if w.Edge&EdgeBottom != 0 {
		s.Height += d.Y
	}
	if w.Edge&EdgeTop != 0 {
		s.Height -= d.Y
	}
	return schemas.Size{Width: max(s.Width, 0), Height: max(s.Height, 0)}
}

// FileDrop tracks a file dragged in from outside the window.
type FileDrop struct {
	Path       string
	Current    Point
	DropTarget *DomNodeID
}

func (*FileDrop) Kind() Kind       { return KindFileDrop }
func (f *FileDrop) moveTo(p Point) { f.Current = p }
func (f *FileDrop) remap(dom DomID, table map[NodeID]NodeID) bool {
	if f.DropTarget != nil && !remapID(f.DropTarget, dom, table) {
		f.DropTarget = nil
	}
	return true
}
