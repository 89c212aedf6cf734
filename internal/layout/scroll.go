// internal/layout/scroll.go
package layout

import (
	"github.com/xkilldash9x/boxflow/api/schemas"
)

// OverflowingScrollNode is a scrollable node whose content exceeds its
// padding box.
type OverflowingScrollNode struct {
	DomID  schemas.DomID
	NodeID NodeID
	Tag    schemas.TagID
	// ParentRect is the visible area (the content box).
	ParentRect schemas.Rect
	// ChildRect is the union of the laid-out descendants.
	ChildRect schemas.Rect
	// VirtualChildRect is the scrollable extent, which an iframe callback
	// may advertise beyond what is rendered.
	VirtualChildRect schemas.Rect
}

// MaxOffset is the largest scroll offset on each axis.
func (n OverflowingScrollNode) MaxOffset() schemas.Point {
	return schemas.Point{
		X: max(n.VirtualChildRect.MaxX()-n.ParentRect.MaxX(), 0),
		Y: max(n.VirtualChildRect.MaxY()-n.ParentRect.MaxY(), 0),
	}
}

// ScrollableNodes are the overflowing nodes of one DOM, in document order.
type ScrollableNodes struct {
	Nodes map[NodeID]OverflowingScrollNode
	Order []NodeID
}

// Get returns the scroll node for id.
func (s ScrollableNodes) Get(id NodeID) (OverflowingScrollNode, bool) {
	n, ok := s.Nodes[id]
	return n, ok
}

// extractScrollable finds every node with scroll/auto overflow whose
// descendants reach outside its content box.
func extractScrollable(r *Result) ScrollableNodes {
	out := ScrollableNodes{Nodes: map[NodeID]OverflowingScrollNode{}}
	sd := r.Styled
	if sd.Len() == 0 {
		return out
	}
	for id := range sd.Hierarchy.Descendants(sd.Root()) {
		rect := r.Rects.At(id)
		if !rect.OverflowX.IsScrollable() && !rect.OverflowY.IsScrollable() {
			continue
		}
		parent := rect.ContentBox()
		child, found := schemas.Rect{}, false
		for d := range sd.Hierarchy.Descendants(id) {
			if d == id {
				continue
			}
			b := r.Rects.At(d).MarginBox()
			if b.Width == 0 && b.Height == 0 {
				continue
			}
			if !found {
				child, found = b, true
			} else {
				child = child.Union(b)
			}
		}
		if nested, ok := r.Iframes[id]; ok && nested.Styled.Len() > 0 {
			b := nested.Rects.At(nested.Styled.Root()).MarginBox()
			if !found {
				child, found = b, true
			} else {
				child = child.Union(b)
			}
		}
		virtual := child
		if ret, ok := r.iframeScroll[id]; ok {
			vs := ret.VirtualScrollSize
			if vs.Width == 0 && vs.Height == 0 {
				vs = ret.ScrollSize
			}
			if vs.Width > 0 || vs.Height > 0 {
				c := rect.ContentBox()
				v := schemas.NewRect(c.X, c.Y, vs.Width, vs.Height)
				if !found {
					child, virtual, found = v, v, true
				} else {
					virtual = child.Union(v)
				}
			}
		}
		if !found {
			continue
		}
		overflows := virtual.X < parent.X || virtual.Y < parent.Y ||
			virtual.MaxX() > parent.MaxX() || virtual.MaxY() > parent.MaxY()
		if !overflows {
			continue
		}
		tag, _ := sd.TagForNode(id)
		out.Nodes[id] = OverflowingScrollNode{
			DomID:            sd.DomID,
			NodeID:           id,
			Tag:              tag,
			ParentRect:       parent,
			ChildRect:        child,
			VirtualChildRect: virtual,
		}
		out.Order = append(out.Order, id)
	}
	return out
}

// ScrollStates holds the scroll offset of every scrolled node across all DOMs
// of a window. Offsets are clamped to the node's scroll extent.
type ScrollStates struct {
	offsets map[schemas.DomNodeID]schemas.Point
	limits  map[schemas.DomNodeID]schemas.Point
}

// NewScrollStates returns empty scroll states.
func NewScrollStates() *ScrollStates {
	return &ScrollStates{offsets: map[schemas.DomNodeID]schemas.Point{}, limits: map[schemas.DomNodeID]schemas.Point{}}
}

// Sync records the scroll extents of a layout and its iframes, re-clamps
// stored offsets and forgets nodes that no longer scroll.
func (s *ScrollStates) Sync(r *Result) {
	live := map[schemas.DomNodeID]bool{}
	doms := map[schemas.DomID]bool{}
	for res := range r.Walk() {
		doms[res.DomID] = true
		for _, id := range res.Scrollable.Order {
			key := schemas.DomNodeID{Dom: res.DomID, Node: id}
			live[key] = true
			s.limits[key] = res.Scrollable.Nodes[id].MaxOffset()
		}
	}
	for key := range s.limits {
		if doms[key.Dom] && !live[key] {
			delete(s.limits, key)
			delete(s.offsets, key)
		}
	}
	for key, off := range s.offsets {
		s.offsets[key] = s.clamp(key, off)
	}
}

// Offset returns the current offset of a node, zero when never scrolled.
func (s *ScrollStates) Offset(id schemas.DomNodeID) schemas.Point { return s.offsets[id] }

// SetOffset stores a clamped offset and returns it. Unknown nodes clamp to zero.
func (s *ScrollStates) SetOffset(id schemas.DomNodeID, off schemas.Point) schemas.Point {
	off = s.clamp(id, off)
	s.offsets[id] = off
	return off
}

// ScrollBy adds a delta to a node's offset and reports whether it moved.
func (s *ScrollStates) ScrollBy(id schemas.DomNodeID, delta schemas.Point) bool {
	before := s.offsets[id]
	return s.SetOffset(id, before.Add(delta)) != before
}

// CanScroll reports whether a node has a recorded scroll extent.
func (s *ScrollStates) CanScroll(id schemas.DomNodeID) bool {
	_, ok := s.limits[id]
	return ok
}

func (s *ScrollStates) clamp(id schemas.DomNodeID, off schemas.Point) schemas.Point {
	lim := s.limits[id]
	return schemas.Point{X: min(max(off.X, 0), lim.X), Y: min(max(off.Y, 0), lim.Y)}
}
