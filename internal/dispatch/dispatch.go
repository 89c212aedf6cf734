// internal/dispatch/dispatch.go
// Package dispatch turns two successive window states and a hit list into
// the set of node callbacks a frame triggers, then runs them.
package dispatch

import (
	"slices"

	"go.uber.org/zap"

	"github.com/xkilldash9x/boxflow/api/schemas"
	"github.com/xkilldash9x/boxflow/internal/css"
	"github.com/xkilldash9x/boxflow/internal/events"
	"github.com/xkilldash9x/boxflow/internal/layout"
	"github.com/xkilldash9x/boxflow/internal/style"
)

type (
	NodeID    = schemas.NodeID
	DomID     = schemas.DomID
	DomNodeID = schemas.DomNodeID
)

// DefaultMaxFocusDepth caps how many callback rounds a focus cascade may run.
const DefaultMaxFocusDepth = 5

// CallbackToCall is one entry of a node's callback vector selected for this frame.
type CallbackToCall struct {
	// Index is the position in dom.NodeData.Callbacks.
	Index int
	Event events.EventFilter
}

// DetermineCallbackResult lists what fires on one node.
type DetermineCallbackResult struct {
	// HitTestItem is set for nodes under the cursor (or under it last frame).
	HitTestItem *schemas.HitTestItem
	Callbacks   []CallbackToCall
}

// FocusChange records the focused node before and after the frame. Either
// side is nil when no node was focused.
type FocusChange struct {
	Old *DomNodeID
	New *DomNodeID
}

// StateTransitions lists the nodes whose interaction flags change this frame.
type StateTransitions struct {
	HoverOn   map[DomID][]NodeID
	HoverOff  map[DomID][]NodeID
	ActiveOn  map[DomID][]NodeID
	ActiveOff map[DomID][]NodeID
}

func (s *StateTransitions) add(m *map[DomID][]NodeID, dom DomID, ids []NodeID) {
	if len(ids) == 0 {
		return
	}
	if *m == nil {
		*m = map[DomID][]NodeID{}
	}
	(*m)[dom] = append((*m)[dom], ids...)
}

// CallbacksOfHitTest is the outcome of resolving one frame.
type CallbacksOfHitTest struct {
	// NeedsRedrawAnyways is set when a state overlay changes appearance even
	// if no callback runs.
	NeedsRedrawAnyways bool
	// NeedsRelayoutAnyways is set when a state overlay touches layout properties.
	NeedsRelayoutAnyways bool
	NodesWithCallbacks   map[DomNodeID]*DetermineCallbackResult
	// Order is the invocation order of NodesWithCallbacks: hit nodes topmost
	// first, then nodes that were left, focus targets, window listeners and
	// Not listeners.
	Order []DomNodeID

	WindowEvents []events.WindowEventFilter
	// HoveredNodes is the hit set the frame was resolved against.
	HoveredNodes map[DomID]map[NodeID]schemas.HitTestItem
	Transitions  StateTransitions
	// Focus is nil when focus does not move this frame.
	Focus *FocusChange
}

// IsEmpty reports whether no callback fires.
func (c *CallbacksOfHitTest) IsEmpty() bool { return len(c.Order) == 0 }

func (c *CallbacksOfHitTest) add(node DomNodeID, item *schemas.HitTestItem, call CallbackToCall) {
	res, ok := c.NodesWithCallbacks[node]
	if !ok {
		res = &DetermineCallbackResult{}
		c.NodesWithCallbacks[node] = res
		c.Order = append(c.Order, node)
	}
	if res.HitTestItem == nil && item != nil {
		it := *item
		res.HitTestItem = &it
	}
	for _, existing := range res.Callbacks {
		if existing.Index == call.Index {
			return
		}
	}
	res.Callbacks = append(res.Callbacks, call)
}

// Frame is the input of one resolution.
type Frame struct {
	Layout   *layout.Result
	Previous *schemas.FullWindowState
	Current  *schemas.FullWindowState
	// Hits are the hit items under the cursor, topmost first.
	Hits []schemas.HitTestItem
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMaxFocusDepth overrides the focus cascade cap.
func WithMaxFocusDepth(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxFocusDepth = n
		}
	}
}

// WithKeyMap installs keyboard shortcuts that run before Tab navigation.
func WithKeyMap(k *KeyMap) Option {
	return func(r *Resolver) { r.keymap = k }
}

// Resolver determines and invokes the callbacks of a frame. It holds no
// per-frame state and may be reused across frames.
type Resolver struct {
	logger        *zap.Logger
	maxFocusDepth int
	keymap        *KeyMap
}

// NewResolver creates a Resolver.
func NewResolver(logger *zap.Logger, opts ...Option) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Resolver{logger: logger.Named("dispatch"), maxFocusDepth: DefaultMaxFocusDepth}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MaxFocusDepth returns the focus cascade cap.
func (r *Resolver) MaxFocusDepth() int { return r.maxFocusDepth }

type hitNode struct {
	id   DomNodeID
	item schemas.HitTestItem
}

// HitSet resolves hit items to nodes grouped by DOM. Items whose DOM or tag
// no longer resolves are dropped.
func HitSet(l *layout.Result, hits []schemas.HitTestItem) map[DomID]map[NodeID]schemas.HitTestItem {
	out := map[DomID]map[NodeID]schemas.HitTestItem{}
	for _, h := range resolveHits(l, hits) {
		if out[h.id.Dom] == nil {
			out[h.id.Dom] = map[NodeID]schemas.HitTestItem{}
		}
		out[h.id.Dom][h.id.Node] = h.item
	}
	return out
}

// HitNodes resolves hit items to nodes, keeping the topmost-first order.
func HitNodes(l *layout.Result, hits []schemas.HitTestItem) []DomNodeID {
	resolved := resolveHits(l, hits)
	out := make([]DomNodeID, len(resolved))
	for i, h := range resolved {
		out[i] = h.id
	}
	return out
}

func resolveHits(l *layout.Result, hits []schemas.HitTestItem) []hitNode {
	if l == nil {
		return nil
	}
	out := make([]hitNode, 0, len(hits))
	for _, h := range hits {
		res, ok := l.Find(h.Pipeline.Dom)
		if !ok {
			continue
		}
		id, ok := res.Styled.NodeForTag(h.Tag)
		if !ok {
			continue
		}
		out = append(out, hitNode{id: DomNodeID{Dom: res.DomID, Node: id}, item: h})
	}
	return out
}

// firedSet records on which nodes an event fired, for Not filters.
type firedSet map[events.EventFilter]map[DomNodeID]bool

func (f firedSet) mark(e events.EventFilter, node DomNodeID) {
	if f[e] == nil {
		f[e] = map[DomNodeID]bool{}
	}
	f[e][node] = true
}

// firedElsewhere reports whether e fired this frame but not on node.
func (f firedSet) firedElsewhere(e events.EventFilter, node DomNodeID) bool {
	set := f[e]
	return len(set) > 0 && !set[node]
}

// Determine resolves the callbacks a frame triggers without running any.
func (r *Resolver) Determine(f Frame) CallbacksOfHitTest {
	out := CallbacksOfHitTest{NodesWithCallbacks: map[DomNodeID]*DetermineCallbackResult{}}
	if f.Layout == nil || f.Current == nil {
		return out
	}
	prev := f.Previous
	if prev == nil {
		prev = &schemas.FullWindowState{}
	}
	window := events.DetermineWindowEvents(prev, f.Current)
	out.WindowEvents = window

	hits := resolveHits(f.Layout, f.Hits)
	if events.Contains(window, events.WindowMouseLeave) {
		hits = nil
	}
	out.HoveredNodes = map[DomID]map[NodeID]schemas.HitTestItem{}
	for _, h := range hits {
		if out.HoveredNodes[h.id.Dom] == nil {
			out.HoveredNodes[h.id.Dom] = map[NodeID]schemas.HitTestItem{}
		}
		out.HoveredNodes[h.id.Dom][h.id.Node] = h.item
	}

	fired := firedSet{}
	hoverEvents := events.HoverEvents(window)
	mouseDown := events.Contains(window, events.WindowMouseDown)
	mouseUp := events.Contains(window, events.WindowMouseUp)

	for res := range f.Layout.Walk() {
		sd := res.Styled
		prevHover := prev.HoveredNodes[res.DomID]
		currHover := out.HoveredNodes[res.DomID]
		entered, left := events.HoverDiff(prevHover, currHover)
		left = slices.DeleteFunc(left, func(id NodeID) bool { return !sd.Hierarchy.Contains(id) })

		for _, h := range hits {
			if h.id.Dom != res.DomID {
				continue
			}
			for _, e := range hoverEvents {
				fired.mark(e, h.id)
			}
			isNew := slices.Contains(entered, h.id.Node)
			if isNew {
				fired.mark(events.HoverMouseEnter, h.id)
			}
			for i, cb := range sd.NodeData.Get(h.id.Node).Callbacks {
				ev, ok := cb.Event.(events.HoverEventFilter)
				if !ok {
					continue
				}
				if slices.Contains(hoverEvents, ev) || (ev == events.HoverMouseEnter && isNew) {
					out.add(h.id, &h.item, CallbackToCall{Index: i, Event: ev})
				}
			}
		}
		for _, id := range left {
			node := DomNodeID{Dom: res.DomID, Node: id}
			fired.mark(events.HoverMouseLeave, node)
			item := prevHover[id]
			for i, cb := range sd.NodeData.Get(id).Callbacks {
				if cb.Event == events.EventFilter(events.HoverMouseLeave) {
					out.add(node, &item, CallbackToCall{Index: i, Event: cb.Event})
				}
			}
		}

		out.Transitions.add(&out.Transitions.HoverOn, res.DomID, entered)
		out.Transitions.add(&out.Transitions.HoverOff, res.DomID, left)
		r.markStateChange(&out, sd, entered, css.StateHover)
		r.markStateChange(&out, sd, left, css.StateHover)

		if mouseDown {
			var on []NodeID
			for _, h := range hits {
				if h.id.Dom == res.DomID {
					on = append(on, h.id.Node)
				}
			}
			out.Transitions.add(&out.Transitions.ActiveOn, res.DomID, on)
			r.markStateChange(&out, sd, on, css.StateActive)
		}
		if mouseUp {
			off := sd.NodesInState(func(s style.NodeState) bool { return s.Active })
			out.Transitions.add(&out.Transitions.ActiveOff, res.DomID, off)
			r.markStateChange(&out, sd, off, css.StateActive)
		}
	}

	r.determineFocus(&out, f, prev, hits, window, fired)

	for res := range f.Layout.Walk() {
		sd := res.Styled
		for _, id := range sd.NodesWithWindowCallbacks {
			node := DomNodeID{Dom: res.DomID, Node: id}
			for i, cb := range sd.NodeData.Get(id).Callbacks {
				if ev, ok := cb.Event.(events.WindowEventFilter); ok && events.Contains(window, ev) {
					out.add(node, nil, CallbackToCall{Index: i, Event: ev})
				}
			}
		}
	}

	for res := range f.Layout.Walk() {
		sd := res.Styled
		for _, id := range sd.NodesWithNotCallbacks {
			node := DomNodeID{Dom: res.DomID, Node: id}
			for i, cb := range sd.NodeData.Get(id).Callbacks {
				not, ok := cb.Event.(events.NotEventFilter)
				if ok && fired.firedElsewhere(not.Inner(), node) {
					out.add(node, nil, CallbackToCall{Index: i, Event: not})
				}
			}
		}
	}

	for _, w := range window {
		if w.IsScroll() {
			out.NeedsRedrawAnyways = true
		}
	}
	if !out.IsEmpty() || out.Focus != nil {
		r.logger.Debug("frame resolved",
			zap.Int("window_events", len(window)),
			zap.Int("hits", len(hits)),
			zap.Int("nodes_with_callbacks", len(out.Order)),
			zap.Bool("focus_changed", out.Focus != nil))
	}
	return out
}

// determineFocus moves focus on mouse buttons and Tab, then queues the focus
// events of the frame on the nodes that receive them.
func (r *Resolver) determineFocus(out *CallbacksOfHitTest, f Frame, prev *schemas.FullWindowState, hits []hitNode, window []events.WindowEventFilter, fired firedSet) {
	old := prev.FocusedNode
	next := old
	switch {
	case events.Contains(window, events.WindowMouseDown) || events.Contains(window, events.WindowMouseUp):
		var target *DomNodeID
		for _, h := range hits {
			if h.item.IsFocusable && h.item.IsIframeHit == nil {
				id := h.id
				target = &id
				break
			}
		}
		// Pressing outside any focusable node clears focus; releasing there keeps it.
		if target != nil || events.Contains(window, events.WindowMouseDown) {
			next = target
		}
	case events.Contains(window, events.WindowVirtualKeyDown):
		ks := f.Current.KeyboardState
		if ks.VirtualKeycode != nil && *ks.VirtualKeycode == schemas.KeyTab && !r.keymap.Consumes(ks) {
			next = NextInTabOrder(f.Layout, old, ks.Modifiers.Has(schemas.ModShift))
		}
	}

	if !sameNode(old, next) {
		out.Focus = &FocusChange{Old: old, New: next}
		if old != nil {
			fired.mark(events.FocusLost, *old)
			r.queueFocusEvent(out, f.Layout, *old, events.FocusLost)
			r.markFocusStyle(out, f.Layout, *old)
		}
		if next != nil {
			fired.mark(events.FocusReceived, *next)
			r.queueFocusEvent(out, f.Layout, *next, events.FocusReceived)
			r.markFocusStyle(out, f.Layout, *next)
		}
	}

	if next == nil {
		return
	}
	for _, e := range events.FocusEvents(window) {
		fired.mark(e, *next)
		r.queueFocusEvent(out, f.Layout, *next, e)
	}
}

func (r *Resolver) queueFocusEvent(out *CallbacksOfHitTest, l *layout.Result, node DomNodeID, e events.FocusEventFilter) {
	res, ok := l.Find(node.Dom)
	if !ok || !res.Styled.Hierarchy.Contains(node.Node) {
		return
	}
	for i, cb := range res.Styled.NodeData.Get(node.Node).Callbacks {
		if cb.Event == events.EventFilter(e) {
			out.add(node, nil, CallbackToCall{Index: i, Event: e})
		}
	}
}

func (r *Resolver) markFocusStyle(out *CallbacksOfHitTest, l *layout.Result, node DomNodeID) {
	if res, ok := l.Find(node.Dom); ok && res.Styled.Hierarchy.Contains(node.Node) {
		r.markStateChange(out, res.Styled, []NodeID{node.Node}, css.StateFocus)
	}
}

// markStateChange raises the redraw and relayout flags when one of ids has a
// style overlay for state.
func (r *Resolver) markStateChange(out *CallbacksOfHitTest, sd *style.StyledDom, ids []NodeID, state css.NodeState) {
	for _, id := range ids {
		if sd.Cache.HasState(id, state) {
			out.NeedsRedrawAnyways = true
		}
		if sd.Cache.StateAffectsLayout(id, state) {
			out.NeedsRelayoutAnyways = true
		}
	}
}

func sameNode(a, b *DomNodeID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
