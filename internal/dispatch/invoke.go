package dispatch

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/boxflow/api/schemas"
	"github.com/xkilldash9x/boxflow/internal/callbacks"
	"github.com/xkilldash9x/boxflow/internal/css"
	"github.com/xkilldash9x/boxflow/internal/dom"
	"github.com/xkilldash9x/boxflow/internal/events"
	"github.com/xkilldash9x/boxflow/internal/layout"
	"github.com/xkilldash9x/boxflow/internal/refany"
)

// Env is what callbacks observe during a frame. It is read-only for them;
// everything they ask for lands in a Requests value.
type Env struct {
	Layout   *layout.Result
	Previous *schemas.FullWindowState
	Current  *schemas.FullWindowState
	Scroll   *layout.ScrollStates
}

// CssRequest is one runtime property override.
type CssRequest struct {
	Node     DomNodeID
	Property css.Property
}

// ThreadRequest is a background thread a callback asked to start.
type ThreadRequest struct {
	Initial       *refany.RefAny
	WritebackData *refany.RefAny
	Func          callbacks.ThreadFunc
}

// Requests collects everything callbacks asked for during a frame, in the
// order they asked.
type Requests struct {
	Update callbacks.Update
	// Focus is the most recent focus request not yet applied.
	Focus *callbacks.FocusTarget

	Css            []CssRequest
	Text           map[DomNodeID]string
	ScrollTo       map[DomNodeID]schemas.Point
	TimersAdded    map[callbacks.TimerID]callbacks.Timer
	TimersRemoved  []callbacks.TimerID
	ThreadsStarted map[callbacks.ThreadID]ThreadRequest
	ThreadsStopped []callbacks.ThreadID
}

// NewRequests returns an empty request set.
func NewRequests() *Requests {
	return &Requests{
		Text:           map[DomNodeID]string{},
		ScrollTo:       map[DomNodeID]schemas.Point{},
		TimersAdded:    map[callbacks.TimerID]callbacks.Timer{},
		ThreadsStarted: map[callbacks.ThreadID]ThreadRequest{},
	}
}

// CallResult is the outcome of running a frame's callbacks.
type CallResult struct {
	*Requests
	// Focus is the net focus change of the frame after the cascade, nil when
	// focus ends where it started.
	Focus *FocusChange
	// Invoked counts the callbacks that ran.
	Invoked int
	// FocusRounds counts the callback rounds of the focus cascade, including the first.
	FocusRounds int
	// DroppedFocus is set when the cascade hit its cap.
	DroppedFocus bool
}

// FocusChanged reports whether focus moved this frame.
func (r *CallResult) FocusChanged() bool { return r.Focus != nil }

// Invoke runs the callbacks determined for a frame and the focus cascade
// they trigger. Callback panics are recovered and logged; the callback then
// counts as returning DoNothing.
func (r *Resolver) Invoke(env *Env, hit *CallbacksOfHitTest) *CallResult {
	req := NewRequests()
	out := &CallResult{Requests: req, FocusRounds: 1}

	var start *DomNodeID
	if env.Previous != nil {
		start = env.Previous.FocusedNode
	}
	focus := start
	if hit.Focus != nil {
		focus = hit.Focus.New
	}

	stopped := map[events.EventFilter]bool{}
	for _, node := range hit.Order {
		res := hit.NodesWithCallbacks[node]
		for _, c := range res.Callbacks {
			if _, isHover := c.Event.(events.HoverEventFilter); isHover && stopped[c.Event] {
				continue
			}
			var stop bool
			r.call(env, req, node, res.HitTestItem, c.Index, &stop, out)
			if stop {
				stopped[c.Event] = true
			}
		}
	}
	if kb, ok := r.keymap.Match(env.Current.KeyboardState); ok && events.Contains(hit.WindowEvents, events.WindowVirtualKeyDown) {
		target := r.keyTarget(env, focus)
		info := newCallInfo(env, req, target, nil)
		req.Update = req.Update.Max(r.safeCall(kb.Callback, kb.Data, info, target))
		out.Invoked++
	}

	for req.Focus != nil {
		if out.FocusRounds >= r.maxFocusDepth {
			r.logger.Warn("focus cascade exceeded depth, dropping further focus changes",
				zap.Int("max_depth", r.maxFocusDepth))
			req.Focus = nil
			out.DroppedFocus = true
			break
		}
		target := *req.Focus
		req.Focus = nil
		next := r.ResolveFocusTarget(env.Layout, target)
		if sameNode(focus, next) {
			break
		}
		old := focus
		focus = next
		out.FocusRounds++
		if old != nil {
			r.callFocusEvent(env, req, *old, events.FocusLost, out)
		}
		if next != nil {
			r.callFocusEvent(env, req, *next, events.FocusReceived, out)
		}
	}

	if !sameNode(start, focus) {
		out.Focus = &FocusChange{Old: start, New: focus}
	}
	return out
}

// keyTarget is the node keyboard shortcuts run against: the focused node, or
// the root of the top-level DOM.
func (r *Resolver) keyTarget(env *Env, focus *DomNodeID) DomNodeID {
	if focus != nil {
		return *focus
	}
	return DomNodeID{Dom: env.Layout.DomID, Node: env.Layout.Styled.Root()}
}

func (r *Resolver) callFocusEvent(env *Env, req *Requests, node DomNodeID, e events.FocusEventFilter, out *CallResult) {
	res, ok := env.Layout.Find(node.Dom)
	if !ok || !res.Styled.Hierarchy.Contains(node.Node) {
		return
	}
	for i, cb := range res.Styled.NodeData.Get(node.Node).Callbacks {
		if cb.Event == events.EventFilter(e) {
			var stop bool
			r.call(env, req, node, nil, i, &stop, out)
		}
	}
}

func (r *Resolver) call(env *Env, req *Requests, node DomNodeID, item *schemas.HitTestItem, index int, stop *bool, out *CallResult) {
	res, ok := env.Layout.Find(node.Dom)
	if !ok || !res.Styled.Hierarchy.Contains(node.Node) {
		return
	}
	cbs := res.Styled.NodeData.Get(node.Node).Callbacks
	if index < 0 || index >= len(cbs) {
		return
	}
	cb := cbs[index]
	info := newCallInfo(env, req, node, item)
	req.Update = req.Update.Max(r.safeCall(cb.Callback, cb.Data, info, node))
	*stop = info.stop
	out.Invoked++
}

func (r *Resolver) safeCall(cb callbacks.Callback, data *refany.RefAny, info *callInfo, node DomNodeID) (u callbacks.Update) {
	if cb == nil {
		return callbacks.DoNothing
	}
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("callback panicked", zap.Stringer("node", node), zap.String("panic", fmt.Sprint(p)))
			u = callbacks.DoNothing
		}
	}()
	return cb(data, info)
}

// ResolveFocusTarget resolves a focus request against the current layout.
// Unknown ids and paths that match nothing resolve to nil, clearing focus.
func (r *Resolver) ResolveFocusTarget(l *layout.Result, t callbacks.FocusTarget) *DomNodeID {
	switch t.Kind {
	case callbacks.FocusByID:
		res, ok := l.Find(t.ID.Dom)
		if !ok || !res.Styled.Hierarchy.Contains(t.ID.Node) {
			r.logger.Debug("focus target not found", zap.Stringer("node", t.ID))
			return nil
		}
		id := t.ID
		return &id
	case callbacks.FocusByPath:
		res, ok := l.Find(t.Dom)
		if !ok {
			return nil
		}
		id, ok := res.Styled.FindFirst(t.Path)
		if !ok {
			r.logger.Debug("focus path did not resolve", zap.Stringer("path", t.Path))
			return nil
		}
		return &DomNodeID{Dom: t.Dom, Node: id}
	}
	return nil
}

// NewCallbackInfo builds the CallbackInfo handed to timer and writeback
// callbacks, which run against node outside the hit-test.
func NewCallbackInfo(env *Env, req *Requests, node DomNodeID) callbacks.CallbackInfo {
	return newCallInfo(env, req, node, nil)
}

type callInfo struct {
	env  *Env
	req  *Requests
	node DomNodeID
	item *schemas.HitTestItem
	stop bool
}

func newCallInfo(env *Env, req *Requests, node DomNodeID, item *schemas.HitTestItem) *callInfo {
	return &callInfo{env: env, req: req, node: node, item: item}
}

var _ callbacks.CallbackInfo = (*callInfo)(nil)

func (c *callInfo) HitNode() DomNodeID { return c.node }

func (c *callInfo) CursorRelativeToNode() (schemas.Point, bool) {
	if c.item == nil {
		return schemas.Point{}, false
	}
	return c.item.PointRelativeToItem, true
}

func (c *callInfo) CursorInViewport() (schemas.Point, bool) {
	if c.env.Current == nil || !c.env.Current.MouseState.CursorPosition.InWindow {
		return schemas.Point{}, false
	}
	return c.env.Current.MouseState.CursorPosition.Position, true
}

func (c *callInfo) WindowState() *schemas.FullWindowState         { return c.env.Current }
func (c *callInfo) PreviousWindowState() *schemas.FullWindowState { return c.env.Previous }

func (c *callInfo) lookup(node DomNodeID) (*layout.Result, bool) {
	res, ok := c.env.Layout.Find(node.Dom)
	if !ok || !res.Styled.Hierarchy.Contains(node.Node) {
		return nil, false
	}
	return res, true
}

func (c *callInfo) Parent(node DomNodeID) (DomNodeID, bool) {
	res, ok := c.lookup(node)
	if !ok {
		return DomNodeID{}, false
	}
	p := res.Styled.Hierarchy.Parent(node.Node)
	return DomNodeID{Dom: node.Dom, Node: p}, p.IsSome()
}

func (c *callInfo) Children(node DomNodeID) []DomNodeID {
	res, ok := c.lookup(node)
	if !ok {
		return nil
	}
	var out []DomNodeID
	for ch := range res.Styled.Hierarchy.Children(node.Node) {
		out = append(out, DomNodeID{Dom: node.Dom, Node: ch})
	}
	return out
}

func (c *callInfo) NodeRect(node DomNodeID) (schemas.Rect, bool) {
	res, ok := c.lookup(node)
	if !ok {
		return schemas.Rect{}, false
	}
	return res.Rect(node.Node), true
}

func (c *callInfo) NodeText(node DomNodeID) (string, bool) {
	res, ok := c.lookup(node)
	if !ok {
		return "", false
	}
	data := res.Styled.NodeData.Get(node.Node)
	return data.Text, data.Type == dom.NodeText
}

func (c *callInfo) ScrollPosition(node DomNodeID) (schemas.Point, bool) {
	if c.env.Scroll == nil || !c.env.Scroll.CanScroll(node) {
		return schemas.Point{}, false
	}
	return c.env.Scroll.Offset(node), true
}

func (c *callInfo) SetFocus(target callbacks.FocusTarget) { c.req.Focus = &target }
func (c *callInfo) StopPropagation()                      { c.stop = true }

func (c *callInfo) SetCssProperty(node DomNodeID, prop css.Property) {
	c.req.Css = append(c.req.Css, CssRequest{Node: node, Property: prop})
}

func (c *callInfo) ChangeNodeText(node DomNodeID, text string) { c.req.Text[node] = text }

func (c *callInfo) ScrollTo(node DomNodeID, offset schemas.Point) { c.req.ScrollTo[node] = offset }

func (c *callInfo) AddTimer(t callbacks.Timer) callbacks.TimerID {
	id := callbacks.TimerID(uuid.New())
	c.req.TimersAdded[id] = t
	return id
}

func (c *callInfo) RemoveTimer(id callbacks.TimerID) {
	if _, pending := c.req.TimersAdded[id]; pending {
		delete(c.req.TimersAdded, id)
		return
	}
	c.req.TimersRemoved = append(c.req.TimersRemoved, id)
}

func (c *callInfo) StartThread(initial, writebackData *refany.RefAny, fn callbacks.ThreadFunc) callbacks.ThreadID {
	id := callbacks.ThreadID(uuid.New())
	c.req.ThreadsStarted[id] = ThreadRequest{Initial: initial, WritebackData: writebackData, Func: fn}
	return id
}

func (c *callInfo) StopThread(id callbacks.ThreadID) {
	if _, pending := c.req.ThreadsStarted[id]; pending {
		delete(c.req.ThreadsStarted, id)
		return
	}
	c.req.ThreadsStopped = append(c.req.ThreadsStopped, id)
}
