// internal/window/frame.go
package window

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/boxflow/api/schemas"
	"github.com/xkilldash9x/boxflow/internal/callbacks"
	"github.com/xkilldash9x/boxflow/internal/dispatch"
	"github.com/xkilldash9x/boxflow/internal/drag"
	"github.com/xkilldash9x/boxflow/internal/layout"
	"github.com/xkilldash9x/boxflow/internal/refany"
	"github.com/xkilldash9x/boxflow/internal/resources"
	"github.com/xkilldash9x/boxflow/internal/style"
	"github.com/xkilldash9x/boxflow/internal/task"
)

// FrameResult reports what one frame changed.
type FrameResult struct {
	// Update is the strongest update any callback, timer or thread asked for.
	Update callbacks.Update
	// NeedsRedraw is set when anything visible changed.
	NeedsRedraw bool
	// Relayouted is set when at least one DOM was laid out again.
	Relayouted bool
	// Regenerated is set when the DOM was rendered again.
	Regenerated     bool
	ResizedNodes    map[schemas.DomID][]schemas.NodeID
	GpuKeyChanges   map[schemas.DomID]layout.GpuEventChanges
	ResourceUpdates []resources.ResourceUpdate
	// DragEvents are the drop-target transitions of the active drag.
	DragEvents []drag.Event
	// CancelledDrag is the drag that was cancelled this frame, if any.
	CancelledDrag *drag.Context
	// EndedDrag is the drag that completed this frame, if any.
	EndedDrag *drag.Context
	// Focus is the net focus change of the frame.
	Focus *dispatch.FocusChange
	// Invoked counts the callbacks, timers and writebacks that ran.
	Invoked  int
	Scrolled bool
}

// frame carries the per-DOM work of one ProcessFrame call.
type frame struct {
	state   schemas.FullWindowState
	env     *dispatch.Env
	req     *dispatch.Requests
	changes map[schemas.DomID]style.Changes
	text    map[schemas.DomID]map[schemas.NodeID]string
	out     FrameResult
}

func (f *frame) changesFor(dom schemas.DomID) style.Changes {
	c, ok := f.changes[dom]
	if !ok {
		c = style.Changes{}
		f.changes[dom] = c
	}
	return c
}

// ProcessFrame runs one frame: it resolves and invokes callbacks for the
// transition from the previous state to state, moves scroll, drag and
// selection state, runs timers and thread writebacks, restyles and finally
// relayouts or regenerates the DOM. hits are the renderer's hit-test items
// topmost first; nil hit-tests the current layout at the cursor.
func (w *Window) ProcessFrame(ctx context.Context, state schemas.FullWindowState, hits []schemas.HitTestItem) (FrameResult, error) {
	if w.isClosed() {
		return FrameResult{}, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return FrameResult{}, err
	}
	frameStart := w.now()

	cur := state.Clone()
	cur.FocusedNode = w.previous.FocusedNode
	if hits == nil && cur.MouseState.CursorPosition.InWindow {
		hits = layout.HitTest(w.layout, cur.MouseState.CursorPosition.Position, w.scroll)
	}

	hit := w.resolver.Determine(dispatch.Frame{
		Layout:   w.layout,
		Previous: &w.previous,
		Current:  &cur,
		Hits:     hits,
	})
	cur.HoveredNodes = hit.HoveredNodes

	f := &frame{
		state:   cur,
		changes: map[schemas.DomID]style.Changes{},
		text:    map[schemas.DomID]map[schemas.NodeID]string{},
	}
	f.out.NeedsRedraw = hit.NeedsRedrawAnyways

	if cur.MouseState.IsScrolling() {
		f.out.Scrolled = w.scrollWheel(hits, cur.MouseState.ScrollDelta())
	}

	f.env = &dispatch.Env{Layout: w.layout, Previous: &w.previous, Current: &f.state, Scroll: w.scroll}
	called := w.resolver.Invoke(f.env, &hit)
	f.req = called.Requests
	f.out.Update = called.Update
	f.out.Invoked = called.Invoked

	focus := w.previous.FocusedNode
	if called.Focus != nil {
		focus = called.Focus.New
	}

	w.handleFocusLoss(f, focus)
	w.handleDrag(f, hits)
	w.runTimers(f, frameStart)
	w.applyWriteBacks(f)
	w.applyTaskRequests(f)

	if f.req.Focus != nil {
		focus = w.resolver.ResolveFocusTarget(w.layout, *f.req.Focus)
		f.req.Focus = nil
		w.handleFocusLoss(f, focus)
	}
	if !sameNode(w.previous.FocusedNode, focus) {
		f.out.Focus = &dispatch.FocusChange{Old: w.previous.FocusedNode, New: focus}
	}

	w.restyle(f, &hit)
	for _, c := range f.changes {
		if len(c) > 0 {
			f.out.NeedsRedraw = true
		}
	}
	for node, off := range f.req.ScrollTo {
		before := w.scroll.Offset(node)
		if w.scroll.SetOffset(node, off) != before {
			f.out.Scrolled = true
		}
	}

	var err error
	if f.out.Update >= callbacks.RefreshDom {
		focus, err = w.regenerate(f, focus)
		if err != nil {
			return f.out, err
		}
	} else {
		w.relayout(f)
	}

	w.scroll.Sync(w.layout)
	f.out.ResourceUpdates = w.resources.GarbageCollect(ctx, w.styledDoms(), f.state.HiDPIFactor())

	f.out.NeedsRedraw = f.out.NeedsRedraw || f.out.Scrolled || f.out.Relayouted ||
		f.out.Focus != nil || len(f.out.DragEvents) > 0 || len(f.out.GpuKeyChanges) > 0

	f.state.FocusedNode = focus
	w.previous = f.state.Clone()
	if f.out.Focus != nil || f.out.Relayouted {
		w.logger.Debug("frame processed",
			zap.Stringer("update", f.out.Update),
			zap.Int("invoked", f.out.Invoked),
			zap.Bool("relayouted", f.out.Relayouted),
			zap.Bool("regenerated", f.out.Regenerated))
	}
	return f.out, nil
}

// scrollWheel scrolls the topmost hit node that can still move by delta.
func (w *Window) scrollWheel(hits []schemas.HitTestItem, delta schemas.Point) bool {
	for _, node := range dispatch.HitNodes(w.layout, hits) {
		if w.scroll.CanScroll(node) && w.scroll.ScrollBy(node, delta) {
			return true
		}
	}
	return false
}

// handleFocusLoss clears selections and cancels the active drag when focus
// moves away from where the frame started.
func (w *Window) handleFocusLoss(f *frame, focus *schemas.DomNodeID) {
	if sameNode(w.previous.FocusedNode, focus) {
		return
	}
	if w.selection.ClearAll() {
		f.out.NeedsRedraw = true
	}
	if _, ok := w.drags.Active(); ok && !w.drags.IsDragging(drag.KindFileDrop) {
		w.drags.Cancel("focus lost")
	}
}

func (w *Window) handleDrag(f *frame, hits []schemas.HitTestItem) {
	prev, cur := w.previous.MouseState, f.state.MouseState
	cursor := cur.CursorPosition.Position

	w.drags.HandleKeyboard(f.state.KeyboardState)
	w.trackFileDrop(f, cursor, hits)

	if ctx, ok := w.drags.Active(); ok && !ctx.Cancelled {
		if cur.CursorPosition.InWindow {
			w.drags.UpdatePosition(cursor)
		}
		switch v := ctx.Variant.(type) {
		case *drag.NodeDrag:
			f.out.DragEvents = append(f.out.DragEvents, w.drags.SetDropTarget(dropTarget(w.layout, hits, &v.Node))...)
		case *drag.FileDrop:
			f.out.DragEvents = append(f.out.DragEvents, w.drags.SetDropTarget(dropTarget(w.layout, hits, nil))...)
		case *drag.ScrollbarThumb:
			off := w.scroll.Offset(v.Node)
			other := off.X
			if v.Axis == drag.AxisHorizontal {
				other = off.Y
			}
			if w.scroll.SetOffset(v.Node, v.OffsetPoint(other)) != off {
				f.out.Scrolled = true
			}
		case *drag.TextSelection:
			w.extendSelection(f, v)
		}
	}

	if !prev.LeftDown && cur.LeftDown && cur.CursorPosition.InWindow {
		if _, busy := w.drags.Active(); !busy {
			w.startTextSelection(f, cursor)
		}
	}
	if prev.LeftDown && !cur.LeftDown {
		if ctx, ok := w.drags.Active(); ok && !ctx.Cancelled && ctx.Kind() != drag.KindFileDrop {
			f.out.EndedDrag, _ = w.drags.End()
		}
	}
	if c, ok := w.drags.DrainCancelled(); ok {
		f.out.CancelledDrag = c
		f.out.NeedsRedraw = true
	}
}

// trackFileDrop follows a file dragged over the window from the platform.
func (w *Window) trackFileDrop(f *frame, cursor schemas.Point, hits []schemas.HitTestItem) {
	_, busy := w.drags.Active()
	switch {
	case f.state.DroppedFile != nil:
		if !busy {
			w.drags.Start(&drag.FileDrop{Path: *f.state.DroppedFile, Current: cursor})
		}
		if !w.drags.IsDragging(drag.KindFileDrop) {
			return
		}
		w.drags.UpdatePosition(cursor)
		f.out.DragEvents = append(f.out.DragEvents, w.drags.SetDropTarget(dropTarget(w.layout, hits, nil))...)
		f.out.EndedDrag, _ = w.drags.End()
	case f.state.HoveredFile != nil:
		if !busy {
			w.drags.Start(&drag.FileDrop{Path: *f.state.HoveredFile, Current: cursor})
		}
	case w.drags.IsDragging(drag.KindFileDrop):
		w.drags.Cancel("file left window")
	}
}

// dropTarget is the topmost hit node other than the dragged one.
func dropTarget(l *layout.Result, hits []schemas.HitTestItem, dragged *schemas.DomNodeID) *schemas.DomNodeID {
	for _, node := range dispatch.HitNodes(l, hits) {
		if dragged != nil && node == *dragged {
			continue
		}
		return &node
	}
	return nil
}

func (w *Window) startTextSelection(f *frame, cursor schemas.Point) {
	th, ok := layout.HitTestText(w.layout, cursor)
	if !ok {
		return
	}
	anchor := drag.TextCursor{Node: th.Node, Offset: th.Offset}
	w.drags.Start(&drag.TextSelection{Dom: w.layout.DomID, Anchor: anchor, Start: cursor, Current: cursor})
	w.selection.Set(w.layout.DomID, drag.Selection{Anchor: anchor, Focus: anchor})
	f.out.NeedsRedraw = true
}

func (w *Window) extendSelection(f *frame, t *drag.TextSelection) {
	res, ok := w.layout.Find(t.Dom)
	if !ok {
		return
	}
	th, ok := layout.HitTestText(res, t.Current)
	if !ok {
		return
	}
	sel := drag.Selection{Anchor: t.Anchor, Focus: drag.TextCursor{Node: th.Node, Offset: th.Offset}}
	if st, ok := w.selection.Get(t.Dom); ok && len(st.Selections) == 1 && st.Selections[0] == sel {
		return
	}
	w.selection.Set(t.Dom, sel)
	f.out.NeedsRedraw = true
}

func (w *Window) rootNode() schemas.DomNodeID {
	return schemas.DomNodeID{Dom: w.layout.DomID, Node: w.layout.Styled.Root()}
}

func (w *Window) runTimers(f *frame, frameStart time.Time) {
	if w.timers.Len() == 0 {
		return
	}
	root := w.rootNode()
	update, ran := w.timers.Run(frameStart, func(callbacks.TimerID) callbacks.CallbackInfo {
		return dispatch.NewCallbackInfo(f.env, f.req, root)
	})
	f.out.Update = f.out.Update.Max(update)
	f.out.Invoked += ran
}

// applyWriteBacks delivers every message background threads sent since the
// last frame.
func (w *Window) applyWriteBacks(f *frame) {
	root := w.rootNode()
	for _, env := range w.threads.Drain() {
		msg := env.Msg
		if msg.WriteBack == nil || msg.WriteBack.Callback == nil {
			f.out.Update = f.out.Update.Max(msg.Update)
			continue
		}
		info := dispatch.NewCallbackInfo(f.env, f.req, root)
		f.out.Update = f.out.Update.Max(w.safeWriteBack(env, info))
		f.out.Invoked++
	}
}

func (w *Window) safeWriteBack(env task.Envelope, info callbacks.CallbackInfo) (u callbacks.Update) {
	defer func() {
		if p := recover(); p != nil {
			w.logger.Error("writeback callback panicked",
				zap.Stringer("thread_id", env.Thread), zap.String("panic", fmt.Sprint(p)))
			u = callbacks.DoNothing
		}
	}()
	return env.Msg.WriteBack.Callback(env.WritebackData, env.Msg.WriteBack.Data, info)
}

// applyTaskRequests starts and stops the timers and threads callbacks asked
// for. Removals run after additions.
func (w *Window) applyTaskRequests(f *frame) {
	for id, t := range f.req.TimersAdded {
		w.timers.Add(id, t)
	}
	for _, id := range f.req.TimersRemoved {
		w.timers.Remove(id)
	}
	for id, t := range f.req.ThreadsStarted {
		w.threads.Start(id, t.Initial, t.WritebackData, t.Func)
	}
	for _, id := range f.req.ThreadsStopped {
		w.threads.Stop(id)
	}
}

// restyle applies state transitions, focus styling and runtime CSS and text
// changes to the styled DOMs, recording what changed per DOM.
func (w *Window) restyle(f *frame, hit *dispatch.CallbacksOfHitTest) {
	t := hit.Transitions
	steps := []struct {
		ids     map[schemas.DomID][]schemas.NodeID
		restyle func(*style.StyledDom, []schemas.NodeID, bool) style.Changes
		on      bool
	}{
		{t.HoverOff, (*style.StyledDom).RestyleNodesHover, false},
		{t.HoverOn, (*style.StyledDom).RestyleNodesHover, true},
		{t.ActiveOff, (*style.StyledDom).RestyleNodesActive, false},
		{t.ActiveOn, (*style.StyledDom).RestyleNodesActive, true},
	}
	for _, s := range steps {
		for dom, ids := range s.ids {
			if res, ok := w.layout.Find(dom); ok {
				f.changesFor(dom).Merge(s.restyle(res.Styled, ids, s.on))
			}
		}
	}

	if fc := f.out.Focus; fc != nil {
		if fc.Old != nil {
			w.restyleFocus(f, *fc.Old, false)
		}
		if fc.New != nil {
			w.restyleFocus(f, *fc.New, true)
		}
	}

	for _, c := range f.req.Css {
		res, ok := w.layout.Find(c.Node.Dom)
		if !ok || !res.Styled.Hierarchy.Contains(c.Node.Node) {
			w.logger.Debug("css override for unknown node", zap.Stringer("node", c.Node))
			continue
		}
		f.changesFor(c.Node.Dom).Merge(res.Styled.SetProperty(c.Node.Node, c.Property))
	}
	for node, s := range f.req.Text {
		if f.text[node.Dom] == nil {
			f.text[node.Dom] = map[schemas.NodeID]string{}
		}
		f.text[node.Dom][node.Node] = s
	}
}

func (w *Window) restyleFocus(f *frame, node schemas.DomNodeID, focused bool) {
	res, ok := w.layout.Find(node.Dom)
	if !ok || !res.Styled.Hierarchy.Contains(node.Node) {
		return
	}
	f.changesFor(node.Dom).Merge(res.Styled.RestyleNodesFocus([]schemas.NodeID{node.Node}, focused))
}

// relayout lays out every DOM that has style or text changes, and the root
// DOM when the window was resized. Iframes are relaid out on their own only
// when the root was not, since a root pass rebuilds them.
func (w *Window) relayout(f *frame) {
	var bounds *schemas.Rect
	if f.state.Size != w.previous.Size {
		b := rootBounds(f.state)
		bounds = &b
	}
	opts := w.layoutOptions(f.state)
	f.out.ResizedNodes = map[schemas.DomID][]schemas.NodeID{}
	f.out.GpuKeyChanges = map[schemas.DomID]layout.GpuEventChanges{}

	rootID := w.layout.DomID
	next, rr := layout.Relayout(w.layout, f.changes[rootID], f.text[rootID], bounds, opts)
	w.record(f, rootID, rr)
	rootRebuilt := next != w.layout && !rr.Invalidation.GPUOnly
	w.layout = next

	if !rootRebuilt {
		for res := range w.layout.Walk() {
			if res.DomID == rootID {
				continue
			}
			if len(f.changes[res.DomID]) == 0 && len(f.text[res.DomID]) == 0 {
				continue
			}
			nested, rr := layout.Relayout(res, f.changes[res.DomID], f.text[res.DomID], nil, opts)
			w.record(f, res.DomID, rr)
			if nested != res {
				replaceIframe(w.layout, res, nested)
			}
		}
	}
	if len(f.out.ResizedNodes) == 0 {
		f.out.ResizedNodes = nil
	}
	if len(f.out.GpuKeyChanges) == 0 {
		f.out.GpuKeyChanges = nil
	}
}

func (w *Window) record(f *frame, dom schemas.DomID, rr layout.RelayoutResult) {
	if rr.Invalidation.IsEmpty() {
		return
	}
	if !rr.Invalidation.GPUOnly {
		f.out.Relayouted = true
	}
	if len(rr.ResizedNodes) > 0 {
		f.out.ResizedNodes[dom] = rr.ResizedNodes
	}
	if !rr.GpuKeyChanges.IsEmpty() {
		f.out.GpuKeyChanges[dom] = rr.GpuKeyChanges
	}
}

// replaceIframe swaps old for next in the iframe map of its parent.
func replaceIframe(root, old, next *layout.Result) {
	for res := range root.Walk() {
		for node, child := range res.Iframes {
			if child == old {
				res.Iframes[node] = next
				return
			}
		}
	}
}

// regenerate renders the DOM again, carries node-keyed state over to the new
// node ids and lays the new DOM out from scratch. It returns the remapped
// focus.
func (w *Window) regenerate(f *frame, focus *schemas.DomNodeID) (*schemas.DomNodeID, error) {
	old := w.layout.Styled
	sd, err := w.renderStyled()
	if err != nil {
		return focus, err
	}
	table := style.ReconcileNodeIDs(old, sd)
	dom := sd.DomID

	w.drags.RemapNodeIDs(dom, table)
	w.selection.RemapNodeIDs(dom, table)

	if focus != nil && focus.Dom == dom {
		if id, ok := table[focus.Node]; ok {
			focus = &schemas.DomNodeID{Dom: dom, Node: id}
		} else {
			focus = nil
		}
	}
	if f.out.Focus != nil {
		f.out.Focus.New = focus
	}

	hovered := map[schemas.NodeID]schemas.HitTestItem{}
	var hoverIDs []schemas.NodeID
	for id, item := range f.state.HoveredNodes[dom] {
		if nid, ok := table[id]; ok {
			hovered[nid] = item
			hoverIDs = append(hoverIDs, nid)
		}
	}
	if f.state.HoveredNodes != nil {
		f.state.HoveredNodes[dom] = hovered
	}
	sd.RestyleNodesHover(hoverIDs, true)

	var activeIDs []schemas.NodeID
	for _, id := range old.NodesInState(func(s style.NodeState) bool { return s.Active }) {
		if nid, ok := table[id]; ok {
			activeIDs = append(activeIDs, nid)
		}
	}
	sd.RestyleNodesActive(activeIDs, true)
	if focus != nil && focus.Dom == dom {
		sd.RestyleNodesFocus([]schemas.NodeID{focus.Node}, true)
	}

	w.layout = layout.Compute(sd, rootBounds(f.state), w.layoutOptions(f.state))
	f.out.Relayouted = true
	f.out.Regenerated = true
	f.out.ResizedNodes = nil
	f.out.GpuKeyChanges = nil
	w.logger.Debug("dom regenerated", zap.Int("nodes", sd.Len()), zap.Int("reconciled", len(table)))
	return focus, nil
}

func sameNode(a, b *schemas.DomNodeID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// SendToThreads broadcasts msg to every live background thread.
func (w *Window) SendToThreads(msg callbacks.ThreadSendMsg) { w.threads.Broadcast(msg) }

// AppData returns the data the render function runs against.
func (w *Window) AppData() *refany.RefAny { return w.appData }
