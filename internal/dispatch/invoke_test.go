// internal/dispatch/invoke_test.go
package dispatch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xkilldash9x/boxflow/api/schemas"
	"github.com/xkilldash9x/boxflow/internal/callbacks"
	"github.com/xkilldash9x/boxflow/internal/css"
	"github.com/xkilldash9x/boxflow/internal/dispatch"
	"github.com/xkilldash9x/boxflow/internal/dom"
	"github.com/xkilldash9x/boxflow/internal/events"
	"github.com/xkilldash9x/boxflow/internal/layout"
	"github.com/xkilldash9x/boxflow/internal/refany"
)

func focusTo(target schemas.DomNodeID) callbacks.Callback {
	return func(_ *refany.RefAny, info callbacks.CallbackInfo) callbacks.Update {
		info.SetFocus(callbacks.FocusOn(target))
		return callbacks.DoNothing
	}
}

// chain builds div(0) > [A(1) .. F(6)], each focusable and 10px tall. A
// moves focus to B on mouse down; B through E move it on once focused.
func chain(reachedF *bool) *dom.Dom {
	root := dom.Div()
	root.WithChild(dom.Div().WithStyle(css.Height(px(10))).WithTabIndex(focusable).
		WithCallback(events.HoverMouseDown, nil, focusTo(node(2))))
	for i := 2; i <= 5; i++ {
		root.WithChild(dom.Div().WithStyle(css.Height(px(10))).WithTabIndex(focusable).
			WithCallback(events.FocusReceived, nil, focusTo(node(i+1))))
	}
	root.WithChild(dom.Div().WithStyle(css.Height(px(10))).WithTabIndex(focusable).
		WithCallback(events.FocusReceived, nil, func(*refany.RefAny, callbacks.CallbackInfo) callbacks.Update {
			*reachedF = true
			return callbacks.DoNothing
		}))
	return root
}

func run(r *dispatch.Resolver, l *layout.Result, prev, curr *schemas.FullWindowState) *dispatch.CallResult {
	f := frame(l, prev, curr)
	hit := r.Determine(f)
	return r.Invoke(&dispatch.Env{Layout: l, Previous: prev, Current: curr}, &hit)
}

func TestInvoke_FocusCascadeIsCapped(t *testing.T) {
	var reachedF bool
	l := lay(t, chain(&reachedF))
	core, logs := observer.New(zap.WarnLevel)
	r := dispatch.NewResolver(zap.New(core))

	out := run(r, l, at(5, 5), pressed(5, 5))
	require.NotNil(t, out.Focus)
	require.NotNil(t, out.Focus.New)
	assert.Equal(t, node(5), *out.Focus.New, "E keeps focus")
	assert.False(t, reachedF, "the change to F is dropped")
	assert.True(t, out.DroppedFocus)
	assert.Equal(t, dispatch.DefaultMaxFocusDepth, out.FocusRounds)
	assert.Equal(t, 1, logs.FilterMessageSnippet("focus cascade").Len())
}

func TestInvoke_FocusCascadeDepthIsConfigurable(t *testing.T) {
	var reachedF bool
	l := lay(t, chain(&reachedF))
	r := dispatch.NewResolver(nil, dispatch.WithMaxFocusDepth(2))

	out := run(r, l, at(5, 5), pressed(5, 5))
	require.NotNil(t, out.Focus.New)
	assert.Equal(t, node(2), *out.Focus.New)
}

func TestInvoke_StopPropagation(t *testing.T) {
	var order []string
	record := func(name string, stop bool) callbacks.Callback {
		return func(_ *refany.RefAny, info callbacks.CallbackInfo) callbacks.Update {
			order = append(order, name)
			if stop {
				info.StopPropagation()
			}
			return callbacks.DoNothing
		}
	}
	build := func(stop bool) *dom.Dom {
		return dom.Div().WithChild(
			dom.Div().WithStyle(css.Height(px(40))).WithCallback(events.HoverMouseDown, nil, record("parent", false)).
				WithChild(dom.Div().WithStyle(css.Height(px(20))).WithCallback(events.HoverMouseDown, nil, record("child", stop))),
		)
	}
	r := dispatch.NewResolver(nil)

	run(r, lay(t, build(false)), at(5, 5), pressed(5, 5))
	assert.Equal(t, []string{"child", "parent"}, order, "bubbling runs the innermost node first")

	order = nil
	run(r, lay(t, build(true)), at(5, 5), pressed(5, 5))
	assert.Equal(t, []string{"child"}, order)
}

func TestInvoke_CollectsRequests(t *testing.T) {
	var seen struct {
		rel     schemas.Point
		relOK   bool
		rect    schemas.Rect
		text    string
		parent  schemas.DomNodeID
		kids    []schemas.DomNodeID
		removed callbacks.TimerID
	}
	cb := func(_ *refany.RefAny, info callbacks.CallbackInfo) callbacks.Update {
		seen.rel, seen.relOK = info.CursorRelativeToNode()
		seen.rect, _ = info.NodeRect(info.HitNode())
		seen.kids = info.Children(info.HitNode())
		seen.text, _ = info.NodeText(seen.kids[0])
		seen.parent, _ = info.Parent(info.HitNode())

		info.SetCssProperty(info.HitNode(), css.Opacity(0.5))
		info.ChangeNodeText(seen.kids[0], "changed")
		info.ScrollTo(info.HitNode(), schemas.Point{Y: 4})
		info.AddTimer(callbacks.Timer{})
		seen.removed = info.AddTimer(callbacks.Timer{})
		info.RemoveTimer(seen.removed)
		info.StartThread(nil, nil, func(*refany.RefAny, callbacks.ThreadSender, callbacks.ThreadReceiver) {})
		return callbacks.RefreshDom
	}
	boom := func(*refany.RefAny, callbacks.CallbackInfo) callbacks.Update { panic("boom") }
	// div(0) > div(1) > text(2)
	d := dom.Div().WithChild(dom.Div().WithStyle(css.Height(px(20))).
		WithCallback(events.HoverMouseDown, nil, cb).
		WithCallback(events.HoverMouseDown, nil, boom).
		WithChild(dom.Text("hello")))
	l := lay(t, d)

	out := run(dispatch.NewResolver(nil), l, at(3, 4), pressed(3, 4))
	assert.Equal(t, callbacks.RefreshDom, out.Update, "a panicking callback does not lower the update")
	assert.Equal(t, 2, out.Invoked)

	assert.True(t, seen.relOK)
	assert.Equal(t, schemas.Point{X: 3, Y: 4}, seen.rel)
	assert.Equal(t, schemas.NewRect(0, 0, 400, 20), seen.rect)
	assert.Equal(t, "hello", seen.text)
	assert.Equal(t, node(0), seen.parent)
	assert.Equal(t, []schemas.DomNodeID{node(2)}, seen.kids)

	require.Len(t, out.Css, 1)
	assert.Equal(t, dispatch.CssRequest{Node: node(1), Property: css.Opacity(0.5)}, out.Css[0])
	assert.Equal(t, map[schemas.DomNodeID]string{node(2): "changed"}, out.Text)
	assert.Equal(t, schemas.Point{Y: 4}, out.ScrollTo[node(1)])
	assert.Len(t, out.TimersAdded, 1, "a timer removed in the same frame never starts")
	assert.NotContains(t, out.TimersAdded, seen.removed)
	assert.Empty(t, out.TimersRemoved)
	assert.Len(t, out.ThreadsStarted, 1)
	assert.Nil(t, out.Focus)
}

func TestResolveFocusTarget(t *testing.T) {
	l := lay(t, dom.Div().WithChild(dom.Div().WithClass("field")))
	r := dispatch.NewResolver(nil)

	got := r.ResolveFocusTarget(l, callbacks.FocusPath(schemas.RootDomID, css.Path(css.Class("field"))))
	require.NotNil(t, got)
	assert.Equal(t, node(1), *got)

	assert.Nil(t, r.ResolveFocusTarget(l, callbacks.FocusPath(schemas.RootDomID, css.Path(css.Class("missing")))),
		"an unresolved path clears focus")
	assert.Nil(t, r.ResolveFocusTarget(l, callbacks.FocusOn(node(9))))
	assert.Nil(t, r.ResolveFocusTarget(l, callbacks.ClearFocus()))
}

func TestInvoke_LastFocusRequestWins(t *testing.T) {
	first := func(_ *refany.RefAny, info callbacks.CallbackInfo) callbacks.Update {
		info.SetFocus(callbacks.FocusOn(node(2)))
		info.SetFocus(callbacks.FocusPath(schemas.RootDomID, css.Path(css.ID("last"))))
		return callbacks.DoNothing
	}
	d := dom.Div().WithChildren(
		dom.Div().WithStyle(css.Height(px(10))).WithCallback(events.HoverMouseUp, nil, first),
		dom.Div().WithTabIndex(focusable),
		dom.Div().WithTabIndex(focusable).WithID("last"),
	)
	l := lay(t, d)
	out := run(dispatch.NewResolver(nil), l, pressed(5, 5), at(5, 5))
	require.NotNil(t, out.Focus)
	assert.Equal(t, node(3), *out.Focus.New)
}
