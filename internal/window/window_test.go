// internal/window/window_test.go
package window_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/boxflow/api/schemas"
	"github.com/xkilldash9x/boxflow/internal/callbacks"
	"github.com/xkilldash9x/boxflow/internal/config"
	"github.com/xkilldash9x/boxflow/internal/css"
	"github.com/xkilldash9x/boxflow/internal/dom"
	"github.com/xkilldash9x/boxflow/internal/drag"
	"github.com/xkilldash9x/boxflow/internal/events"
	"github.com/xkilldash9x/boxflow/internal/refany"
	"github.com/xkilldash9x/boxflow/internal/resources"
	"github.com/xkilldash9x/boxflow/internal/window"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func n(i int) schemas.NodeID { return schemas.NodeIDFromIndex(i) }

func node(i int) schemas.DomNodeID { return schemas.DomNodeID{Dom: schemas.RootDomID, Node: n(i)} }

func px(v float64) css.PixelValue { return css.Px(v) }

func sized(w, h float64) schemas.FullWindowState {
	return schemas.FullWindowState{Size: schemas.Size{Width: w, Height: h}, DPI: 96}
}

func at(x, y float64) schemas.FullWindowState {
	s := sized(400, 300)
	s.MouseState.CursorPosition = schemas.InWindowAt(x, y)
	return s
}

func pressed(x, y float64) schemas.FullWindowState {
	s := at(x, y)
	s.MouseState.LeftDown = true
	return s
}

func static(d func() *dom.Dom) window.RenderFunc {
	return func(*refany.RefAny) *dom.Dom { return d() }
}

// fakeClock is advanced by hand.
type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newWindow(t *testing.T, render window.RenderFunc, data *refany.RefAny, opts window.Options) *window.Window {
	t.Helper()
	if opts.Fonts == nil {
		opts.Fonts = resources.MockLoader{}
	}
	w, err := window.New(context.Background(), render, data, sized(400, 300), opts, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(w.Close)
	return w
}

func process(t *testing.T, w *window.Window, s schemas.FullWindowState) window.FrameResult {
	t.Helper()
	out, err := w.ProcessFrame(context.Background(), s, nil)
	require.NoError(t, err)
	return out
}

func TestNew(t *testing.T) {
	t.Run("lays out the initial dom and loads fonts", func(t *testing.T) {
		w := newWindow(t, static(func() *dom.Dom {
			return dom.Body().WithChild(dom.Text("hello"))
		}), nil, window.Options{})

		require.NotNil(t, w.Layout())
		assert.Equal(t, schemas.NewRect(0, 0, 400, 300), w.Layout().Bounds)
		fonts, _, _, _ := w.Resources().Stats()
		assert.Positive(t, fonts)
	})

	t.Run("a nil dom renders an empty body", func(t *testing.T) {
		w := newWindow(t, func(*refany.RefAny) *dom.Dom { return nil }, nil, window.Options{})
		assert.Equal(t, 1, w.Layout().Styled.Len())
	})

	t.Run("a panicking render is an error", func(t *testing.T) {
		_, err := window.New(context.Background(), func(*refany.RefAny) *dom.Dom { panic("boom") },
			nil, sized(10, 10), window.Options{Fonts: resources.MockLoader{}}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("render is required", func(t *testing.T) {
		_, err := window.New(context.Background(), nil, nil, sized(10, 10), window.Options{}, nil)
		assert.Error(t, err)
	})
}

func TestProcessFrame_AfterClose(t *testing.T) {
	w := newWindow(t, static(dom.Body), nil, window.Options{})
	w.Close()
	w.Close()
	_, err := w.ProcessFrame(context.Background(), at(1, 1), nil)
	assert.ErrorIs(t, err, window.ErrClosed)
}

func TestProcessFrame_HoverRestyles(t *testing.T) {
	w := newWindow(t, static(func() *dom.Dom {
		return dom.Body().WithChild(dom.Div().
			WithStyle(css.Height(px(20))).
			WithStateStyle(css.StateHover, css.Height(px(40))))
	}), nil, window.Options{})

	out := process(t, w, at(5, 5))
	assert.True(t, out.NeedsRedraw)
	assert.True(t, out.Relayouted, "the hover overlay changes the height")
	assert.Equal(t, 40.0, w.Layout().Rect(n(1)).Height)
	assert.Contains(t, w.State().HoveredNodes[schemas.RootDomID], n(1))

	out = process(t, w, at(5, 100))
	assert.True(t, out.Relayouted)
	assert.Equal(t, 20.0, w.Layout().Rect(n(1)).Height)
	assert.NotContains(t, w.State().HoveredNodes[schemas.RootDomID], n(1))
}

func TestProcessFrame_ScrollWheel(t *testing.T) {
	w := newWindow(t, static(func() *dom.Dom {
		return dom.Body().WithChild(dom.Div().
			WithStyle(css.Height(px(50)), css.OverflowYProp(css.OverflowAuto)).
			WithChild(dom.Div().WithStyle(css.Height(px(200)))))
	}), nil, window.Options{})

	s := at(5, 5)
	dy := 30.0
	s.MouseState.ScrollY = &dy
	out := process(t, w, s)
	assert.True(t, out.Scrolled)
	assert.True(t, out.NeedsRedraw)
	assert.Equal(t, schemas.Point{Y: 30}, w.Scroll().Offset(node(1)))

	dy = 1000
	s.MouseState.ScrollY = &dy
	process(t, w, s)
	assert.Equal(t, schemas.Point{Y: 150}, w.Scroll().Offset(node(1)), "offsets clamp to the scroll extent")
}

func TestProcessFrame_FocusClearsSelection(t *testing.T) {
	w := newWindow(t, static(func() *dom.Dom {
		return dom.Body().
			WithChild(dom.Div().WithStyle(css.Height(px(20))).WithTabIndex(dom.TabIndex{Kind: dom.TabAuto})).
			WithChild(dom.Text("some text"))
	}), nil, window.Options{})

	w.Selection().Set(schemas.RootDomID, drag.Selection{
		Anchor: drag.TextCursor{Node: n(2)},
		Focus:  drag.TextCursor{Node: n(2), Offset: 4},
	})
	process(t, w, at(5, 5))
	require.Equal(t, 1, w.Selection().Len())

	out := process(t, w, pressed(5, 5))
	require.NotNil(t, out.Focus)
	assert.Nil(t, out.Focus.Old)
	assert.Equal(t, node(1), *out.Focus.New)
	assert.Zero(t, w.Selection().Len())
	require.NotNil(t, w.State().FocusedNode)
	assert.Equal(t, node(1), *w.State().FocusedNode)
}

func TestProcessFrame_TextSelectionDrag(t *testing.T) {
	// body(0) > text(1); mock glyphs are 8px and spaces 4px at 16px
	w := newWindow(t, static(func() *dom.Dom {
		return dom.Body().WithChild(dom.Text("hello world"))
	}), nil, window.Options{})

	process(t, w, at(2, 5))
	out := process(t, w, pressed(2, 5))
	assert.True(t, out.NeedsRedraw)
	require.True(t, w.Drag().IsDragging(drag.KindTextSelection))

	process(t, w, pressed(82, 5))
	st, ok := w.Selection().Get(schemas.RootDomID)
	require.True(t, ok)
	require.Len(t, st.Selections, 1)
	assert.Equal(t, drag.TextCursor{Node: n(1), Offset: 0}, st.Selections[0].Anchor)
	assert.Equal(t, drag.TextCursor{Node: n(1), Offset: len("hello world")}, st.Selections[0].Focus)

	out = process(t, w, at(82, 5))
	require.NotNil(t, out.EndedDrag)
	assert.Equal(t, drag.KindTextSelection, out.EndedDrag.Kind())
	assert.Equal(t, 1, w.Selection().Len(), "the selection outlives the drag")
}

func TestProcessFrame_EscapeCancelsDrag(t *testing.T) {
	w := newWindow(t, static(func() *dom.Dom {
		return dom.Body().WithChild(dom.Div().WithStyle(css.Height(px(20))))
	}), nil, window.Options{})
	w.Drag().Start(&drag.NodeDrag{Node: node(1)})

	s := at(5, 5)
	esc := schemas.KeyEscape
	s.KeyboardState.VirtualKeycode = &esc
	out := process(t, w, s)
	require.NotNil(t, out.CancelledDrag)
	assert.True(t, out.CancelledDrag.Cancelled)
	_, active := w.Drag().Active()
	assert.False(t, active)
}

func TestProcessFrame_FileDrop(t *testing.T) {
	w := newWindow(t, static(func() *dom.Dom {
		return dom.Body().WithChild(dom.Div().
			WithStyle(css.Height(px(20))).
			WithCallback(events.HoverMouseOver, nil, func(*refany.RefAny, callbacks.CallbackInfo) callbacks.Update {
				return callbacks.DoNothing
			}))
	}), nil, window.Options{})

	path := "/tmp/report.txt"
	s := at(5, 5)
	s.HoveredFile = &path
	out := process(t, w, s)
	require.Equal(t, []drag.Event{{Kind: drag.DragEnter, Node: node(1)}}, out.DragEvents)
	assert.True(t, w.Drag().IsDragging(drag.KindFileDrop))

	s = at(5, 5)
	s.DroppedFile = &path
	out = process(t, w, s)
	require.NotNil(t, out.EndedDrag)
	fd, ok := out.EndedDrag.Variant.(*drag.FileDrop)
	require.True(t, ok)
	assert.Equal(t, path, fd.Path)
	require.NotNil(t, fd.DropTarget)
	assert.Equal(t, node(1), *fd.DropTarget)
	_, active := w.Drag().Active()
	assert.False(t, active)
}

func TestProcessFrame_FileLeavesWindow(t *testing.T) {
	w := newWindow(t, static(dom.Body), nil, window.Options{})
	path := "/tmp/a.png"
	s := at(5, 5)
	s.HoveredFile = &path
	process(t, w, s)

	out := process(t, w, at(5, 5))
	require.NotNil(t, out.CancelledDrag)
	assert.Equal(t, drag.KindFileDrop, out.CancelledDrag.Kind())
}

func TestProcessFrame_ResizeRelayouts(t *testing.T) {
	w := newWindow(t, static(func() *dom.Dom {
		return dom.Body().WithChild(dom.Div().WithStyle(css.Width(css.Percent(50)), css.Height(px(10))))
	}), nil, window.Options{})
	before := w.Layout().Rect(n(1)).Width

	out := process(t, w, sized(200, 300))
	assert.True(t, out.Relayouted)
	assert.Contains(t, out.ResizedNodes[schemas.RootDomID], n(1))
	assert.InDelta(t, before/2, w.Layout().Rect(n(1)).Width, 0.001)

	out = process(t, w, sized(200, 300))
	assert.False(t, out.Relayouted, "an unchanged frame does no layout work")
}

func TestProcessFrame_TimerRefreshesDom(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	renders := 0
	var started callbacks.TimerID
	tick := func(*refany.RefAny, callbacks.TimerCallbackInfo) callbacks.TimerCallbackReturn {
		return callbacks.TimerCallbackReturn{ShouldUpdate: callbacks.RefreshDom, ShouldTerminate: callbacks.Terminate}
	}
	render := func(*refany.RefAny) *dom.Dom {
		renders++
		return dom.Body().WithChild(dom.Div().
			WithStyle(css.Height(px(20))).
			WithCallback(events.HoverMouseDown, nil, func(_ *refany.RefAny, info callbacks.CallbackInfo) callbacks.Update {
				started = info.AddTimer(callbacks.Timer{Callback: tick, Delay: time.Second})
				return callbacks.DoNothing
			}))
	}
	w := newWindow(t, render, nil, window.Options{Clock: clock.Now})
	require.Equal(t, 1, renders)

	process(t, w, at(5, 5))
	process(t, w, pressed(5, 5))
	assert.NotZero(t, started)
	assert.Equal(t, 1, w.Timers())

	out := process(t, w, pressed(5, 5))
	assert.Equal(t, callbacks.DoNothing, out.Update, "the timer waits for its delay")

	clock.now = clock.now.Add(2 * time.Second)
	out = process(t, w, pressed(5, 5))
	assert.Equal(t, callbacks.RefreshDom, out.Update)
	assert.True(t, out.Regenerated)
	assert.Equal(t, 1, out.Invoked)
	assert.Equal(t, 2, renders)
	assert.Zero(t, w.Timers())
}

func TestProcessFrame_RefreshKeepsFocus(t *testing.T) {
	type counter struct{ clicks int }
	data := refany.New(&counter{})
	render := func(d *refany.RefAny) *dom.Dom {
		var c *counter
		require.NoError(t, refany.Read(d, func(v *counter) { c = v }))
		return dom.Body().WithChild(dom.Div().
			WithID("button").
			WithStyle(css.Height(px(20))).
			WithTabIndex(dom.TabIndex{Kind: dom.TabAuto}).
			WithCallback(events.HoverMouseUp, d, func(d *refany.RefAny, _ callbacks.CallbackInfo) callbacks.Update {
				_ = refany.Read(d, func(v *counter) { v.clicks++ })
				return callbacks.RefreshDom
			}).
			WithChild(dom.Text(string(rune('0' + c.clicks)))))
	}
	w := newWindow(t, render, data, window.Options{})

	process(t, w, at(5, 5))
	process(t, w, pressed(5, 5))
	out := process(t, w, at(5, 5))
	assert.True(t, out.Regenerated)

	assert.Equal(t, "1", w.Layout().Styled.NodeData.Get(n(2)).Text)
	require.NotNil(t, w.State().FocusedNode)
	assert.Equal(t, node(1), *w.State().FocusedNode, "focus follows the reconciled node")
	assert.True(t, w.Layout().Styled.StyledNodes[n(1).Index()].State.Focused)
}

func TestProcessFrame_ThreadWriteBack(t *testing.T) {
	type model struct{ result int }
	data := refany.New(&model{})

	apply := func(wb, incoming *refany.RefAny, _ callbacks.CallbackInfo) callbacks.Update {
		v, _ := refany.Get[int](incoming)
		_ = refany.Read(wb, func(m *model) { m.result = v })
		return callbacks.DoNothing
	}
	worker := func(initial *refany.RefAny, s callbacks.ThreadSender, rx callbacks.ThreadReceiver) {
		v, _ := refany.Get[int](initial)
		s.Send(callbacks.ThreadReceiveMsg{WriteBack: &callbacks.WriteBackMsg{Data: refany.New(v * 2), Callback: apply}})
		for {
			if msg, ok := rx.Recv(); !ok || msg == callbacks.TerminateThread {
				return
			}
		}
	}
	render := func(d *refany.RefAny) *dom.Dom {
		return dom.Body().WithChild(dom.Div().
			WithStyle(css.Height(px(20))).
			WithCallback(events.HoverMouseDown, d, func(d *refany.RefAny, info callbacks.CallbackInfo) callbacks.Update {
				info.StartThread(refany.New(21), d, worker)
				return callbacks.DoNothing
			}))
	}
	w := newWindow(t, render, data, window.Options{})

	process(t, w, at(5, 5))
	process(t, w, pressed(5, 5))
	assert.Equal(t, 1, w.Threads())

	result := func() int {
		var r int
		_ = refany.Read(data, func(m *model) { r = m.result })
		return r
	}
	require.Eventually(t, func() bool {
		process(t, w, pressed(5, 5))
		return result() == 42
	}, 2*time.Second, 5*time.Millisecond)

	w.Close()
	assert.Zero(t, w.Threads())
}

func TestProcessFrame_CallbackCssOverride(t *testing.T) {
	w := newWindow(t, static(func() *dom.Dom {
		return dom.Body().WithChild(dom.Div().
			WithStyle(css.Height(px(20))).
			WithCallback(events.HoverMouseDown, nil, func(_ *refany.RefAny, info callbacks.CallbackInfo) callbacks.Update {
				info.SetCssProperty(info.HitNode(), css.Height(px(60)))
				info.SetCssProperty(info.HitNode(), css.Opacity(0.5))
				return callbacks.DoNothing
			}))
	}), nil, window.Options{})

	process(t, w, at(5, 5))
	out := process(t, w, pressed(5, 5))
	assert.True(t, out.Relayouted)
	assert.Equal(t, []schemas.NodeID{n(0), n(1)}, out.ResizedNodes[schemas.RootDomID])
	assert.Equal(t, 60.0, w.Layout().Rect(n(1)).Height)
	assert.NotEmpty(t, out.GpuKeyChanges[schemas.RootDomID].OpacityKeyChanges)
}

func TestDefaultStylesheet(t *testing.T) {
	cfg := config.NewDefaultConfig()
	user := (&css.Stylesheet{}).Add(css.Path(css.Type("body")), css.FontSize(px(20)))

	sheet := window.DefaultStylesheet("body", cfg, user)
	require.Len(t, sheet.Rules, 2)
	assert.Equal(t, []css.Property{
		css.FontFamily("sans-serif"),
		css.FontSize(px(16)),
		css.TabWidth(4),
		css.TextAlignProp(css.TextAlignLeft),
	}, sheet.Rules[0].Declarations)
	assert.Equal(t, user.Rules[0], sheet.Rules[1], "user rules come last and win")
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.NewDefaultConfig()
	opts := window.OptionsFromConfig(cfg, nil)
	assert.Equal(t, 4, opts.FontLoadParallelism)
	assert.Equal(t, 5, opts.MaxFocusDepth)
	require.NotNil(t, opts.Fonts)
	require.NotNil(t, opts.Stylesheet)
	assert.Len(t, opts.Stylesheet.Rules, 1)
}
