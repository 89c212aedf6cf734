// internal/window/window.go
// Package window ties the layout core together for one window: it owns the
// styled DOM, its layout, renderer resources, scroll offsets, drag and
// selection state, timers and background threads, and runs one frame at a
// time from window state to relayout.
package window

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/boxflow/api/schemas"
	"github.com/xkilldash9x/boxflow/internal/css"
	"github.com/xkilldash9x/boxflow/internal/dispatch"
	"github.com/xkilldash9x/boxflow/internal/dom"
	"github.com/xkilldash9x/boxflow/internal/drag"
	"github.com/xkilldash9x/boxflow/internal/layout"
	"github.com/xkilldash9x/boxflow/internal/refany"
	"github.com/xkilldash9x/boxflow/internal/resources"
	"github.com/xkilldash9x/boxflow/internal/style"
	"github.com/xkilldash9x/boxflow/internal/task"
)

// ErrClosed is returned by ProcessFrame after Close.
var ErrClosed = errors.New("window closed")

// RenderFunc builds the DOM of the window from the app data. It runs once at
// construction and again whenever a callback asks for RefreshDom.
type RenderFunc func(appData *refany.RefAny) *dom.Dom

// Options configure a Window.
type Options struct {
	// Stylesheet applies to every DOM the render function returns.
	Stylesheet *css.Stylesheet
	// Fonts loads font families; nil uses the built-in Go fonts.
	Fonts resources.FontLoader
	// FontLoadParallelism bounds concurrent font parsing during resource GC.
	FontLoadParallelism int
	// MaxFocusDepth caps the focus cascade; zero uses the dispatch default.
	MaxFocusDepth int
	KeyMap        *dispatch.KeyMap
	// Clock replaces time.Now for timers and frame timestamps.
	Clock func() time.Time
}

// Window is one top-level window. ProcessFrame must be called from a single
// goroutine; only background threads run concurrently.
type Window struct {
	logger  *zap.Logger
	render  RenderFunc
	appData *refany.RefAny
	sheet   *css.Stylesheet
	now     func() time.Time

	resources *resources.RendererResources
	resolver  *dispatch.Resolver
	scroll    *layout.ScrollStates
	drags     *drag.Manager
	selection *drag.SelectionManager
	timers    *task.TimerRegistry
	threads   *task.ThreadRegistry

	layout   *layout.Result
	previous schemas.FullWindowState
	debug    []layout.DebugMessage

	stateLock sync.Mutex
	closed    bool
}

// New renders the initial DOM and lays it out at state's size.
func New(ctx context.Context, render RenderFunc, appData *refany.RefAny, state schemas.FullWindowState, opts Options, logger *zap.Logger) (*Window, error) {
	if render == nil {
		return nil, fmt.Errorf("window: render function is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("window")
	if opts.Fonts == nil {
		opts.Fonts = resources.NewDefaultRegistry()
	}
	if opts.FontLoadParallelism <= 0 {
		opts.FontLoadParallelism = 1
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	var resolverOpts []dispatch.Option
	if opts.MaxFocusDepth > 0 {
		resolverOpts = append(resolverOpts, dispatch.WithMaxFocusDepth(opts.MaxFocusDepth))
	}
	if opts.KeyMap != nil {
		resolverOpts = append(resolverOpts, dispatch.WithKeyMap(opts.KeyMap))
	}

	w := &Window{
		logger:    logger,
		render:    render,
		appData:   appData,
		sheet:     opts.Stylesheet,
		now:       opts.Clock,
		resources: resources.NewRendererResources(opts.Fonts, logger, opts.FontLoadParallelism),
		resolver:  dispatch.NewResolver(logger, resolverOpts...),
		scroll:    layout.NewScrollStates(),
		drags:     drag.NewManager(logger),
		selection: drag.NewSelectionManager(),
		timers:    task.NewTimerRegistry(logger, task.WithClock(opts.Clock)),
		threads:   task.NewThreadRegistry(logger),
		previous:  state.Clone(),
	}

	sd, err := w.renderStyled()
	if err != nil {
		return nil, err
	}
	// fonts must be loaded before the first layout can measure text
	w.resources.GarbageCollect(ctx, []*style.StyledDom{sd}, state.HiDPIFactor())
	w.layout = layout.Compute(sd, rootBounds(state), w.layoutOptions(state))
	w.scroll.Sync(w.layout)
	w.resources.GarbageCollect(ctx, w.styledDoms(), state.HiDPIFactor())
	w.logger.Debug("window created", zap.Int("nodes", sd.Len()))
	return w, nil
}

func (w *Window) renderStyled() (sd *style.StyledDom, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("window: render panicked: %v", p)
		}
	}()
	d := w.render(w.appData)
	if d == nil {
		d = dom.Body()
	}
	return style.New(d, w.sheet, style.WithLogger(w.logger), style.WithDomID(schemas.RootDomID)), nil
}

func rootBounds(state schemas.FullWindowState) schemas.Rect {
	return schemas.NewRect(0, 0, max(state.Size.Width, 0), max(state.Size.Height, 0))
}

func (w *Window) layoutOptions(state schemas.FullWindowState) layout.Options {
	return layout.Options{
		Logger:      w.logger,
		Fonts:       w.resources,
		Debug:       &w.debug,
		HiDPIFactor: state.HiDPIFactor(),
		Scroll:      w.scroll,
	}
}

// styledDoms lists the styled DOM of every laid out DOM, iframes included.
func (w *Window) styledDoms() []*style.StyledDom {
	var out []*style.StyledDom
	for res := range w.layout.Walk() {
		out = append(out, res.Styled)
	}
	return out
}

// Layout returns the current layout of the root DOM.
func (w *Window) Layout() *layout.Result { return w.layout }

// State returns the window state stored at the end of the last frame.
func (w *Window) State() schemas.FullWindowState { return w.previous.Clone() }

// Scroll returns the scroll offsets of the window.
func (w *Window) Scroll() *layout.ScrollStates { return w.scroll }

// Drag returns the drag manager so the windowing layer can start gestures
// it recognises itself, such as window moves.
func (w *Window) Drag() *drag.Manager { return w.drags }

// Selection returns the text selections of the window.
func (w *Window) Selection() *drag.SelectionManager { return w.selection }

// Resources returns the renderer resource cache.
func (w *Window) Resources() *resources.RendererResources { return w.resources }

// Timers reports the number of running timers.
func (w *Window) Timers() int { return w.timers.Len() }

// Threads reports the number of live background threads.
func (w *Window) Threads() int { return w.threads.Len() }

// DebugMessages drains the fallback notices of the layout passes run so far.
func (w *Window) DebugMessages() []layout.DebugMessage {
	out := w.debug
	w.debug = nil
	return out
}

// Close stops every background thread. Timers stop with the window.
func (w *Window) Close() {
	w.stateLock.Lock()
	if w.closed {
		w.stateLock.Unlock()
		return
	}
	w.closed = true
	w.stateLock.Unlock()

	w.threads.StopAll()
	w.logger.Debug("window closed")
}

func (w *Window) isClosed() bool {
	w.stateLock.Lock()
	defer w.stateLock.Unlock()
	return w.closed
}
