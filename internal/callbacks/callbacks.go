// Package callbacks defines the contract between node callbacks and the event
// resolver: what a callback receives, what it may request, and what it returns.
package callbacks

import (
	"time"

	"github.com/google/uuid"

	"github.com/xkilldash9x/boxflow/api/schemas"
	"github.com/xkilldash9x/boxflow/internal/css"
	"github.com/xkilldash9x/boxflow/internal/events"
	"github.com/xkilldash9x/boxflow/internal/refany"
)

// Update tells the window what a callback changed.
type Update uint8

const (
	// DoNothing means the current DOM is still valid.
	DoNothing Update = iota
	// RefreshDom asks for the window's DOM to be regenerated.
	RefreshDom
	// RefreshDomAllWindows asks every window to regenerate its DOM.
	RefreshDomAllWindows
)

// Max returns the stronger of the two updates.
func (u Update) Max(o Update) Update {
	if o > u {
		return o
	}
	return u
}

func (u Update) String() string {
	return [...]string{"DoNothing", "RefreshDom", "RefreshDomAllWindows"}[u]
}

// FocusKind tags a FocusTarget.
type FocusKind uint8

const (
	NoFocus FocusKind = iota
	FocusByID
	FocusByPath
)

// FocusTarget is a requested focus change. Paths are resolved against the
// tree of the next frame; an unresolved path clears focus.
type FocusTarget struct {
	Kind FocusKind
	ID   schemas.DomNodeID
	Path css.CssPath
	Dom  schemas.DomID
}

// FocusOn targets a node by id.
func FocusOn(id schemas.DomNodeID) FocusTarget { return FocusTarget{Kind: FocusByID, ID: id} }

// FocusPath targets the first node in dom matching path.
func FocusPath(dom schemas.DomID, path css.CssPath) FocusTarget {
	return FocusTarget{Kind: FocusByPath, Path: path, Dom: dom}
}

// ClearFocus removes focus from every node.
func ClearFocus() FocusTarget { return FocusTarget{Kind: NoFocus} }

// Callback handles one event on one node.
type Callback func(data *refany.RefAny, info CallbackInfo) Update

// CallbackData is one entry of a node's callback vector.
type CallbackData struct {
	Event    events.EventFilter
	Callback Callback
	Data     *refany.RefAny
}

// CallbackInfo is what a callback can observe and request. Requests are
// applied after the callback returns, never while the frame is observed.
type CallbackInfo interface {
	HitNode() schemas.DomNodeID
	CursorRelativeToNode() (schemas.Point, bool)
	CursorInViewport() (schemas.Point, bool)
	WindowState() *schemas.FullWindowState
	PreviousWindowState() *schemas.FullWindowState

	Parent(node schemas.DomNodeID) (schemas.DomNodeID, bool)
	Children(node schemas.DomNodeID) []schemas.DomNodeID
	NodeRect(node schemas.DomNodeID) (schemas.Rect, bool)
	NodeText(node schemas.DomNodeID) (string, bool)
	ScrollPosition(node schemas.DomNodeID) (schemas.Point, bool)

	SetFocus(target FocusTarget)
	StopPropagation()
	SetCssProperty(node schemas.DomNodeID, prop css.Property)
	ChangeNodeText(node schemas.DomNodeID, text string)
	ScrollTo(node schemas.DomNodeID, offset schemas.Point)

	AddTimer(timer Timer) TimerID
	RemoveTimer(id TimerID)
	StartThread(initial *refany.RefAny, writebackData *refany.RefAny, fn ThreadFunc) ThreadID
	StopThread(id ThreadID)
}

// -- Timers --

// TimerID identifies a timer within a window.
type TimerID uuid.UUID

func (t TimerID) String() string { return uuid.UUID(t).String() }

// TerminateTimer tells the registry whether a timer keeps running.
type TerminateTimer bool

const (
	Continue  TerminateTimer = false
	Terminate TerminateTimer = true
)

// TimerCallbackInfo is passed to timer callbacks.
type TimerCallbackInfo struct {
	CallbackInfo
	FrameStart time.Time
	CallCount  int
	// IsAboutToFinish is true on the last run before the timeout.
	IsAboutToFinish bool
}

// TimerCallbackReturn is the result of one timer invocation.
type TimerCallbackReturn struct {
	ShouldUpdate    Update
	ShouldTerminate TerminateTimer
}

// TimerCallback runs once per due frame on the UI thread.
type TimerCallback func(data *refany.RefAny, info TimerCallbackInfo) TimerCallbackReturn

// Timer is a callback invoked on frames until it terminates. Delay postpones
// the first run, Interval is the minimum time between runs (zero runs every
// frame) and Timeout ends the timer after the given lifetime.
type Timer struct {
	Data     *refany.RefAny
	Callback TimerCallback
	Delay    time.Duration
	Interval time.Duration
	Timeout  time.Duration
}

// -- Threads --

// ThreadID identifies a background thread within a window.
type ThreadID uuid.UUID

func (t ThreadID) String() string { return uuid.UUID(t).String() }

// ThreadSendMsg is sent from the UI thread to a background thread.
type ThreadSendMsg uint8

const (
	TerminateThread ThreadSendMsg = iota
	Tick
)

// WriteBackCallback runs on the UI thread with the app data the thread was
// started with and the data the thread sent back.
type WriteBackCallback func(writebackData *refany.RefAny, incoming *refany.RefAny, info CallbackInfo) Update

// ThreadReceiveMsg is sent from a background thread to the UI thread. Exactly
// one of WriteBack or Update is meaningful; WriteBack wins when both are set.
type ThreadReceiveMsg struct {
	WriteBack *WriteBackMsg
	Update    Update
}

// WriteBackMsg carries data and the callback that applies it.
type WriteBackMsg struct {
	Data     *refany.RefAny
	Callback WriteBackCallback
}

// ThreadSender is the background side's handle to the UI thread.
type ThreadSender interface {
	Send(msg ThreadReceiveMsg) bool
}

// ThreadReceiver is the background side's handle for messages from the UI thread.
type ThreadReceiver interface {
	// Recv blocks until a message arrives; ok is false once the channel is closed.
	Recv() (msg ThreadSendMsg, ok bool)
	// TryRecv returns immediately.
	TryRecv() (msg ThreadSendMsg, ok bool)
}

// ThreadFunc is the body of a background thread. It returns when its work is
// done or when it receives TerminateThread.
type ThreadFunc func(initial *refany.RefAny, sender ThreadSender, receiver ThreadReceiver)
