// internal/drag/manager.go
package drag

import (
	"go.uber.org/zap"

	"github.com/xkilldash9x/boxflow/api/schemas"
)

// EventKind names a drop-target transition.
type EventKind uint8

const (
	DragEnter EventKind = iota
	DragLeave
)

func (k EventKind) String() string { return [...]string{"DragEnter", "DragLeave"}[k] }

// Event is emitted when a dragged node or file enters or leaves a target.
type Event struct {
	Kind EventKind
	Node DomNodeID
}

// Manager owns the at most one active drag of a window. It is used from the
// UI thread only.
type Manager struct {
	logger *zap.Logger
	active *Context
}

// NewManager creates a Manager without an active drag.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{logger: logger.Named("drag")}
}

// Start begins a drag, replacing any drag in progress.
func (m *Manager) Start(v Variant) *Context {
	if m.active != nil {
		m.logger.Debug("drag replaced", zap.Stringer("session", m.active.Session), zap.Stringer("kind", m.active.Kind()))
	}
	m.active = &Context{Session: NewSessionID(), Variant: v}
	m.logger.Debug("drag started", zap.Stringer("session", m.active.Session), zap.Stringer("kind", v.Kind()))
	return m.active
}

// Active returns the drag in progress.
func (m *Manager) Active() (*Context, bool) {
	return m.active, m.active != nil
}

// IsDragging reports whether a drag of kind k is in progress and not cancelled.
func (m *Manager) IsDragging(k Kind) bool {
	return m.active != nil && !m.active.Cancelled && m.active.Kind() == k
}

// UpdatePosition records a cursor move on the active drag.
func (m *Manager) UpdatePosition(p Point) {
	if m.active == nil || m.active.Cancelled {
		return
	}
	m.active.Variant.moveTo(p)
}

// SetDropTarget moves the drop target of a node or file drag and reports
// the resulting leave and enter events, in that order.
func (m *Manager) SetDropTarget(target *DomNodeID) []Event {
	if m.active == nil || m.active.Cancelled {
		return nil
	}
	var slot **DomNodeID
	switch v := m.active.Variant.(type) {
	case *NodeDrag:
		slot = &v.DropTarget
	case *FileDrop:
		slot = &v.DropTarget
	default:
		return nil
	}
	prev := *slot
	if sameTarget(prev, target) {
		return nil
	}
	var out []Event
	if prev != nil {
		out = append(out, Event{Kind: DragLeave, Node: *prev})
	}
	if target != nil {
		t := *target
		*slot = &t
		out = append(out, Event{Kind: DragEnter, Node: t})
	} else {
		*slot = nil
	}
	return out
}

func sameTarget(a, b *DomNodeID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// HandleKeyboard cancels the active drag when Escape went down.
func (m *Manager) HandleKeyboard(ks schemas.KeyboardState) {
	if ks.VirtualKeycode != nil && *ks.VirtualKeycode == schemas.KeyEscape {
		m.Cancel("escape")
	}
}

// Cancel marks the active drag cancelled. The drag stays until drained.
func (m *Manager) Cancel(reason string) {
	if m.active == nil || m.active.Cancelled {
		return
	}
	m.active.Cancelled = true
	m.logger.Debug("drag cancelled", zap.Stringer("session", m.active.Session), zap.String("reason", reason))
}

// DrainCancelled removes and returns a cancelled drag.
func (m *Manager) DrainCancelled() (*Context, bool) {
	if m.active == nil || !m.active.Cancelled {
		return nil, false
	}
	c := m.active
	m.active = nil
	return c, true
}

// End finishes the active drag and returns it. A cancelled drag is returned
// with Cancelled set so callers can skip the drop.
func (m *Manager) End() (*Context, bool) {
	c := m.active
	m.active = nil
	return c, c != nil
}

// RemapNodeIDs rewrites the node ids the drag holds after dom was
// regenerated. A held id without a counterpart cancels the drag.
func (m *Manager) RemapNodeIDs(dom DomID, table map[NodeID]NodeID) {
	if m.active == nil || m.active.Cancelled {
		return
	}
	if !m.active.Variant.remap(dom, table) {
		m.Cancel("node removed")
	}
}
