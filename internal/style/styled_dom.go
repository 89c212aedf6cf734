// Package style turns a DOM into a styled DOM: it runs the typed cascade,
// keeps per-state property layers, computes inherited values and reports
// which properties changed between frames.
package style

import (
	"go.uber.org/zap"

	"github.com/xkilldash9x/boxflow/api/schemas"
	"github.com/xkilldash9x/boxflow/internal/arena"
	"github.com/xkilldash9x/boxflow/internal/css"
	"github.com/xkilldash9x/boxflow/internal/dom"
)

type NodeID = schemas.NodeID

// NodeState holds the interaction flags of a node.
type NodeState struct {
	Hover   bool
	Active  bool
	Focused bool
}

// StyledNode is the per-frame styling record of a node.
type StyledNode struct {
	State NodeState
	// Tag is the hit-test tag, zero when the node is not hit-testable.
	Tag schemas.TagID
}

// CascadeInfo is used by structural pseudo-class matching.
type CascadeInfo struct {
	IndexInParent int
	IsLastChild   bool
}

// StyledDom is a DOM together with its cascade results.
type StyledDom struct {
	DomID       schemas.DomID
	Hierarchy   *arena.Hierarchy
	NodeData    arena.Container[dom.NodeData]
	StyledNodes arena.Container[StyledNode]
	CascadeInfo arena.Container[CascadeInfo]
	Cache       *PropertyCache

	// TagMap resolves hit-test tags back to nodes.
	TagMap map[schemas.TagID]NodeID
	// NodesWithWindowCallbacks lists nodes with at least one window-event callback.
	NodesWithWindowCallbacks []NodeID
	// NodesWithNotCallbacks lists nodes with at least one Not callback.
	NodesWithNotCallbacks []NodeID

	computed []ComputedStyle
	logger   *zap.Logger
}

// Option configures a StyledDom.
type Option func(*StyledDom)

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(sd *StyledDom) { sd.logger = l.Named("style") }
}

// WithDomID sets the DOM id (RootDomID by default).
func WithDomID(id schemas.DomID) Option {
	return func(sd *StyledDom) { sd.DomID = id }
}

// New builds a styled DOM from a DOM tree and an optional stylesheet.
func New(d *dom.Dom, sheet *css.Stylesheet, opts ...Option) *StyledDom {
	return FromArena(d.Compact(), sheet, opts...)
}

// FromArena builds a styled DOM from an already compacted arena.
func FromArena(a *arena.Arena[dom.NodeData], sheet *css.Stylesheet, opts ...Option) *StyledDom {
	n := a.Len()
	sd := &StyledDom{
		Hierarchy:   a.Hierarchy,
		NodeData:    a.Payloads(),
		StyledNodes: arena.NewContainer[StyledNode](n),
		CascadeInfo: arena.NewContainer[CascadeInfo](n),
		Cache:       newPropertyCache(n),
		TagMap:      map[schemas.TagID]NodeID{},
		logger:      zap.NewNop(),
	}
	for _, o := range opts {
		o(sd)
	}

	for i, node := range a.Nodes() {
		id := schemas.NodeIDFromIndex(i)
		if node.Parent.IsSome() {
			idx := 0
			for range a.PrecedingSiblings(id) {
				idx++
			}
			sd.CascadeInfo[i] = CascadeInfo{IndexInParent: idx, IsLastChild: node.NextSibling == schemas.NoNode}
		} else {
			sd.CascadeInfo[i] = CascadeInfo{IsLastChild: true}
		}
	}

	sd.cascade(sheet)
	sd.computeAll()
	sd.indexNodes()
	sd.logger.Debug("styled dom built", zap.Int("nodes", n), zap.Int("tags", len(sd.TagMap)))
	return sd
}

// cascade applies stylesheet rules in order and then inline declarations,
// so inline styles win and later rules override earlier ones.
func (sd *StyledDom) cascade(sheet *css.Stylesheet) {
	if sheet != nil {
		for _, rule := range sheet.Rules {
			state := rule.Path.TargetState()
			for i := range sd.NodeData {
				id := schemas.NodeIDFromIndex(i)
				if !sd.matches(id, rule.Path, true) {
					continue
				}
				for _, p := range rule.Declarations {
					sd.Cache.set(state, i, p)
				}
			}
		}
	}
	for i := range sd.NodeData {
		for _, ip := range sd.NodeData[i].InlineStyle {
			sd.Cache.set(ip.State, i, ip.Property)
		}
	}
}

// indexNodes assigns hit-test tags and fills the callback index arrays.
func (sd *StyledDom) indexNodes() {
	var next schemas.TagID
	clear(sd.TagMap)
	sd.NodesWithWindowCallbacks = sd.NodesWithWindowCallbacks[:0]
	sd.NodesWithNotCallbacks = sd.NodesWithNotCallbacks[:0]
	for i := range sd.NodeData {
		id := schemas.NodeIDFromIndex(i)
		data := &sd.NodeData[i]
		if data.HasWindowCallbacks() {
			sd.NodesWithWindowCallbacks = append(sd.NodesWithWindowCallbacks, id)
		}
		if data.HasNotCallbacks() {
			sd.NodesWithNotCallbacks = append(sd.NodesWithNotCallbacks, id)
		}
		if sd.needsTag(id) {
			next++
			sd.StyledNodes[i].Tag = next
			sd.TagMap[next] = id
		} else {
			sd.StyledNodes[i].Tag = 0
		}
	}
}

func (sd *StyledDom) needsTag(id NodeID) bool {
	data := sd.NodeData.Get(id)
	if len(data.Callbacks) > 0 || data.TabIndex.IsFocusable() || data.Type == dom.NodeIframe {
		return true
	}
	for _, st := range []css.NodeState{css.StateHover, css.StateActive, css.StateFocus} {
		if sd.Cache.HasState(id, st) {
			return true
		}
	}
	cs := sd.Computed(id)
	return cs.OverflowX().IsScrollable() || cs.OverflowY().IsScrollable()
}

// Len returns the number of nodes.
func (sd *StyledDom) Len() int { return sd.Hierarchy.Len() }

// Root returns the root node.
func (sd *StyledDom) Root() NodeID { return sd.Hierarchy.Root() }

// Computed returns the computed style of a node.
func (sd *StyledDom) Computed(id NodeID) *ComputedStyle {
	if !id.IsSome() || id.Index() >= len(sd.computed) {
		return &ComputedStyle{}
	}
	return &sd.computed[id.Index()]
}

// ComputedStyles returns a copy of every computed style, for diffing across frames.
func (sd *StyledDom) ComputedStyles() []ComputedStyle {
	return append([]ComputedStyle(nil), sd.computed...)
}

// NodeForTag resolves a hit-test tag.
func (sd *StyledDom) NodeForTag(tag schemas.TagID) (NodeID, bool) {
	id, ok := sd.TagMap[tag]
	return id, ok
}

// TagForNode returns the hit-test tag of a node.
func (sd *StyledDom) TagForNode(id NodeID) (schemas.TagID, bool) {
	t := sd.StyledNodes.At(id).Tag
	return t, t != 0
}

// SetNodeText replaces the text of a text node. It reports whether the text changed.
func (sd *StyledDom) SetNodeText(id NodeID, text string) bool {
	data := sd.NodeData.Get(id)
	if data == nil || data.Type != dom.NodeText || data.Text == text {
		return false
	}
	data.Text = text
	return true
}
