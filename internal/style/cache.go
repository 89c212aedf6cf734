package style

import (
	"github.com/xkilldash9x/boxflow/internal/css"
)

// declarations maps a property type to its declared value.
type declarations map[css.PropertyType]css.Property

// PropertyCache stores the declared (post-cascade) properties of every node,
// split into the normal layer and the hover/active/focus overlays, plus a
// layer of properties overridden at runtime by callbacks.
type PropertyCache struct {
	layers    [4][]declarations
	overrides []declarations
}

func newPropertyCache(n int) *PropertyCache {
	c := &PropertyCache{overrides: make([]declarations, n)}
	for i := range c.layers {
		c.layers[i] = make([]declarations, n)
	}
	return c
}

func (c *PropertyCache) set(state css.NodeState, idx int, p css.Property) {
	layer := c.layers[state]
	if layer[idx] == nil {
		layer[idx] = declarations{}
	}
	layer[idx][p.Type] = p
}

// Get returns the value declared for exactly one state layer.
func (c *PropertyCache) Get(node NodeID, t css.PropertyType, state css.NodeState) (css.Property, bool) {
	if !c.valid(node) {
		return css.Property{}, false
	}
	p, ok := c.layers[state][node.Index()][t]
	return p, ok
}

// Resolve composes the layers for a node in the given interaction state.
// Priority: runtime overrides, focus, active, hover, normal.
func (c *PropertyCache) Resolve(node NodeID, t css.PropertyType, st NodeState) (css.Property, bool) {
	if !c.valid(node) {
		return css.Property{}, false
	}
	idx := node.Index()
	if p, ok := c.overrides[idx][t]; ok {
		return p, true
	}
	if st.Focused {
		if p, ok := c.layers[css.StateFocus][idx][t]; ok {
			return p, true
		}
	}
	if st.Active {
		if p, ok := c.layers[css.StateActive][idx][t]; ok {
			return p, true
		}
	}
	if st.Hover {
		if p, ok := c.layers[css.StateHover][idx][t]; ok {
			return p, true
		}
	}
	p, ok := c.layers[css.StateNormal][idx][t]
	return p, ok
}

// HasState reports whether the node declares anything for the given state.
func (c *PropertyCache) HasState(node NodeID, state css.NodeState) bool {
	return c.valid(node) && len(c.layers[state][node.Index()]) > 0
}

// StateAffectsLayout reports whether toggling the state can change layout,
// not just paint.
func (c *PropertyCache) StateAffectsLayout(node NodeID, state css.NodeState) bool {
	if !c.valid(node) || state == css.StateNormal {
		return false
	}
	for t := range c.layers[state][node.Index()] {
		if t.Impact() >= css.ImpactIntrinsic {
			return true
		}
	}
	return false
}

// Override sets a runtime value that wins over every layer.
func (c *PropertyCache) Override(node NodeID, p css.Property) {
	if !c.valid(node) {
		return
	}
	idx := node.Index()
	if c.overrides[idx] == nil {
		c.overrides[idx] = declarations{}
	}
	c.overrides[idx][p.Type] = p
}

func (c *PropertyCache) valid(node NodeID) bool {
	return node.IsSome() && node.Index() < len(c.overrides)
}
