package style

import (
	"github.com/xkilldash9x/boxflow/api/schemas"
	"github.com/xkilldash9x/boxflow/internal/css"
)

// ChangedCssProperty records one property that differs between two frames.
type ChangedCssProperty struct {
	Type     css.PropertyType
	Previous css.Property
	Current  css.Property
}

// Changes maps nodes to their changed properties.
type Changes map[NodeID][]ChangedCssProperty

// Merge folds other into c, keeping the earliest Previous and latest Current.
func (c Changes) Merge(other Changes) {
	for id, list := range other {
		for _, ch := range list {
			found := false
			for i := range c[id] {
				if c[id][i].Type == ch.Type {
					c[id][i].Current = ch.Current
					found = true
					break
				}
			}
			if !found {
				c[id] = append(c[id], ch)
			}
		}
	}
	for id, list := range c {
		kept := list[:0]
		for _, ch := range list {
			if ch.Previous != ch.Current {
				kept = append(kept, ch)
			}
		}
		if len(kept) == 0 {
			delete(c, id)
		} else {
			c[id] = kept
		}
	}
}

// Diff compares two snapshots of computed styles of the same tree.
func Diff(previous, current []ComputedStyle) Changes {
	out := Changes{}
	n := min(len(previous), len(current))
	for i := 0; i < n; i++ {
		for t := css.PropertyType(0); t < css.PropertyCount; t++ {
			if previous[i][t] != current[i][t] {
				id := schemas.NodeIDFromIndex(i)
				out[id] = append(out[id], ChangedCssProperty{Type: t, Previous: previous[i][t], Current: current[i][t]})
			}
		}
	}
	return out
}

// RestyleNodesHover sets the hover flag of nodes and returns the resulting
// property changes. Applying the same flags twice yields no changes.
func (sd *StyledDom) RestyleNodesHover(ids []NodeID, hovered bool) Changes {
	return sd.restyle(ids, func(s *NodeState) { s.Hover = hovered })
}

// RestyleNodesActive sets the active flag of nodes.
func (sd *StyledDom) RestyleNodesActive(ids []NodeID, active bool) Changes {
	return sd.restyle(ids, func(s *NodeState) { s.Active = active })
}

// RestyleNodesFocus sets the focus flag of nodes.
func (sd *StyledDom) RestyleNodesFocus(ids []NodeID, focused bool) Changes {
	return sd.restyle(ids, func(s *NodeState) { s.Focused = focused })
}

func (sd *StyledDom) restyle(ids []NodeID, set func(*NodeState)) Changes {
	changed := false
	for _, id := range ids {
		n := sd.StyledNodes.Get(id)
		if n == nil {
			continue
		}
		before := n.State
		set(&n.State)
		if n.State != before {
			changed = true
		}
	}
	if !changed {
		return Changes{}
	}
	return sd.recompute()
}

// SetProperty installs a runtime override on a node and returns the changes.
func (sd *StyledDom) SetProperty(id NodeID, p css.Property) Changes {
	if !sd.Hierarchy.Contains(id) {
		return Changes{}
	}
	sd.Cache.Override(id, p)
	return sd.recompute()
}

func (sd *StyledDom) recompute() Changes {
	prev := sd.computed
	sd.computeAll()
	sd.indexNodes()
	return Diff(prev, sd.computed)
}

// NodesInState lists nodes whose flag selected by pick is set.
func (sd *StyledDom) NodesInState(pick func(NodeState) bool) []NodeID {
	var out []NodeID
	for i, n := range sd.StyledNodes {
		if pick(n.State) {
			out = append(out, schemas.NodeIDFromIndex(i))
		}
	}
	return out
}
