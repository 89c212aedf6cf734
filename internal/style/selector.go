// internal/style/selector.go
package style

import (
	"github.com/xkilldash9x/boxflow/internal/css"
)

type compound struct {
	sels []css.PathSelector
	// combinator joins this compound to the one on its left.
	combinator css.SelectorKind
}

func splitCompounds(p css.CssPath) []compound {
	var out []compound
	cur := compound{combinator: css.SelectChildren}
	for _, s := range p.Selectors {
		if s.Kind == css.SelectChildren || s.Kind == css.SelectDirectChildren {
			out = append(out, cur)
			cur = compound{combinator: s.Kind}
			continue
		}
		cur.sels = append(cur.sels, s)
	}
	return append(out, cur)
}

// Matches reports whether a node matches a selector path, taking the node's
// current interaction state into account.
func (sd *StyledDom) Matches(id NodeID, p css.CssPath) bool {
	return sd.matches(id, p, false)
}

// FindFirst returns the first node in document order matching p.
func (sd *StyledDom) FindFirst(p css.CssPath) (NodeID, bool) {
	for id := range sd.Hierarchy.Descendants(sd.Hierarchy.Root()) {
		if sd.Matches(id, p) {
			return id, true
		}
	}
	return 0, false
}

// matches evaluates p right to left. When ignoreTargetState is set, state
// pseudo-classes of the last compound are treated as matching; the cascade
// uses that to route such rules into the state overlays.
func (sd *StyledDom) matches(id NodeID, p css.CssPath, ignoreTargetState bool) bool {
	comps := splitCompounds(p)
	if len(comps) == 0 {
		return false
	}
	last := len(comps) - 1
	if !sd.matchCompound(id, comps[last], ignoreTargetState) {
		return false
	}
	return sd.matchLeft(id, comps, last)
}

func (sd *StyledDom) matchLeft(id NodeID, comps []compound, i int) bool {
	if i == 0 {
		return true
	}
	switch comps[i].combinator {
	case css.SelectDirectChildren:
		parent := sd.Hierarchy.Parent(id)
		if !parent.IsSome() || !sd.matchCompound(parent, comps[i-1], false) {
			return false
		}
		return sd.matchLeft(parent, comps, i-1)
	default:
		for anc := range sd.Hierarchy.Ancestors(id) {
			if sd.matchCompound(anc, comps[i-1], false) && sd.matchLeft(anc, comps, i-1) {
				return true
			}
		}
		return false
	}
}

func (sd *StyledDom) matchCompound(id NodeID, c compound, ignoreState bool) bool {
	data := sd.NodeData.Get(id)
	info := sd.CascadeInfo.At(id)
	state := sd.StyledNodes.At(id).State
	for _, s := range c.sels {
		switch s.Kind {
		case css.SelectGlobal:
		case css.SelectType:
			if data.TagName() != s.Value {
				return false
			}
		case css.SelectClass:
			if !data.HasClass(s.Value) {
				return false
			}
		case css.SelectID:
			if !data.HasID(s.Value) {
				return false
			}
		case css.SelectPseudo:
			switch s.Pseudo {
			case css.PseudoFirst:
				if info.IndexInParent != 0 {
					return false
				}
			case css.PseudoLast:
				if !info.IsLastChild {
					return false
				}
			case css.PseudoNthChild:
				if info.IndexInParent+1 != s.Nth {
					return false
				}
			case css.PseudoHover:
				if !ignoreState && !state.Hover {
					return false
				}
			case css.PseudoActive:
				if !ignoreState && !state.Active {
					return false
				}
			case css.PseudoFocus:
				if !ignoreState && !state.Focused {
					return false
				}
			}
		}
	}
	return true
}
