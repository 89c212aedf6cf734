package drag

import "slices"

// TextCursor is a byte offset inside a text node.
type TextCursor struct {
	Node   NodeID `json:"node"`
	Offset int    `json:"offset"`
}

// Selection is a range between an anchor and a focus cursor. The focus may
// precede the anchor.
type Selection struct {
	Anchor TextCursor `json:"anchor"`
	Focus  TextCursor `json:"focus"`
}

// IsCollapsed reports whether the selection is a caret.
func (s Selection) IsCollapsed() bool { return s.Anchor == s.Focus }

// SelectionState is the selection of one DOM.
type SelectionState struct {
	Selections []Selection `json:"selections"`
	// AnchorNode is where the last selection gesture started.
	AnchorNode NodeID `json:"anchor_node_id"`
}

// SelectionManager holds text selections per DOM.
type SelectionManager struct {
	states map[DomID]*SelectionState
}

// NewSelectionManager creates an empty SelectionManager.
func NewSelectionManager() *SelectionManager {
	return &SelectionManager{states: map[DomID]*SelectionState{}}
}

// Get returns the selection state of dom.
func (s *SelectionManager) Get(dom DomID) (SelectionState, bool) {
	st, ok := s.states[dom]
	if !ok {
		return SelectionState{}, false
	}
	return *st, true
}

// Set replaces the selections of dom with a single range.
func (s *SelectionManager) Set(dom DomID, sel Selection) {
	s.states[dom] = &SelectionState{Selections: []Selection{sel}, AnchorNode: sel.Anchor.Node}
}

// Add appends a range to the selections of dom.
func (s *SelectionManager) Add(dom DomID, sel Selection) {
	st, ok := s.states[dom]
	if !ok {
		s.Set(dom, sel)
		return
	}
	st.Selections = append(st.Selections, sel)
	st.AnchorNode = sel.Anchor.Node
}

// Clear removes the selections of one DOM.
func (s *SelectionManager) Clear(dom DomID) { delete(s.states, dom) }

// ClearAll removes every selection in every DOM and reports whether anything
// was selected. Calling it twice is a no-op the second time.
func (s *SelectionManager) ClearAll() bool {
	had := len(s.states) > 0
	clear(s.states)
	return had
}

// Len returns the number of DOMs with selections.
func (s *SelectionManager) Len() int { return len(s.states) }

// RemapNodeIDs rewrites selections of dom after it was regenerated.
// Selections touching a node without a counterpart are dropped.
func (s *SelectionManager) RemapNodeIDs(dom DomID, table map[NodeID]NodeID) {
	st, ok := s.states[dom]
	if !ok {
		return
	}
	st.Selections = slices.DeleteFunc(st.Selections, func(sel Selection) bool {
		_, a := table[sel.Anchor.Node]
		_, f := table[sel.Focus.Node]
		return !a || !f
	})
	for i := range st.Selections {
		st.Selections[i].Anchor.Node = table[st.Selections[i].Anchor.Node]
		st.Selections[i].Focus.Node = table[st.Selections[i].Focus.Node]
	}
	if len(st.Selections) == 0 {
		delete(s.states, dom)
		return
	}
	st.AnchorNode = table[st.AnchorNode]
}
