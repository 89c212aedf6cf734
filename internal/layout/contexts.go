// internal/layout/contexts.go
package layout

import (
	"github.com/xkilldash9x/boxflow/internal/arena"
	"github.com/xkilldash9x/boxflow/internal/css"
	"github.com/xkilldash9x/boxflow/internal/dom"
	"github.com/xkilldash9x/boxflow/internal/style"
)

// ContextKind is the layout algorithm a node applies to its children.
type ContextKind uint8

const (
	ContextBlock ContextKind = iota
	ContextInline
	ContextFlex
	ContextTable
	ContextReplaced
	ContextNone
)

func (k ContextKind) String() string {
	return [...]string{"block", "inline", "flex", "table", "replaced", "none"}[k]
}

// TableRole refines ContextTable.
type TableRole uint8

const (
	RoleNone TableRole = iota
	RoleTable
	RoleRowGroup
	RoleRow
	RoleCell
	RoleColumn
	RoleColumnGroup
	RoleCaption
)

// FormattingContext is the per-node layout classification.
type FormattingContext struct {
	Kind ContextKind
	Role TableRole
	// InlineLevel is set for boxes that sit on a line of their parent.
	InlineLevel bool
	// EstablishesBFC is set for boxes whose floats and margins are contained.
	EstablishesBFC bool
	// Display is the used display after blockification.
	Display css.Display
}

// IsAtomicInline reports whether the box is placed on a line as a unit.
func (f FormattingContext) IsAtomicInline() bool {
	return f.InlineLevel && (f.Kind != ContextInline || f.Display != css.DisplayInline)
}

// Classify derives the formatting context of one node from display, position and float.
func Classify(cs *style.ComputedStyle, node *dom.NodeData) FormattingContext {
	d := cs.Display()
	if d == css.DisplayNone {
		return FormattingContext{Kind: ContextNone, Display: d}
	}
	floated := cs.Float() != css.FloatNone
	outOfFlow := cs.Position().IsOutOfFlow()
	if floated || outOfFlow {
		d = d.Blockified()
	}

	fc := FormattingContext{Display: d, InlineLevel: d.IsInlineLevel()}
	switch node.Type {
	case dom.NodeText:
		fc.Kind = ContextInline
		fc.InlineLevel = true
		fc.Display = css.DisplayInline
		return fc
	case dom.NodeBr:
		fc.Kind = ContextInline
		fc.InlineLevel = true
		fc.Display = css.DisplayInline
		return fc
	case dom.NodeImage, dom.NodeIframe, dom.NodeIcon:
		fc.Kind = ContextReplaced
		fc.EstablishesBFC = true
		return fc
	}

	switch d {
	case css.DisplayInline:
		fc.Kind = ContextInline
	case css.DisplayFlex, css.DisplayInlineFlex:
		fc.Kind = ContextFlex
		fc.EstablishesBFC = true
	case css.DisplayTable, css.DisplayInlineTable:
		fc.Kind, fc.Role = ContextTable, RoleTable
		fc.EstablishesBFC = true
	case css.DisplayTableRowGroup, css.DisplayTableHeaderGroup, css.DisplayTableFooterGroup:
		fc.Kind, fc.Role = ContextTable, RoleRowGroup
	case css.DisplayTableRow:
		fc.Kind, fc.Role = ContextTable, RoleRow
	case css.DisplayTableCell:
		fc.Kind, fc.Role = ContextTable, RoleCell
		fc.EstablishesBFC = true
	case css.DisplayTableColumn:
		fc.Kind, fc.Role = ContextTable, RoleColumn
	case css.DisplayTableColumnGroup:
		fc.Kind, fc.Role = ContextTable, RoleColumnGroup
	case css.DisplayTableCaption:
		fc.Kind, fc.Role = ContextTable, RoleCaption
		fc.EstablishesBFC = true
	default:
		fc.Kind = ContextBlock
		fc.EstablishesBFC = d == css.DisplayInlineBlock || d == css.DisplayFlowRoot ||
			floated || outOfFlow || cs.OverflowX() != css.OverflowVisible || cs.OverflowY() != css.OverflowVisible
	}
	return fc
}

// ComputeContexts classifies every node. Descendants of display:none nodes
// are classified as none too.
func ComputeContexts(sd *style.StyledDom) arena.Container[FormattingContext] {
	out := arena.NewContainer[FormattingContext](sd.Len())
	if sd.Len() == 0 {
		return out
	}
	for id := range sd.Hierarchy.Descendants(sd.Root()) {
		if p := sd.Hierarchy.Parent(id); p.IsSome() && out.At(p).Kind == ContextNone {
			*out.Get(id) = FormattingContext{Kind: ContextNone, Display: css.DisplayNone}
			continue
		}
		*out.Get(id) = Classify(sd.Computed(id), sd.NodeData.Get(id))
	}
	return out
}

// ContextsChanged reports whether any change touches display, position or
// float, which invalidates the whole contexts container.
func ContextsChanged(changes style.Changes) bool {
	for _, list := range changes {
		for _, ch := range list {
			if ch.Type.Impact() == css.ImpactContext {
				return true
			}
		}
	}
	return false
}
