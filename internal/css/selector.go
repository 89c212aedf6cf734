package css

import (
	"strconv"
	"strings"
)

// NodeState is the interaction state a property declaration applies to.
type NodeState uint8

const (
	StateNormal NodeState = iota
	StateHover
	StateActive
	StateFocus
)

func (s NodeState) String() string {
	return [...]string{"normal", "hover", "active", "focus"}[s]
}

// PseudoSelector is a structural or state pseudo-class.
type PseudoSelector uint8

const (
	PseudoFirst PseudoSelector = iota + 1
	PseudoLast
	PseudoNthChild
	PseudoHover
	PseudoActive
	PseudoFocus
)

// SelectorKind tags one element of a CssPath.
type SelectorKind uint8

const (
	// SelectGlobal matches any node (`*`).
	SelectGlobal SelectorKind = iota
	// SelectType matches the element tag.
	SelectType
	SelectClass
	SelectID
	SelectPseudo
	// SelectDirectChildren is the `>` combinator.
	SelectDirectChildren
	// SelectChildren is the descendant combinator.
	SelectChildren
)

// PathSelector is one element of a CssPath.
type PathSelector struct {
	Kind   SelectorKind
	Value  string
	Pseudo PseudoSelector
	// Nth is the one-based position for PseudoNthChild.
	Nth int
}

// CssPath is a typed selector, left to right as it would be written.
// Compound selectors are adjacent non-combinator elements.
type CssPath struct {
	Selectors []PathSelector
}

// Path builds a CssPath from selectors.
func Path(sel ...PathSelector) CssPath { return CssPath{Selectors: sel} }

func Global() PathSelector                 { return PathSelector{Kind: SelectGlobal} }
func Type(tag string) PathSelector         { return PathSelector{Kind: SelectType, Value: tag} }
func Class(name string) PathSelector       { return PathSelector{Kind: SelectClass, Value: name} }
func ID(name string) PathSelector          { return PathSelector{Kind: SelectID, Value: name} }
func Pseudo(p PseudoSelector) PathSelector { return PathSelector{Kind: SelectPseudo, Pseudo: p} }
func NthChild(n int) PathSelector {
	return PathSelector{Kind: SelectPseudo, Pseudo: PseudoNthChild, Nth: n}
}
func DirectChild() PathSelector { return PathSelector{Kind: SelectDirectChildren} }
func Descendant() PathSelector  { return PathSelector{Kind: SelectChildren} }

// TargetState returns the interaction state the final compound selector
// requires, or StateNormal when it has no state pseudo-class.
func (p CssPath) TargetState() NodeState {
	for i := len(p.Selectors) - 1; i >= 0; i-- {
		s := p.Selectors[i]
		if s.Kind == SelectDirectChildren || s.Kind == SelectChildren {
			break
		}
		if s.Kind == SelectPseudo {
			switch s.Pseudo {
			case PseudoHover:
				return StateHover
			case PseudoActive:
				return StateActive
			case PseudoFocus:
				return StateFocus
			}
		}
	}
	return StateNormal
}

func (p CssPath) String() string {
	var b strings.Builder
	for _, s := range p.Selectors {
		switch s.Kind {
		case SelectGlobal:
			b.WriteString("*")
		case SelectType:
			b.WriteString(s.Value)
		case SelectClass:
			b.WriteString("." + s.Value)
		case SelectID:
			b.WriteString("#" + s.Value)
		case SelectDirectChildren:
			b.WriteString(" > ")
		case SelectChildren:
			b.WriteString(" ")
		case SelectPseudo:
			b.WriteString([...]string{"", ":first", ":last", ":nth-child", ":hover", ":active", ":focus"}[s.Pseudo])
			if s.Pseudo == PseudoNthChild {
				b.WriteString("(" + strconv.Itoa(s.Nth) + ")")
			}
		}
	}
	return b.String()
}

// Rule is a selector with typed declarations.
type Rule struct {
	Path         CssPath
	Declarations []Property
}

// Stylesheet is an ordered list of rules; later rules win over earlier ones.
type Stylesheet struct {
	Rules []Rule
}

// Add appends a rule and returns the sheet for chaining.
func (s *Stylesheet) Add(path CssPath, decls ...Property) *Stylesheet {
	s.Rules = append(s.Rules, Rule{Path: path, Declarations: decls})
	return s
}
