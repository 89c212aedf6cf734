// internal/css/keywords.go
package css

// -- Keyword enums --
//
// Every enumerated property stores its keyword in Property.Keyword. The zero
// value of each enum is the CSS initial value unless noted otherwise.

// Display is the `display` property.
type Display uint8

const (
	DisplayInline Display = iota
	DisplayBlock
	DisplayInlineBlock
	DisplayFlex
	DisplayInlineFlex
	DisplayTable
	DisplayInlineTable
	DisplayTableRowGroup
	DisplayTableHeaderGroup
	DisplayTableFooterGroup
	DisplayTableRow
	DisplayTableCell
	DisplayTableColumn
	DisplayTableColumnGroup
	DisplayTableCaption
	DisplayListItem
	DisplayFlowRoot
	DisplayNone
)

var displayNames = [...]string{
	"inline", "block", "inline-block", "flex", "inline-flex", "table", "inline-table",
	"table-row-group", "table-header-group", "table-footer-group", "table-row", "table-cell",
	"table-column", "table-column-group", "table-caption", "list-item", "flow-root", "none",
}

func (d Display) String() string {
	if int(d) < len(displayNames) {
		return displayNames[d]
	}
	return "unknown"
}

// IsInlineLevel reports whether the box participates in an inline formatting context.
func (d Display) IsInlineLevel() bool {
	return d == DisplayInline || d == DisplayInlineBlock || d == DisplayInlineFlex || d == DisplayInlineTable
}

// Blockified returns the block-level equivalent used for floats and
// absolutely positioned boxes (CSS 2.2 §9.7).
func (d Display) Blockified() Display {
	switch d {
	case DisplayInline, DisplayInlineBlock, DisplayTableRowGroup, DisplayTableHeaderGroup,
		DisplayTableFooterGroup, DisplayTableRow, DisplayTableCell, DisplayTableColumn,
		DisplayTableColumnGroup, DisplayTableCaption:
		return DisplayBlock
	case DisplayInlineFlex:
		return DisplayFlex
	case DisplayInlineTable:
		return DisplayTable
	}
	return d
}

// Position is the `position` property.
type Position uint8

const (
	PositionStatic Position = iota
	PositionRelative
	PositionAbsolute
	PositionFixed
)

func (p Position) String() string {
	return [...]string{"static", "relative", "absolute", "fixed"}[p]
}

// IsOutOfFlow reports whether the box is removed from normal flow.
func (p Position) IsOutOfFlow() bool { return p == PositionAbsolute || p == PositionFixed }

// Float is the `float` property.
type Float uint8

const (
	FloatNone Float = iota
	FloatLeft
	FloatRight
)

// Clear is the `clear` property.
type Clear uint8

const (
	ClearNone Clear = iota
	ClearLeft
	ClearRight
	ClearBoth
)

// BoxSizing is the `box-sizing` property.
type BoxSizing uint8

const (
	ContentBox BoxSizing = iota
	BorderBox
)

// Overflow is the `overflow-x` / `overflow-y` property.
type Overflow uint8

const (
	OverflowVisible Overflow = iota
	OverflowHidden
	OverflowScroll
	OverflowAuto
)

// IsScrollable reports whether the axis can receive scroll events.
func (o Overflow) IsScrollable() bool { return o == OverflowScroll || o == OverflowAuto }

// Clips reports whether content outside the padding box is hidden.
func (o Overflow) Clips() bool { return o != OverflowVisible }

// FlexDirection is the `flex-direction` property.
type FlexDirection uint8

const (
	FlexRow FlexDirection = iota
	FlexRowReverse
	FlexColumn
	FlexColumnReverse
)

// IsRow reports whether the main axis is horizontal.
func (f FlexDirection) IsRow() bool { return f == FlexRow || f == FlexRowReverse }

// IsReverse reports whether items are laid out from the main-end edge.
func (f FlexDirection) IsReverse() bool { return f == FlexRowReverse || f == FlexColumnReverse }

// FlexWrap is the `flex-wrap` property.
type FlexWrap uint8

const (
	NoWrap FlexWrap = iota
	Wrap
	WrapReverse
)

// JustifyContent is the `justify-content` property.
type JustifyContent uint8

const (
	JustifyFlexStart JustifyContent = iota
	JustifyFlexEnd
	JustifyCenter
	JustifySpaceBetween
	JustifySpaceAround
	JustifySpaceEvenly
)

// AlignItems is the `align-items` property. The initial value is stretch.
type AlignItems uint8

const (
	AlignStretch AlignItems = iota
	AlignFlexStart
	AlignFlexEnd
	AlignCenter
	AlignBaseline
)

// AlignSelf is the `align-self` property; auto defers to the container's align-items.
type AlignSelf uint8

const (
	AlignSelfAuto AlignSelf = iota
	AlignSelfStretch
	AlignSelfFlexStart
	AlignSelfFlexEnd
	AlignSelfCenter
	AlignSelfBaseline
)

// Resolve returns the effective alignment given the container's align-items.
func (a AlignSelf) Resolve(container AlignItems) AlignItems {
	switch a {
	case AlignSelfStretch:
		return AlignStretch
	case AlignSelfFlexStart:
		return AlignFlexStart
	case AlignSelfFlexEnd:
		return AlignFlexEnd
	case AlignSelfCenter:
		return AlignCenter
	case AlignSelfBaseline:
		return AlignBaseline
	}
	return container
}

// AlignContent is the `align-content` property. The initial value is stretch.
type AlignContent uint8

const (
	AlignContentStretch AlignContent = iota
	AlignContentFlexStart
	AlignContentFlexEnd
	AlignContentCenter
	AlignContentSpaceBetween
	AlignContentSpaceAround
	AlignContentSpaceEvenly
)

// TextAlign is the `text-align` property.
type TextAlign uint8

const (
	TextAlignLeft TextAlign = iota
	TextAlignCenter
	TextAlignRight
	TextAlignJustify
)

// Visibility is the `visibility` property.
type Visibility uint8

const (
	Visible Visibility = iota
	Hidden
	Collapse
)

// TableLayout is the `table-layout` property.
type TableLayout uint8

const (
	TableLayoutAuto TableLayout = iota
	TableLayoutFixed
)
