package css

// DefaultDisplay returns the user-agent display for an element tag.
func DefaultDisplay(tag string) Display {
	switch tag {
	case "span", "a", "em", "strong", "b", "i", "u", "code", "small", "label", "img", "br", "icon", "text", "sub", "sup":
		return DisplayInline
	case "button", "input", "select", "textarea":
		return DisplayInlineBlock
	case "table":
		return DisplayTable
	case "thead":
		return DisplayTableHeaderGroup
	case "tfoot":
		return DisplayTableFooterGroup
	case "tbody":
		return DisplayTableRowGroup
	case "tr":
		return DisplayTableRow
	case "td", "th":
		return DisplayTableCell
	case "col":
		return DisplayTableColumn
	case "colgroup":
		return DisplayTableColumnGroup
	case "caption":
		return DisplayTableCaption
	case "li":
		return DisplayListItem
	case "head", "script", "style", "title", "meta", "link":
		return DisplayNone
	}
	return DisplayBlock
}
