// internal/css/property.go
package css

import "fmt"

// PropertyType identifies a CSS property.
type PropertyType uint8

const (
	PropDisplay PropertyType = iota
	PropPosition
	PropFloat
	PropClear
	PropBoxSizing
	PropWidth
	PropHeight
	PropMinWidth
	PropMinHeight
	PropMaxWidth
	PropMaxHeight
	PropPaddingTop
	PropPaddingRight
	PropPaddingBottom
	PropPaddingLeft
	PropMarginTop
	PropMarginRight
	PropMarginBottom
	PropMarginLeft
	PropBorderTopWidth
	PropBorderRightWidth
	PropBorderBottomWidth
	PropBorderLeftWidth
	PropTop
	PropRight
	PropBottom
	PropLeft
	PropOverflowX
	PropOverflowY
	PropFlexDirection
	PropFlexWrap
	PropFlexGrow
	PropFlexShrink
	PropFlexBasis
	PropJustifyContent
	PropAlignItems
	PropAlignSelf
	PropAlignContent
	PropRowGap
	PropColumnGap
	PropFontSize
	PropFontFamily
	PropLineHeight
	PropLetterSpacing
	PropWordSpacing
	PropTabWidth
	PropTextAlign
	PropVisibility
	PropTableLayout
	PropBorderSpacing
	PropBackgroundColor
	PropTextColor
	PropOpacity
	PropTransform
	PropTransformOrigin

	// PropertyCount is the number of property types.
	PropertyCount
)

var propertyNames = [PropertyCount]string{
	"display", "position", "float", "clear", "box-sizing",
	"width", "height", "min-width", "min-height", "max-width", "max-height",
	"padding-top", "padding-right", "padding-bottom", "padding-left",
	"margin-top", "margin-right", "margin-bottom", "margin-left",
	"border-top-width", "border-right-width", "border-bottom-width", "border-left-width",
	"top", "right", "bottom", "left",
	"overflow-x", "overflow-y",
	"flex-direction", "flex-wrap", "flex-grow", "flex-shrink", "flex-basis",
	"justify-content", "align-items", "align-self", "align-content", "row-gap", "column-gap",
	"font-size", "font-family", "line-height", "letter-spacing", "word-spacing", "tab-width", "text-align",
	"visibility", "table-layout", "border-spacing",
	"background-color", "color", "opacity", "transform", "transform-origin",
}

func (t PropertyType) String() string {
	if t < PropertyCount {
		return propertyNames[t]
	}
	return fmt.Sprintf("property(%d)", t)
}

// PropertyTypeByName looks a property up by its CSS name.
func PropertyTypeByName(name string) (PropertyType, bool) {
	for i, n := range propertyNames {
		if n == name {
			return PropertyType(i), true
		}
	}
	return 0, false
}

// Impact classifies how much layout work a change to a property invalidates.
type Impact uint8

const (
	// ImpactGPU changes only GPU-side values (transform, opacity).
	ImpactGPU Impact = iota
	// ImpactParentLayout repositions the node within its parent.
	ImpactParentLayout
	// ImpactIntrinsic changes the node's intrinsic sizes and its parent's subtree layout.
	ImpactIntrinsic
	// ImpactContext changes formatting contexts.
	ImpactContext
)

// Impact returns the invalidation class of t.
func (t PropertyType) Impact() Impact {
	switch t {
	case PropDisplay, PropPosition, PropFloat:
		return ImpactContext
	case PropMarginTop, PropMarginRight, PropMarginBottom, PropMarginLeft,
		PropTop, PropRight, PropBottom, PropLeft, PropClear,
		PropBackgroundColor, PropTextColor, PropTextAlign,
		PropJustifyContent, PropAlignItems, PropAlignSelf, PropAlignContent:
		return ImpactParentLayout
	case PropOpacity, PropTransform, PropTransformOrigin:
		return ImpactGPU
	}
	return ImpactIntrinsic
}

// IsInherited reports whether the property inherits from the parent by default.
func (t PropertyType) IsInherited() bool {
	switch t {
	case PropFontSize, PropFontFamily, PropLineHeight, PropLetterSpacing, PropWordSpacing,
		PropTabWidth, PropTextAlign, PropTextColor, PropVisibility, PropBorderSpacing:
		return true
	}
	return false
}

// DefaultFontFamily is the family used when none is specified.
const DefaultFontFamily = "sans-serif"

// Property is one typed property value. Which field is meaningful depends on
// Type; Property values are comparable with ==.
type Property struct {
	Type    PropertyType
	Keyword uint8
	Length  PixelValue
	// Length2 is the second component of two-valued properties
	// (border-spacing vertical, transform-origin y).
	Length2 PixelValue
	Number  float64
	Color   ColorU
	Str     string
	Matrix  Matrix
}

func (p Property) String() string {
	switch p.Type {
	case PropFontFamily:
		return fmt.Sprintf("%s: %q", p.Type, p.Str)
	case PropBackgroundColor, PropTextColor:
		return fmt.Sprintf("%s: %s", p.Type, p.Color)
	case PropFlexGrow, PropFlexShrink, PropOpacity, PropTabWidth:
		return fmt.Sprintf("%s: %g", p.Type, p.Number)
	case PropTransform:
		return fmt.Sprintf("%s: %+v", p.Type, p.Matrix)
	case PropBorderSpacing, PropTransformOrigin:
		return fmt.Sprintf("%s: %s %s", p.Type, p.Length, p.Length2)
	}
	if p.Type.isKeyword() {
		return fmt.Sprintf("%s: #%d", p.Type, p.Keyword)
	}
	return fmt.Sprintf("%s: %s", p.Type, p.Length)
}

func (t PropertyType) isKeyword() bool {
	switch t {
	case PropDisplay, PropPosition, PropFloat, PropClear, PropBoxSizing, PropOverflowX, PropOverflowY,
		PropFlexDirection, PropFlexWrap, PropJustifyContent, PropAlignItems, PropAlignSelf,
		PropAlignContent, PropTextAlign, PropVisibility, PropTableLayout:
		return true
	}
	return false
}

// Initial returns the CSS initial value of t.
func Initial(t PropertyType) Property {
	p := Property{Type: t}
	switch t {
	case PropWidth, PropHeight, PropMaxWidth, PropMaxHeight, PropTop, PropRight, PropBottom, PropLeft,
		PropFlexBasis, PropLineHeight:
		p.Length = Auto
	case PropFlexShrink, PropOpacity:
		p.Number = 1
	case PropTabWidth:
		p.Number = 8
	case PropFontSize:
		p.Length = Px(BaseFontSize)
	case PropFontFamily:
		p.Str = DefaultFontFamily
	case PropTextColor:
		p.Color = Black
	case PropTransform:
		p.Matrix = Identity()
	case PropTransformOrigin:
		p.Length, p.Length2 = Percent(50), Percent(50)
	}
	return p
}

// -- Constructors --

func keyword(t PropertyType, k uint8) Property     { return Property{Type: t, Keyword: k} }
func length(t PropertyType, v PixelValue) Property { return Property{Type: t, Length: v} }

func DisplayProp(d Display) Property             { return keyword(PropDisplay, uint8(d)) }
func PositionProp(p Position) Property           { return keyword(PropPosition, uint8(p)) }
func FloatProp(f Float) Property                 { return keyword(PropFloat, uint8(f)) }
func ClearProp(c Clear) Property                 { return keyword(PropClear, uint8(c)) }
func BoxSizingProp(b BoxSizing) Property         { return keyword(PropBoxSizing, uint8(b)) }
func OverflowXProp(o Overflow) Property          { return keyword(PropOverflowX, uint8(o)) }
func OverflowYProp(o Overflow) Property          { return keyword(PropOverflowY, uint8(o)) }
func FlexDirectionProp(f FlexDirection) Property { return keyword(PropFlexDirection, uint8(f)) }
func FlexWrapProp(f FlexWrap) Property           { return keyword(PropFlexWrap, uint8(f)) }
func JustifyContentProp(j JustifyContent) Property {
	return keyword(PropJustifyContent, uint8(j))
}
func AlignItemsProp(a AlignItems) Property     { return keyword(PropAlignItems, uint8(a)) }
func AlignSelfProp(a AlignSelf) Property       { return keyword(PropAlignSelf, uint8(a)) }
func AlignContentProp(a AlignContent) Property { return keyword(PropAlignContent, uint8(a)) }
func TextAlignProp(a TextAlign) Property       { return keyword(PropTextAlign, uint8(a)) }
func VisibilityProp(v Visibility) Property     { return keyword(PropVisibility, uint8(v)) }
func TableLayoutProp(l TableLayout) Property   { return keyword(PropTableLayout, uint8(l)) }

func Width(v PixelValue) Property         { return length(PropWidth, v) }
func Height(v PixelValue) Property        { return length(PropHeight, v) }
func MinWidth(v PixelValue) Property      { return length(PropMinWidth, v) }
func MinHeight(v PixelValue) Property     { return length(PropMinHeight, v) }
func MaxWidth(v PixelValue) Property      { return length(PropMaxWidth, v) }
func MaxHeight(v PixelValue) Property     { return length(PropMaxHeight, v) }
func Top(v PixelValue) Property           { return length(PropTop, v) }
func Right(v PixelValue) Property         { return length(PropRight, v) }
func Bottom(v PixelValue) Property        { return length(PropBottom, v) }
func Left(v PixelValue) Property          { return length(PropLeft, v) }
func FlexBasis(v PixelValue) Property     { return length(PropFlexBasis, v) }
func RowGap(v PixelValue) Property        { return length(PropRowGap, v) }
func ColumnGap(v PixelValue) Property     { return length(PropColumnGap, v) }
func FontSize(v PixelValue) Property      { return length(PropFontSize, v) }
func LineHeight(v PixelValue) Property    { return length(PropLineHeight, v) }
func LetterSpacing(v PixelValue) Property { return length(PropLetterSpacing, v) }
func WordSpacing(v PixelValue) Property   { return length(PropWordSpacing, v) }

func FlexGrow(v float64) Property   { return Property{Type: PropFlexGrow, Number: v} }
func FlexShrink(v float64) Property { return Property{Type: PropFlexShrink, Number: v} }
func Opacity(v float64) Property    { return Property{Type: PropOpacity, Number: v} }
func TabWidth(v float64) Property   { return Property{Type: PropTabWidth, Number: v} }

func FontFamily(name string) Property   { return Property{Type: PropFontFamily, Str: name} }
func BackgroundColor(c ColorU) Property { return Property{Type: PropBackgroundColor, Color: c} }
func TextColor(c ColorU) Property       { return Property{Type: PropTextColor, Color: c} }
func TransformProp(m Matrix) Property   { return Property{Type: PropTransform, Matrix: m} }
func TransformOrigin(x, y PixelValue) Property {
	return Property{Type: PropTransformOrigin, Length: x, Length2: y}
}
func BorderSpacing(h, v PixelValue) Property {
	return Property{Type: PropBorderSpacing, Length: h, Length2: v}
}

// Padding expands to the four padding longhands.
func Padding(top, right, bottom, left PixelValue) []Property {
	return []Property{
		length(PropPaddingTop, top), length(PropPaddingRight, right),
		length(PropPaddingBottom, bottom), length(PropPaddingLeft, left),
	}
}

// Margin expands to the four margin longhands.
func Margin(top, right, bottom, left PixelValue) []Property {
	return []Property{
		length(PropMarginTop, top), length(PropMarginRight, right),
		length(PropMarginBottom, bottom), length(PropMarginLeft, left),
	}
}

// BorderWidth expands to the four border width longhands.
func BorderWidth(top, right, bottom, left PixelValue) []Property {
	return []Property{
		length(PropBorderTopWidth, top), length(PropBorderRightWidth, right),
		length(PropBorderBottomWidth, bottom), length(PropBorderLeftWidth, left),
	}
}

// LengthProp builds any length-valued property by type.
func LengthProp(t PropertyType, v PixelValue) Property { return length(t, v) }
