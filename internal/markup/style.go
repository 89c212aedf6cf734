// File: internal/markup/style.go
package markup

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xkilldash9x/boxflow/internal/css"
)

// keywords maps the accepted keyword values of each enumerated property.
var keywords = map[css.PropertyType]map[string]uint8{
	css.PropDisplay: displayKeywords(),
	css.PropPosition: {
		"static": uint8(css.PositionStatic), "relative": uint8(css.PositionRelative),
		"absolute": uint8(css.PositionAbsolute), "fixed": uint8(css.PositionFixed),
	},
	css.PropFloat: {"none": uint8(css.FloatNone), "left": uint8(css.FloatLeft), "right": uint8(css.FloatRight)},
	css.PropClear: {
		"none": uint8(css.ClearNone), "left": uint8(css.ClearLeft),
		"right": uint8(css.ClearRight), "both": uint8(css.ClearBoth),
	},
	css.PropBoxSizing: {"content-box": uint8(css.ContentBox), "border-box": uint8(css.BorderBox)},
	css.PropOverflowX: overflowKeywords,
	css.PropOverflowY: overflowKeywords,
	css.PropFlexDirection: {
		"row": uint8(css.FlexRow), "row-reverse": uint8(css.FlexRowReverse),
		"column": uint8(css.FlexColumn), "column-reverse": uint8(css.FlexColumnReverse),
	},
	css.PropFlexWrap: {"nowrap": uint8(css.NoWrap), "wrap": uint8(css.Wrap), "wrap-reverse": uint8(css.WrapReverse)},
	css.PropJustifyContent: {
		"flex-start": uint8(css.JustifyFlexStart), "flex-end": uint8(css.JustifyFlexEnd),
		"center": uint8(css.JustifyCenter), "space-between": uint8(css.JustifySpaceBetween),
		"space-around": uint8(css.JustifySpaceAround), "space-evenly": uint8(css.JustifySpaceEvenly),
	},
	css.PropAlignItems: {
		"stretch": uint8(css.AlignStretch), "flex-start": uint8(css.AlignFlexStart),
		"flex-end": uint8(css.AlignFlexEnd), "center": uint8(css.AlignCenter), "baseline": uint8(css.AlignBaseline),
	},
	css.PropAlignSelf: {
		"auto": uint8(css.AlignSelfAuto), "stretch": uint8(css.AlignSelfStretch),
		"flex-start": uint8(css.AlignSelfFlexStart), "flex-end": uint8(css.AlignSelfFlexEnd),
		"center": uint8(css.AlignSelfCenter), "baseline": uint8(css.AlignSelfBaseline),
	},
	css.PropAlignContent: {
		"stretch": uint8(css.AlignContentStretch), "flex-start": uint8(css.AlignContentFlexStart),
		"flex-end": uint8(css.AlignContentFlexEnd), "center": uint8(css.AlignContentCenter),
		"space-between": uint8(css.AlignContentSpaceBetween), "space-around": uint8(css.AlignContentSpaceAround),
		"space-evenly": uint8(css.AlignContentSpaceEvenly),
	},
	css.PropTextAlign: {
		"left": uint8(css.TextAlignLeft), "center": uint8(css.TextAlignCenter),
		"right": uint8(css.TextAlignRight), "justify": uint8(css.TextAlignJustify),
	},
	css.PropVisibility:  {"visible": uint8(css.Visible), "hidden": uint8(css.Hidden), "collapse": uint8(css.Collapse)},
	css.PropTableLayout: {"auto": uint8(css.TableLayoutAuto), "fixed": uint8(css.TableLayoutFixed)},
}

var overflowKeywords = map[string]uint8{
	"visible": uint8(css.OverflowVisible), "hidden": uint8(css.OverflowHidden),
	"scroll": uint8(css.OverflowScroll), "auto": uint8(css.OverflowAuto),
}

func displayKeywords() map[string]uint8 {
	out := map[string]uint8{}
	for d := css.DisplayInline; d <= css.DisplayNone; d++ {
		out[d.String()] = uint8(d)
	}
	return out
}

// boxShorthands expand to four longhands in top, right, bottom, left order.
var boxShorthands = map[string][4]css.PropertyType{
	"padding": {css.PropPaddingTop, css.PropPaddingRight, css.PropPaddingBottom, css.PropPaddingLeft},
	"margin":  {css.PropMarginTop, css.PropMarginRight, css.PropMarginBottom, css.PropMarginLeft},
	"border-width": {
		css.PropBorderTopWidth, css.PropBorderRightWidth, css.PropBorderBottomWidth, css.PropBorderLeftWidth,
	},
}

var namedColors = map[string]css.ColorU{
	"transparent": css.Transparent,
	"black":       css.Black,
	"white":       css.White,
	"red":         css.Red,
	"green":       {G: 128, A: 255},
	"lime":        {G: 255, A: 255},
	"blue":        {B: 255, A: 255},
	"yellow":      {R: 255, G: 255, A: 255},
	"gray":        {R: 128, G: 128, B: 128, A: 255},
	"grey":        {R: 128, G: 128, B: 128, A: 255},
	"silver":      {R: 192, G: 192, B: 192, A: 255},
	"orange":      {R: 255, G: 165, A: 255},
	"purple":      {R: 128, B: 128, A: 255},
	"navy":        {B: 128, A: 255},
	"teal":        {G: 128, B: 128, A: 255},
}

// ParseInlineStyle converts a style attribute into typed properties. Only a
// fixed set of properties and value forms is understood; every declaration
// that is not is reported in the returned errors and skipped.
func ParseInlineStyle(s string) ([]css.Property, []error) {
	var (
		props []css.Property
		errs  []error
	)
	for _, decl := range strings.Split(s, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			errs = append(errs, fmt.Errorf("declaration %q has no value", decl))
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "!important"))
		parsed, err := parseDeclaration(name, value)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		props = append(props, parsed...)
	}
	return props, errs
}

func parseDeclaration(name, value string) ([]css.Property, error) {
	if sides, ok := boxShorthands[name]; ok {
		return parseBoxShorthand(name, value, sides)
	}
	switch name {
	case "overflow":
		k, ok := overflowKeywords[strings.ToLower(value)]
		if !ok {
			return nil, fmt.Errorf("overflow: unknown keyword %q", value)
		}
		return []css.Property{
			css.OverflowXProp(css.Overflow(k)),
			css.OverflowYProp(css.Overflow(k)),
		}, nil
	case "font-family":
		return []css.Property{css.FontFamily(value)}, nil
	case "gap":
		v, err := parseLength(value)
		if err != nil {
			return nil, fmt.Errorf("gap: %w", err)
		}
		return []css.Property{css.RowGap(v), css.ColumnGap(v)}, nil
	}

	t, ok := css.PropertyTypeByName(name)
	if !ok {
		return nil, fmt.Errorf("unsupported property %q", name)
	}
	if table, ok := keywords[t]; ok {
		k, ok := table[strings.ToLower(value)]
		if !ok {
			return nil, fmt.Errorf("%s: unknown keyword %q", name, value)
		}
		return []css.Property{{Type: t, Keyword: k}}, nil
	}
	switch t {
	case css.PropFlexGrow, css.PropFlexShrink, css.PropOpacity, css.PropTabWidth:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a number", name, value)
		}
		return []css.Property{{Type: t, Number: v}}, nil
	case css.PropBackgroundColor, css.PropTextColor:
		c, err := parseColor(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return []css.Property{{Type: t, Color: c}}, nil
	case css.PropTransform, css.PropTransformOrigin, css.PropBorderSpacing:
		return nil, fmt.Errorf("unsupported property %q", name)
	}
	v, err := parseLength(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return []css.Property{css.LengthProp(t, v)}, nil
}

func parseBoxShorthand(name, value string, sides [4]css.PropertyType) ([]css.Property, error) {
	fields := strings.Fields(value)
	if len(fields) == 0 || len(fields) > 4 {
		return nil, fmt.Errorf("%s: expected one to four lengths, got %q", name, value)
	}
	vals := make([]css.PixelValue, len(fields))
	for i, f := range fields {
		v, err := parseLength(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		vals[i] = v
	}
	// top, right, bottom, left with the usual CSS fallbacks
	var top, right, bottom, left css.PixelValue
	switch len(vals) {
	case 1:
		top, right, bottom, left = vals[0], vals[0], vals[0], vals[0]
	case 2:
		top, right, bottom, left = vals[0], vals[1], vals[0], vals[1]
	case 3:
		top, right, bottom, left = vals[0], vals[1], vals[2], vals[1]
	case 4:
		top, right, bottom, left = vals[0], vals[1], vals[2], vals[3]
	}
	return []css.Property{
		css.LengthProp(sides[0], top),
		css.LengthProp(sides[1], right),
		css.LengthProp(sides[2], bottom),
		css.LengthProp(sides[3], left),
	}, nil
}

var lengthUnits = []struct {
	suffix string
	build  func(float64) css.PixelValue
}{
	{"rem", css.Rem},
	{"px", css.Px},
	{"pt", css.Pt},
	{"em", css.Em},
	{"%", css.Percent},
}

func parseLength(s string) (css.PixelValue, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "auto" {
		return css.Auto, nil
	}
	for _, u := range lengthUnits {
		if num, ok := strings.CutSuffix(s, u.suffix); ok {
			v, err := strconv.ParseFloat(num, 64)
			if err != nil {
				return css.PixelValue{}, fmt.Errorf("invalid length %q", s)
			}
			return u.build(v), nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v != 0 {
		return css.PixelValue{}, fmt.Errorf("invalid length %q", s)
	}
	return css.Px(0), nil
}

func parseColor(s string) (css.ColorU, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return css.ColorU{}, fmt.Errorf("unsupported color %q", s)
	}
	if len(hex) == 3 || len(hex) == 4 {
		var b strings.Builder
		for _, r := range hex {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		hex = b.String()
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return css.ColorU{}, fmt.Errorf("unsupported color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return css.ColorU{}, fmt.Errorf("unsupported color %q", s)
	}
	return css.ColorU{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
