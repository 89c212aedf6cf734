// File: internal/style/computed.go
package style

import (
	"math"

	"github.com/xkilldash9x/boxflow/internal/css"
	"github.com/xkilldash9x/boxflow/internal/dom"
)

// ComputedStyle is the resolved value of every property for one node.
type ComputedStyle [css.PropertyCount]css.Property

// Get returns the computed property of type t.
func (c *ComputedStyle) Get(t css.PropertyType) css.Property { return c[t] }

func (c *ComputedStyle) Display() css.Display     { return css.Display(c[css.PropDisplay].Keyword) }
func (c *ComputedStyle) Position() css.Position   { return css.Position(c[css.PropPosition].Keyword) }
func (c *ComputedStyle) Float() css.Float         { return css.Float(c[css.PropFloat].Keyword) }
func (c *ComputedStyle) Clear() css.Clear         { return css.Clear(c[css.PropClear].Keyword) }
func (c *ComputedStyle) BoxSizing() css.BoxSizing { return css.BoxSizing(c[css.PropBoxSizing].Keyword) }
func (c *ComputedStyle) OverflowX() css.Overflow  { return css.Overflow(c[css.PropOverflowX].Keyword) }
func (c *ComputedStyle) OverflowY() css.Overflow  { return css.Overflow(c[css.PropOverflowY].Keyword) }
func (c *ComputedStyle) FlexDirection() css.FlexDirection {
	return css.FlexDirection(c[css.PropFlexDirection].Keyword)
}
func (c *ComputedStyle) FlexWrap() css.FlexWrap { return css.FlexWrap(c[css.PropFlexWrap].Keyword) }
func (c *ComputedStyle) JustifyContent() css.JustifyContent {
	return css.JustifyContent(c[css.PropJustifyContent].Keyword)
}
func (c *ComputedStyle) AlignItems() css.AlignItems {
	return css.AlignItems(c[css.PropAlignItems].Keyword)
}
func (c *ComputedStyle) AlignSelf() css.AlignSelf { return css.AlignSelf(c[css.PropAlignSelf].Keyword) }
func (c *ComputedStyle) AlignContent() css.AlignContent {
	return css.AlignContent(c[css.PropAlignContent].Keyword)
}
func (c *ComputedStyle) TextAlign() css.TextAlign { return css.TextAlign(c[css.PropTextAlign].Keyword) }
func (c *ComputedStyle) Visibility() css.Visibility {
	return css.Visibility(c[css.PropVisibility].Keyword)
}
func (c *ComputedStyle) TableLayout() css.TableLayout {
	return css.TableLayout(c[css.PropTableLayout].Keyword)
}

func (c *ComputedStyle) FlexGrow() float64      { return c[css.PropFlexGrow].Number }
func (c *ComputedStyle) FlexShrink() float64    { return c[css.PropFlexShrink].Number }
func (c *ComputedStyle) Opacity() float64       { return c[css.PropOpacity].Number }
func (c *ComputedStyle) TabWidth() float64      { return c[css.PropTabWidth].Number }
func (c *ComputedStyle) FontFamily() string     { return c[css.PropFontFamily].Str }
func (c *ComputedStyle) Transform() css.Matrix  { return c[css.PropTransform].Matrix }
func (c *ComputedStyle) Background() css.ColorU { return c[css.PropBackgroundColor].Color }

// FontSize returns the computed font size in pixels.
func (c *ComputedStyle) FontSize() float64 { return c[css.PropFontSize].Length.Number }

// Length returns a length-valued property.
func (c *ComputedStyle) Length(t css.PropertyType) css.PixelValue { return c[t].Length }

// BorderSpacing returns the horizontal and vertical spacing.
func (c *ComputedStyle) BorderSpacing() (h, v css.PixelValue) {
	p := c[css.PropBorderSpacing]
	return p.Length, p.Length2
}

// TransformOrigin returns the x and y origin.
func (c *ComputedStyle) TransformOrigin() (x, y css.PixelValue) {
	p := c[css.PropTransformOrigin]
	return p.Length, p.Length2
}

// initialFor returns the initial value of t for a node, applying UA display defaults.
func initialFor(t css.PropertyType, n *dom.NodeData) css.Property {
	if t == css.PropDisplay {
		switch n.Type {
		case dom.NodeText, dom.NodeImage, dom.NodeIcon, dom.NodeBr:
			return css.DisplayProp(css.DisplayInline)
		case dom.NodeIframe:
			return css.DisplayProp(css.DisplayBlock)
		}
		return css.DisplayProp(css.DefaultDisplay(n.TagName()))
	}
	return css.Initial(t)
}

// computeAll resolves every node's style in document order so parents are
// computed before their children.
func (sd *StyledDom) computeAll() {
	out := make([]ComputedStyle, sd.Hierarchy.Len())
	for id := range sd.Hierarchy.Descendants(sd.Hierarchy.Root()) {
		var parent *ComputedStyle
		if p := sd.Hierarchy.Parent(id); p.IsSome() {
			parent = &out[p.Index()]
		}
		sd.computeNode(id, parent, &out[id.Index()])
	}
	sd.computed = out
}

func (sd *StyledDom) computeNode(id NodeID, parent *ComputedStyle, dst *ComputedStyle) {
	data := sd.NodeData.Get(id)
	state := sd.StyledNodes.At(id).State
	parentFontSize := css.BaseFontSize
	if parent != nil {
		parentFontSize = parent.FontSize()
	}
	for i := css.PropertyType(0); i < css.PropertyCount; i++ {
		p, ok := sd.Cache.Resolve(id, i, state)
		switch {
		case ok:
		case parent != nil && i.IsInherited():
			p = parent[i]
		default:
			p = initialFor(i, data)
		}
		dst[i] = p
	}
	// Font size is stored in pixels so children inherit an absolute value.
	fs := dst[css.PropFontSize].Length
	px := fs.Resolve(parentFontSize, parentFontSize)
	if fs.IsAuto() || math.IsNaN(px) || px < 0 {
		px = parentFontSize
	}
	dst[css.PropFontSize] = css.FontSize(css.Px(px))
}
