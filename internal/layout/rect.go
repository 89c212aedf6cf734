// Package layout turns a styled DOM into positioned rectangles: formatting
// contexts, intrinsic sizes, block/inline/float/flex/table/replaced layout,
// incremental relayout, scrollable regions and rect hit-testing.
package layout

import (
	"math"

	"github.com/xkilldash9x/boxflow/api/schemas"
	"github.com/xkilldash9x/boxflow/internal/css"
	"github.com/xkilldash9x/boxflow/internal/style"
	"github.com/xkilldash9x/boxflow/internal/text"
)

type NodeID = schemas.NodeID

// PositionKind mirrors the computed `position` of a laid-out box.
type PositionKind uint8

const (
	PositionStatic PositionKind = iota
	PositionRelative
	PositionAbsolute
	PositionFixed
)

func (k PositionKind) String() string {
	return [...]string{"static", "relative", "absolute", "fixed"}[k]
}

// PositionInfo places a box. Origin is the absolute top-left of the border
// box; Static is where the box would sit in normal flow.
type PositionInfo struct {
	Kind   PositionKind
	Origin schemas.Point
	Static schemas.Point
}

// PositionedRectangle is the layout output for one node.
type PositionedRectangle struct {
	Position PositionInfo
	// Size is the border-box size.
	Size      schemas.Size
	Padding   schemas.Edges
	Border    schemas.Edges
	Margin    schemas.Edges
	BoxSizing css.BoxSizing
	OverflowX css.Overflow
	OverflowY css.Overflow
	// TextLayout is set for text nodes. Positions are relative to the border box origin.
	TextLayout *text.InlineTextLayout
}

// BorderBox returns the absolute border box.
func (r PositionedRectangle) BorderBox() schemas.Rect {
	return schemas.Rect{X: r.Position.Origin.X, Y: r.Position.Origin.Y, Width: r.Size.Width, Height: r.Size.Height}
}

// PaddingBox returns the absolute padding box.
func (r PositionedRectangle) PaddingBox() schemas.Rect { return r.BorderBox().ShrunkBy(r.Border) }

// ContentBox returns the absolute content box.
func (r PositionedRectangle) ContentBox() schemas.Rect { return r.PaddingBox().ShrunkBy(r.Padding) }

// MarginBox returns the absolute margin box.
func (r PositionedRectangle) MarginBox() schemas.Rect { return r.BorderBox().ExpandedBy(r.Margin) }

// translate moves the box by (dx, dy).
func (r *PositionedRectangle) translate(dx, dy float64) {
	r.Position.Origin = r.Position.Origin.Add(schemas.Point{X: dx, Y: dy})
	r.Position.Static = r.Position.Static.Add(schemas.Point{X: dx, Y: dy})
}

// -- Box model --

// boxModel is the resolved box model of a node for one containing block.
// Sizes are content-box; NaN means auto.
type boxModel struct {
	padding, border, margin         schemas.Edges
	autoMarginLeft, autoMarginRight bool
	autoMarginTop, autoMarginBottom bool
	width, height                   float64
	minW, maxW, minH, maxH          float64
	sizing                          css.BoxSizing
}

func (b boxModel) outerH() float64 {
	return b.padding.Horizontal() + b.border.Horizontal() + b.margin.Horizontal()
}

func (b boxModel) outerV() float64 {
	return b.padding.Vertical() + b.border.Vertical() + b.margin.Vertical()
}

func (b boxModel) clampW(w float64) float64 { return max(b.minW, min(b.maxW, w), 0) }
func (b boxModel) clampH(h float64) float64 { return max(b.minH, min(b.maxH, h), 0) }

// resolveBoxModel resolves a node's box model against the containing block
// size (NaN when indefinite). Percent paddings and margins refer to the
// containing block width as in CSS 2.2.
func resolveBoxModel(cs *style.ComputedStyle, cbWidth, cbHeight float64) boxModel {
	fs := cs.FontSize()
	edge := func(t css.PropertyType) float64 {
		v := cs.Length(t).Resolve(cbWidth, fs)
		if math.IsNaN(v) {
			return 0
		}
		return v
	}
	pos := func(t css.PropertyType) float64 { return max(edge(t), 0) }
	var b boxModel
	b.sizing = cs.BoxSizing()
	b.padding = schemas.Edges{
		Top: pos(css.PropPaddingTop), Right: pos(css.PropPaddingRight),
		Bottom: pos(css.PropPaddingBottom), Left: pos(css.PropPaddingLeft),
	}
	b.border = schemas.Edges{
		Top: pos(css.PropBorderTopWidth), Right: pos(css.PropBorderRightWidth),
		Bottom: pos(css.PropBorderBottomWidth), Left: pos(css.PropBorderLeftWidth),
	}
	b.margin = schemas.Edges{
		Top: edge(css.PropMarginTop), Right: edge(css.PropMarginRight),
		Bottom: edge(css.PropMarginBottom), Left: edge(css.PropMarginLeft),
	}
	b.autoMarginTop = cs.Length(css.PropMarginTop).IsAuto()
	b.autoMarginRight = cs.Length(css.PropMarginRight).IsAuto()
	b.autoMarginBottom = cs.Length(css.PropMarginBottom).IsAuto()
	b.autoMarginLeft = cs.Length(css.PropMarginLeft).IsAuto()

	pbH := b.padding.Horizontal() + b.border.Horizontal()
	pbV := b.padding.Vertical() + b.border.Vertical()
	toContent := func(v, pb float64) float64 {
		if math.IsNaN(v) || math.IsInf(v, 1) || b.sizing != css.BorderBox {
			return v
		}
		return max(v-pb, 0)
	}
	b.width = toContent(cs.Length(css.PropWidth).Resolve(cbWidth, fs), pbH)
	b.height = toContent(cs.Length(css.PropHeight).Resolve(cbHeight, fs), pbV)
	b.minW = toContent(cs.Length(css.PropMinWidth).ResolveOr(cbWidth, fs, 0), pbH)
	b.minH = toContent(cs.Length(css.PropMinHeight).ResolveOr(cbHeight, fs, 0), pbV)
	b.maxW = toContent(cs.Length(css.PropMaxWidth).ResolveOr(cbWidth, fs, math.Inf(1)), pbH)
	b.maxH = toContent(cs.Length(css.PropMaxHeight).ResolveOr(cbHeight, fs, math.Inf(1)), pbV)
	return b
}

// -- Margin collapsing --

// marginSet accumulates adjoining margins: the collapsed value is the largest
// positive plus the most negative.
type marginSet struct {
	pos, neg float64
}

func (m marginSet) add(v float64) marginSet {
	if v > 0 {
		m.pos = max(m.pos, v)
	} else {
		m.neg = min(m.neg, v)
	}
	return m
}

func (m marginSet) merge(o marginSet) marginSet {
	return marginSet{pos: max(m.pos, o.pos), neg: min(m.neg, o.neg)}
}

func (m marginSet) collapsed() float64 { return m.pos + m.neg }
