// internal/layout/flex_test.go
package layout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/boxflow/internal/css"
	"github.com/xkilldash9x/boxflow/internal/dom"
)

func flexBox(props ...css.Property) *dom.Dom {
	return dom.Div().WithStyle(append([]css.Property{css.DisplayProp(css.DisplayFlex)}, props...)...)
}

func sized(w, h float64, props ...css.Property) *dom.Dom {
	return dom.Div().WithStyle(append([]css.Property{css.Width(px(w)), css.Height(px(h))}, props...)...)
}

func TestFlex_GrowDistributesFreeSpace(t *testing.T) {
	d := flexBox(css.Width(px(300))).WithChildren(
		dom.Div().WithStyle(css.FlexGrow(1)),
		dom.Div().WithStyle(css.FlexGrow(2)),
		sized(50, 10),
	)
	r := compute(t, d, 400, 300)

	a, b, c := r.Rect(n(1)), r.Rect(n(2)), r.Rect(n(3))
	assert.InDelta(t, 83.33, a.Width, delta)
	assert.InDelta(t, 166.67, b.Width, delta)
	assert.InDelta(t, 300, a.Width+b.Width+c.Width, delta)
	assert.InDelta(t, a.MaxX(), b.X, delta)
	assert.InDelta(t, b.MaxX(), c.X, delta)

	assert.InDelta(t, 10, a.Height, delta, "auto cross size stretches to the line")
	assert.InDelta(t, 10, r.Rect(n(0)).Height, delta)
}

func TestFlex_ShrinkRespectsMinSize(t *testing.T) {
	t.Run("equal shrink", func(t *testing.T) {
		d := flexBox(css.Width(px(100))).WithChildren(sized(80, 10), sized(80, 10))
		r := compute(t, d, 400, 300)
		assert.InDelta(t, 50, r.Rect(n(1)).Width, delta)
		assert.InDelta(t, 50, r.Rect(n(2)).Width, delta)
	})

	t.Run("min-width freezes an item", func(t *testing.T) {
		d := flexBox(css.Width(px(100))).WithChildren(sized(80, 10, css.MinWidth(px(70))), sized(80, 10))
		r := compute(t, d, 400, 300)
		assert.InDelta(t, 70, r.Rect(n(1)).Width, delta)
		assert.InDelta(t, 30, r.Rect(n(2)).Width, delta)
	})
}

func TestFlex_JustifyContent(t *testing.T) {
	tests := []struct {
		name    string
		justify css.JustifyContent
		wantX   [2]float64
	}{
		{"flex-start", css.JustifyFlexStart, [2]float64{0, 50}},
		{"flex-end", css.JustifyFlexEnd, [2]float64{200, 250}},
		{"center", css.JustifyCenter, [2]float64{100, 150}},
		{"space-between", css.JustifySpaceBetween, [2]float64{0, 250}},
		{"space-around", css.JustifySpaceAround, [2]float64{50, 200}},
		{"space-evenly", css.JustifySpaceEvenly, [2]float64{66.67, 183.33}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := flexBox(css.Width(px(300)), css.JustifyContentProp(tt.justify)).WithChildren(sized(50, 10), sized(50, 10))
			r := compute(t, d, 400, 300)
			assert.InDelta(t, tt.wantX[0], r.Rect(n(1)).X, delta)
			assert.InDelta(t, tt.wantX[1], r.Rect(n(2)).X, delta)
		})
	}
}

func TestFlex_Column(t *testing.T) {
	d := flexBox(css.Width(px(300)), css.FlexDirectionProp(css.FlexColumn)).WithChildren(
		dom.Div().WithStyle(css.Height(px(20))),
		dom.Div().WithStyle(css.Height(px(30))),
	)
	r := compute(t, d, 400, 300)

	assert.InDelta(t, 0, r.Rect(n(1)).Y, delta)
	assert.InDelta(t, 20, r.Rect(n(2)).Y, delta)
	assert.InDelta(t, 300, r.Rect(n(1)).Width, delta, "items stretch across the cross axis")
	assert.InDelta(t, 50, r.Rect(n(0)).Height, delta)
}

func TestFlex_ColumnReverse(t *testing.T) {
	d := flexBox(css.Height(px(100)), css.FlexDirectionProp(css.FlexColumnReverse)).WithChildren(
		dom.Div().WithStyle(css.Height(px(20))),
		dom.Div().WithStyle(css.Height(px(30))),
	)
	r := compute(t, d, 400, 300)
	assert.InDelta(t, 80, r.Rect(n(1)).Y, delta)
	assert.InDelta(t, 50, r.Rect(n(2)).Y, delta)
}

func TestFlex_WrapStartsNewLine(t *testing.T) {
	d := flexBox(css.Width(px(100)), css.FlexWrapProp(css.Wrap)).WithChildren(
		sized(40, 10), sized(40, 10), sized(40, 10),
	)
	r := compute(t, d, 400, 300)

	third := r.Rect(n(3))
	assert.InDelta(t, 0, third.X, delta)
	assert.InDelta(t, 10, third.Y, delta)
	assert.InDelta(t, 20, r.Rect(n(0)).Height, delta)
}

func TestFlex_AlignItems(t *testing.T) {
	tests := []struct {
		align css.AlignItems
		wantY float64
	}{
		{css.AlignFlexStart, 0},
		{css.AlignFlexEnd, 90},
		{css.AlignCenter, 45},
	}
	for _, tt := range tests {
		d := flexBox(css.Width(px(300)), css.Height(px(100)), css.AlignItemsProp(tt.align)).WithChild(sized(10, 10))
		r := compute(t, d, 400, 300)
		assert.InDelta(t, tt.wantY, r.Rect(n(1)).Y, delta, "align %d", tt.align)
	}
}
