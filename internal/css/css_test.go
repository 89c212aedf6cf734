// internal/css/css_test.go
package css_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/boxflow/internal/css"
)

func TestPixelValueResolve(t *testing.T) {
	tests := []struct {
		name      string
		value     css.PixelValue
		reference float64
		want      float64
	}{
		{"px", css.Px(12), 100, 12},
		{"pt", css.Pt(12), 100, 16},
		{"em uses the element font size", css.Em(2), 100, 40},
		{"rem uses the root font size", css.Rem(2), 100, 32},
		{"percent of reference", css.Percent(25), 200, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.value.Resolve(tt.reference, 20))
		})
	}

	t.Run("auto and unknown references are NaN", func(t *testing.T) {
		assert.True(t, math.IsNaN(css.Auto.Resolve(100, 16)))
		assert.True(t, math.IsNaN(css.Percent(50).Resolve(math.NaN(), 16)))
		assert.Equal(t, 7.0, css.Auto.ResolveOr(100, 16, 7))
		assert.Equal(t, 50.0, css.Percent(50).ResolveOr(100, 16, 7))
	})

	t.Run("zero value is 0px", func(t *testing.T) {
		var v css.PixelValue
		assert.Equal(t, css.Px(0), v)
		assert.Equal(t, "0px", v.String())
		assert.Equal(t, "auto", css.Auto.String())
		assert.Equal(t, "50%", css.Percent(50).String())
	})
}

func TestMatrix(t *testing.T) {
	approx := cmpopts.EquateApprox(0, 1e-9)

	t.Run("rotate then inverse is identity", func(t *testing.T) {
		m := css.Rotate(math.Pi / 3).Multiply(css.Translate(10, -4))
		inv, err := m.Inverse()
		require.NoError(t, err)
		if diff := cmp.Diff(css.Identity(), m.Multiply(inv), approx); diff != "" {
			t.Errorf("m * inverse(m) mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("apply", func(t *testing.T) {
		x, y := css.Translate(5, 6).Multiply(css.Scale(2, 3)).Apply(1, 1)
		assert.Equal(t, 7.0, x)
		assert.Equal(t, 9.0, y)

		x, y = css.Rotate(math.Pi/2).Apply(1, 0)
		if diff := cmp.Diff([]float64{0, 1}, []float64{x, y}, approx); diff != "" {
			t.Errorf("rotation mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("singular matrix", func(t *testing.T) {
		_, err := css.Scale(0, 1).Inverse()
		assert.Error(t, err)
		assert.True(t, css.Identity().IsIdentity())
		assert.False(t, css.Skew(0.1, 0).IsIdentity())
	})
}

func TestPropertyTypes(t *testing.T) {
	t.Run("names round trip", func(t *testing.T) {
		for p := css.PropertyType(0); p < css.PropertyCount; p++ {
			got, ok := css.PropertyTypeByName(p.String())
			require.True(t, ok, p.String())
			assert.Equal(t, p, got)
		}
		_, ok := css.PropertyTypeByName("grid-template")
		assert.False(t, ok)
	})

	t.Run("impact", func(t *testing.T) {
		assert.Equal(t, css.ImpactContext, css.PropFloat.Impact())
		assert.Equal(t, css.ImpactParentLayout, css.PropMarginTop.Impact())
		assert.Equal(t, css.ImpactIntrinsic, css.PropWidth.Impact())
		assert.Equal(t, css.ImpactIntrinsic, css.PropFontSize.Impact())
		assert.Equal(t, css.ImpactGPU, css.PropOpacity.Impact())
	})

	t.Run("initial values", func(t *testing.T) {
		assert.Equal(t, css.Auto, css.Initial(css.PropWidth).Length)
		assert.Equal(t, css.Px(0), css.Initial(css.PropPaddingLeft).Length)
		assert.Equal(t, css.DefaultFontFamily, css.Initial(css.PropFontFamily).Str)
		assert.Equal(t, 1.0, css.Initial(css.PropOpacity).Number)
		assert.True(t, css.Initial(css.PropTransform).Matrix.IsIdentity())
		assert.True(t, css.PropTextColor.IsInherited())
		assert.False(t, css.PropWidth.IsInherited())
	})
}

func TestCssPath(t *testing.T) {
	hover := css.Path(css.Class("menu"), css.Descendant(), css.Type("li"), css.Pseudo(css.PseudoHover))
	assert.Equal(t, css.StateHover, hover.TargetState())
	assert.Equal(t, ".menu li:hover", hover.String())

	// a state on an ancestor compound does not make the rule stateful
	ancestor := css.Path(css.Type("ul"), css.Pseudo(css.PseudoFocus), css.DirectChild(), css.Type("li"))
	assert.Equal(t, css.StateNormal, ancestor.TargetState())
	assert.Equal(t, "ul:focus > li", ancestor.String())

	sheet := (&css.Stylesheet{}).
		Add(css.Path(css.ID("main")), css.Width(css.Px(10))).
		Add(css.Path(css.Global()), css.Opacity(0.5))
	require.Len(t, sheet.Rules, 2)
	assert.Equal(t, "#main", sheet.Rules[0].Path.String())
}

func TestDefaultDisplay(t *testing.T) {
	assert.Equal(t, css.DisplayInline, css.DefaultDisplay("span"))
	assert.Equal(t, css.DisplayTableCell, css.DefaultDisplay("td"))
	assert.Equal(t, css.DisplayBlock, css.DefaultDisplay("section"))
	assert.True(t, css.DisplayInlineBlock.IsInlineLevel())
	assert.Equal(t, css.DisplayBlock, css.DisplayInline.Blockified())
	assert.Equal(t, "table-row-group", css.DisplayTableRowGroup.String())
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		prop css.Property
		want css.Property
	}{
		{"box-sizing", css.BoxSizingProp(css.BorderBox), css.Property{Type: css.PropBoxSizing, Keyword: uint8(css.BorderBox)}},
		{"align-self", css.AlignSelfProp(css.AlignSelfCenter), css.Property{Type: css.PropAlignSelf, Keyword: uint8(css.AlignSelfCenter)}},
		{"align-content", css.AlignContentProp(css.AlignContentSpaceBetween), css.Property{Type: css.PropAlignContent, Keyword: uint8(css.AlignContentSpaceBetween)}},
		{"min-height", css.MinHeight(css.Em(2)), css.Property{Type: css.PropMinHeight, Length: css.Em(2)}},
		{"flex-basis", css.FlexBasis(css.Percent(30)), css.Property{Type: css.PropFlexBasis, Length: css.Percent(30)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.prop)
		})
	}
	assert.Equal(t, "flex-basis: 30%", css.FlexBasis(css.Percent(30)).String())
}
