// File: internal/css/values.go

// Package css holds typed, already-parsed CSS values.
//
// Nothing in this package reads CSS source text: callers construct values
// directly (Px(10), DisplayProp(DisplayFlex)) and the layout core consumes them.
package css

import (
	"fmt"
	"math"
)

// -- Lengths --

// Metric is the unit of a PixelValue.
type Metric uint8

const (
	MetricPx Metric = iota
	MetricPt
	MetricEm
	MetricRem
	MetricPercent
	MetricAuto
)

// BaseFontSize is the root font size used for rem units and as the initial font-size.
const BaseFontSize = 16.0

// PixelValue is a length with a unit. The zero value is 0px.
type PixelValue struct {
	Metric Metric
	Number float64
}

// Px builds a pixel length.
func Px(v float64) PixelValue { return PixelValue{Metric: MetricPx, Number: v} }

// Pt builds a point length (1pt = 4/3 px).
func Pt(v float64) PixelValue { return PixelValue{Metric: MetricPt, Number: v} }

// Em builds a length relative to the element's font size.
func Em(v float64) PixelValue { return PixelValue{Metric: MetricEm, Number: v} }

// Rem builds a length relative to the root font size.
func Rem(v float64) PixelValue { return PixelValue{Metric: MetricRem, Number: v} }

// Percent builds a percentage of the reference length.
func Percent(v float64) PixelValue { return PixelValue{Metric: MetricPercent, Number: v} }

// Auto is the `auto` keyword for lengths.
var Auto = PixelValue{Metric: MetricAuto}

// IsAuto reports whether the value is `auto`.
func (p PixelValue) IsAuto() bool { return p.Metric == MetricAuto }

// IsPercent reports whether the value is a percentage.
func (p PixelValue) IsPercent() bool { return p.Metric == MetricPercent }

// Resolve converts the value to pixels. reference is the length percentages refer
// to (NaN when unknown); fontSize is the element's computed font size. auto and
// percentages of an unknown reference resolve to NaN.
func (p PixelValue) Resolve(reference, fontSize float64) float64 {
	switch p.Metric {
	case MetricPx:
		return p.Number
	case MetricPt:
		return p.Number * 4 / 3
	case MetricEm:
		return p.Number * fontSize
	case MetricRem:
		return p.Number * BaseFontSize
	case MetricPercent:
		if math.IsNaN(reference) {
			return math.NaN()
		}
		return p.Number / 100 * reference
	default:
		return math.NaN()
	}
}

// ResolveOr is Resolve with a fallback for auto or unresolvable values.
func (p PixelValue) ResolveOr(reference, fontSize, fallback float64) float64 {
	v := p.Resolve(reference, fontSize)
	if math.IsNaN(v) {
		return fallback
	}
	return v
}

func (p PixelValue) String() string {
	switch p.Metric {
	case MetricPx:
		return fmt.Sprintf("%gpx", p.Number)
	case MetricPt:
		return fmt.Sprintf("%gpt", p.Number)
	case MetricEm:
		return fmt.Sprintf("%gem", p.Number)
	case MetricRem:
		return fmt.Sprintf("%grem", p.Number)
	case MetricPercent:
		return fmt.Sprintf("%g%%", p.Number)
	default:
		return "auto"
	}
}

// -- Colors --

// ColorU is an 8-bit RGBA color.
type ColorU struct {
	R, G, B, A uint8
}

var (
	Transparent = ColorU{}
	Black       = ColorU{A: 255}
	White       = ColorU{R: 255, G: 255, B: 255, A: 255}
	Red         = ColorU{R: 255, A: 255}
)

func (c ColorU) String() string { return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A) }

// -- 2D Transforms --

// Matrix is a 2D affine transformation.
// [ a c e ]
// [ b d f ]
// [ 0 0 1 ]
type Matrix struct {
	A, B, C, D, E, F float64
}

// Identity returns the matrix that leaves points unchanged.
func Identity() Matrix { return Matrix{A: 1, D: 1} }

// IsIdentity reports whether m is the identity.
func (m Matrix) IsIdentity() bool { return m == Identity() }

// Multiply combines two matrices (m * o). Order matters.
func (m Matrix) Multiply(o Matrix) Matrix {
	return Matrix{
		A: m.A*o.A + m.C*o.B,
		B: m.B*o.A + m.D*o.B,
		C: m.A*o.C + m.C*o.D,
		D: m.B*o.C + m.D*o.D,
		E: m.A*o.E + m.C*o.F + m.E,
		F: m.B*o.E + m.D*o.F + m.F,
	}
}

// Apply transforms the point (x, y).
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m.A*x + m.C*y + m.E, m.B*x + m.D*y + m.F
}

// Inverse returns the inverse matrix, or an error when the determinant is zero.
func (m Matrix) Inverse() (Matrix, error) {
	det := m.A*m.D - m.B*m.C
	if det == 0 {
		return Matrix{}, fmt.Errorf("matrix is not invertible")
	}
	inv := 1.0 / det
	return Matrix{
		A: m.D * inv,
		B: -m.B * inv,
		C: -m.C * inv,
		D: m.A * inv,
		E: (m.C*m.F - m.D*m.E) * inv,
		F: (m.B*m.E - m.A*m.F) * inv,
	}, nil
}

// Translate creates a translation matrix.
func Translate(tx, ty float64) Matrix { return Matrix{A: 1, D: 1, E: tx, F: ty} }

// Scale creates a scaling matrix.
func Scale(sx, sy float64) Matrix { return Matrix{A: sx, D: sy} }

// Rotate creates a rotation matrix. Angle is in radians.
func Rotate(angle float64) Matrix {
	cos, sin := math.Cos(angle), math.Sin(angle)
	return Matrix{A: cos, B: sin, C: -sin, D: cos}
}

// Skew creates a skewing matrix. Angles are in radians.
func Skew(ax, ay float64) Matrix {
	return Matrix{A: 1, B: math.Tan(ay), C: math.Tan(ax), D: 1}
}
