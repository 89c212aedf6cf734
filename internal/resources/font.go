// internal/resources/font.go

// Package resources provides font capabilities and the renderer-side cache of
// fonts, font instances, shaped strings and images.
package resources

import (
	"golang.org/x/text/language"
)

// FontMetrics are the vertical metrics of a face in font units.
type FontMetrics struct {
	UnitsPerEm float64
	Ascender   float64
	// Descender is negative below the baseline.
	Descender float64
	LineGap   float64
}

// Scale converts font units to pixels at the given font size.
func (m FontMetrics) Scale(fontSizePx float64) float64 {
	if m.UnitsPerEm == 0 {
		return 0
	}
	return fontSizePx / m.UnitsPerEm
}

// LineHeight is ascender - descender + line gap, in pixels.
func (m FontMetrics) LineHeight(fontSizePx float64) float64 {
	return (m.Ascender - m.Descender + m.LineGap) * m.Scale(fontSizePx)
}

// AscentPx is the ascender in pixels.
func (m FontMetrics) AscentPx(fontSizePx float64) float64 { return m.Ascender * m.Scale(fontSizePx) }

// GlyphInfo is one shaped glyph. Advances are in font units.
type GlyphInfo struct {
	Index   uint32
	Advance float64
	OffsetX float64
	OffsetY float64
	// Cluster is the index of the first codepoint the glyph covers.
	Cluster int
}

// ShapedBuffer is the output of shaping a codepoint run.
type ShapedBuffer struct {
	Glyphs []GlyphInfo
}

// Advance sums the glyph advances in font units.
func (b ShapedBuffer) Advance() float64 {
	var a float64
	for _, g := range b.Glyphs {
		a += g.Advance
	}
	return a
}

// FontImpl is the capability the text pipeline needs from a font face.
// All values are in font units; callers scale with FontMetrics.Scale.
type FontImpl interface {
	SpaceWidth() float64
	HorizontalAdvance(glyph uint32) float64
	GlyphSize(glyph uint32) (width, height float64, ok bool)
	Shape(text []rune, script language.Script, lang language.Tag) ShapedBuffer
	LookupGlyphIndex(r rune) (uint32, bool)
	Metrics() FontMetrics
}

// shapeSimple maps codepoints one-to-one onto glyphs. It is the shaping used by
// fonts without a shaping engine.
func shapeSimple(f FontImpl, text []rune) ShapedBuffer {
	out := ShapedBuffer{Glyphs: make([]GlyphInfo, 0, len(text))}
	for i, r := range text {
		g, _ := f.LookupGlyphIndex(r)
		adv := f.HorizontalAdvance(g)
		if r == ' ' {
			adv = f.SpaceWidth()
		}
		out.Glyphs = append(out.Glyphs, GlyphInfo{Index: g, Advance: adv, Cluster: i})
	}
	return out
}

// -- Mock font --

// MockFont has fixed metrics and a constant advance for every glyph. It is
// used in tests and as a deterministic stand-in face.
type MockFont struct {
	UnitsPerEm   float64
	Ascender     float64
	Descender    float64
	LineGap      float64
	GlyphAdvance float64
	Space        float64
}

// NewMockFont returns a face with 1000 units per em, glyphs half an em wide
// and spaces a quarter em wide.
func NewMockFont() *MockFont {
	return &MockFont{UnitsPerEm: 1000, Ascender: 800, Descender: -200, GlyphAdvance: 500, Space: 250}
}

func (m *MockFont) SpaceWidth() float64                    { return m.Space }
func (m *MockFont) HorizontalAdvance(uint32) float64       { return m.GlyphAdvance }
func (m *MockFont) LookupGlyphIndex(r rune) (uint32, bool) { return uint32(r), true }
func (m *MockFont) GlyphSize(uint32) (float64, float64, bool) {
	return m.GlyphAdvance, m.Ascender - m.Descender, true
}
func (m *MockFont) Shape(text []rune, _ language.Script, _ language.Tag) ShapedBuffer {
	return shapeSimple(m, text)
}
func (m *MockFont) Metrics() FontMetrics {
	return FontMetrics{UnitsPerEm: m.UnitsPerEm, Ascender: m.Ascender, Descender: m.Descender, LineGap: m.LineGap}
}

// -- Fallback font --

// ZeroFont is used when a font cannot be found: spaces have no width and a
// glyph's advance is its index truncated to 16 bits.
type ZeroFont struct{}

func (ZeroFont) SpaceWidth() float64                       { return 0 }
func (ZeroFont) HorizontalAdvance(g uint32) float64        { return float64(uint16(g)) }
func (ZeroFont) LookupGlyphIndex(r rune) (uint32, bool)    { return uint32(r), false }
func (ZeroFont) GlyphSize(uint32) (float64, float64, bool) { return 0, 0, false }
func (z ZeroFont) Shape(text []rune, _ language.Script, _ language.Tag) ShapedBuffer {
	return shapeSimple(z, text)
}

// Metrics keeps UnitsPerEm so that scaling stays finite.
func (ZeroFont) Metrics() FontMetrics { return FontMetrics{UnitsPerEm: 1000} }
