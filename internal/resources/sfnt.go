// internal/resources/sfnt.go
package resources

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/language"
)

// SfntFont implements FontImpl over a parsed TrueType/OpenType face.
type SfntFont struct {
	mu    sync.Mutex
	f     *sfnt.Font
	buf   sfnt.Buffer
	upem  fixed.Int26_6
	units float64
	space float64
	m     FontMetrics
}

// ParseSfnt parses font file bytes.
func ParseSfnt(data []byte) (*SfntFont, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	s := &SfntFont{f: f, units: float64(f.UnitsPerEm())}
	// Requesting metrics at ppem == units-per-em yields values in font units.
	s.upem = fixed.I(int(f.UnitsPerEm()))
	fm, err := f.Metrics(&s.buf, s.upem, font.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("read font metrics: %w", err)
	}
	s.m = FontMetrics{
		UnitsPerEm: s.units,
		Ascender:   float64(fm.Ascent.Round()),
		Descender:  -float64(fm.Descent.Round()),
		LineGap:    float64((fm.Height - fm.Ascent - fm.Descent).Round()),
	}
	if s.m.LineGap < 0 {
		s.m.LineGap = 0
	}
	if g, ok := s.LookupGlyphIndex(' '); ok {
		s.space = s.HorizontalAdvance(g)
	}
	return s, nil
}

// GoRegular returns the built-in Go Regular face.
func GoRegular() (*SfntFont, error) { return ParseSfnt(goregular.TTF) }

func (s *SfntFont) SpaceWidth() float64  { return s.space }
func (s *SfntFont) Metrics() FontMetrics { return s.m }

func (s *SfntFont) HorizontalAdvance(glyph uint32) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	adv, err := s.f.GlyphAdvance(&s.buf, sfnt.GlyphIndex(glyph), s.upem, font.HintingNone)
	if err != nil {
		return 0
	}
	return float64(adv.Round())
}

func (s *SfntFont) GlyphSize(glyph uint32) (float64, float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, _, err := s.f.GlyphBounds(&s.buf, sfnt.GlyphIndex(glyph), s.upem, font.HintingNone)
	if err != nil {
		return 0, 0, false
	}
	return float64((b.Max.X - b.Min.X).Round()), float64((b.Max.Y - b.Min.Y).Round()), true
}

func (s *SfntFont) LookupGlyphIndex(r rune) (uint32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.f.GlyphIndex(&s.buf, r)
	if err != nil || g == 0 {
		return 0, false
	}
	return uint32(g), true
}

// Shape maps codepoints to glyphs and applies pair kerning when the face has it.
func (s *SfntFont) Shape(text []rune, script language.Script, lang language.Tag) ShapedBuffer {
	out := shapeSimple(s, text)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 1; i < len(out.Glyphs); i++ {
		k, err := s.f.Kern(&s.buf, sfnt.GlyphIndex(out.Glyphs[i-1].Index), sfnt.GlyphIndex(out.Glyphs[i].Index), s.upem, font.HintingNone)
		if err != nil {
			if !errors.Is(err, sfnt.ErrNotFound) {
				break
			}
			continue
		}
		out.Glyphs[i-1].Advance += float64(k.Round())
	}
	return out
}

func goregularBytes() []byte { return goregular.TTF }
