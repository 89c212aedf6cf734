// internal/layout/fonts.go
package layout

import (
	"math"

	"github.com/xkilldash9x/boxflow/internal/css"
	"github.com/xkilldash9x/boxflow/internal/resources"
	"github.com/xkilldash9x/boxflow/internal/style"
	"github.com/xkilldash9x/boxflow/internal/text"
)

// FontSource resolves a font family to a face. *resources.RendererResources
// implements it.
type FontSource interface {
	Font(family string) (resources.FontImpl, bool)
}

// StaticFonts serves the same face for every family.
type StaticFonts struct {
	Face resources.FontImpl
}

func (s StaticFonts) Font(string) (resources.FontImpl, bool) { return s.Face, s.Face != nil }

// textRun is the shaped content of one text node.
type textRun struct {
	words  text.Words
	shaped *text.ShapedWords
	opts   text.ResolvedOptions
	items  []text.Item
}

func (p *pass) font(family string) resources.FontImpl {
	f, _ := p.resolveFont(family)
	return f
}

// resolveFont picks the first loaded face of a font-family list and returns
// it with its family name. The name is empty when the zero-metric fallback
// is used.
func (p *pass) resolveFont(family string) (resources.FontImpl, string) {
	if p.fonts != nil {
		for _, name := range resources.FamilyNames(family) {
			if f, ok := p.fonts.Font(name); ok {
				return f, name
			}
		}
	}
	if !p.missingFonts[family] {
		if p.missingFonts == nil {
			p.missingFonts = map[string]bool{}
		}
		p.missingFonts[family] = true
		p.debugf("fonts", "font family %q not found, using zero metrics", family)
	}
	return resources.ZeroFont{}, ""
}

// textOptions resolves the text properties of a node.
func textOptions(cs *style.ComputedStyle) text.ResolvedOptions {
	fs := cs.FontSize()
	opts := text.ResolvedOptions{FontSizePx: fs}
	optional := func(t css.PropertyType) *float64 {
		v := cs.Length(t).Resolve(fs, fs)
		if math.IsNaN(v) {
			return nil
		}
		return &v
	}
	opts.LetterSpacing = optional(css.PropLetterSpacing)
	opts.WordSpacing = optional(css.PropWordSpacing)
	opts.LineHeight = optional(css.PropLineHeight)
	tw := cs.TabWidth()
	opts.TabWidth = &tw
	opts.Justify = justifyOf(cs.TextAlign())
	return opts
}

func justifyOf(a css.TextAlign) text.Justify {
	switch a {
	case css.TextAlignCenter:
		return text.JustifyCenter
	case css.TextAlignRight:
		return text.JustifyRight
	case css.TextAlignJustify:
		return text.JustifyFull
	}
	return text.JustifyLeft
}

// run splits and shapes a text node once per pass.
func (p *pass) run(id NodeID) *textRun {
	if r, ok := p.runs[id]; ok {
		return r
	}
	cs := p.sd.Computed(id)
	data := p.sd.NodeData.Get(id)
	face, name := p.resolveFont(cs.FontFamily())
	r := &textRun{words: text.SplitIntoWords(data.Text), opts: textOptions(cs)}
	shapeOpts := []text.ShapeOption{}
	// fallback shaping is never cached so a later font load takes effect
	if rr, ok := p.fonts.(*resources.RendererResources); ok && name != "" {
		shapeOpts = append(shapeOpts, text.WithShapeCache(rr, name))
	}
	r.shaped = text.ShapeWords(&r.words, face, shapeOpts...)
	r.items = text.Items(&r.words, r.shaped, r.opts)
	p.runs[id] = r
	return r
}

// fontMetrics returns ascent, descent and gap in pixels for a node's font.
func (p *pass) fontMetrics(cs *style.ComputedStyle) (asc, desc, gap float64) {
	m := p.font(cs.FontFamily()).Metrics()
	s := m.Scale(cs.FontSize())
	return m.Ascender * s, -m.Descender * s, m.LineGap * s
}
