// internal/text/shape.go
package text

import (
	"unicode"

	"golang.org/x/text/language"

	"github.com/xkilldash9x/boxflow/internal/resources"
)

// ShapedWord holds the glyphs of one word. Cluster values are byte offsets
// into Words.Text.
type ShapedWord struct {
	Glyphs []resources.GlyphInfo
	// Advance is the sum of glyph advances in font units.
	Advance float64
}

// ShapedWords runs parallel to Words.Items. Non-word items carry no glyphs.
type ShapedWords struct {
	Items        []ShapedWord
	SpaceAdvance float64
	Metrics      resources.FontMetrics
	// LongestWord is the largest word advance in font units.
	LongestWord float64
}

// ShapeOption configures ShapeWords.
type ShapeOption func(*shapeConfig)

type shapeConfig struct {
	lang   language.Tag
	cache  *resources.RendererResources
	family string
}

// WithLanguage sets the language passed to the shaper.
func WithLanguage(tag language.Tag) ShapeOption {
	return func(c *shapeConfig) { c.lang = tag }
}

// WithShapeCache memoizes shaped words in the renderer resources. family must
// name the face passed to ShapeWords, not a font-family list.
func WithShapeCache(r *resources.RendererResources, family string) ShapeOption {
	return func(c *shapeConfig) {
		c.cache = r
		c.family = family
	}
}

// ShapeWords shapes every word of words with font.
func ShapeWords(words *Words, font resources.FontImpl, opts ...ShapeOption) *ShapedWords {
	cfg := shapeConfig{lang: language.Und}
	for _, o := range opts {
		o(&cfg)
	}
	out := &ShapedWords{
		Items:        make([]ShapedWord, len(words.Items)),
		SpaceAdvance: font.SpaceWidth(),
		Metrics:      font.Metrics(),
	}
	for i, w := range words.Items {
		if w.Kind != KindWord {
			continue
		}
		s := words.Slice(i)
		runes := []rune(s)
		script := DetectScript(s)
		shape := func() resources.ShapedBuffer { return font.Shape(runes, script, cfg.lang) }
		var buf resources.ShapedBuffer
		if _, zero := font.(resources.ZeroFont); cfg.cache != nil && !zero {
			buf = cfg.cache.ShapeCached(cfg.family, runes, shape)
		} else {
			buf = shape()
		}

		// rune index -> byte offset in the source text
		offsets := make([]int, 0, len(runes)+1)
		for b := range s {
			offsets = append(offsets, w.Start+b)
		}
		glyphs := make([]resources.GlyphInfo, len(buf.Glyphs))
		copy(glyphs, buf.Glyphs)
		for gi := range glyphs {
			c := glyphs[gi].Cluster
			if c >= 0 && c < len(offsets) {
				glyphs[gi].Cluster = offsets[c]
			} else {
				glyphs[gi].Cluster = w.Start
			}
		}
		adv := buf.Advance()
		out.Items[i] = ShapedWord{Glyphs: glyphs, Advance: adv}
		out.LongestWord = max(out.LongestWord, adv)
	}
	return out
}

var scriptTables = []struct {
	table *unicode.RangeTable
	code  string
}{
	{unicode.Latin, "Latn"},
	{unicode.Greek, "Grek"},
	{unicode.Cyrillic, "Cyrl"},
	{unicode.Arabic, "Arab"},
	{unicode.Hebrew, "Hebr"},
	{unicode.Devanagari, "Deva"},
	{unicode.Thai, "Thai"},
	{unicode.Hangul, "Hang"},
	{unicode.Hiragana, "Hira"},
	{unicode.Katakana, "Kana"},
	{unicode.Han, "Hani"},
}

// DetectScript returns the script of the first letter in s that belongs to a
// known script, or Zyyy (common) when none does.
func DetectScript(s string) language.Script {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		for _, st := range scriptTables {
			if unicode.Is(st.table, r) {
				return language.MustParseScript(st.code)
			}
		}
	}
	return language.MustParseScript("Zyyy")
}
