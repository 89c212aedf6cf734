package text

import (
	"github.com/xkilldash9x/boxflow/api/schemas"
)

// ResolvedOptions are the text layout options of a single text node after
// style resolution. All lengths are pixels.
type ResolvedOptions struct {
	FontSizePx    float64
	MaxWidth      *float64
	MaxHeight     *float64
	LetterSpacing *float64
	WordSpacing   *float64
	LineHeight    *float64
	// TabWidth is measured in spaces.
	TabWidth *float64
	Justify  Justify
	Holes    []Hole
}

// WordPosition is the placed rect of one word, relative to the layout origin.
type WordPosition struct {
	Word int
	Rect schemas.Rect
}

// InlineTextLine is a line of a single text node. WordStart and WordEnd index
// Words.Items.
type InlineTextLine struct {
	WordStart, WordEnd int
	Bounds             schemas.Rect
}

// InlineTextLayout is the line-broken layout of one text node.
type InlineTextLayout struct {
	Lines       []InlineTextLine
	Positions   []WordPosition
	ContentSize schemas.Size
}

// Items converts shaped words into breakable items at the given options.
func Items(words *Words, shaped *ShapedWords, opts ResolvedOptions) []Item {
	m := shaped.Metrics
	scale := m.Scale(opts.FontSizePx)
	asc := m.Ascender * scale
	desc := -m.Descender * scale
	gap := m.LineGap * scale
	space := shaped.SpaceAdvance * scale
	letter := deref(opts.LetterSpacing)
	wordSp := deref(opts.WordSpacing)
	tab := 8.0
	if opts.TabWidth != nil {
		tab = *opts.TabWidth
	}

	items := make([]Item, len(words.Items))
	for i, w := range words.Items {
		it := Item{Ascent: asc, Descent: desc, LineGap: gap, Owner: 0, Index: i}
		switch w.Kind {
		case KindWord:
			sw := shaped.Items[i]
			it.Kind = ItemWord
			it.Width = sw.Advance*scale + letter*float64(len(sw.Glyphs))
		case KindSpace:
			n := len([]rune(words.Slice(i)))
			it.Kind = ItemSpace
			it.Spaces = n
			it.Width = float64(n) * (space + wordSp + letter)
		case KindTab:
			n := len(words.Slice(i))
			it.Kind = ItemTab
			it.Width = float64(n) * tab * space
		case KindReturn:
			it.Kind = ItemReturn
		}
		items[i] = it
	}
	return items
}

// LayoutWords breaks a single text node into lines. Positions cover word
// items only.
func LayoutWords(words *Words, shaped *ShapedWords, opts ResolvedOptions) InlineTextLayout {
	items := Items(words, shaped, opts)
	m := shaped.Metrics
	scale := m.Scale(opts.FontSizePx)
	l := BreakLines(items, Options{
		MaxWidth:   opts.MaxWidth,
		MaxHeight:  opts.MaxHeight,
		LineHeight: opts.LineHeight,
		Justify:    opts.Justify,
		Holes:      opts.Holes,
		Ascent:     m.Ascender * scale,
		Descent:    -m.Descender * scale,
		LineGap:    m.LineGap * scale,
	})

	out := InlineTextLayout{ContentSize: l.ContentSize}
	for _, line := range l.Lines {
		out.Lines = append(out.Lines, InlineTextLine{WordStart: line.Start, WordEnd: line.End, Bounds: line.Bounds})
		for i := line.Start; i < line.End; i++ {
			if words.Items[i].Kind == KindWord {
				out.Positions = append(out.Positions, WordPosition{Word: i, Rect: l.Positions[i]})
			}
		}
	}
	return out
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
