// internal/text/layout.go
package text

import (
	"math"

	"github.com/xkilldash9x/boxflow/api/schemas"
)

// ItemKind is the line-breaking class of an Item.
type ItemKind uint8

const (
	ItemWord ItemKind = iota
	ItemSpace
	ItemTab
	ItemReturn
	// ItemAtomic is an inline-level box that is placed like a word.
	ItemAtomic
)

// Item is one unit of inline content. Widths and metrics are in pixels;
// Descent is positive below the baseline.
type Item struct {
	Kind    ItemKind
	Width   float64
	Ascent  float64
	Descent float64
	LineGap float64
	// Spaces is the number of space characters in a space item. Justification
	// distributes slack per space.
	Spaces int
	// Owner and Index let callers map items back to their source.
	Owner int
	Index int
}

// Justify is the horizontal alignment of lines.
type Justify uint8

const (
	JustifyLeft Justify = iota
	JustifyCenter
	JustifyRight
	JustifyFull
)

// ExclusionSide tells the breaker which side of a line a hole occupies.
type ExclusionSide uint8

const (
	// SideBoth places content on whichever side of the hole has more room.
	SideBoth ExclusionSide = iota
	SideLeft
	SideRight
)

// Hole is an area, in layout-relative coordinates, that lines flow around.
type Hole struct {
	Rect schemas.Rect
	Side ExclusionSide
}

// Options control line breaking. Nil pointers mean unbounded or font default.
type Options struct {
	MaxWidth  *float64
	MaxHeight *float64
	// LineHeight overrides the line height computed from item metrics.
	LineHeight *float64
	Justify    Justify
	Holes      []Hole
	// Default metrics for empty lines.
	Ascent  float64
	Descent float64
	LineGap float64
}

// Line is one laid-out line. Items [Start, End) belong to it.
type Line struct {
	Start, End int
	Bounds     schemas.Rect
	Baseline   float64
	// EndsInReturn is set when a hard break terminated the line.
	EndsInReturn bool
}

// Layout is the result of breaking items into lines. Positions runs parallel
// to the input items; items on dropped lines have empty rects.
type Layout struct {
	Lines       []Line
	Positions   []schemas.Rect
	ContentSize schemas.Size
}

func (o Options) defaultLineHeight() float64 {
	if o.LineHeight != nil {
		return *o.LineHeight
	}
	return o.Ascent + o.Descent + o.LineGap
}

// lineSpan returns the usable horizontal range at [y, y+h).
func (o Options) lineSpan(y, h float64) (left, right float64) {
	left, right = 0, math.Inf(1)
	if o.MaxWidth != nil {
		right = *o.MaxWidth
	}
	for _, hole := range o.Holes {
		r := hole.Rect
		if !r.OverlapsVertically(y, y+h) || r.Width <= 0 {
			continue
		}
		side := hole.Side
		if side == SideBoth {
			if r.X-left >= right-r.MaxX() {
				side = SideRight
			} else {
				side = SideLeft
			}
		}
		switch side {
		case SideLeft:
			left = max(left, r.MaxX())
		case SideRight:
			right = min(right, r.X)
		}
	}
	return left, max(left, right)
}

// nextHoleBottom is the smallest hole bottom below y among holes overlapping
// [y, y+h). ok is false when none overlaps.
func (o Options) nextHoleBottom(y, h float64) (bottom float64, ok bool) {
	bottom = math.Inf(1)
	for _, hole := range o.Holes {
		r := hole.Rect
		if r.OverlapsVertically(y, y+h) && r.MaxY() > y {
			bottom = min(bottom, r.MaxY())
			ok = true
		}
	}
	return bottom, ok
}

type lineBuilder struct {
	start    int
	y        float64
	left     float64
	right    float64
	x        float64
	used     float64
	hasWords bool
	ascent   float64
	descent  float64
	gap      float64
}

// BreakLines places items on lines of at most Options.MaxWidth, flowing
// around holes. A zero max width produces no lines; empty input produces one
// empty line.
func BreakLines(items []Item, opts Options) Layout {
	out := Layout{Positions: make([]schemas.Rect, len(items))}
	if opts.MaxWidth != nil && *opts.MaxWidth <= 0 {
		return out
	}
	defaultH := opts.defaultLineHeight()

	widest := widestWord(items)

	var lb lineBuilder
	// begin opens a line at y, moving it below holes while the free span is
	// narrower than the widest word.
	begin := func(start int, y float64) {
		l, r := opts.lineSpan(y, defaultH)
		for r-l < widest {
			bottom, ok := opts.nextHoleBottom(y, defaultH)
			if !ok {
				break
			}
			y = bottom
			l, r = opts.lineSpan(y, defaultH)
		}
		lb = lineBuilder{start: start, y: y, left: l, right: r}
	}
	finish := func(end int, hard bool) {
		asc, desc, gap := lb.ascent, lb.descent, lb.gap
		if asc == 0 && desc == 0 {
			asc, desc, gap = opts.Ascent, opts.Descent, opts.LineGap
		}
		h := asc + desc + gap
		if opts.LineHeight != nil {
			h = *opts.LineHeight
		}
		// half-leading splits the gap above and below the glyphs
		baseline := lb.y + (h-(asc+desc))/2 + asc
		out.Lines = append(out.Lines, Line{
			Start:        lb.start,
			End:          end,
			Bounds:       schemas.NewRect(lb.left, lb.y, lb.used, h),
			Baseline:     baseline,
			EndsInReturn: hard,
		})
		begin(end, lb.y+h)
	}
	begin(0, 0)

	for i, it := range items {
		switch it.Kind {
		case ItemReturn:
			out.Positions[i] = schemas.NewRect(lb.left+lb.x, lb.y, 0, 0)
			finish(i+1, true)
			continue
		case ItemSpace, ItemTab:
			w := it.Width
			// a soft-wrapped line does not start with white space
			if !lb.hasWords && len(out.Lines) > 0 && !out.Lines[len(out.Lines)-1].EndsInReturn {
				w = 0
			}
			out.Positions[i] = schemas.NewRect(lb.left+lb.x, lb.y, w, 0)
			lb.x += w
			continue
		}

		if lb.hasWords && lb.left+lb.x+it.Width > lb.right {
			finish(i, false)
		}
		for !lb.hasWords && lb.left+lb.x+it.Width > lb.right {
			bottom, ok := opts.nextHoleBottom(lb.y, defaultH)
			if !ok {
				break
			}
			begin(lb.start, bottom)
		}
		out.Positions[i] = schemas.NewRect(lb.left+lb.x, lb.y, it.Width, it.Ascent+it.Descent)
		lb.x += it.Width
		lb.used = lb.x
		lb.hasWords = true
		lb.ascent = max(lb.ascent, it.Ascent)
		lb.descent = max(lb.descent, it.Descent)
		lb.gap = max(lb.gap, it.LineGap)
	}
	if lb.start < len(items) || len(out.Lines) == 0 || out.Lines[len(out.Lines)-1].EndsInReturn {
		finish(len(items), false)
	}

	out.align(items, opts)
	out.clip(opts)
	return out
}

func widestWord(items []Item) float64 {
	var w float64
	for _, it := range items {
		if it.Kind == ItemWord || it.Kind == ItemAtomic {
			w = max(w, it.Width)
		}
	}
	return w
}

// align shifts items horizontally and vertically within their line.
func (l *Layout) align(items []Item, opts Options) {
	for li, line := range l.Lines {
		avail := math.Inf(1)
		if opts.MaxWidth != nil {
			_, right := opts.lineSpan(line.Bounds.Y, line.Bounds.Height)
			avail = right - line.Bounds.X
		}
		slack := avail - line.Bounds.Width
		var shift, perSpace float64
		if !math.IsInf(slack, 1) && slack > 0 {
			switch opts.Justify {
			case JustifyCenter:
				shift = slack / 2
			case JustifyRight:
				shift = slack
			case JustifyFull:
				if li != len(l.Lines)-1 && !line.EndsInReturn {
					if n := innerSpaces(items, line); n > 0 {
						perSpace = slack / float64(n)
					}
				}
			}
		}
		extra := 0.0
		for i := line.Start; i < line.End; i++ {
			p := &l.Positions[i]
			p.X += shift + extra
			if items[i].Kind == ItemWord || items[i].Kind == ItemAtomic {
				p.Y = line.Baseline - items[i].Ascent
			} else {
				p.Y = line.Bounds.Y
			}
			if perSpace > 0 && items[i].Kind == ItemSpace && i > line.Start && i < lastWord(items, line) {
				add := perSpace * float64(max(items[i].Spaces, 1))
				p.Width += add
				extra += add
			}
		}
		if perSpace > 0 {
			l.Lines[li].Bounds.Width += extra
		}
		l.Lines[li].Bounds.X += shift
	}
}

func lastWord(items []Item, line Line) int {
	for i := line.End - 1; i >= line.Start; i-- {
		if items[i].Kind == ItemWord || items[i].Kind == ItemAtomic {
			return i
		}
	}
	return line.Start
}

func innerSpaces(items []Item, line Line) int {
	last := lastWord(items, line)
	n := 0
	for i := line.Start + 1; i < last; i++ {
		if items[i].Kind == ItemSpace {
			n += max(items[i].Spaces, 1)
		}
	}
	return n
}

// clip drops lines starting at or below MaxHeight and computes the content size.
func (l *Layout) clip(opts Options) {
	if opts.MaxHeight != nil {
		kept := l.Lines[:0]
		for _, line := range l.Lines {
			if line.Bounds.Y >= *opts.MaxHeight {
				for i := line.Start; i < line.End; i++ {
					l.Positions[i] = schemas.Rect{}
				}
				continue
			}
			kept = append(kept, line)
		}
		l.Lines = kept
	}
	var w, h float64
	for _, line := range l.Lines {
		w = max(w, line.Bounds.MaxX())
		h = max(h, line.Bounds.MaxY())
	}
	l.ContentSize = schemas.Size{Width: w, Height: h}
}

// ContentWidths returns the min-content width (widest unbreakable item) and
// the max-content width (widest hard-broken paragraph).
func ContentWidths(items []Item) (minContent, maxContent float64) {
	var run float64
	for _, it := range items {
		switch it.Kind {
		case ItemReturn:
			maxContent = max(maxContent, run)
			run = 0
		case ItemWord, ItemAtomic:
			minContent = max(minContent, it.Width)
			run += it.Width
		default:
			run += it.Width
		}
	}
	return minContent, max(maxContent, run)
}
