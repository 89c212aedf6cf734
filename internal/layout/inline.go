package layout

import (
	"math"
	"slices"

	"github.com/xkilldash9x/boxflow/api/schemas"
	"github.com/xkilldash9x/boxflow/internal/css"
	"github.com/xkilldash9x/boxflow/internal/dom"
	"github.com/xkilldash9x/boxflow/internal/text"
)

// inlineRun collects the items of consecutive inline-level siblings.
type inlineRun struct {
	items []text.Item
	texts []NodeID
	spans []NodeID
	brs   []NodeID
	atoms []NodeID
	// spaceOnly is set while the run holds nothing but collapsible white space.
	spaceOnly bool
}

// layoutInlineRun breaks the inline content of nodes into lines inside
// content, starting at y, and returns the height used. styleNode supplies
// alignment and line height; floats of bfc become line exclusions.
func (p *pass) layoutInlineRun(styleNode, bfc NodeID, nodes []NodeID, content schemas.Rect, y float64) float64 {
	run := &inlineRun{spaceOnly: true}
	for _, id := range nodes {
		p.collectInline(run, styleNode, bfc, id, content, y)
	}

	origin := schemas.Point{X: content.X, Y: y}
	if run.spaceOnly && len(run.items) > 0 {
		for _, id := range slices.Concat(run.texts, run.spans) {
			*p.rects.Get(id) = PositionedRectangle{
				Position:   PositionInfo{Origin: origin, Static: origin},
				TextLayout: &text.InlineTextLayout{},
			}
		}
		return 0
	}

	cs := p.sd.Computed(styleNode)
	asc, desc, gap := p.fontMetrics(cs)
	topts := textOptions(cs)
	width := content.Width
	l := text.BreakLines(run.items, text.Options{
		MaxWidth:   &width,
		LineHeight: topts.LineHeight,
		Justify:    topts.Justify,
		Holes:      p.holes(bfc, origin),
		Ascent:     asc,
		Descent:    desc,
		LineGap:    gap,
	})

	abs := func(r schemas.Rect) schemas.Rect { return r.Translate(origin.X, origin.Y) }
	lineOf := func(i int) (text.Line, bool) {
		for _, line := range l.Lines {
			if i >= line.Start && i < line.End {
				return line, true
			}
		}
		return text.Line{}, false
	}

	for _, id := range run.texts {
		p.placeText(id, run.items, l, abs, origin)
	}
	for _, id := range run.brs {
		r := schemas.Rect{X: origin.X, Y: origin.Y}
		for i, it := range run.items {
			if it.Kind == text.ItemReturn && NodeID(it.Owner) == id {
				r = abs(l.Positions[i])
				if line, ok := lineOf(i); ok {
					r.Height = line.Bounds.Height
				}
			}
		}
		*p.rects.Get(id) = PositionedRectangle{Position: PositionInfo{Origin: r.Origin(), Static: r.Origin()}, Size: r.Size()}
	}
	for i, it := range run.items {
		if it.Kind != text.ItemAtomic {
			continue
		}
		id := NodeID(it.Owner)
		bm := p.boxes[id]
		r := abs(l.Positions[i])
		if _, ok := lineOf(i); !ok {
			r = schemas.Rect{X: origin.X, Y: origin.Y + l.ContentSize.Height}
		}
		p.moveTo(id, schemas.Point{X: r.X + bm.margin.Left, Y: r.Y + bm.margin.Top})
	}
	for _, id := range slices.Backward(run.spans) {
		p.placeSpan(id, origin)
	}
	return l.ContentSize.Height
}

func (p *pass) collectInline(run *inlineRun, styleNode, bfc, id NodeID, content schemas.Rect, y float64) {
	fc := p.contexts.At(id)
	data := p.sd.NodeData.Get(id)
	switch {
	case fc.Kind == ContextNone:
		p.zeroSubtree(id, schemas.Point{X: content.X, Y: y})
	case p.sd.Computed(id).Position().IsOutOfFlow():
		p.registerAbs(id, styleNode, schemas.Point{X: 0, Y: y - content.Y})
	case data.Type == dom.NodeText:
		r := p.run(id)
		for i, it := range r.items {
			it.Owner, it.Index = int(id), i
			if it.Kind != text.ItemSpace {
				run.spaceOnly = false
			}
			run.items = append(run.items, it)
		}
		run.texts = append(run.texts, id)
	case data.Type == dom.NodeBr:
		run.spaceOnly = false
		run.items = append(run.items, text.Item{Kind: text.ItemReturn, Owner: int(id)})
		run.brs = append(run.brs, id)
	case fc.IsAtomicInline():
		run.spaceOnly = false
		size := p.layoutBox(id, 0, 0, sizing{
			cbW: content.Width, cbH: math.NaN(), avail: content.Width, shrink: true,
			forceW: math.NaN(), forceH: math.NaN(),
		})
		bm := p.boxes[id]
		run.items = append(run.items, text.Item{
			Kind:   text.ItemAtomic,
			Width:  size.Width + bm.margin.Horizontal(),
			Ascent: size.Height + bm.margin.Vertical(),
			Owner:  int(id),
		})
		run.atoms = append(run.atoms, id)
	default:
		run.spans = append(run.spans, id)
		for c := range p.sd.Hierarchy.Children(id) {
			if p.sd.Computed(c).Float() != css.FloatNone && !p.sd.Computed(c).Position().IsOutOfFlow() && p.contexts.At(c).Kind != ContextNone {
				p.layoutFloat(c, bfc, content, y)
				continue
			}
			p.collectInline(run, styleNode, bfc, c, content, y)
		}
	}
}

// placeText writes the rect and text layout of one text node from the line
// layout of its run. Word positions are relative to the node's origin.
func (p *pass) placeText(id NodeID, items []text.Item, l text.Layout, abs func(schemas.Rect) schemas.Rect, origin schemas.Point) {
	var bounds schemas.Rect
	found := false
	for i, it := range items {
		if NodeID(it.Owner) != id || it.Kind == text.ItemReturn || it.Kind == text.ItemAtomic {
			continue
		}
		r := abs(l.Positions[i])
		if !inSomeLine(l, i) {
			continue
		}
		if it.Kind == text.ItemWord {
			r.Height = it.Ascent + it.Descent
		}
		if !found {
			bounds, found = r, true
		} else {
			bounds = bounds.Union(r)
		}
	}
	if !found {
		bounds = schemas.Rect{X: origin.X, Y: origin.Y}
		if len(l.Lines) > 0 {
			bounds = abs(l.Lines[0].Bounds)
		}
	}

	tl := &text.InlineTextLayout{}
	for _, line := range l.Lines {
		start, end := -1, -1
		for i := line.Start; i < line.End; i++ {
			if NodeID(items[i].Owner) != id {
				continue
			}
			if start < 0 {
				start = items[i].Index
			}
			end = items[i].Index + 1
			if items[i].Kind == text.ItemWord {
				r := abs(l.Positions[i]).Translate(-bounds.X, -bounds.Y)
				tl.Positions = append(tl.Positions, text.WordPosition{Word: items[i].Index, Rect: r})
			}
		}
		if start < 0 {
			continue
		}
		tl.Lines = append(tl.Lines, text.InlineTextLine{
			WordStart: start, WordEnd: end,
			Bounds: abs(line.Bounds).Translate(-bounds.X, -bounds.Y),
		})
	}
	tl.ContentSize = bounds.Size()
	if len(tl.Lines) == 0 && len(l.Lines) > 0 && len(p.run(id).items) == 0 {
		tl.Lines = []text.InlineTextLine{{Bounds: schemas.Rect{Height: l.Lines[0].Bounds.Height}}}
	}

	*p.rects.Get(id) = PositionedRectangle{
		Position:   PositionInfo{Origin: bounds.Origin(), Static: bounds.Origin()},
		Size:       bounds.Size(),
		TextLayout: tl,
	}
}

func inSomeLine(l text.Layout, i int) bool {
	for _, line := range l.Lines {
		if i >= line.Start && i < line.End {
			return true
		}
	}
	return false
}

// placeSpan sizes a non-atomic inline box to the union of its in-flow descendants.
func (p *pass) placeSpan(id NodeID, origin schemas.Point) {
	var bounds schemas.Rect
	found := false
	for c := range p.inFlowChildren(id) {
		if p.sd.Computed(c).Float() != css.FloatNone {
			continue
		}
		r := p.rects.At(c).BorderBox()
		if r.Width == 0 && r.Height == 0 {
			continue
		}
		if !found {
			bounds, found = r, true
		} else {
			bounds = bounds.Union(r)
		}
	}
	if !found {
		bounds = schemas.Rect{X: origin.X, Y: origin.Y}
	}
	cs := p.sd.Computed(id)
	*p.rects.Get(id) = PositionedRectangle{
		Position:  PositionInfo{Kind: PositionKind(cs.Position()), Origin: bounds.Origin(), Static: bounds.Origin()},
		Size:      bounds.Size(),
		OverflowX: cs.OverflowX(),
		OverflowY: cs.OverflowY(),
	}
	if cs.Position() != css.PositionStatic {
		p.layoutPositioned(id, bounds)
	}
}
