// internal/layout/solver.go
package layout

import (
	"iter"
	"math"

	"go.uber.org/zap"

	"github.com/xkilldash9x/boxflow/api/schemas"
	"github.com/xkilldash9x/boxflow/internal/arena"
	"github.com/xkilldash9x/boxflow/internal/css"
	"github.com/xkilldash9x/boxflow/internal/dom"
	"github.com/xkilldash9x/boxflow/internal/style"
	"github.com/xkilldash9x/boxflow/internal/text"
)

// Options configure a layout pass.
type Options struct {
	Logger *zap.Logger
	// Fonts resolves font families; nil lays text out with zero metrics.
	Fonts FontSource
	// Debug, when set, receives fallback and error notices of the pass.
	Debug *[]DebugMessage
	// HiDPIFactor scales iframe physical bounds; zero means 1.
	HiDPIFactor float64
	// Scroll supplies scroll offsets passed to iframe callbacks.
	Scroll *ScrollStates

	domIDs *schemas.DomID
}

// Exclusion is a float installed in a block formatting context.
type Exclusion struct {
	Node NodeID
	Rect schemas.Rect
	Side text.ExclusionSide
}

// Result is the layout of one DOM. Nested iframe DOMs hang off Iframes.
type Result struct {
	DomID       schemas.DomID
	ParentDomID *schemas.DomID
	Bounds      schemas.Rect
	Styled      *style.StyledDom

	Contexts  arena.Container[FormattingContext]
	Intrinsic arena.Container[IntrinsicSizes]
	Rects     arena.Container[PositionedRectangle]

	Scrollable ScrollableNodes
	Gpu        *GpuValueCache
	// Exclusions lists floats per block formatting context root.
	Exclusions map[NodeID][]Exclusion

	Iframes       map[NodeID]*Result
	IframeMapping map[NodeID]schemas.DomID

	iframeScroll map[NodeID]dom.IframeCallbackReturn
}

// Rect returns the border box of a node.
func (r *Result) Rect(id NodeID) schemas.Rect { return r.Rects.At(id).BorderBox() }

// Walk yields this result and every nested iframe result, parents first.
func (r *Result) Walk() iter.Seq[*Result] {
	return func(yield func(*Result) bool) {
		r.walk(yield)
	}
}

func (r *Result) walk(yield func(*Result) bool) bool {
	if !yield(r) {
		return false
	}
	for _, id := range sortedKeys(r.Iframes) {
		if !r.Iframes[id].walk(yield) {
			return false
		}
	}
	return true
}

// Find returns the result for a DOM id among r and its nested iframes.
func (r *Result) Find(id schemas.DomID) (*Result, bool) {
	for res := range r.Walk() {
		if res.DomID == id {
			return res, true
		}
	}
	return nil, false
}

type sizing struct {
	// containing block size for percentages, NaN when indefinite
	cbW, cbH float64
	// avail is the space for the margin box
	avail  float64
	shrink bool
	// forced content-box sizes, NaN when free
	forceW, forceH float64
}

func flowSizing(cbW, cbH float64) sizing {
	return sizing{cbW: cbW, cbH: cbH, avail: cbW, forceW: math.NaN(), forceH: math.NaN()}
}

type absItem struct {
	id     NodeID
	parent NodeID
	// offset of the static position from the parent's content box origin
	offset schemas.Point
}

type floatBox struct {
	id   NodeID
	rect schemas.Rect
	side css.Float
}

type pass struct {
	sd     *style.StyledDom
	opts   Options
	logger *zap.Logger
	fonts  FontSource
	bounds schemas.Rect

	contexts  arena.Container[FormattingContext]
	intrinsic arena.Container[IntrinsicSizes]
	rects     arena.Container[PositionedRectangle]

	runs          map[NodeID]*textRun
	missingFonts  map[string]bool
	missingImages map[NodeID]bool
	boxes         map[NodeID]boxModel
	bottomSets    map[NodeID]marginSet
	pendingAbs    map[NodeID][]absItem
	fixed         []absItem
	floats        map[NodeID][]floatBox
	grids         map[NodeID]*tableGrid
	iframes       []NodeID

	result *Result
}

// Compute lays out a styled DOM inside bounds. It never fails: missing fonts
// and images fall back to zero metrics and are reported through Options.Debug.
func Compute(sd *style.StyledDom, bounds schemas.Rect, opts Options) *Result {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.HiDPIFactor == 0 {
		opts.HiDPIFactor = 1
	}
	if opts.domIDs == nil {
		next := sd.DomID
		opts.domIDs = &next
	}
	p := &pass{
		sd:         sd,
		opts:       opts,
		logger:     opts.Logger.Named("layout"),
		fonts:      opts.Fonts,
		bounds:     bounds,
		runs:       map[NodeID]*textRun{},
		boxes:      map[NodeID]boxModel{},
		bottomSets: map[NodeID]marginSet{},
		pendingAbs: map[NodeID][]absItem{},
		floats:     map[NodeID][]floatBox{},
		grids:      map[NodeID]*tableGrid{},
	}
	res := &Result{
		DomID:         sd.DomID,
		Bounds:        bounds,
		Styled:        sd,
		Exclusions:    map[NodeID][]Exclusion{},
		Iframes:       map[NodeID]*Result{},
		IframeMapping: map[NodeID]schemas.DomID{},
		iframeScroll:  map[NodeID]dom.IframeCallbackReturn{},
	}
	p.result = res
	p.contexts = ComputeContexts(sd)
	p.rects = arena.NewContainer[PositionedRectangle](sd.Len())
	if sd.Len() > 0 {
		p.computeIntrinsic()
		p.layoutRoot()
	}
	res.Contexts = p.contexts
	res.Intrinsic = p.intrinsic
	res.Rects = p.rects
	for bfc, list := range p.floats {
		for _, f := range list {
			side := text.SideLeft
			if f.side == css.FloatRight {
				side = text.SideRight
			}
			res.Exclusions[bfc] = append(res.Exclusions[bfc], Exclusion{Node: f.id, Rect: p.rects.At(f.id).MarginBox(), Side: side})
		}
	}
	p.layoutIframes()
	res.Scrollable = extractScrollable(res)
	res.Gpu = NewGpuValueCache()
	res.Gpu.Synchronize(sd, res.Rects)
	p.logger.Debug("layout done", zap.Int("nodes", sd.Len()), zap.Int("iframes", len(res.Iframes)))
	return res
}

func (p *pass) layoutRoot() {
	root := p.sd.Root()
	fc := p.contexts.At(root)
	if fc.Kind == ContextNone {
		return
	}
	b := p.bounds
	if fc.Kind == ContextInline && p.sd.NodeData.Get(root).Type != dom.NodeDiv {
		p.layoutInlineRun(root, root, []NodeID{root}, b, b.Y)
	} else {
		bm := resolveBoxModel(p.sd.Computed(root), b.Width, b.Height)
		p.layoutBox(root, b.X, b.Y+bm.margin.Top, flowSizing(b.Width, b.Height))
	}
	p.layoutPositioned(schemas.NoNode, b)
	fixed := p.fixed
	p.fixed = nil
	p.layoutAbsItems(fixed, b, true)
}

// inFlowChildren yields children that take part in their parent's layout:
// not display:none and not absolutely positioned.
func (p *pass) inFlowChildren(id NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		for c := range p.sd.Hierarchy.Children(id) {
			if p.contexts.At(c).Kind == ContextNone || p.sd.Computed(c).Position().IsOutOfFlow() {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

// layoutBox lays out id with the left edge of its margin box at x and the top
// of its border box at y, and returns the border-box size.
func (p *pass) layoutBox(id NodeID, x, y float64, s sizing) schemas.Size {
	cs := p.sd.Computed(id)
	fc := p.contexts.At(id)
	data := p.sd.NodeData.Get(id)
	bm := resolveBoxModel(cs, s.cbW, s.cbH)
	p.boxes[id] = bm
	p.bottomSets[id] = marginSet{}.add(bm.margin.Bottom)
	if p.isBFC(id) {
		delete(p.floats, id)
	}

	natural := schemas.Size{}
	if fc.Kind == ContextReplaced {
		natural = p.replacedSize(id, bm)
	}

	w := s.forceW
	if math.IsNaN(w) {
		w = bm.width
		if math.IsNaN(w) {
			avail := max(s.avail-bm.outerH(), 0)
			in := p.intrinsic.At(id)
			switch {
			case fc.Kind == ContextReplaced:
				w = natural.Width
			case s.shrink || fc.Role == RoleTable:
				w = min(max(in.MinContent, avail), in.MaxContent)
			default:
				w = avail
			}
		}
		w = bm.clampW(w)
	}

	mx := x + bm.margin.Left
	if !s.shrink && (bm.autoMarginLeft || bm.autoMarginRight) {
		free := s.avail - (w + bm.padding.Horizontal() + bm.border.Horizontal() + bm.margin.Horizontal())
		if free > 0 {
			switch {
			case bm.autoMarginLeft && bm.autoMarginRight:
				mx += free / 2
			case bm.autoMarginLeft:
				mx += free
			}
		}
	}

	h := s.forceH
	if math.IsNaN(h) {
		h = bm.height
	}
	content := schemas.Rect{
		X:     mx + bm.border.Left + bm.padding.Left,
		Y:     y + bm.border.Top + bm.padding.Top,
		Width: w,
	}

	var contentH float64
	switch {
	case fc.Kind == ContextReplaced:
		contentH = natural.Height
	case fc.Kind == ContextFlex:
		contentH = p.layoutFlex(id, content, h)
	case fc.Kind == ContextTable && fc.Role == RoleTable:
		contentH = p.layoutTable(id, content, h)
	case data.Type == dom.NodeText || data.Type == dom.NodeBr:
		contentH = p.layoutInlineRun(id, id, []NodeID{id}, content, content.Y)
	default:
		contentH = p.layoutFlow(id, content, h, bm)
	}
	if math.IsNaN(h) {
		h = contentH
	}
	if math.IsNaN(s.forceH) {
		h = bm.clampH(h)
	}

	origin := schemas.Point{X: mx, Y: y}
	var tl *text.InlineTextLayout
	if prev := p.rects.At(id); prev.TextLayout != nil && data.Type == dom.NodeText {
		tl = rebaseText(prev.TextLayout, prev.Position.Origin, origin)
	}
	r := PositionedRectangle{
		Position:   PositionInfo{Kind: PositionKind(cs.Position()), Origin: origin, Static: origin},
		Size:       schemas.Size{Width: w + bm.padding.Horizontal() + bm.border.Horizontal(), Height: max(h, 0) + bm.padding.Vertical() + bm.border.Vertical()},
		Padding:    bm.padding,
		Border:     bm.border,
		Margin:     bm.margin,
		BoxSizing:  bm.sizing,
		OverflowX:  cs.OverflowX(),
		OverflowY:  cs.OverflowY(),
		TextLayout: tl,
	}
	*p.rects.Get(id) = r

	if cs.Position() != css.PositionStatic {
		p.layoutPositioned(id, r.PaddingBox())
	}
	if cs.Position() == css.PositionRelative {
		dx, dy := p.relativeOffset(cs, s.cbW, s.cbH)
		p.shiftSubtree(id, dx, dy)
		rr := p.rects.Get(id)
		rr.Position.Static = origin
	}
	if data.Type == dom.NodeIframe {
		p.iframes = append(p.iframes, id)
	}
	return r.Size
}

// -- Block flow --

// collapsesTop reports whether a box's top margin adjoins its first child's.
func (p *pass) collapsesTop(id NodeID, bm boxModel) bool {
	fc := p.contexts.At(id)
	return id != p.sd.Root() && fc.Kind == ContextBlock && !fc.InlineLevel && !fc.EstablishesBFC &&
		bm.border.Top == 0 && bm.padding.Top == 0
}

// collapsesBottom reports whether a box's bottom margin adjoins its last child's.
func (p *pass) collapsesBottom(id NodeID, bm boxModel) bool {
	fc := p.contexts.At(id)
	return id != p.sd.Root() && fc.Kind == ContextBlock && !fc.InlineLevel && !fc.EstablishesBFC &&
		bm.border.Bottom == 0 && bm.padding.Bottom == 0 && math.IsNaN(bm.height)
}

// firstBlockChild returns the first in-flow, non-floated child when it is
// block-level, or NoNode.
func (p *pass) firstBlockChild(id NodeID) NodeID {
	for c := range p.inFlowChildren(id) {
		if p.sd.Computed(c).Float() != css.FloatNone {
			continue
		}
		if p.contexts.At(c).InlineLevel {
			return schemas.NoNode
		}
		return c
	}
	return schemas.NoNode
}

// topMarginSet is the set of margins adjoining the top of id: its own plus
// those of first children it collapses with.
func (p *pass) topMarginSet(id NodeID, cbW, cbH float64) marginSet {
	bm := resolveBoxModel(p.sd.Computed(id), cbW, cbH)
	set := marginSet{}.add(bm.margin.Top)
	if p.collapsesTop(id, bm) {
		if c := p.firstBlockChild(id); c.IsSome() {
			set = set.merge(p.topMarginSet(c, cbW, math.NaN()))
		}
	}
	return set
}

// layoutFlow stacks the children of a block container and returns the
// content height.
func (p *pass) layoutFlow(id NodeID, content schemas.Rect, definiteH float64, bm boxModel) float64 {
	bfc := p.bfcRoot(id)
	collapseTop := p.collapsesTop(id, bm)
	first := schemas.NoNode
	if collapseTop {
		first = p.firstBlockChild(id)
	}

	y := content.Y
	var pending marginSet
	var run []NodeID
	flush := func() {
		if len(run) == 0 {
			return
		}
		top := y + pending.collapsed()
		if h := p.layoutInlineRun(id, bfc, run, content, top); h > 0 {
			y = top + h
			pending = marginSet{}
		}
		run = run[:0]
	}

	for c := range p.sd.Hierarchy.Children(id) {
		cfc := p.contexts.At(c)
		ccs := p.sd.Computed(c)
		switch {
		case cfc.Kind == ContextNone:
			p.zeroSubtree(c, schemas.Point{X: content.X, Y: y})
			continue
		case ccs.Position().IsOutOfFlow():
			p.registerAbs(c, id, schemas.Point{X: 0, Y: y + pending.collapsed() - content.Y})
			continue
		case ccs.Float() != css.FloatNone:
			flush()
			p.layoutFloat(c, bfc, content, y+pending.collapsed())
			continue
		case cfc.InlineLevel:
			run = append(run, c)
			continue
		}
		flush()

		set := p.topMarginSet(c, content.Width, definiteH)
		if c == first {
			set = marginSet{}
		}
		m := pending.merge(set)
		top := y + m.collapsed()
		if cl := ccs.Clear(); cl != css.ClearNone {
			if floor := p.clearance(bfc, cl); floor > top {
				top = floor
			}
		}
		size := p.layoutBox(c, content.X, top, flowSizing(content.Width, definiteH))
		y = top + size.Height
		pending = p.bottomSets[c]
	}
	flush()

	contentH := y - content.Y
	if p.collapsesBottom(id, bm) {
		p.bottomSets[id] = marginSet{}.add(bm.margin.Bottom).merge(pending)
	} else {
		contentH += pending.collapsed()
	}
	if p.isBFC(id) {
		for _, f := range p.floats[id] {
			contentH = max(contentH, f.rect.MaxY()-content.Y)
		}
	}
	return max(contentH, 0)
}

// isBFC reports whether id contains its floats: explicit BFC roots, flex
// items and the root.
func (p *pass) isBFC(id NodeID) bool {
	if id == p.sd.Root() || p.contexts.At(id).EstablishesBFC {
		return true
	}
	parent := p.sd.Hierarchy.Parent(id)
	return parent.IsSome() && p.contexts.At(parent).Kind == ContextFlex
}

// bfcRoot returns the nearest ancestor-or-self establishing a block formatting context.
func (p *pass) bfcRoot(id NodeID) NodeID {
	if p.isBFC(id) {
		return id
	}
	for a := range p.sd.Hierarchy.Ancestors(id) {
		if p.isBFC(a) {
			return a
		}
	}
	return p.sd.Root()
}

// -- Floats --

// layoutFloat places a floated child at or below y, beside earlier floats of the same BFC.
func (p *pass) layoutFloat(id, bfc NodeID, content schemas.Rect, y float64) {
	cs := p.sd.Computed(id)
	size := p.layoutBox(id, 0, 0, sizing{
		cbW: content.Width, cbH: math.NaN(), avail: content.Width, shrink: true,
		forceW: math.NaN(), forceH: math.NaN(),
	})
	bm := p.boxes[id]
	mw := size.Width + bm.margin.Horizontal()
	mh := size.Height + bm.margin.Vertical()
	if cl := cs.Clear(); cl != css.ClearNone {
		y = max(y, p.clearance(bfc, cl))
	}

	var left, right float64
	for {
		left, right = p.floatSpan(bfc, y, mh, content)
		if right-left >= mw {
			break
		}
		next := math.Inf(1)
		for _, f := range p.floats[bfc] {
			if f.rect.OverlapsVertically(y, y+max(mh, 1)) && f.rect.MaxY() > y {
				next = min(next, f.rect.MaxY())
			}
		}
		if math.IsInf(next, 1) {
			break
		}
		y = next
	}
	x := left
	if cs.Float() == css.FloatRight {
		x = right - mw
	}
	p.moveTo(id, schemas.Point{X: x + bm.margin.Left, Y: y + bm.margin.Top})
	p.floats[bfc] = append(p.floats[bfc], floatBox{id: id, rect: schemas.Rect{X: x, Y: y, Width: mw, Height: mh}, side: cs.Float()})
}

// floatSpan returns the horizontal range of content left free by floats in [y, y+h).
func (p *pass) floatSpan(bfc NodeID, y, h float64, content schemas.Rect) (left, right float64) {
	left, right = content.X, content.MaxX()
	for _, f := range p.floats[bfc] {
		if !f.rect.OverlapsVertically(y, y+max(h, 1)) {
			continue
		}
		if f.side == css.FloatLeft {
			left = max(left, f.rect.MaxX())
		} else {
			right = min(right, f.rect.X)
		}
	}
	return left, right
}

// clearance returns the lowest bottom edge of floats cleared by c.
func (p *pass) clearance(bfc NodeID, c css.Clear) float64 {
	y := math.Inf(-1)
	for _, f := range p.floats[bfc] {
		if c == css.ClearBoth || (c == css.ClearLeft && f.side == css.FloatLeft) || (c == css.ClearRight && f.side == css.FloatRight) {
			y = max(y, f.rect.MaxY())
		}
	}
	return y
}

// holes converts the floats of a BFC to text exclusions relative to origin.
func (p *pass) holes(bfc NodeID, origin schemas.Point) []text.Hole {
	var out []text.Hole
	for _, f := range p.floats[bfc] {
		side := text.SideLeft
		if f.side == css.FloatRight {
			side = text.SideRight
		}
		out = append(out, text.Hole{Rect: f.rect.Translate(-origin.X, -origin.Y), Side: side})
	}
	return out
}

// -- Positioning --

// registerAbs records an out-of-flow box against its containing block.
func (p *pass) registerAbs(id, parent NodeID, offset schemas.Point) {
	item := absItem{id: id, parent: parent, offset: offset}
	if p.sd.Computed(id).Position() == css.PositionFixed {
		p.fixed = appendAbs(p.fixed, item)
		return
	}
	cb := schemas.NoNode
	for a := range p.sd.Hierarchy.Ancestors(id) {
		if p.sd.Computed(a).Position() != css.PositionStatic {
			cb = a
			break
		}
	}
	p.pendingAbs[cb] = appendAbs(p.pendingAbs[cb], item)
}

func appendAbs(list []absItem, item absItem) []absItem {
	for i := range list {
		if list[i].id == item.id {
			list[i] = item
			return list
		}
	}
	return append(list, item)
}

// layoutPositioned lays out the absolutely positioned boxes whose containing
// block is cb (NoNode for the initial containing block).
func (p *pass) layoutPositioned(cb NodeID, rect schemas.Rect) {
	items := p.pendingAbs[cb]
	delete(p.pendingAbs, cb)
	p.layoutAbsItems(items, rect, false)
}

func (p *pass) layoutAbsItems(items []absItem, cb schemas.Rect, fixed bool) {
	for _, it := range items {
		cs := p.sd.Computed(it.id)
		fs := cs.FontSize()
		bm := resolveBoxModel(cs, cb.Width, cb.Height)
		left := cs.Length(css.PropLeft).Resolve(cb.Width, fs)
		right := cs.Length(css.PropRight).Resolve(cb.Width, fs)
		top := cs.Length(css.PropTop).Resolve(cb.Height, fs)
		bottom := cs.Length(css.PropBottom).Resolve(cb.Height, fs)

		s := sizing{cbW: cb.Width, cbH: cb.Height, shrink: true, forceW: bm.width, forceH: bm.height}
		s.avail = cb.Width - zeroNaN(left) - zeroNaN(right)
		if math.IsNaN(s.forceW) && !math.IsNaN(left) && !math.IsNaN(right) {
			s.forceW = bm.clampW(cb.Width - left - right - bm.outerH())
		}
		if math.IsNaN(s.forceH) && !math.IsNaN(top) && !math.IsNaN(bottom) {
			s.forceH = bm.clampH(cb.Height - top - bottom - bm.outerV())
		}
		size := p.layoutBox(it.id, 0, 0, s)

		static := p.staticPosition(it)
		var x, y float64
		switch {
		case !math.IsNaN(left):
			x = cb.X + left + bm.margin.Left
		case !math.IsNaN(right):
			x = cb.MaxX() - right - bm.margin.Right - size.Width
		default:
			x = static.X + bm.margin.Left
		}
		switch {
		case !math.IsNaN(top):
			y = cb.Y + top + bm.margin.Top
		case !math.IsNaN(bottom):
			y = cb.MaxY() - bottom - bm.margin.Bottom - size.Height
		default:
			y = static.Y + bm.margin.Top
		}
		p.moveTo(it.id, schemas.Point{X: x, Y: y})
		r := p.rects.Get(it.id)
		r.Position.Static = static
		r.Position.Kind = PositionAbsolute
		if fixed {
			r.Position.Kind = PositionFixed
		}
	}
}

func (p *pass) staticPosition(it absItem) schemas.Point {
	if !it.parent.IsSome() {
		return p.bounds.Origin().Add(it.offset)
	}
	return p.rects.At(it.parent).ContentBox().Origin().Add(it.offset)
}

func (p *pass) relativeOffset(cs *style.ComputedStyle, cbW, cbH float64) (dx, dy float64) {
	fs := cs.FontSize()
	if l := cs.Length(css.PropLeft).Resolve(cbW, fs); !math.IsNaN(l) {
		dx = l
	} else if r := cs.Length(css.PropRight).Resolve(cbW, fs); !math.IsNaN(r) {
		dx = -r
	}
	if t := cs.Length(css.PropTop).Resolve(cbH, fs); !math.IsNaN(t) {
		dy = t
	} else if b := cs.Length(css.PropBottom).Resolve(cbH, fs); !math.IsNaN(b) {
		dy = -b
	}
	return dx, dy
}

// -- Subtree moves --

// moveTo translates a laid-out subtree so its flow position lands on target.
func (p *pass) moveTo(id NodeID, target schemas.Point) {
	cur := p.rects.At(id).Position.Static
	p.shiftSubtree(id, target.X-cur.X, target.Y-cur.Y)
}

func (p *pass) shiftSubtree(id NodeID, dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	for d := range p.sd.Hierarchy.Descendants(id) {
		p.rects.Get(d).translate(dx, dy)
	}
	for bfc, list := range p.floats {
		if bfc != id && !p.sd.Hierarchy.IsAncestor(id, bfc) {
			continue
		}
		for i := range list {
			list[i].rect = list[i].rect.Translate(dx, dy)
		}
	}
}

// zeroSubtree gives a display:none subtree empty rects at origin.
func (p *pass) zeroSubtree(id NodeID, origin schemas.Point) {
	for d := range p.sd.Hierarchy.Descendants(id) {
		*p.rects.Get(d) = PositionedRectangle{Position: PositionInfo{Origin: origin, Static: origin}}
	}
}

// rebaseText re-expresses text positions relative to a new origin.
func rebaseText(tl *text.InlineTextLayout, from, to schemas.Point) *text.InlineTextLayout {
	if from == to {
		return tl
	}
	dx, dy := from.X-to.X, from.Y-to.Y
	out := *tl
	out.Positions = make([]text.WordPosition, len(tl.Positions))
	for i, wp := range tl.Positions {
		wp.Rect = wp.Rect.Translate(dx, dy)
		out.Positions[i] = wp
	}
	out.Lines = make([]text.InlineTextLine, len(tl.Lines))
	for i, l := range tl.Lines {
		l.Bounds = l.Bounds.Translate(dx, dy)
		out.Lines[i] = l
	}
	return &out
}

func zeroNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
