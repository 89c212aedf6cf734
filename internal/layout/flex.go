package layout

import (
	"math"
	"slices"

	"github.com/xkilldash9x/boxflow/api/schemas"
	"github.com/xkilldash9x/boxflow/internal/css"
	"github.com/xkilldash9x/boxflow/internal/style"
)

type flexItem struct {
	id  NodeID
	cs  *style.ComputedStyle
	box boxModel

	baseSize     float64
	hypothetical float64
	target       float64
	frozen       bool
	// mainExtra is padding, border and margin along the main axis.
	mainExtra   float64
	crossExtra  float64
	marginCross float64
	// crossSize is the border-box cross size after layout.
	crossSize float64
	align     css.AlignItems

	mainOffset, crossOffset float64
}

func (it *flexItem) outerMain() float64  { return it.target + it.mainExtra }
func (it *flexItem) outerCross() float64 { return it.crossSize + it.marginCross }

type flexLine struct {
	items      []*flexItem
	mainSize   float64
	crossSize  float64
	crossStart float64
}

// flexAxes carries the direction-dependent accessors of one container.
type flexAxes struct {
	row     bool
	reverse bool
}

func (a flexAxes) mainClamp(b boxModel, v float64) float64 {
	if a.row {
		return b.clampW(v)
	}
	return b.clampH(v)
}

func (a flexAxes) explicitMain(b boxModel) float64 {
	if a.row {
		return b.width
	}
	return b.height
}

func (a flexAxes) explicitCross(b boxModel) float64 {
	if a.row {
		return b.height
	}
	return b.width
}

// layoutFlex lays out a flex container's items inside content and returns the
// content height. definiteH is NaN when the container height is auto.
func (p *pass) layoutFlex(id NodeID, content schemas.Rect, definiteH float64) float64 {
	cs := p.sd.Computed(id)
	dir := cs.FlexDirection()
	ax := flexAxes{row: dir.IsRow(), reverse: dir.IsReverse()}
	fs := cs.FontSize()

	mainAvail, crossAvail := content.Width, definiteH
	if !ax.row {
		mainAvail, crossAvail = definiteH, content.Width
	}
	colGap := cs.Length(css.PropColumnGap).ResolveOr(content.Width, fs, 0)
	rowGap := cs.Length(css.PropRowGap).ResolveOr(zeroNaN(definiteH), fs, 0)
	mainGap, crossGap := colGap, rowGap
	if !ax.row {
		mainGap, crossGap = rowGap, colGap
	}

	var items []*flexItem
	for c := range p.sd.Hierarchy.Children(id) {
		ccs := p.sd.Computed(c)
		switch {
		case p.contexts.At(c).Kind == ContextNone:
			p.zeroSubtree(c, content.Origin())
			continue
		case ccs.Position().IsOutOfFlow():
			p.registerAbs(c, id, schemas.Point{})
			continue
		}
		items = append(items, &flexItem{id: c, cs: ccs, align: ccs.AlignSelf().Resolve(cs.AlignItems())})
	}
	if len(items) == 0 {
		return zeroNaN(definiteH)
	}

	p.flexBaseSizes(items, ax, content.Width, definiteH, crossAvail)
	lines := collectFlexLines(items, cs.FlexWrap(), mainAvail, mainGap)
	for _, line := range lines {
		resolveFlexibleLengths(line, ax, mainAvail, mainGap)
	}
	if math.IsNaN(mainAvail) || math.IsInf(mainAvail, 1) {
		for _, line := range lines {
			mainAvail = max(zeroNaN(mainAvail), line.mainSize)
		}
		if len(lines) == 0 {
			mainAvail = 0
		}
	}

	p.determineCrossSizes(lines, ax, content.Width, definiteH)
	single := cs.FlexWrap() == css.NoWrap
	if single && !math.IsNaN(crossAvail) {
		lines[0].crossSize = crossAvail
	}
	totalCross := crossGap * float64(len(lines)-1)
	for _, line := range lines {
		totalCross += line.crossSize
	}
	if math.IsNaN(crossAvail) {
		crossAvail = totalCross
	}

	alignFlexLines(lines, cs.AlignContent(), crossAvail, totalCross, crossGap, cs.FlexWrap() == css.WrapReverse)
	for _, line := range lines {
		p.alignCrossAxis(line, ax, content.Width, definiteH)
		alignMainAxis(line, ax, cs.JustifyContent(), mainAvail, mainGap)
	}
	p.placeFlexItems(lines, ax, content)

	if ax.row {
		return crossAvail
	}
	return mainAvail
}

// flexBaseSizes resolves each item's flex base size and hypothetical main size.
func (p *pass) flexBaseSizes(items []*flexItem, ax flexAxes, cbW, cbH, crossAvail float64) {
	mainRef := cbW
	if !ax.row {
		mainRef = cbH
	}
	for _, it := range items {
		b := resolveBoxModel(it.cs, cbW, cbH)
		it.marginCross = b.margin.Vertical()
		it.mainExtra = b.padding.Horizontal() + b.border.Horizontal() + b.margin.Horizontal()
		it.crossExtra = b.padding.Vertical() + b.border.Vertical()
		if !ax.row {
			it.marginCross = b.margin.Horizontal()
			it.mainExtra = b.padding.Vertical() + b.border.Vertical() + b.margin.Vertical()
			it.crossExtra = b.padding.Horizontal() + b.border.Horizontal()
		}
		it.box = b

		base := it.cs.Length(css.PropFlexBasis).Resolve(mainRef, it.cs.FontSize())
		if !math.IsNaN(base) && b.sizing == css.BorderBox {
			base = max(base-(it.mainExtra-marginMain(ax, b)), 0)
		}
		if math.IsNaN(base) {
			base = ax.explicitMain(b)
		}
		if math.IsNaN(base) {
			if ax.row {
				base = p.intrinsic.At(it.id).MaxContent
			} else {
				s := flowSizing(cbW, cbH)
				s.forceW = p.columnItemWidth(it, crossAvail)
				size := p.layoutBox(it.id, 0, 0, s)
				base = size.Height - (it.mainExtra - marginMain(ax, b))
			}
		}
		it.baseSize = max(base, 0)
		it.hypothetical = ax.mainClamp(b, it.baseSize)
		it.target = it.hypothetical
	}
}

func marginMain(ax flexAxes, b boxModel) float64 {
	if ax.row {
		return b.margin.Horizontal()
	}
	return b.margin.Vertical()
}

// columnItemWidth is the forced content width of a column item: stretched
// to the container unless it has an explicit width or auto margins.
func (p *pass) columnItemWidth(it *flexItem, crossAvail float64) float64 {
	b := it.box
	if !math.IsNaN(b.width) {
		return b.width
	}
	if it.align == css.AlignStretch && !b.autoMarginLeft && !b.autoMarginRight && !math.IsNaN(crossAvail) {
		return b.clampW(crossAvail - b.outerH())
	}
	in := p.intrinsic.At(it.id)
	avail := crossAvail - b.outerH()
	if math.IsNaN(avail) {
		return b.clampW(in.MaxContent)
	}
	return b.clampW(min(max(in.MinContent, avail), in.MaxContent))
}

// collectFlexLines breaks items into lines. Single-line containers keep
// every item on one line.
func collectFlexLines(items []*flexItem, wrap css.FlexWrap, avail, gap float64) []*flexLine {
	cur := &flexLine{}
	lines := []*flexLine{cur}
	for _, it := range items {
		size := it.hypothetical + it.mainExtra
		if wrap != css.NoWrap && len(cur.items) > 0 && cur.mainSize+gap+size > avail {
			cur = &flexLine{}
			lines = append(lines, cur)
		}
		if len(cur.items) > 0 {
			cur.mainSize += gap
		}
		cur.items = append(cur.items, it)
		cur.mainSize += size
	}
	return lines
}

// resolveFlexibleLengths distributes free space by flex-grow or
// flex-shrink, freezing items clamped by their min/max sizes until the
// distribution settles.
func resolveFlexibleLengths(line *flexLine, ax flexAxes, avail, gap float64) {
	defer func() {
		line.mainSize = gap * float64(len(line.items)-1)
		for _, it := range line.items {
			line.mainSize += it.outerMain()
		}
	}()
	if math.IsNaN(avail) || math.IsInf(avail, 1) {
		return
	}
	gaps := gap * float64(len(line.items)-1)
	used := gaps
	for _, it := range line.items {
		used += it.hypothetical + it.mainExtra
	}
	growing := avail-used > 0
	shrinking := avail-used < 0
	if !growing && !shrinking {
		return
	}

	for _, it := range line.items {
		it.frozen = false
		it.target = it.hypothetical
		switch {
		case growing && (it.cs.FlexGrow() <= 0 || it.baseSize > it.hypothetical):
			it.frozen = true
		case shrinking && (it.cs.FlexShrink() <= 0 || it.baseSize < it.hypothetical):
			it.frozen = true
		}
	}

	for {
		var unfrozen []*flexItem
		remaining := avail - gaps
		for _, it := range line.items {
			if it.frozen {
				remaining -= it.target + it.mainExtra
			} else {
				remaining -= it.baseSize + it.mainExtra
				unfrozen = append(unfrozen, it)
			}
		}
		if len(unfrozen) == 0 {
			return
		}

		var sumGrow, sumScaled float64
		for _, it := range unfrozen {
			sumGrow += it.cs.FlexGrow()
			sumScaled += it.cs.FlexShrink() * it.baseSize
		}
		var totalViolation float64
		violations := make([]float64, len(unfrozen))
		for i, it := range unfrozen {
			switch {
			case growing && sumGrow > 0:
				it.target = it.baseSize + remaining*it.cs.FlexGrow()/sumGrow
			case shrinking && sumScaled > 0:
				it.target = it.baseSize + remaining*it.cs.FlexShrink()*it.baseSize/sumScaled
			default:
				it.target = it.baseSize
			}
			clamped := ax.mainClamp(it.box, it.target)
			violations[i] = clamped - it.target
			totalViolation += violations[i]
			it.target = clamped
		}
		for i, it := range unfrozen {
			switch {
			case totalViolation == 0:
				it.frozen = true
			case totalViolation > 0 && violations[i] > 0:
				it.frozen = true
			case totalViolation < 0 && violations[i] < 0:
				it.frozen = true
			}
		}
	}
}

// determineCrossSizes lays every item out at its resolved main size to find
// its hypothetical cross size and each line's cross size.
func (p *pass) determineCrossSizes(lines []*flexLine, ax flexAxes, cbW, cbH float64) {
	crossAvail := cbH
	if !ax.row {
		crossAvail = cbW
	}
	for _, line := range lines {
		line.crossSize = 0
		for _, it := range line.items {
			s := flowSizing(cbW, cbH)
			if ax.row {
				s.forceW = it.target
			} else {
				s.forceH = it.target
				s.forceW = p.columnItemWidth(it, crossAvail)
			}
			size := p.layoutBox(it.id, 0, 0, s)
			it.crossSize = size.Height
			if !ax.row {
				it.crossSize = size.Width
			}
			line.crossSize = max(line.crossSize, it.outerCross())
		}
	}
}

// alignFlexLines positions lines along the cross axis per align-content.
func alignFlexLines(lines []*flexLine, ac css.AlignContent, avail, total, gap float64, reverse bool) {
	free := avail - total
	if ac == css.AlignContentStretch && free > 0 && len(lines) > 0 {
		extra := free / float64(len(lines))
		for _, line := range lines {
			line.crossSize += extra
		}
		free = 0
	}
	start, spacing := alignmentOffsets(len(lines), free, contentBehavior(ac))
	order := lines
	if reverse {
		order = slices.Clone(lines)
		slices.Reverse(order)
	}
	pos := start
	for _, line := range order {
		line.crossStart = pos
		pos += line.crossSize + gap + spacing
	}
}

// alignCrossAxis stretches and positions the items of a line on the cross axis.
func (p *pass) alignCrossAxis(line *flexLine, ax flexAxes, cbW, cbH float64) {
	for _, it := range line.items {
		b := it.box
		autoStart, autoEnd := b.autoMarginTop, b.autoMarginBottom
		if !ax.row {
			autoStart, autoEnd = b.autoMarginLeft, b.autoMarginRight
		}
		if it.align == css.AlignStretch && ax.row && math.IsNaN(ax.explicitCross(b)) && !autoStart && !autoEnd {
			want := b.clampH(line.crossSize - it.marginCross - it.crossExtra)
			if want+it.crossExtra != it.crossSize {
				s := flowSizing(cbW, cbH)
				s.forceW, s.forceH = it.target, want
				it.crossSize = p.layoutBox(it.id, 0, 0, s).Height
			}
		}
		free := line.crossSize - it.outerCross()
		var offset float64
		switch {
		case autoStart && autoEnd:
			offset = max(free, 0) / 2
		case autoStart:
			offset = max(free, 0)
		case autoEnd:
		case it.align == css.AlignFlexEnd:
			offset = free
		case it.align == css.AlignCenter:
			offset = free / 2
		}
		it.crossOffset = line.crossStart + offset
	}
}

// alignMainAxis places the items of a line along the main axis per
// justify-content and moves their subtrees into place.
func alignMainAxis(line *flexLine, ax flexAxes, jc css.JustifyContent, avail, gap float64) {
	free := avail - line.mainSize
	start, spacing := alignmentOffsets(len(line.items), free, justifyBehavior(jc))
	pos := start
	for _, it := range line.items {
		it.mainOffset = pos
		if ax.reverse {
			it.mainOffset = avail - pos - it.outerMain()
		}
		pos += it.outerMain() + gap + spacing
	}
}

// placeFlexItems moves each laid-out item to its final position.
func (p *pass) placeFlexItems(lines []*flexLine, ax flexAxes, content schemas.Rect) {
	for _, line := range lines {
		for _, it := range line.items {
			m := it.box.margin
			x, y := it.mainOffset, it.crossOffset
			if !ax.row {
				x, y = y, x
			}
			p.moveTo(it.id, schemas.Point{X: content.X + x + m.Left, Y: content.Y + y + m.Top})
		}
	}
}

type alignBehavior uint8

const (
	alignStart alignBehavior = iota
	alignEnd
	alignCenter
	alignBetween
	alignAround
	alignEvenly
)

func justifyBehavior(j css.JustifyContent) alignBehavior {
	switch j {
	case css.JustifyFlexEnd:
		return alignEnd
	case css.JustifyCenter:
		return alignCenter
	case css.JustifySpaceBetween:
		return alignBetween
	case css.JustifySpaceAround:
		return alignAround
	case css.JustifySpaceEvenly:
		return alignEvenly
	}
	return alignStart
}

func contentBehavior(a css.AlignContent) alignBehavior {
	switch a {
	case css.AlignContentFlexEnd:
		return alignEnd
	case css.AlignContentCenter:
		return alignCenter
	case css.AlignContentSpaceBetween:
		return alignBetween
	case css.AlignContentSpaceAround:
		return alignAround
	case css.AlignContentSpaceEvenly:
		return alignEvenly
	}
	return alignStart
}

// alignmentOffsets returns the leading offset and the extra spacing between
// count boxes sharing free space. Negative free space is not distributed.
func alignmentOffsets(count int, free float64, b alignBehavior) (start, spacing float64) {
	if free <= 0 || count == 0 {
		return 0, 0
	}
	switch b {
	case alignEnd:
		start = free
	case alignCenter:
		start = free / 2
	case alignBetween:
		if count > 1 {
			spacing = free / float64(count-1)
		}
	case alignAround:
		spacing = free / float64(count)
		start = spacing / 2
	case alignEvenly:
		spacing = free / float64(count+1)
		start = spacing
	}
	return start, spacing
}
