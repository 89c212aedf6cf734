package layout

import (
	"math"

	"github.com/xkilldash9x/boxflow/api/schemas"
	"github.com/xkilldash9x/boxflow/internal/css"
)

type gridRow struct {
	id        NodeID
	group     NodeID
	collapsed bool
}

type gridCol struct {
	id        NodeID
	group     NodeID
	collapsed bool
	// explicit is the content width set on the column element, NaN if none.
	explicit float64
}

type gridCell struct {
	id               NodeID
	row, col         int
	rowSpan, colSpan int
}

// tableGrid is the row/column structure of one table. Cells placed directly
// in a table or row group get anonymous rows (id NoNode).
type tableGrid struct {
	captions []NodeID
	rows     []gridRow
	cols     []gridCol
	cells    []gridCell
	groups   []NodeID
}

func (g *tableGrid) allRowsCollapsed() bool {
	for _, r := range g.rows {
		if !r.collapsed {
			return false
		}
	}
	return true
}

func (g *tableGrid) allColsCollapsed() bool {
	for _, c := range g.cols {
		if !c.collapsed {
			return false
		}
	}
	return true
}

func (p *pass) collapsed(id NodeID) bool {
	return id.IsSome() && p.sd.Computed(id).Visibility() == css.Collapse
}

type gridBuilder struct {
	p        *pass
	g        *tableGrid
	occupied map[[2]int]bool
}

// buildGrid assigns every cell of a table to its row and column, honouring
// row and column spans.
func (p *pass) buildGrid(table NodeID) *tableGrid {
	if g, ok := p.grids[table]; ok {
		return g
	}
	b := &gridBuilder{p: p, g: &tableGrid{}, occupied: map[[2]int]bool{}}
	b.rows(table, schemas.NoNode)

	g := b.g
	ncols := len(g.cols)
	nrows := len(g.rows)
	for _, c := range g.cells {
		ncols = max(ncols, c.col+c.colSpan)
		nrows = max(nrows, c.row+c.rowSpan)
	}
	for len(g.cols) < ncols {
		b.addCol(schemas.NoNode, schemas.NoNode)
	}
	for len(g.rows) < nrows {
		g.rows = append(g.rows, gridRow{})
	}
	p.grids[table] = g
	return g
}

// rows walks the children of a table (group NoNode) or of a row group,
// wrapping loose cells into anonymous rows.
func (b *gridBuilder) rows(parent, group NodeID) {
	p := b.p
	var loose []NodeID
	flush := func() {
		if len(loose) > 0 {
			b.addRow(schemas.NoNode, group, loose)
			loose = nil
		}
	}
	for c := range p.inFlowChildren(parent) {
		role := p.contexts.At(c).Role
		switch {
		case role == RoleRow:
			flush()
			var cells []NodeID
			for cell := range p.inFlowChildren(c) {
				cells = append(cells, cell)
			}
			b.addRow(c, group, cells)
		case group.IsSome():
			loose = append(loose, c)
		case role == RoleCell:
			loose = append(loose, c)
		case role == RoleRowGroup:
			flush()
			b.g.groups = append(b.g.groups, c)
			b.rows(c, c)
		case role == RoleColumn:
			b.addCol(c, schemas.NoNode)
		case role == RoleColumnGroup:
			b.g.groups = append(b.g.groups, c)
			n := 0
			for col := range p.inFlowChildren(c) {
				b.addCol(col, c)
				n++
			}
			if n == 0 {
				b.addCol(schemas.NoNode, c)
			}
		default:
			flush()
			b.g.captions = append(b.g.captions, c)
		}
	}
	flush()
}

func (b *gridBuilder) addRow(row, group NodeID, cells []NodeID) {
	b.g.rows = append(b.g.rows, gridRow{id: row, group: group, collapsed: b.p.collapsed(row) || b.p.collapsed(group)})
	rowIdx := len(b.g.rows) - 1
	col := 0
	for _, c := range cells {
		for b.occupied[[2]int{rowIdx, col}] {
			col++
		}
		cs, rs := b.p.sd.NodeData.Get(c).Spans()
		for r := rowIdx; r < rowIdx+rs; r++ {
			for k := col; k < col+cs; k++ {
				b.occupied[[2]int{r, k}] = true
			}
		}
		b.g.cells = append(b.g.cells, gridCell{id: c, row: rowIdx, col: col, rowSpan: rs, colSpan: cs})
		col += cs
	}
}

func (b *gridBuilder) addCol(col, group NodeID) {
	w := math.NaN()
	if col.IsSome() {
		w = resolveBoxModel(b.p.sd.Computed(col), math.NaN(), math.NaN()).width
	}
	b.g.cols = append(b.g.cols, gridCol{id: col, group: group, collapsed: b.p.collapsed(col) || b.p.collapsed(group), explicit: w})
}

func (p *pass) borderSpacing(table NodeID) (h, v float64) {
	cs := p.sd.Computed(table)
	sh, sv := cs.BorderSpacing()
	return sh.ResolveOr(math.NaN(), cs.FontSize(), 0), sv.ResolveOr(math.NaN(), cs.FontSize(), 0)
}

// spacingTotal is the spacing around n tracks, or zero when every track is collapsed.
func spacingTotal(n int, spacing float64, allCollapsed bool) float64 {
	if n == 0 || allCollapsed {
		return 0
	}
	return spacing * float64(n+1)
}

// columnIntrinsic returns per-column min/max content widths from the cells.
func (g *tableGrid) columnIntrinsic(p *pass) (mins, maxs []float64) {
	mins = make([]float64, len(g.cols))
	maxs = make([]float64, len(g.cols))
	for i, c := range g.cols {
		if !math.IsNaN(c.explicit) {
			mins[i], maxs[i] = c.explicit, c.explicit
		}
	}
	for _, c := range g.cells {
		if c.colSpan != 1 {
			continue
		}
		mn, mx := p.outerIntrinsic(c.id)
		mins[c.col] = max(mins[c.col], mn)
		maxs[c.col] = max(maxs[c.col], mx)
	}
	// spanning cells spread their excess evenly over the spanned columns
	for _, c := range g.cells {
		if c.colSpan == 1 {
			continue
		}
		mn, mx := p.outerIntrinsic(c.id)
		var curMin, curMax float64
		for k := c.col; k < c.col+c.colSpan; k++ {
			curMin += mins[k]
			curMax += maxs[k]
		}
		n := float64(c.colSpan)
		for k := c.col; k < c.col+c.colSpan; k++ {
			if mn > curMin {
				mins[k] += (mn - curMin) / n
			}
			if mx > curMax {
				maxs[k] += (mx - curMax) / n
			}
		}
	}
	for i, c := range g.cols {
		if c.collapsed {
			mins[i], maxs[i] = 0, 0
		}
		maxs[i] = max(maxs[i], mins[i])
	}
	return mins, maxs
}

// intrinsicWidths returns the min/max content widths of the table box.
func (g *tableGrid) intrinsicWidths(p *pass, table NodeID) (minW, maxW float64) {
	mins, maxs := g.columnIntrinsic(p)
	for i := range mins {
		minW += mins[i]
		maxW += maxs[i]
	}
	sh, _ := p.borderSpacing(table)
	extra := spacingTotal(len(g.cols), sh, g.allColsCollapsed())
	minW += extra
	maxW += extra
	for _, c := range g.captions {
		mn, mx := p.outerIntrinsic(c)
		minW = max(minW, mn)
		maxW = max(maxW, mx)
	}
	return minW, maxW
}

// columnWidths distributes the table's content width over its columns.
func (p *pass) columnWidths(table NodeID, g *tableGrid, width float64) []float64 {
	widths := make([]float64, len(g.cols))
	if len(g.cols) == 0 {
		return widths
	}
	sh, _ := p.borderSpacing(table)
	avail := max(width-spacingTotal(len(g.cols), sh, g.allColsCollapsed()), 0)
	visible := 0
	for _, c := range g.cols {
		if !c.collapsed {
			visible++
		}
	}
	if visible == 0 {
		return widths
	}

	if p.sd.Computed(table).TableLayout() == css.TableLayoutFixed {
		fixed := make([]float64, len(g.cols))
		for i, c := range g.cols {
			fixed[i] = c.explicit
		}
		for _, c := range g.cells {
			if c.row != 0 || c.colSpan != 1 || !math.IsNaN(fixed[c.col]) {
				continue
			}
			bm := resolveBoxModel(p.sd.Computed(c.id), width, math.NaN())
			if !math.IsNaN(bm.width) {
				fixed[c.col] = bm.width + bm.outerH()
			}
		}
		rest, free := 0, avail
		for i, c := range g.cols {
			if c.collapsed {
				continue
			}
			if math.IsNaN(fixed[i]) {
				rest++
				continue
			}
			widths[i] = fixed[i]
			free -= fixed[i]
		}
		for i, c := range g.cols {
			if !c.collapsed && math.IsNaN(fixed[i]) && rest > 0 {
				widths[i] = max(free, 0) / float64(rest)
			}
		}
		return widths
	}

	mins, maxs := g.columnIntrinsic(p)
	var sumMin, sumMax float64
	for i := range mins {
		sumMin += mins[i]
		sumMax += maxs[i]
	}
	switch {
	case avail >= sumMax:
		extra := avail - sumMax
		for i, c := range g.cols {
			if c.collapsed {
				continue
			}
			switch {
			case sumMax > 0:
				widths[i] = maxs[i] + extra*maxs[i]/sumMax
			default:
				widths[i] = extra / float64(visible)
			}
		}
	case avail <= sumMin || sumMax == sumMin:
		copy(widths, mins)
	default:
		t := (avail - sumMin) / (sumMax - sumMin)
		for i := range widths {
			widths[i] = mins[i] + (maxs[i]-mins[i])*t
		}
	}
	return widths
}

// layoutTable lays out captions, then the cell grid, and returns the content height.
func (p *pass) layoutTable(id NodeID, content schemas.Rect, definiteH float64) float64 {
	g := p.buildGrid(id)
	y := content.Y
	for _, c := range g.captions {
		bm := resolveBoxModel(p.sd.Computed(c), content.Width, math.NaN())
		y += bm.margin.Top
		size := p.layoutBox(c, content.X, y, flowSizing(content.Width, math.NaN()))
		y += size.Height + bm.margin.Bottom
	}
	gridY := y

	sh, sv := p.borderSpacing(id)
	widths := p.columnWidths(id, g, content.Width)
	colX := make([]float64, len(g.cols)+1)
	x := content.X
	if !g.allColsCollapsed() && len(g.cols) > 0 {
		x += sh
	}
	for i := range g.cols {
		colX[i] = x
		x += widths[i]
		if !g.allColsCollapsed() {
			x += sh
		}
	}
	colX[len(g.cols)] = x
	spanWidth := func(c gridCell) float64 {
		w := 0.0
		for k := c.col; k < c.col+c.colSpan; k++ {
			w += widths[k]
		}
		return w + sh*float64(c.colSpan-1)
	}
	cellSizing := func(c gridCell, h float64) sizing {
		bm := resolveBoxModel(p.sd.Computed(c.id), content.Width, math.NaN())
		s := flowSizing(content.Width, math.NaN())
		s.forceW = max(spanWidth(c)-bm.outerH(), 0)
		if !math.IsNaN(h) {
			s.forceH = max(h-bm.outerV(), 0)
		}
		return s
	}

	heights := make([]float64, len(g.rows))
	for i, r := range g.rows {
		if r.id.IsSome() {
			heights[i] = zeroNaN(resolveBoxModel(p.sd.Computed(r.id), content.Width, math.NaN()).height)
		}
	}
	outer := make(map[NodeID]float64, len(g.cells))
	for _, c := range g.cells {
		size := p.layoutBox(c.id, 0, 0, cellSizing(c, math.NaN()))
		bm := p.boxes[c.id]
		outer[c.id] = size.Height + bm.margin.Vertical()
		if c.rowSpan == 1 {
			heights[c.row] = max(heights[c.row], outer[c.id])
		}
	}
	for i, r := range g.rows {
		if r.collapsed {
			heights[i] = 0
		}
	}
	for _, c := range g.cells {
		if c.rowSpan == 1 {
			continue
		}
		have := sv * float64(c.rowSpan-1)
		last := -1
		for r := c.row; r < c.row+c.rowSpan; r++ {
			have += heights[r]
			if !g.rows[r].collapsed {
				last = r
			}
		}
		if need := outer[c.id]; need > have && last >= 0 {
			heights[last] += need - have
		}
	}

	allRows := g.allRowsCollapsed()
	rowY := make([]float64, len(g.rows)+1)
	ry := gridY
	if !allRows && len(g.rows) > 0 {
		ry += sv
	}
	for i := range g.rows {
		rowY[i] = ry
		ry += heights[i]
		if !allRows {
			ry += sv
		}
	}
	rowY[len(g.rows)] = ry
	gridW := colX[len(g.cols)] - content.X
	gridH := ry - gridY

	for _, c := range g.cells {
		if g.rows[c.row].collapsed && c.rowSpan == 1 || g.cols[c.col].collapsed && c.colSpan == 1 {
			p.zeroSubtree(c.id, schemas.Point{X: colX[c.col], Y: rowY[c.row]})
			continue
		}
		h := sv * float64(c.rowSpan-1)
		for r := c.row; r < c.row+c.rowSpan; r++ {
			h += heights[r]
		}
		p.layoutBox(c.id, 0, 0, cellSizing(c, h))
		bm := p.boxes[c.id]
		p.moveTo(c.id, schemas.Point{X: colX[c.col] + bm.margin.Left, Y: rowY[c.row] + bm.margin.Top})
	}

	track := func(id NodeID, r schemas.Rect) {
		if !id.IsSome() {
			return
		}
		cs := p.sd.Computed(id)
		*p.rects.Get(id) = PositionedRectangle{
			Position:  PositionInfo{Kind: PositionKind(cs.Position()), Origin: r.Origin(), Static: r.Origin()},
			Size:      r.Size(),
			OverflowX: cs.OverflowX(),
			OverflowY: cs.OverflowY(),
		}
	}
	groupRects := map[NodeID]schemas.Rect{}
	union := func(group NodeID, r schemas.Rect) {
		if !group.IsSome() {
			return
		}
		if cur, ok := groupRects[group]; ok {
			groupRects[group] = cur.Union(r)
		} else {
			groupRects[group] = r
		}
	}
	for i, r := range g.rows {
		rect := schemas.NewRect(content.X, rowY[i], gridW, heights[i])
		track(r.id, rect)
		union(r.group, rect)
	}
	for i, c := range g.cols {
		rect := schemas.NewRect(colX[i], gridY, widths[i], gridH)
		track(c.id, rect)
		union(c.group, rect)
	}
	for _, grp := range g.groups {
		r, ok := groupRects[grp]
		if !ok {
			r = schemas.NewRect(content.X, gridY, 0, 0)
		}
		track(grp, r)
	}
	return y - content.Y + gridH
}
