// Package pagination slices a laid-out tree into fixed-height pages. Each
// page keeps the nodes that cross its band plus all of their ancestors, so
// every page is a subtree of the original hierarchy in the same sibling order.
package pagination

import (
	"math"
	"slices"

	"go.uber.org/zap"

	"github.com/xkilldash9x/boxflow/api/schemas"
	"github.com/xkilldash9x/boxflow/internal/arena"
	"github.com/xkilldash9x/boxflow/internal/layout"
)

type NodeID = schemas.NodeID

// PaginatedNode is one node on a page. Rect is in page-local coordinates and
// clipped to the page band.
type PaginatedNode struct {
	ID       NodeID           `json:"id"`
	Rect     schemas.Rect     `json:"rect"`
	Children []*PaginatedNode `json:"children,omitempty"`
}

// Page is one slice of the document.
type Page struct {
	Index int `json:"index"`
	// Top and Bottom delimit the band in document coordinates.
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	// Roots is a single node when the document root is on the page.
	Roots []*PaginatedNode `json:"roots"`
	// Nodes lists every node on the page in ascending id order.
	Nodes []NodeID `json:"nodes"`
}

// Option configures Paginate.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the logger for page statistics.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// ContentHeight is the largest bottom edge over all rects.
func ContentHeight(rects arena.Container[schemas.Rect]) float64 {
	var h float64
	for _, r := range rects {
		h = max(h, r.MaxY())
	}
	return h
}

// PageCount is ceil(total / pageHeight), or zero for a non-positive page height.
func PageCount(total, pageHeight float64) int {
	if pageHeight <= 0 || total <= 0 {
		return 0
	}
	return int(math.Ceil(total / pageHeight))
}

// Paginate splits the tree into pages of pageHeight. rects holds the
// document-space rect of every node of h.
func Paginate(h *arena.Hierarchy, rects arena.Container[schemas.Rect], pageHeight float64, opts ...Option) []Page {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	n := PageCount(ContentHeight(rects), pageHeight)
	pages := make([]Page, 0, n)
	for i := range n {
		pages = append(pages, paginateOne(h, rects, i, pageHeight))
	}
	o.logger.Named("pagination").Debug("paginated",
		zap.Int("pages", len(pages)), zap.Float64("page_height", pageHeight), zap.Int("nodes", h.Len()))
	return pages
}

// FromLayout paginates a layout result by border boxes.
func FromLayout(r *layout.Result, pageHeight float64, opts ...Option) []Page {
	rects := arena.NewContainer[schemas.Rect](len(r.Rects))
	for i := range r.Rects {
		id := schemas.NodeIDFromIndex(i)
		*rects.Get(id) = r.Rect(id)
	}
	return Paginate(r.Styled.Hierarchy, rects, pageHeight, opts...)
}

func paginateOne(h *arena.Hierarchy, rects arena.Container[schemas.Rect], index int, pageHeight float64) Page {
	top := float64(index) * pageHeight
	bottom := top + pageHeight
	page := Page{Index: index, Top: top, Bottom: bottom}

	on := map[NodeID]bool{}
	for i := range rects {
		id := schemas.NodeIDFromIndex(i)
		if !inBand(rects.At(id), top, bottom) || on[id] {
			continue
		}
		on[id] = true
		for a := range h.Ancestors(id) {
			if on[a] {
				break
			}
			on[a] = true
		}
	}
	if len(on) == 0 {
		return page
	}

	for id := range on {
		page.Nodes = append(page.Nodes, id)
	}
	slices.Sort(page.Nodes)

	var build func(id NodeID) *PaginatedNode
	build = func(id NodeID) *PaginatedNode {
		pn := &PaginatedNode{ID: id, Rect: clip(rects.At(id), top, bottom)}
		for c := range h.Children(id) {
			if on[c] {
				pn.Children = append(pn.Children, build(c))
			}
		}
		return pn
	}
	for _, id := range page.Nodes {
		if p := h.Parent(id); p.IsSome() && on[p] {
			continue
		}
		page.Roots = append(page.Roots, build(id))
	}
	return page
}

// inBand reports whether r crosses [top, bottom). Zero-height rects count
// when their edge lies inside the band.
func inBand(r schemas.Rect, top, bottom float64) bool {
	if r.Height <= 0 {
		return r.Y >= top && r.Y < bottom
	}
	return r.OverlapsVertically(top, bottom)
}

// clip translates r into page coordinates and clips it to the band.
func clip(r schemas.Rect, top, bottom float64) schemas.Rect {
	y0 := min(max(r.Y, top), bottom)
	y1 := min(max(r.MaxY(), top), bottom)
	return schemas.NewRect(r.X, y0-top, r.Width, max(y1-y0, 0))
}
