// File: internal/layout/intrinsic.go
package layout

import (
	"math"

	"github.com/xkilldash9x/boxflow/internal/arena"
	"github.com/xkilldash9x/boxflow/internal/css"
	"github.com/xkilldash9x/boxflow/internal/dom"
	"github.com/xkilldash9x/boxflow/internal/text"
)

// IntrinsicSizes are the content-box min-content and max-content widths of a
// node, independent of the available space.
type IntrinsicSizes struct {
	MinContent float64
	MaxContent float64
	// Preferred is the explicit width, when one resolves without a containing block.
	Preferred *float64
}

const (
	defaultIframeWidth  = 300
	defaultIframeHeight = 150
)

// computeIntrinsic fills p.intrinsic bottom-up.
func (p *pass) computeIntrinsic() {
	p.intrinsic = arena.NewContainer[IntrinsicSizes](p.sd.Len())
	if p.sd.Len() == 0 {
		return
	}
	for id := range p.sd.Hierarchy.PostOrder(p.sd.Root()) {
		*p.intrinsic.Get(id) = p.intrinsicOf(id)
	}
}

func (p *pass) intrinsicOf(id NodeID) IntrinsicSizes {
	fc := p.contexts.At(id)
	data := p.sd.NodeData.Get(id)
	cs := p.sd.Computed(id)
	var out IntrinsicSizes

	switch {
	case fc.Kind == ContextNone:
		return out
	case data.Type == dom.NodeText:
		out.MinContent, out.MaxContent = text.ContentWidths(p.run(id).items)
		return out
	case data.Type == dom.NodeBr:
		return out
	case fc.Kind == ContextReplaced:
		w := p.replacedSize(id, resolveBoxModel(cs, math.NaN(), math.NaN())).Width
		out.MinContent, out.MaxContent = w, w
	case fc.Kind == ContextFlex:
		row := cs.FlexDirection().IsRow()
		gap := cs.Length(css.PropColumnGap).ResolveOr(math.NaN(), cs.FontSize(), 0)
		n := 0
		for c := range p.inFlowChildren(id) {
			mn, mx := p.outerIntrinsic(c)
			if row {
				out.MinContent += mn
				out.MaxContent += mx
			} else {
				out.MinContent = max(out.MinContent, mn)
				out.MaxContent = max(out.MaxContent, mx)
			}
			n++
		}
		if row && n > 1 {
			out.MinContent += gap * float64(n-1)
			out.MaxContent += gap * float64(n-1)
		}
	case fc.Kind == ContextTable && fc.Role == RoleTable:
		g := p.buildGrid(id)
		out.MinContent, out.MaxContent = g.intrinsicWidths(p, id)
	default:
		out.MinContent, out.MaxContent = p.flowIntrinsic(id)
	}

	bm := resolveBoxModel(cs, math.NaN(), math.NaN())
	if !math.IsNaN(bm.width) && fc.Kind != ContextInline {
		w := bm.width
		out.Preferred = &w
		out.MinContent, out.MaxContent = w, w
	}
	if fc.Kind != ContextInline {
		out.MinContent = bm.clampW(out.MinContent)
		out.MaxContent = bm.clampW(out.MaxContent)
	}
	return out
}

// flowIntrinsic aggregates the children of a block or inline container.
// Consecutive inline-level children share a line: their max-content widths add up.
func (p *pass) flowIntrinsic(id NodeID) (minW, maxW float64) {
	var line float64
	for c := range p.inFlowChildren(id) {
		mn, mx := p.outerIntrinsic(c)
		fc := p.contexts.At(c)
		data := p.sd.NodeData.Get(c)
		switch {
		case data.Type == dom.NodeBr:
			maxW = max(maxW, line)
			line = 0
		case fc.InlineLevel:
			minW = max(minW, mn)
			line += mx
		default:
			maxW = max(maxW, line)
			line = 0
			minW = max(minW, mn)
			maxW = max(maxW, mx)
		}
	}
	return minW, max(maxW, line)
}

// outerIntrinsic adds padding, border and margins to a node's intrinsic widths.
// Non-atomic inline boxes contribute their content only.
func (p *pass) outerIntrinsic(id NodeID) (minW, maxW float64) {
	in := p.intrinsic.At(id)
	fc := p.contexts.At(id)
	if fc.Kind == ContextInline {
		return in.MinContent, in.MaxContent
	}
	bm := resolveBoxModel(p.sd.Computed(id), math.NaN(), math.NaN())
	extra := bm.outerH()
	return in.MinContent + extra, in.MaxContent + extra
}
