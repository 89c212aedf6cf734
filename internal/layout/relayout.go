// internal/layout/relayout.go
package layout

import (
	"slices"

	"go.uber.org/zap"

	"github.com/xkilldash9x/boxflow/api/schemas"
	"github.com/xkilldash9x/boxflow/internal/css"
	"github.com/xkilldash9x/boxflow/internal/style"
)

// Invalidation is the work a set of changes requires.
type Invalidation struct {
	// Contexts is set when display, position or float changed anywhere.
	Contexts bool
	// IntrinsicNodes need their intrinsic sizes recomputed.
	IntrinsicNodes []NodeID
	// LayoutRoots are the topmost nodes whose subtree must be laid out again.
	LayoutRoots []NodeID
	// GPUOnly is set when only transform and opacity changed.
	GPUOnly bool
}

// IsEmpty reports whether nothing needs to be recomputed.
func (inv Invalidation) IsEmpty() bool {
	return !inv.Contexts && !inv.GPUOnly && len(inv.IntrinsicNodes) == 0 && len(inv.LayoutRoots) == 0
}

// Invalidate classifies property and text changes by the work they require.
func Invalidate(sd *style.StyledDom, changes style.Changes, textChanged []NodeID, rootResized bool) Invalidation {
	var inv Invalidation
	intrinsic := map[NodeID]bool{}
	roots := map[NodeID]bool{}
	parentOf := func(id NodeID) NodeID {
		if p := sd.Hierarchy.Parent(id); p.IsSome() {
			return p
		}
		return id
	}

	gpu := 0
	for id, list := range changes {
		if !sd.Hierarchy.Contains(id) {
			continue
		}
		for _, ch := range list {
			switch ch.Type.Impact() {
			case css.ImpactContext:
				inv.Contexts = true
				for d := range sd.Hierarchy.Descendants(id) {
					intrinsic[d] = true
				}
				roots[containingBlock(sd, id)] = true
			case css.ImpactIntrinsic:
				intrinsic[id] = true
				roots[parentOf(id)] = true
			case css.ImpactParentLayout:
				roots[parentOf(id)] = true
			case css.ImpactGPU:
				gpu++
			}
		}
	}
	for _, id := range textChanged {
		intrinsic[id] = true
		roots[parentOf(id)] = true
	}
	if rootResized && sd.Len() > 0 {
		roots[sd.Root()] = true
	}
	// intrinsic sizes propagate to ancestors
	for id := range intrinsic {
		for a := range sd.Hierarchy.Ancestors(id) {
			intrinsic[a] = true
		}
	}

	inv.IntrinsicNodes = sortedKeys(intrinsic)
	for _, id := range sortedKeys(roots) {
		covered := false
		for a := range sd.Hierarchy.Ancestors(id) {
			if roots[a] {
				covered = true
				break
			}
		}
		if !covered {
			inv.LayoutRoots = append(inv.LayoutRoots, id)
		}
	}
	inv.GPUOnly = gpu > 0 && len(intrinsic) == 0 && len(roots) == 0 && !inv.Contexts
	return inv
}

// containingBlock is the nearest ancestor that establishes a block formatting
// context or is positioned, or the root.
func containingBlock(sd *style.StyledDom, id NodeID) NodeID {
	for a := range sd.Hierarchy.Ancestors(id) {
		cs := sd.Computed(a)
		fc := Classify(cs, sd.NodeData.Get(a))
		if fc.EstablishesBFC || cs.Position() != css.PositionStatic {
			return a
		}
	}
	return sd.Root()
}

// RelayoutResult reports what a relayout changed.
type RelayoutResult struct {
	// ResizedNodes lists nodes whose border-box size differs from the previous frame.
	ResizedNodes  []NodeID
	GpuKeyChanges GpuEventChanges
	Invalidation  Invalidation
}

// Relayout recomputes a layout after style or text changes and an optional
// new root size. The styled DOM is owned by the frame loop and shared
// between frames: text changes are written into prev.Styled in place, the
// same way style changes were already applied to it before the call, and the
// returned result refers to that same styled DOM. prev keeps its own rects
// and GPU cache but is not a snapshot of the DOM. Without any change the
// previous result is returned as is. GPU-only changes keep the
// rects and only resynchronise the GPU value cache; anything else lays the
// DOM out again and diffs the rects.
func Relayout(prev *Result, changes style.Changes, textChanges map[NodeID]string, newBounds *schemas.Rect, opts Options) (*Result, RelayoutResult) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	sd := prev.Styled
	var textChanged []NodeID
	for _, id := range sortedKeys(textChanges) {
		if sd.SetNodeText(id, textChanges[id]) {
			textChanged = append(textChanged, id)
		}
	}
	bounds := prev.Bounds
	resized := newBounds != nil && *newBounds != prev.Bounds
	if resized {
		bounds = *newBounds
	}

	inv := Invalidate(sd, changes, textChanged, resized)
	out := RelayoutResult{Invalidation: inv}
	if inv.IsEmpty() {
		return prev, out
	}

	if inv.GPUOnly {
		next := *prev
		next.Gpu = prev.Gpu.Clone()
		out.GpuKeyChanges = next.Gpu.Synchronize(sd, next.Rects)
		return &next, out
	}

	next := Compute(sd, bounds, opts)
	next.ParentDomID = prev.ParentDomID
	next.Gpu = prev.Gpu.Clone()
	out.GpuKeyChanges = next.Gpu.Synchronize(sd, next.Rects)
	for i := range next.Rects {
		id := schemas.NodeIDFromIndex(i)
		if i >= len(prev.Rects) || prev.Rects.At(id).Size != next.Rects.At(id).Size {
			out.ResizedNodes = append(out.ResizedNodes, id)
		}
	}
	slices.Sort(out.ResizedNodes)
	opts.Logger.Named("layout").Debug("relayout",
		zap.Bool("contexts", inv.Contexts),
		zap.Int("layout_roots", len(inv.LayoutRoots)),
		zap.Int("resized", len(out.ResizedNodes)))
	return next, out
}
