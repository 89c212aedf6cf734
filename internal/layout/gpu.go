package layout

import (
	"slices"

	"github.com/google/uuid"

	"github.com/xkilldash9x/boxflow/api/schemas"
	"github.com/xkilldash9x/boxflow/internal/arena"
	"github.com/xkilldash9x/boxflow/internal/css"
	"github.com/xkilldash9x/boxflow/internal/style"
)

// TransformKey names a transform value the compositor can animate without relayout.
type TransformKey uuid.UUID

func (k TransformKey) String() string { return uuid.UUID(k).String() }

// OpacityKey names an opacity value the compositor can animate without relayout.
type OpacityKey uuid.UUID

func (k OpacityKey) String() string { return uuid.UUID(k).String() }

// GpuEventKind tags a GPU key change.
type GpuEventKind uint8

const (
	GpuAdded GpuEventKind = iota
	GpuChanged
	GpuRemoved
)

func (k GpuEventKind) String() string { return [...]string{"added", "changed", "removed"}[k] }

// GpuTransformKeyEvent reports a transform key change for one node.
type GpuTransformKeyEvent struct {
	Kind     GpuEventKind
	Node     NodeID
	Key      TransformKey
	Old, New css.Matrix
}

// GpuOpacityKeyEvent reports an opacity key change for one node.
type GpuOpacityKeyEvent struct {
	Kind     GpuEventKind
	Node     NodeID
	Key      OpacityKey
	Old, New float64
}

// GpuEventChanges collects the key changes of one synchronisation.
type GpuEventChanges struct {
	TransformKeyChanges []GpuTransformKeyEvent
	OpacityKeyChanges   []GpuOpacityKeyEvent
}

// IsEmpty reports whether nothing changed.
func (c GpuEventChanges) IsEmpty() bool {
	return len(c.TransformKeyChanges) == 0 && len(c.OpacityKeyChanges) == 0
}

// GpuValueCache holds the current transform and opacity of every node that
// has a non-default value, each under a stable key.
type GpuValueCache struct {
	TransformKeys     map[NodeID]TransformKey
	CurrentTransforms map[NodeID]css.Matrix
	OpacityKeys       map[NodeID]OpacityKey
	CurrentOpacities  map[NodeID]float64
}

// NewGpuValueCache returns an empty cache.
func NewGpuValueCache() *GpuValueCache {
	return &GpuValueCache{
		TransformKeys:     map[NodeID]TransformKey{},
		CurrentTransforms: map[NodeID]css.Matrix{},
		OpacityKeys:       map[NodeID]OpacityKey{},
		CurrentOpacities:  map[NodeID]float64{},
	}
}

// Clone returns an independent copy; keys are preserved.
func (g *GpuValueCache) Clone() *GpuValueCache {
	c := NewGpuValueCache()
	for k, v := range g.TransformKeys {
		c.TransformKeys[k] = v
	}
	for k, v := range g.CurrentTransforms {
		c.CurrentTransforms[k] = v
	}
	for k, v := range g.OpacityKeys {
		c.OpacityKeys[k] = v
	}
	for k, v := range g.CurrentOpacities {
		c.CurrentOpacities[k] = v
	}
	return c
}

// Synchronize brings the cache in line with the computed styles and rects,
// allocating keys for new values and dropping keys of values back at default.
func (g *GpuValueCache) Synchronize(sd *style.StyledDom, rects arena.Container[PositionedRectangle]) GpuEventChanges {
	var out GpuEventChanges
	seenT := map[NodeID]bool{}
	seenO := map[NodeID]bool{}
	for i := range rects {
		id := schemas.NodeIDFromIndex(i)
		cs := sd.Computed(id)

		if m := transformMatrix(cs, rects.At(id)); !m.IsIdentity() {
			seenT[id] = true
			key, ok := g.TransformKeys[id]
			switch {
			case !ok:
				key = TransformKey(uuid.New())
				g.TransformKeys[id] = key
				out.TransformKeyChanges = append(out.TransformKeyChanges, GpuTransformKeyEvent{Kind: GpuAdded, Node: id, Key: key, Old: css.Identity(), New: m})
			case g.CurrentTransforms[id] != m:
				out.TransformKeyChanges = append(out.TransformKeyChanges, GpuTransformKeyEvent{Kind: GpuChanged, Node: id, Key: key, Old: g.CurrentTransforms[id], New: m})
			}
			g.CurrentTransforms[id] = m
		}

		if o := cs.Opacity(); o != 1 {
			seenO[id] = true
			key, ok := g.OpacityKeys[id]
			switch {
			case !ok:
				key = OpacityKey(uuid.New())
				g.OpacityKeys[id] = key
				out.OpacityKeyChanges = append(out.OpacityKeyChanges, GpuOpacityKeyEvent{Kind: GpuAdded, Node: id, Key: key, Old: 1, New: o})
			case g.CurrentOpacities[id] != o:
				out.OpacityKeyChanges = append(out.OpacityKeyChanges, GpuOpacityKeyEvent{Kind: GpuChanged, Node: id, Key: key, Old: g.CurrentOpacities[id], New: o})
			}
			g.CurrentOpacities[id] = o
		}
	}

	for _, id := range sortedKeys(g.TransformKeys) {
		if !seenT[id] {
			out.TransformKeyChanges = append(out.TransformKeyChanges, GpuTransformKeyEvent{Kind: GpuRemoved, Node: id, Key: g.TransformKeys[id], Old: g.CurrentTransforms[id], New: css.Identity()})
			delete(g.TransformKeys, id)
			delete(g.CurrentTransforms, id)
		}
	}
	for _, id := range sortedKeys(g.OpacityKeys) {
		if !seenO[id] {
			out.OpacityKeyChanges = append(out.OpacityKeyChanges, GpuOpacityKeyEvent{Kind: GpuRemoved, Node: id, Key: g.OpacityKeys[id], Old: g.CurrentOpacities[id], New: 1})
			delete(g.OpacityKeys, id)
			delete(g.CurrentOpacities, id)
		}
	}
	return out
}

// transformMatrix composes a node's transform around its transform-origin,
// in coordinates local to the border box.
func transformMatrix(cs *style.ComputedStyle, r PositionedRectangle) css.Matrix {
	m := cs.Transform()
	if m.IsIdentity() {
		return m
	}
	ox, oy := cs.TransformOrigin()
	x := ox.ResolveOr(r.Size.Width, cs.FontSize(), r.Size.Width/2)
	y := oy.ResolveOr(r.Size.Height, cs.FontSize(), r.Size.Height/2)
	return css.Translate(x, y).Multiply(m).Multiply(css.Translate(-x, -y))
}

func sortedKeys[V any](m map[NodeID]V) []NodeID {
	keys := make([]NodeID, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
