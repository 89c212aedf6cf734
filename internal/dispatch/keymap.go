// File: internal/dispatch/keymap.go
package dispatch

import (
	"slices"

	"github.com/xkilldash9x/boxflow/api/schemas"
	"github.com/xkilldash9x/boxflow/internal/callbacks"
	"github.com/xkilldash9x/boxflow/internal/dom"
	"github.com/xkilldash9x/boxflow/internal/layout"
	"github.com/xkilldash9x/boxflow/internal/refany"
)

// KeyCombo is a key together with the exact set of modifiers held.
type KeyCombo struct {
	Modifiers schemas.KeyModifier
	Key       schemas.VirtualKeyCode
}

// Combo builds a KeyCombo.
func Combo(key schemas.VirtualKeyCode, mods ...schemas.KeyModifier) KeyCombo {
	c := KeyCombo{Key: key}
	for _, m := range mods {
		c.Modifiers |= m
	}
	return c
}

// Matches reports whether the keyboard state pressed this combo.
func (c KeyCombo) Matches(ks schemas.KeyboardState) bool {
	return ks.VirtualKeycode != nil && *ks.VirtualKeycode == c.Key && ks.Modifiers == c.Modifiers
}

// KeyBinding is a combo and the callback it runs.
type KeyBinding struct {
	Combo    KeyCombo
	Callback callbacks.Callback
	Data     *refany.RefAny
}

// KeyMap is an ordered list of shortcuts; the first match wins.
type KeyMap struct {
	bindings []KeyBinding
}

// NewKeyMap creates an empty KeyMap.
func NewKeyMap() *KeyMap { return &KeyMap{} }

// Bind appends a shortcut.
func (k *KeyMap) Bind(combo KeyCombo, cb callbacks.Callback, data *refany.RefAny) *KeyMap {
	k.bindings = append(k.bindings, KeyBinding{Combo: combo, Callback: cb, Data: data})
	return k
}

// Match returns the first binding pressed in ks.
func (k *KeyMap) Match(ks schemas.KeyboardState) (KeyBinding, bool) {
	if k == nil {
		return KeyBinding{}, false
	}
	for _, b := range k.bindings {
		if b.Combo.Matches(ks) {
			return b, true
		}
	}
	return KeyBinding{}, false
}

// Consumes reports whether any binding matches ks. A nil KeyMap consumes nothing.
func (k *KeyMap) Consumes(ks schemas.KeyboardState) bool {
	_, ok := k.Match(ks)
	return ok
}

// TabOrder lists keyboard-focusable nodes across all DOMs: nodes with an
// explicit positive order first, ascending, then auto nodes in document order.
func TabOrder(l *layout.Result) []DomNodeID {
	type ordered struct {
		id    DomNodeID
		order uint32
		seq   int
	}
	var explicit []ordered
	var auto []DomNodeID
	seq := 0
	for res := range l.Walk() {
		sd := res.Styled
		if sd.Len() == 0 {
			continue
		}
		for id := range sd.Hierarchy.Descendants(sd.Root()) {
			if res.Contexts.At(id).Kind == layout.ContextNone {
				continue
			}
			node := DomNodeID{Dom: res.DomID, Node: id}
			ti := sd.NodeData.Get(id).TabIndex
			switch {
			case ti.Kind == dom.TabOrder && ti.Order > 0:
				explicit = append(explicit, ordered{id: node, order: ti.Order, seq: seq})
				seq++
			case ti.Kind == dom.TabOrder, ti.Kind == dom.TabAuto:
				auto = append(auto, node)
			}
		}
	}
	slices.SortStableFunc(explicit, func(a, b ordered) int {
		if a.order != b.order {
			return int(a.order) - int(b.order)
		}
		return a.seq - b.seq
	})
	out := make([]DomNodeID, 0, len(explicit)+len(auto))
	for _, e := range explicit {
		out = append(out, e.id)
	}
	return append(out, auto...)
}

// NextInTabOrder returns the node after current in tab order, wrapping around;
// backwards walks the order in reverse. A current node outside the order
// starts from either end. It returns nil when nothing is keyboard-focusable.
func NextInTabOrder(l *layout.Result, current *DomNodeID, backwards bool) *DomNodeID {
	order := TabOrder(l)
	if len(order) == 0 {
		return nil
	}
	i := -1
	if current != nil {
		i = slices.Index(order, *current)
	}
	var next int
	switch {
	case i < 0 && backwards:
		next = len(order) - 1
	case i < 0:
		next = 0
	case backwards:
		next = (i - 1 + len(order)) % len(order)
	default:
		next = (i + 1) % len(order)
	}
	id := order[next]
	return &id
}
