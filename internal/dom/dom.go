// internal/dom/dom.go
package dom

import (
	"github.com/xkilldash9x/boxflow/internal/arena"
	"github.com/xkilldash9x/boxflow/internal/callbacks"
	"github.com/xkilldash9x/boxflow/internal/css"
	"github.com/xkilldash9x/boxflow/internal/events"
	"github.com/xkilldash9x/boxflow/internal/refany"
)

// Dom is a tree of nodes under construction. It is converted to an arena
// with Compact once built.
type Dom struct {
	Data     NodeData
	Children []*Dom
}

// New creates a detached node from data.
func New(data NodeData) *Dom { return &Dom{Data: data} }

// Div creates an element node with the given tag ("div" when empty).
func Div() *Dom { return &Dom{Data: NodeData{Type: NodeDiv, Tag: "div"}} }

// Element creates a div-type node with a specific tag.
func Element(tag string) *Dom { return &Dom{Data: NodeData{Type: NodeDiv, Tag: tag}} }

// Body creates the conventional root node.
func Body() *Dom { return Element("body") }

// Text creates a text node.
func Text(s string) *Dom { return &Dom{Data: NodeData{Type: NodeText, Text: s}} }

// Image creates an image node.
func Image(img ImageRef) *Dom { return &Dom{Data: NodeData{Type: NodeImage, Tag: "img", Image: &img}} }

// Icon creates an icon node.
func Icon(name string) *Dom { return &Dom{Data: NodeData{Type: NodeIcon, Tag: "icon", IconName: name}} }

// Br creates a forced line break.
func Br() *Dom { return &Dom{Data: NodeData{Type: NodeBr, Tag: "br"}} }

// Iframe creates an iframe node rendered by cb.
func Iframe(cb IframeCallback, state *refany.RefAny) *Dom {
	return &Dom{Data: NodeData{Type: NodeIframe, Tag: "iframe", Iframe: &IframeNode{Callback: cb, State: state}}}
}

// WithChild appends a child and returns the receiver.
func (d *Dom) WithChild(c *Dom) *Dom {
	d.Children = append(d.Children, c)
	return d
}

// WithChildren appends children and returns the receiver.
func (d *Dom) WithChildren(cs ...*Dom) *Dom {
	d.Children = append(d.Children, cs...)
	return d
}

// WithID adds an id.
func (d *Dom) WithID(id string) *Dom {
	d.Data.IDs = append(d.Data.IDs, id)
	return d
}

// WithClass adds a class.
func (d *Dom) WithClass(class string) *Dom {
	d.Data.Classes = append(d.Data.Classes, class)
	return d
}

// WithDataset sets a dataset entry.
func (d *Dom) WithDataset(key, value string) *Dom {
	if d.Data.Dataset == nil {
		d.Data.Dataset = map[string]string{}
	}
	d.Data.Dataset[key] = value
	return d
}

// WithStyle adds normal-state inline declarations.
func (d *Dom) WithStyle(props ...css.Property) *Dom {
	return d.WithStateStyle(css.StateNormal, props...)
}

// WithStateStyle adds inline declarations for an interaction state.
func (d *Dom) WithStateStyle(state css.NodeState, props ...css.Property) *Dom {
	for _, p := range props {
		d.Data.InlineStyle = append(d.Data.InlineStyle, InlineProperty{State: state, Property: p})
	}
	return d
}

// WithCallback registers a callback for an event filter.
func (d *Dom) WithCallback(ev events.EventFilter, data *refany.RefAny, cb callbacks.Callback) *Dom {
	d.Data.Callbacks = append(d.Data.Callbacks, callbacks.CallbackData{Event: ev, Callback: cb, Data: data})
	return d
}

// WithTabIndex sets the tab index.
func (d *Dom) WithTabIndex(t TabIndex) *Dom {
	d.Data.TabIndex = t
	return d
}

// WithSpan sets table cell spans.
func (d *Dom) WithSpan(col, row int) *Dom {
	d.Data.ColSpan, d.Data.RowSpan = col, row
	return d
}

// WithAccessibility sets accessibility info.
func (d *Dom) WithAccessibility(a AccessibilityInfo) *Dom {
	d.Data.Accessibility = &a
	return d
}

// Len counts the nodes of the tree.
func (d *Dom) Len() int {
	n := 1
	for _, c := range d.Children {
		n += c.Len()
	}
	return n
}

// Compact flattens the tree into an arena in pre-order, so the root is the
// first node and NodeIDs follow document order.
func (d *Dom) Compact() *arena.Arena[NodeData] {
	a := arena.New[NodeData]()
	var walk func(parent arena.NodeID, n *Dom)
	walk = func(parent arena.NodeID, n *Dom) {
		id := a.NewNode(n.Data)
		if parent.IsSome() {
			// Freshly created nodes are detached and valid, so Append cannot fail.
			_ = a.Append(parent, id)
		}
		for _, c := range n.Children {
			walk(id, c)
		}
	}
	walk(0, d)
	return a
}
