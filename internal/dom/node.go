// Package dom describes the unstyled document: node variants, identity
// attributes, inline styles and per-node callbacks.
package dom

import (
	"github.com/xkilldash9x/boxflow/api/schemas"
	"github.com/xkilldash9x/boxflow/internal/callbacks"
	"github.com/xkilldash9x/boxflow/internal/css"
	"github.com/xkilldash9x/boxflow/internal/events"
	"github.com/xkilldash9x/boxflow/internal/refany"
)

// NodeType is the variant of a node.
type NodeType uint8

const (
	NodeDiv NodeType = iota
	NodeText
	NodeImage
	NodeIframe
	NodeIcon
	NodeBr
)

func (t NodeType) String() string {
	return [...]string{"div", "text", "image", "iframe", "icon", "br"}[t]
}

// ImageRef references decoded image data by key and carries its natural size.
type ImageRef struct {
	Key    string
	Width  float64
	Height float64
}

// TabIndexKind tags a TabIndex.
type TabIndexKind uint8

const (
	// TabNone means the node cannot take focus.
	TabNone TabIndexKind = iota
	// TabAuto places the node in document order after ordered nodes.
	TabAuto
	// TabOrder places the node by its Order value, before auto nodes.
	TabOrder
	// TabNoKeyboardFocus allows focus by mouse but skips the node for Tab.
	TabNoKeyboardFocus
)

// TabIndex controls whether and in which order a node can be focused.
type TabIndex struct {
	Kind  TabIndexKind
	Order uint32
}

// IsFocusable reports whether the node can receive focus.
func (t TabIndex) IsFocusable() bool { return t.Kind != TabNone }

// AccessibilityInfo is forwarded to platform accessibility APIs.
type AccessibilityInfo struct {
	Name        string
	Role        string
	Description string
	Value       string
}

// InlineProperty is one inline style declaration for a given state.
type InlineProperty struct {
	State    css.NodeState
	Property css.Property
}

// NodeData is the payload of one DOM node.
type NodeData struct {
	Type NodeType
	// Tag is the element name used by type selectors and UA defaults.
	Tag      string
	Text     string
	Image    *ImageRef
	Iframe   *IframeNode
	IconName string

	IDs           []string
	Classes       []string
	Dataset       map[string]string
	Accessibility *AccessibilityInfo
	InlineStyle   []InlineProperty
	Callbacks     []callbacks.CallbackData
	TabIndex      TabIndex

	// ColSpan and RowSpan apply to table cells; values below one mean one.
	ColSpan int
	RowSpan int
}

// TagName returns the element name, defaulting to the node type name.
func (n *NodeData) TagName() string {
	if n.Tag != "" {
		return n.Tag
	}
	return n.Type.String()
}

// HasID reports whether id is in the node's id set.
func (n *NodeData) HasID(id string) bool {
	for _, v := range n.IDs {
		if v == id {
			return true
		}
	}
	return false
}

// HasClass reports whether class is in the node's class set.
func (n *NodeData) HasClass(class string) bool {
	for _, v := range n.Classes {
		if v == class {
			return true
		}
	}
	return false
}

// Spans returns the normalized column and row span.
func (n *NodeData) Spans() (col, row int) {
	col, row = n.ColSpan, n.RowSpan
	if col < 1 {
		col = 1
	}
	if row < 1 {
		row = 1
	}
	return col, row
}

// HasWindowCallbacks reports whether any callback listens to window events.
func (n *NodeData) HasWindowCallbacks() bool {
	for _, c := range n.Callbacks {
		if _, ok := c.Event.(events.WindowEventFilter); ok {
			return true
		}
	}
	return false
}

// HasNotCallbacks reports whether any callback is a Not filter.
func (n *NodeData) HasNotCallbacks() bool {
	for _, c := range n.Callbacks {
		if _, ok := c.Event.(events.NotEventFilter); ok {
			return true
		}
	}
	return false
}

// -- Iframes --

// IframeCallbackInfo is passed to an iframe callback once the iframe's box is known.
type IframeCallbackInfo struct {
	BoundsLogical  schemas.Rect
	BoundsPhysical schemas.Rect
	HiDPIFactor    float64
	ScrollOffset   schemas.Point
}

// IframeCallbackReturn is what an iframe callback produces.
type IframeCallbackReturn struct {
	Dom                 *Dom
	Stylesheet          *css.Stylesheet
	ScrollSize          schemas.Size
	ScrollOffset        schemas.Point
	VirtualScrollSize   schemas.Size
	VirtualScrollOffset schemas.Point
}

// IframeCallback renders the content of an iframe.
type IframeCallback func(state *refany.RefAny, info IframeCallbackInfo) IframeCallbackReturn

// IframeNode is the payload of an iframe node.
type IframeNode struct {
	Callback IframeCallback
	State    *refany.RefAny
}
