// File: api/schemas/ids.go
package schemas

import "fmt"

// -- Identifier Schemas --

// NodeID addresses a node inside one DOM arena. The value is one-based so that
// the zero value (NoNode) means "no node".
type NodeID uint32

// NoNode is the absent node.
const NoNode NodeID = 0

// NodeIDFromIndex converts a zero-based arena index to a NodeID.
func NodeIDFromIndex(i int) NodeID { return NodeID(i + 1) }

// Index returns the zero-based arena index. Calling Index on NoNode panics.
func (id NodeID) Index() int {
	if id == NoNode {
		panic("schemas: Index called on NoNode")
	}
	return int(id) - 1
}

// IsSome reports whether the id refers to a node.
func (id NodeID) IsSome() bool { return id != NoNode }

func (id NodeID) String() string {
	if id == NoNode {
		return "NodeID(none)"
	}
	return fmt.Sprintf("NodeID(%d)", id.Index())
}

// DomID identifies one DOM (the root document or a nested iframe document).
type DomID uint32

// RootDomID is the window's top-level document.
const RootDomID DomID = 0

// DomNodeID is a node address that is unique across every DOM in a window.
type DomNodeID struct {
	Dom  DomID  `json:"dom"`
	Node NodeID `json:"node"`
}

func (d DomNodeID) String() string { return fmt.Sprintf("%d:%s", d.Dom, d.Node) }

// TagID is the opaque identifier a renderer hands back in hit-test items.
// Zero is never assigned.
type TagID uint64

// PipelineID groups nested iframe documents under one renderer document.
type PipelineID struct {
	Dom      DomID  `json:"dom"`
	Document uint32 `json:"document"`
}
