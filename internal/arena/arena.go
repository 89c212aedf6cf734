// Package arena stores trees as flat, index-addressed node records.
//
// Links between nodes are NodeIDs, never pointers, so a tree can be cloned with
// a slice copy and walked without reference cycles. Per-node payloads live in
// parallel containers indexed by the same ids.
package arena

import (
	"errors"
	"fmt"
	"iter"

	"github.com/xkilldash9x/boxflow/api/schemas"
)

type NodeID = schemas.NodeID

var (
	// ErrInvalidNode is returned when an id does not address a node in the arena.
	ErrInvalidNode = errors.New("arena: invalid node id")
	// ErrCycle is returned when an operation would make a node its own ancestor.
	ErrCycle = errors.New("arena: operation would create a cycle")
	// ErrAttached is returned when inserting a node that still has a parent.
	ErrAttached = errors.New("arena: node is still attached")
)

// Node is the link record of one arena entry.
type Node struct {
	Parent          NodeID
	PreviousSibling NodeID
	NextSibling     NodeID
	FirstChild      NodeID
	LastChild       NodeID
}

// Hierarchy is the link structure of a tree without payload.
type Hierarchy struct {
	nodes []Node
}

// NewHierarchy wraps an existing link table. The slice is used as-is.
func NewHierarchy(nodes []Node) *Hierarchy { return &Hierarchy{nodes: nodes} }

// Len returns the number of nodes.
func (h *Hierarchy) Len() int { return len(h.nodes) }

// Root returns the first node, or NoNode for an empty hierarchy.
func (h *Hierarchy) Root() NodeID {
	if len(h.nodes) == 0 {
		return schemas.NoNode
	}
	return schemas.NodeIDFromIndex(0)
}

// Contains reports whether id addresses a node.
func (h *Hierarchy) Contains(id NodeID) bool {
	return id != schemas.NoNode && int(id) <= len(h.nodes)
}

// Get returns the link record of id. Invalid ids yield a zero Node.
func (h *Hierarchy) Get(id NodeID) Node {
	if !h.Contains(id) {
		return Node{}
	}
	return h.nodes[id.Index()]
}

func (h *Hierarchy) node(id NodeID) *Node { return &h.nodes[id.Index()] }

// Parent returns the parent of id, or NoNode.
func (h *Hierarchy) Parent(id NodeID) NodeID { return h.Get(id).Parent }

// Clone returns an independent copy of the link table.
func (h *Hierarchy) Clone() *Hierarchy {
	return &Hierarchy{nodes: append([]Node(nil), h.nodes...)}
}

// Nodes exposes the raw link table in index order. Callers must not mutate it.
func (h *Hierarchy) Nodes() []Node { return h.nodes }

func (h *Hierarchy) push() NodeID {
	h.nodes = append(h.nodes, Node{})
	return schemas.NodeIDFromIndex(len(h.nodes) - 1)
}

func (h *Hierarchy) checkInsert(parent, child NodeID) error {
	if !h.Contains(parent) || !h.Contains(child) {
		return fmt.Errorf("insert %s into %s: %w", child, parent, ErrInvalidNode)
	}
	if parent == child || h.IsAncestor(child, parent) {
		return fmt.Errorf("insert %s into %s: %w", child, parent, ErrCycle)
	}
	if h.node(child).Parent != schemas.NoNode {
		return fmt.Errorf("insert %s into %s: %w", child, parent, ErrAttached)
	}
	return nil
}

// Append makes child the last child of parent. child must be detached.
func (h *Hierarchy) Append(parent, child NodeID) error {
	if err := h.checkInsert(parent, child); err != nil {
		return err
	}
	p := h.node(parent)
	c := h.node(child)
	c.Parent = parent
	c.PreviousSibling = p.LastChild
	c.NextSibling = schemas.NoNode
	if p.LastChild != schemas.NoNode {
		h.node(p.LastChild).NextSibling = child
	} else {
		p.FirstChild = child
	}
	p.LastChild = child
	return nil
}

// Prepend makes child the first child of parent. child must be detached.
func (h *Hierarchy) Prepend(parent, child NodeID) error {
	if err := h.checkInsert(parent, child); err != nil {
		return err
	}
	p := h.node(parent)
	c := h.node(child)
	c.Parent = parent
	c.NextSibling = p.FirstChild
	c.PreviousSibling = schemas.NoNode
	if p.FirstChild != schemas.NoNode {
		h.node(p.FirstChild).PreviousSibling = child
	} else {
		p.LastChild = child
	}
	p.FirstChild = child
	return nil
}

// InsertBefore places node directly before sibling under sibling's parent.
func (h *Hierarchy) InsertBefore(sibling, node NodeID) error {
	if !h.Contains(sibling) {
		return fmt.Errorf("insert before %s: %w", sibling, ErrInvalidNode)
	}
	parent := h.node(sibling).Parent
	if parent == schemas.NoNode {
		return fmt.Errorf("insert before root %s: %w", sibling, ErrInvalidNode)
	}
	if err := h.checkInsert(parent, node); err != nil {
		return err
	}
	s := h.node(sibling)
	n := h.node(node)
	n.Parent = parent
	n.NextSibling = sibling
	n.PreviousSibling = s.PreviousSibling
	if s.PreviousSibling != schemas.NoNode {
		h.node(s.PreviousSibling).NextSibling = node
	} else {
		h.node(parent).FirstChild = node
	}
	s.PreviousSibling = node
	return nil
}

// InsertAfter places node directly after sibling under sibling's parent.
func (h *Hierarchy) InsertAfter(sibling, node NodeID) error {
	if !h.Contains(sibling) {
		return fmt.Errorf("insert after %s: %w", sibling, ErrInvalidNode)
	}
	parent := h.node(sibling).Parent
	if parent == schemas.NoNode {
		return fmt.Errorf("insert after root %s: %w", sibling, ErrInvalidNode)
	}
	if err := h.checkInsert(parent, node); err != nil {
		return err
	}
	s := h.node(sibling)
	n := h.node(node)
	n.Parent = parent
	n.PreviousSibling = sibling
	n.NextSibling = s.NextSibling
	if s.NextSibling != schemas.NoNode {
		h.node(s.NextSibling).PreviousSibling = node
	} else {
		h.node(parent).LastChild = node
	}
	s.NextSibling = node
	return nil
}

// Detach unlinks id (and its subtree) from its parent and siblings.
func (h *Hierarchy) Detach(id NodeID) error {
	if !h.Contains(id) {
		return fmt.Errorf("detach %s: %w", id, ErrInvalidNode)
	}
	n := h.node(id)
	if n.Parent == schemas.NoNode {
		return nil
	}
	parent := h.node(n.Parent)
	if n.PreviousSibling != schemas.NoNode {
		h.node(n.PreviousSibling).NextSibling = n.NextSibling
	} else {
		parent.FirstChild = n.NextSibling
	}
	if n.NextSibling != schemas.NoNode {
		h.node(n.NextSibling).PreviousSibling = n.PreviousSibling
	} else {
		parent.LastChild = n.PreviousSibling
	}
	n.Parent, n.PreviousSibling, n.NextSibling = schemas.NoNode, schemas.NoNode, schemas.NoNode
	return nil
}

// IsAncestor reports whether ancestor lies on the parent chain of id.
func (h *Hierarchy) IsAncestor(ancestor, id NodeID) bool {
	for p := h.Parent(id); p != schemas.NoNode; p = h.Parent(p) {
		if p == ancestor {
			return true
		}
	}
	return false
}

// Depth returns the number of ancestors of id.
func (h *Hierarchy) Depth(id NodeID) int {
	d := 0
	for p := h.Parent(id); p != schemas.NoNode; p = h.Parent(p) {
		d++
	}
	return d
}

// Children yields the children of id in order.
func (h *Hierarchy) Children(id NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		for c := h.Get(id).FirstChild; c != schemas.NoNode; c = h.Get(c).NextSibling {
			if !yield(c) {
				return
			}
		}
	}
}

// ReverseChildren yields the children of id from last to first.
func (h *Hierarchy) ReverseChildren(id NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		for c := h.Get(id).LastChild; c != schemas.NoNode; c = h.Get(c).PreviousSibling {
			if !yield(c) {
				return
			}
		}
	}
}

// ChildIDs collects the children of id.
func (h *Hierarchy) ChildIDs(id NodeID) []NodeID {
	var out []NodeID
	for c := range h.Children(id) {
		out = append(out, c)
	}
	return out
}

// Ancestors yields the parent chain of id, nearest first. id itself is not included.
func (h *Hierarchy) Ancestors(id NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		for p := h.Parent(id); p != schemas.NoNode; p = h.Parent(p) {
			if !yield(p) {
				return
			}
		}
	}
}

// FollowingSiblings yields the siblings after id.
func (h *Hierarchy) FollowingSiblings(id NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		for s := h.Get(id).NextSibling; s != schemas.NoNode; s = h.Get(s).NextSibling {
			if !yield(s) {
				return
			}
		}
	}
}

// PrecedingSiblings yields the siblings before id, nearest first.
func (h *Hierarchy) PrecedingSiblings(id NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		for s := h.Get(id).PreviousSibling; s != schemas.NoNode; s = h.Get(s).PreviousSibling {
			if !yield(s) {
				return
			}
		}
	}
}

// Descendants yields id and its whole subtree in pre-order.
func (h *Hierarchy) Descendants(id NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		if !h.Contains(id) {
			return
		}
		cur := id
		for {
			if !yield(cur) {
				return
			}
			n := h.Get(cur)
			if n.FirstChild != schemas.NoNode {
				cur = n.FirstChild
				continue
			}
			for {
				if cur == id {
					return
				}
				if next := h.Get(cur).NextSibling; next != schemas.NoNode {
					cur = next
					break
				}
				cur = h.Get(cur).Parent
			}
		}
	}
}

// PostOrder yields the subtree of id children-first, ending with id.
func (h *Hierarchy) PostOrder(id NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		var walk func(NodeID) bool
		walk = func(n NodeID) bool {
			for c := range h.Children(n) {
				if !walk(c) {
					return false
				}
			}
			return yield(n)
		}
		if h.Contains(id) {
			walk(id)
		}
	}
}

// SubtreeLen counts id plus all of its descendants.
func (h *Hierarchy) SubtreeLen(id NodeID) int {
	n := 0
	for range h.Descendants(id) {
		n++
	}
	return n
}

// Validate checks the structural invariants of the link table.
func (h *Hierarchy) Validate() error {
	for i, n := range h.nodes {
		id := schemas.NodeIDFromIndex(i)
		if (n.FirstChild == schemas.NoNode) != (n.LastChild == schemas.NoNode) {
			return fmt.Errorf("%s: first/last child mismatch", id)
		}
		seen := 0
		prev := schemas.NoNode
		for c := n.FirstChild; c != schemas.NoNode; c = h.Get(c).NextSibling {
			if !h.Contains(c) {
				return fmt.Errorf("%s: child %d: %w", id, c, ErrInvalidNode)
			}
			cn := h.Get(c)
			if cn.Parent != id {
				return fmt.Errorf("%s: child %s has parent %s", id, c, cn.Parent)
			}
			if cn.PreviousSibling != prev {
				return fmt.Errorf("%s: sibling chain broken at %s", id, c)
			}
			prev = c
			seen++
			if seen > len(h.nodes) {
				return fmt.Errorf("%s: %w in sibling chain", id, ErrCycle)
			}
		}
		if prev != n.LastChild {
			return fmt.Errorf("%s: last child is %s, chain ends at %s", id, n.LastChild, prev)
		}
	}
	return nil
}

// Arena is a hierarchy plus one payload per node.
type Arena[T any] struct {
	*Hierarchy
	data []T
}

// New returns an empty arena.
func New[T any]() *Arena[T] {
	return &Arena[T]{Hierarchy: &Hierarchy{}}
}

// NewNode stores data as a detached node and returns its id.
func (a *Arena[T]) NewNode(data T) NodeID {
	a.data = append(a.data, data)
	return a.push()
}

// Data returns a pointer to the payload of id, or nil for invalid ids.
func (a *Arena[T]) Data(id NodeID) *T {
	if !a.Contains(id) {
		return nil
	}
	return &a.data[id.Index()]
}

// Payloads returns the payload table in index order.
func (a *Arena[T]) Payloads() Container[T] { return Container[T](a.data) }

// Transform maps every payload and keeps the link structure.
func Transform[T, U any](a *Arena[T], f func(T, NodeID) U) *Arena[U] {
	out := make([]U, len(a.data))
	for i, d := range a.data {
		out[i] = f(d, schemas.NodeIDFromIndex(i))
	}
	return &Arena[U]{Hierarchy: a.Hierarchy.Clone(), data: out}
}
