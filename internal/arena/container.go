// File: internal/arena/container.go
package arena

import "github.com/xkilldash9x/boxflow/api/schemas"

// Container is a per-node table parallel to a Hierarchy.
type Container[T any] []T

// NewContainer allocates a container with n zero values.
func NewContainer[T any](n int) Container[T] { return make(Container[T], n) }

// Get returns a pointer to the entry for id, or nil when out of range.
func (c Container[T]) Get(id NodeID) *T {
	if id == schemas.NoNode || int(id) > len(c) {
		return nil
	}
	return &c[id.Index()]
}

// At returns the entry for id by value; out-of-range ids yield the zero value.
func (c Container[T]) At(id NodeID) T {
	if p := c.Get(id); p != nil {
		return *p
	}
	var zero T
	return zero
}

// Clone copies the container.
func (c Container[T]) Clone() Container[T] { return append(Container[T](nil), c...) }

// IDs yields every valid id in index order.
func (c Container[T]) IDs() []NodeID {
	ids := make([]NodeID, len(c))
	for i := range c {
		ids[i] = schemas.NodeIDFromIndex(i)
	}
	return ids
}
