// internal/arena/arena_test.go
package arena_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/boxflow/api/schemas"
	"github.com/xkilldash9x/boxflow/internal/arena"
)

// buildTree creates root -> (a -> (a1, a2), b).
func buildTree(t *testing.T) (*arena.Arena[string], map[string]schemas.NodeID) {
	t.Helper()
	a := arena.New[string]()
	ids := map[string]schemas.NodeID{}
	for _, name := range []string{"root", "a", "a1", "a2", "b"} {
		ids[name] = a.NewNode(name)
	}
	require.NoError(t, a.Append(ids["root"], ids["a"]))
	require.NoError(t, a.Append(ids["root"], ids["b"]))
	require.NoError(t, a.Append(ids["a"], ids["a1"]))
	require.NoError(t, a.Append(ids["a"], ids["a2"]))
	return a, ids
}

func names(a *arena.Arena[string], seq func(func(schemas.NodeID) bool)) []string {
	var out []string
	for id := range seq {
		out = append(out, *a.Data(id))
	}
	return out
}

func TestArena_Traversal(t *testing.T) {
	a, ids := buildTree(t)

	assert.Equal(t, []string{"root", "a", "a1", "a2", "b"}, names(a, a.Descendants(ids["root"])))
	assert.Equal(t, []string{"a1", "a2", "a", "b", "root"}, names(a, a.PostOrder(ids["root"])))
	assert.Equal(t, []string{"a", "root"}, names(a, a.Ancestors(ids["a2"])))
	assert.Equal(t, []string{"b", "a"}, names(a, a.ReverseChildren(ids["root"])))
	assert.Equal(t, []string{"a2"}, names(a, a.FollowingSiblings(ids["a1"])))
	assert.Equal(t, []string{"a1"}, names(a, a.PrecedingSiblings(ids["a2"])))
	assert.Equal(t, []string{"a", "a1", "a2"}, names(a, a.Descendants(ids["a"])))
	assert.Equal(t, 2, a.Depth(ids["a1"]))
	assert.Equal(t, 3, a.SubtreeLen(ids["a"]))
	require.NoError(t, a.Validate())
}

func TestArena_InsertAndDetach(t *testing.T) {
	a, ids := buildTree(t)
	c := a.NewNode("c")
	d := a.NewNode("d")
	e := a.NewNode("e")

	require.NoError(t, a.InsertBefore(ids["b"], c))
	require.NoError(t, a.InsertAfter(ids["b"], d))
	require.NoError(t, a.Prepend(ids["root"], e))
	assert.Equal(t, []string{"e", "a", "c", "b", "d"}, names(a, a.Children(ids["root"])))
	require.NoError(t, a.Validate())

	require.NoError(t, a.Detach(ids["a"]))
	assert.Equal(t, []string{"e", "c", "b", "d"}, names(a, a.Children(ids["root"])))
	assert.False(t, slices.Contains(names(a, a.Descendants(ids["root"])), "a1"), "detached subtree must be unreachable from the root")
	assert.Equal(t, schemas.NoNode, a.Parent(ids["a"]))
	require.NoError(t, a.Validate())

	require.NoError(t, a.Detach(d))
	require.NoError(t, a.Detach(e))
	n := a.Get(ids["root"])
	assert.Equal(t, c, n.FirstChild)
	assert.Equal(t, ids["b"], n.LastChild)
	require.NoError(t, a.Validate())
}

func TestArena_Errors(t *testing.T) {
	a, ids := buildTree(t)

	err := a.Append(ids["a1"], ids["root"])
	assert.ErrorIs(t, err, arena.ErrCycle, "appending an ancestor below its descendant must fail")

	err = a.Append(ids["b"], ids["a1"])
	assert.ErrorIs(t, err, arena.ErrAttached)

	err = a.Append(ids["b"], schemas.NodeID(99))
	assert.ErrorIs(t, err, arena.ErrInvalidNode)

	err = a.InsertBefore(ids["root"], a.NewNode("x"))
	assert.ErrorIs(t, err, arena.ErrInvalidNode, "the root has no siblings")
}

func TestArena_FirstLastChildInvariant(t *testing.T) {
	a, _ := buildTree(t)
	for _, n := range a.Nodes() {
		assert.Equal(t, n.FirstChild.IsSome(), n.LastChild.IsSome())
	}
}

func TestTransform_PreservesStructure(t *testing.T) {
	a, ids := buildTree(t)
	lengths := arena.Transform(a, func(s string, id schemas.NodeID) int { return len(s) + id.Index() })

	assert.Equal(t, a.Len(), lengths.Len())
	assert.Equal(t, 4, *lengths.Data(ids["root"]))
	assert.Equal(t, a.ChildIDs(ids["a"]), lengths.ChildIDs(ids["a"]))

	// The clone must not share link storage.
	require.NoError(t, lengths.Detach(ids["b"]))
	assert.Len(t, a.ChildIDs(ids["root"]), 2)
}

func TestContainer(t *testing.T) {
	c := arena.NewContainer[float64](3)
	*c.Get(schemas.NodeIDFromIndex(2)) = 7
	assert.Equal(t, 7.0, c.At(schemas.NodeIDFromIndex(2)))
	assert.Nil(t, c.Get(schemas.NoNode))
	assert.Nil(t, c.Get(schemas.NodeIDFromIndex(3)))
	assert.Zero(t, c.At(schemas.NodeID(40)))
	assert.Len(t, c.IDs(), 3)
}
