package refany_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/boxflow/internal/refany"
)

type counter struct {
	N     int
	Items []string
}

func TestRefAny_SharedWrites(t *testing.T) {
	r := refany.New(counter{})
	c := r.Clone()
	assert.EqualValues(t, 2, r.RefCount())

	require.NoError(t, refany.Write(c, func(v *counter) { v.N = 5 }))
	got, ok := refany.Get[counter](r)
	require.True(t, ok)
	assert.Equal(t, 5, got.N, "clones share the value")

	err := refany.Write(r, func(v *int) {})
	assert.Error(t, err, "downcast to the wrong type must fail")
	assert.Equal(t, "refany_test.counter", r.TypeName())
}

func TestRefAny_DestructorRunsOnLastRelease(t *testing.T) {
	destroyed := 0
	r := refany.New(counter{}, refany.WithDestructor(func(any) { destroyed++ }))
	c := r.Clone()

	c.Release()
	c.Release()
	assert.Equal(t, 0, destroyed, "double release of one handle counts once")
	r.Release()
	assert.Equal(t, 1, destroyed)
	assert.EqualValues(t, 0, r.RefCount())
}

func TestRefAny_DeepCopy(t *testing.T) {
	r := refany.New(counter{Items: []string{"a"}}, refany.WithClone(func(v any) any {
		c := v.(counter)
		c.Items = append([]string(nil), c.Items...)
		return c
	}))
	cp := r.DeepCopy()
	require.NoError(t, refany.Write(cp, func(v *counter) { v.Items[0] = "b" }))

	orig, _ := refany.Get[counter](r)
	assert.Equal(t, "a", orig.Items[0])
	assert.EqualValues(t, 1, cp.RefCount())
}
