// internal/dom/dom_test.go
package dom_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/boxflow/api/schemas"
	"github.com/xkilldash9x/boxflow/internal/callbacks"
	"github.com/xkilldash9x/boxflow/internal/css"
	"github.com/xkilldash9x/boxflow/internal/dom"
	"github.com/xkilldash9x/boxflow/internal/events"
	"github.com/xkilldash9x/boxflow/internal/refany"
)

func noop(*refany.RefAny, callbacks.CallbackInfo) callbacks.Update { return callbacks.DoNothing }

func TestCompactIsPreOrder(t *testing.T) {
	tree := dom.Body().WithChildren(
		dom.Div().WithChild(dom.Text("a")),
		dom.Element("p").WithChildren(dom.Text("b"), dom.Br()),
	)
	require.Equal(t, 6, tree.Len())

	a := tree.Compact()
	require.NoError(t, a.Validate())
	require.Equal(t, 6, a.Len())

	id := schemas.NodeIDFromIndex
	assert.Equal(t, id(0), a.Root())
	assert.Equal(t, []schemas.NodeID{id(1), id(3)}, a.ChildIDs(id(0)))
	assert.Equal(t, []schemas.NodeID{id(2)}, a.ChildIDs(id(1)))
	assert.Equal(t, []schemas.NodeID{id(4), id(5)}, a.ChildIDs(id(3)))

	tags := make([]string, 0, a.Len())
	for i := range a.Len() {
		tags = append(tags, a.Data(id(i)).TagName())
	}
	assert.Equal(t, []string{"body", "div", "text", "p", "text", "br"}, tags)
	assert.Equal(t, "b", a.Data(id(4)).Text)
}

func TestBuilders(t *testing.T) {
	d := dom.Div().
		WithID("main").
		WithClass("card").
		WithClass("wide").
		WithDataset("row", "7").
		WithTabIndex(dom.TabIndex{Kind: dom.TabOrder, Order: 2}).
		WithStyle(css.Width(css.Px(10))).
		WithStateStyle(css.StateHover, css.Opacity(0.5)).
		WithCallback(events.WindowScroll, nil, noop).
		WithSpan(0, 3)

	data := &d.Data
	assert.True(t, data.HasID("main"))
	assert.False(t, data.HasID("card"))
	assert.True(t, data.HasClass("wide"))
	assert.Equal(t, "7", data.Dataset["row"])
	assert.True(t, data.TabIndex.IsFocusable())
	assert.False(t, dom.TabIndex{}.IsFocusable())

	require.Len(t, data.InlineStyle, 2)
	assert.Equal(t, css.StateNormal, data.InlineStyle[0].State)
	assert.Equal(t, css.StateHover, data.InlineStyle[1].State)

	col, row := data.Spans()
	assert.Equal(t, 1, col, "spans below one are normalized")
	assert.Equal(t, 3, row)

	assert.True(t, data.HasWindowCallbacks())
	assert.False(t, data.HasNotCallbacks())
	d.WithCallback(events.NotHover(events.HoverMouseOver), nil, noop)
	assert.True(t, data.HasNotCallbacks())
}

func TestTagName(t *testing.T) {
	assert.Equal(t, "img", dom.Image(dom.ImageRef{Key: "logo", Width: 10, Height: 5}).Data.TagName())
	assert.Equal(t, "icon", dom.Icon("close").Data.TagName())
	assert.Equal(t, "text", dom.Text("x").Data.TagName())
	assert.Equal(t, "section", dom.Element("section").Data.TagName())
	assert.Equal(t, "iframe", dom.New(dom.NodeData{Type: dom.NodeIframe}).Data.TagName())
}
