// File: internal/style/style_test.go
package style_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/boxflow/api/schemas"
	"github.com/xkilldash9x/boxflow/internal/css"
	"github.com/xkilldash9x/boxflow/internal/dom"
	"github.com/xkilldash9x/boxflow/internal/events"
	"github.com/xkilldash9x/boxflow/internal/style"
)

func n(i int) schemas.NodeID { return schemas.NodeIDFromIndex(i) }

// sample builds: body(0) > [div#main.box(1) > [p(2) > text(3)], span(4) > text(5)]
func sample() *dom.Dom {
	return dom.Body().WithStyle(css.FontSize(css.Px(20)), css.TextColor(css.Red)).WithChildren(
		dom.Div().WithID("main").WithClass("box").WithChild(
			dom.Element("p").WithChild(dom.Text("Hello")),
		),
		dom.Element("span").WithChild(dom.Text("World")),
	)
}

func TestStyledDom_DefaultsAndInheritance(t *testing.T) {
	sd := style.New(sample(), nil)
	require.Equal(t, 6, sd.Len())

	assert.Equal(t, css.DisplayBlock, sd.Computed(n(0)).Display())
	assert.Equal(t, css.DisplayBlock, sd.Computed(n(2)).Display())
	assert.Equal(t, css.DisplayInline, sd.Computed(n(3)).Display(), "text nodes are inline")
	assert.Equal(t, css.DisplayInline, sd.Computed(n(4)).Display(), "span is inline by default")

	assert.Equal(t, 20.0, sd.Computed(n(3)).FontSize(), "font-size inherits")
	assert.Equal(t, css.Red, sd.Computed(n(5)).Get(css.PropTextColor).Color, "color inherits")
	assert.True(t, sd.Computed(n(1)).Length(css.PropWidth).IsAuto(), "width does not inherit")

	info := sd.CascadeInfo.At(n(4))
	assert.Equal(t, 1, info.IndexInParent)
	assert.True(t, info.IsLastChild)
}

func TestStyledDom_EmFontSizeResolvesAgainstParent(t *testing.T) {
	d := dom.Div().WithStyle(css.FontSize(css.Px(10))).WithChild(
		dom.Div().WithStyle(css.FontSize(css.Em(2))).WithChild(dom.Text("x")),
	)
	sd := style.New(d, nil)
	assert.Equal(t, 20.0, sd.Computed(n(1)).FontSize())
	assert.Equal(t, 20.0, sd.Computed(n(2)).FontSize())
}

func TestStyledDom_CascadeOrder(t *testing.T) {
	sheet := &css.Stylesheet{}
	sheet.Add(css.Path(css.Type("p")), css.Width(css.Px(10)))
	sheet.Add(css.Path(css.ID("main"), css.Descendant(), css.Type("p")), css.Width(css.Px(20)))
	sheet.Add(css.Path(css.Class("box"), css.DirectChild(), css.Type("span")), css.Width(css.Px(99)))

	sd := style.New(sample(), sheet)
	assert.Equal(t, css.Px(20), sd.Computed(n(2)).Length(css.PropWidth), "later matching rule wins")
	assert.True(t, sd.Computed(n(4)).Length(css.PropWidth).IsAuto(), "span is not a direct child of .box")

	d := sample()
	d.Children[0].Children[0].WithStyle(css.Width(css.Px(30)))
	sd = style.New(d, sheet)
	assert.Equal(t, css.Px(30), sd.Computed(n(2)).Length(css.PropWidth), "inline style wins over rules")
}

func TestStyledDom_HoverOverlayAndRestyle(t *testing.T) {
	sheet := &css.Stylesheet{}
	sheet.Add(css.Path(css.Type("p"), css.Pseudo(css.PseudoHover)), css.BackgroundColor(css.Red))

	sd := style.New(sample(), sheet)
	p := n(2)
	assert.Equal(t, css.Transparent, sd.Computed(p).Background())
	assert.True(t, sd.Cache.HasState(p, css.StateHover))
	assert.False(t, sd.Cache.StateAffectsLayout(p, css.StateHover), "background is paint-only for state changes")

	_, tagged := sd.TagForNode(p)
	assert.True(t, tagged, "nodes with hover rules are hit-testable")

	changes := sd.RestyleNodesHover([]schemas.NodeID{p}, true)
	require.Contains(t, changes, p)
	assert.Equal(t, css.PropBackgroundColor, changes[p][0].Type)
	assert.Equal(t, css.Red, changes[p][0].Current.Color)
	assert.Equal(t, css.Red, sd.Computed(p).Background())

	again := sd.RestyleNodesHover([]schemas.NodeID{p}, true)
	assert.Empty(t, again, "restyling with the same flag is a no-op")
	assert.Equal(t, 6, sd.Len(), "restyling never allocates nodes")

	back := sd.RestyleNodesHover([]schemas.NodeID{p}, false)
	assert.Equal(t, css.Transparent, back[p][0].Current.Color)
}

func TestStyledDom_StateOverlayPriority(t *testing.T) {
	d := dom.Div().
		WithStateStyle(css.StateHover, css.Width(css.Px(1))).
		WithStateStyle(css.StateActive, css.Width(css.Px(2))).
		WithStateStyle(css.StateFocus, css.Width(css.Px(3)))
	sd := style.New(d, nil)
	root := n(0)

	sd.RestyleNodesHover([]schemas.NodeID{root}, true)
	sd.RestyleNodesActive([]schemas.NodeID{root}, true)
	assert.Equal(t, css.Px(2), sd.Computed(root).Length(css.PropWidth))
	sd.RestyleNodesFocus([]schemas.NodeID{root}, true)
	assert.Equal(t, css.Px(3), sd.Computed(root).Length(css.PropWidth))
	assert.True(t, sd.Cache.StateAffectsLayout(root, css.StateFocus))

	got, ok := sd.Cache.Get(root, css.PropWidth, css.StateHover)
	require.True(t, ok)
	assert.Equal(t, css.Px(1), got.Length)

	changes := sd.SetProperty(root, css.Width(css.Px(50)))
	assert.Equal(t, css.Px(50), changes[root][0].Current.Length, "runtime overrides win over every layer")
}

func TestDiffAndMerge(t *testing.T) {
	sd := style.New(sample(), nil)
	before := sd.ComputedStyles()
	sd.SetProperty(n(1), css.Height(css.Px(5)))
	changes := style.Diff(before, sd.ComputedStyles())
	require.Len(t, changes, 1)
	assert.Equal(t, css.PropHeight, changes[n(1)][0].Type)

	merged := style.Changes{}
	merged.Merge(changes)
	merged.Merge(style.Changes{n(1): {{Type: css.PropHeight, Previous: css.Height(css.Px(5)), Current: css.Height(css.Auto)}}})
	assert.Empty(t, merged, "a change reverted within the frame disappears")
}

func TestStyledDom_IndexArraysAndPaths(t *testing.T) {
	d := dom.Body().WithChildren(
		dom.Div().WithID("a").WithCallback(events.WindowMouseDown, nil, nil),
		dom.Div().WithClass("menu").WithCallback(events.NotHover(events.HoverMouseDown), nil, nil),
		dom.Div().WithClass("menu").WithTabIndex(dom.TabIndex{Kind: dom.TabAuto}),
	)
	sd := style.New(d, nil)
	assert.Equal(t, []schemas.NodeID{n(1)}, sd.NodesWithWindowCallbacks)
	assert.Equal(t, []schemas.NodeID{n(2)}, sd.NodesWithNotCallbacks)

	id, ok := sd.FindFirst(css.Path(css.Class("menu"), css.Pseudo(css.PseudoLast)))
	require.True(t, ok)
	assert.Equal(t, n(3), id)

	_, ok = sd.FindFirst(css.Path(css.Class("menu"), css.Pseudo(css.PseudoFocus)))
	assert.False(t, ok, "state pseudo-classes are evaluated against the current state")

	for tag, node := range sd.TagMap {
		got, ok := sd.TagForNode(node)
		assert.True(t, ok)
		assert.Equal(t, tag, got)
	}
}

func TestStyledDom_NthChild(t *testing.T) {
	sd := style.New(sample(), nil)
	path := css.Path(css.Type("body"), css.DirectChild(), css.NthChild(2))
	assert.Equal(t, "body > :nth-child(2)", path.String())

	id, ok := sd.FindFirst(path)
	require.True(t, ok)
	assert.Equal(t, n(4), id)
	assert.False(t, sd.Matches(n(1), path))
}

func TestReconcileNodeIDs(t *testing.T) {
	old := style.New(sample(), nil)
	d := sample()
	d.Children = append([]*dom.Dom{dom.Div().WithID("banner")}, d.Children...)
	next := style.New(d, nil)

	m := style.ReconcileNodeIDs(old, next)
	assert.Equal(t, n(0), m[n(0)])
	_, ok := m[n(1)]
	assert.False(t, ok, "div#main moved to index 1 and no longer matches structurally")

	same := style.ReconcileNodeIDs(old, style.New(sample(), nil))
	assert.Len(t, same, 6)
	for k, v := range same {
		assert.Equal(t, k, v)
	}
}
