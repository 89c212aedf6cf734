// internal/layout/hittest.go
package layout

import (
	"math"
	"slices"

	"github.com/xkilldash9x/boxflow/api/schemas"
	"github.com/xkilldash9x/boxflow/internal/css"
	"github.com/xkilldash9x/boxflow/internal/dom"
	"github.com/xkilldash9x/boxflow/internal/text"
)

var unclipped = schemas.NewRect(-math.MaxFloat32, -math.MaxFloat32, 2*math.MaxFloat32, 2*math.MaxFloat32)

// HitTest returns the tagged nodes under point, topmost first. Boxes with
// clipping overflow clip their descendants and shift them by their scroll
// offset; iframes are searched recursively. scroll may be nil.
func HitTest(r *Result, point schemas.Point, scroll *ScrollStates) []schemas.HitTestItem {
	var hits []schemas.HitTestItem
	if r == nil || r.Styled.Len() == 0 {
		return nil
	}
	hitTestDom(r, point, unclipped, schemas.Point{}, scroll, &hits)
	slices.Reverse(hits)
	return hits
}

func hitTestDom(r *Result, point schemas.Point, clip schemas.Rect, offset schemas.Point, scroll *ScrollStates, hits *[]schemas.HitTestItem) {
	sd := r.Styled
	var visit func(id NodeID, clip schemas.Rect, offset schemas.Point)
	visit = func(id NodeID, clip schemas.Rect, offset schemas.Point) {
		if r.Contexts.At(id).Kind == ContextNone {
			return
		}
		pr := r.Rects.At(id)
		cs := sd.Computed(id)
		box := pr.BorderBox().Translate(-offset.X, -offset.Y)
		visible := cs.Visibility() == css.Visible

		nested, isIframe := r.Iframes[id]
		if tag, ok := sd.TagForNode(id); ok && visible && box.Contains(point) && clip.Contains(point) {
			item := schemas.HitTestItem{
				Pipeline:            schemas.PipelineID{Dom: r.DomID},
				Tag:                 tag,
				PointInViewport:     point,
				PointRelativeToItem: point.Sub(box.Origin()),
				IsFocusable:         sd.NodeData.Get(id).TabIndex.IsFocusable(),
			}
			if isIframe {
				child := nested.DomID
				item.IsIframeHit = &child
			}
			*hits = append(*hits, item)
		}

		childClip, childOffset := clip, offset
		if pr.OverflowX.Clips() || pr.OverflowY.Clips() {
			childClip = clip.Intersect(pr.PaddingBox().Translate(-offset.X, -offset.Y))
			if scroll != nil {
				childOffset = offset.Add(scroll.Offset(schemas.DomNodeID{Dom: r.DomID, Node: id}))
			}
		}
		if isIframe {
			content := pr.ContentBox().Translate(-offset.X, -offset.Y)
			iframeClip := clip.Intersect(content)
			if iframeClip.Contains(point) {
				hitTestDom(nested, point, iframeClip, offset, scroll, hits)
			}
			return
		}
		for c := range sd.Hierarchy.Children(id) {
			visit(c, childClip, childOffset)
		}
	}
	visit(sd.Root(), clip, offset)
}

// TextHit is a caret position inside a text node.
type TextHit struct {
	Node NodeID
	// Offset is a byte offset into the node's text.
	Offset int
}

// HitTestText finds the caret position under point in r, ignoring iframes
// and scroll offsets. The offset snaps to the nearer edge of the word under
// the point, or to the end of the line when the point is past its last word.
func HitTestText(r *Result, point schemas.Point) (TextHit, bool) {
	if r == nil {
		return TextHit{}, false
	}
	sd := r.Styled
	var hit TextHit
	found := false
	for i := range sd.NodeData {
		id := schemas.NodeIDFromIndex(i)
		data := sd.NodeData.Get(id)
		pr := r.Rects.At(id)
		if data.Type != dom.NodeText || pr.TextLayout == nil || r.Contexts.At(id).Kind == ContextNone {
			continue
		}
		box := pr.BorderBox()
		if !box.Contains(point) {
			continue
		}
		local := point.Sub(box.Origin())
		words := text.SplitIntoWords(data.Text)
		offset, ok := caretOffset(pr.TextLayout, &words, local)
		if !ok {
			continue
		}
		// later text nodes paint on top
		hit, found = TextHit{Node: id, Offset: offset}, true
	}
	return hit, found
}

func caretOffset(tl *text.InlineTextLayout, words *text.Words, local schemas.Point) (int, bool) {
	for _, line := range tl.Lines {
		if local.Y < line.Bounds.Y || local.Y >= line.Bounds.MaxY() {
			continue
		}
		offset := -1
		for _, wp := range tl.Positions {
			if wp.Word < line.WordStart || wp.Word >= line.WordEnd || wp.Word >= len(words.Items) {
				continue
			}
			w := words.Items[wp.Word]
			switch {
			case local.X < wp.Rect.X:
				if offset < 0 {
					offset = w.Start
				}
			case local.X < wp.Rect.MaxX():
				if local.X-wp.Rect.X < wp.Rect.MaxX()-local.X {
					return w.Start, true
				}
				return w.End(), true
			default:
				offset = w.End()
			}
		}
		if offset < 0 {
			offset = 0
			if line.WordStart < len(words.Items) {
				offset = words.Items[line.WordStart].Start
			}
		}
		return offset, true
	}
	return 0, false
}
