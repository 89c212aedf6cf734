// internal/style/reconcile.go
package style

import (
	"strconv"
	"strings"

	"github.com/xkilldash9x/boxflow/api/schemas"
)

// nodeKey identifies a node structurally: the chain of (tag, first id,
// index in parent) from the root down to the node.
func (sd *StyledDom) nodeKey(id NodeID) string {
	var parts []string
	for cur := id; cur.IsSome(); cur = sd.Hierarchy.Parent(cur) {
		data := sd.NodeData.Get(cur)
		part := data.TagName() + "@" + strconv.Itoa(sd.CascadeInfo.At(cur).IndexInParent)
		if len(data.IDs) > 0 {
			part += "#" + data.IDs[0]
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "/")
}

// ReconcileNodeIDs maps node ids of an old DOM version onto a regenerated
// one. Nodes without a structural counterpart are absent from the map.
func ReconcileNodeIDs(old, next *StyledDom) map[NodeID]NodeID {
	byKey := make(map[string]NodeID, next.Len())
	for i := range next.NodeData {
		id := schemas.NodeIDFromIndex(i)
		byKey[next.nodeKey(id)] = id
	}
	out := make(map[NodeID]NodeID, old.Len())
	for i := range old.NodeData {
		id := schemas.NodeIDFromIndex(i)
		if nid, ok := byKey[old.nodeKey(id)]; ok {
			out[id] = nid
		}
	}
	return out
}
