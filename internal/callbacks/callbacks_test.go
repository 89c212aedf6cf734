// internal/callbacks/callbacks_test.go
package callbacks

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/boxflow/api/schemas"
	"github.com/xkilldash9x/boxflow/internal/css"
)

func TestUpdateMax(t *testing.T) {
	assert.Equal(t, DoNothing, DoNothing.Max(DoNothing))
	assert.Equal(t, RefreshDom, DoNothing.Max(RefreshDom))
	assert.Equal(t, RefreshDomAllWindows, RefreshDomAllWindows.Max(RefreshDom))
	assert.Equal(t, "RefreshDom", RefreshDom.String())
}

func TestFocusTargets(t *testing.T) {
	id := schemas.DomNodeID{Dom: schemas.RootDomID, Node: schemas.NodeIDFromIndex(3)}
	assert.Equal(t, FocusTarget{Kind: FocusByID, ID: id}, FocusOn(id))

	path := css.Path(css.Class("input"))
	byPath := FocusPath(schemas.RootDomID, path)
	assert.Equal(t, FocusByPath, byPath.Kind)
	assert.Equal(t, ".input", byPath.Path.String())

	assert.Equal(t, NoFocus, ClearFocus().Kind)
}

func TestIDsPrintAsUUIDs(t *testing.T) {
	u := uuid.New()
	assert.Equal(t, u.String(), TimerID(u).String())
	assert.Equal(t, u.String(), ThreadID(u).String())
	assert.Equal(t, Terminate, TerminateTimer(true))
}
