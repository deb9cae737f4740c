package varctx_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relcypher/graphengine/pkg/varctx"
)

func TestRegisterAndLookup(t *testing.T) {
	c := varctx.New()
	c.RegisterNode("n", "t0")
	v, ok := c.LookupNode("n")
	require.True(t, ok)
	assert.Equal(t, "t0", v.Alias)
	assert.Equal(t, varctx.KindNode, v.Kind)

	_, ok = c.LookupEdge("n")
	assert.False(t, ok, "node variable should not satisfy an edge lookup")
}

func TestProjectHidesUnlistedVariables(t *testing.T) {
	c := varctx.New()
	c.RegisterNode("n", "t0")
	c.RegisterEdge("r", "t1")
	c.Project([]string{"n"})

	_, ok := c.Lookup("n")
	assert.True(t, ok)
	_, ok = c.Lookup("r")
	assert.False(t, ok, "r was not projected by WITH and should be hidden")
}

func TestProjectedVariableCanBeReboundAfterHiding(t *testing.T) {
	c := varctx.New()
	c.RegisterNode("n", "t0")
	c.Project(nil)
	_, ok := c.Lookup("n")
	require.False(t, ok)

	c.RegisterProjected("n", "agg0")
	v, ok := c.Lookup("n")
	require.True(t, ok)
	assert.Equal(t, varctx.KindProjected, v.Kind)
	assert.Equal(t, "agg0", v.Alias)
}

func TestEnterClauseTracksDeclaringClause(t *testing.T) {
	c := varctx.New()
	c.RegisterNode("n", "t0")
	c.EnterClause()
	c.RegisterNode("m", "t1")

	vn, _ := c.Lookup("n")
	vm, _ := c.Lookup("m")
	assert.Equal(t, 0, vn.Clause)
	assert.Equal(t, 1, vm.Clause)
}

func TestSetCTEAndGraphAndBound(t *testing.T) {
	c := varctx.New()
	c.RegisterPath("p", "path0")
	c.SetCTE("p", "cte_p")
	c.SetGraph("p", "social")
	c.SetBound("p")

	v, ok := c.LookupPath("p")
	require.True(t, ok)
	assert.Equal(t, "cte_p", v.CTE)
	assert.Equal(t, "social", v.Graph)
	assert.True(t, v.Bound)
}

func TestNamesPreservesDeclarationOrderAndVisibility(t *testing.T) {
	c := varctx.New()
	c.RegisterNode("a", "t0")
	c.RegisterNode("b", "t1")
	c.RegisterNode("c", "t2")
	c.Project([]string{"a", "c"})

	assert.Equal(t, []string{"a", "c"}, c.Names())
}
