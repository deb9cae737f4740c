package foreach_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relcypher/graphengine/pkg/foreach"
	"github.com/relcypher/graphengine/pkg/graphvalue"
)

func TestLookupOutsideAnyFrameMisses(t *testing.T) {
	c := foreach.New()
	_, ok := c.Lookup("x")
	assert.False(t, ok)
}

func TestPushBindLookup(t *testing.T) {
	c := foreach.New()
	c.Push()
	c.PushInt("i", 3)
	v, ok := c.Lookup("i")
	require.True(t, ok)
	assert.Equal(t, int64(3), v.Int)
}

func TestNestedFrameShadowsOuter(t *testing.T) {
	c := foreach.New()
	c.Push()
	c.PushString("x", "outer")
	c.Push()
	c.PushString("x", "inner")

	v, ok := c.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, "inner", v.Str)

	c.Pop()
	v, ok = c.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, "outer", v.Str)
}

func TestPopBeyondEmptyIsSafe(t *testing.T) {
	c := foreach.New()
	c.Pop()
	assert.Equal(t, 0, c.Depth())
}

func TestBindGraphValue(t *testing.T) {
	c := foreach.New()
	c.Push()
	c.Bind("n", graphvalue.VertexVal(graphvalue.Vertex{ID: 1}))
	v, ok := c.Lookup("n")
	require.True(t, ok)
	assert.Equal(t, graphvalue.KindVertex, v.Kind)
}
