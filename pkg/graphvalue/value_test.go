package graphvalue_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relcypher/graphengine/pkg/graphvalue"
)

func TestNullIsDistinctKind(t *testing.T) {
	assert.True(t, graphvalue.Null.IsNull())
	assert.Equal(t, graphvalue.KindNull, graphvalue.Null.Type())
	assert.Equal(t, "null", graphvalue.Null.String())
}

func TestScalarConstructorsAndString(t *testing.T) {
	assert.Equal(t, "42", graphvalue.Int(42).String())
	assert.Equal(t, "true", graphvalue.Bool(true).String())
	assert.Equal(t, "\"hi\"", graphvalue.Str("hi").String())
	assert.Equal(t, graphvalue.KindFloat, graphvalue.Float(1.5).Type())
}

func TestVertexStringIncludesLabelsAndProps(t *testing.T) {
	v := graphvalue.VertexVal(graphvalue.Vertex{
		ID:     1,
		Labels: []string{"Person"},
		Properties: map[string]graphvalue.Value{
			"name": graphvalue.Str("Alice"),
		},
	})
	s := v.String()
	assert.Contains(t, s, ":Person")
	assert.Contains(t, s, "name: \"Alice\"")
}

func TestPathStringAlternatesVertexAndEdge(t *testing.T) {
	p := graphvalue.PathVal(graphvalue.Path{
		Vertices: []graphvalue.Vertex{{ID: 1, Labels: []string{"A"}}, {ID: 2, Labels: []string{"B"}}},
		Edges:    []graphvalue.Edge{{ID: 10, Type: "KNOWS", From: 1, To: 2}},
	})
	s := p.String()
	assert.Contains(t, s, ":A")
	assert.Contains(t, s, ":KNOWS")
	assert.Contains(t, s, ":B")
}

func TestListAndMapString(t *testing.T) {
	l := graphvalue.ListVal([]graphvalue.Value{graphvalue.Int(1), graphvalue.Int(2)})
	assert.Equal(t, "[1, 2]", l.String())

	m := graphvalue.MapVal(map[string]graphvalue.Value{"a": graphvalue.Int(1)})
	assert.Equal(t, "{a: 1}", m.String())
}
