package translate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relcypher/graphengine/pkg/ast"
	"github.com/relcypher/graphengine/pkg/parser"
	"github.com/relcypher/graphengine/pkg/relstore"
	"github.com/relcypher/graphengine/pkg/translate"
)

func mustParse(t *testing.T, src string) ast.Root {
	t.Helper()
	root, err := parser.Parse(src)
	require.NoError(t, err)
	return root
}

func TestCompileSimpleMatchReturn(t *testing.T) {
	root := mustParse(t, "MATCH (n:Person) RETURN n.name AS name")
	cq, err := translate.Compile(root, "match_return")
	require.NoError(t, err)
	require.Len(t, cq.Plan.NodeScans, 1)
	assert.Equal(t, "n", cq.Plan.NodeScans[0].Alias)
	assert.Equal(t, []string{"Person"}, cq.Plan.NodeScans[0].Labels)
	require.Len(t, cq.Plan.Project, 1)
	assert.Equal(t, "name", cq.Plan.Project[0].Name)
	assert.Equal(t, "match_return", cq.PatternName)
	assert.NotEmpty(t, cq.SQL)
}

func TestCompileDefaultColumnNamingPriority(t *testing.T) {
	root := mustParse(t, "MATCH (n:Person) RETURN n, n.age, count(n)")
	cq, err := translate.Compile(root, "match_return")
	require.NoError(t, err)
	require.Len(t, cq.Plan.Project, 3)
	assert.Equal(t, "n", cq.Plan.Project[0].Name)
	assert.Equal(t, "n.age", cq.Plan.Project[1].Name)
	assert.Equal(t, "count(n)", cq.Plan.Project[2].Name)
	assert.True(t, cq.Plan.Project[2].Aggregate)
}

func TestCompileRelationshipJoinDirectionAndType(t *testing.T) {
	root := mustParse(t, "MATCH (a:Person)-[r:KNOWS]->(b:Person) RETURN a, b")
	cq, err := translate.Compile(root, "match_return")
	require.NoError(t, err)
	require.Len(t, cq.Plan.EdgeJoins, 1)
	ej := cq.Plan.EdgeJoins[0]
	assert.Equal(t, "a", ej.FromAlias)
	assert.Equal(t, "b", ej.ToAlias)
	assert.Equal(t, []string{"KNOWS"}, ej.Types)
	assert.Equal(t, relstore.DirOut, ej.Direction)
}

func TestCompileLeftDirectedRelationshipSwapsEndpoints(t *testing.T) {
	root := mustParse(t, "MATCH (a:Person)<-[:KNOWS]-(b:Person) RETURN a, b")
	cq, err := translate.Compile(root, "match_return")
	require.NoError(t, err)
	require.Len(t, cq.Plan.EdgeJoins, 1)
	ej := cq.Plan.EdgeJoins[0]
	assert.Equal(t, "b", ej.FromAlias)
	assert.Equal(t, "a", ej.ToAlias)
}

func TestCompileVariableLengthRelationship(t *testing.T) {
	root := mustParse(t, "MATCH (a:Person)-[:KNOWS*1..3]->(b:Person) RETURN a, b")
	cq, err := translate.Compile(root, "match_return")
	require.NoError(t, err)
	require.Len(t, cq.Plan.EdgeJoins, 1)
	require.NotNil(t, cq.Plan.EdgeJoins[0].Varlen)
	assert.Equal(t, 1, cq.Plan.EdgeJoins[0].Varlen.Min)
	assert.Equal(t, 3, cq.Plan.EdgeJoins[0].Varlen.Max)
}

func TestCompileRepeatedVariableNotRescanned(t *testing.T) {
	root := mustParse(t, "MATCH (a:Person)-[:KNOWS]->(b:Person), (b)-[:KNOWS]->(c:Person) RETURN a, b, c")
	cq, err := translate.Compile(root, "match_return")
	require.NoError(t, err)
	assert.Len(t, cq.Plan.NodeScans, 3)
}

func TestCompileWhereAndParameterCollection(t *testing.T) {
	root := mustParse(t, "MATCH (n:Person) WHERE n.age > $minAge RETURN n.name")
	cq, err := translate.Compile(root, "match_return")
	require.NoError(t, err)
	require.NotNil(t, cq.Plan.Where)
	assert.Contains(t, cq.ParamNames, "minAge")
}

func TestCompileUnion(t *testing.T) {
	root := mustParse(t, "MATCH (n:Person) RETURN n.name AS name UNION MATCH (n:Dog) RETURN n.name AS name")
	cq, err := translate.Compile(root, "with_match_return")
	require.NoError(t, err)
	require.NotNil(t, cq.Plan.Union)
	assert.False(t, cq.Plan.Union.All)
}

func TestIsAlgorithmCall(t *testing.T) {
	assert.True(t, translate.IsAlgorithmCall("pagerank"))
	assert.False(t, translate.IsAlgorithmCall("count"))
}

func TestStubAlgorithmRunnerReturnsUnsupported(t *testing.T) {
	r := translate.StubAlgorithmRunner{}
	_, err := r.Run("pagerank", nil)
	require.Error(t, err)
}

func TestCompileWithRestrictsScope(t *testing.T) {
	root := mustParse(t, "MATCH (a), (b) WITH a RETURN b")
	_, err := translate.Compile(root, "with_match_return")
	require.Error(t, err)
}

func TestCompileWithPassesThroughProjectedNames(t *testing.T) {
	root := mustParse(t, "MATCH (a), (b) WITH a, b RETURN b")
	cq, err := translate.Compile(root, "with_match_return")
	require.NoError(t, err)
	require.Len(t, cq.Plan.Project, 1)
	assert.Equal(t, "b", cq.Plan.Project[0].Name)
}

func TestCompileWithAliasIsVisibleAfterward(t *testing.T) {
	root := mustParse(t, "MATCH (n:Person) WITH n.age AS age RETURN age")
	cq, err := translate.Compile(root, "with_match_return")
	require.NoError(t, err)
	require.Len(t, cq.Plan.Project, 1)
	assert.Equal(t, "age", cq.Plan.Project[0].Name)
}
