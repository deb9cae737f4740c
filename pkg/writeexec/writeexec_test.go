package writeexec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relcypher/graphengine/pkg/ast"
	"github.com/relcypher/graphengine/pkg/foreach"
	"github.com/relcypher/graphengine/pkg/graphvalue"
	"github.com/relcypher/graphengine/pkg/params"
	"github.com/relcypher/graphengine/pkg/relstore"
	"github.com/relcypher/graphengine/pkg/writeexec"
)

func openStore(t *testing.T) *relstore.Store {
	t.Helper()
	s, err := relstore.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newExecutor(t *testing.T, s *relstore.Store) *writeexec.Executor {
	t.Helper()
	return writeexec.New(s, params.NewBinder(nil), foreach.New())
}

func strLit(s string) ast.Expression {
	return &ast.Literal{Kind: ast.LitString, StringVal: s}
}

func intLit(n int64) ast.Expression {
	return &ast.Literal{Kind: ast.LitInteger, IntVal: n}
}

func mapLit(entries map[string]ast.Expression) *ast.MapLiteral {
	m := &ast.MapLiteral{}
	for k, v := range entries {
		m.Entries = append(m.Entries, ast.MapEntry{Key: k, Value: v})
	}
	return m
}

func TestExecuteCreateNodeAndRelationship(t *testing.T) {
	s := openStore(t)
	ex := newExecutor(t, s)
	row := writeexec.Row{}

	path := &ast.Path{
		Nodes: []*ast.NodePattern{
			{Var: "a", Labels: []string{"Person"}, Properties: mapLit(map[string]ast.Expression{"name": strLit("Alice")})},
			{Var: "b", Labels: []string{"Person"}, Properties: mapLit(map[string]ast.Expression{"name": strLit("Bob")})},
		},
		Rels: []*ast.RelPattern{
			{Var: "r", Types: []string{"KNOWS"}, Direction: ast.DirRight},
		},
	}

	err := ex.ExecuteCreate(row, []*ast.Path{path})
	require.NoError(t, err)

	assert.Equal(t, 2, ex.Stats.NodesCreated)
	assert.Equal(t, 1, ex.Stats.RelationshipsCreated)
	assert.Equal(t, 2, ex.Stats.PropertiesSet)

	a, ok := row["a"]
	require.True(t, ok)
	assert.Equal(t, graphvalue.KindVertex, a.Kind)

	r, ok := row["r"]
	require.True(t, ok)
	assert.Equal(t, graphvalue.KindEdge, r.Kind)
	assert.Equal(t, "KNOWS", r.Edge.Type)
	assert.Equal(t, a.Vertex.ID, r.Edge.From)
}

func TestExecuteCreateReusesAlreadyBoundNode(t *testing.T) {
	s := openStore(t)
	ex := newExecutor(t, s)
	row := writeexec.Row{}

	first := &ast.Path{Nodes: []*ast.NodePattern{{Var: "a", Labels: []string{"Person"}}}}
	require.NoError(t, ex.ExecuteCreate(row, []*ast.Path{first}))
	assert.Equal(t, 1, ex.Stats.NodesCreated)

	second := &ast.Path{
		Nodes: []*ast.NodePattern{
			{Var: "a", Labels: []string{"Person"}},
			{Var: "c", Labels: []string{"Person"}},
		},
		Rels: []*ast.RelPattern{{Direction: ast.DirRight}},
	}
	require.NoError(t, ex.ExecuteCreate(row, []*ast.Path{second}))
	assert.Equal(t, 2, ex.Stats.NodesCreated, "a must be reused, only c is newly created")
}

func TestExecuteMergeIdempotent(t *testing.T) {
	s := openStore(t)
	ex := newExecutor(t, s)

	cl := &ast.MergeClause{
		Pattern: &ast.Path{Nodes: []*ast.NodePattern{
			{Var: "p", Labels: []string{"Person"}, Properties: mapLit(map[string]ast.Expression{"email": strLit("x@y")})},
		}},
		OnCreate: []*ast.SetItem{{
			Kind:     ast.SetItemProperty,
			Property: &ast.PropertyExpr{Target: &ast.Identifier{Name: "p"}, Name: "created"},
			Value:    intLit(1),
		}},
	}

	require.NoError(t, ex.ExecuteMerge(writeexec.Row{}, cl))
	assert.Equal(t, 1, ex.Stats.NodesCreated)

	require.NoError(t, ex.ExecuteMerge(writeexec.Row{}, cl))
	assert.Equal(t, 1, ex.Stats.NodesCreated, "second MERGE must find the existing node, not create another")
}

func TestExecuteSetPropertyAndLabel(t *testing.T) {
	s := openStore(t)
	ex := newExecutor(t, s)
	row := writeexec.Row{}
	require.NoError(t, ex.ExecuteCreate(row, []*ast.Path{{Nodes: []*ast.NodePattern{{Var: "n", Labels: []string{"Person"}}}}}))

	items := []*ast.SetItem{
		{Kind: ast.SetItemProperty, Property: &ast.PropertyExpr{Target: &ast.Identifier{Name: "n"}, Name: "age"}, Value: intLit(30)},
		{Kind: ast.SetItemLabel, Variable: "n", Label: "Employee"},
	}
	require.NoError(t, ex.ExecuteSet(row, items))
	assert.Equal(t, 2, ex.Stats.PropertiesSet)

	loaded, err := s.LoadNode(row["n"].Vertex.ID)
	require.NoError(t, err)
	assert.Contains(t, loaded.Labels, "Employee")
	assert.Equal(t, int64(30), loaded.Properties["age"].Int)
}

func TestExecuteDeleteConstraintViolationWithoutDetach(t *testing.T) {
	s := openStore(t)
	ex := newExecutor(t, s)
	row := writeexec.Row{}
	path := &ast.Path{
		Nodes: []*ast.NodePattern{{Var: "a"}, {Var: "b"}},
		Rels:  []*ast.RelPattern{{Direction: ast.DirRight}},
	}
	require.NoError(t, ex.ExecuteCreate(row, []*ast.Path{path}))

	err := ex.ExecuteDelete(row, []string{"a"}, false)
	require.Error(t, err)
	assert.Equal(t, 0, ex.Stats.NodesDeleted)
}

func TestExecuteDetachDeleteRemovesNodeAndEdges(t *testing.T) {
	s := openStore(t)
	ex := newExecutor(t, s)
	row := writeexec.Row{}
	path := &ast.Path{
		Nodes: []*ast.NodePattern{{Var: "a"}, {Var: "b"}},
		Rels:  []*ast.RelPattern{{Direction: ast.DirRight}},
	}
	require.NoError(t, ex.ExecuteCreate(row, []*ast.Path{path}))

	require.NoError(t, ex.ExecuteDelete(row, []string{"a"}, true))
	assert.Equal(t, 1, ex.Stats.NodesDeleted)
	assert.Equal(t, 1, ex.Stats.RelationshipsDeleted)
}

func TestExecuteForeachCreatesPerElement(t *testing.T) {
	s := openStore(t)
	ex := newExecutor(t, s)
	row := writeexec.Row{}

	cl := &ast.ForeachClause{
		Variable: "x",
		List:     &ast.ListExpr{Items: []ast.Expression{intLit(1), intLit(2), intLit(3)}},
		Body: []ast.Clause{
			&ast.CreateClause{Patterns: []*ast.Path{{Nodes: []*ast.NodePattern{{Labels: []string{"N"}}}}}},
		},
	}
	require.NoError(t, ex.ExecuteForeach(row, cl))
	assert.Equal(t, 3, ex.Stats.NodesCreated)
}

func TestExecuteUnwindCreate(t *testing.T) {
	s := openStore(t)
	ex := newExecutor(t, s)
	row := writeexec.Row{}

	unwind := &ast.UnwindClause{Expr: &ast.ListExpr{Items: []ast.Expression{strLit("a"), strLit("b")}}, Alias: "x"}
	create := &ast.CreateClause{Patterns: []*ast.Path{{Nodes: []*ast.NodePattern{{Labels: []string{"N"}}}}}}

	require.NoError(t, ex.ExecuteUnwindCreate(row, unwind, create))
	assert.Equal(t, 2, ex.Stats.NodesCreated)
}
