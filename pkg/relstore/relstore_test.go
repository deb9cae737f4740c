package relstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relcypher/graphengine/pkg/ast"
	"github.com/relcypher/graphengine/pkg/graphvalue"
	"github.com/relcypher/graphengine/pkg/relstore"
)

func openStore(t *testing.T) *relstore.Store {
	t.Helper()
	s, err := relstore.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func ident(name string) ast.Expression {
	return &ast.Identifier{Name: name}
}

func TestCreateAndLoadNode(t *testing.T) {
	s := openStore(t)
	id, err := s.CreateNode([]string{"Person"}, map[string]graphvalue.Value{"name": graphvalue.Str("Alice")})
	require.NoError(t, err)

	v, err := s.LoadNode(id)
	require.NoError(t, err)
	assert.Equal(t, []string{"Person"}, v.Labels)
	assert.Equal(t, "Alice", v.Properties["name"].Str)
}

func TestAddAndRemoveLabel(t *testing.T) {
	s := openStore(t)
	id, err := s.CreateNode(nil, nil)
	require.NoError(t, err)

	require.NoError(t, s.AddLabel(id, "Person"))
	v, err := s.LoadNode(id)
	require.NoError(t, err)
	assert.Equal(t, []string{"Person"}, v.Labels)

	require.NoError(t, s.RemoveLabel(id, "Person"))
	v, err = s.LoadNode(id)
	require.NoError(t, err)
	assert.Empty(t, v.Labels)
}

func TestSetAndDeleteNodeProperty(t *testing.T) {
	s := openStore(t)
	id, err := s.CreateNode(nil, nil)
	require.NoError(t, err)

	require.NoError(t, s.SetNodeProperty(id, "age", graphvalue.Int(30)))
	v, err := s.LoadNode(id)
	require.NoError(t, err)
	assert.Equal(t, int64(30), v.Properties["age"].Int)

	require.NoError(t, s.DeleteNodeProperty(id, "age"))
	v, err = s.LoadNode(id)
	require.NoError(t, err)
	_, ok := v.Properties["age"]
	assert.False(t, ok)
}

func TestCreateAndLoadEdge(t *testing.T) {
	s := openStore(t)
	a, err := s.CreateNode([]string{"Person"}, nil)
	require.NoError(t, err)
	b, err := s.CreateNode([]string{"Person"}, nil)
	require.NoError(t, err)

	eid, err := s.CreateEdge(a, b, "KNOWS", map[string]graphvalue.Value{"since": graphvalue.Int(2020)})
	require.NoError(t, err)

	e, err := s.LoadEdge(eid)
	require.NoError(t, err)
	assert.Equal(t, a, e.From)
	assert.Equal(t, b, e.To)
	assert.Equal(t, "KNOWS", e.Type)
	assert.Equal(t, int64(2020), e.Properties["since"].Int)

	has, err := s.HasIncidentEdges(a)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestFindNodeByLabelAndProps(t *testing.T) {
	s := openStore(t)
	_, err := s.CreateNode([]string{"Person"}, map[string]graphvalue.Value{"name": graphvalue.Str("Bob")})
	require.NoError(t, err)
	want, err := s.CreateNode([]string{"Person"}, map[string]graphvalue.Value{"name": graphvalue.Str("Carol")})
	require.NoError(t, err)

	got, ok, err := s.FindNodeByLabelAndProps([]string{"Person"}, map[string]graphvalue.Value{"name": graphvalue.Str("Carol")})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	_, ok, err = s.FindNodeByLabelAndProps([]string{"Person"}, map[string]graphvalue.Value{"name": graphvalue.Str("Nobody")})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteNodeAndEdge(t *testing.T) {
	s := openStore(t)
	a, err := s.CreateNode([]string{"Person"}, nil)
	require.NoError(t, err)
	b, err := s.CreateNode([]string{"Person"}, nil)
	require.NoError(t, err)
	eid, err := s.CreateEdge(a, b, "KNOWS", nil)
	require.NoError(t, err)

	require.NoError(t, s.DeleteEdge(eid))
	has, err := s.HasIncidentEdges(a)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, s.DeleteNode(a))
	_, err = s.LoadNode(a)
	assert.ErrorIs(t, err, relstore.ErrNotFound)
}

func TestExecutorSimpleNodeScanAndProject(t *testing.T) {
	s := openStore(t)
	_, err := s.CreateNode([]string{"Person"}, map[string]graphvalue.Value{"name": graphvalue.Str("Alice"), "age": graphvalue.Int(30)})
	require.NoError(t, err)
	_, err = s.CreateNode([]string{"Person"}, map[string]graphvalue.Value{"name": graphvalue.Str("Bob"), "age": graphvalue.Int(25)})
	require.NoError(t, err)
	_, err = s.CreateNode([]string{"Dog"}, nil)
	require.NoError(t, err)

	plan := &relstore.Plan{
		NodeScans: []*relstore.NodeScan{{Alias: "n", Labels: []string{"Person"}}},
		Project:   []relstore.ProjectItem{{Name: "name", Expr: &ast.PropertyExpr{Target: ident("n"), Name: "name"}}},
		OrderBy:   []relstore.OrderItem{{Expr: &ast.PropertyExpr{Target: ident("n"), Name: "name"}}},
	}

	ex := relstore.NewExecutor(s, nil, nil)
	names, rows, err := ex.Run(plan)
	require.NoError(t, err)
	require.Equal(t, []string{"name"}, names)
	require.Len(t, rows, 2)
	assert.Equal(t, "Alice", rows[0]["name"].Str)
	assert.Equal(t, "Bob", rows[1]["name"].Str)
}

func TestExecutorEdgeJoinAndWhere(t *testing.T) {
	s := openStore(t)
	a, err := s.CreateNode([]string{"Person"}, map[string]graphvalue.Value{"name": graphvalue.Str("Alice")})
	require.NoError(t, err)
	b, err := s.CreateNode([]string{"Person"}, map[string]graphvalue.Value{"name": graphvalue.Str("Bob")})
	require.NoError(t, err)
	c, err := s.CreateNode([]string{"Person"}, map[string]graphvalue.Value{"name": graphvalue.Str("Carol")})
	require.NoError(t, err)
	_, err = s.CreateEdge(a, b, "KNOWS", nil)
	require.NoError(t, err)
	_, err = s.CreateEdge(a, c, "KNOWS", nil)
	require.NoError(t, err)

	plan := &relstore.Plan{
		NodeScans: []*relstore.NodeScan{
			{Alias: "a", Labels: []string{"Person"}, InlineProps: map[string]ast.Expression{"name": &ast.Literal{Kind: ast.LitString, StringVal: "Alice"}}},
			{Alias: "b", Labels: []string{"Person"}},
		},
		EdgeJoins: []*relstore.EdgeJoin{
			{Alias: "r", Types: []string{"KNOWS"}, FromAlias: "a", ToAlias: "b", Direction: relstore.DirOut},
		},
		Where: &ast.BinaryExpr{
			Op:    ast.OpGt,
			Left:  &ast.PropertyExpr{Target: ident("b"), Name: "name"},
			Right: &ast.Literal{Kind: ast.LitString, StringVal: "Bob"},
		},
		Project: []relstore.ProjectItem{{Name: "bname", Expr: &ast.PropertyExpr{Target: ident("b"), Name: "name"}}},
	}

	ex := relstore.NewExecutor(s, nil, nil)
	names, rows, err := ex.Run(plan)
	require.NoError(t, err)
	require.Equal(t, []string{"bname"}, names)
	require.Len(t, rows, 1)
	assert.Equal(t, "Carol", rows[0]["bname"].Str)
}

func TestExecutorSkipAndLimit(t *testing.T) {
	s := openStore(t)
	for _, name := range []string{"A", "B", "C", "D"} {
		_, err := s.CreateNode([]string{"Person"}, map[string]graphvalue.Value{"name": graphvalue.Str(name)})
		require.NoError(t, err)
	}

	plan := &relstore.Plan{
		NodeScans: []*relstore.NodeScan{{Alias: "n", Labels: []string{"Person"}}},
		Project:   []relstore.ProjectItem{{Name: "name", Expr: &ast.PropertyExpr{Target: ident("n"), Name: "name"}}},
		OrderBy:   []relstore.OrderItem{{Expr: &ast.PropertyExpr{Target: ident("n"), Name: "name"}}},
		Skip:      &ast.Literal{Kind: ast.LitInteger, IntVal: 1},
		Limit:     &ast.Literal{Kind: ast.LitInteger, IntVal: 2},
	}

	ex := relstore.NewExecutor(s, nil, nil)
	_, rows, err := ex.Run(plan)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "B", rows[0]["name"].Str)
	assert.Equal(t, "C", rows[1]["name"].Str)
}

func TestRegisterBuiltinScalarsReverse(t *testing.T) {
	s := openStore(t)
	be := relstore.NewBackend(s)
	relstore.RegisterBuiltinScalars(be)
	fn, ok := be.ScalarFunction("REVERSE")
	require.True(t, ok)
	v, err := fn([]graphvalue.Value{graphvalue.Str("hello")})
	require.NoError(t, err)
	assert.Equal(t, "olleh", v.Str)
}
