package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relcypher/graphengine/pkg/ast"
	"github.com/relcypher/graphengine/pkg/parser"
)

func TestParseSimpleMatchReturn(t *testing.T) {
	root, err := parser.Parse(`MATCH (n:Person {name: 'Alice'})-[r:KNOWS]->(m) WHERE m.age > 21 RETURN n, r, m.age AS age`)
	require.NoError(t, err)
	q, ok := root.(*ast.Query)
	require.True(t, ok)
	require.Len(t, q.Clauses, 2)

	match, ok := q.Clauses[0].(*ast.MatchClause)
	require.True(t, ok)
	require.Len(t, match.Patterns, 1)
	path := match.Patterns[0]
	require.Len(t, path.Nodes, 2)
	require.Len(t, path.Rels, 1)
	assert.Equal(t, "n", path.Nodes[0].Var)
	assert.Equal(t, []string{"Person"}, path.Nodes[0].Labels)
	assert.Equal(t, ast.DirRight, path.Rels[0].Direction)
	assert.NotNil(t, match.Where)

	ret, ok := q.Clauses[1].(*ast.ReturnClause)
	require.True(t, ok)
	require.Len(t, ret.Items, 3)
	assert.Equal(t, "age", ret.Items[2].Alias)
}

func TestParseUndirectedVarlenPath(t *testing.T) {
	root, err := parser.Parse(`MATCH (a)-[:ROAD*1..3]-(b) RETURN a, b`)
	require.NoError(t, err)
	q := root.(*ast.Query)
	match := q.Clauses[0].(*ast.MatchClause)
	rel := match.Patterns[0].Rels[0]
	require.NotNil(t, rel.Varlen)
	assert.Equal(t, 1, rel.Varlen.Min)
	assert.Equal(t, 3, rel.Varlen.Max)
	assert.Equal(t, ast.DirEither, rel.Direction)
}

func TestParseMergeOnCreateOnMatch(t *testing.T) {
	root, err := parser.Parse(`
		MERGE (n:Counter {id: 1})
		ON CREATE SET n.count = 0
		ON MATCH SET n.count = n.count + 1
	`)
	require.NoError(t, err)
	q := root.(*ast.Query)
	merge := q.Clauses[0].(*ast.MergeClause)
	require.Len(t, merge.OnCreate, 1)
	require.Len(t, merge.OnMatch, 1)
	assert.Equal(t, ast.SetItemProperty, merge.OnCreate[0].Kind)
}

func TestParseDeleteDetach(t *testing.T) {
	root, err := parser.Parse(`MATCH (n) DETACH DELETE n`)
	require.NoError(t, err)
	q := root.(*ast.Query)
	del := q.Clauses[1].(*ast.DeleteClause)
	assert.True(t, del.Detach)
	assert.Equal(t, []string{"n"}, del.Variables)
}

func TestParseWithUnwindAndReturnModifiers(t *testing.T) {
	root, err := parser.Parse(`
		MATCH (n)
		WITH n, n.tags AS tags
		UNWIND tags AS tag
		RETURN DISTINCT tag
		ORDER BY tag DESC
		SKIP 1
		LIMIT 10
	`)
	require.NoError(t, err)
	q := root.(*ast.Query)
	require.Len(t, q.Clauses, 4)
	with := q.Clauses[1].(*ast.WithClause)
	require.Len(t, with.Items, 2)
	unwind := q.Clauses[2].(*ast.UnwindClause)
	assert.Equal(t, "tag", unwind.Alias)
	ret := q.Clauses[3].(*ast.ReturnClause)
	assert.True(t, ret.Distinct)
	require.Len(t, ret.OrderBy, 1)
	assert.True(t, ret.OrderBy[0].Desc)
	require.NotNil(t, ret.Skip)
	require.NotNil(t, ret.Limit)
}

func TestParseForeachNested(t *testing.T) {
	root, err := parser.Parse(`
		MATCH p = (a)-[*]->(b)
		FOREACH (n IN nodes(p) | SET n.visited = true)
		RETURN p
	`)
	require.NoError(t, err)
	q := root.(*ast.Query)
	fe := q.Clauses[1].(*ast.ForeachClause)
	assert.Equal(t, "n", fe.Variable)
	require.Len(t, fe.Body, 1)
	_, ok := fe.Body[0].(*ast.SetClause)
	assert.True(t, ok)
}

func TestParseUnionChain(t *testing.T) {
	root, err := parser.Parse(`MATCH (n) RETURN n.id AS id UNION MATCH (m) RETURN m.id AS id UNION ALL MATCH (k) RETURN k.id AS id`)
	require.NoError(t, err)
	u, ok := root.(*ast.Union)
	require.True(t, ok)
	assert.True(t, u.All)
	inner, ok := u.Left.(*ast.Union)
	require.True(t, ok)
	assert.False(t, inner.All)
}

func TestParseExpressionPrecedence(t *testing.T) {
	root, err := parser.Parse(`RETURN 1 + 2 * 3 = 7 AND NOT false`)
	require.NoError(t, err)
	q := root.(*ast.Query)
	ret := q.Clauses[0].(*ast.ReturnClause)
	top, ok := ret.Items[0].Expr.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.OpAnd, top.Op)
	eq, ok := top.Left.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.OpEq, eq.Op)
	mul, ok := eq.Left.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.OpAdd, mul.Op)
}

func TestParseListAndMapLiterals(t *testing.T) {
	root, err := parser.Parse(`RETURN [1, 2, 3] AS xs, {a: 1, b: 'two'} AS m, [x IN range(1,3) WHERE x > 1 | x * 2] AS ys`)
	require.NoError(t, err)
	q := root.(*ast.Query)
	ret := q.Clauses[0].(*ast.ReturnClause)
	_, ok := ret.Items[0].Expr.(*ast.ListExpr)
	assert.True(t, ok)
	_, ok = ret.Items[1].Expr.(*ast.MapLiteral)
	assert.True(t, ok)
	lc, ok := ret.Items[2].Expr.(*ast.ListComprehension)
	require.True(t, ok)
	assert.Equal(t, "x", lc.Var)
	assert.NotNil(t, lc.Where)
	assert.NotNil(t, lc.Transform)
}

func TestParseCaseExpression(t *testing.T) {
	root, err := parser.Parse(`RETURN CASE WHEN n.age > 18 THEN 'adult' ELSE 'minor' END AS bucket`)
	require.NoError(t, err)
	q := root.(*ast.Query)
	ret := q.Clauses[0].(*ast.ReturnClause)
	ce, ok := ret.Items[0].Expr.(*ast.CaseExpr)
	require.True(t, ok)
	require.Len(t, ce.Whens, 1)
	assert.NotNil(t, ce.Else)
}

func TestParseErrorReportsLocation(t *testing.T) {
	_, err := parser.Parse(`MATCH (n) RETURN n WHERE`)
	require.Error(t, err)
	perr, ok := err.(*parser.ParseError)
	require.True(t, ok)
	assert.Greater(t, perr.Line, 0)
}

func TestCacheReturnsSameTreeForRepeatedQuery(t *testing.T) {
	c := parser.NewCache(8)
	q1, err := c.ParseCached(`MATCH (n) RETURN n`)
	require.NoError(t, err)
	q2, err := c.ParseCached(`MATCH (n) RETURN n`)
	require.NoError(t, err)
	assert.Same(t, q1, q2)
	assert.Equal(t, 1, c.Len())
}

func TestCacheEvictsOldestWhenFull(t *testing.T) {
	c := parser.NewCache(2)
	_, err := c.ParseCached(`RETURN 1`)
	require.NoError(t, err)
	_, err = c.ParseCached(`RETURN 2`)
	require.NoError(t, err)
	_, err = c.ParseCached(`RETURN 3`)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
}
