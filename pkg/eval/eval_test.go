package eval_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relcypher/graphengine/pkg/ast"
	"github.com/relcypher/graphengine/pkg/eval"
	"github.com/relcypher/graphengine/pkg/graphvalue"
	"github.com/relcypher/graphengine/pkg/parser"
)

func parseExpr(t *testing.T, src string) ast.Expression {
	t.Helper()
	root, err := parser.Parse("RETURN " + src + " AS x")
	require.NoError(t, err)
	q, ok := root.(*ast.Query)
	require.True(t, ok)
	rc, ok := q.Clauses[0].(*ast.ReturnClause)
	require.True(t, ok)
	return rc.Items[0].Expr
}

func evalExpr(t *testing.T, src string, row eval.Row) graphvalue.Value {
	t.Helper()
	e := eval.New(row, nil, nil)
	v, err := e.Eval(parseExpr(t, src))
	require.NoError(t, err)
	return v
}

func TestEvalArithmeticAndPrecedence(t *testing.T) {
	v := evalExpr(t, "1 + 2 * 3", nil)
	assert.Equal(t, int64(7), v.Int)
}

func TestEvalStringConcatenation(t *testing.T) {
	v := evalExpr(t, "'a' + 'b'", nil)
	assert.Equal(t, "ab", v.Str)
}

func TestEvalThreeValuedAnd(t *testing.T) {
	v := evalExpr(t, "false AND null", nil)
	assert.False(t, v.Bool)
	v = evalExpr(t, "true AND null", nil)
	assert.True(t, v.IsNull())
}

func TestEvalComparisonAndIn(t *testing.T) {
	v := evalExpr(t, "3 IN [1,2,3]", nil)
	assert.True(t, v.Bool)
	v = evalExpr(t, "4 IN [1,2,3]", nil)
	assert.False(t, v.Bool)
}

func TestEvalPropertyAccessOnVertex(t *testing.T) {
	row := eval.Row{"n": graphvalue.VertexVal(graphvalue.Vertex{
		ID: 1, Labels: []string{"Person"},
		Properties: map[string]graphvalue.Value{"name": graphvalue.Str("Alice")},
	})}
	v := evalExpr(t, "n.name", row)
	assert.Equal(t, "Alice", v.Str)
}

func TestEvalUnboundVariableErrors(t *testing.T) {
	e := eval.New(eval.Row{}, nil, nil)
	_, err := e.Eval(parseExpr(t, "missing"))
	require.Error(t, err)
	ee, ok := err.(*eval.Error)
	require.True(t, ok)
	assert.Equal(t, "UnboundVariable", ee.Kind)
}

func TestEvalListComprehension(t *testing.T) {
	v := evalExpr(t, "[x IN [1,2,3,4] WHERE x > 2 | x * 10]", nil)
	require.Equal(t, graphvalue.KindList, v.Kind)
	require.Len(t, v.List, 2)
	assert.Equal(t, int64(30), v.List[0].Int)
	assert.Equal(t, int64(40), v.List[1].Int)
}

func TestEvalListPredicates(t *testing.T) {
	assert.True(t, evalExpr(t, "all(x IN [2,4,6] WHERE x % 2 = 0)", nil).Bool)
	assert.False(t, evalExpr(t, "none(x IN [2,4,5] WHERE x % 2 = 0)", nil).Bool)
}

func TestEvalCaseExpression(t *testing.T) {
	v := evalExpr(t, "CASE WHEN 1 > 2 THEN 'a' WHEN 2 > 1 THEN 'b' ELSE 'c' END", nil)
	assert.Equal(t, "b", v.Str)
}

func TestEvalSubscriptAndSlice(t *testing.T) {
	v := evalExpr(t, "[1,2,3,4,5][1]", nil)
	assert.Equal(t, int64(2), v.Int)
	v = evalExpr(t, "[1,2,3,4,5][1..3]", nil)
	require.Len(t, v.List, 2)
	assert.Equal(t, int64(2), v.List[0].Int)
}

func TestEvalFunctions(t *testing.T) {
	assert.Equal(t, "OLLEH", evalExpr(t, "toUpper(reverse('hello'))", nil).Str)
	assert.Equal(t, int64(5), evalExpr(t, "size('hello')", nil).Int)
	assert.True(t, evalExpr(t, "coalesce(null, null, true)", nil).Bool)
}

func TestReverseBytesSharedWithSQLFunction(t *testing.T) {
	assert.Equal(t, "cba", eval.ReverseBytes("abc"))
	assert.Equal(t, "", eval.ReverseBytes(""))
}
