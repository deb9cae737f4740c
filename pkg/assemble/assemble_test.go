package assemble_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relcypher/graphengine/pkg/assemble"
	"github.com/relcypher/graphengine/pkg/ast"
	"github.com/relcypher/graphengine/pkg/foreach"
	"github.com/relcypher/graphengine/pkg/graphvalue"
	"github.com/relcypher/graphengine/pkg/params"
	"github.com/relcypher/graphengine/pkg/parser"
	"github.com/relcypher/graphengine/pkg/relstore"
	"github.com/relcypher/graphengine/pkg/translate"
)

func mustParseRoot(t *testing.T, src string) ast.Root {
	t.Helper()
	root, err := parser.Parse(src)
	require.NoError(t, err)
	return root
}

func openStore(t *testing.T) *relstore.Store {
	t.Helper()
	s, err := relstore.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedPeople(t *testing.T, s *relstore.Store, ages ...int64) {
	t.Helper()
	for _, age := range ages {
		_, err := s.CreateNode([]string{"Person"}, map[string]graphvalue.Value{"age": graphvalue.Int(age)})
		require.NoError(t, err)
	}
}

func prepare(t *testing.T, s *relstore.Store, query string) (*relstore.Statement, []relstore.ProjectItem) {
	t.Helper()
	cq, err := translate.Compile(mustParseRoot(t, query), "test")
	require.NoError(t, err)
	be := relstore.NewBackend(s)
	st := be.Prepare(cq, foreach.New())
	return st, cq.Plan.Project
}

func TestAssembleNonAggregateRows(t *testing.T) {
	s := openStore(t)
	seedPeople(t, s, 30, 40)

	st, project := prepare(t, s, "MATCH (n:Person) RETURN n.age AS age")
	result, err := assemble.Assemble(st, project)
	require.NoError(t, err)

	assert.Equal(t, []string{"age"}, result.Columns)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "30", result.Rows[0][0].Text)
}

func TestAssembleZeroRowsFastPath(t *testing.T) {
	s := openStore(t)
	st, project := prepare(t, s, "MATCH (n:Person) RETURN n.age AS age")
	result, err := assemble.Assemble(st, project)
	require.NoError(t, err)
	assert.Empty(t, result.Rows)
}

func TestAssembleCountAggregate(t *testing.T) {
	s := openStore(t)
	seedPeople(t, s, 30, 40, 50)

	st, project := prepare(t, s, "MATCH (n:Person) RETURN count(n) AS total")
	result, err := assemble.Assemble(st, project)
	require.NoError(t, err)

	require.Len(t, result.Rows, 1)
	assert.Equal(t, graphvalue.Int(3), result.Rows[0][0].Value)
}

func TestAssembleSumAndAvgAggregate(t *testing.T) {
	s := openStore(t)
	seedPeople(t, s, 10, 20, 30)

	st, project := prepare(t, s, "MATCH (n:Person) RETURN sum(n.age) AS total, avg(n.age) AS mean")
	result, err := assemble.Assemble(st, project)
	require.NoError(t, err)

	require.Len(t, result.Rows, 1)
	assert.Equal(t, graphvalue.Int(60), result.Rows[0][0].Value)
	assert.Equal(t, graphvalue.Float(20), result.Rows[0][1].Value)
}

func TestAssembleMinMaxAggregate(t *testing.T) {
	s := openStore(t)
	seedPeople(t, s, 10, 20, 30)

	st, project := prepare(t, s, "MATCH (n:Person) RETURN min(n.age) AS lo, max(n.age) AS hi")
	result, err := assemble.Assemble(st, project)
	require.NoError(t, err)

	require.Len(t, result.Rows, 1)
	assert.Equal(t, graphvalue.Int(10), result.Rows[0][0].Value)
	assert.Equal(t, graphvalue.Int(30), result.Rows[0][1].Value)
}

func TestAssembleCollectAggregate(t *testing.T) {
	s := openStore(t)
	seedPeople(t, s, 10, 20)

	st, project := prepare(t, s, "MATCH (n:Person) RETURN collect(n.age) AS ages")
	result, err := assemble.Assemble(st, project)
	require.NoError(t, err)

	require.Len(t, result.Rows, 1)
	assert.Equal(t, graphvalue.KindList, result.Rows[0][0].Value.Kind)
	assert.Len(t, result.Rows[0][0].Value.List, 2)
}

func TestAssembleWithBoundParameter(t *testing.T) {
	s := openStore(t)
	seedPeople(t, s, 10, 40)

	cq, err := translate.Compile(mustParseRoot(t, "MATCH (n:Person) WHERE n.age > $minAge RETURN n.age AS age"), "test")
	require.NoError(t, err)
	be := relstore.NewBackend(s)
	st := be.Prepare(cq, foreach.New())

	binder := params.NewBinder(map[string]graphvalue.Value{"minAge": graphvalue.Int(20)})
	require.NoError(t, binder.BindAll(st, cq.ParamNames))

	result, err := assemble.Assemble(st, cq.Plan.Project)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "40", result.Rows[0][0].Text)
}
