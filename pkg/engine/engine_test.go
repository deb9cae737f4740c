package engine_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relcypher/graphengine/pkg/engine"
)

func openEngine(t *testing.T) *engine.Engine {
	t.Helper()
	eng, err := engine.Open("", engine.ReadWrite|engine.Create)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return eng
}

// TestCreateAndReturn is spec §8 scenario 1.
func TestCreateAndReturn(t *testing.T) {
	eng := openEngine(t)

	res := eng.Exec(`CREATE (a:Person {name:'Alice', age:30}) RETURN a.name, a.age`)
	require.True(t, res.Success, res.ErrorMessage)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Alice", res.Rows[0][0].Value.Str)
	assert.Equal(t, int64(30), res.Rows[0][1].Value.Int)
	assert.Equal(t, 1, res.Stats.NodesCreated)
	assert.Equal(t, 2, res.Stats.PropertiesSet)
}

// TestMergeIdempotence is spec §8 scenario 2.
func TestMergeIdempotence(t *testing.T) {
	eng := openEngine(t)

	first := eng.Exec(`MERGE (p:Person {email:'x@y'})`)
	require.True(t, first.Success, first.ErrorMessage)
	assert.Equal(t, 1, first.Stats.NodesCreated)
	assert.Equal(t, 1, first.Stats.PropertiesSet)

	second := eng.Exec(`MERGE (p:Person {email:'x@y'})`)
	require.True(t, second.Success, second.ErrorMessage)
	assert.Equal(t, 0, second.Stats.NodesCreated, "second MERGE must find the existing node")
	assert.Equal(t, 0, second.Stats.PropertiesSet)
}

// TestDetachDelete is spec §8 scenario 3.
func TestDetachDelete(t *testing.T) {
	eng := openEngine(t)

	setup := eng.Exec(`CREATE (a:X)-[:R]->(b:X)`)
	require.True(t, setup.Success, setup.ErrorMessage)

	bare := eng.Exec(`MATCH (a:X) DELETE a`)
	require.False(t, bare.Success)
	assert.Equal(t, engine.ConstraintViolationKind, bare.ErrorKind)
	assert.Equal(t, 0, bare.Stats.NodesDeleted, "a failed query's counters must reset to zero")

	unchanged := eng.Exec(`MATCH (n:X) RETURN count(n)`)
	require.True(t, unchanged.Success, unchanged.ErrorMessage)
	assert.Equal(t, int64(2), unchanged.Rows[0][0].Value.Int, "the constraint violation must not have modified the graph")

	detach := eng.Exec(`MATCH (a:X) DETACH DELETE a`)
	require.True(t, detach.Success, detach.ErrorMessage)
	assert.Equal(t, 2, detach.Stats.NodesDeleted)
	assert.Equal(t, 1, detach.Stats.RelationshipsDeleted)
}

// TestVariableLengthPath is spec §8 scenario 4.
func TestVariableLengthPath(t *testing.T) {
	eng := openEngine(t)

	setup := eng.Exec(`CREATE (a:N)-[:R]->(b:N)-[:R]->(c:N)-[:R]->(d:N)`)
	require.True(t, setup.Success, setup.ErrorMessage)

	res := eng.Exec(`MATCH p=(a)-[:R*2..3]->(z) RETURN length(p)`)
	require.True(t, res.Success, res.ErrorMessage)
	require.Len(t, res.Rows, 3)

	lengths := make([]int64, len(res.Rows))
	for i, row := range res.Rows {
		lengths[i] = row[0].Value.Int
	}
	sort.Slice(lengths, func(i, j int) bool { return lengths[i] < lengths[j] })
	assert.Equal(t, []int64{2, 2, 3}, lengths)
}

// TestParameterizedMatch is spec §8 scenario 5.
func TestParameterizedMatch(t *testing.T) {
	eng := openEngine(t)

	setup := eng.Exec(`CREATE (:P {name:'A'}), (:P {name:'B'})`)
	require.True(t, setup.Success, setup.ErrorMessage)

	res := eng.ExecWithParams(`MATCH (p:P {name:$n}) RETURN p.name`, `{"n":"A"}`)
	require.True(t, res.Success, res.ErrorMessage)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "A", res.Rows[0][0].Value.Str)
}

// TestExplain is spec §8 scenario 6.
func TestExplain(t *testing.T) {
	eng := openEngine(t)

	before := eng.Exec(`MATCH (n) RETURN count(n)`)
	require.True(t, before.Success, before.ErrorMessage)

	res := eng.Exec(`EXPLAIN MATCH (n) RETURN n`)
	require.True(t, res.Success, res.ErrorMessage)
	require.Len(t, res.Rows, 1)
	text := res.Rows[0][0].Text
	assert.Contains(t, text, "Pattern: ")
	assert.Contains(t, text, "Clauses: ")
	assert.Contains(t, text, "SQL: ")

	after := eng.Exec(`MATCH (n) RETURN count(n)`)
	require.True(t, after.Success, after.ErrorMessage)
	assert.Equal(t, before.Rows[0][0].Value.Int, after.Rows[0][0].Value.Int, "EXPLAIN must not modify the graph")
}

// TestParseErrorClassification exercises the ParseError path through
// classify rather than a silent Go panic or a bare error string.
func TestParseErrorClassification(t *testing.T) {
	eng := openEngine(t)
	res := eng.Exec(`MATCH (n RETURN n`)
	require.False(t, res.Success)
	assert.Equal(t, engine.ParseErrorKind, res.ErrorKind)
}

// TestInvalidParameterClassification exercises malformed JSON through
// params.ParseError -> InvalidParameter.
func TestInvalidParameterClassification(t *testing.T) {
	eng := openEngine(t)
	res := eng.ExecWithParams(`MATCH (n) RETURN n`, `{not json}`)
	require.False(t, res.Success)
	assert.Equal(t, engine.InvalidParameterKind, res.ErrorKind)
}
