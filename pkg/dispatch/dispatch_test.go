package dispatch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relcypher/graphengine/pkg/ast"
	"github.com/relcypher/graphengine/pkg/dispatch"
)

func TestPatternDispatchTotality(t *testing.T) {
	table := dispatch.NewDefaultTable()
	for mask := 0; mask < 1<<16; mask++ {
		e := table.FindMatchingPattern(dispatch.Flag(mask))
		require.NotNilf(t, e, "mask %d returned no entry", mask)
	}
}

func TestPatternUniqueness(t *testing.T) {
	table := dispatch.NewDefaultTable()
	entries := table.Entries()
	for mask := 0; mask < 1<<16; mask++ {
		present := dispatch.Flag(mask)
		bestPriority := -1
		winners := 0
		for i := range entries {
			e := &entries[i]
			if present&e.Required != e.Required || present&e.Forbidden != 0 {
				continue
			}
			switch {
			case e.Priority > bestPriority:
				bestPriority = e.Priority
				winners = 1
			case e.Priority == bestPriority:
				winners++
			}
		}
		require.Equalf(t, 1, winners, "mask %d (%s) ties at priority %d", mask, present, bestPriority)
	}
}

func TestFindMatchingPatternPicksHighestPriority(t *testing.T) {
	table := dispatch.NewDefaultTable()
	e := table.FindMatchingPattern(dispatch.MATCH | dispatch.CREATE | dispatch.RETURN)
	require.NotNil(t, e)
	assert.Equal(t, "match_create_return", e.Name)
}

func TestFindMatchingPatternGenericFallback(t *testing.T) {
	table := dispatch.NewDefaultTable()
	e := table.FindMatchingPattern(dispatch.CALL)
	require.NotNil(t, e)
	assert.Equal(t, "GENERIC", e.Name)
}

func TestAnalyzeCountsMultiMatchAndOptional(t *testing.T) {
	loc := ast.Location{Line: 1, Col: 1}
	m1 := &ast.MatchClause{}
	m1.Location = loc
	m2 := &ast.MatchClause{Optional: true}
	m2.Location = loc
	ret := &ast.ReturnClause{}
	ret.Location = loc

	q := ast.NewQuery(loc, []ast.Clause{m1, m2, ret})
	present := dispatch.Analyze(q)

	assert.NotZero(t, present&dispatch.MATCH)
	assert.NotZero(t, present&dispatch.MULTI_MATCH)
	assert.NotZero(t, present&dispatch.OPTIONAL)
	assert.NotZero(t, present&dispatch.RETURN)
}

func TestAnalyzeSingleMatchHasNoMultiMatchBit(t *testing.T) {
	loc := ast.Location{Line: 1, Col: 1}
	m1 := &ast.MatchClause{}
	m1.Location = loc
	q := ast.NewQuery(loc, []ast.Clause{m1})
	present := dispatch.Analyze(q)
	assert.Zero(t, present&dispatch.MULTI_MATCH)
}

func TestAnalyzeExplainFlag(t *testing.T) {
	loc := ast.Location{Line: 1, Col: 1}
	q := ast.NewQuery(loc, nil)
	q.Explain = true
	present := dispatch.Analyze(q)
	assert.NotZero(t, present&dispatch.EXPLAIN)
}

func TestFlagStringRendersPresentBits(t *testing.T) {
	s := (dispatch.MATCH | dispatch.RETURN).String()
	assert.Equal(t, "MATCH|RETURN", s)
}
