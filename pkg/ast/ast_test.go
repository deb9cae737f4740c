package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryDisposeIdempotent(t *testing.T) {
	q := NewQuery(Location{1, 1}, []Clause{
		&ReturnClause{Items: []*ReturnItem{{Expr: IntLiteral(Location{1, 8}, 1)}}},
	})

	assert.False(t, q.Disposed())
	q.Dispose()
	assert.True(t, q.Disposed())
	// A second Dispose must not panic and must remain idempotent.
	assert.NotPanics(t, func() { q.Dispose() })
	assert.True(t, q.Disposed())
}

func TestWalkVisitsEveryClauseAndExpression(t *testing.T) {
	match := &MatchClause{
		Patterns: []*Path{
			NewPath(Location{1, 1}, "p", PathNormal,
				[]*NodePattern{{Var: "a"}, {Var: "b"}},
				[]*RelPattern{{Var: "r", Direction: DirRight}}),
		},
		Where: &BinaryExpr{Op: OpEq, Left: &Identifier{Name: "a"}, Right: IntLiteral(Location{}, 1)},
	}
	ret := &ReturnClause{Items: []*ReturnItem{{Expr: &Identifier{Name: "a"}}}}
	q := NewQuery(Location{1, 1}, []Clause{match, ret})

	var seen []Node
	Walk(q, func(n Node) bool {
		seen = append(seen, n)
		return true
	})

	// Query, MatchClause, Path, BinaryExpr, Identifier, Literal, ReturnClause, Identifier
	assert.GreaterOrEqual(t, len(seen), 7)
}

func TestPathLengthInvariant(t *testing.T) {
	assert.Panics(t, func() {
		NewPath(Location{}, "", PathNormal, []*NodePattern{{}}, []*RelPattern{{}})
	})

	p := NewPath(Location{}, "", PathNormal,
		[]*NodePattern{{Var: "a"}, {Var: "b"}, {Var: "c"}},
		[]*RelPattern{{Var: "r1"}, {Var: "r2"}})
	assert.Equal(t, 2, p.Length())
}
