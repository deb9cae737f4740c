// Package translate is the Clause Transformer (C6): it compiles a parsed
// ast.Root into a relstore.CompiledQuery carrying both a structural Plan
// (the execution contract relstore runs directly) and a human-readable SQL
// rendering of that same plan, used only for EXPLAIN output.
package translate

import (
	"fmt"

	"github.com/relcypher/graphengine/pkg/ast"
	"github.com/relcypher/graphengine/pkg/relstore"
	"github.com/relcypher/graphengine/pkg/varctx"
)

// aliasGen allocates the `n_i`/`e_j` fallback aliases spec §4.6 names for
// anonymous pattern elements, and tracks which named variables have already
// been scanned so a repeated reference (`MATCH (a)-->(b), (b)-->(c)`)
// reuses the existing binding instead of re-scanning it.
type aliasGen struct {
	nextNode int
	nextRel  int
	known    map[string]bool
}

func newAliasGen() *aliasGen {
	return &aliasGen{known: map[string]bool{}}
}

func (g *aliasGen) nodeAlias(v string) string {
	if v != "" {
		return v
	}
	a := fmt.Sprintf("n_%d", g.nextNode)
	g.nextNode++
	return a
}

func (g *aliasGen) relAlias(v string) string {
	if v != "" {
		return v
	}
	a := fmt.Sprintf("e_%d", g.nextRel)
	g.nextRel++
	return a
}

// Compile translates a query or union root into a CompiledQuery. patternName
// is the matched dispatch pattern's name (dispatch.Entry.Name), carried
// through into CompiledQuery.PatternName for EXPLAIN's "Pattern: <name>"
// line.
func Compile(root ast.Root, patternName string) (*relstore.CompiledQuery, error) {
	switch r := root.(type) {
	case *ast.Query:
		plan, err := compileQueryPlan(r)
		if err != nil {
			return nil, err
		}
		return finish(plan, patternName), nil
	case *ast.Union:
		plan, err := compileUnion(r)
		if err != nil {
			return nil, err
		}
		return finish(plan, patternName), nil
	}
	return nil, fmt.Errorf("translate: unsupported root type %T", root)
}

func finish(plan *relstore.Plan, patternName string) *relstore.CompiledQuery {
	return &relstore.CompiledQuery{
		SQL:         renderSQL(plan),
		Plan:        plan,
		PatternName: patternName,
		ParamNames:  collectParamNames(plan),
	}
}

// compileQueryPlan walks one Query's clause list, accumulating pattern
// scans/joins, the active WHERE, and the final projection/ordering. A
// VariableContext (C3) tracks which names are in scope as it goes: each
// WITH re-registers its projected names and hides everything else, per
// spec §4.6. For this reference implementation WITH finalizes the prior
// region into the row shape seen by later clauses without nesting a
// derived-table Plan (SPEC_FULL.md's "no query optimizer" non-goal: one
// flat plan per compiled query).
func compileQueryPlan(q *ast.Query) (*relstore.Plan, error) {
	plan := &relstore.Plan{}
	gen := newAliasGen()
	vc := varctx.New()

	for _, c := range q.Clauses {
		switch cl := c.(type) {
		case *ast.MatchClause:
			vc.EnterClause()
			if err := applyMatch(plan, gen, vc, cl); err != nil {
				return nil, err
			}
			if err := checkScope(vc, cl.Where); err != nil {
				return nil, err
			}
		case *ast.UnwindClause:
			vc.EnterClause()
			if err := checkScope(vc, cl.Expr); err != nil {
				return nil, err
			}
			plan.UnwindVar = cl.Alias
			plan.UnwindExpr = cl.Expr
			vc.RegisterProjected(cl.Alias, cl.Alias)
		case *ast.WithClause:
			vc.EnterClause()
			if err := checkScope(vc, withExprs(cl)...); err != nil {
				return nil, err
			}
			items, err := projectItems(cl.Items)
			if err != nil {
				return nil, err
			}
			plan.Project = items
			plan.Distinct = cl.Distinct
			plan.Where = cl.Where
			plan.OrderBy = convertOrderBy(cl.OrderBy)
			plan.Skip = cl.Skip
			plan.Limit = cl.Limit
			reregisterProjected(vc, items)
		case *ast.ReturnClause:
			vc.EnterClause()
			if err := checkScope(vc, returnExprs(cl)...); err != nil {
				return nil, err
			}
			items, err := projectItems(cl.Items)
			if err != nil {
				return nil, err
			}
			plan.Project = items
			plan.Distinct = cl.Distinct
			plan.OrderBy = convertOrderBy(cl.OrderBy)
			plan.Skip = cl.Skip
			plan.Limit = cl.Limit
		}
	}

	if plan.Where == nil {
		for _, c := range q.Clauses {
			if m, ok := c.(*ast.MatchClause); ok && m.Where != nil {
				plan.Where = andExpr(plan.Where, m.Where)
			}
		}
	}

	return plan, nil
}

// andExpr combines two optional WHERE expressions (one per MATCH clause,
// since a query may carry several) with AND, as Cypher semantics require:
// every MATCH's WHERE must hold simultaneously.
func andExpr(a, b ast.Expression) ast.Expression {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return &ast.BinaryExpr{Op: ast.OpAnd, Left: a, Right: b}
}

// CompileMatch compiles a MATCH/UNWIND-only clause prefix into a Plan
// carrying no projection. pkg/engine calls this for the read-side half of a
// write query (the pattern a CREATE/MERGE/SET/DELETE/REMOVE/FOREACH clause
// runs against), then drives relstore.Executor.MatchOnly over the result to
// get raw per-row bindings instead of projected columns.
func CompileMatch(clauses []ast.Clause) (*relstore.Plan, error) {
	plan := &relstore.Plan{}
	gen := newAliasGen()
	vc := varctx.New()
	for _, c := range clauses {
		switch cl := c.(type) {
		case *ast.MatchClause:
			if err := applyMatch(plan, gen, vc, cl); err != nil {
				return nil, err
			}
			if err := checkScope(vc, cl.Where); err != nil {
				return nil, err
			}
		case *ast.UnwindClause:
			if err := checkScope(vc, cl.Expr); err != nil {
				return nil, err
			}
			plan.UnwindVar = cl.Alias
			plan.UnwindExpr = cl.Expr
			vc.RegisterProjected(cl.Alias, cl.Alias)
		}
	}
	if plan.Where == nil {
		for _, c := range clauses {
			if m, ok := c.(*ast.MatchClause); ok && m.Where != nil {
				plan.Where = andExpr(plan.Where, m.Where)
			}
		}
	}
	return plan, nil
}

func applyMatch(plan *relstore.Plan, gen *aliasGen, vc *varctx.VariableContext, cl *ast.MatchClause) error {
	for _, path := range cl.Patterns {
		if err := applyPath(plan, gen, vc, path, cl.Optional); err != nil {
			return err
		}
	}
	return nil
}

func compileUnion(u *ast.Union) (*relstore.Plan, error) {
	left, err := compileRootPlan(u.Left)
	if err != nil {
		return nil, err
	}
	right, err := compileRootPlan(u.Right)
	if err != nil {
		return nil, err
	}
	return &relstore.Plan{Union: &relstore.UnionPlan{Left: left, Right: right, All: u.All}}, nil
}

func compileRootPlan(r ast.Root) (*relstore.Plan, error) {
	switch x := r.(type) {
	case *ast.Query:
		return compileQueryPlan(x)
	case *ast.Union:
		return compileUnion(x)
	}
	return nil, fmt.Errorf("translate: unsupported union arm %T", r)
}

func convertOrderBy(items []*ast.OrderItem) []relstore.OrderItem {
	out := make([]relstore.OrderItem, len(items))
	for i, it := range items {
		out[i] = relstore.OrderItem{Expr: it.Expr, Desc: it.Desc}
	}
	return out
}

func collectParamNames(plan *relstore.Plan) []string {
	seen := map[string]bool{}
	var names []string
	walk := func(e ast.Expression) { walkExprParams(e, seen, &names) }
	if plan.Union != nil {
		names = append(names, collectParamNames(plan.Union.Left)...)
		names = append(names, collectParamNames(plan.Union.Right)...)
		return names
	}
	for _, ns := range plan.NodeScans {
		for _, e := range ns.InlineProps {
			walk(e)
		}
	}
	for _, ej := range plan.EdgeJoins {
		for _, e := range ej.InlineProps {
			walk(e)
		}
	}
	walk(plan.Where)
	walk(plan.UnwindExpr)
	for _, p := range plan.Project {
		walk(p.Expr)
	}
	for _, o := range plan.OrderBy {
		walk(o.Expr)
	}
	walk(plan.Skip)
	walk(plan.Limit)
	return names
}
