package engine

import (
	"github.com/relcypher/graphengine/pkg/assemble"
	"github.com/relcypher/graphengine/pkg/ast"
	"github.com/relcypher/graphengine/pkg/dispatch"
	"github.com/relcypher/graphengine/pkg/eval"
	"github.com/relcypher/graphengine/pkg/foreach"
	"github.com/relcypher/graphengine/pkg/graphvalue"
	"github.com/relcypher/graphengine/pkg/params"
	"github.com/relcypher/graphengine/pkg/relstore"
	"github.com/relcypher/graphengine/pkg/translate"
	"github.com/relcypher/graphengine/pkg/writeexec"
)

// run is Exec's entry point once the query is parsed and its parameters are
// bound: it picks the pattern dispatch entry, short-circuits to the EXPLAIN
// rendering when the query carries that prefix (spec §4.2 "execution
// returns the would-be SQL ... instead of running the query"), and
// otherwise routes to the read-only or write execution path.
func (e *Engine) run(root ast.Root, binder *params.Binder) (*Result, error) {
	flags := dispatch.AnalyzeRoot(root)
	entry := e.table.FindMatchingPattern(flags)

	if flags&dispatch.EXPLAIN != 0 {
		text, err := explainText(root, flags, entry)
		if err != nil {
			return nil, err
		}
		return okResult([]string{"explain"}, [][]assemble.Cell{{{Value: graphvalue.Str(text), Text: text}}}, writeexec.Stats{}), nil
	}

	if q, ok := root.(*ast.Query); ok && hasWriteClause(q) {
		return e.runWrite(q, entry.Name, binder)
	}
	return e.runRead(root, entry.Name, binder)
}

func hasWriteClause(q *ast.Query) bool {
	for _, c := range q.Clauses {
		switch c.(type) {
		case *ast.CreateClause, *ast.MergeClause, *ast.SetClause, *ast.DeleteClause, *ast.RemoveClause, *ast.ForeachClause:
			return true
		}
	}
	return false
}

// runRead handles every query with no top-level write clause (plain
// MATCH/WITH/RETURN, UNION, a standalone RETURN) through relstore's full
// Prepare/BindParam/Step/Column contract: the Relational Backend path,
// untouched by the write-query concerns runWrite introduces.
func (e *Engine) runRead(root ast.Root, patternName string, binder *params.Binder) (*Result, error) {
	cq, err := translate.Compile(root, patternName)
	if err != nil {
		return nil, err
	}
	fe := foreach.New()
	st := e.backend.Prepare(cq, fe)
	if err := binder.BindAll(st, cq.ParamNames); err != nil {
		return nil, err
	}
	asm, err := assemble.Assemble(st, cq.Plan.Project)
	if err != nil {
		return nil, err
	}
	rows := asm.Rows
	if cq.Plan.Limit == nil && e.defaultLimit > 0 && int64(len(rows)) > e.defaultLimit {
		rows = rows[:e.defaultLimit]
	}
	return okResult(asm.Columns, rows, writeexec.Stats{}), nil
}

// runWrite handles a query carrying at least one CREATE/MERGE/SET/DELETE/
// REMOVE/FOREACH clause: spec §4.7's shared skeleton. It runs any leading
// MATCH/UNWIND/WHERE region as a bound-row selector, walks the write clauses
// against each matched row in textual order, then applies any trailing
// RETURN/WITH as a projection over the post-write bindings. A write query
// never reaches here as part of a UNION (dispatch has no pattern combining
// both bits); each selector row runs the full write-clause sequence once.
func (e *Engine) runWrite(q *ast.Query, patternName string, binder *params.Binder) (*Result, error) {
	var selectorClauses []ast.Clause
	var writeClauses []ast.Clause
	var returnItems []*ast.ReturnItem
	var distinct bool
	var orderBy []*ast.OrderItem
	var skip, limit ast.Expression

	seenWrite := false
	for _, c := range q.Clauses {
		switch cl := c.(type) {
		case *ast.MatchClause, *ast.UnwindClause:
			if seenWrite {
				return nil, &eval.Error{Kind: "UnsupportedQuery", Message: "MATCH/UNWIND after a write clause is not supported"}
			}
			selectorClauses = append(selectorClauses, c)
		case *ast.CreateClause, *ast.MergeClause, *ast.SetClause, *ast.DeleteClause, *ast.RemoveClause, *ast.ForeachClause:
			seenWrite = true
			writeClauses = append(writeClauses, c)
		case *ast.ReturnClause:
			returnItems, distinct, orderBy, skip, limit = cl.Items, cl.Distinct, cl.OrderBy, cl.Skip, cl.Limit
		case *ast.WithClause:
			returnItems, distinct, orderBy, skip, limit = cl.Items, cl.Distinct, cl.OrderBy, cl.Skip, cl.Limit
		}
	}

	plan, err := translate.CompileMatch(selectorClauses)
	if err != nil {
		return nil, err
	}
	fe := foreach.New()
	selEx := relstore.NewExecutor(e.store, binder, fe)
	selEx.SetAlgorithms(e.backend.Algorithms())
	selEx.SetMaxHops(e.maxHops)
	// With no MATCH/UNWIND clauses (a bare CREATE/MERGE), plan carries no
	// scans or joins and MatchOnly still returns exactly one empty binding
	// row, since matchRows always starts from a single empty row, so the
	// write sequence below runs once without special-casing that case.
	runRows, err := selEx.MatchOnly(plan)
	if err != nil {
		return nil, err
	}

	wex := writeexec.New(e.store, binder, fe)
	for _, row := range runRows {
		wr := writeexec.Row(row)
		for _, wc := range writeClauses {
			if err := wex.ExecuteClause(wr, wc); err != nil {
				return nil, err
			}
		}
	}

	result := okResult(nil, nil, *wex.Stats)
	if returnItems != nil {
		items, err := translate.ProjectItems(returnItems)
		if err != nil {
			return nil, err
		}
		names, evalRows, err := projectRows(runRows, items, binder, fe)
		if err != nil {
			return nil, err
		}
		if distinct {
			evalRows = distinctEvalRows(names, evalRows)
		}
		if len(orderBy) > 0 {
			if err := orderEvalRows(runRows, evalRows, orderBy, binder, fe); err != nil {
				return nil, err
			}
		}
		evalRows, err = skipLimitRows(evalRows, skip, limit, binder, fe)
		if err != nil {
			return nil, err
		}
		out := assemble.FoldRows(names, evalRows, items)
		result.Columns = out.Columns
		result.Rows = out.Rows
		if limit == nil && e.defaultLimit > 0 && int64(len(result.Rows)) > e.defaultLimit {
			result.Rows = result.Rows[:e.defaultLimit]
		}
	}
	return result, nil
}
