// Package writeexec is the Write Executors (C7): CREATE, MERGE, SET,
// DELETE, REMOVE, FOREACH, and UNWIND+CREATE. Each walks an AST write
// fragment, resolves property/label values through pkg/eval, and calls the
// Schema Facade (pkg/relstore.Facade) to mutate the persisted graph,
// accumulating the five per-query counters spec §4.7 requires every
// executor to return.
package writeexec

import (
	"github.com/relcypher/graphengine/pkg/ast"
	"github.com/relcypher/graphengine/pkg/eval"
	"github.com/relcypher/graphengine/pkg/foreach"
	"github.com/relcypher/graphengine/pkg/graphvalue"
	"github.com/relcypher/graphengine/pkg/params"
	"github.com/relcypher/graphengine/pkg/relstore"
)

// Stats is the per-query write counters every executor contributes to.
type Stats struct {
	NodesCreated         int
	NodesDeleted         int
	RelationshipsCreated int
	RelationshipsDeleted int
	PropertiesSet        int
}

// Row is the variable-binding map a write executor reads existing bindings
// from (populated by a preceding MATCH) and writes new ones into (nodes and
// relationships it creates become visible to later clauses in the same
// query, e.g. `CREATE (a:Person) RETURN a`).
type Row = eval.Row

// Executor runs write clauses against one Facade, sharing the query's
// parameter binder and FOREACH context with pkg/eval so that property
// expressions referencing `$param` or an active FOREACH loop variable
// resolve the same way a WHERE predicate would.
type Executor struct {
	Facade  relstore.Facade
	Params  *params.Binder
	Foreach *foreach.Context
	Stats   *Stats
}

// New builds an Executor with a fresh Stats accumulator.
func New(facade relstore.Facade, p *params.Binder, fe *foreach.Context) *Executor {
	return &Executor{Facade: facade, Params: p, Foreach: fe, Stats: &Stats{}}
}

func (ex *Executor) evaluator(row Row) *eval.Evaluator {
	return eval.New(row, ex.Params, ex.Foreach)
}

// evalProps evaluates a pattern's inline `{k: v}` map literal into a graph
// value map. Values resolve through the active FOREACH binding before the
// row, then literals/parameters, matching the property-value priority
// CREATE/MERGE share.
func evalProps(ev *eval.Evaluator, m *ast.MapLiteral) (map[string]graphvalue.Value, error) {
	if m == nil || len(m.Entries) == 0 {
		return nil, nil
	}
	out := make(map[string]graphvalue.Value, len(m.Entries))
	for _, entry := range m.Entries {
		v, err := ev.Eval(entry.Value)
		if err != nil {
			return nil, err
		}
		out[entry.Key] = v
	}
	return out, nil
}

// ExecuteClause dispatches one write-capable clause inside a FOREACH body
// (CREATE, SET, DELETE, MERGE, REMOVE, FOREACH; spec §4.7). Clauses that
// are not write-capable (MATCH, RETURN, ...) are rejected since they have
// no place inside a FOREACH body per the grammar.
func (ex *Executor) ExecuteClause(row Row, cl ast.Clause) error {
	switch c := cl.(type) {
	case *ast.CreateClause:
		return ex.ExecuteCreate(row, c.Patterns)
	case *ast.SetClause:
		return ex.ExecuteSet(row, c.Items)
	case *ast.DeleteClause:
		return ex.ExecuteDelete(row, c.Variables, c.Detach)
	case *ast.MergeClause:
		return ex.ExecuteMerge(row, c)
	case *ast.RemoveClause:
		return ex.ExecuteRemove(row, c.Items)
	case *ast.ForeachClause:
		return ex.ExecuteForeach(row, c)
	}
	return &eval.Error{Kind: "UnsupportedQuery", Message: "clause is not valid inside a FOREACH body"}
}
