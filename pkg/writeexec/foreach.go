package writeexec

import (
	"github.com/relcypher/graphengine/pkg/ast"
)

// ExecuteForeach evaluates the list expression, then for each element
// pushes a FOREACH binding and runs every body clause in order, popping
// the binding at each iteration boundary: spec §4.7's FOREACH executor.
// Body clauses are themselves CREATE/SET/DELETE/MERGE/REMOVE/FOREACH,
// dispatched through ExecuteClause so FOREACH nests arbitrarily.
func (ex *Executor) ExecuteForeach(row Row, cl *ast.ForeachClause) error {
	ev := ex.evaluator(row)
	list, err := ev.Eval(cl.List)
	if err != nil {
		return err
	}
	for _, item := range list.List {
		ex.Foreach.Push()
		ex.Foreach.Bind(cl.Variable, item)
		for _, body := range cl.Body {
			if err := ex.ExecuteClause(row, body); err != nil {
				ex.Foreach.Pop()
				return err
			}
		}
		ex.Foreach.Pop()
	}
	return nil
}
