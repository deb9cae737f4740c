package writeexec

import (
	"github.com/relcypher/graphengine/pkg/ast"
	"github.com/relcypher/graphengine/pkg/eval"
)

// ExecuteUnwindCreate is the UNWIND+CREATE dispatch-table strategy (spec
// §4.6/§4.7): currently limited to list literals, it iterates the literal's
// items, binds each to the UNWIND alias via the FOREACH context, and runs
// CREATE once per item, reusing the same per-element binding/looping
// machinery FOREACH uses rather than a separate mechanism.
func (ex *Executor) ExecuteUnwindCreate(row Row, unwind *ast.UnwindClause, create *ast.CreateClause) error {
	lit, ok := unwind.Expr.(*ast.ListExpr)
	if !ok {
		return &eval.Error{Kind: "UnsupportedQuery", Message: "UNWIND+CREATE currently supports list literals only"}
	}
	ev := ex.evaluator(row)
	for _, itemExpr := range lit.Items {
		v, err := ev.Eval(itemExpr)
		if err != nil {
			return err
		}
		ex.Foreach.Push()
		ex.Foreach.Bind(unwind.Alias, v)
		err = ex.ExecuteCreate(row, create.Patterns)
		ex.Foreach.Pop()
		if err != nil {
			return err
		}
	}
	return nil
}
