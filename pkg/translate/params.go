package translate

import "github.com/relcypher/graphengine/pkg/ast"

// walkExprParams recurses through an expression tree collecting every
// distinct `$name` reference, in first-seen order: the set translate
// must bind via params.Binder.BindAll before a Statement can Step.
func walkExprParams(e ast.Expression, seen map[string]bool, names *[]string) {
	if e == nil {
		return
	}
	switch x := e.(type) {
	case *ast.Parameter:
		if !seen[x.Name] {
			seen[x.Name] = true
			*names = append(*names, x.Name)
		}
	case *ast.PropertyExpr:
		walkExprParams(x.Target, seen, names)
	case *ast.LabelExpr:
		walkExprParams(x.Target, seen, names)
	case *ast.NotExpr:
		walkExprParams(x.Expr, seen, names)
	case *ast.NullCheck:
		walkExprParams(x.Expr, seen, names)
	case *ast.BinaryExpr:
		walkExprParams(x.Left, seen, names)
		walkExprParams(x.Right, seen, names)
	case *ast.FunctionCall:
		for _, a := range x.Args {
			walkExprParams(a, seen, names)
		}
	case *ast.ExistsExpr:
		if x.Property != nil {
			walkExprParams(x.Property, seen, names)
		}
	case *ast.ListPredicate:
		walkExprParams(x.List, seen, names)
		walkExprParams(x.Predicate, seen, names)
	case *ast.ReduceExpr:
		walkExprParams(x.Initial, seen, names)
		walkExprParams(x.List, seen, names)
		walkExprParams(x.Body, seen, names)
	case *ast.ListExpr:
		for _, it := range x.Items {
			walkExprParams(it, seen, names)
		}
	case *ast.ListComprehension:
		walkExprParams(x.List, seen, names)
		walkExprParams(x.Where, seen, names)
		walkExprParams(x.Transform, seen, names)
	case *ast.MapLiteral:
		for _, entry := range x.Entries {
			walkExprParams(entry.Value, seen, names)
		}
	case *ast.MapProjection:
		walkExprParams(x.Target, seen, names)
		for _, it := range x.Items {
			walkExprParams(it.Value, seen, names)
		}
	case *ast.CaseExpr:
		walkExprParams(x.Scrutinee, seen, names)
		for _, w := range x.Whens {
			walkExprParams(w.Cond, seen, names)
			walkExprParams(w.Result, seen, names)
		}
		walkExprParams(x.Else, seen, names)
	case *ast.Subscript:
		walkExprParams(x.Target, seen, names)
		walkExprParams(x.Index, seen, names)
		walkExprParams(x.IndexEnd, seen, names)
	}
}
