package translate

import (
	"github.com/relcypher/graphengine/pkg/ast"
	"github.com/relcypher/graphengine/pkg/eval"
	"github.com/relcypher/graphengine/pkg/relstore"
	"github.com/relcypher/graphengine/pkg/varctx"
)

// checkScope reports an UnboundVariable error for any identifier in exprs
// that vc does not currently have visible, implementing the C3 scoping
// rule a WITH clause enforces (spec §4.6).
func checkScope(vc *varctx.VariableContext, exprs ...ast.Expression) error {
	for _, name := range identifiersIn(exprs...) {
		if name == "*" {
			continue
		}
		if _, ok := vc.Lookup(name); !ok {
			return &eval.Error{Kind: "UnboundVariable", Message: "variable " + name + " is not defined"}
		}
	}
	return nil
}

// withExprs collects every expression a WITH clause's items, WHERE, ORDER
// BY, SKIP, and LIMIT reference, for a scope check run before the clause's
// own projected names take effect.
func withExprs(cl *ast.WithClause) []ast.Expression {
	exprs := itemExprs(cl.Items)
	exprs = append(exprs, cl.Where)
	for _, o := range cl.OrderBy {
		exprs = append(exprs, o.Expr)
	}
	return append(exprs, cl.Skip, cl.Limit)
}

func returnExprs(cl *ast.ReturnClause) []ast.Expression {
	exprs := itemExprs(cl.Items)
	for _, o := range cl.OrderBy {
		exprs = append(exprs, o.Expr)
	}
	return append(exprs, cl.Skip, cl.Limit)
}

func itemExprs(items []*ast.ReturnItem) []ast.Expression {
	out := make([]ast.Expression, len(items))
	for i, it := range items {
		out[i] = it.Expr
	}
	return out
}

// reregisterProjected re-registers a WITH clause's projected names in vc
// and hides everything else, so later clauses can only see what this WITH
// passed through.
func reregisterProjected(vc *varctx.VariableContext, items []relstore.ProjectItem) {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
		vc.RegisterProjected(it.Name, it.Name)
	}
	vc.Project(names)
}

// identifiersIn collects every distinct variable name referenced in exprs,
// in first-seen order, respecting the local scope a list predicate,
// reduce, or list comprehension introduces for its own bound variable.
func identifiersIn(exprs ...ast.Expression) []string {
	seen := map[string]bool{}
	var out []string
	var walk func(e ast.Expression, locals map[string]bool)
	walk = func(e ast.Expression, locals map[string]bool) {
		if e == nil {
			return
		}
		switch x := e.(type) {
		case *ast.Identifier:
			if locals[x.Name] {
				return
			}
			if !seen[x.Name] {
				seen[x.Name] = true
				out = append(out, x.Name)
			}
		case *ast.PropertyExpr:
			walk(x.Target, locals)
		case *ast.LabelExpr:
			walk(x.Target, locals)
		case *ast.NotExpr:
			walk(x.Expr, locals)
		case *ast.NullCheck:
			walk(x.Expr, locals)
		case *ast.BinaryExpr:
			walk(x.Left, locals)
			walk(x.Right, locals)
		case *ast.FunctionCall:
			for _, a := range x.Args {
				walk(a, locals)
			}
		case *ast.ExistsExpr:
			if x.Property != nil {
				walk(x.Property, locals)
			}
		case *ast.ListPredicate:
			walk(x.List, locals)
			walk(x.Predicate, withLocal(locals, x.Var))
		case *ast.ReduceExpr:
			walk(x.Initial, locals)
			walk(x.List, locals)
			walk(x.Body, withLocal(withLocal(locals, x.Var), x.Accumulator))
		case *ast.ListExpr:
			for _, it := range x.Items {
				walk(it, locals)
			}
		case *ast.ListComprehension:
			walk(x.List, locals)
			inner := withLocal(locals, x.Var)
			walk(x.Where, inner)
			walk(x.Transform, inner)
		case *ast.MapLiteral:
			for _, entry := range x.Entries {
				walk(entry.Value, locals)
			}
		case *ast.MapProjection:
			walk(x.Target, locals)
			for _, it := range x.Items {
				walk(it.Value, locals)
			}
		case *ast.CaseExpr:
			walk(x.Scrutinee, locals)
			for _, w := range x.Whens {
				walk(w.Cond, locals)
				walk(w.Result, locals)
			}
			walk(x.Else, locals)
		case *ast.Subscript:
			walk(x.Target, locals)
			walk(x.Index, locals)
			walk(x.IndexEnd, locals)
		}
	}
	for _, e := range exprs {
		walk(e, nil)
	}
	return out
}

func withLocal(locals map[string]bool, name string) map[string]bool {
	out := make(map[string]bool, len(locals)+1)
	for k := range locals {
		out[k] = true
	}
	out[name] = true
	return out
}
