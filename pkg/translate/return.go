package translate

import (
	"fmt"
	"strings"

	"github.com/relcypher/graphengine/pkg/ast"
	"github.com/relcypher/graphengine/pkg/eval"
	"github.com/relcypher/graphengine/pkg/relstore"
)

// projectItems converts RETURN/WITH items into relstore.ProjectItems,
// resolving each column's name per spec §4.8's priority: explicit alias >
// property path (`n.age`) > identifier (`n`) > function call textualization
// (`f(a,b)`) > default `column_i`.
// ProjectItems exposes projectItems to callers outside this package.
// pkg/engine uses it to build a final RETURN/WITH projection over rows it
// assembled itself after running write clauses: rows that never pass
// through a relstore.Plan, so translate.Compile's own projection path
// doesn't apply to them.
func ProjectItems(items []*ast.ReturnItem) ([]relstore.ProjectItem, error) {
	return projectItems(items)
}

func projectItems(items []*ast.ReturnItem) ([]relstore.ProjectItem, error) {
	out := make([]relstore.ProjectItem, len(items))
	for i, it := range items {
		name := it.Alias
		if name == "" {
			name = defaultColumnName(it.Expr)
		}
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		out[i] = relstore.ProjectItem{
			Name:      name,
			Expr:      it.Expr,
			Aggregate: isAggregateExpr(it.Expr),
		}
	}
	return out, nil
}

func defaultColumnName(e ast.Expression) string {
	switch x := e.(type) {
	case *ast.PropertyExpr:
		if base := identifierText(x.Target); base != "" {
			return base + "." + x.Name
		}
	case *ast.Identifier:
		return x.Name
	case *ast.FunctionCall:
		return functionCallText(x)
	}
	return ""
}

func identifierText(e ast.Expression) string {
	if id, ok := e.(*ast.Identifier); ok {
		return id.Name
	}
	return ""
}

func functionCallText(f *ast.FunctionCall) string {
	args := make([]string, len(f.Args))
	for i, a := range f.Args {
		args[i] = exprText(a)
	}
	return f.Name + "(" + strings.Join(args, ", ") + ")"
}

// exprText renders a best-effort textual form of an expression, used to
// build a function-call column name and by sql.go's EXPLAIN rendering; it
// is not a general unparser.
func exprText(e ast.Expression) string {
	switch x := e.(type) {
	case *ast.Identifier:
		return x.Name
	case *ast.PropertyExpr:
		return exprText(x.Target) + "." + x.Name
	case *ast.Literal:
		return literalText(x)
	case *ast.FunctionCall:
		return functionCallText(x)
	case *ast.Parameter:
		return ":" + x.Name
	case *ast.BinaryExpr:
		return "(" + exprText(x.Left) + " " + opText(x.Op) + " " + exprText(x.Right) + ")"
	case *ast.NotExpr:
		return "NOT " + exprText(x.Expr)
	case *ast.NullCheck:
		if x.Not {
			return exprText(x.Expr) + " IS NOT NULL"
		}
		return exprText(x.Expr) + " IS NULL"
	case *ast.ListExpr:
		items := make([]string, len(x.Items))
		for i, it := range x.Items {
			items[i] = exprText(it)
		}
		return "[" + strings.Join(items, ", ") + "]"
	}
	return "?"
}

func literalText(l *ast.Literal) string {
	switch l.Kind {
	case ast.LitNull:
		return "null"
	case ast.LitString:
		return "\"" + l.StringVal + "\""
	case ast.LitBool:
		if l.BoolVal {
			return "true"
		}
		return "false"
	case ast.LitInteger:
		return fmt.Sprintf("%d", l.IntVal)
	case ast.LitFloat:
		return fmt.Sprintf("%g", l.FloatVal)
	}
	return "?"
}

func isAggregateExpr(e ast.Expression) bool {
	f, ok := e.(*ast.FunctionCall)
	return ok && eval.IsAggregate(f.Name)
}
