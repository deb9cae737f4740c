// Package eval evaluates a parsed Cypher expression tree against a row's
// variable bindings, producing a graph-typed value. It is shared by the
// clause transformer (inline property filters, WHERE predicates), the
// write executors (SET/REMOVE values), and the result assembler (RETURN
// projections).
package eval

import (
	"fmt"

	"github.com/relcypher/graphengine/pkg/ast"
	"github.com/relcypher/graphengine/pkg/foreach"
	"github.com/relcypher/graphengine/pkg/graphvalue"
	"github.com/relcypher/graphengine/pkg/params"
)

// Error is an evaluation failure, carrying the error Kind the engine surfaces.
type Error struct {
	Kind    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func errUnbound(name string) error {
	return &Error{Kind: "UnboundVariable", Message: fmt.Sprintf("variable %q is not bound", name)}
}

func errUnsupported(what string) error {
	return &Error{Kind: "UnsupportedQuery", Message: fmt.Sprintf("unsupported expression: %s", what)}
}

// Row is the binding environment for one evaluation: Cypher variable name
// to its current graph-typed value.
type Row map[string]graphvalue.Value

// FunctionHook resolves a function call this package's own evalFunctionCall
// doesn't recognize. pkg/engine uses it to route the graph-algorithm names
// spec §1 excludes from this engine's own evaluator (pagerank, shortestPath,
// ...) to a host-supplied pkg/translate.AlgorithmRunner, without this
// package importing pkg/translate.
type FunctionHook interface {
	Call(name string, args []graphvalue.Value) (graphvalue.Value, error)
}

// Evaluator ties together variable bindings, the parameter binder, and the
// active FOREACH context; it implements no state of its own beyond what's
// passed in, so one Evaluator can be reused across rows by swapping Row.
type Evaluator struct {
	Row       Row
	Params    *params.Binder
	Foreach   *foreach.Context
	Functions FunctionHook
}

// New builds an Evaluator for a single row.
func New(row Row, p *params.Binder, fe *foreach.Context) *Evaluator {
	return &Evaluator{Row: row, Params: p, Foreach: fe}
}

// Eval dispatches on the expression's concrete type.
func (e *Evaluator) Eval(expr ast.Expression) (graphvalue.Value, error) {
	switch x := expr.(type) {
	case *ast.Literal:
		return e.evalLiteral(x), nil
	case *ast.Identifier:
		return e.evalIdentifier(x)
	case *ast.Parameter:
		if e.Params == nil {
			return graphvalue.Null, nil
		}
		return e.Params.Lookup(x.Name), nil
	case *ast.PropertyExpr:
		return e.evalProperty(x)
	case *ast.LabelExpr:
		return e.evalLabelExpr(x)
	case *ast.NotExpr:
		v, err := e.Eval(x.Expr)
		if err != nil {
			return graphvalue.Null, err
		}
		if v.IsNull() {
			return graphvalue.Null, nil
		}
		return graphvalue.Bool(!truthy(v)), nil
	case *ast.NullCheck:
		v, err := e.Eval(x.Expr)
		if err != nil {
			return graphvalue.Null, err
		}
		if x.Not {
			return graphvalue.Bool(!v.IsNull()), nil
		}
		return graphvalue.Bool(v.IsNull()), nil
	case *ast.BinaryExpr:
		return e.evalBinary(x)
	case *ast.FunctionCall:
		return e.evalFunctionCall(x)
	case *ast.ListExpr:
		return e.evalListExpr(x)
	case *ast.ListComprehension:
		return e.evalListComprehension(x)
	case *ast.ListPredicate:
		return e.evalListPredicate(x)
	case *ast.MapLiteral:
		return e.evalMapLiteral(x)
	case *ast.MapProjection:
		return e.evalMapProjection(x)
	case *ast.CaseExpr:
		return e.evalCase(x)
	case *ast.Subscript:
		return e.evalSubscript(x)
	case *ast.ReduceExpr:
		return e.evalReduce(x)
	case *ast.ExistsExpr:
		if x.Property != nil {
			v, err := e.evalProperty(x.Property)
			if err != nil {
				return graphvalue.Null, err
			}
			return graphvalue.Bool(!v.IsNull()), nil
		}
		// Pattern-form exists() requires a backend sub-match; the
		// translator rewrites those into a join before evaluation ever
		// sees this node, so reaching here means an untranslated
		// pattern slipped through.
		return graphvalue.Null, errUnsupported("exists(pattern) outside a translated MATCH")
	case *ast.PatternComprehension:
		return graphvalue.Null, errUnsupported("pattern comprehension outside a translated MATCH")
	default:
		return graphvalue.Null, errUnsupported(fmt.Sprintf("%T", expr))
	}
}

func (e *Evaluator) evalLiteral(lit *ast.Literal) graphvalue.Value {
	switch lit.Kind {
	case ast.LitNull:
		return graphvalue.Null
	case ast.LitInteger:
		return graphvalue.Int(lit.IntVal)
	case ast.LitFloat:
		return graphvalue.Float(lit.FloatVal)
	case ast.LitString:
		return graphvalue.Str(lit.StringVal)
	case ast.LitBool:
		return graphvalue.Bool(lit.BoolVal)
	}
	return graphvalue.Null
}

func (e *Evaluator) evalIdentifier(id *ast.Identifier) (graphvalue.Value, error) {
	if e.Foreach != nil {
		if v, ok := e.Foreach.Lookup(id.Name); ok {
			return v, nil
		}
	}
	if v, ok := e.Row[id.Name]; ok {
		return v, nil
	}
	return graphvalue.Null, errUnbound(id.Name)
}

func (e *Evaluator) evalProperty(p *ast.PropertyExpr) (graphvalue.Value, error) {
	target, err := e.Eval(p.Target)
	if err != nil {
		return graphvalue.Null, err
	}
	switch target.Kind {
	case graphvalue.KindVertex:
		if v, ok := target.Vertex.Properties[p.Name]; ok {
			return v, nil
		}
		return graphvalue.Null, nil
	case graphvalue.KindEdge:
		if v, ok := target.Edge.Properties[p.Name]; ok {
			return v, nil
		}
		return graphvalue.Null, nil
	case graphvalue.KindMap:
		if v, ok := target.Map[p.Name]; ok {
			return v, nil
		}
		return graphvalue.Null, nil
	case graphvalue.KindNull:
		return graphvalue.Null, nil
	}
	return graphvalue.Null, &Error{Kind: "TypeMismatch", Message: fmt.Sprintf("cannot access property %q on %s", p.Name, target.Kind)}
}

func (e *Evaluator) evalLabelExpr(l *ast.LabelExpr) (graphvalue.Value, error) {
	target, err := e.Eval(l.Target)
	if err != nil {
		return graphvalue.Null, err
	}
	if target.Kind != graphvalue.KindVertex {
		return graphvalue.Bool(false), nil
	}
	have := map[string]bool{}
	for _, lab := range target.Vertex.Labels {
		have[lab] = true
	}
	for _, want := range l.Labels {
		if !have[want] {
			return graphvalue.Bool(false), nil
		}
	}
	return graphvalue.Bool(true), nil
}

func truthy(v graphvalue.Value) bool {
	return v.Kind == graphvalue.KindBool && v.Bool
}
