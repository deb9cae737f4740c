package eval

import (
	"sort"
	"strconv"
	"strings"

	"github.com/relcypher/graphengine/pkg/ast"
	"github.com/relcypher/graphengine/pkg/foreach"
	"github.com/relcypher/graphengine/pkg/graphvalue"
)

// aggregateNames are recognized but not computed here: aggregation folds
// across many rows and is the result assembler's job (C8 §4.8); a bare
// evaluator sees one row at a time and returns the row's contribution
// unreduced so the assembler can fold it.
var aggregateNames = map[string]bool{
	"count": true, "collect": true, "sum": true, "avg": true, "min": true, "max": true,
}

// IsAggregate reports whether name is one of the recognized aggregate
// function names, so callers (the assembler) can special-case it.
func IsAggregate(name string) bool {
	return aggregateNames[strings.ToLower(name)]
}

func (e *Evaluator) evalFunctionCall(f *ast.FunctionCall) (graphvalue.Value, error) {
	name := strings.ToLower(f.Name)
	if IsAggregate(name) {
		// Scalar evaluation context (e.g. inside a WHERE clause) only sees
		// the current row's single contribution; cross-row aggregation is
		// performed by the assembler once all rows are known.
		if len(f.Args) == 0 {
			return graphvalue.Int(1), nil
		}
		return e.Eval(f.Args[0])
	}
	args := make([]graphvalue.Value, len(f.Args))
	for i, a := range f.Args {
		v, err := e.Eval(a)
		if err != nil {
			return graphvalue.Null, err
		}
		args[i] = v
	}
	switch name {
	case "id":
		return fnID(args)
	case "labels":
		return fnLabels(args)
	case "type":
		return fnType(args)
	case "keys":
		return fnKeys(args)
	case "properties":
		return fnProperties(args)
	case "coalesce":
		for _, a := range args {
			if !a.IsNull() {
				return a, nil
			}
		}
		return graphvalue.Null, nil
	case "size":
		return fnSize(args)
	case "length":
		return fnLength(args)
	case "tointeger", "toint":
		return fnToInteger(args)
	case "tofloat":
		return fnToFloat(args)
	case "tostring":
		return fnToString(args)
	case "toboolean":
		return fnToBoolean(args)
	case "toupper":
		return fnStringTransform(args, strings.ToUpper)
	case "tolower":
		return fnStringTransform(args, strings.ToLower)
	case "trim":
		return fnStringTransform(args, strings.TrimSpace)
	case "reverse":
		return fnReverse(args)
	case "abs":
		return fnAbs(args)
	case "range":
		return fnRange(args)
	case "head":
		return fnHead(args)
	case "last":
		return fnLast(args)
	case "tail":
		return fnTail(args)
	}
	if e.Functions != nil {
		return e.Functions.Call(name, args)
	}
	return graphvalue.Null, errUnsupported("function " + f.Name)
}

func requireArgc(args []graphvalue.Value, n int) error {
	if len(args) != n {
		return &Error{Kind: "TypeMismatch", Message: "wrong argument count"}
	}
	return nil
}

func fnID(args []graphvalue.Value) (graphvalue.Value, error) {
	if err := requireArgc(args, 1); err != nil {
		return graphvalue.Null, err
	}
	switch args[0].Kind {
	case graphvalue.KindVertex:
		return graphvalue.Int(args[0].Vertex.ID), nil
	case graphvalue.KindEdge:
		return graphvalue.Int(args[0].Edge.ID), nil
	case graphvalue.KindNull:
		return graphvalue.Null, nil
	}
	return graphvalue.Null, &Error{Kind: "TypeMismatch", Message: "id() requires a node or relationship"}
}

func fnLabels(args []graphvalue.Value) (graphvalue.Value, error) {
	if err := requireArgc(args, 1); err != nil {
		return graphvalue.Null, err
	}
	if args[0].IsNull() {
		return graphvalue.Null, nil
	}
	if args[0].Kind != graphvalue.KindVertex {
		return graphvalue.Null, &Error{Kind: "TypeMismatch", Message: "labels() requires a node"}
	}
	out := make([]graphvalue.Value, len(args[0].Vertex.Labels))
	for i, l := range args[0].Vertex.Labels {
		out[i] = graphvalue.Str(l)
	}
	return graphvalue.ListVal(out), nil
}

func fnType(args []graphvalue.Value) (graphvalue.Value, error) {
	if err := requireArgc(args, 1); err != nil {
		return graphvalue.Null, err
	}
	if args[0].IsNull() {
		return graphvalue.Null, nil
	}
	if args[0].Kind != graphvalue.KindEdge {
		return graphvalue.Null, &Error{Kind: "TypeMismatch", Message: "type() requires a relationship"}
	}
	return graphvalue.Str(args[0].Edge.Type), nil
}

func propsOf(v graphvalue.Value) (map[string]graphvalue.Value, bool) {
	switch v.Kind {
	case graphvalue.KindVertex:
		return v.Vertex.Properties, true
	case graphvalue.KindEdge:
		return v.Edge.Properties, true
	case graphvalue.KindMap:
		return v.Map, true
	}
	return nil, false
}

func fnKeys(args []graphvalue.Value) (graphvalue.Value, error) {
	if err := requireArgc(args, 1); err != nil {
		return graphvalue.Null, err
	}
	props, ok := propsOf(args[0])
	if !ok {
		if args[0].IsNull() {
			return graphvalue.Null, nil
		}
		return graphvalue.Null, &Error{Kind: "TypeMismatch", Message: "keys() requires a node, relationship, or map"}
	}
	names := make([]string, 0, len(props))
	for k := range props {
		names = append(names, k)
	}
	sort.Strings(names)
	out := make([]graphvalue.Value, len(names))
	for i, n := range names {
		out[i] = graphvalue.Str(n)
	}
	return graphvalue.ListVal(out), nil
}

func fnProperties(args []graphvalue.Value) (graphvalue.Value, error) {
	if err := requireArgc(args, 1); err != nil {
		return graphvalue.Null, err
	}
	props, ok := propsOf(args[0])
	if !ok {
		if args[0].IsNull() {
			return graphvalue.Null, nil
		}
		return graphvalue.Null, &Error{Kind: "TypeMismatch", Message: "properties() requires a node, relationship, or map"}
	}
	return graphvalue.MapVal(props), nil
}

func fnSize(args []graphvalue.Value) (graphvalue.Value, error) {
	if err := requireArgc(args, 1); err != nil {
		return graphvalue.Null, err
	}
	switch args[0].Kind {
	case graphvalue.KindList:
		return graphvalue.Int(int64(len(args[0].List))), nil
	case graphvalue.KindString:
		return graphvalue.Int(int64(len(args[0].Str))), nil
	case graphvalue.KindNull:
		return graphvalue.Null, nil
	}
	return graphvalue.Null, &Error{Kind: "TypeMismatch", Message: "size() requires a list or string"}
}

// fnLength returns a path's hop count (its edge count), the length()
// Cypher callers apply to a path-variable binding.
func fnLength(args []graphvalue.Value) (graphvalue.Value, error) {
	if err := requireArgc(args, 1); err != nil {
		return graphvalue.Null, err
	}
	switch args[0].Kind {
	case graphvalue.KindPath:
		return graphvalue.Int(int64(len(args[0].Path.Edges))), nil
	case graphvalue.KindNull:
		return graphvalue.Null, nil
	}
	return graphvalue.Null, &Error{Kind: "TypeMismatch", Message: "length() requires a path"}
}

func fnToInteger(args []graphvalue.Value) (graphvalue.Value, error) {
	if err := requireArgc(args, 1); err != nil {
		return graphvalue.Null, err
	}
	switch args[0].Kind {
	case graphvalue.KindInteger:
		return args[0], nil
	case graphvalue.KindFloat:
		return graphvalue.Int(int64(args[0].Float)), nil
	case graphvalue.KindString:
		n, err := strconv.ParseInt(strings.TrimSpace(args[0].Str), 10, 64)
		if err != nil {
			return graphvalue.Null, nil
		}
		return graphvalue.Int(n), nil
	case graphvalue.KindNull:
		return graphvalue.Null, nil
	}
	return graphvalue.Null, &Error{Kind: "TypeMismatch", Message: "toInteger() requires a numeric or string value"}
}

func fnToFloat(args []graphvalue.Value) (graphvalue.Value, error) {
	if err := requireArgc(args, 1); err != nil {
		return graphvalue.Null, err
	}
	switch args[0].Kind {
	case graphvalue.KindFloat:
		return args[0], nil
	case graphvalue.KindInteger:
		return graphvalue.Float(float64(args[0].Int)), nil
	case graphvalue.KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(args[0].Str), 64)
		if err != nil {
			return graphvalue.Null, nil
		}
		return graphvalue.Float(f), nil
	case graphvalue.KindNull:
		return graphvalue.Null, nil
	}
	return graphvalue.Null, &Error{Kind: "TypeMismatch", Message: "toFloat() requires a numeric or string value"}
}

func fnToString(args []graphvalue.Value) (graphvalue.Value, error) {
	if err := requireArgc(args, 1); err != nil {
		return graphvalue.Null, err
	}
	if args[0].IsNull() {
		return graphvalue.Null, nil
	}
	return graphvalue.Str(rawString(args[0])), nil
}

func fnToBoolean(args []graphvalue.Value) (graphvalue.Value, error) {
	if err := requireArgc(args, 1); err != nil {
		return graphvalue.Null, err
	}
	switch args[0].Kind {
	case graphvalue.KindBool:
		return args[0], nil
	case graphvalue.KindString:
		switch strings.ToLower(args[0].Str) {
		case "true":
			return graphvalue.Bool(true), nil
		case "false":
			return graphvalue.Bool(false), nil
		}
		return graphvalue.Null, nil
	case graphvalue.KindNull:
		return graphvalue.Null, nil
	}
	return graphvalue.Null, &Error{Kind: "TypeMismatch", Message: "toBoolean() requires a boolean or string value"}
}

func fnStringTransform(args []graphvalue.Value, f func(string) string) (graphvalue.Value, error) {
	if err := requireArgc(args, 1); err != nil {
		return graphvalue.Null, err
	}
	if args[0].IsNull() {
		return graphvalue.Null, nil
	}
	if args[0].Kind != graphvalue.KindString {
		return graphvalue.Null, &Error{Kind: "TypeMismatch", Message: "requires a string value"}
	}
	return graphvalue.Str(f(args[0].Str)), nil
}

// fnReverse implements the Cypher string/list REVERSE; the SQL-level
// REVERSE custom function (§6) performs the same bytewise reversal for
// server-side text values, kept as one shared byte-reversal routine.
func fnReverse(args []graphvalue.Value) (graphvalue.Value, error) {
	if err := requireArgc(args, 1); err != nil {
		return graphvalue.Null, err
	}
	switch args[0].Kind {
	case graphvalue.KindNull:
		return graphvalue.Null, nil
	case graphvalue.KindString:
		return graphvalue.Str(ReverseBytes(args[0].Str)), nil
	case graphvalue.KindList:
		out := make([]graphvalue.Value, len(args[0].List))
		for i, v := range args[0].List {
			out[len(out)-1-i] = v
		}
		return graphvalue.ListVal(out), nil
	}
	return graphvalue.Null, &Error{Kind: "TypeMismatch", Message: "reverse() requires a string or list"}
}

// ReverseBytes reverses s byte-for-byte, NULL-safe at the call site. This is
// the exact routine the badger-backed REVERSE(text) SQL function registers
// (§6), so both the in-engine reverse() Cypher function and the
// backend-level scalar share one implementation.
func ReverseBytes(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

func fnAbs(args []graphvalue.Value) (graphvalue.Value, error) {
	if err := requireArgc(args, 1); err != nil {
		return graphvalue.Null, err
	}
	switch args[0].Kind {
	case graphvalue.KindInteger:
		n := args[0].Int
		if n < 0 {
			n = -n
		}
		return graphvalue.Int(n), nil
	case graphvalue.KindFloat:
		f := args[0].Float
		if f < 0 {
			f = -f
		}
		return graphvalue.Float(f), nil
	case graphvalue.KindNull:
		return graphvalue.Null, nil
	}
	return graphvalue.Null, &Error{Kind: "TypeMismatch", Message: "abs() requires a numeric value"}
}

func fnRange(args []graphvalue.Value) (graphvalue.Value, error) {
	if len(args) != 2 && len(args) != 3 {
		return graphvalue.Null, &Error{Kind: "TypeMismatch", Message: "range() requires 2 or 3 arguments"}
	}
	if args[0].Kind != graphvalue.KindInteger || args[1].Kind != graphvalue.KindInteger {
		return graphvalue.Null, &Error{Kind: "TypeMismatch", Message: "range() requires integer bounds"}
	}
	step := int64(1)
	if len(args) == 3 {
		if args[2].Kind != graphvalue.KindInteger || args[2].Int == 0 {
			return graphvalue.Null, &Error{Kind: "TypeMismatch", Message: "range() step must be a nonzero integer"}
		}
		step = args[2].Int
	}
	var out []graphvalue.Value
	if step > 0 {
		for i := args[0].Int; i <= args[1].Int; i += step {
			out = append(out, graphvalue.Int(i))
		}
	} else {
		for i := args[0].Int; i >= args[1].Int; i += step {
			out = append(out, graphvalue.Int(i))
		}
	}
	return graphvalue.ListVal(out), nil
}

func fnHead(args []graphvalue.Value) (graphvalue.Value, error) {
	if err := requireArgc(args, 1); err != nil {
		return graphvalue.Null, err
	}
	if args[0].Kind != graphvalue.KindList {
		return graphvalue.Null, &Error{Kind: "TypeMismatch", Message: "head() requires a list"}
	}
	if len(args[0].List) == 0 {
		return graphvalue.Null, nil
	}
	return args[0].List[0], nil
}

func fnLast(args []graphvalue.Value) (graphvalue.Value, error) {
	if err := requireArgc(args, 1); err != nil {
		return graphvalue.Null, err
	}
	if args[0].Kind != graphvalue.KindList {
		return graphvalue.Null, &Error{Kind: "TypeMismatch", Message: "last() requires a list"}
	}
	if len(args[0].List) == 0 {
		return graphvalue.Null, nil
	}
	return args[0].List[len(args[0].List)-1], nil
}

func fnTail(args []graphvalue.Value) (graphvalue.Value, error) {
	if err := requireArgc(args, 1); err != nil {
		return graphvalue.Null, err
	}
	if args[0].Kind != graphvalue.KindList {
		return graphvalue.Null, &Error{Kind: "TypeMismatch", Message: "tail() requires a list"}
	}
	if len(args[0].List) == 0 {
		return graphvalue.ListVal(nil), nil
	}
	return graphvalue.ListVal(append([]graphvalue.Value{}, args[0].List[1:]...)), nil
}

func (e *Evaluator) evalListExpr(l *ast.ListExpr) (graphvalue.Value, error) {
	items := make([]graphvalue.Value, len(l.Items))
	for i, it := range l.Items {
		v, err := e.Eval(it)
		if err != nil {
			return graphvalue.Null, err
		}
		items[i] = v
	}
	return graphvalue.ListVal(items), nil
}

func (e *Evaluator) withLoopVar(name string, v graphvalue.Value, body func() (graphvalue.Value, error)) (graphvalue.Value, error) {
	fe := e.Foreach
	if fe == nil {
		fe = foreach.New()
	}
	fe.Push()
	fe.Bind(name, v)
	defer fe.Pop()
	saved := e.Foreach
	e.Foreach = fe
	defer func() { e.Foreach = saved }()
	return body()
}

func (e *Evaluator) evalListComprehension(c *ast.ListComprehension) (graphvalue.Value, error) {
	list, err := e.Eval(c.List)
	if err != nil {
		return graphvalue.Null, err
	}
	if list.Kind != graphvalue.KindList {
		return graphvalue.Null, &Error{Kind: "TypeMismatch", Message: "list comprehension requires a list"}
	}
	var out []graphvalue.Value
	for _, item := range list.List {
		v, err := e.withLoopVar(c.Var, item, func() (graphvalue.Value, error) {
			if c.Where != nil {
				cond, err := e.Eval(c.Where)
				if err != nil {
					return graphvalue.Null, err
				}
				if !truthy(cond) {
					return graphvalue.Value{}, errSkip
				}
			}
			if c.Transform != nil {
				return e.Eval(c.Transform)
			}
			return item, nil
		})
		if err == errSkip {
			continue
		}
		if err != nil {
			return graphvalue.Null, err
		}
		out = append(out, v)
	}
	return graphvalue.ListVal(out), nil
}

var errSkip = &Error{Kind: "internal", Message: "skip"}

func (e *Evaluator) evalListPredicate(p *ast.ListPredicate) (graphvalue.Value, error) {
	list, err := e.Eval(p.List)
	if err != nil {
		return graphvalue.Null, err
	}
	if list.Kind != graphvalue.KindList {
		return graphvalue.Null, &Error{Kind: "TypeMismatch", Message: "list predicate requires a list"}
	}
	matchCount := 0
	for _, item := range list.List {
		cond, err := e.withLoopVar(p.Var, item, func() (graphvalue.Value, error) {
			return e.Eval(p.Predicate)
		})
		if err != nil {
			return graphvalue.Null, err
		}
		if truthy(cond) {
			matchCount++
		}
	}
	switch p.Kind {
	case ast.PredAll:
		return graphvalue.Bool(matchCount == len(list.List)), nil
	case ast.PredAny:
		return graphvalue.Bool(matchCount > 0), nil
	case ast.PredNone:
		return graphvalue.Bool(matchCount == 0), nil
	case ast.PredSingle:
		return graphvalue.Bool(matchCount == 1), nil
	}
	return graphvalue.Null, errUnsupported("list predicate kind")
}

func (e *Evaluator) evalReduce(r *ast.ReduceExpr) (graphvalue.Value, error) {
	list, err := e.Eval(r.List)
	if err != nil {
		return graphvalue.Null, err
	}
	if list.Kind != graphvalue.KindList {
		return graphvalue.Null, &Error{Kind: "TypeMismatch", Message: "reduce() requires a list"}
	}
	acc, err := e.Eval(r.Initial)
	if err != nil {
		return graphvalue.Null, err
	}
	fe := e.Foreach
	if fe == nil {
		fe = foreach.New()
	}
	for _, item := range list.List {
		fe.Push()
		fe.Bind(r.Accumulator, acc)
		fe.Bind(r.Var, item)
		saved := e.Foreach
		e.Foreach = fe
		next, err := e.Eval(r.Body)
		e.Foreach = saved
		fe.Pop()
		if err != nil {
			return graphvalue.Null, err
		}
		acc = next
	}
	return acc, nil
}

func (e *Evaluator) evalMapLiteral(m *ast.MapLiteral) (graphvalue.Value, error) {
	out := make(map[string]graphvalue.Value, len(m.Entries))
	for _, ent := range m.Entries {
		v, err := e.Eval(ent.Value)
		if err != nil {
			return graphvalue.Null, err
		}
		out[ent.Key] = v
	}
	return graphvalue.MapVal(out), nil
}

func (e *Evaluator) evalMapProjection(m *ast.MapProjection) (graphvalue.Value, error) {
	target, err := e.Eval(m.Target)
	if err != nil {
		return graphvalue.Null, err
	}
	props, _ := propsOf(target)
	out := make(map[string]graphvalue.Value)
	for _, item := range m.Items {
		switch {
		case item.All:
			for k, v := range props {
				out[k] = v
			}
		case item.Value != nil:
			v, err := e.Eval(item.Value)
			if err != nil {
				return graphvalue.Null, err
			}
			out[item.Key] = v
		default:
			out[item.Key] = props[item.Key]
		}
	}
	return graphvalue.MapVal(out), nil
}

func (e *Evaluator) evalCase(c *ast.CaseExpr) (graphvalue.Value, error) {
	var scrutinee graphvalue.Value
	hasScrutinee := c.Scrutinee != nil
	if hasScrutinee {
		v, err := e.Eval(c.Scrutinee)
		if err != nil {
			return graphvalue.Null, err
		}
		scrutinee = v
	}
	for _, w := range c.Whens {
		if hasScrutinee {
			cv, err := e.Eval(w.Cond)
			if err != nil {
				return graphvalue.Null, err
			}
			if valuesEqual(scrutinee, cv) {
				return e.Eval(w.Result)
			}
			continue
		}
		cond, err := e.Eval(w.Cond)
		if err != nil {
			return graphvalue.Null, err
		}
		if truthy(cond) {
			return e.Eval(w.Result)
		}
	}
	if c.Else != nil {
		return e.Eval(c.Else)
	}
	return graphvalue.Null, nil
}

func (e *Evaluator) evalSubscript(s *ast.Subscript) (graphvalue.Value, error) {
	target, err := e.Eval(s.Target)
	if err != nil {
		return graphvalue.Null, err
	}
	if target.IsNull() {
		return graphvalue.Null, nil
	}
	if target.Kind != graphvalue.KindList && target.Kind != graphvalue.KindString {
		return graphvalue.Null, &Error{Kind: "TypeMismatch", Message: "subscript requires a list or string"}
	}
	length := len(target.List)
	if target.Kind == graphvalue.KindString {
		length = len(target.Str)
	}
	idx, err := e.Eval(s.Index)
	if err != nil {
		return graphvalue.Null, err
	}
	if idx.IsNull() || idx.Kind != graphvalue.KindInteger {
		return graphvalue.Null, &Error{Kind: "TypeMismatch", Message: "subscript index must be an integer"}
	}
	i := normalizeIndex(idx.Int, length)
	if s.IndexEnd == nil {
		if i < 0 || i >= length {
			return graphvalue.Null, nil
		}
		if target.Kind == graphvalue.KindString {
			return graphvalue.Str(string(target.Str[i])), nil
		}
		return target.List[i], nil
	}
	endV, err := e.Eval(s.IndexEnd)
	if err != nil {
		return graphvalue.Null, err
	}
	j := length
	if !endV.IsNull() {
		if endV.Kind != graphvalue.KindInteger {
			return graphvalue.Null, &Error{Kind: "TypeMismatch", Message: "subscript end index must be an integer"}
		}
		j = normalizeIndex(endV.Int, length)
	}
	if i < 0 {
		i = 0
	}
	if j > length {
		j = length
	}
	if i >= j {
		if target.Kind == graphvalue.KindString {
			return graphvalue.Str(""), nil
		}
		return graphvalue.ListVal(nil), nil
	}
	if target.Kind == graphvalue.KindString {
		return graphvalue.Str(target.Str[i:j]), nil
	}
	return graphvalue.ListVal(append([]graphvalue.Value{}, target.List[i:j]...)), nil
}

func normalizeIndex(i int64, length int) int {
	if i < 0 {
		i += int64(length)
	}
	return int(i)
}
