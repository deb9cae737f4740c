package eval

import (
	"regexp"
	"strings"

	"github.com/relcypher/graphengine/pkg/ast"
	"github.com/relcypher/graphengine/pkg/graphvalue"
)

func (e *Evaluator) evalBinary(b *ast.BinaryExpr) (graphvalue.Value, error) {
	if b.Op == ast.OpAnd || b.Op == ast.OpOr || b.Op == ast.OpXor {
		return e.evalLogical(b)
	}
	left, err := e.Eval(b.Left)
	if err != nil {
		return graphvalue.Null, err
	}
	right, err := e.Eval(b.Right)
	if err != nil {
		return graphvalue.Null, err
	}
	switch b.Op {
	case ast.OpEq:
		if left.IsNull() || right.IsNull() {
			return graphvalue.Null, nil
		}
		return graphvalue.Bool(valuesEqual(left, right)), nil
	case ast.OpNeq:
		if left.IsNull() || right.IsNull() {
			return graphvalue.Null, nil
		}
		return graphvalue.Bool(!valuesEqual(left, right)), nil
	case ast.OpLt, ast.OpGt, ast.OpLte, ast.OpGte:
		return compare(left, right, b.Op)
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		return arithmetic(left, right, b.Op)
	case ast.OpIn:
		return evalIn(left, right)
	case ast.OpStartsWith:
		return stringOp(left, right, strings.HasPrefix)
	case ast.OpEndsWith:
		return stringOp(left, right, strings.HasSuffix)
	case ast.OpContains:
		return stringOp(left, right, strings.Contains)
	case ast.OpRegex:
		return regexOp(left, right)
	}
	return graphvalue.Null, errUnsupported("binary operator")
}

// evalLogical implements three-valued (Kleene) AND/OR/XOR: a null operand
// makes the whole expression null unless the other operand alone already
// decides it (false AND null = false; true OR null = true).
func (e *Evaluator) evalLogical(b *ast.BinaryExpr) (graphvalue.Value, error) {
	left, err := e.Eval(b.Left)
	if err != nil {
		return graphvalue.Null, err
	}
	if b.Op == ast.OpAnd && !left.IsNull() && !truthy(left) {
		return graphvalue.Bool(false), nil
	}
	if b.Op == ast.OpOr && !left.IsNull() && truthy(left) {
		return graphvalue.Bool(true), nil
	}
	right, err := e.Eval(b.Right)
	if err != nil {
		return graphvalue.Null, err
	}
	if b.Op == ast.OpAnd && !right.IsNull() && !truthy(right) {
		return graphvalue.Bool(false), nil
	}
	if b.Op == ast.OpOr && !right.IsNull() && truthy(right) {
		return graphvalue.Bool(true), nil
	}
	if b.Op == ast.OpXor {
		if left.IsNull() || right.IsNull() {
			return graphvalue.Null, nil
		}
		return graphvalue.Bool(truthy(left) != truthy(right)), nil
	}
	if left.IsNull() || right.IsNull() {
		return graphvalue.Null, nil
	}
	if b.Op == ast.OpAnd {
		return graphvalue.Bool(truthy(left) && truthy(right)), nil
	}
	return graphvalue.Bool(truthy(left) || truthy(right)), nil
}

func valuesEqual(a, b graphvalue.Value) bool {
	an, aok := asFloat(a)
	bn, bok := asFloat(b)
	if aok && bok {
		return an == bn
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case graphvalue.KindBool:
		return a.Bool == b.Bool
	case graphvalue.KindString:
		return a.Str == b.Str
	case graphvalue.KindVertex:
		return a.Vertex.ID == b.Vertex.ID
	case graphvalue.KindEdge:
		return a.Edge.ID == b.Edge.ID
	case graphvalue.KindList:
		if len(a.List) != len(b.List) {
			return false
		}
		for i := range a.List {
			if !valuesEqual(a.List[i], b.List[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func asFloat(v graphvalue.Value) (float64, bool) {
	switch v.Kind {
	case graphvalue.KindInteger:
		return float64(v.Int), true
	case graphvalue.KindFloat:
		return v.Float, true
	}
	return 0, false
}

func compare(left, right graphvalue.Value, op ast.BinaryOp) (graphvalue.Value, error) {
	if left.IsNull() || right.IsNull() {
		return graphvalue.Null, nil
	}
	ln, lok := asFloat(left)
	rn, rok := asFloat(right)
	var c int
	if lok && rok {
		switch {
		case ln < rn:
			c = -1
		case ln > rn:
			c = 1
		}
	} else if left.Kind == graphvalue.KindString && right.Kind == graphvalue.KindString {
		c = strings.Compare(left.Str, right.Str)
	} else {
		return graphvalue.Null, &Error{Kind: "TypeMismatch", Message: "cannot compare incompatible types"}
	}
	switch op {
	case ast.OpLt:
		return graphvalue.Bool(c < 0), nil
	case ast.OpGt:
		return graphvalue.Bool(c > 0), nil
	case ast.OpLte:
		return graphvalue.Bool(c <= 0), nil
	case ast.OpGte:
		return graphvalue.Bool(c >= 0), nil
	}
	return graphvalue.Null, errUnsupported("comparison operator")
}

func arithmetic(left, right graphvalue.Value, op ast.BinaryOp) (graphvalue.Value, error) {
	if op == ast.OpAdd && (left.Kind == graphvalue.KindString || right.Kind == graphvalue.KindString) {
		if left.IsNull() || right.IsNull() {
			return graphvalue.Null, nil
		}
		return graphvalue.Str(rawString(left) + rawString(right)), nil
	}
	if op == ast.OpAdd && (left.Kind == graphvalue.KindList || right.Kind == graphvalue.KindList) {
		return graphvalue.ListVal(append(append([]graphvalue.Value{}, asList(left)...), asList(right)...)), nil
	}
	if left.IsNull() || right.IsNull() {
		return graphvalue.Null, nil
	}
	ln, lok := asFloat(left)
	rn, rok := asFloat(right)
	if !lok || !rok {
		return graphvalue.Null, &Error{Kind: "TypeMismatch", Message: "arithmetic on non-numeric value"}
	}
	bothInt := left.Kind == graphvalue.KindInteger && right.Kind == graphvalue.KindInteger
	switch op {
	case ast.OpAdd:
		if bothInt {
			return graphvalue.Int(left.Int + right.Int), nil
		}
		return graphvalue.Float(ln + rn), nil
	case ast.OpSub:
		if bothInt {
			return graphvalue.Int(left.Int - right.Int), nil
		}
		return graphvalue.Float(ln - rn), nil
	case ast.OpMul:
		if bothInt {
			return graphvalue.Int(left.Int * right.Int), nil
		}
		return graphvalue.Float(ln * rn), nil
	case ast.OpDiv:
		if rn == 0 {
			return graphvalue.Null, &Error{Kind: "TypeMismatch", Message: "division by zero"}
		}
		if bothInt {
			return graphvalue.Int(left.Int / right.Int), nil
		}
		return graphvalue.Float(ln / rn), nil
	case ast.OpMod:
		if bothInt {
			if right.Int == 0 {
				return graphvalue.Null, &Error{Kind: "TypeMismatch", Message: "modulo by zero"}
			}
			return graphvalue.Int(left.Int % right.Int), nil
		}
		return graphvalue.Null, &Error{Kind: "TypeMismatch", Message: "modulo requires integer operands"}
	}
	return graphvalue.Null, errUnsupported("arithmetic operator")
}

// rawString renders v the way string concatenation wants: the bare text of
// a string value, or the Cypher literal form for anything else.
func rawString(v graphvalue.Value) string {
	if v.Kind == graphvalue.KindString {
		return v.Str
	}
	return v.String()
}

func asList(v graphvalue.Value) []graphvalue.Value {
	if v.Kind == graphvalue.KindList {
		return v.List
	}
	return []graphvalue.Value{v}
}

func evalIn(left, right graphvalue.Value) (graphvalue.Value, error) {
	if right.Kind != graphvalue.KindList {
		return graphvalue.Null, &Error{Kind: "TypeMismatch", Message: "IN requires a list on the right"}
	}
	sawNull := false
	for _, item := range right.List {
		if item.IsNull() {
			sawNull = true
			continue
		}
		if !left.IsNull() && valuesEqual(left, item) {
			return graphvalue.Bool(true), nil
		}
	}
	if sawNull || left.IsNull() {
		return graphvalue.Null, nil
	}
	return graphvalue.Bool(false), nil
}

func stringOp(left, right graphvalue.Value, f func(s, prefix string) bool) (graphvalue.Value, error) {
	if left.IsNull() || right.IsNull() {
		return graphvalue.Null, nil
	}
	if left.Kind != graphvalue.KindString || right.Kind != graphvalue.KindString {
		return graphvalue.Null, &Error{Kind: "TypeMismatch", Message: "string operator requires string operands"}
	}
	return graphvalue.Bool(f(left.Str, right.Str)), nil
}

func regexOp(left, right graphvalue.Value) (graphvalue.Value, error) {
	if left.IsNull() || right.IsNull() {
		return graphvalue.Null, nil
	}
	if left.Kind != graphvalue.KindString || right.Kind != graphvalue.KindString {
		return graphvalue.Null, &Error{Kind: "TypeMismatch", Message: "=~ requires string operands"}
	}
	re, err := regexp.Compile(right.Str)
	if err != nil {
		return graphvalue.Null, &Error{Kind: "TypeMismatch", Message: "invalid regular expression: " + err.Error()}
	}
	return graphvalue.Bool(re.MatchString(left.Str)), nil
}
