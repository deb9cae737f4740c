// Package assemble is the Result Assembler (C8): it drains a prepared
// relstore.Statement's rows and folds any RETURN/WITH item recognized as
// an aggregate (count, collect, sum, avg, min, max) across every row, since
// pkg/eval deliberately evaluates an aggregate call as just its current
// row's contribution and leaves the cross-row fold to this package.
//
// Because pkg/relstore's Plan executor already produces typed
// graphvalue.Values per column (rather than textual SQL cells this package
// would otherwise have to sniff and parse, per spec §4.8 step 3), the
// "rehydrate a SQL cell into a Vertex/Edge/Path" half of the Result
// Assembler's job is satisfied upstream, in the Plan executor's own
// projection step: there is no second textual parse here. What remains for
// this package is the pre-count fast path, aggregate folding, and the dual
// text+typed emission. Column names are read from the Statement as
// pkg/translate already resolved them.
package assemble

import (
	"github.com/relcypher/graphengine/pkg/ast"
	"github.com/relcypher/graphengine/pkg/graphvalue"
	"github.com/relcypher/graphengine/pkg/relstore"
)

// Cell is one assembled column value: its typed Graph Value and the
// textual representation spec §4.8 requires alongside it.
type Cell struct {
	Value graphvalue.Value
	Text  string
}

// Result is the fully assembled, column-ordered output of one query.
type Result struct {
	Columns []string
	Rows    [][]Cell
}

// Statement is the subset of relstore.Statement this package drains; kept
// narrow so tests can supply a fake without a real Store.
type Statement interface {
	Step() (bool, error)
	ColumnCount() int
	ColumnName(i int) string
	ColumnValue(i int) graphvalue.Value
}

// Assemble drains st to completion and returns the final Result. project
// carries the same ProjectItem list translate compiled the statement's
// columns from, used only to detect which columns are aggregates and what
// aggregate function each one is.
func Assemble(st Statement, project []relstore.ProjectItem) (*Result, error) {
	names, raw, err := drain(st)
	if err != nil {
		return nil, err
	}
	return FoldRows(names, raw, project), nil
}

// FoldRows assembles an already-materialized row set into a Result without
// draining a Statement. pkg/engine calls this for a write query's trailing
// RETURN/WITH, whose rows come from running write clauses over matched
// pattern bindings rather than from a relstore.Plan.
func FoldRows(names []string, rows []map[string]graphvalue.Value, project []relstore.ProjectItem) *Result {
	if !hasAggregate(project) {
		return toResult(names, rows)
	}
	return foldAggregates(names, rows, project)
}

// drain steps the statement to exhaustion, the "pre-count rows" fast path
// for zero rows falling out naturally: a query with no matches steps false
// immediately and raw stays empty.
func drain(st Statement) ([]string, []map[string]graphvalue.Value, error) {
	names := make([]string, st.ColumnCount())
	for i := range names {
		names[i] = st.ColumnName(i)
	}
	var rows []map[string]graphvalue.Value
	for {
		ok, err := st.Step()
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			break
		}
		row := make(map[string]graphvalue.Value, len(names))
		for i, n := range names {
			row[n] = st.ColumnValue(i)
		}
		rows = append(rows, row)
	}
	return names, rows, nil
}

func toResult(names []string, rows []map[string]graphvalue.Value) *Result {
	out := &Result{Columns: names}
	for _, r := range rows {
		cells := make([]Cell, len(names))
		for i, n := range names {
			cells[i] = toCell(r[n])
		}
		out.Rows = append(out.Rows, cells)
	}
	return out
}

func toCell(v graphvalue.Value) Cell {
	return Cell{Value: v, Text: v.String()}
}

func hasAggregate(project []relstore.ProjectItem) bool {
	for _, p := range project {
		if p.Aggregate {
			return true
		}
	}
	return false
}

// foldAggregates collapses every row into a single output row: aggregate
// columns fold across all contributions; non-aggregate columns take the
// first row's value. spec §4.8/§4.7 do not define GROUP BY; a query mixing
// aggregate and non-aggregate RETURN items without grouping keys is
// documented in DESIGN.md as this engine's accepted simplification.
func foldAggregates(names []string, rows []map[string]graphvalue.Value, project []relstore.ProjectItem) *Result {
	out := &Result{Columns: names}
	cells := make([]Cell, len(names))
	for i, name := range names {
		if project[i].Aggregate {
			cells[i] = toCell(foldColumn(rows, name, project[i].Expr))
			continue
		}
		if len(rows) > 0 {
			cells[i] = toCell(rows[0][name])
		} else {
			cells[i] = toCell(graphvalue.Null)
		}
	}
	out.Rows = [][]Cell{cells}
	return out
}

func foldColumn(rows []map[string]graphvalue.Value, name string, expr ast.Expression) graphvalue.Value {
	contributions := make([]graphvalue.Value, len(rows))
	for i, r := range rows {
		contributions[i] = r[name]
	}
	call, _ := expr.(*ast.FunctionCall)
	fname := ""
	if call != nil {
		fname = lowerASCII(call.Name)
	}
	switch fname {
	case "count":
		if call != nil && len(call.Args) == 0 {
			return graphvalue.Int(int64(len(rows)))
		}
		n := 0
		for _, v := range contributions {
			if !v.IsNull() {
				n++
			}
		}
		return graphvalue.Int(int64(n))
	case "collect":
		var items []graphvalue.Value
		for _, v := range contributions {
			if !v.IsNull() {
				items = append(items, v)
			}
		}
		return graphvalue.ListVal(items)
	case "sum":
		return foldSum(contributions)
	case "avg":
		return foldAvg(contributions)
	case "min":
		return foldExtreme(contributions, true)
	case "max":
		return foldExtreme(contributions, false)
	default:
		if len(contributions) > 0 {
			return contributions[0]
		}
		return graphvalue.Null
	}
}

func foldSum(vals []graphvalue.Value) graphvalue.Value {
	intSum := int64(0)
	floatSum := 0.0
	allInt := true
	any := false
	for _, v := range vals {
		f, i, isFloat, ok := numeric(v)
		if !ok {
			continue
		}
		any = true
		if isFloat {
			allInt = false
			floatSum += f
		} else {
			intSum += i
			floatSum += float64(i)
		}
	}
	if !any {
		return graphvalue.Int(0)
	}
	if allInt {
		return graphvalue.Int(intSum)
	}
	return graphvalue.Float(floatSum)
}

func foldAvg(vals []graphvalue.Value) graphvalue.Value {
	sum := 0.0
	n := 0
	for _, v := range vals {
		f, _, _, ok := numeric(v)
		if !ok {
			continue
		}
		sum += f
		n++
	}
	if n == 0 {
		return graphvalue.Null
	}
	return graphvalue.Float(sum / float64(n))
}

func foldExtreme(vals []graphvalue.Value, wantMin bool) graphvalue.Value {
	var best graphvalue.Value
	have := false
	for _, v := range vals {
		if v.IsNull() {
			continue
		}
		if !have {
			best = v
			have = true
			continue
		}
		if isBetter(v, best, wantMin) {
			best = v
		}
	}
	if !have {
		return graphvalue.Null
	}
	return best
}

// isBetter reports whether candidate should replace current under MIN/MAX:
// numeric values compare numerically, otherwise both fall back to their
// textual form, consistent with ORDER BY's own nulls-last/else-textual
// comparison (pkg/relstore's compareOrderKeys).
func isBetter(candidate, current graphvalue.Value, wantMin bool) bool {
	cf, _, _, cok := numeric(candidate)
	uf, _, _, uok := numeric(current)
	if cok && uok {
		if wantMin {
			return cf < uf
		}
		return cf > uf
	}
	if wantMin {
		return candidate.String() < current.String()
	}
	return candidate.String() > current.String()
}

func numeric(v graphvalue.Value) (f float64, i int64, isFloat bool, ok bool) {
	switch v.Kind {
	case graphvalue.KindInteger:
		return float64(v.Int), v.Int, false, true
	case graphvalue.KindFloat:
		return v.Float, 0, true, true
	}
	return 0, 0, false, false
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
