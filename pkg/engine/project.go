package engine

import (
	"sort"

	"github.com/relcypher/graphengine/pkg/ast"
	"github.com/relcypher/graphengine/pkg/eval"
	"github.com/relcypher/graphengine/pkg/foreach"
	"github.com/relcypher/graphengine/pkg/graphvalue"
	"github.com/relcypher/graphengine/pkg/params"
	"github.com/relcypher/graphengine/pkg/relstore"
)

// projectRows evaluates items against each raw pattern binding a write
// query's selector matched, after the write clauses ran: the write-path
// counterpart to relstore.Executor's own project step, which only ever
// operates over a Plan's own matched bindings and never sees rows a write
// clause bound or mutated in place.
func projectRows(rows []map[string]graphvalue.Value, items []relstore.ProjectItem, binder *params.Binder, fe *foreach.Context) ([]string, []map[string]graphvalue.Value, error) {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	out := make([]map[string]graphvalue.Value, 0, len(rows))
	for _, b := range rows {
		ev := eval.New(eval.Row(b), binder, fe)
		row := make(map[string]graphvalue.Value, len(items))
		for _, it := range items {
			v, err := ev.Eval(it.Expr)
			if err != nil {
				return nil, nil, err
			}
			row[it.Name] = v
		}
		out = append(out, row)
	}
	return names, out, nil
}

// distinctEvalRows drops later rows whose projected columns textually
// repeat an earlier row's, mirroring relstore.Executor's own distinctRows.
func distinctEvalRows(names []string, rows []map[string]graphvalue.Value) []map[string]graphvalue.Value {
	seen := map[string]bool{}
	out := make([]map[string]graphvalue.Value, 0, len(rows))
	for _, r := range rows {
		key := ""
		for _, n := range names {
			key += "\x1f" + r[n].String()
		}
		if !seen[key] {
			seen[key] = true
			out = append(out, r)
		}
	}
	return out
}

// orderEvalRows sorts out in place by evaluating orderBy against each raw
// pre-projection binding, mirroring relstore.Executor's own orderRows.
// ORDER BY may reference a pattern variable that never made it into the
// RETURN/WITH projection, so it has to re-evaluate against rawRows rather
// than the already-projected columns.
func orderEvalRows(rawRows []map[string]graphvalue.Value, out []map[string]graphvalue.Value, orderBy []*ast.OrderItem, binder *params.Binder, fe *foreach.Context) error {
	type keyed struct {
		keys []graphvalue.Value
		row  map[string]graphvalue.Value
	}
	items := make([]keyed, len(rawRows))
	for i, b := range rawRows {
		ev := eval.New(eval.Row(b), binder, fe)
		keys := make([]graphvalue.Value, len(orderBy))
		for j, ob := range orderBy {
			v, err := ev.Eval(ob.Expr)
			if err != nil {
				return err
			}
			keys[j] = v
		}
		items[i] = keyed{keys: keys, row: out[i]}
	}
	sort.SliceStable(items, func(i, j int) bool {
		for k, ob := range orderBy {
			c := compareValues(items[i].keys[k], items[j].keys[k])
			if c == 0 {
				continue
			}
			if ob.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	for i := range items {
		out[i] = items[i].row
	}
	return nil
}

// compareValues orders two graph values nulls-last, numerically if both are
// numeric, else textually: the same rule relstore.Executor's
// compareOrderKeys applies to its own ORDER BY.
func compareValues(a, b graphvalue.Value) int {
	if a.IsNull() && b.IsNull() {
		return 0
	}
	if a.IsNull() {
		return 1
	}
	if b.IsNull() {
		return -1
	}
	af, aok := numericOf(a)
	bf, bok := numericOf(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	as, bs := a.String(), b.String()
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	}
	return 0
}

func numericOf(v graphvalue.Value) (float64, bool) {
	switch v.Kind {
	case graphvalue.KindInteger:
		return float64(v.Int), true
	case graphvalue.KindFloat:
		return v.Float, true
	}
	return 0, false
}

// skipLimitRows applies SKIP then LIMIT, each evaluated once against an
// empty row since spec §4.1 only allows literals/parameters there.
func skipLimitRows(rows []map[string]graphvalue.Value, skip, limit ast.Expression, binder *params.Binder, fe *foreach.Context) ([]map[string]graphvalue.Value, error) {
	ev := eval.New(eval.Row{}, binder, fe)
	if skip != nil {
		n, err := evalInt(ev, skip)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			n = 0
		}
		if n >= int64(len(rows)) {
			return nil, nil
		}
		rows = rows[n:]
	}
	if limit != nil {
		n, err := evalInt(ev, limit)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			n = 0
		}
		if n < int64(len(rows)) {
			rows = rows[:n]
		}
	}
	return rows, nil
}

func evalInt(ev *eval.Evaluator, expr ast.Expression) (int64, error) {
	v, err := ev.Eval(expr)
	if err != nil {
		return 0, err
	}
	if v.Kind != graphvalue.KindInteger {
		return 0, &eval.Error{Kind: "TypeMismatch", Message: "SKIP/LIMIT expects an integer"}
	}
	return v.Int, nil
}
