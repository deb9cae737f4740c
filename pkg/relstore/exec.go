package relstore

import (
	"sort"

	"github.com/relcypher/graphengine/pkg/ast"
	"github.com/relcypher/graphengine/pkg/eval"
	"github.com/relcypher/graphengine/pkg/foreach"
	"github.com/relcypher/graphengine/pkg/graphvalue"
	"github.com/relcypher/graphengine/pkg/params"
)

// Executor runs a Plan directly against a Store: the "plan is the
// execution contract" half of SPEC_FULL.md's relstore design. translate
// never hands relstore raw SQL text to re-parse, only this structural Plan.
type Executor struct {
	store      *Store
	binder     *params.Binder
	fe         *foreach.Context
	algorithms eval.FunctionHook
	maxHops    int
}

// NewExecutor builds an Executor bound to one store and one query's
// parameter payload / FOREACH scope (either may be nil).
func NewExecutor(s *Store, binder *params.Binder, fe *foreach.Context) *Executor {
	return &Executor{store: s, binder: binder, fe: fe}
}

// SetAlgorithms installs the hook unresolved RETURN/WITH function calls
// (the graph algorithms this engine doesn't evaluate itself) are routed
// through. Left nil, those calls fail with UnsupportedQuery as before.
func (ex *Executor) SetAlgorithms(h eval.FunctionHook) {
	ex.algorithms = h
}

// SetMaxHops caps an unbounded variable-length relationship
// (`-[*..]->`, no upper bound given) at n hops instead of the default 64,
// pkg/config's executor-limits knob.
func (ex *Executor) SetMaxHops(n int) {
	ex.maxHops = n
}

// binding is one partial or complete row of alias -> bound value while
// pattern matching is in progress.
type binding map[string]graphvalue.Value

func (b binding) clone() binding {
	out := make(binding, len(b)+1)
	for k, v := range b {
		out[k] = v
	}
	return out
}

func (ex *Executor) evaluator(b binding) *eval.Evaluator {
	e := eval.New(eval.Row(b), ex.binder, ex.fe)
	e.Functions = ex.algorithms
	return e
}

// Run executes plan end to end: pattern matching, UNWIND expansion, WHERE
// filtering, projection, DISTINCT, ORDER BY, SKIP, and LIMIT, returning the
// final column name order and one map[name]Value per output row.
func (ex *Executor) Run(plan *Plan) ([]string, []map[string]graphvalue.Value, error) {
	if plan.Union != nil {
		return ex.runUnion(plan.Union)
	}

	rows, err := ex.matchRows(plan)
	if err != nil {
		return nil, nil, err
	}

	if plan.UnwindExpr != nil {
		rows, err = ex.expandUnwind(rows, plan.UnwindVar, plan.UnwindExpr)
		if err != nil {
			return nil, nil, err
		}
	}

	if plan.Where != nil {
		rows, err = ex.filterWhere(rows, plan.Where)
		if err != nil {
			return nil, nil, err
		}
	}

	names, out, err := ex.project(rows, plan.Project)
	if err != nil {
		return nil, nil, err
	}

	if plan.Distinct {
		out = distinctRows(names, out)
	}

	if len(plan.OrderBy) > 0 {
		if err := ex.orderRows(rows, out, plan.OrderBy); err != nil {
			return nil, nil, err
		}
	}

	out, err = ex.applySkipLimit(out, plan.Skip, plan.Limit)
	if err != nil {
		return nil, nil, err
	}

	return names, out, nil
}

// MatchOnly runs plan's pattern matching, UNWIND expansion, and WHERE
// filtering but skips projection, returning the raw alias bindings a write
// clause needs. pkg/engine drives CREATE/MERGE/SET/DELETE/REMOVE this way:
// those clauses read and write bound pattern variables directly, not
// projected RETURN columns, so running the full Project/DISTINCT/ORDER
// BY/SKIP/LIMIT tail of Run would throw away exactly what they need.
func (ex *Executor) MatchOnly(plan *Plan) ([]map[string]graphvalue.Value, error) {
	rows, err := ex.matchRows(plan)
	if err != nil {
		return nil, err
	}
	if plan.UnwindExpr != nil {
		rows, err = ex.expandUnwind(rows, plan.UnwindVar, plan.UnwindExpr)
		if err != nil {
			return nil, err
		}
	}
	if plan.Where != nil {
		rows, err = ex.filterWhere(rows, plan.Where)
		if err != nil {
			return nil, err
		}
	}
	out := make([]map[string]graphvalue.Value, len(rows))
	for i, b := range rows {
		out[i] = map[string]graphvalue.Value(b)
	}
	return out, nil
}

func (ex *Executor) runUnion(u *UnionPlan) ([]string, []map[string]graphvalue.Value, error) {
	leftNames, left, err := ex.Run(u.Left)
	if err != nil {
		return nil, nil, err
	}
	_, right, err := ex.Run(u.Right)
	if err != nil {
		return nil, nil, err
	}
	all := append(left, right...)
	if !u.All {
		all = distinctRows(leftNames, all)
	}
	return leftNames, all, nil
}

// matchRows performs the graph pattern match described by plan's NodeScans
// and EdgeJoins, in the order translate emitted them (each EdgeJoin's
// endpoints are expected already bound by a preceding NodeScan or EdgeJoin).
func (ex *Executor) matchRows(plan *Plan) ([]binding, error) {
	rows := []binding{{}}

	for _, ns := range plan.NodeScans {
		next, err := ex.applyNodeScan(rows, ns)
		if err != nil {
			return nil, err
		}
		rows = next
	}

	for _, ej := range plan.EdgeJoins {
		next, err := ex.applyEdgeJoin(rows, ej)
		if err != nil {
			return nil, err
		}
		rows = next
	}

	if len(plan.PathBindings) > 0 {
		rows = bindPathVariables(rows, plan.PathBindings)
	}

	return rows, nil
}

// bindPathVariables assembles each named whole-path variable (distinct from
// any single node/relationship alias within the pattern, spec §4.1's path
// pattern `p = (a)-->(b)`) into a graphvalue.Path by walking its node
// aliases and splicing in each relationship alias's contribution: a
// fixed-length hop binds a single Edge, a variable-length hop already binds
// its own sub-Path (relstore.Executor.variableHop), whose vertices/edges
// are spliced in rather than re-walked.
func bindPathVariables(rows []binding, bindings []PathBinding) []binding {
	out := make([]binding, len(rows))
	for i, b := range rows {
		for _, pb := range bindings {
			b = b.clone()
			if p, ok := assemblePath(b, pb); ok {
				b[pb.Name] = graphvalue.PathVal(p)
			} else {
				b[pb.Name] = graphvalue.Null // an OPTIONAL hop along the path didn't match
			}
		}
		out[i] = b
	}
	return out
}

func assemblePath(b binding, pb PathBinding) (graphvalue.Path, bool) {
	if len(pb.NodeAliases) == 0 {
		return graphvalue.Path{}, false
	}
	first, ok := b[pb.NodeAliases[0]]
	if !ok || first.Kind != graphvalue.KindVertex {
		return graphvalue.Path{}, false
	}
	p := graphvalue.Path{Vertices: []graphvalue.Vertex{*first.Vertex}}
	for i, relAlias := range pb.RelAliases {
		rv, ok := b[relAlias]
		if !ok {
			return graphvalue.Path{}, false
		}
		switch rv.Kind {
		case graphvalue.KindPath:
			// A variable-length hop already carries the full sub-path from
			// its own start (already in p.Vertices) to its end.
			if len(rv.Path.Vertices) > 0 {
				p.Vertices = append(p.Vertices, rv.Path.Vertices[1:]...)
			}
			p.Edges = append(p.Edges, rv.Path.Edges...)
		case graphvalue.KindEdge:
			toAlias := pb.NodeAliases[i+1]
			tv, ok := b[toAlias]
			if !ok || tv.Kind != graphvalue.KindVertex {
				return graphvalue.Path{}, false
			}
			p.Edges = append(p.Edges, *rv.Edge)
			p.Vertices = append(p.Vertices, *tv.Vertex)
		case graphvalue.KindNull:
			return graphvalue.Path{}, false // an OPTIONAL hop that didn't match
		default:
			return graphvalue.Path{}, false
		}
	}
	return p, true
}

func (ex *Executor) applyNodeScan(rows []binding, ns *NodeScan) ([]binding, error) {
	candidates, err := ex.store.scanNodesByLabels(ns.Labels)
	if err != nil {
		return nil, err
	}
	var out []binding
	for _, b := range rows {
		matched := false
		for _, v := range candidates {
			ok, err := ex.nodeSatisfiesInline(b, v, ns.InlineProps)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			nb := b.clone()
			nb[ns.Alias] = graphvalue.VertexVal(v)
			out = append(out, nb)
			matched = true
		}
		if !matched && ns.Optional {
			nb := b.clone()
			nb[ns.Alias] = graphvalue.Null
			out = append(out, nb)
		}
	}
	return out, nil
}

func (ex *Executor) nodeSatisfiesInline(b binding, v graphvalue.Vertex, inline map[string]ast.Expression) (bool, error) {
	if len(inline) == 0 {
		return true, nil
	}
	tmp := b.clone()
	tmp["__n"] = graphvalue.VertexVal(v)
	e := ex.evaluator(tmp)
	for k, expr := range inline {
		want, err := e.Eval(expr)
		if err != nil {
			return false, err
		}
		got, ok := v.Properties[k]
		if !ok || !propValueEqual(got, want) {
			return false, nil
		}
	}
	return true, nil
}

func (ex *Executor) applyEdgeJoin(rows []binding, ej *EdgeJoin) ([]binding, error) {
	var out []binding
	for _, b := range rows {
		fromVal, hasFrom := b[ej.FromAlias]
		if !hasFrom || fromVal.Kind != graphvalue.KindVertex {
			continue
		}
		matches, err := ex.edgesFrom(b, fromVal.Vertex.ID, ej)
		if err != nil {
			return nil, err
		}
		matched := false
		for _, m := range matches {
			if toVal, has := b[ej.ToAlias]; has {
				if toVal.Kind != graphvalue.KindVertex || toVal.Vertex.ID != m.toVertex.ID {
					continue
				}
			}
			nb := b.clone()
			nb[ej.ToAlias] = graphvalue.VertexVal(m.toVertex)
			if ej.Alias != "" {
				if m.path != nil {
					nb[ej.Alias] = graphvalue.PathVal(*m.path)
				} else {
					nb[ej.Alias] = graphvalue.EdgeVal(m.edge)
				}
			}
			out = append(out, nb)
			matched = true
		}
		if !matched && ej.Optional {
			nb := b.clone()
			nb[ej.ToAlias] = graphvalue.Null
			if ej.Alias != "" {
				nb[ej.Alias] = graphvalue.Null
			}
			out = append(out, nb)
		}
	}
	return out, nil
}

type edgeMatch struct {
	edge     graphvalue.Edge
	toVertex graphvalue.Vertex
	path     *graphvalue.Path
}

// edgesFrom walks one or more hops from fromID according to ej.Direction and
// ej.Varlen, filtering by relationship type and any inline property filter.
func (ex *Executor) edgesFrom(b binding, fromID int64, ej *EdgeJoin) ([]edgeMatch, error) {
	if ej.Varlen == nil {
		return ex.singleHop(b, fromID, ej)
	}
	return ex.variableHop(b, fromID, ej)
}

func (ex *Executor) singleHop(b binding, fromID int64, ej *EdgeJoin) ([]edgeMatch, error) {
	var out []edgeMatch
	edges, err := ex.store.incidentEdges(fromID, ej.Direction)
	if err != nil {
		return nil, err
	}
	for _, e := range edges {
		if !typeAllowed(e.Type, ej.Types) {
			continue
		}
		ok, err := ex.edgeSatisfiesInline(b, e, ej.InlineProps)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		toID := e.To
		if e.From != fromID {
			toID = e.From
		}
		toVertex, err := ex.store.LoadNode(toID)
		if err != nil {
			continue
		}
		out = append(out, edgeMatch{edge: e, toVertex: toVertex})
	}
	return out, nil
}

// variableHop performs a bounded BFS honoring VarlenSpec.Min/Max, building a
// Path value for each distinct edge sequence that ends within range; two
// different paths to the same endpoint are both returned.
func (ex *Executor) variableHop(b binding, fromID int64, ej *EdgeJoin) ([]edgeMatch, error) {
	type frame struct {
		nodeID int64
		path   graphvalue.Path
	}
	startVertex, err := ex.store.LoadNode(fromID)
	if err != nil {
		return nil, err
	}
	frontier := []frame{{nodeID: fromID, path: graphvalue.Path{Vertices: []graphvalue.Vertex{startVertex}}}}
	var out []edgeMatch
	seen := map[string]bool{}
	maxHops := ej.Varlen.Max
	if maxHops < 0 {
		maxHops = ex.maxHops
		if maxHops <= 0 {
			maxHops = 64 // bounded walk ceiling; an unbounded search over a cyclic graph never terminates otherwise
		}
	}
	for hop := 1; hop <= maxHops; hop++ {
		var next []frame
		for _, fr := range frontier {
			edges, err := ex.store.incidentEdges(fr.nodeID, ej.Direction)
			if err != nil {
				return nil, err
			}
			for _, e := range edges {
				if !typeAllowed(e.Type, ej.Types) {
					continue
				}
				toID := e.To
				if e.From != fr.nodeID {
					toID = e.From
				}
				toVertex, err := ex.store.LoadNode(toID)
				if err != nil {
					continue
				}
				p := graphvalue.Path{
					Vertices: append(append([]graphvalue.Vertex{}, fr.path.Vertices...), toVertex),
					Edges:    append(append([]graphvalue.Edge{}, fr.path.Edges...), e),
				}
				if hop >= ej.Varlen.Min {
					sig := pathSignature(p)
					if !seen[sig] {
						seen[sig] = true
						out = append(out, edgeMatch{edge: e, toVertex: toVertex, path: &p})
					}
				}
				next = append(next, frame{nodeID: toID, path: p})
			}
		}
		frontier = next
		if len(frontier) == 0 {
			break
		}
	}
	return out, nil
}

func pathSignature(p graphvalue.Path) string {
	s := ""
	for _, e := range p.Edges {
		s += "/" + edgeKeyString(e.ID)
	}
	return s
}

func edgeKeyString(id int64) string {
	return string(edgeKey(id))
}

func typeAllowed(t string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == t {
			return true
		}
	}
	return false
}

func (ex *Executor) edgeSatisfiesInline(b binding, e graphvalue.Edge, inline map[string]ast.Expression) (bool, error) {
	if len(inline) == 0 {
		return true, nil
	}
	tmp := b.clone()
	e2 := e
	tmp["__e"] = graphvalue.EdgeVal(e2)
	ev := ex.evaluator(tmp)
	for k, expr := range inline {
		want, err := ev.Eval(expr)
		if err != nil {
			return false, err
		}
		got, ok := e.Properties[k]
		if !ok || !propValueEqual(got, want) {
			return false, nil
		}
	}
	return true, nil
}

func (ex *Executor) expandUnwind(rows []binding, varName string, expr ast.Expression) ([]binding, error) {
	var out []binding
	for _, b := range rows {
		v, err := ex.evaluator(b).Eval(expr)
		if err != nil {
			return nil, err
		}
		if v.Kind != graphvalue.KindList {
			nb := b.clone()
			nb[varName] = v
			out = append(out, nb)
			continue
		}
		for _, item := range v.List {
			nb := b.clone()
			nb[varName] = item
			out = append(out, nb)
		}
	}
	return out, nil
}

func (ex *Executor) filterWhere(rows []binding, where ast.Expression) ([]binding, error) {
	var out []binding
	for _, b := range rows {
		v, err := ex.evaluator(b).Eval(where)
		if err != nil {
			return nil, err
		}
		if v.Kind == graphvalue.KindBool && v.Bool {
			out = append(out, b)
		}
	}
	return out, nil
}

func (ex *Executor) project(rows []binding, items []ProjectItem) ([]string, []map[string]graphvalue.Value, error) {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	out := make([]map[string]graphvalue.Value, 0, len(rows))
	for _, b := range rows {
		e := ex.evaluator(b)
		row := make(map[string]graphvalue.Value, len(items))
		for _, it := range items {
			v, err := e.Eval(it.Expr)
			if err != nil {
				return nil, nil, err
			}
			row[it.Name] = v
		}
		out = append(out, row)
	}
	return names, out, nil
}

func distinctRows(names []string, rows []map[string]graphvalue.Value) []map[string]graphvalue.Value {
	seen := map[string]bool{}
	var out []map[string]graphvalue.Value
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

// orderRows sorts out in place. ORDER BY expressions are evaluated against
// the pre-projection binding so they may reference either a projected alias
// or a raw pattern variable (Cypher allows both).
func (ex *Executor) orderRows(rows []binding, out []map[string]graphvalue.Value, orderBy []OrderItem) error {
	type keyed struct {
		keys []graphvalue.Value
		row  map[string]graphvalue.Value
	}
	items := make([]keyed, len(rows))
	for i, b := range rows {
		e := ex.evaluator(b)
		keys := make([]graphvalue.Value, len(orderBy))
		for j, ob := range orderBy {
			v, err := e.Eval(ob.Expr)
			if err != nil {
				return err
			}
			keys[j] = v
		}
		items[i] = keyed{keys: keys, row: out[i]}
	}
	sort.SliceStable(items, func(i, j int) bool {
		for k, ob := range orderBy {
			c := compareOrderKeys(items[i].keys[k], items[j].keys[k])
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

func compareOrderKeys(a, b graphvalue.Value) int {
	if a.IsNull() && b.IsNull() {
		return 0
	}
	if a.IsNull() {
		return 1 // nulls sort last, matching openCypher ORDER BY semantics
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
		default:
			return 0
		}
	}
	as, bs := a.String(), b.String()
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
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

func (ex *Executor) applySkipLimit(rows []map[string]graphvalue.Value, skip, limit ast.Expression) ([]map[string]graphvalue.Value, error) {
	if skip != nil {
		n, err := ex.evalInt(skip)
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
		n, err := ex.evalInt(limit)
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

func (ex *Executor) evalInt(expr ast.Expression) (int64, error) {
	v, err := ex.evaluator(nil).Eval(expr)
	if err != nil {
		return 0, err
	}
	if v.Kind != graphvalue.KindInteger {
		return 0, &eval.Error{Kind: "TypeMismatch", Message: "SKIP/LIMIT expects an integer"}
	}
	return v.Int, nil
}
