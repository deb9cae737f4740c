// Package relstore is the reference Relational Backend + Schema Facade
// implementation: a badger/v4-backed physical store for the persisted
// schema named in spec §6 (nodes, edges, node_labels, property_keys, and
// the per-type node/edge property tables), plus a direct executor for the
// relational Plan the clause transformer compiles MATCH/RETURN/WITH into.
package relstore

import "github.com/relcypher/graphengine/pkg/ast"

// Direction constrains an EdgeJoin to the pattern's `()-[]->()`, `()<-[]-()`,
// or undirected `()-[]-()` form.
type Direction int

const (
	DirOut Direction = iota
	DirIn
	DirEither
)

// VarlenSpec carries a variable-length relationship's `*min..max` bounds;
// Max < 0 means unbounded.
type VarlenSpec struct {
	Min int
	Max int
}

// NodeScan is one node pattern's contribution to a Plan: a fresh alias, its
// required labels (ANDed), and any inline `{k: v}` property filters.
type NodeScan struct {
	Alias       string
	Labels      []string
	InlineProps map[string]ast.Expression
	Optional    bool
}

// EdgeJoin is one relationship pattern's contribution, joining FromAlias to
// ToAlias through the edges table (or, when Varlen is set, through a
// recursive reachability walk).
type EdgeJoin struct {
	Alias       string
	Types       []string
	FromAlias   string
	ToAlias     string
	Direction   Direction
	InlineProps map[string]ast.Expression
	Varlen      *VarlenSpec
	Optional    bool
}

// PathBinding names the whole-pattern variable of a `p = (a)-[...]->(b)`
// path pattern, distinct from any single node/relationship alias within it:
// NodeAliases/RelAliases walk the pattern left to right so the executor can
// stitch the matched vertices and edges into one graphvalue.Path bound to
// Name.
type PathBinding struct {
	Name        string
	NodeAliases []string
	RelAliases  []string
}

// ProjectItem is one output column: its name (already resolved per the
// RETURN/WITH naming priority: alias > property path > identifier >
// function-call text > default) and the expression producing its value.
type ProjectItem struct {
	Name      string
	Expr      ast.Expression
	Aggregate bool
}

// OrderItem is one ORDER BY term over a projected or raw expression.
type OrderItem struct {
	Expr ast.Expression
	Desc bool
}

// Plan is the structural, backend-agnostic description of one compiled
// MATCH/RETURN/WITH/UNWIND region: table scans, join predicates,
// projections, and ORDER BY/SKIP/LIMIT, the execution contract translate
// produces and relstore runs directly, with the SQL text (CompiledQuery.SQL)
// kept only as a human-auditable rendering of this same plan.
type Plan struct {
	NodeScans    []*NodeScan
	EdgeJoins    []*EdgeJoin
	PathBindings []PathBinding
	UnwindVar    string // "" when no UNWIND feeds this plan
	UnwindExpr   ast.Expression
	Where        ast.Expression
	Project      []ProjectItem
	Distinct     bool
	OrderBy      []OrderItem
	Skip         ast.Expression
	Limit        ast.Expression
	Union        *UnionPlan
}

// UnionPlan composes two plans with UNION [ALL].
type UnionPlan struct {
	Left  *Plan
	Right *Plan
	All   bool
}

// CompiledQuery is what pkg/translate hands to relstore: the structural
// Plan plus the human-readable SQL text used verbatim in EXPLAIN output.
type CompiledQuery struct {
	SQL          string
	Plan         *Plan
	PatternName  string
	ParamNames   []string // `$name` references the query actually uses
}
