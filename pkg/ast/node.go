// Package ast defines the typed algebraic structure for Cypher queries:
// clauses, patterns, and expressions. An AST node is a tagged variant; the
// query tree owns its clauses, clauses own their sub-expressions, and
// expression sharing is forbidden (a node has exactly one parent).
package ast

// Location is a one-based line/column into the source query, attached to
// every node for error reporting.
type Location struct {
	Line int
	Col  int
}

// Node is implemented by every AST variant.
type Node interface {
	Loc() Location
}

// base carries the common location field embedded by every concrete node.
type base struct {
	Location Location
}

func (b base) Loc() Location { return b.Location }

// Root is implemented by the two possible AST roots: Query and Union.
type Root interface {
	Node
	isRoot()
}

// Query is an ordered list of clauses, the most common AST root.
type Query struct {
	base
	Clauses  []Clause
	Explain  bool
	Profile  bool
	disposed bool
}

func (q *Query) isRoot() {}

// Union combines two queries with UNION [ALL]. Chained UNIONs
// (`q1 UNION q2 UNION ALL q3`) nest left-associatively: Left may itself be
// a Union.
type Union struct {
	base
	Left  Root
	Right Root
	All   bool
}

func (u *Union) isRoot() {}

// Dispose reclaims the query tree. Go's garbage collector does the actual
// reclamation; Dispose only marks the root so a second call is a safe
// no-op, satisfying the "disposing the root exactly once" invariant without
// requiring manual memory management.
func (q *Query) Dispose() {
	if q == nil || q.disposed {
		return
	}
	q.disposed = true
}

// Disposed reports whether Dispose has already run.
func (q *Query) Disposed() bool {
	return q != nil && q.disposed
}

// NewQuery constructs a Query at the given location.
func NewQuery(loc Location, clauses []Clause) *Query {
	return &Query{base: base{Location: loc}, Clauses: clauses}
}

// NewUnion constructs a Union of two query roots.
func NewUnion(loc Location, left Root, right Root, all bool) *Union {
	return &Union{base: base{Location: loc}, Left: left, Right: right, All: all}
}
