// Package varctx tracks the Cypher variable names visible at each point in
// a query and the SQL alias each one resolves to. It mirrors the flat
// variable-binding map an executor keeps at runtime, but resolved at
// translate time: one VariableContext walks a query's clauses in order,
// accumulating and later hiding bindings the way WITH re-scopes a query.
package varctx

// Kind tags what a bound Cypher name refers to.
type Kind int

const (
	KindNode Kind = iota
	KindEdge
	KindPath
	KindProjected
	KindAggregated
)

func (k Kind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindEdge:
		return "edge"
	case KindPath:
		return "path"
	case KindProjected:
		return "projected"
	case KindAggregated:
		return "aggregated"
	}
	return "unknown"
}

// Variable is one bound Cypher name.
type Variable struct {
	Name      string
	Kind      Kind
	Alias     string // SQL alias/column this name resolves to
	Clause    int    // index of the declaring clause
	Visible   bool   // false once a WITH projects it out
	Bound     bool   // true once a write executor has materialized it
	Label     string // optional node label / edge type tag
	Graph     string // optional source graph name
	CTE       string // optional backing CTE name (set for varlen path variables)
}

// VariableContext is the C3 component: a single, mutable scope tracker for
// one query's translation pass.
type VariableContext struct {
	vars      map[string]*Variable
	order     []string
	clauseIdx int
}

// New creates an empty VariableContext.
func New() *VariableContext {
	return &VariableContext{vars: make(map[string]*Variable)}
}

func (c *VariableContext) register(name string, kind Kind, alias string) *Variable {
	if v, ok := c.vars[name]; ok {
		v.Kind = kind
		v.Alias = alias
		v.Visible = true
		return v
	}
	v := &Variable{Name: name, Kind: kind, Alias: alias, Clause: c.clauseIdx, Visible: true}
	c.vars[name] = v
	c.order = append(c.order, name)
	return v
}

// RegisterNode binds name as a node variable resolving to alias.
func (c *VariableContext) RegisterNode(name, alias string) *Variable {
	return c.register(name, KindNode, alias)
}

// RegisterEdge binds name as an edge variable resolving to alias.
func (c *VariableContext) RegisterEdge(name, alias string) *Variable {
	return c.register(name, KindEdge, alias)
}

// RegisterPath binds name as a path variable resolving to alias.
func (c *VariableContext) RegisterPath(name, alias string) *Variable {
	return c.register(name, KindPath, alias)
}

// RegisterProjected binds name as a WITH/RETURN-projected scalar.
func (c *VariableContext) RegisterProjected(name, alias string) *Variable {
	return c.register(name, KindProjected, alias)
}

// RegisterAggregated binds name as an aggregate function result.
func (c *VariableContext) RegisterAggregated(name, alias string) *Variable {
	return c.register(name, KindAggregated, alias)
}

// Lookup returns the variable bound to name, or ok=false if it's unbound or
// has been hidden by a prior WITH projection.
func (c *VariableContext) Lookup(name string) (*Variable, bool) {
	v, ok := c.vars[name]
	if !ok || !v.Visible {
		return nil, false
	}
	return v, true
}

// LookupNode is Lookup restricted to node-kind variables.
func (c *VariableContext) LookupNode(name string) (*Variable, bool) {
	v, ok := c.Lookup(name)
	if !ok || v.Kind != KindNode {
		return nil, false
	}
	return v, true
}

// LookupEdge is Lookup restricted to edge-kind variables.
func (c *VariableContext) LookupEdge(name string) (*Variable, bool) {
	v, ok := c.Lookup(name)
	if !ok || v.Kind != KindEdge {
		return nil, false
	}
	return v, true
}

// LookupPath is Lookup restricted to path-kind variables.
func (c *VariableContext) LookupPath(name string) (*Variable, bool) {
	v, ok := c.Lookup(name)
	if !ok || v.Kind != KindPath {
		return nil, false
	}
	return v, true
}

// EnterClause advances the context to the next clause index, used so newly
// registered variables record which clause declared them.
func (c *VariableContext) EnterClause() {
	c.clauseIdx++
}

// ExitClause is a no-op placeholder kept symmetrical with EnterClause for
// callers that bracket clause translation.
func (c *VariableContext) ExitClause() {}

// Project hides every bound variable not named in names: the WITH
// re-scoping rule. Hidden variables remain in the map (still reachable by a
// later Lookup is false, but the Variable survives for diagnostics) rather
// than being deleted, since Cypher reports "variable not defined" instead
// of "unknown identifier" for a name projected out earlier.
func (c *VariableContext) Project(names []string) {
	keep := make(map[string]bool, len(names))
	for _, n := range names {
		keep[n] = true
	}
	for name, v := range c.vars {
		v.Visible = keep[name]
	}
}

// SetCTE records the backing CTE name for a variable-length path variable.
func (c *VariableContext) SetCTE(name, cte string) {
	if v, ok := c.vars[name]; ok {
		v.CTE = cte
	}
}

// SetBound marks name as materialized by a write executor.
func (c *VariableContext) SetBound(name string) {
	if v, ok := c.vars[name]; ok {
		v.Bound = true
	}
}

// SetGraph records the source graph a variable was matched against.
func (c *VariableContext) SetGraph(name, graph string) {
	if v, ok := c.vars[name]; ok {
		v.Graph = graph
	}
}

// Names returns every currently-visible variable name, in declaration order.
func (c *VariableContext) Names() []string {
	var out []string
	for _, n := range c.order {
		if v := c.vars[n]; v.Visible {
			out = append(out, n)
		}
	}
	return out
}
