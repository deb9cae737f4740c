package ast

// Visitor receives each node during a Walk. Returning false from a Visitor
// call skips that node's children.
type Visitor func(n Node) bool

// Walk performs a read-only structural-recursion traversal of a Root.
// There are no cycles in an AST by construction, so no visited-set is
// needed; traversal always terminates.
func Walk(root Root, visit Visitor) {
	switch r := root.(type) {
	case *Query:
		walkQuery(r, visit)
	case *Union:
		if !visit(r) {
			return
		}
		Walk(r.Left, visit)
		Walk(r.Right, visit)
	}
}

func walkQuery(q *Query, visit Visitor) {
	if q == nil || !visit(q) {
		return
	}
	for _, c := range q.Clauses {
		walkClause(c, visit)
	}
}

func walkClause(c Clause, visit Visitor) {
	if c == nil || !visit(c) {
		return
	}
	switch cl := c.(type) {
	case *MatchClause:
		for _, p := range cl.Patterns {
			walkPath(p, visit)
		}
		walkExpr(cl.Where, visit)
	case *ReturnClause:
		walkItems(cl.Items, cl.OrderBy, cl.Skip, cl.Limit, visit)
	case *WithClause:
		walkItems(cl.Items, cl.OrderBy, cl.Skip, cl.Limit, visit)
		walkExpr(cl.Where, visit)
	case *CreateClause:
		for _, p := range cl.Patterns {
			walkPath(p, visit)
		}
	case *MergeClause:
		walkPath(cl.Pattern, visit)
		for _, it := range cl.OnCreate {
			walkSetItem(it, visit)
		}
		for _, it := range cl.OnMatch {
			walkSetItem(it, visit)
		}
	case *SetClause:
		for _, it := range cl.Items {
			walkSetItem(it, visit)
		}
	case *DeleteClause:
		// variables are plain names, nothing to recurse into
	case *RemoveClause:
		for _, it := range cl.Items {
			if it.Property != nil {
				walkExpr(it.Property, visit)
			}
		}
	case *UnwindClause:
		walkExpr(cl.Expr, visit)
	case *ForeachClause:
		walkExpr(cl.List, visit)
		for _, sub := range cl.Body {
			walkClause(sub, visit)
		}
	case *LoadCsvClause:
		walkExpr(cl.Path, visit)
	}
}

func walkItems(items []*ReturnItem, order []*OrderItem, skip, limit Expression, visit Visitor) {
	for _, it := range items {
		walkExpr(it.Expr, visit)
	}
	for _, o := range order {
		walkExpr(o.Expr, visit)
	}
	walkExpr(skip, visit)
	walkExpr(limit, visit)
}

func walkSetItem(it *SetItem, visit Visitor) {
	if it.Property != nil {
		walkExpr(it.Property, visit)
	}
	walkExpr(it.Value, visit)
}

func walkPath(p *Path, visit Visitor) {
	if p == nil || !visit(p) {
		return
	}
	for _, n := range p.Nodes {
		if n.Properties != nil {
			walkExpr(n.Properties, visit)
		}
	}
	for _, r := range p.Rels {
		if r.Properties != nil {
			walkExpr(r.Properties, visit)
		}
	}
}

func walkExpr(e Expression, visit Visitor) {
	if e == nil || !visit(e) {
		return
	}
	switch ex := e.(type) {
	case *PropertyExpr:
		walkExpr(ex.Target, visit)
	case *LabelExpr:
		walkExpr(ex.Target, visit)
	case *NotExpr:
		walkExpr(ex.Expr, visit)
	case *NullCheck:
		walkExpr(ex.Expr, visit)
	case *BinaryExpr:
		walkExpr(ex.Left, visit)
		walkExpr(ex.Right, visit)
	case *FunctionCall:
		for _, a := range ex.Args {
			walkExpr(a, visit)
		}
	case *ExistsExpr:
		if ex.Pattern != nil {
			walkPath(ex.Pattern, visit)
		}
		if ex.Property != nil {
			walkExpr(ex.Property, visit)
		}
	case *ListPredicate:
		walkExpr(ex.List, visit)
		walkExpr(ex.Predicate, visit)
	case *ReduceExpr:
		walkExpr(ex.Initial, visit)
		walkExpr(ex.List, visit)
		walkExpr(ex.Body, visit)
	case *ListExpr:
		for _, it := range ex.Items {
			walkExpr(it, visit)
		}
	case *ListComprehension:
		walkExpr(ex.List, visit)
		walkExpr(ex.Where, visit)
		walkExpr(ex.Transform, visit)
	case *PatternComprehension:
		walkPath(ex.Pattern, visit)
		walkExpr(ex.Where, visit)
		walkExpr(ex.Transform, visit)
	case *MapLiteral:
		for _, entry := range ex.Entries {
			walkExpr(entry.Value, visit)
		}
	case *MapProjection:
		walkExpr(ex.Target, visit)
		for _, it := range ex.Items {
			walkExpr(it.Value, visit)
		}
	case *CaseExpr:
		walkExpr(ex.Scrutinee, visit)
		for _, w := range ex.Whens {
			walkExpr(w.Cond, visit)
			walkExpr(w.Result, visit)
		}
		walkExpr(ex.Else, visit)
	case *Subscript:
		walkExpr(ex.Target, visit)
		walkExpr(ex.Index, visit)
		walkExpr(ex.IndexEnd, visit)
	}
}
