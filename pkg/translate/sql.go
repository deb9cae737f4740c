package translate

import (
	"fmt"
	"strings"

	"github.com/relcypher/graphengine/pkg/ast"
	"github.com/relcypher/graphengine/pkg/relstore"
)

// renderSQL renders plan as the human-auditable SQL text spec §6's EXPLAIN
// shows. relstore.Executor never parses this text back; it runs the
// structural Plan directly, so renderSQL only needs to be a faithful,
// readable rendering of the same plan, not a string a real engine executes.
func renderSQL(plan *relstore.Plan) string {
	if plan.Union != nil {
		op := "UNION"
		if plan.Union.All {
			op = "UNION ALL"
		}
		return renderSQL(plan.Union.Left) + "\n" + op + "\n" + renderSQL(plan.Union.Right)
	}

	var b strings.Builder

	if plan.UnwindExpr != nil {
		fmt.Fprintf(&b, "WITH %s AS (SELECT value FROM json_each(%s))\n", plan.UnwindVar, exprText(plan.UnwindExpr))
	}

	b.WriteString("SELECT ")
	if plan.Distinct {
		b.WriteString("DISTINCT ")
	}
	cols := make([]string, len(plan.Project))
	for i, p := range plan.Project {
		cols[i] = fmt.Sprintf("%s AS %s", exprText(p.Expr), p.Name)
	}
	if len(cols) == 0 {
		b.WriteString("*")
	} else {
		b.WriteString(strings.Join(cols, ", "))
	}

	from := make([]string, 0, len(plan.NodeScans))
	for _, ns := range plan.NodeScans {
		from = append(from, renderNodeScan(ns))
	}
	if len(from) > 0 {
		fmt.Fprintf(&b, "\nFROM %s", strings.Join(from, ", "))
	}

	for _, ej := range plan.EdgeJoins {
		fmt.Fprintf(&b, "\nJOIN %s", renderEdgeJoin(ej))
	}

	if plan.Where != nil {
		fmt.Fprintf(&b, "\nWHERE %s", exprText(plan.Where))
	}

	if len(plan.OrderBy) > 0 {
		terms := make([]string, len(plan.OrderBy))
		for i, o := range plan.OrderBy {
			dir := "ASC"
			if o.Desc {
				dir = "DESC"
			}
			terms[i] = fmt.Sprintf("%s %s", exprText(o.Expr), dir)
		}
		fmt.Fprintf(&b, "\nORDER BY %s", strings.Join(terms, ", "))
	}

	if plan.Skip != nil {
		fmt.Fprintf(&b, "\nOFFSET %s", exprText(plan.Skip))
	}
	if plan.Limit != nil {
		fmt.Fprintf(&b, "\nLIMIT %s", exprText(plan.Limit))
	}

	return b.String()
}

func renderNodeScan(ns *relstore.NodeScan) string {
	s := fmt.Sprintf("nodes %s", ns.Alias)
	for _, l := range ns.Labels {
		s += fmt.Sprintf(" JOIN node_labels ON node_labels.node_id = %s.id AND node_labels.label = '%s'", ns.Alias, l)
	}
	return s
}

func renderEdgeJoin(ej *relstore.EdgeJoin) string {
	cond := fmt.Sprintf("%s.source_id = %s.id AND %s.target_id = %s.id", ej.Alias, ej.FromAlias, ej.Alias, ej.ToAlias)
	if ej.Varlen != nil {
		max := "unbounded"
		if ej.Varlen.Max >= 0 {
			max = fmt.Sprintf("%d", ej.Varlen.Max)
		}
		return fmt.Sprintf("edges_reachable(%d, %s) %s ON %s", ej.Varlen.Min, max, ej.Alias, cond)
	}
	var b strings.Builder
	b.WriteString("edges ")
	b.WriteString(ej.Alias)
	b.WriteString(" ON ")
	b.WriteString(cond)
	if len(ej.Types) > 0 {
		fmt.Fprintf(&b, " AND %s.type IN (%s)", ej.Alias, quotedList(ej.Types))
	}
	return b.String()
}

func quotedList(items []string) string {
	parts := make([]string, len(items))
	for i, s := range items {
		parts[i] = "'" + s + "'"
	}
	return strings.Join(parts, ", ")
}

func opText(op ast.BinaryOp) string {
	switch op {
	case ast.OpAnd:
		return "AND"
	case ast.OpOr:
		return "OR"
	case ast.OpXor:
		return "XOR"
	case ast.OpEq:
		return "="
	case ast.OpNeq:
		return "!="
	case ast.OpLt:
		return "<"
	case ast.OpGt:
		return ">"
	case ast.OpLte:
		return "<="
	case ast.OpGte:
		return ">="
	case ast.OpAdd:
		return "+"
	case ast.OpSub:
		return "-"
	case ast.OpMul:
		return "*"
	case ast.OpDiv:
		return "/"
	case ast.OpMod:
		return "%"
	case ast.OpIn:
		return "IN"
	case ast.OpStartsWith, ast.OpEndsWith, ast.OpContains:
		return "LIKE"
	case ast.OpRegex:
		return "REGEXP"
	}
	return "?"
}
