package translate

import (
	"github.com/relcypher/graphengine/pkg/ast"
	"github.com/relcypher/graphengine/pkg/relstore"
	"github.com/relcypher/graphengine/pkg/varctx"
)

// applyPath compiles one path pattern into NodeScans/EdgeJoins appended to
// plan, reusing an existing alias's NodeScan when the same named variable
// already appears earlier in the same MATCH clause (`(a)-->(b), (b)-->(c)`
// binds `b` once, not twice). Named elements are registered in vc so later
// clauses can validate references against them.
func applyPath(plan *relstore.Plan, gen *aliasGen, vc *varctx.VariableContext, path *ast.Path, optional bool) error {
	aliases := make([]string, len(path.Nodes))
	for i, np := range path.Nodes {
		alias := gen.nodeAlias(np.Var)
		aliases[i] = alias
		if np.Var != "" {
			vc.RegisterNode(np.Var, alias)
		}
		if np.Var != "" && gen.known[np.Var] {
			continue // already scanned by an earlier pattern in this MATCH
		}
		if np.Var != "" {
			gen.known[np.Var] = true
		}
		plan.NodeScans = append(plan.NodeScans, &relstore.NodeScan{
			Alias:       alias,
			Labels:      np.Labels,
			InlineProps: mapLiteralToExprs(np.Properties),
			Optional:    optional,
		})
	}

	relAliases := make([]string, len(path.Rels))
	for i, rp := range path.Rels {
		fromAlias, toAlias := aliases[i], aliases[i+1]
		dir := relstore.DirOut
		switch rp.Direction {
		case ast.DirRight:
			dir = relstore.DirOut
		case ast.DirLeft:
			fromAlias, toAlias = toAlias, fromAlias
			dir = relstore.DirOut
		case ast.DirEither:
			dir = relstore.DirEither
		}
		relAlias := gen.relAlias(rp.Var)
		relAliases[i] = relAlias
		if rp.Var != "" {
			vc.RegisterEdge(rp.Var, relAlias)
		}
		ej := &relstore.EdgeJoin{
			Alias:       relAlias,
			Types:       rp.Types,
			FromAlias:   fromAlias,
			ToAlias:     toAlias,
			Direction:   dir,
			InlineProps: mapLiteralToExprs(rp.Properties),
			Optional:    optional,
		}
		if rp.Varlen != nil {
			max := rp.Varlen.Max
			min := rp.Varlen.Min
			if min == 0 {
				min = 1
			}
			ej.Varlen = &relstore.VarlenSpec{Min: min, Max: max}
		}
		plan.EdgeJoins = append(plan.EdgeJoins, ej)
	}

	// A named whole-path variable (`p = (a)-->(b)`) is distinct from any
	// node/relationship alias inside the pattern: bind it once the
	// executor has matched every node and edge it walks over.
	if path.Var != "" {
		plan.PathBindings = append(plan.PathBindings, relstore.PathBinding{
			Name:        path.Var,
			NodeAliases: aliases,
			RelAliases:  relAliases,
		})
		vc.RegisterPath(path.Var, "")
	}

	return nil
}

func mapLiteralToExprs(m *ast.MapLiteral) map[string]ast.Expression {
	if m == nil || len(m.Entries) == 0 {
		return nil
	}
	out := make(map[string]ast.Expression, len(m.Entries))
	for _, e := range m.Entries {
		out[e.Key] = e.Value
	}
	return out
}
