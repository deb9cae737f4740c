package dispatch

import "github.com/relcypher/graphengine/pkg/ast"

// Analyze walks a query's clause list and computes the presence bitmask the
// dispatch table matches against. It never inspects clause bodies beyond
// what's needed to set a flag: pattern selection only needs to know which
// clause kinds are present, not their contents.
func Analyze(q *ast.Query) Flag {
	var present Flag
	if q == nil {
		return present
	}
	if q.Explain {
		present |= EXPLAIN
	}
	matchCount := 0
	for _, c := range q.Clauses {
		switch cl := c.(type) {
		case *ast.MatchClause:
			present |= MATCH
			matchCount++
			if cl.Optional {
				present |= OPTIONAL
			}
		case *ast.ReturnClause:
			present |= RETURN
		case *ast.WithClause:
			present |= WITH
		case *ast.CreateClause:
			present |= CREATE
		case *ast.MergeClause:
			present |= MERGE
		case *ast.SetClause:
			present |= SET
		case *ast.DeleteClause:
			present |= DELETE
		case *ast.RemoveClause:
			present |= REMOVE
		case *ast.UnwindClause:
			present |= UNWIND
		case *ast.ForeachClause:
			present |= FOREACH
		case *ast.LoadCsvClause:
			present |= LOAD_CSV
		}
	}
	if matchCount > 1 {
		present |= MULTI_MATCH
	}
	return present
}

// AnalyzeRoot handles both Query and Union roots. A Union is flagged with
// UNION plus the flags of its leftmost leaf query, since the dispatch table
// only needs to know a union is present to route it to the union translator;
// the translator itself recurses into both sides independently.
func AnalyzeRoot(r ast.Root) Flag {
	switch v := r.(type) {
	case *ast.Query:
		return Analyze(v)
	case *ast.Union:
		present := UNION
		left := v.Left
		for {
			if u, ok := left.(*ast.Union); ok {
				left = u.Left
				continue
			}
			break
		}
		if q, ok := left.(*ast.Query); ok {
			present |= Analyze(q)
		}
		return present
	default:
		return 0
	}
}
