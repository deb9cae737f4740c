package translate

import (
	"github.com/relcypher/graphengine/pkg/ast"
	"github.com/relcypher/graphengine/pkg/eval"
	"github.com/relcypher/graphengine/pkg/graphvalue"
)

// algorithmNames are the graph-algorithm function calls §1's Non-goals
// exclude from this engine's own evaluator. translate compiles them as
// ordinary projections; IsAlgorithmCall lets pkg/engine's function hook
// recognize them by name at evaluation time and hand them to an
// AlgorithmRunner.
var algorithmNames = map[string]bool{
	"pagerank":             true,
	"shortestpath":         true,
	"allshortestpaths":     true,
	"dijkstra":             true,
	"dijkstrashortestpath": true,
}

// IsAlgorithmCall reports whether name (already lowercased by the caller,
// matching eval's own function-name normalization) identifies a delegated
// graph algorithm rather than a scalar/aggregate function this engine
// evaluates itself.
func IsAlgorithmCall(name string) bool {
	return algorithmNames[name]
}

// AlgorithmRunner is the host-supplied hook for graph algorithms this
// engine does not implement itself (spec §1 Non-goals). A RETURN/WITH
// item calling one is projected like any other expression; when pkg/eval
// evaluates the call, the function hook pkg/engine installs checks
// IsAlgorithmCall and routes it here.
type AlgorithmRunner interface {
	Run(name string, args []graphvalue.Value) (graphvalue.Value, error)
}

// StubAlgorithmRunner is the runner the core ships when no host application
// supplies a real one: every call fails with UnsupportedQuery, which keeps
// the dispatch and translation paths fully exercised without a real
// algorithm implementation plugged in.
type StubAlgorithmRunner struct{}

func (StubAlgorithmRunner) Run(name string, args []graphvalue.Value) (graphvalue.Value, error) {
	return graphvalue.Null, &eval.Error{Kind: "UnsupportedQuery", Message: "graph algorithm " + name + " is not implemented by this engine; supply an AlgorithmRunner"}
}

// AlgorithmCallIn reports whether expr is a FunctionCall naming a delegated
// algorithm, returning it for convenience.
func AlgorithmCallIn(expr ast.Expression) (*ast.FunctionCall, bool) {
	f, ok := expr.(*ast.FunctionCall)
	if !ok {
		return nil, false
	}
	return f, IsAlgorithmCall(lower(f.Name))
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
