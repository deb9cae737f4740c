package engine

import (
	"github.com/relcypher/graphengine/pkg/eval"
	"github.com/relcypher/graphengine/pkg/graphvalue"
	"github.com/relcypher/graphengine/pkg/translate"
)

// algorithmHook adapts a translate.AlgorithmRunner (Run(name, args)) to the
// eval.FunctionHook shape (Call(name, args)) relstore.Executor and
// relstore.Backend expect, and narrows it to only the function names
// translate.IsAlgorithmCall recognizes. Any other unresolved call still
// falls through to the caller's own UnsupportedQuery error instead of
// reaching a runner that was never meant to see it.
type algorithmHook struct {
	runner translate.AlgorithmRunner
}

func (h algorithmHook) Call(name string, args []graphvalue.Value) (graphvalue.Value, error) {
	if !translate.IsAlgorithmCall(name) {
		return graphvalue.Null, &eval.Error{Kind: "UnsupportedQuery", Message: "unknown function " + name}
	}
	return h.runner.Run(name, args)
}
