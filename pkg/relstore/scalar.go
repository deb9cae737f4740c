package relstore

import (
	"github.com/relcypher/graphengine/pkg/eval"
	"github.com/relcypher/graphengine/pkg/graphvalue"
)

// RegisterBuiltinScalars installs the backend-level SQL scalar functions
// spec §6 names explicitly, starting with REVERSE(text). It shares its
// implementation with the in-engine reverse() Cypher function so the two
// never drift (pkg/eval.ReverseBytes).
func RegisterBuiltinScalars(be *Backend) {
	be.RegisterScalarFunction("REVERSE", func(args []graphvalue.Value) (graphvalue.Value, error) {
		if len(args) != 1 {
			return graphvalue.Value{}, &eval.Error{Kind: "InternalError", Message: "REVERSE expects exactly one argument"}
		}
		v := args[0]
		if v.IsNull() {
			return graphvalue.Null, nil
		}
		if v.Kind != graphvalue.KindString {
			return graphvalue.Value{}, &eval.Error{Kind: "TypeMismatch", Message: "REVERSE expects a text argument"}
		}
		return graphvalue.Str(eval.ReverseBytes(v.Str)), nil
	})
}
