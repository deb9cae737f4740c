package writeexec

import (
	"github.com/relcypher/graphengine/pkg/ast"
	"github.com/relcypher/graphengine/pkg/eval"
	"github.com/relcypher/graphengine/pkg/graphvalue"
)

// ExecuteRemove applies each REMOVE item: `n:Label` detaches a label from a
// bound node, `n.prop` deletes a single typed property. The Facade itself
// determines which typed column held it.
func (ex *Executor) ExecuteRemove(row Row, items []*ast.RemoveItem) error {
	ev := ex.evaluator(row)
	for _, item := range items {
		switch item.Kind {
		case ast.RemoveItemLabel:
			bound, ok := row[item.Variable]
			if !ok || bound.Kind != graphvalue.KindVertex {
				return &eval.Error{Kind: "UnboundVariable", Message: "REMOVE target is not a bound node: " + item.Variable}
			}
			if err := ex.Facade.RemoveLabel(bound.Vertex.ID, item.Label); err != nil {
				return err
			}
		case ast.RemoveItemProperty:
			target, err := ev.Eval(item.Property.Target)
			if err != nil {
				return err
			}
			switch target.Kind {
			case graphvalue.KindVertex:
				if err := ex.Facade.DeleteNodeProperty(target.Vertex.ID, item.Property.Name); err != nil {
					return err
				}
			case graphvalue.KindEdge:
				if err := ex.Facade.DeleteEdgeProperty(target.Edge.ID, item.Property.Name); err != nil {
					return err
				}
			default:
				return &eval.Error{Kind: "TypeMismatch", Message: "REMOVE target is neither a node nor a relationship"}
			}
		}
	}
	return nil
}
