package writeexec

import (
	"github.com/relcypher/graphengine/pkg/ast"
	"github.com/relcypher/graphengine/pkg/eval"
	"github.com/relcypher/graphengine/pkg/graphvalue"
)

// ExecuteSet applies each SET item: `n:Label` adds a label to a bound node,
// `n.prop = expr` resolves expr (literal, parameter, or FOREACH-bound
// identifier) through the evaluator and writes it as a typed property.
func (ex *Executor) ExecuteSet(row Row, items []*ast.SetItem) error {
	return ex.applySetItems(row, items)
}

func (ex *Executor) applySetItems(row Row, items []*ast.SetItem) error {
	ev := ex.evaluator(row)
	for _, item := range items {
		switch item.Kind {
		case ast.SetItemLabel:
			bound, ok := row[item.Variable]
			if !ok || bound.Kind != graphvalue.KindVertex {
				return &eval.Error{Kind: "UnboundVariable", Message: "SET target is not a bound node: " + item.Variable}
			}
			if err := ex.Facade.AddLabel(bound.Vertex.ID, item.Label); err != nil {
				return err
			}
			bound.Vertex.Labels = appendLabel(bound.Vertex.Labels, item.Label)
			// §9's open question: SET label reuses properties_set rather
			// than a separate label-change counter; mirrored here.
			ex.Stats.PropertiesSet++
		case ast.SetItemProperty:
			target, err := ev.Eval(item.Property.Target)
			if err != nil {
				return err
			}
			val, err := ev.Eval(item.Value)
			if err != nil {
				return err
			}
			if err := ex.setEntityProperty(target, item.Property.Name, val); err != nil {
				return err
			}
			ex.Stats.PropertiesSet++
		}
	}
	return nil
}

func (ex *Executor) setEntityProperty(target graphvalue.Value, name string, val graphvalue.Value) error {
	switch target.Kind {
	case graphvalue.KindVertex:
		if val.IsNull() {
			return ex.Facade.DeleteNodeProperty(target.Vertex.ID, name)
		}
		return ex.Facade.SetNodeProperty(target.Vertex.ID, name, val)
	case graphvalue.KindEdge:
		if val.IsNull() {
			return ex.Facade.DeleteEdgeProperty(target.Edge.ID, name)
		}
		return ex.Facade.SetEdgeProperty(target.Edge.ID, name, val)
	}
	return &eval.Error{Kind: "TypeMismatch", Message: "SET target is neither a node nor a relationship"}
}

func appendLabel(labels []string, l string) []string {
	for _, existing := range labels {
		if existing == l {
			return labels
		}
	}
	return append(labels, l)
}
