package writeexec

import (
	"github.com/relcypher/graphengine/pkg/ast"
	"github.com/relcypher/graphengine/pkg/graphvalue"
)

const defaultRelType = "RELATED"

// ExecuteCreate walks each path pattern: a node whose variable is already
// bound (by a preceding MATCH or an earlier pattern in this same CREATE) is
// reused as a join endpoint, never recreated; every other node pattern
// creates a fresh node with its labels and properties. Relationship
// patterns between consecutive nodes resolve direction, default to type
// RELATED when untyped, and create one edge each.
func (ex *Executor) ExecuteCreate(row Row, patterns []*ast.Path) error {
	for _, path := range patterns {
		if err := ex.createPath(row, path); err != nil {
			return err
		}
	}
	return nil
}

func (ex *Executor) createPath(row Row, path *ast.Path) error {
	ids := make([]int64, len(path.Nodes))
	ev := ex.evaluator(row)

	for i, np := range path.Nodes {
		if np.Var != "" {
			if bound, ok := row[np.Var]; ok && bound.Kind == graphvalue.KindVertex {
				ids[i] = bound.Vertex.ID
				continue
			}
		}
		props, err := evalProps(ev, np.Properties)
		if err != nil {
			return err
		}
		id, err := ex.Facade.CreateNode(np.Labels, props)
		if err != nil {
			return err
		}
		ex.Stats.NodesCreated++
		ex.Stats.PropertiesSet += len(props)
		ids[i] = id
		if np.Var != "" {
			row[np.Var] = graphvalue.VertexVal(graphvalue.Vertex{ID: id, Labels: np.Labels, Properties: props})
		}
	}

	for i, rp := range path.Rels {
		from, to := ids[i], ids[i+1]
		if rp.Direction == ast.DirLeft {
			from, to = to, from
		}
		relType := defaultRelType
		if len(rp.Types) > 0 {
			relType = rp.Types[0]
		}
		props, err := evalProps(ev, rp.Properties)
		if err != nil {
			return err
		}
		id, err := ex.Facade.CreateEdge(from, to, relType, props)
		if err != nil {
			return err
		}
		ex.Stats.RelationshipsCreated++
		ex.Stats.PropertiesSet += len(props)
		if rp.Var != "" {
			row[rp.Var] = graphvalue.EdgeVal(graphvalue.Edge{ID: id, Type: relType, From: from, To: to, Properties: props})
		}
	}

	return nil
}
