package writeexec

import (
	"github.com/relcypher/graphengine/pkg/ast"
	"github.com/relcypher/graphengine/pkg/graphvalue"
)

// ExecuteMerge matches-or-creates the single path of a MERGE clause, then
// applies ON CREATE SET or ON MATCH SET depending on which happened for
// the pattern as a whole, per spec §4.7/§4.10's MERGE node state machine
// (Unresolved → Searching → Found|Missing → Applied), applied once the
// full path has been resolved.
func (ex *Executor) ExecuteMerge(row Row, cl *ast.MergeClause) error {
	created, err := ex.mergePath(row, cl.Pattern)
	if err != nil {
		return err
	}
	if created {
		return ex.applySetItems(row, cl.OnCreate)
	}
	return ex.applySetItems(row, cl.OnMatch)
}

// mergePath resolves every node and relationship in path, reporting
// whether anything in the pattern was newly created.
func (ex *Executor) mergePath(row Row, path *ast.Path) (bool, error) {
	ev := ex.evaluator(row)
	ids := make([]int64, len(path.Nodes))
	anyCreated := false

	for i, np := range path.Nodes {
		if np.Var != "" {
			if bound, ok := row[np.Var]; ok && bound.Kind == graphvalue.KindVertex {
				ids[i] = bound.Vertex.ID
				continue
			}
		}
		props, err := evalProps(ev, np.Properties)
		if err != nil {
			return false, err
		}
		id, found, err := ex.Facade.FindNodeByLabelAndProps(np.Labels, props)
		if err != nil {
			return false, err
		}
		if !found {
			id, err = ex.Facade.CreateNode(np.Labels, props)
			if err != nil {
				return false, err
			}
			ex.Stats.NodesCreated++
			ex.Stats.PropertiesSet += len(props)
			anyCreated = true
		}
		ids[i] = id
		if np.Var != "" {
			v, err := ex.Facade.LoadNode(id)
			if err != nil {
				return false, err
			}
			row[np.Var] = graphvalue.VertexVal(v)
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
			return false, err
		}
		id, found, err := ex.Facade.FindEdge(from, to, relType, props)
		if err != nil {
			return false, err
		}
		if !found {
			id, err = ex.Facade.CreateEdge(from, to, relType, props)
			if err != nil {
				return false, err
			}
			ex.Stats.RelationshipsCreated++
			ex.Stats.PropertiesSet += len(props)
			anyCreated = true
		}
		if rp.Var != "" {
			e, err := ex.Facade.LoadEdge(id)
			if err != nil {
				return false, err
			}
			row[rp.Var] = graphvalue.EdgeVal(e)
		}
	}

	return anyCreated, nil
}
