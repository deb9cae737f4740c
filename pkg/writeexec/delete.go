package writeexec

import (
	"github.com/relcypher/graphengine/pkg/eval"
	"github.com/relcypher/graphengine/pkg/graphvalue"
)

// ExecuteDelete deletes every named variable in a DELETE/DETACH DELETE
// clause. A node that still has incident edges fails with
// ConstraintViolation unless detach is true, in which case its incident
// edges are removed first. Deleting an entity cascades to its typed
// property rows (and, for nodes, its label rows) inside the Facade.
func (ex *Executor) ExecuteDelete(row Row, variables []string, detach bool) error {
	for _, name := range variables {
		bound, ok := row[name]
		if !ok {
			return &eval.Error{Kind: "UnboundVariable", Message: "DELETE target is not bound: " + name}
		}
		switch bound.Kind {
		case graphvalue.KindVertex:
			if err := ex.deleteNode(bound.Vertex.ID, detach); err != nil {
				return err
			}
		case graphvalue.KindEdge:
			if err := ex.Facade.DeleteEdge(bound.Edge.ID); err != nil {
				return err
			}
			ex.Stats.RelationshipsDeleted++
		default:
			return &eval.Error{Kind: "TypeMismatch", Message: "DELETE target is neither a node nor a relationship: " + name}
		}
	}
	return nil
}

func (ex *Executor) deleteNode(nodeID int64, detach bool) error {
	hasEdges, err := ex.Facade.HasIncidentEdges(nodeID)
	if err != nil {
		return err
	}
	if hasEdges {
		if !detach {
			return &eval.Error{Kind: "ConstraintViolation", Message: "node still has incident relationships; use DETACH DELETE"}
		}
		deleted, err := ex.deleteIncidentEdges(nodeID)
		if err != nil {
			return err
		}
		ex.Stats.RelationshipsDeleted += deleted
	}
	if err := ex.Facade.DeleteNode(nodeID); err != nil {
		return err
	}
	ex.Stats.NodesDeleted++
	return nil
}

// deleteIncidentEdges is the DETACH step: list every edge touching nodeID,
// then delete each one before the node itself is removed.
func (ex *Executor) deleteIncidentEdges(nodeID int64) (int, error) {
	ids, err := ex.Facade.IncidentEdgeIDs(nodeID)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		if err := ex.Facade.DeleteEdge(id); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}
