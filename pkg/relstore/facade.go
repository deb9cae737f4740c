package relstore

import (
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/relcypher/graphengine/pkg/graphvalue"
)

// Facade is the Schema Facade contract (spec §9's design note): the sole
// mutator of the persisted schema tables, used by pkg/writeexec.
type Facade interface {
	CreateNode(labels []string, props map[string]graphvalue.Value) (int64, error)
	AddLabel(nodeID int64, label string) error
	RemoveLabel(nodeID int64, label string) error
	SetNodeProperty(nodeID int64, key string, v graphvalue.Value) error
	DeleteNodeProperty(nodeID int64, key string) error
	CreateEdge(from, to int64, edgeType string, props map[string]graphvalue.Value) (int64, error)
	SetEdgeProperty(edgeID int64, key string, v graphvalue.Value) error
	DeleteEdgeProperty(edgeID int64, key string) error
	FindNodeByLabelAndProps(labels []string, props map[string]graphvalue.Value) (int64, bool, error)
	FindEdge(from, to int64, edgeType string, props map[string]graphvalue.Value) (int64, bool, error)
	DeleteNode(nodeID int64) error
	DeleteEdge(edgeID int64) error
	HasIncidentEdges(nodeID int64) (bool, error)
	IncidentEdgeIDs(nodeID int64) ([]int64, error)
	LoadNode(nodeID int64) (graphvalue.Vertex, error)
	LoadEdge(edgeID int64) (graphvalue.Edge, error)
}

var _ Facade = (*Store)(nil)

// CreateNode inserts a new node row, its label rows, and its typed
// property rows in one transaction.
func (s *Store) CreateNode(labels []string, props map[string]graphvalue.Value) (int64, error) {
	var id int64
	err := s.db.Update(func(txn *badger.Txn) error {
		var err error
		id, err = s.allocNodeID(txn)
		if err != nil {
			return err
		}
		if err := txn.Set(nodeKey(id), []byte{1}); err != nil {
			return err
		}
		for _, l := range labels {
			if err := txn.Set(nodeLabelKey(id, l), []byte{1}); err != nil {
				return err
			}
			if err := txn.Set(labelIndexKey(l, id), []byte{1}); err != nil {
				return err
			}
		}
		for k, v := range props {
			if err := s.setNodePropertyTxn(txn, id, k, v); err != nil {
				return err
			}
		}
		return nil
	})
	return id, err
}

// AddLabel attaches label to nodeID; re-adding an already-present label is a
// harmless no-op (SET/MERGE label application is idempotent).
func (s *Store) AddLabel(nodeID int64, label string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(nodeKey(nodeID)); err != nil {
			return translateNotFound(err)
		}
		if err := txn.Set(nodeLabelKey(nodeID, label), []byte{1}); err != nil {
			return err
		}
		return txn.Set(labelIndexKey(label, nodeID), []byte{1})
	})
}

// RemoveLabel detaches label from nodeID; removing an absent label is a
// no-op.
func (s *Store) RemoveLabel(nodeID int64, label string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		txn.Delete(nodeLabelKey(nodeID, label))
		txn.Delete(labelIndexKey(label, nodeID))
		return nil
	})
}

func (s *Store) setNodePropertyTxn(txn *badger.Txn, nodeID int64, key string, v graphvalue.Value) error {
	keyID, err := s.propKeyID(txn, key)
	if err != nil {
		return err
	}
	return writeTypedValue(txn, func(k propKind) []byte { return nodePropKey(k, nodeID, keyID) }, v)
}

// SetNodeProperty sets (or, for Null, clears) one typed property.
func (s *Store) SetNodeProperty(nodeID int64, key string, v graphvalue.Value) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return s.setNodePropertyTxn(txn, nodeID, key, v)
	})
}

// DeleteNodeProperty removes a single typed property row, across whichever
// of the four typed tables currently holds it.
func (s *Store) DeleteNodeProperty(nodeID int64, key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		keyID, err := s.propKeyID(txn, key)
		if err != nil {
			return err
		}
		for _, k := range allPropKinds {
			txn.Delete(nodePropKey(k, nodeID, keyID))
		}
		return nil
	})
}

// CreateEdge inserts a new edge row, its direction indexes, and its typed
// property rows.
func (s *Store) CreateEdge(from, to int64, edgeType string, props map[string]graphvalue.Value) (int64, error) {
	var id int64
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(nodeKey(from)); err != nil {
			return translateNotFound(err)
		}
		if _, err := txn.Get(nodeKey(to)); err != nil {
			return translateNotFound(err)
		}
		var err error
		id, err = s.allocEdgeID(txn)
		if err != nil {
			return err
		}
		rec := encodeEdgeRecord(from, to, edgeType)
		if err := txn.Set(edgeKey(id), rec); err != nil {
			return err
		}
		if err := txn.Set(outEdgeKey(from, id), []byte{1}); err != nil {
			return err
		}
		if err := txn.Set(inEdgeKey(to, id), []byte{1}); err != nil {
			return err
		}
		for k, v := range props {
			if err := s.setEdgePropertyTxn(txn, id, k, v); err != nil {
				return err
			}
		}
		return nil
	})
	return id, err
}

func (s *Store) setEdgePropertyTxn(txn *badger.Txn, edgeID int64, key string, v graphvalue.Value) error {
	keyID, err := s.propKeyID(txn, key)
	if err != nil {
		return err
	}
	return writeTypedValue(txn, func(k propKind) []byte { return edgePropKey(k, edgeID, keyID) }, v)
}

// SetEdgeProperty sets (or clears) one typed property on an edge.
func (s *Store) SetEdgeProperty(edgeID int64, key string, v graphvalue.Value) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return s.setEdgePropertyTxn(txn, edgeID, key, v)
	})
}

// DeleteEdgeProperty removes a single typed property row from an edge.
func (s *Store) DeleteEdgeProperty(edgeID int64, key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		keyID, err := s.propKeyID(txn, key)
		if err != nil {
			return err
		}
		for _, k := range allPropKinds {
			txn.Delete(edgePropKey(k, edgeID, keyID))
		}
		return nil
	})
}

// FindNodeByLabelAndProps implements MERGE's existing-node search: a node
// matches only if it carries every required label and every literal
// property equals the supplied value. With no labels given, every node is
// scanned (rare; MERGE patterns normally carry at least one label).
func (s *Store) FindNodeByLabelAndProps(labels []string, props map[string]graphvalue.Value) (int64, bool, error) {
	var found int64
	var ok bool
	err := s.db.View(func(txn *badger.Txn) error {
		candidates, err := s.nodeIDsForLabel(txn, labels)
		if err != nil {
			return err
		}
		for _, id := range candidates {
			match, err := s.nodeHasAllLabels(txn, id, labels)
			if err != nil {
				return err
			}
			if !match {
				continue
			}
			match, err = s.nodeHasAllProps(txn, id, props)
			if err != nil {
				return err
			}
			if match {
				found, ok = id, true
				return nil
			}
		}
		return nil
	})
	return found, ok, err
}

// nodeIDsForLabel returns candidate node ids via the first label's index
// when at least one label is given, or a full node scan otherwise.
func (s *Store) nodeIDsForLabel(txn *badger.Txn, labels []string) ([]int64, error) {
	if len(labels) == 0 {
		return s.allNodeIDs(txn)
	}
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()
	prefix := labelIndexPrefix(labels[0])
	var ids []int64
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		key := string(it.Item().Key())
		idStr := key[len(prefix):]
		var id int64
		if _, err := parseDecimalSuffix(idStr, &id); err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Store) allNodeIDs(txn *badger.Txn) ([]int64, error) {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()
	prefix := []byte(prefixNode)
	var ids []int64
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		key := string(it.Item().Key())
		var id int64
		if _, err := parseDecimalSuffix(key[len(prefixNode):], &id); err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// scanNodesByLabels returns every fully materialized Vertex carrying all of
// labels (or, with no labels given, every node), for use by the Plan
// executor's NodeScan step.
func (s *Store) scanNodesByLabels(labels []string) ([]graphvalue.Vertex, error) {
	var out []graphvalue.Vertex
	err := s.db.View(func(txn *badger.Txn) error {
		ids, err := s.nodeIDsForLabel(txn, labels)
		if err != nil {
			return err
		}
		for _, id := range ids {
			ok, err := s.nodeHasAllLabels(txn, id, labels)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			v, err := s.loadNodeTxn(txn, id)
			if err != nil {
				continue
			}
			out = append(out, v)
		}
		return nil
	})
	return out, err
}

func (s *Store) loadNodeTxn(txn *badger.Txn, nodeID int64) (graphvalue.Vertex, error) {
	if _, err := txn.Get(nodeKey(nodeID)); err != nil {
		return graphvalue.Vertex{}, translateNotFound(err)
	}
	v := graphvalue.Vertex{ID: nodeID, Properties: map[string]graphvalue.Value{}}
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	prefix := nodeLabelPrefix(nodeID)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		key := string(it.Item().Key())
		v.Labels = append(v.Labels, key[len(prefix):])
	}
	it.Close()
	if err := s.loadAllProps(txn, func(kind propKind) []byte { return nodePropPrefix(kind, nodeID) }, v.Properties); err != nil {
		return graphvalue.Vertex{}, err
	}
	return v, nil
}

// incidentEdges returns every fully materialized Edge touching nodeID in
// the requested Direction (DirOut: outgoing only, DirIn: incoming only,
// DirEither: both), for use by the Plan executor's EdgeJoin step.
func (s *Store) incidentEdges(nodeID int64, dir Direction) ([]graphvalue.Edge, error) {
	var out []graphvalue.Edge
	err := s.db.View(func(txn *badger.Txn) error {
		seen := map[int64]bool{}
		collect := func(prefix []byte) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				key := string(it.Item().Key())
				var edgeID int64
				if _, err := parseDecimalSuffix(key[len(prefix):], &edgeID); err != nil {
					continue
				}
				if seen[edgeID] {
					continue
				}
				seen[edgeID] = true
				rec, err := s.getEdgeRecord(txn, edgeID)
				if err != nil {
					continue
				}
				props := map[string]graphvalue.Value{}
				if err := s.loadAllProps(txn, func(kind propKind) []byte { return edgePropPrefix(kind, edgeID) }, props); err != nil {
					return err
				}
				out = append(out, graphvalue.Edge{ID: edgeID, Type: rec.typ, From: rec.from, To: rec.to, Properties: props})
			}
			return nil
		}
		if dir == DirOut || dir == DirEither {
			if err := collect(outEdgePrefix(nodeID)); err != nil {
				return err
			}
		}
		if dir == DirIn || dir == DirEither {
			if err := collect(inEdgePrefix(nodeID)); err != nil {
				return err
			}
		}
		return nil
	})
	return out, err
}

func (s *Store) nodeHasAllLabels(txn *badger.Txn, nodeID int64, labels []string) (bool, error) {
	for _, l := range labels {
		if _, err := txn.Get(nodeLabelKey(nodeID, l)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return false, nil
			}
			return false, err
		}
	}
	return true, nil
}

func (s *Store) nodeHasAllProps(txn *badger.Txn, nodeID int64, props map[string]graphvalue.Value) (bool, error) {
	for k, want := range props {
		keyID, err := s.propKeyID(txn, k)
		if err != nil {
			return false, err
		}
		got, ok, err := readTypedValue(txn, func(kind propKind) []byte { return nodePropKey(kind, nodeID, keyID) })
		if err != nil {
			return false, err
		}
		if !ok || !propValueEqual(got, want) {
			return false, nil
		}
	}
	return true, nil
}

func propValueEqual(a, b graphvalue.Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case graphvalue.KindString:
		return a.Str == b.Str
	case graphvalue.KindInteger:
		return a.Int == b.Int
	case graphvalue.KindFloat:
		return a.Float == b.Float
	case graphvalue.KindBool:
		return a.Bool == b.Bool
	}
	return a.String() == b.String()
}

// FindEdge implements MERGE's existing-edge search, analogous to
// FindNodeByLabelAndProps but scoped to from/to/type.
func (s *Store) FindEdge(from, to int64, edgeType string, props map[string]graphvalue.Value) (int64, bool, error) {
	var found int64
	var ok bool
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := outEdgePrefix(from)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			var edgeID int64
			if _, err := parseDecimalSuffix(key[len(prefix):], &edgeID); err != nil {
				continue
			}
			rec, err := s.getEdgeRecord(txn, edgeID)
			if err != nil {
				continue
			}
			if rec.to != to || (edgeType != "" && rec.typ != edgeType) {
				continue
			}
			match, err := s.edgeHasAllProps(txn, edgeID, props)
			if err != nil {
				return err
			}
			if match {
				found, ok = edgeID, true
				return nil
			}
		}
		return nil
	})
	return found, ok, err
}

func (s *Store) edgeHasAllProps(txn *badger.Txn, edgeID int64, props map[string]graphvalue.Value) (bool, error) {
	for k, want := range props {
		keyID, err := s.propKeyID(txn, k)
		if err != nil {
			return false, err
		}
		got, ok, err := readTypedValue(txn, func(kind propKind) []byte { return edgePropKey(kind, edgeID, keyID) })
		if err != nil {
			return false, err
		}
		if !ok || !propValueEqual(got, want) {
			return false, nil
		}
	}
	return true, nil
}

// HasIncidentEdges reports whether nodeID has any outgoing or incoming
// edge, the DETACH-semantics check DELETE uses (spec §4.7, §8).
func (s *Store) HasIncidentEdges(nodeID int64) (bool, error) {
	has := false
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for _, prefix := range [][]byte{outEdgePrefix(nodeID), inEdgePrefix(nodeID)} {
			it.Seek(prefix)
			if it.ValidForPrefix(prefix) {
				has = true
				return nil
			}
		}
		return nil
	})
	return has, err
}

// IncidentEdgeIDs lists every edge id touching nodeID (both directions),
// deduplicated: the enumeration DETACH DELETE walks to remove a node's
// edges before the node itself.
func (s *Store) IncidentEdgeIDs(nodeID int64) ([]int64, error) {
	var ids []int64
	err := s.db.View(func(txn *badger.Txn) error {
		seen := map[int64]bool{}
		collect := func(prefix []byte) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				key := string(it.Item().Key())
				var edgeID int64
				if _, err := parseDecimalSuffix(key[len(prefix):], &edgeID); err != nil {
					continue
				}
				if seen[edgeID] {
					continue
				}
				seen[edgeID] = true
				ids = append(ids, edgeID)
			}
			return nil
		}
		if err := collect(outEdgePrefix(nodeID)); err != nil {
			return err
		}
		return collect(inEdgePrefix(nodeID))
	})
	return ids, err
}

// DeleteNode removes a node row, its label rows, and all its typed
// property rows. Callers (pkg/writeexec) are responsible for the
// ConstraintViolation / DETACH check before calling this.
func (s *Store) DeleteNode(nodeID int64) error {
	return s.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		prefix := nodeLabelPrefix(nodeID)
		var labels []string
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			labels = append(labels, key[len(prefix):])
		}
		it.Close()
		for _, l := range labels {
			txn.Delete(nodeLabelKey(nodeID, l))
			txn.Delete(labelIndexKey(l, nodeID))
		}
		for _, k := range allPropKinds {
			deletePrefix(txn, nodePropPrefix(k, nodeID))
		}
		return txn.Delete(nodeKey(nodeID))
	})
}

// DeleteEdge removes an edge row, its direction indexes, and all its typed
// property rows.
func (s *Store) DeleteEdge(edgeID int64) error {
	return s.db.Update(func(txn *badger.Txn) error {
		rec, err := s.getEdgeRecord(txn, edgeID)
		if err != nil {
			return err
		}
		txn.Delete(outEdgeKey(rec.from, edgeID))
		txn.Delete(inEdgeKey(rec.to, edgeID))
		for _, k := range allPropKinds {
			deletePrefix(txn, edgePropPrefix(k, edgeID))
		}
		return txn.Delete(edgeKey(edgeID))
	})
}

func deletePrefix(txn *badger.Txn, prefix []byte) {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()
	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, append([]byte{}, it.Item().Key()...))
	}
	for _, k := range keys {
		txn.Delete(k)
	}
}

// LoadNode rehydrates a full Vertex: labels and every typed property.
func (s *Store) LoadNode(nodeID int64) (graphvalue.Vertex, error) {
	var v graphvalue.Vertex
	err := s.db.View(func(txn *badger.Txn) error {
		if _, err := txn.Get(nodeKey(nodeID)); err != nil {
			return translateNotFound(err)
		}
		v.ID = nodeID
		v.Properties = map[string]graphvalue.Value{}

		it := txn.NewIterator(badger.DefaultIteratorOptions)
		prefix := nodeLabelPrefix(nodeID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			v.Labels = append(v.Labels, key[len(prefix):])
		}
		it.Close()

		return s.loadAllProps(txn, func(kind propKind) []byte { return nodePropPrefix(kind, nodeID) }, v.Properties)
	})
	return v, err
}

func (s *Store) loadAllProps(txn *badger.Txn, prefixOf func(propKind) []byte, out map[string]graphvalue.Value) error {
	for _, kind := range allPropKinds {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		prefix := prefixOf(kind)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := string(item.Key())
			var keyID int64
			if _, err := parseDecimalSuffix(key[len(prefix):], &keyID); err != nil {
				continue
			}
			name, err := s.propKeyName(txn, keyID)
			if err != nil {
				continue
			}
			var raw []byte
			item.Value(func(b []byte) error {
				raw = append([]byte{}, b...)
				return nil
			})
			out[name] = decodeTypedBytes(kind, raw)
		}
		it.Close()
	}
	return nil
}

func decodeTypedBytes(kind propKind, raw []byte) graphvalue.Value {
	switch kind {
	case propText:
		return graphvalue.Str(string(raw))
	case propInt:
		return graphvalue.Int(decodeInt64(raw))
	case propReal:
		return graphvalue.Float(decodeFloat64(raw))
	case propBool:
		return graphvalue.Bool(len(raw) > 0 && raw[0] == 1)
	}
	return graphvalue.Null
}

// LoadEdge rehydrates a full Edge: endpoints, type, and every typed
// property.
func (s *Store) LoadEdge(edgeID int64) (graphvalue.Edge, error) {
	var e graphvalue.Edge
	err := s.db.View(func(txn *badger.Txn) error {
		rec, err := s.getEdgeRecord(txn, edgeID)
		if err != nil {
			return err
		}
		e.ID = edgeID
		e.From = rec.from
		e.To = rec.to
		e.Type = rec.typ
		e.Properties = map[string]graphvalue.Value{}
		return s.loadAllProps(txn, func(kind propKind) []byte { return edgePropPrefix(kind, edgeID) }, e.Properties)
	})
	return e, err
}

func translateNotFound(err error) error {
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	return err
}
