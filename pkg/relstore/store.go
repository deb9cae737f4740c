package relstore

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"

	"github.com/relcypher/graphengine/pkg/graphvalue"
)

// Sentinel errors, named the way the teacher's badger-backed engine names
// its own store-level failures.
var (
	ErrNotFound      = errors.New("relstore: not found")
	ErrAlreadyExists = errors.New("relstore: already exists")
	ErrInvalidData   = errors.New("relstore: invalid data")
)

// Store owns one badger database and the monotonic id counters for nodes,
// edges, and the property-key dictionary. property_keys rows are shared
// state (spec §5) and must be insert-or-lookup idempotent; propKeyMu
// serializes that specific path so concurrent first-uses of a new property
// name never race into two different ids.
type Store struct {
	db        *badger.DB
	propKeyMu sync.Mutex

	nextNodeID    atomic.Int64
	nextEdgeID    atomic.Int64
	nextPropKeyID atomic.Int64
}

// Open opens (or creates) a badger database at path. An empty path opens an
// in-memory database, used by tests and by Engine.Open's in-memory mode.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("relstore: open: %w", err)
	}
	s := &Store{db: db}
	if err := s.loadCounters(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) loadCounters() error {
	return s.db.View(func(txn *badger.Txn) error {
		s.nextNodeID.Store(readCounter(txn, keyNextNodeID))
		s.nextEdgeID.Store(readCounter(txn, keyNextEdgeID))
		s.nextPropKeyID.Store(readCounter(txn, keyNextPropKeyID))
		return nil
	})
}

func readCounter(txn *badger.Txn, key string) int64 {
	item, err := txn.Get([]byte(key))
	if err != nil {
		return 0
	}
	var v int64
	item.Value(func(b []byte) error {
		v = decodeInt64(b)
		return nil
	})
	return v
}

// Close releases the underlying badger database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) allocNodeID(txn *badger.Txn) (int64, error) {
	id := s.nextNodeID.Add(1)
	if err := txn.Set([]byte(keyNextNodeID), encodeInt64(id)); err != nil {
		return 0, err
	}
	return id - 1, nil
}

func (s *Store) allocEdgeID(txn *badger.Txn) (int64, error) {
	id := s.nextEdgeID.Add(1)
	if err := txn.Set([]byte(keyNextEdgeID), encodeInt64(id)); err != nil {
		return 0, err
	}
	return id - 1, nil
}

// propKeyID looks up (or, idempotently, creates) the dictionary id for a
// property name, the "insert-or-lookup idempotence" spec §5 requires of the
// Schema Facade for the shared property_keys table.
func (s *Store) propKeyID(txn *badger.Txn, name string) (int64, error) {
	item, err := txn.Get(propKeyNameKey(name))
	if err == nil {
		var id int64
		item.Value(func(b []byte) error { id = decodeInt64(b); return nil })
		return id, nil
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		return 0, err
	}

	s.propKeyMu.Lock()
	defer s.propKeyMu.Unlock()

	// Re-check under the lock: another writer may have created it between
	// our lock-free Get above and acquiring propKeyMu.
	if item, err2 := txn.Get(propKeyNameKey(name)); err2 == nil {
		var id int64
		item.Value(func(b []byte) error { id = decodeInt64(b); return nil })
		return id, nil
	}

	id := s.nextPropKeyID.Add(1) - 1
	if err := txn.Set([]byte(keyNextPropKeyID), encodeInt64(id+1)); err != nil {
		return 0, err
	}
	if err := txn.Set(propKeyNameKey(name), encodeInt64(id)); err != nil {
		return 0, err
	}
	if err := txn.Set(propKeyIDKey(id), []byte(name)); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) getEdgeRecord(txn *badger.Txn, edgeID int64) (edgeRecord, error) {
	item, err := txn.Get(edgeKey(edgeID))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return edgeRecord{}, ErrNotFound
		}
		return edgeRecord{}, err
	}
	var raw []byte
	if err := item.Value(func(b []byte) error {
		raw = append([]byte{}, b...)
		return nil
	}); err != nil {
		return edgeRecord{}, err
	}
	return decodeEdgeRecord(raw), nil
}

func (s *Store) propKeyName(txn *badger.Txn, id int64) (string, error) {
	item, err := txn.Get(propKeyIDKey(id))
	if err != nil {
		return "", err
	}
	var name string
	item.Value(func(b []byte) error { name = string(b); return nil })
	return name, nil
}

func writeTypedValue(txn *badger.Txn, keyOf func(propKind) []byte, v graphvalue.Value) error {
	for _, k := range allPropKinds {
		txn.Delete(keyOf(k))
	}
	switch v.Kind {
	case graphvalue.KindNull:
		return nil
	case graphvalue.KindString:
		return txn.Set(keyOf(propText), []byte(v.Str))
	case graphvalue.KindInteger:
		return txn.Set(keyOf(propInt), encodeInt64(v.Int))
	case graphvalue.KindFloat:
		return txn.Set(keyOf(propReal), encodeFloat64(v.Float))
	case graphvalue.KindBool:
		b := byte(0)
		if v.Bool {
			b = 1
		}
		return txn.Set(keyOf(propBool), []byte{b})
	default:
		// Lists/maps/graph-typed values are serialized as their textual
		// Cypher form into the text table; the assembler never round-trips
		// these back through a property read, only through MATCH results.
		return txn.Set(keyOf(propText), []byte(v.String()))
	}
}

func readTypedValue(txn *badger.Txn, keyOf func(propKind) []byte) (graphvalue.Value, bool, error) {
	for _, k := range allPropKinds {
		item, err := txn.Get(keyOf(k))
		if err != nil {
			continue
		}
		var raw []byte
		if err := item.Value(func(b []byte) error {
			raw = append([]byte{}, b...)
			return nil
		}); err != nil {
			return graphvalue.Value{}, false, err
		}
		switch k {
		case propText:
			return graphvalue.Str(string(raw)), true, nil
		case propInt:
			return graphvalue.Int(decodeInt64(raw)), true, nil
		case propReal:
			return graphvalue.Float(decodeFloat64(raw)), true, nil
		case propBool:
			return graphvalue.Bool(raw[0] == 1), true, nil
		}
	}
	return graphvalue.Value{}, false, nil
}
