package relstore

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Key prefixes mirror the persisted schema tables named in spec §6:
// nodes, edges, node_labels, property_keys, node_props_{text,int,real,bool},
// edge_props_*. Each logical row becomes one badger KV entry keyed by
// table name and primary key, as SPEC_FULL.md §[EXPANDED] describes.
const (
	prefixNode        = "nodes/"
	prefixEdge        = "edges/"
	prefixNodeLabel   = "node_labels/"  // node_labels/<nodeID>/<label> -> {}
	prefixLabelIndex  = "label_index/"  // label_index/<label>/<nodeID> -> {}
	prefixPropKey     = "property_keys/name/" // property_keys/name/<name> -> keyID
	prefixPropKeyID   = "property_keys/id/"   // property_keys/id/<keyID> -> name
	prefixNodePropFmt = "node_props_%s/" // node_props_{text,int,real,bool}/<nodeID>/<keyID>
	prefixEdgePropFmt = "edge_props_%s/"
	prefixOutEdge     = "edge_out/" // edge_out/<sourceID>/<edgeID> -> {}
	prefixInEdge      = "edge_in/"  // edge_in/<targetID>/<edgeID> -> {}
	keyNextNodeID     = "counters/next_node_id"
	keyNextEdgeID     = "counters/next_edge_id"
	keyNextPropKeyID  = "counters/next_prop_key_id"
)

func encodeInt64(n int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(n))
	return b
}

func decodeInt64(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b))
}

func encodeFloat64(f float64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, math.Float64bits(f))
	return b
}

func decodeFloat64(b []byte) float64 {
	return math.Float64frombits(binary.BigEndian.Uint64(b))
}

func nodeKey(id int64) []byte { return []byte(fmt.Sprintf("%s%020d", prefixNode, id)) }
func edgeKey(id int64) []byte { return []byte(fmt.Sprintf("%s%020d", prefixEdge, id)) }

func nodeLabelKey(nodeID int64, label string) []byte {
	return []byte(fmt.Sprintf("%s%020d/%s", prefixNodeLabel, nodeID, label))
}

func nodeLabelPrefix(nodeID int64) []byte {
	return []byte(fmt.Sprintf("%s%020d/", prefixNodeLabel, nodeID))
}

func labelIndexKey(label string, nodeID int64) []byte {
	return []byte(fmt.Sprintf("%s%s/%020d", prefixLabelIndex, label, nodeID))
}

func labelIndexPrefix(label string) []byte {
	return []byte(fmt.Sprintf("%s%s/", prefixLabelIndex, label))
}

func propKeyNameKey(name string) []byte { return []byte(prefixPropKey + name) }
func propKeyIDKey(id int64) []byte      { return []byte(fmt.Sprintf("%s%020d", prefixPropKeyID, id)) }

// propKind names the typed property table a value belongs in: text, int,
// real, or bool, matching node_props_{text,int,real,bool} / edge_props_*.
type propKind string

const (
	propText propKind = "text"
	propInt  propKind = "int"
	propReal propKind = "real"
	propBool propKind = "bool"
)

func nodePropKey(kind propKind, nodeID, keyID int64) []byte {
	return []byte(fmt.Sprintf(prefixNodePropFmt+"%020d/%020d", kind, nodeID, keyID))
}

func nodePropPrefix(kind propKind, nodeID int64) []byte {
	return []byte(fmt.Sprintf(prefixNodePropFmt+"%020d/", kind, nodeID))
}

func edgePropKey(kind propKind, edgeID, keyID int64) []byte {
	return []byte(fmt.Sprintf(prefixEdgePropFmt+"%020d/%020d", kind, edgeID, keyID))
}

func edgePropPrefix(kind propKind, edgeID int64) []byte {
	return []byte(fmt.Sprintf(prefixEdgePropFmt+"%020d/", kind, edgeID))
}

var allPropKinds = []propKind{propText, propInt, propReal, propBool}

func outEdgeKey(sourceID, edgeID int64) []byte {
	return []byte(fmt.Sprintf("%s%020d/%020d", prefixOutEdge, sourceID, edgeID))
}

func outEdgePrefix(sourceID int64) []byte {
	return []byte(fmt.Sprintf("%s%020d/", prefixOutEdge, sourceID))
}

func inEdgeKey(targetID, edgeID int64) []byte {
	return []byte(fmt.Sprintf("%s%020d/%020d", prefixInEdge, targetID, edgeID))
}

func inEdgePrefix(targetID int64) []byte {
	return []byte(fmt.Sprintf("%s%020d/", prefixInEdge, targetID))
}

// edgeRecord is the decoded form of one edges/<id> row: its endpoints and
// relationship type.
type edgeRecord struct {
	from int64
	to   int64
	typ  string
}

// encodeEdgeRecord packs an edge row as two fixed-width big-endian ids
// followed by the (variable-length) type name.
func encodeEdgeRecord(from, to int64, typ string) []byte {
	b := make([]byte, 16+len(typ))
	binary.BigEndian.PutUint64(b[0:8], uint64(from))
	binary.BigEndian.PutUint64(b[8:16], uint64(to))
	copy(b[16:], typ)
	return b
}

func decodeEdgeRecord(b []byte) edgeRecord {
	return edgeRecord{
		from: int64(binary.BigEndian.Uint64(b[0:8])),
		to:   int64(binary.BigEndian.Uint64(b[8:16])),
		typ:  string(b[16:]),
	}
}

// parseDecimalSuffix parses the fixed-width 20-digit id at the start of s
// (the portion of a scanned key following a known prefix), ignoring any
// further path segments after it.
func parseDecimalSuffix(s string, out *int64) (int, error) {
	if idx := strings.IndexByte(s, '/'); idx >= 0 {
		s = s[:idx]
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	*out = n
	return len(s), nil
}
