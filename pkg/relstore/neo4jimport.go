package relstore

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/relcypher/graphengine/pkg/graphvalue"
)

// neo4jNode mirrors one line of a Neo4j `apoc.export.json.all()` nodes
// export: an opaque string id (Neo4j ids are not guaranteed to fit an
// int64 or to survive a re-import unchanged), a label list, and a flat
// property map.
type neo4jNode struct {
	ID         string                 `json:"id"`
	Labels     []string               `json:"labels"`
	Properties map[string]interface{} `json:"properties"`
}

type neo4jEndpoint struct {
	ID string `json:"id"`
}

// neo4jRelationship mirrors one line of the matching relationships export.
type neo4jRelationship struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	Start      neo4jEndpoint          `json:"start"`
	End        neo4jEndpoint          `json:"end"`
	Properties map[string]interface{} `json:"properties"`
}

// ImportStats counts what ImportNeo4jJSON actually created.
type ImportStats struct {
	NodesCreated         int
	RelationshipsCreated int
}

// ImportNeo4jJSON bulk-loads a Neo4j JSON export directory (`nodes.json`
// and `relationships.json`, one JSON object per line) into this store
// through the same Schema Facade calls a CREATE clause would use. Nodes
// load first since relationships reference them by the export's own
// string ids, which this import remaps to freshly allocated node ids (the
// store's int64 ids have no relation to whatever Neo4j assigned).
func (s *Store) ImportNeo4jJSON(dir string) (ImportStats, error) {
	var stats ImportStats
	idMap := map[string]int64{}

	nodesCreated, err := s.importNeo4jNodes(filepath.Join(dir, "nodes.json"), idMap)
	if err != nil {
		return stats, fmt.Errorf("importing nodes: %w", err)
	}
	stats.NodesCreated = nodesCreated

	relsCreated, err := s.importNeo4jRelationships(filepath.Join(dir, "relationships.json"), idMap)
	if err != nil {
		return stats, fmt.Errorf("importing relationships: %w", err)
	}
	stats.RelationshipsCreated = relsCreated

	return stats, nil
}

func (s *Store) importNeo4jNodes(path string, idMap map[string]int64) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil // the export is allowed to carry no nodes.json at all
		}
		return 0, err
	}
	defer f.Close()

	n := 0
	scanner := neo4jLineScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var nn neo4jNode
		if err := json.Unmarshal(line, &nn); err != nil {
			return n, fmt.Errorf("parsing node: %w", err)
		}
		if nn.ID == "" {
			return n, fmt.Errorf("node line %d has no id", n+1)
		}
		props := propsFromJSON(nn.Properties)
		id, err := s.CreateNode(nn.Labels, props)
		if err != nil {
			return n, err
		}
		idMap[nn.ID] = id
		n++
	}
	return n, scanner.Err()
}

func (s *Store) importNeo4jRelationships(path string, idMap map[string]int64) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	defer f.Close()

	n := 0
	scanner := neo4jLineScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var nr neo4jRelationship
		if err := json.Unmarshal(line, &nr); err != nil {
			return n, fmt.Errorf("parsing relationship: %w", err)
		}
		from, ok := idMap[nr.Start.ID]
		if !ok {
			return n, fmt.Errorf("relationship %s: unknown start node %s", nr.ID, nr.Start.ID)
		}
		to, ok := idMap[nr.End.ID]
		if !ok {
			return n, fmt.Errorf("relationship %s: unknown end node %s", nr.ID, nr.End.ID)
		}
		props := propsFromJSON(nr.Properties)
		if _, err := s.CreateEdge(from, to, nr.Type, props); err != nil {
			return n, err
		}
		n++
	}
	return n, scanner.Err()
}

func neo4jLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)
	return scanner
}

// propsFromJSON converts a decoded JSON object into the graph-typed value
// map the Schema Facade stores. encoding/json hands back bool/float64/
// string/[]interface{}/map[string]interface{}/nil, which valueFromJSON
// narrows into graphvalue's own tagged union.
func propsFromJSON(m map[string]interface{}) map[string]graphvalue.Value {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]graphvalue.Value, len(m))
	for k, v := range m {
		out[k] = valueFromJSON(v)
	}
	return out
}

func valueFromJSON(v interface{}) graphvalue.Value {
	switch x := v.(type) {
	case nil:
		return graphvalue.Null
	case bool:
		return graphvalue.Bool(x)
	case float64:
		if x == float64(int64(x)) {
			return graphvalue.Int(int64(x))
		}
		return graphvalue.Float(x)
	case string:
		return graphvalue.Str(x)
	case []interface{}:
		list := make([]graphvalue.Value, len(x))
		for i, e := range x {
			list[i] = valueFromJSON(e)
		}
		return graphvalue.ListVal(list)
	case map[string]interface{}:
		m := make(map[string]graphvalue.Value, len(x))
		for k, e := range x {
			m[k] = valueFromJSON(e)
		}
		return graphvalue.MapVal(m)
	default:
		return graphvalue.Null
	}
}
