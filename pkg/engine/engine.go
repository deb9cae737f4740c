// Package engine is the top-level façade spec §6 describes: open a graph,
// run Cypher text against it, and get back a materialized Result. It owns
// the one Relational Backend handle a process uses and wires the Pattern
// Dispatch Table, the Clause Transformer, the Write Executors, and the
// Result Assembler together around it.
package engine

import (
	"github.com/relcypher/graphengine/pkg/config"
	"github.com/relcypher/graphengine/pkg/dispatch"
	"github.com/relcypher/graphengine/pkg/graphvalue"
	"github.com/relcypher/graphengine/pkg/params"
	"github.com/relcypher/graphengine/pkg/parser"
	"github.com/relcypher/graphengine/pkg/relstore"
	"github.com/relcypher/graphengine/pkg/translate"
)

// OpenFlags mirrors spec §6's open(path, flags) contract. ReadOnly is
// accepted but not yet enforced against mutating calls; see DESIGN.md.
type OpenFlags int

const (
	ReadOnly OpenFlags = 1 << iota
	ReadWrite
	Create
)

// Engine is the spec §6 façade: one Store, one Backend built on it, and the
// pattern dispatch table every Exec call consults for its EXPLAIN metadata.
type Engine struct {
	store        *relstore.Store
	backend      *relstore.Backend
	table        *dispatch.Table
	maxHops      int
	defaultLimit int64
}

// Open opens (or creates, for an empty path, an in-memory store) the graph
// at path and installs the stub AlgorithmRunner. Call SetAlgorithmRunner to
// replace it with a real pagerank/shortestPath/dijkstra implementation. It
// reads pkg/config's process-wide configuration for the executor limits and
// the REVERSE(text) toggle.
func Open(path string, flags OpenFlags) (*Engine, error) {
	store, err := relstore.Open(path)
	if err != nil {
		return nil, err
	}
	cfg := config.Get()
	be := relstore.NewBackend(store)
	if cfg.EnableReverseFunction {
		relstore.RegisterBuiltinScalars(be)
	}
	be.SetMaxVarlenHops(cfg.MaxVarlenHops)
	be.SetAlgorithmRunner(algorithmHook{runner: translate.StubAlgorithmRunner{}})
	return &Engine{
		store:        store,
		backend:      be,
		table:        dispatch.NewDefaultTable(),
		maxHops:      cfg.MaxVarlenHops,
		defaultLimit: cfg.DefaultLimit,
	}, nil
}

// SetAlgorithmRunner replaces the stub runner with a host application's own
// implementation of the graph algorithms this engine excludes from its own
// evaluator (spec §1 Non-goals).
func (e *Engine) SetAlgorithmRunner(r translate.AlgorithmRunner) {
	e.backend.SetAlgorithmRunner(algorithmHook{runner: r})
}

// Close releases the underlying store.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Begin is spec §6's transaction pass-through onto the Relational Backend;
// Commit and Rollback are methods of the returned relstore.Transaction.
func (e *Engine) Begin() (*relstore.Transaction, error) {
	return e.backend.Begin()
}

// Exec parses and runs query with no bound parameters.
func (e *Engine) Exec(query string) *Result {
	return e.ExecWithParams(query, "")
}

// ExecWithParams parses and runs query, binding paramsJSON (a JSON object,
// or "" for none) against every `$name` the query references. Every
// failure (parse error, unbound variable, type mismatch, backend error)
// comes back as Result{Success:false}, never a Go error, so write counters
// reliably reset to zero per spec §4.11 regardless of which layer failed.
func (e *Engine) ExecWithParams(query string, paramsJSON string) *Result {
	root, err := parser.Parse(query)
	if err != nil {
		return errorResult(classify(err))
	}
	payload := map[string]graphvalue.Value{}
	if paramsJSON != "" {
		payload, err = params.ParseObject(paramsJSON)
		if err != nil {
			return errorResult(classify(err))
		}
	}
	binder := params.NewBinder(payload)
	result, err := e.run(root, binder)
	if err != nil {
		logger.Printf("query failed: %v", err)
		return errorResult(classify(err))
	}
	return result
}

// NodeCreate implements spec §6's node_create(labels[]): a direct,
// non-Cypher entry point onto the Schema Facade for programmatic callers
// that never go through the parser.
func (e *Engine) NodeCreate(labels []string) (int64, error) {
	return e.store.CreateNode(labels, nil)
}

// NodeSetProperty implements node_set_property(id, key, value). v already
// carries its own graphvalue.Kind, so the `type` parameter spec §6 names
// separately is just v.Kind in this Go binding.
func (e *Engine) NodeSetProperty(nodeID int64, key string, v graphvalue.Value) error {
	return e.store.SetNodeProperty(nodeID, key, v)
}

// EdgeCreate implements spec §6's edge_create(src, dst, type).
func (e *Engine) EdgeCreate(src, dst int64, edgeType string) (int64, error) {
	return e.store.CreateEdge(src, dst, edgeType, nil)
}

// ImportNeo4jJSON bulk-loads a Neo4j JSON export directory (`nodes.json`/
// `relationships.json`) directly through the Schema Facade, the supplemented
// `cyql import --neo4j-json` feature.
func (e *Engine) ImportNeo4jJSON(dir string) (relstore.ImportStats, error) {
	return e.store.ImportNeo4jJSON(dir)
}
