package relstore

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/relcypher/graphengine/pkg/eval"
	"github.com/relcypher/graphengine/pkg/foreach"
	"github.com/relcypher/graphengine/pkg/graphvalue"
	"github.com/relcypher/graphengine/pkg/params"
)

// ScalarFunc is a backend-registered scalar SQL function, called with
// already-evaluated argument values and returning a single value, the
// shape scalar.go's REVERSE(text) registration uses.
type ScalarFunc func(args []graphvalue.Value) (graphvalue.Value, error)

// Backend is relstore's implementation of the spec §6 Relational Backend
// contract: Prepare a compiled query into a Statement, step through its
// rows, and manage transactions. Because translate hands relstore a
// structural Plan rather than SQL text (SPEC_FULL.md's "plan is the
// execution contract" decision), Prepare never re-parses CompiledQuery.SQL;
// that text exists purely for EXPLAIN.
type Backend struct {
	store      *Store
	scalars    map[string]ScalarFunc
	algorithms eval.FunctionHook
	maxHops    int
}

// NewBackend wraps store; RegisterScalarFunction before Prepare-ing any
// query that references the function by name.
func NewBackend(store *Store) *Backend {
	return &Backend{store: store, scalars: map[string]ScalarFunc{}}
}

// SetMaxVarlenHops caps every Executor this Backend builds at n hops for an
// unbounded variable-length relationship (n <= 0 keeps the Executor default).
func (be *Backend) SetMaxVarlenHops(n int) {
	be.maxHops = n
}

// SetAlgorithmRunner installs the hook every Statement this Backend
// prepares routes unresolved RETURN/WITH function calls through.
// pkg/engine wires a pkg/translate.AlgorithmRunner adapter here at startup.
func (be *Backend) SetAlgorithmRunner(h eval.FunctionHook) {
	be.algorithms = h
}

// Algorithms returns the currently installed hook (nil if none), so a
// caller building its own Executor against this Backend's Store, as
// pkg/engine does for the write path's MATCH-only selector, can wire the
// same routing into it.
func (be *Backend) Algorithms() eval.FunctionHook {
	return be.algorithms
}

// RegisterScalarFunction installs a named SQL scalar function, mirroring
// the Relational Backend contract's extensibility hook (spec §6).
func (be *Backend) RegisterScalarFunction(name string, fn ScalarFunc) {
	be.scalars[name] = fn
}

// ScalarFunction looks up a previously registered function.
func (be *Backend) ScalarFunction(name string) (ScalarFunc, bool) {
	f, ok := be.scalars[name]
	return f, ok
}

// Transaction is a write-scope grouping multiple Facade calls. relstore's
// Facade methods each commit their own badger transaction individually
// (see DESIGN.md); Transaction does not add cross-call atomicity, but gives
// callers (pkg/engine's Begin) a stable Begin/Commit/Rollback surface
// against the spec §6 contract.
type Transaction struct {
	be     *Backend
	token  string
	closed bool
}

// Begin starts a write scope, stamping it with a random token so a caller
// correlating several Facade calls against one logical write (e.g. an
// engine.Begin/Commit session) has a stable id to log alongside them.
func (be *Backend) Begin() (*Transaction, error) {
	return &Transaction{be: be, token: uuid.NewString()}, nil
}

// Token returns this transaction's correlation id.
func (t *Transaction) Token() string {
	return t.token
}

// Commit ends the write scope successfully.
func (t *Transaction) Commit() error {
	if t.closed {
		return fmt.Errorf("relstore: transaction already closed")
	}
	t.closed = true
	return nil
}

// Rollback ends the write scope; any facade calls already made within it
// have already taken effect (see Transaction's doc comment).
func (t *Transaction) Rollback() error {
	if t.closed {
		return fmt.Errorf("relstore: transaction already closed")
	}
	t.closed = true
	return nil
}

// Statement is a prepared CompiledQuery: bind its parameters, then Step
// through result rows one at a time, matching the spec §6
// Prepare/BindParam/Step/Column* contract.
type Statement struct {
	be      *Backend
	query   *CompiledQuery
	values  map[string]graphvalue.Value
	fe      *foreach.Context
	names   []string
	rows    []map[string]graphvalue.Value
	pos     int
	started bool
}

// Prepare compiles no new SQL; CompiledQuery already carries translate's
// output, and returns a Statement ready for parameter binding.
func (be *Backend) Prepare(q *CompiledQuery, fe *foreach.Context) *Statement {
	return &Statement{be: be, query: q, values: map[string]graphvalue.Value{}, fe: fe}
}

// BindParam implements params.Stmt so params.Binder.BindAll can target a
// Statement directly.
func (st *Statement) BindParam(name string, v graphvalue.Value) error {
	st.values[name] = v
	return nil
}

// Step advances to the next result row, running the Plan on first call.
// It returns false once rows are exhausted.
func (st *Statement) Step() (bool, error) {
	if !st.started {
		st.started = true
		binder := params.NewBinder(st.values)
		ex := NewExecutor(st.be.store, binder, st.fe)
		ex.SetAlgorithms(st.be.algorithms)
		ex.SetMaxHops(st.be.maxHops)
		names, rows, err := ex.Run(st.query.Plan)
		if err != nil {
			return false, err
		}
		st.names, st.rows = names, rows
	}
	if st.pos >= len(st.rows) {
		return false, nil
	}
	st.pos++
	return true, nil
}

// ColumnCount reports the number of projected columns.
func (st *Statement) ColumnCount() int { return len(st.names) }

// ColumnName reports the i'th projected column's name.
func (st *Statement) ColumnName(i int) string { return st.names[i] }

// ColumnType reports the i'th column's graphvalue.Kind for the current row.
func (st *Statement) ColumnType(i int) graphvalue.Kind {
	return st.currentRow()[st.names[i]].Kind
}

// ColumnValue returns the i'th column's value for the current row.
func (st *Statement) ColumnValue(i int) graphvalue.Value {
	return st.currentRow()[st.names[i]]
}

func (st *Statement) currentRow() map[string]graphvalue.Value {
	return st.rows[st.pos-1]
}

// Reset rewinds the Statement so Step can be called again from the start,
// re-running the Plan (bound parameter values carry over, as spec §6
// requires for a reused prepared statement).
func (st *Statement) Reset() {
	st.started = false
	st.pos = 0
	st.names = nil
	st.rows = nil
}

// Close releases the Statement. relstore holds no external resources per
// Statement, so Close is a no-op kept for interface symmetry.
func (st *Statement) Close() error { return nil }
