package engine

import (
	"github.com/relcypher/graphengine/pkg/assemble"
	"github.com/relcypher/graphengine/pkg/writeexec"
)

// Result is the outcome of one Exec/ExecWithParams call: either success
// with columns/rows/write counters, or failure with a message, spec §7's
// two Result shapes. Exec/ExecWithParams return *Result directly rather
// than (*Result, error): per spec §6, a failed query is a normal return
// value, not a panic or a Go error a caller must remember to check.
type Result struct {
	Success      bool
	Columns      []string
	Rows         [][]assemble.Cell
	Stats        writeexec.Stats
	ErrorKind    Kind
	ErrorMessage string

	pos int
}

func okResult(columns []string, rows [][]assemble.Cell, stats writeexec.Stats) *Result {
	return &Result{Success: true, Columns: columns, Rows: rows, Stats: stats}
}

func errorResult(e *Error) *Result {
	if e == nil {
		return &Result{Success: true}
	}
	return &Result{Success: false, ErrorKind: e.Kind, ErrorMessage: e.Message}
}

// Step advances the row cursor, spec §6's result_step. Unlike
// relstore.Statement.Step, a Result is already fully materialized (the
// Result Assembler drained the statement before Exec returned), so this
// only walks an index, it never touches the store.
func (r *Result) Step() bool {
	if r.pos >= len(r.Rows) {
		return false
	}
	r.pos++
	return true
}

// ColumnCount is spec §6's result_column_count.
func (r *Result) ColumnCount() int { return len(r.Columns) }

// ColumnName is spec §6's result_column_name.
func (r *Result) ColumnName(i int) string { return r.Columns[i] }

// ColumnValue is spec §6's result_column_value: the current (post-Step)
// row's i'th cell.
func (r *Result) ColumnValue(i int) assemble.Cell {
	return r.Rows[r.pos-1][i]
}
