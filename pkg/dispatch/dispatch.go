// Package dispatch implements the Pattern Dispatch Table (C5): a static,
// data-driven registry mapping a query's clause-presence bitmask to a
// specialized handler, instead of a chain of if/else clause-type checks.
package dispatch

import "github.com/relcypher/graphengine/pkg/ast"

// Flag is one bit of a clause-presence bitmask.
type Flag uint32

const (
	MATCH Flag = 1 << iota
	OPTIONAL
	MULTI_MATCH
	RETURN
	CREATE
	MERGE
	SET
	DELETE
	REMOVE
	WITH
	UNWIND
	FOREACH
	UNION
	CALL
	LOAD_CSV
	EXPLAIN
)

var flagNames = []struct {
	f Flag
	s string
}{
	{MATCH, "MATCH"}, {OPTIONAL, "OPTIONAL"}, {MULTI_MATCH, "MULTI_MATCH"},
	{RETURN, "RETURN"}, {CREATE, "CREATE"}, {MERGE, "MERGE"}, {SET, "SET"},
	{DELETE, "DELETE"}, {REMOVE, "REMOVE"}, {WITH, "WITH"}, {UNWIND, "UNWIND"},
	{FOREACH, "FOREACH"}, {UNION, "UNION"}, {CALL, "CALL"}, {LOAD_CSV, "LOAD_CSV"},
	{EXPLAIN, "EXPLAIN"},
}

// String renders a bitmask as `FLAG1|FLAG2|...`, the form the EXPLAIN
// output's "Clauses:" line uses.
func (fl Flag) String() string {
	if fl == 0 {
		return ""
	}
	s := ""
	for _, fn := range flagNames {
		if fl&fn.f != 0 {
			if s != "" {
				s += "|"
			}
			s += fn.s
		}
	}
	return s
}

// Handler is the function a matched pattern entry invokes. Callers supply
// their own handler type parameter at the call site by passing a
// HandlerFunc; this package only routes, it does not execute.
type HandlerFunc func(q *ast.Query, present Flag) (interface{}, error)

// Entry is one row of the dispatch table.
type Entry struct {
	Name      string
	Required  Flag
	Forbidden Flag
	Priority  int
	Handler   HandlerFunc
}

// matches reports whether present satisfies e's required/forbidden bits.
func (e Entry) matches(present Flag) bool {
	return present&e.Required == e.Required && present&e.Forbidden == 0
}

// Table is an ordered set of dispatch entries searched by FindMatchingPattern.
type Table struct {
	entries []Entry
}

// NewTable builds a Table from entries. A GENERIC catch-all entry
// (Required=Forbidden=0, Priority=0) is appended automatically if the
// caller did not supply one, guaranteeing FindMatchingPattern never
// returns nil.
func NewTable(entries []Entry) *Table {
	t := &Table{entries: append([]Entry(nil), entries...)}
	hasGeneric := false
	for _, e := range t.entries {
		if e.Required == 0 && e.Forbidden == 0 {
			hasGeneric = true
			break
		}
	}
	if !hasGeneric {
		t.entries = append(t.entries, Entry{Name: "GENERIC", Priority: 0})
	}
	return t
}

// FindMatchingPattern returns the highest-priority entry whose
// required/forbidden bits are satisfied by present. Ties at the winning
// priority are broken by table order (first inserted wins); the caller is
// responsible for keeping the table free of same-priority overlapping
// entries. TestPatternUniqueness in this package's tests enforces that for
// the default table.
func (t *Table) FindMatchingPattern(present Flag) *Entry {
	var best *Entry
	for i := range t.entries {
		e := &t.entries[i]
		if !e.matches(present) {
			continue
		}
		if best == nil || e.Priority > best.Priority {
			best = e
		}
	}
	return best
}

// Entries exposes the table's rows, e.g. for totality/uniqueness tests.
func (t *Table) Entries() []Entry {
	return t.entries
}
