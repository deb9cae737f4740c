package dispatch

// DefaultEntries is the dispatch table's priority-ordered content, mirroring
// spec §4.5's abridged required/forbidden/priority list and extended for
// LOAD CSV ingestion. No handler is attached to an entry: pkg/engine reads
// only the matched entry's Name. The table carries the routing metadata
// (Name, Required, Forbidden, Priority) so it can be unit-tested (totality, uniqueness) independent of
// any execution concern.
var DefaultEntries = []Entry{
	// with_match_return outranks match_create_return so a chained
	// "...WITH... MATCH... CREATE... RETURN" query (present carries WITH,
	// MATCH, CREATE and RETURN together) resolves to the WITH-aware
	// translation rather than tying with the plainer MATCH+CREATE+RETURN
	// entry.
	{Name: "unwind_create", Required: UNWIND | CREATE, Forbidden: RETURN | MATCH, Priority: 100},
	{Name: "with_match_return", Required: WITH | MATCH | RETURN, Priority: 101},
	{Name: "match_create_return", Required: MATCH | CREATE | RETURN, Priority: 100},

	{Name: "match_set", Required: MATCH | SET, Forbidden: DELETE | REMOVE | MERGE | CREATE, Priority: 90},
	{Name: "match_delete", Required: MATCH | DELETE, Forbidden: SET | REMOVE | MERGE | CREATE, Priority: 90},
	{Name: "match_remove", Required: MATCH | REMOVE, Forbidden: SET | DELETE | MERGE | CREATE, Priority: 90},
	{Name: "match_merge", Required: MATCH | MERGE, Forbidden: SET | DELETE | REMOVE | CREATE, Priority: 90},
	{Name: "match_create", Required: MATCH | CREATE, Forbidden: RETURN | SET | DELETE | REMOVE | MERGE, Priority: 90},

	// optional_match_return outranks multi_match_return so a query with
	// both several matches and at least one optional one (present has both
	// OPTIONAL and MULTI_MATCH set) resolves deterministically instead of
	// tying: the optional-match translation subsumes the multi-match one.
	{Name: "optional_match_return", Required: MATCH | OPTIONAL | RETURN, Forbidden: CREATE | SET | DELETE | MERGE, Priority: 81},
	{Name: "multi_match_return", Required: MATCH | MULTI_MATCH | RETURN, Forbidden: CREATE | SET | DELETE | MERGE, Priority: 80},

	{Name: "match_return", Required: MATCH | RETURN, Forbidden: OPTIONAL | MULTI_MATCH | CREATE | SET | DELETE | MERGE, Priority: 70},

	{Name: "unwind_return", Required: UNWIND | RETURN, Forbidden: CREATE, Priority: 60},

	// The standalone tier is mutually exclusive by construction: each entry
	// forbids every sibling operation bit so a query combining two
	// standalone operations (no MATCH) falls through to GENERIC rather than
	// tying between two equally-specific entries.
	{Name: "create_standalone", Required: CREATE, Forbidden: MATCH | UNWIND | MERGE | SET | FOREACH | LOAD_CSV | DELETE | REMOVE, Priority: 50},
	{Name: "merge_standalone", Required: MERGE, Forbidden: MATCH | CREATE | SET | FOREACH | LOAD_CSV | DELETE | REMOVE, Priority: 50},
	{Name: "set_standalone", Required: SET, Forbidden: MATCH | CREATE | MERGE | FOREACH | LOAD_CSV | DELETE | REMOVE, Priority: 50},
	{Name: "foreach_standalone", Required: FOREACH, Forbidden: MATCH | CREATE | MERGE | SET | LOAD_CSV | DELETE | REMOVE, Priority: 50},
	{Name: "load_csv_standalone", Required: LOAD_CSV, Forbidden: MATCH | CREATE | MERGE | SET | FOREACH | DELETE | REMOVE, Priority: 50},

	{Name: "match_no_return", Required: MATCH, Forbidden: RETURN | CREATE | SET | DELETE | MERGE | REMOVE, Priority: 40},

	{Name: "return_standalone", Required: RETURN, Forbidden: MATCH | UNWIND | WITH, Priority: 10},

	{Name: "GENERIC", Priority: 0},
}

// NewDefaultTable builds the standard dispatch table.
func NewDefaultTable() *Table {
	return NewTable(DefaultEntries)
}
