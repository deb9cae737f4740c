package ast

// Clause is implemented by every clause variant a Query can hold.
type Clause interface {
	Node
	isClause()
}

// ReturnItem is one projection item shared by RETURN and WITH.
type ReturnItem struct {
	base
	Expr  Expression
	Alias string // "" when the item carries no explicit AS alias
}

// OrderItem is one ORDER BY term.
type OrderItem struct {
	base
	Expr Expression
	Desc bool
}

// MatchClause is a MATCH or OPTIONAL MATCH clause.
type MatchClause struct {
	base
	Patterns    []*Path
	Where       Expression // nil when absent
	Optional    bool
	SourceGraph string // "" when the pattern does not name a source graph
}

func (*MatchClause) isClause() {}

// ReturnClause is a RETURN clause.
type ReturnClause struct {
	base
	Items    []*ReturnItem
	Distinct bool
	OrderBy  []*OrderItem
	Skip     Expression // nil when absent
	Limit    Expression // nil when absent
}

func (*ReturnClause) isClause() {}

// WithClause is a WITH clause: a ReturnClause that also supports a WHERE
// filter over the projected names and re-registers those names as visible.
type WithClause struct {
	base
	Items    []*ReturnItem
	Distinct bool
	OrderBy  []*OrderItem
	Skip     Expression
	Limit    Expression
	Where    Expression
}

func (*WithClause) isClause() {}

// CreateClause is a CREATE clause.
type CreateClause struct {
	base
	Patterns []*Path
}

func (*CreateClause) isClause() {}

// SetItemKind distinguishes SET n:Label from SET n.prop = expr.
type SetItemKind int

const (
	SetItemLabel SetItemKind = iota
	SetItemProperty
)

// SetItem is one item of a SET clause or a MERGE's ON CREATE/ON MATCH list.
type SetItem struct {
	base
	Kind     SetItemKind
	Variable string        // node/edge variable, used by SetItemLabel
	Label    string        // label to add, used by SetItemLabel
	Property *PropertyExpr // assignment target, used by SetItemProperty
	Value    Expression    // used by SetItemProperty
}

// MergeClause is a MERGE clause: match-or-create a single path, then apply
// ON CREATE / ON MATCH items depending on which happened.
type MergeClause struct {
	base
	Pattern  *Path
	OnCreate []*SetItem
	OnMatch  []*SetItem
}

func (*MergeClause) isClause() {}

// SetClause is a standalone SET clause.
type SetClause struct {
	base
	Items []*SetItem
}

func (*SetClause) isClause() {}

// DeleteClause is a DELETE or DETACH DELETE clause.
type DeleteClause struct {
	base
	Variables []string
	Detach    bool
}

func (*DeleteClause) isClause() {}

// RemoveItemKind distinguishes REMOVE n:Label from REMOVE n.prop.
type RemoveItemKind int

const (
	RemoveItemLabel RemoveItemKind = iota
	RemoveItemProperty
)

// RemoveItem is one item of a REMOVE clause.
type RemoveItem struct {
	base
	Kind     RemoveItemKind
	Variable string
	Label    string
	Property *PropertyExpr
}

// RemoveClause is a REMOVE clause.
type RemoveClause struct {
	base
	Items []*RemoveItem
}

func (*RemoveClause) isClause() {}

// UnwindClause expands a list expression into a row stream bound to Alias.
type UnwindClause struct {
	base
	Expr  Expression
	Alias string
}

func (*UnwindClause) isClause() {}

// ForeachClause iterates a list, binding Variable to each element in turn
// and running Body for each iteration.
type ForeachClause struct {
	base
	Variable string
	List     Expression
	Body     []Clause
}

func (*ForeachClause) isClause() {}

// LoadCsvClause streams rows from a CSV file, binding each row to Alias.
type LoadCsvClause struct {
	base
	Path        Expression
	Alias       string
	WithHeaders bool
	Terminator  string
}

func (*LoadCsvClause) isClause() {}
