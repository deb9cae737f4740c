package params

import "github.com/relcypher/graphengine/pkg/graphvalue"

// Stmt is the minimal prepared-statement surface the Binder needs: bind a
// named placeholder to a value. pkg/relstore's Statement implements this.
type Stmt interface {
	BindParam(name string, v graphvalue.Value) error
}

// Binder resolves `$name` parameter references against a fixed payload and
// writes them into a prepared statement's named placeholders. A query that
// never references a supplied parameter silently skips it (Cypher treats
// unused parameters as harmless, not an error) while a query that
// references a name absent from the payload binds SQL NULL.
type Binder struct {
	values map[string]graphvalue.Value
}

// NewBinder wraps a parsed parameter payload.
func NewBinder(values map[string]graphvalue.Value) *Binder {
	if values == nil {
		values = map[string]graphvalue.Value{}
	}
	return &Binder{values: values}
}

// Lookup resolves a `$name` reference, returning Null (not an error) when
// the payload never supplied that name.
func (b *Binder) Lookup(name string) graphvalue.Value {
	if v, ok := b.values[name]; ok {
		return v
	}
	return graphvalue.Null
}

// BindAll binds every name referenced by a compiled statement. referenced
// is the set of `$name`s the translator actually emitted as `:name`
// placeholders; names outside that set are never bound, since SQLite-style
// prepared statements reject an unrecognized placeholder name.
func (b *Binder) BindAll(stmt Stmt, referenced []string) error {
	for _, name := range referenced {
		if err := stmt.BindParam(name, b.Lookup(name)); err != nil {
			return err
		}
	}
	return nil
}
