package params_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relcypher/graphengine/pkg/graphvalue"
	"github.com/relcypher/graphengine/pkg/params"
)

func TestParseObjectScalarsAndNesting(t *testing.T) {
	m, err := params.ParseObject(`{"name": "Alice", "age": 30, "active": true, "tags": ["a", "b"], "address": {"city": "NYC"}, "missing": null}`)
	require.NoError(t, err)
	assert.Equal(t, "Alice", m["name"].Str)
	assert.Equal(t, int64(30), m["age"].Int)
	assert.True(t, m["active"].Bool)
	require.Len(t, m["tags"].List, 2)
	assert.Equal(t, "b", m["tags"].List[1].Str)
	assert.Equal(t, "NYC", m["address"].Map["city"].Str)
	assert.True(t, m["missing"].IsNull())
}

func TestParseObjectUnicodeEscape(t *testing.T) {
	m, err := params.ParseObject(`{"s": "caf\u00e9"}`)
	require.NoError(t, err)
	assert.Equal(t, "café", m["s"].Str)
}

func TestParseObjectRejectsMalformedPayload(t *testing.T) {
	_, err := params.ParseObject(`{"a": }`)
	require.Error(t, err)
	_, ok := err.(*params.ParseError)
	assert.True(t, ok)
}

func TestParseObjectRequiresTopLevelObject(t *testing.T) {
	_, err := params.ParseObject(`[1,2,3]`)
	assert.Error(t, err)
}

type fakeStmt struct {
	bound map[string]graphvalue.Value
}

func (f *fakeStmt) BindParam(name string, v graphvalue.Value) error {
	if f.bound == nil {
		f.bound = map[string]graphvalue.Value{}
	}
	f.bound[name] = v
	return nil
}

func TestBinderBindsOnlyReferencedNames(t *testing.T) {
	b := params.NewBinder(map[string]graphvalue.Value{
		"name": graphvalue.Str("Alice"),
		"age":  graphvalue.Int(30),
	})
	stmt := &fakeStmt{}
	require.NoError(t, b.BindAll(stmt, []string{"name"}))
	assert.Contains(t, stmt.bound, "name")
	assert.NotContains(t, stmt.bound, "age")
}

func TestBinderBindsNullForUnsuppliedName(t *testing.T) {
	b := params.NewBinder(nil)
	stmt := &fakeStmt{}
	require.NoError(t, b.BindAll(stmt, []string{"ghost"}))
	assert.True(t, stmt.bound["ghost"].IsNull())
}
