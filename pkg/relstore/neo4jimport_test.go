package relstore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relcypher/graphengine/pkg/relstore"
)

func writeExportFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestImportNeo4jJSON(t *testing.T) {
	s := openStore(t)
	dir := t.TempDir()

	writeExportFile(t, dir, "nodes.json",
		`{"id":"n1","labels":["Person"],"properties":{"name":"Alice","age":30}}`+"\n"+
			`{"id":"n2","labels":["Person"],"properties":{"name":"Bob"}}`+"\n")
	writeExportFile(t, dir, "relationships.json",
		`{"id":"r1","type":"KNOWS","start":{"id":"n1"},"end":{"id":"n2"},"properties":{"since":2020}}`+"\n")

	stats, err := s.ImportNeo4jJSON(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.NodesCreated)
	assert.Equal(t, 1, stats.RelationshipsCreated)

	alice, found, err := s.FindNodeByLabelAndProps([]string{"Person"}, nil)
	require.NoError(t, err)
	require.True(t, found)
	v, err := s.LoadNode(alice)
	require.NoError(t, err)
	assert.Contains(t, v.Labels, "Person")
}

func TestImportNeo4jJSONMissingFilesAreOptional(t *testing.T) {
	s := openStore(t)
	dir := t.TempDir()

	stats, err := s.ImportNeo4jJSON(dir)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.NodesCreated)
	assert.Equal(t, 0, stats.RelationshipsCreated)
}

func TestImportNeo4jJSONUnknownEndpoint(t *testing.T) {
	s := openStore(t)
	dir := t.TempDir()

	writeExportFile(t, dir, "nodes.json", `{"id":"n1","labels":["X"],"properties":{}}`+"\n")
	writeExportFile(t, dir, "relationships.json",
		`{"id":"r1","type":"R","start":{"id":"n1"},"end":{"id":"missing"},"properties":{}}`+"\n")

	_, err := s.ImportNeo4jJSON(dir)
	assert.Error(t, err)
}
