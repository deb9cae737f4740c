package engine

import (
	"strings"

	"github.com/google/uuid"

	"github.com/relcypher/graphengine/pkg/ast"
	"github.com/relcypher/graphengine/pkg/dispatch"
	"github.com/relcypher/graphengine/pkg/parser"
	"github.com/relcypher/graphengine/pkg/translate"
)

// Explain renders spec §6's three-line EXPLAIN text (the matched pattern
// name, the clause-presence bitmask, and the generated SQL) without
// touching the store: translate.Compile only builds a Plan and its SQL
// text, it never calls the Relational Backend. Each call gets its own
// correlation id in the log line, so a sequence of EXPLAIN calls issued
// from a REPL session can be picked back out of a shared log stream.
func (e *Engine) Explain(query string) (string, *Error) {
	reqID := uuid.NewString()
	root, err := parser.Parse(query)
	if err != nil {
		logger.Printf("explain %s: parse failed: %v", reqID, err)
		return "", classify(err)
	}
	flags := dispatch.AnalyzeRoot(root)
	entry := e.table.FindMatchingPattern(flags)
	text, cerr := explainText(root, flags, entry)
	if cerr != nil {
		logger.Printf("explain %s: compile failed: %v", reqID, cerr)
		return "", classify(cerr)
	}
	logger.Printf("explain %s: pattern=%s", reqID, entry.Name)
	return text, nil
}

// explainText is the shared rendering Explain and Exec's EXPLAIN-prefix
// detection both use.
func explainText(root ast.Root, flags dispatch.Flag, entry *dispatch.Entry) (string, error) {
	cq, err := translate.Compile(root, entry.Name)
	if err != nil {
		return "", err
	}
	lines := []string{
		"Pattern: " + entry.Name,
		"Clauses: " + flags.String(),
		"SQL: " + cq.SQL,
	}
	return strings.Join(lines, "\n"), nil
}
