package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/relcypher/graphengine/pkg/engine"
	"github.com/relcypher/graphengine/pkg/writeexec"
)

// printResult renders a Result the way the teacher's CLI renders command
// output: plain, tab-separated text to stdout, with non-zero write
// counters summarized via go-humanize's thousands-separated Comma.
func printResult(res *engine.Result) {
	if !res.Success {
		fmt.Fprintf(os.Stderr, "error (%s): %s\n", res.ErrorKind, res.ErrorMessage)
		return
	}

	if len(res.Columns) > 0 {
		fmt.Println(strings.Join(res.Columns, "\t"))
		for _, row := range res.Rows {
			cells := make([]string, len(row))
			for i, c := range row {
				cells[i] = c.Text
			}
			fmt.Println(strings.Join(cells, "\t"))
		}
	}

	if line := statsLine(res.Stats); line != "" {
		fmt.Println(line)
	}
}

func statsLine(stats writeexec.Stats) string {
	var parts []string
	add := func(label string, n int) {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%s: %s", label, humanize.Comma(int64(n))))
		}
	}
	add("nodes created", stats.NodesCreated)
	add("nodes deleted", stats.NodesDeleted)
	add("relationships created", stats.RelationshipsCreated)
	add("relationships deleted", stats.RelationshipsDeleted)
	add("properties set", stats.PropertiesSet)
	return strings.Join(parts, ", ")
}
