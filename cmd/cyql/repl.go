package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newReplCmd(dataDir, configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive Cypher shell reading queries from stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := loadEngine(*dataDir, *configPath)
			if err != nil {
				return err
			}
			defer eng.Close()

			started := time.Now()
			fmt.Println("cyql interactive shell. Type 'exit' or Ctrl+D to quit.")
			fmt.Println()

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("cyql> ")
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					break
				}
				printResult(eng.Exec(line))
			}
			fmt.Printf("\nsession ended, started %s\n", humanize.Time(started))
			return scanner.Err()
		},
	}
}
