package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExplainCmd(dataDir, configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "explain <query>",
		Short: "Print a query's pattern, clause flags, and generated SQL without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := loadEngine(*dataDir, *configPath)
			if err != nil {
				return err
			}
			defer eng.Close()

			text, eerr := eng.Explain(args[0])
			if eerr != nil {
				return fmt.Errorf("%s: %s", eerr.Kind, eerr.Message)
			}
			fmt.Println(text)
			return nil
		},
	}
}
