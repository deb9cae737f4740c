package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newExecCmd(dataDir, configPath *string) *cobra.Command {
	var rawParams []string

	cmd := &cobra.Command{
		Use:   "exec <query>",
		Short: "Run one Cypher query and print its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := loadEngine(*dataDir, *configPath)
			if err != nil {
				return err
			}
			defer eng.Close()

			paramsJSON, err := buildParamsJSON(rawParams)
			if err != nil {
				return err
			}

			res := eng.ExecWithParams(args[0], paramsJSON)
			printResult(res)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&rawParams, "param", nil, "bind a query parameter as key=value (repeatable)")
	return cmd
}

// buildParamsJSON turns `--param k=v` flags into the JSON object text
// Engine.ExecWithParams expects. Every value is bound as a string; a
// caller needing a typed parameter should express it inline in the query
// text instead.
func buildParamsJSON(rawParams []string) (string, error) {
	if len(rawParams) == 0 {
		return "", nil
	}
	obj := make(map[string]string, len(rawParams))
	for _, p := range rawParams {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			return "", fmt.Errorf("--param %q: expected key=value", p)
		}
		obj[k] = v
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
