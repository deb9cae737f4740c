// Package main provides the cyql CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/relcypher/graphengine/pkg/config"
	"github.com/relcypher/graphengine/pkg/engine"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	var dataDir string
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "cyql",
		Short: "cyql - a Cypher query engine over a relational store",
		Long: `cyql runs Cypher queries against an embedded badger-backed
relational store: MATCH/RETURN/WITH reads, CREATE/MERGE/SET/DELETE/REMOVE
writes, parameters, and EXPLAIN.`,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (overrides the config file's data_dir)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (YAML)")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Printf("cyql v%s (%s)\n", version, commit)
			},
		},
		newExecCmd(&dataDir, &configPath),
		newReplCmd(&dataDir, &configPath),
		newExplainCmd(&dataDir, &configPath),
		newImportCmd(&dataDir, &configPath),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadEngine applies pkg/config (file + environment) then opens the engine
// against dataDir. The CLI's own --data-dir flag wins over the config
// file's data_dir when both are set to a non-default value.
func loadEngine(dataDir, configPath string) (*engine.Engine, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	config.Set(cfg)

	eng, err := engine.Open(cfg.DataDir, engine.ReadWrite|engine.Create)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", cfg.DataDir, err)
	}
	return eng, nil
}
