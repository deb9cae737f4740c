package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newImportCmd(dataDir, configPath *string) *cobra.Command {
	var neo4jDir string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Bulk-load data into the graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			if neo4jDir == "" {
				return fmt.Errorf("import: --neo4j-json DIR is required")
			}

			eng, err := loadEngine(*dataDir, *configPath)
			if err != nil {
				return err
			}
			defer eng.Close()

			stats, err := eng.ImportNeo4jJSON(neo4jDir)
			if err != nil {
				return fmt.Errorf("importing %s: %w", neo4jDir, err)
			}
			fmt.Printf("nodes created: %s, relationships created: %s\n",
				humanize.Comma(int64(stats.NodesCreated)), humanize.Comma(int64(stats.RelationshipsCreated)))
			return nil
		},
	}
	cmd.Flags().StringVar(&neo4jDir, "neo4j-json", "", "directory containing nodes.json/relationships.json from a Neo4j JSON export")
	return cmd
}
