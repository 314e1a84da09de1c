package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/helpdesk/internal/progress"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the semantic search index",
	Long:  `Embeds every knowledge entry with the configured embedder and writes the index to <data_dir>/index.gob.gz. The server and search commands rebuild a missing or stale index automatically.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		_, closeLog, err := setupLogging(cfg)
		if err != nil {
			return err
		}
		defer closeLog()

		store, err := openKnowledge(cfg)
		if err != nil {
			return err
		}

		ix, err := buildIndex(cmd.Context(), cfg, store, progress.NewReporter("Embedding records"))
		if err != nil {
			return err
		}

		fmt.Printf("Indexed %d of %d entries with %s\n", ix.Count(), store.Len(), ix.Embedder().Name())
		fmt.Printf("  Collection: %s\n", ix.Name())
		fmt.Printf("  Written to: %s\n", cfg.IndexPath())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
