package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/helpdesk/internal/knowledge"
)

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Inspect the knowledge base",
}

var knowledgeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List knowledge entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openKnowledge(cfg)
		if err != nil {
			return err
		}

		var entries []knowledge.Entry
		for _, e := range store.ListEntries() {
			if category == "" || string(e.Category) == category {
				entries = append(entries, e)
			}
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}
		for _, e := range entries {
			fmt.Printf("%-10s %-18s %s\n", e.ID, e.Category, e.Citation())
			fmt.Printf("           %s\n", e.Content)
		}
		fmt.Printf("\n%d entries\n", len(entries))
		return nil
	},
}

var knowledgeValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a knowledge file, directory or glob",
	Long:  `Checks entries for empty content, duplicate ids, unknown categories and missing citations. Without a path the configured knowledge base is checked.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		} else {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			path = cfg.KnowledgePath
		}

		store, err := knowledge.Open(path)
		if err != nil {
			return err
		}

		counts := make(map[knowledge.Category]int)
		for _, e := range store.ListEntries() {
			counts[e.Category]++
		}
		source := path
		if source == "" {
			source = "built-in records"
		}
		fmt.Printf("%s: %d valid entries\n", source, store.Len())
		for _, c := range knowledge.Categories {
			if counts[c] > 0 {
				fmt.Printf("  %-18s %d\n", c, counts[c])
			}
		}
		return nil
	},
}

func init() {
	knowledgeListCmd.Flags().String("category", "", "only list entries in this category")
	knowledgeListCmd.Flags().Bool("json", false, "output entries as JSON")
	knowledgeCmd.AddCommand(knowledgeListCmd, knowledgeValidateCmd)
	rootCmd.AddCommand(knowledgeCmd)
}
