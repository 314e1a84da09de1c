package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/helpdesk/internal/querylog"
	"github.com/ziadkadry99/helpdesk/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Semantically search the knowledge base",
	Long:  `Ranks knowledge entries by cosine similarity to the query and prints those above the confidence threshold.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().Int("top-k", 0, "maximum number of results (default search.top_k)")
	searchCmd.Flags().Float64("threshold", -1, "minimum similarity (default search.threshold)")
	searchCmd.Flags().Bool("json", false, "output the response as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("top-k") {
		cfg.Search.TopK, _ = cmd.Flags().GetInt("top-k")
	}
	if cmd.Flags().Changed("threshold") {
		cfg.Search.Threshold, _ = cmd.Flags().GetFloat64("threshold")
	}

	logger, closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := openKnowledge(cfg)
	if err != nil {
		return err
	}
	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	ctx := cmd.Context()
	index, err := openIndex(ctx, cfg, store, logger)
	if err != nil {
		return err
	}

	svc := search.NewService(index, querylog.NewRecorder(querylog.NewStore(database), logger), logger, cfg.Search.TopK, cfg.Search.Threshold)
	resp, err := svc.Query(ctx, query, "cli")
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	if len(resp.Context) == 0 {
		fmt.Println("No matching records found.")
		return nil
	}
	fmt.Printf("Found %d record(s) for %q:\n", len(resp.Context), query)
	for i, r := range resp.Context {
		fmt.Printf("\n%d. [%s] %s  (%.1f%%)\n", i+1, r.Category, r.ID, r.ConfidenceScore*100)
		fmt.Printf("   %s\n", r.Content)
		fmt.Printf("   Source: %s\n", r.Citation())
	}
	return nil
}
