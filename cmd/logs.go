package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/helpdesk/internal/querylog"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show the query log",
	Long:  `Lists logged queries, newest first. Each row records what was asked, the matched categories and the match confidence, never the answer.`,
	RunE:  runLogs,
}

var logsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count logged queries by source",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()
		store := querylog.NewStore(database)

		counts, err := store.CountBySource(cmd.Context())
		if err != nil {
			return err
		}
		for _, src := range []querylog.Source{querylog.SourceChat, querylog.SourceSearch, querylog.SourceMCP} {
			fmt.Printf("%-8s %d\n", src, counts[src])
		}
		return nil
	},
}

var logsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete query log entries older than a duration",
	RunE: func(cmd *cobra.Command, args []string) error {
		olderThan, _ := cmd.Flags().GetDuration("older-than")
		if olderThan <= 0 {
			return fmt.Errorf("--older-than must be positive")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()
		store := querylog.NewStore(database)

		n, err := store.DeleteBefore(cmd.Context(), time.Now().Add(-olderThan))
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d entries\n", n)
		return nil
	},
}

func init() {
	logsCmd.Flags().String("source", "", "filter by source: chat, search, mcp")
	logsCmd.Flags().Duration("since", 0, "only show entries newer than this duration, e.g. 24h")
	logsCmd.Flags().Int("limit", 20, "maximum number of entries")
	logsCmd.Flags().Bool("json", false, "output entries as JSON")
	logsPruneCmd.Flags().Duration("older-than", 0, "delete entries older than this duration, e.g. 720h")
	logsCmd.AddCommand(logsStatsCmd, logsPruneCmd)
	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, args []string) error {
	source, _ := cmd.Flags().GetString("source")
	since, _ := cmd.Flags().GetDuration("since")
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()
	store := querylog.NewStore(database)

	filter := querylog.Filter{Source: querylog.Source(source), Limit: limit}
	if since > 0 {
		t := time.Now().Add(-since)
		filter.Since = &t
	}
	entries, err := store.Query(cmd.Context(), filter)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	if len(entries) == 0 {
		fmt.Println("No queries logged.")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%s  %-6s %-9s %.2f  %q  [%s]\n",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.Source, e.Outcome, e.ConfidenceScore, e.Query,
			strings.Join(e.CategoriesMatched, ", "))
	}
	return nil
}
