package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/helpdesk/internal/backlog"
)

var backlogCmd = &cobra.Command{
	Use:   "backlog",
	Short: "Review questions the records could not answer",
	Long:  `Lists refused questions, most asked first, so missing facts can be added to the knowledge base.`,
	RunE:  runBacklogList,
}

var backlogResolveCmd = &cobra.Command{
	Use:   "resolve [id] [note]",
	Short: "Mark a question as answered by the records",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		by, _ := cmd.Flags().GetString("by")
		return withBacklog(func(store *backlog.Store) error {
			if err := store.Resolve(cmd.Context(), args[0], strings.Join(args[1:], " "), by); err != nil {
				return err
			}
			fmt.Printf("Resolved %s\n", args[0])
			return nil
		})
	},
}

var backlogDismissCmd = &cobra.Command{
	Use:   "dismiss [id]",
	Short: "Dismiss a question that is out of scope",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBacklog(func(store *backlog.Store) error {
			if err := store.UpdateStatus(cmd.Context(), args[0], backlog.StatusDismissed); err != nil {
				return err
			}
			fmt.Printf("Dismissed %s\n", args[0])
			return nil
		})
	},
}

func init() {
	backlogCmd.Flags().String("status", string(backlog.StatusOpen), "filter by status: open, resolved, dismissed (empty for all)")
	backlogCmd.Flags().Int("min-asked", 0, "only show questions asked at least this many times")
	backlogCmd.Flags().Int("limit", 20, "maximum number of questions")
	backlogCmd.Flags().Bool("json", false, "output questions as JSON")
	backlogResolveCmd.Flags().String("by", os.Getenv("USER"), "who resolved the question")
	backlogCmd.AddCommand(backlogResolveCmd, backlogDismissCmd)
	rootCmd.AddCommand(backlogCmd)
}

func withBacklog(fn func(*backlog.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()
	return fn(backlog.NewStore(database))
}

func runBacklogList(cmd *cobra.Command, args []string) error {
	status, _ := cmd.Flags().GetString("status")
	minAsked, _ := cmd.Flags().GetInt("min-asked")
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	return withBacklog(func(store *backlog.Store) error {
		questions, err := store.List(cmd.Context(), backlog.ListFilter{
			Status:   backlog.Status(status),
			MinAsked: minAsked,
			Limit:    limit,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(questions)
		}
		if len(questions) == 0 {
			fmt.Println("Backlog is empty.")
			return nil
		}
		for _, q := range questions {
			fmt.Printf("%s  x%-3d %-9s %q\n", q.ID, q.AskCount, q.Status, q.Question)
			if q.Resolution != "" {
				fmt.Printf("      resolved: %s\n", q.Resolution)
			}
		}
		return nil
	})
}
