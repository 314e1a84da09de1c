package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/helpdesk/internal/conversation"
	"github.com/ziadkadry99/helpdesk/internal/querylog"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the assistant a single question",
	Long:  `Runs one question through retrieval and generation and prints the answer with its sources. Questions the records cannot answer are refused without calling the LLM.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().Bool("json", false, "output the reply as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	question := strings.Join(args, " ")

	cfg, err := loadConfig()
	if err != nil {
		return err
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
	pipeline, err := newPipeline(ctx, cfg, store, database, logger)
	if err != nil {
		return err
	}

	reply, err := pipeline.NewController(querylog.SourceChat).Ask(ctx, question)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(reply)
	}
	printReply(reply)
	return nil
}

func printReply(m conversation.Message) {
	fmt.Println(m.Text)
	if len(m.Sources) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for _, s := range m.Sources {
			fmt.Printf("  - %s\n", s)
		}
	}
}
