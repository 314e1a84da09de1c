package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/helpdesk/internal/conversation"
	"github.com/ziadkadry99/helpdesk/internal/querylog"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation in the terminal",
	Long:  `Opens a conversation with the assistant. Type a question and press enter; type "exit" or press Ctrl+C to quit.`,
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
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
	c := pipeline.NewController(querylog.SourceChat)
	defer c.Wait()

	if welcome, ok := c.Snapshot().LastAssistant(); ok {
		fmt.Println(welcome.Text)
		fmt.Println()
	}

	for {
		input := promptui.Prompt{Label: "You"}
		text, err := input.Run()
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(text)) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		c.SetInput(text)
		fmt.Println("Consulting the official records...")
		reply, err := c.Ask(ctx, text)
		if errors.Is(err, conversation.ErrBusy) {
			fmt.Println("Still working on the previous question.")
			continue
		}
		if err != nil {
			return err
		}
		fmt.Println()
		printReply(reply)
		fmt.Println()
	}
}
