package cmd

import (
	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/helpdesk/internal/mcp"
	"github.com/ziadkadry99/helpdesk/internal/search"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing knowledge search and the helpdesk assistant as tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		// Stdout carries the protocol; the logger writes to stderr and the log file.
		logger, closeLog, err := setupLogging(cfg)
		if err != nil {
			return err
		}
		defer closeLog()

		ctx := cmd.Context()
		store, err := openKnowledge(cfg)
		if err != nil {
			return err
		}

		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		pipeline, err := newPipeline(ctx, cfg, store, database, logger)
		if err != nil {
			return err
		}

		deps := mcpserver.Deps{Store: store, Pipeline: pipeline, Recorder: pipeline.Recorder}
		if index, err := openIndex(ctx, cfg, store, logger); err != nil {
			logger.Warn("semantic search disabled", "error", err)
		} else {
			deps.Search = search.NewService(index, pipeline.Recorder, logger, cfg.Search.TopK, cfg.Search.Threshold)
		}

		mcpserver.Version = Version
		logger.Info("helpdesk MCP server started on stdio", "entries", store.Len())

		return mcpserver.NewServer(deps).Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
