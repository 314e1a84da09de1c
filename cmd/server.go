package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/helpdesk/internal/chat"
	"github.com/ziadkadry99/helpdesk/internal/querylog"
	"github.com/ziadkadry99/helpdesk/internal/search"
	"github.com/ziadkadry99/helpdesk/internal/server"
)

const shutdownTimeout = 15 * time.Second

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the helpdesk HTTP server",
	Long:  `Starts the HTTP server with chat sessions, the websocket chat stream, semantic search and the query log API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = serverPort
		}

		logger, closeLog, err := setupLogging(cfg)
		if err != nil {
			return err
		}
		defer closeLog()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

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
		sessions, err := chat.NewManager(pipeline, cfg.Server.MaxSessions, logger)
		if err != nil {
			return fmt.Errorf("creating session cache: %w", err)
		}

		index, err := openIndex(ctx, cfg, store, logger)
		if err != nil {
			return err
		}

		srv := server.New(server.Config{
			Port:     cfg.Server.Port,
			AllowAll: cfg.Server.AllowAllOrigins,
			Version:  Version,
		}, server.Deps{
			Sessions: sessions,
			Search:   search.NewService(index, pipeline.Recorder, logger, cfg.Search.TopK, cfg.Search.Threshold),
			QueryLog: querylog.NewStore(database),
			Backlog:  pipeline.Backlog,
		}, logger)

		logger.Info("helpdesk server starting",
			"version", Version,
			"port", cfg.Server.Port,
			"provider", cfg.Provider,
			"model", cfg.Model,
			"entries", store.Len(),
			"indexed", index.Count(),
			"database", cfg.DBPath(),
		)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(srv.Start)
		g.Go(func() error {
			<-gctx.Done()
			logger.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
		return g.Wait()
	},
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "port to listen on (overrides server.port)")
	rootCmd.AddCommand(serverCmd)
}
