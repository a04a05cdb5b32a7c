package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/hiring-bias-game/internal/observability"
	"github.com/jonathan/hiring-bias-game/internal/server"
	"github.com/jonathan/hiring-bias-game/internal/server/ratelimit"
)

var (
	servePort  int
	serveStore string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the game, session and generation endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from PORT)")
	serveCmd.Flags().StringVar(&serveStore, "store", "", "Store backend: memory, postgres or sqlite (default from STORE_BACKEND)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := *appCfg
	if servePort != 0 {
		cfg.Port = servePort
	}
	if serveStore != "" {
		cfg.StoreBackend = serveStore
	}

	ctx := cmd.Context()
	shutdownTracing, err := observability.SetupTracing(ctx, cfg.ServiceName, cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("failed to flush traces", zap.Error(err))
		}
	}()

	a, err := newApp(ctx, &cfg, nil, logger)
	if err != nil {
		return err
	}
	defer a.Close(logger)

	rl, err := ratelimit.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load rate limit config: %w", err)
	}

	srv, err := server.New(server.Config{
		Port:        cfg.Port,
		ServiceName: cfg.ServiceName,
		Repository:  a.repo,
		Advisor:     a.advisor,
		Game:        a.game,
		Logger:      logger,
		RateLimit:   rl,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("serving",
		zap.Int("port", cfg.Port),
		zap.String("store", cfg.StoreBackend),
		zap.Bool("llm", a.client != nil))
	return srv.Start()
}
