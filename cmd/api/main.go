package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"taskflow-backend/internal/app"
	"taskflow-backend/internal/config"
	"taskflow-backend/internal/ids"
	"taskflow-backend/internal/logger"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:          "taskflow-api",
		Short:        "TaskFlow task management API",
		Version:      Version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads config and builds the logger shared by every subcommand.
func setup() (*config.Config, *zap.Logger, error) {
	cfg := config.Load()

	lg, err := logger.Init(logger.ConfigFromEnv())
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	sugar := lg.Sugar()
	for _, w := range cfg.Warnings {
		sugar.Warn(w)
	}
	if !cfg.JWTSecretIsSet {
		sugar.Warn("JWT_SECRET is not set; using a random secret, tokens will not survive a restart")
	}
	if err := ids.SetNode(cfg.SnowflakeNode); err != nil {
		sugar.Warnw("invalid snowflake node, using default", "node", cfg.SnowflakeNode, "err", err)
	}
	return cfg, lg, nil
}

func serveCmd() *cobra.Command {
	var (
		addr    string
		migrate bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, lg, err := setup()
			if err != nil {
				return err
			}
			defer lg.Sync()
			sugar := lg.Sugar()

			if addr != "" {
				cfg.HTTPAddr = addr
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			backend, err := app.OpenStore(ctx, cfg, migrate)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer func() {
				if err := backend.Close(); err != nil {
					sugar.Warnw("store close failed", "err", err)
				}
			}()
			sugar.Infow("store ready", "backend", backend.Kind)
			if !cfg.AIEnabled() {
				sugar.Info("AI advisory disabled: no provider credential configured")
			}

			srv := &http.Server{
				Addr:              cfg.HTTPAddr,
				Handler:           app.NewHandler(cfg, sugar, backend),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				sugar.Infow("http server listening", "addr", cfg.HTTPAddr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("http server: %w", err)
				}
			case <-ctx.Done():
			}

			sugar.Info("shutting down")
			doneCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(doneCtx); err != nil {
				sugar.Warnw("http server shutdown failed", "err", err)
			}
			sugar.Info("goodbye")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	cmd.Flags().BoolVar(&migrate, "migrate", true, "create tables and indexes on startup")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables and indexes for the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, lg, err := setup()
			if err != nil {
				return err
			}
			defer lg.Sync()

			backend, err := app.OpenStore(cmd.Context(), cfg, true)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			defer backend.Close()
			lg.Sugar().Infow("schema up to date", "backend", backend.Kind)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}
