package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/roleta-service/internal/delivery/http/handler"
	"github.com/user/roleta-service/internal/delivery/http/router"
	"github.com/user/roleta-service/internal/presenter"
	"github.com/user/roleta-service/internal/sampler"
	"github.com/user/roleta-service/pkg/config"
	"github.com/user/roleta-service/pkg/logger"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "roleta",
		Short:        "Film roulette over two Letterboxd lists",
		Long:         "roleta loads a cylinder of six films from a bad and a good Letterboxd list and fires one.",
		Version:      version,
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate("roleta version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to an env file (default .env)")

	rootCmd.AddCommand(newServeCmd(&configPath))
	rootCmd.AddCommand(newSpinCmd(&configPath))
	rootCmd.AddCommand(newFestimCmd(&configPath))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func setup(configPath string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("building logger: %w", err)
	}
	return cfg, log, nil
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.close()

			server := &http.Server{
				Addr:         ":" + cfg.ServerPort,
				Handler:      router.New(handler.NewHandler(a.roleta, a.lists, a.store, log), log),
				ReadTimeout:  5 * time.Second,
				WriteTimeout: router.RequestTimeout + 5*time.Second,
				IdleTimeout:  120 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info("server started", zap.String("port", cfg.ServerPort))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("listening on port %s: %w", cfg.ServerPort, err)
				}
			case <-ctx.Done():
			}

			log.Info("shutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}
			log.Info("server exiting")
			return nil
		},
	}
}

func newSpinCmd(configPath *string) *cobra.Command {
	var balas int

	cmd := &cobra.Command{
		Use:   "spin",
		Short: "Spin the cylinder once and print the film",
		RunE: func(cmd *cobra.Command, args []string) error {
			if balas < sampler.MinBalas || balas > sampler.MaxBalas {
				return fmt.Errorf("--balas must be between %d and %d, got %d", sampler.MinBalas, sampler.MaxBalas, balas)
			}
			cfg, log, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer log.Sync()

			a, err := buildApp(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.close()

			return a.roleta.Spin(cmd.Context(), balas, presenter.NewTerminalSink(cmd.OutOrStdout()))
		},
	}
	cmd.Flags().IntVar(&balas, "balas", 3, "bad films loaded into the six-chamber cylinder (1-5)")
	return cmd
}

func newFestimCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "festim",
		Short: "Print the link to the list of blank rounds",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return printLine(cmd.OutOrStdout(), cfg.BlankListURL())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printLine(cmd.OutOrStdout(), "roleta "+version)
		},
	}
}

func printLine(w io.Writer, s string) error {
	_, err := fmt.Fprintln(w, s)
	return err
}
