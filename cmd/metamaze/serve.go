package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/metamaze/internal/cli"
	httpAdapter "github.com/aretw0/metamaze/pkg/adapters/http"
	"github.com/aretw0/metamaze/pkg/observability"
	"github.com/aretw0/metamaze/pkg/session"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves sessions over a JSON API, streams their changes as Server-Sent Events
and exposes Prometheus metrics on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		watch, _ := cmd.Flags().GetBool("watch")

		logger, err := newLogger()
		if err != nil {
			return err
		}
		backend, err := openBackend(logger)
		if err != nil {
			return err
		}
		defer backend.Close()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		metrics := observability.NewMetrics()
		streams := httpAdapter.NewStreamManager(logger)
		host := backend.Host(logger,
			session.WithHooks(metrics.Hooks().Merge(cli.DebugHooks(logger))),
			session.WithDiffListener(streams.Publish),
		)
		if watch {
			backend.WatchLibrary(ctx, host, logger)
		}

		srv := &http.Server{
			Addr: ":" + port,
			Handler: httpAdapter.NewHandler(host,
				httpAdapter.WithMetrics(metrics.Handler()),
				httpAdapter.WithStreams(streams),
				httpAdapter.WithLogger(logger),
			),
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("Starting metamaze server", "address", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			logger.Info("Start shutdown", "signal", ctx.Signal())

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("Graceful shutdown did not complete", "error", err)
				if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			}
			logger.Info("Server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().Bool("watch", false, "Reload mazes when library documents change")
}
