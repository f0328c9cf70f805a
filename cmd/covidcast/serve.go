package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/aouyang1/go-covidcast/dashboard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard over http",
	Long: `Loads the dataset and serves the dashboard until interrupted.

Fitted models are cached in the sqlite database of the store configuration so repeated
forecasts of the same country and window skip fitting.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address overriding the configuration")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	svc, closeSvc, err := newService(ctx)
	if err != nil {
		return err
	}
	defer closeSvc()

	srv := dashboard.NewServer(svc, cfg, logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("unable to shutdown gracefully", zap.Error(err))
		return err
	}
	return <-errCh
}
