package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/4thel00z/wordscope/internal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func NewServeCmd(svc func() *internal.App, config func() *internal.Config, logger func() *zap.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the query API over HTTP",
		Long:  `Serve status, similar-word, projection and dependency endpoints under /api. Training starts in the background unless --lazy is set.`,
		Args:  cobra.NoArgs,
		RunE:  makeServeRunner(svc, config, logger),
	}

	cmd.Flags().String("addr", "", "Listen address (default from config, "+internal.DefaultServerAddr+")")
	cmd.Flags().Bool("lazy", false, "Wait for POST /api/initialize instead of training at startup")
	return cmd
}

func makeServeRunner(svc func() *internal.App, config func() *internal.Config, logger func() *zap.Logger) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		lazy, _ := cmd.Flags().GetBool("lazy")
		if addr == "" {
			addr = config().Server.Addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return serve(ctx, ln, svc(), logger(), lazy)
	}
}

// serve runs the API on ln until ctx is done, then shuts down gracefully.
func serve(ctx context.Context, ln net.Listener, app *internal.App, logger *zap.Logger, lazy bool) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	srv := &http.Server{
		Handler:           internal.NewRouter(app, logger.Named("http")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	logger.Info("listening", zap.String("addr", ln.Addr().String()))

	if !lazy {
		go func() {
			// failures are recorded in the app status and retried on POST /api/initialize
			_, _ = app.Initialize(ctx)
		}()
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
