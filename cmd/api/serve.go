package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"todo-api/internal/repositories"
	"todo-api/internal/routes"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, dialect, err := ctx.openStore(cmd.Context(), cmd.Flags())
			if err != nil {
				return err
			}
			defer db.Close()

			repo := repositories.NewTodoRepository(db, dialect)
			if n, err := repo.Count(cmd.Context()); err != nil {
				slog.Warn("could not count todos", "error", err)
			} else {
				slog.Info("todo store ready", "todos", n)
			}

			srv := &http.Server{
				Addr:              cfg.Server.Addr(),
				Handler:           routes.SetupRouter(db, dialect, cfg.Server),
				ReadHeaderTimeout: 10 * time.Second,
			}
			return runServer(cmd.Context(), srv, cfg.Server.ShutdownTimeout)
		},
	}

	cmd.Flags().String("host", "0.0.0.0", "Address to listen on")
	cmd.Flags().Int("port", 5000, "Port to listen on")
	return cmd
}

// runServer はシグナルを受けるまでサーバーを動かし、その後グレースフルに停止します。
func runServer(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
