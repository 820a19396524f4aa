package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/robotomize/forexdaily/internal/server"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func runCmd() *cobra.Command {
	var req server.TriggerRequest

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Perform one ingestion and print the summary line",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.runner.Run(ctx, a.sources.Select(req))
			if err != nil {
				return fmt.Errorf("run: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), res.String())

			return nil
		},
	}

	cmd.Flags().BoolVar(&req.Testing, "testing", false, "read the index page and feeds from the fixtures directory")
	cmd.Flags().BoolVar(&req.Record, "record", false, "store fetched live documents as fixtures")

	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP trigger, optionally running on a cron schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			return serve(ctx, a)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	logger := a.logger

	if a.cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := server.New(a.runner, a.sources, server.WithLogger(logger))

	if a.cfg.Schedule != "" {
		c := cron.New()
		if _, err := c.AddFunc(a.cfg.Schedule, func() {
			res, err := srv.Trigger(ctx, server.TriggerRequest{})
			if err != nil {
				logger.Error("scheduled run failed", slog.String("error", err.Error()))
				return
			}

			logger.Info("scheduled run", slog.String("result", res.String()))
		}); err != nil {
			return fmt.Errorf("schedule %q: %w", a.cfg.Schedule, err)
		}

		c.Start()
		defer c.Stop()

		logger.Info("cron scheduled", slog.String("schedule", a.cfg.Schedule))
	}

	httpServer := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", slog.String("port", a.cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-quit:
	case <-ctx.Done():
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	return nil
}
