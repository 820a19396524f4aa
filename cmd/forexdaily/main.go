package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/robotomize/forexdaily"
	"github.com/robotomize/forexdaily/internal/config"
	"github.com/robotomize/forexdaily/internal/hashio"
	"github.com/robotomize/forexdaily/internal/logging"
	"github.com/robotomize/forexdaily/internal/server"
	"github.com/robotomize/forexdaily/internal/storage"
	"github.com/robotomize/forexdaily/provider/ecb"
	"github.com/robotomize/forexdaily/provider/httputil"
	"github.com/spf13/cobra"
)

var envFiles []string

func main() {
	root := &cobra.Command{
		Use:           "forexdaily",
		Short:         "ECB reference rates ingestion with cross rate derivation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files loaded before the environment is read")
	root.AddCommand(serveCmd(), runCmd())

	if err := root.ExecuteContext(context.Background()); err != nil {
		logging.DefaultLogger().Error("forexdaily", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// app is everything a command needs, built from the configuration
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   storage.Store
	runner  *forexdaily.Runner
	sources server.Sources
}

func setup(ctx context.Context) (context.Context, *app, error) {
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return ctx, nil, fmt.Errorf("load config: %w", err)
	}

	logger := logging.NewLogger(os.Stderr, cfg.LogLevel)
	ctx = logging.WithLogger(ctx, logger)

	indexURL, err := cfg.ParsedIndexURL()
	if err != nil {
		return ctx, nil, err
	}

	store, err := storage.Open(ctx, storage.Config{
		Driver:     cfg.StoreDriver,
		DSN:        cfg.StoreDSN,
		ProjectID:  cfg.ProjectID,
		Collection: cfg.Collection,
	})
	if err != nil {
		return ctx, nil, fmt.Errorf("open storage: %w", err)
	}

	client := httputil.NewHTTPClient(
		&http.Client{Transport: httputil.DefaultTransport(), Timeout: cfg.RequestTimeout},
		httputil.WithRetryNum(cfg.RetryNum),
		httputil.WithRetryDuration(cfg.RetryDuration),
	)

	runner := forexdaily.New(store,
		forexdaily.WithIndexURL(indexURL),
		forexdaily.WithCleanupLimit(cfg.CleanupLimit),
		forexdaily.WithRetainedDates(cfg.RetainedDates),
	)

	return ctx, &app{
		cfg:    cfg,
		logger: logger,
		store:  store,
		runner: runner,
		sources: server.Sources{
			Live:        ecb.NewSource(client, indexURL),
			FixturesDir: cfg.FixturesDir,
			HasherFunc:  hashio.MD5(),
		},
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("close storage", slog.String("error", err.Error()))
	}
}
