package forexdaily

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/robotomize/forexdaily/internal/logging"
	"github.com/robotomize/forexdaily/internal/metrics"
	"github.com/robotomize/forexdaily/internal/storage"
	"github.com/robotomize/forexdaily/provider"
	"github.com/robotomize/forexdaily/provider/ecb"
)

var (
	ErrNoFeeds      = errors.New("index page lists no reference rate feeds")
	ErrMissingStore = errors.New("store is not configured")
)

type Option func(*Runner)

type Options struct {
	IndexURL      url.URL
	CleanupLimit  int
	RetainedDates int
}

// WithIndexURL set the page feed links are resolved against
func WithIndexURL(u url.URL) Option {
	return func(r *Runner) {
		r.opts.IndexURL = u
	}
}

// WithCleanupLimit set max number of stale documents deleted by one run
func WithCleanupLimit(n int) Option {
	return func(r *Runner) {
		r.opts.CleanupLimit = n
	}
}

// WithRetainedDates set how many most recent staged dates survive the cleanup
func WithRetainedDates(n int) Option {
	return func(r *Runner) {
		r.opts.RetainedDates = n
	}
}

// Result is the terminal status of one run
type Result struct {
	RunID   string
	Date    string
	Stored  []Record
	Removed []string
	Feeds   []FeedInfo
}

// String renders SUCCESS <date> <stored>-<removed>, the date is empty when nothing was stored
func (r Result) String() string {
	return fmt.Sprintf("SUCCESS %s %d-%d", r.Date, len(r.Stored), len(r.Removed))
}

// New return runner
func New(store storage.Store, opts ...Option) *Runner {
	r := &Runner{
		store: store,
		opts: Options{
			IndexURL:      ecb.DefaultIndexURL,
			CleanupLimit:  DefaultCleanupLimit,
			RetainedDates: DefaultRetainedDates,
		},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Runner drives one ingestion end to end: index, feeds, aggregation, cross rates, persistence
type Runner struct {
	store storage.Store
	opts  Options
}

// Run performs one invocation against src. Failed feeds and an already stored date are not errors,
// a failing index fetch, existence check or commit is
func (r *Runner) Run(ctx context.Context, src provider.Source) (Result, error) {
	start := time.Now()

	res, err := r.run(ctx, src)
	metrics.ObserveRun(time.Since(start), len(res.Stored), len(res.Removed), err)

	return res, err
}

func (r *Runner) run(ctx context.Context, src provider.Source) (Result, error) {
	res := Result{RunID: uuid.NewString()}

	if r.store == nil {
		return res, ErrMissingStore
	}

	logger := logging.FromContext(ctx).With(slog.String("run_id", res.RunID))
	ctx = logging.WithLogger(ctx, logger)

	index, err := src.FetchIndex(ctx)
	if err != nil {
		return res, fmt.Errorf("fetch index: %w", err)
	}

	urls, err := ecb.ParseIndex(r.opts.IndexURL, index)
	if err != nil {
		return res, fmt.Errorf("parse index: %w", err)
	}

	if len(urls) == 0 {
		logger.Warn("nothing to fetch", slog.String("error", ErrNoFeeds.Error()))
		return res, nil
	}

	logger.Info("fetching feeds", slog.Int("feeds", len(urls)))

	agg := Aggregate(ctx, src, urls)
	res.Feeds = agg.Feeds
	if agg.Err != nil {
		logger.Warn("some feeds failed", slog.String("error", agg.Err.Error()))
	}

	if !agg.Found {
		logger.Info("no exchange rates found in feeds")
		return res, nil
	}

	coordinator := NewCoordinator(r.store, r.opts.CleanupLimit, r.opts.RetainedDates)
	persisted, err := coordinator.Persist(ctx, agg.Record)
	if err != nil {
		return res, fmt.Errorf("persist %s: %w", agg.Record.Key(), err)
	}

	res.Stored = persisted.Stored
	res.Removed = persisted.Removed
	if len(res.Stored) > 0 {
		res.Date = agg.Record.DateString()
	}

	failed := 0
	for _, info := range res.Feeds {
		if info.Status == FeedRespStatusFailed {
			failed++
		}
	}

	logger.Info("run finished",
		slog.String("date", agg.Record.DateString()),
		slog.Int("feeds", len(res.Feeds)),
		slog.Int("failed_feeds", failed),
		slog.Int("stored", len(res.Stored)),
		slog.Int("removed", len(res.Removed)),
	)

	return res, nil
}
