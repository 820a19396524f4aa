package forexdaily

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/robotomize/forexdaily/internal/logging"
	"github.com/robotomize/forexdaily/internal/metrics"
	"github.com/robotomize/forexdaily/provider"
	"github.com/robotomize/forexdaily/provider/ecb"
)

type FeedRespStatus byte

const (
	FeedRespStatusFailed FeedRespStatus = iota
	FeedRespStatusOK
)

func (s FeedRespStatus) String() string {
	if s == FeedRespStatusOK {
		return metrics.StatusOK
	}

	return metrics.StatusFailed
}

// FeedInfo reports the outcome of one feed
type FeedInfo struct {
	URL          string
	Status       FeedRespStatus
	Quotes       int
	ErrorMessage string
}

// Aggregation is the merged content of every feed of one run
type Aggregation struct {
	Record Record
	Found  bool
	Feeds  []FeedInfo
	// Err collects per feed failures, it is informational and never fails a run
	Err error
}

// Aggregate fetches and parses every feed concurrently and merges the quotes per date.
// Feeds are merged in the order of urls so a later feed overwrites an earlier one for the same
// date and target. A failing feed contributes nothing
func Aggregate(ctx context.Context, src provider.Source, urls []url.URL) Aggregation {
	logger := logging.FromContext(ctx)

	var wg sync.WaitGroup

	builders := make([]*recordBuilder, len(urls))
	infos := make([]FeedInfo, len(urls))
	errs := make([]error, len(urls))

	for i, u := range urls {
		i, u := i, u
		wg.Add(1)
		go func() {
			defer wg.Done()

			report := FeedInfo{URL: u.String()}

			builder, n, err := fetchFeed(ctx, src, u)
			if err != nil {
				report.Status = FeedRespStatusFailed
				report.ErrorMessage = err.Error()
				errs[i] = fmt.Errorf("feed %s: %w", u.String(), err)
				logger.Warn("feed failed", slog.String("url", u.String()), slog.String("error", err.Error()))
			} else {
				report.Status = FeedRespStatusOK
				report.Quotes = n
				builders[i] = builder
				logger.Debug("feed parsed", slog.String("url", u.String()), slog.Int("quotes", n))
			}

			metrics.ObserveFeed(err == nil)
			infos[i] = report
		}()
	}

	wg.Wait()

	var ferr *multierror.Error
	merged := newRecordBuilder()
	for i := range urls {
		if errs[i] != nil {
			ferr = multierror.Append(ferr, errs[i])
			continue
		}

		merged.Merge(builders[i])
	}

	record, found := merged.Latest()

	return Aggregation{
		Record: record,
		Found:  found && !record.IsEmpty(),
		Feeds:  infos,
		Err:    ferr.ErrorOrNil(),
	}
}

func fetchFeed(ctx context.Context, src provider.Source, u url.URL) (*recordBuilder, int, error) {
	b, err := src.FetchFeed(ctx, u)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch: %w", err)
	}

	builder := newRecordBuilder()
	n := 0
	if err := ecb.DecodeRSS(b, func(q provider.Quote) error {
		if builder.Add(q) {
			n++
		}

		return nil
	}); err != nil {
		return nil, 0, fmt.Errorf("decode: %w", err)
	}

	return builder, n, nil
}
