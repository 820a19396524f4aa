package forexdaily

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/robotomize/forexdaily/internal/logging"
	"github.com/robotomize/forexdaily/internal/storage"
)

const (
	DefaultCleanupLimit  = 100
	DefaultRetainedDates = 4
)

// PersistResult lists what one commit wrote and deleted
type PersistResult struct {
	Stored  []Record
	Removed []string
}

// Coordinator decides what to write and what to delete for a freshly aggregated record
// and commits both in one batch
type Coordinator struct {
	store         storage.Store
	cleanupLimit  int
	retainedDates int
}

func NewCoordinator(store storage.Store, cleanupLimit, retainedDates int) *Coordinator {
	if cleanupLimit <= 0 {
		cleanupLimit = DefaultCleanupLimit
	}

	if retainedDates <= 0 {
		retainedDates = DefaultRetainedDates
	}

	return &Coordinator{store: store, cleanupLimit: cleanupLimit, retainedDates: retainedDates}
}

// Persist stores root and its cross rates unless they already exist, then prunes documents of
// other dates, at most cleanupLimit per call. Nothing to store is not an error
func (c *Coordinator) Persist(ctx context.Context, root Record) (PersistResult, error) {
	logger := logging.FromContext(ctx)

	candidates := make([]Record, 0, root.Len()+1)
	for _, rec := range append([]Record{root}, CrossRates(root)...) {
		if rec.IsEmpty() {
			continue
		}

		candidates = append(candidates, rec)
	}

	fresh, err := c.missing(ctx, candidates)
	if err != nil {
		return PersistResult{}, err
	}

	staged := dedupeRecords(fresh)
	if len(staged) == 0 {
		logger.Info("no new data found to save", slog.String("date", root.DateString()))
		return PersistResult{}, nil
	}

	stale, err := c.store.StaleKeys(ctx, retainedDates(staged, c.retainedDates), c.cleanupLimit)
	if err != nil {
		return PersistResult{}, fmt.Errorf("query stale documents: %w", err)
	}

	stagedKeys := make(map[string]struct{}, len(staged))
	batch := storage.Batch{Sets: make([]storage.Document, 0, len(staged))}
	for _, rec := range staged {
		stagedKeys[rec.Key()] = struct{}{}
		batch.Sets = append(batch.Sets, rec.Document())
	}

	for _, key := range stale {
		if _, ok := stagedKeys[key]; ok {
			continue
		}

		batch.Deletes = append(batch.Deletes, key)
	}

	logger.Info("saving items in batch", slog.Int("stored", len(batch.Sets)), slog.Int("removed", len(batch.Deletes)))

	if err := c.store.Commit(ctx, batch); err != nil {
		return PersistResult{}, fmt.Errorf("commit batch: %w", err)
	}

	return PersistResult{Stored: staged, Removed: batch.Deletes}, nil
}

// missing checks every candidate concurrently and keeps the ones the store does not hold yet.
// Any failed check fails the call, the result would not be idempotent otherwise
func (c *Coordinator) missing(ctx context.Context, candidates []Record) ([]Record, error) {
	var g multierror.Group

	exists := make([]bool, len(candidates))
	for i, rec := range candidates {
		i, rec := i, rec
		g.Go(func() error {
			ok, err := c.store.Exists(ctx, rec.Key())
			if err != nil {
				return fmt.Errorf("check %s: %w", rec.Key(), err)
			}

			exists[i] = ok

			return nil
		})
	}

	if err := g.Wait().ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("existence check: %w", err)
	}

	list := make([]Record, 0, len(candidates))
	for i, rec := range candidates {
		if exists[i] {
			continue
		}

		list = append(list, rec)
	}

	return list, nil
}

// dedupeRecords keeps one record per key, the last one wins and takes the first position
func dedupeRecords(records []Record) []Record {
	idx := make(map[string]int, len(records))
	list := make([]Record, 0, len(records))
	for _, rec := range records {
		if i, ok := idx[rec.Key()]; ok {
			list[i] = rec
			continue
		}

		idx[rec.Key()] = len(list)
		list = append(list, rec)
	}

	return list
}

// retainedDates returns up to n most recent distinct dates of records, newest first
func retainedDates(records []Record, n int) []string {
	seen := make(map[string]struct{}, len(records))
	dates := make([]string, 0, len(records))
	for _, rec := range records {
		d := rec.DateString()
		if _, ok := seen[d]; ok {
			continue
		}

		seen[d] = struct{}{}
		dates = append(dates, d)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	if len(dates) > n {
		dates = dates[:n]
	}

	return dates
}
