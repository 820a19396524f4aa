package metrics

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Collectors are process wide, so tests compare deltas and do not run in parallel.

func TestObserveRun(t *testing.T) {
	okBefore := testutil.ToFloat64(RunsTotal.WithLabelValues(StatusOK))
	failedBefore := testutil.ToFloat64(RunsTotal.WithLabelValues(StatusFailed))
	storedBefore := testutil.ToFloat64(DocumentsStoredTotal)
	removedBefore := testutil.ToFloat64(DocumentsRemovedTotal)

	ObserveRun(time.Second, 33, 100, nil)
	ObserveRun(time.Second, 0, 0, errors.New("commit failed"))

	if got := testutil.ToFloat64(RunsTotal.WithLabelValues(StatusOK)) - okBefore; got != 1 {
		t.Errorf("ok runs delta: want 1, got %v", got)
	}

	if got := testutil.ToFloat64(RunsTotal.WithLabelValues(StatusFailed)) - failedBefore; got != 1 {
		t.Errorf("failed runs delta: want 1, got %v", got)
	}

	if got := testutil.ToFloat64(DocumentsStoredTotal) - storedBefore; got != 33 {
		t.Errorf("stored delta: want 33, got %v", got)
	}

	if got := testutil.ToFloat64(DocumentsRemovedTotal) - removedBefore; got != 100 {
		t.Errorf("removed delta: want 100, got %v", got)
	}
}

func TestObserveFeed(t *testing.T) {
	okBefore := testutil.ToFloat64(FeedsTotal.WithLabelValues(StatusOK))
	failedBefore := testutil.ToFloat64(FeedsTotal.WithLabelValues(StatusFailed))

	ObserveFeed(true)
	ObserveFeed(true)
	ObserveFeed(false)

	if got := testutil.ToFloat64(FeedsTotal.WithLabelValues(StatusOK)) - okBefore; got != 2 {
		t.Errorf("ok feeds delta: want 2, got %v", got)
	}

	if got := testutil.ToFloat64(FeedsTotal.WithLabelValues(StatusFailed)) - failedBefore; got != 1 {
		t.Errorf("failed feeds delta: want 1, got %v", got)
	}
}

func TestObserveHTTP(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/", http.MethodPost, "200"))

	ObserveHTTP("/", http.MethodPost, http.StatusOK, 10*time.Millisecond)

	if got := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/", http.MethodPost, "200")) - before; got != 1 {
		t.Errorf("http requests delta: want 1, got %v", got)
	}
}
