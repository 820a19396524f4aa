package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/robotomize/forexdaily"
	"github.com/robotomize/forexdaily/internal/hashio"
	"github.com/robotomize/forexdaily/internal/logging"
	"github.com/robotomize/forexdaily/internal/storage"
	"github.com/robotomize/forexdaily/provider"
	"github.com/robotomize/forexdaily/provider/ecb"
)

const testFixturesDir = "../../testdata/fixtures"

func init() {
	gin.SetMode(gin.TestMode)
}

func testServer(t *testing.T, live provider.Source, fixturesDir string) *Server {
	t.Helper()

	runner := forexdaily.New(storage.NewMemory())
	sources := Sources{Live: live, FixturesDir: fixturesDir, HasherFunc: hashio.MD5()}

	return New(runner, sources, WithLogger(logging.NewLogger(io.Discard, "error")))
}

func serve(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	return w
}

func TestHealth(t *testing.T) {
	t.Parallel()

	w := serve(testServer(t, nil, testFixturesDir), http.MethodGet, healthPath, "")

	if diff := cmp.Diff(http.StatusOK, w.Code); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}

	if diff := cmp.Diff("ok", w.Body.String()); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}

	if w.Header().Get(requestIDHeader) == "" {
		t.Errorf("request id header must be set")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	s := testServer(t, nil, testFixturesDir)
	serve(s, http.MethodGet, healthPath, "")

	w := serve(s, http.MethodGet, metricsPath, "")
	if diff := cmp.Diff(http.StatusOK, w.Code); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}

	if !strings.Contains(w.Body.String(), "forexdaily_http_requests_total") {
		t.Errorf("metrics output lacks request counter")
	}
}

func TestTriggerFixtures(t *testing.T) {
	t.Parallel()

	s := testServer(t, nil, testFixturesDir)

	testCases := []struct {
		name     string
		method   string
		expected string
	}{
		{name: "test_trigger_first_run", method: http.MethodPost, expected: "SUCCESS 2023-02-17 5-0"},
		{name: "test_trigger_repeated_run", method: http.MethodGet, expected: "SUCCESS  0-0"},
	}

	// sequential, the second case depends on the first
	for _, tc := range testCases {
		w := serve(s, tc.method, triggerPath, `{"testing": true}`)

		if diff := cmp.Diff(http.StatusOK, w.Code); diff != "" {
			t.Errorf("%s: mismatch (-want, +got):\n%s", tc.name, diff)
		}

		if diff := cmp.Diff(tc.expected, w.Body.String()); diff != "" {
			t.Errorf("%s: mismatch (-want, +got):\n%s", tc.name, diff)
		}
	}
}

func TestTriggerInvalidBody(t *testing.T) {
	t.Parallel()

	w := serve(testServer(t, nil, testFixturesDir), http.MethodPost, triggerPath, `{"testing": "yes"`)

	if diff := cmp.Diff(http.StatusBadRequest, w.Code); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}
}

func TestTriggerLiveFailed(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	live := provider.NewMockSource(ctrl)
	live.EXPECT().FetchIndex(gomock.Any()).Return(nil, errors.New("connection refused"))

	w := serve(testServer(t, live, testFixturesDir), http.MethodPost, triggerPath, "")

	if diff := cmp.Diff(http.StatusInternalServerError, w.Code); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}

	if !strings.Contains(w.Body.String(), "connection refused") {
		t.Errorf("body must carry the failure, got %q", w.Body.String())
	}
}

func TestTriggerRecord(t *testing.T) {
	t.Parallel()

	fixtures := ecb.NewFixtureSource(os.DirFS(testFixturesDir))
	index, err := fixtures.FetchIndex(context.Background())
	if err != nil {
		t.Fatalf("read index fixture: %v", err)
	}

	ctrl := gomock.NewController(t)
	live := provider.NewMockSource(ctrl)
	live.EXPECT().FetchIndex(gomock.Any()).Return(index, nil)
	live.EXPECT().FetchFeed(gomock.Any(), gomock.Any()).DoAndReturn(fixtures.FetchFeed).Times(5)

	dir := t.TempDir()
	w := serve(testServer(t, live, dir), http.MethodPost, triggerPath, `{"record": true}`)

	if diff := cmp.Diff(http.StatusOK, w.Code); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}

	if diff := cmp.Diff("SUCCESS 2023-02-17 5-0", w.Body.String()); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}

	for _, name := range []string{ecb.IndexFixtureName, "fxref-usd.xml", "fxref-chf.xml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("fixture %s was not recorded: %v", name, err)
		}
	}
}

func TestSourcesSelect(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	live := provider.NewMockSource(ctrl)
	sources := Sources{Live: live, FixturesDir: testFixturesDir}

	testCases := []struct {
		name     string
		req      TriggerRequest
		expected string
	}{
		{name: "test_select_live", req: TriggerRequest{}, expected: "*provider.MockSource"},
		{name: "test_select_fixtures", req: TriggerRequest{Testing: true}, expected: "*ecb.FixtureSource"},
		{name: "test_select_fixtures_over_record", req: TriggerRequest{Testing: true, Record: true}, expected: "*ecb.FixtureSource"},
		{name: "test_select_recording", req: TriggerRequest{Record: true}, expected: "*ecb.RecordingSource"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := fmt.Sprintf("%T", sources.Select(tc.req))
			if diff := cmp.Diff(tc.expected, got); diff != "" {
				t.Errorf("mismatch (-want, +got):\n%s", diff)
			}
		})
	}
}
