package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		source string
		want   slog.Level
	}{
		{name: "test_level_debug", source: "debug", want: slog.LevelDebug},
		{name: "test_level_warn_upper", source: " WARN ", want: slog.LevelWarn},
		{name: "test_level_warning", source: "warning", want: slog.LevelWarn},
		{name: "test_level_error", source: "error", want: slog.LevelError},
		{name: "test_level_unknown", source: "verbose", want: slog.LevelInfo},
		{name: "test_level_empty", source: "", want: slog.LevelInfo},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tc.want, ParseLevel(tc.source)); diff != "" {
				t.Errorf("mismatch (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	if FromContext(context.Background()) != DefaultLogger() {
		t.Errorf("empty context must return the default logger")
	}

	var buf bytes.Buffer
	logger := NewLogger(&buf, "debug").With(slog.String("run_id", "42"))
	ctx := WithLogger(context.Background(), logger)

	FromContext(ctx).Debug("fetched feed")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log entry: %v", err)
	}

	if diff := cmp.Diff("42", entry["run_id"]); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}

	if diff := cmp.Diff("fetched feed", entry["msg"]); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}
}
