package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerJSONIncludesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentStorage, Output: &buf})

	logger.Info("hello", FieldExpenseID, 3)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if rec["component"] != ComponentStorage {
		t.Fatalf("component = %v", rec["component"])
	}
	if rec["expense_id"] != float64(3) {
		t.Fatalf("expense_id = %v", rec["expense_id"])
	}
}

func TestLoggerLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Output: &buf})

	logger.Info("dropped")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") || !strings.Contains(out, "kept") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Format: "json", Output: &buf})
	base.WithComponent(ComponentHTTP).Info("x")

	if !strings.Contains(buf.String(), `"component":"http"`) {
		t.Fatalf("component not switched: %s", buf.String())
	}
	if strings.Count(buf.String(), `"component"`) != 1 {
		t.Fatalf("component logged twice: %s", buf.String())
	}
}

func TestFromContextFallback(t *testing.T) {
	logger := FromContext(context.Background())
	if logger == nil || logger.Component() != "unknown" {
		t.Fatalf("unexpected fallback logger %+v", logger)
	}
}

func TestNewContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "json", Output: &buf}).With(FieldRequestID, "req-1")
	ctx := NewContext(context.Background(), logger)

	FromContext(ctx).InfoContext(ctx, "inside")

	if !strings.Contains(buf.String(), `"request_id":"req-1"`) {
		t.Fatalf("request id missing: %s", buf.String())
	}
}
