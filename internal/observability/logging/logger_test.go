package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNewJSONLoggerToTagsServiceAndFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLoggerTo(&buf, "resume-parser-worker", "warn")

	logger.Info("job_started", "job_id", "j-1")
	if buf.Len() != 0 {
		t.Fatalf("info record must be filtered at warn level, got %q", buf.String())
	}

	logger.Warn("job_failed", "job_id", "j-1")
	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if record["service"] != "resume-parser-worker" || record["msg"] != "job_failed" || record["job_id"] != "j-1" {
		t.Fatalf("unexpected record %+v", record)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
