package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
)

func TestCloudRunHandlerWritesSeverityAndData(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCloudRunHandlerTo(&buf, slog.LevelInfo)).With("request_id", "r1")

	log.Warn("cache miss", "key", "transactions:u1:{}", "error", errors.New("boom"))

	var event map[string]any
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("output is not json: %v (%q)", err, buf.String())
	}
	if event["severity"] != "WARNING" {
		t.Fatalf("severity = %v, want WARNING", event["severity"])
	}
	data, ok := event["data"].(map[string]any)
	if !ok {
		t.Fatalf("missing data object: %v", event)
	}
	if data["request_id"] != "r1" || data["key"] != "transactions:u1:{}" {
		t.Fatalf("unexpected data: %v", data)
	}
	if data["error"] != "boom" {
		t.Fatalf("error attr = %v, want boom", data["error"])
	}
}

func TestCloudRunHandlerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCloudRunHandlerTo(&buf, slog.LevelWarn))

	log.Info("ignored")
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestCloudRunHandlerGroupsFlatten(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCloudRunHandlerTo(&buf, slog.LevelDebug)).WithGroup("cache")

	log.Debug("hit", "entity", "cards")

	var event map[string]any
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("output is not json: %v", err)
	}
	data := event["data"].(map[string]any)
	if data["cache.entity"] != "cards" {
		t.Fatalf("expected dotted key, got %v", data)
	}
}

func TestGetSlogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"bogus": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := getSlogLevel(in); got != want {
			t.Errorf("getSlogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
