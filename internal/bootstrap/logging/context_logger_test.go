package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestWithAttrsOverridesExistingKeys(t *testing.T) {
	ctx := WithAttrs(context.Background(), slog.String("component", "a"), slog.String("station", "OQA"))
	ctx = WithAttrs(ctx, slog.String("component", "b"))

	attrs := Attrs(ctx)
	if len(attrs) != 2 {
		t.Fatalf("Attrs() len = %d, want 2", len(attrs))
	}
	if attrs[0].Key != "component" || attrs[0].Value.String() != "b" {
		t.Fatalf("Attrs()[0] = %v, want component=b", attrs[0])
	}
}

func TestNewJSONLoggerWritesContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "debug", "json")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := WithLogger(context.Background(), logger)
	ctx = WithRequestID(ctx, "req-1")
	Info(ctx, "inspection created", slog.String("inspection_number", "OQA260806-100001"))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	if line["request_id"] != "req-1" {
		t.Fatalf("request_id = %v, want req-1", line["request_id"])
	}
	if line["inspection_number"] != "OQA260806-100001" {
		t.Fatalf("inspection_number = %v", line["inspection_number"])
	}
	if RequestID(ctx) != "req-1" {
		t.Fatalf("RequestID() = %q, want req-1", RequestID(ctx))
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "warn", "text")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := WithLogger(context.Background(), logger)

	Info(ctx, "hidden")
	Warn(ctx, "shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(nil, "info", "xml"); err == nil {
		t.Fatal("New() error = nil, want error")
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("ParseLevel() error = nil, want error")
	}
}
