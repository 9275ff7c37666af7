package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestJSONLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "json", Output: &buf}).With(String("platform", "sat1"))

	log.Debug(context.Background(), "position updated", Float("radius_km", 6778.5), Err(errors.New("boom")))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if rec["msg"] != "position updated" || rec["platform"] != "sat1" || rec["error"] != "boom" {
		t.Fatalf("unexpected record: %v", rec)
	}
	if rec["radius_km"] != 6778.5 {
		t.Fatalf("radius_km = %v, want 6778.5", rec["radius_km"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Output: &buf})
	log.Info(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered at warn level, got %q", buf.String())
	}
	log.Warn(context.Background(), "shown")
	if buf.Len() == 0 {
		t.Fatalf("expected warn to be written")
	}
}

func TestEnsureRunIDIsStable(t *testing.T) {
	ctx, id := EnsureRunID(context.Background())
	if id == "" {
		t.Fatalf("expected a run id")
	}
	ctx2, id2 := EnsureRunID(ctx)
	if id2 != id || RunIDFromContext(ctx2) != id {
		t.Fatalf("run id changed: %q -> %q", id, id2)
	}
}

func TestLoggerFromContextFallsBackToNoop(t *testing.T) {
	if LoggerFromContext(context.Background()) == nil {
		t.Fatalf("expected a non-nil fallback logger")
	}
	l := Noop()
	ctx := ContextWithLogger(context.Background(), l)
	if LoggerFromContext(ctx) != l {
		t.Fatalf("expected stored logger to be returned")
	}
}
