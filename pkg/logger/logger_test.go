package logx

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestInitToLevels(t *testing.T) {
	tests := []struct {
		conf Config
		want zerolog.Level
	}{
		{conf: Config{Level: "warn"}, want: zerolog.WarnLevel},
		{conf: Config{Level: "bogus"}, want: zerolog.InfoLevel},
		{conf: Config{}, want: zerolog.InfoLevel},
		{conf: Config{Level: "error", Debug: true}, want: zerolog.DebugLevel},
	}
	for _, tt := range tests {
		logger := InitTo(&bytes.Buffer{}, tt.conf)
		if got := logger.GetLevel(); got != tt.want {
			t.Fatalf("InitTo(%+v) level = %s, want %s", tt.conf, got, tt.want)
		}
	}
}

func TestInitToWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := InitTo(&buf, Config{Level: "info"})
	logger.Info().Str("run_id", "r1").Msg("hello")
	logger.Debug().Msg("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if entry["run_id"] != "r1" || entry["message"] != "hello" {
		t.Fatalf("entry = %v", entry)
	}
}

func TestCtxPrefersContextLogger(t *testing.T) {
	fallback := zerolog.Nop()
	if got := Ctx(context.Background(), &fallback); got != &fallback {
		t.Fatalf("Ctx(background) did not return fallback")
	}

	var buf bytes.Buffer
	ctx := zerolog.New(&buf).With().Str("run_id", "r1").Logger().WithContext(context.Background())
	Ctx(ctx, &fallback).Info().Msg("hello")
	if !strings.Contains(buf.String(), `"run_id":"r1"`) {
		t.Fatalf("context logger not used: %q", buf.String())
	}
}
