// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// =============================================================================
// Level Tests
// =============================================================================

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{Level(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"", LevelInfo},
		{"info", LevelInfo},
		{"warning", LevelWarn},
		{" warn ", LevelWarn},
		{"Error", LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if err != nil {
				t.Fatalf("ParseLevel(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	if _, err := ParseLevel("verbose"); !errors.Is(err, ErrUnknownLevel) {
		t.Errorf("ParseLevel(verbose) error = %v, want ErrUnknownLevel", err)
	}
}

func TestLevel_slogLevel(t *testing.T) {
	if LevelDebug.slogLevel() != slog.LevelDebug {
		t.Error("LevelDebug should map to slog.LevelDebug")
	}
	if Level(99).slogLevel() != slog.LevelInfo {
		t.Error("unknown levels should map to slog.LevelInfo")
	}
}

// =============================================================================
// Logger Tests
// =============================================================================

func TestNew_TextOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Output: &buf})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer logger.Close()

	logger.Slog().Info("lint run completed", "files", 3)
	logger.Slog().Debug("filtered out")

	out := buf.String()
	if !strings.Contains(out, "lint run completed") {
		t.Errorf("output missing message: %q", out)
	}
	if !strings.Contains(out, "service=tracelint") {
		t.Errorf("output missing service attribute: %q", out)
	}
	if strings.Contains(out, "filtered out") {
		t.Errorf("debug record should be filtered at info level: %q", out)
	}
}

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Output: &buf, JSON: true, Service: "watch"})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	logger.Slog().Warn("rule fault", "rule", "no-debugger")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if rec["service"] != "watch" || rec["rule"] != "no-debugger" {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestNew_QuietWithRecorder(t *testing.T) {
	rec := NewRecorder()
	logger, err := New(Config{Quiet: true, Level: LevelDebug, Recorder: rec})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	logger.With("run_id", "r1").Debug("lint completed", "file", "a.js")

	entries := rec.Find("lint completed")
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	attrs := entries[0].Attrs
	if attrs["run_id"] != "r1" || attrs["file"] != "a.js" || attrs["service"] != "tracelint" {
		t.Errorf("unexpected attrs: %v", attrs)
	}
}

func TestNew_WithLogDir(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	logger, err := New(Config{Output: &buf, LogDir: dir, Service: "tl"})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	logger.Slog().Info("to both")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("second Close() error: %v", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "tl_*.log"))
	if err != nil || len(files) != 1 {
		t.Fatalf("expected one log file, got %v (%v)", files, err)
	}
	data, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"to both"`) {
		t.Errorf("log file missing JSON record: %q", data)
	}
	if !strings.Contains(buf.String(), "to both") {
		t.Errorf("console missing record: %q", buf.String())
	}
}

func TestNew_WithLogDir_InvalidPath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := New(Config{Quiet: true, LogDir: filepath.Join(blocker, "logs")}); err == nil {
		t.Error("expected error when log directory cannot be created")
	}
}

func TestNop(t *testing.T) {
	logger := Nop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Error("Nop logger should not be enabled at any level")
	}
}

// =============================================================================
// Recorder Tests
// =============================================================================

func TestRecorder_GroupsAndReset(t *testing.T) {
	rec := NewRecorder()
	logger := rec.Logger().WithGroup("cache").With("dir", "/tmp/c")

	logger.Info("opened", "entries", 4)

	entries := rec.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Attrs["cache.dir"] != "/tmp/c" {
		t.Errorf("group prefix not applied to With attrs: %v", entries[0].Attrs)
	}
	if entries[0].Attrs["cache.entries"] != int64(4) {
		t.Errorf("group prefix not applied to record attrs: %v", entries[0].Attrs)
	}

	rec.Reset()
	if len(rec.Entries()) != 0 {
		t.Error("Reset should discard entries")
	}
}

func TestRecorder_ConcurrentUse(t *testing.T) {
	rec := NewRecorder()
	logger := rec.Logger()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				logger.Info("tick", "worker", n)
			}
		}(i)
	}
	wg.Wait()

	if got := len(rec.Find("tick")); got != 500 {
		t.Errorf("expected 500 entries, got %d", got)
	}
}

// =============================================================================
// Multi-Handler Tests
// =============================================================================

func TestMultiHandler_LevelFiltering(t *testing.T) {
	var debugBuf, warnBuf bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}}
	logger := slog.New(h)

	logger.Info("info only")
	logger.Warn("both")

	if !strings.Contains(debugBuf.String(), "info only") || !strings.Contains(debugBuf.String(), "both") {
		t.Errorf("debug handler missing records: %q", debugBuf.String())
	}
	if strings.Contains(warnBuf.String(), "info only") {
		t.Errorf("warn handler received info record: %q", warnBuf.String())
	}
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("multiHandler should be enabled when any handler is")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandPath("~/logs"); got != filepath.Join(home, "logs") {
		t.Errorf("expandPath(~/logs) = %q", got)
	}
	if got := expandPath("/var/log"); got != "/var/log" {
		t.Errorf("expandPath(/var/log) = %q", got)
	}
}
