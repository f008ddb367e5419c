package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDebugLogger_EmptyPathIsNoop(t *testing.T) {
	l, err := NewDebugLogger("")
	if err != nil {
		t.Fatalf("NewDebugLogger(\"\") error = %v", err)
	}
	l.Log("nothing %d", 1)
	if err := l.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestDebugLogger_NilIsSafe(t *testing.T) {
	var l *DebugLogger
	l.Log("ignored")
	if err := l.Close(); err != nil {
		t.Errorf("Close() on nil logger error = %v", err)
	}
}

func TestDebugLogger_WritesTimestampedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "debug.log")

	l, err := NewDebugLogger(path)
	if err != nil {
		t.Fatalf("NewDebugLogger() error = %v", err)
	}
	l.Log("delegated %s to %s", "task", "architect-1")
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "debug log started") {
		t.Errorf("missing header in %q", content)
	}
	if !strings.Contains(content, "delegated task to architect-1") {
		t.Errorf("missing message in %q", content)
	}
}

func TestMulti_FansOutAndSkipsNil(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	sink := Multi(a, nil, b)

	sink.Log("hello %s", "world")

	for i, r := range []*Recorder{a, b} {
		lines := r.Lines()
		if len(lines) != 1 || lines[0] != "hello world" {
			t.Errorf("recorder %d lines = %v", i, lines)
		}
	}
}

func TestSink_KeepsLiteralPercentWithoutArgs(t *testing.T) {
	r := &Recorder{}
	var sink Sink = r

	sink.Log("100% done")

	got := r.Lines()
	if len(got) != 1 || got[0] != "100% done" {
		t.Errorf("lines = %q, want [\"100%% done\"]", got)
	}
}

func TestZapSink_LogsAtInfo(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sink := NewZapSink(zap.New(core))

	sink.Log("snapshot saved: %d patterns", 3)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Level != zapcore.InfoLevel {
		t.Errorf("level = %v, want info", entries[0].Level)
	}
	if entries[0].Message != "snapshot saved: 3 patterns" {
		t.Errorf("message = %q", entries[0].Message)
	}
}

func TestNewZapLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{"console info", "info", "console", false},
		{"json debug", "debug", "json", false},
		{"default format", "warn", "", false},
		{"bad level", "loud", "console", true},
		{"bad format", "info", "xml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewZapLogger(tt.level, tt.format)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewZapLogger(%q, %q) error = %v, wantErr %v", tt.level, tt.format, err, tt.wantErr)
			}
		})
	}
}
