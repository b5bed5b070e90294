package log

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"trace", LevelTrace},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"none", LevelNone},
		{"", LevelNone},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestSetupWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "crowbar.log")

	logger, cleanup := Setup("debug", path)
	logger.Debug("push stack frame", slog.Int("depth", 1))
	logger.Log(context.Background(), LevelTrace, "hidden")

	w := logger.Handler()
	if !w.Enabled(context.Background(), slog.LevelDebug) {
		t.Errorf("debug level should be enabled")
	}
	cleanup()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, `"msg":"push stack frame"`) || !strings.Contains(text, `"depth":1`) {
		t.Errorf("unexpected log contents: %s", text)
	}
	if strings.Contains(text, "hidden") {
		t.Errorf("trace record leaked at debug level: %s", text)
	}
}

func TestFileWriterReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crowbar.log")
	fh, err := openLogFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	w := &fileWriter{path: path, fh: fh}

	_, _ = w.Write([]byte("before\n"))
	if err := os.Rename(path, filepath.Join(dir, "crowbar.bak")); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if err := w.reopen(); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	_, _ = w.Write([]byte("after\n"))
	_ = w.Close()

	data, _ := os.ReadFile(path)
	if string(data) != "after\n" {
		t.Errorf("expected fresh file after reopen, got %q", data)
	}
}
