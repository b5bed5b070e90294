package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
)

// LevelTrace sits below slog's debug level.
const LevelTrace = slog.LevelDebug - 4

// LevelNone is above every record the interpreter emits.
const LevelNone = slog.LevelError + 4

// ParseLevel maps a level name to a slog level. Unknown names disable
// logging.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return LevelNone
	}
}

// fileWriter writes to a log file that can be swapped underneath it.
type fileWriter struct {
	mu   sync.Mutex
	path string
	fh   *os.File
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

func (w *fileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fh.Write(p)
}

func (w *fileWriter) reopen() error {
	fh, err := openLogFile(w.path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	old := w.fh
	w.fh = fh
	w.mu.Unlock()
	return old.Close()
}

func (w *fileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fh.Close()
}

// Setup builds a JSON logger at the given level, writing to file or to
// stderr when file is empty or cannot be opened. The returned func stops
// rotation handling and closes the file.
func Setup(level, file string) (*slog.Logger, func()) {
	var out io.Writer = os.Stderr
	cleanup := func() {}

	if file != "" {
		fh, err := openLogFile(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file '%s': %v; falling back to stderr\n", file, err)
		} else {
			w := &fileWriter{path: file, fh: fh}
			out = w
			stop := setupLogRotation(w)
			cleanup = func() {
				stop()
				_ = w.Close()
			}
		}
	}

	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		AddSource: false,
		Level:     ParseLevel(level),
	}))
	return logger, cleanup
}

// setupLogRotation reopens the file on SIGHUP, so the log can be rotated
// with:
//
//	mv crowbar.log crowbar.bak && kill -HUP <pid>
func setupLogRotation(w *fileWriter) func() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGHUP)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-sigs:
				if err := w.reopen(); err != nil {
					fmt.Fprintf(os.Stderr, "could not reopen log file: %v\n", err)
				}
			case <-done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(sigs)
		close(done)
	}
}
