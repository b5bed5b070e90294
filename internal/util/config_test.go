package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	return writeConfigNamed(t, "crowbar.yaml", body)
}

func writeConfigNamed(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfiguration(t *testing.T) {
	path := writeConfig(t, "heap_threshold: 1024\narray_chunk: 8\nlog_level: debug\n")

	got, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := DefaultConfiguration()
	want.HeapThreshold = 1024
	want.ArrayChunk = 8
	want.LogLevel = "debug"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("configuration mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigurationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "heap_size: 10\n"},
		{"negative size", "stack_chunk: -1\n"},
		{"bad type", "heap_threshold: lots\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfiguration(writeConfig(t, tt.body)); err == nil {
				t.Errorf("expected an error")
			}
		})
	}

	if _, err := LoadConfiguration(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("expected an error for a missing file")
	}
}

func TestEmptyConfigurationKeepsDefaults(t *testing.T) {
	got, err := LoadConfiguration(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(DefaultConfiguration(), got); diff != "" {
		t.Errorf("configuration mismatch (-want +got):\n%s", diff)
	}
	if hc := got.HeapConfig(); hc.Threshold != 256*1024 || hc.ArrayChunk != 256 {
		t.Errorf("unexpected heap config %+v", hc)
	}
}

func TestLoadTOMLConfiguration(t *testing.T) {
	path := writeConfigNamed(t, "crowbar.toml", "stack_chunk = 64\nlog_file = \"/tmp/crowbar.log\"\ndebug_json_ast = true\n")

	got, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := DefaultConfiguration()
	want.StackChunk = 64
	want.LogFile = "/tmp/crowbar.log"
	want.DebugJSONAST = true
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("configuration mismatch (-want +got):\n%s", diff)
	}

	if _, err := LoadConfiguration(writeConfigNamed(t, "bad.toml", "heap_size = 1\n")); err == nil {
		t.Errorf("expected an error for an unknown TOML key")
	}
}
