package util

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"crowbar/internal/object"
)

type Configuration struct {
	Version   string `yaml:"-" toml:"-"`
	BuildDate string `yaml:"-" toml:"-"`
	Commit    string `yaml:"-" toml:"-"`

	HeapThreshold int `yaml:"heap_threshold" toml:"heap_threshold"`
	HeapIncrement int `yaml:"heap_increment" toml:"heap_increment"`
	StackChunk    int `yaml:"stack_chunk" toml:"stack_chunk"`
	ArrayChunk    int `yaml:"array_chunk" toml:"array_chunk"`

	LogLevel     string `yaml:"log_level" toml:"log_level"`
	LogFile      string `yaml:"log_file" toml:"log_file"`
	DebugJSONAST bool   `yaml:"debug_json_ast" toml:"debug_json_ast"`
}

func DefaultConfiguration() Configuration {
	return Configuration{
		HeapThreshold: object.DefaultHeapThreshold,
		HeapIncrement: object.DefaultHeapIncrement,
		StackChunk:    object.DefaultStackChunk,
		ArrayChunk:    object.DefaultArrayChunk,
		LogLevel:      "none",
	}
}

// HeapConfig returns the collector settings of the configuration.
func (c Configuration) HeapConfig() object.HeapConfig {
	return object.HeapConfig{
		Threshold:  c.HeapThreshold,
		Increment:  c.HeapIncrement,
		ArrayChunk: c.ArrayChunk,
	}
}

// LoadConfiguration reads a YAML file, or a TOML file when the name ends
// in .toml, over the defaults. Unknown keys are an error; an empty file
// keeps the defaults.
func LoadConfiguration(path string) (Configuration, error) {
	cfg := DefaultConfiguration()

	var err error
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = decodeTOML(path, &cfg)
	} else {
		err = decodeYAML(path, &cfg)
	}
	if err != nil {
		return cfg, err
	}

	if cfg.HeapThreshold < 0 || cfg.HeapIncrement < 0 || cfg.StackChunk < 0 || cfg.ArrayChunk < 0 {
		return cfg, fmt.Errorf("config: %s: sizes must not be negative", path)
	}
	return cfg, nil
}

func decodeYAML(path string, cfg *Configuration) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func decodeTOML(path string, cfg *Configuration) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("config: parse %s: unknown key %q", path, undecoded[0].String())
	}
	return nil
}
