// Package config loads and saves the toolchain's TOML configuration,
// covering the assembler, the VM and the debugger in one file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config is the root of the toolchain's persisted settings.
type Config struct {
	Assembler struct {
		MaxImageSize uint32 `toml:"max_image_size"`
		DumpAST      bool   `toml:"dump_ast"`
		OutputPath   string `toml:"output_path"`
	} `toml:"assembler"`

	VM struct {
		MemMax     uint32 `toml:"mem_max"`
		EntryPoint uint32 `toml:"entry_point"`
		Trace      bool   `toml:"trace"`
	} `toml:"vm"`

	Debugger struct {
		HistorySize  int  `toml:"history_size"`
		ShowMemory   bool `toml:"show_memory"`
		BytesPerLine int  `toml:"bytes_per_line"`
	} `toml:"debugger"`
}

// Default returns a Config populated with the toolchain's built-in
// defaults, used whenever no config file is present.
func Default() *Config {
	cfg := &Config{}

	cfg.Assembler.MaxImageSize = 65535
	cfg.Assembler.DumpAST = false
	cfg.Assembler.OutputPath = "out.bin"

	cfg.VM.MemMax = 65535
	cfg.VM.EntryPoint = 0
	cfg.VM.Trace = false

	cfg.Debugger.HistorySize = 1000
	cfg.Debugger.ShowMemory = true
	cfg.Debugger.BytesPerLine = 16

	return cfg
}

// ConfigDir returns the platform-specific directory holding the
// toolchain's config file.
func ConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		dir := os.Getenv("APPDATA")
		if dir == "" {
			dir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		return filepath.Join(dir, "transient")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "."
		}
		return filepath.Join(homeDir, ".config", "transient")

	default:
		return "."
	}
}

// DefaultPath returns the default config file location, creating its
// parent directory if necessary.
func DefaultPath() string {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "transient.toml"
	}
	return filepath.Join(dir, "transient.toml")
}

// Load reads the config file at path. An empty path loads from
// DefaultPath. A missing file is not an error: Load returns Default().
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes c to path, creating its parent directory if necessary.
// An empty path saves to DefaultPath.
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user-supplied config path
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
