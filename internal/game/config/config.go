package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the simulation server configuration.
type Config struct {
	Seed       int64  `json:"seed"`
	Addr       string `json:"addr"`        // observer websocket listen address
	DataDir    string `json:"data_dir"`    // replays and run archive
	Record     bool   `json:"record"`      // write replay files
	Biome      string `json:"biome"`       // fixed biome name, "" = endless cycling
	TuningPath string `json:"tuning_path"` // optional tuning.yaml
	PackDir    string `json:"pack_dir"`    // optional level pack directory
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Seed:    0,
		Addr:    ":8430",
		DataDir: "data",
		Record:  true,
	}
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["seed"] {
		cfg.Seed = fromFile.Seed
	}
	if !explicitFlags["addr"] {
		cfg.Addr = fromFile.Addr
	}
	if !explicitFlags["data-dir"] {
		cfg.DataDir = fromFile.DataDir
	}
	if !explicitFlags["record"] {
		cfg.Record = fromFile.Record
	}
	if !explicitFlags["biome"] {
		cfg.Biome = fromFile.Biome
	}
	if !explicitFlags["tuning"] {
		cfg.TuningPath = fromFile.TuningPath
	}
	if !explicitFlags["pack"] {
		cfg.PackDir = fromFile.PackDir
	}
}

// Load reads a config file into a fresh Config. A missing file yields the
// defaults without error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path atomically.
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}
