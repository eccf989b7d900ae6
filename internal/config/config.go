package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all engine configuration. It is threaded explicitly through
// the components; there is no process-wide mutable state.
type Config struct {
	// DataDir is the root of the persisted analysis tree.
	DataDir string `koanf:"data_dir"`
	// IndexPath is the sqlite artifact index location.
	IndexPath string `koanf:"index_path"`

	Dissector DissectorConfig `koanf:"dissector"`
	Analysis  AnalysisConfig  `koanf:"analysis"`
	LLM       LLMConfig       `koanf:"llm"`

	Debug bool `koanf:"debug"`
}

// DissectorConfig controls the external dissector subprocess.
type DissectorConfig struct {
	// Binary is the dissector executable name or path (tshark equivalent).
	Binary  string        `koanf:"binary"`
	Timeout time.Duration `koanf:"timeout"`
}

// AnalysisConfig tunes the analysis engine.
type AnalysisConfig struct {
	Workers           int           `koanf:"workers"`
	SignalSampleLimit int           `koanf:"signal_sample_limit"`
	BeaconQuota       int           `koanf:"beacon_quota"`
	ReassocWindow     time.Duration `koanf:"reassoc_window"`
}

// LLMConfig controls the best-effort narrative generation call.
type LLMConfig struct {
	APIKey  string        `koanf:"api_key"`
	Model   string        `koanf:"model"`
	Timeout time.Duration `koanf:"timeout"`
}

// defaults mirror the source tuning: 300 s dissector budget, two concurrent
// dissector runs, 500 signal samples, 3 beacons per BSSID, 15 s reassoc window.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"data_dir":                     "data/analyses",
		"index_path":                   "data/analyses.db",
		"dissector.binary":             "tshark",
		"dissector.timeout":            300 * time.Second,
		"analysis.workers":             2,
		"analysis.signal_sample_limit": 500,
		"analysis.beacon_quota":        3,
		"analysis.reassoc_window":      15 * time.Second,
		"llm.model":                    "claude-sonnet-4-20250514",
		"llm.timeout":                  30 * time.Second,
		"debug":                        false,
	}
}

// Load builds the configuration: defaults, then an optional YAML file, then
// STEERMAP_* environment variables. Later layers win.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("loading config file %s: %w", path, err)
			}
		}
	}

	// STEERMAP_DISSECTOR__BINARY → dissector.binary
	if err := k.Load(env.Provider("STEERMAP_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "STEERMAP_")
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Analysis.Workers < 1 {
		c.Analysis.Workers = 1
	}
	if c.Analysis.SignalSampleLimit < 1 {
		return fmt.Errorf("analysis.signal_sample_limit must be positive")
	}
	if c.Dissector.Timeout < 300*time.Second {
		c.Dissector.Timeout = 300 * time.Second
	}
	if c.LLM.Timeout < 30*time.Second {
		c.LLM.Timeout = 30 * time.Second
	}
	return nil
}
