// Package config loads the engine configuration from a YAML or JSON file
// with optional RT_-prefixed environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Scoring  ScoringConfig  `json:"scoring"`
	Dataset  DatasetConfig  `json:"dataset"`
	Session  SessionConfig  `json:"session"`
	Strategy StrategyConfig `json:"strategy"`
	Metrics  MetricsConfig  `json:"metrics"`
	Server   ServerConfig   `json:"server"`
	Sentry   SentryConfig   `json:"sentry"`
	Tuner    TunerConfig    `json:"tuner"`
}

// Load reads the file at path, applies RT_ environment overrides
// (RT_SCORING__API_KEY=... sets scoring.api_key) and validates every section.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	// The callback rewrites RT_SCORING__API_KEY to scoring.api_key, so the
	// provider must split on "." to nest the override.
	if err := k.Load(env.Provider("RT_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "rt_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Scoring.SetDefaults()
	cfg.Dataset.SetDefaults()
	cfg.Session.SetDefaults()
	cfg.Strategy.SetDefaults()
	cfg.Server.SetDefaults()
	cfg.Tuner.SetDefaults()
	if err := cfg.Scoring.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Dataset.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Session.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Strategy.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Tuner.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
