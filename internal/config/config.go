// Package config loads the engine's YAML configuration with sensible
// defaults, so a bare binary runs a useful landing-page setup out of the box.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/prepflow/growth-engine/internal/abtest"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Sinks   SinksConfig   `yaml:"sinks"`
	Vitals  VitalsConfig  `yaml:"vitals"`
	Leads   LeadsConfig   `yaml:"leads"`
	Tests   []abtest.Test `yaml:"tests"`
}

type ServerConfig struct {
	Port      int    `yaml:"port"`
	TokenFile string `yaml:"token_file"`
}

type StorageConfig struct {
	// Path to the SQLite database. Empty means in-memory only: identity and
	// assignments then live for the process lifetime, the way a cleared
	// browser profile would.
	Path string `yaml:"path"`
}

type SinksConfig struct {
	Console bool `yaml:"console"`
	Live    bool `yaml:"live"`
}

type VitalsConfig struct {
	SampleRates map[string]float64            `yaml:"sample_rates"`
	Budgets     map[string]map[string]float64 `yaml:"budgets"`
	WebhookURL  string                        `yaml:"webhook_url"`
}

type LeadsConfig struct {
	// WebhookURL receives captured leads fire-and-forget; empty disables
	// forwarding.
	WebhookURL     string `yaml:"webhook_url"`
	ConversionTest string `yaml:"conversion_test"`
}

// Default returns the built-in configuration: memory storage, console sink,
// full sampling, and the stock landing-page experiment.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Sinks:  SinksConfig{Console: true, Live: true},
		Vitals: VitalsConfig{
			SampleRates: map[string]float64{},
		},
		Leads: LeadsConfig{ConversionTest: "landing_page_variants"},
		Tests: []abtest.Test{abtest.DefaultLandingTest()},
	}
}

// Load reads a YAML config file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if len(cfg.Tests) == 0 {
		cfg.Tests = []abtest.Test{abtest.DefaultLandingTest()}
	}
	return cfg, nil
}
