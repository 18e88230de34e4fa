// Package orchestrator sequences the fetch -> extract -> hierarchy ->
// validate -> format -> store pipeline across a bounded pool of concurrent
// workers, one goroutine per filing.
package orchestrator

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the orchestrator's run configuration, loadable from a YAML
// file or built directly by a CLI flag set.
type Config struct {
	MaxConcurrency int           `yaml:"max_concurrency"`
	Bucket         string        `yaml:"bucket"`
	MongoURI       string        `yaml:"mongo_uri"`
	MongoDatabase  string        `yaml:"mongo_database"`
	CacheDir       string        `yaml:"cache_dir"`
	Email          string        `yaml:"email"`
	FiscalOverlay  string        `yaml:"fiscal_overlay"`
	VerifyThreshold float64      `yaml:"verify_threshold"`
	Force          bool          `yaml:"force"`
	DryRun         bool          `yaml:"dry_run"`
	FilingTimeout  time.Duration `yaml:"filing_timeout"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout"`
	RequestsPerSec float64       `yaml:"requests_per_second"`
}

// Defaults returns a Config with spec-mandated defaults: 10m per-filing
// budget, 30s per fetch attempt, 10 req/s, 99.5% verifier threshold.
func Defaults() Config {
	return Config{
		MaxConcurrency:  4,
		VerifyThreshold: 0.995,
		FilingTimeout:   10 * time.Minute,
		FetchTimeout:    30 * time.Second,
		RequestsPerSec:  10,
	}
}

// LoadConfig reads a YAML run configuration file, starting from Defaults
// so a config file only needs to override what it cares about.
func LoadConfig(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
