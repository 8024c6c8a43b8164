// Package config loads and validates scraper configuration via Viper.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/USDepartmentofLabor/cdf-warn/internal/warn"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Scraper  ScraperConfig  `mapstructure:"scraper"`
	Headless HeadlessConfig `mapstructure:"headless"`
	Output   OutputConfig   `mapstructure:"output"`
	Storage  StorageConfig  `mapstructure:"storage"`
	DB       DBConfig       `mapstructure:"db"`
	PubSub   PubSubConfig   `mapstructure:"pubsub"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// ScraperConfig governs dispatcher and scrape pipeline behavior.
type ScraperConfig struct {
	Concurrency    int    `mapstructure:"concurrency"`
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	RespectRobots  bool   `mapstructure:"respect_robots"`
	QueueDepth     int    `mapstructure:"queue_depth"`
	SourcesFile    string `mapstructure:"sources_file"`
}

// HeadlessConfig configures the headless rendering subsystem.
type HeadlessConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxParallel   int  `mapstructure:"max_parallel"`
	NavTimeoutSec int  `mapstructure:"nav_timeout_seconds"`
}

// OutputConfig sets where and how per-state entry files land.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
	// Format selects the sink: "jsonl" (default) or "csv".
	Format string `mapstructure:"format"`
}

// StorageConfig selects the raw document blob store.
type StorageConfig struct {
	Backend   string `mapstructure:"backend"`
	BaseDir   string `mapstructure:"base_dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
}

// DBConfig controls access to the relational database. An empty DSN
// disables database persistence.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// PubSubConfig holds metadata for publish-subscribe notifications. An
// empty project disables publishing.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("WARN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("scraper.concurrency", 4)
	v.SetDefault("scraper.user_agent", "warn-scraper/1.0")
	v.SetDefault("scraper.timeout_seconds", 15)
	v.SetDefault("scraper.respect_robots", true)
	v.SetDefault("scraper.queue_depth", 64)
	v.SetDefault("scraper.sources_file", "sources.yaml")
	v.SetDefault("headless.enabled", false)
	v.SetDefault("headless.max_parallel", 1)
	v.SetDefault("headless.nav_timeout_seconds", 45)
	v.SetDefault("output.dir", "output")
	v.SetDefault("output.format", "jsonl")
	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.base_dir", "blobs")
	v.SetDefault("db.table", "warn_entries")
	v.SetDefault("pubsub.topic_name", "warn-runs")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Scraper.Concurrency <= 0 {
		return fmt.Errorf("scraper.concurrency must be > 0")
	}
	if c.Scraper.TimeoutSeconds <= 0 {
		return fmt.Errorf("scraper.timeout_seconds must be > 0")
	}
	if c.Scraper.QueueDepth <= 0 {
		return fmt.Errorf("scraper.queue_depth must be > 0")
	}
	if c.Headless.Enabled && c.Headless.MaxParallel <= 0 {
		return fmt.Errorf("headless.max_parallel must be > 0 when headless is enabled")
	}
	if c.Output.Format != "" && c.Output.Format != "jsonl" && c.Output.Format != "csv" {
		return fmt.Errorf("output.format must be jsonl or csv")
	}
	if c.Storage.Backend == "gcs" && c.Storage.GCSBucket == "" {
		return fmt.Errorf("storage.gcs_bucket is required for the gcs backend")
	}
	return nil
}

// LoadSources reads the per-state source registry from a YAML file. The
// file holds a "sources" list; each element unmarshals into SourceConfig.
//
// The registry is decoded with yaml.v3 rather than Viper: Viper lowercases
// map keys, which would corrupt the case-sensitive raw column names in the
// field mappings.
func LoadSources(path string) ([]warn.SourceConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	var registry struct {
		Sources []warn.SourceConfig `yaml:"sources"`
	}
	if err := yaml.Unmarshal(raw, &registry); err != nil {
		return nil, fmt.Errorf("unmarshal sources: %w", err)
	}
	if len(registry.Sources) == 0 {
		return nil, fmt.Errorf("sources file %s declares no sources", path)
	}

	states := warn.NewStateLookup()
	for i, src := range registry.Sources {
		if err := validateSource(src); err != nil {
			return nil, fmt.Errorf("source %d (%s): %w", i, src.StateAbbrev, err)
		}
		if src.StateName == "" {
			name, ok := states.Name(src.StateAbbrev)
			if !ok {
				return nil, fmt.Errorf("source %d: unknown state abbreviation %q", i, src.StateAbbrev)
			}
			registry.Sources[i].StateName = name
		}
	}
	return registry.Sources, nil
}

func validateSource(src warn.SourceConfig) error {
	if src.StateAbbrev == "" {
		return fmt.Errorf("abbreviation is required")
	}
	if src.URL == "" {
		return fmt.Errorf("archive_url is required")
	}
	if !src.JobLink && src.Adapter == "" && !src.Format.Valid() {
		return fmt.Errorf("unknown format %q", src.Format)
	}
	return nil
}
