// Package config loads critpath settings from TOML files and the
// environment.
//
// Sources are applied in order, later ones winning:
//
//  1. built-in defaults ([Default])
//  2. the global file, ~/.config/critpath/config.toml
//  3. the project file, .critpath.toml in the working directory
//  4. environment variables ([ApplyEnv])
//  5. command-line flags, applied by the caller
//
// A file only overrides the keys it sets. Unknown keys are an error so
// typos do not go unnoticed.
//
// Example file:
//
//	[analysis]
//	hours_per_day = 7.5
//	threshold_hours = 37.5
//
//	[suggest]
//	model = "gemini-2.0-flash"
//	limit = 3
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
//	[server]
//	max_tasks = 2000
//	analysis_timeout = "10s"
package config

import (
	"fmt"
	"time"

	"github.com/matzehuels/critpath/pkg/bottleneck"
	"github.com/matzehuels/critpath/pkg/task"
)

// Config is the complete configuration.
type Config struct {
	Analysis AnalysisConfig `toml:"analysis"`
	Suggest  SuggestConfig  `toml:"suggest"`
	Cache    CacheConfig    `toml:"cache"`
	Server   ServerConfig   `toml:"server"`
}

type AnalysisConfig struct {
	HoursPerDay     float64 `toml:"hours_per_day"`
	ThresholdHours  float64 `toml:"threshold_hours"`
	MaxDependencies int     `toml:"max_dependencies"`
}

type SuggestConfig struct {
	// Provider is "gemini" or "none".
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	// APIKey is used as is; otherwise the key is read from APIKeyEnv.
	APIKey      string   `toml:"api_key,omitempty"`
	APIKeyEnv   string   `toml:"api_key_env"`
	Endpoint    string   `toml:"endpoint"`
	Limit       int      `toml:"limit"`
	Concurrency int      `toml:"concurrency"`
	Timeout     Duration `toml:"timeout"`
}

type CacheConfig struct {
	// Backend is "file", "redis" or "none".
	Backend  string   `toml:"backend"`
	Dir      string   `toml:"dir,omitempty"`
	RedisURL string   `toml:"redis_url,omitempty"`
	Prefix   string   `toml:"prefix"`
	TTL      Duration `toml:"ttl"`
}

type ServerConfig struct {
	Addr           string   `toml:"addr"`
	MaxUploadBytes int64    `toml:"max_upload_bytes"`
	ResultTTL      Duration `toml:"result_ttl"`

	// MaxTasks caps the plan size accepted by /api/analyze.
	MaxTasks        int      `toml:"max_tasks"`
	AnalysisTimeout Duration `toml:"analysis_timeout"`
}

// Duration is a time.Duration written as a string ("30s", "24h") in TOML.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", b, err)
	}
	*d = Duration(v)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default values.
const (
	ProviderGemini = "gemini"
	ProviderNone   = "none"

	DefaultModel     = "gemini-2.0-flash"
	DefaultAPIKeyEnv = "GEMINI_API_KEY"
	DefaultEndpoint  = "https://generativelanguage.googleapis.com/v1beta"
	DefaultLimit     = 3
	DefaultAddr      = ":5001"
	DefaultPrefix    = "critpath:"

	DefaultMaxUploadBytes = 10 << 20
	DefaultMaxTasks       = 5000
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			HoursPerDay:     task.DefaultHoursPerDay,
			ThresholdHours:  bottleneck.DefaultThresholdHours,
			MaxDependencies: bottleneck.DefaultMaxDependencies,
		},
		Suggest: SuggestConfig{
			Provider:    ProviderGemini,
			Model:       DefaultModel,
			APIKeyEnv:   DefaultAPIKeyEnv,
			Endpoint:    DefaultEndpoint,
			Limit:       DefaultLimit,
			Concurrency: DefaultLimit,
			Timeout:     Duration(30 * time.Second),
		},
		Cache: CacheConfig{
			Backend: "file",
			Prefix:  DefaultPrefix,
			TTL:     Duration(7 * 24 * time.Hour),
		},
		Server: ServerConfig{
			Addr:           DefaultAddr,
			MaxUploadBytes: DefaultMaxUploadBytes,
			ResultTTL:      Duration(24 * time.Hour),

			MaxTasks:        DefaultMaxTasks,
			AnalysisTimeout: Duration(30 * time.Second),
		},
	}
}

// BottleneckOptions returns the classifier settings.
func (c *Config) BottleneckOptions() bottleneck.Options {
	return bottleneck.Options{
		MaxDependencies: c.Analysis.MaxDependencies,
		ThresholdHours:  c.Analysis.ThresholdHours,
	}
}

// ParseOptions returns the record parser settings.
func (c *Config) ParseOptions() task.ParseOptions {
	return task.ParseOptions{HoursPerDay: c.Analysis.HoursPerDay}
}
