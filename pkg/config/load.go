package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/critpath/pkg/cache"
	"github.com/matzehuels/critpath/pkg/errors"
)

const (
	appName         = "critpath"
	globalFileName  = "config.toml"
	projectFileName = ".critpath.toml"

	EnvRedisURL = "CRITPATH_REDIS_URL"
	EnvCacheDir = "CRITPATH_CACHE_DIR"
	EnvAddr     = "CRITPATH_ADDR"
)

// GlobalPath returns ~/.config/critpath/config.toml, honoring XDG_CONFIG_HOME.
func GlobalPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName, globalFileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", appName, globalFileName), nil
}

// ProjectPath returns the project file name, relative to the working directory.
func ProjectPath() string { return projectFileName }

// Load merges the global and project files over the defaults. Missing
// files are skipped; empty paths are ignored.
func Load(globalPath, projectPath string) (*Config, error) {
	cfg := Default()
	if err := mergeFile(cfg, globalPath, false); err != nil {
		return nil, fmt.Errorf("loading global config: %w", err)
	}
	if err := mergeFile(cfg, projectPath, false); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}
	return cfg, nil
}

// LoadFile merges a single explicitly named file over the defaults. Unlike
// [Load], a missing file is an error.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := mergeFile(cfg, path, true); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads from the conventional locations, or only from explicit
// when it is set, then applies the environment and validates.
func LoadDefault(explicit string) (*Config, error) {
	var (
		cfg *Config
		err error
	)
	if explicit != "" {
		cfg, err = LoadFile(explicit)
	} else {
		global, gerr := GlobalPath()
		if gerr != nil {
			global = ""
		}
		cfg, err = Load(global, ProjectPath())
	}
	if err != nil {
		return nil, err
	}
	ApplyEnv(cfg, os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func mergeFile(cfg *Config, path string, required bool) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if required {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s not found", path)
		}
		return nil
	}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// ApplyEnv overrides settings from environment variables read via getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	if v := getenv(EnvRedisURL); v != "" {
		cfg.Cache.RedisURL = v
		if cfg.Cache.Backend == "" || cfg.Cache.Backend == cache.BackendFile {
			cfg.Cache.Backend = cache.BackendRedis
		}
	}
	if v := getenv(EnvCacheDir); v != "" {
		cfg.Cache.Dir = v
	}
	if v := getenv(EnvAddr); v != "" {
		cfg.Server.Addr = v
	}
	if cfg.Suggest.APIKey == "" && cfg.Suggest.APIKeyEnv != "" {
		cfg.Suggest.APIKey = getenv(cfg.Suggest.APIKeyEnv)
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.New(errors.ErrCodeInvalidConfig, format, args...)
	}
	switch {
	case c.Analysis.HoursPerDay <= 0:
		return invalid("analysis.hours_per_day must be positive")
	case c.Analysis.ThresholdHours <= 0:
		return invalid("analysis.threshold_hours must be positive")
	case c.Analysis.MaxDependencies < 1:
		return invalid("analysis.max_dependencies must be at least 1")
	case c.Suggest.Provider != ProviderGemini && c.Suggest.Provider != ProviderNone:
		return invalid("suggest.provider must be %q or %q", ProviderGemini, ProviderNone)
	case c.Suggest.Limit < 0:
		return invalid("suggest.limit must not be negative")
	case c.Suggest.Timeout < 0:
		return invalid("suggest.timeout must not be negative")
	case c.Server.MaxUploadBytes <= 0:
		return invalid("server.max_upload_bytes must be positive")
	case c.Server.MaxTasks < 0:
		return invalid("server.max_tasks must not be negative")
	case c.Server.AnalysisTimeout < 0:
		return invalid("server.analysis_timeout must not be negative")
	}
	switch c.Cache.Backend {
	case cache.BackendFile, cache.BackendNone, "":
	case cache.BackendRedis:
		if c.Cache.RedisURL == "" {
			return invalid("cache.redis_url is required for the redis backend")
		}
	default:
		return invalid("cache.backend must be file, redis or none")
	}
	return nil
}

// Write encodes cfg as TOML. The API key is never written.
func Write(w io.Writer, cfg *Config) error {
	out := *cfg
	out.Suggest.APIKey = ""
	return toml.NewEncoder(w).Encode(out)
}
