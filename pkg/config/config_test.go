package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"

	cperrors "github.com/matzehuels/critpath/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default() invalid: %v", err)
	}
	if cfg.Analysis.HoursPerDay != 8 || cfg.Analysis.ThresholdHours != 40 || cfg.Analysis.MaxDependencies != 1 {
		t.Errorf("analysis defaults = %+v", cfg.Analysis)
	}
	if cfg.Suggest.Limit != 3 || cfg.Suggest.Model != DefaultModel || cfg.Suggest.Timeout.Std() != 30*time.Second {
		t.Errorf("suggest defaults = %+v", cfg.Suggest)
	}
	if cfg.Server.Addr != ":5001" {
		t.Errorf("server addr = %s", cfg.Server.Addr)
	}
	if cfg.Server.MaxTasks != DefaultMaxTasks || cfg.Server.AnalysisTimeout.Std() != 30*time.Second {
		t.Errorf("server limits = %+v", cfg.Server)
	}
}

func TestLoadMerge(t *testing.T) {
	dir := t.TempDir()
	global := writeFile(t, dir, "global.toml", `
[analysis]
hours_per_day = 7.5
threshold_hours = 30

[suggest]
model = "gemini-1.5-pro"
timeout = "10s"
`)
	project := writeFile(t, dir, "project.toml", `
[analysis]
threshold_hours = 20

[cache]
backend = "none"

[server]
max_tasks = 200
analysis_timeout = "5s"
`)
	cfg, err := Load(global, project)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Analysis.HoursPerDay != 7.5 {
		t.Errorf("hours_per_day = %v, want 7.5 from global", cfg.Analysis.HoursPerDay)
	}
	if cfg.Analysis.ThresholdHours != 20 {
		t.Errorf("threshold_hours = %v, want 20 from project", cfg.Analysis.ThresholdHours)
	}
	if cfg.Analysis.MaxDependencies != 1 {
		t.Errorf("max_dependencies = %v, want default", cfg.Analysis.MaxDependencies)
	}
	if cfg.Suggest.Model != "gemini-1.5-pro" || cfg.Suggest.Timeout.Std() != 10*time.Second {
		t.Errorf("suggest = %+v", cfg.Suggest)
	}
	if cfg.Cache.Backend != "none" {
		t.Errorf("cache backend = %s", cfg.Cache.Backend)
	}
	if cfg.Server.MaxTasks != 200 || cfg.Server.AnalysisTimeout.Std() != 5*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
}

func TestLoadMissingFilesAreSkipped(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "nope.toml"), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Analysis.ThresholdHours != 40 {
		t.Errorf("defaults not kept: %+v", cfg.Analysis)
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		path    string
		content string
		code    cperrors.Code
	}{
		{"missing", filepath.Join(dir, "missing.toml"), "", cperrors.ErrCodeFileNotFound},
		{"malformed", "bad.toml", "[analysis\nhours = ", cperrors.ErrCodeInvalidConfig},
		{"unknown key", "typo.toml", "[analysis]\nthreshhold_hours = 3\n", cperrors.ErrCodeInvalidConfig},
		{"bad duration", "dur.toml", "[suggest]\ntimeout = \"soon\"\n", cperrors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.path
			if tt.content != "" {
				path = writeFile(t, dir, tt.path, tt.content)
			}
			_, err := LoadFile(path)
			if !cperrors.Is(err, tt.code) {
				t.Errorf("LoadFile() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"GEMINI_API_KEY":     "secret",
		"CRITPATH_REDIS_URL": "redis://localhost:6379/1",
		"CRITPATH_ADDR":      ":8080",
	}
	cfg := Default()
	ApplyEnv(cfg, func(k string) string { return env[k] })

	if cfg.Suggest.APIKey != "secret" {
		t.Errorf("APIKey = %q", cfg.Suggest.APIKey)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisURL != env["CRITPATH_REDIS_URL"] {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %s", cfg.Server.Addr)
	}

	cfg = Default()
	cfg.Suggest.APIKey = "from-file"
	ApplyEnv(cfg, func(k string) string { return env[k] })
	if cfg.Suggest.APIKey != "from-file" {
		t.Errorf("explicit key overridden: %q", cfg.Suggest.APIKey)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"hours per day", func(c *Config) { c.Analysis.HoursPerDay = 0 }},
		{"threshold", func(c *Config) { c.Analysis.ThresholdHours = -1 }},
		{"max deps", func(c *Config) { c.Analysis.MaxDependencies = 0 }},
		{"provider", func(c *Config) { c.Suggest.Provider = "openai" }},
		{"limit", func(c *Config) { c.Suggest.Limit = -1 }},
		{"redis without url", func(c *Config) { c.Cache.Backend = "redis" }},
		{"backend", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"upload size", func(c *Config) { c.Server.MaxUploadBytes = 0 }},
		{"task limit", func(c *Config) { c.Server.MaxTasks = -1 }},
		{"analysis timeout", func(c *Config) { c.Server.AnalysisTimeout = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !cperrors.Is(err, cperrors.ErrCodeInvalidConfig) {
				t.Errorf("Validate() = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Suggest.APIKey = "secret"
	cfg.Analysis.ThresholdHours = 12

	var buf bytes.Buffer
	if err := Write(&buf, cfg); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if strings.Contains(buf.String(), "secret") {
		t.Error("API key written to output")
	}
	if cfg.Suggest.APIKey != "secret" {
		t.Error("Write modified its input")
	}

	got := Default()
	if _, err := toml.Decode(buf.String(), got); err != nil {
		t.Fatalf("decode written config: %v", err)
	}
	if got.Analysis.ThresholdHours != 12 || got.Suggest.Timeout != cfg.Suggest.Timeout {
		t.Errorf("round trip = %+v", got)
	}
}

func TestOptionsHelpers(t *testing.T) {
	cfg := Default()
	cfg.Analysis.HoursPerDay = 6
	if cfg.ParseOptions().HoursPerDay != 6 {
		t.Error("ParseOptions mismatch")
	}
	if o := cfg.BottleneckOptions(); o.ThresholdHours != 40 || o.MaxDependencies != 1 {
		t.Errorf("BottleneckOptions = %+v", o)
	}
}
